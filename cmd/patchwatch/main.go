package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/mattn/go-isatty"
	"github.com/spf13/pflag"
	"golang.org/x/sync/errgroup"

	"github.com/marcin-skalski/patchwatch/internal/api"
	"github.com/marcin-skalski/patchwatch/internal/config"
	"github.com/marcin-skalski/patchwatch/internal/daemon"
	"github.com/marcin-skalski/patchwatch/internal/events"
	"github.com/marcin-skalski/patchwatch/internal/logging"
	"github.com/marcin-skalski/patchwatch/internal/orchestrator"
	"github.com/marcin-skalski/patchwatch/internal/tui"
)

func main() {
	configPath := pflag.StringP("config", "c", "", "path to config file (default "+config.DefaultPath+" if present)")
	noTUI := pflag.Bool("no-tui", false, "print updates to stdout instead of starting the TUI")
	gameName := pflag.StringP("game", "g", "", "game to open first, e.g. valorant or \"League of Legends\"")
	lang := pflag.StringP("lang", "l", "", "display language (en|tr)")
	pflag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
	if *gameName != "" {
		if err := cfg.SetGame(*gameName); err != nil {
			fmt.Fprintf(os.Stderr, "error: --game: %v\n", err)
			os.Exit(2)
		}
	}
	if *lang != "" {
		cfg.SetLanguage(*lang)
	}

	// Auto-detect TUI capability
	enableTUI := !*noTUI && os.Getenv("PATCHWATCH_TUI") != "0" &&
		isatty.IsTerminal(os.Stdin.Fd()) && isatty.IsTerminal(os.Stdout.Fd())

	logger, logFile, err := logging.Setup(logging.Options{
		File:    cfg.LogFile,
		Level:   cfg.Log.Level,
		Console: !enableTUI,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "setup logger: %v\n", err)
		os.Exit(1)
	}
	defer logFile.Close()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logger.Info("patchwatch starting",
		"api", cfg.API.BaseURL,
		"game", cfg.Game.String(),
		"lang", string(cfg.Lang),
		"tui", enableTUI,
		"stream", cfg.StreamEnabled())

	if err := run(ctx, cfg, enableTUI, logger); err != nil {
		logger.Error("patchwatch stopped", "err", err)
		if enableTUI {
			fmt.Fprintf(os.Stderr, "error: %v\n", err)
		}
		logFile.Close()
		os.Exit(1)
	}
}

// run owns one view: the live update listener and either the TUI or the
// headless follower. Both stop when the view ends or ctx is cancelled.
func run(ctx context.Context, cfg *config.Config, enableTUI bool, logger *slog.Logger) error {
	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	g, ctx := errgroup.WithContext(ctx)

	client := api.NewClient(cfg.API.BaseURL, logger, api.WithTimeout(cfg.API.Timeout))
	orch := orchestrator.New(ctx, client, logger)

	var evCh <-chan events.Event
	if cfg.StreamEnabled() {
		var opts []events.ListenerOption
		if cfg.Stream.Reconnect {
			opts = append(opts, events.WithReconnect(0, cfg.Stream.MaxBackoff))
		}
		listener := events.NewListener(events.NewHTTPSource(cfg.API.BaseURL), logger, opts...)
		evCh = listener.Events()

		// A lost stream only disables live updates; the view keeps going.
		g.Go(func() error {
			if err := listener.Run(ctx); err != nil {
				logger.Warn("live updates unavailable", "err", err)
			}
			return nil
		})
	}

	if enableTUI {
		g.Go(func() error {
			defer cancel()
			m := tui.NewModel(orch, logger, tui.Options{
				Game:          cfg.Game,
				Lang:          cfg.Lang,
				Events:        evCh,
				StatsInterval: cfg.TUI.StatsRefreshInterval,
			})
			p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
			if _, err := p.Run(); err != nil {
				if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
					return nil
				}
				return fmt.Errorf("tui: %w", err)
			}
			return nil
		})
	} else {
		g.Go(func() error {
			defer cancel()
			d := daemon.New(orch, daemon.Options{
				Game:          cfg.Game,
				Lang:          cfg.Lang,
				Events:        evCh,
				StatsInterval: cfg.TUI.StatsRefreshInterval,
				Out:           os.Stdout,
			}, logger)
			return d.Run(ctx)
		})
	}

	return g.Wait()
}
