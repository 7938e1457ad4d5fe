// Package daemon runs the fetch orchestrator without a terminal UI. It
// follows the latest patch for one game, re-fetching when the live stream
// announces a new one, and writes a plain-text report of every update.
package daemon

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcin-skalski/patchwatch/internal/events"
	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/i18n"
	"github.com/marcin-skalski/patchwatch/internal/orchestrator"
	"github.com/marcin-skalski/patchwatch/internal/patch"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

type Options struct {
	Game          game.Game
	Lang          i18n.Lang
	Events        <-chan events.Event
	StatsInterval time.Duration
	Out           io.Writer
}

type Daemon struct {
	orch   *orchestrator.Orchestrator
	opts   Options
	logger *slog.Logger

	results chan orchestrator.Result
	wg      sync.WaitGroup
}

func New(orch *orchestrator.Orchestrator, opts Options, logger *slog.Logger) *Daemon {
	if !opts.Game.Valid() {
		opts.Game = game.Valorant
	}
	if opts.Lang == "" {
		opts.Lang = i18n.EN
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 5 * time.Minute
	}
	if opts.Out == nil {
		opts.Out = io.Discard
	}
	return &Daemon{
		orch:    orch,
		opts:    opts,
		logger:  logger.With("component", "daemon"),
		results: make(chan orchestrator.Result),
	}
}

// Run owns the orchestrator for its whole lifetime: every call into it
// happens on this goroutine. It returns nil once ctx is cancelled and all
// in-flight requests have finished.
func (d *Daemon) Run(ctx context.Context) error {
	sel := selection.New(d.opts.Game).Current()
	d.logger.Info("following latest patch", "game", sel.Game.String(), "stats_interval", d.opts.StatsInterval)

	d.dispatch(ctx, d.orch.OnSelectionChanged(sel))
	d.dispatch(ctx, d.orch.RefreshStats())

	ticker := time.NewTicker(d.opts.StatsInterval)
	defer ticker.Stop()

	evCh := d.opts.Events
	for {
		select {
		case <-ctx.Done():
			d.logger.Info("shutting down, waiting for requests")
			d.orch.Close()
			d.wg.Wait()
			return nil

		case r := <-d.results:
			d.handle(ctx, r)

		case ev, ok := <-evCh:
			if !ok {
				d.logger.Warn("live updates stopped")
				fmt.Fprintln(d.opts.Out, i18n.T(d.opts.Lang, i18n.StreamDisconnected))
				evCh = nil
				continue
			}
			d.dispatch(ctx, d.orch.OnLiveEvent(ev))

		case <-ticker.C:
			d.dispatch(ctx, d.orch.RefreshStats())
		}
	}
}

// handle applies a finished request and reports the state it produced.
// Stale results are dropped before anything is written.
func (d *Daemon) handle(ctx context.Context, r orchestrator.Result) {
	if !d.orch.Current(r) {
		d.orch.Apply(r)
		return
	}
	next := d.orch.Apply(r)
	d.report(r)
	d.dispatch(ctx, next)
}

// dispatch runs cmd off the loop and feeds its result back into it.
func (d *Daemon) dispatch(ctx context.Context, cmd tea.Cmd) {
	if cmd == nil {
		return
	}
	d.wg.Add(1)
	go func() {
		defer d.wg.Done()
		r, ok := cmd().(orchestrator.Result)
		if !ok {
			return
		}
		select {
		case d.results <- r:
		case <-ctx.Done():
		}
	}()
}

// report writes the state a result just produced.
func (d *Daemon) report(r orchestrator.Result) {
	lang := d.opts.Lang
	switch r.Resource {
	case orchestrator.ResourceSnapshot:
		s := d.orch.Snapshot()
		switch s.Status {
		case orchestrator.Failed:
			fmt.Fprintf(d.opts.Out, "%s %s\n", i18n.T(lang, i18n.ErrorLoadingLatest), s.Err)
		case orchestrator.Ready:
			d.writeSnapshot(s.Data)
		}

	case orchestrator.ResourceStats:
		s := d.orch.Stats()
		switch s.Status {
		case orchestrator.Failed:
			d.logger.Warn("stats unavailable", "err", s.Err)
		case orchestrator.Ready:
			if s.Data != nil && s.Data.Message == "" {
				d.logger.Info("usage stats",
					"total_requests", s.Data.TotalRequestsAnalyzed,
					"total_errors", s.Data.TotalErrors,
					"most_popular", s.Data.MostPopularGame)
			}
		}
	}
}

func (d *Daemon) writeSnapshot(s *patch.Snapshot) {
	lang := d.opts.Lang
	w := d.opts.Out

	heading := i18n.Heading(lang, i18n.LatestDataFor, d.opts.Game.String())
	if s.PatchVersion != "" {
		heading += " " + s.PatchVersion
	}
	fmt.Fprintf(w, "== %s ==\n", heading)

	if s.HasImpact() {
		fmt.Fprintf(w, "%s %s / 10", i18n.T(lang, i18n.ImpactScore), strconv.FormatFloat(*s.ImpactScore, 'f', -1, 64))
		if s.ImpactLabel != patch.ImpactNone {
			fmt.Fprintf(w, " (%s)", s.ImpactLabel)
		}
		fmt.Fprintln(w)
	}

	if len(s.Changes) == 0 {
		fmt.Fprintln(w, i18n.T(lang, i18n.NoChanges))
		return
	}

	groups := s.Group()
	for _, t := range patch.ChangeTypes {
		for _, c := range groups[t] {
			target := c.Target
			if c.Ability != "" {
				target += " (" + c.Ability + ")"
			}
			fmt.Fprintf(w, "[%s] %s: %s\n", t, target, i18n.Resolve(c.Details, lang))
		}
	}
}
