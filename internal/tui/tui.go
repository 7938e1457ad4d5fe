package tui

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"golang.org/x/time/rate"

	"github.com/marcin-skalski/patchwatch/internal/events"
	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/i18n"
	"github.com/marcin-skalski/patchwatch/internal/orchestrator"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

const (
	defaultStatsInterval = 5 * time.Minute
	refreshEvery         = 2 * time.Second
	rawHeight            = 20
)

type Options struct {
	Game game.Game
	Lang i18n.Lang
	// Events is the live update stream; nil disables it.
	Events        <-chan events.Event
	StatsInterval time.Duration
}

type Model struct {
	machine *selection.Machine
	orch    *orchestrator.Orchestrator
	logger  *slog.Logger

	events        <-chan events.Event
	streamDown    bool
	statsInterval time.Duration
	refresh       *rate.Limiter

	lang    i18n.Lang
	cursor  int // highlighted entry in the archive list
	showRaw bool
	raw     viewport.Model
	spinner spinner.Model
	width   int
}

type statsTickMsg time.Time

type liveEventMsg events.Event

type streamClosedMsg struct{}

func NewModel(orch *orchestrator.Orchestrator, logger *slog.Logger, opts Options) Model {
	g := opts.Game
	if !g.Valid() {
		g = game.Valorant
	}
	lang := opts.Lang
	if lang == "" {
		lang = i18n.EN
	}
	interval := opts.StatsInterval
	if interval <= 0 {
		interval = defaultStatsInterval
	}
	return Model{
		machine:       selection.New(g),
		orch:          orch,
		logger:        logger.With("component", "tui"),
		events:        opts.Events,
		statsInterval: interval,
		refresh:       rate.NewLimiter(rate.Every(refreshEvery), 1),
		lang:          lang,
		raw:           viewport.New(80, rawHeight),
		spinner:       spinner.New(spinner.WithSpinner(spinner.Dot)),
	}
}

func (m Model) Init() tea.Cmd {
	return tea.Batch(
		m.orch.OnSelectionChanged(m.machine.Current()),
		m.orch.RefreshStats(),
		statsTickCmd(m.statsInterval),
		waitForEvent(m.events),
		m.spinner.Tick,
	)
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.raw.Width = msg.Width
		m.raw.Height = max(5, min(rawHeight, msg.Height/2))
		return m, nil

	case tea.KeyMsg:
		return m.handleKey(msg)

	case orchestrator.Result:
		cmd := m.orch.Apply(msg)
		m.clampCursor()
		if msg.Resource == orchestrator.ResourceSnapshot {
			m.syncRaw()
		}
		return m, cmd

	case liveEventMsg:
		cmd := m.orch.OnLiveEvent(events.Event(msg))
		return m, tea.Batch(cmd, waitForEvent(m.events))

	case streamClosedMsg:
		m.streamDown = true
		m.logger.Warn("live updates stopped")
		return m, nil

	case statsTickMsg:
		return m, tea.Batch(m.orch.RefreshStats(), statsTickCmd(m.statsInterval))

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, keys.Quit) {
		m.orch.Close()
		return m, tea.Quit
	}

	if m.showRaw {
		switch {
		case key.Matches(msg, keys.Back), key.Matches(msg, keys.RawJSON):
			m.showRaw = false
			return m, nil
		case key.Matches(msg, keys.Up), key.Matches(msg, keys.Down):
			var cmd tea.Cmd
			m.raw, cmd = m.raw.Update(msg)
			return m, cmd
		}
	}

	sel := m.machine.Current()
	var cmd tea.Cmd
	switch {
	case key.Matches(msg, keys.NextGame):
		cmd = m.changeSelection(m.machine.NextGame())
	case key.Matches(msg, keys.PrevGame):
		cmd = m.changeSelection(m.machine.PrevGame())
	case key.Matches(msg, keys.PickGame):
		if idx := int(msg.String()[0] - '1'); idx >= 0 && idx < len(game.All) {
			cmd = m.changeSelection(m.machine.SelectGame(game.All[idx]))
		}

	case key.Matches(msg, keys.ToggleMode):
		mode := selection.Archive
		if sel.Mode == selection.Archive {
			mode = selection.Latest
		}
		cmd = m.changeSelection(m.machine.SelectMode(mode))

	case key.Matches(msg, keys.Up):
		if sel.Browsing() && m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, keys.Down):
		if sel.Browsing() && m.cursor < len(m.orch.Index().Data)-1 {
			m.cursor++
		}
	case key.Matches(msg, keys.Open):
		idx := m.orch.Index()
		if sel.Browsing() && idx.Status == orchestrator.Ready && m.cursor < len(idx.Data) {
			cmd = m.changeSelection(m.machine.SelectArchiveKey(idx.Data[m.cursor].Key))
		}
	case key.Matches(msg, keys.Back):
		if sel.Viewing() {
			cmd = m.changeSelection(m.machine.SelectArchiveKey(""))
		}

	case key.Matches(msg, keys.Lang):
		m.lang = m.lang.Toggle()
		m.syncRaw()
	case key.Matches(msg, keys.RawJSON):
		m.showRaw = true
		m.syncRaw()
	case key.Matches(msg, keys.Refresh):
		if !m.refresh.Allow() {
			m.logger.Debug("refresh throttled")
			break
		}
		cmd = m.orch.Refresh()
		m.syncRaw()
	}

	return m, cmd
}

// changeSelection hands sel to the orchestrator. The archive cursor only
// survives a return from an entry to the list it was opened from.
func (m *Model) changeSelection(sel selection.Selection) tea.Cmd {
	prev := m.orch.Selection()
	if !(sel.Browsing() && prev.Viewing() && prev.Game == sel.Game) {
		m.cursor = 0
	}
	cmd := m.orch.OnSelectionChanged(sel)
	m.syncRaw()
	return cmd
}

func (m *Model) clampCursor() {
	n := len(m.orch.Index().Data)
	if m.cursor >= n {
		m.cursor = max(0, n-1)
	}
}

// syncRaw reloads the raw JSON pane from the current snapshot.
func (m *Model) syncRaw() {
	if !m.showRaw {
		return
	}
	snap := m.orch.Snapshot()
	if snap.Status != orchestrator.Ready || snap.Data == nil || len(snap.Data.Raw) == 0 {
		m.raw.SetContent(i18n.T(m.lang, i18n.NoDetails))
		return
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, snap.Data.Raw, "", "  "); err != nil {
		m.raw.SetContent(string(snap.Data.Raw))
		return
	}
	m.raw.SetContent(buf.String())
	m.raw.GotoTop()
}

func (m Model) View() string {
	return renderView(m)
}

func statsTickCmd(interval time.Duration) tea.Cmd {
	return tea.Tick(interval, func(t time.Time) tea.Msg {
		return statsTickMsg(t)
	})
}

// waitForEvent blocks on the next live event. The model re-arms it after
// each delivery; a closed channel ends the chain.
func waitForEvent(ch <-chan events.Event) tea.Cmd {
	if ch == nil {
		return nil
	}
	return func() tea.Msg {
		ev, ok := <-ch
		if !ok {
			return streamClosedMsg{}
		}
		return liveEventMsg(ev)
	}
}
