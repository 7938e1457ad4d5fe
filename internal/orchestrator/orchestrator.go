// Package orchestrator decides which backend resources the current
// selection needs, issues the requests as deferred commands, and owns the
// resulting fetch state.
//
// All methods must be called from the single event-loop goroutine. The
// commands they return do the I/O elsewhere and report back through a
// Result message, which the loop hands to Apply. Every request is tagged
// with a per-resource generation; a Result whose generation is no longer
// current is dropped, so the last selection always wins regardless of
// response order.
package orchestrator

import (
	"context"
	"errors"
	"log/slog"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/marcin-skalski/patchwatch/internal/api"
	"github.com/marcin-skalski/patchwatch/internal/events"
	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/patch"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

// Client is the subset of api.Client the orchestrator uses.
type Client interface {
	GetLatest(ctx context.Context, g game.Game) (*patch.Snapshot, error)
	GetArchiveIndex(ctx context.Context, g game.Game) (patch.ArchiveIndex, error)
	GetArchiveDetail(ctx context.Context, key string) (*patch.Snapshot, error)
	GetStats(ctx context.Context) (*patch.Stats, error)
}

var errEmptyResponse = errors.New("empty response")

// Result carries a finished request back to the event loop.
type Result struct {
	Resource Resource
	Gen      uint64

	Snapshot *patch.Snapshot
	Index    patch.ArchiveIndex
	Stats    *patch.Stats
	Err      error
}

type Orchestrator struct {
	client Client
	logger *slog.Logger
	ctx    context.Context

	sel selection.Selection

	snapshot  FetchState[*patch.Snapshot]
	index     FetchState[patch.ArchiveIndex]
	indexGame game.Game
	stats     FetchState[*patch.Stats]

	gens    [numResources]uint64
	cancels [numResources]context.CancelFunc

	// pendingKey is an archive entry whose detail request waits for the
	// in-flight index request to finish.
	pendingKey string
}

// New binds request lifetimes to ctx; cancelling it aborts everything in
// flight.
func New(ctx context.Context, client Client, logger *slog.Logger) *Orchestrator {
	return &Orchestrator{
		client: client,
		logger: logger.With("component", "orchestrator"),
		ctx:    ctx,
	}
}

func (o *Orchestrator) Selection() selection.Selection       { return o.sel }
func (o *Orchestrator) Snapshot() FetchState[*patch.Snapshot] { return o.snapshot }
func (o *Orchestrator) Index() FetchState[patch.ArchiveIndex] { return o.index }
func (o *Orchestrator) Stats() FetchState[*patch.Stats]       { return o.stats }

// OnSelectionChanged issues the fetches sel implies:
//
//	Latest           latest snapshot for the game
//	ArchiveBrowsing  archive index for the game
//	ArchiveViewing   archive detail for the key, after any in-flight index
//
// Closing an entry keeps the index of its game if it is loaded or still
// loading. Every other way into browsing fetches the index again.
func (o *Orchestrator) OnSelectionChanged(sel selection.Selection) tea.Cmd {
	prev := o.sel
	o.sel = sel
	o.pendingKey = ""
	o.logger.Debug("selection changed", "from", prev.String(), "to", sel.String())

	switch {
	case sel.Mode == selection.Latest:
		o.reset(ResourceIndex)
		return o.fetchLatest()

	case sel.Browsing():
		o.reset(ResourceSnapshot)
		if prev.Viewing() && prev.Game == sel.Game && o.indexUsable(sel.Game) {
			return nil
		}
		return o.fetchIndex()

	default:
		if o.index.Status == Loading {
			o.reset(ResourceSnapshot)
			o.snapshot = loading[*patch.Snapshot]()
			o.pendingKey = sel.ArchiveKey
			o.logger.Debug("archive detail deferred until index arrives", "key", sel.ArchiveKey)
			return nil
		}
		return o.fetchDetail(sel.ArchiveKey)
	}
}

// Refresh re-issues the current selection's primary request. It is the
// only retry path after a failure besides changing the selection.
func (o *Orchestrator) Refresh() tea.Cmd {
	switch {
	case o.sel.Mode == selection.Latest:
		return o.fetchLatest()
	case o.sel.Browsing():
		return o.fetchIndex()
	default:
		if o.index.Status == Loading {
			o.pendingKey = o.sel.ArchiveKey
			return nil
		}
		return o.fetchDetail(o.sel.ArchiveKey)
	}
}

// OnLiveEvent re-fetches the latest snapshot when ev invalidates it.
// Anything else is ignored.
func (o *Orchestrator) OnLiveEvent(ev events.Event) tea.Cmd {
	if !events.Relevant(ev, o.sel) {
		o.logger.Debug("ignoring live event", "type", ev.Type, "game", ev.Game, "selection", o.sel.String())
		return nil
	}
	o.logger.Info("new patch announced, refreshing", "game", o.sel.Game.String())
	return o.fetchLatest()
}

func (o *Orchestrator) RefreshStats() tea.Cmd {
	ctx, gen := o.begin(ResourceStats)
	o.stats = loading[*patch.Stats]()
	client := o.client
	return func() tea.Msg {
		s, err := client.GetStats(ctx)
		return Result{Resource: ResourceStats, Gen: gen, Stats: s, Err: err}
	}
}

// Current reports whether r answers the latest request for its resource.
// Apply ignores results that are not current.
func (o *Orchestrator) Current(r Result) bool {
	return r.Resource >= 0 && r.Resource < numResources && r.Gen == o.gens[r.Resource]
}

// Apply folds a finished request into the fetch state. Stale results are
// discarded without touching anything. The returned command, if any, is
// a detail request that was waiting for the index.
func (o *Orchestrator) Apply(r Result) tea.Cmd {
	if !o.Current(r) {
		o.logger.Debug("discarding stale result", "resource", r.Resource.String(), "gen", r.Gen)
		return nil
	}
	o.release(r.Resource)

	switch r.Resource {
	case ResourceSnapshot:
		if r.Err == nil && r.Snapshot == nil {
			r.Err = errEmptyResponse
		}
		if r.Err != nil {
			o.snapshot = failed[*patch.Snapshot](api.Message(r.Err))
			o.logger.Warn("snapshot fetch failed", "selection", o.sel.String(), "err", r.Err)
			return nil
		}
		o.snapshot = ready(r.Snapshot)
		o.logger.Debug("snapshot ready", "selection", o.sel.String(), "changes", len(r.Snapshot.Changes))

	case ResourceIndex:
		if r.Err != nil {
			o.index = failed[patch.ArchiveIndex](api.Message(r.Err))
			o.logger.Warn("archive index fetch failed", "game", o.indexGame.String(), "err", r.Err)
		} else {
			idx := r.Index
			if idx == nil {
				idx = patch.ArchiveIndex{}
			}
			o.index = ready(idx)
			o.logger.Debug("archive index ready", "game", o.indexGame.String(), "entries", len(idx))
		}
		if key := o.pendingKey; key != "" {
			o.pendingKey = ""
			return o.fetchDetail(key)
		}

	case ResourceStats:
		if r.Err != nil {
			o.stats = failed[*patch.Stats](api.Message(r.Err))
			o.logger.Warn("stats fetch failed", "err", r.Err)
			return nil
		}
		o.stats = ready(r.Stats)
	}
	return nil
}

// Close aborts every in-flight request. Their results, if delivered, are
// stale.
func (o *Orchestrator) Close() {
	for r := Resource(0); r < numResources; r++ {
		o.reset(r)
	}
}

func (o *Orchestrator) fetchLatest() tea.Cmd {
	ctx, gen := o.begin(ResourceSnapshot)
	o.snapshot = loading[*patch.Snapshot]()
	g, client := o.sel.Game, o.client
	o.logger.Debug("fetching latest snapshot", "game", g.String(), "gen", gen)
	return func() tea.Msg {
		s, err := client.GetLatest(ctx, g)
		return Result{Resource: ResourceSnapshot, Gen: gen, Snapshot: s, Err: err}
	}
}

func (o *Orchestrator) fetchIndex() tea.Cmd {
	ctx, gen := o.begin(ResourceIndex)
	o.index = loading[patch.ArchiveIndex]()
	o.indexGame = o.sel.Game
	g, client := o.sel.Game, o.client
	o.logger.Debug("fetching archive index", "game", g.String(), "gen", gen)
	return func() tea.Msg {
		idx, err := client.GetArchiveIndex(ctx, g)
		return Result{Resource: ResourceIndex, Gen: gen, Index: idx, Err: err}
	}
}

func (o *Orchestrator) fetchDetail(key string) tea.Cmd {
	ctx, gen := o.begin(ResourceSnapshot)
	o.snapshot = loading[*patch.Snapshot]()
	client := o.client
	o.logger.Debug("fetching archive detail", "key", key, "gen", gen)
	return func() tea.Msg {
		s, err := client.GetArchiveDetail(ctx, key)
		return Result{Resource: ResourceSnapshot, Gen: gen, Snapshot: s, Err: err}
	}
}

func (o *Orchestrator) indexUsable(g game.Game) bool {
	return o.indexGame == g && (o.index.Status == Loading || o.index.Status == Ready)
}

// begin supersedes whatever is in flight for r and returns the context
// and generation for the new request.
func (o *Orchestrator) begin(r Resource) (context.Context, uint64) {
	o.release(r)
	o.gens[r]++
	ctx, cancel := context.WithCancel(o.ctx)
	o.cancels[r] = cancel
	return ctx, o.gens[r]
}

// reset invalidates r and returns it to Idle.
func (o *Orchestrator) reset(r Resource) {
	o.release(r)
	o.gens[r]++
	switch r {
	case ResourceSnapshot:
		o.snapshot = FetchState[*patch.Snapshot]{}
	case ResourceIndex:
		o.index = FetchState[patch.ArchiveIndex]{}
		o.indexGame = 0
	case ResourceStats:
		o.stats = FetchState[*patch.Stats]{}
	}
}

func (o *Orchestrator) release(r Resource) {
	if cancel := o.cancels[r]; cancel != nil {
		cancel()
		o.cancels[r] = nil
	}
}
