package daemon

import (
	"bytes"
	"context"
	"errors"
	"io"
	"log/slog"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/marcin-skalski/patchwatch/internal/events"
	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/i18n"
	"github.com/marcin-skalski/patchwatch/internal/orchestrator"
	"github.com/marcin-skalski/patchwatch/internal/patch"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

type syncBuffer struct {
	mu sync.Mutex
	b  bytes.Buffer
}

func (s *syncBuffer) Write(p []byte) (int, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.Write(p)
}

func (s *syncBuffer) String() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.b.String()
}

type fakeClient struct {
	latest atomic.Int32
	stats  atomic.Int32
	fail   atomic.Bool
}

func (f *fakeClient) GetLatest(ctx context.Context, g game.Game) (*patch.Snapshot, error) {
	n := f.latest.Add(1)
	if f.fail.Load() {
		return nil, errors.New("backend down")
	}
	score := 4.0
	return &patch.Snapshot{
		PatchVersion: "v" + string(rune('0'+n)),
		ImpactScore:  &score,
		ImpactLabel:  patch.ImpactMedium,
		Changes: []patch.Change{
			{Type: patch.Nerf, Target: "Creeper", Details: i18n.Text{Plain: "Smaller blast"}},
			{Type: patch.Buff, Target: "Elytra", Details: i18n.Text{ByLang: map[string]string{"en": "Faster glide"}}},
		},
	}, nil
}

func (f *fakeClient) GetArchiveIndex(ctx context.Context, g game.Game) (patch.ArchiveIndex, error) {
	return patch.ArchiveIndex{}, nil
}

func (f *fakeClient) GetArchiveDetail(ctx context.Context, key string) (*patch.Snapshot, error) {
	return nil, errors.New("not used")
}

func (f *fakeClient) GetStats(ctx context.Context) (*patch.Stats, error) {
	f.stats.Add(1)
	return &patch.Stats{TotalRequestsAnalyzed: 3}, nil
}

func waitFor(t *testing.T, what string, cond func() bool) {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for !cond() {
		if time.Now().After(deadline) {
			t.Fatalf("timed out waiting for %s", what)
		}
		time.Sleep(5 * time.Millisecond)
	}
}

func start(t *testing.T, fc *fakeClient, opts Options) (*syncBuffer, context.CancelFunc, <-chan error) {
	t.Helper()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &syncBuffer{}
	opts.Out = out

	ctx, cancel := context.WithCancel(context.Background())
	d := New(orchestrator.New(ctx, fc, logger), opts, logger)
	errCh := make(chan error, 1)
	go func() { errCh <- d.Run(ctx) }()
	return out, cancel, errCh
}

func stop(t *testing.T, cancel context.CancelFunc, errCh <-chan error) {
	t.Helper()
	cancel()
	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run = %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("daemon did not stop")
	}
}

func TestRun_ReportsLatestAndFollowsEvents(t *testing.T) {
	fc := &fakeClient{}
	ch := make(chan events.Event)
	out, cancel, errCh := start(t, fc, Options{Game: game.Minecraft, Events: ch})

	waitFor(t, "first report", func() bool { return strings.Contains(out.String(), "v1") })

	ch <- events.Event{Type: events.TypeNewPatch, Game: "roblox"}
	ch <- events.Event{Type: events.TypeNewPatch, Game: "minecraft"}
	waitFor(t, "second report", func() bool { return strings.Contains(out.String(), "v2") })
	stop(t, cancel, errCh)

	if n := fc.latest.Load(); n != 2 {
		t.Errorf("latest fetches = %d, want 2", n)
	}
	if fc.stats.Load() != 1 {
		t.Errorf("stats fetches = %d, want 1", fc.stats.Load())
	}

	report := out.String()
	for _, want := range []string{
		"== Latest Data for Minecraft v1 ==",
		"Patch Impact Score: 4 / 10 (Medium)",
		"[buff] Elytra: Faster glide",
		"[nerf] Creeper: Smaller blast",
	} {
		if !strings.Contains(report, want) {
			t.Errorf("report missing %q\n%s", want, report)
		}
	}
	if strings.Index(report, "[buff]") > strings.Index(report, "[nerf]") {
		t.Error("buffs must be reported before nerfs")
	}
}

func TestRun_ReportsFailureAndClosedStream(t *testing.T) {
	fc := &fakeClient{}
	fc.fail.Store(true)
	ch := make(chan events.Event)
	close(ch)
	out, cancel, errCh := start(t, fc, Options{Game: game.Fortnite, Events: ch})

	waitFor(t, "failure report", func() bool {
		s := out.String()
		return strings.Contains(s, "Failed to fetch latest data: backend down") &&
			strings.Contains(s, "live updates disconnected")
	})
	stop(t, cancel, errCh)
}

func TestRun_StatsTick(t *testing.T) {
	fc := &fakeClient{}
	_, cancel, errCh := start(t, fc, Options{StatsInterval: 10 * time.Millisecond})

	waitFor(t, "stats refresh", func() bool { return fc.stats.Load() >= 3 })
	stop(t, cancel, errCh)
}

func TestHandle_StaleResultAfterFreshIsNotReported(t *testing.T) {
	fc := &fakeClient{}
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	out := &syncBuffer{}
	ctx := context.Background()
	d := New(orchestrator.New(ctx, fc, logger), Options{Game: game.Valorant, Out: out}, logger)

	sel := selection.New(game.Valorant).Current()
	stale := d.orch.OnSelectionChanged(sel)
	fresh := d.orch.OnSelectionChanged(sel)
	staleRes := stale().(orchestrator.Result)
	freshRes := fresh().(orchestrator.Result)

	d.handle(ctx, freshRes)
	d.handle(ctx, staleRes)

	report := out.String()
	if n := strings.Count(report, "== Latest Data for"); n != 1 {
		t.Errorf("snapshot reported %d times, want 1\n%s", n, report)
	}
	if !strings.Contains(report, "Valorant v2") || strings.Contains(report, "v1") {
		t.Errorf("report should show only the fresh snapshot\n%s", report)
	}
	if s := d.orch.Snapshot(); s.Status != orchestrator.Ready || s.Data.PatchVersion != "v2" {
		t.Errorf("snapshot = %+v", s)
	}
}
