package events

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/selection"
)

func discardLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// fakeSource hands out one scripted stream per Open call and fails once
// the script runs out.
type fakeSource struct {
	mu      sync.Mutex
	streams []string
	opens   int
}

func (f *fakeSource) Open(ctx context.Context) (io.ReadCloser, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.opens++
	if len(f.streams) == 0 {
		return nil, errors.New("connection refused")
	}
	s := f.streams[0]
	f.streams = f.streams[1:]
	return io.NopCloser(strings.NewReader(s)), nil
}

func collect(t *testing.T, l *Listener) []Event {
	t.Helper()
	var out []Event
	for ev := range l.Events() {
		out = append(out, ev)
	}
	return out
}

func TestRelevant(t *testing.T) {
	newPatch := Event{Type: TypeNewPatch, Game: "league_of_legends"}

	tests := []struct {
		name string
		ev   Event
		sel  selection.Selection
		want bool
	}{
		{"matching latest", newPatch, selection.Selection{Game: game.LeagueOfLegends, Mode: selection.Latest}, true},
		{"archive browsing", newPatch, selection.Selection{Game: game.LeagueOfLegends, Mode: selection.Archive}, false},
		{"archive viewing", newPatch, selection.Selection{Game: game.LeagueOfLegends, Mode: selection.Archive, ArchiveKey: "k"}, false},
		{"other game", newPatch, selection.Selection{Game: game.Valorant, Mode: selection.Latest}, false},
		{"other type", Event{Type: "heartbeat", Game: "league_of_legends"}, selection.Selection{Game: game.LeagueOfLegends}, false},
		{"punctuated game id", Event{Type: TypeNewPatch, Game: "Counter-Strike.2"}, selection.Selection{Game: game.CounterStrike2}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Relevant(tt.ev, tt.sel); got != tt.want {
				t.Errorf("Relevant() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestParse(t *testing.T) {
	ev, err := Parse([]byte(`{"type":"new_patch","game":"valorant","version":"9.1"}`))
	if err != nil {
		t.Fatal(err)
	}
	if ev.Type != TypeNewPatch || ev.Game != "valorant" {
		t.Errorf("unexpected event %+v", ev)
	}

	_, err = Parse([]byte(`not json`))
	var perr *ParseError
	if !errors.As(err, &perr) {
		t.Fatalf("expected *ParseError, got %v", err)
	}
	if perr.Data != "not json" {
		t.Errorf("Data = %q", perr.Data)
	}
}

func TestListener_ParsesFramesAndDropsGarbage(t *testing.T) {
	stream := ": keep-alive\n\n" +
		"data: {\"type\":\"new_patch\",\"game\":\"valorant\"}\n\n" +
		"data: this is not json\n\n" +
		"event: message\r\n" +
		"data: {\"type\":\"new_patch\",\r\n" +
		"data: \"game\":\"roblox\"}\r\n\r\n" +
		"data: {\"type\":\"stats\",\"game\":\"fortnite\"}"
	src := &fakeSource{streams: []string{stream}}
	l := NewListener(src, discardLogger())

	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(context.Background()) }()

	got := collect(t, l)
	if len(got) != 3 {
		t.Fatalf("expected 3 events, got %d: %+v", len(got), got)
	}
	if got[0].Game != "valorant" || got[1].Game != "roblox" || got[2].Type != "stats" {
		t.Errorf("unexpected events: %+v", got)
	}

	err := <-errCh
	if !errors.Is(err, ErrDisconnected) {
		t.Errorf("expected ErrDisconnected, got %v", err)
	}
	if src.opens != 1 {
		t.Errorf("expected no reconnect, got %d opens", src.opens)
	}
}

func TestListener_ReconnectsWithBackoff(t *testing.T) {
	src := &fakeSource{streams: []string{
		"data: {\"type\":\"new_patch\",\"game\":\"valorant\"}\n\n",
		"data: {\"type\":\"new_patch\",\"game\":\"roblox\"}\n\n",
	}}
	l := NewListener(src, discardLogger(), WithReconnect(time.Millisecond, 4*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	var games []string
	for ev := range l.Events() {
		games = append(games, ev.Game)
		if len(games) == 2 {
			cancel()
		}
	}
	if err := <-errCh; err != nil {
		t.Errorf("Run after cancel = %v, want nil", err)
	}
	if len(games) != 2 || games[0] != "valorant" || games[1] != "roblox" {
		t.Errorf("games = %v", games)
	}
}

func TestListener_Backoff(t *testing.T) {
	l := NewListener(&fakeSource{}, discardLogger(), WithReconnect(100*time.Millisecond, time.Second))
	want := []time.Duration{100 * time.Millisecond, 200 * time.Millisecond, 400 * time.Millisecond, 800 * time.Millisecond, time.Second, time.Second}
	for i, w := range want {
		if got := l.backoff(i); got != w {
			t.Errorf("backoff(%d) = %s, want %s", i, got, w)
		}
	}
}

func TestListener_CancelClosesOpenStream(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Header.Get("Accept") != "text/event-stream" {
			t.Errorf("Accept = %q", r.Header.Get("Accept"))
		}
		w.Header().Set("Content-Type", "text/event-stream")
		w.Write([]byte("data: {\"type\":\"new_patch\",\"game\":\"minecraft\"}\n\n"))
		w.(http.Flusher).Flush()
		<-r.Context().Done()
	}))
	defer srv.Close()

	l := NewListener(NewHTTPSource(srv.URL), discardLogger())
	ctx, cancel := context.WithCancel(context.Background())
	errCh := make(chan error, 1)
	go func() { errCh <- l.Run(ctx) }()

	ev, ok := <-l.Events()
	if !ok || ev.Game != "minecraft" {
		t.Fatalf("first event = %+v, %v", ev, ok)
	}
	cancel()

	select {
	case err := <-errCh:
		if err != nil {
			t.Errorf("Run = %v, want nil on cancel", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("listener did not stop after cancel")
	}
	if _, ok := <-l.Events(); ok {
		t.Error("events channel not closed")
	}
}

func TestHTTPSource_RejectsNonOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	if _, err := NewHTTPSource(srv.URL).Open(context.Background()); err == nil {
		t.Fatal("expected error for 503")
	}
}
