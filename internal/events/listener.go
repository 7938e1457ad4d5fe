package events

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"
)

const (
	defaultInitialBackoff = 500 * time.Millisecond
	defaultMaxBackoff     = 30 * time.Second
	maxLine               = 1 << 20
)

// ErrDisconnected is returned by Run when the stream ends and reconnecting
// is disabled.
var ErrDisconnected = errors.New("event stream disconnected")

// Listener owns one stream connection for the lifetime of a view. Create
// it when the view starts and cancel the context passed to Run when the
// view goes away.
type Listener struct {
	source         Source
	logger         *slog.Logger
	reconnect      bool
	initialBackoff time.Duration
	maxBackoff     time.Duration
	events         chan Event
}

type ListenerOption func(*Listener)

// WithReconnect re-opens the stream after a failure, backing off
// exponentially from initial up to max.
func WithReconnect(initial, max time.Duration) ListenerOption {
	return func(l *Listener) {
		l.reconnect = true
		if initial > 0 {
			l.initialBackoff = initial
		}
		if max > 0 {
			l.maxBackoff = max
		}
	}
}

func NewListener(source Source, logger *slog.Logger, opts ...ListenerOption) *Listener {
	l := &Listener{
		source:         source,
		logger:         logger.With("component", "events"),
		initialBackoff: defaultInitialBackoff,
		maxBackoff:     defaultMaxBackoff,
		events:         make(chan Event, 16),
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Events delivers parsed events. It is closed when Run returns.
func (l *Listener) Events() <-chan Event {
	return l.events
}

// Run blocks until ctx is cancelled or, without reconnect, until the first
// connection ends. Cancellation is a clean shutdown and returns nil.
func (l *Listener) Run(ctx context.Context) error {
	defer close(l.events)

	attempt := 0
	for {
		delivered, err := l.consume(ctx)
		if ctx.Err() != nil {
			l.logger.Info("event stream closed")
			return nil
		}
		if !l.reconnect {
			l.logger.Warn("event stream ended", "err", err)
			if err == nil {
				return ErrDisconnected
			}
			return fmt.Errorf("%w: %w", ErrDisconnected, err)
		}

		if delivered {
			attempt = 0
		}
		backoff := l.backoff(attempt)
		attempt++
		l.logger.Warn("event stream lost, reconnecting", "err", err, "attempt", attempt, "backoff", backoff)

		select {
		case <-ctx.Done():
			l.logger.Info("event stream closed")
			return nil
		case <-time.After(backoff):
		}
	}
}

func (l *Listener) backoff(attempt int) time.Duration {
	d := l.initialBackoff
	for i := 0; i < attempt && d < l.maxBackoff; i++ {
		d *= 2
	}
	return min(d, l.maxBackoff)
}

// consume reads one connection to its end. delivered reports whether any
// event made it through, which resets the backoff.
func (l *Listener) consume(ctx context.Context) (delivered bool, err error) {
	body, err := l.source.Open(ctx)
	if err != nil {
		return false, err
	}
	defer body.Close()

	l.logger.Info("event stream connected")

	// Unblock the scanner when the view goes away.
	stop := context.AfterFunc(ctx, func() { body.Close() })
	defer stop()

	return l.read(ctx, body)
}

// read implements the subset of the SSE wire format the backend emits:
// "data:" lines accumulate until a blank line dispatches them; comments
// and other fields are skipped.
func (l *Listener) read(ctx context.Context, r io.Reader) (bool, error) {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 4096), maxLine)

	delivered := false
	var data []string

	dispatch := func() bool {
		if len(data) == 0 {
			return true
		}
		payload := strings.Join(data, "\n")
		data = data[:0]

		ev, err := Parse([]byte(payload))
		if err != nil {
			l.logger.Warn("dropping malformed event", "err", err)
			return true
		}
		l.logger.Debug("event received", "type", ev.Type, "game", ev.Game)

		select {
		case l.events <- ev:
			delivered = true
			return true
		case <-ctx.Done():
			return false
		}
	}

	for sc.Scan() {
		line := strings.TrimSuffix(sc.Text(), "\r")
		switch {
		case line == "":
			if !dispatch() {
				return delivered, ctx.Err()
			}
		case strings.HasPrefix(line, ":"):
		case strings.HasPrefix(line, "data:"):
			data = append(data, strings.TrimPrefix(strings.TrimPrefix(line, "data:"), " "))
		}
	}
	if err := sc.Err(); err != nil {
		return delivered, err
	}
	// A final event without its trailing blank line is still delivered.
	dispatch()
	return delivered, io.EOF
}
