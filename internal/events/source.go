package events

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
)

// Source opens one connection to an event stream. The listener calls Open
// again when it reconnects.
type Source interface {
	Open(ctx context.Context) (io.ReadCloser, error)
}

// HTTPSource reads server-sent events from the backend's /events endpoint.
type HTTPSource struct {
	url    string
	client *http.Client
}

// NewHTTPSource uses a client without a timeout; the stream is expected
// to stay open and is bounded by ctx instead.
func NewHTTPSource(baseURL string) *HTTPSource {
	return &HTTPSource{
		url:    strings.TrimRight(baseURL, "/") + "/events",
		client: &http.Client{},
	}
}

func (s *HTTPSource) Open(ctx context.Context) (io.ReadCloser, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.url, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Accept", "text/event-stream")
	req.Header.Set("Cache-Control", "no-cache")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", s.url, err)
	}
	if resp.StatusCode != http.StatusOK {
		resp.Body.Close()
		return nil, fmt.Errorf("connect %s: status %d", s.url, resp.StatusCode)
	}
	return resp.Body, nil
}
