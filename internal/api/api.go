package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/marcin-skalski/patchwatch/internal/game"
	"github.com/marcin-skalski/patchwatch/internal/patch"
)

const DefaultTimeout = 10 * time.Second

// maxBody caps how much of a response is read. Snapshots are a few KB.
const maxBody = 8 << 20

type Client struct {
	baseURL string
	http    *http.Client
	timeout time.Duration
	logger  *slog.Logger
}

type Option func(*Client)

// WithHTTPClient replaces the transport. The client's own Timeout is left
// alone; per-call deadlines come from WithTimeout.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.http = hc }
}

func WithTimeout(d time.Duration) Option {
	return func(c *Client) {
		if d > 0 {
			c.timeout = d
		}
	}
}

func NewClient(baseURL string, logger *slog.Logger, opts ...Option) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		timeout: DefaultTimeout,
		logger:  logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

func (c *Client) BaseURL() string {
	return c.baseURL
}

func (c *Client) GetLatest(ctx context.Context, g game.Game) (*patch.Snapshot, error) {
	body, err := c.get(ctx, "/public/patches", url.Values{"game": {g.String()}})
	if err != nil {
		return nil, err
	}
	s, err := patch.Decode(body)
	if err != nil {
		return nil, decodeError("latest patch", body, err)
	}
	return s, nil
}

func (c *Client) GetArchiveIndex(ctx context.Context, g game.Game) (patch.ArchiveIndex, error) {
	body, err := c.get(ctx, "/public/patches/history", url.Values{"game": {g.String()}})
	if err != nil {
		return nil, err
	}
	idx, err := patch.DecodeArchiveIndex(body)
	if err != nil {
		return nil, decodeError("archive index", body, err)
	}
	return idx, nil
}

func (c *Client) GetArchiveDetail(ctx context.Context, key string) (*patch.Snapshot, error) {
	body, err := c.get(ctx, "/public/patches/archive", url.Values{"key": {key}})
	if err != nil {
		return nil, err
	}
	s, err := patch.Decode(body)
	if err != nil {
		return nil, decodeError("archived patch", body, err)
	}
	return s, nil
}

func (c *Client) GetStats(ctx context.Context) (*patch.Stats, error) {
	body, err := c.get(ctx, "/public/stats", nil)
	if err != nil {
		return nil, err
	}
	var s patch.Stats
	if err := json.Unmarshal(body, &s); err != nil {
		return nil, decodeError("stats", body, err)
	}
	return &s, nil
}

// get performs one GET with the per-call deadline. Every failure is a
// *RemoteError.
func (c *Client) get(ctx context.Context, path string, params url.Values) ([]byte, error) {
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	u := c.baseURL + path
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, &RemoteError{Raw: fmt.Sprintf("create request: %v", err)}
	}
	reqID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-ID", reqID)

	logger := c.logger.With("path", path, "request_id", reqID)
	start := time.Now()

	resp, err := c.http.Do(req)
	if err != nil {
		rerr := transportError(err, c.timeout)
		logger.Warn("request failed", "err", rerr, "timeout", rerr.Timeout, "elapsed", time.Since(start))
		return nil, rerr
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		rerr := transportError(err, c.timeout)
		rerr.Status = resp.StatusCode
		logger.Warn("read response failed", "status", resp.StatusCode, "err", rerr)
		return nil, rerr
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		rerr := statusError(resp.StatusCode, body)
		logger.Warn("request rejected", "status", resp.StatusCode, "detail", rerr.Detail)
		return nil, rerr
	}

	logger.Debug("request done", "status", resp.StatusCode, "bytes", len(body), "elapsed", time.Since(start))
	return body, nil
}

func transportError(err error, timeout time.Duration) *RemoteError {
	if isTimeout(err) {
		return &RemoteError{
			Raw:     fmt.Sprintf("request timed out after %s", timeout),
			Timeout: true,
		}
	}
	return &RemoteError{Raw: err.Error()}
}

func isTimeout(err error) bool {
	if errors.Is(err, context.DeadlineExceeded) {
		return true
	}
	var netErr net.Error
	return errors.As(err, &netErr) && netErr.Timeout()
}

func statusError(status int, body []byte) *RemoteError {
	rerr := &RemoteError{Status: status}
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if json.Unmarshal(body, &payload) == nil && len(payload.Detail) > 0 {
		var s string
		if json.Unmarshal(payload.Detail, &s) == nil {
			rerr.Detail = s
		} else if string(payload.Detail) != "null" {
			// FastAPI validation errors carry a list here.
			rerr.Detail = string(payload.Detail)
		}
	}
	if rerr.Detail == "" {
		rerr.Raw = fmt.Sprintf("request failed with status code %d", status)
	}
	return rerr
}

func decodeError(what string, body []byte, err error) *RemoteError {
	if errors.Is(err, patch.ErrEmpty) {
		return &RemoteError{Raw: err.Error(), Body: truncate(string(body), 200)}
	}
	return &RemoteError{Raw: fmt.Sprintf("decode %s: %v", what, err), Body: truncate(string(body), 200)}
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
