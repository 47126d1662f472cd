package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"time"

	"github.com/alucardeht/home-display-agent/internal/logger"
)

const (
	DefaultTimeout      = 10 * time.Second
	DefaultMaxBodyBytes = 16 << 20

	truncatedMarker = " [truncated]"
)

// Request describes one outbound call. Body is JSON-encoded when non-nil.
type Request struct {
	Backend string
	Method  string
	URL     string
	Query   url.Values
	Body    any
	Timeout time.Duration
}

// Observer is notified once per request. Code is 0 when no response arrived.
type Observer interface {
	ObserveRequest(backend, method string, code int)
}

type Client struct {
	transport    http.RoundTripper
	maxBodyBytes int64
	observer     Observer
	log          *slog.Logger
}

type Option func(*Client)

// WithTransport shares rt across calls instead of a per-call transport.
func WithTransport(rt http.RoundTripper) Option {
	return func(c *Client) { c.transport = rt }
}

func WithMaxBodyBytes(n int64) Option {
	return func(c *Client) { c.maxBodyBytes = n }
}

func WithObserver(o Observer) Option {
	return func(c *Client) { c.observer = o }
}

func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.log = l }
}

func NewClient(opts ...Option) *Client {
	c := &Client{
		maxBodyBytes: DefaultMaxBodyBytes,
		log:          logger.ForComponent("backend"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do issues req once and decodes the JSON response. Numbers are kept as
// json.Number so values pass through unchanged. An empty 2xx body decodes
// to nil.
func (c *Client) Do(ctx context.Context, req Request) (any, error) {
	timeout := req.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	httpReq, err := c.newRequest(ctx, req)
	if err != nil {
		return nil, err
	}

	hc, release := c.acquire(timeout)
	defer release()

	c.log.Debug("backend request",
		"backend", req.Backend,
		"method", req.Method,
		"url", httpReq.URL.String(),
		"timeout", timeout)

	resp, err := hc.Do(httpReq)
	if err != nil {
		c.observe(req, 0)
		return nil, &NetworkError{Method: req.Method, URL: req.URL, Err: err}
	}
	defer resp.Body.Close()

	c.observe(req, resp.StatusCode)

	body, err := io.ReadAll(io.LimitReader(resp.Body, c.maxBodyBytes+1))
	if err != nil {
		return nil, &NetworkError{Method: req.Method, URL: req.URL, Err: err}
	}
	oversized := int64(len(body)) > c.maxBodyBytes
	if oversized {
		body = body[:c.maxBodyBytes]
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		text := string(body)
		if oversized {
			text += truncatedMarker
		}
		return nil, &StatusError{
			Method:     req.Method,
			URL:        httpReq.URL.String(),
			StatusCode: resp.StatusCode,
			Body:       text,
		}
	}
	if oversized {
		return nil, &BodyTooLargeError{URL: httpReq.URL.String(), Limit: c.maxBodyBytes}
	}

	c.log.Debug("backend response",
		"backend", req.Backend,
		"url", httpReq.URL.String(),
		"status", resp.StatusCode,
		"bytes", len(body))

	return decode(body)
}

func (c *Client) newRequest(ctx context.Context, req Request) (*http.Request, error) {
	u, err := url.Parse(req.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid backend url %q: %w", req.URL, err)
	}
	if len(req.Query) > 0 {
		u.RawQuery = req.Query.Encode()
	}

	var body io.Reader
	if req.Body != nil {
		data, err := json.Marshal(req.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to encode request body: %w", err)
		}
		body = bytes.NewReader(data)
	}

	httpReq, err := http.NewRequestWithContext(ctx, req.Method, u.String(), body)
	if err != nil {
		return nil, fmt.Errorf("failed to build request: %w", err)
	}

	httpReq.Header.Set("Accept", "application/json")
	if body != nil {
		httpReq.Header.Set("Content-Type", "application/json")
	}

	return httpReq, nil
}

// acquire returns an http.Client scoped to one call. Without a shared
// transport each call gets its own, and release drops its connections.
func (c *Client) acquire(timeout time.Duration) (*http.Client, func()) {
	if c.transport != nil {
		return &http.Client{Transport: c.transport, Timeout: timeout}, func() {}
	}

	tr := http.DefaultTransport.(*http.Transport).Clone()
	return &http.Client{Transport: tr, Timeout: timeout}, tr.CloseIdleConnections
}

func (c *Client) observe(req Request, code int) {
	if c.observer != nil {
		c.observer.ObserveRequest(req.Backend, req.Method, code)
	}
}

func decode(body []byte) (any, error) {
	if len(bytes.TrimSpace(body)) == 0 {
		return nil, nil
	}

	dec := json.NewDecoder(bytes.NewReader(body))
	dec.UseNumber()

	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, errors.New("failed to decode response: trailing data after JSON value")
	}
	return v, nil
}
