// Package api is the typed facade over the SentinelEye feedback backend.
// Every method maps one named operation onto one HTTP request against a base
// URL fixed at construction. There is no caching, deduplication, batching or
// retrying: each call issues a fresh request and every failure is returned
// to the caller after being logged once.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/sentineleye/dashboard/pkg/config"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/metrics"
	"github.com/sentineleye/dashboard/pkg/tracing"
)

// DefaultTimeout applies when New is given a non-positive timeout.
const DefaultTimeout = 10 * time.Second

// Client holds the immutable request configuration shared by all calls. It
// is safe for concurrent use.
type Client struct {
	baseURL string
	http    *http.Client
	metrics *metrics.Metrics
	logger  *slog.Logger
	debug   bool
}

// Option customizes a Client at construction.
type Option func(*Client)

// WithHTTPClient uses a copy of hc for every request, so its Transport,
// Jar and redirect policy apply. The copy's Timeout is the facade timeout;
// hc itself is left untouched.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) {
		cp := *hc
		c.http = &cp
	}
}

// WithMetrics records per-operation request counts and latency.
func WithMetrics(m *metrics.Metrics) Option {
	return func(c *Client) { c.metrics = m }
}

// WithLogger replaces the component logger.
func WithLogger(l *slog.Logger) Option {
	return func(c *Client) { c.logger = l }
}

// WithDebug logs every outgoing request at debug level.
func WithDebug(enabled bool) Option {
	return func(c *Client) { c.debug = enabled }
}

// New creates a Client for baseURL. baseURL must be absolute; a trailing
// slash is ignored.
func New(baseURL string, timeout time.Duration, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parsing base url %q: %w", baseURL, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, apperrors.Newf(apperrors.ErrInvalidInput, 0, "base url %q must be absolute", baseURL)
	}
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{},
		logger:  logger.WithComponent("api-client"),
	}
	for _, opt := range opts {
		opt(c)
	}
	c.http.Timeout = timeout
	return c, nil
}

// FromConfig builds a Client from the resolved base URL and timeout in cfg.
// Development environments get request-level debug logging.
func FromConfig(cfg *config.Config, opts ...Option) (*Client, error) {
	opts = append([]Option{WithDebug(cfg.IsDevelopment())}, opts...)
	return New(cfg.ResolveBaseURL(), cfg.API.Timeout, opts...)
}

// BaseURL returns the URL every request path is resolved against.
func (c *Client) BaseURL() string {
	return c.baseURL
}

type call struct {
	op     string
	method string
	path   string
	query  url.Values
	body   any
}

type response struct {
	status int
	header http.Header
	body   []byte
}

// exchange performs one HTTP round trip. It is the single place where
// failures are logged and converted into AppErrors.
func (c *Client) exchange(ctx context.Context, cl call) (*response, error) {
	ctx, span := tracing.StartChildSpan(ctx, "api."+cl.op)
	defer span.End()
	span.SetAttr("method", cl.method)
	span.SetAttr("path", cl.path)

	endpoint := c.baseURL + cl.path
	if len(cl.query) > 0 {
		endpoint += "?" + cl.query.Encode()
	}

	var payload io.Reader
	if cl.body != nil {
		data, err := json.Marshal(cl.body)
		if err != nil {
			return nil, fmt.Errorf("%s: encoding request body: %w", cl.op, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, cl.method, endpoint, payload)
	if err != nil {
		return nil, fmt.Errorf("%s: building request: %w", cl.op, err)
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if id := logger.RequestID(ctx); id != "" {
		req.Header.Set("X-Request-ID", id)
	}

	log := logger.FromContext(ctx, c.logger).With("operation", cl.op, "method", cl.method, "path", cl.path)
	if c.debug {
		log.Debug("request", "url", endpoint)
	}

	start := time.Now()
	resp, err := c.http.Do(req)
	if err != nil {
		c.observe(cl.op, "transport", start)
		span.SetAttr("error", err.Error())
		log.Error("api request failed", "error", err)
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, apperrors.Transport(err))
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		c.observe(cl.op, "transport", start)
		span.SetAttr("error", err.Error())
		log.Error("reading api response failed", "status", resp.StatusCode, "error", err)
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, apperrors.Transport(err))
	}
	c.observe(cl.op, strconv.Itoa(resp.StatusCode), start)
	span.SetAttr("status", resp.StatusCode)

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		appErr := apperrors.FromStatus(resp.StatusCode, errorDetail(resp.StatusCode, body), body)
		log.Error("api returned error status", "status", resp.StatusCode, "detail", appErr.Message)
		return nil, fmt.Errorf("%s %s: %w", cl.method, cl.path, appErr)
	}

	return &response{status: resp.StatusCode, header: resp.Header, body: body}, nil
}

func (c *Client) observe(op, status string, start time.Time) {
	if c.metrics == nil {
		return
	}
	c.metrics.APIRequestsTotal.WithLabelValues(op, status).Inc()
	c.metrics.APIRequestDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
}

// doJSON performs cl and decodes a JSON body into out. A nil out discards
// the body.
func (c *Client) doJSON(ctx context.Context, cl call, out any) error {
	resp, err := c.exchange(ctx, cl)
	if err != nil {
		return err
	}
	if out == nil || len(bytes.TrimSpace(resp.body)) == 0 {
		return nil
	}
	if err := json.Unmarshal(resp.body, out); err != nil {
		c.logger.Error("api response not decodable", "operation", cl.op, "error", err)
		return fmt.Errorf("%s %s: %w", cl.method, cl.path,
			&apperrors.AppError{Err: apperrors.ErrDecode, Cause: err, Message: err.Error(), StatusCode: resp.status, Body: resp.body})
	}
	return nil
}

// errorDetail extracts the FastAPI {"detail": ...} message when present.
func errorDetail(status int, body []byte) string {
	var payload struct {
		Detail json.RawMessage `json:"detail"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && len(payload.Detail) > 0 {
		var s string
		if err := json.Unmarshal(payload.Detail, &s); err == nil {
			return s
		}
		return string(payload.Detail)
	}
	return http.StatusText(status)
}
