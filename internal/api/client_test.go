package api

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/sentineleye/dashboard/pkg/config"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/logger"
	"github.com/sentineleye/dashboard/pkg/metrics"
	"github.com/sentineleye/dashboard/pkg/tracing"
)

// newTestClient starts a mock backend and a client pointed at it.
func newTestClient(t *testing.T, h http.HandlerFunc, opts ...Option) *Client {
	t.Helper()
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	c, err := New(srv.URL, 2*time.Second, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return c
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

func counterValue(t *testing.T, reg *prometheus.Registry, name string, labels map[string]string) float64 {
	t.Helper()
	families, err := reg.Gather()
	if err != nil {
		t.Fatalf("gather: %v", err)
	}
	for _, fam := range families {
		if fam.GetName() != name {
			continue
		}
	metric:
		for _, m := range fam.GetMetric() {
			for _, lp := range m.GetLabel() {
				if want, ok := labels[lp.GetName()]; ok && want != lp.GetValue() {
					continue metric
				}
			}
			return m.GetCounter().GetValue()
		}
	}
	return 0
}

func TestNewRejectsRelativeBase(t *testing.T) {
	if _, err := New("/api", time.Second); !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("expected ErrInvalidInput, got %v", err)
	}
}

func TestNewDefaultsTimeout(t *testing.T) {
	c, err := New("http://127.0.0.1:8888/", 0)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if c.http.Timeout != DefaultTimeout {
		t.Errorf("timeout = %v", c.http.Timeout)
	}
	if c.BaseURL() != "http://127.0.0.1:8888" {
		t.Errorf("base url = %s", c.BaseURL())
	}
}

type headerTransport struct {
	base http.RoundTripper
}

func (h headerTransport) RoundTrip(r *http.Request) (*http.Response, error) {
	r = r.Clone(r.Context())
	r.Header.Set("X-Client", "dashboard")
	return h.base.RoundTrip(r)
}

func TestWithHTTPClientLeavesCallerUntouched(t *testing.T) {
	shared := &http.Client{Timeout: time.Minute, Transport: headerTransport{base: http.DefaultTransport}}

	var seen string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		seen = r.Header.Get("X-Client")
		writeJSON(w, http.StatusOK, map[string]string{"status": "healthy"})
	}, WithHTTPClient(shared))

	if shared.Timeout != time.Minute {
		t.Errorf("caller's client timeout changed to %v", shared.Timeout)
	}
	if c.http == shared || c.http.Timeout != 2*time.Second {
		t.Errorf("facade client = %p timeout %v, want a copy with the facade timeout", c.http, c.http.Timeout)
	}
	if _, err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if seen != "dashboard" {
		t.Errorf("custom transport not used, X-Client = %q", seen)
	}
}

func TestFromConfigProductionUsesAPIPrefix(t *testing.T) {
	var gotPath string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	}))
	defer srv.Close()

	cfg := &config.Config{
		Environment: config.EnvProduction,
		API:         config.APIConfig{Origin: srv.URL, Timeout: time.Second},
	}
	c, err := FromConfig(cfg)
	if err != nil {
		t.Fatalf("FromConfig: %v", err)
	}
	if _, err := c.HealthCheck(context.Background()); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	if gotPath != "/api/health" {
		t.Errorf("path = %s, want /api/health", gotPath)
	}
}

func TestErrorStatusPassesThrough(t *testing.T) {
	body := `{"detail":"关键词已存在"}`
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusBadRequest)
		io.WriteString(w, body)
	})

	_, err := c.AddKeyword(context.Background(), "蓝屏")
	if !errors.Is(err, apperrors.ErrHTTPStatus) || !errors.Is(err, apperrors.ErrInvalidInput) {
		t.Fatalf("unexpected error chain: %v", err)
	}
	var appErr *apperrors.AppError
	if !errors.As(err, &appErr) {
		t.Fatalf("expected AppError, got %T", err)
	}
	if appErr.StatusCode != http.StatusBadRequest {
		t.Errorf("status = %d", appErr.StatusCode)
	}
	if string(appErr.Body) != body {
		t.Errorf("body modified: %q", appErr.Body)
	}
	if appErr.Message != "关键词已存在" {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestServerErrorWithoutDetail(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "upstream exploded", http.StatusBadGateway)
	})
	_, err := c.GetKeywords(context.Background())
	if apperrors.StatusCode(err) != http.StatusBadGateway {
		t.Fatalf("status = %d (%v)", apperrors.StatusCode(err), err)
	}
	var appErr *apperrors.AppError
	errors.As(err, &appErr)
	if appErr.Message != http.StatusText(http.StatusBadGateway) {
		t.Errorf("message = %q", appErr.Message)
	}
}

func TestTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	c, err := New(base, time.Second)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.GetKeywords(context.Background())
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
	if apperrors.StatusCode(err) != 0 {
		t.Errorf("transport errors carry no status")
	}
}

func TestTimeoutIsTransportFailure(t *testing.T) {
	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := New(srv.URL, 50*time.Millisecond)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	_, err = c.HealthCheck(context.Background())
	if !errors.Is(err, apperrors.ErrTransport) {
		t.Fatalf("expected ErrTransport, got %v", err)
	}
}

func TestContextCancellation(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, []string{})
	})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := c.GetKeywords(ctx)
	if !errors.Is(err, apperrors.ErrTransport) || !errors.Is(err, context.Canceled) {
		t.Fatalf("expected cancelled transport error, got %v", err)
	}
}

func TestUndecodableBody(t *testing.T) {
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		io.WriteString(w, "<html>proxy error</html>")
	})
	_, err := c.GetKeywords(context.Background())
	if !errors.Is(err, apperrors.ErrDecode) {
		t.Fatalf("expected ErrDecode, got %v", err)
	}
}

func TestMetricsRecorded(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.New(reg)
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/keywords" {
			writeJSON(w, http.StatusOK, []string{"a"})
			return
		}
		writeJSON(w, http.StatusNotFound, map[string]string{"detail": "Not Found"})
	}, WithMetrics(m))

	ctx := context.Background()
	c.GetKeywords(ctx)
	c.GetKeywords(ctx)
	c.GetAllFeedbacks(ctx)

	if got := counterValue(t, reg, "api_client_requests_total", map[string]string{"operation": "getKeywords", "status": "200"}); got != 2 {
		t.Errorf("getKeywords 200 = %v", got)
	}
	if got := counterValue(t, reg, "api_client_requests_total", map[string]string{"operation": "getAllFeedbacks", "status": "404"}); got != 1 {
		t.Errorf("getAllFeedbacks 404 = %v", got)
	}
}

func TestRequestIDAndSpanPropagate(t *testing.T) {
	var gotID string
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		gotID = r.Header.Get("X-Request-ID")
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	ctx := logger.WithRequestID(context.Background(), "req-42")
	ctx, root := tracing.StartSpan(ctx, "test", "")
	if _, err := c.HealthCheck(ctx); err != nil {
		t.Fatalf("HealthCheck: %v", err)
	}
	root.End()

	if gotID != "req-42" {
		t.Errorf("X-Request-ID = %q", gotID)
	}
	if len(root.Children) != 1 || root.Children[0].Name != "api.healthCheck" {
		t.Fatalf("expected one api.healthCheck child span, got %+v", root.Children)
	}
	if root.Children[0].Attrs["status"] != http.StatusOK {
		t.Errorf("span status attr = %v", root.Children[0].Attrs["status"])
	}
}
