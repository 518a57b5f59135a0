package router

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	gwhandler "github.com/sentineleye/dashboard/internal/gateway/handler"
	"github.com/sentineleye/dashboard/internal/gateway/ratelimit"
	"github.com/sentineleye/dashboard/pkg/config"
	"github.com/sentineleye/dashboard/pkg/health"
	"github.com/sentineleye/dashboard/pkg/metrics"
)

func newTestServer(t *testing.T, backendURL string, rateLimit int) http.Handler {
	t.Helper()

	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "index.html"), []byte("<div id=app></div>"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := os.MkdirAll(filepath.Join(dir, "assets"), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, "assets", "app.js"), []byte("console.log(1)"), 0o644); err != nil {
		t.Fatal(err)
	}

	h, err := gwhandler.New(gwhandler.Config{BackendURL: backendURL, StaticDir: dir})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	limiter := ratelimit.New(time.Minute)
	t.Cleanup(limiter.Close)

	reg := prometheus.NewRegistry()
	srv, err := New(h, health.NewChecker(), limiter, metrics.New(reg), config.DashboardConfig{
		AllowOrigins:   []string{"http://localhost:5173"},
		RateLimit:      rateLimit,
		TrustedProxies: []string{"192.0.2.0/24"},
	}, metrics.Handler(reg))
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	return srv
}

func serve(h http.Handler, method, target string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestProxyStripsAPIPrefix(t *testing.T) {
	var gotPath, gotEscaped, gotQuery string
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotPath = r.URL.Path
		gotEscaped = r.URL.EscapedPath()
		gotQuery = r.URL.RawQuery
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"healthy"}`))
	}))
	defer backend.Close()

	srv := newTestServer(t, backend.URL, 100)

	rec := serve(srv, http.MethodGet, "/api/dashboard/stats?days=7")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d body=%s", rec.Code, rec.Body.String())
	}
	if gotPath != "/dashboard/stats" || gotQuery != "days=7" {
		t.Errorf("backend saw %s?%s", gotPath, gotQuery)
	}

	serve(srv, http.MethodDelete, "/api/keywords/a%2Fb")
	if gotEscaped != "/keywords/a%2Fb" {
		t.Errorf("escaped path = %s, want /keywords/a%%2Fb", gotEscaped)
	}
}

func TestProxyBackendDown(t *testing.T) {
	backend := httptest.NewServer(http.NotFoundHandler())
	url := backend.URL
	backend.Close()

	srv := newTestServer(t, url, 100)
	rec := serve(srv, http.MethodGet, "/api/health")
	if rec.Code != http.StatusBadGateway {
		t.Errorf("code = %d, want 502", rec.Code)
	}
}

func TestPages(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1", 100)

	rec := serve(srv, http.MethodGet, "/")
	if rec.Code != http.StatusFound || rec.Header().Get("Location") != "/dashboard" {
		t.Errorf("root: code=%d location=%q", rec.Code, rec.Header().Get("Location"))
	}

	for _, path := range []string{"/dashboard", "/analytics", "/keywords", "/notifications", "/reports", "/settings", "/reports/"} {
		rec := serve(srv, http.MethodGet, path)
		if rec.Code != http.StatusOK {
			t.Errorf("%s: code = %d", path, rec.Code)
			continue
		}
		if rec.Body.String() != "<div id=app></div>" {
			t.Errorf("%s: body = %q", path, rec.Body.String())
		}
	}

	if rec := serve(srv, http.MethodGet, "/nope"); rec.Code != http.StatusNotFound {
		t.Errorf("unknown page code = %d", rec.Code)
	}
	if rec := serve(srv, http.MethodGet, "/assets/app.js"); rec.Code != http.StatusOK {
		t.Errorf("asset code = %d", rec.Code)
	}
}

func TestRoutesAndProbes(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1", 100)

	rec := serve(srv, http.MethodGet, "/routes")
	var body struct {
		Routes []struct {
			Path string `json:"path"`
		} `json:"routes"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(body.Routes) != 6 || body.Routes[0].Path != "/dashboard" {
		t.Errorf("routes = %+v", body.Routes)
	}

	if rec := serve(srv, http.MethodGet, "/livez"); rec.Code != http.StatusOK {
		t.Errorf("livez code = %d", rec.Code)
	}
	if rec := serve(srv, http.MethodGet, "/readyz"); rec.Code != http.StatusOK {
		t.Errorf("readyz with no checks code = %d", rec.Code)
	}
	if rec.Header().Get("X-Request-ID") == "" {
		t.Error("missing X-Request-ID")
	}
}

func TestRateLimitedAPI(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv := newTestServer(t, backend.URL, 1)
	if rec := serve(srv, http.MethodGet, "/api/keywords"); rec.Code != http.StatusOK {
		t.Fatalf("first code = %d", rec.Code)
	}
	rec := serve(srv, http.MethodGet, "/api/keywords")
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("second code = %d, want 429", rec.Code)
	}
	if rec.Header().Get("Retry-After") == "" {
		t.Error("missing Retry-After")
	}
}

func TestPageRejectsNonGet(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1", 100)

	rec := serve(srv, http.MethodPost, "/dashboard")
	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("code = %d", rec.Code)
	}
	if got := rec.Header().Get("Allow"); got != "GET, HEAD" {
		t.Errorf("Allow = %q", got)
	}

	if rec := serve(srv, http.MethodHead, "/dashboard"); rec.Code != http.StatusOK {
		t.Errorf("HEAD code = %d", rec.Code)
	}
}

func TestMetricsMountedOnMainMux(t *testing.T) {
	srv := newTestServer(t, "http://127.0.0.1:1", 100)
	serve(srv, http.MethodGet, "/dashboard")

	rec := serve(srv, http.MethodGet, "/metrics")
	if rec.Code != http.StatusOK {
		t.Fatalf("code = %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "http_requests_total") {
		t.Error("scrape output missing http_requests_total")
	}
}

func TestInvalidTrustedProxy(t *testing.T) {
	h, err := gwhandler.New(gwhandler.Config{BackendURL: "http://127.0.0.1:1", StaticDir: t.TempDir()})
	if err != nil {
		t.Fatal(err)
	}
	limiter := ratelimit.New(time.Minute)
	defer limiter.Close()

	_, err = New(h, health.NewChecker(), limiter, metrics.New(prometheus.NewRegistry()), config.DashboardConfig{
		TrustedProxies: []string{"not-an-ip"},
	}, nil)
	if err == nil {
		t.Fatal("expected error for invalid trusted proxy")
	}
}

func TestRateLimitKeysOnForwardedClientBehindTrustedProxy(t *testing.T) {
	backend := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))
	defer backend.Close()

	srv := newTestServer(t, backend.URL, 1)
	for _, client := range []string{"203.0.113.1", "203.0.113.2"} {
		req := httptest.NewRequest(http.MethodGet, "/api/keywords", nil)
		req.RemoteAddr = "192.0.2.10:443"
		req.Header.Set("X-Forwarded-For", client)
		rec := httptest.NewRecorder()
		srv.ServeHTTP(rec, req)
		if rec.Code != http.StatusOK {
			t.Errorf("client %s: code = %d, want separate buckets per forwarded client", client, rec.Code)
		}
	}
}
