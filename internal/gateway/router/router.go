// Package router wires up the dashboard server's routes and applies the
// middleware chain (RequestID → CORS → RateLimit → Metrics).
package router

import (
	"fmt"
	"net/http"
	"time"

	gwhandler "github.com/sentineleye/dashboard/internal/gateway/handler"
	gwmw "github.com/sentineleye/dashboard/internal/gateway/middleware"
	"github.com/sentineleye/dashboard/internal/gateway/ratelimit"
	"github.com/sentineleye/dashboard/pkg/config"
	"github.com/sentineleye/dashboard/pkg/health"
	"github.com/sentineleye/dashboard/pkg/metrics"
	pkgmw "github.com/sentineleye/dashboard/pkg/middleware"
)

// ReadyTimeout bounds a single readiness probe.
const ReadyTimeout = 3 * time.Second

// New builds the full dashboard HTTP handler with all routes and middleware.
//
// Route table:
//
//	ANY    /api/...      → feedback backend (proxy, /api stripped)
//	GET    /assets/...   → static bundle
//	GET    /routes       → page table
//	GET    /livez        → liveness
//	GET    /readyz       → readiness (backend /health)
//	GET    /metrics      → Prometheus scrape, only when scrape != nil
//	GET    /             → 302 /dashboard
//	GET    /{page}       → index.html for known pages, 404 otherwise
//
// Middleware chain (outermost first):
//
//	RequestID → CORS → RateLimit → Metrics → handler
func New(h *gwhandler.Handler, checker *health.Checker, limiter *ratelimit.Limiter, m *metrics.Metrics, cfg config.DashboardConfig, scrape http.Handler) (http.Handler, error) {
	trusted, err := cfg.TrustedProxyPrefixes()
	if err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}

	mux := http.NewServeMux()

	// Probes
	mux.HandleFunc("GET /livez", checker.LiveHandler())
	mux.HandleFunc("GET /readyz", checker.ReadyHandler(ReadyTimeout))
	mux.HandleFunc("GET /routes", h.Routes)
	if scrape != nil {
		mux.Handle("GET /metrics", scrape)
	}

	// Backend API
	mux.HandleFunc("/api/", h.ProxyAPI)

	// Front-end
	mux.HandleFunc("GET /assets/", h.Assets)
	// Method-agnostic so it does not conflict with "/api/"; Page rejects
	// anything but GET and HEAD.
	mux.HandleFunc("/", h.Page)

	var chain http.Handler = mux
	chain = pkgmw.Metrics(m)(chain)
	chain = gwmw.RateLimit(limiter, cfg.RateLimit, trusted)(chain)
	chain = gwmw.CORS(gwmw.NewCORSConfig(cfg.AllowOrigins))(chain)
	chain = pkgmw.RequestID(chain)

	return chain, nil
}
