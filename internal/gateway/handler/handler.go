// Package handler implements the dashboard server's HTTP endpoints: the
// same-origin /api proxy to the feedback backend, the single-page app's
// page routes and the static bundle.
package handler

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httputil"
	"net/url"
	"os"
	"path/filepath"
	"strings"

	"github.com/sentineleye/dashboard/internal/pages"
	apperrors "github.com/sentineleye/dashboard/pkg/errors"
	"github.com/sentineleye/dashboard/pkg/logger"
)

// APIPrefix is stripped from proxied requests before they reach the backend.
const APIPrefix = "/api"

// Config holds the backend the dashboard proxies to and the directory of
// the built front-end bundle.
type Config struct {
	BackendURL string
	StaticDir  string
}

// Handler implements the dashboard server's endpoints.
type Handler struct {
	backend   *httputil.ReverseProxy
	staticDir string
	assets    http.Handler
	logger    *slog.Logger
}

// New creates a Handler that proxies /api to cfg.BackendURL.
func New(cfg Config) (*Handler, error) {
	target, err := url.Parse(cfg.BackendURL)
	if err != nil {
		return nil, fmt.Errorf("parsing backend url %q: %w", cfg.BackendURL, err)
	}
	if target.Scheme == "" || target.Host == "" {
		return nil, fmt.Errorf("backend url %q must be absolute", cfg.BackendURL)
	}

	h := &Handler{
		staticDir: cfg.StaticDir,
		assets:    http.FileServer(http.Dir(cfg.StaticDir)),
		logger:    logger.WithComponent("dashboard-handler"),
	}
	h.backend = &httputil.ReverseProxy{
		Rewrite: func(pr *httputil.ProxyRequest) {
			pr.Out.URL.Path = stripPrefix(pr.In.URL.Path)
			pr.Out.URL.RawPath = stripPrefix(pr.In.URL.RawPath)
			pr.SetURL(target)
			pr.SetXForwarded()
		},
		ErrorHandler: func(w http.ResponseWriter, r *http.Request, err error) {
			err = apperrors.Transport(err)
			logger.FromContext(r.Context(), h.logger).Error("backend request failed", "path", r.URL.Path, "error", err)
			h.writeError(w, apperrors.HTTPStatusCode(err), "feedback backend unavailable")
		},
	}
	return h, nil
}

func stripPrefix(p string) string {
	if p == "" {
		return ""
	}
	trimmed := strings.TrimPrefix(p, APIPrefix)
	if trimmed == "" {
		return "/"
	}
	return trimmed
}

// ---------- Proxy ----------

// ProxyAPI forwards /api/* to the feedback backend with the prefix removed.
func (h *Handler) ProxyAPI(w http.ResponseWriter, r *http.Request) {
	h.backend.ServeHTTP(w, r)
}

// ---------- Pages ----------

// Page answers the single-page app's routes. Redirects are issued as 302,
// known pages get index.html and anything else is a 404.
func (h *Handler) Page(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		w.Header().Set("Allow", "GET, HEAD")
		h.writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}
	m := pages.Resolve(r.URL.Path)
	if !m.Found {
		h.writeError(w, http.StatusNotFound, "page not found")
		return
	}
	if m.RedirectTo != "" {
		http.Redirect(w, r, m.RedirectTo, http.StatusFound)
		return
	}

	index := filepath.Join(h.staticDir, "index.html")
	if _, err := os.Stat(index); err != nil {
		logger.FromContext(r.Context(), h.logger).Warn("front-end bundle missing", "path", index, "page", m.Route.Name)
		h.writeError(w, http.StatusNotFound, "front-end bundle not built")
		return
	}
	w.Header().Set("Cache-Control", "no-cache")
	http.ServeFile(w, r, index)
}

// Assets serves the bundle's hashed static files.
func (h *Handler) Assets(w http.ResponseWriter, r *http.Request) {
	h.assets.ServeHTTP(w, r)
}

// Routes lists the page table so operators can see what the app answers.
func (h *Handler) Routes(w http.ResponseWriter, r *http.Request) {
	h.writeJSON(w, http.StatusOK, map[string]any{
		"routes":    pages.Routes(),
		"redirects": pages.Redirects(),
	})
}

// ---------- Helpers ----------

func (h *Handler) writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		h.logger.Error("failed to write response", "error", err)
	}
}

func (h *Handler) writeError(w http.ResponseWriter, status int, message string) {
	h.writeJSON(w, status, map[string]string{"error": message})
}
