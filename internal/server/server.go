// Package server serves rendered pages for preview and reloads connected
// browsers when template or data files change.
package server

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"os/exec"
	"runtime"
	"slices"
	"strings"
	"sync"
	"time"

	"github.com/conneroisu/htmltag/internal/compiler"
	"github.com/conneroisu/htmltag/internal/config"
	"github.com/conneroisu/htmltag/internal/logging"
	"github.com/conneroisu/htmltag/internal/version"
	"github.com/conneroisu/htmltag/internal/watcher"
)

// Pages is the set of renderable pages the server exposes.
type Pages interface {
	Pages() ([]string, error)
	Render(ctx context.Context, name string) (string, error)
}

// Options configures a PreviewServer.
type Options struct {
	Config *config.Config
	Pages  Pages
	// Compiler builds the preview chrome (layout, index, error overlay).
	Compiler *compiler.Compiler
	Logger   logging.Logger
}

// PreviewServer serves pages with live reload
type PreviewServer struct {
	config       *config.Config
	pages        Pages
	compiler     *compiler.Compiler
	logger       logging.Logger
	httpServer   *http.Server
	serverMutex  sync.RWMutex
	clients      map[*Client]struct{}
	clientsMutex sync.RWMutex
	watcher      *watcher.FileWatcher
	started      time.Time
	shutdownOnce sync.Once
}

// UpdateMessage represents a message sent to the browser
type UpdateMessage struct {
	Type      string    `json:"type"`
	Files     []string  `json:"files,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// New creates a new preview server
func New(opts Options) (*PreviewServer, error) {
	if opts.Config == nil {
		return nil, fmt.Errorf("server: config is required")
	}
	if opts.Pages == nil {
		return nil, fmt.Errorf("server: pages are required")
	}
	if opts.Compiler == nil {
		opts.Compiler = compiler.Default()
	}
	if opts.Logger == nil {
		opts.Logger = logging.Nop()
	}

	return &PreviewServer{
		config:   opts.Config,
		pages:    opts.Pages,
		compiler: opts.Compiler,
		logger:   opts.Logger.WithComponent("server"),
		clients:  make(map[*Client]struct{}),
		started:  time.Now(),
	}, nil
}

// Handler returns the HTTP handler with every route registered.
func (s *PreviewServer) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("GET /_htmltag/ws", s.handleWebSocket)
	mux.HandleFunc("GET /_htmltag/health", s.handleHealth)
	mux.HandleFunc("GET /{$}", s.handleIndex)
	mux.HandleFunc("GET /{page...}", s.handlePage)
	return s.logRequests(mux)
}

// Start watches the template directory and serves until ctx is done or
// Shutdown is called.
func (s *PreviewServer) Start(ctx context.Context) error {
	if err := s.setupFileWatcher(ctx); err != nil {
		s.logger.Warn(ctx, err, "live reload disabled")
	}

	addr := s.config.Address()

	s.serverMutex.Lock()
	s.httpServer = &http.Server{
		Addr:              addr,
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	server := s.httpServer
	s.serverMutex.Unlock()

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		_ = s.Shutdown(shutdownCtx)
	}()

	s.logger.Info(ctx, "preview server listening", "url", "http://"+addr)
	if s.config.Server.Open {
		target := "http://" + addr + "/"
		if len(s.config.TargetFiles) > 0 {
			target += s.config.TargetFiles[0]
		}
		go s.openBrowser(ctx, target)
	}

	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return fmt.Errorf("server error: %w", err)
	}
	return nil
}

func (s *PreviewServer) setupFileWatcher(ctx context.Context) error {
	fw, err := watcher.NewFileWatcher(s.config.Watch.Debounce, s.logger)
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}

	fw.Ignore(s.config.Watch.Ignore...)
	fw.AddFilter(watcher.PatternFilter(s.config.Watch.Patterns))
	fw.AddFilter(watcher.NoHiddenFilter)
	fw.AddHandler(s.handleFileChange)

	if err := fw.AddRecursive(s.config.Templates.Dir); err != nil {
		_ = fw.Stop()
		return fmt.Errorf("failed to watch %s: %w", s.config.Templates.Dir, err)
	}
	if s.config.Templates.Data != "" {
		if err := fw.AddPath(s.config.Templates.Data); err != nil {
			s.logger.Warn(ctx, err, "cannot watch data file", "path", s.config.Templates.Data)
		}
	}

	s.watcher = fw
	return fw.Start(ctx)
}

func (s *PreviewServer) handleFileChange(events []watcher.ChangeEvent) error {
	files := make([]string, 0, len(events))
	for _, e := range events {
		files = append(files, e.Path)
	}
	s.logger.Info(context.Background(), "files changed, reloading", "files", files)
	s.broadcast(UpdateMessage{Type: "reload", Files: files, Timestamp: time.Now()})
	return nil
}

func (s *PreviewServer) handleIndex(w http.ResponseWriter, r *http.Request) {
	pages, err := s.pages.Pages()
	if err != nil {
		s.writeError(w, r, "index", err)
		return
	}
	html, err := s.indexPage(r.Context(), pages)
	if err != nil {
		s.writeError(w, r, "index", err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func (s *PreviewServer) handlePage(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("page")

	pages, err := s.pages.Pages()
	if err != nil {
		s.writeError(w, r, name, err)
		return
	}
	if !slices.Contains(pages, name) {
		http.NotFound(w, r)
		return
	}

	body, err := s.pages.Render(r.Context(), name)
	if err != nil {
		s.logger.Warn(r.Context(), err, "render failed", "page", name)
		s.writeError(w, r, name, err)
		return
	}

	html, err := s.wrapPage(r.Context(), name, body)
	if err != nil {
		s.writeError(w, r, name, err)
		return
	}
	writeHTML(w, http.StatusOK, html)
}

func (s *PreviewServer) writeError(w http.ResponseWriter, r *http.Request, name string, renderErr error) {
	html, err := s.errorPage(r.Context(), name, renderErr)
	if err != nil {
		s.logger.Error(r.Context(), err, "error overlay failed")
		http.Error(w, renderErr.Error(), http.StatusInternalServerError)
		return
	}
	writeHTML(w, http.StatusInternalServerError, html)
}

func writeHTML(w http.ResponseWriter, status int, html string) {
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.Header().Set("Cache-Control", "no-store")
	w.WriteHeader(status)
	_, _ = w.Write([]byte(html))
}

// handleHealth returns the server health status for health checks
func (s *PreviewServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	stats := s.compiler.Cache().Stats()
	pages, err := s.pages.Pages()

	health := map[string]interface{}{
		"status":    "healthy",
		"timestamp": time.Now().UTC(),
		"uptime":    time.Since(s.started).Round(time.Second).String(),
		"version":   version.Get().Short(),
		"pages":     len(pages),
		"clients":   s.clientCount(),
		"cache": map[string]interface{}{
			"entries":   stats.Entries,
			"hits":      stats.Hits,
			"misses":    stats.Misses,
			"evictions": stats.Evictions,
			"hit_rate":  stats.HitRate(),
		},
	}
	status := http.StatusOK
	if err != nil {
		health["status"] = "unhealthy"
		health["error"] = err.Error()
		status = http.StatusServiceUnavailable
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(health); err != nil {
		s.logger.Error(r.Context(), err, "failed to encode health response")
	}
}

func (s *PreviewServer) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		next.ServeHTTP(w, r)
		s.logger.Debug(r.Context(), "request", "method", r.Method, "path", r.URL.Path, "duration", time.Since(start))
	})
}

func (s *PreviewServer) openBrowser(ctx context.Context, target string) {
	time.Sleep(100 * time.Millisecond)

	u, err := url.Parse(target)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || strings.ContainsAny(target, " \t\n\"'`;&|$") {
		s.logger.Warn(ctx, err, "refusing to open browser", "url", target)
		return
	}

	switch runtime.GOOS {
	case "linux":
		err = exec.Command("xdg-open", target).Start()
	case "windows":
		err = exec.Command("rundll32", "url.dll,FileProtocolHandler", target).Start()
	case "darwin":
		err = exec.Command("open", target).Start()
	default:
		err = fmt.Errorf("unsupported platform %s", runtime.GOOS)
	}
	if err != nil {
		s.logger.Warn(ctx, err, "failed to open browser")
	}
}

// Shutdown gracefully shuts down the server and cleans up resources
func (s *PreviewServer) Shutdown(ctx context.Context) error {
	var shutdownErr error

	s.shutdownOnce.Do(func() {
		s.logger.Info(ctx, "shutting down preview server")

		if s.watcher != nil {
			_ = s.watcher.Stop()
		}

		s.closeClients()

		s.serverMutex.RLock()
		server := s.httpServer
		s.serverMutex.RUnlock()
		if server != nil {
			shutdownErr = server.Shutdown(ctx)
		}
	})

	return shutdownErr
}
