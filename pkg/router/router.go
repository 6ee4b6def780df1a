package router

import (
	"context"
	"errors"
	"io"
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"
)

// --- ANSI color codes ---
const (
	colorReset  = "\033[0m"
	colorRed    = "\033[31m"
	colorGreen  = "\033[32m"
	colorYellow = "\033[33m"
	colorBlue   = "\033[34m"
	colorCyan   = "\033[36m"
)

type HandlerFunc = http.HandlerFunc

// Router is a chi mux with a colored one-line access log and graceful shutdown
type Router struct {
	mux    *chi.Mux
	logger *zap.Logger
	access *log.Logger
}

// Option configures a Router
type Option func(*Router)

// WithAccessLog sends the access log to w. A nil w disables it.
func WithAccessLog(w io.Writer) Option {
	return func(r *Router) {
		if w == nil {
			r.access = nil
			return
		}
		r.access = log.New(w, "", 0)
	}
}

func New(logger *zap.Logger, opts ...Option) *Router {
	if logger == nil {
		logger = zap.NewNop()
	}
	r := &Router{
		mux:    chi.NewRouter(),
		logger: logger,
		access: log.New(os.Stdout, "", 0),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.mux.Use(r.accessLog)
	return r
}

// Mux exposes the underlying chi router for groups and middleware
func (r *Router) Mux() *chi.Mux { return r.mux }

// Handler returns the router as an http.Handler
func (r *Router) Handler() http.Handler { return r.mux }

func (r *Router) Use(mw ...func(http.Handler) http.Handler) { r.mux.Use(mw...) }

// --- Register paths ---
func (r *Router) GET(path string, handler HandlerFunc)    { r.mux.Get(path, handler) }
func (r *Router) POST(path string, handler HandlerFunc)   { r.mux.Post(path, handler) }
func (r *Router) PUT(path string, handler HandlerFunc)    { r.mux.Put(path, handler) }
func (r *Router) PATCH(path string, handler HandlerFunc)  { r.mux.Patch(path, handler) }
func (r *Router) DELETE(path string, handler HandlerFunc) { r.mux.Delete(path, handler) }
func (r *Router) Handle(path string, h http.Handler)      { r.mux.Handle(path, h) }

// Routes lists registered routes as "METHOD PATH", for tests and startup logs
func (r *Router) Routes() []string {
	var out []string
	_ = chi.Walk(r.mux, func(method, route string, _ http.Handler, _ ...func(http.Handler) http.Handler) error {
		out = append(out, method+" "+route)
		return nil
	})
	return out
}

// --- Start server ---

// Start serves on addr until ctx is cancelled, then drains in-flight requests
func (r *Router) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           r.mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		r.logger.Info("server started", zap.String("addr", addr))
		if r.access != nil {
			r.access.Printf("🚀 Server started on %shttp://localhost%s%s", colorGreen, addr, colorReset)
		}
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if errors.Is(err, http.ErrServerClosed) {
			return nil
		}
		return err
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()
	r.logger.Info("shutting down server")
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return err
	}
	if err := <-errCh; err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

// accessLog prints one colored line per request
func (r *Router) accessLog(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, req *http.Request) {
		if r.access == nil {
			next.ServeHTTP(w, req)
			return
		}

		start := time.Now()
		ww := middleware.NewWrapResponseWriter(w, req.ProtoMajor)
		next.ServeHTTP(ww, req)

		status := ww.Status()
		if status == 0 {
			status = http.StatusOK
		}
		r.access.Printf("%s[%s]%s %s%s%s %s %s%d%s %s(%v)%s",
			colorCyan, start.Format("2006-01-02 15:04:05"), colorReset,
			methodColor(req.Method), req.Method, colorReset,
			req.URL.Path,
			statusColor(status), status, colorReset,
			colorBlue, time.Since(start), colorReset,
		)
	})
}

// --- Color helpers ---
func statusColor(code int) string {
	switch {
	case code >= 200 && code < 300:
		return colorGreen
	case code >= 300 && code < 400:
		return colorCyan
	case code >= 400 && code < 500:
		return colorYellow
	default:
		return colorRed
	}
}

func methodColor(method string) string {
	switch method {
	case http.MethodGet:
		return colorGreen
	case http.MethodPost:
		return colorBlue
	case http.MethodPut, http.MethodPatch:
		return colorYellow
	case http.MethodDelete:
		return colorRed
	default:
		return colorCyan
	}
}
