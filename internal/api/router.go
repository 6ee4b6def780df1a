package api

import (
	"io"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/render"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	httpSwagger "github.com/swaggo/http-swagger"
	"go.uber.org/zap"

	_ "uidai-pipeline/docs"
	"uidai-pipeline/internal/api/handler"
	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/pkg/router"
)

// Options wires the HTTP surface
type Options struct {
	Handler   handler.Config
	Gatherer  prometheus.Gatherer // defaults to the global registry
	AccessLog io.Writer           // nil keeps the router default
	Logger    *zap.Logger
}

// NewRouter builds the router with every route registered
func NewRouter(opts Options) *router.Router {
	var routerOpts []router.Option
	if opts.AccessLog != nil {
		routerOpts = append(routerOpts, router.WithAccessLog(opts.AccessLog))
	}
	r := router.New(opts.Logger, routerOpts...)
	RegisterRoutes(r, handler.NewDatasetHandler(opts.Handler), opts.Gatherer)
	return r
}

// RegisterRoutes mounts middleware, the API, metrics and swagger on r
func RegisterRoutes(r *router.Router, h *handler.DatasetHandler, gatherer prometheus.Gatherer) {
	if gatherer == nil {
		gatherer = prometheus.DefaultGatherer
	}

	r.Use(middleware.Recoverer)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-Id"},
		ExposedHeaders: []string{"Content-Disposition"},
		MaxAge:         300,
	}))

	r.GET("/health", h.Health)

	r.Mux().Route("/api/v1", func(api chi.Router) {
		api.Group(func(api chi.Router) {
			api.Use(render.SetContentType(render.ContentTypeJSON))
			api.Get("/datasets", h.ListDatasets)
			api.Get("/datasets/{kind}", h.GetDataset)
			api.Get("/datasets/{kind}/summary", h.GetSummary)
			api.Get("/datasets/{kind}/trend", h.GetTrend)
			api.Get("/datasets/{kind}/options", h.GetOptions)
			api.Post("/datasets/{kind}/upload", h.Upload)
			api.Get("/loads", h.ListLoads)
			api.Get("/loads/{id}", h.GetLoad)
			api.Post("/cache/purge", h.PurgeCache)
		})
		// Streams a file; errors still come back as JSON.
		api.Get("/datasets/{kind}/export", h.Export)
	})

	r.Handle("/metrics", promhttp.HandlerFor(gatherer, promhttp.HandlerOpts{}))
	r.Handle("/swagger*", httpSwagger.WrapHandler)
	r.Mux().NotFound(func(w http.ResponseWriter, req *http.Request) {
		render.Status(req, http.StatusNotFound)
		render.JSON(w, req, handler.ErrorResponse{Code: apperrors.CodeNotFound, Error: req.URL.Path + " not found"})
	})
}
