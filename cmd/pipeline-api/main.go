package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"

	"uidai-pipeline/internal/api"
	"uidai-pipeline/internal/api/handler"
	"uidai-pipeline/internal/cache"
	"uidai-pipeline/internal/config"
	apperrors "uidai-pipeline/internal/errors"
	applog "uidai-pipeline/internal/logger"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/pipeline"
	"uidai-pipeline/internal/source"
	"uidai-pipeline/internal/store"
	"uidai-pipeline/pkg/utils"
)

// @title UIDAI Pipeline API
// @version 1.0
// @description Loads, normalizes and reconciles UIDAI enrolment, demographic and biometric CSV extracts, with filtering, summaries and export.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		// No logger yet.
		os.Stderr.WriteString("config: " + err.Error() + "\n")
		os.Exit(1)
	}
	logger, err := applog.New(cfg.LogLevel)
	if err != nil {
		os.Stderr.WriteString("logger: " + err.Error() + "\n")
		os.Exit(1)
	}
	defer logger.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := run(ctx, cfg, logger); err != nil {
		logger.Error("server stopped", zap.String("code", apperrors.GetCode(err)), zap.Error(err))
		os.Exit(1)
	}
}

func run(ctx context.Context, cfg *config.Config, logger *zap.Logger) error {
	db, err := store.Open(cfg.Store.Path)
	if err != nil {
		return err
	}
	defer db.Close()

	if err := utils.NewOutputManager(cfg.Export.UploadDir).EnsureBaseDir(); err != nil {
		return apperrors.Wrap(err, "failed to create upload directory")
	}

	results := cache.New[*model.LoadResult](cfg.Cache.TTL, logger.Named("cache"))
	loader := pipeline.NewLoader(source.NewResolver(cfg.Data.Dir), cfg.Data.Datasets, logger.Named("pipeline"),
		pipeline.WithMetrics(pipeline.NewMetrics(prometheus.DefaultRegisterer)),
		pipeline.WithRecorder(db),
		pipeline.WithCache(results),
	)

	if cfg.Data.Dir != "" && cfg.Cache.WatchDataDir {
		watcher, err := cache.NewWatcher(cfg.Data.Dir, results, logger.Named("watcher"))
		if err != nil {
			return err
		}
		if err := watcher.Start(ctx); err != nil {
			// Serving still works; results just go stale until purged.
			logger.Warn("data directory not watched", zap.String("dir", cfg.Data.Dir), zap.Error(err))
		}
		defer watcher.Stop()
	}

	if cfg.Cache.RefreshSchedule != "" {
		refresher, err := cache.NewRefresher(cfg.Cache.RefreshSchedule, results, warmAll(loader, logger), logger.Named("refresh"))
		if err != nil {
			return apperrors.ConfigInvalid(err.Error())
		}
		refresher.Start()
		defer refresher.Stop()
	}

	r := api.NewRouter(api.Options{
		Handler: handler.Config{
			Loader:    loader,
			History:   db,
			Cache:     results,
			UploadDir: cfg.Export.UploadDir,
			RowLimit:  cfg.RowLimit,
			Logger:    logger.Named("api"),
		},
		Logger: logger,
	})
	logger.Info("routes registered", zap.Strings("routes", r.Routes()))

	return r.Start(ctx, ":"+cfg.Server.Port)
}

// warmAll loads every kind so the first request after a refresh is cached.
// Kinds without data are skipped.
func warmAll(loader *pipeline.Loader, logger *zap.Logger) func(context.Context) error {
	return func(ctx context.Context) error {
		for _, kind := range append(model.SourceKinds(), model.KindCombined) {
			if _, err := loader.Load(ctx, kind); err != nil {
				if apperrors.HasCode(err, apperrors.CodeEmptyResult) {
					logger.Debug("nothing to warm", zap.String("kind", string(kind)))
					continue
				}
				return err
			}
		}
		return nil
	}
}
