package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"uidai-pipeline/internal/cache"
	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/source"
)

// Recorder persists the history of uncached loads
type Recorder interface {
	SaveLoad(ctx context.Context, rec model.LoadRecord) error
}

// Option configures a Loader
type Option func(*Loader)

// WithMetrics makes the Loader report to m
func WithMetrics(m *Metrics) Option {
	return func(l *Loader) { l.metrics = m }
}

// WithRecorder makes the Loader write a history entry for every uncached load
func WithRecorder(r Recorder) Option {
	return func(l *Loader) { l.recorder = r }
}

// WithCache memoizes results on kind and resolved paths
func WithCache(c *cache.Cache[*model.LoadResult]) Option {
	return func(l *Loader) { l.cache = c }
}

// Loader runs the resolve, ingest, normalize and total stages for a dataset
// kind and reconciles the three source kinds into the combined view.
type Loader struct {
	resolver *source.Resolver
	datasets map[model.Kind]model.DatasetSpec
	logger   *zap.Logger
	metrics  *Metrics
	recorder Recorder
	cache    *cache.Cache[*model.LoadResult]
}

// NewLoader creates a Loader over the given dataset configuration
func NewLoader(resolver *source.Resolver, datasets map[model.Kind]model.DatasetSpec, logger *zap.Logger, opts ...Option) *Loader {
	if logger == nil {
		logger = zap.NewNop()
	}
	if datasets == nil {
		datasets = model.DefaultDatasets()
	}
	l := &Loader{
		resolver: resolver,
		datasets: datasets,
		logger:   logger,
	}
	for _, opt := range opts {
		opt(l)
	}
	return l
}

// Spec returns the configuration record for a source kind
func (l *Loader) Spec(kind model.Kind) (model.DatasetSpec, error) {
	spec, ok := l.datasets[kind]
	if !ok {
		return model.DatasetSpec{}, apperrors.InvalidInput(fmt.Sprintf("no dataset configured for kind %q", kind))
	}
	return spec, nil
}

// Paths returns the resolved candidate files for kind. The combined view
// resolves to the paths of every source kind.
func (l *Loader) Paths(kind model.Kind) ([]string, error) {
	if kind == model.KindCombined {
		var all []string
		for _, k := range model.SourceKinds() {
			p, err := l.Paths(k)
			if err != nil {
				return nil, err
			}
			all = append(all, p...)
		}
		return all, nil
	}

	spec, err := l.Spec(kind)
	if err != nil {
		return nil, err
	}
	start := time.Now()
	paths := l.resolver.Resolve(spec)
	l.metrics.ObserveStage(string(kind), StageResolve, start)
	return paths, nil
}

// Load returns the pipeline output for kind. An empty result is an
// EMPTY_RESULT error naming the resolved paths.
func (l *Loader) Load(ctx context.Context, kind model.Kind) (*model.LoadResult, error) {
	if kind == model.KindCombined {
		return l.LoadCombined(ctx)
	}

	paths, err := l.Paths(kind)
	if err != nil {
		return nil, err
	}
	res, err := l.cached(ctx, kind, paths, func(ctx context.Context) (*model.LoadResult, error) {
		return l.run(ctx, kind, paths)
	})
	if err != nil {
		return nil, err
	}
	if res.Table.IsEmpty() {
		return nil, apperrors.EmptyResult(string(kind), paths)
	}
	return res, nil
}

// LoadPaths runs the pipeline for kind over explicit paths, e.g. an uploaded
// file. Results are not cached.
func (l *Loader) LoadPaths(ctx context.Context, kind model.Kind, paths []string) (*model.LoadResult, error) {
	if !kind.IsSource() {
		return nil, apperrors.InvalidInput(fmt.Sprintf("kind %q cannot be loaded from explicit files", kind))
	}
	res, err := l.run(ctx, kind, paths)
	if err != nil {
		return nil, err
	}
	if res.Table.IsEmpty() {
		return nil, apperrors.EmptyResult(string(kind), paths)
	}
	return res, nil
}

// LoadCombined loads the three source kinds concurrently and reconciles them
// on the date, state, district, pincode and month key.
func (l *Loader) LoadCombined(ctx context.Context) (*model.LoadResult, error) {
	paths, err := l.Paths(model.KindCombined)
	if err != nil {
		return nil, err
	}

	res, err := l.cached(ctx, model.KindCombined, paths, l.runCombined)
	if err != nil {
		return nil, err
	}
	if res.Table.IsEmpty() {
		return nil, apperrors.EmptyResult(string(model.KindCombined), paths)
	}
	return res, nil
}

func (l *Loader) runCombined(ctx context.Context) (*model.LoadResult, error) {
	start := time.Now()
	kinds := model.SourceKinds()
	parts := make([]*model.LoadResult, len(kinds))

	g, gctx := errgroup.WithContext(ctx)
	for i, k := range kinds {
		g.Go(func() error {
			paths, err := l.Paths(k)
			if err != nil {
				return err
			}
			res, err := l.cached(gctx, k, paths, func(ctx context.Context) (*model.LoadResult, error) {
				return l.run(ctx, k, paths)
			})
			if err != nil {
				return err
			}
			parts[i] = res
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		l.finish(ctx, model.KindCombined, nil, start, nil, err)
		return nil, err
	}

	inputs := make([]ReconcileInput, 0, len(parts))
	result := &model.LoadResult{Kind: model.KindCombined}
	for _, p := range parts {
		inputs = append(inputs, ReconcileInput{
			Label:     string(p.Kind),
			Table:     p.Table,
			TotalName: p.Metric,
		})
		result.Paths = append(result.Paths, p.Paths...)
		result.Totals = append(result.Totals, p.Metric)
		result.Warnings = append(result.Warnings, p.Warnings...)
	}
	result.Metric = parts[0].Metric

	stageStart := time.Now()
	table, stats, err := Reconcile(inputs...)
	l.metrics.ObserveStage(string(model.KindCombined), StageReconcile, stageStart)
	if err != nil {
		err = apperrors.Wrapf(err, "loading %s", model.KindCombined)
		l.finish(ctx, model.KindCombined, result, start, nil, err)
		return nil, err
	}
	if stats.SkippedNoDate > 0 {
		l.logger.Info("rows without a date left out of reconciliation",
			zap.Int("rows", stats.SkippedNoDate))
	}

	result.Table = table
	l.finish(ctx, model.KindCombined, result, start, nil, nil)
	return result, nil
}

// run executes the single-kind stages over paths
func (l *Loader) run(ctx context.Context, kind model.Kind, paths []string) (*model.LoadResult, error) {
	start := time.Now()
	result := &model.LoadResult{Kind: kind, Paths: paths}

	spec, err := l.Spec(kind)
	if err != nil {
		return nil, err
	}
	result.Metric = spec.TotalName
	result.Totals = []string{spec.TotalName}

	stageStart := time.Now()
	raw, err := Concat(ctx, paths, l.logger)
	l.metrics.ObserveStage(string(kind), StageIngest, stageStart)
	if err != nil {
		err = apperrors.Wrapf(err, "loading %s", kind)
		l.finish(ctx, kind, result, start, nil, err)
		return nil, err
	}

	stageStart = time.Now()
	normalized, err := Normalize(raw, spec.DateFormat)
	l.metrics.ObserveStage(string(kind), StageNormalize, stageStart)
	if err != nil {
		err = apperrors.Wrapf(err, "loading %s", kind)
		l.finish(ctx, kind, result, start, nil, err)
		return nil, err
	}

	stageStart = time.Now()
	totaled, missing := DeriveTotal(normalized, spec.MeasureColumns, spec.TotalName)
	l.metrics.ObserveStage(string(kind), StageTotal, stageStart)

	result.Table = totaled
	l.finish(ctx, kind, result, start, missing, nil)
	return result, nil
}

// finish stamps the result, reports drift and writes the history entry
func (l *Loader) finish(ctx context.Context, kind model.Kind, result *model.LoadResult, start time.Time, missing []string, loadErr error) {
	if result == nil {
		result = &model.LoadResult{Kind: kind}
	}
	result.ID = uuid.New().String()
	result.LoadedAt = time.Now().UTC()
	result.Duration = time.Since(start)

	if len(missing) > 0 {
		drift := apperrors.SchemaDrift(string(kind), missing)
		l.logger.Warn("schema drift",
			zap.String("code", drift.Code),
			zap.String("kind", string(kind)),
			zap.Strings("columns", missing))
		l.metrics.RecordDrift(string(kind), missing)
		result.Warnings = append(result.Warnings, drift.Message)
	}

	rec := model.LoadRecord{
		ID:         result.ID,
		Kind:       string(kind),
		Paths:      result.Paths,
		RowCount:   result.Table.Len(),
		Status:     model.LoadStatusCompleted,
		Warnings:   result.Warnings,
		DurationMS: result.Duration.Milliseconds(),
		CreatedAt:  result.LoadedAt,
	}
	switch {
	case loadErr != nil:
		rec.Status = model.LoadStatusFailed
		rec.Error = loadErr.Error()
		l.logger.Error("load failed",
			zap.String("kind", string(kind)),
			zap.String("code", apperrors.GetCode(loadErr)),
			zap.Error(loadErr))
	case result.Table.IsEmpty():
		// Callers turn this into EMPTY_RESULT; the history says the same.
		empty := apperrors.EmptyResult(string(kind), result.Paths)
		rec.Status = model.LoadStatusFailed
		rec.Error = empty.Error()
		l.logger.Warn("load produced no rows",
			zap.String("kind", string(kind)),
			zap.String("code", empty.Code),
			zap.Strings("paths", result.Paths))
	default:
		l.logger.Info("load completed",
			zap.String("id", result.ID),
			zap.String("kind", string(kind)),
			zap.Int("files", len(result.Paths)),
			zap.Int("rows", rec.RowCount),
			zap.Duration("duration", result.Duration))
	}
	l.metrics.RecordLoad(string(kind), rec.Status, rec.RowCount)

	if l.recorder != nil {
		if err := l.recorder.SaveLoad(ctx, rec); err != nil {
			l.logger.Warn("failed to record load", zap.String("id", rec.ID), zap.Error(err))
		}
	}
}

func (l *Loader) cached(ctx context.Context, kind model.Kind, paths []string, load func(context.Context) (*model.LoadResult, error)) (*model.LoadResult, error) {
	if l.cache == nil {
		return load(ctx)
	}
	res, hit, err := l.cache.GetOrLoad(ctx, cacheKey(kind, paths), load)
	if hit {
		l.logger.Debug("cache hit", zap.String("kind", string(kind)))
	}
	return res, err
}

func cacheKey(kind model.Kind, paths []string) string {
	return string(kind) + "\x00" + strings.Join(paths, "\x00")
}
