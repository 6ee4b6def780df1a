package handler

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"uidai-pipeline/internal/cache"
	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/pipeline"
	"uidai-pipeline/pkg/utils"
)

// ExportFileBase is the download name of filtered exports
const ExportFileBase = "uidai_filtered"

// maxUploadBytes bounds a single uploaded CSV
const maxUploadBytes = 256 << 20

// DefaultUploadTimeout bounds an upload load when the request sets no timeout
const DefaultUploadTimeout = 5 * time.Minute

// LoadHistory is the read side of the load history store
type LoadHistory interface {
	ListLoads(ctx context.Context, kind string, limit int) ([]model.LoadRecord, error)
	GetLoad(ctx context.Context, id string) (model.LoadRecord, error)
}

// DatasetHandler serves the datasets, loads and cache endpoints
type DatasetHandler struct {
	loader   *pipeline.Loader
	history  LoadHistory
	cache    cache.Purger
	uploads  *utils.OutputManager
	rowLimit int
	logger   *zap.Logger
}

// Config wires a DatasetHandler
type Config struct {
	Loader    *pipeline.Loader
	History   LoadHistory  // optional
	Cache     cache.Purger // optional
	UploadDir string
	RowLimit  int
	Logger    *zap.Logger
}

// NewDatasetHandler creates the handler
func NewDatasetHandler(cfg Config) *DatasetHandler {
	if cfg.Logger == nil {
		cfg.Logger = zap.NewNop()
	}
	if cfg.RowLimit <= 0 {
		cfg.RowLimit = 5000
	}
	if cfg.UploadDir == "" {
		cfg.UploadDir = os.TempDir()
	}
	return &DatasetHandler{
		loader:   cfg.Loader,
		history:  cfg.History,
		cache:    cfg.Cache,
		uploads:  utils.NewOutputManager(cfg.UploadDir),
		rowLimit: cfg.RowLimit,
		logger:   cfg.Logger,
	}
}

// Health reports service liveness
// @Summary Health check
// @Description Report that the service is up
// @Tags system
// @Produce json
// @Success 200 {object} HealthResponse
// @Router /health [get]
func (h *DatasetHandler) Health(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, HealthResponse{
		Status:    "ok",
		Timestamp: time.Now().UTC(),
		Service:   "uidai-pipeline",
	})
}

// ListDatasets lists the configured kinds and the files each resolves to
// @Summary List datasets
// @Description List every dataset kind with its resolved source files, measure columns and metric
// @Tags datasets
// @Produce json
// @Success 200 {array} DatasetInfo
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/datasets [get]
func (h *DatasetHandler) ListDatasets(w http.ResponseWriter, r *http.Request) {
	var out []DatasetInfo
	for _, kind := range model.SourceKinds() {
		spec, err := h.loader.Spec(kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		paths, err := h.loader.Paths(kind)
		if err != nil {
			writeError(w, r, err)
			return
		}
		out = append(out, DatasetInfo{
			Kind:           kind,
			Paths:          nonNil(paths),
			MeasureColumns: spec.MeasureColumns,
			Metric:         spec.TotalName,
		})
	}

	paths, err := h.loader.Paths(model.KindCombined)
	if err != nil {
		writeError(w, r, err)
		return
	}
	out = append(out, DatasetInfo{
		Kind:           model.KindCombined,
		Paths:          nonNil(paths),
		MeasureColumns: []string{},
		Metric:         out[0].Metric,
	})
	render.JSON(w, r, out)
}

// GetDataset returns the filtered rows of a dataset, capped at the row limit
// @Summary Get dataset rows
// @Description Load a dataset kind, apply the filters and return up to ROW_LIMIT rows
// @Tags datasets
// @Produce json
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric, combined)
// @Param from query string false "Earliest date, YYYY-MM-DD"
// @Param to query string false "Latest date, YYYY-MM-DD"
// @Param state query []string false "States to keep" collectionFormat(multi)
// @Param district query []string false "Districts to keep" collectionFormat(multi)
// @Param pincode query string false "Pincode substring"
// @Success 200 {object} TableResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/datasets/{kind} [get]
func (h *DatasetHandler) GetDataset(w http.ResponseWriter, r *http.Request) {
	res, filter, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}
	filtered := filter.Apply(res.Table)
	page := filtered.Head(h.rowLimit)

	render.JSON(w, r, TableResponse{
		LoadID:       res.ID,
		Kind:         res.Kind,
		Metric:       res.Metric,
		Columns:      nonNil(filtered.Columns),
		Rows:         rowsForJSON(page),
		TotalRows:    filtered.Len(),
		ReturnedRows: page.Len(),
		Warnings:     nonNil(res.Warnings),
		Filter:       filter,
	})
}

// GetSummary returns the KPIs of the filtered dataset
// @Summary Get dataset summary
// @Description Record count, metric total, distinct states and districts, date range, per-total sums, mean and median
// @Tags datasets
// @Produce json
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric, combined)
// @Param from query string false "Earliest date, YYYY-MM-DD"
// @Param to query string false "Latest date, YYYY-MM-DD"
// @Param state query []string false "States to keep" collectionFormat(multi)
// @Param district query []string false "Districts to keep" collectionFormat(multi)
// @Param pincode query string false "Pincode substring"
// @Success 200 {object} SummaryResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/datasets/{kind}/summary [get]
func (h *DatasetHandler) GetSummary(w http.ResponseWriter, r *http.Request) {
	res, filter, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}
	render.JSON(w, r, SummaryResponse{
		Kind:     res.Kind,
		Summary:  pipeline.Summarize(filter.Apply(res.Table), res.Metric, res.Totals),
		Warnings: nonNil(res.Warnings),
		Filter:   filter,
	})
}

// GetTrend returns the metric summed per date
// @Summary Get dataset trend
// @Description The dataset metric summed per date, ascending
// @Tags datasets
// @Produce json
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric, combined)
// @Param from query string false "Earliest date, YYYY-MM-DD"
// @Param to query string false "Latest date, YYYY-MM-DD"
// @Param state query []string false "States to keep" collectionFormat(multi)
// @Param district query []string false "Districts to keep" collectionFormat(multi)
// @Param pincode query string false "Pincode substring"
// @Success 200 {object} TrendResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/datasets/{kind}/trend [get]
func (h *DatasetHandler) GetTrend(w http.ResponseWriter, r *http.Request) {
	res, filter, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}
	points := pipeline.Trend(filter.Apply(res.Table), res.Metric)
	if points == nil {
		points = []model.TrendPoint{}
	}
	render.JSON(w, r, TrendResponse{Kind: res.Kind, Metric: res.Metric, Points: points})
}

// GetOptions returns the state and district choices for filtering
// @Summary Get filter options
// @Description Distinct states, and districts within the requested states
// @Tags datasets
// @Produce json
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric, combined)
// @Param state query []string false "Narrow districts to these states" collectionFormat(multi)
// @Success 200 {object} OptionsResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/datasets/{kind}/options [get]
func (h *DatasetHandler) GetOptions(w http.ResponseWriter, r *http.Request) {
	res, filter, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}
	byState := pipeline.Filter{States: filter.States}.Apply(res.Table)
	render.JSON(w, r, OptionsResponse{
		Kind:      res.Kind,
		States:    pipeline.DistinctValues(res.Table, model.ColState),
		Districts: pipeline.DistinctValues(byState, model.ColDistrict),
	})
}

// Export downloads the filtered dataset
// @Summary Export dataset
// @Description Download the filtered dataset as CSV or XLSX
// @Tags datasets
// @Produce text/csv
// @Produce application/vnd.openxmlformats-officedocument.spreadsheetml.sheet
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric, combined)
// @Param format query string false "csv (default) or xlsx" Enums(csv, xlsx)
// @Param from query string false "Earliest date, YYYY-MM-DD"
// @Param to query string false "Latest date, YYYY-MM-DD"
// @Param state query []string false "States to keep" collectionFormat(multi)
// @Param district query []string false "Districts to keep" collectionFormat(multi)
// @Param pincode query string false "Pincode substring"
// @Success 200 {file} file
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/datasets/{kind}/export [get]
func (h *DatasetHandler) Export(w http.ResponseWriter, r *http.Request) {
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = pipeline.FormatCSV
	}
	if format != pipeline.FormatCSV && format != pipeline.FormatXLSX {
		writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("unsupported export format %q", format)))
		return
	}

	res, filter, ok := h.loadFiltered(w, r)
	if !ok {
		return
	}
	filtered := filter.Apply(res.Table)

	contentType := "text/csv; charset=utf-8"
	if format == pipeline.FormatXLSX {
		contentType = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	}
	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s.%s", ExportFileBase, format))

	if err := pipeline.Write(w, filtered, format); err != nil {
		// Headers are gone; all that is left is to log.
		h.logger.Error("export failed", zap.String("kind", string(res.Kind)), zap.Error(err))
	}
}

// Upload loads a single uploaded CSV in place of the kind's source files
// @Summary Upload a CSV
// @Description Run the pipeline for a kind over one uploaded CSV instead of the configured files. The result is not cached.
// @Tags datasets
// @Accept multipart/form-data
// @Produce json
// @Param kind path string true "Dataset kind" Enums(enrolment, demographic, biometric)
// @Param file formData file true "CSV file"
// @Param timeout query string false "Load timeout, e.g. 30s" default(5m)
// @Success 200 {object} UploadResponse
// @Failure 400 {object} ErrorResponse
// @Failure 422 {object} ErrorResponse
// @Router /api/v1/datasets/{kind}/upload [post]
func (h *DatasetHandler) Upload(w http.ResponseWriter, r *http.Request) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return
	}
	if !kind.IsSource() {
		writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("uploads are not supported for %s", kind)))
		return
	}

	r.Body = http.MaxBytesReader(w, r.Body, maxUploadBytes)
	file, header, err := r.FormFile("file")
	if err != nil {
		writeError(w, r, apperrors.InvalidInput("multipart field \"file\" is required: "+err.Error()))
		return
	}
	defer file.Close()

	uploadID := uuid.New().String()
	defer func() {
		if err := h.uploads.Remove(uploadID); err != nil {
			h.logger.Warn("failed to remove upload", zap.String("upload_id", uploadID), zap.Error(err))
		}
	}()

	if utils.FileType(header.Filename) != pipeline.FormatCSV {
		writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("%s is not a .csv file", header.Filename)))
		return
	}
	path, err := h.uploads.FilePath(uploadID, header.Filename)
	if err != nil {
		writeError(w, r, apperrors.InvalidInput(err.Error()))
		return
	}
	if err := saveUpload(path, file); err != nil {
		writeError(w, r, apperrors.Wrap(err, "failed to store upload"))
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), utils.ParseDuration(r.URL.Query().Get("timeout"), DefaultUploadTimeout))
	defer cancel()

	res, err := h.loader.LoadPaths(ctx, kind, []string{path})
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, UploadResponse{
		Load:    res,
		Summary: pipeline.Summarize(res.Table, res.Metric, res.Totals),
	})
}

// ListLoads returns the load history
// @Summary List loads
// @Description Most recent pipeline loads first
// @Tags loads
// @Produce json
// @Param kind query string false "Only loads of this kind"
// @Param limit query int false "Maximum entries" default(100)
// @Success 200 {array} model.LoadRecord
// @Failure 400 {object} ErrorResponse
// @Failure 500 {object} ErrorResponse
// @Router /api/v1/loads [get]
func (h *DatasetHandler) ListLoads(w http.ResponseWriter, r *http.Request) {
	if h.history == nil {
		render.JSON(w, r, []model.LoadRecord{})
		return
	}

	kind := r.URL.Query().Get("kind")
	if kind != "" {
		k, err := model.ParseKind(kind)
		if err != nil {
			writeError(w, r, apperrors.InvalidInput(err.Error()))
			return
		}
		kind = string(k)
	}
	limit := 0
	if v := r.URL.Query().Get("limit"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n <= 0 {
			writeError(w, r, apperrors.InvalidInput(fmt.Sprintf("limit %q must be a positive integer", v)))
			return
		}
		limit = n
	}

	loads, err := h.history.ListLoads(r.Context(), kind, limit)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, loads)
}

// GetLoad returns one load history entry
// @Summary Get load
// @Tags loads
// @Produce json
// @Param id path string true "Load ID"
// @Success 200 {object} model.LoadRecord
// @Failure 404 {object} ErrorResponse
// @Router /api/v1/loads/{id} [get]
func (h *DatasetHandler) GetLoad(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if h.history == nil {
		writeError(w, r, apperrors.NotFound("load "+id))
		return
	}
	rec, err := h.history.GetLoad(r.Context(), id)
	if err != nil {
		writeError(w, r, err)
		return
	}
	render.JSON(w, r, rec)
}

// PurgeCache drops every cached load
// @Summary Purge cache
// @Description Drop cached results so the next request re-reads the source files
// @Tags system
// @Produce json
// @Success 200 {object} PurgeResponse
// @Router /api/v1/cache/purge [post]
func (h *DatasetHandler) PurgeCache(w http.ResponseWriter, r *http.Request) {
	n := 0
	if h.cache != nil {
		n = h.cache.Purge()
	}
	render.JSON(w, r, PurgeResponse{Purged: n})
}

// loadFiltered resolves the kind and filter of a request and loads the
// dataset. On failure the error response is already written.
func (h *DatasetHandler) loadFiltered(w http.ResponseWriter, r *http.Request) (*model.LoadResult, pipeline.Filter, bool) {
	kind, err := kindParam(r)
	if err != nil {
		writeError(w, r, err)
		return nil, pipeline.Filter{}, false
	}
	filter, err := ParseFilter(r.URL.Query())
	if err != nil {
		writeError(w, r, err)
		return nil, pipeline.Filter{}, false
	}
	res, err := h.loader.Load(r.Context(), kind)
	if err != nil {
		writeError(w, r, err)
		return nil, pipeline.Filter{}, false
	}
	return res, filter, true
}

// ParseFilter reads from, to, state, district and pincode query parameters
func ParseFilter(q url.Values) (pipeline.Filter, error) {
	from, err := pipeline.ParseFilterDate(q.Get("from"))
	if err != nil {
		return pipeline.Filter{}, err
	}
	to, err := pipeline.ParseFilterDate(q.Get("to"))
	if err != nil {
		return pipeline.Filter{}, err
	}
	if from != nil && to != nil && from.After(*to) {
		return pipeline.Filter{}, apperrors.InvalidInput("from must not be after to")
	}
	return pipeline.Filter{
		From:      from,
		To:        to,
		States:    splitValues(q["state"]),
		Districts: splitValues(q["district"]),
		Pincode:   strings.TrimSpace(q.Get("pincode")),
	}, nil
}

// splitValues drops blank repeated parameters
func splitValues(values []string) []string {
	var out []string
	for _, v := range values {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func kindParam(r *http.Request) (model.Kind, error) {
	kind, err := model.ParseKind(chi.URLParam(r, "kind"))
	if err != nil {
		return "", apperrors.NotFound(fmt.Sprintf("dataset %q", chi.URLParam(r, "kind")))
	}
	return kind, nil
}

func saveUpload(path string, src io.Reader) error {
	dst, err := os.Create(path)
	if err != nil {
		return err
	}
	if _, err := io.Copy(dst, src); err != nil {
		dst.Close()
		return err
	}
	return dst.Close()
}
