package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/render"

	apperrors "uidai-pipeline/internal/errors"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/pipeline"
)

// ErrorResponse is the body of every failed request
type ErrorResponse struct {
	Code  string `json:"code" example:"EMPTY_RESULT"`
	Error string `json:"error" example:"no data loaded for enrolment"`
}

// HealthResponse is returned by the health check
type HealthResponse struct {
	Status    string    `json:"status" example:"ok"`
	Timestamp time.Time `json:"timestamp"`
	Service   string    `json:"service" example:"uidai-pipeline"`
}

// DatasetInfo describes a configured dataset kind
type DatasetInfo struct {
	Kind           model.Kind `json:"kind" example:"enrolment"`
	Paths          []string   `json:"paths"`
	MeasureColumns []string   `json:"measure_columns"`
	Metric         string     `json:"metric" example:"total_enrolments"`
}

// TableResponse is a page of a loaded (and filtered) dataset
type TableResponse struct {
	LoadID       string                   `json:"load_id"`
	Kind         model.Kind               `json:"kind"`
	Metric       string                   `json:"metric"`
	Columns      []string                 `json:"columns"`
	Rows         []map[string]interface{} `json:"rows"`
	TotalRows    int                      `json:"total_rows"`
	ReturnedRows int                      `json:"returned_rows"`
	Warnings     []string                 `json:"warnings"`
	Filter       pipeline.Filter          `json:"filter"`
}

// SummaryResponse wraps the KPIs of a filtered dataset
type SummaryResponse struct {
	Kind     model.Kind      `json:"kind"`
	Summary  model.Summary   `json:"summary"`
	Warnings []string        `json:"warnings"`
	Filter   pipeline.Filter `json:"filter"`
}

// TrendResponse is the metric per date
type TrendResponse struct {
	Kind   model.Kind         `json:"kind"`
	Metric string             `json:"metric"`
	Points []model.TrendPoint `json:"points"`
}

// OptionsResponse lists filter choices. Districts are narrowed by the
// requested states.
type OptionsResponse struct {
	Kind      model.Kind `json:"kind"`
	States    []string   `json:"states"`
	Districts []string   `json:"districts"`
}

// UploadResponse reports a load of an uploaded file
type UploadResponse struct {
	Load    *model.LoadResult `json:"load"`
	Summary model.Summary     `json:"summary"`
}

// PurgeResponse reports how many cache entries were dropped
type PurgeResponse struct {
	Purged int `json:"purged"`
}

// statusFor maps an error code to an HTTP status
func statusFor(err error) int {
	switch apperrors.GetCode(err) {
	case apperrors.CodeEmptyResult,
		apperrors.CodeMalformedFile,
		apperrors.CodeDuplicateColumn,
		apperrors.CodeMissingColumns:
		return http.StatusUnprocessableEntity
	case apperrors.CodeInvalidInput:
		return http.StatusBadRequest
	case apperrors.CodeNotFound:
		return http.StatusNotFound
	}
	return http.StatusInternalServerError
}

func writeError(w http.ResponseWriter, r *http.Request, err error) {
	code := apperrors.GetCode(err)
	if code == "UNKNOWN" {
		code = apperrors.CodeInternalError
	}
	render.Status(r, statusFor(err))
	render.JSON(w, r, ErrorResponse{Code: code, Error: err.Error()})
}

// rowsForJSON renders dates as YYYY-MM-DD and keeps counts numeric
func rowsForJSON(t model.Table) []map[string]interface{} {
	out := make([]map[string]interface{}, 0, t.Len())
	for _, rec := range t.Rows {
		row := make(map[string]interface{}, len(t.Columns))
		for _, c := range t.Columns {
			switch v := rec[c].(type) {
			case time.Time:
				row[c] = v.Format(pipeline.FilterDateLayout)
			default:
				row[c] = v
			}
		}
		out = append(out, row)
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
