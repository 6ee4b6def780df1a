package api

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"uidai-pipeline/internal/api/handler"
	"uidai-pipeline/internal/cache"
	"uidai-pipeline/internal/model"
	"uidai-pipeline/internal/pipeline"
	"uidai-pipeline/internal/source"
	"uidai-pipeline/internal/store"
)

const (
	enrolmentCSV = `date,state,district,pincode,age_0_5,age_5_17,age_18_greater
01-03-2025,Karnataka,Bengaluru Urban,560043,1,2,3
02-03-2025,Karnataka,Mysuru,570001,4,5,6
01-03-2025,Kerala,Ernakulam,682001.0,1,0,0
`
	demographicCSV = `date,state,district,pincode,demo_age_5_17,demo_age_17_
01-03-2025,Karnataka,Bengaluru Urban,560043,2,3
`
	biometricCSV = `date,state,district,pincode,bio_age_5_17,bio_age_17_
01-03-2025,Karnataka,Bengaluru Urban,560043,1,1
`
)

type testServer struct {
	handler http.Handler
	cache   *cache.Cache[*model.LoadResult]
	dataDir string
}

func newTestServer(t *testing.T, withData bool) *testServer {
	t.Helper()

	dataDir := t.TempDir()
	if withData {
		writeFile(t, filepath.Join(dataDir, "enrollment_all (1).csv"), enrolmentCSV)
		writeFile(t, filepath.Join(dataDir, "demo_all (1).csv"), demographicCSV)
		writeFile(t, filepath.Join(dataDir, "mightymerge.io__test.csv"), biometricCSV)
	}

	db, err := store.Open(filepath.Join(t.TempDir(), "pipeline.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	reg := prometheus.NewRegistry()
	c := cache.New[*model.LoadResult](0, zap.NewNop())
	loader := pipeline.NewLoader(source.NewResolver(dataDir), model.DefaultDatasets(), zap.NewNop(),
		pipeline.WithMetrics(pipeline.NewMetrics(reg)),
		pipeline.WithRecorder(db),
		pipeline.WithCache(c),
	)

	r := NewRouter(Options{
		Handler: handler.Config{
			Loader:    loader,
			History:   db,
			Cache:     c,
			UploadDir: t.TempDir(),
			RowLimit:  2,
			Logger:    zap.NewNop(),
		},
		Gatherer:  reg,
		AccessLog: io.Discard,
		Logger:    zap.NewNop(),
	})
	return &testServer{handler: r.Handler(), cache: c, dataDir: dataDir}
}

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
}

func (s *testServer) do(t *testing.T, method, target string, body io.Reader, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, target, body)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func decode[T any](t *testing.T, w *httptest.ResponseRecorder) T {
	t.Helper()
	var v T
	require.NoError(t, json.NewDecoder(w.Body).Decode(&v), w.Body.String())
	return v
}

func TestHealth(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/health", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", decode[handler.HealthResponse](t, w).Status)
}

func TestListDatasets(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/datasets", nil, "")
	require.Equal(t, http.StatusOK, w.Code)

	infos := decode[[]handler.DatasetInfo](t, w)
	require.Len(t, infos, 4)
	assert.Equal(t, model.KindEnrolment, infos[0].Kind)
	assert.Equal(t, []string{filepath.Join(s.dataDir, "enrollment_all (1).csv")}, infos[0].Paths)
	assert.Equal(t, model.KindCombined, infos[3].Kind)
	assert.Len(t, infos[3].Paths, 3)
}

func TestGetDataset_RowLimitAndFilters(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/datasets/enrolment", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handler.TableResponse](t, w)
	assert.Equal(t, 3, resp.TotalRows)
	assert.Equal(t, 2, resp.ReturnedRows)
	assert.Equal(t, "total_enrolments", resp.Metric)
	assert.Equal(t, []string{"date", "state", "district", "pincode", "age_0_5", "age_5_17", "age_18_greater", "month", "total_enrolments"}, resp.Columns)
	assert.Equal(t, "2025-03-01", resp.Rows[0]["date"])
	assert.Equal(t, "2025-03", resp.Rows[0]["month"])
	assert.EqualValues(t, 6, resp.Rows[0]["total_enrolments"])

	w = s.do(t, http.MethodGet, "/api/v1/datasets/enrollment?state=Kerala", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handler.TableResponse](t, w)
	require.Equal(t, 1, resp.TotalRows)
	assert.Equal(t, "682001", resp.Rows[0]["pincode"])

	w = s.do(t, http.MethodGet, "/api/v1/datasets/enrolment?from=2025-03-02&to=2025-03-02", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp = decode[handler.TableResponse](t, w)
	require.Equal(t, 1, resp.TotalRows)
	assert.Equal(t, "Mysuru", resp.Rows[0]["district"])
}

func TestGetDataset_Errors(t *testing.T) {
	tests := []struct {
		name     string
		withData bool
		target   string
		status   int
		code     string
	}{
		{"unknown kind", true, "/api/v1/datasets/census", http.StatusNotFound, "NOT_FOUND"},
		{"bad date", true, "/api/v1/datasets/enrolment?from=01-03-2025", http.StatusBadRequest, "INVALID_INPUT"},
		{"inverted range", true, "/api/v1/datasets/enrolment?from=2025-03-02&to=2025-03-01", http.StatusBadRequest, "INVALID_INPUT"},
		{"no files", false, "/api/v1/datasets/enrolment", http.StatusUnprocessableEntity, "EMPTY_RESULT"},
		{"no files combined", false, "/api/v1/datasets/combined/summary", http.StatusUnprocessableEntity, "EMPTY_RESULT"},
		{"bad export format", true, "/api/v1/datasets/enrolment/export?format=pdf", http.StatusBadRequest, "INVALID_INPUT"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer(t, tt.withData)
			w := s.do(t, http.MethodGet, tt.target, nil, "")
			require.Equal(t, tt.status, w.Code, w.Body.String())
			assert.Equal(t, tt.code, decode[handler.ErrorResponse](t, w).Code)
		})
	}
}

func TestGetDataset_MalformedFile(t *testing.T) {
	s := newTestServer(t, true)
	writeFile(t, filepath.Join(s.dataDir, "enrollment_all (2).csv"), "date,state\n01-03-2025,Goa,extra\n")

	w := s.do(t, http.MethodGet, "/api/v1/datasets/enrolment", nil, "")
	require.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "MALFORMED_FILE", decode[handler.ErrorResponse](t, w).Code)
}

func TestCombinedSummaryAndTrend(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/datasets/combined/summary", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	resp := decode[handler.SummaryResponse](t, w)
	assert.Equal(t, 3, resp.Summary.Records)
	assert.Equal(t, "total_enrolments", resp.Summary.Metric)
	assert.Equal(t, int64(22), resp.Summary.Total)
	assert.Equal(t, map[string]int64{
		"total_enrolments":  22,
		"total_demographic": 5,
		"total_biometric":   2,
	}, resp.Summary.Totals)
	assert.Equal(t, 2, resp.Summary.States)

	w = s.do(t, http.MethodGet, "/api/v1/datasets/combined/trend", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	trend := decode[handler.TrendResponse](t, w)
	require.Len(t, trend.Points, 2)
	assert.Equal(t, int64(7), trend.Points[0].Value)
	assert.Equal(t, int64(15), trend.Points[1].Value)
}

func TestGetOptions(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/datasets/enrolment/options?state=Karnataka", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	opts := decode[handler.OptionsResponse](t, w)
	assert.Equal(t, []string{"Karnataka", "Kerala"}, opts.States)
	assert.Equal(t, []string{"Bengaluru Urban", "Mysuru"}, opts.Districts)
}

func TestExport(t *testing.T) {
	s := newTestServer(t, true)

	w := s.do(t, http.MethodGet, "/api/v1/datasets/enrolment/export?state=Kerala", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "uidai_filtered.csv")

	records, err := csv.NewReader(w.Body).ReadAll()
	require.NoError(t, err)
	require.Len(t, records, 2)
	assert.Equal(t, []string{"2025-03-01", "Kerala", "Ernakulam", "682001", "1", "0", "0", "2025-03", "1"}, records[1])

	w = s.do(t, http.MethodGet, "/api/v1/datasets/enrolment/export?format=xlsx", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Header().Get("Content-Disposition"), "uidai_filtered.xlsx")

	f, err := excelize.OpenReader(w.Body)
	require.NoError(t, err)
	defer f.Close()
	rows, err := f.GetRows(pipeline.ExportSheetName)
	require.NoError(t, err)
	assert.Len(t, rows, 4)
}

func TestUpload(t *testing.T) {
	s := newTestServer(t, false)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "upload.csv")
	require.NoError(t, err)
	_, err = part.Write([]byte(demographicCSV))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	w := s.do(t, http.MethodPost, "/api/v1/datasets/demographic/upload", &body, mw.FormDataContentType())
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	resp := decode[handler.UploadResponse](t, w)
	assert.Equal(t, int64(5), resp.Summary.Total)
	assert.Equal(t, model.KindDemographic, resp.Load.Kind)

	// uploads do not leak into the configured dataset
	w = s.do(t, http.MethodGet, "/api/v1/datasets/demographic", nil, "")
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
}

func TestUpload_Rejected(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodPost, "/api/v1/datasets/combined/upload", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/datasets/enrolment/upload", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestLoadsHistoryAndCache(t *testing.T) {
	s := newTestServer(t, true)

	for i := 0; i < 2; i++ {
		w := s.do(t, http.MethodGet, "/api/v1/datasets/biometric", nil, "")
		require.Equal(t, http.StatusOK, w.Code)
	}

	w := s.do(t, http.MethodGet, "/api/v1/loads?kind=biometric", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	loads := decode[[]model.LoadRecord](t, w)
	require.Len(t, loads, 1, "second request is served from cache")
	assert.Equal(t, model.LoadStatusCompleted, loads[0].Status)
	assert.Equal(t, 1, loads[0].RowCount)

	w = s.do(t, http.MethodGet, "/api/v1/loads/"+loads[0].ID, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, loads[0].ID, decode[model.LoadRecord](t, w).ID)

	w = s.do(t, http.MethodGet, "/api/v1/loads/nope", nil, "")
	assert.Equal(t, http.StatusNotFound, w.Code)

	w = s.do(t, http.MethodGet, "/api/v1/loads?limit=-1", nil, "")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = s.do(t, http.MethodPost, "/api/v1/cache/purge", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 1, decode[handler.PurgeResponse](t, w).Purged)

	s.do(t, http.MethodGet, "/api/v1/datasets/biometric", nil, "")
	loads, err := func() ([]model.LoadRecord, error) {
		w := s.do(t, http.MethodGet, "/api/v1/loads?kind=biometric", nil, "")
		var out []model.LoadRecord
		return out, json.NewDecoder(w.Body).Decode(&out)
	}()
	require.NoError(t, err)
	assert.Len(t, loads, 2)
}

func TestMetricsAndSwagger(t *testing.T) {
	s := newTestServer(t, true)
	s.do(t, http.MethodGet, "/api/v1/datasets/enrolment", nil, "")

	w := s.do(t, http.MethodGet, "/metrics", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `uidai_pipeline_loads_total{kind="enrolment",status="completed"} 1`)

	w = s.do(t, http.MethodGet, "/swagger/doc.json", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "/api/v1/datasets/{kind}")
}

func TestNotFoundIsJSON(t *testing.T) {
	s := newTestServer(t, false)

	w := s.do(t, http.MethodGet, "/nowhere", nil, "")
	require.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "NOT_FOUND", decode[handler.ErrorResponse](t, w).Code)
}

func TestRegisterRoutes(t *testing.T) {
	s := NewRouter(Options{Handler: handler.Config{}, AccessLog: io.Discard})
	routes := s.Routes()
	for _, want := range []string{
		"GET /health",
		"GET /api/v1/datasets/{kind}/export",
		"POST /api/v1/datasets/{kind}/upload",
		"POST /api/v1/cache/purge",
	} {
		assert.Contains(t, routes, want)
	}
}
