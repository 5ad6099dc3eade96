package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"sensor-anomaly-service/internal/adapters/primary/http/dto"
	"sensor-anomaly-service/internal/adapters/primary/http/middleware"
	"sensor-anomaly-service/internal/core/domain"
	"sensor-anomaly-service/internal/core/services"
	"sensor-anomaly-service/internal/testutil"
)

const sensorCSV = "timestamp,temperature,vibration,pressure\n" +
	"2024-01-01T00:00:00,40,0.2,1000\n" +
	"2024-01-01T00:01:00,70,0.2,1000\n" +
	"2024-01-01T00:02:00,41,0.9,1000\n"

func init() {
	gin.SetMode(gin.TestMode)
}

func setupRouter(t *testing.T, runs *testutil.MockRunRepo, mw ...gin.HandlerFunc) (*gin.Engine, *testutil.MemoryStore) {
	t.Helper()
	store := testutil.NewMemoryStore()
	renderer := new(testutil.MockRenderer)
	renderer.On("Render", mock.Anything, mock.Anything).Return(nil)

	var svc *services.AnalysisService
	if runs != nil {
		svc = services.NewAnalysisService(store, renderer, runs, nil, services.AnalysisOptions{})
	} else {
		svc = services.NewAnalysisService(store, renderer, nil, nil, services.AnalysisOptions{})
	}

	h := New(svc)
	r := gin.New()
	r.Use(mw...)
	r.SetHTMLTemplate(Templates())
	h.RegisterPages(r)
	h.RegisterRoutes(r.Group("/api/v1"))
	return r, store
}

func multipartBody(t *testing.T, field, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	if field != "" {
		fw, err := mw.CreateFormFile(field, fileName)
		require.NoError(t, err)
		_, err = fw.Write([]byte(content))
		require.NoError(t, err)
	}
	require.NoError(t, mw.Close())
	return &buf, mw.FormDataContentType()
}

func TestIndex_RendersForm(t *testing.T) {
	r, _ := setupRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/", nil))

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `name="file"`)
	assert.NotContains(t, w.Body.String(), "Download annotated CSV")
}

func TestUpload_RendersVerdictAndPreview(t *testing.T) {
	r, store := setupRouter(t, nil)

	body, ct := multipartBody(t, "file", "sensor_data.csv", sensorCSV)
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	page := w.Body.String()
	assert.Contains(t, page, domain.SummaryFaulty)
	assert.Contains(t, page, "/artifacts/anomaly_plot.png?run=")
	assert.Contains(t, page, "<th>final_status</th>")
	assert.NotNil(t, store.Bytes(domain.DefaultAnnotatedCSVName))
}

func TestUpload_MissingFile(t *testing.T) {
	r, _ := setupRouter(t, nil)

	body, ct := multipartBody(t, "", "", "")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), domain.ErrMissingFile.Error())
}

func TestUpload_MissingColumnRendersError(t *testing.T) {
	r, _ := setupRouter(t, nil)

	body, ct := multipartBody(t, "file", "bad.csv", "temperature\n40\n")
	req := httptest.NewRequest(http.MethodPost, "/", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, w.Body.String(), "pressure")
}

func TestDownload(t *testing.T) {
	r, store := setupRouter(t, nil)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)

	require.NoError(t, store.Put(context.Background(), domain.DefaultAnnotatedCSVName, "text/csv", []byte("a,b\n")))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/download", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "a,b\n", w.Body.String())
	assert.Equal(t, `attachment; filename="sensor_data_with_anomaly.csv"`, w.Header().Get("Content-Disposition"))
}

func TestGetArtifact(t *testing.T) {
	r, store := setupRouter(t, nil)
	require.NoError(t, store.Put(context.Background(), "anomaly_plot.png", "image/png", []byte("png")))

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts/anomaly_plot.png", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "image/png", w.Header().Get("Content-Type"))
	assert.Empty(t, w.Header().Get("Content-Disposition"))

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts/..", nil))
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/artifacts/missing.png", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestCreateAnalysis_JSON(t *testing.T) {
	r, _ := setupRouter(t, nil)

	body, ct := multipartBody(t, "file", "sensor_data.csv", sensorCSV)
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	require.Equal(t, http.StatusCreated, w.Code)
	var resp dto.AnalysisResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Faulty)
	assert.Equal(t, 3, resp.Run.RowCount)
	assert.Equal(t, 2, resp.Run.AnomalyCount)
	assert.Equal(t, "/artifacts/sensor_data_with_anomaly.csv", resp.AnnotatedCSVURL)
	assert.Equal(t, "/artifacts/anomaly_plot.png", resp.PlotURL)
}

func TestCreateAnalysis_BadNumber(t *testing.T) {
	r, _ := setupRouter(t, nil)

	body, ct := multipartBody(t, "file", "a.csv", "temperature,vibration,pressure\n40,oops,1000\n")
	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.True(t, strings.Contains(w.Body.String(), "oops"))
}

func TestListRuns(t *testing.T) {
	r, _ := setupRouter(t, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs", nil))
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)

	runs := new(testutil.MockRunRepo)
	runs.On("ListRecent", mock.Anything, 5).Return([]*domain.AnalysisRun{
		{FileName: "a.csv", Verdict: domain.DatasetNormal},
	}, nil)
	r, _ = setupRouter(t, runs)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit=5", nil))
	require.Equal(t, http.StatusOK, w.Code)

	var resp dto.ListRunsResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, 1, resp.Total)
	assert.Equal(t, "a.csv", resp.Items[0].FileName)
	runs.AssertExpectations(t)
}

func TestCreateAnalysis_UploadTooBig(t *testing.T) {
	r, _ := setupRouter(t, nil, middleware.MaxBody(512))
	body, ct := multipartBody(t, "file", "a.csv", strings.Repeat("x", 4096))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/analyses", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, w.Code)
}

func TestListRuns_InvalidLimit(t *testing.T) {
	runs := new(testutil.MockRunRepo)
	r, _ := setupRouter(t, runs)

	for _, q := range []string{"abc", "0", "-3"} {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/runs?limit="+q, nil))
		assert.Equal(t, http.StatusBadRequest, w.Code, q)
		assert.Contains(t, w.Body.String(), domain.ErrInvalidLimit.Error())
	}
	runs.AssertNotCalled(t, "ListRecent", mock.Anything, mock.Anything)
}
