package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/watchlist/internal/middleware"
	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/internal/service"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
)

func newMovieRouter(movies *movieServiceMock) *gin.Engine {
	gin.SetMode(gin.TestMode)
	h := NewMovieHandler(movies, authMock{password: "secret1"})
	r := gin.New()
	r.POST("/auth/login", h.Login)
	r.GET("/movies", h.List)
	r.POST("/movies", h.Create)
	r.PATCH("/movies/rating", h.Rate)
	return r
}

func doJSON(r *gin.Engine, method, path string, body interface{}) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestMovieHandlerLogin(t *testing.T) {
	r := newMovieRouter(&movieServiceMock{})

	rec := doJSON(r, http.MethodPost, "/auth/login", map[string]string{"password": "secret1"})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "signed-token")

	rec = doJSON(r, http.MethodPost, "/auth/login", map[string]string{"password": "wrong"})
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), "INVALID_PASSWORD")
}

func TestMovieHandlerList(t *testing.T) {
	movies := &movieServiceMock{movies: []models.Movie{{Title: "Alien", Type: models.GenreMovie}}}
	r := newMovieRouter(movies)

	rec := doJSON(r, http.MethodGet, "/movies?search=ali&series=on&sort=oldest", nil)
	require.Equal(t, http.StatusOK, rec.Code)

	var payload struct {
		Data []models.Movie        `json:"data"`
		Meta map[string]interface{} `json:"meta"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &payload))
	assert.Len(t, payload.Data, 1)
	assert.Equal(t, float64(1), payload.Meta["count"])

	require.Len(t, movies.queries, 1)
	assert.Equal(t, "ali", movies.queries[0].Search)
	assert.Equal(t, []models.Genre{models.GenreSeries}, movies.queries[0].Genres)
	assert.Equal(t, models.SortSpec{Field: models.SortBySubmittedOn, Direction: models.SortAsc}, movies.queries[0].Sort)
}

func TestMovieHandlerListStoreFailure(t *testing.T) {
	r := newMovieRouter(&movieServiceMock{findErr: storeDown})
	rec := doJSON(r, http.MethodGet, "/movies", nil)
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	assert.Contains(t, rec.Body.String(), "STORAGE_ERROR")
}

func TestMovieHandlerCreate(t *testing.T) {
	movies := &movieServiceMock{}
	r := newMovieRouter(movies)

	rec := doJSON(r, http.MethodPost, "/movies", map[string]string{"title": "Alien", "type": "movie"})
	assert.Equal(t, http.StatusCreated, rec.Code)
	require.Len(t, movies.inserted, 1)

	movies.insertErr = appErrors.Clone(appErrors.ErrValidation, "invalid movie payload")
	rec = doJSON(r, http.MethodPost, "/movies", map[string]string{"title": "Alien", "type": "opera"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestMovieHandlerRate(t *testing.T) {
	movies := &movieServiceMock{}
	r := newMovieRouter(movies)

	rec := doJSON(r, http.MethodPatch, "/movies/rating", map[string]string{"title": "Alien", "rating": "5", "watched": "watched"})
	assert.Equal(t, http.StatusNoContent, rec.Code)

	movies.rateErr = appErrors.Wrap(errors.New("unknown watch status \"done\""), appErrors.ErrUnknownStatus.Code, appErrors.ErrUnknownStatus.Status, appErrors.ErrUnknownStatus.Message)
	rec = doJSON(r, http.MethodPatch, "/movies/rating", map[string]string{"title": "Alien", "watched": "done"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "UNKNOWN_STATUS")
}

func TestMovieHandlerSession(t *testing.T) {
	gin.SetMode(gin.TestMode)
	h := NewMovieHandler(&movieServiceMock{}, authMock{})
	expires := time.Date(2026, 10, 17, 0, 0, 0, 0, time.UTC)

	r := gin.New()
	r.GET("/session", func(c *gin.Context) {
		c.Set(middleware.ContextSessionKey, &service.SessionClaims{RegisteredClaims: jwt.RegisteredClaims{ID: "abc", ExpiresAt: jwt.NewNumericDate(expires)}})
		c.Next()
	}, h.Session)
	r.GET("/anonymous", h.Session)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/session", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"session_id":"abc"`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/anonymous", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

type exporterMock struct {
	result *service.ExportResult
	err    error
	format service.ExportFormat
}

func (e *exporterMock) Generate(ctx context.Context, query models.MovieQuery, format service.ExportFormat) (*service.ExportResult, error) {
	e.format = format
	return e.result, e.err
}

func TestExportHandlerDownload(t *testing.T) {
	gin.SetMode(gin.TestMode)
	exp := &exporterMock{result: &service.ExportResult{Filename: "watchlist.csv", ContentType: "text/csv; charset=utf-8", Payload: []byte("title\nAlien\n")}}
	r := gin.New()
	r.GET("/archive/export", NewExportHandler(exp).Download)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/export?format=csv", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, `attachment; filename="watchlist.csv"`, rec.Header().Get("Content-Disposition"))
	assert.Equal(t, "title\nAlien\n", rec.Body.String())
	assert.Equal(t, service.ExportFormatCSV, exp.format)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/export?format=xlsx", nil))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	exp.err = storeDown
	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/archive/export", nil))
	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
}

type pingerMock struct{ err error }

func (p pingerMock) Ping(ctx context.Context) error { return p.err }

func TestMetricsHandlerReady(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/ready-ok", NewMetricsHandler(nil, pingerMock{}).Ready)
	r.GET("/ready-down", NewMetricsHandler(nil, pingerMock{err: errors.New("down")}).Ready)
	r.GET("/health", NewMetricsHandler(nil, nil).Health)

	for path, want := range map[string]int{"/ready-ok": http.StatusOK, "/ready-down": http.StatusServiceUnavailable, "/health": http.StatusOK} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, want, rec.Code, path)
	}
}

func TestMetricsHandlerPrometheusAndStats(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metrics := service.NewMetricsService()
	metrics.RecordStoreFailure("find_movies")
	h := NewMetricsHandler(metrics, nil)
	r := gin.New()
	r.GET("/metrics", h.Prometheus)
	r.GET("/stats", h.Stats)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `watchlist_store_failures_total{operation="find_movies"} 1`)

	rec = httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/stats", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"store_failures":1`)
}
