package handler

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/internal/view"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
)

type movieServiceMock struct {
	movies    []models.Movie
	findErr   error
	insertErr error
	rateErr   error

	queries  []models.MovieQuery
	inserted []dto.SubmitMovieRequest
	rated    []dto.RateMovieRequest
}

func (m *movieServiceMock) FindMovies(ctx context.Context, query models.MovieQuery) ([]models.Movie, error) {
	m.queries = append(m.queries, query)
	if m.findErr != nil {
		return []models.Movie{}, m.findErr
	}
	return m.movies, nil
}

func (m *movieServiceMock) InsertMovie(ctx context.Context, req dto.SubmitMovieRequest) (*models.Movie, error) {
	m.inserted = append(m.inserted, req)
	if m.insertErr != nil {
		return nil, m.insertErr
	}
	return models.NewMovie(req.Title, models.Genre(req.Type), req.Description, req.Name, time.Now()), nil
}

func (m *movieServiceMock) RateMovie(ctx context.Context, req dto.RateMovieRequest) error {
	m.rated = append(m.rated, req)
	return m.rateErr
}

type authMock struct {
	password string
}

func (a authMock) Login(req dto.LoginRequest) (*dto.LoginResponse, error) {
	if req.Password != a.password {
		return nil, appErrors.ErrInvalidPassword
	}
	return &dto.LoginResponse{Token: "signed-token", ExpiresIn: 3600}, nil
}

var storeDown = appErrors.Wrap(errors.New("no reachable servers"), appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed")

func newPageRouter(t *testing.T, movies *movieServiceMock, delay time.Duration) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	tmpl, err := view.Templates()
	require.NoError(t, err)

	h := NewPageHandler(movies, authMock{password: "secret1"}, SessionCookie{Name: "sid", TTL: time.Hour}, delay, nil)
	r := gin.New()
	r.SetHTMLTemplate(tmpl)
	r.GET("/", h.Index)
	r.POST("/", h.Login)
	r.GET("/logout", h.Logout)
	r.POST("/home", h.Home)
	r.POST("/archive", h.Archive)
	r.POST("/archive/rated", h.Rated)
	r.POST("/rate", h.Rate)
	return r
}

func postForm(r *gin.Engine, path string, form url.Values) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestPageIndexWaitsForLoginDelay(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 30*time.Millisecond)
	start := time.Now()
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.GreaterOrEqual(t, time.Since(start), 30*time.Millisecond)
	assert.Contains(t, rec.Body.String(), `name="password"`)
}

func TestPageLoginSuccessSetsCookie(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 0)
	rec := postForm(r, "/", url.Values{"password": {"secret1"}})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `action="/home"`)
	cookie := rec.Header().Get("Set-Cookie")
	assert.Contains(t, cookie, "sid=signed-token")
	assert.Contains(t, cookie, "HttpOnly")
}

func TestPageLoginFailureShowsIndex(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 0)
	rec := postForm(r, "/", url.Values{"password": {"nope"}})

	assert.Equal(t, http.StatusUnauthorized, rec.Code)
	assert.Contains(t, rec.Body.String(), noticeWrongPassword)
	assert.Empty(t, rec.Header().Get("Set-Cookie"))
}

func TestPageLogoutClearsCookie(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 0)
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/logout", nil))
	assert.Equal(t, http.StatusSeeOther, rec.Code)
	assert.Contains(t, rec.Header().Get("Set-Cookie"), "Max-Age=0")
}

func TestPageHomeInsertsOnlyWithTitle(t *testing.T) {
	movies := &movieServiceMock{}
	r := newPageRouter(t, movies, 0)

	rec := postForm(r, "/home", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, movies.inserted)

	rec = postForm(r, "/home", url.Values{"title": {"Alien"}, "type": {"movie"}, "description": {"space"}, "name": {"sam"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, movies.inserted, 1)
	assert.Equal(t, dto.SubmitMovieRequest{Title: "Alien", Type: "movie", Description: "space", Name: "sam"}, movies.inserted[0])
	assert.NotContains(t, rec.Body.String(), `class="notice"`)
}

func TestPageHomeShowsNoticeOnFailure(t *testing.T) {
	movies := &movieServiceMock{insertErr: storeDown}
	r := newPageRouter(t, movies, 0)

	rec := postForm(r, "/home", url.Values{"title": {"Alien"}, "type": {"movie"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), noticeSaveFailed)
}

func TestPageArchiveBuildsQuery(t *testing.T) {
	movies := &movieServiceMock{movies: []models.Movie{{Title: "Alien", Type: models.GenreMovie, Watched: models.StatusWatched, Rating: 4}}}
	r := newPageRouter(t, movies, 0)

	rec := postForm(r, "/archive", url.Values{"search": {" ali "}, "sort": {"highest_rating"}, "movie": {"on"}, "watched": {"on"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, movies.queries, 1)
	assert.Equal(t, models.MovieQuery{
		Search:  "ali",
		Genres:  []models.Genre{models.GenreMovie},
		Watched: []models.WatchStatus{models.StatusWatched},
		Sort:    models.SortSpec{Field: models.SortByRating, Direction: models.SortDesc},
	}, movies.queries[0])
	assert.Contains(t, rec.Body.String(), `id="rate-0"`)
}

func TestPageArchiveLinksExportWithFilters(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 0)

	rec := postForm(r, "/archive", url.Values{"search": {"ali"}, "series": {"on"}, "sort": {"oldest"}})
	require.Equal(t, http.StatusOK, rec.Code)

	doc, err := goquery.NewDocumentFromReader(rec.Body)
	require.NoError(t, err)
	links := doc.Find("p.export a")
	require.Equal(t, 2, links.Length())

	for i, format := range []string{"csv", "pdf"} {
		href, ok := links.Eq(i).Attr("href")
		require.True(t, ok)
		u, err := url.Parse(href)
		require.NoError(t, err)
		assert.Equal(t, "/archive/export", u.Path)
		assert.Equal(t, url.Values{"format": {format}, "search": {"ali"}, "series": {"on"}, "sort": {"oldest"}}, u.Query())
	}
}

func TestPageArchiveDegradesOnStoreFailure(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{findErr: storeDown}, 0)

	rec := postForm(r, "/archive", url.Values{})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), noticeLoadFailed)
	assert.NotContains(t, rec.Body.String(), "<fieldset")
}

func TestPageRatedUpdatesThenListsEverything(t *testing.T) {
	movies := &movieServiceMock{}
	r := newPageRouter(t, movies, 0)

	rec := postForm(r, "/archive/rated", url.Values{"title": {"Alien"}, "rating": {"4"}, "watched": {"watched"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	require.Len(t, movies.rated, 1)
	assert.Equal(t, dto.RateMovieRequest{Title: "Alien", Rating: "4", Watched: "watched"}, movies.rated[0])
	require.Len(t, movies.queries, 1)
	assert.Equal(t, models.UnfilteredQuery(), movies.queries[0])
}

func TestPageRatedUnknownStatusNotice(t *testing.T) {
	movies := &movieServiceMock{rateErr: appErrors.ErrUnknownStatus}
	r := newPageRouter(t, movies, 0)

	rec := postForm(r, "/archive/rated", url.Values{"title": {"Alien"}, "watched": {"finished"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), noticeUnknownStatus)
	assert.Len(t, movies.queries, 1)
}

func TestPageRateShowsEscapedTitle(t *testing.T) {
	r := newPageRouter(t, &movieServiceMock{}, 0)
	rec := postForm(r, "/rate", url.Values{"title": {"<i>Alien</i>"}, "watched": {"-1"}})
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "&lt;i&gt;Alien&lt;/i&gt;")
	assert.Contains(t, rec.Body.String(), `action="/archive/rated"`)
}
