package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/internal/service"
	"github.com/noah-isme/watchlist/internal/view"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
	"github.com/noah-isme/watchlist/pkg/response"
)

const (
	pageTitle = "Watchlist"

	noticeWrongPassword = "Incorrect password."
	noticeTooManyLogins = "Too many attempts, wait a moment and try again."
	noticeLoadFailed    = "The archive could not be loaded right now. Please try again."
	noticeSaveFailed    = "Your submission could not be saved. Please try again."
	noticeInvalidMovie  = "A title and a known type are required."
	noticeRateFailed    = "The rating could not be saved. Please try again."
	noticeInvalidRating = "Ratings must be a number between 0 and 5."
	noticeUnknownStatus = "Pick one of not watched, watching or watched."
)

type movieService interface {
	FindMovies(ctx context.Context, query models.MovieQuery) ([]models.Movie, error)
	InsertMovie(ctx context.Context, req dto.SubmitMovieRequest) (*models.Movie, error)
	RateMovie(ctx context.Context, req dto.RateMovieRequest) error
}

type authenticator interface {
	Login(req dto.LoginRequest) (*dto.LoginResponse, error)
}

// SessionCookie describes the cookie carrying the session token.
type SessionCookie struct {
	Name   string
	TTL    time.Duration
	Secure bool
}

// PageHandler serves the HTML pages.
type PageHandler struct {
	movies     movieService
	auth       authenticator
	cookie     SessionCookie
	loginDelay time.Duration
	logger     *zap.Logger
}

// NewPageHandler constructs the page handler.
func NewPageHandler(movies movieService, auth authenticator, cookie SessionCookie, loginDelay time.Duration, logger *zap.Logger) *PageHandler {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &PageHandler{movies: movies, auth: auth, cookie: cookie, loginDelay: loginDelay, logger: logger}
}

// Index renders the password page after the login delay.
func (h *PageHandler) Index(c *gin.Context) {
	h.wait(c.Request.Context())
	response.HTML(c, http.StatusOK, view.PageIndex, view.NewPageData(pageTitle))
}

// Login checks the password. Success sets the session cookie and shows the
// home page; failure shows the password page again after the login delay.
func (h *PageHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	_ = c.ShouldBind(&req)

	session, err := h.auth.Login(req)
	if err != nil {
		h.wait(c.Request.Context())
		data := view.NewPageData(pageTitle)
		data.Notice = noticeWrongPassword
		response.HTML(c, http.StatusUnauthorized, view.PageIndex, data)
		return
	}

	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, session.Token, int(h.cookie.TTL.Seconds()), "/", "", h.cookie.Secure, true)
	response.HTML(c, http.StatusOK, view.PageHome, view.NewPageData(pageTitle))
}

// LoginLimited answers throttled password attempts.
func (h *PageHandler) LoginLimited(c *gin.Context) {
	data := view.NewPageData(pageTitle)
	data.Notice = noticeTooManyLogins
	response.HTML(c, http.StatusTooManyRequests, view.PageIndex, data)
}

// Logout clears the session cookie.
func (h *PageHandler) Logout(c *gin.Context) {
	c.SetSameSite(http.SameSiteLaxMode)
	c.SetCookie(h.cookie.Name, "", -1, "/", "", h.cookie.Secure, true)
	c.Redirect(http.StatusSeeOther, "/")
}

// Home stores a submission when a title field was posted, then renders the
// home page.
func (h *PageHandler) Home(c *gin.Context) {
	data := view.NewPageData(pageTitle)

	if _, submitted := c.GetPostForm("title"); submitted {
		var req dto.SubmitMovieRequest
		_ = c.ShouldBind(&req)
		if _, err := h.movies.InsertMovie(c.Request.Context(), req); err != nil {
			data.Notice = noticeSaveFailed
			if appErrors.Is(err, appErrors.ErrValidation) {
				data.Notice = noticeInvalidMovie
			}
		}
	}

	response.HTML(c, http.StatusOK, view.PageHome, data)
}

// Archive renders the filtered archive.
func (h *PageHandler) Archive(c *gin.Context) {
	var form dto.ArchiveForm
	_ = c.ShouldBind(&form)

	query := service.BuildMovieQuery(form)
	movies, err := h.movies.FindMovies(c.Request.Context(), query)

	data := view.NewPageData(pageTitle)
	data.Search = query.Search
	data.SetExportFilters(form.Values())
	data.Movies = view.Fragment(movies)
	if err != nil {
		data.Notice = noticeLoadFailed
	}
	response.HTML(c, http.StatusOK, view.PageArchive, data)
}

// Rated applies a rating and renders the full archive, most recently updated first.
func (h *PageHandler) Rated(c *gin.Context) {
	var req dto.RateMovieRequest
	_ = c.ShouldBind(&req)

	data := view.NewPageData(pageTitle)
	if err := h.movies.RateMovie(c.Request.Context(), req); err != nil {
		switch {
		case appErrors.Is(err, appErrors.ErrUnknownStatus):
			data.Notice = noticeUnknownStatus
		case appErrors.Is(err, appErrors.ErrValidation):
			data.Notice = noticeInvalidRating
		default:
			data.Notice = noticeRateFailed
		}
	}

	movies, err := h.movies.FindMovies(c.Request.Context(), models.UnfilteredQuery())
	if err != nil && data.Notice == "" {
		data.Notice = noticeLoadFailed
	}
	data.Movies = view.Fragment(movies)
	response.HTML(c, http.StatusOK, view.PageArchive, data)
}

// Rate renders the rating page for the posted title.
func (h *PageHandler) Rate(c *gin.Context) {
	var req dto.RatePageRequest
	_ = c.ShouldBind(&req)

	data := view.NewPageData(pageTitle)
	data.Title = req.Title
	response.HTML(c, http.StatusOK, view.PageRate, data)
}

// wait blocks for the login delay unless the request goes away first.
func (h *PageHandler) wait(ctx context.Context) {
	if h.loginDelay <= 0 {
		return
	}
	timer := time.NewTimer(h.loginDelay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
	case <-timer.C:
	}
}
