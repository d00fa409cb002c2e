package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/service"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
	"github.com/noah-isme/watchlist/pkg/response"
)

// MovieHandler exposes the watchlist as JSON.
type MovieHandler struct {
	movies movieService
	auth   authenticator
}

// NewMovieHandler builds a new handler.
func NewMovieHandler(movies movieService, auth authenticator) *MovieHandler {
	return &MovieHandler{movies: movies, auth: auth}
}

// Login godoc
// @Summary Exchange the password for a session token
// @Tags Auth
// @Accept json
// @Produce json
// @Param payload body dto.LoginRequest true "Password"
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Router /auth/login [post]
func (h *MovieHandler) Login(c *gin.Context) {
	var req dto.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid login payload"))
		return
	}
	session, err := h.auth.Login(req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, session)
}

// List godoc
// @Summary List watchlist entries
// @Tags Movies
// @Produce json
// @Param search query string false "Case-insensitive title search"
// @Param sort query string false "newest, oldest, highest_rating or lowest_rating"
// @Param animated query string false "on to include animated"
// @Param documentary query string false "on to include documentary"
// @Param movie query string false "on to include movie"
// @Param reality query string false "on to include reality"
// @Param series query string false "on to include series"
// @Param not_watched query string false "on to include not watched"
// @Param watching query string false "on to include watching"
// @Param watched query string false "on to include watched"
// @Success 200 {object} response.Envelope
// @Failure 503 {object} response.Envelope
// @Security BearerAuth
// @Router /movies [get]
func (h *MovieHandler) List(c *gin.Context) {
	var form dto.ArchiveForm
	if err := c.ShouldBindQuery(&form); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid query parameters"))
		return
	}
	query := service.BuildMovieQuery(form)
	movies, err := h.movies.FindMovies(c.Request.Context(), query)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.JSON(c, http.StatusOK, movies, map[string]interface{}{"count": len(movies)})
}

// Create godoc
// @Summary Add a title to the watchlist
// @Tags Movies
// @Accept json
// @Produce json
// @Param payload body dto.SubmitMovieRequest true "Movie payload"
// @Success 201 {object} response.Envelope
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /movies [post]
func (h *MovieHandler) Create(c *gin.Context) {
	var req dto.SubmitMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid movie payload"))
		return
	}
	movie, err := h.movies.InsertMovie(c.Request.Context(), req)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Created(c, movie)
}

// Rate godoc
// @Summary Update watch status and rating by title
// @Tags Movies
// @Accept json
// @Produce json
// @Param payload body dto.RateMovieRequest true "Rating payload"
// @Success 204
// @Failure 400 {object} response.Envelope
// @Security BearerAuth
// @Router /movies/rating [patch]
func (h *MovieHandler) Rate(c *gin.Context) {
	var req dto.RateMovieRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.Error(c, appErrors.Wrap(err, appErrors.ErrValidation.Code, http.StatusBadRequest, "invalid rating payload"))
		return
	}
	if err := h.movies.RateMovie(c.Request.Context(), req); err != nil {
		response.Error(c, err)
		return
	}
	response.NoContent(c)
}

// Session godoc
// @Summary Describe the current session
// @Tags Auth
// @Produce json
// @Success 200 {object} response.Envelope
// @Failure 401 {object} response.Envelope
// @Security BearerAuth
// @Router /auth/session [get]
func (h *MovieHandler) Session(c *gin.Context) {
	claims := sessionFromContext(c)
	if claims == nil || claims.ExpiresAt == nil {
		response.Error(c, appErrors.ErrUnauthorized)
		return
	}
	response.JSON(c, http.StatusOK, gin.H{"session_id": claims.ID, "expires_at": claims.ExpiresAt.Time})
}
