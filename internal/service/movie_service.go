package service

import (
	"context"
	"math"
	"strconv"
	"strings"
	"sync/atomic"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/noah-isme/watchlist/internal/dto"
	"github.com/noah-isme/watchlist/internal/models"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
)

const (
	defaultStoreTimeout = 5 * time.Second
	maxRating           = 5
)

type movieRepository interface {
	Find(ctx context.Context, query models.MovieQuery) ([]models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) error
	UpdateStatus(ctx context.Context, title string, change models.StatusChange) (int64, error)
	Ping(ctx context.Context) error
}

type archiveCache interface {
	Get(ctx context.Context, key string, dest interface{}) (bool, error)
	Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error
	Invalidate(ctx context.Context, pattern string) error
}

// MovieServiceConfig tunes store access.
type MovieServiceConfig struct {
	Timeout  time.Duration
	CacheTTL time.Duration
}

// MovieService is the single entry point to the watchlist store. Store
// failures are logged and counted here; reads degrade to an empty result.
type MovieService struct {
	repo      movieRepository
	cache     archiveCache
	metrics   *MetricsService
	validator *validator.Validate
	logger    *zap.Logger
	cfg       MovieServiceConfig
	now       func() time.Time

	// generation advances on every archive invalidation. A read only fills
	// the cache when no invalidation happened while it was loading.
	generation atomic.Uint64
}

// NewMovieService constructs the watchlist accessor. cache and metrics are optional.
func NewMovieService(repo movieRepository, cache archiveCache, metrics *MetricsService, validate *validator.Validate, logger *zap.Logger, cfg MovieServiceConfig) *MovieService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if validate == nil {
		validate = validator.New()
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = defaultStoreTimeout
	}
	return &MovieService{
		repo:      repo,
		cache:     cache,
		metrics:   metrics,
		validator: validate,
		logger:    logger,
		cfg:       cfg,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// FindMovies returns the records matching query in the requested order. On a
// store failure the result is an empty, non-nil slice together with ErrStorage.
func (s *MovieService) FindMovies(ctx context.Context, query models.MovieQuery) ([]models.Movie, error) {
	key := archiveCacheKey(query)
	if s.cache != nil {
		var cached []models.Movie
		if hit, err := s.cache.Get(ctx, key, &cached); err == nil && hit && cached != nil {
			return cached, nil
		}
	}

	gen := s.generation.Load()

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	movies, err := s.repo.Find(opCtx, query)
	s.metrics.ObserveDBQuery("find_movies", time.Since(start))
	if err != nil {
		s.storeFailure("find_movies", err)
		return []models.Movie{}, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to load watchlist")
	}
	if movies == nil {
		movies = []models.Movie{}
	}

	if s.cache != nil && s.generation.Load() == gen {
		_ = s.cache.Set(ctx, key, movies, s.cfg.CacheTTL)
	}
	return movies, nil
}

// InsertMovie validates a submission and stores it as a new, unwatched record.
func (s *MovieService) InsertMovie(ctx context.Context, req dto.SubmitMovieRequest) (*models.Movie, error) {
	req.Title = strings.TrimSpace(req.Title)
	if err := s.validator.Struct(req); err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid movie payload")
	}

	movie := models.NewMovie(req.Title, models.Genre(req.Type), req.Description, req.Name, s.now())

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	err := s.repo.Insert(opCtx, movie)
	s.metrics.ObserveDBQuery("insert_movie", time.Since(start))
	if err != nil {
		s.storeFailure("insert_movie", err)
		return nil, appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to save movie")
	}

	s.invalidateArchive(ctx)
	s.logger.Info("movie submitted", zap.String("title", movie.Title), zap.String("type", string(movie.Type)))
	return movie, nil
}

// UpdateRating applies a status transition to the first record with the given
// title. Only the watched status keeps the rating and stamps watched_on.
func (s *MovieService) UpdateRating(ctx context.Context, title string, rating float64, status models.WatchStatus) error {
	change := models.NewStatusChange(status, rating, s.now())

	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()

	start := time.Now()
	matched, err := s.repo.UpdateStatus(opCtx, title, change)
	s.metrics.ObserveDBQuery("update_rating", time.Since(start))
	if err != nil {
		s.storeFailure("update_rating", err)
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, "failed to update rating")
	}
	if matched == 0 {
		s.logger.Debug("rating update matched no records", zap.String("title", title))
	}

	s.invalidateArchive(ctx)
	return nil
}

// RateMovie parses the rating form and forwards it to UpdateRating. An unknown
// status label performs no write.
func (s *MovieService) RateMovie(ctx context.Context, req dto.RateMovieRequest) error {
	if err := s.validator.Struct(req); err != nil {
		return appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid rating payload")
	}

	status, err := models.ParseWatchStatus(req.Watched)
	if err != nil {
		s.logger.Warn("ignoring rating with unknown status", zap.String("title", req.Title), zap.String("watched", req.Watched))
		return appErrors.Wrap(err, appErrors.ErrUnknownStatus.Code, appErrors.ErrUnknownStatus.Status, appErrors.ErrUnknownStatus.Message)
	}

	var rating float64
	if status == models.StatusWatched {
		rating, err = parseRating(req.Rating)
		if err != nil {
			return err
		}
	}
	return s.UpdateRating(ctx, req.Title, rating, status)
}

// Ping reports whether the store is reachable.
func (s *MovieService) Ping(ctx context.Context) error {
	opCtx, cancel := context.WithTimeout(ctx, s.cfg.Timeout)
	defer cancel()
	if err := s.repo.Ping(opCtx); err != nil {
		return appErrors.Wrap(err, appErrors.ErrStorage.Code, appErrors.ErrStorage.Status, appErrors.ErrStorage.Message)
	}
	return nil
}

func (s *MovieService) storeFailure(op string, err error) {
	s.metrics.RecordStoreFailure(op)
	s.logger.Error("watchlist store operation failed", zap.String("operation", op), zap.Error(err))
}

func (s *MovieService) invalidateArchive(ctx context.Context) {
	s.generation.Add(1)
	if s.cache == nil {
		return
	}
	_ = s.cache.Invalidate(ctx, archiveCachePattern)
}

func parseRating(raw string) (float64, error) {
	rating, err := strconv.ParseFloat(strings.TrimSpace(raw), 64)
	if err != nil {
		return 0, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "rating must be a number")
	}
	if math.IsNaN(rating) || rating < 0 || rating > maxRating {
		return 0, appErrors.Clone(appErrors.ErrValidation, "rating must be between 0 and 5")
	}
	return rating, nil
}
