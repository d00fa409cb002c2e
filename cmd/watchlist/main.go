package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
	"go.uber.org/zap"

	_ "github.com/noah-isme/watchlist/api/swagger"
	"github.com/noah-isme/watchlist/internal/handler"
	"github.com/noah-isme/watchlist/internal/middleware"
	"github.com/noah-isme/watchlist/internal/models"
	"github.com/noah-isme/watchlist/internal/repository"
	"github.com/noah-isme/watchlist/internal/service"
	"github.com/noah-isme/watchlist/internal/view"
	"github.com/noah-isme/watchlist/pkg/cache"
	"github.com/noah-isme/watchlist/pkg/config"
	"github.com/noah-isme/watchlist/pkg/database"
	appErrors "github.com/noah-isme/watchlist/pkg/errors"
	"github.com/noah-isme/watchlist/pkg/export"
	"github.com/noah-isme/watchlist/pkg/logger"
	corsmiddleware "github.com/noah-isme/watchlist/pkg/middleware/cors"
	"github.com/noah-isme/watchlist/pkg/middleware/ratelimit"
	reqidmiddleware "github.com/noah-isme/watchlist/pkg/middleware/requestid"
	"github.com/noah-isme/watchlist/pkg/response"
)

// @title Watchlist API
// @version 1.0.0
// @description Personal movie watchlist
// @BasePath /
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

const shutdownTimeout = 10 * time.Second

type movieStore interface {
	Find(ctx context.Context, query models.MovieQuery) ([]models.Movie, error)
	Insert(ctx context.Context, movie *models.Movie) error
	UpdateStatus(ctx context.Context, title string, change models.StatusChange) (int64, error)
	Ping(ctx context.Context) error
}

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		log.Fatalf("invalid config: %v", err)
	}

	logr, err := logger.New(cfg)
	if err != nil {
		log.Fatalf("failed to init logger: %v", err)
	}
	defer logr.Sync() //nolint:errcheck

	if cfg.Env == config.EnvProduction {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	store, closeStore, err := openStore(ctx, cfg)
	if err != nil {
		logr.Fatal("failed to open store", zap.String("driver", cfg.Storage.Driver), zap.Error(err))
	}

	metrics := service.NewMetricsService()

	var cacheSvc *service.CacheService
	closeCache := func() error { return nil }
	if cfg.Cache.Enabled {
		rdb, err := cache.NewRedis(ctx, cfg.Redis)
		if err != nil {
			logr.Warn("redis unavailable, archive cache disabled", zap.Error(err))
		} else {
			closeCache = rdb.Close
			cacheSvc = service.NewCacheService(repository.NewCacheRepository(rdb, logr), metrics, cfg.Cache.TTL, logr, true)
		}
	}

	movieSvc := service.NewMovieService(store, cacheSvc, metrics, validator.New(), logr, service.MovieServiceConfig{
		Timeout:  cfg.Storage.Timeout,
		CacheTTL: cfg.Cache.TTL,
	})
	authSvc, err := service.NewAuthService(service.AuthConfig{
		Password:      cfg.Password,
		SessionSecret: cfg.Session.Secret,
		SessionTTL:    cfg.Session.TTL,
	}, metrics, logr)
	if err != nil {
		logr.Fatal("failed to init auth", zap.Error(err))
	}
	exportSvc := service.NewExportService(movieSvc, logr, &export.CSVExporter{UseCRLF: true}, export.NewPDFExporter())

	tmpl, err := view.Templates()
	if err != nil {
		logr.Fatal("failed to parse templates", zap.Error(err))
	}

	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(reqidmiddleware.Middleware())
	r.Use(logger.GinMiddleware(logr))
	r.Use(corsmiddleware.New(cfg.CORS.AllowedOrigins))
	r.Use(middleware.Metrics(metrics))
	r.SetHTMLTemplate(tmpl)
	r.StaticFS("/static", http.FS(view.Static()))

	metricsHandler := handler.NewMetricsHandler(metrics, movieSvc)
	r.GET("/health", metricsHandler.Health)
	r.GET("/ready", metricsHandler.Ready)
	r.GET("/metrics", metricsHandler.Prometheus)

	if cfg.Env != config.EnvProduction {
		r.GET("/docs/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))
	}

	loginLimiter := ratelimit.New(cfg.Login.RateLimit, cfg.Login.RateBurst)
	cookie := handler.SessionCookie{Name: cfg.Session.CookieName, TTL: cfg.Session.TTL, Secure: cfg.Session.Secure}

	pages := handler.NewPageHandler(movieSvc, authSvc, cookie, cfg.Login.Delay, logr)
	r.GET("/", pages.Index)
	r.POST("/", loginLimiter.Middleware(pages.LoginLimited), pages.Login)
	r.GET("/logout", pages.Logout)

	gated := r.Group("/", middleware.RequirePage(authSvc, cfg.Session.CookieName))
	gated.POST("/home", pages.Home)
	gated.POST("/archive", pages.Archive)
	gated.POST("/archive/rated", pages.Rated)
	gated.POST("/rate", pages.Rate)
	gated.GET("/archive/export", handler.NewExportHandler(exportSvc).Download)

	movieHandler := handler.NewMovieHandler(movieSvc, authSvc)
	api := r.Group(cfg.APIPrefix)
	api.POST("/auth/login", loginLimiter.Middleware(func(c *gin.Context) {
		response.Error(c, appErrors.ErrTooManyRequests)
	}), movieHandler.Login)

	secured := api.Group("", middleware.RequireAPI(authSvc, cfg.Session.CookieName))
	secured.GET("/auth/session", movieHandler.Session)
	secured.GET("/movies", movieHandler.List)
	secured.POST("/movies", movieHandler.Create)
	secured.PATCH("/movies/rating", movieHandler.Rate)
	secured.GET("/stats", metricsHandler.Stats)

	srv := &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           r,
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		logr.Info("server starting", zap.String("addr", srv.Addr), zap.String("env", cfg.Env), zap.String("storage", cfg.Storage.Driver))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logr.Fatal("server failed", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logr.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logr.Error("http shutdown", zap.Error(err))
	}
	if err := closeStore(shutdownCtx); err != nil {
		logr.Error("store close", zap.Error(err))
	}
	if err := closeCache(); err != nil {
		logr.Error("redis close", zap.Error(err))
	}
}

// openStore connects the configured backend and returns its repository with a
// matching close function.
func openStore(ctx context.Context, cfg *config.Config) (movieStore, func(context.Context) error, error) {
	switch cfg.Storage.Driver {
	case config.StoragePostgres:
		db, err := database.NewPostgres(ctx, cfg.Database)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMoviePostgresRepository(db)
		if err := repo.EnsureSchema(ctx); err != nil {
			_ = db.Close()
			return nil, nil, err
		}
		return repo, func(context.Context) error { return db.Close() }, nil
	default:
		client, err := database.NewMongo(ctx, cfg.Mongo)
		if err != nil {
			return nil, nil, err
		}
		repo := repository.NewMovieMongoRepository(client, cfg.Mongo.Database, cfg.Mongo.Collection)
		return repo, client.Disconnect, nil
	}
}
