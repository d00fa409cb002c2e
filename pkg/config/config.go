package config

import (
	"errors"
	"fmt"
	"io/fs"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

const (
	EnvDevelopment = "development"
	EnvProduction  = "production"
)

// Supported storage backends.
const (
	StorageMongo    = "mongo"
	StoragePostgres = "postgres"
)

type Config struct {
	Env       string
	Port      int
	APIPrefix string
	Password  string

	Storage  StorageConfig
	Mongo    MongoConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Cache    CacheConfig
	Session  SessionConfig
	Login    LoginConfig
	CORS     CORSConfig
	Log      LogConfig
}

// StorageConfig selects the persistence backend.
type StorageConfig struct {
	Driver  string
	Timeout time.Duration
}

// MongoConfig locates the watchlist collection.
type MongoConfig struct {
	URI        string
	Database   string
	Collection string
}

type DatabaseConfig struct {
	Host         string
	Port         int
	User         string
	Password     string
	Name         string
	SSLMode      string
	MaxOpenConns int
	MaxIdleConns int
}

type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// CacheConfig governs archive caching.
type CacheConfig struct {
	Enabled bool
	TTL     time.Duration
}

// SessionConfig configures the signed session cookie issued after login.
type SessionConfig struct {
	Secret     string
	TTL        time.Duration
	CookieName string
	Secure     bool
}

// LoginConfig slows down and throttles password attempts.
type LoginConfig struct {
	Delay     time.Duration
	RateLimit float64
	RateBurst int
}

type CORSConfig struct {
	AllowedOrigins []string
}

type LogConfig struct {
	Level  string
	Format string
	File   string
}

func Load() (*Config, error) {
	_ = godotenv.Load()

	v := viper.New()
	v.SetConfigFile(".env")
	v.SetConfigType("env")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	return fromViper(v), nil
}

func fromViper(v *viper.Viper) *Config {
	cfg := &Config{}

	cfg.Env = v.GetString("ENV")
	cfg.Port = v.GetInt("PORT")
	cfg.APIPrefix = v.GetString("API_PREFIX")
	cfg.Password = v.GetString("PASSWORD")

	cfg.Storage = StorageConfig{
		Driver:  strings.ToLower(v.GetString("STORAGE_DRIVER")),
		Timeout: parseDuration(v.GetString("STORAGE_TIMEOUT"), 10*time.Second),
	}

	cfg.Mongo = MongoConfig{
		URI:        v.GetString("MONGO_CONNECTION_STRING"),
		Database:   v.GetString("MONGO_DB_NAME"),
		Collection: v.GetString("MONGO_COLLECTION"),
	}

	cfg.Database = DatabaseConfig{
		Host:         v.GetString("DB_HOST"),
		Port:         v.GetInt("DB_PORT"),
		User:         v.GetString("DB_USER"),
		Password:     v.GetString("DB_PASSWORD"),
		Name:         v.GetString("DB_NAME"),
		SSLMode:      v.GetString("DB_SSL_MODE"),
		MaxOpenConns: v.GetInt("DB_MAX_OPEN_CONNS"),
		MaxIdleConns: v.GetInt("DB_MAX_IDLE_CONNS"),
	}

	cfg.Redis = RedisConfig{
		Host:     v.GetString("REDIS_HOST"),
		Port:     v.GetInt("REDIS_PORT"),
		Password: v.GetString("REDIS_PASSWORD"),
		DB:       v.GetInt("REDIS_DB"),
	}

	cfg.Cache = CacheConfig{
		Enabled: v.GetBool("ENABLE_CACHE"),
		TTL:     parseDuration(v.GetString("CACHE_TTL"), 5*time.Minute),
	}

	cfg.Session = SessionConfig{
		Secret:     v.GetString("SESSION_SECRET"),
		TTL:        parseDuration(v.GetString("SESSION_TTL"), 12*time.Hour),
		CookieName: v.GetString("SESSION_COOKIE"),
		Secure:     v.GetBool("SESSION_COOKIE_SECURE"),
	}

	cfg.Login = LoginConfig{
		Delay:     parseDuration(v.GetString("LOGIN_DELAY"), time.Second),
		RateLimit: v.GetFloat64("LOGIN_RATE_LIMIT"),
		RateBurst: v.GetInt("LOGIN_RATE_BURST"),
	}

	cfg.CORS = CORSConfig{AllowedOrigins: splitAndTrim(v.GetString("ALLOWED_ORIGINS"))}

	cfg.Log = LogConfig{
		Level:  v.GetString("LOG_LEVEL"),
		Format: v.GetString("LOG_FORMAT"),
		File:   v.GetString("LOG_FILE"),
	}

	return cfg
}

// Validate checks that the settings the selected backend needs are present.
func (c *Config) Validate() error {
	var missing []string
	if c.Password == "" {
		missing = append(missing, "PASSWORD")
	}
	if c.Port <= 0 {
		missing = append(missing, "PORT")
	}

	switch c.Storage.Driver {
	case StorageMongo:
		if c.Mongo.URI == "" {
			missing = append(missing, "MONGO_CONNECTION_STRING")
		}
		if c.Mongo.Database == "" {
			missing = append(missing, "MONGO_DB_NAME")
		}
		if c.Mongo.Collection == "" {
			missing = append(missing, "MONGO_COLLECTION")
		}
	case StoragePostgres:
		if c.Database.Host == "" {
			missing = append(missing, "DB_HOST")
		}
		if c.Database.Name == "" {
			missing = append(missing, "DB_NAME")
		}
	default:
		return fmt.Errorf("unsupported STORAGE_DRIVER %q", c.Storage.Driver)
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %s", strings.Join(missing, ", "))
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("ENV", EnvDevelopment)
	v.SetDefault("PORT", 5000)
	v.SetDefault("API_PREFIX", "/api/v1")
	v.SetDefault("PASSWORD", "")

	v.SetDefault("STORAGE_DRIVER", StorageMongo)
	v.SetDefault("STORAGE_TIMEOUT", "10s")

	v.SetDefault("MONGO_CONNECTION_STRING", "")
	v.SetDefault("MONGO_DB_NAME", "")
	v.SetDefault("MONGO_COLLECTION", "")

	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", 5432)
	v.SetDefault("DB_USER", "postgres")
	v.SetDefault("DB_PASSWORD", "postgres")
	v.SetDefault("DB_NAME", "watchlist")
	v.SetDefault("DB_SSL_MODE", "disable")
	v.SetDefault("DB_MAX_OPEN_CONNS", 5)
	v.SetDefault("DB_MAX_IDLE_CONNS", 2)

	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", 6379)
	v.SetDefault("REDIS_PASSWORD", "")
	v.SetDefault("REDIS_DB", 0)

	v.SetDefault("ENABLE_CACHE", false)
	v.SetDefault("CACHE_TTL", "5m")

	v.SetDefault("SESSION_SECRET", "dev_session_secret")
	v.SetDefault("SESSION_TTL", "12h")
	v.SetDefault("SESSION_COOKIE", "watchlist_session")
	v.SetDefault("SESSION_COOKIE_SECURE", false)

	v.SetDefault("LOGIN_DELAY", "1s")
	v.SetDefault("LOGIN_RATE_LIMIT", 0.5)
	v.SetDefault("LOGIN_RATE_BURST", 5)

	v.SetDefault("ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_FORMAT", "json")
	v.SetDefault("LOG_FILE", "")
}

func parseDuration(raw string, fallback time.Duration) time.Duration {
	if raw == "" {
		return fallback
	}

	d, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return d
}

func splitAndTrim(raw string) []string {
	if raw == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	result := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			result = append(result, trimmed)
		}
	}

	return result
}
