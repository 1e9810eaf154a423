package config

import (
	"errors"
	"fmt"
	"math"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/rs/zerolog/log"
)

// ErrMissingCredentials is returned when a required secret or connection
// credential is not set.
var ErrMissingCredentials = errors.New("config: missing required credentials")

// Config holds all application configuration loaded from environment variables.
type Config struct {
	Database DatabaseConfig
	Redis    RedisConfig
	JWT      JWTConfig
	Server   ServerConfig
	OAuth    OAuthConfig
	Board    BoardConfig
}

// DatabaseConfig holds PostgreSQL connection settings. URL, when set, takes
// precedence over the individual fields.
type DatabaseConfig struct {
	URL      string
	Host     string
	Port     int
	User     string
	Password string //nolint:gosec // G117: DB connection config
	DBName   string
	SSLMode  string
	MaxConns int
}

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string //nolint:gosec // G117: Redis connection config
	DB       int
}

// JWTConfig holds JWT authentication settings.
type JWTConfig struct {
	Secret     string //nolint:gosec // G117: JWT signing secret config
	AccessTTL  time.Duration
	RefreshTTL time.Duration
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Addr         string
	PublicURL    string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
	CORSOrigins  []string
	RateLimit    float64
	RateBurst    int
	Metrics      bool
}

// OAuthConfig holds identity provider credentials. A provider is enabled
// only when both its client id and secret are set.
type OAuthConfig struct {
	GoogleClientID     string
	GoogleClientSecret string //nolint:gosec // G117: OAuth client config
	GitHubClientID     string
	GitHubClientSecret string //nolint:gosec // G117: OAuth client config
}

func (o OAuthConfig) GoogleEnabled() bool {
	return o.GoogleClientID != "" && o.GoogleClientSecret != ""
}

func (o OAuthConfig) GitHubEnabled() bool {
	return o.GitHubClientID != "" && o.GitHubClientSecret != ""
}

// BoardConfig holds board snapshot cache settings.
type BoardConfig struct {
	CacheTTL time.Duration
}

// Load reads configuration from environment variables.
// Defaults are safe for local development only. In production,
// sensitive values (JWT secret, DB password) must be set explicitly.
func Load() (*Config, error) {
	db, err := loadDatabase()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	redisDB, err := getEnvInt("KANBAN_REDIS_DB", 0)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	accessTTL, err := getEnvDuration("KANBAN_JWT_ACCESS_TTL", 15*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	refreshTTL, err := getEnvDuration("KANBAN_JWT_REFRESH_TTL", 7*24*time.Hour)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	readTimeout, err := getEnvDuration("KANBAN_SERVER_READ_TIMEOUT", 10*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	writeTimeout, err := getEnvDuration("KANBAN_SERVER_WRITE_TIMEOUT", 30*time.Second)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateLimit, err := getEnvFloat("KANBAN_RATE_LIMIT", 20)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	rateBurst, err := getEnvInt("KANBAN_RATE_BURST", 40)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	metrics, err := getEnvBool("KANBAN_METRICS_ENABLED", true)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	cacheTTL, err := getEnvDuration("KANBAN_BOARD_CACHE_TTL", 10*time.Minute)
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	corsOrigins := getEnvList("KANBAN_CORS_ORIGINS", []string{"http://localhost:5173"})

	cfg := &Config{
		Database: *db,
		Redis: RedisConfig{
			Addr:     getEnv("KANBAN_REDIS_ADDR", "localhost:6379"),
			Password: getEnv("KANBAN_REDIS_PASSWORD", ""),
			DB:       redisDB,
		},
		JWT: JWTConfig{
			Secret:     getEnv("KANBAN_JWT_SECRET", ""),
			AccessTTL:  accessTTL,
			RefreshTTL: refreshTTL,
		},
		Server: ServerConfig{
			Addr:         ServerAddr(),
			PublicURL:    strings.TrimSuffix(getEnv("KANBAN_PUBLIC_URL", "http://localhost:8080"), "/"),
			ReadTimeout:  readTimeout,
			WriteTimeout: writeTimeout,
			CORSOrigins:  corsOrigins,
			RateLimit:    rateLimit,
			RateBurst:    rateBurst,
			Metrics:      metrics,
		},
		OAuth: OAuthConfig{
			GoogleClientID:     getEnv("KANBAN_OAUTH_GOOGLE_CLIENT_ID", ""),
			GoogleClientSecret: getEnv("KANBAN_OAUTH_GOOGLE_CLIENT_SECRET", ""),
			GitHubClientID:     getEnv("KANBAN_OAUTH_GITHUB_CLIENT_ID", ""),
			GitHubClientSecret: getEnv("KANBAN_OAUTH_GITHUB_CLIENT_SECRET", ""),
		},
		Board: BoardConfig{
			CacheTTL: cacheTTL,
		},
	}

	err = cfg.validate()
	if err != nil {
		return nil, fmt.Errorf("config.Load: %w", err)
	}

	return cfg, nil
}

// LoadDatabase reads only the database settings, for commands such as
// migrations that need nothing else.
func LoadDatabase() (*DatabaseConfig, error) {
	db, err := loadDatabase()
	if err != nil {
		return nil, fmt.Errorf("config.LoadDatabase: %w", err)
	}
	if err := db.validate(); err != nil {
		return nil, fmt.Errorf("config.LoadDatabase: %w", err)
	}
	return db, nil
}

func loadDatabase() (*DatabaseConfig, error) {
	port, err := getEnvInt("KANBAN_DB_PORT", 5432)
	if err != nil {
		return nil, err
	}

	maxConns, err := getEnvInt("KANBAN_DB_MAX_CONNS", 25)
	if err != nil {
		return nil, err
	}

	return &DatabaseConfig{
		URL:      getEnv("KANBAN_DATABASE_URL", ""),
		Host:     getEnv("KANBAN_DB_HOST", "localhost"),
		Port:     port,
		User:     getEnv("KANBAN_DB_USER", "kanban"),
		Password: getEnv("KANBAN_DB_PASSWORD", ""),
		DBName:   getEnv("KANBAN_DB_NAME", "kanban_dev"),
		SSLMode:  getEnv("KANBAN_DB_SSLMODE", "disable"),
		MaxConns: maxConns,
	}, nil
}

// ServerAddr returns the listen address. It is readable on its own so that
// a fallback page can still be served when Load fails.
func ServerAddr() string {
	return getEnv("KANBAN_SERVER_ADDR", ":8080")
}

// validate checks required fields and value bounds.
func (c *Config) validate() error {
	// JWT secret is required (no insecure default).
	if c.JWT.Secret == "" {
		return fmt.Errorf("KANBAN_JWT_SECRET is required: %w", ErrMissingCredentials)
	}
	if len(c.JWT.Secret) < 32 {
		return errors.New("KANBAN_JWT_SECRET must be at least 32 characters")
	}
	if err := c.Database.validate(); err != nil {
		return err
	}
	if c.Redis.Addr == "" {
		return fmt.Errorf("KANBAN_REDIS_ADDR is required: %w", ErrMissingCredentials)
	}

	// Bounds checks.
	if c.JWT.AccessTTL <= 0 {
		return fmt.Errorf("KANBAN_JWT_ACCESS_TTL must be positive, got %s", c.JWT.AccessTTL)
	}
	if c.JWT.RefreshTTL <= 0 {
		return fmt.Errorf("KANBAN_JWT_REFRESH_TTL must be positive, got %s", c.JWT.RefreshTTL)
	}
	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("KANBAN_SERVER_READ_TIMEOUT must be positive, got %s", c.Server.ReadTimeout)
	}
	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("KANBAN_SERVER_WRITE_TIMEOUT must be positive, got %s", c.Server.WriteTimeout)
	}
	if c.Server.RateLimit <= 0 {
		return fmt.Errorf("KANBAN_RATE_LIMIT must be positive, got %g", c.Server.RateLimit)
	}
	if c.Server.RateBurst < 1 {
		return fmt.Errorf("KANBAN_RATE_BURST must be >= 1, got %d", c.Server.RateBurst)
	}
	if c.Board.CacheTTL <= 0 {
		return fmt.Errorf("KANBAN_BOARD_CACHE_TTL must be positive, got %s", c.Board.CacheTTL)
	}

	return nil
}

func (c *DatabaseConfig) validate() error {
	if c.URL == "" && c.User == "" {
		return fmt.Errorf("KANBAN_DATABASE_URL or KANBAN_DB_USER is required: %w", ErrMissingCredentials)
	}
	if c.URL == "" && c.SSLMode == "disable" {
		log.Warn().Msg("KANBAN_DB_SSLMODE=disable is insecure for production; set to 'require' or 'verify-full'")
	}
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("KANBAN_DB_PORT must be 1-65535, got %d", c.Port)
	}
	if c.MaxConns < 1 || c.MaxConns > math.MaxInt32 {
		return fmt.Errorf("KANBAN_DB_MAX_CONNS must be 1-%d, got %d", math.MaxInt32, c.MaxConns)
	}
	return nil
}

// DSN returns the PostgreSQL connection string.
func (c *DatabaseConfig) DSN() string {
	if c.URL != "" {
		return c.URL
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.DBName, c.SSLMode,
	)
}

// OAuthRedirectURL is the callback registered with a provider.
func (c *Config) OAuthRedirectURL(provider string) string {
	return c.Server.PublicURL + "/api/v1/auth/oauth/" + provider + "/callback"
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as int: %w", key, v, err)
	}
	return n, nil
}

func getEnvFloat(key string, fallback float64) (float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as float: %w", key, v, err)
	}
	return f, nil
}

func getEnvBool(key string, fallback bool) (bool, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("parsing %s=%q as bool: %w", key, v, err)
	}
	return b, nil
}

func getEnvDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("parsing %s=%q as duration: %w", key, v, err)
	}
	return d, nil
}

func getEnvList(key string, fallback []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return fallback
	}
	parts := strings.Split(v, ",")
	result := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.TrimSpace(p)
		if p != "" {
			result = append(result, p)
		}
	}
	return result
}
