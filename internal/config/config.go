// Package config provides configuration for the application
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Storage drivers supported for the local storage mirror
const (
	StorageDriverSQLite = "sqlite3"
	StorageDriverMySQL  = "mysql"
	StorageDriverRedis  = "redis"
	StorageDriverMemory = "memory"
)

// Session stale response policies
const (
	StalePolicyLastResponse = "last-response"
	StalePolicyDiscardStale = "discard-stale"
)

// DefaultPlaceholderAvatar is used when the backend supplies no avatar
const DefaultPlaceholderAvatar = "https://via.placeholder.com/150"

// Config holds all configuration for the application
type Config struct {
	Backend  BackendConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Server   ServerConfig
	Logging  LoggingConfig
	CORS     CORSConfig
	Session  SessionConfig
	Player   PlayerConfig
	Google   GoogleConfig
	Upload   UploadConfig
}

// BackendConfig holds settings of the remote LearnSphere backend
type BackendConfig struct {
	BaseURL   string
	Timeout   time.Duration
	RateLimit float64
	RateBurst int
}

// StorageConfig holds local storage settings
type StorageConfig struct {
	Driver string
	Path   string
}

// DatabaseConfig holds database connection settings (mysql storage driver only)
type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
}

// RedisConfig holds Redis connection settings (redis storage driver only)
type RedisConfig struct {
	Host      string
	Port      int
	Password  string
	DB        int
	KeyPrefix string
}

// ServerConfig holds server settings
type ServerConfig struct {
	Port int
}

// LoggingConfig holds logging settings
type LoggingConfig struct {
	Level string
}

// CORSConfig holds CORS settings
type CORSConfig struct {
	AllowedOrigins []string
}

// SessionConfig holds session manager settings
type SessionConfig struct {
	PlaceholderAvatar string
	StalePolicy       string
}

// PlayerConfig holds lecture player settings
type PlayerConfig struct {
	RedirectDelay time.Duration
}

// GoogleConfig holds settings for building the Google OAuth consent URL
type GoogleConfig struct {
	ClientID    string
	RedirectURI string
}

// UploadConfig holds request body limits in bytes
type UploadConfig struct {
	MaxRequestSize   int64
	MaxThumbnailSize int64
	MaxVideoSize     int64
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	// Try to load .env file (optional)
	godotenv.Load()

	cfg := &Config{}

	// Backend configuration
	backendURI := strings.TrimRight(os.Getenv("BACKEND_URI"), "/")
	if backendURI == "" {
		return nil, fmt.Errorf("BACKEND_URI is required")
	}
	cfg.Backend.BaseURL = backendURI

	timeout, err := durationEnv("BACKEND_TIMEOUT", "15s")
	if err != nil {
		return nil, err
	}
	cfg.Backend.Timeout = timeout

	rateLimitStr := os.Getenv("BACKEND_RATE_LIMIT")
	if rateLimitStr == "" {
		rateLimitStr = "10" // requests per second
	}
	rateLimit, err := strconv.ParseFloat(rateLimitStr, 64)
	if err != nil || rateLimit <= 0 {
		return nil, fmt.Errorf("invalid BACKEND_RATE_LIMIT: %q", rateLimitStr)
	}
	cfg.Backend.RateLimit = rateLimit

	rateBurst, err := intEnv("BACKEND_RATE_BURST", "20")
	if err != nil {
		return nil, err
	}
	cfg.Backend.RateBurst = rateBurst

	// Storage configuration
	driver := os.Getenv("STORAGE_DRIVER")
	if driver == "" {
		driver = StorageDriverSQLite
	}
	switch driver {
	case StorageDriverSQLite, StorageDriverMySQL, StorageDriverRedis, StorageDriverMemory:
	default:
		return nil, fmt.Errorf("invalid STORAGE_DRIVER: %s", driver)
	}
	cfg.Storage.Driver = driver

	storagePath := os.Getenv("STORAGE_PATH")
	if storagePath == "" {
		storagePath = "learnsphere.db"
	}
	cfg.Storage.Path = storagePath

	if driver == StorageDriverMySQL {
		if err := loadDatabase(cfg); err != nil {
			return nil, err
		}
	}

	if err := loadRedis(cfg); err != nil {
		return nil, err
	}

	// Server configuration
	serverPort, err := intEnv("SERVER_PORT", "8090")
	if err != nil {
		return nil, err
	}
	cfg.Server.Port = serverPort

	// Logging configuration
	logLevel := os.Getenv("LOG_LEVEL")
	if logLevel == "" {
		logLevel = "info"
	}
	cfg.Logging.Level = logLevel

	cfg.CORS.AllowedOrigins = parseOrigins(os.Getenv("CORS_ALLOWED_ORIGINS"))

	// Session configuration
	avatar := os.Getenv("PLACEHOLDER_AVATAR_URL")
	if avatar == "" {
		avatar = DefaultPlaceholderAvatar
	}
	cfg.Session.PlaceholderAvatar = avatar

	policy := os.Getenv("SESSION_STALE_POLICY")
	if policy == "" {
		policy = StalePolicyLastResponse
	}
	if policy != StalePolicyLastResponse && policy != StalePolicyDiscardStale {
		return nil, fmt.Errorf("invalid SESSION_STALE_POLICY: %s", policy)
	}
	cfg.Session.StalePolicy = policy

	// Player configuration
	redirectDelay, err := durationEnv("PLAYER_REDIRECT_DELAY", "2s")
	if err != nil {
		return nil, err
	}
	cfg.Player.RedirectDelay = redirectDelay

	// Upload limits, given in megabytes
	if err := loadUpload(cfg); err != nil {
		return nil, err
	}

	// Google OAuth configuration (optional)
	cfg.Google.ClientID = os.Getenv("GOOGLE_CLIENT_ID")
	cfg.Google.RedirectURI = strings.TrimRight(os.Getenv("GOOGLE_REDIRECT_URI"), "/")

	return cfg, nil
}

func loadDatabase(cfg *Config) error {
	dbHost := os.Getenv("DB_HOST")
	if dbHost == "" {
		return fmt.Errorf("DB_HOST is required")
	}
	cfg.Database.Host = dbHost

	dbPort, err := intEnv("DB_PORT", "3306")
	if err != nil {
		return err
	}
	cfg.Database.Port = dbPort

	dbUser := os.Getenv("DB_USER")
	if dbUser == "" {
		return fmt.Errorf("DB_USER is required")
	}
	cfg.Database.User = dbUser

	cfg.Database.Password = os.Getenv("DB_PASSWORD")

	dbName := os.Getenv("DB_NAME")
	if dbName == "" {
		return fmt.Errorf("DB_NAME is required")
	}
	cfg.Database.DBName = dbName

	return nil
}

func loadRedis(cfg *Config) error {
	redisHost := os.Getenv("REDIS_HOST")
	if redisHost == "" {
		redisHost = "localhost"
	}
	cfg.Redis.Host = redisHost

	redisPort, err := intEnv("REDIS_PORT", "6379")
	if err != nil {
		return err
	}
	cfg.Redis.Port = redisPort

	cfg.Redis.Password = os.Getenv("REDIS_PASSWORD") // optional

	redisDB, err := intEnv("REDIS_DB", "0")
	if err != nil {
		return err
	}
	cfg.Redis.DB = redisDB

	prefix := os.Getenv("REDIS_KEY_PREFIX")
	if prefix == "" {
		prefix = "learnsphere:"
	}
	cfg.Redis.KeyPrefix = prefix

	return nil
}

func loadUpload(cfg *Config) error {
	limits := []struct {
		name string
		def  string
		dst  *int64
	}{
		{"MAX_REQUEST_SIZE_MB", "10", &cfg.Upload.MaxRequestSize},
		{"MAX_THUMBNAIL_SIZE_MB", "10", &cfg.Upload.MaxThumbnailSize},
		{"MAX_VIDEO_SIZE_MB", "2048", &cfg.Upload.MaxVideoSize},
	}

	for _, limit := range limits {
		mb, err := intEnv(limit.name, limit.def)
		if err != nil {
			return err
		}
		if mb <= 0 {
			return fmt.Errorf("invalid %s: must be positive", limit.name)
		}
		*limit.dst = int64(mb) << 20
	}
	return nil
}

// parseOrigins parses comma-separated origins, defaulting to all origins
func parseOrigins(raw string) []string {
	if raw == "" {
		return []string{"*"}
	}

	origins := strings.Split(raw, ",")
	allowed := make([]string, 0, len(origins))
	for _, origin := range origins {
		origin = strings.TrimSpace(origin)
		if origin != "" {
			allowed = append(allowed, origin)
		}
	}
	if len(allowed) == 0 {
		return []string{"*"}
	}
	return allowed
}

func intEnv(name, def string) (int, error) {
	raw := os.Getenv(name)
	if raw == "" {
		raw = def
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

func durationEnv(name, def string) (time.Duration, error) {
	raw := os.Getenv(name)
	if raw == "" {
		raw = def
	}
	v, err := time.ParseDuration(raw)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", name, err)
	}
	return v, nil
}

// DSN returns the database connection string for the configured storage driver
func (c *Config) DSN() string {
	if c.Storage.Driver == StorageDriverMySQL {
		return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&charset=utf8mb4",
			c.Database.User,
			c.Database.Password,
			c.Database.Host,
			c.Database.Port,
			c.Database.DBName,
		)
	}
	return fmt.Sprintf("file:%s?_busy_timeout=5000", c.Storage.Path)
}

// RedisAddr returns the host:port address of the Redis server
func (c *Config) RedisAddr() string {
	return fmt.Sprintf("%s:%d", c.Redis.Host, c.Redis.Port)
}
