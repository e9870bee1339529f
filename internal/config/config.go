package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv                   string
	ServerPort               string
	ServerReadTimeout        time.Duration
	ServerWriteTimeout       time.Duration
	ServerIdleTimeout        time.Duration
	RequestTimeout           time.Duration
	ShutdownTimeout          time.Duration
	BodyLimit                int64
	CORSOrigins              []string
	RateLimitRPM             int
	AuthRateLimitRPM         int
	LogLevel                 string
	LogFormat                string
	DatabaseURL              string
	DBMaxConns               int32
	DBMinConns               int32
	ConnectRetryDelay        time.Duration
	RedisURL                 string
	ActivationSecret         string
	AccessTokenSecret        string
	RefreshTokenSecret       string
	ActivationTTL            time.Duration
	AccessTokenTTL           time.Duration
	RefreshTokenTTL          time.Duration
	SMTPHost                 string
	SMTPPort                 int
	SMTPUsername             string
	SMTPPassword             string
	SMTPFrom                 string
	S3Bucket                 string
	S3Region                 string
	S3Endpoint               string
	S3AccessKey              string
	S3SecretKey              string
	MediaRoot                string
	MediaPublicURL           string
	KafkaBrokers             []string
	KafkaTopic               string
	ElasticsearchURLs        []string
	ElasticsearchIndex       string
	CleanupEnabled           bool
	CleanupSchedule          string
	CleanupTimeout           time.Duration
	NotificationRetention    time.Duration
	CatalogInvalidateOnWrite bool
}

func Load() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadCleanup reads the same environment as Load but only requires what the
// one-shot notification purge uses: Postgres and the cleanup settings.
func LoadCleanup() (*Config, error) {
	cfg := fromEnv()
	if err := cfg.ValidateCleanup(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func fromEnv() *Config {
	_ = godotenv.Load()

	return &Config{
		AppEnv:                   getEnv("APP_ENV", "development"),
		ServerPort:               getEnv("PORT", "8000"),
		ServerReadTimeout:        getDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		ServerWriteTimeout:       getDuration("SERVER_WRITE_TIMEOUT", 30*time.Second),
		ServerIdleTimeout:        getDuration("SERVER_IDLE_TIMEOUT", 120*time.Second),
		RequestTimeout:           getDuration("REQUEST_TIMEOUT", 30*time.Second),
		ShutdownTimeout:          getDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
		BodyLimit:                getInt64("BODY_LIMIT", 50<<20),
		CORSOrigins:              splitCSV(getEnv("ORIGIN", "*")),
		RateLimitRPM:             getInt("RATE_LIMIT_RPM", 100),
		AuthRateLimitRPM:         getInt("AUTH_RATE_LIMIT_RPM", 10),
		LogLevel:                 getEnv("LOG_LEVEL", "info"),
		LogFormat:                getEnv("LOG_FORMAT", "pretty"),
		DatabaseURL:              strings.TrimSpace(os.Getenv("DATABASE_URL")),
		DBMaxConns:               int32(getInt("DB_MAX_CONNS", 10)),
		DBMinConns:               int32(getInt("DB_MIN_CONNS", 2)),
		ConnectRetryDelay:        getDuration("DB_RETRY_DELAY", 5*time.Second),
		RedisURL:                 strings.TrimSpace(os.Getenv("REDIS_URL")),
		ActivationSecret:         strings.TrimSpace(os.Getenv("ACTIVATION_SECRET")),
		AccessTokenSecret:        strings.TrimSpace(os.Getenv("ACCESS_TOKEN_SECRET")),
		RefreshTokenSecret:       strings.TrimSpace(os.Getenv("REFRESH_TOKEN_SECRET")),
		ActivationTTL:            getDuration("ACTIVATION_TOKEN_EXPIRE", 5*time.Minute),
		AccessTokenTTL:           getDuration("ACCESS_TOKEN_EXPIRE", 5*time.Minute),
		RefreshTokenTTL:          getDuration("REFRESH_TOKEN_EXPIRE", 72*time.Hour),
		SMTPHost:                 strings.TrimSpace(os.Getenv("SMTP_HOST")),
		SMTPPort:                 getInt("SMTP_PORT", 587),
		SMTPUsername:             strings.TrimSpace(os.Getenv("SMTP_MAIL")),
		SMTPPassword:             os.Getenv("SMTP_PASSWORD"),
		SMTPFrom:                 getEnv("SMTP_FROM", getEnv("SMTP_MAIL", "no-reply@learnhub.local")),
		S3Bucket:                 strings.TrimSpace(os.Getenv("S3_BUCKET")),
		S3Region:                 getEnv("S3_REGION", "us-east-1"),
		S3Endpoint:               strings.TrimSpace(os.Getenv("S3_ENDPOINT")),
		S3AccessKey:              strings.TrimSpace(os.Getenv("S3_ACCESS_KEY")),
		S3SecretKey:              strings.TrimSpace(os.Getenv("S3_SECRET_KEY")),
		MediaRoot:                getEnv("MEDIA_ROOT", "./state/media"),
		MediaPublicURL:           getEnv("MEDIA_PUBLIC_URL", "/media"),
		KafkaBrokers:             splitCSV(os.Getenv("KAFKA_BROKERS")),
		KafkaTopic:               getEnv("KAFKA_TOPIC", "learnhub.events"),
		ElasticsearchURLs:        splitCSV(os.Getenv("ELASTICSEARCH_URL")),
		ElasticsearchIndex:       getEnv("ELASTICSEARCH_INDEX", "products"),
		CleanupEnabled:           getBool("CLEANUP_ENABLED", true),
		CleanupSchedule:          getEnv("CLEANUP_SCHEDULE", "0 0 0 * * *"),
		CleanupTimeout:           getDuration("CLEANUP_TIMEOUT", 10*time.Minute),
		NotificationRetention:    getDuration("NOTIFICATION_RETENTION", 30*24*time.Hour),
		CatalogInvalidateOnWrite: getBool("CATALOG_INVALIDATE_ON_WRITE", false),
	}
}

func (c *Config) Validate() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.RedisURL == "" {
		return fmt.Errorf("REDIS_URL is required")
	}

	if c.ActivationSecret == "" {
		return fmt.Errorf("ACTIVATION_SECRET is required")
	}

	if c.AccessTokenSecret == "" {
		return fmt.Errorf("ACCESS_TOKEN_SECRET is required")
	}

	if c.RefreshTokenSecret == "" {
		return fmt.Errorf("REFRESH_TOKEN_SECRET is required")
	}

	if c.AccessTokenSecret == c.RefreshTokenSecret {
		return fmt.Errorf("ACCESS_TOKEN_SECRET and REFRESH_TOKEN_SECRET must differ")
	}

	if c.ServerPort == "" {
		return fmt.Errorf("PORT cannot be empty")
	}

	if c.ActivationTTL <= 0 || c.AccessTokenTTL <= 0 || c.RefreshTokenTTL <= 0 {
		return fmt.Errorf("token expirations must be positive")
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("REQUEST_TIMEOUT must be positive")
	}

	if c.BodyLimit <= 0 {
		return fmt.Errorf("BODY_LIMIT must be positive")
	}

	if c.ConnectRetryDelay <= 0 {
		return fmt.Errorf("DB_RETRY_DELAY must be positive")
	}

	if c.DBMinConns > c.DBMaxConns {
		return fmt.Errorf("DB_MIN_CONNS cannot exceed DB_MAX_CONNS")
	}

	if c.CleanupEnabled && strings.TrimSpace(c.CleanupSchedule) == "" {
		return fmt.Errorf("CLEANUP_SCHEDULE cannot be empty when cleanup is enabled")
	}

	if c.CleanupEnabled && c.CleanupTimeout <= 0 {
		return fmt.Errorf("CLEANUP_TIMEOUT must be positive")
	}

	return nil
}

// ValidateCleanup checks only the settings cmd/cleanup depends on.
func (c *Config) ValidateCleanup() error {
	if c.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL is required")
	}

	if c.ConnectRetryDelay <= 0 {
		return fmt.Errorf("DB_RETRY_DELAY must be positive")
	}

	if c.CleanupTimeout <= 0 {
		return fmt.Errorf("CLEANUP_TIMEOUT must be positive")
	}

	if c.NotificationRetention <= 0 {
		return fmt.Errorf("NOTIFICATION_RETENTION must be positive")
	}

	return nil
}

func (c *Config) IsProduction() bool {
	return c.AppEnv == "production"
}

func getEnv(key string, fallback string) string {
	v := strings.TrimSpace(os.Getenv(key))
	if v == "" {
		return fallback
	}

	return v
}

func getInt(key string, fallback int) int {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.Atoi(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getInt64(key string, fallback int64) int64 {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return fallback
	}

	return v
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := time.ParseDuration(raw)
	if err != nil {
		return fallback
	}

	return v
}

func getBool(key string, fallback bool) bool {
	raw := strings.TrimSpace(os.Getenv(key))
	if raw == "" {
		return fallback
	}

	v, err := strconv.ParseBool(raw)
	if err != nil {
		return fallback
	}

	return v
}

func splitCSV(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}

	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		out = append(out, trimmed)
	}

	return out
}
