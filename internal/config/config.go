package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration loaded from environment variables.
// It is the single source of truth for runtime parameters.
type Config struct {
	Port      string
	Env       string
	JWTSecret string
	JWTTTL    time.Duration
	CORSHosts []string

	DB        DatabaseConfig
	Redis     RedisConfig
	S3        S3Config
	Kafka     KafkaConfig
	Worker    WorkerConfig
	Import    ImportConfig
	Store     StoreConfig
	Admin     AdminConfig
	RateLimit RateLimitConfig
}

// DatabaseConfig contains PostgreSQL connection parameters.
type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// RedisConfig contains Redis connection parameters.
type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

// S3Config contains the product image bucket configuration.
type S3Config struct {
	Region          string
	Bucket          string
	Endpoint        string
	PublicBaseURL   string
	AccessKeyID     string
	SecretAccessKey string
}

// Enabled reports whether image uploads can be served.
func (c S3Config) Enabled() bool {
	return c.Bucket != "" && c.AccessKeyID != "" && c.SecretAccessKey != ""
}

// KafkaConfig contains broker settings for domain event publishing.
// Publishing is disabled when Brokers is empty.
type KafkaConfig struct {
	Brokers     []string
	TopicPrefix string
}

// WorkerConfig contains interval configuration for background workers.
type WorkerConfig struct {
	FanoutInterval    time.Duration
	FanoutBatchSize   int
	ViewFlushInterval time.Duration
}

// ImportConfig bounds the bulk product import.
type ImportConfig struct {
	MaxFileBytes int64
	MaxRows      int
}

// StoreConfig holds the defaults used until an admin saves store settings.
type StoreConfig struct {
	Name              string
	Currency          string
	TaxRate           string
	DeliveryFee       string
	PackagingFee      string
	FreeDeliveryAbove string
	WhatsAppNumber    string
	DefaultPincodes   []string
	SettingsCacheTTL  time.Duration
}

// AdminConfig seeds the first back-office account on startup.
type AdminConfig struct {
	Email    string
	Password string
	Name     string
}

// RateLimitConfig controls the per-IP limiter on public write endpoints.
type RateLimitConfig struct {
	PublicPerMinute int
	PublicBurst     int
}

// Load reads configuration from environment variables. If a .env file exists
// in the working directory, it will be loaded first. It returns a populated
// Config or an error with a human-friendly message.
func Load() (*Config, error) {
	// Missing .env is fine; production relies on real environment variables.
	_ = godotenv.Load()

	cfg := &Config{}

	// Server
	cfg.Port = getEnv("PORT", "8080")
	cfg.Env = getEnv("ENV", "development")
	cfg.JWTSecret = getEnv("JWT_SECRET", "")
	cfg.CORSHosts = getEnvList("CORS_ALLOWED_HOSTS", []string{"localhost:3000", "127.0.0.1:3000"})

	// Database
	cfg.DB = DatabaseConfig{
		Host:     getEnv("DB_HOST", ""),
		Port:     getEnv("DB_PORT", "5432"),
		User:     getEnv("DB_USER", ""),
		Password: getEnv("DB_PASSWORD", ""),
		Name:     getEnv("DB_NAME", ""),
		SSLMode:  getEnv("DB_SSLMODE", "disable"),
	}

	// Redis
	cfg.Redis = RedisConfig{
		Host:     getEnv("REDIS_HOST", "redis"),
		Port:     getEnv("REDIS_PORT", "6379"),
		Password: getEnv("REDIS_PASSWORD", ""),
		DB:       getEnvInt("REDIS_DB", 0),
	}

	// S3 (product images)
	cfg.S3 = S3Config{
		Region:          getEnv("S3_REGION", "ap-south-1"),
		Bucket:          getEnv("S3_BUCKET", ""),
		Endpoint:        getEnv("S3_ENDPOINT", ""),
		PublicBaseURL:   getEnv("S3_PUBLIC_BASE_URL", ""),
		AccessKeyID:     getEnv("AWS_ACCESS_KEY_ID", ""),
		SecretAccessKey: getEnv("AWS_SECRET_ACCESS_KEY", ""),
	}

	// Kafka
	cfg.Kafka = KafkaConfig{
		Brokers:     getEnvList("KAFKA_BROKERS", nil),
		TopicPrefix: getEnv("KAFKA_TOPIC_PREFIX", "bakery"),
	}

	// Import limits
	cfg.Import = ImportConfig{
		MaxFileBytes: int64(getEnvInt("IMPORT_MAX_FILE_BYTES", 5<<20)),
		MaxRows:      getEnvInt("IMPORT_MAX_ROWS", 1000),
	}

	// Admin bootstrap
	cfg.Admin = AdminConfig{
		Email:    getEnv("ADMIN_EMAIL", ""),
		Password: getEnv("ADMIN_PASSWORD", ""),
		Name:     getEnv("ADMIN_NAME", "Administrator"),
	}

	cfg.RateLimit = RateLimitConfig{
		PublicPerMinute: getEnvInt("RATE_LIMIT_PUBLIC_PER_MINUTE", 30),
		PublicBurst:     getEnvInt("RATE_LIMIT_PUBLIC_BURST", 10),
	}

	cfg.Worker.FanoutBatchSize = getEnvInt("FANOUT_BATCH_SIZE", 20)

	// Durations
	var err error
	if cfg.JWTTTL, err = parseDurationEnv("JWT_TTL", "24h"); err != nil {
		return nil, fmt.Errorf("invalid JWT_TTL: %w", err)
	}
	if cfg.Worker.FanoutInterval, err = parseDurationEnv("FANOUT_INTERVAL", "30s"); err != nil {
		return nil, fmt.Errorf("invalid FANOUT_INTERVAL: %w", err)
	}
	if cfg.Worker.ViewFlushInterval, err = parseDurationEnv("VIEW_FLUSH_INTERVAL", "1m"); err != nil {
		return nil, fmt.Errorf("invalid VIEW_FLUSH_INTERVAL: %w", err)
	}

	// Store defaults
	cfg.Store = StoreConfig{
		Name:              getEnv("STORE_NAME", "Bakery"),
		Currency:          strings.ToUpper(getEnv("STORE_CURRENCY", "INR")),
		TaxRate:           getEnv("STORE_TAX_RATE", "5"),
		DeliveryFee:       getEnv("STORE_DELIVERY_FEE", "50"),
		PackagingFee:      getEnv("STORE_PACKAGING_FEE", "0"),
		FreeDeliveryAbove: getEnv("STORE_FREE_DELIVERY_ABOVE", "999"),
		WhatsAppNumber:    getEnv("STORE_WHATSAPP_NUMBER", ""),
		DefaultPincodes:   getEnvList("STORE_DEFAULT_PINCODES", nil),
	}
	if cfg.Store.SettingsCacheTTL, err = parseDurationEnv("SETTINGS_CACHE_TTL", "5m"); err != nil {
		return nil, fmt.Errorf("invalid SETTINGS_CACHE_TTL: %w", err)
	}

	if cfg.DB.Host == "" || cfg.DB.User == "" || cfg.DB.Name == "" {
		return nil, errors.New("database configuration incomplete: ensure DB_HOST, DB_USER, and DB_NAME are set")
	}

	if cfg.JWTSecret == "" {
		return nil, errors.New("JWT_SECRET must be set for authentication")
	}

	if cfg.Store.Currency != "INR" && cfg.Store.Currency != "CAD" {
		return nil, fmt.Errorf("STORE_CURRENCY must be INR or CAD, got %q", cfg.Store.Currency)
	}

	return cfg, nil
}

// getEnv returns the value of an environment variable or a default if empty.
func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

// getEnvInt returns the value of an environment variable as an integer or a default if empty/invalid.
func getEnvInt(key string, def int) int {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	i, err := strconv.Atoi(v)
	if err != nil {
		return def
	}
	return i
}

// getEnvList splits a comma separated variable, dropping blanks.
func getEnvList(key string, def []string) []string {
	v := os.Getenv(key)
	if v == "" {
		return def
	}
	var out []string
	for _, part := range strings.Split(v, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}

// parseDurationEnv reads an environment variable and parses it as time.Duration.
// If the variable is empty, it falls back to the provided default value.
func parseDurationEnv(key, def string) (time.Duration, error) {
	raw := getEnv(key, def)
	d, err := time.ParseDuration(raw)
	if err != nil {
		return 0, err
	}
	if d < 0 {
		return 0, fmt.Errorf("duration must be >= 0")
	}
	return d, nil
}
