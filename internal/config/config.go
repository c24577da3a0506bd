package config

import (
	"errors"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	StorageFile     = "file"
	StoragePostgres = "postgres"
	StorageMemory   = "memory"
)

var ErrMissingJWTSecret = errors.New("JWT_SECRET must be set outside development")

type Config struct {
	AppPort     string
	AppEnv      string
	CORSOrigins []string

	JWTSecret string
	JWTTTL    time.Duration

	StorageDriver string
	StorageDir    string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	GeminiAPIKey string
	GeminiModel  string
	AITimeout    time.Duration

	PaymentDelay time.Duration

	KafkaBrokers    []string
	KafkaOrderTopic string

	MatchCacheSize int
}

func LoadConfig() (*Config, error) {
	_ = godotenv.Load()

	cfg := &Config{
		AppPort:         getEnv("APP_PORT", "8080"),
		AppEnv:          getEnv("APP_ENV", "development"),
		CORSOrigins:     splitList(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		JWTSecret:       os.Getenv("JWT_SECRET"),
		JWTTTL:          getEnvAsDuration("JWT_TTL", 24*time.Hour),
		StorageDriver:   getEnv("STORAGE_DRIVER", StorageFile),
		StorageDir:      getEnv("STORAGE_DIR", "./data"),
		DBHost:          os.Getenv("DB_HOST"),
		DBUser:          os.Getenv("DB_USER"),
		DBPassword:      os.Getenv("DB_PASSWORD"),
		DBName:          os.Getenv("DB_NAME"),
		DBPort:          getEnv("DB_PORT", "5432"),
		GeminiAPIKey:    os.Getenv("GEMINI_API_KEY"),
		GeminiModel:     getEnv("GEMINI_MODEL", "gemini-2.5-flash"),
		AITimeout:       getEnvAsDuration("AI_TIMEOUT", 20*time.Second),
		PaymentDelay:    getEnvAsDuration("PAYMENT_DELAY", 1500*time.Millisecond),
		KafkaBrokers:    splitList(os.Getenv("KAFKA_BROKERS")),
		KafkaOrderTopic: getEnv("KAFKA_ORDER_TOPIC", "orders"),
		MatchCacheSize:  getEnvAsInt("MATCH_CACHE_SIZE", 256),
	}

	if cfg.JWTSecret == "" {
		if cfg.AppEnv != "development" && cfg.AppEnv != "test" {
			return nil, ErrMissingJWTSecret
		}
		cfg.JWTSecret = "dev-secret"
	}

	return cfg, nil
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value, exists := os.LookupEnv(key); exists {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	if value, exists := os.LookupEnv(key); exists {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
