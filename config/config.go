package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"
)

const (
	DEFAULT_NLU_VERSION = "2018-03-16"
	DEFAULT_IAM_URL     = "https://iam.cloud.ibm.com/identity/token"
)

type AppConfig struct {
	Env      string
	LogLevel string
	NLU      NLUConfig
	Cache    CacheConfig
	AWS      AWSConfig
	Postgres PostgresConfig
	Local    LocalAnalysisConfig
}

type NLUConfig struct {
	URL     string
	Version string
	APIKey  string
	IAMURL  string
	Timeout time.Duration
}

// Enabled reports whether a remote NLU service is configured.
func (c NLUConfig) Enabled() bool {
	return c.URL != ""
}

type CacheConfig struct {
	ValkeyAddress  string
	ValkeyPassword string
	ValkeyTLS      bool
	TTL            time.Duration
	LRUSize        int
}

type AWSConfig struct {
	Endpoint string
	Region   string
}

type PostgresConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
}

func (c PostgresConfig) DSN() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.User, c.Password, c.Host, c.Port, c.Name)
}

type LocalAnalysisConfig struct {
	EmotionModelPath string
	OpenAIAPIKey     string
	OpenAIModel      string
	KeywordsLimit    int
}

// Load reads the application config from the environment. Call LoadEnv first
// to pull in an env file.
func Load() AppConfig {
	env := getEnv("APP_ENV", "dev")

	timeout := 60 * time.Second
	if env == "production" {
		timeout = 10 * time.Second
	}

	return AppConfig{
		Env:      env,
		LogLevel: getEnv("LOG_LEVEL", "info"),
		NLU: NLUConfig{
			URL:     strings.TrimRight(getEnv("NLU_URL", ""), "/"),
			Version: getEnv("NLU_VERSION", DEFAULT_NLU_VERSION),
			APIKey:  getEnv("NLU_APIKEY", ""),
			IAMURL:  getEnv("NLU_IAM_URL", DEFAULT_IAM_URL),
			Timeout: getEnvDuration("NLU_TIMEOUT", timeout),
		},
		Cache: CacheConfig{
			ValkeyAddress:  getEnv("VALKEY_INIT_ADDRESS", ""),
			ValkeyPassword: getEnv("VALKEY_PASSWORD", ""),
			ValkeyTLS:      getEnvBool("VALKEY_TLS", false),
			TTL:            getEnvDuration("CACHE_TTL", 24*time.Hour),
			LRUSize:        getEnvInt("CACHE_LRU_SIZE", 1024),
		},
		AWS: AWSConfig{
			Endpoint: getEnv("AWS_ENDPOINT", "http://localhost:8000"),
			Region:   getEnv("AWS_REGION", "us-west-2"),
		},
		Postgres: PostgresConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", ""),
			Password: getEnv("DB_PASSWORD", ""),
			Name:     getEnv("DB_NAME", ""),
		},
		Local: LocalAnalysisConfig{
			EmotionModelPath: getEnv("EMOTION_MODEL_PATH", ""),
			OpenAIAPIKey:     getEnv("OPENAI_API_KEY", ""),
			OpenAIModel:      getEnv("OPENAI_MODEL", "gpt-4o-mini"),
			KeywordsLimit:    getEnvInt("KEYWORDS_LIMIT", 50),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, ok := os.LookupEnv(key); ok {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		slog.Warn("[Config] Invalid integer, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return value
}

func getEnvBool(key string, defaultValue bool) bool {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := strconv.ParseBool(raw)
	if err != nil {
		slog.Warn("[Config] Invalid boolean, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return value
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	raw, ok := os.LookupEnv(key)
	if !ok {
		return defaultValue
	}
	value, err := time.ParseDuration(raw)
	if err != nil {
		slog.Warn("[Config] Invalid duration, using default",
			slog.String("key", key),
			slog.String("value", raw))
		return defaultValue
	}
	return value
}
