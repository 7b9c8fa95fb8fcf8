package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

const (
	defaultHTTPAddr        = ":8080"
	defaultLogLevel        = "info"
	defaultDatabaseURL     = "reservehub.db"
	defaultShutdownTimeout = "10s"
	defaultMailProvider    = "console"
	defaultMailFrom        = "no-reply@reservehub.local"
	defaultMailFromName    = "ReserveHub"
	defaultFrontendURL     = "http://localhost:5173"
	defaultCacheTTL        = "30s"
	defaultRateCapacity    = "60"
	defaultRateRefill      = "1s"
)

type Config struct {
	AppEnv          string
	HTTPAddr        string
	LogLevel        string
	DatabaseURL     string
	ShutdownTimeout time.Duration
	CORSOrigins     []string

	Auth   AuthConfig
	Mail   MailConfig
	Events EventsConfig
	Redis  RedisConfig
}

type MailConfig struct {
	Provider         string // console | mailersend
	From             string
	FromName         string
	MailerSendAPIKey string
	FrontendURL      string
}

type EventsConfig struct {
	NATSURL string
	AMQPURL string
}

type RedisConfig struct {
	Addr           string
	Password       string
	DB             int
	CacheEnabled   bool
	CacheTTL       time.Duration
	RateEnabled    bool
	RateCapacity   int
	RateRefillEach time.Duration
}

// Load reads .env (when present) and the process environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		log.Printf("config: .env not loaded: %v", err)
	}

	cfg := &Config{}
	appEnv := strings.TrimSpace(os.Getenv("APP_ENV"))
	if appEnv == "" {
		appEnv = strings.TrimSpace(os.Getenv("ENV"))
	}
	if appEnv == "" {
		appEnv = "dev"
	}
	cfg.AppEnv = strings.ToLower(appEnv)
	cfg.HTTPAddr = strings.TrimSpace(getEnv("HTTP_ADDR", defaultHTTPAddr))
	cfg.LogLevel = strings.ToLower(strings.TrimSpace(getEnv("LOG_LEVEL", defaultLogLevel)))
	cfg.DatabaseURL = strings.TrimSpace(getEnv("DATABASE_URL", defaultDatabaseURL))
	cfg.CORSOrigins = splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))

	var err error
	if cfg.ShutdownTimeout, err = parseDurationEnv("SHUTDOWN_TIMEOUT", defaultShutdownTimeout); err != nil {
		return nil, err
	}
	if cfg.Auth, err = loadAuthConfig(); err != nil {
		return nil, err
	}

	cfg.Mail = MailConfig{
		Provider:         strings.ToLower(strings.TrimSpace(getEnv("MAIL_PROVIDER", defaultMailProvider))),
		From:             strings.TrimSpace(getEnv("MAIL_FROM", defaultMailFrom)),
		FromName:         strings.TrimSpace(getEnv("MAIL_FROM_NAME", defaultMailFromName)),
		MailerSendAPIKey: strings.TrimSpace(os.Getenv("MAILERSEND_API_KEY")),
		FrontendURL:      strings.TrimRight(strings.TrimSpace(getEnv("FRONTEND_URL", defaultFrontendURL)), "/"),
	}

	cfg.Events = EventsConfig{
		NATSURL: strings.TrimSpace(os.Getenv("NATS_URL")),
		AMQPURL: strings.TrimSpace(os.Getenv("AMQP_URL")),
	}

	if cfg.Redis, err = loadRedisConfig(); err != nil {
		return nil, err
	}

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}

	log.Printf("config loaded: env=%s addr=%s mail=%s redis_cache=%t rate_limit=%t", cfg.AppEnv, cfg.HTTPAddr, cfg.Mail.Provider, cfg.Redis.CacheEnabled, cfg.Redis.RateEnabled)
	return cfg, nil
}

func (c *Config) IsProduction() bool {
	return isProdLike(c.AppEnv)
}

func validateConfig(cfg *Config) error {
	if cfg.DatabaseURL == "" {
		return fmt.Errorf("DATABASE_URL must not be empty")
	}
	if cfg.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be > 0")
	}
	switch cfg.Mail.Provider {
	case "console":
	case "mailersend":
		if cfg.Mail.MailerSendAPIKey == "" {
			return fmt.Errorf("MAILERSEND_API_KEY is required when MAIL_PROVIDER=mailersend")
		}
	default:
		return fmt.Errorf("MAIL_PROVIDER must be one of: console, mailersend")
	}
	if cfg.Redis.RateEnabled && cfg.Redis.RateCapacity <= 0 {
		return fmt.Errorf("RATE_LIMIT_CAPACITY must be > 0")
	}
	if isProdLike(cfg.AppEnv) && cfg.Mail.Provider == "console" {
		return fmt.Errorf("in prod/release MAIL_PROVIDER must not be console")
	}
	return validateAuthConfig(cfg.AppEnv, cfg.Auth)
}

func isProdLike(env string) bool {
	env = strings.ToLower(strings.TrimSpace(env))
	return env == "prod" || env == "production" || env == "release"
}

func isEmptyOrDefault(v, def string) bool {
	trimmed := strings.TrimSpace(v)
	return trimmed == "" || trimmed == def
}

func parseDurationEnv(name, fallback string) (time.Duration, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return d, nil
}

func parseIntEnv(name, fallback string) (int, error) {
	value := strings.TrimSpace(getEnv(name, fallback))
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid %s value %q: %w", name, value, err)
	}
	return n, nil
}

func parseBoolEnv(name, fallback string) bool {
	value := strings.ToLower(strings.TrimSpace(getEnv(name, fallback)))
	return value == "1" || value == "true" || value == "yes" || value == "on"
}

func getEnv(name, fallback string) string {
	if v := os.Getenv(name); v != "" {
		return v
	}
	return fallback
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
