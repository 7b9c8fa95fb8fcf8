package config

import (
	"fmt"
	"strings"
	"time"
)

const (
	defaultJWTAccessTTL      = "24h"
	defaultJWTSecret         = "change-me-jwt-secret"
	defaultTokenPepper       = "change-me-token-pepper"
	defaultActivationTTL     = "72h"
	defaultPasswordResetTTL  = "1h"
	defaultEmailChangeTTL    = "24h"
	defaultInitialBalance    = "1000"
	defaultReviewReward      = "300"
	defaultMaxFailedLogins   = "5"
	defaultLockoutDuration   = "15m"
	defaultTokenCleanupEvery = "1h"
)

// AuthConfig holds everything the identity module needs at runtime.
type AuthConfig struct {
	JWTSecret          string
	JWTAccessTTL       time.Duration
	TokenPepper        string
	ActivationTTL      time.Duration
	PasswordResetTTL   time.Duration
	EmailChangeTTL     time.Duration
	InitialBalance     int64
	ReviewReward       int64
	MaxFailedLogins    int
	LockoutDuration    time.Duration
	TokenCleanupPeriod time.Duration
}

func loadAuthConfig() (AuthConfig, error) {
	cfg := AuthConfig{
		JWTSecret:   strings.TrimSpace(getEnv("JWT_SECRET", defaultJWTSecret)),
		TokenPepper: strings.TrimSpace(getEnv("TOKEN_PEPPER", defaultTokenPepper)),
	}

	var err error
	if cfg.JWTAccessTTL, err = parseDurationEnv("JWT_ACCESS_TTL", defaultJWTAccessTTL); err != nil {
		return cfg, err
	}
	if cfg.ActivationTTL, err = parseDurationEnv("ACTIVATION_TOKEN_TTL", defaultActivationTTL); err != nil {
		return cfg, err
	}
	if cfg.PasswordResetTTL, err = parseDurationEnv("PASSWORD_RESET_TOKEN_TTL", defaultPasswordResetTTL); err != nil {
		return cfg, err
	}
	if cfg.EmailChangeTTL, err = parseDurationEnv("EMAIL_CHANGE_TOKEN_TTL", defaultEmailChangeTTL); err != nil {
		return cfg, err
	}
	if cfg.LockoutDuration, err = parseDurationEnv("LOGIN_LOCKOUT_DURATION", defaultLockoutDuration); err != nil {
		return cfg, err
	}
	if cfg.TokenCleanupPeriod, err = parseDurationEnv("TOKEN_CLEANUP_INTERVAL", defaultTokenCleanupEvery); err != nil {
		return cfg, err
	}

	initial, err := parseIntEnv("INITIAL_BALANCE", defaultInitialBalance)
	if err != nil {
		return cfg, err
	}
	cfg.InitialBalance = int64(initial)

	reward, err := parseIntEnv("REVIEW_REWARD_POINTS", defaultReviewReward)
	if err != nil {
		return cfg, err
	}
	cfg.ReviewReward = int64(reward)

	if cfg.MaxFailedLogins, err = parseIntEnv("MAX_FAILED_LOGINS", defaultMaxFailedLogins); err != nil {
		return cfg, err
	}

	return cfg, nil
}

func validateAuthConfig(appEnv string, cfg AuthConfig) error {
	if cfg.JWTAccessTTL <= 0 {
		return fmt.Errorf("JWT_ACCESS_TTL must be > 0")
	}
	if cfg.ActivationTTL <= 0 || cfg.PasswordResetTTL <= 0 || cfg.EmailChangeTTL <= 0 {
		return fmt.Errorf("token TTLs must be > 0")
	}
	if cfg.InitialBalance < 0 {
		return fmt.Errorf("INITIAL_BALANCE must be >= 0")
	}
	if cfg.ReviewReward <= 0 {
		return fmt.Errorf("REVIEW_REWARD_POINTS must be > 0")
	}
	if cfg.MaxFailedLogins <= 0 {
		return fmt.Errorf("MAX_FAILED_LOGINS must be > 0")
	}

	if isProdLike(appEnv) {
		if isEmptyOrDefault(cfg.JWTSecret, defaultJWTSecret) {
			return fmt.Errorf("in prod/release JWT_SECRET must be set and not default")
		}
		if isEmptyOrDefault(cfg.TokenPepper, defaultTokenPepper) {
			return fmt.Errorf("in prod/release TOKEN_PEPPER must be set and not default")
		}
	}
	return nil
}
