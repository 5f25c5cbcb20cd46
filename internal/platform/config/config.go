package config

import (
	"os"
	"time"
)

// Server captures process level configuration for the onboarding gateway.
type Server struct {
	Addr          string
	LogLevel      string
	JWTSigningKey string

	// Verification channel endpoints.
	IdentityServiceURL string
	IdentityAPIKey     string
	RegistryServiceURL string
	RegistryAPIKey     string
	WalletServiceURL   string
	WalletAPIKey       string

	// Debounce windows before a stable field value is verified.
	DigitDebounce    time.Duration
	BusinessDebounce time.Duration

	// Outbound call timeout for verification and submission requests.
	CallTimeout time.Duration

	// OTPSessionTTL bounds how long a BVN OTP session handle stays usable.
	OTPSessionTTL time.Duration

	// SessionIdleTTL evicts abandoned onboarding sessions.
	SessionIdleTTL time.Duration

	RedisURL    string
	PostgresURL string
}

// FromEnv builds a Server config from environment variables so main stays lean.
func FromEnv() Server {
	cfg := Server{
		Addr:               envOr("SCOUTPAY_ADDR", ":8080"),
		LogLevel:           envOr("SCOUTPAY_LOG_LEVEL", "info"),
		JWTSigningKey:      envOr("JWT_SIGNING_KEY", "dev-secret-key-change-in-production"),
		IdentityServiceURL: envOr("IDENTITY_SERVICE_URL", "http://localhost:9091"),
		IdentityAPIKey:     os.Getenv("IDENTITY_API_KEY"),
		RegistryServiceURL: envOr("BUSINESS_REGISTRY_URL", "http://localhost:9092"),
		RegistryAPIKey:     os.Getenv("BUSINESS_REGISTRY_API_KEY"),
		WalletServiceURL:   envOr("WALLET_SERVICE_URL", "http://localhost:9093"),
		WalletAPIKey:       os.Getenv("WALLET_API_KEY"),
		DigitDebounce:      durationOr("DIGIT_DEBOUNCE", 700*time.Millisecond),
		BusinessDebounce:   durationOr("BUSINESS_DEBOUNCE", time.Second),
		CallTimeout:        durationOr("VERIFICATION_CALL_TIMEOUT", 20*time.Second),
		OTPSessionTTL:      durationOr("OTP_SESSION_TTL", 10*time.Minute),
		SessionIdleTTL:     durationOr("SESSION_IDLE_TTL", 30*time.Minute),
		RedisURL:           os.Getenv("REDIS_URL"),
		PostgresURL:        os.Getenv("POSTGRES_URL"),
	}
	return cfg
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func durationOr(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}
