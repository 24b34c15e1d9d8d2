package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"github.com/SAP-F-2025/tarpaulin-service/internal/identity"
	"github.com/SAP-F-2025/tarpaulin-service/internal/repositories/objectstore"
)

type Config struct {
	Port        string
	Environment string
	LogLevel    slog.Level

	DBDriver    string
	DatabaseURL string
	RedisURL    string

	Identity identity.Config
	Blob     objectstore.Config

	KafkaBrokers []string
	EventsTopic  string

	LoginRateLimit  int
	LoginRateWindow time.Duration

	PublicBaseURL      string
	CORSAllowedOrigins []string
	ImagesEnabled      bool
}

// LoadConfig reads .env (when present) and the process environment
func LoadConfig() (*Config, error) {
	// a missing .env is fine, real deployments use the environment
	_ = godotenv.Load()

	cfg := &Config{
		Port:        getEnv("PORT", "8080"),
		Environment: getEnv("ENVIRONMENT", "development"),
		DBDriver:    strings.ToLower(getEnv("DB_DRIVER", "postgres")),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		RedisURL:    os.Getenv("REDIS_URL"),
		EventsTopic: getEnv("EVENTS_TOPIC", "tarpaulin.events"),

		PublicBaseURL:      strings.TrimSuffix(os.Getenv("PUBLIC_BASE_URL"), "/"),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		KafkaBrokers:       splitList(os.Getenv("KAFKA_BROKERS")),
	}

	var err error
	if cfg.LogLevel, err = parseLogLevel(getEnv("LOG_LEVEL", "info")); err != nil {
		return nil, err
	}
	if cfg.ImagesEnabled, err = getBool("IMAGES_ENABLED", true); err != nil {
		return nil, err
	}
	if cfg.LoginRateLimit, err = getInt("LOGIN_RATE_LIMIT", 10); err != nil {
		return nil, err
	}
	if cfg.LoginRateWindow, err = getDuration("LOGIN_RATE_WINDOW", time.Minute); err != nil {
		return nil, err
	}

	cfg.Identity = identity.Config{
		Provider:     strings.ToLower(getEnv("IDENTITY_PROVIDER", identity.ProviderAuth0)),
		Verification: strings.ToLower(getEnv("TOKEN_VERIFICATION", identity.VerificationNone)),
		Auth0: identity.Auth0Config{
			Domain:       os.Getenv("AUTH0_DOMAIN"),
			ClientID:     os.Getenv("AUTH0_CLIENT_ID"),
			ClientSecret: os.Getenv("AUTH0_CLIENT_SECRET"),
		},
		Casdoor: identity.CasdoorConfig{
			Endpoint:     os.Getenv("CASDOOR_ENDPOINT"),
			ClientID:     os.Getenv("CASDOOR_CLIENT_ID"),
			ClientSecret: os.Getenv("CASDOOR_CLIENT_SECRET"),
			Cert:         os.Getenv("CASDOOR_CERT"),
			Organization: os.Getenv("CASDOOR_ORGANIZATION"),
			Application:  os.Getenv("CASDOOR_APPLICATION"),
		},
	}
	if cfg.Identity.Provider == identity.ProviderCasdoor {
		// Casdoor puts the client id in aud
		cfg.Identity.Audience = cfg.Identity.Casdoor.ClientID
	} else {
		cfg.Identity.Audience = os.Getenv("AUTH0_AUDIENCE")
	}

	cfg.Blob = objectstore.Config{
		Bucket:    getEnv("PHOTO_BUCKET", "tarpaulin-bucket-brett"),
		Endpoint:  os.Getenv("BLOB_ENDPOINT"),
		Region:    os.Getenv("BLOB_REGION"),
		AccessKey: os.Getenv("BLOB_ACCESS_KEY"),
		SecretKey: os.Getenv("BLOB_SECRET_KEY"),
		Prefix:    os.Getenv("BLOB_PREFIX"),
	}
	if cfg.Blob.PathStyle, err = getBool("BLOB_PATH_STYLE", false); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks combinations the server cannot start with
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "postgres":
		if c.DatabaseURL == "" {
			return fmt.Errorf("DATABASE_URL is required for the postgres driver")
		}
	case "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}

	switch c.Identity.Provider {
	case identity.ProviderAuth0:
		if c.Identity.Auth0.Domain == "" || c.Identity.Auth0.ClientID == "" {
			return fmt.Errorf("AUTH0_DOMAIN and AUTH0_CLIENT_ID are required")
		}
		if c.Identity.Audience == "" {
			return fmt.Errorf("AUTH0_AUDIENCE is required")
		}
	case identity.ProviderCasdoor:
		if c.Identity.Casdoor.Endpoint == "" || c.Identity.Casdoor.ClientID == "" {
			return fmt.Errorf("CASDOOR_ENDPOINT and CASDOOR_CLIENT_ID are required")
		}
		if c.Identity.Verification == identity.VerificationSignature && c.Identity.Casdoor.Cert == "" {
			return fmt.Errorf("CASDOOR_CERT is required for signature verification")
		}
	default:
		return fmt.Errorf("unsupported IDENTITY_PROVIDER %q", c.Identity.Provider)
	}

	switch c.Identity.Verification {
	case identity.VerificationNone, identity.VerificationSignature:
	default:
		return fmt.Errorf("unsupported TOKEN_VERIFICATION %q", c.Identity.Verification)
	}

	if c.LoginRateLimit < 0 {
		return fmt.Errorf("LOGIN_RATE_LIMIT must not be negative")
	}
	return nil
}

func getEnv(key, fallback string) string {
	if v, ok := os.LookupEnv(key); ok && strings.TrimSpace(v) != "" {
		return strings.TrimSpace(v)
	}
	return fallback
}

func getBool(key string, fallback bool) (bool, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, fmt.Errorf("invalid %s: %w", key, err)
	}
	return b, nil
}

func getInt(key string, fallback int) (int, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := getEnv(key, "")
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func parseLogLevel(v string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(v)); err != nil {
		return 0, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}
	return level, nil
}

func splitList(v string) []string {
	var out []string
	for _, part := range strings.Split(v, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
