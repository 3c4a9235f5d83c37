package config

import (
	"fmt"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Env  string
	Port string

	DatabaseURL string

	RedisAddr     string
	RedisPassword string

	JWTSecret      string
	JWTExpiryHours int

	CacheTTL          time.Duration
	CORSOrigins       []string
	RSAPrivateKeyFile string
	MaintenanceBypass string
	ShutdownTimeout   time.Duration

	// BinScanThreshold is the number of distinct BINs one client may look up
	// per BinScanWindow. Zero disables the check.
	BinScanThreshold int
	BinScanWindow    time.Duration
}

// Load reads .env when present, then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromEnv()
}

func FromEnv() (*Config, error) {
	cfg := &Config{
		Env:               getEnv("ENV", "development"),
		Port:              getEnv("PORT", "8080"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		RedisPassword:     os.Getenv("REDIS_PASSWORD"),
		JWTSecret:         os.Getenv("JWT_SECRET"),
		RSAPrivateKeyFile: os.Getenv("RSA_PRIVATE_KEY_FILE"),
		MaintenanceBypass: os.Getenv("MAINTENANCE_BYPASS_TOKEN"),
		ShutdownTimeout:   5 * time.Second,
	}

	var err error
	if cfg.JWTExpiryHours, err = getInt("JWT_EXPIRY_HOURS", 24*30); err != nil {
		return nil, err
	}
	if cfg.CacheTTL, err = getDuration("CACHE_TTL", 24*time.Hour); err != nil {
		return nil, err
	}
	if cfg.BinScanThreshold, err = getInt("BIN_SCAN_THRESHOLD", 200); err != nil {
		return nil, err
	}
	if cfg.BinScanWindow, err = getDuration("BIN_SCAN_WINDOW", 10*time.Minute); err != nil {
		return nil, err
	}
	if cfg.BinScanThreshold > 0 && cfg.BinScanWindow <= 0 {
		return nil, fmt.Errorf("BIN_SCAN_WINDOW must be positive when BIN_SCAN_THRESHOLD is set, got %s", cfg.BinScanWindow)
	}

	if origins := os.Getenv("CORS_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.CORSOrigins = append(cfg.CORSOrigins, o)
			}
		}
	}

	if cfg.DatabaseURL, err = DatabaseURL(); err != nil {
		return nil, err
	}

	if cfg.JWTSecret == "" {
		if cfg.IsProduction() {
			return nil, fmt.Errorf("JWT_SECRET is required in production")
		}
		cfg.JWTSecret = "dev-secret-change-me"
	}

	return cfg, nil
}

// DatabaseURL returns DATABASE_URL, or builds one from the DB_* variables.
// A PLACEHOLDER in DATABASE_URL is replaced by DB_PASSWORD (injected from a
// secrets manager).
func DatabaseURL() (string, error) {
	databaseURL := os.Getenv("DATABASE_URL")
	password := os.Getenv("DB_PASSWORD")

	if databaseURL == "" {
		host := os.Getenv("DB_HOST")
		port := getEnv("DB_PORT", "5432")
		user := os.Getenv("DB_USER")
		name := os.Getenv("DB_NAME")

		if host == "" || user == "" || name == "" || password == "" {
			return "", fmt.Errorf("DATABASE_URL is not set and DB_* variables are missing")
		}
		sslMode := getEnv("DB_SSLMODE", "disable")
		return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=%s", user, url.QueryEscape(password), host, port, name, sslMode), nil
	}

	if password != "" {
		databaseURL = strings.Replace(databaseURL, "PLACEHOLDER", url.QueryEscape(password), 1)
	}
	return databaseURL, nil
}

func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

func (c *Config) Addr() string {
	return ":" + c.Port
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
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
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}
