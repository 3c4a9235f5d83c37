package client

import (
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
)

// Environment selects the lookup service deployment.
type Environment string

const (
	EnvTest Environment = "test"
	EnvLive Environment = "live"
)

type Config struct {
	// ClientKey is the bearer token issued to this client by the lookup service.
	ClientKey string

	Env Environment

	// BaseURL overrides the URL derived from Env.
	BaseURL string

	// Timeout applies to each HTTP round trip. Zero means 10 seconds.
	Timeout time.Duration
}

func (c Config) Validate() error {
	if c.ClientKey == "" {
		return fmt.Errorf("cardbrand client: ClientKey is required")
	}
	return nil
}

// DefaultBaseURL returns the lookup endpoint for the configured environment.
func (c Config) DefaultBaseURL() string {
	if c.BaseURL != "" {
		return c.BaseURL
	}
	if c.Env == EnvLive {
		return "https://bin.cardbrand.io"
	}
	return "https://bin-test.cardbrand.io"
}

// LoadConfigFromEnv reads:
//
//	CARDBRAND_CLIENT_KEY – bearer client key (required)
//	CARDBRAND_ENV        – "test" (default) or "live"
//	CARDBRAND_BASE_URL   – optional endpoint override
//	CARDBRAND_TIMEOUT    – optional Go duration, e.g. "3s"
func LoadConfigFromEnv() Config {
	env := EnvTest
	if os.Getenv("CARDBRAND_ENV") == string(EnvLive) {
		env = EnvLive
	}

	timeout, _ := time.ParseDuration(os.Getenv("CARDBRAND_TIMEOUT"))

	return Config{
		ClientKey: os.Getenv("CARDBRAND_CLIENT_KEY"),
		Env:       env,
		BaseURL:   os.Getenv("CARDBRAND_BASE_URL"),
		Timeout:   timeout,
	}
}

// LoadConfigFromDotEnv loads a .env file, without overriding variables that
// are already set, and then reads the Config from the environment.
func LoadConfigFromDotEnv(filenames ...string) Config {
	_ = godotenv.Load(filenames...)
	return LoadConfigFromEnv()
}
