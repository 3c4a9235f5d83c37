package main

import (
	"flag"
	"fmt"
	"os"

	"github.com/darisadam/cardbrand/internal/config"
	"github.com/darisadam/cardbrand/internal/pkg/jwt"
	"github.com/google/uuid"
	"github.com/joho/godotenv"
)

// clientkey mints a client key for an integrating merchant.
func main() {
	merchant := flag.String("merchant", "", "merchant or app name the key is issued to")
	scope := flag.String("scope", jwt.ScopeLookup, "lookup or admin")
	hours := flag.Int("hours", 0, "validity in hours (defaults to JWT_EXPIRY_HOURS)")
	flag.Parse()

	if *merchant == "" {
		fmt.Fprintln(os.Stderr, "usage: clientkey -merchant <name> [-scope lookup|admin] [-hours n]")
		os.Exit(2)
	}
	if *scope != jwt.ScopeLookup && *scope != jwt.ScopeAdmin {
		fmt.Fprintf(os.Stderr, "unknown scope %q\n", *scope)
		os.Exit(2)
	}

	_ = godotenv.Load()
	cfg, err := config.FromEnv()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	expiry := cfg.JWTExpiryHours
	if *hours > 0 {
		expiry = *hours
	}

	clientID := uuid.New()
	token, expiresAt, err := jwt.NewJWTService(cfg.JWTSecret, expiry).GenerateToken(clientID, *merchant, *scope)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fmt.Printf("client_id:  %s\n", clientID)
	fmt.Printf("merchant:   %s\n", *merchant)
	fmt.Printf("scope:      %s\n", *scope)
	fmt.Printf("expires_at: %s\n", expiresAt.Format("2006-01-02T15:04:05Z07:00"))
	fmt.Printf("key:        %s\n", token)
}
