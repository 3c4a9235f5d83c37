package main

import (
	"database/sql"
	"errors"
	"fmt"
	"os"

	"github.com/darisadam/cardbrand/internal/config"
	"github.com/darisadam/cardbrand/internal/pkg/logger"
	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"go.uber.org/zap"
)

func main() {
	_ = godotenv.Load()
	logger.Init(os.Getenv("ENV"))
	defer logger.Sync()

	if len(os.Args) < 2 {
		logger.Fatal("Usage: migrate [up|down|version]")
	}

	databaseURL, err := config.DatabaseURL()
	if err != nil {
		logger.Fatal("Database is not configured", zap.Error(err))
	}

	source := os.Getenv("MIGRATIONS_PATH")
	if source == "" {
		source = "file://migrations"
	}

	db, err := sql.Open("postgres", databaseURL)
	if err != nil {
		logger.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		_ = db.Close()
	}()

	driver, err := postgres.WithInstance(db, &postgres.Config{})
	if err != nil {
		logger.Fatal("Failed to create migration driver", zap.Error(err))
	}

	m, err := migrate.NewWithDatabaseInstance(source, "postgres", driver)
	if err != nil {
		logger.Fatal("Failed to create migration instance", zap.Error(err))
	}

	switch command := os.Args[1]; command {
	case "up":
		if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Failed to run migrations", zap.Error(err))
		}
		fmt.Println("Migrations applied successfully")

	case "down":
		if err := m.Down(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
			logger.Fatal("Failed to rollback migrations", zap.Error(err))
		}
		fmt.Println("Migrations rolled back successfully")

	case "version":
		version, dirty, err := m.Version()
		if err != nil {
			logger.Fatal("Failed to get migration version", zap.Error(err))
		}
		fmt.Printf("Version: %d, Dirty: %v\n", version, dirty)

	default:
		logger.Fatal("Unknown command. Use: up, down, or version", zap.String("command", command))
	}
}
