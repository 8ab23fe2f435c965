package main

import (
	"errors"
	"flag"
	"fmt"
	"os"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/ad-tracker/youtube-keyword-analytics/internal/config"
	"github.com/ad-tracker/youtube-keyword-analytics/internal/db"
	"github.com/ad-tracker/youtube-keyword-analytics/pkg/logger"
)

func main() {
	var (
		dbURL          string
		migrationsPath string
		direction      string
		steps          int
	)

	flag.StringVar(&dbURL, "db", "", "Database URL (defaults to the APP_DATABASE_* settings)")
	flag.StringVar(&migrationsPath, "path", "./migrations", "Path to migrations directory")
	flag.StringVar(&direction, "direction", "up", "Migration direction: up or down")
	flag.IntVar(&steps, "steps", 0, "Number of steps to migrate (0 means all)")
	flag.Parse()

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "failed to load config: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.File); err != nil {
		fmt.Fprintf(os.Stderr, "failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer func() { _ = logger.Sync() }()
	log := logger.Named("migrate")

	if dbURL == "" {
		dbURL = db.FromAppConfig(cfg.Database).URL()
	}

	if direction == "up" && steps == 0 {
		if err := db.MigrateUp(dbURL, migrationsPath); err != nil {
			log.Fatal("Migration failed", zap.Error(err))
		}
		log.Info("Migrations applied", zap.String("path", migrationsPath))
		return
	}

	m, err := migrate.New("file://"+migrationsPath, dbURL)
	if err != nil {
		log.Fatal("Failed to create migrate instance", zap.Error(err))
	}
	defer m.Close()

	switch direction {
	case "up":
		err = m.Steps(steps)
	case "down":
		if steps > 0 {
			err = m.Steps(-steps)
		} else {
			err = m.Down()
		}
	default:
		log.Fatal("Invalid direction (must be 'up' or 'down')", zap.String("direction", direction))
	}

	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatal("Migration failed", zap.Error(err))
	}

	version, dirty, err := m.Version()
	switch {
	case errors.Is(err, migrate.ErrNilVersion):
		log.Info("Migration completed (no version)")
	case err != nil:
		log.Fatal("Failed to get migration version", zap.Error(err))
	default:
		log.Info("Migration completed", zap.Uint("version", version), zap.Bool("dirty", dirty))
	}
}
