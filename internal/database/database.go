// Package database manages the gorm connection and migrations
package database

import (
	"fmt"
	"log"

	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"truthscan/internal/config"
	"truthscan/internal/models"
)

// DB holds the database connection
var DB *gorm.DB

// Connect establishes the database connection. SQLite is the default for
// local/hackathon runs; postgres is selected with DB_DRIVER=postgres.
func Connect(cfg config.Database) error {
	dialector, err := openDialector(cfg)
	if err != nil {
		return err
	}

	DB, err = gorm.Open(dialector, &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}

	log.Printf("Successfully connected to %s database", cfg.Driver)
	return nil
}

func openDialector(cfg config.Database) (gorm.Dialector, error) {
	switch cfg.Driver {
	case "sqlite", "":
		path := cfg.Path
		if path == "" {
			path = "truthscan.db"
		}
		return sqlite.Open(path), nil
	case "postgres":
		return postgres.Open(postgresDSN(cfg)), nil
	default:
		return nil, fmt.Errorf("unsupported database driver %q", cfg.Driver)
	}
}

// postgresDSN builds the DSN, omitting the password parameter when empty
func postgresDSN(cfg config.Database) string {
	dsn := fmt.Sprintf(
		"host=%s port=%s user=%s dbname=%s sslmode=%s",
		cfg.Host, cfg.Port, cfg.User, cfg.DBName, cfg.SSLMode,
	)
	if cfg.Password != "" {
		dsn = fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			cfg.Host, cfg.Port, cfg.User, cfg.Password, cfg.DBName, cfg.SSLMode,
		)
	}
	return dsn
}

// Migrate runs database migrations
func Migrate() error {
	if DB == nil {
		return fmt.Errorf("database connection not established")
	}

	if err := models.AutoMigrate(DB); err != nil {
		return fmt.Errorf("failed to run migrations: %w", err)
	}

	log.Println("Database migrations completed successfully")
	return nil
}

// Close closes the database connection
func Close() error {
	if DB == nil {
		return nil
	}

	sqlDB, err := DB.DB()
	if err != nil {
		return err
	}

	return sqlDB.Close()
}
