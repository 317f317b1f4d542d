package database

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/zeebo/errs"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"metadata-repository/internal/config"
	"metadata-repository/internal/models"
)

// Error is the error class for database setup failures.
var Error = errs.Class("database")

// Open connects to the configured document store and migrates the schema.
// It returns (nil, nil) when no driver is configured.
func Open(cfg config.DBConfig) (*gorm.DB, error) {
	var dialector gorm.Dialector
	switch cfg.Driver {
	case "":
		return nil, nil
	case config.DriverPostgres:
		dsn := fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=%s TimeZone=UTC",
			cfg.Host, cfg.User, cfg.Password, cfg.Name, cfg.Port, cfg.SSLMode)
		dialector = postgres.Open(dsn)
	case config.DriverSQLite:
		dialector = sqlite.Open(cfg.SQLitePath)
	default:
		return nil, Error.New("unsupported driver %q", cfg.Driver)
	}

	newLogger := logger.New(
		log.New(os.Stdout, "\r\n", log.LstdFlags),
		logger.Config{
			SlowThreshold:             time.Second,
			LogLevel:                  logger.Warn,
			IgnoreRecordNotFoundError: true,
			Colorful:                  true,
		},
	)

	db, err := gorm.Open(dialector, &gorm.Config{
		Logger:         newLogger,
		TranslateError: true,
	})
	if err != nil {
		return nil, Error.Wrap(err)
	}
	log.Println("Database connection established")

	if err := Migrate(db); err != nil {
		return nil, err
	}
	log.Println("Database schema migration completed.")
	return db, nil
}

// Migrate creates or updates every table the service uses.
// It will NOT delete unneeded columns.
func Migrate(db *gorm.DB) error {
	return Error.Wrap(db.AutoMigrate(models.AllModels()...))
}

// Available reports whether db is configured and answers a ping.
func Available(ctx context.Context, db *gorm.DB) bool {
	if db == nil {
		return false
	}
	sqlDB, err := db.DB()
	if err != nil {
		return false
	}
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return sqlDB.PingContext(ctx) == nil
}
