// Package config reads service settings from the environment and an optional
// .env file.
package config

import (
	"errors"
	"io/fs"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/zeebo/errs"
)

// Error is the error class for configuration problems.
var Error = errs.Class("config")

// Supported DB_DRIVER values.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Supported ARCHIVE_BACKEND values.
const (
	BackendGCS = "gcs"
	BackendS3  = "s3"
)

// Config is the full service configuration.
type Config struct {
	Port    string
	GinMode string

	DB      DBConfig
	Archive ArchiveConfig

	LogDir            string
	LogLevel          string
	LogBackupInterval time.Duration

	RulesFile          string
	CORSAllowedOrigins []string

	// NATSURL enables dataset event publishing when set.
	NATSURL string
}

// DBConfig selects and addresses the document store. An empty Driver disables it.
type DBConfig struct {
	Driver     string
	Host       string
	Port       string
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// ArchiveConfig selects the object store used for the data lake and log
// archival. An empty Backend disables both.
type ArchiveConfig struct {
	Backend string

	GCSBucket  string
	GCSKeyFile string

	S3Endpoint  string
	S3AccessKey string
	S3SecretKey string
	S3Bucket    string
	S3UseSSL    bool
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

// Load reads .env (if present) and the environment.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		log.Printf("Could not read .env file: %v", err)
	}
	return FromEnv()
}

// FromEnv builds a Config from the process environment only.
func FromEnv() (*Config, error) {
	interval, err := ParseInterval(getEnv("LOG_BACKUP_INTERVAL", "1h"))
	if err != nil {
		return nil, err
	}

	useSSL, err := strconv.ParseBool(getEnv("S3_USE_SSL", "true"))
	if err != nil {
		return nil, Error.New("S3_USE_SSL: %v", err)
	}

	cfg := &Config{
		Port:    getEnv("PORT", "3000"),
		GinMode: getEnv("GIN_MODE", "release"),
		DB: DBConfig{
			Driver:     strings.ToLower(getEnv("DB_DRIVER", "")),
			Host:       getEnv("DB_HOST", "localhost"),
			Port:       getEnv("DB_PORT", "5432"),
			User:       getEnv("DB_USER", "postgres"),
			Password:   getEnv("DB_PASSWORD", ""),
			Name:       getEnv("DB_NAME", "metadata"),
			SSLMode:    getEnv("DB_SSLMODE", "disable"),
			SQLitePath: getEnv("SQLITE_PATH", "metadata.db"),
		},
		Archive: ArchiveConfig{
			Backend:     strings.ToLower(getEnv("ARCHIVE_BACKEND", "")),
			GCSBucket:   getEnv("GCS_BUCKET_NAME", ""),
			GCSKeyFile:  getEnv("GCS_KEY_FILE_PATH", ""),
			S3Endpoint:  getEnv("S3_ENDPOINT", ""),
			S3AccessKey: getEnv("S3_ACCESS_KEY", ""),
			S3SecretKey: getEnv("S3_SECRET_KEY", ""),
			S3Bucket:    getEnv("S3_BUCKET", ""),
			S3UseSSL:    useSSL,
		},
		LogDir:             getEnv("LOG_DIR", "logs"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogBackupInterval:  interval,
		RulesFile:          getEnv("RULES_FILE", ""),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		NATSURL:            getEnv("NATS_URL", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks that the selected backends have what they need.
func (c *Config) Validate() error {
	switch c.DB.Driver {
	case "", DriverPostgres, DriverSQLite:
	default:
		return Error.New("unsupported DB_DRIVER %q", c.DB.Driver)
	}

	switch c.Archive.Backend {
	case "":
	case BackendGCS:
		if c.Archive.GCSBucket == "" {
			return Error.New("GCS_BUCKET_NAME is required when ARCHIVE_BACKEND=gcs")
		}
	case BackendS3:
		if c.Archive.S3Endpoint == "" || c.Archive.S3Bucket == "" {
			return Error.New("S3_ENDPOINT and S3_BUCKET are required when ARCHIVE_BACKEND=s3")
		}
	default:
		return Error.New("unsupported ARCHIVE_BACKEND %q", c.Archive.Backend)
	}

	if c.LogBackupInterval <= 0 {
		return Error.New("LOG_BACKUP_INTERVAL must be positive")
	}
	return nil
}

// ParseInterval accepts a Go duration ("30m") or a bare integer of milliseconds.
func ParseInterval(s string) (time.Duration, error) {
	s = strings.TrimSpace(s)
	if ms, err := strconv.ParseInt(s, 10, 64); err == nil {
		return time.Duration(ms) * time.Millisecond, nil
	}
	d, err := time.ParseDuration(s)
	if err != nil {
		return 0, Error.New("LOG_BACKUP_INTERVAL %q: %v", s, err)
	}
	return d, nil
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
