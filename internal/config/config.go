// Package config loads and validates application configuration from environment variables.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// Supported values for DATABASE_DRIVER.
const (
	DriverPostgres = "postgres"
	DriverMongo    = "mongo"
)

const (
	defaultPostgresURL = "postgres://localhost:5432/yelpcamp?sslmode=disable"
	defaultMongoURL    = "mongodb://127.0.0.1:27017"
)

// Config holds all configuration values for the server.
// Values are populated by Load from environment variables.
type Config struct {
	// Port is the TCP port the HTTP server listens on. Defaults to "8080".
	Port string

	// LogLevel controls the minimum log level. Defaults to "info".
	// Valid values: debug, info, warn, error.
	LogLevel string

	// LogFormat is "json" (default) or "console" for human-readable output.
	LogFormat string

	// DatabaseDriver selects the campground store: "postgres" (default) or "mongo".
	DatabaseDriver string

	// DatabaseURL is the connection string for the selected driver.
	// Defaults to a local server for either driver.
	DatabaseURL string

	// MongoDatabase is the database name used by the mongo driver.
	MongoDatabase string

	// MigrateOnStart applies pending goose migrations at boot (postgres only).
	MigrateOnStart bool

	// MapboxToken is the access token for the geocoding API. Required.
	MapboxToken string

	// SessionSecret signs the flash-message session cookie. Required.
	SessionSecret string

	// SecureCookies marks session cookies HTTPS-only. Defaults to false.
	SecureCookies bool

	// TokenSecret signs and verifies identity tokens. Required.
	TokenSecret string

	S3 S3Config

	// CORSOrigins is the list of origins allowed to read the GeoJSON feed.
	CORSOrigins []string

	// MaxUploadBytes caps the size of a request body, uploads included.
	MaxUploadBytes int64

	// ThumbnailQuery is appended to image URLs on the edit form, for a
	// resizing proxy in front of the bucket (e.g. "w=200"). Optional.
	ThumbnailQuery string
}

// S3Config describes the object store that holds campground images.
type S3Config struct {
	Bucket    string
	Region    string
	Endpoint  string // optional, for S3-compatible stores
	PublicURL string // optional base URL images are served from
	AccessKey string
	SecretKey string
}

// Load reads configuration from environment variables and returns a Config.
// A .env file in the working directory is loaded first when present; values
// already set in the environment win.
// Returns an error listing any required variables that are not set.
func Load() (Config, error) {
	_ = godotenv.Load()

	cfg := Config{
		Port:           getEnv("PORT", "8080"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		LogFormat:      getEnv("LOG_FORMAT", "json"),
		DatabaseDriver: strings.ToLower(getEnv("DATABASE_DRIVER", DriverPostgres)),
		MongoDatabase:  getEnv("MONGO_DATABASE", "yelp-camp"),
		CORSOrigins:    splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000")),
		ThumbnailQuery: os.Getenv("IMAGE_THUMBNAIL_QUERY"),
		S3: S3Config{
			Region:    getEnv("AWS_REGION", "us-east-1"),
			Endpoint:  os.Getenv("S3_ENDPOINT"),
			PublicURL: os.Getenv("S3_PUBLIC_URL"),
			AccessKey: os.Getenv("AWS_ACCESS_KEY_ID"),
			SecretKey: os.Getenv("AWS_SECRET_ACCESS_KEY"),
		},
	}

	var problems []string

	switch cfg.DatabaseDriver {
	case DriverPostgres:
		cfg.DatabaseURL = getEnv("DATABASE_URL", defaultPostgresURL)
	case DriverMongo:
		cfg.DatabaseURL = getEnv("DATABASE_URL", defaultMongoURL)
	default:
		problems = append(problems, fmt.Sprintf("DATABASE_DRIVER must be %q or %q", DriverPostgres, DriverMongo))
	}

	migrate, err := strconv.ParseBool(getEnv("MIGRATE_ON_START", "true"))
	if err != nil {
		problems = append(problems, "MIGRATE_ON_START must be a boolean")
	}
	cfg.MigrateOnStart = migrate

	secure, err := strconv.ParseBool(getEnv("COOKIE_SECURE", "false"))
	if err != nil {
		problems = append(problems, "COOKIE_SECURE must be a boolean")
	}
	cfg.SecureCookies = secure

	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_BYTES", "10485760"), 10, 64)
	if err != nil || maxUpload <= 0 {
		problems = append(problems, "MAX_UPLOAD_BYTES must be a positive integer")
	}
	cfg.MaxUploadBytes = maxUpload

	cfg.MapboxToken = os.Getenv("MAPBOX_TOKEN")
	cfg.SessionSecret = os.Getenv("SESSION_SECRET")
	cfg.TokenSecret = os.Getenv("TOKEN_SECRET")
	cfg.S3.Bucket = os.Getenv("S3_BUCKET")

	var missing []string
	for _, req := range []struct{ key, val string }{
		{"MAPBOX_TOKEN", cfg.MapboxToken},
		{"SESSION_SECRET", cfg.SessionSecret},
		{"TOKEN_SECRET", cfg.TokenSecret},
		{"S3_BUCKET", cfg.S3.Bucket},
	} {
		if req.val == "" {
			missing = append(missing, req.key)
		}
	}
	if len(missing) > 0 {
		problems = append(problems, "required environment variables not set: "+strings.Join(missing, ", "))
	}

	if len(problems) > 0 {
		return Config{}, fmt.Errorf("invalid configuration: %s", strings.Join(problems, "; "))
	}

	return cfg, nil
}

// getEnv returns the value of the environment variable named by key,
// or fallback if the variable is not set or is empty.
func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// splitCSV splits a comma-separated string into a trimmed slice, ignoring empty entries.
func splitCSV(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if t := strings.TrimSpace(part); t != "" {
			out = append(out, t)
		}
	}
	return out
}
