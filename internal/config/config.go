package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	Env     string `envconfig:"ENV" default:"dev"`
	Port    string `envconfig:"PORT" default:"8080"`
	GinMode string `envconfig:"GIN_MODE"`

	// Store selects the persistence backend: "postgres" or "memory".
	Store string `envconfig:"STORE" default:"postgres"`

	DBHost            string        `envconfig:"DB_HOST" default:"localhost"`
	DBPort            string        `envconfig:"DB_PORT" default:"5432"`
	DBUser            string        `envconfig:"DB_USER" default:"postgres"`
	DBPassword        string        `envconfig:"DB_PASSWORD"`
	DBName            string        `envconfig:"DB_NAME" default:"busbooking"`
	DBSSLMode         string        `envconfig:"DB_SSLMODE" default:"disable"`
	DBMaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"10"`
	DBMaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"100"`
	DBConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"1h"`

	// RedisURL is optional; seat-map events are disabled without it.
	RedisURL string `envconfig:"REDIS_URL"`

	JWTSecret      string `envconfig:"JWT_SECRET" required:"true"`
	JWTExpireHours int    `envconfig:"JWT_EXPIRE_HOURS" default:"168"`

	Timezone    string   `envconfig:"TIMEZONE" default:"UTC"`
	LogLevel    string   `envconfig:"LOG_LEVEL" default:"info"`
	LogFormat   string   `envconfig:"LOG_FORMAT" default:"text"`
	CORSOrigins []string `envconfig:"CORS_ORIGINS" default:"*"`

	AWSRegion          string `envconfig:"AWS_REGION"`
	AWSAccessKeyID     string `envconfig:"AWS_ACCESS_KEY_ID"`
	AWSSecretAccessKey string `envconfig:"AWS_SECRET_ACCESS_KEY"`
	AWSS3Bucket        string `envconfig:"AWS_S3_BUCKET"`
	UploadDir          string `envconfig:"UPLOAD_DIR" default:"./uploads"`
	BaseURL            string `envconfig:"BASE_URL" default:"http://localhost:8080"`

	EmailFrom     string `envconfig:"EMAIL_FROM"`
	EmailPassword string `envconfig:"EMAIL_PASSWORD"`
	SMTPHost      string `envconfig:"SMTP_HOST"`
	SMTPPort      string `envconfig:"SMTP_PORT"`
	CompanyName   string `envconfig:"COMPANY_NAME" default:"BusLine"`

	ATUsername string `envconfig:"AT_USERNAME"`
	ATAPIKey   string `envconfig:"AT_API_KEY"`

	OTLPEndpoint string `envconfig:"OTEL_EXPORTER_OTLP_ENDPOINT"`
}

// Load reads an optional .env file and then the process environment.
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		return Config{}, fmt.Errorf("failed to load .env file: %w", err)
	}

	var c Config
	if err := envconfig.Process("", &c); err != nil {
		return Config{}, err
	}
	if c.JWTSecret == "" {
		return Config{}, fmt.Errorf("JWT_SECRET must not be empty")
	}
	c.Store = strings.ToLower(strings.TrimSpace(c.Store))
	if c.Store != "postgres" && c.Store != "memory" {
		return Config{}, fmt.Errorf("unsupported STORE %q", c.Store)
	}
	if _, err := c.Location(); err != nil {
		return Config{}, err
	}
	return c, nil
}

// Location is the time zone used to compute travel day windows.
func (c Config) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	return loc, nil
}

func (c Config) DSN() string {
	return fmt.Sprintf(
		"host=%s user=%s password=%s dbname=%s port=%s sslmode=%s",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort, c.DBSSLMode,
	)
}

func (c Config) S3Enabled() bool {
	return c.AWSRegion != "" && c.AWSAccessKeyID != "" && c.AWSSecretAccessKey != "" && c.AWSS3Bucket != ""
}
