package config

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	ServerPort string `envconfig:"SERVER_PORT" default:"8080"`
	DBHost     string `envconfig:"DB_HOST" default:"localhost"`
	DBPort     string `envconfig:"DB_PORT" default:"5432"`
	DBUser     string `envconfig:"DB_USER" default:"orbit"`
	DBPassword string `envconfig:"DB_PASSWORD" default:"orbit_dev_password"`
	DBName     string `envconfig:"DB_NAME" default:"orbit"`
	JWTSecret  string `envconfig:"JWT_SECRET" default:"dev-secret-change-me"`

	// External image host (imgbb-style upload API)
	ImageHostURL string `envconfig:"IMAGE_HOST_URL" default:"https://api.imgbb.com/1/upload"`
	ImageHostKey string `envconfig:"IMAGE_HOST_KEY"`
	MaxImageSize int64  `envconfig:"MAX_IMAGE_SIZE" default:"10485760"`

	// Google token verification endpoint, overridable for tests
	GoogleTokenInfoURL string `envconfig:"GOOGLE_TOKENINFO_URL" default:"https://oauth2.googleapis.com/tokeninfo"`

	RateLimitRPS   float64 `envconfig:"RATE_LIMIT_RPS" default:"10"`
	RateLimitBurst int     `envconfig:"RATE_LIMIT_BURST" default:"20"`
}

// Load reads configuration from the environment. A .env file is honored
// when present so local development does not need exported variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("processing config: %w", err)
	}
	return &cfg, nil
}

// DatabaseURL builds the postgres connection URL used by both the pool
// and the migration runner.
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable",
		c.DBUser, c.DBPassword, c.DBHost, c.DBPort, c.DBName)
}
