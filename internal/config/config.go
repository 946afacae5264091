package config

import (
	"fmt"

	"github.com/caarlos0/env/v6"
	"github.com/joho/godotenv"
)

type (
	Config struct {
		Port      string `env:"PORT" envDefault:"3001"`
		JWTSecret string `env:"JWT_SECRET" envDefault:"secret"`

		// Feed defaults mirror the web client: 10 photos per page,
		// 5 km nearby radius.
		FeedPageSize   int     `env:"FEED_PAGE_SIZE" envDefault:"10"`
		NearbyRadiusKm float64 `env:"NEARBY_RADIUS_KM" envDefault:"5"`

		DB   DBConfig   `envPrefix:"POSTGRES_"`
		Blob BlobConfig `envPrefix:"S3_"`
	}

	DBConfig struct {
		URL      string `env:"URL"`
		User     string `env:"USER" envDefault:"postgres"`
		Password string `env:"PASSWORD" envDefault:"postgres"`
		Host     string `env:"HOST" envDefault:"localhost"`
		Port     string `env:"PORT" envDefault:"5432"`
		Database string `env:"DB" envDefault:"photodb"`
	}

	BlobConfig struct {
		Endpoint  string `env:"ENDPOINT" envDefault:"localhost:9000"`
		AccessKey string `env:"ACCESS_KEY"`
		SecretKey string `env:"SECRET_KEY"`
		Bucket    string `env:"BUCKET" envDefault:"photos"`
		UseSSL    bool   `env:"USE_SSL" envDefault:"false"`
	}
)

// Load reads configuration from the environment, after loading an optional
// .env file.
func Load() (*Config, error) {
	// Ignore error if .env file doesn't exist (e.g. in production)
	_ = godotenv.Load()

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return cfg, nil
}

// ConnString returns the Postgres connection string, assembled from the
// individual vars when POSTGRES_URL is not set.
func (c DBConfig) ConnString() string {
	if c.URL != "" {
		return c.URL
	}
	return "postgres://" + c.User + ":" + c.Password + "@" +
		c.Host + ":" + c.Port + "/" + c.Database + "?sslmode=disable"
}
