package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"Ledger"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"ledger"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
	}

	Auth struct {
		Secret string `envconfig:"AUTH_SECRET" required:"true"`
	}

	Matching struct {
		// Score at which a similarity candidate is auto-selected for bulk
		// rule application; below it candidates need explicit opt-in.
		Threshold int `envconfig:"MATCH_THRESHOLD" default:"60"`
		// Minimal relevance; candidates scoring below are dropped entirely.
		Floor int `envconfig:"MATCH_FLOOR" default:"20"`
		// Extra noise substrings stripped before matching, on top of the
		// built-in defaults.
		NoiseFilters []string `envconfig:"MATCH_NOISE_FILTERS"`
	}

	Batch struct {
		UpsertChunk int `envconfig:"BATCH_UPSERT_CHUNK" default:"500"`
		DeleteChunk int `envconfig:"BATCH_DELETE_CHUNK" default:"100"`
	}
}

func (c *Config) ConnectionString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=disable",
		c.DB.User, c.DB.Password, c.DB.Host, c.DB.Port, c.DB.Name)
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process config: %w", err)
	}

	return &cfg, nil
}
