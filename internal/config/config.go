package config

import (
	"fmt"
	"time"

	"github.com/kelseyhightower/envconfig"
)

type Config struct {
	App struct {
		Name string `envconfig:"APP_NAME" default:"nota-fiscal"`
		Port int    `envconfig:"PORT" default:"8080"`
	}

	Emissor struct {
		URL       string `envconfig:"EMISSOR_URL" default:"https://api.emissor.example.com"`
		APIKey    string `envconfig:"EMISSOR_API_KEY"`
		Sistema   string `envconfig:"EMISSOR_SISTEMA" default:"nfe-rio"`
		OutputDir string `envconfig:"EMISSOR_OUTPUT_DIR" default:"./downloads"`
	}

	DB struct {
		Host     string `envconfig:"DB_HOST" default:"localhost"`
		Port     int    `envconfig:"DB_PORT" default:"5432"`
		User     string `envconfig:"DB_USER" default:"postgres"`
		Password string `envconfig:"DB_PASSWORD" default:""`
		Name     string `envconfig:"DB_NAME" default:"notafiscal"`
	}

	Server struct {
		Timeout time.Duration `envconfig:"SERVER_TIMEOUT" default:"30s"`
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
