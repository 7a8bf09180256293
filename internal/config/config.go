package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

// Extractor backends selectable through EXTRACTOR.
const (
	ExtractorYTDLP  = "ytdlp"
	ExtractorStatic = "static"
)

// Config is the process configuration, read from the environment.
type Config struct {
	Addr      string `env:"ADDR" env-default:":5000" env-description:"public listen address"`
	AdminAddr string `env:"ADMIN_ADDR" env-default:":9090" env-description:"health and metrics listen address, empty disables"`
	TempDir   string `env:"TEMP_DIR" env-default:"temp_downloads" env-description:"directory for in-flight artifacts"`

	Extractor        string        `env:"EXTRACTOR" env-default:"ytdlp" env-description:"ytdlp or static"`
	YTDLPAutoInstall bool          `env:"YTDLP_AUTO_INSTALL" env-default:"false" env-description:"download yt-dlp when not on PATH"`
	Format           string        `env:"FORMAT" env-default:"best" env-description:"yt-dlp format selector"`
	ExtractTimeout   time.Duration `env:"EXTRACT_TIMEOUT" env-default:"0s" env-description:"per-download limit, 0 disables"`
	SweepOnStart     bool          `env:"SWEEP_ON_START" env-default:"true" env-description:"remove leftover artifacts at startup"`

	ReadTimeout     time.Duration `env:"READ_TIMEOUT" env-default:"10s"`
	WriteTimeout    time.Duration `env:"WRITE_TIMEOUT" env-default:"30m"`
	IdleTimeout     time.Duration `env:"IDLE_TIMEOUT" env-default:"120s"`
	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" env-default:"30s"`

	Log Log
}

// Log configures the process logger.
type Log struct {
	Level      string `env:"LOG_LEVEL" env-default:"info"`
	Format     string `env:"LOG_FORMAT" env-default:"json"`
	File       string `env:"LOG_FILE" env-description:"rotate logs into this file as well as stdout"`
	MaxSizeMB  int    `env:"LOG_MAX_SIZE_MB" env-default:"100"`
	MaxBackups int    `env:"LOG_MAX_BACKUPS" env-default:"3"`
	MaxAgeDays int    `env:"LOG_MAX_AGE_DAYS" env-default:"28"`
}

// Load reads optional .env files and then the environment.
func Load() (*Config, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, err
	}
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("read env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks values cleanenv cannot.
func (c *Config) Validate() error {
	switch c.Extractor {
	case ExtractorYTDLP, ExtractorStatic:
	default:
		return fmt.Errorf("invalid EXTRACTOR %q (allowed: ytdlp|static)", c.Extractor)
	}
	if c.TempDir == "" {
		return errors.New("TEMP_DIR is required")
	}
	if c.Addr == "" {
		return errors.New("ADDR is required")
	}
	if c.ExtractTimeout < 0 {
		return errors.New("EXTRACT_TIMEOUT must not be negative")
	}
	return nil
}

// loadEnvFiles loads .env then .env.local; both are optional and values
// already in the environment win over .env.
func loadEnvFiles() error {
	if _, err := os.Stat(".env"); err == nil {
		if err := godotenv.Load(".env"); err != nil {
			return fmt.Errorf("failed to load .env: %w", err)
		}
	}
	if _, err := os.Stat(".env.local"); err == nil {
		if err := godotenv.Overload(".env.local"); err != nil {
			return fmt.Errorf("failed to load .env.local: %w", err)
		}
	}
	return nil
}
