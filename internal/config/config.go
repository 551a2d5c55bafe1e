// Package config loads service settings from the environment.
//
// A .env file in the working directory is read first (godotenv), without
// overriding variables already set, then the tagged Config struct is parsed.
package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
)

var ErrInvalid = errors.New("config: invalid value")

// Config is the complete service configuration.
type Config struct {
	Port      string `env:"PORT"       envDefault:"5175"`
	DBPath    string `env:"DB_PATH"    envDefault:"./data/balda.db"`
	LogLevel  string `env:"LOG_LEVEL"  envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	WordsFile      string `env:"WORDS_FILE"`
	WordsMinLength int    `env:"WORDS_MIN_LENGTH" envDefault:"3"`

	JWTSecret    string `env:"JWT_SECRET"`
	ClientOrigin string `env:"CLIENT_ORIGIN" envDefault:"http://localhost:5173"`
	DailySalt    string `env:"DAILY_SALT"    envDefault:"balda"`

	DefaultMaxRounds       int           `env:"DEFAULT_MAX_ROUNDS"       envDefault:"0"`
	DefaultMaxAttempts     int           `env:"DEFAULT_MAX_ATTEMPTS"     envDefault:"1"`
	DefaultStagnationLimit int           `env:"DEFAULT_STAGNATION_LIMIT" envDefault:"5"`
	DefaultMoveTimeout     time.Duration `env:"DEFAULT_MOVE_TIMEOUT"     envDefault:"180s"`
}

// Load reads files (default ".env") and then the environment.
// Missing .env files are not an error.
func Load(files ...string) (Config, error) {
	_ = godotenv.Load(files...)
	return Parse()
}

// Parse reads the environment only.
func Parse() (Config, error) {
	var cfg Config
	if err := env.Parse(&cfg); err != nil {
		return Config{}, fmt.Errorf("parse env: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate rejects values the service cannot run with.
func (c Config) Validate() error {
	switch {
	case c.WordsMinLength < 1:
		return fmt.Errorf("%w: WORDS_MIN_LENGTH=%d", ErrInvalid, c.WordsMinLength)
	case c.DefaultMaxRounds < 0:
		return fmt.Errorf("%w: DEFAULT_MAX_ROUNDS=%d", ErrInvalid, c.DefaultMaxRounds)
	case c.DefaultMaxAttempts < 1:
		return fmt.Errorf("%w: DEFAULT_MAX_ATTEMPTS=%d", ErrInvalid, c.DefaultMaxAttempts)
	case c.DefaultStagnationLimit < 1:
		return fmt.Errorf("%w: DEFAULT_STAGNATION_LIMIT=%d", ErrInvalid, c.DefaultStagnationLimit)
	case c.DefaultMoveTimeout <= 0:
		return fmt.Errorf("%w: DEFAULT_MOVE_TIMEOUT=%s", ErrInvalid, c.DefaultMoveTimeout)
	}
	if _, err := c.Level(); err != nil {
		return fmt.Errorf("%w: LOG_LEVEL=%q", ErrInvalid, c.LogLevel)
	}
	return nil
}

// Level is the parsed LOG_LEVEL.
func (c Config) Level() (zerolog.Level, error) {
	return zerolog.ParseLevel(strings.ToLower(c.LogLevel))
}

// Console reports whether logs should be human readable.
func (c Config) Console() bool {
	return strings.EqualFold(c.LogFormat, "console")
}
