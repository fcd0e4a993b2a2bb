// Package config assembles service settings from defaults, an optional
// JSON/YAML file, AGRISHIELD_* environment variables and command-line flags,
// in that order of precedence.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"

	"github.com/vedant281104/AgriShield/internal/flagx"
)

// Config holds runtime settings for the AgriShield server and CLI.
//
// DatabaseDSN is either sqlite://<path> or a postgres:// URL. Model URIs
// accept bare paths, file://, s3://, http(s):// and grpc:// targets.
type Config struct {
	HTTPAddr                    string
	DatabaseDSN                 string
	SecretKey                   string
	AccessTokenValidityDuration time.Duration
	ShutdownTimeout             time.Duration
	DigestAlgorithm             string
	PasswordPepper              string
	PrimaryModelURI             string
	SecondaryModelURI           string
	MaxUploadBytes              int64
	MaxImagePixels              int
	S3RootUser                  string
	S3RootPassword              string
	S3Region                    string
	S3BaseEndpoint              string
	LogBackend                  string
	LogFormat                   string
	LogLevel                    string
}

// LoadDefaults populates Config with development defaults.
// NOTE: SecretKey and PasswordPepper must be overridden in production.
func (c *Config) LoadDefaults() {
	c.HTTPAddr = ":8080"
	c.DatabaseDSN = "sqlite://data/users.db"
	c.SecretKey = "secretKey"
	c.AccessTokenValidityDuration = 15 * time.Minute
	c.ShutdownTimeout = 10 * time.Second
	c.DigestAlgorithm = "argon2id"
	c.PasswordPepper = "agrishield-dev-pepper"
	c.PrimaryModelURI = "models/pest_detection_model2.json"
	c.SecondaryModelURI = "models/pest_detection_model3.json"
	c.MaxUploadBytes = 10 << 20
	c.MaxImagePixels = 40_000_000
	c.S3Region = "us-east-1"
	c.LogBackend = "slog"
	c.LogFormat = "json"
	c.LogLevel = "info"
}

// Validate reports settings that would make the service unusable.
func (c *Config) Validate() error {
	var errs []error
	if c.SecretKey == "" {
		errs = append(errs, errors.New("secret key is empty"))
	}
	if c.PrimaryModelURI == "" || c.SecondaryModelURI == "" {
		errs = append(errs, errors.New("both model URIs are required"))
	}
	if c.AccessTokenValidityDuration <= 0 {
		errs = append(errs, errors.New("access token validity must be positive"))
	}
	if c.MaxUploadBytes <= 0 || c.MaxImagePixels <= 0 {
		errs = append(errs, errors.New("upload limits must be positive"))
	}
	return errors.Join(errs...)
}

// LoadConfig builds a Config from os.Args and the process environment.
// A .env file in the working directory is loaded first when present.
func LoadConfig() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}
	return load(os.Args[1:], os.LookupEnv)
}

// Load applies defaults, the optional config file at path and the
// environment, without flags or validation. Callers with their own flag
// handling, such as the CLI, overlay flags and then call Validate.
func Load(path string, lookup func(string) (string, bool)) (*Config, error) {
	cfg := &Config{}
	cfg.LoadDefaults()

	if path != "" {
		if err := parseFile(cfg, path); err != nil {
			return nil, err
		}
	}
	if err := parseEnv(cfg, lookup); err != nil {
		return nil, err
	}
	return cfg, nil
}

func load(args []string, lookup func(string) (string, bool)) (*Config, error) {
	cfg, err := Load(flagx.ConfigFileFlag(args), lookup)
	if err != nil {
		return nil, err
	}
	if err := parseFlags(cfg, args); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}
