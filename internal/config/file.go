package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/vedant281104/AgriShield/internal/timex"
)

// FileConfig mirrors Config for JSON and YAML files. Zero values are
// treated as "not set" and leave the current setting untouched.
type FileConfig struct {
	HTTPAddr                    string         `json:"http_addr" yaml:"http_addr"`
	DatabaseDSN                 string         `json:"database_dsn" yaml:"database_dsn"`
	SecretKey                   string         `json:"secret_key" yaml:"secret_key"`
	AccessTokenValidityDuration timex.Duration `json:"access_token_validity_duration" yaml:"access_token_validity_duration"`
	ShutdownTimeout             timex.Duration `json:"shutdown_timeout" yaml:"shutdown_timeout"`
	DigestAlgorithm             string         `json:"digest_algorithm" yaml:"digest_algorithm"`
	PasswordPepper              string         `json:"password_pepper" yaml:"password_pepper"`
	PrimaryModelURI             string         `json:"primary_model" yaml:"primary_model"`
	SecondaryModelURI           string         `json:"secondary_model" yaml:"secondary_model"`
	MaxUploadBytes              int64          `json:"max_upload_bytes" yaml:"max_upload_bytes"`
	MaxImagePixels              int            `json:"max_image_pixels" yaml:"max_image_pixels"`
	S3RootUser                  string         `json:"s3_root_user" yaml:"s3_root_user"`
	S3RootPassword              string         `json:"s3_root_password" yaml:"s3_root_password"`
	S3Region                    string         `json:"s3_region" yaml:"s3_region"`
	S3BaseEndpoint              string         `json:"s3_base_endpoint" yaml:"s3_base_endpoint"`
	LogBackend                  string         `json:"log_backend" yaml:"log_backend"`
	LogFormat                   string         `json:"log_format" yaml:"log_format"`
	LogLevel                    string         `json:"log_level" yaml:"log_level"`
}

// parseFile overlays the file at path. Files ending in .yaml or .yml are
// YAML, anything else is JSON.
func parseFile(config *Config, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}

	c := &FileConfig{}
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		err = yaml.Unmarshal(data, c)
	default:
		err = json.Unmarshal(data, c)
	}
	if err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}

	c.apply(config)
	return nil
}

func (c *FileConfig) apply(config *Config) {
	setString(&config.HTTPAddr, c.HTTPAddr)
	setString(&config.DatabaseDSN, c.DatabaseDSN)
	setString(&config.SecretKey, c.SecretKey)
	setString(&config.DigestAlgorithm, c.DigestAlgorithm)
	setString(&config.PasswordPepper, c.PasswordPepper)
	setString(&config.PrimaryModelURI, c.PrimaryModelURI)
	setString(&config.SecondaryModelURI, c.SecondaryModelURI)
	setString(&config.S3RootUser, c.S3RootUser)
	setString(&config.S3RootPassword, c.S3RootPassword)
	setString(&config.S3Region, c.S3Region)
	setString(&config.S3BaseEndpoint, c.S3BaseEndpoint)
	setString(&config.LogBackend, c.LogBackend)
	setString(&config.LogFormat, c.LogFormat)
	setString(&config.LogLevel, c.LogLevel)

	if c.AccessTokenValidityDuration.Duration != 0 {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.ShutdownTimeout.Duration != 0 {
		config.ShutdownTimeout = c.ShutdownTimeout.Duration
	}
	if c.MaxUploadBytes != 0 {
		config.MaxUploadBytes = c.MaxUploadBytes
	}
	if c.MaxImagePixels != 0 {
		config.MaxImagePixels = c.MaxImagePixels
	}
}

func setString(dst *string, v string) {
	if v != "" {
		*dst = v
	}
}
