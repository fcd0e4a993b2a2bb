package config

import (
	"fmt"
	"strconv"
	"time"
)

const envPrefix = "AGRISHIELD_"

// parseEnv overlays AGRISHIELD_* variables. Durations use Go syntax ("15m").
func parseEnv(config *Config, lookup func(string) (string, bool)) error {
	strs := map[string]*string{
		"HTTP_ADDR":        &config.HTTPAddr,
		"DATABASE_DSN":     &config.DatabaseDSN,
		"SECRET_KEY":       &config.SecretKey,
		"DIGEST_ALGORITHM": &config.DigestAlgorithm,
		"PASSWORD_PEPPER":  &config.PasswordPepper,
		"PRIMARY_MODEL":    &config.PrimaryModelURI,
		"SECONDARY_MODEL":  &config.SecondaryModelURI,
		"S3_ROOT_USER":     &config.S3RootUser,
		"S3_ROOT_PASSWORD": &config.S3RootPassword,
		"S3_REGION":        &config.S3Region,
		"S3_BASE_ENDPOINT": &config.S3BaseEndpoint,
		"LOG_BACKEND":      &config.LogBackend,
		"LOG_FORMAT":       &config.LogFormat,
		"LOG_LEVEL":        &config.LogLevel,
	}
	for name, dst := range strs {
		if v, ok := lookup(envPrefix + name); ok && v != "" {
			*dst = v
		}
	}

	durations := map[string]*time.Duration{
		"ACCESS_TOKEN_TTL": &config.AccessTokenValidityDuration,
		"SHUTDOWN_TIMEOUT": &config.ShutdownTimeout,
	}
	for name, dst := range durations {
		v, ok := lookup(envPrefix + name)
		if !ok || v == "" {
			continue
		}
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("%s%s: %w", envPrefix, name, err)
		}
		*dst = d
	}

	if v, ok := lookup(envPrefix + "MAX_UPLOAD_BYTES"); ok && v != "" {
		n, err := strconv.ParseInt(v, 10, 64)
		if err != nil {
			return fmt.Errorf("%sMAX_UPLOAD_BYTES: %w", envPrefix, err)
		}
		config.MaxUploadBytes = n
	}
	if v, ok := lookup(envPrefix + "MAX_IMAGE_PIXELS"); ok && v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return fmt.Errorf("%sMAX_IMAGE_PIXELS: %w", envPrefix, err)
		}
		config.MaxImagePixels = n
	}

	return nil
}
