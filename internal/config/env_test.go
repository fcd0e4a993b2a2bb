package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv(t *testing.T) {
	c := defaults()
	err := parseEnv(c, envMap(map[string]string{
		"AGRISHIELD_HTTP_ADDR":        ":9999",
		"AGRISHIELD_DIGEST_ALGORITHM": "sha256",
		"AGRISHIELD_PRIMARY_MODEL":    "http://models/p.json",
		"AGRISHIELD_ACCESS_TOKEN_TTL": "5m",
		"AGRISHIELD_MAX_UPLOAD_BYTES": "2048",
		"AGRISHIELD_MAX_IMAGE_PIXELS": "1000",
		"AGRISHIELD_LOG_BACKEND":      "zap",
		"AGRISHIELD_S3_REGION":        "",
	}))
	require.NoError(t, err)

	assert.Equal(t, ":9999", c.HTTPAddr)
	assert.Equal(t, "sha256", c.DigestAlgorithm)
	assert.Equal(t, "http://models/p.json", c.PrimaryModelURI)
	assert.Equal(t, 5*time.Minute, c.AccessTokenValidityDuration)
	assert.Equal(t, int64(2048), c.MaxUploadBytes)
	assert.Equal(t, 1000, c.MaxImagePixels)
	assert.Equal(t, "zap", c.LogBackend)
	assert.Equal(t, "us-east-1", c.S3Region, "empty values keep the previous setting")
}

func TestParseEnv_Errors(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad duration", map[string]string{"AGRISHIELD_SHUTDOWN_TIMEOUT": "soon"}},
		{"bad upload bytes", map[string]string{"AGRISHIELD_MAX_UPLOAD_BYTES": "ten"}},
		{"bad pixels", map[string]string{"AGRISHIELD_MAX_IMAGE_PIXELS": "1.5"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Error(t, parseEnv(defaults(), envMap(tt.env)))
		})
	}
}
