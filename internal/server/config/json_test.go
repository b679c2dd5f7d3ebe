package config

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, dir, name string, data map[string]any) string {
	t.Helper()
	if dir == "" {
		dir = t.TempDir()
	}
	if name == "" {
		name = "cfg.json"
	}
	path := filepath.Join(dir, name)
	b, err := json.Marshal(data)
	require.NoError(t, err)
	require.NoError(t, os.WriteFile(path, b, 0o600))
	return path
}

func Test_parseJson_SourcesAndPrecedence(t *testing.T) {
	dir := t.TempDir()
	path := writeTempJSON(t, dir, "flag.json", map[string]any{
		"http_addr":              ":8081",
		"grpc_addr":              ":9091",
		"storage":                "memory",
		"secret_key":             "my_secret_key",
		"token_lifetime":         "2h",
		"reset_token_lifetime":   "30m",
		"uniform_reset_response": true,
		"bcrypt_cost":            12,
		"frontend_url":           "https://events.example",
		"smtp_host":              "smtp.example",
		"smtp_port":              2525,
		"s3_bucket":              "bucket",
		"cors_origins":           []string{"https://a", "https://b"},
	})

	t.Run("loads from json", func(t *testing.T) {
		cfg := &Config{}
		cfg.LoadDefaults()
		require.NoError(t, parseJson(cfg, []string{"-config", path}))

		assert.Equal(t, ":8081", cfg.HTTPAddr)
		assert.Equal(t, ":9091", cfg.GRPCAddr)
		assert.Equal(t, StorageMemory, cfg.Storage)
		assert.Equal(t, "my_secret_key", cfg.SecretKey)
		assert.Equal(t, 2*time.Hour, cfg.TokenLifetime)
		assert.Equal(t, 30*time.Minute, cfg.ResetTokenLifetime)
		assert.True(t, cfg.UniformResetResponse)
		assert.Equal(t, 12, cfg.BcryptCost)
		assert.Equal(t, "https://events.example", cfg.FrontendURL)
		assert.Equal(t, "smtp.example", cfg.SMTPHost)
		assert.Equal(t, 2525, cfg.SMTPPort)
		assert.Equal(t, "bucket", cfg.S3Bucket)
		assert.Equal(t, []string{"https://a", "https://b"}, cfg.CORSOrigins)

		// absent keys keep defaults
		assert.Equal(t, "culturehub", cfg.MongoDatabase)
		assert.Equal(t, "info", cfg.LogLevel)
	})

	t.Run("no config flag → no changes", func(t *testing.T) {
		cfg := &Config{HTTPAddr: "defaults:1234", TokenLifetime: 2 * time.Minute}
		require.NoError(t, parseJson(cfg, []string{"-a", ":1"}))

		assert.Equal(t, "defaults:1234", cfg.HTTPAddr)
		assert.Equal(t, 2*time.Minute, cfg.TokenLifetime)
	})

	t.Run("missing file → error", func(t *testing.T) {
		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-c", filepath.Join(dir, "nope.json")}))
	})

	t.Run("invalid JSON → error", func(t *testing.T) {
		bad := filepath.Join(dir, "bad.json")
		require.NoError(t, os.WriteFile(bad, []byte(`{ this is not valid json`), 0o600))

		cfg := &Config{}
		assert.Error(t, parseJson(cfg, []string{"-c", bad}))
	})
}
