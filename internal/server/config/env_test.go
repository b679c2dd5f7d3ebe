package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseEnv_OverridesOnlySetVariables(t *testing.T) {
	t.Setenv("JWT_SECRET", "from-env")
	t.Setenv("JWT_EXPIRATION", "45m")
	t.Setenv("UNIFORM_RESET_RESPONSE", "true")
	t.Setenv("CORS_ORIGINS", "https://a,https://b")

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, []string{"-env", filepath.Join(t.TempDir(), "missing.env")}))

	assert.Equal(t, "from-env", cfg.SecretKey)
	assert.Equal(t, 45*time.Minute, cfg.TokenLifetime)
	assert.True(t, cfg.UniformResetResponse)
	assert.Equal(t, []string{"https://a", "https://b"}, cfg.CORSOrigins)

	assert.Equal(t, ":5000", cfg.HTTPAddr)
	assert.Equal(t, time.Hour, cfg.ResetTokenLifetime)
}

func TestParseEnv_LoadsDotenvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "test.env")
	require.NoError(t, os.WriteFile(path, []byte("FRONTEND_URL=https://dotenv.example\nBCRYPT_COST=11\n"), 0o600))
	t.Cleanup(func() {
		os.Unsetenv("FRONTEND_URL")
		os.Unsetenv("BCRYPT_COST")
	})

	cfg := &Config{}
	cfg.LoadDefaults()
	require.NoError(t, parseEnv(cfg, []string{"-env", path}))

	assert.Equal(t, "https://dotenv.example", cfg.FrontendURL)
	assert.Equal(t, 11, cfg.BcryptCost)
}

func TestParseEnv_BadValue(t *testing.T) {
	t.Setenv("BCRYPT_COST", "lots")

	cfg := &Config{}
	cfg.LoadDefaults()
	assert.Error(t, parseEnv(cfg, []string{"-env", filepath.Join(t.TempDir(), "missing.env")}))
}
