package config

import (
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseFlags(t *testing.T) {
	tests := []struct {
		expected *Config
		name     string
		args     []string
		wantErr  bool
	}{
		{name: "all flags", args: []string{
			"-a", "127.0.0.1:8080", "-g", "127.0.0.1:9090", "-storage", "mongo",
			"-d", "db", "-m", "mongodb://m", "-s", "secret", "-t", "15",
			"-f", "https://front", "-l", "debug",
		},
			expected: &Config{
				HTTPAddr:      "127.0.0.1:8080",
				GRPCAddr:      "127.0.0.1:9090",
				Storage:       "mongo",
				DatabaseDSN:   "db",
				MongoURI:      "mongodb://m",
				SecretKey:     "secret",
				TokenLifetime: 15 * time.Minute,
				FrontendURL:   "https://front",
				LogLevel:      "debug",
			}},
		{name: "config and env flags are skipped", args: []string{
			"-c", "conf.json", "-env", "x.env", "-s", "k",
		},
			expected: &Config{SecretKey: "k"}},
		{name: "bad int", args: []string{"-t", "soon"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config := &Config{}
			err := parseFlags(config, tt.args)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Empty(t, cmp.Diff(tt.expected, config))
		})
	}
}

func TestParseFlags_KeepsLifetimeWhenAbsent(t *testing.T) {
	config := &Config{TokenLifetime: 90 * time.Second}
	require.NoError(t, parseFlags(config, []string{"-a", ":1"}))
	assert.Equal(t, 90*time.Second, config.TokenLifetime)
}
