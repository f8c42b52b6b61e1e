package common

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfigFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "regula.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func TestNewDefaultConfig(t *testing.T) {
	config := NewDefaultConfig()

	assert.Equal(t, "development", config.Environment)
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "gemini-2.5-flash", config.Retrieval.Model)
	assert.Equal(t, 3, config.Assessment.MaxConcurrentCalls)
	assert.Equal(t, 1200, config.Assessment.CitationMaxRunes)
	assert.True(t, config.Scheduler.Enabled)
	assert.False(t, config.IsProduction())
}

func TestLoadFromFileOverridesDefaults(t *testing.T) {
	path := writeConfigFile(t, `
environment = "production"

[server]
port = 9090

[retrieval]
timeout = "30s"
`)

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "production", config.Environment)
	assert.True(t, config.IsProduction())
	assert.Equal(t, 9090, config.Server.Port)
	// Untouched sections keep their defaults.
	assert.Equal(t, "localhost", config.Server.Host)
	assert.Equal(t, 30*time.Second, config.RetrievalTimeout())
}

func TestLoadFromFilesLaterFilesWin(t *testing.T) {
	base := writeConfigFile(t, "[server]\nport = 9000\nhost = \"0.0.0.0\"\n")
	local := writeConfigFile(t, "[server]\nport = 9001\n")

	config, err := LoadFromFiles(base, local)
	require.NoError(t, err)

	assert.Equal(t, 9001, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestLoadFromFileErrors(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	bad := writeConfigFile(t, "this is not toml [[[")
	_, err = LoadFromFile(bad)
	assert.Error(t, err)
}

func TestEnvOverrides(t *testing.T) {
	path := writeConfigFile(t, "[server]\nport = 9000\n")

	t.Setenv("REGULA_SERVER_PORT", "9100")
	t.Setenv("REGULA_SERVER_HOST", "example.internal")
	t.Setenv("REGULA_RETRIEVAL_API_KEY", "key-from-env")
	t.Setenv("GEMINI_API_KEY", "fallback-key")

	config, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, 9100, config.Server.Port)
	assert.Equal(t, "example.internal", config.Server.Host)
	// REGULA_RETRIEVAL_API_KEY takes precedence over GEMINI_API_KEY.
	assert.Equal(t, "key-from-env", config.Retrieval.APIKey)
}

func TestGeminiAPIKeyFallback(t *testing.T) {
	path := writeConfigFile(t, "")

	t.Setenv("REGULA_RETRIEVAL_API_KEY", "")
	t.Setenv("GEMINI_API_KEY", "fallback-key")

	config, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "fallback-key", config.Retrieval.APIKey)
}

func TestApplyFlagOverrides(t *testing.T) {
	config := NewDefaultConfig()

	ApplyFlagOverrides(config, 0, "")
	assert.Equal(t, 8080, config.Server.Port)
	assert.Equal(t, "localhost", config.Server.Host)

	ApplyFlagOverrides(config, 9200, "0.0.0.0")
	assert.Equal(t, 9200, config.Server.Port)
	assert.Equal(t, "0.0.0.0", config.Server.Host)
}

func TestDurationHelpersFallBack(t *testing.T) {
	config := NewDefaultConfig()
	assert.Equal(t, 60*time.Second, config.RetrievalTimeout())
	assert.Equal(t, 4*time.Second, config.RetrievalRateLimit())

	config.Retrieval.Timeout = "not-a-duration"
	config.Retrieval.RateLimit = "-5s"
	assert.Equal(t, 60*time.Second, config.RetrievalTimeout())
	assert.Equal(t, 4*time.Second, config.RetrievalRateLimit())

	config.Retrieval.Timeout = "90s"
	config.Retrieval.RateLimit = "250ms"
	assert.Equal(t, 90*time.Second, config.RetrievalTimeout())
	assert.Equal(t, 250*time.Millisecond, config.RetrievalRateLimit())
}

func TestValidationRejectsBadValues(t *testing.T) {
	path := writeConfigFile(t, "[server]\nport = 70000\n")
	_, err := LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid configuration")

	path = writeConfigFile(t, "[assessment]\nmax_concurrent_calls = 0\n")
	_, err = LoadFromFile(path)
	assert.ErrorContains(t, err, "invalid configuration")
}
