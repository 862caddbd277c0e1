package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func withEnvFile(t *testing.T, path string) {
	t.Helper()
	prev := envFile
	envFile = path
	t.Cleanup(func() { envFile = prev })
}

func TestLoadConfig_Defaults(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GEMINI_API_KEY", "")

	cfg, err := LoadConfig("")
	require.NoError(t, err)

	assert.Equal(t, "gemini", cfg.Generation.Provider)
	assert.Equal(t, "../playwright_project", cfg.Output.Dir)
	assert.Equal(t, "pytest", cfg.Runner.Command)
	assert.Equal(t, []string{"-s"}, cfg.Runner.Args)
	assert.Equal(t, "sqlite", cfg.Database.Driver)
	assert.Equal(t, 24*time.Hour, cfg.Session.Duration)
	assert.False(t, cfg.Generation.FrameworkAwarePrompt)
	assert.Equal(t, int64(10<<20), cfg.Generation.MaxImageBytes)
}

func TestLoadConfig_APIKeyFromDotEnv(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(path, []byte("GEMINI_API_KEY=from-dotenv\n"), 0600))
	withEnvFile(t, path)

	// godotenv never overrides existing variables; start from unset.
	t.Setenv("GEMINI_API_KEY", "")
	require.NoError(t, os.Unsetenv("GEMINI_API_KEY"))

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", cfg.Generation.APIKey)
	credential, err := cfg.providerConfig().ResolveCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", credential)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GEMINI_API_KEY", "")
	t.Setenv("GENERATION_PROVIDER", "bedrock")
	t.Setenv("GENERATION_BEDROCK_ACCESS_KEY", "AKIA")
	t.Setenv("GENERATION_BEDROCK_SECRET_KEY", "secret")
	t.Setenv("OUTPUT_DIR", "/tmp/out")

	cfg, err := LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, "bedrock", cfg.Generation.Provider)
	assert.Equal(t, "/tmp/out", cfg.Output.Dir)
	credential, err := cfg.providerConfig().ResolveCredential(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "AKIA", credential)
}

func TestLoadConfig_File(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))
	t.Setenv("GEMINI_API_KEY", "")

	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
generation:
  framework_aware_prompt: true
  max_image_bytes: 1024
runner:
  command: python
  args: ["-m", "pytest", "-s"]
`), 0600))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)
	assert.True(t, cfg.Generation.FrameworkAwarePrompt)
	assert.Equal(t, int64(1024), cfg.validationConfig().MaxImageBytes)
	assert.Equal(t, "python", cfg.Runner.Command)
	assert.Equal(t, []string{"-m", "pytest", "-s"}, cfg.Runner.Args)
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	withEnvFile(t, filepath.Join(t.TempDir(), "missing.env"))

	_, err := LoadConfig(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
