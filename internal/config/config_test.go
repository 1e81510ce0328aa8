package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/blackwell-systems/modmirror/internal/config"
)

// clearEnv unsets every variable Load consults.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, name := range []string{
		"MODMIRROR_CONFIG",
		config.EnvNexusAPIKey, config.EnvNexusUserID, config.EnvGitHubToken, config.EnvRepository,
		"MODMIRROR_NEXUS_API_KEY", "MODMIRROR_NEXUS_USER_ID", "MODMIRROR_GITHUB_TOKEN", "MODMIRROR_GITHUB_REPOSITORY",
		"MODMIRROR_RUN_CAP", "MODMIRROR_RUN_WORKERS",
	} {
		t.Setenv(name, "")
	}
}

func missingPath(t *testing.T) string {
	return filepath.Join(t.TempDir(), "none.yml")
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)

	assert.Equal(t, 30, cfg.Run.Cap)
	assert.Equal(t, 4, cfg.Run.Workers)
	assert.Equal(t, time.Second, cfg.Run.Pacing)
	assert.Equal(t, []string{"ARCHIVED", "ARCHIVE"}, cfg.Run.ExcludedCategories)
	assert.Equal(t, "downloads", cfg.Run.StagingDir)
	assert.Equal(t, 30*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, 15*time.Second, cfg.HTTP.ConnectTimeout)
	assert.Equal(t, 120*time.Second, cfg.HTTP.ReadTimeout)
	assert.Equal(t, 3, cfg.HTTP.MaxRetries)
	assert.Equal(t, 2*time.Second, cfg.HTTP.BackoffFactor)
	assert.Equal(t, 50, cfg.Nexus.PageSize)
	assert.Equal(t, config.BackendFile, cfg.State.Backend)
	assert.Equal(t, "data.json", cfg.State.Path)
	assert.Equal(t, "info", cfg.Log.Level)
}

func TestLoad_Environment(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvNexusAPIKey, "nexus-key")
	t.Setenv(config.EnvGitHubToken, "gh-token")
	t.Setenv(config.EnvRepository, "octo/mirror")
	t.Setenv(config.EnvNexusUserID, "42")
	t.Setenv("MODMIRROR_RUN_CAP", "5")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)

	assert.Equal(t, "nexus-key", cfg.Nexus.APIKey)
	assert.Equal(t, "gh-token", cfg.GitHub.Token)
	assert.Equal(t, "octo/mirror", cfg.GitHub.Repository)
	assert.Equal(t, "42", cfg.Nexus.UserID)
	assert.Equal(t, 5, cfg.Run.Cap)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_PrefixedOverridesScheduler(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvRepository, "ci/default")
	t.Setenv("MODMIRROR_GITHUB_REPOSITORY", "octo/mirror")

	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	assert.Equal(t, "octo/mirror", cfg.GitHub.Repository)
}

func TestLoad_File(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "modmirror.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
github:
  repository: octo/mirror
run:
  cap: 10
  pacing: 250ms
state:
  backend: repo
`), 0600))

	cfg, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, "octo/mirror", cfg.GitHub.Repository)
	assert.Equal(t, 10, cfg.Run.Cap)
	assert.Equal(t, 250*time.Millisecond, cfg.Run.Pacing)
	assert.Equal(t, config.BackendRepo, cfg.State.Backend)
	assert.Equal(t, 4, cfg.Run.Workers, "unset keys keep defaults")
}

func TestLoad_BadFile(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "modmirror.yml")
	require.NoError(t, os.WriteFile(path, []byte("run: [unclosed"), 0600))

	_, err := config.Load(path)
	assert.Error(t, err)
}

func TestValidate_Missing(t *testing.T) {
	clearEnv(t)
	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)

	err = cfg.Validate()
	var missing *config.MissingError
	require.True(t, errors.As(err, &missing))
	assert.Equal(t, []string{
		config.EnvNexusAPIKey, config.EnvGitHubToken, config.EnvRepository, config.EnvNexusUserID,
	}, missing.Missing)
}

func TestValidate_Ranges(t *testing.T) {
	valid := func() *config.Config {
		return &config.Config{
			Nexus:  config.NexusConfig{APIKey: "k", UserID: "1"},
			GitHub: config.GitHubConfig{Token: "t", Repository: "o/r"},
			Run:    config.RunConfig{Cap: 30, Workers: 4, StagingDir: "downloads"},
			State:  config.StateConfig{Backend: config.BackendFile},
		}
	}
	require.NoError(t, valid().Validate())

	tests := map[string]func(*config.Config){
		"bad repository": func(c *config.Config) { c.GitHub.Repository = "mirror" },
		"negative cap":   func(c *config.Config) { c.Run.Cap = -1 },
		"no workers":     func(c *config.Config) { c.Run.Workers = 0 },
		"no staging dir": func(c *config.Config) { c.Run.StagingDir = "" },
		"bad backend":    func(c *config.Config) { c.State.Backend = "s3" },
	}
	for name, mutate := range tests {
		t.Run(name, func(t *testing.T) {
			c := valid()
			mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestSave_RoundTrip(t *testing.T) {
	clearEnv(t)
	t.Setenv(config.EnvGitHubToken, "secret-token")
	cfg, err := config.Load(missingPath(t))
	require.NoError(t, err)
	cfg.GitHub.Repository = "octo/mirror"
	cfg.Run.Cap = 12

	path := filepath.Join(t.TempDir(), "sub", "modmirror.yml")
	require.NoError(t, config.Save(path, cfg))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "secret-token")
	assert.Contains(t, string(data), "pacing: 1s")

	again, err := config.Load(path)
	require.NoError(t, err)
	assert.Equal(t, 12, again.Run.Cap)
	assert.Equal(t, "octo/mirror", again.GitHub.Repository)
	assert.Equal(t, cfg.HTTP, again.HTTP)
}
