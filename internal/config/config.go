package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// DefaultPath is the config file used when none is given.
const DefaultPath = "modmirror.yml"

// Environment variables credentials are read from. Each may also be given
// with the MODMIRROR_ prefix.
const (
	EnvNexusAPIKey = "NEXUSMODS_V1_API_KEY"
	EnvNexusUserID = "NEXUS_USERID"
	EnvGitHubToken = "GITHUB_TOKEN"
	EnvRepository  = "GITHUB_REPOSITORY"
)

// Load reads the config from path (or MODMIRROR_CONFIG, or ./modmirror.yml)
// and the environment. A missing file is fine; every setting has a default.
func Load(path string) (*Config, error) {
	v := viper.New()

	v.SetDefault("nexus.graphql_url", "https://api.nexusmods.com/v2/graphql")
	v.SetDefault("nexus.api_base", "https://api.nexusmods.com")
	v.SetDefault("nexus.page_size", 50)
	v.SetDefault("github.api_base", "https://api.github.com")
	v.SetDefault("github.token_env", EnvGitHubToken)
	v.SetDefault("run.cap", 30)
	v.SetDefault("run.workers", 4)
	v.SetDefault("run.pacing", time.Second)
	v.SetDefault("run.excluded_categories", []string{"ARCHIVED", "ARCHIVE"})
	v.SetDefault("run.staging_dir", "downloads")
	v.SetDefault("http.timeout", 30*time.Second)
	v.SetDefault("http.connect_timeout", 15*time.Second)
	v.SetDefault("http.read_timeout", 120*time.Second)
	v.SetDefault("http.max_retries", 3)
	v.SetDefault("http.backoff_factor", 2*time.Second)
	v.SetDefault("state.backend", BackendFile)
	v.SetDefault("state.path", "data.json")
	v.SetDefault("log.level", "info")

	v.SetEnvPrefix("MODMIRROR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	// The scheduler environment provides these under their own names.
	_ = v.BindEnv("github.repository", "MODMIRROR_GITHUB_REPOSITORY", EnvRepository)
	_ = v.BindEnv("nexus.user_id", "MODMIRROR_NEXUS_USER_ID", EnvNexusUserID)

	if path == "" {
		path = os.Getenv("MODMIRROR_CONFIG")
	}
	if path == "" {
		path = DefaultPath
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) && !errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	// Resolve secrets from env (never stored in file).
	cfg.Nexus.APIKey = firstEnv(EnvNexusAPIKey, "MODMIRROR_NEXUS_API_KEY")
	tokenEnv := cfg.GitHub.TokenEnv
	if tokenEnv == "" {
		tokenEnv = EnvGitHubToken
	}
	cfg.GitHub.Token = firstEnv(tokenEnv, "MODMIRROR_GITHUB_TOKEN")

	return &cfg, nil
}

func firstEnv(names ...string) string {
	for _, n := range names {
		if v := os.Getenv(n); v != "" {
			return v
		}
	}
	return ""
}

// MissingError lists required settings that were not provided.
type MissingError struct {
	Missing []string
}

func (e *MissingError) Error() string {
	return "missing required configuration: " + strings.Join(e.Missing, ", ")
}

// Validate checks that everything a run needs is present and sane.
func (c *Config) Validate() error {
	var missing []string
	if c.Nexus.APIKey == "" {
		missing = append(missing, EnvNexusAPIKey)
	}
	if c.GitHub.Token == "" {
		missing = append(missing, c.tokenEnv())
	}
	if c.GitHub.Repository == "" {
		missing = append(missing, EnvRepository)
	}
	if c.Nexus.UserID == "" {
		missing = append(missing, EnvNexusUserID)
	}
	if len(missing) > 0 {
		return &MissingError{Missing: missing}
	}

	if owner, repo, ok := strings.Cut(c.GitHub.Repository, "/"); !ok || owner == "" || repo == "" {
		return fmt.Errorf("github.repository %q: want owner/repo", c.GitHub.Repository)
	}
	if c.Run.Cap < 0 {
		return fmt.Errorf("run.cap must be >= 0, got %d", c.Run.Cap)
	}
	if c.Run.Workers < 1 {
		return fmt.Errorf("run.workers must be >= 1, got %d", c.Run.Workers)
	}
	if c.Run.StagingDir == "" {
		return errors.New("run.staging_dir must not be empty")
	}
	switch c.State.Backend {
	case BackendFile, BackendRepo:
	default:
		return fmt.Errorf("state.backend must be %q or %q, got %q", BackendFile, BackendRepo, c.State.Backend)
	}
	return nil
}

func (c *Config) tokenEnv() string {
	if c.GitHub.TokenEnv != "" {
		return c.GitHub.TokenEnv
	}
	return EnvGitHubToken
}

// Save writes the config to path. Secrets are never written.
func Save(path string, cfg *Config) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return err
		}
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()
	enc := yaml.NewEncoder(f)
	enc.SetIndent(2)
	return enc.Encode(cfg.fileView())
}
