package config

import "time"

// Config is the top-level modmirror configuration.
type Config struct {
	Nexus  NexusConfig  `mapstructure:"nexus"`
	GitHub GitHubConfig `mapstructure:"github"`
	Run    RunConfig    `mapstructure:"run"`
	HTTP   HTTPConfig   `mapstructure:"http"`
	State  StateConfig  `mapstructure:"state"`
	Log    LogConfig    `mapstructure:"log"`
}

// NexusConfig identifies the tracked publisher and the source API.
type NexusConfig struct {
	UserID     string `mapstructure:"user_id"`
	GraphQLURL string `mapstructure:"graphql_url"`
	APIBase    string `mapstructure:"api_base"`
	PageSize   int    `mapstructure:"page_size"`
	APIKey     string `mapstructure:"-"` // resolved at runtime, never written
}

// GitHubConfig holds the target repository and API settings.
type GitHubConfig struct {
	Repository string `mapstructure:"repository"` // owner/repo
	APIBase    string `mapstructure:"api_base"`
	TokenEnv   string `mapstructure:"token_env"`
	Token      string `mapstructure:"-"` // resolved at runtime, never written
}

// RunConfig tunes a synchronization pass.
type RunConfig struct {
	Cap                int           `mapstructure:"cap"`
	Workers            int           `mapstructure:"workers"`
	Pacing             time.Duration `mapstructure:"pacing"`
	ExcludedCategories []string      `mapstructure:"excluded_categories"`
	StagingDir         string        `mapstructure:"staging_dir"`
}

// HTTPConfig holds timeouts and the retry policy.
type HTTPConfig struct {
	Timeout        time.Duration `mapstructure:"timeout"`
	ConnectTimeout time.Duration `mapstructure:"connect_timeout"`
	ReadTimeout    time.Duration `mapstructure:"read_timeout"`
	MaxRetries     int           `mapstructure:"max_retries"`
	BackoffFactor  time.Duration `mapstructure:"backoff_factor"`
}

// StateConfig says where the persisted catalog lives.
type StateConfig struct {
	Backend string `mapstructure:"backend"` // "file" or "repo"
	Path    string `mapstructure:"path"`
}

// LogConfig controls logging output.
type LogConfig struct {
	Level string `mapstructure:"level"`
}

const (
	BackendFile = "file"
	BackendRepo = "repo"
)

// fileView is the config as written to disk, durations in Go syntax.
func (c *Config) fileView() map[string]any {
	return map[string]any{
		"nexus": map[string]any{
			"user_id":     c.Nexus.UserID,
			"graphql_url": c.Nexus.GraphQLURL,
			"api_base":    c.Nexus.APIBase,
			"page_size":   c.Nexus.PageSize,
		},
		"github": map[string]any{
			"repository": c.GitHub.Repository,
			"api_base":   c.GitHub.APIBase,
			"token_env":  c.GitHub.TokenEnv,
		},
		"run": map[string]any{
			"cap":                 c.Run.Cap,
			"workers":             c.Run.Workers,
			"pacing":              c.Run.Pacing.String(),
			"excluded_categories": c.Run.ExcludedCategories,
			"staging_dir":         c.Run.StagingDir,
		},
		"http": map[string]any{
			"timeout":         c.HTTP.Timeout.String(),
			"connect_timeout": c.HTTP.ConnectTimeout.String(),
			"read_timeout":    c.HTTP.ReadTimeout.String(),
			"max_retries":     c.HTTP.MaxRetries,
			"backoff_factor":  c.HTTP.BackoffFactor.String(),
		},
		"state": map[string]any{
			"backend": c.State.Backend,
			"path":    c.State.Path,
		},
		"log": map[string]any{
			"level": c.Log.Level,
		},
	}
}
