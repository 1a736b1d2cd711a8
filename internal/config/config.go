package config

import (
	"errors"
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// Config is the explicit configuration object handed to the pipeline at
// construction time.
type Config struct {
	Charm     CharmConfig     `yaml:"charm"`
	Workspace WorkspaceConfig `yaml:"workspace"`
	Commands  CommandsConfig  `yaml:"commands"`
	Proof     ProofConfig     `yaml:"proof"`
	Mirrors   []MirrorTarget  `yaml:"mirrors,omitempty"`
	Mirror    MirrorConfig    `yaml:"mirror"`
	Logging   LoggingConfig   `yaml:"logging"`
	Metrics   MetricsConfig   `yaml:"metrics"`
	Journal   JournalConfig   `yaml:"journal"`
	Notify    NotifyConfig    `yaml:"notify"`
	Provision ProvisionConfig `yaml:"provision"`
	Database  DatabaseConfig  `yaml:"database"`
}

// CharmConfig identifies what is built and where it is pushed.
type CharmConfig struct {
	Name          string `yaml:"name"`
	StoreLocation string `yaml:"store_location"`
}

// WorkspaceConfig names the transient directories created under the working directory.
type WorkspaceConfig struct {
	BuildDir string `yaml:"build_dir"`
	DepsDir  string `yaml:"deps_dir"`
}

// CommandsConfig holds the argv templates for every external tool call.
// Templates may reference {{.WorkingDir}}, {{.BuildPath}}, {{.StoreLocation}},
// {{.Artifact}} and {{.Channel}}.
type CommandsConfig struct {
	Status    []string `yaml:"status"`
	Whoami    []string `yaml:"whoami"`
	Build     []string `yaml:"build"`
	Proof     []string `yaml:"proof"`
	Push      []string `yaml:"push"`
	Release   []string `yaml:"release"`
	Grant     []string `yaml:"grant"`
	Provision []string `yaml:"provision"`
	Admin     []string `yaml:"admin"`
	DB        []string `yaml:"db"`
}

// ProofConfig controls the advisory lint step run before push.
type ProofConfig struct {
	Enabled *bool `yaml:"enabled,omitempty"`
}

// IsEnabled reports whether the proof step runs (default true).
func (p ProofConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

// MirrorTarget maps a channel to the repository that receives its build output.
type MirrorTarget struct {
	Channel    string      `yaml:"channel"`
	Repository string      `yaml:"repository"`
	Branch     string      `yaml:"branch,omitempty"`
	Auth       *AuthConfig `yaml:"auth,omitempty"`
}

// MirrorConfig holds settings shared by all mirror targets.
type MirrorConfig struct {
	AuthorName  string `yaml:"author_name"`
	AuthorEmail string `yaml:"author_email"`
	// Push sends the mirror commit back to the mirror repository.
	Push *bool `yaml:"push,omitempty"`
	// HookCommand replaces the push with an argv template run in the build
	// output after committing, e.g. [git, push, origin, HEAD].
	HookCommand []string `yaml:"hook_command,omitempty"`
}

// PushEnabled reports whether mirror commits are pushed (default true).
func (m MirrorConfig) PushEnabled() bool {
	return m.Push == nil || *m.Push
}

// LoggingConfig controls the slog handler.
type LoggingConfig struct {
	Level  LogLevel  `yaml:"level"`
	Format LogFormat `yaml:"format"`
}

// MetricsConfig controls where run metrics are written. Empty disables them.
type MetricsConfig struct {
	Textfile string `yaml:"textfile,omitempty"`
}

// JournalConfig controls the run journal database. Empty disables it.
type JournalConfig struct {
	Path string `yaml:"path,omitempty"`
}

// NotifyConfig controls release notifications. Empty URL disables them.
type NotifyConfig struct {
	URL     string `yaml:"url,omitempty"`
	Subject string `yaml:"subject,omitempty"`
}

// ProvisionConfig lists the packages the builder needs on the host.
type ProvisionConfig struct {
	Packages []string `yaml:"packages,omitempty"`
}

// DatabaseConfig locates the application database for the db command.
type DatabaseConfig struct {
	Host     string `yaml:"host,omitempty"`
	Port     int    `yaml:"port,omitempty"`
	User     string `yaml:"user,omitempty"`
	Password string `yaml:"password,omitempty"`
	Name     string `yaml:"name,omitempty"`
}

// MirrorFor returns the mirror target configured for channel.
func (c *Config) MirrorFor(channel string) (MirrorTarget, bool) {
	for _, m := range c.Mirrors {
		if m.Channel == channel {
			return m, true
		}
	}
	return MirrorTarget{}, false
}

// Default returns the configuration used when no file is present.
func Default() *Config {
	cfg := &Config{}
	if err := applyDefaults(cfg); err != nil {
		panic(fmt.Sprintf("config defaults: %v", err))
	}
	return cfg
}

// Load reads configuration from path. A missing file yields the defaults so
// the tool works out of the box in a charm checkout.
func Load(path string) (*Config, error) {
	loadEnvFiles()

	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			cfg := Default()
			return cfg, cfg.Validate()
		}
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	return Parse(data)
}

// Parse decodes YAML configuration, expanding ${VAR} references first.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if err := applyDefaults(&cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}
