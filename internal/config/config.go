// Package config loads tt's settings from config.yaml, the environment and
// command line overrides.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"
	_ "time/tzdata" // timezone names must resolve on hosts without zoneinfo

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/comandaflow/timetrack/internal/utils"
)

const (
	// EnvPrefix prefixes every environment override (TT_TASKS_PATH, ...).
	EnvPrefix = "TT"

	// ConfigEnv names an explicit config file.
	ConfigEnv = "TT_CONFIG"

	configDir  = ".tt"
	configName = "config.yaml"
)

var (
	v  *viper.Viper
	mu sync.RWMutex
)

// Config is the typed view of the settings.
type Config struct {
	Tasks    TasksConfig  `mapstructure:"tasks" yaml:"tasks"`
	Timezone string       `mapstructure:"timezone" yaml:"timezone"`
	GitHub   GitHubConfig `mapstructure:"github" yaml:"github"`
}

// TasksConfig locates the task documents.
type TasksConfig struct {
	Path string `mapstructure:"path" yaml:"path"`
}

// GitHubConfig holds the issue tracker settings.
type GitHubConfig struct {
	Token      string        `mapstructure:"token" yaml:"token"`
	Repo       string        `mapstructure:"repo" yaml:"repo"`
	APIURL     string        `mapstructure:"api_url" yaml:"api_url"`
	GraphQLURL string        `mapstructure:"graphql_url" yaml:"graphql_url"`
	Project    ProjectConfig `mapstructure:"project" yaml:"project"`
}

// ProjectConfig identifies the Projects (v2) board kept in sync.
type ProjectConfig struct {
	ID            string            `mapstructure:"id" yaml:"id"`
	Number        int               `mapstructure:"number" yaml:"number"`
	StatusFieldID string            `mapstructure:"status_field_id" yaml:"status_field_id"`
	Options       map[string]string `mapstructure:"options" yaml:"options"`
}

// Initialize sets up the viper instance. explicitPath, when set, must exist;
// otherwise the first config.yaml found in $TT_CONFIG, ./.tt and
// $XDG_CONFIG_HOME/tt is read. Having no config file is not an error.
func Initialize(explicitPath string) error {
	nv := viper.New()
	nv.SetConfigType("yaml")

	for _, k := range Keys {
		nv.SetDefault(k.Key, k.Default)
		envs := append([]string{EnvPrefix + "_" + EnvName(k.Key)}, k.EnvVars...)
		if err := nv.BindEnv(append([]string{k.Key}, envs...)...); err != nil {
			return fmt.Errorf("failed to bind %s: %w", k.Key, err)
		}
	}
	nv.SetEnvPrefix(EnvPrefix)
	nv.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	nv.AutomaticEnv()

	path, err := findConfigFile(explicitPath)
	if err != nil {
		return err
	}
	if path != "" {
		nv.SetConfigFile(path)
		if err := nv.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", path, err)
		}
	}

	mu.Lock()
	v = nv
	mu.Unlock()
	return nil
}

// findConfigFile returns the config file to read, or "" when there is none.
func findConfigFile(explicitPath string) (string, error) {
	if explicitPath != "" {
		explicitPath = utils.ExpandHome(explicitPath)
		if _, err := os.Stat(explicitPath); err != nil {
			return "", fmt.Errorf("config file %s: %w", explicitPath, err)
		}
		return explicitPath, nil
	}

	var candidates []string
	if p := os.Getenv(ConfigEnv); p != "" {
		candidates = append(candidates, utils.ExpandHome(p))
	}
	candidates = append(candidates, filepath.Join(configDir, configName))
	if xdg := xdgConfigHome(); xdg != "" {
		candidates = append(candidates, filepath.Join(xdg, "tt", configName))
	}

	for _, c := range candidates {
		if info, err := os.Stat(c); err == nil && !info.IsDir() {
			return c, nil
		}
	}
	return "", nil
}

func xdgConfigHome() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return xdg
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config")
}

// EnvName turns a key into its TT_ environment variable suffix.
func EnvName(key string) string {
	return strings.ToUpper(strings.NewReplacer(".", "_", "-", "_").Replace(key))
}

func instance() *viper.Viper {
	mu.RLock()
	defer mu.RUnlock()
	return v
}

// ResetForTesting drops the viper instance so the next Initialize starts clean.
func ResetForTesting() {
	mu.Lock()
	v = nil
	mu.Unlock()
}

// ConfigFileUsed returns the config file that was read, if any.
func ConfigFileUsed() string {
	if inst := instance(); inst != nil {
		return inst.ConfigFileUsed()
	}
	return ""
}

// GetString retrieves a string configuration value
func GetString(key string) string {
	if inst := instance(); inst != nil {
		return inst.GetString(key)
	}
	return ""
}

// GetInt retrieves an integer configuration value
func GetInt(key string) int {
	if inst := instance(); inst != nil {
		return inst.GetInt(key)
	}
	return 0
}

// Set overrides a value for this process, typically from a command line flag.
func Set(key string, value interface{}) {
	if inst := instance(); inst != nil {
		inst.Set(key, value)
	}
}

// Load validates the settings and decodes them into a Config.
func Load() (*Config, error) {
	inst := instance()
	if inst == nil {
		return nil, errors.New("config not initialized")
	}

	for _, k := range Keys {
		if k.Validate == nil {
			continue
		}
		if err := k.Validate(inst.GetString(k.Key)); err != nil {
			return nil, fmt.Errorf("%s: %w", k.Key, err)
		}
	}

	var cfg Config
	if err := inst.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	cfg.Tasks.Path = utils.ExpandHome(cfg.Tasks.Path)
	return &cfg, nil
}

// Location returns the configured timezone.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Redacted returns a copy with secrets masked.
func (c *Config) Redacted() *Config {
	cp := *c
	cp.GitHub.Token = mask(c.GitHub.Token)
	if c.GitHub.Project.Options != nil {
		cp.GitHub.Project.Options = make(map[string]string, len(c.GitHub.Project.Options))
		for k, val := range c.GitHub.Project.Options {
			cp.GitHub.Project.Options[k] = val
		}
	}
	return &cp
}

// YAML renders the config as it would appear in config.yaml.
func (c *Config) YAML() ([]byte, error) {
	return yaml.Marshal(c)
}

func mask(secret string) string {
	switch {
	case secret == "":
		return ""
	case len(secret) <= 8:
		return "****"
	default:
		return "****" + secret[len(secret)-4:]
	}
}
