// Package config loads the talentbase configuration via Viper.
//
// Precedence (lowest to highest): defaults < system config < user config <
// project config < environment variables (TALENTBASE_ prefix).
package config

import (
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/spf13/viper"

	"github.com/talentbase/talentbase/errors"
)

// Config is the full talentbase configuration tree.
type Config struct {
	Database DatabaseConfig `mapstructure:"database"`
	Server   ServerConfig   `mapstructure:"server"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
}

// DatabaseConfig configures the SQLite database.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// ServerConfig configures the HTTP/WebSocket server.
type ServerConfig struct {
	Port           int      `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SeedConfig controls first-run data seeding.
type SeedConfig struct {
	Jobs       int   `mapstructure:"jobs"`
	Candidates int   `mapstructure:"candidates"`
	RNGSeed    int64 `mapstructure:"rng_seed"` // 0 = time-seeded
}

// GatewayConfig tunes the request interceptor's fault injection.
type GatewayConfig struct {
	MinLatencyMs       int     `mapstructure:"min_latency_ms"`
	MaxLatencyMs       int     `mapstructure:"max_latency_ms"`
	ReorderFailureRate float64 `mapstructure:"reorder_failure_rate"`
	WriteFailureRate   float64 `mapstructure:"write_failure_rate"`
}

// DefaultServerPort is above the privileged range and easy to remember.
const DefaultServerPort = 8790

var (
	globalConfig *Config
	globalMu     sync.Mutex
)

// SetDefaults configures default values for all configuration options.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("database.path", "talentbase.db")

	v.SetDefault("server.port", DefaultServerPort)
	v.SetDefault("server.allowed_origins", []string{
		"http://localhost",
		"https://localhost",
		"http://127.0.0.1",
		"https://127.0.0.1",
	})

	v.SetDefault("seed.jobs", 25)
	v.SetDefault("seed.candidates", 1000)
	v.SetDefault("seed.rng_seed", 0)

	v.SetDefault("gateway.min_latency_ms", 200)
	v.SetDefault("gateway.max_latency_ms", 800)
	v.SetDefault("gateway.reorder_failure_rate", 0.10)
	v.SetDefault("gateway.write_failure_rate", 0.05)
}

// Load reads the configuration from the standard locations, caching the
// result for subsequent calls.
func Load() (*Config, error) {
	globalMu.Lock()
	defer globalMu.Unlock()
	if globalConfig != nil {
		return globalConfig, nil
	}

	cfg, err := LoadWithViper(newViper())
	if err != nil {
		return nil, err
	}
	globalConfig = cfg
	return globalConfig, nil
}

// LoadWithViper unmarshals configuration from a prepared Viper instance.
func LoadWithViper(v *viper.Viper) (*Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, errors.Wrap(err, "unmarshal config")
	}
	return &cfg, nil
}

// LoadFromFile loads configuration from a specific TOML file.
func LoadFromFile(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(configPath)
	v.SetConfigType("toml")
	SetDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		return nil, errors.Wrapf(err, "read config file %s", configPath)
	}
	return LoadWithViper(v)
}

// Reset clears the cached configuration (useful for testing).
func Reset() {
	globalMu.Lock()
	defer globalMu.Unlock()
	globalConfig = nil
}

func newViper() *viper.Viper {
	v := viper.New()

	v.SetEnvPrefix("TALENTBASE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	v.BindEnv("database.path", "TALENTBASE_DATABASE_PATH")

	SetDefaults(v)
	mergeConfigFiles(v)
	return v
}

// mergeConfigFiles merges configuration files in precedence order: system <
// user < project.
func mergeConfigFiles(v *viper.Viper) {
	homeDir, _ := os.UserHomeDir()

	configPaths := []string{
		"/etc/talentbase/config.toml",
		filepath.Join(homeDir, ".talentbase", "config.toml"),
	}
	if project := findProjectConfig(); project != "" {
		configPaths = append(configPaths, project)
	}

	for _, configPath := range configPaths {
		if _, err := os.Stat(configPath); err != nil {
			continue
		}
		tmp := viper.New()
		tmp.SetConfigFile(configPath)
		tmp.SetConfigType("toml")
		if err := tmp.ReadInConfig(); err != nil {
			continue
		}
		for key, value := range tmp.AllSettings() {
			v.Set(key, value)
		}
	}
}

// ProjectConfigPath reports the project-level config file in effect, or ""
// when no talentbase.toml exists between the working directory and the
// filesystem root. Callers use it to watch the file for runtime reloads.
func ProjectConfigPath() string {
	return findProjectConfig()
}

// findProjectConfig walks up from the working directory looking for
// talentbase.toml.
func findProjectConfig() string {
	dir, err := os.Getwd()
	if err != nil {
		return ""
	}
	for {
		path := filepath.Join(dir, "talentbase.toml")
		if _, err := os.Stat(path); err == nil {
			return path
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return ""
		}
		dir = parent
	}
}
