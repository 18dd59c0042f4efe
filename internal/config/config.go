// Package config loads gateway configuration from file, environment
// variables, and CLI flags. Precedence (highest to lowest):
// flags > env vars > config file > defaults.
package config

import (
	"fmt"
	"os"
	"regexp"
	"strings"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/confmap"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/posflag"
	"github.com/knadh/koanf/v2"
	"github.com/spf13/pflag"

	"github.com/qbridge-labs/qbridge/pkg/core"
)

// ConfigFileName is the default config file name.
const ConfigFileName = "qbridge.yaml"

// ConfigFileNameAlt is the alternate config file name.
const ConfigFileNameAlt = "qbridge.yml"

// EnvPrefix is the environment variable prefix, e.g. QBRIDGE_SERVER_ADDR.
const EnvPrefix = "QBRIDGE_"

// DeviceConfig holds device identity, capacity limits, and data file paths.
type DeviceConfig struct {
	ID            string `koanf:"id"`
	Provider      string `koanf:"provider"`
	MaxQubits     int    `koanf:"max_qubits"`
	MaxShots      int    `koanf:"max_shots"`
	TopologyPath  string `koanf:"topology_path"`
	StatusPath    string `koanf:"status_path"`
	InitialStatus string `koanf:"initial_status"`
}

// BackendConfig selects and parameterizes the execution backend.
type BackendConfig struct {
	Name           string `koanf:"name"`
	Seed           uint64 `koanf:"seed"`
	Command        string `koanf:"command"`
	TimeoutSeconds int    `koanf:"timeout_seconds"`
}

// ServerConfig holds the HTTP serving surface configuration.
type ServerConfig struct {
	Addr              string `koanf:"addr"`
	MaxConcurrentJobs int    `koanf:"max_concurrent_jobs"`
}

// StateConfig holds the job history store configuration. An empty path
// disables the store.
type StateConfig struct {
	Path string `koanf:"path"`
}

// Config is the full gateway configuration.
type Config struct {
	Device  DeviceConfig  `koanf:"device"`
	Backend BackendConfig `koanf:"backend"`
	Server  ServerConfig  `koanf:"server"`
	State   StateConfig   `koanf:"state"`
	Verbose bool          `koanf:"verbose"`
}

// InitialStatus returns the configured initial device status.
func (c *Config) InitialStatus() (core.DeviceStatus, error) {
	s := core.DeviceStatus(c.Device.InitialStatus)
	if !s.Valid() {
		return "", fmt.Errorf("unsupported initial device status %q", c.Device.InitialStatus)
	}
	return s, nil
}

// Validate checks the loaded configuration for gaps that would only surface
// later as confusing runtime failures.
func (c *Config) Validate() error {
	if c.Device.ID == "" {
		return fmt.Errorf("device.id is required")
	}
	if c.Device.TopologyPath == "" {
		return fmt.Errorf("device.topology_path is required")
	}
	if c.Device.MaxShots <= 0 {
		return fmt.Errorf("device.max_shots must be positive")
	}
	if _, err := c.InitialStatus(); err != nil {
		return err
	}
	if c.Backend.Name == "" {
		return fmt.Errorf("backend.name is required")
	}
	return nil
}

// findConfigFile finds the config file to use.
// Priority: explicit path > qbridge.yaml > qbridge.yml
func findConfigFile(explicit string) string {
	if explicit != "" {
		return explicit
	}
	if _, err := os.Stat(ConfigFileName); err == nil {
		return ConfigFileName
	}
	if _, err := os.Stat(ConfigFileNameAlt); err == nil {
		return ConfigFileNameAlt
	}
	return ""
}

// Load loads configuration. cfgFile may be empty to search the working
// directory; flags may be nil.
func Load(cfgFile string, flags *pflag.FlagSet) (*Config, error) {
	k := koanf.New(".")

	// 1. Defaults
	if err := k.Load(confmap.Provider(map[string]interface{}{
		"device.provider":            "qbridge",
		"device.max_qubits":          64,
		"device.max_shots":           100000,
		"device.initial_status":      string(core.StatusActive),
		"backend.name":               "simulator",
		"backend.timeout_seconds":    300,
		"server.addr":                ":50080",
		"server.max_concurrent_jobs": 4,
		"verbose":                    false,
	}, "."), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	// 2. Config file
	if path := findConfigFile(cfgFile); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("error reading config file %s: %w", path, err)
		}
	} else if cfgFile != "" {
		return nil, fmt.Errorf("config file %s not found", cfgFile)
	}

	// 3. Environment variables: QBRIDGE_DEVICE_MAX_SHOTS -> device.max_shots.
	// Only the first underscore becomes a section separator; the rest stay
	// part of the key.
	if err := k.Load(env.Provider(EnvPrefix, ".", func(s string) string {
		key := strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
		return strings.Replace(key, "_", ".", 1)
	}), nil); err != nil {
		return nil, fmt.Errorf("failed to load env vars: %w", err)
	}

	// 4. Flags (highest priority)
	if flags != nil {
		if err := k.Load(posflag.ProviderWithFlag(flags, ".", k, func(f *pflag.Flag) (string, interface{}) {
			if !f.Changed {
				return "", nil
			}
			switch f.Name {
			case "addr":
				return "server.addr", posflag.FlagVal(flags, f)
			case "backend":
				return "backend.name", posflag.FlagVal(flags, f)
			case "verbose":
				return "verbose", posflag.FlagVal(flags, f)
			}
			return "", nil
		}), nil); err != nil {
			return nil, fmt.Errorf("failed to load flags: %w", err)
		}
	}

	var cfg Config
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Expand ${VAR} and ~ in path values.
	cfg.Device.TopologyPath = expandPath(cfg.Device.TopologyPath)
	cfg.Device.StatusPath = expandPath(cfg.Device.StatusPath)
	cfg.State.Path = expandPath(cfg.State.Path)

	return &cfg, nil
}

var envVarPattern = regexp.MustCompile(`\$\{([^}]+)\}`)

// expandPath expands ${VAR} environment references and a leading "~" in a
// path value.
func expandPath(p string) string {
	p = envVarPattern.ReplaceAllStringFunc(p, func(match string) string {
		if val := os.Getenv(match[2 : len(match)-1]); val != "" {
			return val
		}
		return match
	})
	if strings.HasPrefix(p, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			p = home + p[1:]
		}
	}
	return p
}
