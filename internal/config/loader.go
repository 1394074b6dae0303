package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const (
	// ConfigFileName is the per-directory config file name.
	ConfigFileName = ".beamtop.yaml"
	// GlobalConfigDir is the directory for global config, relative to home.
	GlobalConfigDir = ".config/beamtop"
	// GlobalConfigFile is the global config file name.
	GlobalConfigFile = "config.yaml"
	// EnvPrefix prefixes environment overrides, e.g. BEAMTOP_COOKIE.
	EnvPrefix = "BEAMTOP"
)

// flagKeys maps command-line flag names to config keys.
var flagKeys = map[string]string{
	"cookie":      "cookie",
	"host":        "host",
	"erl":         "erl",
	"interval":    "interval",
	"retention":   "retention",
	"poll":        "poll",
	"ssh-timeout": "ssh_timeout",
	"log-file":    "log_file",
}

// LoadOptions controls where Load reads values from.
// Precedence, highest first: Node, flags that were set, environment,
// config file, defaults.
type LoadOptions struct {
	// Path is an explicit config file. Empty searches the default locations.
	Path string
	// Flags is the command's flag set; only flags the user changed override.
	Flags *pflag.FlagSet
	// Node is the positional node argument.
	Node string
}

// Load resolves the configuration from file, environment and flags.
func Load(opts LoadOptions) (*Config, error) {
	path, err := Find(opts.Path)
	if err != nil {
		return nil, err
	}

	v := viper.New()
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_", ".", "_"))
	v.AutomaticEnv()

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to read config file "+path,
				"Check the file exists and is valid YAML")
		}
	}

	if opts.Flags != nil {
		for flag, key := range flagKeys {
			f := opts.Flags.Lookup(flag)
			if f == nil || !f.Changed {
				continue
			}
			if err := v.BindPFlag(key, f); err != nil {
				return nil, errors.WrapWithCode(err, errors.ErrConfig,
					"Failed to bind --"+flag,
					"")
			}
		}
	}

	if opts.Node != "" {
		v.Set("node", opts.Node)
	}

	cfg := DefaultConfig()
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Invalid config format",
			"Durations look like 1s, 250ms or 2m")
	}
	cfg.LogFile = expandHome(cfg.LogFile)

	return cfg, nil
}

// setDefaults registers every key so AutomaticEnv can see it.
func setDefaults(v *viper.Viper) {
	d := DefaultConfig()
	v.SetDefault("node", d.Node)
	v.SetDefault("cookie", d.Cookie)
	v.SetDefault("host", d.Host)
	v.SetDefault("erl", d.Erl)
	v.SetDefault("interval", d.Interval)
	v.SetDefault("retention", d.Retention)
	v.SetDefault("poll", d.Poll)
	v.SetDefault("ssh_timeout", d.SSHTimeout)
	v.SetDefault("log_file", d.LogFile)
}

// Find locates the config file using the search order:
// 1. Explicit path (from --config flag)
// 2. .beamtop.yaml in current directory
// 3. ~/.config/beamtop/config.yaml
//
// Returns an empty string if no file exists.
func Find(explicit string) (string, error) {
	if explicit != "" {
		if _, err := os.Stat(explicit); err != nil {
			if os.IsNotExist(err) {
				return "", errors.WrapWithCode(err, errors.ErrConfig,
					"Specified config file not found: "+explicit,
					"Check the path is correct")
			}
			return "", errors.WrapWithCode(err, errors.ErrConfig,
				"Cannot access config file: "+explicit,
				"Check file permissions")
		}
		return explicit, nil
	}

	if cwd, err := os.Getwd(); err == nil {
		local := filepath.Join(cwd, ConfigFileName)
		if _, err := os.Stat(local); err == nil {
			return local, nil
		}
	}

	if global := GlobalConfigPath(); global != "" {
		if _, err := os.Stat(global); err == nil {
			return global, nil
		}
	}

	return "", nil
}

// GlobalConfigPath returns ~/.config/beamtop/config.yaml, or "" without a home.
func GlobalConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil || home == "" {
		return ""
	}
	return filepath.Join(home, GlobalConfigDir, GlobalConfigFile)
}

// DefaultLogPath is where debug logs go when no log file is configured.
func DefaultLogPath() string {
	if dir, err := os.UserCacheDir(); err == nil {
		return filepath.Join(dir, "beamtop", "beamtop.log")
	}
	return filepath.Join(os.TempDir(), "beamtop.log")
}

func expandHome(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, strings.TrimPrefix(path, "~"))
		}
	}
	return path
}
