package config

import (
	"os"
	"path/filepath"

	"github.com/rileyhilliard/beamtop/internal/errors"
	"gopkg.in/yaml.v3"
)

// fileConfig is the on-disk shape. Durations are written as strings so
// the file stays readable ("1s" rather than 1000000000).
type fileConfig struct {
	Node       string `yaml:"node"`
	Cookie     string `yaml:"cookie,omitempty"`
	Host       string `yaml:"host,omitempty"`
	Erl        string `yaml:"erl"`
	Interval   string `yaml:"interval"`
	Retention  string `yaml:"retention"`
	Poll       string `yaml:"poll"`
	SSHTimeout string `yaml:"ssh_timeout"`
	LogFile    string `yaml:"log_file,omitempty"`
}

const fileHeader = `# beamtop configuration
# Run 'beamtop' to open the dashboard for the node below.

`

// Marshal renders cfg as the YAML written by 'beamtop init'.
func Marshal(cfg *Config) ([]byte, error) {
	data, err := yaml.Marshal(fileConfig{
		Node:       cfg.Node,
		Cookie:     cfg.Cookie,
		Host:       cfg.Host,
		Erl:        cfg.Erl,
		Interval:   cfg.Interval.String(),
		Retention:  cfg.Retention.String(),
		Poll:       cfg.Poll.String(),
		SSHTimeout: cfg.SSHTimeout.String(),
		LogFile:    cfg.LogFile,
	})
	if err != nil {
		return nil, err
	}
	return append([]byte(fileHeader), data...), nil
}

// Save writes cfg to path, creating parent directories.
// The file may hold a cookie, so it is only readable by the owner.
func Save(cfg *Config, path string) error {
	data, err := Marshal(cfg)
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to generate config",
			"This shouldn't happen - please report this bug")
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to create "+filepath.Dir(path),
			"Check directory permissions")
	}

	if err := os.WriteFile(path, data, 0o600); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to write config file: "+path,
			"Check directory permissions")
	}
	return nil
}
