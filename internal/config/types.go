package config

import "time"

// Defaults for the dashboard and the probe.
const (
	DefaultErl        = "erl"
	DefaultInterval   = time.Second
	DefaultRetention  = 60 * time.Second
	DefaultPoll       = 10 * time.Millisecond
	DefaultSSHTimeout = 10 * time.Second
)

// MaxPoll bounds the poll granularity so the loop stays responsive to input.
const MaxPoll = time.Second

// Config represents the complete beamtop configuration.
type Config struct {
	// Node is the Erlang node name to monitor, e.g. "app@db1".
	Node string `yaml:"node" mapstructure:"node"`

	// Cookie is the distribution cookie. Empty uses ~/.erlang.cookie on the
	// machine the probe runs on.
	Cookie string `yaml:"cookie" mapstructure:"cookie"`

	// Host is an SSH target (alias, host, user@host, host:port) to run the
	// probe on. Empty runs the probe locally.
	Host string `yaml:"host" mapstructure:"host"`

	// Erl is the erl executable used for the probe.
	Erl string `yaml:"erl" mapstructure:"erl"`

	// Interval is how often the probe takes a sample.
	Interval time.Duration `yaml:"interval" mapstructure:"interval"`

	// Retention is the time span kept in the chart history.
	Retention time.Duration `yaml:"retention" mapstructure:"retention"`

	// Poll bounds every blocking wait in the dashboard loop.
	Poll time.Duration `yaml:"poll" mapstructure:"poll"`

	// SSHTimeout bounds the SSH dial when Host is set.
	SSHTimeout time.Duration `yaml:"ssh_timeout" mapstructure:"ssh_timeout"`

	// LogFile receives log output while the dashboard owns the terminal.
	LogFile string `yaml:"log_file" mapstructure:"log_file"`
}

// DefaultConfig returns a Config with all defaults applied.
func DefaultConfig() *Config {
	return &Config{
		Erl:        DefaultErl,
		Interval:   DefaultInterval,
		Retention:  DefaultRetention,
		Poll:       DefaultPoll,
		SSHTimeout: DefaultSSHTimeout,
	}
}

// IsRemote reports whether the probe runs over SSH.
func (c *Config) IsRemote() bool {
	return c.Host != ""
}
