package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/rileyhilliard/beamtop/internal/errors"
)

// Validate checks the config for errors and returns structured error messages.
func Validate(cfg *Config) error {
	if err := validateNode(cfg.Node); err != nil {
		return err
	}

	if strings.ContainsAny(cfg.Cookie, " \t\n'\"") {
		return errors.New(errors.ErrConfig,
			"The cookie can't contain whitespace or quotes",
			"Copy the value from ~/.erlang.cookie on the node's machine.")
	}

	if strings.TrimSpace(cfg.Erl) == "" {
		return errors.New(errors.ErrConfig,
			"No erl executable configured",
			"Set 'erl' in your config or pass --erl /path/to/erl.")
	}

	durations := []struct {
		name  string
		value time.Duration
	}{
		{"interval", cfg.Interval},
		{"retention", cfg.Retention},
		{"poll", cfg.Poll},
		{"ssh_timeout", cfg.SSHTimeout},
	}
	for _, d := range durations {
		if d.value <= 0 {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("'%s' must be positive, got %s", d.name, d.value),
				"Durations look like 1s, 250ms or 2m.")
		}
	}

	if cfg.Poll > MaxPoll {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'poll' of %s would make the dashboard sluggish", cfg.Poll),
			fmt.Sprintf("Keep it at or under %s; the default is %s.", MaxPoll, DefaultPoll))
	}

	if cfg.Retention < cfg.Interval {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'retention' (%s) is shorter than 'interval' (%s)", cfg.Retention, cfg.Interval),
			"The chart needs at least one sample interval of history.")
	}

	return nil
}

// validateNode accepts name@host node names.
func validateNode(node string) error {
	if node == "" {
		return errors.New(errors.ErrConfig,
			"No node to monitor",
			"Pass one like 'beamtop app@db1' or set 'node' in .beamtop.yaml.")
	}

	name, host, ok := strings.Cut(node, "@")
	if !ok || name == "" || host == "" {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' isn't a full node name", node),
			"Node names look like name@host, e.g. app@db1.")
	}

	if strings.ContainsAny(node, " \t\n'\"\\") || strings.Count(node, "@") != 1 {
		return errors.New(errors.ErrConfig,
			fmt.Sprintf("'%s' has characters a node name can't contain", node),
			"Node names look like name@host, e.g. app@db1.")
	}

	return nil
}
