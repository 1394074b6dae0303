package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/rileyhilliard/beamtop/internal/config"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// Global flags
var (
	cfgFile      string
	noHostKeyChk bool
)

// rootCmd opens the dashboard for a node.
var rootCmd = &cobra.Command{
	Use:   "beamtop [node]",
	Short: "Live dashboard for a running Erlang node",
	Long: `beamtop connects to a running BEAM node and shows its memory, process,
scheduler and IO metrics in a full-screen terminal dashboard.

The node is sampled by a hidden erl probe, started locally or over SSH
with --host. Settings come from .beamtop.yaml, ~/.config/beamtop/config.yaml,
BEAMTOP_* environment variables and flags, in increasing priority.

Keys:
  q, ctrl+c   quit
  p           pause / resume sampling
  arrows      move the selection, switch between metrics and detail

Examples:
  beamtop app@db1
  beamtop --host deploy@db1 --cookie secret app@db1
  beamtop --interval 500ms --retention 2m`,
	Args:          cobra.MaximumNArgs(1),
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE: func(cmd *cobra.Command, args []string) error {
		node := ""
		if len(args) == 1 {
			node = args[0]
		}
		return dashboardCommand(cmd, node)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default: ./.beamtop.yaml or ~/.config/beamtop/config.yaml)")

	addDashboardFlags(rootCmd.Flags())

	rootCmd.AddCommand(initCmd)
	rootCmd.AddCommand(versionCmd)
}

// addDashboardFlags registers the flags config.Load knows how to bind.
func addDashboardFlags(flags *pflag.FlagSet) {
	flags.String("cookie", "", "distribution cookie (default: the probe machine's ~/.erlang.cookie)")
	flags.String("host", "", "run the probe over SSH on this host (alias, host, user@host:port)")
	flags.String("erl", config.DefaultErl, "erl executable used for the probe")
	flags.Duration("interval", config.DefaultInterval, "time between samples")
	flags.Duration("retention", config.DefaultRetention, "history kept for the chart")
	flags.Duration("poll", config.DefaultPoll, "upper bound on one wait of the dashboard loop")
	flags.Duration("ssh-timeout", config.DefaultSSHTimeout, "SSH connection timeout")
	flags.String("log-file", "", "write logs here while the dashboard runs")
	flags.BoolVar(&noHostKeyChk, "no-host-key-check", false, "skip known_hosts verification (insecure)")
}

// loadConfig resolves and validates the configuration for cmd.
func loadConfig(cmd *cobra.Command, node string) (*config.Config, error) {
	cfg, err := config.Load(config.LoadOptions{
		Path:  cfgFile,
		Flags: cmd.Flags(),
		Node:  node,
	})
	if err != nil {
		return nil, err
	}
	if err := config.Validate(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Execute runs the root command. Errors are printed to stderr and the
// process exits with status 1.
func Execute() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		printError(os.Stderr, err)
		os.Exit(1)
	}
}

// printError writes err for the user. Config problems also point at the
// places settings come from.
func printError(w io.Writer, err error) {
	fmt.Fprintln(w, err)
	if errors.IsCode(err, errors.ErrConfig) {
		fmt.Fprintln(w, "  Run 'beamtop --help' for flags and config file locations.")
	}
}
