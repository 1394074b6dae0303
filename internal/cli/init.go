package cli

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/rileyhilliard/beamtop/internal/config"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/rileyhilliard/beamtop/internal/ui"
	"github.com/spf13/cobra"
)

// InitOptions holds options for the init command.
type InitOptions struct {
	Path           string // Where to write; empty means ./.beamtop.yaml
	Node           string // Pre-specified node name
	Cookie         string // Pre-specified cookie
	Host           string // Pre-specified SSH host
	Erl            string // Pre-specified erl executable
	Overwrite      bool   // Overwrite an existing config without asking
	NonInteractive bool   // Skip prompts, use flags and defaults
	SkipCheck      bool   // Don't verify that erl can be started
	Out            io.Writer
}

var initOpts InitOptions
var initGlobal bool

// initCmd writes a config file so 'beamtop' can run without flags.
var initCmd = &cobra.Command{
	Use:   "init",
	Short: "Create a beamtop config file",
	Long: `Write a .beamtop.yaml with the node to monitor and how to reach it.

Prompts for the node name, cookie, SSH host and erl path, then checks that
erl can be started where the probe will run.

Examples:
  beamtop init
  beamtop init --global
  beamtop init --yes --node app@db1 --host deploy@db1`,
	RunE: func(cmd *cobra.Command, args []string) error {
		opts := initOpts
		opts.Out = cmd.OutOrStdout()
		if initGlobal {
			opts.Path = config.GlobalConfigPath()
		}
		return Init(cmd.Context(), opts)
	},
}

func init() {
	flags := initCmd.Flags()
	flags.StringVar(&initOpts.Node, "node", "", "node to monitor, e.g. app@db1")
	flags.StringVar(&initOpts.Cookie, "cookie", "", "distribution cookie")
	flags.StringVar(&initOpts.Host, "host", "", "SSH host to run the probe on")
	flags.StringVar(&initOpts.Erl, "erl", config.DefaultErl, "erl executable")
	flags.BoolVarP(&initOpts.Overwrite, "force", "f", false, "overwrite an existing config")
	flags.BoolVarP(&initOpts.NonInteractive, "yes", "y", false, "don't prompt; use flag values")
	flags.BoolVar(&initOpts.SkipCheck, "no-check", false, "don't check that erl can be started")
	flags.BoolVar(&initGlobal, "global", false, "write ~/.config/beamtop/config.yaml instead")
}

// Init creates a beamtop config file.
func Init(ctx context.Context, opts InitOptions) error {
	if opts.Out == nil {
		opts.Out = os.Stdout
	}
	path := opts.Path
	if path == "" {
		path = filepath.Join(".", config.ConfigFileName)
	}

	if _, err := os.Stat(path); err == nil && !opts.Overwrite {
		if opts.NonInteractive {
			return errors.New(errors.ErrConfig,
				fmt.Sprintf("Config file already exists: %s", path),
				"Use --force to overwrite")
		}

		var overwrite bool
		form := huh.NewForm(
			huh.NewGroup(
				huh.NewConfirm().
					Title(fmt.Sprintf("'%s' already exists. Overwrite?", path)).
					Value(&overwrite),
			),
		)
		if err := form.Run(); err != nil {
			return errors.WrapWithCode(err, errors.ErrConfig,
				"Failed to get user input",
				"Try running with --force to overwrite")
		}
		if !overwrite {
			fmt.Fprintln(opts.Out, "Cancelled.")
			return nil
		}
	}

	cfg := config.DefaultConfig()
	cfg.Node, cfg.Cookie, cfg.Host = opts.Node, opts.Cookie, opts.Host
	if opts.Erl != "" {
		cfg.Erl = opts.Erl
	}

	if !opts.NonInteractive {
		if err := promptConfig(cfg); err != nil {
			return err
		}
	}
	cfg.Node = strings.TrimSpace(cfg.Node)
	cfg.Host = strings.TrimSpace(cfg.Host)

	if err := config.Validate(cfg); err != nil {
		return err
	}

	if !opts.SkipCheck {
		if err := checkErl(ctx, cfg, opts); err != nil {
			return err
		}
	}

	if err := config.Save(cfg, path); err != nil {
		return err
	}

	fmt.Fprintln(opts.Out, ui.Success("Created "+path))
	fmt.Fprintln(opts.Out)
	fmt.Fprintln(opts.Out, "Next steps:")
	fmt.Fprintln(opts.Out, "  beamtop          - Open the dashboard for "+cfg.Node)
	fmt.Fprintln(opts.Out, "  beamtop version  - Show the installed version")
	return nil
}

// promptConfig asks for the values that have no sensible default.
func promptConfig(cfg *config.Config) error {
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Node to monitor").
				Description("Full node name, as passed to -sname or -name").
				Placeholder("app@db1").
				Value(&cfg.Node).
				Validate(func(s string) error {
					if s = strings.TrimSpace(s); s == "" || !strings.Contains(s, "@") {
						return fmt.Errorf("node names look like name@host")
					}
					return nil
				}),
			huh.NewInput().
				Title("Cookie (optional)").
				Description("Leave empty to use ~/.erlang.cookie where the probe runs").
				EchoMode(huh.EchoModePassword).
				Value(&cfg.Cookie),
		),
		huh.NewGroup(
			huh.NewInput().
				Title("SSH host (optional)").
				Description("Run the probe on this host. Leave empty to run it here").
				Placeholder("deploy@db1").
				Value(&cfg.Host),
			huh.NewInput().
				Title("erl executable").
				Description("Path to erl where the probe runs").
				Placeholder(config.DefaultErl).
				Value(&cfg.Erl).
				Validate(func(s string) error {
					if strings.TrimSpace(s) == "" {
						return fmt.Errorf("erl executable is required")
					}
					return nil
				}),
		),
	)

	if err := form.Run(); err != nil {
		return errors.WrapWithCode(err, errors.ErrConfig,
			"Failed to get user input",
			"Check terminal compatibility or use --yes with flags")
	}
	return nil
}

// checkErl starts and halts erl where the probe will run. In interactive
// mode a failure can still be saved.
func checkErl(ctx context.Context, cfg *config.Config, opts InitOptions) error {
	where := "locally"
	if cfg.IsRemote() {
		where = "on " + cfg.Host
	}
	spinner := ui.NewSpinner(fmt.Sprintf("Starting %s %s", cfg.Erl, where))
	spinner.SetOutput(func(s string) { fmt.Fprint(opts.Out, s) })
	spinner.Start()

	err := startErl(ctx, cfg)
	if err == nil {
		spinner.Success()
		return nil
	}
	spinner.Fail()

	if opts.NonInteractive {
		return err
	}

	fmt.Fprintf(opts.Out, "\n%v\n", err)
	var saveAnyway bool
	form := huh.NewForm(
		huh.NewGroup(
			huh.NewConfirm().
				Title("Save config anyway? (You can fix this later)").
				Value(&saveAnyway),
		),
	)
	if formErr := form.Run(); formErr != nil || !saveAnyway {
		return err
	}
	return nil
}

func startErl(ctx context.Context, cfg *config.Config) error {
	runner, err := newRunner(ctx, cfg)
	if err != nil {
		return err
	}
	defer runner.Close()

	return runner.Run(ctx, []string{cfg.Erl, "-noshell", "-eval", "halt()."}, io.Discard)
}
