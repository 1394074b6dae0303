package cli

import (
	"context"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/rileyhilliard/beamtop/internal/config"
	"github.com/rileyhilliard/beamtop/internal/erlang"
	"github.com/rileyhilliard/beamtop/internal/errors"
	"github.com/rileyhilliard/beamtop/internal/logger"
	"github.com/rileyhilliard/beamtop/internal/monitor"
	"github.com/rileyhilliard/beamtop/internal/remote"
	"github.com/spf13/cobra"
)

// newRunner opens the transport the probe runs over. Tests replace it.
var newRunner = func(ctx context.Context, cfg *config.Config) (remote.Runner, error) {
	if !cfg.IsRemote() {
		return remote.NewLocalRunner(), nil
	}
	runner, err := remote.DialSSH(ctx, cfg.Host, remote.SSHOptions{
		Timeout:  cfg.SSHTimeout,
		Insecure: noHostKeyChk,
	})
	if err != nil {
		return nil, err
	}
	return runner, nil
}

func dashboardCommand(cmd *cobra.Command, node string) error {
	cfg, err := loadConfig(cmd, node)
	if err != nil {
		return err
	}

	backend := monitor.NewTermBackend(os.Stdin, os.Stdout)
	if !backend.IsTerminal() {
		return errors.New(errors.ErrTerminal,
			"beamtop needs an interactive terminal",
			"Run it directly in a terminal, not through a pipe or redirect.")
	}

	logs, err := redirectLogs(cfg)
	if err != nil {
		return err
	}
	defer logs.Close()

	return runDashboard(cmd.Context(), cfg, backend)
}

// redirectLogs points log output away from the terminal the dashboard is
// about to take over.
func redirectLogs(cfg *config.Config) (io.Closer, error) {
	path := cfg.LogFile
	if path == "" && logger.DebugEnabled() {
		path = config.DefaultLogPath()
	}

	closer, err := logger.RedirectToFile(path)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrConfig,
			"Can't open log file "+path,
			"Pick a writable path with --log-file.")
	}
	return closer, nil
}

// runDashboard connects the probe and hands the terminal to the monitor
// until the user quits or the node goes away.
func runDashboard(ctx context.Context, cfg *config.Config, backend monitor.Backend) error {
	// Input isn't watching signals yet, so ctrl+c has to cancel the connect
	// itself.
	connectCtx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	runner, err := newRunner(connectCtx, cfg)
	stop()
	if err != nil {
		return err
	}
	defer runner.Close()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	logger.Default().Info("monitoring %s via %s", cfg.Node, runner.Describe())

	version := erlang.NewSystemVersion("connecting to " + cfg.Node + "...")
	poller := erlang.NewPoller(runner, erlang.Probe{
		Erl:      cfg.Erl,
		Node:     cfg.Node,
		Cookie:   cfg.Cookie,
		Interval: cfg.Interval,
	}, version, logger.NewEnvLogger("[poller]"))
	poller.Start(ctx)

	return monitor.Run(ctx, backend, monitor.Options{
		Keys:      os.Stdin,
		Stream:    poller,
		Version:   version,
		Node:      cfg.Node,
		Poll:      cfg.Poll,
		Retention: cfg.Retention,
		Logger:    logger.NewEnvLogger("[monitor]"),
	})
}
