package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"fintrack/internal/backend"
	"fintrack/internal/cli"
	"fintrack/internal/config"
	"fintrack/internal/core"
	"fintrack/internal/log"
	"fintrack/internal/services"
)

// app is what every subcommand works against. It is opened before the
// command runs and closed by run.
type app struct {
	cfg        *config.Config
	logger     *log.Logger
	backend    *backend.BackendResult
	records    *services.RecordService
	dashboards *services.DashboardService
	sess       core.Session
}

func newRootCmd(a *app) *cobra.Command {
	var userID, logLevel string

	root := &cobra.Command{
		Use:           "fintrackctl",
		Short:         "Operate on fintrack records from the command line",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return a.open(cmd.Context(), userID, logLevel)
		},
	}

	root.PersistentFlags().StringVarP(&userID, "user", "u", os.Getenv("FINTRACK_USER"), "user id the command acts for (env FINTRACK_USER)")
	root.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level (debug, info, warn, error); defaults to LOG_LEVEL")

	root.AddCommand(
		exportCmd(a),
		importOFXCmd(a),
		restoreCmd(a),
		billsCmd(a),
		reportCmd(a),
		syncCmd(a),
	)
	return root
}

func (a *app) open(ctx context.Context, userID, logLevel string) error {
	sess, err := core.NewSession(userID)
	if err != nil {
		return fmt.Errorf("--user is required: %w", err)
	}
	a.sess = sess

	cfg, err := cli.LoadConfig()
	if err != nil {
		return err
	}
	a.cfg = cfg

	if logLevel == "" {
		logLevel = cfg.LogLevel
	}
	lvl, ok := log.ParseLevel(logLevel)
	if !ok {
		return fmt.Errorf("invalid log level %q", logLevel)
	}
	// stdout carries command output; logs go to stderr.
	a.logger = log.New(log.Config{Level: lvl, Component: log.ComponentCLI, Output: os.Stderr})
	log.SetDefault(a.logger)

	res, err := cli.OpenBackend(ctx, a.logger, cfg)
	if err != nil {
		return fmt.Errorf("open backend: %w", err)
	}
	a.backend = res
	a.records, a.dashboards = cli.Services(cfg, res)
	return nil
}

func (a *app) close() error {
	if a.backend == nil || a.backend.Cleanup == nil {
		return nil
	}
	err := a.backend.Cleanup()
	a.backend = nil
	return err
}

// run executes one command line and closes the backend whatever the outcome.
func run(ctx context.Context, args []string, stdout io.Writer) error {
	a := &app{}
	root := newRootCmd(a)
	root.SetArgs(args)
	root.SetOut(stdout)

	err := root.ExecuteContext(ctx)
	if cerr := a.close(); cerr != nil && err == nil {
		err = cerr
	}
	return err
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := run(ctx, os.Args[1:], os.Stdout)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
