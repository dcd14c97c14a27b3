// Package cmd implements the hometray command line.
package cmd

import (
	"context"
	"errors"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/logging"
	"github.com/tonhe/hometray/internal/metrics"
	"github.com/tonhe/hometray/internal/tray"
)

// Version is set at build time.
var Version = "0.1.0"

var (
	flagConfig      string
	flagLogDir      string
	flagInterval    int
	flagMetricsAddr string
)

var rootCmd = &cobra.Command{
	Use:   "hometray",
	Short: "Show Home Assistant entities as system tray icons",
	Long: `hometray polls a Home Assistant hub and shows each configured entity as a
tray icon, recolored to match its state. Clicking Toggle flips the entity.`,
	SilenceUsage:  true,
	SilenceErrors: true,
	RunE:          runTray,
}

// ExitError carries a specific process exit code.
type ExitError struct {
	Code int
	Err  error
}

func (e *ExitError) Error() string { return e.Err.Error() }
func (e *ExitError) Unwrap() error { return e.Err }

// ExitCode maps an Execute error to a process exit code.
func ExitCode(err error) int {
	var ee *ExitError
	if errors.As(err, &ee) {
		return ee.Code
	}
	return 1
}

// Execute runs the CLI.
func Execute() error {
	defer logging.Close()
	return rootCmd.Execute()
}

func init() {
	pf := rootCmd.PersistentFlags()
	pf.StringVar(&flagConfig, "config", "", "config file (default is the user config dir)")
	pf.StringVar(&flagLogDir, "log-dir", "", "log directory (default $HOMETRAY_LOG_PATH or the OS log dir)")
	pf.IntVar(&flagInterval, "interval", 0, "refresh interval in seconds for this run")
	pf.StringVar(&flagMetricsAddr, "metrics-addr", "", "serve Prometheus metrics on this address")

	// Add subcommands (alphabetical)
	rootCmd.AddCommand(configCmd)
	rootCmd.AddCommand(credentialCmd)
	rootCmd.AddCommand(discoverCmd)
	rootCmd.AddCommand(iconsCmd)
	rootCmd.AddCommand(itemCmd)
	rootCmd.AddCommand(setupCmd)
	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(watchCmd)
}

// runTray shows every configured entity. One entity runs in-process; more
// are fanned out to child processes, one tray icon each.
func runTray(cmd *cobra.Command, _ []string) error {
	a, err := loadApp(true)
	if err != nil {
		return err
	}
	ctx, stop := signalContext(cmd.Context())
	defer stop()

	client, err := a.hubClient()
	if err != nil {
		return err
	}
	entities, err := a.entities(ctx, client)
	if err != nil {
		return err
	}
	a.log.Info().Strs("entities", entities).Str("hub", client.BaseURL()).Msg("starting")

	if len(entities) == 1 {
		go serveMetrics(ctx, a, a.metricsAddr())
		return runItem(ctx, a, client, entities[0])
	}

	// Children would each fail on a broken bundle; report it once here.
	if _, err := a.renderer(); err != nil {
		return &ExitError{Code: tray.ExitConfig, Err: err}
	}

	extra := []string{"--config", a.cfgPath, "--log-dir", logging.Dir()}
	if flagInterval > 0 {
		extra = append(extra, "--interval", strconv.Itoa(flagInterval))
	}
	command, err := tray.SelfCommand([]string{tokenEnv + "=" + a.token}, extra...)
	if err != nil {
		return err
	}
	go serveMetrics(ctx, a, a.metricsAddr())

	l := tray.NewLauncher(tray.LauncherConfig{
		Entities: entities,
		Command:  command,
		Logger:   a.log.With().Str("component", "launcher").Logger(),
	})
	if err := l.Run(ctx); err != nil {
		return &ExitError{Code: tray.ExitConfig, Err: err}
	}
	return nil
}

func serveMetrics(ctx context.Context, a *app, addr string) {
	if addr == "" {
		return
	}
	a.log.Info().Str("addr", addr).Msg("serving metrics")
	if err := metrics.Serve(ctx, addr); err != nil {
		a.log.Error().Err(err).Msg("metrics server failed")
	}
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the version",
	Run: func(cmd *cobra.Command, _ []string) {
		fmt.Fprintf(cmd.OutOrStdout(), "hometray v%s (default interval %s)\n", Version, engine.DefaultInterval)
	},
}
