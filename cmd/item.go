package cmd

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/tray"
)

var flagEntity string

// itemCmd is what the launcher runs once per entity.
var itemCmd = &cobra.Command{
	Use:    "item",
	Short:  "Show a single entity in the tray",
	Hidden: true,
	Args:   cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if flagEntity == "" {
			return &ExitError{Code: tray.ExitConfig, Err: errors.New("--entity is required")}
		}
		a, err := loadApp(true)
		if err != nil {
			return &ExitError{Code: tray.ExitConfig, Err: err}
		}
		ctx, stop := signalContext(cmd.Context())
		defer stop()

		client, err := a.hubClient()
		if err != nil {
			return &ExitError{Code: tray.ExitConfig, Err: err}
		}
		// Siblings share the parent's metrics port; only an explicit flag
		// makes a child serve its own.
		go serveMetrics(ctx, a, flagMetricsAddr)
		return runItem(ctx, a, client, flagEntity)
	},
}

func init() {
	itemCmd.Flags().StringVar(&flagEntity, "entity", "", "entity id to show")
}

// runItem shows one entity in this process's tray and blocks until the user
// quits. It must run on the main goroutine.
func runItem(ctx context.Context, a *app, client *hub.Client, entityID string) error {
	r, err := a.renderer()
	if err != nil {
		return &ExitError{Code: tray.ExitConfig, Err: err}
	}

	item := tray.NewItem(tray.ItemConfig{
		EntityID: entityID,
		Palette:  a.cfg.Palette(),
		Logger:   a.log.With().Str("component", "tray").Logger(),
		OpenConfig: func() error {
			return tray.OpenFile(a.cfgPath)
		},
	})
	mgr := a.manager(client, r, func(string) engine.Display { return item })
	defer mgr.StopAll()

	start := func(ctx context.Context) error {
		if err := mgr.Start(ctx, entityID); err != nil {
			return err
		}
		p, _ := mgr.Get(entityID)
		item.Bind(p)
		go a.watchConfig(ctx, mgr)
		return nil
	}
	if err := item.Run(ctx, start, mgr.StopAll); err != nil {
		a.log.Error().Err(err).Str("entity", entityID).Msg("tray item failed to start")
		return &ExitError{Code: tray.ExitConfig, Err: err}
	}
	return nil
}

// isAuthError reports whether err came from a rejected token.
func isAuthError(err error) bool {
	return errors.Is(err, hub.ErrUnauthorized)
}
