package cmd

import (
	"errors"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/engine"
	"github.com/tonhe/hometray/tui"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Watch every configured entity in the terminal",
	Long: `watch runs the same pollers as the tray but shows them in a terminal
table. Press t to toggle the selected entity, r to refresh and q to quit.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
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
		ids, err := a.entities(ctx, client)
		if err != nil {
			return err
		}
		r, err := a.renderer()
		if err != nil {
			return err
		}

		mgr := a.manager(client, r, func(string) engine.Display {
			return engine.DisplayFunc(func(engine.Update) {})
		})
		defer mgr.StopAll()
		for _, id := range ids {
			if err := mgr.Start(ctx, id); err != nil {
				return err
			}
		}
		go a.watchConfig(ctx, mgr)
		go serveMetrics(ctx, a, a.metricsAddr())

		model := tui.NewAppModel(tui.Options{
			Theme:    a.cfg.Theme,
			HubURL:   client.BaseURL(),
			Interval: a.cfg.Interval(),
			Version:  Version,
		}, mgr)
		p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
		if _, err := p.Run(); err != nil && !errors.Is(err, tea.ErrProgramKilled) {
			return fmt.Errorf("watch: %w", err)
		}
		return nil
	},
}
