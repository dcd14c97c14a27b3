package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/hub"
)

var discoverCmd = &cobra.Command{
	Use:   "discover [DOMAIN]",
	Short: "List the hub's entities, optionally for one domain",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		client, err := a.hubClient()
		if err != nil {
			return err
		}
		domain := ""
		if len(args) == 1 {
			domain = args[0]
		}

		ctx, cancel := contextWithTimeout(hub.DefaultTimeout)
		defer cancel()
		states, err := client.ListEntities(ctx, domain)
		if err != nil {
			return fmt.Errorf("discover: %w", err)
		}

		out := cmd.OutOrStdout()
		if len(states) == 0 {
			fmt.Fprintln(out, "No entities found.")
			return nil
		}

		shown := make(map[string]bool)
		for _, id := range a.cfg.ResolveEntities(nil) {
			shown[id] = true
		}
		fmt.Fprintf(out, "Found %d entities on %s:\n\n", len(states), client.BaseURL())
		fmt.Fprintf(out, "%-40s  %-12s  %-30s  %s\n", "Entity", "State", "Name", "Icon")
		fmt.Fprintf(out, "%-40s  %-12s  %-30s  %s\n", "------", "-----", "----", "----")
		for _, st := range states {
			mark := ""
			if shown[st.EntityID] {
				mark = " *"
			}
			fmt.Fprintf(out, "%-40s  %-12s  %-30s  %s%s\n",
				truncate(st.EntityID, 40),
				truncate(st.State, 12),
				truncate(st.Attributes.NameOr(""), 30),
				st.Attributes.IconOr("-"),
				mark,
			)
		}
		fmt.Fprintf(out, "\n* listed in %s\n", a.cfgPath)
		return nil
	},
}

// truncate shortens s to at most n bytes, marking the cut with "...".
func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	if n <= 3 {
		return s[:n]
	}
	return s[:n-3] + "..."
}

