package cmd

import (
	"context"
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/config"
	"github.com/tonhe/hometray/internal/hub"
	"github.com/tonhe/hometray/internal/vault"
)

var credentialCmd = &cobra.Command{
	Use:     "credential",
	Aliases: []string{"cred"},
	Short:   "Manage hub tokens in the encrypted vault",
}

var credentialListCmd = &cobra.Command{
	Use:   "list",
	Short: "List stored credentials",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		store, err := openVault()
		if err != nil {
			return err
		}
		summaries, err := store.List()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(summaries) == 0 {
			fmt.Fprintln(out, "No credentials stored.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "NAME\tURL")
		for _, s := range summaries {
			fmt.Fprintf(w, "%s\t%s\n", s.Name, s.URL)
		}
		return w.Flush()
	},
}

var credentialAddCmd = &cobra.Command{
	Use:   "add [NAME]",
	Short: "Store a new credential",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		p := newPrompter()
		var name string
		if len(args) == 1 {
			name = args[0]
		} else {
			name = p.line("Credential name", "home")
		}
		cred := vault.Credential{Name: name}
		cred.URL = p.line("API URL", config.DefaultConfig().APIURL)
		token, err := p.secret("Access token")
		if err != nil {
			return err
		}
		cred.Token = token

		store, err := openVault()
		if err != nil {
			return err
		}
		if err := store.Add(cred); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credential %q saved.\n", cred.Name)
		return nil
	},
}

var credentialRemoveCmd = &cobra.Command{
	Use:   "remove NAME",
	Short: "Delete a credential",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openVault()
		if err != nil {
			return err
		}
		if err := store.Remove(args[0]); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Credential %q removed.\n", args[0])
		return nil
	},
}

var credentialTestCmd = &cobra.Command{
	Use:   "test NAME",
	Short: "Check that a credential is accepted by its hub",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openVault()
		if err != nil {
			return err
		}
		cred, err := store.Get(args[0])
		if err != nil {
			return err
		}
		url := cred.URL
		if url == "" {
			url = config.DefaultConfig().APIURL
		}
		return pingHub(cmd.Context(), cmd, url, cred.Token)
	},
}

func pingHub(ctx context.Context, cmd *cobra.Command, url, token string) error {
	client, err := hub.NewClient(url, token)
	if err != nil {
		return err
	}
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, hub.DefaultTimeout)
	defer cancel()

	fmt.Fprintf(cmd.OutOrStdout(), "Connecting to %s...\n", client.BaseURL())
	if err := client.Ping(ctx); err != nil {
		if isAuthError(err) {
			return fmt.Errorf("token rejected by %s", client.BaseURL())
		}
		return fmt.Errorf("hub unreachable: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), "OK: hub accepted the token.")
	return nil
}

func init() {
	credentialCmd.AddCommand(credentialListCmd)
	credentialCmd.AddCommand(credentialAddCmd)
	credentialCmd.AddCommand(credentialRemoveCmd)
	credentialCmd.AddCommand(credentialTestCmd)
}
