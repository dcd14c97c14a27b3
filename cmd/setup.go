package cmd

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/config"
	"github.com/tonhe/hometray/internal/vault"
)

var setupCmd = &cobra.Command{
	Use:   "setup",
	Short: "Create or update the config file interactively",
	Long: `setup asks for the hub URL, an access token and the entities to show.
The token is stored in the encrypted vault and the config names it.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		p := newPrompter()

		fmt.Fprintf(out, "Configuring %s\n\n", path)
		cfg.APIURL = p.line("Home Assistant API URL", cfg.APIURL)

		token, err := p.secret("Long-lived access token (empty to keep the current one)")
		if err != nil {
			return err
		}
		if token != "" {
			name := p.line("Save token as credential", orDefault(cfg.Credential, "home"))
			if err := saveCredential(vault.Credential{Name: name, URL: cfg.APIURL, Token: token}); err != nil {
				return err
			}
			cfg.Credential = name
			cfg.Token = ""
			if err := pingHub(cmd.Context(), cmd, cfg.APIURL, token); err != nil {
				fmt.Fprintf(out, "Warning: %v\n", err)
			}
		}

		cfg.Entities = splitList(p.line("Entities (comma separated)", strings.Join(cfg.Entities, ",")))
		cfg.Domains = splitList(p.line("Domains to include in full (comma separated)", strings.Join(cfg.Domains, ",")))
		if len(cfg.Domains) > 0 {
			cfg.DomainEntitiesIgnore = splitList(p.line("Entities to skip from those domains", strings.Join(cfg.DomainEntitiesIgnore, ",")))
		}
		interval := p.line("Update interval in seconds", strconv.Itoa(cfg.UpdateInterval))
		if n, err := strconv.Atoi(interval); err == nil && n > 0 {
			cfg.UpdateInterval = n
		} else {
			fmt.Fprintf(out, "Keeping interval %ds\n", cfg.UpdateInterval)
		}

		if err := cfg.Validate(); err != nil {
			return err
		}
		if err := saveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(out, "\nSaved %s. Run 'hometray' to start.\n", path)
		return nil
	},
}

// saveCredential adds c, replacing any credential with the same name.
func saveCredential(c vault.Credential) error {
	store, err := openVault()
	if err != nil {
		return err
	}
	if _, err := store.Get(c.Name); err == nil {
		return store.Update(c.Name, c)
	}
	return store.Add(c)
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
