package cmd

import (
	"errors"
	"fmt"
	"io/fs"
	"os"

	"github.com/BurntSushi/toml"
	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/config"
	"github.com/tonhe/hometray/internal/tray"
	"github.com/tonhe/hometray/tui/styles"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show or change the configuration",
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), path)
		return nil
	},
}

var configShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Print the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		if cfg.Token != "" {
			cfg.Token = "********"
		}
		return toml.NewEncoder(cmd.OutOrStdout()).Encode(cfg)
	},
}

var configEditCmd = &cobra.Command{
	Use:   "edit",
	Short: "Open the config file in the default editor",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		path, err := configPath()
		if err != nil {
			return err
		}
		if err := ensureConfigFile(path); err != nil {
			return err
		}
		return tray.OpenFile(path)
	},
}

var configThemeCmd = &cobra.Command{
	Use:   "theme NAME",
	Short: "Set the watch view theme",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		name := args[0]
		if _, ok := styles.Lookup(name); !ok {
			return fmt.Errorf("unknown theme %q; run 'hometray config themes' to see available themes", name)
		}
		path, err := configPath()
		if err != nil {
			return err
		}
		cfg, err := config.LoadConfig(path)
		if err != nil {
			return err
		}
		cfg.Theme = name
		if err := saveConfig(cfg, path); err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Theme set to %q.\n", name)
		return nil
	},
}

var configThemesCmd = &cobra.Command{
	Use:   "themes",
	Short: "List available themes",
	Args:  cobra.NoArgs,
	Run: func(cmd *cobra.Command, _ []string) {
		for _, name := range styles.Names() {
			fmt.Fprintln(cmd.OutOrStdout(), name)
		}
	},
}

// ensureConfigFile writes the defaults when no config exists yet.
func ensureConfigFile(path string) error {
	cfg, err := config.LoadConfig(path)
	if err != nil {
		return err
	}
	if exists, err := fileExists(path); err != nil || exists {
		return err
	}
	return saveConfig(cfg, path)
}

func saveConfig(cfg *config.Config, path string) error {
	if err := config.EnsureDirs(); err != nil {
		return fmt.Errorf("create config directories: %w", err)
	}
	if err := config.SaveConfig(cfg, path); err != nil {
		return fmt.Errorf("save config: %w", err)
	}
	return nil
}

func fileExists(path string) (bool, error) {
	_, err := os.Stat(path)
	if err == nil {
		return true, nil
	}
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	return false, err
}

func init() {
	configCmd.AddCommand(configPathCmd)
	configCmd.AddCommand(configShowCmd)
	configCmd.AddCommand(configEditCmd)
	configCmd.AddCommand(configThemeCmd)
	configCmd.AddCommand(configThemesCmd)
}
