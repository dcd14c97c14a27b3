package cmd

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"

	"github.com/spf13/cobra"
	"github.com/tonhe/hometray/internal/icons"
)

var iconsCmd = &cobra.Command{
	Use:   "icons",
	Short: "Inspect the icon bundle",
}

var flagIconsOut string

var iconsCheckCmd = &cobra.Command{
	Use:   "check [ICON STATE]",
	Short: "Validate the bundle, or show which file an icon and state resolve to",
	Long: `check without arguments lists the bundle and confirms unknown.svg exists.
With an icon id and state it prints the file the fallback search picks and
renders it with the "on" color, optionally writing the image to --out.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if len(args) != 0 && len(args) != 2 {
			return fmt.Errorf("expected no arguments or ICON STATE, got %d", len(args))
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		dir := a.iconDir()
		bundle := icons.Bundle(dir)
		out := cmd.OutOrStdout()

		if len(args) == 0 {
			names, err := fs.Glob(bundle, "*.svg")
			if err != nil {
				return err
			}
			sort.Strings(names)
			fmt.Fprintf(out, "Bundle %s: %d icons\n", dir, len(names))
			for _, n := range names {
				fmt.Fprintf(out, "  %s\n", n)
			}
			if err := icons.Validate(bundle); err != nil {
				return err
			}
			fmt.Fprintln(out, "OK")
			return nil
		}

		iconID, state := args[0], args[1]
		path, err := icons.ResolvePath(bundle, iconID, state)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "%s %s -> %s\n", iconID, state, filepath.Join(dir, path))

		r, err := a.renderer()
		if err != nil {
			return err
		}
		icon, err := r.Get(iconID, state, a.cfg.Scheme().On)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "rendered %dpx %s, %d bytes\n", icon.Size, icon.Format, len(icon.Data))
		if flagIconsOut != "" {
			if err := os.WriteFile(flagIconsOut, icon.Data, 0644); err != nil {
				return err
			}
			fmt.Fprintf(out, "wrote %s\n", flagIconsOut)
		}
		return nil
	},
}

var iconsDirCmd = &cobra.Command{
	Use:   "dir",
	Short: "Print the icon bundle directory",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		a, err := loadApp(false)
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), a.iconDir())
		return nil
	},
}

func init() {
	iconsCheckCmd.Flags().StringVar(&flagIconsOut, "out", "", "write the rendered icon to this file")
	iconsCmd.AddCommand(iconsCheckCmd)
	iconsCmd.AddCommand(iconsDirCmd)
}
