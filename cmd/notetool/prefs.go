package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/xxxsen/notetool/internal/model"
)

func newViewCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "view [grid|list]",
		Short:     "show or change the synced list layout",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.ViewGrid), string(model.ViewList)},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, err := opts.start(cmd.Context())
			if err != nil {
				return err
			}
			defer c.Close()
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), c.View().Mode())
				return nil
			}
			mode := model.ViewMode(args[0])
			if mode != model.ViewGrid && mode != model.ViewList {
				return fmt.Errorf("view must be grid or list, got %q", args[0])
			}
			if err := c.View().Set(cmd.Context(), mode); err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), mode)
			return nil
		},
	}
}

func newThemeCmd(opts *clientOptions) *cobra.Command {
	return &cobra.Command{
		Use:       "theme [dark|light|toggle]",
		Short:     "show or change the local color theme",
		Args:      cobra.MaximumNArgs(1),
		ValidArgs: []string{string(model.ThemeDark), string(model.ThemeLight), "toggle"},
		RunE: func(cmd *cobra.Command, args []string) error {
			c, _, err := opts.client()
			if err != nil {
				return err
			}
			if len(args) == 0 {
				fmt.Fprintln(cmd.OutOrStdout(), c.Theme())
				return nil
			}
			switch args[0] {
			case "toggle":
				next, err := c.ToggleTheme()
				if err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), next)
				return nil
			case string(model.ThemeDark), string(model.ThemeLight):
				if err := c.SetTheme(model.Theme(args[0])); err != nil {
					return err
				}
				fmt.Fprintln(cmd.OutOrStdout(), args[0])
				return nil
			}
			return fmt.Errorf("theme must be dark, light or toggle, got %q", args[0])
		},
	}
}
