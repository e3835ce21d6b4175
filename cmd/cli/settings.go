package main

import (
	"context"
	"encoding/json"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/himanishpuri/EKGLab/pkg/ekglab"
	"github.com/himanishpuri/EKGLab/pkg/ekglab/settings"
)

func newSettingsCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "settings",
		Short: "Show or change the stored settings",
	}

	show := func(svc ekglab.Service) error {
		enc := json.NewEncoder(a.out)
		enc.SetIndent("", "  ")
		return enc.Encode(svc.Settings())
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the stored settings as JSON",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withService(cmd, func(_ context.Context, svc ekglab.Service) error {
					return show(svc)
				})
			},
		},
		&cobra.Command{
			Use:   "set <file>",
			Short: "Replace the settings with a YAML or JSON file",
			Long: `Replace the settings with a YAML or JSON file. Keys missing from the
file take their default value; EKGLAB_<KEY> environment variables override both.`,
			Args: cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				st, err := settings.Load(args[0])
				if err != nil {
					return err
				}
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					if err := svc.UpdateSettings(ctx, st); err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintln(a.out, "Settings updated")
					return show(svc)
				})
			},
		},
		&cobra.Command{
			Use:   "reset",
			Short: "Restore the default settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, _ []string) error {
				return a.withService(cmd, func(ctx context.Context, svc ekglab.Service) error {
					if err := svc.ResetSettings(ctx); err != nil {
						return err
					}
					color.New(color.FgGreen).Fprintln(a.out, "Settings reset to defaults")
					return show(svc)
				})
			},
		},
	)
	return cmd
}
