package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/example/pumlkit/internal/featureflags"
	"github.com/example/pumlkit/internal/version"
	"github.com/spf13/cobra"
)

func newVersionCommand() *cobra.Command {
	var short bool
	cmd := &cobra.Command{
		Use:   "version",
		Short: "Print the pumlkit version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			info := version.Get()
			if short {
				fmt.Fprintln(cmd.OutOrStdout(), info.Version)
				return nil
			}
			fmt.Fprintln(cmd.OutOrStdout(), info.String())
			return nil
		},
	}
	cmd.Flags().BoolVar(&short, "short", false, "Print just the version number")
	return cmd
}

func newFeaturesCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "features",
		Short: "List experimental features and whether they are enabled",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			flags := featureflags.FromContext(cmd.Context())
			tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
			fmt.Fprintln(tw, "FEATURE\tENABLED\tENV\tDESCRIPTION")
			for _, def := range featureflags.Definitions() {
				fmt.Fprintf(tw, "%s\t%t\t%s\t%s\n", def.Name, flags.Enabled(def.Name), def.EnvVar(), def.Description)
			}
			return tw.Flush()
		},
	}
}
