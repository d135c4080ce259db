package main

import (
	"fmt"
	"io"

	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/fetch"
	"github.com/example/pumlkit/internal/include"
	"github.com/example/pumlkit/internal/report"
	"github.com/spf13/cobra"
)

func newResolveCommand(opts *config.Options, logLevel *string) *cobra.Command {
	var keepDirectives bool
	var showDiff bool
	cmd := &cobra.Command{
		Use:   "resolve [FILE|-]",
		Short: "Print a PlantUML source with its includes expanded",
		Long:  "Resolve expands the !include directives of one source (a file or stdin) and prints the result. Unresolved directives are stripped unless --keep-directives is set.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			log, err := commandLogger(cmd, *logLevel)
			if err != nil {
				return err
			}
			src, name, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			resolver, err := newResolver(cmd.Context(), opts, log)
			if err != nil {
				return err
			}
			res, err := resolver.Resolve(cmd.Context(), src)
			if err != nil {
				return err
			}
			for _, f := range res.Failures {
				log.Info("include not resolved", "source", name, "path", f.Path, "error", f.Err.Error())
			}
			out := res.Text
			if !keepDirectives {
				out = include.Strip(out)
			}
			if showDiff {
				_, err = io.WriteString(cmd.OutOrStdout(), report.Diff(name, src, out))
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), out)
			return err
		},
	}
	cmd.Flags().BoolVar(&keepDirectives, "keep-directives", false, "Leave unresolved !include lines in the output")
	cmd.Flags().BoolVar(&showDiff, "diff", false, "Print a unified diff between the source and the resolved output")
	return cmd
}

func newStripCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "strip [FILE|-]",
		Short: "Remove every !include line from a PlantUML source",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), include.Strip(src))
			return err
		},
	}
}

func newFetchCommand(opts *config.Options) *cobra.Command {
	return &cobra.Command{
		Use:   "fetch PATH",
		Short: "Print a file retrieved through the include fetcher",
		Long:  "Fetch retrieves one file the same way includes are retrieved: through --file-api when set, otherwise from --root.",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			fetcher, err := newFetcher(opts)
			if err != nil {
				return err
			}
			content, err := fetch.GetFile(cmd.Context(), fetcher, args[0])
			if err != nil {
				return fmt.Errorf("fetch %s: %w", args[0], err)
			}
			_, err = io.WriteString(cmd.OutOrStdout(), content)
			return err
		},
	}
}
