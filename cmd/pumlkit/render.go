package main

import (
	"errors"
	"fmt"

	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/encoder"
	"github.com/example/pumlkit/internal/manifest"
	"github.com/example/pumlkit/internal/render"
	"github.com/example/pumlkit/internal/renderstate"
	"github.com/example/pumlkit/internal/report"
	"github.com/spf13/cobra"
)

var errRenderFailures = errors.New("some diagrams failed to render")

func newRenderCommand(opts *config.Options, logLevel *string) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "render [PATH...]",
		Short: "Resolve, strip and encode PlantUML diagrams into image references",
		Long: `Render discovers diagrams (PlantUML files, directories of them, or a --manifest),
resolves their !include directives, strips the ones that could not be resolved,
and prints an image reference per diagram. Diagrams are processed concurrently;
one failing diagram never affects the others.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			if len(args) == 0 && opts.Manifest == "" {
				return fmt.Errorf("nothing to render: pass PlantUML paths or --manifest")
			}
			log, err := commandLogger(cmd, *logLevel)
			if err != nil {
				return err
			}
			var diagrams []*render.Diagram
			if opts.Manifest != "" {
				fromManifest, err := manifest.Load(opts.Manifest)
				if err != nil {
					return err
				}
				diagrams = append(diagrams, fromManifest...)
			}
			if len(args) > 0 {
				found, err := manifest.Discover(args)
				if err != nil {
					return err
				}
				diagrams = append(diagrams, found...)
			}

			ctx := cmd.Context()
			resolver, err := newResolver(ctx, opts, log)
			if err != nil {
				return err
			}
			var store renderstate.Store = renderstate.NewMemory()
			if opts.StateDB != "" {
				db, err := renderstate.OpenSQLite(opts.StateDB)
				if err != nil {
					return err
				}
				defer db.Close()
				store = db
			}
			renderer := render.New(resolver, encoder.PlantUML{}, log.WithName("render"), render.Options{
				ServePath:   opts.ServePath,
				Concurrency: opts.Concurrency,
				Force:       opts.Force,
				Store:       store,
			})
			if err := renderer.Render(ctx, diagrams); err != nil {
				return err
			}
			if err := report.Write(cmd.OutOrStdout(), opts.Output, diagrams); err != nil {
				return err
			}
			if s := render.Summarize(diagrams); s.Errored > 0 {
				return fmt.Errorf("%w: %d of %d", errRenderFailures, s.Errored, len(diagrams))
			}
			return nil
		},
	}
	return cmd
}
