package main

import (
	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/fetch"
	"github.com/example/pumlkit/internal/server"
	"github.com/spf13/cobra"
)

func newServeCommand(opts *config.Options, logLevel *string) *cobra.Command {
	addr := ":6806"
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve --root through the file API used by --file-api",
		Long:  "Serve exposes POST /api/file/getFile over HTTP so include resolution can run against a remote copy of --root.",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			log, err := commandLogger(cmd, *logLevel)
			if err != nil {
				return err
			}
			dir, err := fetch.NewDir(opts.Root)
			if err != nil {
				return err
			}
			return server.New(addr, dir, log.WithName("server")).Run(cmd.Context())
		},
	}
	cmd.Flags().StringVar(&addr, "addr", addr, "Listen address for the file API")
	return cmd
}
