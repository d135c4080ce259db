package main

import (
	"fmt"
	"io"

	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/encoder"
	"github.com/example/pumlkit/internal/include"
	"github.com/spf13/cobra"
)

func newEncodeCommand(opts *config.Options) *cobra.Command {
	var asURL bool
	cmd := &cobra.Command{
		Use:   "encode [FILE|-]",
		Short: "Encode a PlantUML source into a server token",
		Long:  "Encode strips !include lines and prints the deflate token a PlantUML server accepts. Includes are not resolved; use render or resolve for that.",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := opts.Validate(); err != nil {
				return err
			}
			src, _, err := readSource(cmd, args)
			if err != nil {
				return err
			}
			token, err := encoder.PlantUML{}.Encode(include.Strip(src))
			if err != nil {
				return err
			}
			if asURL {
				token = opts.ServePath + token
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), token)
			return err
		},
	}
	cmd.Flags().BoolVar(&asURL, "url", false, "Prefix the token with --serve-path")
	return cmd
}

func newDecodeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "decode TOKEN",
		Short: "Decode a PlantUML server token back into source",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			src, err := encoder.Decode(args[0])
			if err != nil {
				return err
			}
			_, err = io.WriteString(cmd.OutOrStdout(), src)
			return err
		},
	}
}
