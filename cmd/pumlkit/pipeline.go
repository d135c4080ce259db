package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/featureflags"
	"github.com/example/pumlkit/internal/fetch"
	"github.com/example/pumlkit/internal/include"
	"github.com/example/pumlkit/internal/logging"
	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
)

// newFetcher picks the file-retrieval collaborator: the HTTP file API when
// --file-api is set, the local --root directory otherwise.
func newFetcher(opts *config.Options) (include.Fetcher, error) {
	if opts.FileAPI != "" {
		return fetch.NewClient(opts.FileAPI, opts.FetchTimeout), nil
	}
	dir, err := fetch.NewDir(opts.Root)
	if err != nil {
		return nil, fmt.Errorf("include root: %w", err)
	}
	return dir, nil
}

func newResolver(ctx context.Context, opts *config.Options, log logr.Logger) (*include.Resolver, error) {
	fetcher, err := newFetcher(opts)
	if err != nil {
		return nil, err
	}
	recursive := featureflags.FromContext(ctx).Enabled(featureflags.FeatureRecursiveIncludes)
	return include.NewResolver(fetcher, log.WithName("include"), opts.IncludeOptions(recursive)), nil
}

func commandLogger(cmd *cobra.Command, level string) (logr.Logger, error) {
	log, err := logging.New(level, cmd.ErrOrStderr())
	if err != nil {
		return logr.Logger{}, err
	}
	return log.WithName("pumlkit"), nil
}

// readSource returns the content of path, or stdin when path is "-" or empty.
func readSource(cmd *cobra.Command, args []string) (string, string, error) {
	name := "-"
	if len(args) > 0 {
		name = strings.TrimSpace(args[0])
	}
	var (
		raw []byte
		err error
	)
	if name == "-" || name == "" {
		name = "stdin"
		raw, err = io.ReadAll(cmd.InOrStdin())
	} else {
		raw, err = os.ReadFile(name)
	}
	if err != nil {
		return "", name, fmt.Errorf("read %s: %w", name, err)
	}
	return string(raw), name, nil
}
