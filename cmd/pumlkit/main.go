// main.go bootstraps pumlkit: it builds the root Cobra command, binds Viper
// configuration and executes with a signal-aware context.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/example/pumlkit/internal/config"
	"github.com/example/pumlkit/internal/featureflags"
	"github.com/example/pumlkit/internal/fetch"
	"github.com/fatih/color"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	rootCmd := newRootCommand()
	err := rootCmd.ExecuteContext(ctx)
	handleError(err)
	if err != nil {
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := config.NewOptions()
	logLevel := "info"
	var featureFlagValues []string
	var noColor bool
	cmd := &cobra.Command{
		Use:           "pumlkit",
		Short:         "Resolve PlantUML !include directives and render diagram references",
		Long:          "pumlkit expands !include directives in PlantUML sources, strips the ones it cannot resolve, and turns each diagram into an encoded image reference for a PlantUML server.",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			flags, err := featureflags.Resolve(featureFlagValues, featureflags.EnabledFromEnv(nil))
			if err != nil {
				return err
			}
			if noColor || !isTerminalWriter(cmd.OutOrStdout()) {
				color.NoColor = true
			}
			ctx := featureflags.ContextWithFlags(cmd.Context(), flags)
			cmd.SetContext(ctx)
			cmd.Root().SetContext(ctx)
			return nil
		},
	}
	cmd.PersistentFlags().StringVar(&logLevel, "log-level", logLevel, "Log level for pumlkit diagnostics (debug, info, warn, error)")
	cmd.PersistentFlags().StringSliceVar(&featureFlagValues, "feature", nil, "Enable experimental features (repeat or pass comma-separated names)")
	cmd.PersistentFlags().BoolVar(&noColor, "no-color", false, "Disable coloured output")
	opts.BindFlags(cmd.PersistentFlags())

	cmd.AddCommand(
		newRenderCommand(opts, &logLevel),
		newResolveCommand(opts, &logLevel),
		newStripCommand(),
		newFetchCommand(opts),
		newEncodeCommand(opts),
		newDecodeCommand(),
		newServeCommand(opts, &logLevel),
		newFeaturesCommand(),
		newVersionCommand(),
	)
	cmd.Example = `  # Render every diagram under docs/ with includes read from the repo root
  pumlkit render docs --root .

  # Resolve includes through a running file API and show what changed
  pumlkit resolve docs/login.puml --file-api http://127.0.0.1:6806 --diff

  # Serve the repository as a file API for other tools
  pumlkit serve --root . --addr :6806`
	bindViper(cmd)
	return cmd
}

func bindViper(root *cobra.Command) {
	v := viper.New()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.SetEnvPrefix("PUMLKIT")
	v.AutomaticEnv()
	configFile := os.Getenv("PUMLKIT_CONFIG")
	configureConfigFile(v, configFile)

	cobra.OnInitialize(func() {
		commands := append([]*cobra.Command{root}, root.Commands()...)
		for _, cmd := range commands {
			if err := v.BindPFlags(cmd.Flags()); err != nil {
				cobra.CheckErr(err)
			}
			if err := v.BindPFlags(cmd.PersistentFlags()); err != nil {
				cobra.CheckErr(err)
			}
		}
		if err := readConfigFile(v, configFile != ""); err != nil {
			cobra.CheckErr(err)
		}
		for _, cmd := range commands {
			for _, fs := range []*pflag.FlagSet{cmd.Flags(), cmd.PersistentFlags()} {
				fs.VisitAll(func(f *pflag.Flag) {
					if f.Changed || !v.IsSet(f.Name) {
						return
					}
					val := fmt.Sprintf("%v", v.Get(f.Name))
					if val != "" {
						_ = f.Value.Set(val)
					}
				})
			}
		}
	})
}

func configureConfigFile(v *viper.Viper, explicitPath string) {
	if explicitPath != "" {
		v.SetConfigFile(explicitPath)
		return
	}
	v.SetConfigName("config")
	for _, dir := range configSearchDirs() {
		v.AddConfigPath(dir)
	}
}

func readConfigFile(v *viper.Viper, strict bool) error {
	if err := v.ReadInConfig(); err != nil {
		var cfgErr viper.ConfigFileNotFoundError
		if errors.As(err, &cfgErr) && !strict {
			return nil
		}
		return err
	}
	return nil
}

func configSearchDirs() []string {
	added := make(map[string]struct{})
	var dirs []string
	add := func(path string) {
		if path == "" {
			return
		}
		if _, ok := added[path]; ok {
			return
		}
		added[path] = struct{}{}
		dirs = append(dirs, path)
	}
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		add(filepath.Join(xdg, "pumlkit"))
	}
	if home, err := os.UserHomeDir(); err == nil && home != "" {
		add(filepath.Join(home, ".config", "pumlkit"))
		add(filepath.Join(home, ".pumlkit"))
	}
	return dirs
}

func handleError(err error) {
	if err == nil || errors.Is(err, pflag.ErrHelp) {
		return
	}
	message := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded):
		message = fmt.Sprintf("%s\nHint: raise --fetch-timeout or check that the file API is reachable.", err)
	case errors.Is(err, fetch.ErrOutsideRoot):
		message = fmt.Sprintf("%s\nHint: include paths resolve against --root; point --root at a directory that contains them.", err)
	case errors.Is(err, errRenderFailures):
		message = fmt.Sprintf("%s\nHint: rerun with --log-level debug to see unresolved includes for each diagram.", err)
	}
	fmt.Fprintf(os.Stderr, "Error: %s\n", message)
}
