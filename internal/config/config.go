// Package config defines the flag plumbing and runtime options shared by
// pumlkit commands, translating Cobra/Viper flag values into a strongly typed
// struct that the resolver, fetchers and renderer consume.
package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/example/pumlkit/internal/include"
	"github.com/example/pumlkit/internal/render"
	"github.com/mitchellh/go-homedir"
	"github.com/spf13/pflag"
)

// Output formats accepted by --output.
const (
	OutputTable = "table"
	OutputYAML  = "yaml"
	OutputJSON  = "json"
	OutputHTML  = "html"
)

// Options holds the CLI configuration for a render or resolve pass.
type Options struct {
	ServePath    string
	FileAPI      string
	Root         string
	Concurrency  int
	FetchTimeout time.Duration
	StateDB      string
	Force        bool
	Recursive    bool
	MaxDepth     int
	Output       string
	Manifest     string
}

// NewOptions returns Options with defaults applied.
func NewOptions() *Options {
	return &Options{
		ServePath:    render.DefaultServePath,
		Root:         ".",
		FetchTimeout: 20 * time.Second,
		MaxDepth:     include.DefaultMaxDepth,
		Output:       OutputTable,
	}
}

// BindFlags attaches the options to fs and returns the flag names.
func (o *Options) BindFlags(fs *pflag.FlagSet) []string {
	var names []string
	fs.StringVar(&o.ServePath, "serve-path", o.ServePath, "Diagram-serving endpoint; the encoded token is appended to it")
	names = append(names, "serve-path")
	fs.StringVar(&o.FileAPI, "file-api", o.FileAPI, "Base URL of the file API used to fetch includes (overrides --root)")
	names = append(names, "file-api")
	fs.StringVar(&o.Root, "root", o.Root, "Directory that include paths resolve against when no --file-api is set")
	names = append(names, "root")
	fs.IntVarP(&o.Concurrency, "concurrency", "j", o.Concurrency, "Maximum diagrams processed at once (0 = unbounded)")
	names = append(names, "concurrency")
	fs.DurationVar(&o.FetchTimeout, "fetch-timeout", o.FetchTimeout, "Timeout for a single include fetch over the file API")
	names = append(names, "fetch-timeout")
	fs.StringVar(&o.StateDB, "state-db", o.StateDB, "SQLite file recording render flags between runs (empty = in memory)")
	names = append(names, "state-db")
	fs.BoolVar(&o.Force, "force", o.Force, "Re-render diagrams even when their render flag is set")
	names = append(names, "force")
	fs.BoolVar(&o.Recursive, "recursive", o.Recursive, "Resolve includes inside included files (same as --feature recursive-includes)")
	names = append(names, "recursive")
	fs.IntVar(&o.MaxDepth, "max-depth", o.MaxDepth, "Maximum nesting depth for recursive includes")
	names = append(names, "max-depth")
	fs.StringVarP(&o.Output, "output", "o", o.Output, "Report format: table, yaml, json, or html")
	names = append(names, "output")
	fs.StringVarP(&o.Manifest, "manifest", "f", o.Manifest, "YAML manifest listing diagrams to render")
	names = append(names, "manifest")
	return names
}

// Validate normalizes the options and rejects inconsistent combinations.
func (o *Options) Validate() error {
	o.ServePath = strings.TrimSpace(o.ServePath)
	if o.ServePath == "" {
		return fmt.Errorf("--serve-path cannot be empty")
	}
	o.FileAPI = strings.TrimSpace(o.FileAPI)
	if o.FileAPI != "" {
		u, err := url.Parse(o.FileAPI)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fmt.Errorf("--file-api must be an absolute http(s) URL, got %q", o.FileAPI)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("--file-api scheme must be http or https, got %q", u.Scheme)
		}
	}
	var err error
	if o.Root, err = expandPath(o.Root); err != nil {
		return err
	}
	if o.Root == "" {
		o.Root = "."
	}
	if o.StateDB, err = expandPath(o.StateDB); err != nil {
		return err
	}
	if o.Manifest, err = expandPath(o.Manifest); err != nil {
		return err
	}
	if o.Concurrency < 0 {
		return fmt.Errorf("--concurrency must be >= 0")
	}
	if o.FetchTimeout < 0 {
		return fmt.Errorf("--fetch-timeout must be >= 0")
	}
	if o.MaxDepth < 1 {
		return fmt.Errorf("--max-depth must be >= 1")
	}
	o.Output = strings.ToLower(strings.TrimSpace(o.Output))
	switch o.Output {
	case "":
		o.Output = OutputTable
	case OutputTable, OutputYAML, OutputJSON, OutputHTML:
	default:
		return fmt.Errorf("unknown --output %q (expected table, yaml, json, or html)", o.Output)
	}
	return nil
}

// IncludeOptions returns the resolver settings. recursive is true when the
// recursive-includes feature flag is enabled.
func (o *Options) IncludeOptions(recursive bool) include.Options {
	return include.Options{
		Recursive: o.Recursive || recursive,
		MaxDepth:  o.MaxDepth,
	}
}

func expandPath(p string) (string, error) {
	p = strings.TrimSpace(p)
	if p == "" {
		return "", nil
	}
	expanded, err := homedir.Expand(p)
	if err != nil {
		return "", fmt.Errorf("expand %s: %w", p, err)
	}
	return expanded, nil
}
