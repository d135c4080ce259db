// Package featureflags gates experimental pumlkit behaviour behind named
// flags resolved from --feature and PUMLKIT_FEATURE_* variables.
package featureflags

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
)

const envPrefix = "PUMLKIT_FEATURE_"

// Name is a kebab-case feature identifier.
type Name string

// FeatureRecursiveIncludes expands !include directives found inside included files.
const FeatureRecursiveIncludes Name = "recursive-includes"

// Definition describes a known feature.
type Definition struct {
	Name        Name
	Description string
}

// EnvVar returns the variable that turns the feature on, e.g.
// PUMLKIT_FEATURE_RECURSIVE_INCLUDES.
func (d Definition) EnvVar() string {
	return envPrefix + strings.ToUpper(strings.ReplaceAll(string(d.Name), "-", "_"))
}

// Kept sorted by name; the features command prints them in this order.
var known = []Definition{
	{
		Name:        FeatureRecursiveIncludes,
		Description: "Resolve !include directives inside included files, up to --max-depth levels.",
	},
}

// ErrUnknownFeature is returned for a name that is not in Definitions.
var ErrUnknownFeature = errors.New("unknown feature flag")

// Definitions returns the known features.
func Definitions() []Definition {
	return append([]Definition(nil), known...)
}

func lookup(name Name) bool {
	for _, def := range known {
		if def.Name == name {
			return true
		}
	}
	return false
}

// Flags is the set of features enabled for one invocation. The zero value
// has everything off.
type Flags struct {
	on map[Name]bool
}

// Enabled reports whether name is on.
func (f Flags) Enabled(name Name) bool {
	return f.on[name]
}

// Resolve enables every feature named in sources. Each source holds
// --feature values, which may be comma-separated.
func Resolve(sources ...[]string) (Flags, error) {
	on := make(map[Name]bool)
	for _, values := range sources {
		for _, value := range values {
			for _, raw := range strings.Split(value, ",") {
				if strings.TrimSpace(raw) == "" {
					continue
				}
				name := normalize(raw)
				if !lookup(name) {
					return Flags{}, fmt.Errorf("%w: %s", ErrUnknownFeature, strings.TrimSpace(raw))
				}
				on[name] = true
			}
		}
	}
	return Flags{on: on}, nil
}

// EnabledFromEnv returns the feature names switched on by PUMLKIT_FEATURE_*
// entries of environ, or of the process environment when environ is nil.
func EnabledFromEnv(environ []string) []string {
	if environ == nil {
		environ = os.Environ()
	}
	var names []string
	for _, entry := range environ {
		key, val, ok := strings.Cut(entry, "=")
		if !ok || !strings.HasPrefix(key, envPrefix) || !truthy(val) {
			continue
		}
		names = append(names, string(normalize(strings.TrimPrefix(key, envPrefix))))
	}
	return names
}

type ctxKey struct{}

// ContextWithFlags returns a copy of ctx carrying flags.
func ContextWithFlags(ctx context.Context, flags Flags) context.Context {
	return context.WithValue(ctx, ctxKey{}, flags)
}

// FromContext returns the flags stored on ctx, or the zero Flags.
func FromContext(ctx context.Context) Flags {
	if ctx == nil {
		return Flags{}
	}
	flags, _ := ctx.Value(ctxKey{}).(Flags)
	return flags
}

func normalize(raw string) Name {
	return Name(strings.ReplaceAll(strings.ToLower(strings.TrimSpace(raw)), "_", "-"))
}

func truthy(val string) bool {
	val = strings.ToLower(strings.TrimSpace(val))
	if val == "yes" || val == "on" {
		return true
	}
	b, err := strconv.ParseBool(val)
	return err == nil && b
}
