package featureflags

import (
	"context"
	"errors"
	"testing"
)

func TestResolve(t *testing.T) {
	flags, err := Resolve([]string{"recursive-includes"})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !flags.Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("expected feature %s to be enabled", FeatureRecursiveIncludes)
	}
}

func TestResolveUnknown(t *testing.T) {
	_, err := Resolve([]string{"not-a-real-flag"})
	if !errors.Is(err, ErrUnknownFeature) {
		t.Fatalf("expected ErrUnknownFeature, got %v", err)
	}
}

func TestEnabledFromEnv(t *testing.T) {
	env := []string{
		"PUMLKIT_FEATURE_RECURSIVE_INCLUDES=1",
		"SOME_OTHER=value",
		"PUMLKIT_FEATURE_BOGUS=0",
	}
	list := EnabledFromEnv(env)
	flags, err := Resolve(list)
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !flags.Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("expected env to enable %s", FeatureRecursiveIncludes)
	}
}

func TestContextHelpers(t *testing.T) {
	flags, err := Resolve([]string{"recursive-includes"})
	if err != nil {
		t.Fatal(err)
	}
	ctx := ContextWithFlags(context.Background(), flags)
	actual := FromContext(ctx)
	if !actual.Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("expected flag to survive context round-trip")
	}
	if FromContext(context.Background()).Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("zero context should not report feature enabled")
	}
}

func TestEnabledFromEnvUsesProcessEnv(t *testing.T) {
	t.Setenv("PUMLKIT_FEATURE_RECURSIVE_INCLUDES", "true")
	list := EnabledFromEnv(nil)
	if len(list) != 1 {
		t.Fatalf("expected 1 env flag, got %d", len(list))
	}
	flags, err := Resolve(list)
	if err != nil {
		t.Fatal(err)
	}
	if !flags.Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("expected process env to enable flag")
	}
}

func TestResolveNormalizesNames(t *testing.T) {
	flags, err := Resolve([]string{" Recursive_Includes , "})
	if err != nil {
		t.Fatalf("Resolve returned error: %v", err)
	}
	if !flags.Enabled(FeatureRecursiveIncludes) {
		t.Fatalf("expected normalized name to enable %s", FeatureRecursiveIncludes)
	}
	defs := Definitions()
	if len(defs) != 1 || defs[0].EnvVar() != "PUMLKIT_FEATURE_RECURSIVE_INCLUDES" {
		t.Fatalf("unexpected definitions %+v", defs)
	}
}

func TestEnabledFromEnvIgnoresFalseValues(t *testing.T) {
	env := []string{
		"PUMLKIT_FEATURE_RECURSIVE_INCLUDES=off",
		"PUMLKIT_FEATURE_RECURSIVE_INCLUDES_EXTRA",
	}
	if got := EnabledFromEnv(env); len(got) != 0 {
		t.Fatalf("expected no enabled features, got %v", got)
	}
	for _, val := range []string{"1", "true", "yes", "ON"} {
		got := EnabledFromEnv([]string{"PUMLKIT_FEATURE_RECURSIVE_INCLUDES=" + val})
		if len(got) != 1 || got[0] != string(FeatureRecursiveIncludes) {
			t.Fatalf("expected %q to enable the feature, got %v", val, got)
		}
	}
}
