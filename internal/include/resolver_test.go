package include

import (
	"context"
	"errors"
	"fmt"
	"reflect"
	"strings"
	"testing"

	"github.com/go-logr/logr"
)

type mapFetcher struct {
	files map[string]string
	calls []string
}

func (m *mapFetcher) GetFile(_ context.Context, path string) (string, error) {
	m.calls = append(m.calls, path)
	content, ok := m.files[path]
	if !ok {
		return "", fmt.Errorf("file %s not found", path)
	}
	return content, nil
}

func TestResolveWithoutDirectivesReturnsInput(t *testing.T) {
	f := &mapFetcher{}
	r := NewResolver(f, logr.Discard(), Options{})
	src := "@startuml\nA -> B\n@enduml"
	res, err := r.Resolve(context.Background(), src)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != src {
		t.Fatalf("expected unchanged text, got %q", res.Text)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no fetches, got %v", f.calls)
	}
}

func TestResolveReplacesDirectiveWithContent(t *testing.T) {
	f := &mapFetcher{files: map[string]string{"a.puml": "X"}}
	r := NewResolver(f, logr.Discard(), Options{})
	res, err := r.Resolve(context.Background(), "!include a.puml\nrest")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != "X\nrest" {
		t.Fatalf("expected %q, got %q", "X\nrest", res.Text)
	}
	if res.Resolved != 1 || len(res.Failures) != 0 {
		t.Fatalf("unexpected counters: %+v", res)
	}
}

func TestResolveKeepsFailedDirectiveForStripping(t *testing.T) {
	f := &mapFetcher{files: map[string]string{"ok.puml": "OK"}}
	r := NewResolver(f, logr.Discard(), Options{})
	src := "!include missing.puml\n!include ok.puml\nrest"
	res, err := r.Resolve(context.Background(), src)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != "!include missing.puml\nOK\nrest" {
		t.Fatalf("unexpected resolved text %q", res.Text)
	}
	if len(res.Failures) != 1 || res.Failures[0].Path != "missing.puml" || res.Failures[0].Index != 0 {
		t.Fatalf("unexpected failures: %+v", res.Failures)
	}
	cleaned := Strip(res.Text)
	if strings.Contains(cleaned, "!include") {
		t.Fatalf("stripped output still contains a directive: %q", cleaned)
	}
	if cleaned != "\nOK\nrest" {
		t.Fatalf("unexpected cleaned text %q", cleaned)
	}
}

func TestResolveFetchesSequentiallyInScanOrder(t *testing.T) {
	f := &mapFetcher{files: map[string]string{"a": "1", "b": "2", "c": "3"}}
	r := NewResolver(f, logr.Discard(), Options{})
	if _, err := r.Resolve(context.Background(), "!include c\n!include a\n!include b"); err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if want := []string{"c", "a", "b"}; !reflect.DeepEqual(f.calls, want) {
		t.Fatalf("fetch order mismatch: want %v got %v", want, f.calls)
	}
}

func TestResolveReplacesDuplicateDirectivesByOccurrence(t *testing.T) {
	calls := 0
	f := FetcherFunc(func(_ context.Context, path string) (string, error) {
		calls++
		if calls == 1 {
			return "", errors.New("transient")
		}
		return "second", nil
	})
	r := NewResolver(f, logr.Discard(), Options{})
	res, err := r.Resolve(context.Background(), "!include dup.puml\nmid\n!include dup.puml")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	// The first occurrence failed, so only the second line is replaced.
	if res.Text != "!include dup.puml\nmid\nsecond" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if len(res.Failures) != 1 || res.Failures[0].Index != 0 {
		t.Fatalf("expected failure at occurrence 0, got %+v", res.Failures)
	}
}

func TestResolveDoesNotExpandNestedIncludesByDefault(t *testing.T) {
	f := &mapFetcher{files: map[string]string{
		"a.puml": "A1\n!include b.puml",
		"b.puml": "B1",
	}}
	r := NewResolver(f, logr.Discard(), Options{})
	res, err := r.Resolve(context.Background(), "!include a.puml\nend")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != "A1\n!include b.puml\nend" {
		t.Fatalf("nested include should stay literal, got %q", res.Text)
	}
	if got := Strip(res.Text); got != "A1\n\nend" {
		t.Fatalf("strip should drop the nested directive, got %q", got)
	}
	if !reflect.DeepEqual(f.calls, []string{"a.puml"}) {
		t.Fatalf("expected a single fetch, got %v", f.calls)
	}
}

func TestResolveRecursiveExpandsRelativeToParent(t *testing.T) {
	f := &mapFetcher{files: map[string]string{
		"lib/a.puml":       "A\n!include parts/b.puml",
		"lib/parts/b.puml": "B",
	}}
	r := NewResolver(f, logr.Discard(), Options{Recursive: true})
	res, err := r.Resolve(context.Background(), "!include lib/a.puml")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != "A\nB" {
		t.Fatalf("unexpected recursive expansion %q", res.Text)
	}
	if res.Resolved != 2 {
		t.Fatalf("expected 2 resolved directives, got %d", res.Resolved)
	}
}

func TestResolveRecursiveDetectsCycles(t *testing.T) {
	f := &mapFetcher{files: map[string]string{
		"a.puml": "A\n!include b.puml",
		"b.puml": "B\n!include a.puml",
	}}
	r := NewResolver(f, logr.Discard(), Options{Recursive: true})
	res, err := r.Resolve(context.Background(), "!include a.puml")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Text != "A\nB\n!include a.puml" {
		t.Fatalf("unexpected text %q", res.Text)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0], ErrIncludeCycle) {
		t.Fatalf("expected a cycle failure, got %+v", res.Failures)
	}
}

func TestResolveRecursiveHonoursMaxDepth(t *testing.T) {
	f := FetcherFunc(func(_ context.Context, path string) (string, error) {
		return "!include " + path + "x", nil
	})
	r := NewResolver(f, logr.Discard(), Options{Recursive: true, MaxDepth: 2})
	res, err := r.Resolve(context.Background(), "!include p")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(res.Failures) != 1 || !errors.Is(res.Failures[0], ErrMaxDepth) {
		t.Fatalf("expected depth failure, got %+v", res.Failures)
	}
	if res.Failures[0].Depth != 3 {
		t.Fatalf("expected failure at depth 3, got %d", res.Failures[0].Depth)
	}
	if strings.Count(Strip(res.Text), "!include") != 0 {
		t.Fatalf("strip should remove the unresolved tail, got %q", res.Text)
	}
}

func TestResolveStopsOnCancelledContext(t *testing.T) {
	f := &mapFetcher{files: map[string]string{"a": "1"}}
	r := NewResolver(f, logr.Discard(), Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := r.Resolve(ctx, "!include a"); !errors.Is(err, context.Canceled) {
		t.Fatalf("expected context.Canceled, got %v", err)
	}
	if len(f.calls) != 0 {
		t.Fatalf("expected no fetch after cancel, got %v", f.calls)
	}
}

func TestResolveKeepsCRLFLineEndings(t *testing.T) {
	f := &mapFetcher{files: map[string]string{"a.puml": "X"}}
	r := NewResolver(f, logr.Discard(), Options{})
	res, err := r.Resolve(context.Background(), "@startuml\r\n!include a.puml\r\n!include b.puml\r\n@enduml\r\n")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if got := Strip(res.Text); got != "@startuml\r\nX\r\n\r\n@enduml\r\n" {
		t.Fatalf("unexpected text %q", got)
	}
	if !reflect.DeepEqual(f.calls, []string{"a.puml", "b.puml"}) {
		t.Fatalf("unexpected fetches %v", f.calls)
	}
}
