package server

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/example/pumlkit/internal/fetch"
	"github.com/example/pumlkit/internal/include"
	"github.com/go-logr/logr"
)

func newTestServer(t *testing.T) (*httptest.Server, string) {
	t.Helper()
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, "lib"), 0o755); err != nil {
		t.Fatalf("mkdir: %v", err)
	}
	if err := os.WriteFile(filepath.Join(root, "lib", "style.puml"), []byte("skinparam monochrome true"), 0o644); err != nil {
		t.Fatalf("write: %v", err)
	}
	dir, err := fetch.NewDir(root)
	if err != nil {
		t.Fatalf("new dir: %v", err)
	}
	ts := httptest.NewServer(New(":0", dir, logr.Discard()).Handler())
	t.Cleanup(ts.Close)
	return ts, root
}

func TestGetFileServesContent(t *testing.T) {
	ts, _ := newTestServer(t)
	client := fetch.NewClient(ts.URL, 0)
	got, err := client.GetFile(context.Background(), "lib/style.puml")
	if err != nil {
		t.Fatalf("get file: %v", err)
	}
	if got != "skinparam monochrome true" {
		t.Fatalf("unexpected content %q", got)
	}
}

func TestGetFileStatusCodes(t *testing.T) {
	ts, _ := newTestServer(t)
	cases := []struct {
		body string
		want int
	}{
		{`{"path":"missing.puml"}`, http.StatusNotFound},
		{`{"path":"../etc/passwd"}`, http.StatusForbidden},
		{`{"path":""}`, http.StatusBadRequest},
		{`not json`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		resp, err := http.Post(ts.URL+fetch.GetFilePath, "application/json", strings.NewReader(tc.body))
		if err != nil {
			t.Fatalf("post %s: %v", tc.body, err)
		}
		resp.Body.Close()
		if resp.StatusCode != tc.want {
			t.Fatalf("body %s: want %d, got %d", tc.body, tc.want, resp.StatusCode)
		}
	}
}

func TestGetFileRejectsGet(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + fetch.GetFilePath)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusMethodNotAllowed {
		t.Fatalf("expected 405, got %d", resp.StatusCode)
	}
}

func TestResolverAgainstFileAPI(t *testing.T) {
	ts, _ := newTestServer(t)
	r := include.NewResolver(fetch.NewClient(ts.URL, 0), logr.Discard(), include.Options{})
	res, err := r.Resolve(context.Background(), "@startuml\n!include lib/style.puml\n!include nope.puml\nA -> B\n@enduml")
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	want := "@startuml\nskinparam monochrome true\n\nA -> B\n@enduml"
	if got := include.Strip(res.Text); got != want {
		t.Fatalf("unexpected cleaned source\nwant %q\ngot  %q", want, got)
	}
	if len(res.Failures) != 1 || res.Failures[0].Path != "nope.puml" {
		t.Fatalf("unexpected failures %+v", res.Failures)
	}
	var fe include.FetchError
	if !errors.As(res.Failures[0], &fe) {
		t.Fatalf("failure should be a FetchError")
	}
}

func TestHealthz(t *testing.T) {
	ts, _ := newTestServer(t)
	resp, err := http.Get(ts.URL + "/healthz")
	if err != nil {
		t.Fatalf("healthz: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}
}
