// dir.go reads included files from a local root directory.

package fetch

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/example/pumlkit/internal/include"
)

// ErrOutsideRoot is returned for paths that resolve outside the Dir root.
var ErrOutsideRoot = errors.New("path escapes root directory")

// Dir serves files below a root directory. Both relative and
// root-absolute ("/a/b.puml") paths resolve against the root.
type Dir struct {
	root string
}

var _ include.Fetcher = Dir{}

// NewDir returns a Dir rooted at root.
func NewDir(root string) (Dir, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		root = "."
	}
	abs, err := filepath.Abs(root)
	if err != nil {
		return Dir{}, fmt.Errorf("resolve root %s: %w", root, err)
	}
	info, err := os.Stat(abs)
	if err != nil {
		return Dir{}, err
	}
	if !info.IsDir() {
		return Dir{}, fmt.Errorf("root %s is not a directory", abs)
	}
	return Dir{root: abs}, nil
}

// Root returns the absolute root directory.
func (d Dir) Root() string { return d.root }

// Open resolves path to a file below the root.
func (d Dir) Open(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", errors.New("path is required")
	}
	clean := filepath.Clean(filepath.Join(d.root, filepath.FromSlash(strings.TrimLeft(path, "/"))))
	rel, err := filepath.Rel(d.root, clean)
	if err != nil || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %s", ErrOutsideRoot, path)
	}
	return clean, nil
}

// GetFile reads path relative to the root.
func (d Dir) GetFile(ctx context.Context, path string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	full, err := d.Open(path)
	if err != nil {
		return "", err
	}
	info, err := os.Stat(full)
	if err != nil {
		return "", err
	}
	if info.IsDir() {
		return "", fmt.Errorf("%s is a directory", path)
	}
	if info.Size() > MaxFileBytes {
		return "", fmt.Errorf("%s: file too large (>%d bytes)", path, MaxFileBytes)
	}
	raw, err := os.ReadFile(full)
	if err != nil {
		return "", err
	}
	return string(raw), nil
}
