// manifest.go loads diagram instances from a YAML manifest or from files on disk.

// Package manifest turns command-line inputs into diagram instances: either
// PlantUML files (directories are walked) or a YAML manifest that lists
// diagrams by id.
package manifest

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/example/pumlkit/internal/render"
	"gopkg.in/yaml.v3"
)

// Extensions lists the file suffixes treated as PlantUML sources when walking directories.
var Extensions = []string{".puml", ".plantuml", ".pu", ".iuml"}

// Manifest is the on-disk YAML document.
type Manifest struct {
	Diagrams []Entry `yaml:"diagrams"`
}

// Entry names one diagram. Exactly one of File or Source is set.
type Entry struct {
	ID     string `yaml:"id"`
	File   string `yaml:"file,omitempty"`
	Source string `yaml:"source,omitempty"`
}

// Load reads the manifest at path and returns its diagrams in file order.
// Relative File entries resolve against the manifest's directory.
func Load(path string) ([]*render.Diagram, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read manifest: %w", err)
	}
	var m Manifest
	if err := yaml.Unmarshal(raw, &m); err != nil {
		return nil, fmt.Errorf("parse manifest %s: %w", path, err)
	}
	base := filepath.Dir(path)
	seen := make(map[string]struct{}, len(m.Diagrams))
	out := make([]*render.Diagram, 0, len(m.Diagrams))
	for i, e := range m.Diagrams {
		id := strings.TrimSpace(e.ID)
		file := strings.TrimSpace(e.File)
		if id == "" {
			id = file
		}
		if id == "" {
			return nil, fmt.Errorf("manifest %s: diagram %d needs an id or a file", path, i)
		}
		if _, dup := seen[id]; dup {
			return nil, fmt.Errorf("manifest %s: duplicate diagram id %q", path, id)
		}
		seen[id] = struct{}{}
		switch {
		case file != "" && e.Source != "":
			return nil, fmt.Errorf("manifest %s: diagram %q sets both file and source", path, id)
		case file != "":
			if !filepath.IsAbs(file) {
				file = filepath.Join(base, file)
			}
			src, err := os.ReadFile(file)
			if err != nil {
				return nil, fmt.Errorf("manifest %s: diagram %q: %w", path, id, err)
			}
			out = append(out, render.NewDiagram(id, string(src)))
		case e.Source != "":
			out = append(out, render.NewDiagram(id, e.Source))
		default:
			return nil, fmt.Errorf("manifest %s: diagram %q has neither file nor source", path, id)
		}
	}
	return out, nil
}

// Discover returns one diagram per PlantUML file named in paths. Directories
// are walked recursively for files with a known extension; explicit files are
// taken regardless of extension. The diagram id is the path as found.
func Discover(paths []string) ([]*render.Diagram, error) {
	var files []string
	seen := make(map[string]struct{})
	add := func(p string) {
		clean := filepath.Clean(p)
		if _, ok := seen[clean]; ok {
			return
		}
		seen[clean] = struct{}{}
		files = append(files, clean)
	}
	for _, p := range paths {
		p := p
		info, err := os.Stat(p)
		if err != nil {
			return nil, err
		}
		if !info.IsDir() {
			add(p)
			continue
		}
		var found []string
		err = filepath.WalkDir(p, func(path string, d fs.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				if path != p && strings.HasPrefix(d.Name(), ".") {
					return filepath.SkipDir
				}
				return nil
			}
			if hasExtension(path) {
				found = append(found, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", p, err)
		}
		sort.Strings(found)
		for _, f := range found {
			add(f)
		}
	}
	out := make([]*render.Diagram, 0, len(files))
	for _, f := range files {
		raw, err := os.ReadFile(f)
		if err != nil {
			return nil, err
		}
		out = append(out, render.NewDiagram(filepath.ToSlash(f), string(raw)))
	}
	return out, nil
}

func hasExtension(path string) bool {
	ext := strings.ToLower(filepath.Ext(path))
	for _, want := range Extensions {
		if ext == want {
			return true
		}
	}
	return false
}
