// report.go formats render results for terminals, machines and browsers.

// Package report prints the outcome of a render pass as a table, YAML, JSON
// or an HTML page of diagram elements, and produces source diffs for resolve
// previews.
package report

import (
	"encoding/json"
	"fmt"
	"html"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/example/pumlkit/internal/render"
	"github.com/fatih/color"
	"github.com/pmezard/go-difflib/difflib"
	"sigs.k8s.io/yaml"
)

// Entry is the serialized view of one diagram.
type Entry struct {
	ID         string   `json:"id"`
	State      string   `json:"state"`
	Skipped    bool     `json:"skipped,omitempty"`
	ImageURL   string   `json:"imageURL,omitempty"`
	Error      string   `json:"error,omitempty"`
	Unresolved []string `json:"unresolvedIncludes,omitempty"`
}

// Document is the YAML/JSON report root.
type Document struct {
	Diagrams []Entry        `json:"diagrams"`
	Summary  render.Summary `json:"summary"`
}

// Build converts diagrams into a Document.
func Build(diagrams []*render.Diagram) Document {
	doc := Document{Summary: render.Summarize(diagrams)}
	for _, d := range diagrams {
		if d == nil {
			continue
		}
		e := Entry{
			ID:       d.ID,
			State:    string(d.State),
			Skipped:  d.Skipped,
			ImageURL: d.ImageURL,
			Error:    d.ErrorMessage(),
		}
		for _, f := range d.Failures {
			e.Unresolved = append(e.Unresolved, f.Path)
		}
		doc.Diagrams = append(doc.Diagrams, e)
	}
	return doc
}

// Write renders diagrams to w in the given format (table, yaml, json, html).
func Write(w io.Writer, format string, diagrams []*render.Diagram) error {
	switch strings.ToLower(format) {
	case "", "table":
		return writeTable(w, diagrams)
	case "yaml":
		raw, err := yaml.Marshal(Build(diagrams))
		if err != nil {
			return err
		}
		_, err = w.Write(raw)
		return err
	case "json":
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(Build(diagrams))
	case "html":
		return writeHTML(w, diagrams)
	default:
		return fmt.Errorf("unknown report format %q", format)
	}
}

func writeTable(w io.Writer, diagrams []*render.Diagram) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "DIAGRAM\tSTATE\tUNRESOLVED\tDETAIL")
	for _, d := range diagrams {
		if d == nil {
			continue
		}
		detail := d.ImageURL
		switch {
		case d.Err != nil:
			detail = d.ErrorMessage()
		case d.Skipped:
			detail = "already rendered"
		}
		fmt.Fprintf(tw, "%s\t%s\t%d\t%s\n", d.ID, formatState(d), len(d.Failures), dashIfEmpty(detail))
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	s := render.Summarize(diagrams)
	_, err := fmt.Fprintf(w, "\n%d rendered, %d errored, %d skipped, %d unresolved includes\n", s.Rendered, s.Errored, s.Skipped, s.Unresolved)
	return err
}

func formatState(d *render.Diagram) string {
	state := strings.ToUpper(string(d.State))
	if d.Skipped {
		state = "SKIPPED"
	}
	if color.NoColor {
		return state
	}
	switch {
	case d.State == render.StateErrored:
		return color.New(color.FgHiRed).Sprint(state)
	case d.Skipped:
		return color.New(color.FgYellow).Sprint(state)
	case d.State == render.StateRendered:
		return color.New(color.FgHiGreen).Sprint(state)
	default:
		return state
	}
}

func writeHTML(w io.Writer, diagrams []*render.Diagram) error {
	var b strings.Builder
	b.WriteString("<!DOCTYPE html>\n<html><head><meta charset=\"utf-8\"><title>pumlkit</title></head><body>\n")
	for _, d := range diagrams {
		if d == nil || d.HTML == "" {
			continue
		}
		class := "diagram"
		if d.State == render.StateErrored {
			class += " ft__error"
		}
		fmt.Fprintf(&b, "<div class=%q data-id=%q data-render=%q>%s</div>\n",
			class, html.EscapeString(d.ID), fmt.Sprint(d.Rendered), d.HTML)
	}
	b.WriteString("</body></html>\n")
	_, err := io.WriteString(w, b.String())
	return err
}

// Diff returns a unified diff from before to after, or "" when they match.
func Diff(name, before, after string) string {
	if before == after {
		return ""
	}
	ud := difflib.UnifiedDiff{
		A:        difflib.SplitLines(before),
		B:        difflib.SplitLines(after),
		FromFile: name,
		ToFile:   name + " (resolved)",
		Context:  3,
	}
	diff, _ := difflib.GetUnifiedDiffString(ud)
	if diff != "" && !strings.HasSuffix(diff, "\n") {
		diff += "\n"
	}
	return diff
}

func dashIfEmpty(val string) string {
	if val == "" {
		return "-"
	}
	return val
}
