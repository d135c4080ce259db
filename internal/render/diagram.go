// diagram.go models one diagram instance and its render state.

package render

import (
	"fmt"
	"html"
	"strings"

	"github.com/example/pumlkit/internal/include"
)

// State is the render lifecycle of a diagram instance.
type State string

const (
	StateUnresolved State = "unresolved"
	StateResolving  State = "resolving"
	StateRendered   State = "rendered"
	StateErrored    State = "errored"
)

// Diagram is one PlantUML block to be rendered as a single image.
type Diagram struct {
	// ID identifies the instance across passes (a file path or manifest id).
	ID string
	// Source is the raw markup as authored.
	Source string

	State    State
	Rendered bool
	// Skipped reports that the last pass left the diagram untouched because
	// its render flag was already set.
	Skipped bool

	// Cleaned is the resolved and stripped source handed to the encoder.
	Cleaned  string
	Token    string
	ImageURL string
	// HTML is the image-bearing element, or the inline error indicator.
	HTML string

	Err      error
	Failures []include.FetchError
}

// NewDiagram returns an unresolved diagram.
func NewDiagram(id, source string) *Diagram {
	return &Diagram{ID: id, Source: source, State: StateUnresolved}
}

// ErrorMessage returns the render error text, or "".
func (d *Diagram) ErrorMessage() string {
	if d == nil || d.Err == nil {
		return ""
	}
	return d.Err.Error()
}

func imageHTML(url string) string {
	return fmt.Sprintf(`<object type="image/svg+xml" data="%s"/>`, html.EscapeString(url))
}

func errorHTML(err error) string {
	return "plantuml render error: <br>" + html.EscapeString(strings.TrimSpace(err.Error()))
}
