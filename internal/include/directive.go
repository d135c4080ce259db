// directive.go scans PlantUML sources for !include directives.

// Package include expands PlantUML !include directives into fetched file
// content and strips the directives that could not be expanded.
package include

import (
	"regexp"
	"strings"
)

// A directive starts the source or follows \n or \r; \r alone also ends a
// line so classic Mac sources scan the same as Unix ones. Group 1 is the line
// break kept by Strip, group 2 the directive line, group 3 the path.
var directivePattern = regexp.MustCompile(`(\A|[\r\n])(!include[ \t]+([^\r\n]+))`)

// Directive is a single !include line found while scanning a source.
type Directive struct {
	// Line is the full matched line, directive keyword included.
	Line string
	// Path is the trimmed include target as written by the author.
	Path string
	// Index is the occurrence index of the directive in scan order.
	Index int
	// Offset is the byte offset of Line within the scanned source.
	Offset int
}

// Scan returns the directives of src in scan order.
func Scan(src string) []Directive {
	matches := directivePattern.FindAllStringSubmatchIndex(src, -1)
	if len(matches) == 0 {
		return nil
	}
	out := make([]Directive, 0, len(matches))
	for i, m := range matches {
		out = append(out, Directive{
			Line:   src[m[4]:m[5]],
			Path:   strings.TrimSpace(src[m[6]:m[7]]),
			Index:  i,
			Offset: m[4],
		})
	}
	return out
}

// Strip removes every !include line from src. The line content becomes empty
// and the surrounding line breaks, \r included, are kept.
func Strip(src string) string {
	return directivePattern.ReplaceAllString(src, "${1}")
}
