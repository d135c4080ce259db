// resolver.go expands !include directives by fetching the referenced files.

package include

import (
	"context"
	"errors"
	"fmt"
	"path"
	"strings"

	"github.com/go-logr/logr"
)

// DefaultMaxDepth bounds nested expansion when recursive includes are enabled.
const DefaultMaxDepth = 8

var (
	// ErrIncludeCycle marks a directive that would include a file already on the include chain.
	ErrIncludeCycle = errors.New("include cycle")
	// ErrMaxDepth marks a directive nested deeper than the configured limit.
	ErrMaxDepth = errors.New("include depth limit exceeded")
)

// Fetcher retrieves the content of an included file.
type Fetcher interface {
	GetFile(ctx context.Context, path string) (string, error)
}

// FetcherFunc adapts a function to the Fetcher interface.
type FetcherFunc func(ctx context.Context, path string) (string, error)

// GetFile calls f(ctx, path).
func (f FetcherFunc) GetFile(ctx context.Context, path string) (string, error) {
	return f(ctx, path)
}

// FetchError records a directive that could not be expanded.
type FetchError struct {
	Path  string
	Index int
	Depth int
	Err   error
}

func (e FetchError) Error() string {
	return fmt.Sprintf("include %q (directive %d, depth %d): %v", e.Path, e.Index, e.Depth, e.Err)
}

func (e FetchError) Unwrap() error { return e.Err }

// Result is the outcome of one resolution pass.
type Result struct {
	// Text is the source with every resolvable directive replaced.
	Text string
	// Resolved counts directives replaced by fetched content.
	Resolved int
	// Failures lists directives left in place, in the order they were attempted.
	Failures []FetchError
}

// Options tunes a Resolver.
type Options struct {
	// Recursive expands directives found inside fetched content. When false
	// only the directives of the original source are expanded.
	Recursive bool
	// MaxDepth bounds recursive expansion; values <= 0 use DefaultMaxDepth.
	MaxDepth int
}

// Resolver expands !include directives using a Fetcher.
type Resolver struct {
	fetcher Fetcher
	log     logr.Logger
	opts    Options
}

// NewResolver returns a Resolver backed by fetcher.
func NewResolver(fetcher Fetcher, log logr.Logger, opts Options) *Resolver {
	if opts.MaxDepth <= 0 {
		opts.MaxDepth = DefaultMaxDepth
	}
	return &Resolver{fetcher: fetcher, log: log, opts: opts}
}

// Resolve fetches every directive of src sequentially, in scan order, and
// replaces each one by occurrence with the fetched content. Directives whose
// fetch fails are kept verbatim and reported in Result.Failures. The only
// error returned is the context error when ctx is done between fetches.
func (r *Resolver) Resolve(ctx context.Context, src string) (Result, error) {
	var res Result
	text, err := r.expand(ctx, src, "", 0, nil, &res)
	if err != nil {
		return Result{}, err
	}
	res.Text = text
	return res, nil
}

func (r *Resolver) expand(ctx context.Context, src, parent string, depth int, chain []string, res *Result) (string, error) {
	directives := Scan(src)
	if len(directives) == 0 {
		return src, nil
	}
	var b strings.Builder
	b.Grow(len(src))
	last := 0
	for _, d := range directives {
		if err := ctx.Err(); err != nil {
			return "", err
		}
		b.WriteString(src[last:d.Offset])
		last = d.Offset + len(d.Line)

		target := d.Path
		if depth > 0 {
			target = joinRelative(parent, d.Path)
		}
		content, err := r.fetch(ctx, target, depth, chain)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return "", ctxErr
			}
			fe := FetchError{Path: target, Index: d.Index, Depth: depth, Err: err}
			res.Failures = append(res.Failures, fe)
			r.log.V(1).Info("include left unresolved", "path", target, "index", d.Index, "depth", depth, "error", err.Error())
			b.WriteString(d.Line)
			continue
		}
		if r.opts.Recursive {
			next := append(append([]string(nil), chain...), target)
			content, err = r.expand(ctx, content, target, depth+1, next, res)
			if err != nil {
				return "", err
			}
		}
		res.Resolved++
		b.WriteString(content)
	}
	b.WriteString(src[last:])
	return b.String(), nil
}

func (r *Resolver) fetch(ctx context.Context, target string, depth int, chain []string) (string, error) {
	if depth > r.opts.MaxDepth {
		return "", fmt.Errorf("%w (%d)", ErrMaxDepth, r.opts.MaxDepth)
	}
	for _, seen := range chain {
		if seen == target {
			return "", fmt.Errorf("%w: %s -> %s", ErrIncludeCycle, strings.Join(chain, " -> "), target)
		}
	}
	if r.fetcher == nil {
		return "", errors.New("no file fetcher configured")
	}
	return r.fetcher.GetFile(ctx, target)
}

// joinRelative resolves a nested include against the directory of the file
// that contained it. Absolute and URL targets are returned unchanged.
func joinRelative(parent, target string) string {
	if parent == "" || strings.HasPrefix(target, "/") || strings.Contains(target, "://") {
		return target
	}
	dir := path.Dir(parent)
	if dir == "." {
		return target
	}
	return path.Join(dir, target)
}
