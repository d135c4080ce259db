// render.go drives include resolution, stripping and encoding for a set of
// diagram instances.

// Package render orchestrates the per-instance pipeline: resolve includes,
// strip leftover directives, encode, and build the image reference. Each
// instance is isolated so one failing diagram never affects its siblings.
package render

import (
	"context"
	"errors"
	"fmt"

	"github.com/example/pumlkit/internal/include"
	"github.com/example/pumlkit/internal/renderstate"
	"github.com/go-logr/logr"
	"golang.org/x/sync/errgroup"
)

// DefaultServePath is the public PlantUML server's SVG route for deflate tokens.
const DefaultServePath = "https://www.plantuml.com/plantuml/svg/~1"

// DiagramEncoder produces a URL-safe token from cleaned diagram text.
type DiagramEncoder interface {
	Encode(text string) (string, error)
}

// EncoderFunc adapts a function to DiagramEncoder.
type EncoderFunc func(text string) (string, error)

func (f EncoderFunc) Encode(text string) (string, error) { return f(text) }

// SourceResolver expands includes in a diagram source.
type SourceResolver interface {
	Resolve(ctx context.Context, src string) (include.Result, error)
}

// Options configures a Renderer.
type Options struct {
	// ServePath is prefixed to every token to build the image URL.
	ServePath string
	// Concurrency caps the number of diagrams processed at once; <= 0 means unbounded.
	Concurrency int
	// Force re-renders diagrams whose render flag is set.
	Force bool
	// Store persists render flags between passes. Optional.
	Store renderstate.Store
}

// Renderer renders diagram instances.
type Renderer struct {
	resolver SourceResolver
	encoder  DiagramEncoder
	opts     Options
	log      logr.Logger
}

// New returns a Renderer.
func New(resolver SourceResolver, encoder DiagramEncoder, log logr.Logger, opts Options) *Renderer {
	if opts.ServePath == "" {
		opts.ServePath = DefaultServePath
	}
	return &Renderer{resolver: resolver, encoder: encoder, opts: opts, log: log}
}

// Render processes every diagram concurrently. Per-diagram failures are
// recorded on the diagram itself; the returned error is only ever the
// context error.
func (r *Renderer) Render(ctx context.Context, diagrams []*Diagram) error {
	var g errgroup.Group
	if r.opts.Concurrency > 0 {
		g.SetLimit(r.opts.Concurrency)
	}
	for _, d := range diagrams {
		d := d
		if d == nil {
			continue
		}
		g.Go(func() error {
			r.renderOne(ctx, d)
			return nil
		})
	}
	_ = g.Wait()
	return ctx.Err()
}

func (r *Renderer) renderOne(ctx context.Context, d *Diagram) {
	log := r.log.WithValues("diagram", d.ID)
	d.Skipped = false
	if d.Rendered && !r.opts.Force {
		d.Skipped = true
		log.V(1).Info("already rendered, skipping")
		return
	}
	digest := renderstate.Digest(d.Source)
	if r.opts.Store != nil && !r.opts.Force {
		done, err := r.opts.Store.IsRendered(ctx, d.ID, digest)
		if err != nil {
			log.Error(err, "render flag lookup failed")
		} else if done {
			d.Rendered = true
			d.State = StateRendered
			d.Skipped = true
			log.V(1).Info("render flag set, skipping")
			return
		}
	}

	d.State = StateResolving
	d.Err = nil
	d.Failures = nil
	defer func() {
		if p := recover(); p != nil {
			r.fail(ctx, log, d, fmt.Errorf("%v", p))
		}
	}()

	if r.resolver == nil {
		r.fail(ctx, log, d, errors.New("include resolver is not configured"))
		return
	}
	res, err := r.resolver.Resolve(ctx, d.Source)
	if err != nil {
		r.fail(ctx, log, d, fmt.Errorf("resolve includes: %w", err))
		return
	}
	d.Failures = res.Failures
	for _, f := range res.Failures {
		log.V(1).Info("include not resolved", "path", f.Path, "error", f.Err.Error())
	}
	d.Cleaned = include.Strip(res.Text)

	if r.encoder == nil {
		r.fail(ctx, log, d, errors.New("diagram encoder is not available"))
		return
	}
	token, err := r.encoder.Encode(d.Cleaned)
	if err != nil {
		r.fail(ctx, log, d, err)
		return
	}
	d.Token = token
	d.ImageURL = r.opts.ServePath + token
	d.HTML = imageHTML(d.ImageURL)
	d.State = StateRendered
	d.Rendered = true
	if r.opts.Store != nil {
		if err := r.opts.Store.MarkRendered(ctx, d.ID, digest); err != nil {
			log.Error(err, "persist render flag failed")
		}
	}
	log.V(1).Info("rendered", "includes", res.Resolved, "unresolved", len(res.Failures))
}

func (r *Renderer) fail(ctx context.Context, log logr.Logger, d *Diagram, err error) {
	d.Err = err
	d.State = StateErrored
	d.Rendered = false
	d.Token = ""
	d.ImageURL = ""
	d.HTML = errorHTML(err)
	log.Info("render failed", "error", err.Error())
	// A flag left from an earlier pass would skip this diagram next time.
	if r.opts.Store != nil {
		if cerr := r.opts.Store.Clear(ctx, d.ID); cerr != nil {
			log.Error(cerr, "clear render flag failed")
		}
	}
}

// Summary counts the outcome of a render pass.
type Summary struct {
	Rendered   int `json:"rendered"`
	Errored    int `json:"errored"`
	Skipped    int `json:"skipped"`
	Unresolved int `json:"unresolvedIncludes"`
}

// Summarize tallies the states of diagrams after Render.
func Summarize(diagrams []*Diagram) Summary {
	var s Summary
	for _, d := range diagrams {
		if d == nil {
			continue
		}
		switch {
		case d.Skipped:
			s.Skipped++
		case d.State == StateRendered:
			s.Rendered++
		case d.State == StateErrored:
			s.Errored++
		}
		s.Unresolved += len(d.Failures)
	}
	return s
}
