package transform

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/untangle/ast"
	"github.com/deepnoodle-ai/untangle/errz"
	"github.com/deepnoodle-ai/untangle/traverse"
)

// DefaultMaxIterations bounds the number of full passes over the tree.
const DefaultMaxIterations = 100

// Recorder receives pipeline measurements. The metrics package provides a
// Prometheus implementation.
type Recorder interface {
	PassFinished(name string, changes int, elapsed time.Duration)
	RunFinished(iterations int, converged bool)
}

// Option configures a Pipeline.
type Option func(*Pipeline)

// WithMaxIterations sets the iteration cap. Values below one are ignored.
func WithMaxIterations(n int) Option {
	return func(p *Pipeline) {
		if n > 0 {
			p.maxIterations = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(p *Pipeline) {
		p.log = log
	}
}

// WithRecorder sets a recorder for pass and run measurements.
func WithRecorder(r Recorder) Option {
	return func(p *Pipeline) {
		p.recorder = r
	}
}

// WithPassConfig supplies the config value handed to the named transform's
// Visitor function.
func WithPassConfig(name string, config any) Option {
	return func(p *Pipeline) {
		p.configs[name] = config
	}
}

// WithStrictValidation re-validates the tree after every iteration, so that a
// transform that breaks a tree invariant fails the run instead of corrupting
// later passes.
func WithStrictValidation() Option {
	return func(p *Pipeline) {
		p.strict = true
	}
}

// Pipeline runs an ordered list of transforms until none of them changes the
// tree. A pipeline holds no per-run state and may be reused, but a single
// tree must not be processed by two runs at once.
type Pipeline struct {
	transforms    []*Transform
	configs       map[string]any
	maxIterations int
	log           zerolog.Logger
	recorder      Recorder
	strict        bool
}

// New returns a pipeline running transforms in the given order.
func New(transforms []*Transform, opts ...Option) *Pipeline {
	p := &Pipeline{
		transforms:    transforms,
		configs:       map[string]any{},
		maxIterations: DefaultMaxIterations,
		log:           zerolog.Nop(),
	}
	for _, opt := range opts {
		if opt != nil {
			opt(p)
		}
	}
	return p
}

// Transforms returns the names of the transforms the pipeline runs, in order.
func (p *Pipeline) Transforms() []string {
	names := make([]string, 0, len(p.transforms))
	for _, t := range p.transforms {
		names = append(names, t.Name)
	}
	return names
}

// PassChanges is the number of changes one transform made over a whole run.
type PassChanges struct {
	Name    string `json:"name"`
	Changes int    `json:"changes"`
}

// Result summarizes a pipeline run.
type Result struct {
	// RunID identifies the run in logs.
	RunID string `json:"run_id"`

	// Iterations is the number of full passes over the transform list.
	Iterations int `json:"iterations"`

	// Converged is false when the iteration cap was reached while
	// transforms were still making changes. The tree is still valid.
	Converged bool `json:"converged"`

	// Passes holds per-transform change totals in pipeline order.
	Passes []PassChanges `json:"passes"`
}

// Changes returns the total number of changes made by the named transform.
func (r *Result) Changes(name string) int {
	for _, pc := range r.Passes {
		if pc.Name == name {
			return pc.Changes
		}
	}
	return 0
}

// Total returns the number of changes made by all transforms.
func (r *Result) Total() int {
	total := 0
	for _, pc := range r.Passes {
		total += pc.Changes
	}
	return total
}

// Run rewrites root in place. The tree is validated first; an invalid tree is
// rejected with an errz.ErrInvariant error before any transform runs.
//
// Cancellation is checked before each transform execution. When ctx is
// cancelled, the partially rewritten tree is left in place and the result
// so far is returned together with the context error.
func (p *Pipeline) Run(ctx context.Context, root ast.Node) (*Result, error) {
	if err := ast.Validate(root); err != nil {
		return nil, err
	}

	result := &Result{RunID: newRunID()}
	result.Passes = make([]PassChanges, len(p.transforms))
	for i, t := range p.transforms {
		result.Passes[i].Name = t.Name
	}
	log := p.log.With().Str("run", result.RunID).Logger()
	log.Debug().Strs("transforms", p.Transforms()).Msg("pipeline started")

	for result.Iterations < p.maxIterations {
		result.Iterations++
		changed := 0
		for i, t := range p.transforms {
			if err := ctx.Err(); err != nil {
				p.finish(log, result)
				return result, err
			}
			passLog := log.With().Str("pass", t.Name).Int("iteration", result.Iterations).Logger()
			state := traverse.NewState(ctx, passLog)
			start := time.Now()
			traverse.Run(root, t.Visitor(p.configs[t.Name]), state)
			elapsed := time.Since(start)

			result.Passes[i].Changes += state.Changes
			changed += state.Changes
			if p.recorder != nil {
				p.recorder.PassFinished(t.Name, state.Changes, elapsed)
			}
			if state.Changes > 0 {
				passLog.Debug().Int("changes", state.Changes).Dur("elapsed", elapsed).Msg("pass changed tree")
			}
		}
		if p.strict {
			if err := ast.Validate(root); err != nil {
				return result, errz.New(errz.ErrInvariant, "tree invalid after iteration").WithCause(err)
			}
		}
		if changed == 0 {
			result.Converged = true
			break
		}
	}

	p.finish(log, result)
	if !result.Converged {
		log.Warn().Int("iterations", result.Iterations).Msg("pipeline did not converge")
	}
	return result, nil
}

func (p *Pipeline) finish(log zerolog.Logger, result *Result) {
	if p.recorder != nil {
		p.recorder.RunFinished(result.Iterations, result.Converged)
	}
	log.Debug().
		Int("iterations", result.Iterations).
		Bool("converged", result.Converged).
		Int("changes", result.Total()).
		Msg("pipeline finished")
}

func newRunID() string {
	id, err := uuid.NewV4()
	if err != nil {
		return "unknown"
	}
	return id.String()
}
