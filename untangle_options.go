package untangle

import (
	"time"

	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/untangle/deobfuscate"
	"github.com/deepnoodle-ai/untangle/sandbox"
	"github.com/deepnoodle-ai/untangle/transform"
)

// Option configures a deobfuscation run.
type Option func(*options)

type options struct {
	passes         []string
	unsafe         bool
	decoders       *deobfuscate.Catalog
	maxIterations  int
	sandboxTimeout time.Duration
	sandboxMaxSize int
	filename       string
	strict         bool
	log            zerolog.Logger
	recorder       transform.Recorder
	registry       *transform.Registry
}

func collectOptions(opts ...Option) *options {
	o := &options{log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(o)
		}
	}
	return o
}

func (o *options) tags() []transform.Tag {
	if o.unsafe {
		return []transform.Tag{transform.Safe, transform.Unsafe}
	}
	return []transform.Tag{transform.Safe}
}

func (o *options) sandbox() *sandbox.Sandbox {
	opts := []sandbox.Option{sandbox.WithLogger(o.log)}
	if o.sandboxTimeout > 0 {
		opts = append(opts, sandbox.WithTimeout(o.sandboxTimeout))
	}
	if o.sandboxMaxSize > 0 {
		opts = append(opts, sandbox.WithMaxSize(o.sandboxMaxSize))
	}
	if observer, ok := o.recorder.(sandbox.Observer); ok {
		opts = append(opts, sandbox.WithObserver(observer))
	}
	return sandbox.New(opts...)
}

func (o *options) pipelineOpts() []transform.Option {
	opts := []transform.Option{
		transform.WithLogger(o.log),
		transform.WithPassConfig(deobfuscate.InlineDecodedStrings().Name, &deobfuscate.Options{
			Decoders: o.decoders,
			Sandbox:  o.sandbox(),
		}),
	}
	if o.maxIterations > 0 {
		opts = append(opts, transform.WithMaxIterations(o.maxIterations))
	}
	if o.recorder != nil {
		opts = append(opts, transform.WithRecorder(o.recorder))
	}
	if o.strict {
		opts = append(opts, transform.WithStrictValidation())
	}
	return opts
}

// WithPasses restricts the run to the named passes, applied in the given
// order. By default every pass enabled by the tags runs in registry order.
func WithPasses(names ...string) Option {
	return func(o *options) {
		o.passes = append(o.passes, names...)
	}
}

// WithUnsafe enables passes tagged unsafe, such as template literal
// reconstruction and decoder inlining.
func WithUnsafe() Option {
	return func(o *options) {
		o.unsafe = true
	}
}

// WithDecoders supplies the decoder catalog used by inline-decoded-strings.
// The pass is unsafe and only runs together with WithUnsafe.
func WithDecoders(c *deobfuscate.Catalog) Option {
	return func(o *options) {
		o.decoders = c
	}
}

// WithMaxIterations sets the pipeline iteration cap.
func WithMaxIterations(n int) Option {
	return func(o *options) {
		o.maxIterations = n
	}
}

// WithSandboxTimeout sets the time budget of each decoder evaluation.
func WithSandboxTimeout(d time.Duration) Option {
	return func(o *options) {
		o.sandboxTimeout = d
	}
}

// WithSandboxMaxSize sets the largest decoder source, string argument or
// decoded result accepted, in bytes.
func WithSandboxMaxSize(n int) Option {
	return func(o *options) {
		o.sandboxMaxSize = n
	}
}

// WithFilename sets the filename used in syntax errors.
func WithFilename(filename string) Option {
	return func(o *options) {
		o.filename = filename
	}
}

// WithStrictValidation validates the tree after every pipeline iteration.
func WithStrictValidation() Option {
	return func(o *options) {
		o.strict = true
	}
}

// WithLogger sets the logger used by the pipeline and the sandbox.
func WithLogger(log zerolog.Logger) Option {
	return func(o *options) {
		o.log = log
	}
}

// WithRecorder sets a recorder for pipeline measurements. A recorder that
// also implements sandbox.Observer receives decoder evaluations too.
func WithRecorder(r transform.Recorder) Option {
	return func(o *options) {
		o.recorder = r
	}
}

// WithRegistry replaces the default pass registry.
func WithRegistry(r *transform.Registry) Option {
	return func(o *options) {
		o.registry = r
	}
}
