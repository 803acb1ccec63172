// Package sandbox evaluates untrusted decoder functions.
//
// Every call runs in a fresh otto runtime that holds only the ECMAScript
// builtins: there is no console, no module loader and no access to files,
// the network or the host process. Evaluation is bounded by a wall-clock
// budget and by the caller's context, and sources, string arguments and
// results are bounded in size.
//
// otto only checks for interrupts between statements. A call that overruns
// its budget returns to the caller on time, but a long builtin keeps its
// goroutine busy until the builtin returns. otto has no memory limit.
package sandbox

import (
	"context"
	"fmt"
	"time"

	"github.com/robertkrimen/otto"
	"github.com/rs/zerolog"

	"github.com/deepnoodle-ai/untangle/errz"
)

const (
	// DefaultTimeout is the evaluation budget used when none is configured.
	DefaultTimeout = time.Second

	// DefaultMaxSize is the largest source, string argument or result, in
	// bytes, accepted when no limit is configured.
	DefaultMaxSize = 4 << 20
)

// Evaluation failures. They are returned as is or as the cause of an
// errz.ErrSandbox error, so errors.Is works for both.
var (
	ErrTimeout     = errz.New(errz.ErrSandbox, "evaluation exceeded its time budget")
	ErrNotFunction = errz.New(errz.ErrSandbox, "decoder is not a function")
	ErrNotString   = errz.New(errz.ErrSandbox, "decoder did not return a string")
	ErrTooLarge    = errz.New(errz.ErrSandbox, "input or result exceeds the size limit")
)

// Observer is notified after every evaluation.
type Observer interface {
	EvaluationFinished(function string, elapsed time.Duration, err error)
}

// Option configures a Sandbox.
type Option func(*Sandbox)

// WithTimeout sets the evaluation budget. Values below one nanosecond are
// ignored.
func WithTimeout(d time.Duration) Option {
	return func(s *Sandbox) {
		if d > 0 {
			s.timeout = d
		}
	}
}

// WithMaxSize sets the largest source, string argument or result accepted,
// in bytes. Values below one are ignored.
func WithMaxSize(n int) Option {
	return func(s *Sandbox) {
		if n > 0 {
			s.maxSize = n
		}
	}
}

// WithLogger sets the logger. The default discards everything.
func WithLogger(log zerolog.Logger) Option {
	return func(s *Sandbox) {
		s.log = log
	}
}

// WithObserver sets an observer for evaluation outcomes.
func WithObserver(o Observer) Option {
	return func(s *Sandbox) {
		s.observer = o
	}
}

// Sandbox evaluates functions defined by untrusted source. It keeps no state
// between calls and is safe for concurrent use.
type Sandbox struct {
	timeout  time.Duration
	maxSize  int
	log      zerolog.Logger
	observer Observer
}

// New returns a Sandbox.
func New(opts ...Option) *Sandbox {
	s := &Sandbox{timeout: DefaultTimeout, maxSize: DefaultMaxSize, log: zerolog.Nop()}
	for _, opt := range opts {
		if opt != nil {
			opt(s)
		}
	}
	return s
}

// Timeout returns the evaluation budget.
func (s *Sandbox) Timeout() time.Duration { return s.timeout }

// MaxSize returns the size limit in bytes.
func (s *Sandbox) MaxSize() int { return s.maxSize }

// halt is the value the interrupt handler panics with.
type halt struct{ cause error }

type outcome struct {
	result string
	err    error
}

// Call loads source into a fresh runtime, calls the global function name with
// args and returns its string result. Arguments must be strings or numbers.
func (s *Sandbox) Call(ctx context.Context, source, name string, args ...any) (result string, err error) {
	start := time.Now()
	defer func() {
		if s.observer != nil {
			s.observer.EvaluationFinished(name, time.Since(start), err)
		}
		if err != nil {
			s.log.Debug().Err(err).Str("function", name).Msg("sandbox evaluation failed")
		}
	}()
	if err := ctx.Err(); err != nil {
		return "", err
	}
	if err := s.checkSize("source", len(source)); err != nil {
		return "", err
	}
	for i, arg := range args {
		switch arg := arg.(type) {
		case string:
			if err := s.checkSize(fmt.Sprintf("argument %d", i), len(arg)); err != nil {
				return "", err
			}
		case float64, int, int64:
		default:
			return "", errz.Newf(errz.ErrSandbox, "unsupported argument type %T", arg)
		}
	}

	vm := otto.New()
	vm.Interrupt = make(chan func(), 1)
	if err := vm.Set("console", otto.UndefinedValue()); err != nil {
		return "", errz.New(errz.ErrSandbox, "preparing runtime").WithCause(err)
	}

	results := make(chan outcome, 1)
	go func() {
		var o outcome
		defer func() {
			if r := recover(); r != nil {
				if h, ok := r.(halt); ok {
					o = outcome{err: h.cause}
				} else {
					o = outcome{err: errz.New(errz.ErrSandbox, "runtime panic").WithCause(fmt.Errorf("%v", r))}
				}
			}
			results <- o
		}()
		o.result, o.err = s.call(vm, source, name, args)
	}()

	timer := time.NewTimer(s.timeout)
	defer timer.Stop()
	var cause error
	select {
	case o := <-results:
		return o.result, o.err
	case <-timer.C:
		cause = ErrTimeout
	case <-ctx.Done():
		cause = ctx.Err()
	}
	// The runtime stops at its next statement. Until then its goroutine
	// finishes on its own and the result is dropped.
	vm.Interrupt <- func() { panic(halt{cause: cause}) }
	return "", cause
}

func (s *Sandbox) checkSize(what string, n int) error {
	if n > s.maxSize {
		return errz.Newf(errz.ErrSandbox, "%s is %d bytes, limit %d", what, n, s.maxSize).WithCause(ErrTooLarge)
	}
	return nil
}

func (s *Sandbox) call(vm *otto.Otto, source, name string, args []any) (string, error) {
	if _, err := vm.Run(source); err != nil {
		return "", scriptError("loading source", err)
	}
	fn, err := vm.Get(name)
	if err != nil {
		return "", scriptError("resolving "+name, err)
	}
	if !fn.IsFunction() {
		return "", ErrNotFunction
	}
	value, err := fn.Call(otto.UndefinedValue(), args...)
	if err != nil {
		return "", scriptError("calling "+name, err)
	}
	if !value.IsString() {
		return "", ErrNotString
	}
	result := value.String()
	if err := s.checkSize("result", len(result)); err != nil {
		return "", err
	}
	return result, nil
}

func scriptError(action string, err error) error {
	return errz.New(errz.ErrSandbox, action).WithCause(err)
}
