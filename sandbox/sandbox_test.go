package sandbox

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/deepnoodle-ai/untangle/errz"
)

func TestCall(t *testing.T) {
	sb := New()
	ctx := context.Background()

	got, err := sb.Call(ctx, "function decode(n) { return String(n * 2); }", "decode", float64(21))
	require.NoError(t, err)
	require.Equal(t, "42", got)

	got, err = sb.Call(ctx, `function rev(s) { return s.split("").reverse().join(""); }`, "rev", "abc")
	require.NoError(t, err)
	require.Equal(t, "cba", got)

	got, err = sb.Call(ctx, `function hello() { return "hi"; }`, "hello")
	require.NoError(t, err)
	require.Equal(t, "hi", got)
}

func TestCallFreshRuntime(t *testing.T) {
	sb := New()
	src := "var n = 0; function next() { n++; return String(n); }"
	for i := 0; i < 2; i++ {
		got, err := sb.Call(context.Background(), src, "next")
		require.NoError(t, err)
		require.Equal(t, "1", got)
	}
}

func TestCallNoConsole(t *testing.T) {
	got, err := New().Call(context.Background(), "function f() { return typeof console; }", "f")
	require.NoError(t, err)
	require.Equal(t, "undefined", got)

	_, err = New().Call(context.Background(), `function f() { console.log("x"); return "y"; }`, "f")
	require.Error(t, err)
	require.True(t, errors.Is(err, errz.Sandbox))
}

func TestCallTimeout(t *testing.T) {
	sb := New(WithTimeout(50 * time.Millisecond))
	require.Equal(t, 50*time.Millisecond, sb.Timeout())

	start := time.Now()
	_, err := sb.Call(context.Background(), "function spin() { while (true) {} }", "spin")
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 5*time.Second)
}

func TestCallTimeoutDuringBuiltin(t *testing.T) {
	// A single builtin call gives the runtime no statement boundary to stop
	// at, so the caller gets the timeout while the runtime is still busy.
	src := `function f() {
		var s = new Array(3000001).join("abcdefgh");
		return s.split("").reverse().join("").slice(0, 1);
	}`
	start := time.Now()
	_, err := New(WithTimeout(20*time.Millisecond)).Call(context.Background(), src, "f")
	require.ErrorIs(t, err, ErrTimeout)
	require.Less(t, time.Since(start), 500*time.Millisecond)
}

func TestCallMaxSize(t *testing.T) {
	sb := New(WithMaxSize(64))
	require.Equal(t, 64, sb.MaxSize())
	require.Equal(t, DefaultMaxSize, New().MaxSize())
	require.Equal(t, DefaultMaxSize, New(WithMaxSize(0)).MaxSize())

	tests := []struct {
		name   string
		source string
		args   []any
		target error
	}{
		{
			name:   "within limits",
			source: "function f(s) { return s; }",
			args:   []any{"abc"},
		},
		{
			name:   "source",
			source: "function f() { return 'x'; }" + strings.Repeat(" ", 64),
			target: ErrTooLarge,
		},
		{
			name:   "string argument",
			source: "function f(s) { return 'x'; }",
			args:   []any{float64(1), strings.Repeat("a", 65)},
			target: ErrTooLarge,
		},
		{
			name:   "result",
			source: "function f() { return new Array(66).join('a'); }",
			target: ErrTooLarge,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := sb.Call(context.Background(), tt.source, "f", tt.args...)
			if tt.target == nil {
				require.NoError(t, err)
				require.Equal(t, "abc", got)
				return
			}
			require.ErrorIs(t, err, tt.target)
			require.ErrorIs(t, err, errz.Sandbox)
			require.Empty(t, got)
		})
	}
}

func TestCallContextCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Call(ctx, `function f() { return "x"; }`, "f")
	require.ErrorIs(t, err, context.Canceled)

	ctx, cancel = context.WithTimeout(context.Background(), 30*time.Millisecond)
	defer cancel()
	_, err = New(WithTimeout(time.Minute)).Call(ctx, "function spin() { for (;;) {} }", "spin")
	require.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestCallFailures(t *testing.T) {
	tests := []struct {
		name   string
		source string
		args   []any
		target error
	}{
		{name: "not a string", source: "function f() { return 1; }", target: ErrNotString},
		{name: "undefined result", source: "function f() {}", target: ErrNotString},
		{name: "not a function", source: "var f = 1;", target: ErrNotFunction},
		{name: "missing function", source: "function g() {}", target: ErrNotFunction},
		{name: "throws", source: `function f() { throw new Error("boom"); }`, target: errz.Sandbox},
		{name: "syntax error", source: "function f( {", target: errz.Sandbox},
		{name: "unsupported argument", source: `function f() { return ""; }`, args: []any{[]int{1}}, target: errz.Sandbox},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := New().Call(context.Background(), tt.source, "f", tt.args...)
			require.ErrorIs(t, err, tt.target)
			require.Empty(t, got)
			kind, ok := errz.KindOf(err)
			require.True(t, ok)
			require.Equal(t, errz.ErrSandbox, kind)
		})
	}
}

type observation struct {
	function string
	failed   bool
}

type fakeObserver struct {
	mu   sync.Mutex
	seen []observation
}

func (o *fakeObserver) EvaluationFinished(function string, _ time.Duration, err error) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.seen = append(o.seen, observation{function: function, failed: err != nil})
}

func TestCallObserver(t *testing.T) {
	obs := &fakeObserver{}
	sb := New(WithObserver(obs))
	_, err := sb.Call(context.Background(), `function ok() { return "x"; }`, "ok")
	require.NoError(t, err)
	_, err = sb.Call(context.Background(), "function bad() { return 1; }", "bad")
	require.Error(t, err)
	require.Equal(t, []observation{{function: "ok"}, {function: "bad", failed: true}}, obs.seen)
}

func TestCallConcurrent(t *testing.T) {
	sb := New()
	var wg sync.WaitGroup
	errs := make([]error, 8)
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			got, err := sb.Call(context.Background(), "function d(n) { return String(n + 1); }", "d", float64(i))
			if err == nil && got == "" {
				err = errors.New("empty result")
			}
			errs[i] = err
		}(i)
	}
	wg.Wait()
	for _, err := range errs {
		require.NoError(t, err)
	}
}
