package errz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestErrorMessage(t *testing.T) {
	err := Newf(ErrConfig, "unknown transform %q", "nope")
	require.Equal(t, `config error: unknown transform "nope"`, err.Error())

	wrapped := New(ErrSandbox, "decoder failed").WithCause(errors.New("boom"))
	require.Equal(t, "sandbox error: decoder failed: boom", wrapped.Error())
}

func TestErrorsIsKind(t *testing.T) {
	err := fmt.Errorf("running: %w", New(ErrInvariant, "empty sequence"))
	require.True(t, errors.Is(err, Invariant))
	require.False(t, errors.Is(err, Config))

	kind, ok := KindOf(err)
	require.True(t, ok)
	require.Equal(t, ErrInvariant, kind)

	_, ok = KindOf(errors.New("plain"))
	require.False(t, ok)
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("timeout")
	err := New(ErrSandbox, "decode").WithCause(cause)
	require.True(t, errors.Is(err, cause))
}
