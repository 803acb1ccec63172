// Package match provides composable, side-effect-free predicates over syntax
// tree shapes.
//
// Matchers are built from small combinators and may refer to themselves: a
// matcher declared with Declare can appear inside its own definition, which is
// bound afterwards with Bind. The reference is resolved when matching, so a
// pattern such as "a concat call whose receiver is a string or another concat
// call" recognizes chains of any length.
//
//	chain := match.Declare[ast.Node]()
//	chain.Bind(match.Call(
//		match.ConstMember(match.Or(match.AnyString(), chain), "concat"),
//		match.Each(match.AnyExpression()),
//	))
package match

// Matcher is a predicate over a value of type T. Implementations must not
// modify the value they inspect.
type Matcher[T any] interface {
	Match(v T) bool
}

// Func adapts an ordinary function to the Matcher interface.
type Func[T any] func(v T) bool

// Match calls f(v).
func (f Func[T]) Match(v T) bool { return f(v) }

// Any matches every value. A nil matcher passed to a structural constructor
// behaves like Any.
func Any[T any]() Matcher[T] {
	return Func[T](func(T) bool { return true })
}

// Equal matches values equal to want.
func Equal[T comparable](want T) Matcher[T] {
	return Func[T](func(v T) bool { return v == want })
}

// Or matches when any of ms matches. Matchers are tried in order and the
// first match wins.
func Or[T any](ms ...Matcher[T]) Matcher[T] {
	return Func[T](func(v T) bool {
		for _, m := range ms {
			if m.Match(v) {
				return true
			}
		}
		return false
	})
}

// And matches when all of ms match.
func And[T any](ms ...Matcher[T]) Matcher[T] {
	return Func[T](func(v T) bool {
		for _, m := range ms {
			if !m.Match(v) {
				return false
			}
		}
		return true
	})
}

// Not inverts m.
func Not[T any](m Matcher[T]) Matcher[T] {
	return Func[T](func(v T) bool { return !m.Match(v) })
}

// Ref is a forward-declared matcher. It can be referenced by other matchers
// before its own definition exists; Bind supplies the definition.
type Ref[T any] struct {
	m Matcher[T]
}

// Declare returns an unbound reference.
func Declare[T any]() *Ref[T] {
	return &Ref[T]{}
}

// Bind sets the definition of the reference. It panics when called twice,
// since a reference shared by other matchers must not change meaning after
// construction.
func (r *Ref[T]) Bind(m Matcher[T]) *Ref[T] {
	if r.m != nil {
		panic("match: reference bound twice")
	}
	r.m = m
	return r
}

// Match delegates to the bound definition. Matching an unbound reference is a
// construction bug and panics.
func (r *Ref[T]) Match(v T) bool {
	if r.m == nil {
		panic("match: reference used before Bind")
	}
	return r.m.Match(v)
}

// Capture wraps a matcher and remembers the last value it matched.
type Capture[T any] struct {
	m     Matcher[T]
	value T
	ok    bool
}

// NewCapture returns a capturing wrapper around m; a nil m captures anything.
func NewCapture[T any](m Matcher[T]) *Capture[T] {
	if m == nil {
		m = Any[T]()
	}
	return &Capture[T]{m: m}
}

// Match records v when the wrapped matcher accepts it.
func (c *Capture[T]) Match(v T) bool {
	if !c.m.Match(v) {
		return false
	}
	c.value, c.ok = v, true
	return true
}

// Current returns the most recently captured value and whether any value has
// been captured.
func (c *Capture[T]) Current() (T, bool) {
	return c.value, c.ok
}

func orAny[T any](m Matcher[T]) Matcher[T] {
	if m == nil {
		return Any[T]()
	}
	return m
}
