package transform

import (
	"sort"

	"github.com/hashicorp/go-multierror"

	"github.com/deepnoodle-ai/untangle/errz"
)

// Registry is an ordered set of transforms with unique names. A registry is
// read-only once built and may be shared by concurrent pipelines.
type Registry struct {
	order  []*Transform
	byName map[string]*Transform
}

// NewRegistry returns a registry holding ts in the given order.
func NewRegistry(ts ...*Transform) (*Registry, error) {
	r := &Registry{byName: map[string]*Transform{}}
	for _, t := range ts {
		if err := r.Register(t); err != nil {
			return nil, err
		}
	}
	return r, nil
}

// Register appends t. Names must be non-empty and unique.
func (r *Registry) Register(t *Transform) error {
	if t == nil || t.Name == "" {
		return errz.New(errz.ErrConfig, "transform has no name")
	}
	if t.Visitor == nil {
		return errz.Newf(errz.ErrConfig, "transform %q has no visitor", t.Name)
	}
	if _, ok := r.byName[t.Name]; ok {
		return errz.Newf(errz.ErrConfig, "duplicate transform %q", t.Name)
	}
	r.order = append(r.order, t)
	r.byName[t.Name] = t
	return nil
}

// Get returns the transform registered under name.
func (r *Registry) Get(name string) (*Transform, bool) {
	t, ok := r.byName[name]
	return t, ok
}

// Names returns the registered names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.order))
	for _, t := range r.order {
		names = append(names, t.Name)
	}
	return names
}

// All returns the transforms in registration order.
func (r *Registry) All() []*Transform {
	return append([]*Transform(nil), r.order...)
}

// Select returns the transforms to run. With no names, every registered
// transform whose tags are all enabled is returned in registration order.
// With names, exactly those transforms are returned in the order given; an
// unknown name or a named transform needing a tag that is not enabled is a
// configuration error. All problems are reported together.
func (r *Registry) Select(names []string, tags []Tag) ([]*Transform, error) {
	if len(names) == 0 {
		var out []*Transform
		for _, t := range r.order {
			if t.enabledBy(tags) {
				out = append(out, t)
			}
		}
		return out, nil
	}

	var (
		out    []*Transform
		result *multierror.Error
		seen   = map[string]bool{}
	)
	for _, name := range names {
		t, ok := r.byName[name]
		switch {
		case !ok:
			result = multierror.Append(result, errz.Newf(errz.ErrConfig,
				"unknown transform %q (available: %v)", name, sortedNames(r)))
		case !t.enabledBy(tags):
			result = multierror.Append(result, errz.Newf(errz.ErrConfig,
				"transform %q requires tags %v, enabled: %v", name, t.Tags, tags))
		case seen[name]:
			// Listing a pass twice does not run it twice per iteration.
		default:
			seen[name] = true
			out = append(out, t)
		}
	}
	if err := result.ErrorOrNil(); err != nil {
		return nil, err
	}
	return out, nil
}

func sortedNames(r *Registry) []string {
	names := r.Names()
	sort.Strings(names)
	return names
}
