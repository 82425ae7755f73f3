package uid

import "fmt"

// Tag binds a Kind to the Go type stored under it, so resolution is checked
// against the kind at runtime and typed at compile time.
type Tag[T any] struct {
	kind Kind
}

// NewTag creates the tag for objects of type T registered as kind.
func NewTag[T any](kind Kind) Tag[T] {
	return Tag[T]{kind: kind}
}

// Kind returns the registry kind of the tag.
func (t Tag[T]) Kind() Kind {
	return t.kind
}

// Register stores object under id with the tag's kind.
func Register[T any](r *Registry, tag Tag[T], id string, object T) error {
	return r.Register(id, object, tag.kind)
}

// Resolve returns the object registered under id. It fails with
// ErrUIDNotFound when id is unknown and ErrTypeMismatch when id was
// registered with a different kind.
func Resolve[T any](r *Registry, tag Tag[T], id string) (T, error) {
	var zero T

	entry, err := r.Resolve(id)
	if err != nil {
		return zero, err
	}
	if entry.Kind != tag.kind {
		return zero, fmt.Errorf("object with uid %q is not a %s but a %s: %w", id, tag.kind, entry.Kind, ErrTypeMismatch)
	}
	object, ok := entry.Object.(T)
	if !ok {
		return zero, fmt.Errorf("object with uid %q has kind %s but type %T: %w", id, entry.Kind, entry.Object, ErrTypeMismatch)
	}
	return object, nil
}

// ResolveAll returns every object registered with the tag's kind, in
// registration order.
func ResolveAll[T any](r *Registry, tag Tag[T]) []T {
	var out []T
	for _, id := range r.order {
		entry := r.entries[id]
		if entry.Kind != tag.kind {
			continue
		}
		if object, ok := entry.Object.(T); ok {
			out = append(out, object)
		}
	}
	return out
}
