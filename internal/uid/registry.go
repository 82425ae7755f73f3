// Package uid implements the UID registry of a model: the table that maps
// unique string identifiers to registered objects, and to the referrers
// that store those identifiers.
//
// References may name a UID before it is registered. Only resolving an
// unknown UID fails, which is what lets a document loader create objects
// in document order rather than dependency order.
//
// A Registry is owned by exactly one model and is not safe for concurrent
// use; callers serialise all access.
package uid

import (
	"fmt"
	"slices"
	"strconv"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/pubsub"
)

// Kind identifies an object category in the registry.
type Kind string

// Referrer is an object that stores UID strings naming other objects.
// NotifyUIDChange is called after a rename so the referrer can rewrite every
// stored copy of oldUID. It must not call back into the registry.
type Referrer interface {
	NotifyUIDChange(oldUID, newUID string)
}

// Entry is a registered (object, kind) pair.
type Entry struct {
	UID    string
	Kind   Kind
	Object any
}

// ChangeType classifies a registry mutation.
type ChangeType string

const (
	ChangeRegistered   ChangeType = "registered"
	ChangeUnregistered ChangeType = "unregistered"
	ChangeRenamed      ChangeType = "renamed"
	ChangeCleared      ChangeType = "cleared"
)

// Change describes a successful registry mutation.
type Change struct {
	Type   ChangeType
	UID    string
	OldUID string // set for renames
	Kind   Kind
}

type refEntry struct {
	referrer Referrer
	count    int
}

// Registry maps UIDs to objects and to the referrers pointing at them.
type Registry struct {
	entries   map[string]*Entry
	order     []string // registration order
	refs      map[string][]refEntry
	hooks     []func(Change)
	publisher pubsub.Publisher[Change]
}

// Option configures a Registry.
type Option func(*Registry)

// WithPublisher publishes every successful mutation to p.
func WithPublisher(p pubsub.Publisher[Change]) Option {
	return func(r *Registry) {
		r.publisher = p
	}
}

// NewRegistry creates an empty registry.
func NewRegistry(opts ...Option) *Registry {
	r := &Registry{
		entries: make(map[string]*Entry),
		refs:    make(map[string][]refEntry),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// OnChange registers fn to run after every successful Register, Unregister,
// Rename and Clear. The positioning tree uses it to mark itself dirty.
func (r *Registry) OnChange(fn func(Change)) {
	r.hooks = append(r.hooks, fn)
}

func (r *Registry) changed(c Change) {
	for _, fn := range r.hooks {
		fn(c)
	}
	if r.publisher != nil {
		eventType := pubsub.UpdatedEvent
		switch c.Type {
		case ChangeRegistered:
			eventType = pubsub.CreatedEvent
		case ChangeUnregistered, ChangeCleared:
			eventType = pubsub.DeletedEvent
		case ChangeRenamed:
			eventType = pubsub.RenamedEvent
		}
		r.publisher.Publish(eventType, c)
	}
}

// Register stores object under id with the given kind.
func (r *Registry) Register(id string, object any, kind Kind) error {
	if id == "" {
		return fmt.Errorf("registering %s: %w", kind, ErrEmptyUID)
	}
	if existing, ok := r.entries[id]; ok {
		return fmt.Errorf("registering %s %q: %w (already registered to %s)", kind, id, ErrDuplicateUID, existing.Kind)
	}

	r.entries[id] = &Entry{UID: id, Kind: kind, Object: object}
	r.order = append(r.order, id)
	log.Debug(log.CatRegistry, "registered", "uid", id, "kind", kind)

	r.changed(Change{Type: ChangeRegistered, UID: id, Kind: kind})
	return nil
}

// Unregister removes the registration of id. Fails with ErrUIDNotFound if
// id is not registered.
func (r *Registry) Unregister(id string) error {
	if !r.TryUnregister(id) {
		return fmt.Errorf("unregistering %q: %w", id, ErrUIDNotFound)
	}
	return nil
}

// TryUnregister removes the registration of id and reports whether it existed.
// It tolerates arbitrary teardown order.
func (r *Registry) TryUnregister(id string) bool {
	entry, ok := r.entries[id]
	if !ok {
		return false
	}
	delete(r.entries, id)
	r.order = slices.DeleteFunc(r.order, func(s string) bool { return s == id })
	log.Debug(log.CatRegistry, "unregistered", "uid", id, "kind", entry.Kind)

	r.changed(Change{Type: ChangeUnregistered, UID: id, Kind: entry.Kind})
	return true
}

// HasObject reports whether id is registered.
func (r *Registry) HasObject(id string) bool {
	_, ok := r.entries[id]
	return ok
}

// IsType reports whether id is registered with the given kind.
func (r *Registry) IsType(id string, kind Kind) bool {
	entry, ok := r.entries[id]
	return ok && entry.Kind == kind
}

// Resolve returns the entry registered under id.
func (r *Registry) Resolve(id string) (Entry, error) {
	entry, ok := r.entries[id]
	if !ok {
		return Entry{}, fmt.Errorf("no object is registered for uid %q: %w", id, ErrUIDNotFound)
	}
	return *entry, nil
}

// Entries returns a snapshot of all registrations in registration order.
func (r *Registry) Entries() []Entry {
	out := make([]Entry, 0, len(r.order))
	for _, id := range r.order {
		out = append(out, *r.entries[id])
	}
	return out
}

// Len returns the number of registered objects.
func (r *Registry) Len() int {
	return len(r.entries)
}

// RegisterReference records that referrer stores id. The same referrer may
// reference id several times; each call must be paired with one
// UnregisterReference. id does not need to be registered yet.
func (r *Registry) RegisterReference(id string, referrer Referrer) {
	if id == "" || referrer == nil {
		return
	}
	list := r.refs[id]
	for i := range list {
		if list[i].referrer == referrer {
			list[i].count++
			return
		}
	}
	r.refs[id] = append(list, refEntry{referrer: referrer, count: 1})
}

// UnregisterReference drops one reference from referrer to id and reports
// whether one existed.
func (r *Registry) UnregisterReference(id string, referrer Referrer) bool {
	list := r.refs[id]
	for i := range list {
		if list[i].referrer != referrer {
			continue
		}
		list[i].count--
		if list[i].count == 0 {
			list = slices.Delete(list, i, i+1)
		}
		if len(list) == 0 {
			delete(r.refs, id)
		} else {
			r.refs[id] = list
		}
		return true
	}
	return false
}

// UnregisterReferences drops every outgoing reference of referrer.
func (r *Registry) UnregisterReferences(referrer Referrer) {
	for id, list := range r.refs {
		list = slices.DeleteFunc(list, func(e refEntry) bool { return e.referrer == referrer })
		if len(list) == 0 {
			delete(r.refs, id)
		} else {
			r.refs[id] = list
		}
	}
}

// IsReferenced reports whether any referrer stores id.
func (r *Registry) IsReferenced(id string) bool {
	return len(r.refs[id]) > 0
}

// References returns the referrers storing id, in first-reference order.
func (r *Registry) References(id string) []Referrer {
	list := r.refs[id]
	out := make([]Referrer, 0, len(list))
	for _, e := range list {
		out = append(out, e.referrer)
	}
	return out
}

// Rename re-keys the registration of oldID to newID and notifies every
// referrer of oldID. Either the whole rename happens or, on error, nothing
// changes. The renamed object itself is notified too when it implements
// Referrer, so it can update its own UID field.
func (r *Registry) Rename(oldID, newID string) error {
	if newID == "" {
		return fmt.Errorf("renaming %q: %w", oldID, ErrEmptyUID)
	}
	entry, ok := r.entries[oldID]
	if !ok {
		return fmt.Errorf("renaming %q: %w", oldID, ErrUIDNotFound)
	}
	if oldID == newID {
		return nil
	}
	if existing, taken := r.entries[newID]; taken {
		return fmt.Errorf("renaming %q to %q: %w (already registered to %s)", oldID, newID, ErrDuplicateUID, existing.Kind)
	}

	delete(r.entries, oldID)
	entry.UID = newID
	r.entries[newID] = entry
	r.order[slices.Index(r.order, oldID)] = newID

	referrers := r.refs[oldID]
	delete(r.refs, oldID)

	notifiedSelf := false
	for _, e := range referrers {
		e.referrer.NotifyUIDChange(oldID, newID)
		if e.referrer == entry.Object {
			notifiedSelf = true
		}
	}
	if self, ok := entry.Object.(Referrer); ok && !notifiedSelf {
		self.NotifyUIDChange(oldID, newID)
	}

	// Merge with references that already targeted newID as a forward reference.
	merged := r.refs[newID]
	for _, e := range referrers {
		found := false
		for i := range merged {
			if merged[i].referrer == e.referrer {
				merged[i].count += e.count
				found = true
				break
			}
		}
		if !found {
			merged = append(merged, e)
		}
	}
	if len(merged) > 0 {
		r.refs[newID] = merged
	}

	log.Info(log.CatRegistry, "renamed", "from", oldID, "to", newID, "referrers", len(referrers))
	r.changed(Change{Type: ChangeRenamed, UID: newID, OldUID: oldID, Kind: entry.Kind})
	return nil
}

// MakeUnique returns base if it is free, otherwise the first free UID of the
// form base_1, base_2, ...
func (r *Registry) MakeUnique(base string) string {
	if !r.HasObject(base) {
		return base
	}
	for i := 1; ; i++ {
		candidate := base + "_" + strconv.Itoa(i)
		if !r.HasObject(candidate) {
			return candidate
		}
	}
}

// Clear drops every registration and reference.
func (r *Registry) Clear() {
	r.entries = make(map[string]*Entry)
	r.order = nil
	r.refs = make(map[string][]refEntry)
	r.changed(Change{Type: ChangeCleared})
}
