// Package component holds the domain objects of an airframe model and the
// Model that owns them.
//
// A Model owns one UID registry, one positioning tree and one invalidation
// bus. Components register themselves and the UIDs they reference on
// construction, keep their derived geometry in lazy caches, and build it
// through the model's kernel. Every structural edit (adding, removing or
// renaming a component) invalidates the whole model.
//
// A Model and its components are not safe for concurrent use.
package component

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/trace"

	"github.com/zjrosen/airframe/internal/invalidation"
	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/pubsub"
	"github.com/zjrosen/airframe/internal/uid"
)

// Registry kinds and typed tags of every component type.
var (
	ProfileTag  = uid.NewTag[*Profile]("profile")
	SectionTag  = uid.NewTag[*Section]("section")
	SegmentTag  = uid.NewTag[*WingSegment]("segment")
	FuselageTag = uid.NewTag[*Fuselage]("fuselage")
	WingTag     = uid.NewTag[*Wing]("wing")
	DuctTag     = uid.NewTag[*Duct]("duct")
)

// Component is implemented by every model component.
type Component interface {
	UID() string
	Kind() uid.Kind
	// Invalidate clears the component's caches, its owned subtree and every
	// subscriber.
	Invalidate()
	// Clear drops the component's own caches without propagating.
	Clear()
}

// PositionedComponent is a component placed relative to an optional parent.
type PositionedComponent interface {
	Component
	ParentUID() (string, bool)
	WorldTransform() (positioning.Matrix, error)
	EffectiveSymmetry() positioning.Symmetry
}

// Model is one airframe.
type Model struct {
	id       uuid.UUID
	ctx      context.Context
	registry *uid.Registry
	tree     *positioning.Tree
	bus      *invalidation.Bus
	node     *invalidation.Node
	kernel   kernel.Kernel
}

type modelOptions struct {
	ctx          context.Context
	kernel       kernel.Kernel
	treeOpts     []positioning.Option
	registryOpts []uid.Option
	busOpts      []invalidation.Option
}

// Option configures a Model.
type Option func(*modelOptions)

// WithKernel sets the geometry kernel. Default is kernel.BoundsKernel.
func WithKernel(k kernel.Kernel) Option {
	return func(o *modelOptions) {
		o.kernel = k
	}
}

// WithContext sets the context passed to kernel calls.
func WithContext(ctx context.Context) Option {
	return func(o *modelOptions) {
		o.ctx = ctx
	}
}

// WithParentPolicy selects how the positioning tree treats broken parents.
func WithParentPolicy(p positioning.ParentPolicy) Option {
	return func(o *modelOptions) {
		o.treeOpts = append(o.treeOpts, positioning.WithPolicy(p))
	}
}

// WithTracer traces positioning tree rebuilds.
func WithTracer(t trace.Tracer) Option {
	return func(o *modelOptions) {
		o.treeOpts = append(o.treeOpts, positioning.WithTracer(t))
	}
}

// WithRegistryEvents publishes registry changes.
func WithRegistryEvents(p pubsub.Publisher[uid.Change]) Option {
	return func(o *modelOptions) {
		o.registryOpts = append(o.registryOpts, uid.WithPublisher(p))
	}
}

// WithTreeEvents publishes a summary after every tree rebuild.
func WithTreeEvents(p pubsub.Publisher[positioning.Summary]) Option {
	return func(o *modelOptions) {
		o.treeOpts = append(o.treeOpts, positioning.WithPublisher(p))
	}
}

// WithInvalidationEvents publishes every cleared node.
func WithInvalidationEvents(p pubsub.Publisher[invalidation.Event]) Option {
	return func(o *modelOptions) {
		o.busOpts = append(o.busOpts, invalidation.WithPublisher(p))
	}
}

// NewModel creates an empty model.
func NewModel(opts ...Option) *Model {
	o := modelOptions{ctx: context.Background(), kernel: kernel.BoundsKernel{}}
	for _, opt := range opts {
		opt(&o)
	}

	m := &Model{
		id:       uuid.New(),
		ctx:      o.ctx,
		registry: uid.NewRegistry(o.registryOpts...),
		bus:      invalidation.NewBus(o.busOpts...),
		kernel:   o.kernel,
	}
	m.node = m.bus.NewNode("model", nil)
	m.tree = positioning.NewTree(m.registry, o.treeOpts...)
	m.registry.OnChange(func(c uid.Change) {
		source := c.UID
		if c.Type == uid.ChangeCleared {
			source = string(c.Type)
		}
		m.node.Invalidate(source)
	})
	log.Debug(log.CatRegistry, "model created", "model", m.id)
	return m
}

// ID identifies the model instance in logs and traces.
func (m *Model) ID() uuid.UUID { return m.id }

// Registry returns the model's UID registry.
func (m *Model) Registry() *uid.Registry { return m.registry }

// Tree returns the model's positioning tree.
func (m *Model) Tree() *positioning.Tree { return m.tree }

// Bus returns the model's invalidation bus.
func (m *Model) Bus() *invalidation.Bus { return m.bus }

// Kernel returns the geometry kernel.
func (m *Model) Kernel() kernel.Kernel { return m.kernel }

// HasObject reports whether id is registered.
func (m *Model) HasObject(id string) bool {
	return m.registry.HasObject(id)
}

// ResolveObject returns the component registered under id.
func ResolveObject[T any](m *Model, tag uid.Tag[T], id string) (T, error) {
	return uid.Resolve(m.registry, tag, id)
}

// ResolveObjects returns every component of the tag's kind in registration
// order.
func ResolveObjects[T any](m *Model, tag uid.Tag[T]) []T {
	return uid.ResolveAll(m.registry, tag)
}

// Components returns every registered component in registration order.
func (m *Model) Components() []Component {
	var out []Component
	for _, e := range m.registry.Entries() {
		if c, ok := e.Object.(Component); ok {
			out = append(out, c)
		}
	}
	return out
}

// Component returns the component registered under id.
func (m *Model) Component(id string) (Component, error) {
	entry, err := m.registry.Resolve(id)
	if err != nil {
		return nil, err
	}
	c, ok := entry.Object.(Component)
	if !ok {
		return nil, fmt.Errorf("object %q of kind %s is not a component: %w", id, entry.Kind, uid.ErrTypeMismatch)
	}
	return c, nil
}

func positionedNodes(nodes []*positioning.Node) []PositionedComponent {
	out := make([]PositionedComponent, 0, len(nodes))
	for _, n := range nodes {
		if c, ok := n.Component().(PositionedComponent); ok {
			out = append(out, c)
		}
	}
	return out
}

// RootComponents returns the positioned components without a resolvable
// parent, in registration order.
func (m *Model) RootComponents() ([]PositionedComponent, error) {
	roots, err := m.tree.Roots()
	return positionedNodes(roots), err
}

// Parent returns the positioning parent of id, or nil for a root.
func (m *Model) Parent(id string) (PositionedComponent, error) {
	n, err := m.tree.Parent(id)
	if err != nil || n == nil {
		return nil, err
	}
	c, _ := n.Component().(PositionedComponent)
	return c, nil
}

// Children returns the positioning children of id, all descendants when
// recursive is set.
func (m *Model) Children(id string, recursive bool) ([]PositionedComponent, error) {
	n, err := m.tree.Node(id)
	if err != nil {
		return nil, err
	}
	return positionedNodes(m.tree.Children(n, recursive)), nil
}

// Rename changes a component's UID and updates every component that stores
// the old one. Call it before reading geometry that could capture the old
// UID.
func (m *Model) Rename(oldID, newID string) error {
	return m.registry.Rename(oldID, newID)
}

// Invalidate clears every cache in the model.
func (m *Model) Invalidate() {
	m.node.Invalidate("")
}

// Clear removes every component. Components obtained before must not be
// used afterwards.
func (m *Model) Clear() {
	for _, child := range m.node.Children() {
		child.Detach()
	}
	m.registry.Clear()
}
