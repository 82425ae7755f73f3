// Package positioning builds the parent/child tree of positioned components
// from the parent UIDs they declare.
//
// The tree is rebuilt lazily. Registry mutations only mark it dirty; the
// next query rebuilds it into a fresh set of nodes, so nodes handed out by
// an earlier build are never mutated afterwards.
package positioning

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strings"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/pubsub"
	"github.com/zjrosen/airframe/internal/tracing"
	"github.com/zjrosen/airframe/internal/uid"
)

// ErrParentNotFound is recorded for a component whose declared parent does
// not resolve to a positioned component.
var ErrParentNotFound = errors.New("parent not found")

// ErrCycleDetected is recorded for a component whose parent link would close
// a cycle, including a component naming itself as parent.
var ErrCycleDetected = errors.New("positioning cycle detected")

// Positioned is a component that can be placed relative to a parent.
type Positioned interface {
	UID() string
	// ParentUID returns the declared parent UID and whether one is declared.
	ParentUID() (string, bool)
}

// ParentPolicy decides what a broken parent reference does to a rebuild.
type ParentPolicy string

const (
	// Lenient demotes the component to a root and records the error.
	Lenient ParentPolicy = "lenient"
	// Strict additionally makes every tree query fail with the recorded errors.
	Strict ParentPolicy = "strict"
)

// ParseParentPolicy validates a policy name. Empty means Lenient.
func ParseParentPolicy(s string) (ParentPolicy, error) {
	switch ParentPolicy(strings.ToLower(s)) {
	case "", Lenient:
		return Lenient, nil
	case Strict:
		return Strict, nil
	default:
		return "", fmt.Errorf("invalid parent policy %q (must be lenient or strict)", s)
	}
}

// Node wraps one positioned component in a built tree.
type Node struct {
	component Positioned
	parent    *Node
	children  []*Node
	err       error
}

// UID returns the component's UID.
func (n *Node) UID() string { return n.component.UID() }

// Component returns the wrapped component.
func (n *Node) Component() Positioned { return n.component }

// Parent returns the parent node, or nil for a root.
func (n *Node) Parent() *Node { return n.parent }

// Children returns the direct children in registration order.
func (n *Node) Children() []*Node { return slices.Clone(n.children) }

// Err returns the error recorded for this component during the build.
func (n *Node) Err() error { return n.err }

// Descendants returns all nodes below n in depth-first pre-order.
func (n *Node) Descendants() []*Node {
	var out []*Node
	for _, c := range n.children {
		out = append(out, c)
		out = append(out, c.Descendants()...)
	}
	return out
}

// Summary describes a finished rebuild.
type Summary struct {
	Nodes  int
	Roots  int
	Errors int
}

// Tree is the lazily rebuilt positioning tree of one registry.
type Tree struct {
	registry  *uid.Registry
	policy    ParentPolicy
	tracer    trace.Tracer
	publisher pubsub.Publisher[Summary]

	dirty    bool
	nodes    map[string]*Node
	order    []*Node
	roots    []*Node
	errs     []error
	rebuilds int
}

// Option configures a Tree.
type Option func(*Tree)

// WithPolicy sets the parent policy. Default is Lenient.
func WithPolicy(p ParentPolicy) Option {
	return func(t *Tree) {
		t.policy = p
	}
}

// WithTracer records a span for every rebuild.
func WithTracer(tracer trace.Tracer) Option {
	return func(t *Tree) {
		t.tracer = tracer
	}
}

// WithPublisher publishes a Summary after every rebuild.
func WithPublisher(p pubsub.Publisher[Summary]) Option {
	return func(t *Tree) {
		t.publisher = p
	}
}

// NewTree creates a tree over registry and subscribes to its changes.
func NewTree(registry *uid.Registry, opts ...Option) *Tree {
	t := &Tree{
		registry: registry,
		policy:   Lenient,
		tracer:   noop.NewTracerProvider().Tracer("positioning"),
		dirty:    true,
	}
	for _, opt := range opts {
		opt(t)
	}
	registry.OnChange(func(uid.Change) { t.Invalidate() })
	return t
}

// Invalidate marks the tree dirty. It never rebuilds.
func (t *Tree) Invalidate() {
	t.dirty = true
}

// Dirty reports whether the next query will rebuild.
func (t *Tree) Dirty() bool {
	return t.dirty
}

// Rebuilds returns how many times the tree has been rebuilt.
func (t *Tree) Rebuilds() int {
	return t.rebuilds
}

// Policy returns the active parent policy.
func (t *Tree) Policy() ParentPolicy {
	return t.policy
}

func (t *Tree) update() error {
	if t.dirty {
		t.rebuild()
	}
	if t.policy == Strict && len(t.errs) > 0 {
		return errors.Join(t.errs...)
	}
	return nil
}

func (t *Tree) rebuild() {
	_, span := t.tracer.Start(context.Background(), tracing.SpanTreeRebuild)
	defer span.End()

	nodes := make(map[string]*Node)
	var order []*Node
	for _, entry := range t.registry.Entries() {
		if p, ok := entry.Object.(Positioned); ok {
			n := &Node{component: p}
			nodes[entry.UID] = n
			order = append(order, n)
		}
	}

	var errs []error
	for _, n := range order {
		parentUID, declared := n.component.ParentUID()
		if !declared {
			continue
		}
		if err := t.link(n, parentUID, nodes); err != nil {
			n.err = fmt.Errorf("component %q: %w", n.UID(), err)
			errs = append(errs, n.err)
			log.Warn(log.CatTree, "demoted to root", "uid", n.UID(), "parent", parentUID, "error", err)
		}
	}

	var roots []*Node
	for _, n := range order {
		if n.parent == nil {
			roots = append(roots, n)
		}
	}

	t.nodes, t.order, t.roots, t.errs = nodes, order, roots, errs
	t.dirty = false
	t.rebuilds++

	span.SetAttributes(
		attribute.Int(tracing.AttrTreeNodes, len(order)),
		attribute.Int(tracing.AttrTreeRoots, len(roots)),
		attribute.Int(tracing.AttrTreeErrors, len(errs)),
	)
	log.Debug(log.CatTree, "rebuilt", "nodes", len(order), "roots", len(roots), "errors", len(errs))
	if t.publisher != nil {
		t.publisher.Publish(pubsub.RebuiltEvent, Summary{Nodes: len(order), Roots: len(roots), Errors: len(errs)})
	}
}

func (t *Tree) link(n *Node, parentUID string, nodes map[string]*Node) error {
	if parentUID == "" {
		return fmt.Errorf("declared parent: %w", uid.ErrEmptyUID)
	}
	parent, ok := nodes[parentUID]
	if !ok {
		if entry, err := t.registry.Resolve(parentUID); err == nil {
			return fmt.Errorf("parent %q is a %s, not a positioned component: %w", parentUID, entry.Kind, ErrParentNotFound)
		}
		return fmt.Errorf("parent %q: %w", parentUID, ErrParentNotFound)
	}
	for p := parent; p != nil; p = p.parent {
		if p == n {
			return fmt.Errorf("parent %q: %w", parentUID, ErrCycleDetected)
		}
	}
	n.parent = parent
	parent.children = append(parent.children, n)
	return nil
}

// Roots returns every node without a resolvable parent, in registration
// order. Under the Strict policy it also returns the joined per-component
// errors.
func (t *Tree) Roots() ([]*Node, error) {
	err := t.update()
	return slices.Clone(t.roots), err
}

// RootsWithChildren returns the roots that have at least one child.
func (t *Tree) RootsWithChildren() ([]*Node, error) {
	roots, err := t.Roots()
	return slices.DeleteFunc(roots, func(n *Node) bool { return len(n.children) == 0 }), err
}

// LargestRoot returns the root with the most descendants, the first one on
// ties, or nil for an empty tree.
func (t *Tree) LargestRoot() (*Node, error) {
	roots, err := t.Roots()
	var best *Node
	bestCount := -1
	for _, r := range roots {
		if c := len(r.Descendants()); c > bestCount {
			best, bestCount = r, c
		}
	}
	return best, err
}

// Node returns the node of a positioned component.
func (t *Tree) Node(id string) (*Node, error) {
	if err := t.update(); err != nil {
		return nil, err
	}
	n, ok := t.nodes[id]
	if !ok {
		if t.registry.HasObject(id) {
			return nil, fmt.Errorf("%q is not a positioned component: %w", id, uid.ErrTypeMismatch)
		}
		return nil, fmt.Errorf("positioned component %q: %w", id, uid.ErrUIDNotFound)
	}
	return n, nil
}

// Parent returns the parent node of id, or nil when id is a root.
func (t *Tree) Parent(id string) (*Node, error) {
	n, err := t.Node(id)
	if err != nil {
		return nil, err
	}
	return n.parent, nil
}

// Children returns the children of n, all descendants in depth-first
// pre-order when recursive is set.
func (t *Tree) Children(n *Node, recursive bool) []*Node {
	if recursive {
		return n.Descendants()
	}
	return n.Children()
}

// Nodes returns every node in registration order.
func (t *Tree) Nodes() ([]*Node, error) {
	err := t.update()
	return slices.Clone(t.order), err
}

// Errors returns the per-component errors recorded by the last rebuild.
func (t *Tree) Errors() []error {
	_ = t.update()
	return slices.Clone(t.errs)
}

// Walk visits every node depth-first, roots in registration order.
func (t *Tree) Walk(fn func(n *Node, depth int)) error {
	roots, err := t.Roots()
	if err != nil {
		return err
	}
	var visit func(n *Node, depth int)
	visit = func(n *Node, depth int) {
		fn(n, depth)
		for _, c := range n.children {
			visit(c, depth+1)
		}
	}
	for _, r := range roots {
		visit(r, 0)
	}
	return nil
}
