// Package invalidation propagates cache invalidation through a model.
//
// Every component owns a Node. Invalidating a node clears the caches it
// tracks, invalidates its structurally-owned children, then runs the
// callbacks other components subscribed on it. Subscriptions are the only
// way to cross ownership-tree boundaries, e.g. a fuselage whose cut shape
// depends on a duct that lives elsewhere in the model.
//
// Invalidation requested while a dispatch is running is queued and drained
// once the current node is done. Within one dispatch a node is cleared at
// most once, so subscription loops terminate.
package invalidation

import (
	"errors"
	"fmt"
	"slices"

	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/pubsub"
)

// ErrSubscriptionCycle is returned when a node subscribes to itself or to one
// of its ownership ancestors. Those already invalidate it through ownership.
var ErrSubscriptionCycle = errors.New("subscription on self or ownership ancestor")

// Clearer is anything that can drop derived state, typically a lazy.Cache.
type Clearer interface {
	Clear()
}

// Event describes one node invalidation.
type Event struct {
	Node   string
	Source string // informational, empty when the caller gave none
}

type request struct {
	node   *Node
	source string
}

// Bus coordinates invalidation dispatch for one model.
type Bus struct {
	dispatching bool
	queue       []request
	wave        map[*Node]struct{}
	publisher   pubsub.Publisher[Event]
	cleared     int
}

// Option configures a Bus.
type Option func(*Bus)

// WithPublisher publishes an Event for every cleared node.
func WithPublisher(p pubsub.Publisher[Event]) Option {
	return func(b *Bus) {
		b.publisher = p
	}
}

// NewBus creates an idle bus.
func NewBus(opts ...Option) *Bus {
	b := &Bus{}
	for _, opt := range opts {
		opt(b)
	}
	return b
}

// Dispatching reports whether an invalidation is in progress.
func (b *Bus) Dispatching() bool {
	return b.dispatching
}

// Cleared returns the total number of node clears performed so far.
func (b *Bus) Cleared() int {
	return b.cleared
}

func (b *Bus) enqueue(n *Node, source string) {
	b.queue = append(b.queue, request{node: n, source: source})
	if b.dispatching {
		return
	}

	b.dispatching = true
	b.wave = make(map[*Node]struct{})
	defer func() {
		b.dispatching = false
		b.wave = nil
		b.queue = nil
	}()

	for len(b.queue) > 0 {
		req := b.queue[0]
		b.queue = b.queue[1:]
		b.clear(req.node, req.source)
	}
}

func (b *Bus) clear(n *Node, source string) {
	if _, seen := b.wave[n]; seen {
		return
	}
	b.wave[n] = struct{}{}

	for _, c := range n.clearers {
		c.Clear()
	}
	b.cleared++
	log.Debug(log.CatInvalidate, "cleared", "node", n.name, "source", source)
	if b.publisher != nil {
		b.publisher.Publish(pubsub.InvalidatedEvent, Event{Node: n.name, Source: source})
	}

	for _, child := range slices.Clone(n.children) {
		b.clear(child, source)
	}
	for _, s := range slices.Clone(n.subs) {
		if s.active {
			s.fn()
		}
	}
}

type subscription struct {
	consumer *Node
	fn       func()
	active   bool
}

// Node is one participant of the ownership tree.
type Node struct {
	bus      *Bus
	name     string
	owner    *Node
	children []*Node
	clearers []Clearer
	subs     []*subscription // callbacks run when this node invalidates
	cancels  []func()        // subscriptions this node holds on producers
}

// NewNode creates a node owned by owner, or a root node when owner is nil.
func (b *Bus) NewNode(name string, owner *Node) *Node {
	n := &Node{bus: b, name: name, owner: owner}
	if owner != nil {
		owner.children = append(owner.children, n)
	}
	return n
}

// Name returns the node's label.
func (n *Node) Name() string {
	return n.name
}

// SetName relabels the node, e.g. after its component was renamed.
func (n *Node) SetName(name string) {
	n.name = name
}

// Owner returns the owning node, or nil for a root.
func (n *Node) Owner() *Node {
	return n.owner
}

// Children returns the structurally-owned child nodes.
func (n *Node) Children() []*Node {
	return slices.Clone(n.children)
}

// Track registers caches to clear when the node invalidates.
func (n *Node) Track(clearers ...Clearer) {
	n.clearers = append(n.clearers, clearers...)
}

// ClearOwn clears the caches tracked by n only. Nothing propagates and no
// subscriber runs.
func (n *Node) ClearOwn() {
	for _, c := range n.clearers {
		c.Clear()
	}
}

// Invalidate clears this node, its owned subtree and every subscriber.
// source names the upstream change for diagnostics only.
func (n *Node) Invalidate(source string) {
	n.bus.enqueue(n, source)
}

// IsAncestorOf reports whether n owns other, directly or transitively.
func (n *Node) IsAncestorOf(other *Node) bool {
	for p := other.owner; p != nil; p = p.owner {
		if p == n {
			return true
		}
	}
	return false
}

// Subscribe makes consumer's fn run whenever n invalidates. It fails with
// ErrSubscriptionCycle when n is consumer or one of consumer's ancestors.
// The returned cancel function is idempotent.
func (n *Node) Subscribe(consumer *Node, fn func()) (cancel func(), err error) {
	if n == consumer || n.IsAncestorOf(consumer) {
		return nil, fmt.Errorf("%s subscribing to %s: %w", consumer.name, n.name, ErrSubscriptionCycle)
	}

	s := &subscription{consumer: consumer, fn: fn, active: true}
	n.subs = append(n.subs, s)

	cancel = func() {
		if !s.active {
			return
		}
		s.active = false
		n.subs = slices.DeleteFunc(n.subs, func(other *subscription) bool { return other == s })
	}
	consumer.cancels = append(consumer.cancels, cancel)
	return cancel, nil
}

// Subscribers returns the number of active subscriptions on n.
func (n *Node) Subscribers() int {
	return len(n.subs)
}

// Detach removes n from its owner and drops every subscription n holds or
// receives, for n and its whole subtree.
func (n *Node) Detach() {
	if n.owner != nil {
		n.owner.children = slices.DeleteFunc(n.owner.children, func(c *Node) bool { return c == n })
		n.owner = nil
	}
	n.release()
}

func (n *Node) release() {
	for _, cancel := range n.cancels {
		cancel()
	}
	n.cancels = nil
	for _, s := range n.subs {
		s.active = false
	}
	n.subs = nil
	for _, child := range n.children {
		child.release()
	}
}
