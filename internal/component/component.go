package component

import (
	"errors"
	"fmt"

	"github.com/zjrosen/airframe/internal/invalidation"
	"github.com/zjrosen/airframe/internal/lazy"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/uid"
)

// base is the part every component shares: identity, model and
// invalidation node.
type base struct {
	model *Model
	uid   string
	kind  uid.Kind
	node  *invalidation.Node
}

func newBase(m *Model, id string, kind uid.Kind, owner *invalidation.Node) base {
	if owner == nil {
		owner = m.node
	}
	return base{model: m, uid: id, kind: kind, node: m.bus.NewNode(id, owner)}
}

func (b *base) UID() string { return b.uid }

func (b *base) Kind() uid.Kind { return b.kind }

func (b *base) Invalidate() { b.node.Invalidate("") }

// InvalidateFrom is Invalidate naming the upstream change.
func (b *base) InvalidateFrom(source string) { b.node.Invalidate(source) }

func (b *base) Clear() { b.node.ClearOwn() }

func (b *base) invalidationNode() *invalidation.Node { return b.node }

// rename updates the component's own UID.
func (b *base) rename(oldID, newID string) {
	if b.uid == oldID {
		b.uid = newID
		b.node.SetName(newID)
	}
}

func (b *base) reference(id string, referrer uid.Referrer) {
	b.model.registry.RegisterReference(id, referrer)
}

func (b *base) dereference(id string, referrer uid.Referrer) {
	b.model.registry.UnregisterReference(id, referrer)
}

// placed is what a child needs from its positioning parent.
type placed interface {
	UID() string
	WorldTransform() (positioning.Matrix, error)
	EffectiveSymmetry() positioning.Symmetry
	invalidationNode() *invalidation.Node
}

// positioned is a component with a transform and an optional parent.
type positioned struct {
	base
	self      uid.Referrer
	parentUID string
	transform positioning.Transform
	symmetry  positioning.Symmetry
	world     *lazy.Cache[*positioned, positioning.Matrix]

	cancelParent func()
}

// Placement is where a positioned component sits.
type Placement struct {
	// Parent is the UID of the positioning parent, empty for none.
	Parent    string
	Transform positioning.Transform
	// Symmetry is the mirror plane. Empty inherits the parent's.
	Symmetry positioning.Symmetry
}

func normalizeTransform(t positioning.Transform) positioning.Transform {
	if t.Scaling == (positioning.Vec3{}) {
		t.Scaling = positioning.Vec3{X: 1, Y: 1, Z: 1}
	}
	if t.TranslationType == "" {
		t.TranslationType = positioning.AbsLocal
	}
	return t
}

func (p *positioned) init(m *Model, id string, kind uid.Kind, self uid.Referrer, placement Placement) {
	p.base = newBase(m, id, kind, nil)
	p.self = self
	p.parentUID = placement.Parent
	p.transform = normalizeTransform(placement.Transform)
	p.symmetry = placement.Symmetry
	p.world = lazy.Named(id+".world", p, (*positioned).computeWorld)
	p.node.Track(p.world)
}

func (p *positioned) ParentUID() (string, bool) {
	return p.parentUID, p.parentUID != ""
}

// SetParent moves the component under another parent. Empty makes it a
// root.
func (p *positioned) SetParent(parentUID string) {
	if parentUID == p.parentUID {
		return
	}
	if p.parentUID != "" {
		p.dereference(p.parentUID, p.self)
	}
	p.parentUID = parentUID
	if parentUID != "" {
		p.reference(parentUID, p.self)
	}
	p.model.tree.Invalidate()
	p.InvalidateFrom(parentUID)
}

func (p *positioned) Transform() positioning.Transform { return p.transform }

// SetTransform replaces the local transform.
func (p *positioned) SetTransform(t positioning.Transform) {
	p.transform = normalizeTransform(t)
	p.Invalidate()
}

// Translate shifts the local translation by delta.
func (p *positioned) Translate(delta positioning.Vec3) {
	p.transform.Translation = p.transform.Translation.Add(delta)
	log.Debug(log.CatInvalidate, "translated", "uid", p.uid, "delta", delta)
	p.Invalidate()
}

// Symmetry returns the component's own symmetry setting.
func (p *positioned) Symmetry() positioning.Symmetry { return p.symmetry }

// SetSymmetry sets the mirror plane. SymmetryInherit follows the parent.
func (p *positioned) SetSymmetry(s positioning.Symmetry) {
	p.symmetry = s
	p.Invalidate()
}

// EffectiveSymmetry is the component's symmetry, inherited from the
// positioning parent when unset. A root without one has none.
func (p *positioned) EffectiveSymmetry() positioning.Symmetry {
	if p.symmetry != positioning.SymmetryInherit {
		return p.symmetry
	}
	parent, err := p.parent()
	if err != nil || parent == nil {
		return positioning.SymmetryNone
	}
	return parent.EffectiveSymmetry()
}

// WorldTransform returns the local transform composed with the parent
// chain.
func (p *positioned) WorldTransform() (positioning.Matrix, error) {
	return p.world.Get()
}

func (p *positioned) parent() (placed, error) {
	n, err := p.model.tree.Parent(p.uid)
	if err != nil || n == nil {
		return nil, err
	}
	parent, ok := n.Component().(placed)
	if !ok {
		return nil, fmt.Errorf("parent %q of %q cannot be placed: %w", n.UID(), p.uid, positioning.ErrParentNotFound)
	}
	return parent, nil
}

func (p *positioned) computeWorld() (positioning.Matrix, error) {
	if p.cancelParent != nil {
		p.cancelParent()
		p.cancelParent = nil
	}

	parent, err := p.parent()
	if err != nil {
		return positioning.Matrix{}, err
	}
	if parent == nil {
		return p.transform.World(positioning.Identity(), false), nil
	}

	parentWorld, err := parent.WorldTransform()
	if err != nil {
		return positioning.Matrix{}, fmt.Errorf("parent %q: %w", parent.UID(), err)
	}

	parentUID := parent.UID()
	cancel, err := parent.invalidationNode().Subscribe(p.node, func() { p.InvalidateFrom(parentUID) })
	switch {
	case errors.Is(err, invalidation.ErrSubscriptionCycle):
		// The parent already owns this node.
	case err != nil:
		return positioning.Matrix{}, err
	default:
		p.cancelParent = cancel
	}
	return p.transform.World(parentWorld, true), nil
}

// notifyUIDChange rewrites the stored parent UID and the component's own
// UID.
func (p *positioned) notifyUIDChange(oldID, newID string) {
	if p.parentUID == oldID {
		p.parentUID = newID
	}
	p.rename(oldID, newID)
}

// remove drops the component from the registry and the bus.
func (p *positioned) remove() {
	if p.cancelParent != nil {
		p.cancelParent()
		p.cancelParent = nil
	}
	p.model.registry.UnregisterReferences(p.self)
	p.node.Detach()
	p.model.registry.TryUnregister(p.uid)
}
