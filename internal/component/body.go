package component

import (
	"fmt"
	"slices"

	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/lazy"
	"github.com/zjrosen/airframe/internal/log"
	"github.com/zjrosen/airframe/internal/positioning"
	"github.com/zjrosen/airframe/internal/uid"
)

// body is a positioned component lofted through its sections.
type body struct {
	positioned
	sections []*Section
	loft     *lazy.Cache[*body, kernel.Shape]
	mirrored *lazy.Cache[*body, kernel.Shape]
}

func (b *body) init(m *Model, id string, kind uid.Kind, self uid.Referrer, placement Placement) {
	b.positioned.init(m, id, kind, self, placement)
	b.loft = lazy.Named(id+".loft", b, (*body).computeLoft)
	b.mirrored = lazy.Named(id+".mirrored", b, (*body).computeMirrored)
	b.node.Track(b.loft, b.mirrored)
}

// register adds the component, its parent reference and its sections.
func (b *body) register(sections []SectionConfig) error {
	if err := b.model.registry.Register(b.uid, b.self, b.kind); err != nil {
		b.node.Detach()
		return err
	}
	if b.parentUID != "" {
		b.reference(b.parentUID, b.self)
	}
	for _, cfg := range sections {
		s, err := newSection(b.model, b, cfg)
		if err != nil {
			b.remove()
			return err
		}
		b.sections = append(b.sections, s)
	}
	return nil
}

// Sections returns the sections in lofting order.
func (b *body) Sections() []*Section {
	return slices.Clone(b.sections)
}

func (b *body) curves() ([]kernel.Section, error) {
	out := make([]kernel.Section, 0, len(b.sections))
	for _, s := range b.sections {
		c, err := s.Curve()
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Loft returns the solid through all sections.
func (b *body) Loft() (kernel.Shape, error) {
	return b.loft.Get()
}

func (b *body) computeLoft() (kernel.Shape, error) {
	curves, err := b.curves()
	if err != nil {
		return kernel.Shape{}, err
	}
	log.Debug(log.CatKernel, "building loft", "uid", b.uid, "sections", len(curves))
	return b.model.kernel.Loft(b.model.ctx, b.uid, curves)
}

// MirroredLoft returns the loft reflected in the effective symmetry plane.
// It reports false when the component has no symmetry.
func (b *body) MirroredLoft() (kernel.Shape, bool, error) {
	if sym := b.EffectiveSymmetry(); sym == positioning.SymmetryInherit || sym == positioning.SymmetryNone {
		return kernel.Shape{}, false, nil
	}
	shape, err := b.mirrored.Get()
	return shape, err == nil, err
}

func (b *body) computeMirrored() (kernel.Shape, error) {
	mirror := b.EffectiveSymmetry().Mirror()
	curves, err := b.curves()
	if err != nil {
		return kernel.Shape{}, err
	}
	for i, c := range curves {
		points := make([]positioning.Vec3, len(c.Points))
		for j, p := range c.Points {
			points[j] = mirror.Apply(p)
		}
		curves[i] = kernel.Section{Name: c.Name, Points: points}
	}
	return b.model.kernel.Loft(b.model.ctx, b.uid+"_mirrored", curves)
}

func (b *body) notifyUIDChange(oldID, newID string) {
	b.positioned.notifyUIDChange(oldID, newID)
}

func (b *body) remove() {
	for _, s := range b.sections {
		s.remove()
	}
	b.positioned.remove()
}

// cutter collects the ducts that cut a component and keeps it subscribed
// to them.
type cutter struct {
	cancels []func()
}

func (c *cutter) release() {
	for _, cancel := range c.cancels {
		cancel()
	}
	c.cancels = nil
}

// cut subtracts every duct targeting b from loft.
func (c *cutter) cut(b *body) (kernel.Shape, error) {
	c.release()

	loft, err := b.Loft()
	if err != nil {
		return kernel.Shape{}, err
	}

	var tools []kernel.Shape
	for _, d := range ResolveObjects(b.model, DuctTag) {
		if !d.Cuts(b.uid) {
			continue
		}
		ductUID := d.UID()
		cancel, err := d.node.Subscribe(b.node, func() { b.InvalidateFrom(ductUID) })
		if err != nil {
			return kernel.Shape{}, fmt.Errorf("subscribing %q to duct %q: %w", b.uid, ductUID, err)
		}
		c.cancels = append(c.cancels, cancel)

		shape, err := d.Loft()
		if err != nil {
			return kernel.Shape{}, fmt.Errorf("duct %q: %w", ductUID, err)
		}
		tools = append(tools, shape)
	}
	if len(tools) == 0 {
		return loft, nil
	}
	return b.model.kernel.Cut(b.model.ctx, loft, tools...)
}

// Fuselage is a lofted body that ducts may cut.
type Fuselage struct {
	body
	cutter
	cutLoft *lazy.Cache[*Fuselage, kernel.Shape]
}

var _ PositionedComponent = (*Fuselage)(nil)

// AddFuselage registers a fuselage and its sections.
func (m *Model) AddFuselage(id string, placement Placement, sections ...SectionConfig) (*Fuselage, error) {
	f := &Fuselage{}
	f.body.init(m, id, FuselageTag.Kind(), f, placement)
	f.cutLoft = lazy.Named(id+".cut", f, func(f *Fuselage) (kernel.Shape, error) { return f.cut(&f.body) })
	f.node.Track(f.cutLoft)
	if err := f.register(sections); err != nil {
		return nil, fmt.Errorf("adding fuselage: %w", err)
	}
	return f, nil
}

// CutLoft returns the loft with every duct that targets the fuselage
// removed.
func (f *Fuselage) CutLoft() (kernel.Shape, error) {
	return f.cutLoft.Get()
}

// NotifyUIDChange rewrites stored UIDs after a rename.
func (f *Fuselage) NotifyUIDChange(oldID, newID string) {
	f.notifyUIDChange(oldID, newID)
}

// Remove unregisters the fuselage and its sections.
func (f *Fuselage) Remove() {
	f.release()
	f.remove()
}

// Duct is a lofted tool cut out of the components it targets.
type Duct struct {
	body
	targets []string
}

var _ PositionedComponent = (*Duct)(nil)

// AddDuct registers a duct that cuts the components named by targets.
func (m *Model) AddDuct(id string, placement Placement, targets []string, sections ...SectionConfig) (*Duct, error) {
	d := &Duct{}
	d.body.init(m, id, DuctTag.Kind(), d, placement)
	if err := d.register(sections); err != nil {
		return nil, fmt.Errorf("adding duct: %w", err)
	}
	for _, target := range targets {
		d.AddTarget(target)
	}
	return d, nil
}

// Targets returns the UIDs of the components the duct cuts.
func (d *Duct) Targets() []string {
	return slices.Clone(d.targets)
}

// Cuts reports whether the duct targets id.
func (d *Duct) Cuts(id string) bool {
	return slices.Contains(d.targets, id)
}

// AddTarget makes the duct cut id. id may be registered later.
func (d *Duct) AddTarget(id string) {
	if id == "" || d.Cuts(id) {
		return
	}
	d.targets = append(d.targets, id)
	d.reference(id, d)
	d.invalidateTarget(id)
}

// RemoveTarget stops the duct from cutting id.
func (d *Duct) RemoveTarget(id string) {
	if !d.Cuts(id) {
		return
	}
	d.targets = slices.DeleteFunc(d.targets, func(t string) bool { return t == id })
	d.dereference(id, d)
	d.invalidateTarget(id)
}

// invalidateTarget clears a target that has not subscribed to the duct yet.
func (d *Duct) invalidateTarget(id string) {
	if c, err := d.model.Component(id); err == nil {
		if target, ok := c.(interface{ InvalidateFrom(string) }); ok {
			target.InvalidateFrom(d.uid)
		}
	}
}

// NotifyUIDChange rewrites stored UIDs after a rename.
func (d *Duct) NotifyUIDChange(oldID, newID string) {
	for i, t := range d.targets {
		if t == oldID {
			d.targets[i] = newID
		}
	}
	d.notifyUIDChange(oldID, newID)
}

// Remove unregisters the duct and its sections.
func (d *Duct) Remove() {
	d.remove()
}
