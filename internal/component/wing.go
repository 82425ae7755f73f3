package component

import (
	"fmt"
	"slices"

	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/lazy"
)

// SegmentConfig describes a wing segment between two sections of the same
// wing.
type SegmentConfig struct {
	UID  string
	From string
	To   string
}

// Wing is a lofted body split into segments.
type Wing struct {
	body
	cutter
	segments []*WingSegment
	cutLoft  *lazy.Cache[*Wing, kernel.Shape]
}

var _ PositionedComponent = (*Wing)(nil)

// AddWing registers a wing with its sections and segments.
func (m *Model) AddWing(id string, placement Placement, sections []SectionConfig, segments []SegmentConfig) (*Wing, error) {
	w := &Wing{}
	w.body.init(m, id, WingTag.Kind(), w, placement)
	w.cutLoft = lazy.Named(id+".cut", w, func(w *Wing) (kernel.Shape, error) { return w.cut(&w.body) })
	w.node.Track(w.cutLoft)
	if err := w.register(sections); err != nil {
		return nil, fmt.Errorf("adding wing: %w", err)
	}
	for _, cfg := range segments {
		s, err := newSegment(m, w, cfg)
		if err != nil {
			w.Remove()
			return nil, fmt.Errorf("adding wing: %w", err)
		}
		w.segments = append(w.segments, s)
	}
	return w, nil
}

// Segments returns the wing segments.
func (w *Wing) Segments() []*WingSegment {
	return slices.Clone(w.segments)
}

// CutLoft returns the loft with every duct that targets the wing removed.
func (w *Wing) CutLoft() (kernel.Shape, error) {
	return w.cutLoft.Get()
}

// NotifyUIDChange rewrites stored UIDs after a rename.
func (w *Wing) NotifyUIDChange(oldID, newID string) {
	w.notifyUIDChange(oldID, newID)
}

// Remove unregisters the wing, its sections and its segments.
func (w *Wing) Remove() {
	w.release()
	for _, s := range w.segments {
		s.remove()
	}
	w.remove()
}

// WingSegment is the part of a wing between two of its sections.
type WingSegment struct {
	base
	wing    *Wing
	fromUID string
	toUID   string
	loft    *lazy.Cache[*WingSegment, kernel.Shape]
}

func newSegment(m *Model, w *Wing, cfg SegmentConfig) (*WingSegment, error) {
	s := &WingSegment{wing: w, fromUID: cfg.From, toUID: cfg.To}
	s.base = newBase(m, cfg.UID, SegmentTag.Kind(), w.node)
	s.loft = lazy.Named(cfg.UID+".loft", s, (*WingSegment).computeLoft)
	s.node.Track(s.loft)

	if err := m.registry.Register(cfg.UID, s, SegmentTag.Kind()); err != nil {
		s.node.Detach()
		return nil, fmt.Errorf("adding segment of %q: %w", w.uid, err)
	}
	s.reference(s.fromUID, s)
	s.reference(s.toUID, s)
	return s, nil
}

// Wing returns the owning wing.
func (s *WingSegment) Wing() *Wing { return s.wing }

// Sections returns the UIDs of the inner and outer section.
func (s *WingSegment) Sections() (from, to string) { return s.fromUID, s.toUID }

// Loft returns the solid between the segment's two sections.
func (s *WingSegment) Loft() (kernel.Shape, error) {
	return s.loft.Get()
}

func (s *WingSegment) section(id string) (*Section, error) {
	section, err := ResolveObject(s.model, SectionTag, id)
	if err != nil {
		return nil, err
	}
	if !slices.Contains(s.wing.sections, section) {
		return nil, fmt.Errorf("section %q does not belong to wing %q: %w", id, s.wing.uid, ErrForeignSection)
	}
	return section, nil
}

func (s *WingSegment) computeLoft() (kernel.Shape, error) {
	from, err := s.section(s.fromUID)
	if err != nil {
		return kernel.Shape{}, fmt.Errorf("segment %q inner section: %w", s.uid, err)
	}
	to, err := s.section(s.toUID)
	if err != nil {
		return kernel.Shape{}, fmt.Errorf("segment %q outer section: %w", s.uid, err)
	}

	inner, err := from.Curve()
	if err != nil {
		return kernel.Shape{}, err
	}
	outer, err := to.Curve()
	if err != nil {
		return kernel.Shape{}, err
	}
	return s.model.kernel.Loft(s.model.ctx, s.uid, []kernel.Section{inner, outer})
}

// NotifyUIDChange rewrites stored section UIDs and the segment's own UID.
func (s *WingSegment) NotifyUIDChange(oldID, newID string) {
	if s.fromUID == oldID {
		s.fromUID = newID
	}
	if s.toUID == oldID {
		s.toUID = newID
	}
	s.rename(oldID, newID)
}

func (s *WingSegment) remove() {
	s.model.registry.UnregisterReferences(s)
	s.model.registry.TryUnregister(s.uid)
}
