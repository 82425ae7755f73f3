package component

import (
	"fmt"

	"github.com/zjrosen/airframe/internal/kernel"
	"github.com/zjrosen/airframe/internal/lazy"
	"github.com/zjrosen/airframe/internal/positioning"
)

// SectionConfig describes one section of a fuselage, wing or duct.
type SectionConfig struct {
	UID       string
	Profile   string
	Transform positioning.Transform
}

// Section places a profile along its owning component. It is registered
// but not positioned.
type Section struct {
	base
	owner      placed
	profileUID string
	transform  positioning.Transform
	curve      *lazy.Cache[*Section, kernel.Section]

	cancelProfile func()
}

func newSection(m *Model, owner placed, cfg SectionConfig) (*Section, error) {
	s := &Section{
		owner:      owner,
		profileUID: cfg.Profile,
		transform:  normalizeTransform(cfg.Transform),
	}
	s.base = newBase(m, cfg.UID, SectionTag.Kind(), owner.invalidationNode())
	s.curve = lazy.Named(cfg.UID+".curve", s, (*Section).computeCurve)
	s.node.Track(s.curve)

	if err := m.registry.Register(cfg.UID, s, SectionTag.Kind()); err != nil {
		s.node.Detach()
		return nil, fmt.Errorf("adding section of %q: %w", owner.UID(), err)
	}
	s.reference(s.profileUID, s)
	return s, nil
}

// ProfileUID returns the UID of the placed profile.
func (s *Section) ProfileUID() string { return s.profileUID }

// SetProfile switches the section to another profile.
func (s *Section) SetProfile(profileUID string) {
	s.dereference(s.profileUID, s)
	s.profileUID = profileUID
	s.reference(profileUID, s)
	s.owner.invalidationNode().Invalidate(s.uid)
}

func (s *Section) Transform() positioning.Transform { return s.transform }

// SetTransform replaces the placement of the profile relative to the owner.
func (s *Section) SetTransform(t positioning.Transform) {
	s.transform = normalizeTransform(t)
	s.owner.invalidationNode().Invalidate(s.uid)
}

// Curve returns the profile points in world coordinates.
func (s *Section) Curve() (kernel.Section, error) {
	return s.curve.Get()
}

func (s *Section) computeCurve() (kernel.Section, error) {
	if s.cancelProfile != nil {
		s.cancelProfile()
		s.cancelProfile = nil
	}

	profile, err := ResolveObject(s.model, ProfileTag, s.profileUID)
	if err != nil {
		return kernel.Section{}, fmt.Errorf("section %q profile: %w", s.uid, err)
	}
	ownerWorld, err := s.owner.WorldTransform()
	if err != nil {
		return kernel.Section{}, fmt.Errorf("section %q: %w", s.uid, err)
	}

	// A profile change rebuilds the whole owner, not only this curve.
	owner := s.owner.invalidationNode()
	profileUID := profile.UID()
	cancel, err := profile.node.Subscribe(s.node, func() { owner.Invalidate(profileUID) })
	if err != nil {
		return kernel.Section{}, err
	}
	s.cancelProfile = cancel

	m := ownerWorld.Mul(s.transform.Matrix())
	points := make([]positioning.Vec3, 0, len(profile.points))
	for _, pt := range profile.points {
		points = append(points, m.Apply(pt))
	}
	return kernel.Section{Name: s.uid, Points: points}, nil
}

// NotifyUIDChange rewrites the stored profile UID and the section's own UID.
func (s *Section) NotifyUIDChange(oldID, newID string) {
	if s.profileUID == oldID {
		s.profileUID = newID
	}
	s.rename(oldID, newID)
}

func (s *Section) remove() {
	if s.cancelProfile != nil {
		s.cancelProfile()
		s.cancelProfile = nil
	}
	s.model.registry.UnregisterReferences(s)
	s.model.registry.TryUnregister(s.uid)
}
