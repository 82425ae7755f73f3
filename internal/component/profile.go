package component

import (
	"fmt"
	"slices"

	"github.com/zjrosen/airframe/internal/positioning"
)

// Profile is a cross-section shape in its own normalized plane. It is not
// positioned: sections place it.
type Profile struct {
	base
	points []positioning.Vec3
}

// AddProfile registers a profile.
func (m *Model) AddProfile(id string, points []positioning.Vec3) (*Profile, error) {
	p := &Profile{points: slices.Clone(points)}
	p.base = newBase(m, id, ProfileTag.Kind(), nil)
	if err := m.registry.Register(id, p, ProfileTag.Kind()); err != nil {
		p.node.Detach()
		return nil, fmt.Errorf("adding profile: %w", err)
	}
	return p, nil
}

// Points returns the profile points.
func (p *Profile) Points() []positioning.Vec3 {
	return slices.Clone(p.points)
}

// SetPoints replaces the profile points. Every section using the profile
// is invalidated through its subscription.
func (p *Profile) SetPoints(points []positioning.Vec3) {
	p.points = slices.Clone(points)
	p.Invalidate()
}

// NotifyUIDChange updates the profile's UID after a rename.
func (p *Profile) NotifyUIDChange(oldID, newID string) {
	p.rename(oldID, newID)
}

// Remove unregisters the profile. Sections still naming it fail to build.
func (p *Profile) Remove() {
	p.node.Detach()
	p.model.registry.TryUnregister(p.uid)
}
