package presentation

import (
	"github.com/zjrosen/airframe/internal/component"
)

type identified interface{ UID() string }

// Describe returns the description of the component registered under id.
func Describe(m *component.Model, id string) (ComponentDTO, error) {
	c, err := m.Component(id)
	if err != nil {
		return ComponentDTO{}, err
	}
	return describe(m, c), nil
}

// DescribeAll describes every component in registration order.
func DescribeAll(m *component.Model) []ComponentDTO {
	components := m.Components()
	out := make([]ComponentDTO, 0, len(components))
	for _, c := range components {
		out = append(out, describe(m, c))
	}
	return out
}

func describe(m *component.Model, c component.Component) ComponentDTO {
	dto := ComponentDTO{UID: c.UID(), Kind: string(c.Kind())}
	for _, r := range m.Registry().References(c.UID()) {
		if named, ok := r.(identified); ok {
			dto.ReferencedBy = append(dto.ReferencedBy, named.UID())
		}
	}

	p, ok := c.(component.PositionedComponent)
	if !ok {
		return dto
	}
	dto.DeclaredParent, _ = p.ParentUID()
	dto.Symmetry = string(p.EffectiveSymmetry())

	if node, err := m.Tree().Node(c.UID()); err == nil {
		if parent := node.Parent(); parent != nil {
			dto.Parent = parent.UID()
		}
		for _, child := range node.Children() {
			dto.Children = append(dto.Children, child.UID())
		}
		if node.Err() != nil {
			dto.Error = node.Err().Error()
		}
	}

	world, err := p.WorldTransform()
	if err != nil {
		if dto.Error == "" {
			dto.Error = err.Error()
		}
		return dto
	}
	o := world.Origin()
	dto.Origin = &[3]float64{o.X, o.Y, o.Z}
	return dto
}
