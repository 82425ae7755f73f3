package testutil

import "github.com/zjrosen/airframe/internal/document"

// ComponentOption configures a positioned component.
type ComponentOption func(*document.Component)

// Parent sets the positioning parent.
func Parent(id string) ComponentOption {
	return func(c *document.Component) {
		c.Parent = id
	}
}

// Symmetry sets the mirror plane, e.g. "x-z".
func Symmetry(plane string) ComponentOption {
	return func(c *document.Component) {
		c.Symmetry = plane
	}
}

// At sets the translation.
func At(x, y, z float64) ComponentOption {
	return func(c *document.Component) {
		if c.Transform == nil {
			c.Transform = &document.Transform{}
		}
		c.Transform.Translation = &document.Vec{x, y, z}
	}
}

// Section appends a section of profile, translated by offset.
func Section(id, profile string, offset document.Vec) ComponentOption {
	return func(c *document.Component) {
		s := document.Section{UID: id, Profile: profile}
		if offset != (document.Vec{}) {
			s.Transform = &document.Transform{Translation: &offset}
		}
		c.Sections = append(c.Sections, s)
	}
}

// Segment appends a wing segment between two sections.
func Segment(id, from, to string) ComponentOption {
	return func(c *document.Component) {
		c.Segments = append(c.Segments, document.Segment{UID: id, From: from, To: to})
	}
}
