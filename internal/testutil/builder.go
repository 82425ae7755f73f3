// Package testutil builds model documents for tests.
package testutil

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/document"
)

// Builder accumulates components in document order.
type Builder struct {
	t   *testing.T
	doc document.Document
}

// NewBuilder creates an empty builder.
func NewBuilder(t *testing.T) *Builder {
	t.Helper()
	return &Builder{t: t}
}

// Named sets the document name.
func (b *Builder) Named(name string) *Builder {
	b.doc.Name = name
	return b
}

// WithProfile adds a profile.
func (b *Builder) WithProfile(id string, points ...document.Vec) *Builder {
	b.doc.Components = append(b.doc.Components, document.Component{
		Kind: document.KindProfile, UID: id, Points: points,
	})
	return b
}

// WithFuselage adds a fuselage.
func (b *Builder) WithFuselage(id string, opts ...ComponentOption) *Builder {
	return b.with(document.KindFuselage, id, opts)
}

// WithWing adds a wing.
func (b *Builder) WithWing(id string, opts ...ComponentOption) *Builder {
	return b.with(document.KindWing, id, opts)
}

// WithDuct adds a duct cutting the targets.
func (b *Builder) WithDuct(id string, targets []string, opts ...ComponentOption) *Builder {
	b.with(document.KindDuct, id, opts)
	b.doc.Components[len(b.doc.Components)-1].Targets = targets
	return b
}

func (b *Builder) with(kind, id string, opts []ComponentOption) *Builder {
	c := document.Component{Kind: kind, UID: id}
	for _, opt := range opts {
		opt(&c)
	}
	b.doc.Components = append(b.doc.Components, c)
	return b
}

// Document returns a copy of the accumulated document.
func (b *Builder) Document() *document.Document {
	doc := b.doc
	doc.Components = append([]document.Component(nil), b.doc.Components...)
	return &doc
}

// Build builds the model and fails the test on any build error.
func (b *Builder) Build(opts ...component.Option) *component.Model {
	b.t.Helper()
	m, err := document.Build(b.Document(), opts...)
	require.NoError(b.t, err)
	return m
}

// WriteFile saves the document under a fresh temp dir and returns its path.
func (b *Builder) WriteFile() string {
	b.t.Helper()
	path := filepath.Join(b.t.TempDir(), "airframe.yaml")
	require.NoError(b.t, document.Save(path, b.Document()))
	return path
}
