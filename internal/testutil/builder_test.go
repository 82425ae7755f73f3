package testutil

import (
	"os"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/document"
)

func TestBuilder_Options(t *testing.T) {
	doc := NewBuilder(t).
		Named("opts").
		WithProfile("p", Square...).
		WithFuselage("f", At(1, 2, 3), Symmetry("x-y"), Parent("g"),
			Section("s1", "p", document.Vec{}),
			Section("s2", "p", document.Vec{4, 0, 0})).
		Document()

	require.Equal(t, "opts", doc.Name)
	require.Len(t, doc.Components, 2)

	f := doc.Components[1]
	require.Equal(t, document.KindFuselage, f.Kind)
	require.Equal(t, "g", f.Parent)
	require.Equal(t, "x-y", f.Symmetry)
	require.Equal(t, &document.Vec{1, 2, 3}, f.Transform.Translation)
	require.Len(t, f.Sections, 2)
	require.Nil(t, f.Sections[0].Transform)
	require.Equal(t, &document.Vec{4, 0, 0}, f.Sections[1].Transform.Translation)
}

func TestBuilder_DocumentIsACopy(t *testing.T) {
	b := NewBuilder(t).WithProfile("p", Square...)
	doc := b.Document()
	b.WithProfile("q", Square...)
	require.Len(t, doc.Components, 1)
}

func TestBuilder_StandardModel(t *testing.T) {
	m := NewBuilder(t).WithStandardModel().Build()

	roots, err := m.RootComponents()
	require.NoError(t, err)
	require.Len(t, roots, 1)
	require.Equal(t, "fuselage", roots[0].UID())

	children, err := m.Children("fuselage", false)
	require.NoError(t, err)
	require.Len(t, children, 2)

	c, err := m.Component("fuselage")
	require.NoError(t, err)
	shape, err := c.(*component.Fuselage).CutLoft()
	require.NoError(t, err)
	require.Equal(t, []string{"intake"}, shape.Tools)
}

func TestBuilder_WriteFile(t *testing.T) {
	path := NewBuilder(t).WithStandardModel().WriteFile()

	f, err := os.Open(path)
	require.NoError(t, err)
	defer func() { _ = f.Close() }()

	doc, err := document.Parse(f)
	require.NoError(t, err)
	require.Len(t, doc.Components, 4)
	require.Equal(t, "wing1", doc.Components[0].UID)
}
