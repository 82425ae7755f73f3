package presentation

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/positioning"
)

func at(x float64) positioning.Transform {
	return positioning.Transform{Translation: positioning.Vec3{X: x}}
}

func newModel(t *testing.T) *component.Model {
	t.Helper()
	m := component.NewModel()
	_, err := m.AddProfile("square", []positioning.Vec3{
		{Y: -1, Z: -1}, {Y: 1, Z: -1}, {Y: 1, Z: 1}, {Y: -1, Z: 1},
	})
	require.NoError(t, err)

	sections := func(id string, from, to float64) []component.SectionConfig {
		return []component.SectionConfig{
			{UID: id + "_a", Profile: "square", Transform: at(from)},
			{UID: id + "_b", Profile: "square", Transform: at(to)},
		}
	}
	_, err = m.AddFuselage("fuselage", component.Placement{}, sections("fuselage", 0, 5)...)
	require.NoError(t, err)
	_, err = m.AddWing("wing1",
		component.Placement{
			Parent:    "fuselage",
			Symmetry:  positioning.SymmetryXZ,
			Transform: positioning.Transform{Translation: positioning.Vec3{X: 2, Y: 3}},
		},
		sections("wing1", 0, 1),
		[]component.SegmentConfig{{UID: "wing1_seg", From: "wing1_a", To: "wing1_b"}},
	)
	require.NoError(t, err)
	_, err = m.AddDuct("intake", component.Placement{}, []string{"fuselage"}, sections("intake", 1, 2)...)
	require.NoError(t, err)
	_, err = m.AddFuselage("pod", component.Placement{Parent: "missing", Transform: at(7)}, sections("pod", 0, 1)...)
	require.NoError(t, err)
	return m
}

func TestRenderTree(t *testing.T) {
	m := newModel(t)
	out, err := RenderTree(m)
	require.NoError(t, err)

	lines := strings.Split(out, "\n")
	require.Contains(t, lines[0], m.ID().String())
	require.Contains(t, out, "fuselage fuselage")
	require.Contains(t, out, "wing1 wing")
	require.Contains(t, out, "intake duct")
	require.Contains(t, out, `! component "pod": parent "missing": parent not found`)

	wingLine := -1
	fuselageLine := -1
	for i, l := range lines {
		if strings.Contains(l, "wing1 wing") {
			wingLine = i
		}
		if strings.Contains(l, "fuselage fuselage") {
			fuselageLine = i
		}
	}
	require.Equal(t, fuselageLine+1, wingLine, "wing1 is drawn under the fuselage")
	require.Greater(t, strings.Index(lines[wingLine], "wing1"), strings.Index(lines[fuselageLine], "fuselage"))
}

func TestRenderTree_StrictReturnsError(t *testing.T) {
	m := component.NewModel(component.WithParentPolicy(positioning.Strict))
	_, err := m.AddFuselage("pod", component.Placement{Parent: "missing"})
	require.NoError(t, err)

	out, err := RenderTree(m)
	require.ErrorIs(t, err, positioning.ErrParentNotFound)
	require.Contains(t, out, "pod")
}

func TestDescribe(t *testing.T) {
	m := newModel(t)

	wing, err := Describe(m, "wing1")
	require.NoError(t, err)
	require.Equal(t, "wing", wing.Kind)
	require.Equal(t, "fuselage", wing.Parent)
	require.Equal(t, "fuselage", wing.DeclaredParent)
	require.Equal(t, "x-z", wing.Symmetry)
	require.Equal(t, &[3]float64{2, 3, 0}, wing.Origin)
	require.Empty(t, wing.Error)

	fuselage, err := Describe(m, "fuselage")
	require.NoError(t, err)
	require.Equal(t, []string{"wing1"}, fuselage.Children)
	require.ElementsMatch(t, []string{"wing1", "intake"}, fuselage.ReferencedBy)
	require.Equal(t, "none", fuselage.Symmetry)

	pod, err := Describe(m, "pod")
	require.NoError(t, err)
	require.Empty(t, pod.Parent)
	require.Equal(t, "missing", pod.DeclaredParent)
	require.Contains(t, pod.Error, "parent not found")
	require.Equal(t, &[3]float64{7, 0, 0}, pod.Origin, "a demoted component is placed as a root")

	square, err := Describe(m, "square")
	require.NoError(t, err)
	require.Equal(t, "profile", square.Kind)
	require.Nil(t, square.Origin)
	require.Len(t, square.ReferencedBy, 8)

	_, err = Describe(m, "nope")
	require.Error(t, err)
}

func TestDescribeAll_JSON(t *testing.T) {
	m := newModel(t)
	all := DescribeAll(m)
	require.Equal(t, len(m.Components()), len(all))

	var buf bytes.Buffer
	require.NoError(t, WriteJSON(&buf, all))

	var decoded []map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &decoded))
	require.Equal(t, "square", decoded[0]["uid"])
	require.NotContains(t, decoded[0], "origin")
}

func TestWriteText(t *testing.T) {
	m := newModel(t)
	dto, err := Describe(m, "wing1")
	require.NoError(t, err)

	var buf bytes.Buffer
	require.NoError(t, WriteText(&buf, dto))
	out := buf.String()
	require.Contains(t, out, "uid:")
	require.Contains(t, out, "wing1")
	require.Contains(t, out, "origin:        (2, 3, 0)")
}

func TestShapes(t *testing.T) {
	m := newModel(t)
	shapes := Shapes(m)

	byID := map[string]ShapeDTO{}
	for _, s := range shapes {
		key := s.UID
		if s.Mirrored {
			key += "~"
		}
		byID[key] = s
	}

	require.Equal(t, []string{"intake"}, byID["fuselage"].Tools)
	require.Equal(t, [3]float64{0, -1, -1}, byID["fuselage"].Min)
	require.Equal(t, [3]float64{5, 1, 1}, byID["fuselage"].Max)
	require.NotEmpty(t, byID["fuselage"].Fingerprint)

	require.Contains(t, byID, "wing1_seg")
	require.Contains(t, byID, "wing1~", "the wing has a symmetry plane")
	require.Equal(t, [3]float64{2, -4, -1}, byID["wing1~"].Min)
	require.NotContains(t, byID, "fuselage~")

	out := RenderShapes(shapes)
	require.Contains(t, out, "FINGERPRINT")
	require.Contains(t, out, "wing1 (mirror)")
	require.Contains(t, out, "intake")
}

func TestShapes_ReportsErrors(t *testing.T) {
	m := component.NewModel()
	_, err := m.AddFuselage("bare", component.Placement{})
	require.NoError(t, err)

	shapes := Shapes(m)
	require.Len(t, shapes, 1)
	require.NotEmpty(t, shapes[0].Error)
	require.Contains(t, RenderShapes(shapes), "error")
}

func TestLineDiff(t *testing.T) {
	before := "a\nfuselage\nwing1\n"
	after := "a\nfuselage_main\nwing1\n"

	lines := LineDiff(before, after)
	require.True(t, Changed(lines))
	require.Equal(t, []DiffLine{
		{Type: LineContext, Text: "a"},
		{Type: LineRemoved, Text: "fuselage"},
		{Type: LineAdded, Text: "fuselage_main"},
		{Type: LineContext, Text: "wing1"},
	}, lines)

	out := RenderDiff(lines)
	require.Contains(t, out, "- fuselage\n")
	require.Contains(t, out, "+ fuselage_main\n")
	require.Contains(t, out, "  wing1\n")

	require.False(t, Changed(LineDiff(before, before)))
}
