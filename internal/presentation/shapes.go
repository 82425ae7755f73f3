package presentation

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"

	"github.com/zjrosen/airframe/internal/component"
	"github.com/zjrosen/airframe/internal/kernel"
)

type mirrorable interface {
	MirroredLoft() (kernel.Shape, bool, error)
}

// Shapes builds every shape of m: the cut lofts of fuselages and wings, the
// lofts of ducts and wing segments, and the mirrored loft of every body
// with a symmetry plane. Build failures are reported per shape.
func Shapes(m *component.Model) []ShapeDTO {
	var out []ShapeDTO
	add := func(id, kind string, mirrored bool, shape kernel.Shape, err error) {
		dto := ShapeDTO{UID: id, Kind: kind, Mirrored: mirrored}
		if err != nil {
			dto.Error = err.Error()
		} else {
			dto.Min = [3]float64{shape.Bounds.Min.X, shape.Bounds.Min.Y, shape.Bounds.Min.Z}
			dto.Max = [3]float64{shape.Bounds.Max.X, shape.Bounds.Max.Y, shape.Bounds.Max.Z}
			dto.Tools = shape.Tools
			dto.Fingerprint = string(shape.Fingerprint)
		}
		out = append(out, dto)
	}
	addMirror := func(id, kind string, b mirrorable) {
		shape, ok, err := b.MirroredLoft()
		if ok || err != nil {
			add(id, kind, true, shape, err)
		}
	}

	for _, c := range m.Components() {
		kind := string(c.Kind())
		switch c := c.(type) {
		case *component.Fuselage:
			shape, err := c.CutLoft()
			add(c.UID(), kind, false, shape, err)
			addMirror(c.UID(), kind, c)
		case *component.Wing:
			shape, err := c.CutLoft()
			add(c.UID(), kind, false, shape, err)
			addMirror(c.UID(), kind, c)
		case *component.Duct:
			shape, err := c.Loft()
			add(c.UID(), kind, false, shape, err)
			addMirror(c.UID(), kind, c)
		case *component.WingSegment:
			shape, err := c.Loft()
			add(c.UID(), kind, false, shape, err)
		}
	}
	return out
}

// RenderShapes draws shapes as a table.
func RenderShapes(shapes []ShapeDTO) string {
	t := table.New().
		Border(lipgloss.RoundedBorder()).
		BorderStyle(kindStyle).
		Headers("UID", "KIND", "MIN", "MAX", "TOOLS", "FINGERPRINT").
		StyleFunc(func(row, col int) lipgloss.Style {
			if row == table.HeaderRow {
				return headerStyle
			}
			if row >= 0 && row < len(shapes) && shapes[row].Error != "" {
				return cellStyle.Foreground(ErrorColor)
			}
			return cellStyle
		})

	for _, s := range shapes {
		id := s.UID
		if s.Mirrored {
			id += " (mirror)"
		}
		if s.Error != "" {
			t.Row(id, s.Kind, "error", s.Error, "", "")
			continue
		}
		fp := s.Fingerprint
		if len(fp) > 12 {
			fp = fp[:12]
		}
		t.Row(id, s.Kind, vec(s.Min), vec(s.Max), strings.Join(s.Tools, ","), fp)
	}
	return t.String()
}

func vec(v [3]float64) string {
	return fmt.Sprintf("(%.3g, %.3g, %.3g)", v[0], v[1], v[2])
}
