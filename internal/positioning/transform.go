package positioning

import (
	"fmt"
	"math"
	"strings"
)

// Vec3 is a point or direction in model space.
type Vec3 struct {
	X, Y, Z float64
}

// Add returns v + o.
func (v Vec3) Add(o Vec3) Vec3 {
	return Vec3{v.X + o.X, v.Y + o.Y, v.Z + o.Z}
}

// TranslationType selects how a translation relates to the parent.
type TranslationType string

const (
	// AbsLocal translations are relative to the parent's world origin.
	AbsLocal TranslationType = "absLocal"
	// AbsGlobal translations are absolute model coordinates.
	AbsGlobal TranslationType = "absGlobal"
)

// ParseTranslationType accepts absLocal, absGlobal or an empty string
// (which means absLocal).
func ParseTranslationType(s string) (TranslationType, error) {
	switch strings.ToLower(s) {
	case "", "abslocal":
		return AbsLocal, nil
	case "absglobal":
		return AbsGlobal, nil
	default:
		return "", fmt.Errorf("invalid translation type %q (must be absLocal or absGlobal)", s)
	}
}

// Symmetry is the mirror plane of a component.
type Symmetry string

const (
	SymmetryInherit Symmetry = ""     // use the parent's symmetry
	SymmetryNone    Symmetry = "none" // explicitly no symmetry
	SymmetryXY      Symmetry = "x-y"
	SymmetryXZ      Symmetry = "x-z"
	SymmetryYZ      Symmetry = "y-z"
)

// ParseSymmetry validates a symmetry name.
func ParseSymmetry(s string) (Symmetry, error) {
	switch sym := Symmetry(strings.ToLower(s)); sym {
	case SymmetryInherit, SymmetryNone, SymmetryXY, SymmetryXZ, SymmetryYZ:
		return sym, nil
	default:
		return "", fmt.Errorf("invalid symmetry %q (must be none, x-y, x-z or y-z)", s)
	}
}

// Mirror returns the reflection matrix for the symmetry plane, or the
// identity for none/inherit.
func (s Symmetry) Mirror() Matrix {
	m := Identity()
	switch s {
	case SymmetryXY:
		m[2][2] = -1
	case SymmetryXZ:
		m[1][1] = -1
	case SymmetryYZ:
		m[0][0] = -1
	}
	return m
}

// Transform is the local placement of a component: scale, then rotate about
// X, Y and Z (degrees), then translate.
type Transform struct {
	Scaling         Vec3
	Rotation        Vec3
	Translation     Vec3
	TranslationType TranslationType
}

// IdentityTransform returns a transform that leaves geometry unchanged.
func IdentityTransform() Transform {
	return Transform{
		Scaling:         Vec3{1, 1, 1},
		TranslationType: AbsLocal,
	}
}

// Matrix returns the local transformation matrix.
func (t Transform) Matrix() Matrix {
	m := Scaling(t.Scaling)
	m = RotationX(t.Rotation.X).Mul(m)
	m = RotationY(t.Rotation.Y).Mul(m)
	m = RotationZ(t.Rotation.Z).Mul(m)
	return Translation(t.Translation).Mul(m)
}

// World composes t with the parent's world matrix. Only the parent's origin
// is inherited, and only for AbsLocal translations.
func (t Transform) World(parent Matrix, hasParent bool) Matrix {
	local := t.Matrix()
	if !hasParent || t.TranslationType == AbsGlobal {
		return local
	}
	return Translation(parent.Origin()).Mul(local)
}

// Matrix is a 4x4 affine matrix in row-major order.
type Matrix [4][4]float64

// Identity returns the identity matrix.
func Identity() Matrix {
	var m Matrix
	for i := range 4 {
		m[i][i] = 1
	}
	return m
}

// Translation returns a pure translation matrix.
func Translation(v Vec3) Matrix {
	m := Identity()
	m[0][3], m[1][3], m[2][3] = v.X, v.Y, v.Z
	return m
}

// Scaling returns a pure scaling matrix.
func Scaling(v Vec3) Matrix {
	m := Identity()
	m[0][0], m[1][1], m[2][2] = v.X, v.Y, v.Z
	return m
}

// RotationX rotates by deg degrees about the X axis.
func RotationX(deg float64) Matrix {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[1][1], m[1][2] = c, -s
	m[2][1], m[2][2] = s, c
	return m
}

// RotationY rotates by deg degrees about the Y axis.
func RotationY(deg float64) Matrix {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[0][0], m[0][2] = c, s
	m[2][0], m[2][2] = -s, c
	return m
}

// RotationZ rotates by deg degrees about the Z axis.
func RotationZ(deg float64) Matrix {
	s, c := math.Sincos(deg * math.Pi / 180)
	m := Identity()
	m[0][0], m[0][1] = c, -s
	m[1][0], m[1][1] = s, c
	return m
}

// Mul returns m * o.
func (m Matrix) Mul(o Matrix) Matrix {
	var r Matrix
	for i := range 4 {
		for j := range 4 {
			for k := range 4 {
				r[i][j] += m[i][k] * o[k][j]
			}
		}
	}
	return r
}

// Apply transforms point p.
func (m Matrix) Apply(p Vec3) Vec3 {
	return Vec3{
		X: m[0][0]*p.X + m[0][1]*p.Y + m[0][2]*p.Z + m[0][3],
		Y: m[1][0]*p.X + m[1][1]*p.Y + m[1][2]*p.Z + m[1][3],
		Z: m[2][0]*p.X + m[2][1]*p.Y + m[2][2]*p.Z + m[2][3],
	}
}

// Origin returns the image of the origin.
func (m Matrix) Origin() Vec3 {
	return Vec3{m[0][3], m[1][3], m[2][3]}
}
