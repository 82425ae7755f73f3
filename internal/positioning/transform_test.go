package positioning

import (
	"testing"

	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func requireVec(t *testing.T, want, got Vec3) {
	t.Helper()
	require.InDelta(t, want.X, got.X, 1e-9, "x")
	require.InDelta(t, want.Y, got.Y, 1e-9, "y")
	require.InDelta(t, want.Z, got.Z, 1e-9, "z")
}

func TestTransform_Identity(t *testing.T) {
	m := IdentityTransform().Matrix()
	require.Equal(t, Identity(), m)
	requireVec(t, Vec3{1, 2, 3}, m.Apply(Vec3{1, 2, 3}))
}

func TestTransform_ScaleRotateTranslate(t *testing.T) {
	tr := Transform{
		Scaling:     Vec3{2, 2, 2},
		Rotation:    Vec3{Z: 90},
		Translation: Vec3{10, 0, 0},
	}
	// (1,0,0) scaled to (2,0,0), rotated to (0,2,0), then moved.
	requireVec(t, Vec3{10, 2, 0}, tr.Matrix().Apply(Vec3{1, 0, 0}))
}

func TestRotations(t *testing.T) {
	requireVec(t, Vec3{0, 0, 1}, RotationX(90).Apply(Vec3{0, 1, 0}))
	requireVec(t, Vec3{0, 0, -1}, RotationY(90).Apply(Vec3{1, 0, 0}))
	requireVec(t, Vec3{0, 1, 0}, RotationZ(90).Apply(Vec3{1, 0, 0}))
}

func TestTransform_World(t *testing.T) {
	parent := Transform{
		Scaling:     Vec3{1, 1, 1},
		Rotation:    Vec3{Z: 45},
		Translation: Vec3{5, 5, 0},
	}.Matrix()

	local := Transform{Scaling: Vec3{1, 1, 1}, Translation: Vec3{1, 0, 0}, TranslationType: AbsLocal}
	requireVec(t, Vec3{6, 5, 0}, local.World(parent, true).Origin())
	requireVec(t, Vec3{1, 0, 0}, local.World(parent, false).Origin()) // roots ignore the parent matrix

	global := local
	global.TranslationType = AbsGlobal
	requireVec(t, Vec3{1, 0, 0}, global.World(parent, true).Origin())
}

func TestSymmetry_Mirror(t *testing.T) {
	p := Vec3{1, 2, 3}
	requireVec(t, Vec3{1, 2, -3}, SymmetryXY.Mirror().Apply(p))
	requireVec(t, Vec3{1, -2, 3}, SymmetryXZ.Mirror().Apply(p))
	requireVec(t, Vec3{-1, 2, 3}, SymmetryYZ.Mirror().Apply(p))
	requireVec(t, p, SymmetryNone.Mirror().Apply(p))
	requireVec(t, p, SymmetryInherit.Mirror().Apply(p))
}

func TestParseSymmetryAndTranslationType(t *testing.T) {
	s, err := ParseSymmetry("X-Z")
	require.NoError(t, err)
	require.Equal(t, SymmetryXZ, s)
	_, err = ParseSymmetry("x-x")
	require.Error(t, err)

	tt, err := ParseTranslationType("")
	require.NoError(t, err)
	require.Equal(t, AbsLocal, tt)
	tt, err = ParseTranslationType("ABSGLOBAL")
	require.NoError(t, err)
	require.Equal(t, AbsGlobal, tt)
	_, err = ParseTranslationType("relative")
	require.Error(t, err)
}

func TestProperty_TranslationsCompose(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		coord := rapid.Float64Range(-1e3, 1e3)
		a := Vec3{coord.Draw(t, "ax"), coord.Draw(t, "ay"), coord.Draw(t, "az")}
		b := Vec3{coord.Draw(t, "bx"), coord.Draw(t, "by"), coord.Draw(t, "bz")}

		got := Translation(a).Mul(Translation(b)).Origin()
		want := a.Add(b)
		for _, d := range []float64{got.X - want.X, got.Y - want.Y, got.Z - want.Z} {
			if d > 1e-9 || d < -1e-9 {
				t.Fatalf("T(a)*T(b) origin %v, want %v", got, want)
			}
		}
	})
}
