// Package kernel is the boundary to the geometric modelling kernel.
//
// Components hand the kernel world-space section curves and receive opaque
// shapes back. BoundsKernel is a reference kernel that tracks bounding boxes
// only; CachingKernel memoizes any kernel by content fingerprint.
package kernel

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"errors"
	"math"

	"github.com/zjrosen/airframe/internal/positioning"
)

// ErrDegenerate is returned for input a kernel cannot build a solid from.
var ErrDegenerate = errors.New("degenerate geometry")

// Section is one closed section curve in world coordinates.
type Section struct {
	Name   string
	Points []positioning.Vec3
}

// Box is an axis-aligned bounding box. The zero Box is empty.
type Box struct {
	Min, Max positioning.Vec3
	valid    bool
}

// BoxOf returns the bounding box of pts.
func BoxOf(pts ...positioning.Vec3) Box {
	var b Box
	for _, p := range pts {
		b = b.Extend(p)
	}
	return b
}

// Empty reports whether the box contains no point.
func (b Box) Empty() bool { return !b.valid }

// Extend grows the box to contain p.
func (b Box) Extend(p positioning.Vec3) Box {
	if !b.valid {
		return Box{Min: p, Max: p, valid: true}
	}
	b.Min = positioning.Vec3{X: math.Min(b.Min.X, p.X), Y: math.Min(b.Min.Y, p.Y), Z: math.Min(b.Min.Z, p.Z)}
	b.Max = positioning.Vec3{X: math.Max(b.Max.X, p.X), Y: math.Max(b.Max.Y, p.Y), Z: math.Max(b.Max.Z, p.Z)}
	return b
}

// Union returns the smallest box containing b and o.
func (b Box) Union(o Box) Box {
	if o.Empty() {
		return b
	}
	return b.Extend(o.Min).Extend(o.Max)
}

// Intersects reports whether the boxes overlap, touching included.
func (b Box) Intersects(o Box) bool {
	if b.Empty() || o.Empty() {
		return false
	}
	return b.Min.X <= o.Max.X && o.Min.X <= b.Max.X &&
		b.Min.Y <= o.Max.Y && o.Min.Y <= b.Max.Y &&
		b.Min.Z <= o.Max.Z && o.Min.Z <= b.Max.Z
}

// Size returns the box extents.
func (b Box) Size() positioning.Vec3 {
	if b.Empty() {
		return positioning.Vec3{}
	}
	return positioning.Vec3{X: b.Max.X - b.Min.X, Y: b.Max.Y - b.Min.Y, Z: b.Max.Z - b.Min.Z}
}

// Kind tells how a shape was produced.
type Kind string

const (
	KindLoft Kind = "loft"
	KindCut  Kind = "cut"
)

// Fingerprint identifies a shape by the input it was built from.
type Fingerprint string

// Shape is an immutable kernel result.
type Shape struct {
	Name        string
	Kind        Kind
	Bounds      Box
	Sections    int
	Tools       []string // names of the tools that removed material, for cuts
	Fingerprint Fingerprint
}

type hasher struct {
	buf []byte
}

func (h *hasher) str(s string) {
	h.buf = binary.AppendUvarint(h.buf, uint64(len(s)))
	h.buf = append(h.buf, s...)
}

func (h *hasher) vec(v positioning.Vec3) {
	for _, f := range []float64{v.X, v.Y, v.Z} {
		h.buf = binary.LittleEndian.AppendUint64(h.buf, math.Float64bits(f))
	}
}

func (h *hasher) sum(prefix string) Fingerprint {
	digest := sha256.Sum256(h.buf)
	return Fingerprint(prefix + ":" + hex.EncodeToString(digest[:16]))
}

// LoftFingerprint identifies a loft request.
func LoftFingerprint(name string, sections []Section) Fingerprint {
	var h hasher
	h.str(name)
	for _, s := range sections {
		h.str(s.Name)
		h.buf = binary.AppendUvarint(h.buf, uint64(len(s.Points)))
		for _, p := range s.Points {
			h.vec(p)
		}
	}
	return h.sum(string(KindLoft))
}

// CutFingerprint identifies a cut request.
func CutFingerprint(base Shape, tools []Shape) Fingerprint {
	var h hasher
	h.str(string(base.Fingerprint))
	for _, t := range tools {
		h.str(string(t.Fingerprint))
	}
	return h.sum(string(KindCut))
}
