package kernel

import (
	"context"
	"fmt"

	"github.com/zjrosen/airframe/internal/log"
)

// Kernel builds solids.
type Kernel interface {
	// Loft builds a solid through the sections in order.
	Loft(ctx context.Context, name string, sections []Section) (Shape, error)
	// Cut removes every tool from base.
	Cut(ctx context.Context, base Shape, tools ...Shape) (Shape, error)
}

// BoundsKernel only tracks bounding boxes.
type BoundsKernel struct{}

var _ Kernel = BoundsKernel{}

func (BoundsKernel) Loft(ctx context.Context, name string, sections []Section) (Shape, error) {
	if err := ctx.Err(); err != nil {
		return Shape{}, err
	}
	if len(sections) < 2 {
		return Shape{}, fmt.Errorf("loft %q needs at least two sections, got %d: %w", name, len(sections), ErrDegenerate)
	}
	var bounds Box
	for _, s := range sections {
		if len(s.Points) == 0 {
			return Shape{}, fmt.Errorf("loft %q: section %q has no points: %w", name, s.Name, ErrDegenerate)
		}
		bounds = bounds.Union(BoxOf(s.Points...))
	}
	log.Debug(log.CatKernel, "loft", "name", name, "sections", len(sections))
	return Shape{
		Name:        name,
		Kind:        KindLoft,
		Bounds:      bounds,
		Sections:    len(sections),
		Fingerprint: LoftFingerprint(name, sections),
	}, nil
}

// Cut keeps the base bounds. Tools whose bounds miss the base are ignored.
func (BoundsKernel) Cut(ctx context.Context, base Shape, tools ...Shape) (Shape, error) {
	if err := ctx.Err(); err != nil {
		return Shape{}, err
	}
	if base.Bounds.Empty() {
		return Shape{}, fmt.Errorf("cut %q: empty base: %w", base.Name, ErrDegenerate)
	}
	out := base
	out.Kind = KindCut
	out.Tools = nil
	for _, t := range tools {
		if t.Bounds.Intersects(base.Bounds) {
			out.Tools = append(out.Tools, t.Name)
		}
	}
	out.Fingerprint = CutFingerprint(base, tools)
	log.Debug(log.CatKernel, "cut", "name", base.Name, "tools", len(tools), "effective", len(out.Tools))
	return out, nil
}
