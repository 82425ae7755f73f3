package testutil

import "github.com/zjrosen/airframe/internal/document"

// Square is a unit square profile in the y-z plane.
var Square = []document.Vec{{0, -1, -1}, {0, 1, -1}, {0, 1, 1}, {0, -1, 1}}

// WithStandardModel adds a fuselage carrying a mirrored wing and an intake
// duct cutting the fuselage. The wing and the duct are declared before
// the fuselage they reference.
func (b *Builder) WithStandardModel() *Builder {
	return b.
		WithWing("wing1",
			Parent("fuselage"), Symmetry("x-z"), At(2, 1, 0),
			Section("wing1_root", "square", document.Vec{}),
			Section("wing1_tip", "square", document.Vec{0, 8, 0}),
			Segment("wing1_seg1", "wing1_root", "wing1_tip")).
		WithDuct("intake", []string{"fuselage"},
			Parent("fuselage"),
			Section("intake_in", "square", document.Vec{1, 0, 0}),
			Section("intake_out", "square", document.Vec{3, 0, 0})).
		WithFuselage("fuselage",
			Section("fus_nose", "square", document.Vec{}),
			Section("fus_tail", "square", document.Vec{12, 0, 0})).
		WithProfile("square", Square...)
}
