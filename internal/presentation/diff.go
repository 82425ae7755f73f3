package presentation

import (
	"strings"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// LineType classifies one line of a diff.
type LineType int

const (
	LineContext LineType = iota
	LineAdded
	LineRemoved
)

// DiffLine is one line of a line diff.
type DiffLine struct {
	Type LineType
	Text string
}

// LineDiff compares before and after line by line.
func LineDiff(before, after string) []DiffLine {
	dmp := diffmatchpatch.New()
	a, b, lines := dmp.DiffLinesToChars(before, after)
	diffs := dmp.DiffCharsToLines(dmp.DiffMain(a, b, false), lines)

	var out []DiffLine
	for _, d := range diffs {
		t := LineContext
		switch d.Type {
		case diffmatchpatch.DiffInsert:
			t = LineAdded
		case diffmatchpatch.DiffDelete:
			t = LineRemoved
		}
		for _, line := range strings.SplitAfter(d.Text, "\n") {
			if line == "" {
				continue
			}
			out = append(out, DiffLine{Type: t, Text: strings.TrimSuffix(line, "\n")})
		}
	}
	return out
}

// Changed reports whether the diff contains any added or removed line.
func Changed(lines []DiffLine) bool {
	for _, l := range lines {
		if l.Type != LineContext {
			return true
		}
	}
	return false
}

// RenderDiff prefixes each line with +, - or a space, coloring changes.
func RenderDiff(lines []DiffLine) string {
	var sb strings.Builder
	for _, l := range lines {
		switch l.Type {
		case LineAdded:
			sb.WriteString(addedStyle.Render("+ " + l.Text))
		case LineRemoved:
			sb.WriteString(removedStyle.Render("- " + l.Text))
		default:
			sb.WriteString("  " + l.Text)
		}
		sb.WriteByte('\n')
	}
	return sb.String()
}
