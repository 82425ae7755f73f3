// Package presentation renders models for the command line: a positioning
// tree, component descriptions, shape tables and text diffs.
package presentation

import "github.com/charmbracelet/lipgloss"

var (
	TextPrimaryColor = lipgloss.AdaptiveColor{Light: "#2D3436", Dark: "#CCCCCC"}
	TextMutedColor   = lipgloss.AdaptiveColor{Light: "#9CA0B0", Dark: "#696969"}
	RootColor        = lipgloss.AdaptiveColor{Light: "#1E66F5", Dark: "#89B4FA"}
	ErrorColor       = lipgloss.AdaptiveColor{Light: "#FF6B6B", Dark: "#FF8787"}
	AddedColor       = lipgloss.AdaptiveColor{Light: "#43BF6D", Dark: "#73F59F"}
	RemovedColor     = lipgloss.AdaptiveColor{Light: "#D20F39", Dark: "#F38BA8"}

	uidStyle        = lipgloss.NewStyle().Foreground(TextPrimaryColor)
	rootStyle       = lipgloss.NewStyle().Bold(true).Foreground(RootColor)
	kindStyle       = lipgloss.NewStyle().Foreground(TextMutedColor)
	errorStyle      = lipgloss.NewStyle().Foreground(ErrorColor)
	enumeratorStyle = lipgloss.NewStyle().Foreground(TextMutedColor).PaddingRight(1)
	addedStyle      = lipgloss.NewStyle().Foreground(AddedColor)
	removedStyle    = lipgloss.NewStyle().Foreground(RemovedColor)
	headerStyle     = lipgloss.NewStyle().Bold(true).Padding(0, 1)
	cellStyle       = lipgloss.NewStyle().Padding(0, 1)
)
