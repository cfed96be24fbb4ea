// Package color provides the palette shared by the CLI and the control panel.
package color

import "github.com/charmbracelet/lipgloss"

// New initializes a lipgloss.Color from a string value.
func New(value string) lipgloss.Color {
	return lipgloss.Color(value)
}

// ANSI base colors.
var (
	Red    = New("1")
	Green  = New("2")
	Yellow = New("3")
	Blue   = New("4")
	Purple = New("5")
	Cyan   = New("6")
)

// High-intensity variants.
var (
	HiRed    = New("9")
	HiCyan   = New("14")
	HiPurple = New("13")
)

// Semantic colors.
var (
	Orange = New("#FFA500")
	Gray   = New("#808080")
	Track  = New("#3A3A3A")
)
