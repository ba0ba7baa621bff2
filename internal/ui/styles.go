// Package ui provides terminal styling for tt CLI output.
// Uses the Ayu color theme with adaptive light/dark mode support.
package ui

import (
	"github.com/charmbracelet/lipgloss"

	"github.com/comandaflow/timetrack/internal/types"
)

// Ayu theme color palette
// Dark: https://terminalcolors.com/themes/ayu/dark/
// Light: https://terminalcolors.com/themes/ayu/light/
var (
	ColorPass = lipgloss.AdaptiveColor{
		Light: "#86b300", // ayu light bright green
		Dark:  "#c2d94c", // ayu dark bright green
	}
	ColorWarn = lipgloss.AdaptiveColor{
		Light: "#f2ae49", // ayu light bright yellow
		Dark:  "#ffb454", // ayu dark bright yellow
	}
	ColorFail = lipgloss.AdaptiveColor{
		Light: "#f07171", // ayu light bright red
		Dark:  "#f07178", // ayu dark bright red
	}
	ColorMuted = lipgloss.AdaptiveColor{
		Light: "#828c99",
		Dark:  "#6c7680",
	}
	ColorAccent = lipgloss.AdaptiveColor{
		Light: "#399ee6",
		Dark:  "#59c2ff",
	}
	// Orange marks paused tasks, matching the 🟠 title prefix.
	ColorPaused = lipgloss.AdaptiveColor{
		Light: "#fa8d3e",
		Dark:  "#ff8f40",
	}
)

var (
	PassStyle   = lipgloss.NewStyle().Foreground(ColorPass)
	WarnStyle   = lipgloss.NewStyle().Foreground(ColorWarn)
	FailStyle   = lipgloss.NewStyle().Foreground(ColorFail)
	MutedStyle  = lipgloss.NewStyle().Foreground(ColorMuted)
	AccentStyle = lipgloss.NewStyle().Foreground(ColorAccent)
	PausedStyle = lipgloss.NewStyle().Foreground(ColorPaused)
	BoldStyle   = lipgloss.NewStyle().Bold(true)
)

// Status icons
const (
	IconPass = "✓"
	IconWarn = "⚠"
	IconFail = "✗"
	IconInfo = "ℹ"
	IconOpen = "●"
)

// RenderPass renders text with pass (green) styling
func RenderPass(s string) string {
	return PassStyle.Render(s)
}

// RenderWarn renders text with warning (yellow) styling
func RenderWarn(s string) string {
	return WarnStyle.Render(s)
}

// RenderFail renders text with fail (red) styling
func RenderFail(s string) string {
	return FailStyle.Render(s)
}

// RenderMuted renders text with muted (gray) styling
func RenderMuted(s string) string {
	return MutedStyle.Render(s)
}

// RenderAccent renders text with accent (blue) styling
func RenderAccent(s string) string {
	return AccentStyle.Render(s)
}

// RenderBold renders text in bold
func RenderBold(s string) string {
	return BoldStyle.Render(s)
}

func RenderPassIcon() string {
	return PassStyle.Render(IconPass)
}

func RenderWarnIcon() string {
	return WarnStyle.Render(IconWarn)
}

func RenderFailIcon() string {
	return FailStyle.Render(IconFail)
}

func RenderInfoIcon() string {
	return AccentStyle.Render(IconInfo)
}

// RenderStatus renders a task status with its color.
func RenderStatus(status types.Status) string {
	switch status {
	case types.StatusInProgress:
		return WarnStyle.Render(IconOpen + " " + status.String())
	case types.StatusWaiting:
		return PausedStyle.Render(IconOpen + " " + status.String())
	case types.StatusCompleted:
		return PassStyle.Render(IconPass + " " + status.String())
	default:
		return MutedStyle.Render(IconOpen + " " + status.String())
	}
}
