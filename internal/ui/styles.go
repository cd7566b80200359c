package ui

import (
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"golang.org/x/term"
)

// Palette. Status colors track the outcome of a device exchange.
var (
	PrimaryColor = lipgloss.Color("#7D56F4") // frames, dividers
	SuccessColor = lipgloss.Color("#43BF6D") // OK replies
	ErrorColor   = lipgloss.Color("#FF5555") // ERR replies, dropped connections
	WarningColor = lipgloss.Color("#FFA500") // partial applies, retries
	MutedColor   = lipgloss.Color("#626262")
	TextColor    = lipgloss.Color("#FFFFFF")
)

const (
	MinTerminalWidth = 60
	MaxContentWidth  = 100

	fallbackTerminalHeight = 24
	troubleshootingIndent  = 3
	minTroubleshootWidth   = 40
)

// Markers printed in front of steps and result banners.
const (
	StepMarkerComplete = "✓"
	StepMarkerRunning  = "●"
	StepMarkerPending  = "·"
	StepMarkerSkipped  = "⊘"
	SuccessMarker      = "✓"
	FailureMarker      = "✗"
	WarningMarker      = "⚠"
)

func fg(c lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().Foreground(c)
}

// Command header: title, invocation and the device/port parameters.
var (
	HeaderTitleStyle      = fg(TextColor).Bold(true).PaddingLeft(2)
	HeaderCommandStyle    = fg(MutedColor).PaddingLeft(2)
	HeaderParamKeyStyle   = fg(MutedColor).PaddingLeft(2)
	HeaderParamValueStyle = fg(TextColor)
)

// Step list shown while commands are sent to the generator.
var (
	ProgressLabelStyle = fg(TextColor).PaddingLeft(2)
	StepCompleteStyle  = fg(SuccessColor)
	StepRunningStyle   = fg(WarningColor)
	StepPendingStyle   = fg(MutedColor)
	StepNoteStyle      = fg(MutedColor).Italic(true)
)

// Result banner and its detail rows.
var (
	SuccessTitleStyle = fg(SuccessColor).Bold(true)
	WarningTitleStyle = fg(WarningColor).Bold(true)
	ErrorTitleStyle   = fg(ErrorColor).Bold(true)
	ErrorMessageStyle = fg(ErrorColor)
	ResultKeyStyle    = fg(MutedColor).Width(15)
	ResultValueStyle  = fg(TextColor)

	TroubleshootingTitleStyle = fg(MutedColor).Bold(true)
	TroubleshootingItemStyle  = fg(MutedColor)
)

// Raw reply lines echoed back from the device.
var (
	ReplyTitleStyle   = fg(MutedColor).Bold(true)
	ReplyContentStyle = fg(TextColor)
)

// clampWidth bounds a terminal width to the range the layouts are drawn for
func clampWidth(width int) int {
	switch {
	case width < MinTerminalWidth:
		return MinTerminalWidth
	case width > MaxContentWidth:
		return MaxContentWidth
	}
	return width
}

// GetTerminalWidth returns the stdout width, clamped; MinTerminalWidth when
// stdout is not a terminal.
func GetTerminalWidth() int {
	width, _, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth
	}
	return clampWidth(width)
}

// GetTerminalSize returns the stdout width (clamped) and height.
func GetTerminalSize() (int, int) {
	width, height, err := term.GetSize(int(os.Stdout.Fd()))
	if err != nil {
		return MinTerminalWidth, fallbackTerminalHeight
	}
	return clampWidth(width), height
}

// HeaderBorderStyle frames the command header.
func HeaderBorderStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(PrimaryColor).
		Width(width - 2)
}

// ReplyBoxStyle frames the device reply block, inset from the full width.
func ReplyBoxStyle(width int) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(width - 4).
		Padding(0, 1)
}

func resultBoxStyle(width int, border lipgloss.Color) lipgloss.Style {
	return lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(border).
		Width(width - 2).
		Padding(0, 2)
}

// troubleshootingBoxStyle sits inside a failure result box
func troubleshootingBoxStyle(width int) lipgloss.Style {
	inner := width - 12
	if inner < minTroubleshootWidth {
		inner = minTroubleshootWidth
	}
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(MutedColor).
		Width(inner).
		Padding(0, 1).
		MarginLeft(troubleshootingIndent)
}

func ProgressBarStyle() lipgloss.Style {
	return lipgloss.NewStyle().PaddingLeft(2)
}

// RenderHorizontalDivider repeats char width times in the primary color.
func RenderHorizontalDivider(width int, char string) string {
	if width < 0 {
		width = 0
	}
	return fg(PrimaryColor).Render(strings.Repeat(char, width))
}
