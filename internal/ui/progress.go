package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/progress"
	"github.com/charmbracelet/lipgloss"
)

// StepStatus represents the current state of a step
type StepStatus int

const (
	StepPending  StepStatus = iota // Not yet started
	StepRunning                    // Currently executing
	StepComplete                   // Successfully completed
	StepFailed                     // Failed
	StepSkipped                    // Skipped
)

// Step represents a single step in a multi-step operation
type Step struct {
	Number  int        // Step number (1-based)
	Name    string     // Step description, e.g. "Setting max_bpc = 10"
	Status  StepStatus // Current status
	Message string     // Optional status message, e.g. "read back 8"
}

// Progress represents a progress display with bar and step list
type Progress struct {
	Label     string  // e.g., "Applying settings..."
	Steps     []Step  // List of steps
	Current   int     // Current step (1-based)
	Total     int     // Total steps
	Percent   float64 // Progress percentage (0.0 - 1.0)
	Width     int     // Terminal width
	ShowBar   bool    // Whether to show progress bar
	ShowSteps bool    // Whether to show step list
	bar       progress.Model
}

// NewProgress creates a new progress display
func NewProgress(label string, totalSteps int) *Progress {
	p := &Progress{
		Label:     label,
		Width:     GetTerminalWidth(),
		ShowBar:   true,
		ShowSteps: true,
		bar:       newBar(40),
	}
	p.SetTotal(totalSteps)
	return p
}

func newBar(width int) progress.Model {
	return progress.New(
		progress.WithDefaultGradient(),
		progress.WithWidth(width),
	)
}

// SetTotal resizes the step list, keeping steps that already exist
func (p *Progress) SetTotal(totalSteps int) *Progress {
	if totalSteps < 0 {
		totalSteps = 0
	}
	steps := make([]Step, totalSteps)
	for i := range steps {
		if i < len(p.Steps) {
			steps[i] = p.Steps[i]
			continue
		}
		steps[i] = Step{Number: i + 1, Status: StepPending}
	}
	p.Steps = steps
	p.Total = totalSteps
	p.recompute()
	return p
}

// SetWidth sets the terminal width for responsive rendering
func (p *Progress) SetWidth(width int) *Progress {
	p.Width = width
	barWidth := width - 20 // Leave room for percentage and step count
	if barWidth < 20 {
		barWidth = 20
	}
	if barWidth > 50 {
		barWidth = 50
	}
	p.bar = newBar(barWidth)
	return p
}

// SetStepNames sets the names for all steps
func (p *Progress) SetStepNames(names []string) *Progress {
	for i, name := range names {
		if i < len(p.Steps) {
			p.Steps[i].Name = name
		}
	}
	return p
}

// UpdateStep updates a specific step's status and optional message
func (p *Progress) UpdateStep(stepNumber int, status StepStatus, message string) {
	if stepNumber < 1 || stepNumber > len(p.Steps) {
		return
	}
	idx := stepNumber - 1
	p.Steps[idx].Status = status
	p.Steps[idx].Message = message

	if status == StepRunning {
		p.Current = stepNumber
	}
	p.recompute()
}

// recompute derives Percent from the finished steps
func (p *Progress) recompute() {
	if p.Total == 0 {
		p.Percent = 0
		return
	}
	done := 0
	for _, s := range p.Steps {
		if s.Status == StepComplete || s.Status == StepSkipped {
			done++
		}
	}
	p.Percent = float64(done) / float64(p.Total)
}

// CompleteStep marks a step as complete
func (p *Progress) CompleteStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepComplete, message)
}

// FailStep marks a step as failed
func (p *Progress) FailStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepFailed, message)
}

// StartStep marks a step as running
func (p *Progress) StartStep(stepNumber int, message string) {
	p.UpdateStep(stepNumber, StepRunning, message)
}

// SkipRemaining marks every pending step as skipped
func (p *Progress) SkipRemaining(message string) {
	for i := range p.Steps {
		if p.Steps[i].Status == StepPending {
			p.Steps[i].Status = StepSkipped
			p.Steps[i].Message = message
		}
	}
	p.recompute()
}

// Render returns the styled progress display as a string
func (p *Progress) Render() string {
	var b strings.Builder

	if p.Label != "" {
		b.WriteString(ProgressLabelStyle.Render(p.Label))
		b.WriteString("\n\n")
	}

	if p.ShowBar {
		b.WriteString(p.renderProgressBar())
		b.WriteString("\n\n")
	}

	if p.ShowSteps {
		b.WriteString(p.renderStepList())
	}

	return b.String()
}

// renderProgressBar renders the bar, percentage and step count on one line
func (p *Progress) renderProgressBar() string {
	barView := p.bar.ViewAs(p.Percent)
	percentStr := fmt.Sprintf("%3.0f%%", p.Percent*100)
	stepStr := fmt.Sprintf("[%d/%d]", p.Current, p.Total)

	return ProgressBarStyle().
		Render(fmt.Sprintf("%s  %s  %s", barView, percentStr, stepStr))
}

// renderStepList renders the list of steps
func (p *Progress) renderStepList() string {
	lines := make([]string, 0, len(p.Steps))
	for _, step := range p.Steps {
		lines = append(lines, p.renderStepLine(step))
	}
	return strings.Join(lines, "\n")
}

// stepAppearance returns the marker and name style for a status
func stepAppearance(status StepStatus) (string, lipgloss.Style) {
	switch status {
	case StepComplete:
		return StepMarkerComplete, StepCompleteStyle
	case StepRunning:
		return StepMarkerRunning, StepRunningStyle
	case StepFailed:
		return FailureMarker, ErrorTitleStyle
	case StepSkipped:
		return StepMarkerSkipped, StepPendingStyle
	default:
		return StepMarkerPending, StepPendingStyle
	}
}

// renderStepLine renders a single step line: "[n/total] name   marker (message)"
func (p *Progress) renderStepLine(step Step) string {
	marker, style := stepAppearance(step.Status)

	var b strings.Builder
	fmt.Fprintf(&b, "  [%d/%d] ", step.Number, p.Total)
	b.WriteString(style.Render(step.Name))

	// Markers line up in one column
	padding := 45 - lipgloss.Width(step.Name)
	if padding < 1 {
		padding = 1
	}
	b.WriteString(strings.Repeat(" ", padding))
	b.WriteString(style.Render(marker))

	if step.Message != "" {
		b.WriteString("  ")
		b.WriteString(StepNoteStyle.Render("(" + step.Message + ")"))
	}

	return b.String()
}

// String implements fmt.Stringer
func (p *Progress) String() string {
	return p.Render()
}

// StepCallback is the function signature for step progress updates.
// Commands call this to report progress.
type StepCallback func(stepNumber int, name string, status StepStatus, message string)
