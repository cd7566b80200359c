package ui

import (
	"context"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/charmbracelet/lipgloss"
)

// RunnerConfig holds configuration for a multi-step device operation
type RunnerConfig struct {
	Title           string            // Operation title (e.g., "Signal Mode")
	Command         string            // Full command (e.g., "pgen-cfg signal hdr10")
	Params          map[string]string // Parameters to display in header
	TotalSteps      int               // Total number of steps (for progress)
	StepNames       []string          // Names for each step
	Verbose         bool              // Whether to show the last device reply
	Troubleshooting []string          // Tips shown on failure (defaults apply when empty)
	Output          io.Writer         // Output writer (default: os.Stdout)
}

// DefaultTroubleshooting is shown when an operation fails and no tips were given
var DefaultTroubleshooting = []string{
	"Check the PGenerator is powered and reachable (pgen-cfg scan)",
	"Confirm nothing else holds the connection on port 85",
	"Run with --log-level debug to see the raw exchange",
}

// Runner orchestrates the UI for a multi-step device operation.
// It manages the header → progress → result flow and provides
// callbacks for reporting progress.
type Runner struct {
	config    RunnerConfig
	header    *Header
	progress  *Progress
	output    io.Writer
	reply     string
	startTime time.Time
	width     int
}

// NewRunner creates a new runner
func NewRunner(config RunnerConfig) *Runner {
	if config.Output == nil {
		config.Output = os.Stdout
	}
	if len(config.Troubleshooting) == 0 {
		config.Troubleshooting = DefaultTroubleshooting
	}

	width := GetTerminalWidth()

	header := NewHeader(config.Title, config.Command, config.Params)
	header.SetWidth(width)

	var prog *Progress
	if config.TotalSteps > 0 {
		prog = NewProgress("", config.TotalSteps)
		prog.SetWidth(width)
		if len(config.StepNames) > 0 {
			prog.SetStepNames(config.StepNames)
		}
	}

	return &Runner{
		config:   config,
		header:   header,
		progress: prog,
		output:   config.Output,
		width:    width,
	}
}

// Operation is the function signature for the work a Runner drives.
// The operation receives a StepCallback to report progress.
type Operation func(onStep StepCallback) error

// Run executes the operation with UI updates.
// It displays the header, tracks progress, and shows the result.
func (r *Runner) Run(ctx context.Context, operation Operation) error {
	_, err := r.RunWithResult(ctx, func(onStep StepCallback) (map[string]string, error) {
		return nil, operation(onStep)
	})
	return err
}

// RunWithResult executes the operation and shows the returned details in
// the success box.
func (r *Runner) RunWithResult(ctx context.Context, operation func(onStep StepCallback) (map[string]string, error)) (map[string]string, error) {
	r.startTime = time.Now()

	_, _ = fmt.Fprintln(r.output, r.header.Render())
	_, _ = fmt.Fprintln(r.output)

	if err := ctx.Err(); err != nil {
		r.printFailure(err, 0)
		return nil, err
	}

	details, err := operation(r.createStepCallback())
	duration := time.Since(r.startTime)

	r.finishSteps(err)
	if err != nil {
		r.printFailure(err, duration)
	} else {
		r.printSuccess(details, duration)
	}

	return details, err
}

// Advance marks the running step complete and starts stepNumber.
// It adapts "starting step n" style progress reports to the step list.
func (r *Runner) Advance(onStep StepCallback, stepNumber int, name string) {
	if r.progress != nil && r.progress.Current > 0 && r.progress.Current < stepNumber {
		prev := r.progress.Steps[r.progress.Current-1]
		if prev.Status == StepRunning {
			onStep(prev.Number, "", StepComplete, "")
		}
	}
	onStep(stepNumber, name, StepRunning, "")
}

// SetReply stores a device reply for verbose display
func (r *Runner) SetReply(reply string) {
	r.reply = reply
}

// Progress returns the step tracker (nil when TotalSteps was 0)
func (r *Runner) Progress() *Progress {
	return r.progress
}

// createStepCallback creates the step callback function
func (r *Runner) createStepCallback() StepCallback {
	return func(stepNumber int, name string, status StepStatus, message string) {
		if r.progress == nil || stepNumber < 1 || stepNumber > len(r.progress.Steps) {
			return
		}

		if name != "" {
			r.progress.Steps[stepNumber-1].Name = name
		}
		r.progress.UpdateStep(stepNumber, status, message)

		step := r.progress.Steps[stepNumber-1]
		switch status {
		case StepComplete, StepFailed, StepSkipped:
			_, _ = fmt.Fprintln(r.output, r.progress.renderStepLine(step))
		case StepRunning:
			// Overwritten when the step finishes
			_, _ = fmt.Fprint(r.output, r.progress.renderStepLine(step)+"\r")
		}
	}
}

// finishSteps settles the running step and skips the ones never reached
func (r *Runner) finishSteps(err error) {
	if r.progress == nil {
		return
	}
	onStep := r.createStepCallback()
	if cur := r.progress.Current; cur > 0 && r.progress.Steps[cur-1].Status == StepRunning {
		if err != nil {
			onStep(cur, "", StepFailed, "")
		} else {
			onStep(cur, "", StepComplete, "")
		}
	}
	for _, step := range r.progress.Steps {
		if step.Status == StepPending {
			note := "not needed"
			if err != nil {
				note = "not run"
			}
			onStep(step.Number, "", StepSkipped, note)
		}
	}
}

// printSuccess prints a success result
func (r *Runner) printSuccess(details map[string]string, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	if details == nil {
		details = make(map[string]string)
	}
	details["Duration"] = duration.Round(time.Millisecond).String()

	result := NewSuccessResult(r.config.Title+" complete", details)
	result.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, result.Render())
	r.printReply()
}

// printFailure prints a failure result with troubleshooting
func (r *Runner) printFailure(err error, duration time.Duration) {
	_, _ = fmt.Fprintln(r.output)

	result := NewFailureResult(r.config.Title+" failed", err, r.config.Troubleshooting)
	result.SetWidth(r.width)
	if duration > 0 {
		result.AddDetail("Duration", duration.Round(time.Millisecond).String())
	}
	_, _ = fmt.Fprintln(r.output, result.Render())
	r.printReply()
}

func (r *Runner) printReply() {
	if !r.config.Verbose || r.reply == "" {
		return
	}
	_, _ = fmt.Fprintln(r.output)
	box := NewReplyBox(r.reply)
	box.SetWidth(r.width)
	_, _ = fmt.Fprintln(r.output, box.Render())
}

// --- Simple helper functions for commands that don't need a full Runner ---

// PrintCommandHeader prints a styled command header
func PrintCommandHeader(title, command string, params map[string]string) {
	fmt.Println(NewHeader(title, command, params).Render())
	fmt.Println()
}

// PrintSuccess prints a styled success result
func PrintSuccess(title string, details map[string]string) {
	fmt.Println()
	fmt.Println(NewSuccessResult(title, details).Render())
}

// PrintFailure prints a styled failure result
func PrintFailure(title string, err error, troubleshooting []string) {
	fmt.Println()
	fmt.Println(NewFailureResult(title, err, troubleshooting).Render())
}

// PrintWarning prints a styled warning result
func PrintWarning(title string, details map[string]string) {
	fmt.Println()
	fmt.Println(NewWarningResult(title, details).Render())
}

// PrintReply prints a styled device reply box
func PrintReply(reply string) {
	fmt.Println()
	fmt.Println(NewReplyBox(reply).Render())
}

// PrintPleaseWait prints a styled "please wait" message for long-running operations.
// The message parameter should describe what's happening, e.g., "Scanning for devices".
// The duration hint helps set user expectations, e.g., "up to 3 seconds".
func PrintPleaseWait(message string, durationHint string) {
	style := lipgloss.NewStyle().
		Foreground(PrimaryColor).
		Bold(true).
		PaddingLeft(2)

	hintStyle := lipgloss.NewStyle().
		Foreground(MutedColor).
		Italic(true)

	line := style.Render("⏳ " + message)
	if durationHint != "" {
		line += " " + hintStyle.Render("("+durationHint+")")
	}
	line += style.Render("...")

	fmt.Println()
	fmt.Println(line)
	fmt.Println()
}
