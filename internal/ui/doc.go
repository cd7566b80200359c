// Package ui provides terminal UI components for the pgen-cfg CLI.
//
// This package uses Bubble Tea, Bubbles and Lipgloss to render device
// command output. Most components follow a "run once and exit" pattern:
// they render output compellingly but don't require user interaction.
// The monitor view is the exception and runs until the link drops or the
// user quits.
//
// # Components
//
//   - Header: Command banner showing operation name and parameters
//   - Progress: Progress bar with step list showing real-time status
//   - Result: Success/failure/warning boxes with styled information
//   - ReplyBox: Raw device reply, for send and verbose mode
//   - MonitorModel: Live connection status for the monitor command
//   - Confirm: Typed confirmation before reboot or shutdown
//
// These components are orchestrated by the Runner, which manages the
// header → progress → result flow for multi-step operations such as
// applying signal settings.
//
// Example:
//
//	runner := ui.NewRunner(ui.RunnerConfig{
//	    Title:      "Signal Mode",
//	    Command:    "pgen-cfg signal hdr10",
//	    Params:     map[string]string{"Device": "10.10.10.1:85"},
//	    TotalSteps: len(settings) + 2,
//	})
//
//	err := runner.Run(ctx, func(onStep ui.StepCallback) error {
//	    opts.OnStep = func(step, total int, desc string) {
//	        runner.Advance(onStep, step, desc)
//	    }
//	    return client.ApplySettings(settings, opts).Error
//	})
//
// # Logging Integration
//
// This package expects logging to be controlled via the PGEN_LOG_LEVEL
// environment variable. When unset or empty, zap logging is silent, allowing
// the curated UI output to be displayed cleanly.
package ui
