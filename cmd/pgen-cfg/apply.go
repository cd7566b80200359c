package main

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/ui"
)

// Apply flags shared by config set, signal and hdr
var (
	noVerify  bool
	noRestart bool
	safeApply bool
	verbose   bool
)

// addApplyFlags registers the apply flags on cmd
func addApplyFlags(cmd *cobra.Command) {
	cmd.Flags().BoolVar(&noVerify, "no-verify", false, "Skip the read-back check after writing")
	cmd.Flags().BoolVar(&noRestart, "no-restart", false, "Do not restart the PGenerator service after writing")
	cmd.Flags().BoolVar(&safeApply, "safe", false, "Snapshot first and roll back if the apply fails")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "Show the verification read-back on failure")
}

// applyOptions returns the options selected by the apply flags
func applyOptions() deviceconfig.ApplyOptions {
	return deviceconfig.ApplyOptions{
		Verify:  !noVerify,
		Restart: !noRestart,
	}
}

// applyStepCount is the number of steps ApplySettings reports for n writes
func applyStepCount(n int, opts deviceconfig.ApplyOptions) int {
	if opts.Verify {
		n++
	}
	if opts.Restart {
		n++
	}
	return n
}

// applyRequest describes one apply driven through the progress UI
type applyRequest struct {
	Title    string
	Command  string
	Params   map[string]string
	Settings []deviceconfig.Setting
}

// runApply writes req.Settings with progress output. With --safe the
// writes go through a RollbackManager.
func runApply(ctx context.Context, client *deviceconfig.Client, req applyRequest) error {
	opts := applyOptions()

	runner := ui.NewRunner(ui.RunnerConfig{
		Title:      req.Title,
		Command:    req.Command,
		Params:     req.Params,
		TotalSteps: applyStepCount(len(req.Settings), opts),
		Verbose:    verbose,
	})

	_, err := runner.RunWithResult(ctx, func(onStep ui.StepCallback) (map[string]string, error) {
		last := 0
		opts.OnStep = func(step, total int, desc string) {
			// Rollback restarts the count; its steps only go to the log
			if step <= last {
				logging.Info("Rollback step", zap.Int("step", step), zap.Int("total", total), zap.String("step_desc", desc))
				return
			}
			last = step
			runner.Advance(onStep, step, desc)
		}

		var result *deviceconfig.ApplyResult
		if safeApply {
			safe := deviceconfig.NewRollbackManager(client).SafeApply(req.Settings, opts, req.Title)
			logging.Info("Safe apply finished", zap.String("result", safe.String()))
			if !safe.Success {
				if safe.ApplyResult != nil && safe.ApplyResult.Actual != nil {
					runner.SetReply(safe.ApplyResult.Actual.FormatTable())
				}
				return nil, safe.Error
			}
			result = safe.ApplyResult
		} else {
			result = client.ApplySettings(req.Settings, opts)
			if !result.Success {
				if result.Actual != nil {
					runner.SetReply(result.Actual.FormatTable())
				}
				return nil, result.Error
			}
		}
		return applyDetails(result), nil
	})
	return err
}

// applyDetails summarises a successful apply for the result box
func applyDetails(result *deviceconfig.ApplyResult) map[string]string {
	details := map[string]string{
		"Written":   strconv.Itoa(len(result.Applied)),
		"Verified":  yesNo(result.Verified),
		"Restarted": yesNo(result.Restarted),
	}
	if !result.Restarted {
		details["Note"] = "changes reach the HDMI output after 'pgen-cfg restart'"
	}
	return details
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "no"
}

// settingParams renders settings as header parameters
func settingParams(addr string, settings []deviceconfig.Setting) map[string]string {
	params := map[string]string{"Device": addr}
	for _, s := range settings {
		params[s.Key] = deviceconfig.LabelString(s.Key, s.Value)
	}
	return params
}

// intFlag returns the flag value when it was given, or current
func intFlag(cmd *cobra.Command, name string, value, current int) int {
	if cmd.Flags().Changed(name) {
		return value
	}
	return current
}

// parseKeyValues parses "key=value" arguments in order
func parseKeyValues(args []string) ([]deviceconfig.Setting, error) {
	settings := make([]deviceconfig.Setting, 0, len(args))
	for _, arg := range args {
		key, value, ok := strings.Cut(arg, "=")
		key = strings.TrimSpace(key)
		if !ok || key == "" {
			return nil, fmt.Errorf("invalid setting %q (want key=value)", arg)
		}
		settings = append(settings, deviceconfig.Setting{Key: key, Value: value})
	}
	return settings, nil
}
