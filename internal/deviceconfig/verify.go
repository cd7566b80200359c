package deviceconfig

import (
	"fmt"
	"strings"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

// StepCallback reports progress of a multi-step apply. step counts from 1.
type StepCallback func(step, total int, description string)

// ApplyOptions configures ApplySettings
type ApplyOptions struct {
	// Verify reads the configuration back once after writing and compares
	// every written key. There is no retry loop.
	Verify bool

	// Restart issues RESTARTPGENERATOR: after a successful write (and
	// verification, if enabled) so the new values reach the HDMI output
	Restart bool

	// OnStep is called before each step (may be nil)
	OnStep StepCallback
}

// DefaultApplyOptions verifies and restarts
func DefaultApplyOptions() ApplyOptions {
	return ApplyOptions{Verify: true, Restart: true}
}

// ApplyResult contains the results of an apply
type ApplyResult struct {
	// Success indicates every write succeeded and, if verified, read back
	// with the written value
	Success bool

	// Applied lists the writes sent before any failure
	Applied []Setting

	// Verified is true when a read-back was performed
	Verified bool

	// Actual is the configuration read back (nil if not verified)
	Actual *Config

	// Mismatches lists written keys whose read-back value differs
	Mismatches []string

	// Restarted is true when RESTARTPGENERATOR: was sent
	Restarted bool

	// Error is any error that stopped the apply
	Error error
}

// ApplySettings writes settings in order with SetConfig, optionally reads
// them back once, then optionally restarts the service. The first
// transport error stops the apply. Verification happens before the
// restart because the restart interrupts the service.
func (c *Client) ApplySettings(settings []Setting, opts ApplyOptions) *ApplyResult {
	result := &ApplyResult{}

	total := len(settings)
	if opts.Verify {
		total++
	}
	if opts.Restart {
		total++
	}
	step := 0
	report := func(desc string) {
		step++
		if opts.OnStep != nil {
			opts.OnStep(step, total, desc)
		}
	}

	for _, s := range settings {
		if err := ValidateSetting(s); err != nil {
			result.Error = err
			return result
		}
	}

	for _, s := range settings {
		report(fmt.Sprintf("Setting %s = %s", s.Key, s.Value))
		if _, err := c.SetConfig(s.Key, s.Value); err != nil {
			result.Error = fmt.Errorf("failed to set %s: %w", s.Key, err)
			return result
		}
		result.Applied = append(result.Applied, s)
	}

	if opts.Verify {
		report("Verifying configuration")
		actual, err := c.GetAllConfig()
		if err != nil {
			result.Error = fmt.Errorf("failed to read back configuration: %w", err)
			return result
		}
		result.Verified = true
		result.Actual = actual
		result.Mismatches = verifySettings(settings, actual)
		if len(result.Mismatches) > 0 {
			logging.Warn("Configuration read-back mismatch",
				zap.Strings("mismatches", result.Mismatches),
			)
			result.Error = fmt.Errorf("verification failed: %s", formatMismatches(result.Mismatches))
			return result
		}
	}

	if opts.Restart {
		report("Restarting PGenerator service")
		if _, err := c.RestartService(); err != nil {
			result.Error = fmt.Errorf("failed to restart service: %w", err)
			return result
		}
		result.Restarted = true
	}

	result.Success = true
	return result
}

// verifySettings compares each written key with the read-back value.
// When a key was written twice only the last value counts.
func verifySettings(settings []Setting, actual *Config) []string {
	want := make(map[string]string, len(settings))
	var order []string
	for _, s := range settings {
		if _, seen := want[s.Key]; !seen {
			order = append(order, s.Key)
		}
		want[s.Key] = s.Value
	}

	var mismatches []string
	for _, key := range order {
		got, ok := actual.Lookup(key)
		switch {
		case !ok:
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, missing from device", key, want[key]))
		case got != want[key]:
			mismatches = append(mismatches, fmt.Sprintf("%s: expected %s, got %s", key, want[key], got))
		}
	}
	return mismatches
}

// formatMismatches creates a human-readable summary of mismatches
func formatMismatches(mismatches []string) string {
	switch len(mismatches) {
	case 0:
		return "none"
	case 1:
		return mismatches[0]
	}
	return fmt.Sprintf("%d mismatches: %s", len(mismatches), strings.Join(mismatches, "; "))
}

// ApplySignal validates and applies signal settings
func (c *Client) ApplySignal(s SignalSettings, opts ApplyOptions) *ApplyResult {
	if err := CombineErrors(ValidateSignalSettings(s)); err != nil {
		return &ApplyResult{Error: err}
	}
	return c.ApplySettings(s.Settings(), opts)
}

// ApplyHDR validates and applies HDR settings
func (c *Client) ApplyHDR(h HDRSettings, opts ApplyOptions) *ApplyResult {
	if err := CombineErrors(ValidateHDRSettings(h)); err != nil {
		return &ApplyResult{Error: err}
	}
	return c.ApplySettings(h.Settings(), opts)
}
