package ui

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/google/go-cmp/cmp"
)

func TestProgressPercent(t *testing.T) {
	p := NewProgress("Applying", 4)

	p.StartStep(1, "")
	if p.Current != 1 || p.Percent != 0 {
		t.Errorf("after start: current=%d percent=%v, want 1, 0", p.Current, p.Percent)
	}

	p.CompleteStep(1, "")
	p.CompleteStep(2, "")
	if p.Percent != 0.5 {
		t.Errorf("Percent = %v, want 0.5", p.Percent)
	}

	p.FailStep(3, "boom")
	p.SkipRemaining("not run")
	if p.Steps[3].Status != StepSkipped || p.Steps[3].Message != "not run" {
		t.Errorf("step 4 = %+v, want skipped", p.Steps[3])
	}
	if p.Steps[2].Status != StepFailed {
		t.Errorf("step 3 status = %v, want failed", p.Steps[2].Status)
	}
	if p.Percent != 0.75 {
		t.Errorf("Percent = %v, want 0.75", p.Percent)
	}

	// Out of range updates are ignored
	p.UpdateStep(0, StepComplete, "")
	p.UpdateStep(5, StepComplete, "")
}

func TestProgressSetTotalKeepsSteps(t *testing.T) {
	p := NewProgress("", 2)
	p.SetStepNames([]string{"first", "second"})
	p.CompleteStep(1, "")

	p.SetTotal(3)
	if p.Total != 3 || len(p.Steps) != 3 {
		t.Fatalf("Total = %d, len = %d, want 3", p.Total, len(p.Steps))
	}
	if p.Steps[0].Name != "first" || p.Steps[0].Status != StepComplete {
		t.Errorf("step 1 = %+v, want completed first", p.Steps[0])
	}
	if p.Steps[2].Number != 3 {
		t.Errorf("step 3 number = %d", p.Steps[2].Number)
	}
	if got := p.Percent; got < 0.33 || got > 0.34 {
		t.Errorf("Percent = %v, want 1/3", got)
	}
}

func TestReplyBoxExtractResults(t *testing.T) {
	box := NewReplyBox("is_sdr:1\nmax_bpc: 10\nnot a pair\nsome key:x\n:empty\n")

	want := map[string]string{"is_sdr": "1", "max_bpc": "10"}
	if diff := cmp.Diff(want, box.ExtractResults()); diff != "" {
		t.Errorf("ExtractResults mismatch (-want +got):\n%s", diff)
	}
}

func TestReplyBoxFilterPrefix(t *testing.T) {
	box := NewReplyBox("is_sdr:1\nis_hdr:0\nmax_bpc:8")
	box.FilterPrefix("is_")

	want := []string{"is_sdr:1", "is_hdr:0"}
	if diff := cmp.Diff(want, box.Lines); diff != "" {
		t.Errorf("Lines mismatch (-want +got):\n%s", diff)
	}
}

func TestReplyBoxTruncates(t *testing.T) {
	box := NewReplyBox("a\nb\nc\nd").SetMaxLines(2).SetWidth(80)
	out := box.Render()
	if !strings.Contains(out, "output truncated") {
		t.Errorf("Render() missing truncation marker:\n%s", out)
	}
	if len(box.Lines) != 4 {
		t.Errorf("Render() mutated Lines: %v", box.Lines)
	}
}

func TestHeaderParamsSorted(t *testing.T) {
	h := NewHeader("Signal", "pgen-cfg signal hdr10", map[string]string{
		"Mode":   "hdr10",
		"Device": "10.10.10.1:85",
	}).SetWidth(80)

	out := h.Render()
	if d, m := strings.Index(out, "Device:"), strings.Index(out, "Mode:"); d < 0 || m < 0 || d > m {
		t.Errorf("params not sorted in header:\n%s", out)
	}
	if !strings.Contains(out, "SIGNAL") {
		t.Errorf("title not upper-cased:\n%s", out)
	}
}

func TestResultRender(t *testing.T) {
	tests := []struct {
		name   string
		result *Result
		want   []string
	}{
		{
			name:   "success",
			result: NewSuccessResult("Signal mode complete", map[string]string{"Mode": "hdr10"}),
			want:   []string{"SUCCESS", "Signal mode complete", "Mode:", "hdr10"},
		},
		{
			name:   "failure",
			result: NewFailureResult("Apply failed", errors.New("max_bpc: expected 12, got 8"), []string{"check cable"}),
			want:   []string{"FAILED", "expected 12, got 8", "Troubleshooting:", "check cable"},
		},
		{
			name:   "warning",
			result: NewWarningResult("No devices", nil),
			want:   []string{WarningMarker, "WARNING", "No devices"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.result.SetWidth(100).Render()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("Render() missing %q:\n%s", w, out)
				}
			}
		})
	}
}

func TestClampWidth(t *testing.T) {
	tests := []struct {
		width int
		want  int
	}{
		{0, MinTerminalWidth},
		{MinTerminalWidth - 1, MinTerminalWidth},
		{80, 80},
		{MaxContentWidth + 40, MaxContentWidth},
	}

	for _, tt := range tests {
		if got := clampWidth(tt.width); got != tt.want {
			t.Errorf("clampWidth(%d) = %d, want %d", tt.width, got, tt.want)
		}
	}
}

func TestTroubleshootingBoxMinimumWidth(t *testing.T) {
	narrow := troubleshootingBoxStyle(MinTerminalWidth).GetWidth()
	if narrow != minTroubleshootWidth {
		t.Errorf("narrow width = %d, want %d", narrow, minTroubleshootWidth)
	}
	if got := troubleshootingBoxStyle(100).GetWidth(); got != 88 {
		t.Errorf("width at 100 columns = %d, want 88", got)
	}
	if got := troubleshootingBoxStyle(100).GetMarginLeft(); got != troubleshootingIndent {
		t.Errorf("margin = %d, want %d", got, troubleshootingIndent)
	}
}

func TestConfirm(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  bool
	}{
		{"typed phrase", "reboot\n", true},
		{"surrounding space", "  reboot  \n", true},
		{"no newline", "reboot", true},
		{"wrong phrase", "yes\n", false},
		{"empty", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var out bytes.Buffer
			got := Confirm(strings.NewReader(tt.input), &out, "REBOOT", []string{"goes away"}, "", "reboot")
			if got != tt.want {
				t.Errorf("Confirm(%q) = %v, want %v", tt.input, got, tt.want)
			}
			if !strings.Contains(out.String(), `type "reboot"`) {
				t.Errorf("prompt missing phrase:\n%s", out.String())
			}
		})
	}
}

func TestRunnerSteps(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:      "Signal Mode",
		Command:    "pgen-cfg signal sdr",
		TotalSteps: 4,
		Output:     &out,
	})

	err := r.Run(context.Background(), func(onStep StepCallback) error {
		r.Advance(onStep, 1, "Setting is_sdr = 1")
		r.Advance(onStep, 2, "Verifying configuration")
		return nil
	})
	if err != nil {
		t.Fatalf("Run() = %v", err)
	}

	got := make([]StepStatus, 0, 4)
	for _, s := range r.Progress().Steps {
		got = append(got, s.Status)
	}
	want := []StepStatus{StepComplete, StepComplete, StepSkipped, StepSkipped}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("step statuses mismatch (-want +got):\n%s", diff)
	}
	if !strings.Contains(out.String(), "Signal Mode complete") {
		t.Errorf("output missing success box:\n%s", out.String())
	}
}

func TestRunnerFailure(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{
		Title:      "HDR",
		TotalSteps: 3,
		Verbose:    true,
		Output:     &out,
	})
	r.SetReply("ERR:timeout")

	wantErr := errors.New("device went away")
	err := r.Run(context.Background(), func(onStep StepCallback) error {
		r.Advance(onStep, 1, "Setting eotf = 2")
		return wantErr
	})
	if !errors.Is(err, wantErr) {
		t.Fatalf("Run() = %v, want %v", err, wantErr)
	}

	steps := r.Progress().Steps
	if steps[0].Status != StepFailed {
		t.Errorf("step 1 = %v, want failed", steps[0].Status)
	}
	if steps[1].Status != StepSkipped || steps[1].Message != "not run" {
		t.Errorf("step 2 = %+v, want skipped (not run)", steps[1])
	}
	for _, w := range []string{"HDR failed", "device went away", "Troubleshooting:", "ERR:timeout"} {
		if !strings.Contains(out.String(), w) {
			t.Errorf("output missing %q", w)
		}
	}
}

func TestRunnerCancelledContext(t *testing.T) {
	var out bytes.Buffer
	r := NewRunner(RunnerConfig{Title: "Restart", Output: &out})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	called := false
	err := r.Run(ctx, func(StepCallback) error {
		called = true
		return nil
	})
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Run() = %v, want context.Canceled", err)
	}
	if called {
		t.Error("operation ran with a cancelled context")
	}
}

func TestMonitorModel(t *testing.T) {
	var m tea.Model = NewMonitorModel("10.10.10.1:85", 10*time.Second)

	m, cmd := m.Update(LinkStatusMsg{Alive: true, At: time.Now()})
	if cmd != nil {
		t.Error("alive status should not quit")
	}
	m, _ = m.Update(LinkStatusMsg{Alive: true, At: time.Now()})
	if got := m.(MonitorModel).Checks(); got != 2 {
		t.Errorf("Checks() = %d, want 2", got)
	}
	if !strings.Contains(m.View(), "Connected") {
		t.Errorf("View() = %q, want Connected", m.View())
	}

	m, cmd = m.Update(LinkStatusMsg{Alive: false, At: time.Now()})
	if cmd == nil {
		t.Fatal("lost link should quit")
	}
	if !m.(MonitorModel).Lost() {
		t.Error("Lost() = false after lost status")
	}
	if !strings.Contains(m.View(), "Connection lost") {
		t.Errorf("View() = %q, want Connection lost", m.View())
	}
}

func TestMonitorModelQuitKey(t *testing.T) {
	m := NewMonitorModel("10.10.10.1:85", time.Second)
	next, cmd := m.Update(tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune("q")})
	if cmd == nil {
		t.Fatal("q should quit")
	}
	if next.(MonitorModel).Lost() {
		t.Error("quitting is not a lost link")
	}
}
