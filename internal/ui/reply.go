package ui

import (
	"sort"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ReplyBox displays raw text returned by the device.
// Used by send and in verbose mode to show exactly what came back.
type ReplyBox struct {
	Title    string   // e.g., "Device Reply"
	Content  string   // The raw reply
	Lines    []string // Reply split into lines (for filtering)
	Width    int      // Terminal width
	MaxLines int      // Maximum lines to display (0 = unlimited)
}

// NewReplyBox creates a new reply box
func NewReplyBox(content string) *ReplyBox {
	content = strings.TrimRight(content, "\r\n")
	return &ReplyBox{
		Title:   "Device Reply",
		Content: content,
		Lines:   strings.Split(content, "\n"),
		Width:   GetTerminalWidth(),
	}
}

// SetWidth sets the terminal width for responsive rendering
func (r *ReplyBox) SetWidth(width int) *ReplyBox {
	r.Width = width
	return r
}

// SetTitle sets a custom title for the box
func (r *ReplyBox) SetTitle(title string) *ReplyBox {
	r.Title = title
	return r
}

// SetMaxLines limits the number of lines displayed
func (r *ReplyBox) SetMaxLines(max int) *ReplyBox {
	r.MaxLines = max
	return r
}

// FilterPrefix keeps only lines starting with one of the prefixes
func (r *ReplyBox) FilterPrefix(prefixes ...string) *ReplyBox {
	var filtered []string
	for _, line := range r.Lines {
		for _, prefix := range prefixes {
			if strings.HasPrefix(strings.TrimSpace(line), prefix) {
				filtered = append(filtered, line)
				break
			}
		}
	}
	r.Lines = filtered
	r.Content = strings.Join(filtered, "\n")
	return r
}

// ExtractResults collects "key:value" lines, as found in configuration
// dumps. Keys with spaces are ignored.
func (r *ReplyBox) ExtractResults() map[string]string {
	results := make(map[string]string)
	for _, line := range r.Lines {
		key, value, ok := strings.Cut(strings.TrimSpace(line), ":")
		key = strings.TrimSpace(key)
		if !ok || key == "" || strings.Contains(key, " ") || len(key) >= 40 {
			continue
		}
		results[key] = strings.TrimSpace(value)
	}
	return results
}

func (r *ReplyBox) boxWidth() int {
	width := r.Width
	if width < MinTerminalWidth {
		width = MinTerminalWidth
	}
	return width
}

// Render returns the styled reply box as a string
func (r *ReplyBox) Render() string {
	lines := r.Lines
	if r.MaxLines > 0 && len(lines) > r.MaxLines {
		lines = append(lines[:r.MaxLines:r.MaxLines], "... (output truncated)")
	}

	inner := lipgloss.JoinVertical(lipgloss.Left,
		ReplyTitleStyle.Render(r.Title),
		"",
		ReplyContentStyle.Render(strings.Join(lines, "\n")),
	)
	return ReplyBoxStyle(r.boxWidth()).MarginLeft(2).Render(inner)
}

// RenderCompact renders only the key:value pairs, sorted by key, falling
// back to Render when there are none
func (r *ReplyBox) RenderCompact() string {
	results := r.ExtractResults()
	if len(results) == 0 {
		return r.Render()
	}

	keys := make([]string, 0, len(results))
	for k := range results {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	lines := make([]string, 0, len(keys))
	for _, key := range keys {
		lines = append(lines, "  "+ReplyContentStyle.Render(key+": "+results[key]))
	}

	inner := lipgloss.JoinVertical(lipgloss.Left,
		ReplyTitleStyle.Render(r.Title+" (summary)"),
		"",
		strings.Join(lines, "\n"),
	)
	return ReplyBoxStyle(r.boxWidth()).MarginLeft(2).Render(inner)
}

// String implements fmt.Stringer
func (r *ReplyBox) String() string {
	return r.Render()
}

// RenderReply renders a reply box with the given content
func RenderReply(content string) string {
	return NewReplyBox(content).Render()
}
