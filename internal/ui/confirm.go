package ui

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ConfirmDangerousOperation displays a warning box on stdout and prompts
// the user to type phrase to proceed. Returns true if the user confirmed.
func ConfirmDangerousOperation(title string, warnings []string, disclaimer, phrase string) bool {
	return Confirm(os.Stdin, os.Stdout, title, warnings, disclaimer, phrase)
}

// Confirm is ConfirmDangerousOperation with explicit input and output
func Confirm(in io.Reader, out io.Writer, title string, warnings []string, disclaimer, phrase string) bool {
	width := GetTerminalWidth()

	lines := []string{
		"",
		lipgloss.NewStyle().
			Foreground(WarningColor).
			Bold(true).
			Render(fmt.Sprintf("   ⚠  WARNING  ─  %s", title)),
		"",
	}

	bulletStyle := lipgloss.NewStyle().Foreground(TextColor)
	for _, warning := range warnings {
		lines = append(lines, bulletStyle.Render("   • "+warning))
	}
	lines = append(lines, "")

	if disclaimer != "" {
		disclaimerStyle := lipgloss.NewStyle().
			Foreground(MutedColor).
			Italic(true).
			Width(width - 12).
			PaddingLeft(3)
		lines = append(lines, disclaimerStyle.Render(disclaimer), "")
	}

	box := lipgloss.NewStyle().
		Border(lipgloss.DoubleBorder()).
		BorderForeground(WarningColor).
		Width(width-2).
		Padding(0, 2).
		Render(strings.Join(lines, "\n"))

	fmt.Fprintln(out, box)
	fmt.Fprintln(out)

	promptStyle := lipgloss.NewStyle().
		Foreground(WarningColor).
		Bold(true)
	fmt.Fprint(out, promptStyle.Render(fmt.Sprintf("To proceed, type %q and press Enter: ", phrase)))

	input, err := bufio.NewReader(in).ReadString('\n')
	fmt.Fprintln(out)
	if err != nil && input == "" {
		return false
	}

	if strings.TrimSpace(input) == phrase {
		return true
	}

	cancelStyle := lipgloss.NewStyle().Foreground(MutedColor)
	fmt.Fprintln(out, cancelStyle.Render("  Operation cancelled."))
	fmt.Fprintln(out)
	return false
}

// RebootConfirmation asks before rebooting the device at addr
func RebootConfirmation(addr string) bool {
	return ConfirmDangerousOperation(
		"REBOOT DEVICE",
		[]string{
			"The PGenerator at " + addr + " will reboot",
			"Pattern output stops and the connection is dropped",
			"The device takes around a minute to come back",
		},
		"",
		"reboot",
	)
}

// ShutdownConfirmation asks before powering the device off
func ShutdownConfirmation(addr string) bool {
	return ConfirmDangerousOperation(
		"SHUT DOWN DEVICE",
		[]string{
			"The PGenerator at " + addr + " will power off",
			"It will not come back until power is cycled by hand",
		},
		"Make sure you can reach the device before proceeding. "+
			"A powered-off PGenerator cannot be woken over the network.",
		"shutdown",
	)
}
