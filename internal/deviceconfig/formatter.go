package deviceconfig

import (
	"fmt"
	"strconv"
	"strings"
)

// Value labels shown next to enumerated settings
var valueLabels = map[string][]string{
	KeyColorFormat:  {"RGB", "YCbCr 444", "YCbCr 422", "YCbCr 420"},
	KeyColorimetry:  {"BT.709", "BT.2020"},
	KeyQuantRange:   {"Default", "Limited (16-235)", "Full (0-255)"},
	KeyEOTF:         {"SDR Gamma", "HDR Gamma", "SMPTE ST.2084 (PQ)", "HLG"},
	KeyPrimaries:    {"Custom / BT.709", "BT.2020 / D65", "P3 / D65", "P3 / DCI Theater"},
	KeyDVStatus:     {"Disabled", "Enabled"},
	KeyDVColorSpace: {"YCbCr 422 (12-bit)", "RGB 444 (8-bit tunnel)", "YCbCr 444 (10-bit)"},
	KeyDVMetadata:   {"Type 1 (static)", "Type 4 (dynamic)"},
}

// Label returns "n — label" for an enumerated key, or the bare value when
// the key or value has no label
func Label(key string, value int) string {
	labels, ok := valueLabels[key]
	if !ok || value < 0 || value >= len(labels) {
		return strconv.Itoa(value)
	}
	return fmt.Sprintf("%d — %s", value, labels[value])
}

// LabelString is Label for a raw string value
func LabelString(key, value string) string {
	n, err := strconv.Atoi(value)
	if err != nil {
		return value
	}
	return Label(key, n)
}

// FormatLabelTable returns the value table for an enumerated key
func FormatLabelTable(key string) string {
	labels, ok := valueLabels[key]
	if !ok {
		return ""
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("=== %s ===\n", key))
	for i := range labels {
		b.WriteString("  " + Label(key, i) + "\n")
	}
	return b.String()
}

func orDash(s string) string {
	if s == "" {
		return "—"
	}
	return s
}

// Summary returns a one-line summary of the device
func (si *SystemInfo) Summary() string {
	return fmt.Sprintf("PGenerator %s on %s (%s)", orDash(si.Version), orDash(si.Hostname), orDash(si.Model))
}

// FormatDetailed returns the system info as an aligned block
func (si *SystemInfo) FormatDetailed() string {
	var b strings.Builder

	temp := orDash(si.Temperature)
	if si.Temperature != "" {
		temp += " °C"
	}

	b.WriteString("=== System Information ===\n")
	b.WriteString(fmt.Sprintf("Version:     %s\n", orDash(si.Version)))
	b.WriteString(fmt.Sprintf("Model:       %s\n", orDash(si.Model)))
	b.WriteString(fmt.Sprintf("Hostname:    %s\n", orDash(si.Hostname)))
	b.WriteString(fmt.Sprintf("Temperature: %s\n", temp))
	b.WriteString(fmt.Sprintf("Resolution:  %s\n", orDash(si.Resolution)))
	b.WriteString(fmt.Sprintf("HDMI:        %s\n", orDash(si.HDMIInfo)))
	b.WriteString(fmt.Sprintf("Up since:    %s\n", orDash(si.Uptime)))

	return b.String()
}

// FormatDetailed returns one line per interface
func (n *NetworkInfo) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Network Interfaces ===\n")
	for _, iface := range n.Interfaces {
		mac := orDash(iface.MAC)
		if iface.Name == "usb0" && iface.MAC == "" {
			mac = ""
		}
		b.WriteString(fmt.Sprintf("%-6s IP: %-16s MAC: %s\n", iface.Name, orDash(iface.IP), mac))
	}
	if n.AllIPMAC != "" {
		b.WriteString("\n")
		b.WriteString(fmt.Sprintf("All: %s\n", n.AllIPMAC))
	}

	return b.String()
}

// FormatDetailed returns the signal settings with value labels
func (s SignalSettings) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== Signal ===\n")
	b.WriteString(fmt.Sprintf("Mode:          %s\n", s.Mode))
	b.WriteString(fmt.Sprintf("Color format:  %s\n", Label(KeyColorFormat, s.ColorFormat)))
	b.WriteString(fmt.Sprintf("Colorimetry:   %s\n", Label(KeyColorimetry, s.Colorimetry)))
	b.WriteString(fmt.Sprintf("Quant range:   %s\n", Label(KeyQuantRange, s.QuantRange)))
	b.WriteString(fmt.Sprintf("Bit depth:     %d\n", s.MaxBPC))

	return b.String()
}

// FormatCompact returns the signal settings on one line
func (s SignalSettings) FormatCompact() string {
	return fmt.Sprintf("%s, format=%d, colorimetry=%d, range=%d, %d-bit",
		s.Mode, s.ColorFormat, s.Colorimetry, s.QuantRange, s.MaxBPC)
}

// FormatDetailed returns the HDR settings with value labels
func (h HDRSettings) FormatDetailed() string {
	var b strings.Builder

	b.WriteString("=== HDR Metadata ===\n")
	b.WriteString(fmt.Sprintf("EOTF:          %s\n", Label(KeyEOTF, h.EOTF)))
	b.WriteString(fmt.Sprintf("Primaries:     %s\n", Label(KeyPrimaries, h.Primaries)))
	b.WriteString(fmt.Sprintf("Max luminance: %d\n", h.MaxLuma))
	b.WriteString(fmt.Sprintf("Min luminance: %d\n", h.MinLuma))
	b.WriteString(fmt.Sprintf("MaxCLL:        %d\n", h.MaxCLL))
	b.WriteString(fmt.Sprintf("MaxFALL:       %d\n", h.MaxFALL))
	b.WriteString("\n")
	b.WriteString("=== Dolby Vision ===\n")
	b.WriteString(fmt.Sprintf("Status:        %s\n", Label(KeyDVStatus, h.DVStatus)))
	b.WriteString(fmt.Sprintf("Color space:   %s\n", Label(KeyDVColorSpace, h.DVColorSpace)))
	b.WriteString(fmt.Sprintf("Metadata:      %s\n", Label(KeyDVMetadata, h.DVMetadata)))

	return b.String()
}

// FormatTable returns every key of the dump, one "key = value" per line,
// in dump order
func (c *Config) FormatTable() string {
	keys := c.Keys()
	if len(keys) == 0 {
		return "(empty configuration)\n"
	}

	width := 0
	for _, k := range keys {
		if len(k) > width {
			width = len(k)
		}
	}

	var b strings.Builder
	for _, k := range keys {
		v, _ := c.Lookup(k)
		b.WriteString(fmt.Sprintf("%-*s = %s\n", width, k, v))
	}
	return b.String()
}

// FormatSettings returns the pending writes, one per line
func FormatSettings(settings []Setting) string {
	if len(settings) == 0 {
		return "(no changes specified)\n"
	}
	var b strings.Builder
	b.WriteString("=== Configuration Changes ===\n")
	for _, s := range settings {
		b.WriteString(fmt.Sprintf("  %s = %s\n", s.Key, LabelString(s.Key, s.Value)))
	}
	return b.String()
}

// FormatDiff returns a formatted diff between two configurations
func FormatDiff(old, new *Config) string {
	var b strings.Builder

	b.WriteString("=== Configuration Differences ===\n")
	changes := old.Diff(new)
	if len(changes) == 0 {
		b.WriteString("\n(no differences detected)\n")
		return b.String()
	}
	for _, ch := range changes {
		b.WriteString("  " + ch.String() + "\n")
	}
	return b.String()
}
