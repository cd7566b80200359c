package deviceconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/pgen/internal/protocol"
)

// PGenerator.conf keys
const (
	KeyIsSDR        = "is_sdr"
	KeyIsHDR        = "is_hdr"
	KeyIsLLDovi     = "is_ll_dovi"
	KeyIsStdDovi    = "is_std_dovi"
	KeyColorFormat  = "color_format"
	KeyColorimetry  = "colorimetry"
	KeyQuantRange   = "rgb_quant_range"
	KeyMaxBPC       = "max_bpc"
	KeyEOTF         = "eotf"
	KeyPrimaries    = "primaries"
	KeyMaxLuma      = "max_luma"
	KeyMinLuma      = "min_luma"
	KeyMaxCLL       = "max_cll"
	KeyMaxFALL      = "max_fall"
	KeyDVStatus     = "dv_status"
	KeyDVColorSpace = "dv_color_space"
	KeyDVMetadata   = "dv_metadata"
)

// EOTF values
const (
	EOTFSDRGamma = 0
	EOTFHDRGamma = 1
	EOTFPQ       = 2
	EOTFHLG      = 3
)

// SignalMode is the HDMI output mode selected by the is_* flags
type SignalMode string

const (
	ModeSDR            SignalMode = "SDR"
	ModeHDR10          SignalMode = "HDR10"
	ModeHLG            SignalMode = "HLG"
	ModeDolbyVisionLL  SignalMode = "Dolby Vision LL"
	ModeDolbyVisionStd SignalMode = "Dolby Vision Std"
)

// SignalModes lists every mode in menu order
var SignalModes = []SignalMode{ModeSDR, ModeHDR10, ModeHLG, ModeDolbyVisionLL, ModeDolbyVisionStd}

// ParseSignalMode accepts a mode name or a short alias (sdr, hdr10, hlg,
// dv-ll, dv-std), case-insensitive.
func ParseSignalMode(s string) (SignalMode, error) {
	norm := strings.ToLower(strings.TrimSpace(s))
	norm = strings.NewReplacer(" ", "-", "_", "-").Replace(norm)
	switch norm {
	case "sdr":
		return ModeSDR, nil
	case "hdr10", "hdr":
		return ModeHDR10, nil
	case "hlg":
		return ModeHLG, nil
	case "dv-ll", "dolby-vision-ll", "dovi-ll", "ll-dovi":
		return ModeDolbyVisionLL, nil
	case "dv-std", "dolby-vision-std", "dovi-std", "std-dovi", "dv":
		return ModeDolbyVisionStd, nil
	}
	return "", NewValidationError("mode", fmt.Sprintf("unknown signal mode %q (want sdr, hdr10, hlg, dv-ll or dv-std)", s))
}

// Preset returns the flag writes that select the mode. HDR10 and HLG
// also pin the EOTF.
func (m SignalMode) Preset() []Setting {
	flags := func(sdr, hdr, ll, std, dv string) []Setting {
		return []Setting{
			{KeyIsSDR, sdr},
			{KeyIsHDR, hdr},
			{KeyIsLLDovi, ll},
			{KeyIsStdDovi, std},
			{KeyDVStatus, dv},
		}
	}

	switch m {
	case ModeSDR:
		return flags("1", "0", "0", "0", "0")
	case ModeHDR10:
		return append(flags("0", "1", "0", "0", "0"), Setting{KeyEOTF, strconv.Itoa(EOTFPQ)})
	case ModeHLG:
		return append(flags("0", "1", "0", "0", "0"), Setting{KeyEOTF, strconv.Itoa(EOTFHLG)})
	case ModeDolbyVisionLL:
		return flags("0", "0", "1", "0", "1")
	case ModeDolbyVisionStd:
		return flags("0", "0", "0", "1", "1")
	}
	return nil
}

// IsDolbyVision reports whether the mode is one of the Dolby Vision modes
func (m SignalMode) IsDolbyVision() bool {
	return m == ModeDolbyVisionLL || m == ModeDolbyVisionStd
}

// DetectSignalMode derives the active mode from a configuration dump.
// Flags are checked in order is_sdr, is_hdr, is_ll_dovi, is_std_dovi;
// with none set the output is SDR.
func DetectSignalMode(c *Config) SignalMode {
	switch {
	case c.Get(KeyIsSDR, "") == "1":
		return ModeSDR
	case c.Get(KeyIsHDR, "") == "1":
		if c.Get(KeyEOTF, "2") == "3" {
			return ModeHLG
		}
		return ModeHDR10
	case c.Get(KeyIsLLDovi, "") == "1":
		return ModeDolbyVisionLL
	case c.Get(KeyIsStdDovi, "") == "1":
		return ModeDolbyVisionStd
	}
	return ModeSDR
}

// SignalSettings are the AVI InfoFrame settings applied by `signal`
type SignalSettings struct {
	Mode        SignalMode
	ColorFormat int // 0 RGB, 1 YCbCr 444, 2 YCbCr 422, 3 YCbCr 420
	Colorimetry int // 0 BT.709, 1 BT.2020
	QuantRange  int // 0 default, 1 limited, 2 full
	MaxBPC      int // 8, 10 or 12
}

// DefaultSignalSettings returns the values used when the device reports none
func DefaultSignalSettings() SignalSettings {
	return SignalSettings{
		Mode:        ModeSDR,
		ColorFormat: 0,
		Colorimetry: 0,
		QuantRange:  2,
		MaxBPC:      8,
	}
}

// SignalSettingsFromConfig reads signal settings from a dump, using the
// defaults for absent or non-numeric keys
func SignalSettingsFromConfig(c *Config) SignalSettings {
	d := DefaultSignalSettings()
	return SignalSettings{
		Mode:        DetectSignalMode(c),
		ColorFormat: c.Int(KeyColorFormat, d.ColorFormat),
		Colorimetry: c.Int(KeyColorimetry, d.Colorimetry),
		QuantRange:  c.Int(KeyQuantRange, d.QuantRange),
		MaxBPC:      c.Int(KeyMaxBPC, d.MaxBPC),
	}
}

// Settings returns the writes for these settings: the mode preset first,
// then the InfoFrame keys
func (s SignalSettings) Settings() []Setting {
	out := s.Mode.Preset()
	return append(out,
		Setting{KeyColorFormat, strconv.Itoa(s.ColorFormat)},
		Setting{KeyColorimetry, strconv.Itoa(s.Colorimetry)},
		Setting{KeyQuantRange, strconv.Itoa(s.QuantRange)},
		Setting{KeyMaxBPC, strconv.Itoa(s.MaxBPC)},
	)
}

// HDRSettings are the HDR static metadata and Dolby Vision settings
// applied by `hdr`
type HDRSettings struct {
	EOTF         int // 0 SDR gamma, 1 HDR gamma, 2 PQ, 3 HLG
	Primaries    int // 0 custom/BT.709, 1 BT.2020 D65, 2 P3 D65, 3 P3 DCI
	MaxLuma      int // mastering display max luminance, cd/m²
	MinLuma      int // mastering display min luminance, 0.0001 cd/m² units
	MaxCLL       int
	MaxFALL      int
	DVStatus     int // 0 disabled, 1 enabled
	DVColorSpace int // 0 YCbCr 422 12-bit, 1 RGB 444 8-bit tunnel, 2 YCbCr 444 10-bit
	DVMetadata   int // 0 type 1 static, 1 type 4 dynamic
}

// DefaultHDRSettings returns the values used when the device reports none
func DefaultHDRSettings() HDRSettings {
	return HDRSettings{
		EOTF:      EOTFPQ,
		Primaries: 1,
		MaxLuma:   1000,
		MinLuma:   5,
		MaxCLL:    1000,
		MaxFALL:   250,
	}
}

// HDRSettingsFromConfig reads HDR settings from a dump, using the defaults
// for absent or non-numeric keys
func HDRSettingsFromConfig(c *Config) HDRSettings {
	d := DefaultHDRSettings()
	return HDRSettings{
		EOTF:         c.Int(KeyEOTF, d.EOTF),
		Primaries:    c.Int(KeyPrimaries, d.Primaries),
		MaxLuma:      c.Int(KeyMaxLuma, d.MaxLuma),
		MinLuma:      c.Int(KeyMinLuma, d.MinLuma),
		MaxCLL:       c.Int(KeyMaxCLL, d.MaxCLL),
		MaxFALL:      c.Int(KeyMaxFALL, d.MaxFALL),
		DVStatus:     c.Int(KeyDVStatus, d.DVStatus),
		DVColorSpace: c.Int(KeyDVColorSpace, d.DVColorSpace),
		DVMetadata:   c.Int(KeyDVMetadata, d.DVMetadata),
	}
}

// Settings returns the writes for these settings
func (h HDRSettings) Settings() []Setting {
	return []Setting{
		{KeyEOTF, strconv.Itoa(h.EOTF)},
		{KeyPrimaries, strconv.Itoa(h.Primaries)},
		{KeyMaxLuma, strconv.Itoa(h.MaxLuma)},
		{KeyMinLuma, strconv.Itoa(h.MinLuma)},
		{KeyMaxCLL, strconv.Itoa(h.MaxCLL)},
		{KeyMaxFALL, strconv.Itoa(h.MaxFALL)},
		{KeyDVStatus, strconv.Itoa(h.DVStatus)},
		{KeyDVColorSpace, strconv.Itoa(h.DVColorSpace)},
		{KeyDVMetadata, strconv.Itoa(h.DVMetadata)},
	}
}

// Pattern shapes
const (
	ShapeRectangle = "RECTANGLE"
	ShapeCircle    = "CIRCLE"
	ShapeTriangle  = "TRIANGLE"
)

// Shapes lists the supported pattern shapes
var Shapes = []string{ShapeRectangle, ShapeCircle, ShapeTriangle}

// RGB is a pattern colour in device code values
type RGB struct {
	R, G, B int
}

// String returns the wire form "r,g,b"
func (c RGB) String() string {
	return fmt.Sprintf("%d,%d,%d", c.R, c.G, c.B)
}

// ParseRGB parses "r,g,b"
func ParseRGB(s string) (RGB, error) {
	parts := strings.Split(s, ",")
	if len(parts) != 3 {
		return RGB{}, NewValidationError("rgb", fmt.Sprintf("want r,g,b, got %q", s))
	}
	var vals [3]int
	for i, p := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(p))
		if err != nil {
			return RGB{}, NewValidationError("rgb", fmt.Sprintf("component %q is not a number", p))
		}
		vals[i] = n
	}
	return RGB{R: vals[0], G: vals[1], B: vals[2]}, nil
}

// Pattern is a single window drawn by the RGB command
type Pattern struct {
	Shape      string // RECTANGLE, CIRCLE or TRIANGLE
	Width      int
	Height     int
	Size       int // window size in percent
	Color      RGB
	Background *RGB // nil leaves the field empty
	Position   string
	Text       string
}

// DefaultPattern returns a full-size black rectangle on black
func DefaultPattern() Pattern {
	return Pattern{
		Shape:      ShapeRectangle,
		Width:      1920,
		Height:     1080,
		Size:       100,
		Background: &RGB{},
	}
}

// Dim returns the wire form "w,h"
func (p Pattern) Dim() string {
	return fmt.Sprintf("%d,%d", p.Width, p.Height)
}

// Command returns the RGB= command for the pattern
func (p Pattern) Command() string {
	bg := ""
	if p.Background != nil {
		bg = p.Background.String()
	}
	return protocol.BuildRGB(p.Shape, p.Dim(), strconv.Itoa(p.Size), p.Color.String(), bg, p.Position, p.Text)
}

// TestPatternCommand returns the TESTPATTERN: command drawing p under name
func (p Pattern) TestPatternCommand(name string) string {
	return protocol.BuildTestPattern(name, p.Shape, p.Dim(), strconv.Itoa(p.Size), p.Color.String())
}
