package main

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/session"
	"github.com/muurk/pgen/internal/ui"
)

// Signal flags
var (
	colorFormat int
	colorimetry int
	quantRange  int
	maxBPC      int
)

// HDR flags
var (
	eotf         int
	primaries    int
	maxLuma      int
	minLuma      int
	maxCLL       int
	maxFALL      int
	dvStatus     int
	dvColorSpace int
	dvMetadata   int
)

// Pattern flags
var (
	patternShape    string
	patternWidth    int
	patternHeight   int
	patternSize     int
	patternBG       string
	patternPosition string
	patternText     string
)

var signalCmd = &cobra.Command{
	Use:   "signal [mode]",
	Short: "Show or switch the HDMI signal mode",
	Long: `Show the current signal settings, or switch the output to a signal mode.

Modes: sdr, hdr10, hlg, dv-ll, dv-std. Settings not given as flags keep
their current device value.`,
	Example: `  # Show current settings
  pgen-cfg signal

  # HDR10, YCbCr 422, 12-bit
  pgen-cfg signal hdr10 --color-format 2 --max-bpc 12

  # Back to SDR full range RGB
  pgen-cfg signal sdr --color-format 0 --quant-range 2`,
	Args: cobra.MaximumNArgs(1),
	RunE: runSignal,
}

var hdrCmd = &cobra.Command{
	Use:   "hdr",
	Short: "Show or change HDR metadata and Dolby Vision settings",
	Long: `Show the current HDR static metadata, or change it with flags.
Only the flags given are changed. See 'pgen-cfg config labels' for
enumerated values.`,
	Example: `  # Show current HDR settings
  pgen-cfg hdr

  # 4000 nit P3 D65 mastering display
  pgen-cfg hdr --primaries 2 --max-luma 4000 --max-cll 4000 --max-fall 400`,
	Args: cobra.NoArgs,
	RunE: runHDR,
}

var patternCmd = &cobra.Command{
	Use:   "pattern <r,g,b>",
	Short: "Draw a solid colour window",
	Long: `Draw a window with the RGB command. Components are code values and
may go up to 1023 on a 10-bit output.`,
	Example: `  # Full-field white
  pgen-cfg pattern 255,255,255

  # 10% window of 50% grey on black
  pgen-cfg pattern 128,128,128 --size 10`,
	Args: cobra.ExactArgs(1),
	RunE: runPattern,
}

var testPatternCmd = &cobra.Command{
	Use:   "testpattern <name> [r,g,b]",
	Short: "Draw a named test pattern",
	Args:  cobra.RangeArgs(1, 2),
	RunE:  runTestPattern,
}

func init() {
	f := signalCmd.Flags()
	f.IntVar(&colorFormat, "color-format", 0, "0 RGB, 1 YCbCr 444, 2 YCbCr 422, 3 YCbCr 420")
	f.IntVar(&colorimetry, "colorimetry", 0, "0 BT.709, 1 BT.2020")
	f.IntVar(&quantRange, "quant-range", 0, "0 default, 1 limited, 2 full")
	f.IntVar(&maxBPC, "max-bpc", 8, "Bit depth (8, 10 or 12)")
	addApplyFlags(signalCmd)

	f = hdrCmd.Flags()
	f.IntVar(&eotf, "eotf", 0, "0 SDR gamma, 1 HDR gamma, 2 PQ, 3 HLG")
	f.IntVar(&primaries, "primaries", 0, "0 BT.709, 1 BT.2020 D65, 2 P3 D65, 3 P3 DCI")
	f.IntVar(&maxLuma, "max-luma", 0, "Mastering display max luminance (cd/m²)")
	f.IntVar(&minLuma, "min-luma", 0, "Mastering display min luminance (0.0001 cd/m²)")
	f.IntVar(&maxCLL, "max-cll", 0, "Maximum content light level")
	f.IntVar(&maxFALL, "max-fall", 0, "Maximum frame-average light level")
	f.IntVar(&dvStatus, "dv-status", 0, "Dolby Vision 0 disabled, 1 enabled")
	f.IntVar(&dvColorSpace, "dv-color-space", 0, "0 YCbCr 422 12-bit, 1 RGB 444 8-bit, 2 YCbCr 444 10-bit")
	f.IntVar(&dvMetadata, "dv-metadata", 0, "0 type 1 static, 1 type 4 dynamic")
	addApplyFlags(hdrCmd)

	def := deviceconfig.DefaultPattern()
	for _, c := range []*cobra.Command{patternCmd, testPatternCmd} {
		f = c.Flags()
		f.StringVar(&patternShape, "shape", def.Shape, "RECTANGLE, CIRCLE or TRIANGLE")
		f.IntVar(&patternWidth, "width", def.Width, "Frame width")
		f.IntVar(&patternHeight, "height", def.Height, "Frame height")
		f.IntVar(&patternSize, "size", def.Size, "Window size in percent")
	}
	f = patternCmd.Flags()
	f.StringVar(&patternBG, "bg", def.Background.String(), "Background r,g,b (empty for none)")
	f.StringVar(&patternPosition, "position", "", "Window position")
	f.StringVar(&patternText, "text", "", "Text drawn with the window")

	rootCmd.AddCommand(signalCmd)
	rootCmd.AddCommand(hdrCmd)
	rootCmd.AddCommand(patternCmd)
	rootCmd.AddCommand(testPatternCmd)
}

func runSignal(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}

	var mode deviceconfig.SignalMode
	if len(args) == 1 {
		m, err := deviceconfig.ParseSignalMode(args[0])
		if err != nil {
			return err
		}
		mode = m
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		current, err := client.GetSignalSettings()
		if err != nil {
			return err
		}

		if mode == "" {
			switch outputFormat {
			case formatJSON:
				return printJSON(current)
			case formatCompact:
				fmt.Println(current.FormatCompact())
				return nil
			}
			fmt.Print(current.FormatDetailed())
			return nil
		}

		want := deviceconfig.SignalSettings{
			Mode:        mode,
			ColorFormat: intFlag(cmd, "color-format", colorFormat, current.ColorFormat),
			Colorimetry: intFlag(cmd, "colorimetry", colorimetry, current.Colorimetry),
			QuantRange:  intFlag(cmd, "quant-range", quantRange, current.QuantRange),
			MaxBPC:      intFlag(cmd, "max-bpc", maxBPC, current.MaxBPC),
		}
		if err := deviceconfig.CombineErrors(deviceconfig.ValidateSignalSettings(want)); err != nil {
			ui.PrintFailure("Invalid signal settings", err, nil)
			return err
		}

		settings := want.Settings()
		return runApply(cmd.Context(), client, applyRequest{
			Title:    "Signal Mode",
			Command:  "pgen-cfg signal " + strings.Join(args, " "),
			Params:   map[string]string{"Device": sess.Addr(), "Mode": string(mode), "Bit depth": strconv.Itoa(want.MaxBPC)},
			Settings: settings,
		})
	})
}

func runHDR(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		cfg, err := client.GetAllConfig()
		if err != nil {
			return err
		}
		current := deviceconfig.HDRSettingsFromConfig(cfg)

		if !hdrFlagsChanged(cmd) {
			if outputFormat == formatJSON {
				return printJSON(current)
			}
			fmt.Print(current.FormatDetailed())
			return nil
		}

		want := deviceconfig.HDRSettings{
			EOTF:         intFlag(cmd, "eotf", eotf, current.EOTF),
			Primaries:    intFlag(cmd, "primaries", primaries, current.Primaries),
			MaxLuma:      intFlag(cmd, "max-luma", maxLuma, current.MaxLuma),
			MinLuma:      intFlag(cmd, "min-luma", minLuma, current.MinLuma),
			MaxCLL:       intFlag(cmd, "max-cll", maxCLL, current.MaxCLL),
			MaxFALL:      intFlag(cmd, "max-fall", maxFALL, current.MaxFALL),
			DVStatus:     intFlag(cmd, "dv-status", dvStatus, current.DVStatus),
			DVColorSpace: intFlag(cmd, "dv-color-space", dvColorSpace, current.DVColorSpace),
			DVMetadata:   intFlag(cmd, "dv-metadata", dvMetadata, current.DVMetadata),
		}
		if err := deviceconfig.CombineErrors(deviceconfig.ValidateHDRSettings(want)); err != nil {
			ui.PrintFailure("Invalid HDR settings", err, nil)
			return err
		}

		// Only the keys that differ from the device are written
		settings, err := deviceconfig.NewSettingsBuilder(cfg).WithHDR(want).Changes()
		if err != nil {
			return err
		}
		if len(settings) == 0 {
			ui.PrintSuccess("HDR settings already match", map[string]string{"Device": sess.Addr()})
			return nil
		}

		return runApply(cmd.Context(), client, applyRequest{
			Title:    "HDR Metadata",
			Command:  "pgen-cfg hdr",
			Params:   settingParams(sess.Addr(), settings),
			Settings: settings,
		})
	})
}

// hdrFlags are the flags that change an HDR setting
var hdrFlags = []string{
	"eotf", "primaries", "max-luma", "min-luma", "max-cll", "max-fall",
	"dv-status", "dv-color-space", "dv-metadata",
}

func hdrFlagsChanged(cmd *cobra.Command) bool {
	for _, name := range hdrFlags {
		if cmd.Flags().Changed(name) {
			return true
		}
	}
	return false
}

// buildPattern assembles a pattern from the pattern flags
func buildPattern(color string, withBackground bool) (deviceconfig.Pattern, error) {
	p := deviceconfig.Pattern{
		Shape:  strings.ToUpper(patternShape),
		Width:  patternWidth,
		Height: patternHeight,
		Size:   patternSize,
	}
	if color != "" {
		c, err := deviceconfig.ParseRGB(color)
		if err != nil {
			return p, err
		}
		p.Color = c
	}
	if withBackground {
		p.Position = patternPosition
		p.Text = patternText
		if patternBG != "" {
			bg, err := deviceconfig.ParseRGB(patternBG)
			if err != nil {
				return p, err
			}
			p.Background = &bg
		}
	}
	return p, deviceconfig.CombineErrors(deviceconfig.ValidatePattern(p))
}

func runPattern(cmd *cobra.Command, args []string) error {
	p, err := buildPattern(args[0], true)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		if _, err := client.SendRGB(p); err != nil {
			ui.PrintFailure("Pattern failed", err, nil)
			return err
		}
		if outputFormat == formatDetailed {
			ui.PrintSuccess("Pattern drawn", map[string]string{
				"Device": sess.Addr(),
				"Color":  p.Color.String(),
				"Shape":  p.Shape,
				"Size":   strconv.Itoa(p.Size) + "%",
			})
		}
		return nil
	})
}

func runTestPattern(cmd *cobra.Command, args []string) error {
	color := ""
	if len(args) == 2 {
		color = args[1]
	}
	p, err := buildPattern(color, false)
	if err != nil {
		return err
	}
	name := args[0]
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		if _, err := client.TestPattern(name, p); err != nil {
			ui.PrintFailure("Test pattern failed", err, nil)
			return err
		}
		if outputFormat == formatDetailed {
			ui.PrintSuccess("Test pattern drawn", map[string]string{"Device": sess.Addr(), "Pattern": name})
		}
		return nil
	})
}
