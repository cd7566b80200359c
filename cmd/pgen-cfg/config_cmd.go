package main

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"

	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/session"
	"github.com/muurk/pgen/internal/ui"
)

var forceWrite bool

// configCmd groups PGenerator.conf access
var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Read and write PGenerator.conf settings",
	Long: `Read and write the device configuration (PGenerator.conf).

Writes are validated, sent one key at a time, read back once to verify
and followed by a service restart so they reach the HDMI output.`,
}

var configGetCmd = &cobra.Command{
	Use:   "get <key> [key...]",
	Short: "Read one or more configuration keys",
	Example: `  pgen-cfg config get max_bpc
  pgen-cfg config get eotf primaries max_luma`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return withClient(cmd.Context(), func(_ *session.Session, client *deviceconfig.Client) error {
			values := make(map[string]string, len(args))
			for _, key := range args {
				v, err := client.GetConfig(key)
				if err != nil {
					return fmt.Errorf("failed to read %s: %w", key, err)
				}
				values[key] = v
			}
			if outputFormat == formatJSON {
				return printJSON(values)
			}
			for _, key := range args {
				if outputFormat == formatCompact || len(args) == 1 {
					fmt.Println(values[key])
					continue
				}
				fmt.Printf("%s = %s\n", key, deviceconfig.LabelString(key, values[key]))
			}
			return nil
		})
	},
}

var configSetCmd = &cobra.Command{
	Use:   "set <key=value> [key=value...]",
	Short: "Write configuration keys",
	Long: `Write one or more configuration keys in the order given.

Keys already holding the requested value are skipped unless --force is
given. Known keys are range-checked before anything is sent.`,
	Example: `  # 10-bit output, no restart yet
  pgen-cfg config set max_bpc=10 --no-restart

  # Several keys with rollback on failure
  pgen-cfg config set eotf=2 primaries=1 --safe`,
	Args: cobra.MinimumNArgs(1),
	RunE: runConfigSet,
}

var configDumpCmd = &cobra.Command{
	Use:   "dump",
	Short: "Show the full device configuration",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		cmd.SilenceUsage = true
		return withClient(cmd.Context(), func(_ *session.Session, client *deviceconfig.Client) error {
			cfg, err := client.GetAllConfig()
			if err != nil {
				return err
			}
			switch outputFormat {
			case formatJSON:
				return printJSON(cfg.Map())
			case formatCompact:
				for _, key := range cfg.Keys() {
					fmt.Printf("%s=%s\n", key, cfg.Get(key, ""))
				}
				return nil
			}
			fmt.Print(cfg.FormatTable())
			return nil
		})
	},
}

var configLabelsCmd = &cobra.Command{
	Use:   "labels [key]",
	Short: "List the meaning of enumerated values",
	Long:  `List the values accepted by enumerated keys (color_format, eotf, primaries, ...). No device is needed.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		keys := labelKeys
		if len(args) == 1 {
			if deviceconfig.FormatLabelTable(args[0]) == "" {
				return fmt.Errorf("%s has no value labels (known: %s)", args[0], strings.Join(labelKeys, ", "))
			}
			keys = args
		}
		for i, key := range keys {
			if i > 0 {
				fmt.Println()
			}
			fmt.Print(deviceconfig.FormatLabelTable(key))
		}
		return nil
	},
}

// labelKeys are the enumerated keys in display order
var labelKeys = []string{
	deviceconfig.KeyColorFormat,
	deviceconfig.KeyColorimetry,
	deviceconfig.KeyQuantRange,
	deviceconfig.KeyEOTF,
	deviceconfig.KeyPrimaries,
	deviceconfig.KeyDVStatus,
	deviceconfig.KeyDVColorSpace,
	deviceconfig.KeyDVMetadata,
}

func init() {
	configSetCmd.Flags().BoolVar(&forceWrite, "force", false, "Write keys even when the device already holds the value")
	addApplyFlags(configSetCmd)

	configCmd.AddCommand(configGetCmd)
	configCmd.AddCommand(configSetCmd)
	configCmd.AddCommand(configDumpCmd)
	configCmd.AddCommand(configLabelsCmd)
	rootCmd.AddCommand(configCmd)
}

func runConfigSet(cmd *cobra.Command, args []string) error {
	requested, err := parseKeyValues(args)
	if err != nil {
		return err
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		var current *deviceconfig.Config
		if !forceWrite {
			if current, err = client.GetAllConfig(); err != nil {
				return fmt.Errorf("failed to read current configuration: %w", err)
			}
		}

		builder := deviceconfig.NewSettingsBuilder(current)
		for _, s := range requested {
			builder.Set(s.Key, s.Value)
		}
		settings, err := builder.Changes()
		if err != nil {
			ui.PrintFailure("Invalid settings", err, nil)
			return err
		}
		if len(settings) == 0 {
			keys := make([]string, 0, len(requested))
			for _, s := range requested {
				keys = append(keys, s.Key)
			}
			sort.Strings(keys)
			ui.PrintSuccess("Nothing to change", map[string]string{"Already set": strings.Join(keys, ", ")})
			return nil
		}

		return runApply(cmd.Context(), client, applyRequest{
			Title:    "Configuration",
			Command:  "pgen-cfg config set " + strings.Join(args, " "),
			Params:   settingParams(sess.Addr(), settings),
			Settings: settings,
		})
	})
}
