package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/discovery"
	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/session"
	"github.com/muurk/pgen/internal/ui"
)

// Command flags
var (
	scanWindow    time.Duration
	broadcastOnly bool
	assumeYes     bool
)

func init() {
	rootCmd.AddCommand(scanCmd)
	rootCmd.AddCommand(infoCmd)
	rootCmd.AddCommand(networkCmd)
	rootCmd.AddCommand(edidCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(restartCmd)
	rootCmd.AddCommand(rebootCmd)
	rootCmd.AddCommand(shutdownCmd)
}

// scanCmd discovers devices on the network
var scanCmd = &cobra.Command{
	Use:   "scan",
	Short: "Scan for PGenerator devices on the network",
	Long: `Scan for PGenerator devices with a UDP broadcast on port 1977 and,
unless --broadcast-only is given, an mDNS browse for hosts named
pgenerator*.

Every device answering "I am a PGenerator" is listed once, in the order
it answered.`,
	Example: `  # Scan for 3 seconds (default)
  pgen-cfg scan

  # Longer scan on a busy network
  pgen-cfg scan --window 10s

  # Machine-readable output
  pgen-cfg scan --format json`,
	RunE: runScan,
}

func init() {
	scanCmd.Flags().DurationVar(&scanWindow, "window", discovery.DefaultScanTimeout, "How long to listen for replies")
	scanCmd.Flags().BoolVar(&broadcastOnly, "broadcast-only", false, "Skip the mDNS browse")
}

func runScan(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	if outputFormat != formatJSON {
		ui.PrintPleaseWait("Scanning for PGenerator devices", scanWindow.String())
	}

	var (
		devices []*discovery.Device
		err     error
	)
	if broadcastOnly {
		scanner := discovery.NewScanner()
		scanner.Timeout = scanWindow
		devices, err = scanner.ScanForDevicesWithContext(cmd.Context())
	} else {
		devices, err = discovery.DiscoverAll(cmd.Context(), scanWindow)
	}
	if err != nil {
		return fmt.Errorf("scan failed: %w", err)
	}

	reg := loadRegistry()
	// Only devices already in the registry are touched
	for _, d := range devices {
		if reg.GetDevice(d.IP) != nil {
			reg.UpdateDeviceLastSeen(d.IP)
		}
	}
	if err := reg.Save(); err != nil {
		logging.Debug("Failed to save config", zap.Error(err))
	}

	if outputFormat == formatJSON {
		return printJSON(devices)
	}

	if len(devices) == 0 {
		ui.PrintWarning("No devices found", nil)
		fmt.Println("\nTroubleshooting:")
		fmt.Println("  - Ensure the PGenerator is powered on and booted")
		fmt.Println("  - Connect to its WiFi AP, Bluetooth PAN or USB link")
		fmt.Println("  - Broadcasts do not cross routers; try --device <ip>")
		fmt.Println("  - Try increasing --window on slow networks")
		return nil
	}

	fmt.Printf("Found %d device(s):\n\n", len(devices))
	for i, d := range devices {
		name := d.Hostname
		if dev := reg.GetDevice(d.IP); dev != nil && dev.Nickname != "" {
			name = dev.Nickname
		}
		if name == "" {
			name = d.IP
		}
		if outputFormat == formatCompact {
			fmt.Printf("%s\t%s\t%s\n", d.Addr(), d.Source, name)
			continue
		}
		fmt.Printf("%d. %s\n", i+1, name)
		fmt.Printf("   Address: %s\n", d.Addr())
		fmt.Printf("   Found:   %s\n", d.Source)
		if d.Reply != "" {
			fmt.Printf("   Reply:   %s\n", strings.TrimSpace(d.Reply))
		}
		fmt.Println()
	}

	fmt.Println("Use 'pgen-cfg info --device <ip>' to query a device")
	fmt.Println("Use 'pgen-cfg devices add <ip> --nickname <name>' to remember one")
	return nil
}

// infoCmd shows device identity and status
var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show device information",
	Long: `Query the device version, model, hostname, temperature, output
resolution, HDMI status and uptime with a single MULTIPLE request.`,
	Example: `  # Auto-connect and show info
  pgen-cfg info

  # Specific device, JSON output
  pgen-cfg info --device 10.10.10.1 --format json`,
	RunE: runInfo,
}

func runInfo(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		info, err := client.GetSystemInfo()
		if err != nil {
			return err
		}

		reg := loadRegistry()
		reg.UpdateDeviceInfo(sess.Host(), info.Model, info.Hostname)
		if err := reg.Save(); err != nil {
			logging.Debug("Failed to save config", zap.Error(err))
		}

		switch outputFormat {
		case formatJSON:
			return printJSON(info)
		case formatCompact:
			fmt.Println(info.Summary())
			return nil
		}
		fmt.Printf("Device: %s\n\n", sess.Addr())
		return ui.RenderOnce(info.FormatDetailed() + "\n")
	})
}

// networkCmd shows the device network interfaces
var networkCmd = &cobra.Command{
	Use:   "network",
	Short: "Show device network interfaces",
	Long:  `Show the IP and MAC address of every device interface (ap0, wlan0, eth0, bnep, usb0).`,
	RunE:  runNetwork,
}

func runNetwork(cmd *cobra.Command, args []string) error {
	if err := checkFormat(); err != nil {
		return err
	}
	cmd.SilenceUsage = true

	return withClient(cmd.Context(), func(_ *session.Session, client *deviceconfig.Client) error {
		info, err := client.GetNetworkInfo()
		if err != nil {
			return err
		}
		switch outputFormat {
		case formatJSON:
			return printJSON(info)
		case formatCompact:
			for _, iface := range info.Interfaces {
				if iface.IP != "" {
					fmt.Printf("%s\t%s\t%s\n", iface.Name, iface.IP, iface.MAC)
				}
			}
			return nil
		}
		fmt.Println(info.FormatDetailed())
		return nil
	})
}

// edidCmd shows the EDID of the attached display
var edidCmd = &cobra.Command{
	Use:   "edid",
	Short: "Show the EDID report of the connected display",
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withClient(cmd.Context(), func(_ *session.Session, client *deviceconfig.Client) error {
			edid, err := client.GetEDID()
			if err != nil {
				return err
			}
			fmt.Println(edid)
			return nil
		})
	},
}

// sendCmd sends a raw command
var sendCmd = &cobra.Command{
	Use:   "send <command>",
	Short: "Send a raw command and print the reply",
	Long: `Send one command exactly as given (framing is added) and print the
reply without interpretation. Arguments are joined with spaces.`,
	Example: `  pgen-cfg send CMD:GET_PGENERATOR_VERSION
  pgen-cfg send 'RGB=RECTANGLE;1920,1080;10;255,255,255;0,0,0;;'`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		command := strings.Join(args, " ")
		return withClient(cmd.Context(), func(_ *session.Session, client *deviceconfig.Client) error {
			reply, err := client.Raw(command)
			if err != nil {
				return err
			}
			if outputFormat == formatDetailed {
				ui.PrintReply(reply)
				return nil
			}
			fmt.Println(reply)
			return nil
		})
	},
}

// restartCmd restarts the PGenerator service
var restartCmd = &cobra.Command{
	Use:   "restart",
	Short: "Restart the PGenerator service",
	Long:  `Restart the PGenerator software so configuration changes reach the HDMI output.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cmd.SilenceUsage = true
		return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
			if _, err := client.RestartService(); err != nil {
				ui.PrintFailure("Restart failed", err, nil)
				return err
			}
			ui.PrintSuccess("PGenerator service restarting", map[string]string{"Device": sess.Addr()})
			return nil
		})
	},
}

// rebootCmd reboots the device
var rebootCmd = &cobra.Command{
	Use:   "reboot",
	Short: "Reboot the device",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPower(cmd, "Reboot", ui.RebootConfirmation, (*deviceconfig.Client).Reboot)
	},
}

// shutdownCmd halts the device
var shutdownCmd = &cobra.Command{
	Use:   "shutdown",
	Short: "Shut the device down",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runPower(cmd, "Shutdown", ui.ShutdownConfirmation, (*deviceconfig.Client).Shutdown)
	},
}

func init() {
	rebootCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
	shutdownCmd.Flags().BoolVarP(&assumeYes, "yes", "y", false, "Do not ask for confirmation")
}

// runPower confirms and sends a reboot or halt
func runPower(cmd *cobra.Command, title string, confirm func(addr string) bool, send func(*deviceconfig.Client) (string, error)) error {
	cmd.SilenceUsage = true
	return withClient(cmd.Context(), func(sess *session.Session, client *deviceconfig.Client) error {
		if !assumeYes && !confirm(sess.Addr()) {
			return nil
		}
		if _, err := send(client); err != nil {
			ui.PrintFailure(title+" failed", err, nil)
			return err
		}
		ui.PrintSuccess(title+" requested", map[string]string{"Device": sess.Addr()})
		return nil
	})
}
