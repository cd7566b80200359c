package main

import (
	"fmt"
	"net"
	"sort"
	"time"

	"github.com/spf13/cobra"

	"github.com/muurk/pgen/internal/config"
	"github.com/muurk/pgen/internal/ui"
)

var nickname string

var devicesCmd = &cobra.Command{
	Use:   "devices",
	Short: "Manage remembered devices",
	Long: `Manage the devices remembered in the config file.

Nicknames can be given to --device in place of an address. Devices are
also remembered automatically whenever a command connects to one.`,
}

var devicesListCmd = &cobra.Command{
	Use:   "list",
	Short: "List remembered devices",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := checkFormat(); err != nil {
			return err
		}
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}

		hosts := make([]string, 0, len(reg.Devices))
		for host := range reg.Devices {
			hosts = append(hosts, host)
		}
		sort.Strings(hosts)

		if outputFormat == formatJSON {
			type entry struct {
				Host string `json:"host"`
				*config.Device
			}
			out := make([]entry, 0, len(hosts))
			for _, host := range hosts {
				out = append(out, entry{Host: host, Device: reg.Devices[host]})
			}
			return printJSON(out)
		}

		if len(hosts) == 0 {
			fmt.Println("No devices remembered yet. Connect to one or run 'pgen-cfg devices add <ip>'.")
			if path, err := config.GetConfigPath(); err == nil {
				fmt.Printf("Config file: %s\n", path)
			}
			return nil
		}
		for _, host := range hosts {
			d := reg.Devices[host]
			if outputFormat == formatCompact {
				fmt.Printf("%s\t%s\n", host, d.Nickname)
				continue
			}
			fmt.Printf("%s", host)
			if d.Nickname != "" {
				fmt.Printf(" (%s)", d.Nickname)
			}
			fmt.Println()
			if d.Model != "" {
				fmt.Printf("   Model:     %s\n", d.Model)
			}
			if d.Hostname != "" {
				fmt.Printf("   Hostname:  %s\n", d.Hostname)
			}
			if !d.LastSeen.IsZero() {
				fmt.Printf("   Last seen: %s\n", d.LastSeen.Local().Format(time.DateTime))
			}
		}
		return nil
	},
}

var devicesAddCmd = &cobra.Command{
	Use:     "add <ip>",
	Short:   "Remember a device",
	Example: `  pgen-cfg devices add 192.168.1.50 --nickname lounge`,
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		host := args[0]
		if net.ParseIP(host) == nil {
			return fmt.Errorf("invalid IP address %q", host)
		}
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		if nickname != "" {
			if other := reg.ResolveHost(nickname); other != nickname && other != host {
				return fmt.Errorf("nickname %q is already used by %s", nickname, other)
			}
		}

		reg.EnsureDevice(host)
		if cmd.Flags().Changed("nickname") {
			reg.SetDeviceNickname(host, nickname)
		}
		if err := reg.Save(); err != nil {
			return err
		}
		details := map[string]string{"Address": host}
		if nickname != "" {
			details["Nickname"] = nickname
		}
		ui.PrintSuccess("Device saved", details)
		return nil
	},
}

var devicesRemoveCmd = &cobra.Command{
	Use:     "remove <ip|nickname>",
	Aliases: []string{"rm"},
	Short:   "Forget a device",
	Args:    cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		reg, err := config.LoadRegistry()
		if err != nil {
			return err
		}
		host := reg.ResolveHost(args[0])
		if !reg.RemoveDevice(host) {
			return fmt.Errorf("no remembered device %q", args[0])
		}
		if err := reg.Save(); err != nil {
			return err
		}
		ui.PrintSuccess("Device removed", map[string]string{"Address": host})
		return nil
	},
}

func init() {
	devicesAddCmd.Flags().StringVar(&nickname, "nickname", "", "Name usable with --device")

	devicesCmd.AddCommand(devicesListCmd)
	devicesCmd.AddCommand(devicesAddCmd)
	devicesCmd.AddCommand(devicesRemoveCmd)
	rootCmd.AddCommand(devicesCmd)
}
