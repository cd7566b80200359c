package discovery

import (
	"fmt"
	"net"
	"strconv"
	"time"
)

// Source identifies how a device was found
type Source string

const (
	SourceBroadcast Source = "broadcast"
	SourceMDNS      Source = "mdns"
)

// DefaultDevicePort is the PGenerator command port
const DefaultDevicePort = 85

// Device represents a PGenerator found on the network. Discovery never
// opens a TCP connection, so nothing here is verified beyond the reply.
type Device struct {
	// IP is the sender address of the discovery reply (e.g., "10.10.10.1")
	IP string

	// Port is the command port to connect to (typically 85)
	Port int

	// Hostname is the mDNS host name, empty for broadcast replies
	Hostname string

	// Source tells which scanner reported the device
	Source Source

	// Reply is the raw discovery datagram (broadcast only)
	Reply string

	// DiscoveredAt is when the first reply arrived
	DiscoveredAt time.Time
}

// String returns a human-readable string representation of the device
func (d *Device) String() string {
	if d.Hostname != "" {
		return fmt.Sprintf("PGenerator %s at %s (%s)", d.Hostname, d.Addr(), d.Source)
	}
	return fmt.Sprintf("PGenerator at %s (%s)", d.Addr(), d.Source)
}

// Addr returns host:port for dialing
func (d *Device) Addr() string {
	port := d.Port
	if port == 0 {
		port = DefaultDevicePort
	}
	return net.JoinHostPort(d.IP, strconv.Itoa(port))
}

// Addresses returns the IPs of devices in order
func Addresses(devices []*Device) []string {
	out := make([]string, 0, len(devices))
	for _, d := range devices {
		out = append(out, d.IP)
	}
	return out
}

// dedupe keeps the first device seen for each IP
func dedupe(lists ...[]*Device) []*Device {
	seen := make(map[string]bool)
	var out []*Device
	for _, list := range lists {
		for _, d := range list {
			if d == nil || seen[d.IP] {
				continue
			}
			seen[d.IP] = true
			out = append(out, d)
		}
	}
	return out
}
