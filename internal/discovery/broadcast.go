package discovery

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net"
	"os"
	"strconv"
	"time"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

const (
	// DiscoveryPort is the UDP port PGenerator listens on for discovery
	DiscoveryPort = 1977

	// DiscoveryMessage is the broadcast probe payload
	DiscoveryMessage = "Who is a PGenerator"

	// DiscoveryReply marks a positive answer anywhere in a datagram
	DiscoveryReply = "I am a PGenerator"

	// DefaultBroadcastAddr is the limited broadcast address
	DefaultBroadcastAddr = "255.255.255.255"

	// DefaultScanTimeout is the default collection window
	DefaultScanTimeout = 3 * time.Second

	// maxDatagram bounds a single reply read
	maxDatagram = 256
)

// Scanner finds PGenerators with a UDP broadcast. It holds no socket
// between scans; each scan opens and closes its own.
type Scanner struct {
	// Timeout is the collection window. Both the overall deadline and
	// every single receive are bounded by it.
	Timeout time.Duration

	// Port is the destination discovery port
	Port int

	// BroadcastAddr is where the probe is sent
	BroadcastAddr string

	// DevicePort is recorded on each Device as the command port
	DevicePort int
}

// NewScanner creates a new broadcast scanner with default settings
func NewScanner() *Scanner {
	return &Scanner{
		Timeout:       DefaultScanTimeout,
		Port:          DiscoveryPort,
		BroadcastAddr: DefaultBroadcastAddr,
		DevicePort:    DefaultDevicePort,
	}
}

// ScanForDevices broadcasts one probe and collects replies until the
// window closes. Devices are de-duplicated by IP in first-seen order.
func (s *Scanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext is ScanForDevices bounded additionally by ctx
func (s *Scanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultScanTimeout
	}
	port := s.Port
	if port == 0 {
		port = DiscoveryPort
	}
	bcast := s.BroadcastAddr
	if bcast == "" {
		bcast = DefaultBroadcastAddr
	}

	dst, err := net.ResolveUDPAddr("udp4", net.JoinHostPort(bcast, strconv.Itoa(port)))
	if err != nil {
		return nil, fmt.Errorf("invalid broadcast address %q: %w", bcast, err)
	}

	// Go enables SO_BROADCAST on UDP sockets
	conn, err := net.ListenUDP("udp4", &net.UDPAddr{})
	if err != nil {
		return nil, fmt.Errorf("failed to open discovery socket: %w", err)
	}
	defer conn.Close()

	deadline := time.Now().Add(timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}

	if err := conn.SetReadDeadline(deadline); err != nil {
		return nil, fmt.Errorf("failed to set discovery deadline: %w", err)
	}

	stop := context.AfterFunc(ctx, func() {
		conn.SetReadDeadline(time.Now())
	})
	defer stop()

	if _, err := conn.WriteToUDP([]byte(DiscoveryMessage), dst); err != nil {
		return nil, fmt.Errorf("failed to send discovery probe: %w", err)
	}
	logging.LogDatagram(dst.String(), "send", []byte(DiscoveryMessage))

	var devices []*Device
	seen := make(map[string]bool)
	buf := make([]byte, maxDatagram)

	for time.Now().Before(deadline) {
		n, from, err := conn.ReadFromUDP(buf)
		if err != nil {
			if errors.Is(err, os.ErrDeadlineExceeded) {
				break
			}
			return devices, fmt.Errorf("discovery receive failed: %w", err)
		}
		data := buf[:n]
		logging.LogDatagram(from.String(), "recv", data)

		if !bytes.Contains(data, []byte(DiscoveryReply)) {
			continue
		}
		ip := from.IP.String()
		if seen[ip] {
			continue
		}
		seen[ip] = true
		devices = append(devices, &Device{
			IP:           ip,
			Port:         s.DevicePort,
			Source:       SourceBroadcast,
			Reply:        string(data),
			DiscoveredAt: time.Now(),
		})
	}

	if errors.Is(ctx.Err(), context.Canceled) {
		return devices, ctx.Err()
	}

	logging.Debug("Broadcast discovery finished",
		zap.Int("found", len(devices)),
		zap.Duration("timeout", timeout),
	)
	return devices, nil
}

// Discover broadcasts on the default port and returns the IPv4 addresses
// that answered within timeout, first-seen order, without duplicates
func Discover(timeout time.Duration) ([]string, error) {
	scanner := NewScanner()
	scanner.Timeout = timeout
	devices, err := scanner.ScanForDevices()
	return Addresses(devices), err
}
