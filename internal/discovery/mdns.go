package discovery

import (
	"context"
	"fmt"
	"regexp"
	"sync"
	"time"

	"github.com/grandcat/zeroconf"
	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

const (
	// MDNSServiceType is browsed by default. The PGenerator image runs
	// avahi with the stock ssh service, which is the one it advertises.
	MDNSServiceType = "_ssh._tcp"

	// ServiceDomain is the mDNS domain (typically "local.")
	ServiceDomain = "local."

	// DefaultMDNSTimeout is the default browse window
	DefaultMDNSTimeout = 3 * time.Second
)

// hostPattern matches PGenerator host names (e.g., "pgenerator.local.",
// "PGenerator-2.local")
var hostPattern = regexp.MustCompile(`(?i)^pgenerator`)

// MDNSScanner finds PGenerators advertised over multicast DNS
type MDNSScanner struct {
	// Timeout is the maximum time to browse
	Timeout time.Duration

	// Service is the service type to browse
	Service string

	// DevicePort is recorded on each Device as the command port
	DevicePort int
}

// NewMDNSScanner creates a new mDNS scanner with default settings
func NewMDNSScanner() *MDNSScanner {
	return &MDNSScanner{
		Timeout:    DefaultMDNSTimeout,
		Service:    MDNSServiceType,
		DevicePort: DefaultDevicePort,
	}
}

// ScanForDevices browses for PGenerator hosts until the timeout
func (s *MDNSScanner) ScanForDevices() ([]*Device, error) {
	return s.ScanForDevicesWithContext(context.Background())
}

// ScanForDevicesWithContext browses with a custom context
func (s *MDNSScanner) ScanForDevicesWithContext(ctx context.Context) ([]*Device, error) {
	timeout := s.Timeout
	if timeout <= 0 {
		timeout = DefaultMDNSTimeout
	}
	service := s.Service
	if service == "" {
		service = MDNSServiceType
	}

	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	resolver, err := zeroconf.NewResolver(nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create mDNS resolver: %w", err)
	}

	entries := make(chan *zeroconf.ServiceEntry)

	var (
		mu      sync.Mutex
		devices []*Device
	)
	done := make(chan struct{})
	go func() {
		defer close(done)
		for {
			select {
			case entry, ok := <-entries:
				if !ok {
					return
				}
				if device := s.parseServiceEntry(entry); device != nil {
					mu.Lock()
					devices = append(devices, device)
					mu.Unlock()
				}
			case <-ctx.Done():
				return
			}
		}
	}()

	if err := resolver.Browse(ctx, service, ServiceDomain, entries); err != nil {
		return nil, fmt.Errorf("failed to browse for mDNS services: %w", err)
	}

	<-ctx.Done()
	<-done

	mu.Lock()
	defer mu.Unlock()
	found := dedupe(devices)
	logging.Debug("mDNS discovery finished",
		zap.String("service", service),
		zap.Int("found", len(found)),
	)
	return found, nil
}

// parseServiceEntry converts a zeroconf service entry to a Device.
// Returns nil if the entry is not a PGenerator or has no IPv4 address.
func (s *MDNSScanner) parseServiceEntry(entry *zeroconf.ServiceEntry) *Device {
	if entry == nil || !hostPattern.MatchString(entry.HostName) {
		return nil
	}

	var ip string
	for _, addr := range entry.AddrIPv4 {
		ip = addr.String()
		break
	}
	if ip == "" {
		return nil
	}

	return &Device{
		IP:           ip,
		Port:         s.DevicePort,
		Hostname:     entry.HostName,
		Source:       SourceMDNS,
		DiscoveredAt: time.Now(),
	}
}
