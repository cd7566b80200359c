package config

import (
	"maps"
	"slices"
	"time"
)

// CurrentVersion is the registry file format version
const CurrentVersion = 1

// Registry represents the entire user configuration file.
// This stores user-defined metadata for devices and application preferences.
type Registry struct {
	Version     int                `yaml:"version"`
	Devices     map[string]*Device `yaml:"devices,omitempty"` // Keyed by device host (IP address)
	Preferences *Preferences       `yaml:"preferences,omitempty"`
}

// Device represents user-defined metadata for a single PGenerator.
// This is keyed by the device's host in the Registry.
type Device struct {
	Nickname string    `yaml:"nickname,omitempty"`  // User-friendly name
	Model    string    `yaml:"model,omitempty"`     // Hardware model reported by the device
	Hostname string    `yaml:"hostname,omitempty"`  // Hostname reported by the device
	LastSeen time.Time `yaml:"last_seen,omitempty"` // Last discovery/connection time
}

// Preferences represents application-wide user preferences.
// Durations are stored in seconds.
type Preferences struct {
	KnownHosts      []string `yaml:"known_hosts"`      // Addresses probed before discovery
	Port            int      `yaml:"port"`             // Device TCP port
	ConnectTimeout  float64  `yaml:"connect_timeout"`  // Per-host connect timeout
	ResponseTimeout float64  `yaml:"response_timeout"` // Per-read response timeout
	DiscoverTimeout float64  `yaml:"discover_timeout"` // Broadcast/mDNS listen window
	PollInterval    float64  `yaml:"poll_interval"`    // Liveness poll interval
	AutoDiscover    *bool    `yaml:"auto_discover"`    // Fall back to discovery when no known host answers; nil means on
}

// Discovery reports whether discovery runs when no known host answers.
// An unset auto_discover key enables it.
func (p *Preferences) Discovery() bool {
	return p.AutoDiscover == nil || *p.AutoDiscover
}

// DefaultKnownHosts are the addresses a PGenerator answers on: Bluetooth
// PAN, WiFi AP, USB gadget and direct LAN
var DefaultKnownHosts = []string{"10.10.11.1", "10.10.10.1", "10.10.12.1", "10.10.13.1"}

// DefaultPreferences returns the preferences used when the file has none
func DefaultPreferences() *Preferences {
	return &Preferences{
		KnownHosts:      append([]string(nil), DefaultKnownHosts...),
		Port:            85,
		ConnectTimeout:  1.5,
		ResponseTimeout: 5,
		DiscoverTimeout: 2,
		PollInterval:    10,
		AutoDiscover:    Bool(true),
	}
}

// NewRegistry creates a new Registry with default values.
func NewRegistry() *Registry {
	return &Registry{
		Version:     CurrentVersion,
		Devices:     make(map[string]*Device),
		Preferences: DefaultPreferences(),
	}
}

// fillDefaults replaces missing or zero values with defaults
func (r *Registry) fillDefaults() {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}
	if r.Preferences == nil {
		r.Preferences = DefaultPreferences()
		return
	}

	def := DefaultPreferences()
	p := r.Preferences
	if len(p.KnownHosts) == 0 {
		p.KnownHosts = def.KnownHosts
	}
	if p.Port <= 0 {
		p.Port = def.Port
	}
	if p.ConnectTimeout <= 0 {
		p.ConnectTimeout = def.ConnectTimeout
	}
	if p.ResponseTimeout <= 0 {
		p.ResponseTimeout = def.ResponseTimeout
	}
	if p.DiscoverTimeout <= 0 {
		p.DiscoverTimeout = def.DiscoverTimeout
	}
	if p.PollInterval <= 0 {
		p.PollInterval = def.PollInterval
	}
	if p.AutoDiscover == nil {
		p.AutoDiscover = def.AutoDiscover
	}
}

// Bool returns a pointer to v.
func Bool(v bool) *bool { return &v }

// GetDevice retrieves device metadata by host.
// Returns nil if the device doesn't exist in the registry.
func (r *Registry) GetDevice(host string) *Device {
	return r.Devices[host]
}

// EnsureDevice ensures a device entry exists in the registry.
// Returns the device entry (existing or newly created).
func (r *Registry) EnsureDevice(host string) *Device {
	if r.Devices == nil {
		r.Devices = make(map[string]*Device)
	}

	if device, exists := r.Devices[host]; exists {
		return device
	}

	device := &Device{}
	r.Devices[host] = device
	return device
}

// RemoveDevice deletes a device entry. Reports whether it existed.
func (r *Registry) RemoveDevice(host string) bool {
	if _, ok := r.Devices[host]; !ok {
		return false
	}
	delete(r.Devices, host)
	return true
}

// UpdateDeviceLastSeen updates the last seen timestamp for a device.
func (r *Registry) UpdateDeviceLastSeen(host string) {
	r.EnsureDevice(host).LastSeen = time.Now()
}

// UpdateDeviceInfo records what the device reported about itself.
// Empty values leave the stored ones untouched.
func (r *Registry) UpdateDeviceInfo(host, model, hostname string) {
	device := r.EnsureDevice(host)
	if model != "" {
		device.Model = model
	}
	if hostname != "" {
		device.Hostname = hostname
	}
	device.LastSeen = time.Now()
}

// SetDeviceNickname sets a user-friendly nickname for a device.
func (r *Registry) SetDeviceNickname(host, nickname string) {
	r.EnsureDevice(host).Nickname = nickname
}

// ResolveHost maps a nickname to its host. Anything that is not a known
// nickname is returned unchanged.
func (r *Registry) ResolveHost(name string) string {
	for _, host := range slices.Sorted(maps.Keys(r.Devices)) {
		device := r.Devices[host]
		if device != nil && device.Nickname != "" && device.Nickname == name {
			return host
		}
	}
	return name
}

// Seconds converts a preference value in seconds to a duration
func Seconds(v float64) time.Duration {
	return time.Duration(v * float64(time.Second))
}
