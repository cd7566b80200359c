package deviceconfig

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/muurk/pgen/internal/protocol"
)

// Config is the decoded PGenerator.conf dump returned by
// GET_PGENERATOR_CONF_ALL. Keys keep the order of the dump and are
// case-sensitive on read. A later duplicate key replaces the value but
// keeps the first position.
type Config struct {
	keys   []string
	values map[string]string
}

// NewConfig creates an empty configuration
func NewConfig() *Config {
	return &Config{values: make(map[string]string)}
}

// ParseConfig parses newline separated "key:value" text
func ParseConfig(text string) *Config {
	c := NewConfig()
	for _, kv := range protocol.ParseKeyValues(text) {
		c.Set(kv.Key, kv.Value)
	}
	return c
}

// Set stores a value, appending the key if it is new
func (c *Config) Set(key, value string) {
	if c.values == nil {
		c.values = make(map[string]string)
	}
	if _, ok := c.values[key]; !ok {
		c.keys = append(c.keys, key)
	}
	c.values[key] = value
}

// Lookup returns the value for key and whether it was present
func (c *Config) Lookup(key string) (string, bool) {
	if c == nil {
		return "", false
	}
	v, ok := c.values[key]
	return v, ok
}

// Get returns the value for key, or def when absent
func (c *Config) Get(key, def string) string {
	if v, ok := c.Lookup(key); ok {
		return v
	}
	return def
}

// Int returns the value for key as an integer, or def when absent or not
// a number
func (c *Config) Int(key string, def int) int {
	v, ok := c.Lookup(key)
	if !ok {
		return def
	}
	n, err := strconv.Atoi(strings.TrimSpace(v))
	if err != nil {
		return def
	}
	return n
}

// Keys returns the keys in dump order
func (c *Config) Keys() []string {
	if c == nil {
		return nil
	}
	return append([]string(nil), c.keys...)
}

// Len returns the number of keys
func (c *Config) Len() int {
	if c == nil {
		return 0
	}
	return len(c.keys)
}

// Map returns a copy of the values
func (c *Config) Map() map[string]string {
	m := make(map[string]string, c.Len())
	if c == nil {
		return m
	}
	for k, v := range c.values {
		m[k] = v
	}
	return m
}

// Clone returns a deep copy
func (c *Config) Clone() *Config {
	out := NewConfig()
	for _, k := range c.Keys() {
		out.Set(k, c.values[k])
	}
	return out
}

// Change is one differing key between two configurations. Old or New is
// empty when the key is missing on that side; Present flags tell which.
type Change struct {
	Key        string
	Old        string
	New        string
	OldPresent bool
	NewPresent bool
}

// String returns "key: old → new"
func (ch Change) String() string {
	old, nw := ch.Old, ch.New
	if !ch.OldPresent {
		old = "(unset)"
	}
	if !ch.NewPresent {
		nw = "(unset)"
	}
	return fmt.Sprintf("%s: %s → %s", ch.Key, old, nw)
}

// Diff lists keys whose values differ between c and other. Keys of c come
// first in c's order, followed by keys only present in other.
func (c *Config) Diff(other *Config) []Change {
	var changes []Change
	for _, k := range c.Keys() {
		oldV := c.values[k]
		newV, ok := other.Lookup(k)
		if !ok || newV != oldV {
			changes = append(changes, Change{Key: k, Old: oldV, New: newV, OldPresent: true, NewPresent: ok})
		}
	}
	for _, k := range other.Keys() {
		if _, ok := c.Lookup(k); !ok {
			changes = append(changes, Change{Key: k, New: other.values[k], NewPresent: true})
		}
	}
	return changes
}

// Values is the result of a MULTIPLE query keyed by command name. Names
// the device did not answer are absent.
type Values map[string]string

// Get returns the value for name, or def when absent
func (v Values) Get(name, def string) string {
	if val, ok := v[name]; ok {
		return val
	}
	return def
}

// Setting is one configuration key/value write. Keys are lower-case
// PGenerator.conf names; the wire command upper-cases them.
type Setting struct {
	Key   string
	Value string
}

// String returns "key=value"
func (s Setting) String() string {
	return s.Key + "=" + s.Value
}

// SystemInfo holds the identity and status queries shown by `info`
type SystemInfo struct {
	Version     string
	Model       string
	Hostname    string
	Temperature string // degrees Celsius as reported
	Resolution  string
	HDMIInfo    string
	Uptime      string
}

// systemQueries maps SystemInfo fields to their commands, in display order
var systemQueries = []string{
	protocol.CmdGetVersion,
	protocol.CmdGetDeviceModel,
	protocol.CmdGetHostname,
	protocol.CmdGetTemperature,
	protocol.CmdGetResolution,
	protocol.CmdGetHDMIInfo,
	protocol.CmdGetUptime,
}

func systemInfoFromValues(v Values) *SystemInfo {
	return &SystemInfo{
		Version:     v.Get(protocol.CmdGetVersion, ""),
		Model:       v.Get(protocol.CmdGetDeviceModel, ""),
		Hostname:    v.Get(protocol.CmdGetHostname, ""),
		Temperature: v.Get(protocol.CmdGetTemperature, ""),
		Resolution:  v.Get(protocol.CmdGetResolution, ""),
		HDMIInfo:    v.Get(protocol.CmdGetHDMIInfo, ""),
		Uptime:      v.Get(protocol.CmdGetUptime, ""),
	}
}

// Network interfaces reported by the device. usb0 has no MAC query.
var networkInterfaces = []string{"ap0", "wlan0", "eth0", "bnep", "usb0"}

// InterfaceInfo is the address of one device network interface
type InterfaceInfo struct {
	Name string
	IP   string
	MAC  string
}

// NetworkInfo holds the device's network interfaces
type NetworkInfo struct {
	// AllIPMAC is the raw GET_ALL_IPMAC answer
	AllIPMAC   string
	Interfaces []InterfaceInfo
}

func ipQuery(iface string) string  { return "GET_IP-" + iface }
func macQuery(iface string) string { return "GET_MAC-" + iface }

func networkQueries() []string {
	names := []string{protocol.CmdGetAllIPMAC}
	for _, iface := range networkInterfaces {
		names = append(names, ipQuery(iface))
		if iface != "usb0" {
			names = append(names, macQuery(iface))
		}
	}
	return names
}

func networkInfoFromValues(v Values) *NetworkInfo {
	info := &NetworkInfo{AllIPMAC: v.Get(protocol.CmdGetAllIPMAC, "")}
	for _, iface := range networkInterfaces {
		info.Interfaces = append(info.Interfaces, InterfaceInfo{
			Name: iface,
			IP:   v.Get(ipQuery(iface), ""),
			MAC:  v.Get(macQuery(iface), ""),
		})
	}
	return info
}

// Interface returns the named interface, or nil
func (n *NetworkInfo) Interface(name string) *InterfaceInfo {
	for i := range n.Interfaces {
		if n.Interfaces[i].Name == name {
			return &n.Interfaces[i]
		}
	}
	return nil
}
