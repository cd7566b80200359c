package config

import (
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

func TestGetConfigDir(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("XDG layout is only used on linux")
	}

	t.Setenv("XDG_CONFIG_HOME", "/tmp/xdg")
	configDir, err := GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join("/tmp/xdg", "pgen") {
		t.Errorf("GetConfigDir() = %v, want /tmp/xdg/pgen", configDir)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	t.Setenv("HOME", "/home/tester")
	configDir, err = GetConfigDir()
	if err != nil {
		t.Fatalf("GetConfigDir() error = %v", err)
	}
	if configDir != filepath.Join("/home/tester", ".config", "pgen") {
		t.Errorf("GetConfigDir() = %v, want /home/tester/.config/pgen", configDir)
	}
}

func TestGetConfigPath(t *testing.T) {
	configPath, err := GetConfigPath()
	if err != nil {
		t.Fatalf("GetConfigPath() error = %v", err)
	}

	if filepath.Base(configPath) != "config.yaml" {
		t.Errorf("GetConfigPath() should end with 'config.yaml', got: %v", configPath)
	}
}

func TestNewRegistry(t *testing.T) {
	reg := NewRegistry()

	if reg.Version != CurrentVersion {
		t.Errorf("NewRegistry().Version = %v, want %v", reg.Version, CurrentVersion)
	}
	if reg.Devices == nil {
		t.Error("NewRegistry().Devices should not be nil")
	}

	want := &Preferences{
		KnownHosts:      []string{"10.10.11.1", "10.10.10.1", "10.10.12.1", "10.10.13.1"},
		Port:            85,
		ConnectTimeout:  1.5,
		ResponseTimeout: 5,
		DiscoverTimeout: 2,
		PollInterval:    10,
		AutoDiscover:    Bool(true),
	}
	if diff := cmp.Diff(want, reg.Preferences); diff != "" {
		t.Errorf("default preferences mismatch (-want +got):\n%s", diff)
	}
}

func TestDefaultPreferencesDoesNotShareKnownHosts(t *testing.T) {
	p := DefaultPreferences()
	p.KnownHosts[0] = "192.168.1.1"

	if DefaultKnownHosts[0] != "10.10.11.1" {
		t.Errorf("DefaultKnownHosts[0] = %v, mutated through preferences", DefaultKnownHosts[0])
	}
}

func TestRegistryEnsureDevice(t *testing.T) {
	reg := NewRegistry()

	device1 := reg.EnsureDevice("10.10.10.1")
	if device1 == nil {
		t.Fatal("EnsureDevice() returned nil")
	}

	device2 := reg.EnsureDevice("10.10.10.1")
	if device1 != device2 {
		t.Error("EnsureDevice() should return same instance for same host")
	}

	device3 := reg.EnsureDevice("10.10.11.1")
	if device1 == device3 {
		t.Error("EnsureDevice() should create new instance for different host")
	}

	var empty Registry
	if empty.EnsureDevice("10.10.10.1") == nil {
		t.Error("EnsureDevice() on zero registry returned nil")
	}
}

func TestRegistryUpdateDeviceInfo(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateDeviceInfo("10.10.10.1", "RPi4", "pgenerator")
	after := time.Now()

	device := reg.GetDevice("10.10.10.1")
	if device == nil {
		t.Fatal("Device should exist after UpdateDeviceInfo()")
	}
	if device.Model != "RPi4" || device.Hostname != "pgenerator" {
		t.Errorf("device = %+v, want model RPi4 hostname pgenerator", device)
	}
	if device.LastSeen.Before(before) || device.LastSeen.After(after) {
		t.Errorf("LastSeen = %v, should be between %v and %v", device.LastSeen, before, after)
	}

	// Empty values keep what is stored
	reg.UpdateDeviceInfo("10.10.10.1", "", "")
	if device.Model != "RPi4" || device.Hostname != "pgenerator" {
		t.Errorf("device after empty update = %+v", device)
	}
}

func TestRegistryUpdateDeviceLastSeen(t *testing.T) {
	reg := NewRegistry()

	before := time.Now()
	reg.UpdateDeviceLastSeen("10.10.12.1")

	device := reg.GetDevice("10.10.12.1")
	if device == nil {
		t.Fatal("Device should exist after UpdateDeviceLastSeen()")
	}
	if device.LastSeen.Before(before) {
		t.Errorf("LastSeen = %v, want after %v", device.LastSeen, before)
	}
}

func TestRegistryRemoveDevice(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname("10.10.10.1", "lab")

	if !reg.RemoveDevice("10.10.10.1") {
		t.Error("RemoveDevice() = false, want true")
	}
	if reg.GetDevice("10.10.10.1") != nil {
		t.Error("device still present after RemoveDevice()")
	}
	if reg.RemoveDevice("10.10.10.1") {
		t.Error("second RemoveDevice() = true, want false")
	}
}

func TestRegistryResolveHost(t *testing.T) {
	reg := NewRegistry()
	reg.SetDeviceNickname("10.10.10.1", "lab")
	reg.SetDeviceNickname("10.10.11.1", "")

	tests := []struct {
		name string
		want string
	}{
		{"lab", "10.10.10.1"},
		{"10.10.11.1", "10.10.11.1"},
		{"", ""},
		{"unknown", "unknown"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := reg.ResolveHost(tt.name); got != tt.want {
				t.Errorf("ResolveHost(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestRegistrySaveAndLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.yaml")

	seen := time.Date(2025, 3, 14, 9, 26, 53, 0, time.UTC)
	reg := NewRegistry()
	reg.Devices["10.10.10.1"] = &Device{
		Nickname: "lab",
		Model:    "RPi4",
		Hostname: "pgenerator",
		LastSeen: seen,
	}
	reg.Preferences.KnownHosts = []string{"192.168.1.50"}
	reg.Preferences.AutoDiscover = Bool(false)
	reg.Preferences.PollInterval = 30

	if err := reg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}

	if _, err := os.Stat(path + ".tmp"); !os.IsNotExist(err) {
		t.Error("temporary file left behind after SaveTo()")
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile: %v", err)
	}
	if !strings.HasPrefix(string(data), "# PGenerator client configuration") {
		t.Errorf("saved file is missing header:\n%s", data)
	}

	loaded, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	if diff := cmp.Diff(reg, loaded); diff != "" {
		t.Errorf("round trip mismatch (-want +got):\n%s", diff)
	}
}

func TestLoadRegistryFromMissingFile(t *testing.T) {
	reg, err := LoadRegistryFrom(filepath.Join(t.TempDir(), "absent.yaml"))
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if diff := cmp.Diff(NewRegistry(), reg); diff != "" {
		t.Errorf("missing file should yield defaults (-want +got):\n%s", diff)
	}
}

func TestLoadRegistryFromFillsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
preferences:
  port: 8585
  auto_discover: false
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}

	want := DefaultPreferences()
	want.Port = 8585
	want.AutoDiscover = Bool(false)
	if diff := cmp.Diff(want, reg.Preferences); diff != "" {
		t.Errorf("preferences mismatch (-want +got):\n%s", diff)
	}
	if reg.Devices == nil {
		t.Error("Devices should be initialized")
	}
}

func TestLoadRegistryFromAutoDiscoverAbsent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `version: 1
preferences:
  known_hosts: [192.168.1.50]
  port: 85
`
	if err := os.WriteFile(path, []byte(content), 0600); err != nil {
		t.Fatal(err)
	}

	reg, err := LoadRegistryFrom(path)
	if err != nil {
		t.Fatalf("LoadRegistryFrom() error = %v", err)
	}
	if reg.Preferences.AutoDiscover == nil || !*reg.Preferences.AutoDiscover {
		t.Errorf("AutoDiscover = %v, want true when the key is absent", reg.Preferences.AutoDiscover)
	}
	if !reg.Preferences.Discovery() {
		t.Error("Discovery() = false, want true")
	}
}

func TestPreferencesDiscovery(t *testing.T) {
	tests := []struct {
		name string
		v    *bool
		want bool
	}{
		{"unset", nil, true},
		{"enabled", Bool(true), true},
		{"disabled", Bool(false), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			p := &Preferences{AutoDiscover: tt.v}
			if got := p.Discovery(); got != tt.want {
				t.Errorf("Discovery() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestLoadRegistryFromErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"unsupported version", "version: 2\n"},
		{"invalid yaml", "version: [1\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.yaml")
			if err := os.WriteFile(path, []byte(tt.content), 0600); err != nil {
				t.Fatal(err)
			}
			if _, err := LoadRegistryFrom(path); err == nil {
				t.Error("LoadRegistryFrom() error = nil, want error")
			}
		})
	}
}

func TestSeconds(t *testing.T) {
	if got := Seconds(1.5); got != 1500*time.Millisecond {
		t.Errorf("Seconds(1.5) = %v, want 1.5s", got)
	}
}
