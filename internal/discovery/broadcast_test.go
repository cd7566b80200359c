package discovery

import (
	"context"
	"errors"
	"net"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
)

// startResponder answers each probe with the given datagrams. extra
// sockets, if any, send one "I am a PGenerator" each after the main ones.
func startResponder(t *testing.T, replies []string, extra ...*net.UDPConn) int {
	t.Helper()

	conn, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("failed to start responder: %v", err)
	}
	t.Cleanup(func() { conn.Close() })

	go func() {
		buf := make([]byte, 256)
		for {
			n, from, err := conn.ReadFromUDP(buf)
			if err != nil {
				return
			}
			if string(buf[:n]) != DiscoveryMessage {
				continue
			}
			for _, r := range replies {
				conn.WriteToUDP([]byte(r), from)
			}
			for _, e := range extra {
				e.WriteToUDP([]byte(DiscoveryReply), from)
			}
		}
	}()

	return conn.LocalAddr().(*net.UDPAddr).Port
}

func loopbackScanner(port int, timeout time.Duration) *Scanner {
	s := NewScanner()
	s.BroadcastAddr = "127.0.0.1"
	s.Port = port
	s.Timeout = timeout
	return s
}

func TestScanDeduplicatesReplies(t *testing.T) {
	port := startResponder(t, []string{
		"I am a PGenerator",
		"hello",
		"I am a PGenerator",
		"OK I am a PGenerator 1.9",
	})

	devices, err := loopbackScanner(port, 500*time.Millisecond).ScanForDevices()
	if err != nil {
		t.Fatalf("ScanForDevices: %v", err)
	}
	if len(devices) != 1 {
		t.Fatalf("found %d devices, want 1: %v", len(devices), devices)
	}

	d := devices[0]
	if d.IP != "127.0.0.1" {
		t.Errorf("IP = %q, want 127.0.0.1", d.IP)
	}
	if d.Port != DefaultDevicePort {
		t.Errorf("Port = %d, want %d", d.Port, DefaultDevicePort)
	}
	if d.Source != SourceBroadcast {
		t.Errorf("Source = %q, want %q", d.Source, SourceBroadcast)
	}
	if d.Reply != DiscoveryReply {
		t.Errorf("Reply = %q, want first positive datagram", d.Reply)
	}
}

func TestScanFirstSeenOrder(t *testing.T) {
	second, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 2)})
	if err != nil {
		t.Skipf("127.0.0.2 not available: %v", err)
	}
	defer second.Close()

	port := startResponder(t, []string{DiscoveryReply}, second)

	devices, err := loopbackScanner(port, 500*time.Millisecond).ScanForDevices()
	if err != nil {
		t.Fatalf("ScanForDevices: %v", err)
	}
	want := []string{"127.0.0.1", "127.0.0.2"}
	if diff := cmp.Diff(want, Addresses(devices)); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
}

func TestScanNoResponders(t *testing.T) {
	idle, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer idle.Close()
	port := idle.LocalAddr().(*net.UDPAddr).Port

	start := time.Now()
	devices, err := loopbackScanner(port, 200*time.Millisecond).ScanForDevices()
	if err != nil {
		t.Fatalf("ScanForDevices: %v", err)
	}
	if len(devices) != 0 {
		t.Errorf("found %v, want none", devices)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("scan took %v, want about the timeout", elapsed)
	}
}

func TestScanCancelled(t *testing.T) {
	idle, err := net.ListenUDP("udp4", &net.UDPAddr{IP: net.IPv4(127, 0, 0, 1)})
	if err != nil {
		t.Fatalf("ListenUDP: %v", err)
	}
	defer idle.Close()
	port := idle.LocalAddr().(*net.UDPAddr).Port

	ctx, cancel := context.WithCancel(context.Background())
	time.AfterFunc(50*time.Millisecond, cancel)

	start := time.Now()
	_, err = loopbackScanner(port, 10*time.Second).ScanForDevicesWithContext(ctx)
	if !errors.Is(err, context.Canceled) {
		t.Errorf("error = %v, want context.Canceled", err)
	}
	if elapsed := time.Since(start); elapsed > 2*time.Second {
		t.Errorf("cancelled scan took %v", elapsed)
	}
}

func TestScanContextDeadlineIsNotAnError(t *testing.T) {
	port := startResponder(t, []string{DiscoveryReply})

	ctx, cancel := context.WithTimeout(context.Background(), 300*time.Millisecond)
	defer cancel()

	devices, err := loopbackScanner(port, 10*time.Second).ScanForDevicesWithContext(ctx)
	if err != nil {
		t.Fatalf("ScanForDevicesWithContext: %v", err)
	}
	if len(devices) != 1 {
		t.Errorf("found %d devices, want 1", len(devices))
	}
}

func TestScanInvalidBroadcastAddr(t *testing.T) {
	s := NewScanner()
	s.BroadcastAddr = "not an address"
	if _, err := s.ScanForDevices(); err == nil {
		t.Error("expected error for invalid broadcast address")
	}
}

func TestDiscoverAllBroadcastOnly(t *testing.T) {
	port := startResponder(t, []string{DiscoveryReply, DiscoveryReply})

	devices, err := discoverAll(context.Background(), loopbackScanner(port, 300*time.Millisecond), nil)
	if err != nil {
		t.Fatalf("discoverAll: %v", err)
	}
	if diff := cmp.Diff([]string{"127.0.0.1"}, Addresses(devices)); diff != "" {
		t.Errorf("addresses mismatch (-want +got):\n%s", diff)
	}
}
