package session

import (
	"fmt"
	"net"
	"strconv"
	"sync"
	"testing"
	"time"

	"github.com/muurk/pgen/internal/protocol"
)

// fakeDevice is a loopback PGenerator that answers framed commands
type fakeDevice struct {
	ln net.Listener

	mu       sync.Mutex
	received []string
}

// startDevice listens on 127.0.0.1 and runs handle for every connection
func startDevice(t *testing.T, handle func(d *fakeDevice, conn net.Conn)) *fakeDevice {
	t.Helper()

	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	d := &fakeDevice{ln: ln}
	t.Cleanup(func() { ln.Close() })

	go func() {
		for {
			conn, err := ln.Accept()
			if err != nil {
				return
			}
			go func() {
				defer conn.Close()
				handle(d, conn)
			}()
		}
	}()
	return d
}

// answer returns a handler that replies to each command with respond(cmd).
// An empty reply sends nothing.
func answer(respond func(cmd string) string) func(d *fakeDevice, conn net.Conn) {
	return func(d *fakeDevice, conn net.Conn) {
		acc := protocol.NewAccumulator(protocol.DefaultFraming)
		buf := make([]byte, 1024)
		for {
			n, err := conn.Read(buf)
			if err != nil {
				return
			}
			done, cmd := acc.Accumulate(buf[:n])
			if !done {
				continue
			}
			acc.Reset()
			d.record(cmd)
			if reply := respond(cmd); reply != "" {
				if _, err := conn.Write(protocol.Encode(reply)); err != nil {
					return
				}
			}
		}
	}
}

func (d *fakeDevice) record(cmd string) {
	d.mu.Lock()
	d.received = append(d.received, cmd)
	d.mu.Unlock()
}

func (d *fakeDevice) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.received...)
}

func (d *fakeDevice) config(timeout time.Duration) Config {
	host, portStr, _ := net.SplitHostPort(d.ln.Addr().String())
	port, _ := strconv.Atoi(portStr)
	return Config{Host: host, Port: port, ResponseTimeout: timeout, ConnectTimeout: time.Second}
}

func connect(t *testing.T, cfg Config) *Session {
	t.Helper()
	s := New(cfg)
	if err := s.Connect(); err != nil {
		t.Fatalf("Connect: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestNewDefaults(t *testing.T) {
	s := New(Config{Host: "10.10.10.1"})
	if s.Port() != DefaultPort {
		t.Errorf("Port() = %d, want %d", s.Port(), DefaultPort)
	}
	if s.Addr() != "10.10.10.1:85" {
		t.Errorf("Addr() = %q", s.Addr())
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
}

func TestRequestRoundTrip(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string {
		switch cmd {
		case "IS_ALIVE":
			return "ALIVE"
		case "CMD:GET_HOSTNAME":
			return "OK:pgenerator"
		}
		return ""
	}))
	s := connect(t, d.config(time.Second))

	if !s.IsAlive() {
		t.Error("IsAlive() = false, want true")
	}
	got, err := s.Request("CMD:GET_HOSTNAME")
	if err != nil {
		t.Fatalf("Request: %v", err)
	}
	if got != "OK:pgenerator" {
		t.Errorf("Request = %q, want %q", got, "OK:pgenerator")
	}
	if s.State() != StateOpen {
		t.Errorf("State() = %v, want open", s.State())
	}
}

func TestRequestNotConnected(t *testing.T) {
	s := New(Config{Host: "127.0.0.1"})

	_, err := s.Request("IS_ALIVE")
	if !IsNotConnected(err) {
		t.Fatalf("Request error = %v, want not connected", err)
	}
	if IsConnectionError(err) {
		t.Error("not-connected error classified as connection error")
	}
	if s.IsAlive() {
		t.Error("IsAlive() = true on closed session")
	}
}

func TestIsAliveWrongReply(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string { return "ALIVE?" }))
	s := connect(t, d.config(time.Second))

	if s.IsAlive() {
		t.Error("IsAlive() = true for reply ALIVE?")
	}
}

func TestIsAliveSilentDevice(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string { return "" }))
	s := connect(t, d.config(100*time.Millisecond))

	if s.IsAlive() {
		t.Error("IsAlive() = true for silent device")
	}
	if !s.Connected() {
		t.Error("session closed after a timed out request")
	}
}

func TestExchangeSplitTerminator(t *testing.T) {
	d := startDevice(t, func(d *fakeDevice, conn net.Conn) {
		buf := make([]byte, 64)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		for _, part := range []string{"AL", "IVE\x02", "\r"} {
			conn.Write([]byte(part))
			time.Sleep(20 * time.Millisecond)
		}
		time.Sleep(time.Second)
	})
	s := connect(t, d.config(time.Second))

	reply, err := s.Exchange("IS_ALIVE")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if reply.Text != "ALIVE" || reply.End != EndTerminator {
		t.Errorf("reply = %+v, want ALIVE/terminator", reply)
	}
}

func TestExchangeTimeoutReturnsPartial(t *testing.T) {
	d := startDevice(t, func(d *fakeDevice, conn net.Conn) {
		buf := make([]byte, 64)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("OK:par"))
		time.Sleep(time.Second)
	})
	s := connect(t, d.config(100*time.Millisecond))

	reply, err := s.Exchange("CMD:GET_EDID_INFO")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if reply.Text != "OK:par" {
		t.Errorf("Text = %q, want %q", reply.Text, "OK:par")
	}
	if reply.End != EndTimeout {
		t.Errorf("End = %v, want timeout", reply.End)
	}
	if reply.Complete() {
		t.Error("Complete() = true for timed out reply")
	}
}

func TestExchangePeerClosed(t *testing.T) {
	d := startDevice(t, func(d *fakeDevice, conn net.Conn) {
		buf := make([]byte, 64)
		if _, err := conn.Read(buf); err != nil {
			return
		}
		conn.Write([]byte("PART"))
	})
	s := connect(t, d.config(time.Second))

	reply, err := s.Exchange("CMD:REBOOT")
	if err != nil {
		t.Fatalf("Exchange: %v", err)
	}
	if reply.Text != "PART" || reply.End != EndPeerClosed {
		t.Errorf("reply = %+v, want PART/peer-closed", reply)
	}
}

func TestConcurrentRequestsAreCorrelated(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string { return "R:" + cmd }))
	s := connect(t, d.config(2*time.Second))

	var wg sync.WaitGroup
	errs := make(chan error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			cmd := fmt.Sprintf("CMD:N%d", i)
			got, err := s.Request(cmd)
			if err != nil {
				errs <- err
				return
			}
			if got != "R:"+cmd {
				errs <- fmt.Errorf("Request(%q) = %q", cmd, got)
			}
		}(i)
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		t.Error(err)
	}
}

func TestCloseSendsQuitAndIsIdempotent(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string { return "" }))
	s := connect(t, d.config(time.Second))

	if err := s.Close(); err != nil {
		t.Errorf("Close() = %v, want nil", err)
	}
	if err := s.Close(); err != nil {
		t.Errorf("second Close() = %v, want nil", err)
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
	if _, err := s.Request("IS_ALIVE"); !IsNotConnected(err) {
		t.Errorf("Request after Close error = %v, want not connected", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		cmds := d.commands()
		if len(cmds) == 1 && cmds[0] == "QUIT" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Errorf("device received %v, want [QUIT]", d.commands())
}

func TestCloseUnblocksPendingRequest(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string { return "" }))
	s := connect(t, d.config(5*time.Second))

	done := make(chan error, 1)
	go func() {
		_, err := s.Request("CMD:GET_TEMPERATURE")
		done <- err
	}()

	time.Sleep(50 * time.Millisecond)
	s.Close()

	select {
	case err := <-done:
		if !IsConnectionError(err) {
			t.Errorf("pending Request error = %v, want connection error", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Request still blocked after Close")
	}
}

func TestConnectRefused(t *testing.T) {
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	port := ln.Addr().(*net.TCPAddr).Port
	ln.Close()

	s := New(Config{Host: "127.0.0.1", Port: port, ConnectTimeout: time.Second})
	err = s.Connect()
	if err == nil {
		t.Fatal("Connect() succeeded on a closed port")
	}
	if !IsConnectionError(err) {
		t.Errorf("Connect error = %v, want connection error", err)
	}
	if s.State() != StateClosed {
		t.Errorf("State() = %v, want closed", s.State())
	}
}

func TestReconnectReplacesSocket(t *testing.T) {
	d := startDevice(t, answer(func(cmd string) string {
		if cmd == "IS_ALIVE" {
			return "ALIVE"
		}
		return ""
	}))
	s := connect(t, d.config(time.Second))

	if err := s.Connect(); err != nil {
		t.Fatalf("second Connect: %v", err)
	}
	if !s.IsAlive() {
		t.Error("IsAlive() = false after reconnect")
	}
}
