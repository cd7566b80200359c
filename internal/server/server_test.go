package server

import (
	"bufio"
	"context"
	"encoding/json"
	"net"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/go-cmp/cmp"
	"github.com/gorilla/websocket"
	"github.com/muurk/pgen/internal/session"
)

// fakeDevice answers commands from a table; unknown commands fail as if
// the session were not connected
type fakeDevice struct {
	mu       sync.Mutex
	replies  map[string]string
	received []string
	alive    bool
}

func (d *fakeDevice) Request(command string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.received = append(d.received, command)
	reply, ok := d.replies[command]
	if !ok {
		return "", &session.SessionError{
			Type:    session.ErrTypeNotConnected,
			Message: "session is not connected",
			Err:     session.ErrNotConnected,
		}
	}
	return reply, nil
}

func (d *fakeDevice) IsAlive() bool { return d.alive }
func (d *fakeDevice) Host() string  { return "10.10.10.1" }
func (d *fakeDevice) Port() int     { return 85 }

func (d *fakeDevice) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.received...)
}

func newTestServer(t *testing.T, dev *fakeDevice, captureDir string) (*Server, *httptest.Server) {
	t.Helper()
	srv, err := New(&Config{Device: dev, CaptureDir: captureDir})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	ts := httptest.NewServer(srv.Handler())
	t.Cleanup(ts.Close)
	return srv, ts
}

func dial(t *testing.T, ts *httptest.Server) *websocket.Conn {
	t.Helper()
	url := "ws" + strings.TrimPrefix(ts.URL, "http") + "/ws"
	conn, _, err := websocket.DefaultDialer.Dial(url, nil)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	t.Cleanup(func() { conn.Close() })
	return conn
}

func roundTrip(t *testing.T, conn *websocket.Conn, msg string) string {
	t.Helper()
	if err := conn.WriteMessage(websocket.TextMessage, []byte(msg)); err != nil {
		t.Fatalf("WriteMessage: %v", err)
	}
	_ = conn.SetReadDeadline(time.Now().Add(2 * time.Second))
	_, data, err := conn.ReadMessage()
	if err != nil {
		t.Fatalf("ReadMessage: %v", err)
	}
	return string(data)
}

func TestNewValidatesConfig(t *testing.T) {
	if _, err := New(&Config{}); err == nil {
		t.Error("New without device should fail")
	}
	if _, err := New(&Config{Device: &fakeDevice{}, CertPath: "cert.pem"}); err == nil {
		t.Error("New with certificate but no key should fail")
	}

	cfg := &Config{Device: &fakeDevice{}}
	if _, err := New(cfg); err != nil {
		t.Fatalf("New: %v", err)
	}
	if cfg.Host != DefaultHost || cfg.Port != DefaultPort {
		t.Errorf("defaults = %s:%d, want %s:%d", cfg.Host, cfg.Port, DefaultHost, DefaultPort)
	}
}

func TestBridgeRelaysCommands(t *testing.T) {
	dev := &fakeDevice{replies: map[string]string{
		"IS_ALIVE":                   "ALIVE",
		"CMD:GET_PGENERATOR_VERSION": "OK:1.9",
	}}
	_, ts := newTestServer(t, dev, "")
	conn := dial(t, ts)

	if got := roundTrip(t, conn, "IS_ALIVE"); got != "ALIVE" {
		t.Errorf("reply = %q, want ALIVE", got)
	}
	if got := roundTrip(t, conn, "CMD:GET_PGENERATOR_VERSION\r\n"); got != "OK:1.9" {
		t.Errorf("reply = %q, want OK:1.9", got)
	}

	want := []string{"IS_ALIVE", "CMD:GET_PGENERATOR_VERSION"}
	if diff := cmp.Diff(want, dev.commands()); diff != "" {
		t.Errorf("device commands mismatch (-want +got):\n%s", diff)
	}
}

func TestBridgeReportsTransportErrors(t *testing.T) {
	dev := &fakeDevice{replies: map[string]string{}}
	_, ts := newTestServer(t, dev, "")
	conn := dial(t, ts)

	got := roundTrip(t, conn, "CMD:REBOOT")
	if got != "ERR:Not connected to a device" {
		t.Errorf("reply = %q, want ERR:Not connected to a device", got)
	}
}

func TestBridgeSharesDeviceAcrossClients(t *testing.T) {
	dev := &fakeDevice{replies: map[string]string{"IS_ALIVE": "ALIVE"}}
	srv, ts := newTestServer(t, dev, "")

	a := dial(t, ts)
	b := dial(t, ts)
	roundTrip(t, a, "IS_ALIVE")
	roundTrip(t, b, "IS_ALIVE")

	if n := srv.GetActiveConnections(); n != 2 {
		t.Errorf("GetActiveConnections() = %d, want 2", n)
	}
	if n := len(dev.commands()); n != 2 {
		t.Errorf("device saw %d commands, want 2", n)
	}
}

func TestStatus(t *testing.T) {
	dev := &fakeDevice{alive: true}
	_, ts := newTestServer(t, dev, "")

	resp, err := http.Get(ts.URL + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	defer resp.Body.Close()

	if ct := resp.Header.Get("Content-Type"); ct != "application/json" {
		t.Errorf("Content-Type = %q", ct)
	}
	var got Status
	if err := json.NewDecoder(resp.Body).Decode(&got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := Status{Host: "10.10.10.1", Port: 85, Alive: true}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Errorf("status mismatch (-want +got):\n%s", diff)
	}

	post, err := http.Post(ts.URL+"/status", "text/plain", nil)
	if err != nil {
		t.Fatalf("POST /status: %v", err)
	}
	post.Body.Close()
	if post.StatusCode != http.StatusMethodNotAllowed {
		t.Errorf("POST status = %d, want 405", post.StatusCode)
	}
}

func TestCaptureWritesJSONL(t *testing.T) {
	dir := t.TempDir()
	dev := &fakeDevice{replies: map[string]string{"IS_ALIVE": "ALIVE"}}
	_, ts := newTestServer(t, dev, dir)

	conn := dial(t, ts)
	roundTrip(t, conn, "IS_ALIVE")
	roundTrip(t, conn, "CMD:HALT")
	conn.Close()

	var path string
	deadline := time.Now().Add(2 * time.Second)
	var records []CaptureRecord
	for time.Now().Before(deadline) {
		matches, _ := filepath.Glob(filepath.Join(dir, "capture-*.jsonl"))
		if len(matches) == 1 {
			path = matches[0]
			records = readCapture(t, path)
			if len(records) == 4 {
				break
			}
		}
		time.Sleep(20 * time.Millisecond)
	}
	if len(records) != 4 {
		t.Fatalf("capture %q has %d records, want 4", path, len(records))
	}

	if records[0].Direction != directionClientToDevice || records[0].Text != "IS_ALIVE" {
		t.Errorf("record 0 = %+v", records[0])
	}
	if records[1].PayloadHex != "414c495645" || records[1].MessageNum != 2 {
		t.Errorf("record 1 = %+v", records[1])
	}
	if records[3].Error == "" || !strings.HasPrefix(records[3].Text, ErrorPrefix) {
		t.Errorf("record 3 = %+v, want error reply", records[3])
	}
}

func readCapture(t *testing.T, path string) []CaptureRecord {
	t.Helper()
	f, err := os.Open(path)
	if err != nil {
		t.Fatalf("open capture: %v", err)
	}
	defer f.Close()

	var out []CaptureRecord
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var rec CaptureRecord
		if err := json.Unmarshal(sc.Bytes(), &rec); err != nil {
			t.Fatalf("bad capture line %q: %v", sc.Text(), err)
		}
		out = append(out, rec)
	}
	return out
}

func TestRunStopsOnCancel(t *testing.T) {
	srv, err := New(&Config{Device: &fakeDevice{alive: true}})
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	srv.listener, err = net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- srv.Run(ctx) }()

	resp, err := http.Get("http://" + srv.Addr() + "/status")
	if err != nil {
		t.Fatalf("GET /status: %v", err)
	}
	resp.Body.Close()

	cancel()
	select {
	case err := <-done:
		if err != nil {
			t.Errorf("Run() = %v, want nil", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
