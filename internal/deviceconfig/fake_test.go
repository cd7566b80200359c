package deviceconfig

import (
	"encoding/base64"
	"strings"
	"sync"
)

// fakeTransport records commands and answers from a fixed table
type fakeTransport struct {
	mu      sync.Mutex
	sent    []string
	replies map[string]string
	err     error
}

func newFakeTransport(replies map[string]string) *fakeTransport {
	if replies == nil {
		replies = map[string]string{}
	}
	return &fakeTransport{replies: replies}
}

func (f *fakeTransport) Request(command string) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sent = append(f.sent, command)
	if f.err != nil {
		return "", f.err
	}
	return f.replies[command], nil
}

func (f *fakeTransport) last() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.sent) == 0 {
		return ""
	}
	return f.sent[len(f.sent)-1]
}

// fakeDevice is a Transport that keeps a PGenerator.conf in memory
type fakeDevice struct {
	mu       sync.Mutex
	conf     *Config
	sent     []string
	ignore   map[string]bool // keys whose writes are silently dropped
	restarts int
	failOn   string // command prefix that returns failErr
	failErr  error
}

func newFakeDevice(initial string) *fakeDevice {
	return &fakeDevice{conf: ParseConfig(initial), ignore: map[string]bool{}}
}

func (d *fakeDevice) Request(command string) (string, error) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.sent = append(d.sent, command)

	if d.failOn != "" && strings.HasPrefix(command, d.failOn) {
		return "", d.failErr
	}

	switch {
	case command == "RESTARTPGENERATOR:":
		d.restarts++
		return "OK", nil
	case command == "CMD:GET_PGENERATOR_CONF_ALL":
		var b strings.Builder
		for _, k := range d.conf.Keys() {
			v, _ := d.conf.Lookup(k)
			b.WriteString(k + ":" + v + "\n")
		}
		return "OK:" + base64.StdEncoding.EncodeToString([]byte(b.String())), nil
	case strings.HasPrefix(command, "CMD:SET_PGENERATOR_CONF_"):
		rest := strings.TrimPrefix(command, "CMD:SET_PGENERATOR_CONF_")
		key, value, _ := strings.Cut(rest, ":")
		key = strings.ToLower(key)
		if !d.ignore[key] {
			d.conf.Set(key, value)
		}
		return "OK:", nil
	}
	return "OK:", nil
}

func (d *fakeDevice) commands() []string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]string(nil), d.sent...)
}

func (d *fakeDevice) writes() []string {
	var out []string
	for _, c := range d.commands() {
		if strings.HasPrefix(c, "CMD:SET_PGENERATOR_CONF_") {
			out = append(out, strings.TrimPrefix(c, "CMD:SET_PGENERATOR_CONF_"))
		}
	}
	return out
}
