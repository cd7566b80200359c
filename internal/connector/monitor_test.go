package connector

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"
)

// fakeProber answers IsAlive from a script; once the script runs out it
// keeps returning the last value
type fakeProber struct {
	mu     sync.Mutex
	script []bool
	probes int
	closed int
}

func (f *fakeProber) IsAlive() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	i := f.probes
	f.probes++
	if i >= len(f.script) {
		return f.script[len(f.script)-1]
	}
	return f.script[i]
}

func (f *fakeProber) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed++
	return nil
}

func (f *fakeProber) counts() (probes, closed int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.probes, f.closed
}

func TestMonitorReportsLoss(t *testing.T) {
	p := &fakeProber{script: []bool{true, true, false}}

	alive := 0
	lost := 0
	m := &Monitor{
		Session:  p,
		Interval: 10 * time.Millisecond,
		OnAlive:  func() { alive++ },
		OnLost:   func() { lost++ },
	}

	err := m.Run(context.Background())
	if !errors.Is(err, ErrConnectionLost) {
		t.Fatalf("Run() = %v, want ErrConnectionLost", err)
	}

	probes, closed := p.counts()
	if probes != 3 {
		t.Errorf("probes = %d, want 3", probes)
	}
	if closed != 1 {
		t.Errorf("Close called %d times, want 1", closed)
	}
	if alive != 2 || lost != 1 {
		t.Errorf("OnAlive = %d, OnLost = %d, want 2, 1", alive, lost)
	}
}

func TestMonitorStopsOnCancel(t *testing.T) {
	p := &fakeProber{script: []bool{true}}
	m := NewMonitor(p, func() { t.Error("OnLost called after cancel") })
	m.Interval = 5 * time.Millisecond

	ctx, cancel := context.WithTimeout(context.Background(), 60*time.Millisecond)
	defer cancel()

	if err := m.Run(ctx); !errors.Is(err, context.DeadlineExceeded) {
		t.Errorf("Run() = %v, want context.DeadlineExceeded", err)
	}
	if probes, closed := p.counts(); probes == 0 || closed != 0 {
		t.Errorf("probes = %d, closed = %d", probes, closed)
	}
}

func TestNewMonitorDefaults(t *testing.T) {
	m := NewMonitor(&fakeProber{script: []bool{true}}, nil)
	if m.Interval != DefaultPollInterval {
		t.Errorf("Interval = %v, want %v", m.Interval, DefaultPollInterval)
	}
	if DefaultPollInterval != 10*time.Second {
		t.Errorf("DefaultPollInterval = %v, want 10s", DefaultPollInterval)
	}
}
