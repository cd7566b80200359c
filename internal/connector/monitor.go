package connector

import (
	"context"
	"errors"
	"time"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

// DefaultPollInterval is how often Monitor probes the device
const DefaultPollInterval = 10 * time.Second

// ErrConnectionLost is returned by Monitor.Run when a probe fails
var ErrConnectionLost = errors.New("connection to device lost")

// Prober is the part of *session.Session a Monitor needs
type Prober interface {
	IsAlive() bool
	Close() error
}

// Monitor polls a session and treats the first failed liveness probe as a
// lost connection. It does not reconnect.
type Monitor struct {
	// Session is probed every Interval
	Session Prober

	// Interval between probes (DefaultPollInterval if zero)
	Interval time.Duration

	// OnAlive is called after every successful probe (may be nil)
	OnAlive func()

	// OnLost is called once, after the session is closed (may be nil)
	OnLost func()
}

// NewMonitor creates a monitor with the default interval
func NewMonitor(s Prober, onLost func()) *Monitor {
	return &Monitor{
		Session:  s,
		Interval: DefaultPollInterval,
		OnLost:   onLost,
	}
}

// Run probes until ctx is done or a probe fails. On failure it closes the
// session, calls OnLost and returns ErrConnectionLost.
func (m *Monitor) Run(ctx context.Context) error {
	interval := m.Interval
	if interval <= 0 {
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}

		if m.Session.IsAlive() {
			if m.OnAlive != nil {
				m.OnAlive()
			}
			continue
		}

		// cancelled while the probe was in flight
		if ctx.Err() != nil {
			return ctx.Err()
		}

		logging.Warn("Liveness probe failed, closing session", zap.Duration("interval", interval))
		m.Session.Close()
		if m.OnLost != nil {
			m.OnLost()
		}
		return ErrConnectionLost
	}
}
