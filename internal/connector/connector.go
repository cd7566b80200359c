package connector

import (
	"context"
	"errors"
	"time"

	"github.com/muurk/pgen/internal/discovery"
	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/session"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

// ErrNoDevice is returned when neither a known host nor discovery yields a
// device that answers the liveness probe
var ErrNoDevice = errors.New("no PGenerator found")

// DefaultKnownHosts are the addresses a PGenerator assigns itself on its
// Bluetooth PAN, WiFi access point, USB gadget and direct LAN interfaces,
// in the order they are tried
var DefaultKnownHosts = []string{"10.10.11.1", "10.10.10.1", "10.10.12.1", "10.10.13.1"}

const (
	// DefaultProbeTimeout bounds the connect to each known host
	DefaultProbeTimeout = 1500 * time.Millisecond

	// DefaultDiscoverTimeout is the broadcast collection window
	DefaultDiscoverTimeout = 2 * time.Second

	// DefaultDiscoveredConnectTimeout bounds the connect to each
	// discovered host
	DefaultDiscoveredConnectTimeout = 3 * time.Second
)

// DiscoverFunc returns candidate addresses in preference order
type DiscoverFunc func(ctx context.Context, timeout time.Duration) ([]string, error)

// Options configures AutoConnect
type Options struct {
	// KnownHosts are probed concurrently; the first live one in list order
	// wins
	KnownHosts []string

	// Port is the command port for every candidate
	Port int

	// ProbeTimeout is the connect timeout for known hosts
	ProbeTimeout time.Duration

	// ConnectTimeout is the connect timeout for discovered hosts
	ConnectTimeout time.Duration

	// ResponseTimeout is used by the returned session
	ResponseTimeout time.Duration

	// Discover enables the broadcast fallback
	Discover bool

	// DiscoverTimeout is the discovery window
	DiscoverTimeout time.Duration

	// Discoverer overrides the broadcast scan (nil uses discovery.Scanner)
	Discoverer DiscoverFunc
}

// DefaultOptions returns the known hosts on port 85 with discovery enabled
func DefaultOptions() Options {
	return Options{
		KnownHosts:      append([]string(nil), DefaultKnownHosts...),
		Port:            session.DefaultPort,
		ProbeTimeout:    DefaultProbeTimeout,
		ConnectTimeout:  DefaultDiscoveredConnectTimeout,
		ResponseTimeout: session.DefaultResponseTimeout,
		Discover:        true,
		DiscoverTimeout: DefaultDiscoverTimeout,
	}
}

// AutoConnect finds a live PGenerator and returns an open session to it.
// Known hosts are probed first, all at once; if none answers, discovery
// runs and its results are tried one by one in first-seen order.
func AutoConnect(ctx context.Context, opts Options) (*session.Session, error) {
	if s := probeKnownHosts(ctx, opts); s != nil {
		return s, nil
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if !opts.Discover {
		return nil, ErrNoDevice
	}

	discover := opts.Discoverer
	if discover == nil {
		discover = broadcastDiscover
	}
	hosts, err := discover(ctx, opts.DiscoverTimeout)
	if err != nil {
		logging.Debug("Discovery failed", zap.Error(err))
	}

	tried := make(map[string]bool, len(opts.KnownHosts))
	for _, h := range opts.KnownHosts {
		tried[h] = true
	}
	for _, host := range hosts {
		if tried[host] {
			continue
		}
		tried[host] = true
		if s := probe(ctx, host, opts.ConnectTimeout, opts); s != nil {
			logging.Info("Connected to discovered device", zap.String("addr", s.Addr()))
			return s, nil
		}
	}

	if err := ctx.Err(); err != nil {
		return nil, err
	}
	return nil, ErrNoDevice
}

// probeKnownHosts dials every known host concurrently and keeps the first
// live one in list order. The others are closed.
func probeKnownHosts(ctx context.Context, opts Options) *session.Session {
	if len(opts.KnownHosts) == 0 {
		return nil
	}

	live := make([]*session.Session, len(opts.KnownHosts))
	var g errgroup.Group
	for i, host := range opts.KnownHosts {
		g.Go(func() error {
			live[i] = probe(ctx, host, opts.ProbeTimeout, opts)
			return nil
		})
	}
	_ = g.Wait()

	var chosen *session.Session
	for _, s := range live {
		if s == nil {
			continue
		}
		if chosen == nil {
			chosen = s
			continue
		}
		s.Close()
	}
	if chosen != nil {
		logging.Info("Connected to known host", zap.String("addr", chosen.Addr()))
	}
	return chosen
}

// probe connects to host and checks IS_ALIVE. It returns an open session
// or nil.
func probe(ctx context.Context, host string, connectTimeout time.Duration, opts Options) *session.Session {
	s := session.New(session.Config{
		Host:            host,
		Port:            opts.Port,
		ConnectTimeout:  connectTimeout,
		ResponseTimeout: opts.ResponseTimeout,
	})
	if err := s.ConnectContext(ctx); err != nil {
		logging.Debug("Probe connect failed", zap.String("host", host), zap.Error(err))
		return nil
	}
	if !s.IsAlive() {
		logging.Debug("Probe got no ALIVE", zap.String("host", host))
		s.Close()
		return nil
	}
	return s
}

func broadcastDiscover(ctx context.Context, timeout time.Duration) ([]string, error) {
	scanner := discovery.NewScanner()
	scanner.Timeout = timeout
	devices, err := scanner.ScanForDevicesWithContext(ctx)
	return discovery.Addresses(devices), err
}
