package main

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/muurk/pgen/internal/config"
	"github.com/muurk/pgen/internal/connector"
	"github.com/muurk/pgen/internal/deviceconfig"
	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/session"
	"github.com/muurk/pgen/internal/ui"
	"go.uber.org/zap"
)

// Global flags
var (
	deviceHost      string
	devicePort      int
	responseTimeout time.Duration
	logLevel        string
	outputFormat    string
)

func init() {
	rootCmd.PersistentFlags().StringVar(&deviceHost, "device", "", "Device IP address or nickname (skips auto-connect)")
	rootCmd.PersistentFlags().IntVar(&devicePort, "port", 0, "Device command port (default from config, 85)")
	rootCmd.PersistentFlags().DurationVar(&responseTimeout, "timeout", 0, "Response timeout per read (default from config, 5s)")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "Log level (debug, info, warn, error); silent when unset")
	rootCmd.PersistentFlags().StringVar(&outputFormat, "format", "detailed", "Output format (detailed, compact, json)")
}

// loadRegistry returns the user registry, or defaults when it cannot be read
func loadRegistry() *config.Registry {
	reg, err := config.LoadRegistry()
	if err != nil {
		logging.Warn("Failed to load config, using defaults", zap.Error(err))
		return config.NewRegistry()
	}
	return reg
}

// connectorOptions builds auto-connect options from preferences and flags
func connectorOptions(prefs *config.Preferences, port int, timeout time.Duration) connector.Options {
	opts := connector.DefaultOptions()
	if prefs != nil {
		if len(prefs.KnownHosts) > 0 {
			opts.KnownHosts = append([]string(nil), prefs.KnownHosts...)
		}
		if prefs.Port > 0 {
			opts.Port = prefs.Port
		}
		if prefs.ConnectTimeout > 0 {
			opts.ProbeTimeout = config.Seconds(prefs.ConnectTimeout)
		}
		if prefs.ResponseTimeout > 0 {
			opts.ResponseTimeout = config.Seconds(prefs.ResponseTimeout)
		}
		if prefs.DiscoverTimeout > 0 {
			opts.DiscoverTimeout = config.Seconds(prefs.DiscoverTimeout)
		}
		opts.Discover = prefs.Discovery()
	}
	if port > 0 {
		opts.Port = port
	}
	if timeout > 0 {
		opts.ResponseTimeout = timeout
	}
	return opts
}

// connectDevice opens a session to --device, or auto-connects when the
// flag is empty. The device is recorded in the registry on success.
func connectDevice(ctx context.Context) (*session.Session, error) {
	reg := loadRegistry()
	opts := connectorOptions(reg.Preferences, devicePort, responseTimeout)

	var (
		sess *session.Session
		err  error
	)
	if deviceHost != "" {
		host := reg.ResolveHost(deviceHost)
		sess = session.New(session.Config{
			Host:            host,
			Port:            opts.Port,
			ResponseTimeout: opts.ResponseTimeout,
			ConnectTimeout:  connector.DefaultDiscoveredConnectTimeout,
		})
		if err = sess.ConnectContext(ctx); err != nil {
			return nil, err
		}
	} else {
		sess, err = connector.AutoConnect(ctx, opts)
		if errors.Is(err, connector.ErrNoDevice) {
			return nil, fmt.Errorf("%w (tried %s); use --device to specify one", err, strings.Join(opts.KnownHosts, ", "))
		}
		if err != nil {
			return nil, err
		}
	}

	reg.UpdateDeviceLastSeen(sess.Host())
	if err := reg.Save(); err != nil {
		logging.Debug("Failed to save config", zap.Error(err))
	}
	return sess, nil
}

// withClient connects, runs fn with a command client and closes the session
func withClient(ctx context.Context, fn func(*session.Session, *deviceconfig.Client) error) error {
	sess, err := connectDevice(ctx)
	if err != nil {
		ui.PrintFailure("Connection failed", err, connectionTips(err))
		return err
	}
	defer sess.Close()
	return fn(sess, deviceconfig.NewClient(sess))
}

// connectionTips returns troubleshooting lines for a connect failure
func connectionTips(err error) []string {
	var tips []string
	var sessErr *session.SessionError
	if errors.As(err, &sessErr) {
		for _, line := range strings.Split(session.GetTroubleshootingHint(err), "\n") {
			line = strings.TrimSpace(strings.TrimPrefix(strings.TrimSpace(line), "•"))
			if line == "" || line == "Troubleshooting:" {
				continue
			}
			tips = append(tips, line)
		}
	}
	return append(tips,
		"Find devices on the network: pgen-cfg scan",
		"Specify the device directly: --device <ip>",
	)
}
