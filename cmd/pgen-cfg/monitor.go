package main

import (
	"context"
	"errors"
	"fmt"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/muurk/pgen/internal/config"
	"github.com/muurk/pgen/internal/connector"
	"github.com/muurk/pgen/internal/server"
	"github.com/muurk/pgen/internal/ui"
)

// Monitor and bridge flags
var (
	pollInterval time.Duration
	listenHost   string
	listenPort   int
	certPath     string
	keyPath      string
	captureDir   string
)

var monitorCmd = &cobra.Command{
	Use:   "monitor",
	Short: "Watch the device connection",
	Long: `Keep a session open and probe it with IS_ALIVE on an interval.
The command exits with an error on the first failed probe.`,
	Example: `  pgen-cfg monitor
  pgen-cfg monitor --interval 2s`,
	Args: cobra.NoArgs,
	RunE: runMonitor,
}

var bridgeCmd = &cobra.Command{
	Use:   "bridge",
	Short: "Expose the device to local tools over WebSocket",
	Long: `Hold one session to the device and serve it on a local HTTP port.

  /ws      every text frame is sent to the device as a raw command and the
           reply comes back as a text frame (ERR:<msg> on failure)
  /status  JSON with the device host, port and liveness

Frames from several clients are sent one at a time.`,
	Example: `  # Serve on 127.0.0.1:8085
  pgen-cfg bridge

  # Serve on all interfaces with TLS and capture every exchange
  pgen-cfg bridge --listen-host 0.0.0.0 --cert cert.pem --key key.pem --capture-dir ./captures`,
	Args: cobra.NoArgs,
	RunE: runBridge,
}

func init() {
	monitorCmd.Flags().DurationVar(&pollInterval, "interval", 0, "Probe interval (default from config, 10s)")

	f := bridgeCmd.Flags()
	f.StringVar(&listenHost, "listen-host", server.DefaultHost, "Address to listen on")
	f.IntVar(&listenPort, "listen-port", server.DefaultPort, "Port to listen on")
	f.StringVar(&certPath, "cert", "", "TLS certificate (enables TLS with --key)")
	f.StringVar(&keyPath, "key", "", "TLS private key")
	f.StringVar(&captureDir, "capture-dir", "", "Write a JSONL capture of every exchange to this directory")

	rootCmd.AddCommand(monitorCmd)
	rootCmd.AddCommand(bridgeCmd)
}

// monitorInterval picks --interval, then the configured poll interval
func monitorInterval(prefs *config.Preferences) time.Duration {
	if pollInterval > 0 {
		return pollInterval
	}
	if prefs != nil && prefs.PollInterval > 0 {
		return config.Seconds(prefs.PollInterval)
	}
	return connector.DefaultPollInterval
}

func runMonitor(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	sess, err := connectDevice(cmd.Context())
	if err != nil {
		ui.PrintFailure("Connection failed", err, connectionTips(err))
		return err
	}
	defer sess.Close()

	interval := monitorInterval(loadRegistry().Preferences)
	program := tea.NewProgram(ui.NewMonitorModel(sess.Addr(), interval))

	ctx, cancel := context.WithCancel(cmd.Context())
	defer cancel()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m := &connector.Monitor{
			Session:  sess,
			Interval: interval,
			OnAlive: func() {
				program.Send(ui.LinkStatusMsg{Alive: true, At: time.Now()})
			},
			OnLost: func() {
				program.Send(ui.LinkStatusMsg{Alive: false, At: time.Now()})
			},
		}
		return m.Run(gctx)
	})

	final, runErr := program.Run()
	cancel()
	monErr := g.Wait()

	if runErr != nil {
		return fmt.Errorf("monitor display failed: %w", runErr)
	}
	if model, ok := final.(ui.MonitorModel); ok && model.Lost() {
		return connector.ErrConnectionLost
	}
	if monErr != nil && !errors.Is(monErr, context.Canceled) {
		return monErr
	}
	return nil
}

func runBridge(cmd *cobra.Command, args []string) error {
	cmd.SilenceUsage = true

	sess, err := connectDevice(cmd.Context())
	if err != nil {
		ui.PrintFailure("Connection failed", err, connectionTips(err))
		return err
	}
	defer sess.Close()

	srv, err := server.New(&server.Config{
		Host:       listenHost,
		Port:       listenPort,
		Device:     sess,
		CertPath:   certPath,
		KeyPath:    keyPath,
		CaptureDir: captureDir,
	})
	if err != nil {
		return err
	}
	if err := srv.Listen(); err != nil {
		return err
	}

	scheme := "ws"
	if certPath != "" {
		scheme = "wss"
	}
	params := map[string]string{
		"Device": sess.Addr(),
		"Listen": srv.Addr(),
	}
	if captureDir != "" {
		params["Capture"] = captureDir
	}
	ui.PrintCommandHeader("Device Bridge", fmt.Sprintf("%s://%s/ws", scheme, srv.Addr()), params)
	fmt.Println("Press Ctrl+C to stop")

	return srv.Start()
}
