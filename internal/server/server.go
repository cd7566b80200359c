package server

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync"
	"syscall"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

const (
	// DefaultHost keeps the bridge on the local machine
	DefaultHost = "127.0.0.1"

	// DefaultPort is the bridge listen port
	DefaultPort = 8085

	// shutdownTimeout bounds a graceful shutdown
	shutdownTimeout = 10 * time.Second
)

// Device is the part of *session.Session the bridge relays to
type Device interface {
	Request(command string) (string, error)
	IsAlive() bool
	Host() string
	Port() int
}

// Config holds the bridge configuration
type Config struct {
	Host       string
	Port       int
	Device     Device
	CertPath   string // TLS certificate (optional; both paths enable TLS)
	KeyPath    string // TLS private key
	CaptureDir string // Directory for JSONL command captures (empty = disabled)
}

// Server bridges WebSocket clients to one device session
type Server struct {
	config     *Config
	httpServer *http.Server
	listener   net.Listener
	upgrader   websocket.Upgrader

	wg          sync.WaitGroup
	mu          sync.Mutex
	activeConns map[string]*websocket.Conn
}

// New creates a new Server instance
func New(config *Config) (*Server, error) {
	if config.Device == nil {
		return nil, errors.New("bridge needs a device session")
	}
	if (config.CertPath == "") != (config.KeyPath == "") {
		return nil, errors.New("TLS needs both a certificate and a key")
	}
	if config.Host == "" {
		config.Host = DefaultHost
	}
	if config.Port == 0 {
		config.Port = DefaultPort
	}

	s := &Server{
		config: config,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// local tools and browsers on other ports
				return true
			},
		},
		activeConns: make(map[string]*websocket.Conn),
	}
	s.httpServer = &http.Server{
		Handler:           s.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}
	return s, nil
}

// Handler returns the bridge routes: /ws and /status
func (s *Server) Handler() http.Handler {
	mux := http.NewServeMux()
	mux.HandleFunc("/ws", s.handleWebSocket)
	mux.HandleFunc("/status", s.handleStatus)
	return mux
}

// Listen binds the listen address. Start calls it when needed.
func (s *Server) Listen() error {
	addr := net.JoinHostPort(s.config.Host, strconv.Itoa(s.config.Port))
	listener, err := net.Listen("tcp", addr)
	if err != nil {
		return fmt.Errorf("failed to listen on %s: %w", addr, err)
	}
	s.listener = listener
	return nil
}

// Addr returns the bound listen address, or "" before Listen
func (s *Server) Addr() string {
	if s.listener == nil {
		return ""
	}
	return s.listener.Addr().String()
}

// Start starts the server and blocks until a shutdown signal or error
func (s *Server) Start() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return s.Run(ctx)
}

// Run serves until ctx is done, then shuts down gracefully
func (s *Server) Run(ctx context.Context) error {
	if s.listener == nil {
		if err := s.Listen(); err != nil {
			return err
		}
	}

	logging.Info("Starting PGenerator bridge",
		zap.String("addr", s.Addr()),
		zap.String("device", net.JoinHostPort(s.config.Device.Host(), strconv.Itoa(s.config.Device.Port()))),
		zap.Bool("tls", s.config.CertPath != ""),
		zap.String("capture_dir", s.config.CaptureDir),
	)

	errChan := make(chan error, 1)
	go func() {
		var err error
		if s.config.CertPath != "" {
			err = s.httpServer.ServeTLS(s.listener, s.config.CertPath, s.config.KeyPath)
		} else {
			err = s.httpServer.Serve(s.listener)
		}
		if errors.Is(err, http.ErrServerClosed) {
			err = nil
		}
		errChan <- err
	}()

	select {
	case <-ctx.Done():
		logging.Info("Shutdown requested, stopping bridge...")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return s.Shutdown(shutdownCtx)
	case err := <-errChan:
		return err
	}
}

// Shutdown stops accepting clients, closes the open WebSockets and waits
// for their handlers. The device session is left to the caller.
func (s *Server) Shutdown(ctx context.Context) error {
	logging.Info("Shutting down bridge...")

	err := s.httpServer.Shutdown(ctx)
	if err != nil {
		logging.Error("Error shutting down HTTP server", zap.Error(err))
	}

	// hijacked connections are not tracked by http.Server
	s.mu.Lock()
	for addr, conn := range s.activeConns {
		logging.Debug("Closing active connection", zap.String("remote_addr", addr))
		_ = conn.Close()
	}
	s.mu.Unlock()

	done := make(chan struct{})
	go func() {
		s.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
		logging.Info("All connections closed gracefully")
	case <-ctx.Done():
		logging.Warn("Shutdown timeout, forcing close")
	}

	logging.Sync()
	return err
}

// GetActiveConnections returns the number of connected WebSocket clients
func (s *Server) GetActiveConnections() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.activeConns)
}

func (s *Server) track(remoteAddr string, conn *websocket.Conn) {
	s.mu.Lock()
	s.activeConns[remoteAddr] = conn
	s.mu.Unlock()
}

func (s *Server) untrack(remoteAddr string) {
	s.mu.Lock()
	delete(s.activeConns, remoteAddr)
	s.mu.Unlock()
}
