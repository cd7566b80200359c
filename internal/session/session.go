package session

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/protocol"
	"go.uber.org/zap"
)

const (
	// DefaultPort is the PGenerator command port
	DefaultPort = 85

	// DefaultResponseTimeout bounds each read while waiting for a reply
	DefaultResponseTimeout = 5 * time.Second

	// DefaultConnectTimeout bounds the TCP dial
	DefaultConnectTimeout = 5 * time.Second

	// quitTimeout bounds the best-effort QUIT written on close
	quitTimeout = 500 * time.Millisecond

	readChunkSize = 4096
)

// State is the lifecycle state of a Session
type State int

const (
	StateClosed State = iota
	StateConnecting
	StateOpen
)

// String returns the state name
func (s State) String() string {
	switch s {
	case StateClosed:
		return "closed"
	case StateConnecting:
		return "connecting"
	case StateOpen:
		return "open"
	default:
		return fmt.Sprintf("State(%d)", s)
	}
}

// End tells how a reply read finished
type End int

const (
	// EndTerminator means the full framed reply arrived
	EndTerminator End = iota
	// EndTimeout means the response timeout elapsed; Text is partial
	EndTimeout
	// EndPeerClosed means the device closed the connection; Text is partial
	EndPeerClosed
)

// String returns the end reason name
func (e End) String() string {
	switch e {
	case EndTerminator:
		return "terminator"
	case EndTimeout:
		return "timeout"
	case EndPeerClosed:
		return "peer-closed"
	default:
		return fmt.Sprintf("End(%d)", e)
	}
}

// Reply is a decoded device reply
type Reply struct {
	Text string
	End  End
}

// Complete reports whether the reply ended with the terminator
func (r *Reply) Complete() bool {
	return r.End == EndTerminator
}

// Config holds the session configuration. Zero values take defaults.
type Config struct {
	Host            string
	Port            int
	ResponseTimeout time.Duration
	ConnectTimeout  time.Duration
	Framing         protocol.Framing
}

// Session is a single TCP connection to a PGenerator.
//
// Requests are serialized: at most one command is in flight, so a reply is
// always read by the caller that sent the matching command. Close may be
// called at any time from any goroutine; a request blocked in a read then
// fails with a connection error.
type Session struct {
	host            string
	port            int
	responseTimeout time.Duration
	connectTimeout  time.Duration
	framing         protocol.Framing

	mu sync.Mutex // serializes Connect and requests

	connMu sync.Mutex // guards conn and state
	conn   net.Conn
	state  State
}

// New creates a closed session. Call Connect before sending commands.
func New(config Config) *Session {
	s := &Session{
		host:            config.Host,
		port:            config.Port,
		responseTimeout: config.ResponseTimeout,
		connectTimeout:  config.ConnectTimeout,
		framing:         config.Framing,
	}
	if s.port == 0 {
		s.port = DefaultPort
	}
	if s.responseTimeout <= 0 {
		s.responseTimeout = DefaultResponseTimeout
	}
	if s.connectTimeout <= 0 {
		s.connectTimeout = DefaultConnectTimeout
	}
	if len(s.framing.Terminator) == 0 {
		s.framing = protocol.DefaultFraming
	}
	return s
}

// Host returns the device host
func (s *Session) Host() string {
	return s.host
}

// Port returns the device port
func (s *Session) Port() int {
	return s.port
}

// Addr returns host:port
func (s *Session) Addr() string {
	return net.JoinHostPort(s.host, strconv.Itoa(s.port))
}

// State returns the current lifecycle state
func (s *Session) State() State {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.state
}

// Connected reports whether the session holds an open socket
func (s *Session) Connected() bool {
	return s.State() == StateOpen
}

// Connect dials the device, closing any previous socket first
func (s *Session) Connect() error {
	return s.ConnectContext(context.Background())
}

// ConnectContext is Connect with a context that can abort the dial
func (s *Session) ConnectContext(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.Close()
	s.setState(StateConnecting)

	addr := s.Addr()
	logging.Debug("Connecting to device",
		zap.String("addr", addr),
		zap.Duration("timeout", s.connectTimeout),
	)

	dialer := net.Dialer{Timeout: s.connectTimeout}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		s.setState(StateClosed)
		classified := ClassifyDialError(err, s.host)
		logging.Debug("Connect failed",
			zap.String("addr", addr),
			zap.String("type", classified.Type.String()),
			zap.Error(err),
		)
		return classified
	}

	s.connMu.Lock()
	s.conn = conn
	s.state = StateOpen
	s.connMu.Unlock()

	logging.LogConnection(addr, "connected")
	return nil
}

// Close sends a best-effort QUIT and closes the socket. It is a no-op on a
// closed session, does not wait for an in-flight request, and always
// returns nil.
func (s *Session) Close() error {
	s.connMu.Lock()
	conn := s.conn
	s.conn = nil
	s.state = StateClosed
	s.connMu.Unlock()

	if conn == nil {
		return nil
	}

	_ = conn.SetWriteDeadline(time.Now().Add(quitTimeout))
	_, _ = conn.Write(s.framing.Encode(protocol.QuitCommand))
	_ = conn.Close()

	logging.LogConnection(s.Addr(), "closed")
	return nil
}

// Request sends one command and returns the decoded reply text. A reply
// cut short by the response timeout or by the peer closing is returned as
// is (possibly empty) with a nil error; use Exchange to tell them apart.
func (s *Session) Request(command string) (string, error) {
	reply, err := s.Exchange(command)
	if err != nil {
		return "", err
	}
	return reply.Text, nil
}

// Exchange sends one command and reads until the terminator, the response
// timeout or peer close. The timeout applies to each read.
func (s *Session) Exchange(command string) (*Reply, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	conn := s.currentConn()
	if conn == nil {
		return nil, newNotConnectedError(s.host)
	}

	addr := s.Addr()
	logging.LogCommand(addr, "sent", command)

	if err := conn.SetWriteDeadline(time.Now().Add(s.responseTimeout)); err != nil {
		return nil, s.transportError(conn, "send failed", err)
	}
	if _, err := conn.Write(s.framing.Encode(command)); err != nil {
		return nil, s.transportError(conn, "send failed", err)
	}

	acc := protocol.NewAccumulator(s.framing)
	chunk := make([]byte, readChunkSize)
	for {
		if err := conn.SetReadDeadline(time.Now().Add(s.responseTimeout)); err != nil {
			return nil, s.transportError(conn, "receive failed", err)
		}

		n, err := conn.Read(chunk)
		if n > 0 {
			if done, msg := acc.Accumulate(chunk[:n]); done {
				logging.LogCommand(addr, "received", msg)
				return &Reply{Text: msg, End: EndTerminator}, nil
			}
		}
		if err == nil {
			continue
		}

		switch {
		case errors.Is(err, io.EOF):
			logging.Debug("Peer closed during reply",
				zap.String("addr", addr),
				zap.Int("buffered", acc.Len()),
			)
			return &Reply{Text: acc.Text(), End: EndPeerClosed}, nil
		case os.IsTimeout(err):
			logging.Debug("Reply timed out",
				zap.String("addr", addr),
				zap.String("command", command),
				zap.Int("buffered", acc.Len()),
			)
			if acc.Len() > 0 {
				logging.LogRawBytes("Partial reply", acc.Bytes())
			}
			return &Reply{Text: acc.Text(), End: EndTimeout}, nil
		default:
			return nil, s.transportError(conn, "receive failed", err)
		}
	}
}

// IsAlive reports whether the device answers IS_ALIVE with ALIVE. Every
// failure, including a closed session, yields false.
func (s *Session) IsAlive() bool {
	reply, err := s.Request(protocol.AliveProbe)
	if err != nil {
		logging.Debug("Liveness probe failed", zap.String("host", s.host), zap.Error(err))
		return false
	}
	return reply == protocol.AliveToken
}

func (s *Session) currentConn() net.Conn {
	s.connMu.Lock()
	defer s.connMu.Unlock()
	return s.conn
}

func (s *Session) setState(state State) {
	s.connMu.Lock()
	s.state = state
	s.connMu.Unlock()
}

// transportError maps an I/O failure on conn. A failure caused by a
// concurrent Close is reported as a closed-session error.
func (s *Session) transportError(conn net.Conn, message string, err error) *SessionError {
	if errors.Is(err, net.ErrClosed) || s.currentConn() != conn {
		return newClosedError(s.host)
	}
	logging.Warn("Session I/O failed",
		zap.String("addr", s.Addr()),
		zap.String("op", message),
		zap.Error(err),
	)
	return newConnectionError(s.host, message, err)
}
