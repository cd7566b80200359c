package server

import (
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/muurk/pgen/internal/logging"
	"github.com/muurk/pgen/internal/session"
	"go.uber.org/zap"
)

const (
	// Time allowed to write a message to the peer
	writeWait = 10 * time.Second

	// Time allowed to read the next pong message from the peer
	pongWait = 60 * time.Second

	// Send pings to peer with this period (must be less than pongWait)
	pingPeriod = (pongWait * 9) / 10

	// Maximum message size allowed from peer
	maxMessageSize = 8192

	// ErrorPrefix marks a transport failure in a reply frame
	ErrorPrefix = "ERR:"
)

// client wraps a WebSocket connection with a mutex for safe concurrent writes
type client struct {
	conn       *websocket.Conn
	remoteAddr string
	mu         sync.Mutex
}

func (c *client) write(messageType int, data []byte) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
	return c.conn.WriteMessage(messageType, data)
}

// handleWebSocket relays each text or binary frame as one device command
// and answers with the reply. Clients share the device session, whose
// lock keeps their commands from interleaving.
func (s *Server) handleWebSocket(w http.ResponseWriter, r *http.Request) {
	conn, err := s.upgrader.Upgrade(w, r, nil)
	if err != nil {
		logging.Error("WebSocket upgrade failed",
			zap.String("remote_addr", r.RemoteAddr),
			zap.Error(err),
		)
		return
	}

	c := &client{conn: conn, remoteAddr: r.RemoteAddr}
	s.wg.Add(1)
	s.track(c.remoteAddr, conn)
	logging.LogConnection(c.remoteAddr, "websocket_opened")

	defer func() {
		_ = conn.Close()
		s.untrack(c.remoteAddr)
		logging.LogConnection(c.remoteAddr, "websocket_closed")
		s.wg.Done()
	}()

	conn.SetReadLimit(maxMessageSize)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	stopPing := make(chan struct{})
	defer close(stopPing)
	go c.pingLoop(stopPing)

	capture := newCapture(s.config.CaptureDir, c.remoteAddr)
	defer capture.Close()

	for {
		messageType, payload, err := conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseNormalClosure, websocket.CloseGoingAway) {
				logging.Info("WebSocket read error",
					zap.String("remote_addr", c.remoteAddr),
					zap.Error(err),
				)
			}
			return
		}
		if messageType != websocket.TextMessage && messageType != websocket.BinaryMessage {
			continue
		}
		logging.LogBridgeMessage(c.remoteAddr, "received", messageType, payload)

		command := strings.TrimRight(string(payload), "\r\n")
		capture.Record(directionClientToDevice, command, nil)

		reply, relayErr := s.relay(command)
		capture.Record(directionDeviceToClient, reply, relayErr)

		if err := c.write(websocket.TextMessage, []byte(reply)); err != nil {
			logging.Info("WebSocket write failed",
				zap.String("remote_addr", c.remoteAddr),
				zap.Error(err),
			)
			return
		}
		logging.LogBridgeMessage(c.remoteAddr, "sent", websocket.TextMessage, []byte(reply))
	}
}

// relay forwards one command and renders the result as a reply frame
func (s *Server) relay(command string) (string, error) {
	reply, err := s.config.Device.Request(command)
	if err != nil {
		logging.Warn("Bridged command failed",
			zap.String("command", command),
			zap.Error(err),
		)
		return ErrorPrefix + session.GetShortErrorMessage(err), err
	}
	return reply, nil
}

// pingLoop keeps idle clients alive and detects dead ones
func (c *client) pingLoop(stop <-chan struct{}) {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-stop:
			return
		case <-ticker.C:
			logging.Debug("Sending ping", zap.String("remote_addr", c.remoteAddr))
			if err := c.write(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
