// Package server implements a WebSocket bridge to a PGenerator.
//
// The bridge holds one device session and lets local tools (browser
// pages, scripts, calibration helpers that cannot speak the framed TCP
// protocol) drive it over WebSocket.
//
// # Endpoints
//
//	/ws      each text or binary frame is one raw command; the reply comes
//	         back as a text frame, or "ERR:<message>" on a transport failure
//	/status  JSON {"host", "port", "alive", "clients"}; probes IS_ALIVE
//
// Trailing CR/LF is stripped from incoming commands. Commands from all
// clients go through the same session, whose lock keeps one in flight.
//
// # Usage Example
//
//	config := &server.Config{
//	    Host:   "127.0.0.1",
//	    Port:   8085,
//	    Device: sess, // *session.Session, already connected
//	}
//
//	srv, err := server.New(config)
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	// Start blocks until shutdown signal or error
//	if err := srv.Start(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Captures
//
// With CaptureDir set, every command and reply of a client is appended to
// capture-<time>-<client>.jsonl in that directory, with hex and ASCII
// renderings of the payload.
//
// # Graceful Shutdown
//
// Start handles SIGINT and SIGTERM:
//  1. Stop accepting new clients
//  2. Close existing WebSocket connections
//  3. Wait for their handlers to return
//
// The device session is not closed by the bridge.
package server
