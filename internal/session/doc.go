// Package session manages the TCP connection to a PGenerator.
//
// A Session owns one socket and enforces strict request/response pairing:
// a mutex keeps a single command in flight, so every reply is read by the
// goroutine that sent the matching command. Connect is serialized with
// requests.
//
// # Lifecycle
//
//	s := session.New(session.Config{Host: "10.10.10.1"})
//	if err := s.Connect(); err != nil {
//	    fmt.Println(session.GetShortErrorMessage(err))
//	    return err
//	}
//	defer s.Close()
//
//	reply, err := s.Request("CMD:GET_HOSTNAME")
//
// States move Closed -> Connecting -> Open on success and back to Closed on
// a failed dial or Close. Close writes a best-effort QUIT, closes the socket
// and never fails. It does not wait for a pending request; that request
// fails with a connection error instead. Close is the only way to cancel a
// request before its response timeout.
//
// # Partial Replies
//
// A read that ends by response timeout or by the device closing the socket
// is not an error. Request returns whatever text arrived (possibly empty)
// and Exchange reports why the read ended:
//
//	reply, _ := s.Exchange("CMD:GET_EDID_INFO")
//	if reply.End == session.EndTimeout {
//	    // reply.Text is partial
//	}
//
// The session does not close itself after a timeout. Callers that want
// that policy (such as connector.Monitor) close explicitly.
//
// # Errors
//
// Failures are *SessionError values classified by ErrorType: NotConnected,
// Connection, Timeout, ConnectionRefused, DNS and Decode. IsConnectionError
// covers every transport kind. GetShortErrorMessage and
// GetTroubleshootingHint render CLI text.
package session
