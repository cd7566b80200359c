package session

import (
	"errors"
	"fmt"
	"net"
	"os"
	"strings"
	"syscall"
)

// ErrorType represents the category of a session failure
type ErrorType int

const (
	// ErrTypeNotConnected indicates a request on a session with no socket
	ErrTypeNotConnected ErrorType = iota
	// ErrTypeConnection indicates a send/receive or connect failure
	ErrTypeConnection
	// ErrTypeTimeout indicates the connect timeout elapsed
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates nothing is listening on the port
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates the host name could not be resolved
	ErrTypeDNS
	// ErrTypeDecode indicates a reply payload could not be decoded
	ErrTypeDecode
)

// NetworkErrorSubtype refines ErrTypeConnection
type NetworkErrorSubtype int

const (
	NetworkErrorGeneral NetworkErrorSubtype = iota
	NetworkErrorHostUnreachable
	NetworkErrorNetworkUnreachable
	NetworkErrorClosed
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNotConnected:
		return "Not Connected"
	case ErrTypeConnection:
		return "Connection Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	case ErrTypeDecode:
		return "Decode Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// ErrNotConnected is wrapped by every not-connected SessionError so callers
// can test with errors.Is.
var ErrNotConnected = errors.New("not connected")

// SessionError describes a failed session operation
type SessionError struct {
	Type           ErrorType           // Category of error
	Message        string              // Human-readable error message
	Err            error               // Underlying error (if any)
	NetworkSubtype NetworkErrorSubtype // Refinement for ErrTypeConnection
	Host           string              // Device host (for context)
}

// Error implements the error interface
func (e *SessionError) Error() string {
	if e.Err != nil && !errors.Is(e.Err, ErrNotConnected) {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *SessionError) Unwrap() error {
	return e.Err
}

func newNotConnectedError(host string) *SessionError {
	return &SessionError{
		Type:    ErrTypeNotConnected,
		Message: "session is not connected",
		Err:     ErrNotConnected,
		Host:    host,
	}
}

func newConnectionError(host, message string, err error) *SessionError {
	return &SessionError{
		Type:    ErrTypeConnection,
		Message: message,
		Err:     err,
		Host:    host,
	}
}

func newClosedError(host string) *SessionError {
	return &SessionError{
		Type:           ErrTypeConnection,
		Message:        "session closed during request",
		Err:            net.ErrClosed,
		NetworkSubtype: NetworkErrorClosed,
		Host:           host,
	}
}

// ClassifyDialError maps a dial failure to a SessionError. Every result is
// a connection-class error (see IsConnectionError).
func ClassifyDialError(err error, host string) *SessionError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &SessionError{
			Type:    ErrTypeTimeout,
			Message: "connect timed out",
			Err:     err,
			Host:    host,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &SessionError{
			Type:    ErrTypeDNS,
			Message: fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:     err,
			Host:    host,
		}
	}

	if errors.Is(err, syscall.ECONNREFUSED) {
		return &SessionError{
			Type:    ErrTypeConnectionRefused,
			Message: "device refused connection",
			Err:     err,
			Host:    host,
		}
	}

	subtype := NetworkErrorGeneral
	message := "connect failed"
	switch {
	case errors.Is(err, syscall.EHOSTUNREACH):
		subtype = NetworkErrorHostUnreachable
		message = "host unreachable"
	case errors.Is(err, syscall.ENETUNREACH):
		subtype = NetworkErrorNetworkUnreachable
		message = "network unreachable"
	}

	return &SessionError{
		Type:           ErrTypeConnection,
		Message:        message,
		Err:            err,
		NetworkSubtype: subtype,
		Host:           host,
	}
}

// IsNotConnected reports whether err is a not-connected failure
func IsNotConnected(err error) bool {
	return errors.Is(err, ErrNotConnected)
}

// IsConnectionError reports whether err is any transport-level failure:
// connection, timeout, refused or DNS.
func IsConnectionError(err error) bool {
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		return false
	}
	switch sessErr.Type {
	case ErrTypeConnection, ErrTypeTimeout, ErrTypeConnectionRefused, ErrTypeDNS:
		return true
	}
	return false
}

// IsTimeout reports whether err is a connect timeout
func IsTimeout(err error) bool {
	var sessErr *SessionError
	return errors.As(err, &sessErr) && sessErr.Type == ErrTypeTimeout
}

// GetTroubleshootingHint returns user-friendly troubleshooting advice for an error
func GetTroubleshootingHint(err error) string {
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		return "An unexpected error occurred. Please try again."
	}

	switch sessErr.Type {
	case ErrTypeNotConnected:
		return "No device session is open. Connect first, or pass --device."

	case ErrTypeTimeout:
		return strings.Join([]string{
			"The PGenerator did not answer in time.",
			"Troubleshooting:",
			"  • Check that the device is powered on and booted",
			"  • Verify you are on the device's WiFi AP (10.10.10.1) or LAN",
			"  • Try increasing --timeout",
		}, "\n")

	case ErrTypeConnectionRefused:
		return strings.Join([]string{
			"The device refused the connection.",
			"Troubleshooting:",
			"  • The PGenerator service may be restarting; wait a few seconds",
			"  • Verify the port number (default is 85)",
			"  • Reboot the device if the service does not come back",
		}, "\n")

	case ErrTypeDNS:
		return strings.Join([]string{
			"Could not resolve the device hostname.",
			"Troubleshooting:",
			"  • Use the IP address instead of hostname",
			"  • Run 'pgen-cfg scan' to find the device",
		}, "\n")

	case ErrTypeConnection:
		hint := []string{"Network communication failed."}
		switch sessErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			hint = append(hint,
				"The device is not reachable on the network.",
				"Troubleshooting:",
				"  • Verify the device IP address is correct",
				"  • Known addresses: 10.10.10.1 (WiFi AP), 10.10.11.1 (Bluetooth PAN), 10.10.12.1 (USB), 10.10.13.1 (direct LAN)",
				"  • Try pinging the device: ping "+sessErr.Host)
		case NetworkErrorNetworkUnreachable:
			hint = append(hint,
				"Your computer cannot reach the device's network.",
				"Troubleshooting:",
				"  • Connect to the PGenerator WiFi access point",
				"  • Check your network adapter settings")
		case NetworkErrorClosed:
			hint = append(hint, "The session was closed while a command was pending.")
		default:
			hint = append(hint,
				"Troubleshooting:",
				"  • Check your network connection",
				"  • Verify the device is powered on",
				"  • Reconnect and try again")
		}
		return strings.Join(hint, "\n")

	case ErrTypeDecode:
		return "The device reply could not be decoded. The raw text was kept."

	default:
		return "An error occurred. Please check the error message for details."
	}
}

// GetShortErrorMessage returns a concise, user-friendly error message
func GetShortErrorMessage(err error) string {
	var sessErr *SessionError
	if !errors.As(err, &sessErr) {
		return err.Error()
	}

	switch sessErr.Type {
	case ErrTypeNotConnected:
		return "Not connected to a device"
	case ErrTypeTimeout:
		return "Device not responding (timeout)"
	case ErrTypeConnectionRefused:
		return "Device refused connection - is the service running?"
	case ErrTypeDNS:
		return "Cannot resolve device hostname"
	case ErrTypeConnection:
		switch sessErr.NetworkSubtype {
		case NetworkErrorHostUnreachable:
			return "Device unreachable - check network connection"
		case NetworkErrorNetworkUnreachable:
			return "Network unreachable - check WiFi connection"
		case NetworkErrorClosed:
			return "Session closed"
		default:
			return "Connection error - " + sessErr.Message
		}
	case ErrTypeDecode:
		return "Failed to decode device reply"
	default:
		return sessErr.Message
	}
}
