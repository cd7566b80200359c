package protocol

import (
	"bytes"
	"fmt"
	"unicode/utf8"
)

// Framing bytes used by the PGenerator daemon
const (
	STX = 0x02 // Start of text, first terminator byte on port 85
	CR  = 0x0D // Carriage return, second terminator byte on port 85
	ETX = 0x03 // End of text, Calman port terminator
	ACK = 0x06 // Calman port acknowledgement
)

// Framing describes how messages are delimited on a stream.
// A Framing is immutable and safe for concurrent use.
type Framing struct {
	// Name identifies the framing in logs (e.g., "default", "calman")
	Name string

	// Terminator ends every outgoing command and every reply
	Terminator []byte

	// Ack is the acknowledgement byte sent by the peer, if the framing has one
	Ack []byte
}

var (
	// DefaultFraming is the STX CR framing used on the command port (85)
	DefaultFraming = Framing{
		Name:       "default",
		Terminator: []byte{STX, CR},
	}

	// CalmanFraming is the ETX/ACK framing of the Calman port (2100).
	// No command in this module talks to that port yet.
	CalmanFraming = Framing{
		Name:       "calman",
		Terminator: []byte{ETX},
		Ack:        []byte{ACK},
	}
)

// String returns a debug representation of the framing
func (f Framing) String() string {
	if len(f.Ack) > 0 {
		return fmt.Sprintf("Framing{%s, terminator=% X, ack=% X}", f.Name, f.Terminator, f.Ack)
	}
	return fmt.Sprintf("Framing{%s, terminator=% X}", f.Name, f.Terminator)
}

// Encode appends the terminator to the command text
func (f Framing) Encode(command string) []byte {
	out := make([]byte, 0, len(command)+len(f.Terminator))
	out = append(out, command...)
	return append(out, f.Terminator...)
}

// Complete reports whether buf ends with the terminator
func (f Framing) Complete(buf []byte) bool {
	return len(f.Terminator) > 0 && bytes.HasSuffix(buf, f.Terminator)
}

// Decode strips a trailing terminator (if present) and decodes the
// remaining bytes as text. Invalid UTF-8 never fails: every offending
// byte is replaced with U+FFFD.
func (f Framing) Decode(buf []byte) string {
	if f.Complete(buf) {
		buf = buf[:len(buf)-len(f.Terminator)]
	}
	return DecodeText(buf)
}

// IsAck reports whether buf is exactly the framing's acknowledgement
func (f Framing) IsAck(buf []byte) bool {
	return len(f.Ack) > 0 && bytes.Equal(buf, f.Ack)
}

// Encode frames a command with the default framing
func Encode(command string) []byte {
	return DefaultFraming.Encode(command)
}

// DecodeText converts bytes to a string, substituting U+FFFD for each
// byte that is not part of a valid UTF-8 sequence. Device telemetry can
// carry line noise, so this must never reject input.
func DecodeText(b []byte) string {
	if utf8.Valid(b) {
		return string(b)
	}

	var sb bytes.Buffer
	sb.Grow(len(b) + 8)
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r == utf8.RuneError && size == 1 {
			sb.WriteRune(utf8.RuneError)
		} else {
			sb.Write(b[:size])
		}
		b = b[size:]
	}
	return sb.String()
}

// Accumulator collects stream chunks until a complete framed message
// has arrived. It is not safe for concurrent use; each request owns one.
type Accumulator struct {
	framing Framing
	buf     []byte
}

// NewAccumulator creates an accumulator for the given framing
func NewAccumulator(framing Framing) *Accumulator {
	return &Accumulator{framing: framing}
}

// Accumulate appends chunk to the buffer. It returns complete=true and the
// terminator-stripped message once the buffer ends with the terminator,
// which may have been split across several chunks.
func (a *Accumulator) Accumulate(chunk []byte) (bool, string) {
	a.buf = append(a.buf, chunk...)
	if !a.framing.Complete(a.buf) {
		return false, ""
	}
	return true, a.framing.Decode(a.buf)
}

// Text decodes whatever has been buffered so far. Used when a read ends
// without a terminator (timeout or peer close).
func (a *Accumulator) Text() string {
	return a.framing.Decode(a.buf)
}

// Len returns the number of buffered bytes
func (a *Accumulator) Len() int {
	return len(a.buf)
}

// Bytes returns the raw buffered bytes
func (a *Accumulator) Bytes() []byte {
	return a.buf
}

// Reset empties the buffer for reuse
func (a *Accumulator) Reset() {
	a.buf = a.buf[:0]
}
