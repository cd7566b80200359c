// Package protocol implements the PGenerator text command protocol.
//
// This package handles framing, command construction and reply parsing for
// the TCP command interface exposed by the PGenerator daemon. It holds no
// connection state; see package session for the socket side.
//
// # Framing
//
// Every command on the command port (85) is terminated by the two bytes
// STX CR (0x02 0x0D), and every reply ends the same way:
//
//	IS_ALIVE\x02\r   ->   ALIVE\x02\r
//
// The Calman port (2100) uses a single ETX (0x03) terminator and answers
// with ACK (0x06). It is modelled as CalmanFraming so callers can select it,
// but no command in this module uses it.
//
// Replies can arrive in several TCP segments and the terminator itself may
// be split between them. Accumulator buffers chunks until the buffer ends
// with the terminator:
//
//	acc := protocol.NewAccumulator(protocol.DefaultFraming)
//	for {
//	    n, err := conn.Read(chunk)
//	    if done, msg := acc.Accumulate(chunk[:n]); done {
//	        return msg, nil
//	    }
//	}
//
// Text decoding never fails. Bytes that are not valid UTF-8 are replaced
// one by one with U+FFFD.
//
// # Commands
//
//	CMD:<name>                              generic command
//	CMD:MULTIPLE:<n1>:<n2>:...               batched query
//	CMD:SET_PGENERATOR_CONF_<KEY>:<value>    configuration write
//	CMD:GET_PGENERATOR_CONF_<KEY>            configuration read
//	RESTARTPGENERATOR:                       service restart (no CMD: prefix)
//	RGB=<draw>;<dim>;<res>;<rgb>;<bg>;<pos>;<text>
//	TESTPATTERN:<name>:<draw>:<dim>:<res>:<rgb>:
//
// # Replies
//
// Generic replies start with "OK:" on success. MULTIPLE replies and the
// decoded configuration dump are newline separated "key:value" lines.
// Configuration and EDID payloads are base64; DecodeBlobOrRaw falls back
// to the raw text when the payload is not valid base64.
//
// # Thread Safety
//
// Framing values and all builder and parser functions are stateless and
// safe for concurrent use. An Accumulator belongs to a single request.
package protocol
