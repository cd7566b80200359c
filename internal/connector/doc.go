// Package connector picks a PGenerator to talk to and watches the link.
//
// AutoConnect tries the fixed gadget addresses a PGenerator gives itself
// (10.10.11.1, 10.10.10.1, 10.10.12.1, 10.10.13.1) in parallel and keeps
// the first one, in that order, that accepts a connection and answers
// IS_ALIVE. When none does it falls back to UDP broadcast discovery.
//
// Monitor probes an open session every ten seconds. The first failed
// probe closes the session and reports the loss; reconnecting is left to
// the caller.
package connector
