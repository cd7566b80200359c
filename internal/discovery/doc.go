// Package discovery finds PGenerator devices on the local network.
//
// The primary mechanism is the PGenerator UDP broadcast: a single
// "Who is a PGenerator" datagram is sent to port 1977 and every datagram
// containing "I am a PGenerator" that arrives within the window counts
// its sender as a device. Discovery never opens a TCP connection.
//
// # Discovery Process
//
//  1. Open a UDP socket on an ephemeral port (broadcast is enabled by Go)
//  2. Send the probe to the broadcast address
//  3. Read replies until the deadline passes or a read times out
//  4. Keep each sender once, in the order first seen
//  5. Close the socket on every path
//
// MDNSScanner complements the broadcast on networks that filter it by
// browsing for hosts named pgenerator*. DiscoverAll runs both.
//
// # Usage Example
//
//	addrs, err := discovery.Discover(3 * time.Second)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for _, ip := range addrs {
//	    fmt.Println("Found PGenerator at", ip)
//	}
//
// # Network Requirements
//
// - Devices must be on the same broadcast domain
// - Firewall must allow UDP 1977 outbound and the replies back
// - mDNS additionally needs UDP 5353 multicast
//
// # Thread Safety
//
// Scans share no state. Multiple scans, and scans alongside open
// sessions, can run at the same time.
package discovery
