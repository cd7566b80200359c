//go:build ignore

package main

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strings"
	"time"

	"github.com/muurk/pgen/internal/protocol"
	"github.com/muurk/pgen/internal/server"
)

// exchange is one command and the reply that followed it
type exchange struct {
	command *server.CaptureRecord
	reply   *server.CaptureRecord
}

func (e exchange) latency() time.Duration {
	if e.command == nil || e.reply == nil {
		return 0
	}
	return e.reply.Timestamp.Sub(e.command.Timestamp)
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: analyze_captures <jsonl-file>")
		fmt.Println("Example: analyze_captures captures/capture-20251121-030905-127.0.0.1_50312.jsonl")
		os.Exit(1)
	}

	filename := os.Args[1]
	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file: %v\n", err)
		os.Exit(1)
	}

	var exchanges []exchange
	for i, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}
		var rec server.CaptureRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			fmt.Printf("Error parsing line %d: %v\n", i+1, err)
			continue
		}
		if rec.Direction == "client->device" || len(exchanges) == 0 || exchanges[len(exchanges)-1].reply != nil {
			exchanges = append(exchanges, exchange{})
		}
		last := &exchanges[len(exchanges)-1]
		if rec.Direction == "client->device" {
			last.command = &rec
		} else {
			last.reply = &rec
		}
	}

	fmt.Printf("=== PGenerator Capture Analyzer ===\n")
	fmt.Printf("File: %s\n", filename)
	fmt.Printf("Exchanges: %d\n\n", len(exchanges))

	for _, e := range exchanges {
		analyzeExchange(e)
	}
	printLatencySummary(exchanges)
}

func analyzeExchange(e exchange) {
	fmt.Printf("========================================\n")
	if e.command != nil {
		fmt.Printf("#%d %s  %s\n", e.command.MessageNum, e.command.Timestamp.Format("15:04:05.000"), e.command.Text)
	} else {
		fmt.Printf("(reply without command)\n")
	}
	fmt.Printf("========================================\n")

	if e.reply == nil {
		fmt.Printf("No reply captured\n\n")
		return
	}
	if e.reply.Error != "" {
		fmt.Printf("Error after %s: %s\n\n", e.latency(), e.reply.Error)
		return
	}

	body, ok := protocol.StripOK(e.reply.Text)
	fmt.Printf("Reply after %s (%d bytes, OK marker: %v)\n", e.latency(), e.reply.PayloadLen, ok)

	if pairs := protocol.ParseMultiple(body); len(pairs) > 1 {
		fmt.Println("Key/Value Lines:")
		for _, kv := range pairs {
			fmt.Printf("  %-28s %s\n", kv.Key, kv.Value)
		}
	} else if decoded, err := protocol.DecodeBlob(body); err == nil && len(body) > 16 {
		fmt.Println("Base64 Payload:")
		for _, line := range strings.Split(strings.TrimSpace(decoded), "\n") {
			fmt.Printf("  %s\n", line)
		}
	} else {
		fmt.Printf("Text: %q\n", body)
	}

	if payload, err := hex.DecodeString(e.reply.PayloadHex); err == nil && hasControlBytes(payload) {
		fmt.Println("Hex Dump (16 bytes/line):")
		fmt.Print(hex.Dump(payload))
	}
	fmt.Println()
}

// hasControlBytes reports bytes other than tab, newline and printable ASCII
func hasControlBytes(b []byte) bool {
	for _, c := range b {
		if (c < 0x20 && c != '\n' && c != '\t' && c != '\r') || c > 0x7e {
			return true
		}
	}
	return false
}

func printLatencySummary(exchanges []exchange) {
	var latencies []time.Duration
	for _, e := range exchanges {
		if e.command != nil && e.reply != nil && e.reply.Error == "" {
			latencies = append(latencies, e.latency())
		}
	}
	if len(latencies) == 0 {
		return
	}
	sort.Slice(latencies, func(i, j int) bool { return latencies[i] < latencies[j] })

	var total time.Duration
	for _, l := range latencies {
		total += l
	}
	fmt.Printf("----------------------------------------\n")
	fmt.Printf("LATENCY (%d replies)\n", len(latencies))
	fmt.Printf("----------------------------------------\n")
	fmt.Printf("min:    %s\n", latencies[0])
	fmt.Printf("median: %s\n", latencies[len(latencies)/2])
	fmt.Printf("mean:   %s\n", total/time.Duration(len(latencies)))
	fmt.Printf("max:    %s\n", latencies[len(latencies)-1])
}
