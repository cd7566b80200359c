//go:build ignore

package main

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/muurk/pgen/internal/protocol"
	"github.com/muurk/pgen/internal/server"
)

// Statistics tracks reply parsing results
type Statistics struct {
	TotalFiles    int
	TotalRecords  int
	TotalReplies  int
	ParseSuccess  int
	ParseFailure  int
	BridgeErrors  int
	CommandKinds  map[string]int
	FailedReplies []FailedReply
}

// FailedReply stores information about a reply that did not parse
type FailedReply struct {
	File       string
	LineNumber int
	MessageNum int
	Command    string
	Reply      string
	Error      string
}

func main() {
	if len(os.Args) < 2 {
		fmt.Println("Usage: validate_replies <directory-or-file>")
		fmt.Println("Example: validate_replies captures/")
		fmt.Println("         validate_replies capture-20251121-104043-127.0.0.1_50312.jsonl")
		os.Exit(1)
	}

	path := os.Args[1]

	stats := Statistics{CommandKinds: make(map[string]int)}

	info, err := os.Stat(path)
	if err != nil {
		fmt.Printf("Error accessing path: %v\n", err)
		os.Exit(1)
	}

	var files []string
	if info.IsDir() {
		files, err = filepath.Glob(filepath.Join(path, "*.jsonl"))
		if err != nil {
			fmt.Printf("Error finding JSONL files: %v\n", err)
			os.Exit(1)
		}
		if len(files) == 0 {
			fmt.Printf("No JSONL files found in %s\n", path)
			os.Exit(1)
		}
	} else {
		files = []string{path}
	}

	fmt.Printf("=== PGenerator Reply Validator ===\n")
	fmt.Printf("Files to process: %d\n\n", len(files))

	for _, file := range files {
		processFile(file, &stats)
	}

	printStatistics(&stats)
}

func processFile(filename string, stats *Statistics) {
	stats.TotalFiles++

	data, err := os.ReadFile(filename)
	if err != nil {
		fmt.Printf("Error reading file %s: %v\n", filename, err)
		return
	}

	// Replies follow their command in a capture
	lastCommand := ""
	for lineNum, line := range strings.Split(string(data), "\n") {
		if line == "" {
			continue
		}

		var rec server.CaptureRecord
		if err := json.Unmarshal([]byte(line), &rec); err != nil {
			fmt.Printf("Error parsing JSON in %s line %d: %v\n", filename, lineNum+1, err)
			continue
		}
		stats.TotalRecords++

		if rec.Direction == "client->device" {
			lastCommand = rec.Text
			stats.CommandKinds[commandKind(rec.Text)]++
			continue
		}

		stats.TotalReplies++
		if rec.Error != "" {
			stats.BridgeErrors++
			continue
		}

		if err := checkReply(lastCommand, rec.Text); err != nil {
			stats.ParseFailure++
			stats.FailedReplies = append(stats.FailedReplies, FailedReply{
				File:       filename,
				LineNumber: lineNum + 1,
				MessageNum: rec.MessageNum,
				Command:    lastCommand,
				Reply:      rec.Text,
				Error:      err.Error(),
			})
			continue
		}
		stats.ParseSuccess++
	}
}

// commandKind groups a command by its verb
func commandKind(command string) string {
	switch {
	case command == protocol.RestartCommand:
		return "RESTART"
	case strings.HasPrefix(command, "RGB="):
		return "RGB"
	case strings.HasPrefix(command, "TESTPATTERN:"):
		return "TESTPATTERN"
	case strings.HasPrefix(command, protocol.CommandPrefix):
		name := strings.TrimPrefix(command, protocol.CommandPrefix)
		switch {
		case strings.HasPrefix(name, protocol.MultipleCommand):
			return "MULTIPLE"
		case strings.HasPrefix(name, protocol.ConfSetPrefix):
			return "SET_CONF"
		case strings.HasPrefix(name, protocol.ConfGetPrefix):
			return "GET_CONF"
		}
		if i := strings.IndexAny(name, ":="); i >= 0 {
			name = name[:i]
		}
		return name
	}
	return "OTHER"
}

// checkReply parses a reply the way the client does for the command
func checkReply(command, reply string) error {
	name := strings.TrimPrefix(command, protocol.CommandPrefix)
	switch {
	case name == protocol.AliveProbe:
		if strings.TrimSpace(reply) != protocol.AliveToken {
			return fmt.Errorf("liveness reply %q is not %s", reply, protocol.AliveToken)
		}
	case name == protocol.ConfGetPrefix+protocol.ConfAllKey, name == protocol.CmdGetEDID:
		body, _ := protocol.StripOK(reply)
		if _, err := protocol.DecodeBlob(body); err != nil {
			return err
		}
	case strings.HasPrefix(name, protocol.MultipleCommand):
		body, _ := protocol.StripOK(reply)
		if len(protocol.ParseMultiple(body)) == 0 {
			return fmt.Errorf("MULTIPLE reply has no key:value lines")
		}
	}
	return nil
}

func percent(n, total int) float64 {
	if total == 0 {
		return 0
	}
	return float64(n) / float64(total) * 100
}

func printStatistics(stats *Statistics) {
	fmt.Printf("\n========================================\n")
	fmt.Printf("VALIDATION RESULTS\n")
	fmt.Printf("========================================\n\n")

	fmt.Printf("Files Processed:    %d\n", stats.TotalFiles)
	fmt.Printf("Records:            %d\n", stats.TotalRecords)
	fmt.Printf("Replies:            %d\n", stats.TotalReplies)
	fmt.Printf("Parse Success:      %d (%.2f%%)\n", stats.ParseSuccess, percent(stats.ParseSuccess, stats.TotalReplies))
	fmt.Printf("Parse Failure:      %d (%.2f%%)\n", stats.ParseFailure, percent(stats.ParseFailure, stats.TotalReplies))
	fmt.Printf("Bridge Errors:      %d\n", stats.BridgeErrors)

	fmt.Printf("\n----------------------------------------\n")
	fmt.Printf("COMMAND DISTRIBUTION\n")
	fmt.Printf("----------------------------------------\n")
	kinds := make([]string, 0, len(stats.CommandKinds))
	for kind := range stats.CommandKinds {
		kinds = append(kinds, kind)
	}
	sort.Strings(kinds)
	total := stats.TotalRecords - stats.TotalReplies
	for _, kind := range kinds {
		count := stats.CommandKinds[kind]
		fmt.Printf("%-24s %d (%.2f%%)\n", kind, count, percent(count, total))
	}

	if len(stats.FailedReplies) > 0 {
		fmt.Printf("\n----------------------------------------\n")
		fmt.Printf("PARSE FAILURES (%d total)\n", len(stats.FailedReplies))
		fmt.Printf("----------------------------------------\n")

		maxShow := 10
		if len(stats.FailedReplies) > maxShow {
			fmt.Printf("(Showing first %d of %d failures)\n\n", maxShow, len(stats.FailedReplies))
		}

		for i, failed := range stats.FailedReplies {
			if i >= maxShow {
				break
			}
			fmt.Printf("\nFailure #%d:\n", i+1)
			fmt.Printf("  File: %s (line %d, msg #%d)\n", failed.File, failed.LineNumber, failed.MessageNum)
			fmt.Printf("  Command: %s\n", failed.Command)
			fmt.Printf("  Error: %s\n", failed.Error)
			preview := failed.Reply
			if len(preview) > 80 {
				preview = preview[:80] + "..."
			}
			fmt.Printf("  Reply: %q\n", preview)
		}
	}

	fmt.Printf("\n========================================\n")
	if stats.ParseFailure == 0 {
		fmt.Printf("✅ SUCCESS: All replies parsed successfully!\n")
	} else {
		fmt.Printf("⚠️  ISSUES FOUND: %d replies failed to parse\n", stats.ParseFailure)
	}
	fmt.Printf("========================================\n")
}
