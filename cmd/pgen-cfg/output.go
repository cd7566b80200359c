package main

import (
	"encoding/json"
	"fmt"
)

// Output formats accepted by --format
const (
	formatDetailed = "detailed"
	formatCompact  = "compact"
	formatJSON     = "json"
)

// checkFormat rejects unknown --format values
func checkFormat() error {
	switch outputFormat {
	case formatDetailed, formatCompact, formatJSON:
		return nil
	}
	return fmt.Errorf("unknown format %q (want detailed, compact or json)", outputFormat)
}

// printJSON writes v as indented JSON
func printJSON(v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal JSON: %w", err)
	}
	fmt.Println(string(data))
	return nil
}
