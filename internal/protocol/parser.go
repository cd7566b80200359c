package protocol

import (
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"unicode/utf8"
)

// KeyValue is one "key:value" line of a device reply
type KeyValue struct {
	Key   string
	Value string
}

// String returns the line in wire form
func (kv KeyValue) String() string {
	return kv.Key + ":" + kv.Value
}

// StripOK removes a leading "OK:" marker. The second return value reports
// whether the marker was present; replies without it are returned unchanged.
func StripOK(reply string) (string, bool) {
	if strings.HasPrefix(reply, OKPrefix) {
		return reply[len(OKPrefix):], true
	}
	return reply, false
}

// ParseKeyValues splits newline separated "key:value" text into pairs,
// preserving order. Blank lines and lines without a colon are skipped;
// only the first colon separates key from value.
func ParseKeyValues(text string) []KeyValue {
	var pairs []KeyValue
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return pairs
}

// ParseMultiple parses a MULTIPLE reply. It behaves like ParseKeyValues but
// also drops any line that starts with the status marker ("OK").
func ParseMultiple(text string) []KeyValue {
	var pairs []KeyValue
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, StatusMarker) {
			continue
		}
		key, value, ok := strings.Cut(line, ":")
		if !ok {
			continue
		}
		pairs = append(pairs, KeyValue{Key: key, Value: value})
	}
	return pairs
}

// DecodeBlob decodes a base64 payload (configuration dump, EDID) to text.
// Surrounding whitespace is ignored. A payload that decodes to invalid
// UTF-8 is rejected: short raw words such as "NONE" are valid base64.
func DecodeBlob(raw string) (string, error) {
	data, err := base64.StdEncoding.DecodeString(strings.TrimSpace(raw))
	if err != nil {
		return "", fmt.Errorf("invalid base64 payload: %w", err)
	}
	if !utf8.Valid(data) {
		return "", errors.New("base64 payload is not UTF-8 text")
	}
	return DecodeText(data), nil
}

// DecodeBlobOrRaw decodes a base64 payload, falling back to the raw text
// when it is not valid base64 or does not decode to UTF-8. The error (if any) is returned for logging
// only; the text is always usable.
func DecodeBlobOrRaw(raw string) (string, error) {
	decoded, err := DecodeBlob(raw)
	if err != nil {
		return raw, err
	}
	return decoded, nil
}
