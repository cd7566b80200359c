package server

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/muurk/pgen/internal/logging"
	"go.uber.org/zap"
)

const (
	directionClientToDevice = "client->device"
	directionDeviceToClient = "device->client"
)

// CaptureRecord is one line of a bridge capture file
type CaptureRecord struct {
	Timestamp    time.Time `json:"timestamp"`
	MessageNum   int       `json:"message_num"`
	RemoteAddr   string    `json:"remote_addr"`
	Direction    string    `json:"direction"`
	Text         string    `json:"text"`
	PayloadLen   int       `json:"payload_length"`
	PayloadHex   string    `json:"payload_hex"`
	PayloadASCII string    `json:"payload_ascii"`
	Error        string    `json:"error,omitempty"`
}

// capture appends the commands and replies of one client to a JSONL file.
// A nil *capture records nothing.
type capture struct {
	mu         sync.Mutex
	file       *os.File
	path       string
	remoteAddr string
	messageNum int
}

// newCapture opens capture-<time>-<client>.jsonl in dir, or returns nil
// when dir is empty or the file cannot be created
func newCapture(dir, remoteAddr string) *capture {
	if dir == "" {
		return nil
	}

	name := fmt.Sprintf("capture-%s-%s.jsonl",
		time.Now().Format("20060102-150405"),
		strings.NewReplacer(":", "_", "[", "", "]", "").Replace(remoteAddr))
	path := filepath.Join(dir, name)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		logging.Error("Failed to open capture file",
			zap.String("filename", path),
			zap.Error(err),
		)
		return nil
	}
	return &capture{file: f, path: path, remoteAddr: remoteAddr}
}

// Record appends one message
func (c *capture) Record(direction, text string, recErr error) {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()

	c.messageNum++
	rec := CaptureRecord{
		Timestamp:    time.Now(),
		MessageNum:   c.messageNum,
		RemoteAddr:   c.remoteAddr,
		Direction:    direction,
		Text:         text,
		PayloadLen:   len(text),
		PayloadHex:   hex.EncodeToString([]byte(text)),
		PayloadASCII: toASCII([]byte(text)),
	}
	if recErr != nil {
		rec.Error = recErr.Error()
	}

	data, err := json.Marshal(rec)
	if err != nil {
		logging.Error("Failed to marshal capture record", zap.Error(err))
		return
	}
	if _, err := c.file.Write(append(data, '\n')); err != nil {
		logging.Error("Failed to write capture file",
			zap.String("filename", c.path),
			zap.Error(err),
		)
	}
}

// Close closes the capture file
func (c *capture) Close() {
	if c == nil {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	_ = c.file.Close()
}

// toASCII converts bytes to ASCII string (non-printable chars become '.')
func toASCII(data []byte) string {
	result := make([]byte, len(data))
	for i, b := range data {
		if b >= 32 && b <= 126 {
			result[i] = b
		} else {
			result[i] = '.'
		}
	}
	return string(result)
}
