package sse

import (
	"bufio"
	"io"
	"strings"
)

// Scanner reads a server-sent-events byte stream line by line.
type Scanner struct {
	scanner *bufio.Scanner
}

const MaxScanTokenSize = 5 * 1024 * 1024 // 5MB

// NewScanner creates a new SSE scanner from an io.Reader
func NewScanner(reader io.Reader) *Scanner {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, MaxScanTokenSize)
	scanner.Buffer(buf, MaxScanTokenSize)
	return &Scanner{
		scanner: scanner,
	}
}

// Scan advances the scanner to the next line
func (s *Scanner) Scan() bool {
	return s.scanner.Scan()
}

// Text returns the current line as a string
func (s *Scanner) Text() string {
	return s.scanner.Text()
}

// Err returns any error encountered during scanning
func (s *Scanner) Err() error {
	return s.scanner.Err()
}

// IsDataLine checks if a line is a data line and returns the data content.
// Separate "event:" lines, comments, and blank separators are not data lines.
func IsDataLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if line == "" || strings.HasPrefix(line, ":") {
		return "", false
	}
	if data, ok := strings.CutPrefix(line, "data: "); ok {
		return data, true
	}
	return "", false
}

// Decoder yields the data payload of each SSE record, skipping framing lines.
// The JSON inside the payload is the caller's concern.
type Decoder struct {
	scanner *Scanner
}

// NewDecoder creates a Decoder over an SSE byte stream.
func NewDecoder(reader io.Reader) *Decoder {
	return &Decoder{scanner: NewScanner(reader)}
}

// Next returns the next data payload. It returns false when the stream is
// exhausted. Terminator sentinels ("[DONE]") and empty payloads are skipped.
func (d *Decoder) Next() (string, bool) {
	for d.scanner.Scan() {
		data, ok := IsDataLine(d.scanner.Text())
		if !ok {
			continue
		}
		if data == "" || data == "[DONE]" {
			continue
		}
		return data, true
	}
	return "", false
}

// Err returns a terminal read error, if any, after Next returns false.
func (d *Decoder) Err() error {
	return d.scanner.Err()
}
