// Package sse implements a minimal server-sent events reader.
package sse

import (
	"bufio"
	"io"
	"strings"
)

const maxScanTokenSize = 5 * 1024 * 1024 // 5MB

// Scanner reads an SSE body line by line.
type Scanner struct {
	scanner *bufio.Scanner
}

// NewScanner creates a new SSE scanner from an io.Reader.
func NewScanner(reader io.Reader) *Scanner {
	scanner := bufio.NewScanner(reader)
	buf := make([]byte, maxScanTokenSize)
	scanner.Buffer(buf, maxScanTokenSize)
	return &Scanner{
		scanner: scanner,
	}
}

// Scan advances the scanner to the next line.
func (s *Scanner) Scan() bool {
	return s.scanner.Scan()
}

// Text returns the current line as a string.
func (s *Scanner) Text() string {
	return s.scanner.Text()
}

// Err returns any error encountered during scanning.
func (s *Scanner) Err() error {
	return s.scanner.Err()
}

// DataLine checks if a line is a data line and returns the data content.
func DataLine(line string) (string, bool) {
	line = strings.TrimSpace(line)
	if data, ok := strings.CutPrefix(line, "data: "); ok {
		return data, true
	}
	return "", false
}
