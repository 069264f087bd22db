// Package jsonscan extracts complete top-level JSON objects from a text
// buffer that is appended to incrementally, tolerating surrounding non-JSON
// noise. It is used to pull structured records out of streaming model output
// before the stream has finished.
package jsonscan

import (
	"encoding/json"
	"strings"
)

// Extractor consumes arbitrary text chunks via Feed and yields each
// top-level JSON object as soon as its closing brace has arrived. Unconsumed
// text persists across calls until matched or the Extractor is discarded.
// An Extractor is scoped to a single stream and is not safe for concurrent use.
type Extractor struct {
	buf string
}

// New returns an Extractor with an empty buffer.
func New() *Extractor {
	return &Extractor{}
}

// Feed appends chunk to the internal buffer and returns every complete JSON
// object that can now be parsed out of it, in order of appearance. Each
// returned object is consumed from the buffer together with any noise
// preceding it. A candidate substring that balances braces but fails to parse
// (braces inside surrounding prose, for example) is skipped by advancing to
// the next opening brace; no object is ever yielded partially.
func (e *Extractor) Feed(chunk string) []json.RawMessage {
	e.buf += chunk

	var objects []json.RawMessage
	search := 0
	for search < len(e.buf) {
		rel := strings.IndexByte(e.buf[search:], '{')
		if rel < 0 {
			break
		}
		start := search + rel

		end, closed := closingBrace(e.buf, start)
		if !closed {
			// This start does not balance within the buffer. A later start
			// still might (a stray unmatched brace before a complete object),
			// so keep scanning before giving up until the next Feed.
			search = start + 1
			continue
		}

		candidate := e.buf[start : end+1]
		if json.Valid([]byte(candidate)) {
			objects = append(objects, json.RawMessage(candidate))
			e.buf = e.buf[end+1:]
			search = 0
			continue
		}
		search = start + 1
	}
	return objects
}

// Buffered returns the text retained for future Feed calls.
func (e *Extractor) Buffered() string {
	return e.buf
}

// closingBrace scans forward from the opening brace at start and returns the
// index at which the brace depth returns to zero.
func closingBrace(s string, start int) (int, bool) {
	depth := 0
	for i := start; i < len(s); i++ {
		switch s[i] {
		case '{':
			depth++
		case '}':
			depth--
			if depth == 0 {
				return i, true
			}
		}
	}
	return 0, false
}
