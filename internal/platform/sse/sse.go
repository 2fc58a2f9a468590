// Package sse frames JSON payloads as server-sent events and decodes them on
// the consuming side.
package sse

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
)

const dataPrefix = "data: "

// maxEventSize bounds a single event line; llms-full.txt payloads can be large.
const maxEventSize = 32 << 20

// SetHeaders prepares w for an event stream.
func SetHeaders(w http.ResponseWriter) {
	h := w.Header()
	h.Set("Content-Type", "text/event-stream")
	h.Set("Cache-Control", "no-cache")
	h.Set("Connection", "keep-alive")
	h.Set("X-Accel-Buffering", "no")
}

// Writer writes `data: <json>\n\n` events, flushing after each one when the
// underlying writer supports it.
type Writer struct {
	w       io.Writer
	flusher http.Flusher
}

// NewWriter returns a Writer on w.
func NewWriter(w io.Writer) *Writer {
	f, _ := w.(http.Flusher)
	return &Writer{w: w, flusher: f}
}

// WriteEvent encodes v as one event. A write error usually means the client
// went away.
func (s *Writer) WriteEvent(v any) error {
	payload, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("sse: encoding event: %w", err)
	}

	var buf bytes.Buffer
	buf.Grow(len(dataPrefix) + len(payload) + 2)
	buf.WriteString(dataPrefix)
	buf.Write(payload)
	buf.WriteString("\n\n")

	if _, err := buf.WriteTo(s.w); err != nil {
		return fmt.Errorf("sse: writing event: %w", err)
	}
	if s.flusher != nil {
		s.flusher.Flush()
	}
	return nil
}

// Decoder reads events written by Writer. Lines without the data prefix are
// ignored and payloads that fail to decode are dropped.
type Decoder struct {
	scanner *bufio.Scanner
	// Skipped counts payloads dropped because they were not valid JSON.
	Skipped int
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	sc := bufio.NewScanner(r)
	sc.Buffer(make([]byte, 0, 64*1024), maxEventSize)
	return &Decoder{scanner: sc}
}

// Next decodes the next well-formed event into v. It returns io.EOF when the
// stream ends.
func (d *Decoder) Next(v any) error {
	for d.scanner.Scan() {
		line := bytes.TrimRight(d.scanner.Bytes(), "\r")
		payload, ok := bytes.CutPrefix(line, []byte(dataPrefix))
		if !ok || len(bytes.TrimSpace(payload)) == 0 {
			continue
		}
		if err := json.Unmarshal(payload, v); err != nil {
			d.Skipped++
			continue
		}
		return nil
	}

	if err := d.scanner.Err(); err != nil && !errors.Is(err, io.EOF) {
		return fmt.Errorf("sse: reading stream: %w", err)
	}
	return io.EOF
}
