// Package sse encodes the tutor's server-sent event vocabulary and enforces
// the per-stream payload budget.
package sse

import (
	"bytes"
	"encoding/json"
	"io"
	"net/http"
)

const ContentType = "text/event-stream"

// Event names used on the wire. Deltas use the implicit "message" event.
const (
	EventOpen  = "open"
	EventDone  = "done"
	EventError = "error"
	EventCap   = "cap"
)

// ErrorUpstream is the code sent in the error frame when the upstream fails.
const ErrorUpstream = "upstream"

var emptyObject = []byte("{}")

// Frame renders one SSE frame. An empty event omits the event line.
func Frame(event string, data []byte) []byte {
	var buf bytes.Buffer
	if event != "" {
		buf.WriteString("event: ")
		buf.WriteString(event)
		buf.WriteByte('\n')
	}
	buf.WriteString("data: ")
	buf.Write(data)
	buf.WriteString("\n\n")
	return buf.Bytes()
}

// DeltaFrame renders `data: {"delta": "<text>"}` followed by a blank line.
func DeltaFrame(text string) []byte {
	payload := make([]byte, 0, len(text)+16)
	payload = append(payload, `{"delta": `...)
	payload = append(payload, quote(text)...)
	payload = append(payload, '}')
	return Frame("", payload)
}

// ErrorFrame renders `event: error` with `{"error":"<code>"}`.
func ErrorFrame(code string) []byte {
	payload := make([]byte, 0, len(code)+12)
	payload = append(payload, `{"error":`...)
	payload = append(payload, quote(code)...)
	payload = append(payload, '}')
	return Frame(EventError, payload)
}

// quote JSON-encodes s without HTML escaping, matching what browsers produce.
func quote(s string) []byte {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	// Encoding a string cannot fail.
	_ = enc.Encode(s)
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n"))
}

// Emitter writes the tutor's event vocabulary to a stream, one write and one
// flush per frame. It is not safe for concurrent use.
type Emitter struct {
	w       io.Writer
	flusher http.Flusher
	done    bool
}

// NewEmitter creates an emitter. If w implements http.Flusher every frame is
// flushed as soon as it is written.
func NewEmitter(w io.Writer) *Emitter {
	e := &Emitter{w: w}
	if f, ok := w.(http.Flusher); ok {
		e.flusher = f
	}
	return e
}

func (e *Emitter) Open() error {
	return e.write(Frame(EventOpen, emptyObject))
}

func (e *Emitter) Delta(text string) error {
	return e.write(DeltaFrame(text))
}

// Done writes the done frame. Calls after the first are no-ops.
func (e *Emitter) Done() error {
	if e.done {
		return nil
	}
	e.done = true
	return e.write(Frame(EventDone, emptyObject))
}

func (e *Emitter) Error(code string) error {
	return e.write(ErrorFrame(code))
}

func (e *Emitter) write(frame []byte) error {
	if _, err := e.w.Write(frame); err != nil {
		return err
	}
	if e.flusher != nil {
		e.flusher.Flush()
	}
	return nil
}
