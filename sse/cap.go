package sse

import (
	"bytes"
	"errors"
	"io"
	"strconv"
	"unicode/utf8"
)

// ErrCapped is returned for writes attempted after the cap frame was sent.
var ErrCapped = errors.New("sse: session cap reached")

// CapReason is the reason reported in the cap frame.
const CapReason = "session_cap"

// Control lines that do not count toward the budget.
var controlPrefixes = [][]byte{[]byte("event:"), []byte("id:"), []byte("retry:")}

// CapTransform counts the payload characters of one SSE stream and decides
// when the stream has to end. Create one per stream; it is not safe for
// concurrent use.
type CapTransform struct {
	tokenCap  int
	charLimit int

	sent      int
	announced bool

	// last two bytes passed through, used to keep the cap frame on its own
	tail []byte
}

// NewCapTransform creates a transform with a budget of tokenCap*charsPerToken
// characters.
func NewCapTransform(tokenCap, charsPerToken int) *CapTransform {
	if charsPerToken < 1 {
		charsPerToken = 1
	}
	return &CapTransform{
		tokenCap:  tokenCap,
		charLimit: tokenCap * charsPerToken,
		tail:      make([]byte, 0, 2),
	}
}

func (t *CapTransform) TokenCap() int   { return t.tokenCap }
func (t *CapTransform) CharLimit() int  { return t.charLimit }
func (t *CapTransform) Sent() int       { return t.sent }
func (t *CapTransform) Announced() bool { return t.announced }

// Transform accounts for a chunk that the caller passes through unmodified.
// When the running total reaches the limit for the first time it returns the
// cap frame to append after the chunk and terminate=true; the caller must
// write the footer and stop. Chunks offered after that are not counted.
func (t *CapTransform) Transform(chunk []byte) (footer []byte, terminate bool) {
	if t.announced {
		return nil, true
	}

	t.sent += CountPayload(chunk)
	t.remember(chunk)

	if t.sent < t.charLimit {
		return nil, false
	}

	t.announced = true
	return t.footer(), true
}

// CapFrame renders the cap event for the given budget.
func CapFrame(tokenCap, charLimit int) []byte {
	payload := make([]byte, 0, 64)
	payload = append(payload, `{"reason":"`+CapReason+`","capTokens":`...)
	payload = strconv.AppendInt(payload, int64(tokenCap), 10)
	payload = append(payload, `,"capChars":`...)
	payload = strconv.AppendInt(payload, int64(charLimit), 10)
	payload = append(payload, '}')
	return Frame(EventCap, payload)
}

func (t *CapTransform) footer() []byte {
	frame := CapFrame(t.tokenCap, t.charLimit)
	if bytes.HasSuffix(t.tail, []byte("\n\n")) {
		return frame
	}
	// The previous chunk left a frame open; close it first.
	return append([]byte("\n\n"), frame...)
}

func (t *CapTransform) remember(chunk []byte) {
	if len(chunk) >= 2 {
		t.tail = append(t.tail[:0], chunk[len(chunk)-2:]...)
		return
	}
	t.tail = append(t.tail, chunk...)
	if len(t.tail) > 2 {
		t.tail = t.tail[len(t.tail)-2:]
	}
}

// CountPayload returns the number of characters in chunk that count toward
// the budget: everything except the contents of event:, id: and retry: lines.
// Line breaks are counted. Characters are measured in UTF-16 code units.
func CountPayload(chunk []byte) int {
	n := 0
	for len(chunk) > 0 {
		line := chunk
		newline := false
		if i := bytes.IndexByte(chunk, '\n'); i >= 0 {
			line = chunk[:i]
			chunk = chunk[i+1:]
			newline = true
		} else {
			chunk = nil
		}

		if isControlLine(line) {
			if bytes.HasSuffix(line, []byte("\r")) {
				n++
			}
		} else {
			n += utf16Len(line)
		}
		if newline {
			n++
		}
	}
	return n
}

func isControlLine(line []byte) bool {
	for _, p := range controlPrefixes {
		if bytes.HasPrefix(line, p) {
			return true
		}
	}
	return false
}

func utf16Len(b []byte) int {
	n := 0
	for len(b) > 0 {
		r, size := utf8.DecodeRune(b)
		if r >= 0x10000 {
			n += 2
		} else {
			n++
		}
		b = b[size:]
	}
	return n
}

// CapWriter applies a CapTransform to everything written through it. Once the
// cap frame has been written every further Write fails with ErrCapped.
type CapWriter struct {
	w     io.Writer
	t     *CapTransform
	onCap func()
}

// NewCapWriter wraps w. onCap, if not nil, runs once right after the cap frame
// has been written.
func NewCapWriter(w io.Writer, t *CapTransform, onCap func()) *CapWriter {
	return &CapWriter{w: w, t: t, onCap: onCap}
}

func (cw *CapWriter) Write(p []byte) (int, error) {
	if cw.t.Announced() {
		return 0, ErrCapped
	}

	n, err := cw.w.Write(p)
	if err != nil {
		return n, err
	}

	footer, terminate := cw.t.Transform(p[:n])
	if !terminate {
		return n, nil
	}
	if _, err := cw.w.Write(footer); err != nil {
		return n, err
	}
	if cw.onCap != nil {
		cw.onCap()
	}
	return n, nil
}

// Transform exposes the underlying transform.
func (cw *CapWriter) Transform() *CapTransform {
	return cw.t
}
