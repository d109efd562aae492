package openai

import (
	"bytes"
	"strings"
)

var (
	blockSeparator = []byte("\n\n")
	crlf           = []byte("\r\n")
	lf             = []byte("\n")
)

// FrameDecoder reassembles upstream SSE blocks that may be split across
// network reads. It returns the joined data payload of each complete block.
type FrameDecoder struct {
	buf []byte
}

// Feed appends a chunk and returns the payloads of all blocks it completed.
func (d *FrameDecoder) Feed(chunk []byte) []string {
	d.buf = append(d.buf, chunk...)
	d.buf = bytes.ReplaceAll(d.buf, crlf, lf)

	var payloads []string
	for {
		i := bytes.Index(d.buf, blockSeparator)
		if i < 0 {
			break
		}
		if p, ok := blockPayload(d.buf[:i]); ok {
			payloads = append(payloads, p)
		}
		d.buf = d.buf[i+len(blockSeparator):]
	}

	// Reclaim the consumed prefix.
	if len(d.buf) == 0 {
		d.buf = nil
	}
	return payloads
}

// Flush returns the payload of a trailing block the upstream never terminated.
func (d *FrameDecoder) Flush() []string {
	rest := bytes.TrimRight(d.buf, "\r\n")
	d.buf = nil
	if p, ok := blockPayload(rest); ok {
		return []string{p}
	}
	return nil
}

func blockPayload(block []byte) (string, bool) {
	var data []string
	for _, line := range strings.Split(string(block), "\n") {
		if !strings.HasPrefix(line, "data:") {
			// comments, event:, id: and retry: lines carry nothing we relay
			continue
		}
		v := strings.TrimPrefix(line, "data:")
		v = strings.TrimPrefix(v, " ")
		data = append(data, v)
	}
	if len(data) == 0 {
		return "", false
	}
	return strings.Join(data, "\n"), true
}
