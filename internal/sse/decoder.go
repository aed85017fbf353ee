// Package sse decodes Server-Sent Event streams incrementally.
//
// A Decoder reads its source in chunks and keeps the bytes of a partially
// received event in an explicit buffer, so a chunk boundary never has to line
// up with an event boundary. Only "data:" lines are kept; the lines of one
// event are joined with "\n".
package sse

import (
	"bytes"
	"io"
)

// DoneMarker is the conventional terminal payload of a stream.
const DoneMarker = "[DONE]"

const defaultChunkSize = 4096

// state is the decoder's position in its read cycle.
type state int

const (
	// stateReading means the buffer holds no complete event yet.
	stateReading state = iota
	// stateBoundary means the buffer holds at least one complete event.
	stateBoundary
	// stateDrained means the source returned EOF or an error.
	stateDrained
)

// Decoder reads Server-Sent Events and yields event payloads.
type Decoder struct {
	r     io.Reader
	chunk []byte

	// partial holds bytes received but not yet part of a complete event.
	partial []byte
	state   state

	data []byte
	err  error
}

// NewDecoder returns a Decoder reading from r.
func NewDecoder(r io.Reader) *Decoder {
	return &Decoder{r: r, chunk: make([]byte, defaultChunkSize)}
}

// Next advances to the next event carrying data. It returns false once the
// source is drained or fails. An incomplete event left when the source ends
// is still delivered.
func (d *Decoder) Next() bool {
	for {
		switch d.state {
		case stateBoundary:
			block, ok := d.cut()
			if !ok {
				d.state = stateReading
				continue
			}
			if d.setData(block) {
				return true
			}

		case stateReading:
			n, err := d.r.Read(d.chunk)
			if n > 0 {
				d.partial = append(d.partial, d.chunk[:n]...)
				if hasBoundary(d.partial) {
					d.state = stateBoundary
				}
			}
			if err != nil {
				if err != io.EOF {
					d.err = err
				}
				// Complete events already buffered are still delivered in drained state.
				d.state = stateDrained
			}

		case stateDrained:
			if block, ok := d.cut(); ok {
				if d.setData(block) {
					return true
				}
				continue
			}
			if len(d.partial) == 0 {
				d.data = nil
				return false
			}
			block := d.partial
			d.partial = nil
			if d.setData(block) {
				return true
			}
		}
	}
}

// Data returns the payload of the current event: the joined "data:" lines,
// trimmed of surrounding whitespace.
func (d *Decoder) Data() []byte {
	if d == nil {
		return nil
	}
	return d.data
}

// Done reports whether the current event is the terminal marker.
func (d *Decoder) Done() bool {
	return string(d.Data()) == DoneMarker
}

// Err returns the first non-EOF read error.
func (d *Decoder) Err() error {
	if d == nil {
		return nil
	}
	return d.err
}

// cut removes the first complete event from the buffer.
func (d *Decoder) cut() ([]byte, bool) {
	idx, width := boundary(d.partial)
	if idx < 0 {
		return nil, false
	}
	block := d.partial[:idx]
	d.partial = d.partial[idx+width:]
	return block, true
}

// setData extracts the data lines of block and reports whether any payload
// remained.
func (d *Decoder) setData(block []byte) bool {
	var payload []byte
	found := false
	for _, line := range bytes.Split(block, []byte("\n")) {
		line = bytes.TrimSuffix(line, []byte("\r"))
		if !bytes.HasPrefix(line, []byte("data:")) {
			continue
		}
		v := bytes.TrimPrefix(line, []byte("data:"))
		v = bytes.TrimPrefix(v, []byte(" "))
		if found {
			payload = append(payload, '\n')
		}
		payload = append(payload, v...)
		found = true
	}
	payload = bytes.TrimSpace(payload)
	if len(payload) == 0 {
		return false
	}
	d.data = payload
	return true
}

var (
	lfBoundary   = []byte("\n\n")
	crlfBoundary = []byte("\r\n\r\n")
)

// boundary returns the index and width of the first blank-line separator.
func boundary(b []byte) (int, int) {
	lf := bytes.Index(b, lfBoundary)
	crlf := bytes.Index(b, crlfBoundary)
	switch {
	case lf < 0 && crlf < 0:
		return -1, 0
	case crlf < 0 || (lf >= 0 && lf < crlf):
		return lf, len(lfBoundary)
	default:
		return crlf, len(crlfBoundary)
	}
}

func hasBoundary(b []byte) bool {
	idx, _ := boundary(b)
	return idx >= 0
}
