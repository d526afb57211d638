package internal

import (
	"bytes"
	"encoding/json"
	"io"
)

// readChunkSize is the per-read buffer for the underlying stream.
const readChunkSize = 4096

// StreamDecoder turns a raw chunked byte stream into an ordered sequence of
// protocol events. The stream is newline-delimited JSON; chunk boundaries
// carry no meaning and may fall anywhere, including inside a multi-byte
// UTF-8 codepoint. Partial trailing bytes stay buffered until the next read
// completes them, or until end-of-data flushes the final line.
type StreamDecoder struct {
	r     io.Reader
	buf   []byte
	chunk []byte
	eof   bool
	err   error
}

// NewStreamDecoder creates a decoder over r. The decoder does not close r.
func NewStreamDecoder(r io.Reader) *StreamDecoder {
	return &StreamDecoder{r: r, chunk: make([]byte, readChunkSize)}
}

// Next returns the next decoded event. io.EOF signals that the stream is
// cleanly exhausted. A *StreamError means a complete line failed to parse;
// it is fatal and the decoder yields nothing afterwards, even if valid
// lines remain buffered.
func (d *StreamDecoder) Next() (*StreamEvent, error) {
	if d.err != nil {
		return nil, d.err
	}

	for {
		// Emit the next complete buffered line, skipping blank ones.
		if i := bytes.IndexByte(d.buf, '\n'); i >= 0 {
			line := d.buf[:i]
			d.buf = d.buf[i+1:]

			ev, err := d.decodeLine(line)
			if err != nil {
				d.err = err
				return nil, err
			}
			if ev == nil {
				continue
			}
			return ev, nil
		}

		if d.eof {
			// Flush: the unterminated tail is one final candidate line.
			line := d.buf
			d.buf = nil
			d.err = io.EOF

			ev, err := d.decodeLine(line)
			if err != nil {
				d.err = err
				return nil, err
			}
			if ev == nil {
				return nil, io.EOF
			}
			return ev, nil
		}

		n, err := d.r.Read(d.chunk)
		if n > 0 {
			d.buf = append(d.buf, d.chunk[:n]...)
		}
		if err == io.EOF {
			d.eof = true
		} else if err != nil {
			d.err = err
			return nil, err
		}
	}
}

// decodeLine parses one complete line. Whitespace-only lines return
// (nil, nil) and produce no event.
func (d *StreamDecoder) decodeLine(line []byte) (*StreamEvent, error) {
	line = bytes.TrimSpace(line)
	if len(line) == 0 {
		return nil, nil
	}

	var ev StreamEvent
	if err := json.Unmarshal(line, &ev); err != nil {
		return nil, &StreamError{Line: string(line), Err: err}
	}
	return &ev, nil
}
