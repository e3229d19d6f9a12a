package stomp

import (
	"bytes"
	"fmt"
	"strconv"
)

var headerEnd = []byte{LF, LF}

// StreamDecoder reassembles frames from an arbitrary stream of chunks:
// bytes accumulate in an internal buffer and Next only parses once a
// complete frame is buffered. Use it when the transport does not guarantee
// one frame per read, e.g. on a plain TCP connection.
type StreamDecoder struct {
	mode Mode
	buf  []byte
	off  int
}

func NewStreamDecoder(mode Mode) *StreamDecoder {
	return &StreamDecoder{mode: mode}
}

// Feed appends a chunk to the internal buffer.
func (d *StreamDecoder) Feed(chunk []byte) {
	d.buf = append(d.buf, chunk...)
}

// Buffered reports how many bytes are waiting to be parsed.
func (d *StreamDecoder) Buffered() int {
	return len(d.buf) - d.off
}

// Next parses and consumes the next complete frame in the buffer. It
// returns (nil, nil) while the buffered bytes do not yet form a complete
// frame. On a malformed frame the buffer is resynchronized to the byte
// after the next NUL so that following frames stay decodable.
func (d *StreamDecoder) Next() (*Frame, error) {
	// lone EOLs between frames are heart-beats, skip them
	for d.off < len(d.buf) && d.buf[d.off] == LF {
		d.off++
	}
	d.compact()
	b := d.buf[d.off:]
	if len(b) == 0 {
		return nil, nil
	}
	end, ok, err := frameEnd(b)
	if err != nil {
		d.resync()
		return nil, err
	}
	if !ok {
		return nil, nil
	}
	fr, err := DecodeFrame(b[:end], d.mode)
	if err != nil {
		d.resync()
		return nil, err
	}
	d.off += end
	d.compact()
	return fr, nil
}

// frameEnd locates the end of the first complete frame in b, terminator
// byte included. ok is false while more bytes are needed.
func frameEnd(b []byte) (end int, ok bool, err error) {
	h := bytes.Index(b, headerEnd)
	if h < 0 {
		return 0, false, nil
	}
	bodyStart := h + len(headerEnd)
	n, explicit, err := scanContentLength(b[:bodyStart])
	if err != nil {
		return 0, false, err
	}
	if explicit {
		// compare by subtraction: bodyStart+n+1 overflows int for huge
		// declared lengths
		if n > len(b)-bodyStart-1 {
			return 0, false, nil
		}
		return bodyStart + n + 1, true, nil // body plus terminator byte
	}
	i := bytes.IndexByte(b[bodyStart:], NUL)
	if i < 0 {
		return 0, false, nil
	}
	return bodyStart + i + 1, true, nil
}

// scanContentLength extracts the content-length value from a raw header
// block, mirroring the last-value-wins parse of DecodeFrame.
func scanContentLength(block []byte) (n int, ok bool, err error) {
	var value []byte
	lines := bytes.Split(block, []byte{LF})
	for _, line := range lines[1:] { // lines[0] is the command
		p := bytes.IndexByte(line, ':')
		if p < 0 || string(line[:p]) != HdrContentLength {
			continue
		}
		value = line[p+1:]
		if len(value) > 0 && value[0] == ' ' {
			value = value[1:]
		}
		ok = true
	}
	if !ok {
		return 0, false, nil
	}
	n, err = strconv.Atoi(string(value))
	if err != nil || n < 0 {
		return 0, false, fmt.Errorf("%w: content-length %q", ErrMalformedHeader, value)
	}
	return n, true, nil
}

// resync drops buffered bytes up to and including the next NUL, or the
// whole buffer when none is present.
func (d *StreamDecoder) resync() {
	if i := bytes.IndexByte(d.buf[d.off:], NUL); i >= 0 {
		d.off += i + 1
	} else {
		d.off = len(d.buf)
	}
	d.compact()
}

func (d *StreamDecoder) compact() {
	if d.off == len(d.buf) {
		d.buf = d.buf[:0]
		d.off = 0
	} else if d.off > 4096 {
		d.buf = append(d.buf[:0], d.buf[d.off:]...)
		d.off = 0
	}
}
