package stomp

import (
	"bytes"
	"fmt"
	"strconv"
)

// Decoder parses raw byte chunks into frames. Chunks are queued by Submit
// and parsed one at a time by Next; each chunk must carry exactly one frame
// (the queue does not reassemble a frame split across chunks — use
// StreamDecoder for that).
//
// A Decoder is not safe for concurrent use; callers sharing one across
// goroutines must serialize access themselves.
type Decoder struct {
	mode  Mode
	queue [][]byte
}

func NewDecoder(mode Mode) *Decoder {
	return &Decoder{mode: mode}
}

// Submit enqueues chunks for later parsing. No parsing happens here.
func (d *Decoder) Submit(chunks ...[]byte) {
	d.queue = append(d.queue, chunks...)
}

// Next dequeues the oldest chunk and parses it as one frame. It returns
// (nil, nil) when the queue is empty. A parse error consumes the offending
// chunk, so later chunks remain decodable.
func (d *Decoder) Next() (*Frame, error) {
	if len(d.queue) == 0 {
		return nil, nil
	}
	chunk := d.queue[0]
	d.queue = d.queue[1:]
	return DecodeFrame(chunk, d.mode)
}

// DecodeMany parses each chunk independently, one frame per chunk,
// preserving input order. On error it returns the frames decoded so far
// together with the error.
func (d *Decoder) DecodeMany(chunks [][]byte) ([]*Frame, error) {
	frames := make([]*Frame, 0, len(chunks))
	for _, chunk := range chunks {
		fr, err := DecodeFrame(chunk, d.mode)
		if err != nil {
			return frames, err
		}
		frames = append(frames, fr)
	}
	return frames, nil
}

// DecodeFrame parses a single frame out of chunk.
//
// The command line and each header line end with LF. An empty line closes
// the header block. With a content-length header the body is exactly that
// many bytes followed by one terminator byte consumed without inspection;
// without one the body runs to the first NUL, or to the end of the chunk
// when no NUL is present. Missing line terminators are tolerated in both
// modes: whatever is present is used.
func DecodeFrame(chunk []byte, mode Mode) (*Frame, error) {
	fr := New()
	cur := 0

	// command line
	if i := bytes.IndexByte(chunk, LF); i >= 0 {
		fr.Command = string(chunk[:i])
		cur = i + 1
	} else {
		fr.Command = string(chunk)
		cur = len(chunk)
	}

	// header block, closed by an empty line
	for cur < len(chunk) {
		var line []byte
		if i := bytes.IndexByte(chunk[cur:], LF); i >= 0 {
			line = chunk[cur : cur+i]
			cur += i + 1
		} else {
			line = chunk[cur:]
			cur = len(chunk)
		}
		if len(line) == 0 {
			break
		}
		if err := fr.Header.parseLine(line, mode); err != nil {
			return nil, err
		}
	}

	// body
	rest := chunk[cur:]
	if v, ok := fr.Header.Get(HdrContentLength); ok {
		n, err := strconv.Atoi(v)
		if err != nil || n < 0 {
			return nil, fmt.Errorf("%w: content-length %q", ErrMalformedHeader, v)
		}
		if n > len(rest) {
			if mode == Strict {
				return nil, fmt.Errorf("%w: content-length %d, %d bytes left", ErrFrameTruncated, n, len(rest))
			}
			n = len(rest)
		}
		// the terminator byte after the body is consumed without validation
		fr.Body = append([]byte(nil), rest[:n]...)
		fr.ExplicitLen = true
		return fr, nil
	}
	if i := bytes.IndexByte(rest, NUL); i >= 0 {
		rest = rest[:i]
	}
	fr.Body = append([]byte(nil), rest...)
	return fr, nil
}
