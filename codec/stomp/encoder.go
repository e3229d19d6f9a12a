package stomp

import (
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Encoder serializes frames into wire bytes. The zero strictness level is
// Permissive, which writes whatever text the frame carries; Strict rejects
// commands and headers containing LF or NUL since the protocol has no
// escaping and such bytes corrupt framing.
type Encoder struct {
	mode Mode
}

func NewEncoder(mode Mode) *Encoder {
	return &Encoder{mode: mode}
}

// Encode serializes one frame:
//
//	COMMAND<LF> header lines <LF> <LF> body <NUL>
//
// The command is uppercased and header names lowercased; header lines are
// written in lexicographic name order so output is reproducible. A frame
// carrying the ExplicitLen marker gets a content-length header synthesized
// from the body size, overriding any stale value; the caller's frame is not
// modified.
func (e *Encoder) Encode(fr *Frame) ([]byte, error) {
	hdr := fr.Header.Clone()
	if fr.ExplicitLen {
		hdr.Set(HdrContentLength, strconv.Itoa(len(fr.Body)))
	}
	if e.mode == Strict {
		if err := checkText(fr.Command); err != nil {
			return nil, fmt.Errorf("command %q: %w", fr.Command, err)
		}
		for _, name := range hdr.Names() {
			value, _ := hdr.Get(name)
			if err := checkText(name); err != nil {
				return nil, fmt.Errorf("header %q: %w", name, err)
			}
			if err := checkText(value); err != nil {
				return nil, fmt.Errorf("header %q value: %w", name, err)
			}
		}
	}

	// order by the name as written, so mixed-case names still come out
	// lexicographically
	names := hdr.Names()
	sort.Slice(names, func(i, j int) bool {
		li, lj := strings.ToLower(names[i]), strings.ToLower(names[j])
		if li == lj {
			return names[i] < names[j]
		}
		return li < lj
	})

	buf := make([]byte, 0, len(fr.Command)+hdr.Len()*32+len(fr.Body)+8)
	buf = append(buf, strings.ToUpper(fr.Command)...)
	buf = append(buf, LF)
	for _, name := range names {
		value, _ := hdr.Get(name)
		buf = append(buf, strings.ToLower(name)...)
		buf = append(buf, ':', ' ')
		buf = append(buf, value...)
		buf = append(buf, LF)
	}
	buf = append(buf, LF)
	buf = append(buf, fr.Body...)
	buf = append(buf, NUL)
	return buf, nil
}

// EncodeMany serializes frames in order, one output chunk per frame. The
// chunks are kept separate to match the transport's write granularity.
func (e *Encoder) EncodeMany(frames []*Frame) ([][]byte, error) {
	chunks := make([][]byte, 0, len(frames))
	for _, fr := range frames {
		b, err := e.Encode(fr)
		if err != nil {
			return chunks, err
		}
		chunks = append(chunks, b)
	}
	return chunks, nil
}

func checkText(s string) error {
	if strings.IndexByte(s, LF) >= 0 || strings.IndexByte(s, NUL) >= 0 {
		return ErrEncodingConstraint
	}
	return nil
}
