package stomp

import "errors"

// wire control bytes
const (
	LF  = byte(0x0a) // end of command and header lines
	NUL = byte(0x00) // end of frame body
)

// Mode selects how tolerant the codec is towards malformed wire data.
// Permissive reproduces the behavior of lenient STOMP peers: missing
// terminators and short bodies are accepted as-is. Strict turns the
// recoverable cases into errors.
type Mode uint8

const (
	Permissive Mode = iota
	Strict
)

var (
	// ErrMalformedHeader content-length is not a non-negative integer,
	// or (Strict only) a header line carries no colon.
	ErrMalformedHeader = errors.New("malformed header")
	// ErrFrameTruncated declared content-length exceeds the bytes available (Strict only).
	ErrFrameTruncated = errors.New("frame truncated")
	// ErrEncodingConstraint command or header text contains LF/NUL (Strict only).
	ErrEncodingConstraint = errors.New("forbidden byte in frame text")
)
