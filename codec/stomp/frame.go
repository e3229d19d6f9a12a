package stomp

import "fmt"

// Frame is one protocol message: command line, header block, body.
type Frame struct {
	Command string
	Header  Header
	Body    []byte

	// ExplicitLen records that the body was length-framed on the wire
	// (a content-length header was present) and must be length-framed
	// again on encode. It is not itself part of the wire format: the
	// encoder turns it back into a content-length header.
	ExplicitLen bool
}

func New() *Frame {
	return &Frame{Header: *NewHeader()}
}

// NewFrame builds an outbound frame with the given command.
func NewFrame(command string) *Frame {
	fr := New()
	fr.Command = command
	return fr
}

func (f *Frame) Clone() *Frame {
	res := New()
	res.Command = f.Command
	res.Body = f.Body
	res.ExplicitLen = f.ExplicitLen
	res.Header = *f.Header.Clone()
	return res
}

func (f *Frame) String() string {
	return fmt.Sprintf("{ command: %s, header: { %s }, body: %d bytes }",
		f.Command, f.Header.String(), len(f.Body))
}
