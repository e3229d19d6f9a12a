package stomp

import (
	"bytes"
	"fmt"
	"sort"
)

const (
	HdrAcceptVersion = "accept-version"
	HdrAck           = "ack"
	HdrContentLength = "content-length"
	HdrContentType   = "content-type"
	HdrDestination   = "destination"
	HdrHeartBeat     = "heart-beat"
	HdrHost          = "host"
	HdrId            = "id"
	HdrLogin         = "login"
	HdrMessage       = "message"
	HdrMessageId     = "message-id"
	HdrPasscode      = "passcode"
	HdrReceipt       = "receipt"
	HdrReceiptId     = "receipt-id"
	HdrServer        = "server"
	HdrSession       = "session"
	HdrSubscription  = "subscription"
	HdrTransaction   = "transaction"
	HdrVersion       = "version"
)

// Header holds a frame's name/value pairs. Names keep the case they were
// received with; repeated names overwrite (last value wins).
type Header struct {
	kv map[string]string
}

func NewHeader() *Header {
	return &Header{kv: make(map[string]string, 8)}
}

func (h *Header) Get(name string) (value string, ok bool) {
	value, ok = h.kv[name]
	return
}

func (h *Header) Set(name, value string) {
	h.kv[name] = value
}

func (h *Header) Del(name string) {
	delete(h.kv, name)
}

func (h *Header) Len() int {
	return len(h.kv)
}

// Names returns all header names sorted lexicographically.
func (h *Header) Names() []string {
	names := make([]string, 0, len(h.kv))
	for name := range h.kv {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func (h *Header) Clone() *Header {
	res := NewHeader()
	for name, value := range h.kv {
		res.kv[name] = value
	}
	return res
}

// parseLine stores one wire header line. The line is split on the first
// colon; a single space after the colon is eaten. A line without a colon is
// kept as a name with an empty value in Permissive mode and rejected in
// Strict mode.
func (h *Header) parseLine(line []byte, mode Mode) error {
	p := bytes.IndexByte(line, ':')
	if p < 0 {
		if mode == Strict {
			return fmt.Errorf("%w: no colon in %q", ErrMalformedHeader, line)
		}
		h.Set(string(line), "")
		return nil
	}
	value := line[p+1:]
	if len(value) > 0 && value[0] == ' ' {
		value = value[1:]
	}
	h.Set(string(line[:p]), string(value))
	return nil
}

func (h *Header) String() string {
	var buf bytes.Buffer
	for i, name := range h.Names() {
		if i > 0 {
			buf.WriteString(", ")
		}
		fmt.Fprintf(&buf, "%s=%s", name, h.kv[name])
	}
	return buf.String()
}
