package stomp

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestHeaderSetGetDel(t *testing.T) {
	h := NewHeader()
	h.Set(HdrDestination, "/queue/a")
	h.Set(HdrDestination, "/queue/b")
	v, ok := h.Get(HdrDestination)
	assert.True(t, ok)
	assert.Equal(t, "/queue/b", v)

	h.Del(HdrDestination)
	_, ok = h.Get(HdrDestination)
	assert.False(t, ok)
}

func TestHeaderNamesSorted(t *testing.T) {
	h := NewHeader()
	h.Set("zz", "1")
	h.Set("aa", "2")
	h.Set("mm", "3")
	assert.Equal(t, []string{"aa", "mm", "zz"}, h.Names())
}

func TestHeaderParseLine(t *testing.T) {
	h := NewHeader()
	assert.NoError(t, h.parseLine([]byte("destination:/queue/a"), Permissive))
	assert.NoError(t, h.parseLine([]byte("foo: bar"), Permissive))
	assert.NoError(t, h.parseLine([]byte("colons:a:b: c"), Permissive))

	dest, _ := h.Get("destination")
	assert.Equal(t, "/queue/a", dest)
	foo, _ := h.Get("foo")
	assert.Equal(t, "bar", foo)
	// split on the first colon only, one optional space eaten
	colons, _ := h.Get("colons")
	assert.Equal(t, "a:b: c", colons)
}

func TestHeaderClone(t *testing.T) {
	h := NewHeader()
	h.Set("foo", "bar")
	c := h.Clone()
	c.Set("foo", "baz")
	v, _ := h.Get("foo")
	assert.Equal(t, "bar", v)
}

func TestFrameClone(t *testing.T) {
	fr := NewFrame(CmdMessage)
	fr.Header.Set(HdrDestination, "/topic/x")
	fr.Body = []byte("b")
	fr.ExplicitLen = true
	t.Logf("%s", fr)

	c := fr.Clone()
	c.Header.Set(HdrDestination, "/topic/y")
	v, _ := fr.Header.Get(HdrDestination)
	assert.Equal(t, "/topic/x", v)
	assert.True(t, c.ExplicitLen)
}

func BenchmarkDecodeFrame(b *testing.B) {
	chunk := []byte("SEND\ndestination: /queue/foo98769\ncontent-type: application/json\n\n{\"one\":1,\"two\":2}\x00")
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := DecodeFrame(chunk, Permissive); err != nil {
			b.Error(err)
		}
	}
}

func BenchmarkEncode(b *testing.B) {
	fr := NewFrame(CmdMessage)
	fr.Header.Set(HdrDestination, "/queue/foo98769")
	fr.Header.Set(HdrContentType, "application/json")
	fr.Body = []byte(`{"one":1,"two":2, "fine_key": [1,2,3,4,5,6,7,8,9]}`)
	fr.ExplicitLen = true
	e := NewEncoder(Permissive)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := e.Encode(fr); err != nil {
			b.Error(err)
		}
	}
}
