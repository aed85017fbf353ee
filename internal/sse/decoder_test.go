package sse

import (
	"errors"
	"io"
	"strings"
	"testing"
	"testing/iotest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func collect(t *testing.T, d *Decoder) []string {
	t.Helper()
	var out []string
	for d.Next() {
		out = append(out, string(d.Data()))
	}
	return out
}

func TestDecoder(t *testing.T) {
	in := strings.Join([]string{
		": comment",
		"",
		"data: hello",
		"",
		"data: line1",
		"data: line2",
		"",
		"event: ignored",
		"data: [DONE]",
		"",
		"",
	}, "\n")

	d := NewDecoder(strings.NewReader(in))
	assert.Equal(t, []string{"hello", "line1\nline2", "[DONE]"}, collect(t, d))
	assert.NoError(t, d.Err())
}

func TestDecoderChunkBoundaries(t *testing.T) {
	in := "data: {\"a\":1}\n\ndata: {\"b\":2}\n\n"

	t.Run("one byte per read", func(t *testing.T) {
		d := NewDecoder(iotest.OneByteReader(strings.NewReader(in)))
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, collect(t, d))
	})

	t.Run("half reads", func(t *testing.T) {
		d := NewDecoder(iotest.HalfReader(strings.NewReader(in)))
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, collect(t, d))
	})

	t.Run("data with final EOF", func(t *testing.T) {
		d := NewDecoder(iotest.DataErrReader(strings.NewReader(in)))
		assert.Equal(t, []string{`{"a":1}`, `{"b":2}`}, collect(t, d))
	})
}

func TestDecoderPartialEventIsBuffered(t *testing.T) {
	r, w := io.Pipe()
	d := NewDecoder(r)

	go func() {
		_, _ = w.Write([]byte("data: par"))
		_, _ = w.Write([]byte("tial\n"))
		_, _ = w.Write([]byte("\ndata: next\n\n"))
		_ = w.Close()
	}()

	require.True(t, d.Next())
	assert.Equal(t, "partial", string(d.Data()))
	require.True(t, d.Next())
	assert.Equal(t, "next", string(d.Data()))
	assert.False(t, d.Next())
}

func TestDecoderTrailingEventWithoutBoundary(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: first\n\ndata: last"))
	assert.Equal(t, []string{"first", "last"}, collect(t, d))
}

func TestDecoderCRLF(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: one\r\n\r\ndata: two\r\ndata: three\r\n\r\n"))
	assert.Equal(t, []string{"one", "two\nthree"}, collect(t, d))
}

func TestDecoderSkipsEventsWithoutData(t *testing.T) {
	d := NewDecoder(strings.NewReader("event: ping\n\nid: 3\n\ndata:\n\ndata: ok\n\n"))
	assert.Equal(t, []string{"ok"}, collect(t, d))
}

func TestDecoderDone(t *testing.T) {
	d := NewDecoder(strings.NewReader("data: [DONE]\n\n"))
	require.True(t, d.Next())
	assert.True(t, d.Done())
	assert.False(t, d.Next())
	assert.False(t, d.Done())
}

func TestDecoderReadError(t *testing.T) {
	boom := errors.New("connection reset")
	src := io.MultiReader(strings.NewReader("data: ok\n\ndata: cut"), iotest.ErrReader(boom))

	d := NewDecoder(src)
	assert.Equal(t, []string{"ok", "cut"}, collect(t, d))
	assert.ErrorIs(t, d.Err(), boom)
}

func TestDecoderEmptyStream(t *testing.T) {
	d := NewDecoder(strings.NewReader(""))
	assert.False(t, d.Next())
	assert.NoError(t, d.Err())
}
