package csv

// streaming.go wraps the raw input so the CSV reader sees clean text
// without buffering the whole file:
//
//   - bomSkipper drops a leading UTF-8 BOM (0xEF 0xBB 0xBF) from Windows exports
//   - utf8Sanitizer replaces invalid UTF-8 bytes with '?'
//   - CountingReader tracks bytes read for the run summary
//
// WrapInput applies all three in that order.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// bomSkipper removes a UTF-8 BOM at the start of the stream.
type bomSkipper struct {
	r       *bufio.Reader
	checked bool
}

func newBOMSkipper(r io.Reader) *bomSkipper {
	return &bomSkipper{r: bufio.NewReader(r)}
}

func (b *bomSkipper) Read(p []byte) (int, error) {
	if !b.checked {
		b.checked = true
		head, err := b.r.Peek(len(utf8BOM))
		if err != nil && err != io.EOF {
			return 0, err
		}
		if bytes.Equal(head, utf8BOM) {
			if _, err := b.r.Discard(len(utf8BOM)); err != nil {
				return 0, err
			}
		}
	}
	return b.r.Read(p)
}

// utf8Sanitizer replaces bytes that are not valid UTF-8 with '?'.
// A multi-byte rune split across reads is held in raw until it completes.
type utf8Sanitizer struct {
	r     io.Reader
	chunk []byte
	raw   []byte // read from r, not yet sanitized
	ready []byte // sanitized, not yet handed out
	out   []byte // backing array for ready
	err   error
}

const sanitizerChunk = 4096

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, chunk: make([]byte, sanitizerChunk)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) == 0 {
		return 0, nil
	}
	for empty := 0; len(s.ready) == 0; empty++ {
		if s.err != nil {
			return 0, s.err
		}
		if empty >= 100 {
			return 0, io.ErrNoProgress
		}
		s.fill()
	}
	n := copy(p, s.ready)
	s.ready = s.ready[n:]
	return n, nil
}

// fill reads one chunk from r and sanitizes everything that forms complete
// runes. It is only called once ready has been drained.
func (s *utf8Sanitizer) fill() {
	n, err := s.r.Read(s.chunk)
	s.raw = append(s.raw, s.chunk[:n]...)
	if err != nil {
		s.err = err
	}

	var rest []byte
	s.out, rest = sanitize(s.out[:0], s.raw, s.err != nil)
	s.ready = s.out
	s.raw = s.raw[:copy(s.raw, rest)]
}

func isASCII(data []byte) bool {
	for _, c := range data {
		if c >= utf8.RuneSelf {
			return false
		}
	}
	return true
}

// sanitize appends data to dst with invalid bytes replaced by '?'. Unless
// atEOF, an incomplete trailing rune is returned as rest instead.
func sanitize(dst, data []byte, atEOF bool) (out, rest []byte) {
	if isASCII(data) {
		return append(dst, data...), nil
	}
	for i := 0; i < len(data); {
		if c := data[i]; c < utf8.RuneSelf {
			dst = append(dst, c)
			i++
			continue
		}
		if !atEOF && !utf8.FullRune(data[i:]) {
			return dst, data[i:]
		}
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			dst = append(dst, '?')
			i++
			continue
		}
		dst = append(dst, data[i:i+size]...)
		i += size
	}
	return dst, nil
}

// CountingReader tracks the number of bytes read through it.
type CountingReader struct {
	r     io.Reader
	count int64
}

// NewCountingReader wraps r.
func NewCountingReader(r io.Reader) *CountingReader {
	return &CountingReader{r: r}
}

func (c *CountingReader) Read(p []byte) (int, error) {
	n, err := c.r.Read(p)
	c.count += int64(n)
	return n, err
}

// BytesRead returns the total bytes read so far.
func (c *CountingReader) BytesRead() int64 { return c.count }

// WrapInput strips a BOM, sanitizes UTF-8 and counts bytes. The count is
// of raw input bytes, before sanitization.
func WrapInput(r io.Reader) (io.Reader, *CountingReader) {
	counter := NewCountingReader(r)
	return newUTF8Sanitizer(newBOMSkipper(counter)), counter
}
