package extract

// stream.go provides the readers applied to CSV sources before parsing.
//
// Tables exported by other tools arrive with the usual artifacts:
//
//   - a UTF-8 BOM (0xEF 0xBB 0xBF) written by Windows programs
//   - invalid UTF-8 from legacy encodings, replaced with '?' on the fly
//
// Both transforms stream with constant memory.

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// NewSourceReader strips a leading BOM and sanitizes invalid UTF-8.
func NewSourceReader(r io.Reader) io.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		_, _ = br.Discard(len(utf8BOM))
	}
	return &utf8Sanitizer{reader: br}
}

// utf8Sanitizer replaces invalid UTF-8 bytes with '?'. A multi-byte
// sequence split across reads is held back until it is complete.
type utf8Sanitizer struct {
	reader  io.Reader
	pending []byte
}

// Read implements io.Reader. p must hold at least utf8.UTFMax bytes.
func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		return 0, io.ErrShortBuffer
	}

	for {
		n := copy(p, s.pending)
		s.pending = s.pending[:0]

		m, err := s.reader.Read(p[n:])
		n += m

		if err == nil {
			if k := incompleteTail(p[:n]); k > 0 {
				s.pending = append(s.pending, p[n-k:n]...)
				n -= k
			}
		}

		if n > 0 || err != nil {
			return sanitizeUTF8(p[:n]), err
		}
	}
}

// incompleteTail returns the length of a truncated multi-byte sequence at
// the end of data, or 0.
func incompleteTail(data []byte) int {
	for k := 1; k < utf8.UTFMax && k <= len(data); k++ {
		start := len(data) - k
		if !utf8.RuneStart(data[start]) {
			continue
		}
		if utf8.FullRune(data[start:]) {
			return 0
		}
		return k
	}
	return 0
}

// sanitizeUTF8 rewrites data in place and returns the new length. The
// replacement is a single byte so data never grows.
func sanitizeUTF8(data []byte) int {
	if utf8.Valid(data) {
		return len(data)
	}

	w := 0
	for r := 0; r < len(data); {
		_, size := utf8.DecodeRune(data[r:])
		if size == 1 && data[r] >= utf8.RuneSelf {
			data[w] = '?'
			w++
			r++
			continue
		}
		copy(data[w:], data[r:r+size])
		w += size
		r += size
	}
	return w
}
