package poles

// streaming.go prepares csv input for encoding/csv without buffering the
// whole file:
//
//   - skipBOM drops the UTF-8 byte order mark Windows tools prepend
//   - utf8Sanitizer replaces invalid bytes so Latin-1 exports still parse
//   - sniffDelimiter picks ';' for spreadsheets saved with a comma decimal locale

import (
	"bufio"
	"bytes"
	"io"
	"unicode/utf8"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// skipBOM returns a buffered reader positioned after a leading BOM, if any.
func skipBOM(r io.Reader) *bufio.Reader {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		br.Discard(len(utf8BOM))
	}
	return br
}

// sniffDelimiter looks at the first line and returns ';' when it carries more
// semicolons than commas.
func sniffDelimiter(br *bufio.Reader) rune {
	head, _ := br.Peek(br.Size())
	if i := bytes.IndexByte(head, '\n'); i >= 0 {
		head = head[:i]
	}
	if bytes.Count(head, []byte{';'}) > bytes.Count(head, []byte{','}) {
		return ';'
	}
	return ','
}

// utf8Sanitizer replaces each invalid UTF-8 byte with '?'. Multi-byte runes
// split across reads are carried over to the next call.
type utf8Sanitizer struct {
	r       io.Reader
	pending []byte
}

func newUTF8Sanitizer(r io.Reader) *utf8Sanitizer {
	return &utf8Sanitizer{r: r, pending: make([]byte, 0, utf8.UTFMax)}
}

func (s *utf8Sanitizer) Read(p []byte) (int, error) {
	if len(p) < utf8.UTFMax {
		// Too small to hold a carried-over rune plus progress.
		buf := make([]byte, utf8.UTFMax)
		n, err := s.Read(buf)
		copied := copy(p, buf[:n])
		s.pending = append(buf[copied:n:n], s.pending...)
		return copied, err
	}

	offset := copy(p, s.pending)
	s.pending = s.pending[:0]

	n, err := s.r.Read(p[offset:])
	n += offset
	if n == 0 {
		return 0, err
	}
	atEOF := err == io.EOF

	data := p[:n]
	if utf8.Valid(data) {
		return n, err
	}

	w := 0
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			if !atEOF && !utf8.FullRune(data[i:]) {
				// Possibly the head of a rune whose tail has not arrived yet.
				s.pending = append(s.pending, data[i:]...)
				break
			}
			data[w] = '?'
			w++
			i++
			continue
		}
		copy(data[w:], data[i:i+size])
		w += size
		i += size
	}

	if w == 0 && len(s.pending) > 0 && err == nil {
		// Only a partial rune so far; read again rather than return 0, nil.
		return s.Read(p)
	}
	return w, err
}
