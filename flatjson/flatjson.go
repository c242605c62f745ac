// Package flatjson implements the minimal JSON-array wire subset this
// daemon's client protocol speaks: not a general JSON parser, just enough
// to read and write the one shape the protocol ever sends, a flat array of
// strings terminated by a newline.
package flatjson

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strings"
)

// ErrInvalidEscape is returned by Next when a string contains a backslash
// escape sequence outside the small allow-listed set, or when a string has
// no closing quote.
var ErrInvalidEscape = errors.New("flatjson: invalid escape sequence")

// Next scans text for the next quoted string element, decoding backslash
// escapes as it goes, and returns the decoded string together with the
// remainder of text starting just past the closing quote. Any run of
// characters before the opening quote — whitespace, array brackets, commas
// — is skipped, which is what makes this parser deliberately forgiving of
// the surrounding array syntax instead of validating it.
//
// Next reports ok=false with a nil error once text is exhausted without a
// string left to read, and ErrInvalidEscape if the input contains an invalid
// escape sequence or a string with no closing quote.
func Next(text string) (value, rest string, ok bool, err error) {
	i := 0
	for i < len(text) && text[i] != '"' {
		i++
	}
	if i >= len(text) {
		return "", "", false, nil
	}
	i++ // skip opening quote

	var buf strings.Builder
	for i < len(text) {
		ch := text[i]

		if ch == '"' {
			return buf.String(), text[i+1:], true, nil
		}

		if ch == '\\' {
			i++
			if i >= len(text) {
				return "", "", false, ErrInvalidEscape
			}
			switch text[i] {
			case 'n':
				buf.WriteByte('\n')
			case '"':
				buf.WriteByte('"')
			case '\\':
				buf.WriteByte('\\')
			case '/':
				buf.WriteByte('/')
			case 'b':
				buf.WriteByte('\b')
			case 'r':
				buf.WriteByte('\r')
			default:
				return "", "", false, ErrInvalidEscape
			}
			i++
			continue
		}

		buf.WriteByte(ch)
		i++
	}

	return "", "", false, ErrInvalidEscape
}

// Elements decodes every string element of one line into a slice, in order.
// It is the counterpart to Next for callers that want the whole line at
// once rather than one element at a time.
func Elements(line string) ([]string, error) {
	var out []string
	rest := line
	for {
		v, r, ok, err := Next(rest)
		if err != nil {
			return nil, err
		}
		if !ok {
			return out, nil
		}
		out = append(out, v)
		rest = r
	}
}

// Escape produces a fragment safe to embed between quotes: '"' becomes
// `\"`, LF becomes `\n`; every other byte passes through unchanged.
func Escape(s string) string {
	var buf strings.Builder
	buf.Grow(len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '"':
			buf.WriteString(`\"`)
		case '\n':
			buf.WriteString(`\n`)
		default:
			buf.WriteByte(s[i])
		}
	}
	return buf.String()
}

// SendSingleton writes a one-element array: ["<escaped s>"]\n.
func SendSingleton(w io.Writer, s string) error {
	_, err := fmt.Fprintf(w, "[\"%s\"]\n", Escape(s))
	return err
}

// Sender accumulates array elements and writes them out with correct comma
// placement, mirroring flatjson_start_send/flatjson_send/flatjson_finish_send's
// split of the emission into start/element/finish calls.
type Sender struct {
	w     *bufio.Writer
	first bool
}

// NewSender starts a new array on w, writing the opening bracket.
func NewSender(w io.Writer) *Sender {
	s := &Sender{w: bufio.NewWriter(w), first: true}
	s.w.WriteByte('[')
	return s
}

// Send writes one escaped string element, prefixing a ", " separator on
// every call after the first.
func (s *Sender) Send(elem string) {
	if !s.first {
		s.w.WriteString(", ")
	}
	s.w.WriteByte('"')
	s.w.WriteString(Escape(elem))
	s.w.WriteByte('"')
	s.first = false
}

// Finish writes the closing bracket and newline and flushes the underlying
// writer.
func (s *Sender) Finish() error {
	s.w.WriteString("]\n")
	return s.w.Flush()
}

// SendArray is a convenience wrapper around Sender for the common case of
// emitting a full array of known elements in one call.
func SendArray(w io.Writer, elems ...string) error {
	s := NewSender(w)
	for _, e := range elems {
		s.Send(e)
	}
	return s.Finish()
}
