package message

import (
	"bytes"
	"unicode/utf8"
)

// Framer - cuts bytes read from a connection into chat messages.
// Returned slices are owned by the caller.
type Framer interface {
	// Frame - consumes one read result and returns complete messages.
	Frame(p []byte) [][]byte
	// Flush - returns buffered incomplete message, if any, at end of stream.
	Flush() []byte
}

// FramerFactory - builds fresh Framer for every connection.
type FramerFactory func(bound int) Framer

// Raw - treats every read as exactly one message.
func Raw(int) Framer { return rawFramer{} }

type rawFramer struct{}

func (rawFramer) Frame(p []byte) [][]byte {
	if len(p) == 0 {
		return nil
	}
	return [][]byte{bytes.Clone(p)}
}

func (rawFramer) Flush() []byte { return nil }

// Lines - reassembles newline-terminated lines across reads.
// A line growing beyond bound is emitted early, cut at the last complete rune.
func Lines(bound int) Framer {
	if bound <= 0 {
		bound = 4096
	}
	return &lineFramer{bound: bound}
}

type lineFramer struct {
	bound   int
	pending bytes.Buffer
}

func (f *lineFramer) Frame(p []byte) [][]byte {
	var out [][]byte
	for len(p) > 0 {
		i := bytes.IndexByte(p, '\n')
		if i < 0 {
			f.pending.Write(p)
			break
		}
		f.pending.Write(p[:i+1])
		p = p[i+1:]
		out = append(out, f.take(f.pending.Len()))
	}
	for f.pending.Len() >= f.bound {
		n := f.bound
		if i, size := LastValidRune(f.pending.Bytes()[:n]); i >= 0 && i+size < n {
			n = i + size
		}
		out = append(out, f.take(n))
	}
	return out
}

func (f *lineFramer) Flush() []byte {
	if f.pending.Len() == 0 {
		return nil
	}
	return f.take(f.pending.Len())
}

func (f *lineFramer) take(n int) []byte {
	line := make([]byte, n)
	copy(line, f.pending.Next(n))
	return line
}

// LastValidRune - return index and size in bytes of last well-encoded rune in given slice.
// Returns (-1, 0) if source does not contain valid unicode code points.
func LastValidRune(s []byte) (i, size int) {
	if len(s) == 0 {
		return -1, 0
	}
	return bytes.LastIndexFunc(s, func(r rune) bool {
			valid := r != utf8.RuneError && utf8.ValidRune(r)
			if valid {
				size = utf8.RuneLen(r)
			}
			return valid
		}),
		size
}
