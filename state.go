package formdata

import (
	"bytes"
	"context"
	"errors"
	"io"
	"sync"

	"github.com/indigo-web/utils/uf"
)

var (
	crlf     = []byte("\r\n")
	dashes   = []byte("--")
	crlfcrlf = []byte("\r\n\r\n")
)

// State owns the byte source and the boundary scanner. FormData and the
// field currently being read share one State and take turns driving it.
// The try-lock makes a second concurrent driver fail with ErrLocked
// instead of corrupting the scan position: the wire format is strictly
// sequential, so contention is always a usage bug.
type State struct {
	mu  sync.Mutex
	src Source

	// buffer holds bytes pulled from src and not yet handed out. It is
	// seeded with a CRLF placeholder so the very first boundary looks
	// like every later one.
	buffer []byte
	// delimiter is "\r\n--" + boundary.
	delimiter []byte

	phase    phase
	eof      bool
	readable bool
	length   uint64

	total  int
	fields int
	files  int

	limits Limits

	// wake is signalled once when a field finishes, so a FormData
	// blocked behind an undrained part can resume.
	wake chan struct{}
}

// NewState creates a scanner over src with the given boundary. A
// BufferSize below MinBufferSize is raised to it.
func NewState(src Source, boundary string, limits Limits) *State {
	if limits.BufferSize < MinBufferSize {
		limits.BufferSize = MinBufferSize
	}

	delimiter := make([]byte, 0, len(crlf)+len(dashes)+len(boundary))
	delimiter = append(delimiter, crlf...)
	delimiter = append(delimiter, dashes...)
	delimiter = append(delimiter, boundary...)

	buffer := make([]byte, 0, limits.BufferSize)
	buffer = append(buffer, crlf...)

	return &State{
		src:       src,
		buffer:    buffer,
		delimiter: delimiter,
		phase:     phase{kind: phaseDelimiting},
		limits:    limits,
		wake:      make(chan struct{}, 1),
	}
}

// Boundary returns the boundary the scanner was created with.
func (s *State) Boundary() string {
	return uf.B2S(s.delimiter[len(crlf)+len(dashes):])
}

// Length returns the number of meaningful multipart bytes consumed so
// far. Trailing bytes after the closing boundary are not counted.
func (s *State) Length() uint64 { return s.length }

// IsEmpty reports whether nothing meaningful was consumed.
func (s *State) IsEmpty() bool { return s.length == 0 }

// EOF reports whether the scanner reached the end of the stream.
func (s *State) EOF() bool { return s.eof }

// Total returns the number of parts discovered so far.
func (s *State) Total() int { return s.total }

// Limits returns the scanner's limits.
func (s *State) Limits() Limits { return s.limits }

// index assigns the next sequential part index.
func (s *State) index() int {
	i := s.total
	s.total++
	return i
}

// split hands out the first n buffered bytes. The returned slice is
// capped, so appends on it cannot touch the remaining buffer.
func (s *State) split(n int) []byte {
	b := s.buffer[:n:n]
	s.buffer = s.buffer[n:]
	return b
}

func (s *State) advance(n int) {
	s.buffer = s.buffer[n:]
}

func (s *State) wakeUp() {
	select {
	case s.wake <- struct{}{}:
	default:
	}
}

// decode classifies the buffered bytes and returns the next ready
// range: a header block when leaving phaseHeader, body data otherwise.
// A nil return means the scanner needs more input, or moved to
// phaseNext (part body done) or phaseEOF (stream done).
func (s *State) decode() []byte {
	if s.phase.kind == phaseDelimiting {
		if n := bytes.Index(s.buffer, s.delimiter); n >= 0 {
			s.phase = phase{kind: phaseHeading, offset: n}
		} else {
			// Empty stream: nothing besides the seeded placeholder.
			if s.eof && bytes.Equal(s.buffer, crlf) {
				s.advance(len(crlf))
				s.phase = phase{kind: phaseEOF}
				return nil
			}

			// Degenerate zero-length body: the delimiter shows up with
			// its leading CRLF already consumed. Stop the part stream.
			if bytes.Contains(s.buffer, s.delimiter[len(crlf):]) {
				s.phase = phase{kind: phaseNext}
				s.advance(len(s.delimiter) - len(crlf))
				return nil
			}

			// Inside a part body: flush a buffer-sized chunk, keeping a
			// delimiter-sized tail so a boundary split across reads can
			// still be assembled.
			if s.phase.inBody && s.limits.BufferSize+len(s.delimiter) < len(s.buffer) {
				return s.split(s.limits.BufferSize)
			}
		}
	}

	if s.phase.kind == phaseHeading {
		switch {
		case s.total == 0:
			// Anything before the first boundary is preamble; drop it
			// along with the delimiter itself.
			s.advance(s.phase.offset + len(s.delimiter))
			s.phase = phase{kind: phaseHeaded}
		case s.phase.offset == 0:
			// The previous part's body is fully handed out.
			s.phase = phase{kind: phaseNext}
			s.advance(len(s.delimiter))
			return nil
		default:
			// Trailing body data of the previous part.
			n := s.phase.offset
			s.phase.offset = 0
			return s.split(n)
		}
	}

	if s.phase.kind == phaseNext {
		s.phase = phase{kind: phaseHeaded}
	}

	if s.phase.kind == phaseHeaded && len(s.buffer) > 1 {
		switch {
		case bytes.Equal(s.buffer[:2], crlf):
			s.advance(2)
			s.phase = phase{kind: phaseHeader}
		case bytes.Equal(s.buffer[:2], dashes):
			s.advance(2)
			s.phase = phase{kind: phaseEOF}
			return nil
		default:
			// Boundary lines not ending in CRLF (bare LF included) are
			// not parsed. Count the boundary back out and stop.
			s.length -= uint64(len(s.delimiter) - len(crlf))
			s.phase = phase{kind: phaseEOF}
			return nil
		}
	}

	if s.phase.kind == phaseHeader {
		if n := bytes.Index(s.buffer, crlfcrlf); n >= 0 {
			s.phase = phase{kind: phaseDelimiting, inBody: true}
			return s.split(n + len(crlfcrlf))
		}
	}

	return nil
}

// next drives the scanner one step. The returned range is a header
// block or body data depending on the phase that produced it; a nil
// range with a nil error means the current stream — the part body, or
// the whole session — is finished.
func (s *State) next(ctx context.Context) ([]byte, error) {
	for {
		if s.readable {
			if data := s.decode(); data != nil {
				return data, nil
			}

			switch s.phase.kind {
			case phaseNext:
				return nil, nil
			case phaseEOF:
				// Whatever is left is trailing garbage; take it back
				// out of the running length.
				if n := uint64(len(s.buffer)); n > s.length {
					s.length = 0
				} else {
					s.length -= n
				}
				s.buffer = nil
				s.eof = true
				return nil, nil
			}

			s.readable = false
		}

		if s.eof {
			// Input ran out and the buffered tail cannot complete a
			// boundary: the stream was cut off mid-part.
			s.phase = phase{kind: phaseEOF}
			s.readable = true
			continue
		}

		chunk, err := s.src.Next(ctx)
		if err != nil && !errors.Is(err, io.EOF) {
			return nil, err
		}

		if max, over := s.limits.exceedsStreamSize(s.length + uint64(len(chunk))); over {
			return nil, limitError(ErrPayloadTooLarge, max)
		}

		s.buffer = append(s.buffer, chunk...)
		s.length += uint64(len(chunk))

		if len(chunk) == 0 || errors.Is(err, io.EOF) {
			s.eof = true
		}
		s.readable = true
	}
}
