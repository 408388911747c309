package formdata

import (
	"context"
	"errors"
	"io"
	"net/textproto"
	"os"
	"sync/atomic"

	"github.com/indigo-web/utils/uf"
)

// Field is the decoder's handle to one part: its metadata plus the
// chunked body stream. Fields arrive in stream order and share the
// session's scanner, so only one may be consumed at a time.
type Field struct {
	// Name is the form-data name parameter. Always present.
	Name string
	// Filename is the filename parameter; meaningful when IsFile.
	Filename string
	// ContentType is the canonical media type of the part, or "".
	ContentType string
	// Headers holds part headers beyond Content-Disposition and
	// Content-Type. Nil when there are none.
	Headers textproto.MIMEHeader
	// Length counts the body bytes consumed so far.
	Length uint64
	// Index is the part's position in the stream, starting at 0.
	Index int

	hasFilename bool
	consumed    atomic.Bool
	state       *State
	rest        []byte
}

// IsFile reports whether the part carried a filename parameter, which
// is what selects the file-size limit over the field-size one.
func (f *Field) IsFile() bool { return f.hasFilename }

// Consumed reports whether the body stream has been fully drained.
func (f *Field) Consumed() bool { return f.consumed.Load() }

// Next returns the next body chunk, or io.EOF once the body is
// exhausted. Exhaustion is idempotent: further calls keep returning
// io.EOF without touching the session. The chunk stays valid across
// calls; it is not reused by the scanner.
func (f *Field) Next(ctx context.Context) ([]byte, error) {
	if f.Consumed() {
		return nil, io.EOF
	}

	s := f.state
	if !s.mu.TryLock() {
		return nil, ErrLocked
	}
	defer s.mu.Unlock()

	buf, err := s.next(ctx)
	if err != nil {
		return nil, err
	}
	if buf == nil {
		f.consumed.Store(true)
		s.wakeUp()
		return nil, io.EOF
	}

	n := f.Length + uint64(len(buf))
	if f.hasFilename {
		if max, over := s.limits.exceedsFileSize(n); over {
			return nil, limitError(ErrFileTooLarge, max)
		}
	} else if max, over := s.limits.exceedsFieldSize(n); over {
		return nil, limitError(ErrFieldTooLarge, max)
	}

	f.Length = n
	return buf, nil
}

// Bytes drains the body into a single buffer.
func (f *Field) Bytes(ctx context.Context) ([]byte, error) {
	var out []byte
	for {
		buf, err := f.Next(ctx)
		if errors.Is(err, io.EOF) {
			return out, nil
		}
		if err != nil {
			return nil, err
		}
		out = append(out, buf...)
	}
}

// Value drains the body and returns it as a string.
func (f *Field) Value(ctx context.Context) (string, error) {
	b, err := f.Bytes(ctx)
	if err != nil {
		return "", err
	}
	return uf.B2S(b), nil
}

// CopyTo streams the body into w chunk by chunk, flushing it at the end
// when the writer supports Flush. It returns the number of bytes
// written.
func (f *Field) CopyTo(ctx context.Context, w io.Writer) (int64, error) {
	var n int64
	for {
		buf, err := f.Next(ctx)
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return n, err
		}
		if _, err := w.Write(buf); err != nil {
			return n, err
		}
		n += int64(len(buf))
	}

	if fl, ok := w.(interface{ Flush() error }); ok {
		if err := fl.Flush(); err != nil {
			return n, err
		}
	}
	return n, nil
}

// CopyToFile streams the body into an open file.
func (f *Field) CopyToFile(ctx context.Context, file *os.File) (int64, error) {
	return f.CopyTo(ctx, file)
}

// Ignore discards the rest of the body without copying it.
func (f *Field) Ignore(ctx context.Context) error {
	for {
		if _, err := f.Next(ctx); err != nil {
			if errors.Is(err, io.EOF) {
				return nil
			}
			return err
		}
	}
}

// Read implements io.Reader over the body stream. Chunks larger than p
// are carried over to the following call.
func (f *Field) Read(p []byte) (int, error) {
	if len(f.rest) == 0 {
		buf, err := f.Next(context.Background())
		if err != nil {
			return 0, err
		}
		f.rest = buf
	}

	n := copy(p, f.rest)
	f.rest = f.rest[n:]
	return n, nil
}
