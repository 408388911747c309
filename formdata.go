package formdata

import (
	"context"
	"errors"
	"fmt"
	"io"
)

// FormData decodes a multipart/form-data stream into a sequence of
// fields, in stream order. A part's body must be drained before the
// next part can be discovered, because both pull from the same
// forward-only scanner; Next skips whatever the caller left unread.
type FormData struct {
	state *State
	cur   *Field
}

// New creates a FormData over src with DefaultLimits.
func New(src Source, boundary string) *FormData {
	return WithLimits(src, boundary, DefaultLimits())
}

// WithLimits creates a FormData over src with the given limits.
func WithLimits(src Source, boundary string, limits Limits) *FormData {
	return &FormData{state: NewState(src, boundary, limits)}
}

// NewReader creates a FormData over a blocking reader with
// DefaultLimits.
func NewReader(r io.Reader, boundary string) *FormData {
	return New(NewReaderSource(r, DefaultLimits().BufferSize), boundary)
}

// State exposes the shared scanner, e.g. for inspecting the consumed
// length once decoding is done.
func (f *FormData) State() *State { return f.state }

// SetMaxBufSize raises the internal buffer size. It must be called
// before consumption starts and cannot go below MinBufferSize.
func (f *FormData) SetMaxBufSize(max int) error {
	if max < MinBufferSize {
		return fmt.Errorf("%w of %d", ErrSmallBuffer, MinBufferSize)
	}

	s := f.state
	if !s.mu.TryLock() {
		return ErrLocked
	}
	s.limits.BufferSize = max
	s.mu.Unlock()
	return nil
}

// Next returns the next field, or io.EOF after the final one. Any
// undrained body of the previously returned field is skipped first; if
// another goroutine is still reading it, Next waits for that field to
// finish. Errors other than io.EOF are terminal for the whole session:
// the scan position is forward-only and cannot be rewound for a retry.
func (f *FormData) Next(ctx context.Context) (*Field, error) {
	for f.cur != nil && !f.cur.Consumed() {
		err := f.cur.Ignore(ctx)
		if err == nil {
			break
		}
		if !errors.Is(err, ErrLocked) {
			return nil, err
		}

		// The field is being consumed elsewhere; wait for it.
		select {
		case <-f.state.wake:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	f.cur = nil

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
		return nil, io.EOF
	}

	if max, over := s.limits.exceedsParts(s.total + 1); over {
		return nil, limitError(ErrPartsTooMany, uint64(max))
	}

	headers, err := parsePartHeaders(buf)
	if err != nil {
		return nil, err
	}

	name, filename, hasFilename, err := parseContentDisposition(headers.Get("Content-Disposition"))
	if err != nil {
		return nil, err
	}
	headers.Del("Content-Disposition")

	if max, over := s.limits.exceedsFieldNameSize(len(name)); over {
		return nil, limitError(ErrFieldNameTooLong, uint64(max))
	}

	if hasFilename {
		if max, over := s.limits.exceedsFiles(s.files + 1); over {
			return nil, limitError(ErrFilesTooMany, uint64(max))
		}
		s.files++
	} else {
		if max, over := s.limits.exceedsFields(s.fields + 1); over {
			return nil, limitError(ErrFieldsTooMany, uint64(max))
		}
		s.fields++
	}

	field := &Field{
		Name:        name,
		Filename:    filename,
		ContentType: parseContentType(headers.Get("Content-Type")),
		Index:       s.index(),
		hasFilename: hasFilename,
		state:       s,
	}
	headers.Del("Content-Type")
	if len(headers) > 0 {
		field.Headers = headers
	}

	f.cur = field
	return field, nil
}
