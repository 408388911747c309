package formdata

import (
	"context"
	"io"
)

// Source supplies the raw multipart body as a sequence of byte chunks,
// pulled on demand. The stream ends with io.EOF or a zero-length chunk;
// any other error is terminal and propagates to the consumer verbatim.
// Chunks are copied by the scanner on ingest, so implementations may
// reuse the backing array between calls.
type Source interface {
	Next(ctx context.Context) ([]byte, error)
}

type readerSource struct {
	r   io.Reader
	buf []byte
}

// NewReaderSource adapts a blocking reader to a Source, reading up to
// size bytes at a time. A size below MinBufferSize is raised to it.
func NewReaderSource(r io.Reader, size int) Source {
	if size < MinBufferSize {
		size = MinBufferSize
	}
	return &readerSource{r: r, buf: make([]byte, size)}
}

func (s *readerSource) Next(ctx context.Context) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	n, err := s.r.Read(s.buf)
	if n > 0 {
		return s.buf[:n], nil
	}
	if err == nil {
		err = io.EOF
	}
	return nil, err
}
