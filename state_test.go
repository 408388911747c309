package formdata

import (
	"context"
	"io"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestPreambleIsDiscarded(t *testing.T) {
	raw := body(
		"This is the preamble. It should be ignored.",
		"--AaB03x",
		`Content-Disposition: form-data; name="person"`,
		"",
		"anonymous",
		"--AaB03x--",
		"",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	field, err := form.Next(ctx)
	require.NoError(t, err)

	value, err := field.Bytes(ctx)
	require.NoError(t, err)
	require.Equal(t, "anonymous", string(value))
}

func TestTrailingGarbageNotCounted(t *testing.T) {
	garbage := "garbage after the closing boundary"
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="person"`,
		"",
		"anonymous",
		"--AaB03x--",
	) + garbage
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	field, err := form.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, field.Ignore(ctx))

	_, err = form.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.EqualValues(t, len(raw)-len(garbage), form.State().Length())
}

func TestBareLFIsEndOfStream(t *testing.T) {
	raw := "--AaB03x\n" +
		"Content-Disposition: form-data; name=\"person\"\n" +
		"\n" +
		"anonymous\n" +
		"--AaB03x--\n"
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	_, err := form.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.True(t, form.State().EOF())
	require.Equal(t, 0, form.State().Total())
}

func TestTruncatedStream(t *testing.T) {
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="person"`,
		"",
		"partial",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	field, err := form.Next(ctx)
	require.NoError(t, err)

	// The tail cannot be delimited anymore, so it is dropped and the
	// session ends instead of waiting forever.
	value, err := field.Bytes(ctx)
	require.NoError(t, err)
	require.Empty(t, value)

	_, err = form.Next(ctx)
	require.ErrorIs(t, err, io.EOF)
	require.True(t, form.State().EOF())
}

func TestLargeBodyIsStreamed(t *testing.T) {
	content := strings.Repeat("a", 20000)
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="blob"; filename="blob.bin"`,
		"",
		content,
		"--AaB03x--",
		"",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	field, err := form.Next(ctx)
	require.NoError(t, err)

	var total, chunks int
	for {
		buf, err := field.Next(ctx)
		if err == io.EOF {
			break
		}
		require.NoError(t, err)
		// No chunk may carry the whole body: it must be flushed in
		// bounded pieces as the buffer fills.
		require.Less(t, len(buf), len(content))
		total += len(buf)
		chunks++
	}

	require.Equal(t, len(content), total)
	require.GreaterOrEqual(t, chunks, 2)
	require.EqualValues(t, len(content), field.Length)
}

func TestDrainedFieldIsIdempotent(t *testing.T) {
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="person"`,
		"",
		"anonymous",
		"--AaB03x--",
		"",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")

	field, err := form.Next(ctx)
	require.NoError(t, err)
	require.NoError(t, field.Ignore(ctx))
	require.True(t, field.Consumed())
	length := field.Length

	for i := 0; i < 3; i++ {
		_, err = field.Next(ctx)
		require.ErrorIs(t, err, io.EOF)
	}
	require.Equal(t, length, field.Length)
}

func TestConcurrentAccessFailsFast(t *testing.T) {
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="person"`,
		"",
		"anonymous",
		"--AaB03x--",
		"",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")
	state := form.State()

	state.mu.Lock()
	_, err := form.Next(ctx)
	require.ErrorIs(t, err, ErrLocked)
	state.mu.Unlock()

	field, err := form.Next(ctx)
	require.NoError(t, err)

	state.mu.Lock()
	_, err = field.Next(ctx)
	require.ErrorIs(t, err, ErrLocked)
	state.mu.Unlock()
}

func TestNextWaitsForConcurrentField(t *testing.T) {
	raw := body(
		"--AaB03x",
		`Content-Disposition: form-data; name="first"`,
		"",
		"first value",
		"--AaB03x",
		`Content-Disposition: form-data; name="second"`,
		"",
		"second value",
		"--AaB03x--",
		"",
	)
	ctx := context.Background()
	form := NewReader(strings.NewReader(raw), "AaB03x")
	state := form.State()

	first, err := form.Next(ctx)
	require.NoError(t, err)

	// Hold the scanner as if the first field were mid-read elsewhere.
	state.mu.Lock()

	type result struct {
		field *Field
		err   error
	}
	done := make(chan result, 1)
	go func() {
		f, err := form.Next(ctx)
		done <- result{f, err}
	}()

	time.Sleep(50 * time.Millisecond)
	state.mu.Unlock()
	for !first.Consumed() {
		_ = first.Ignore(ctx)
	}

	res := <-done
	require.NoError(t, res.err)
	require.Equal(t, "second", res.field.Name)
}

func TestBoundaryAccessor(t *testing.T) {
	form := NewReader(strings.NewReader(""), "AaB03x")
	require.Equal(t, "AaB03x", form.State().Boundary())
}
