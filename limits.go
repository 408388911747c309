package formdata

// MinBufferSize is the smallest allowed internal buffer. With a smaller
// one a delimiter split across reads could never be assembled.
const MinBufferSize = 8 * 1024

// Limits is a set of ceilings for incoming data. A zero value means the
// corresponding limit is off, except BufferSize, which is raised to
// MinBufferSize when left unset.
type Limits struct {
	// FieldNameSize caps the field name length, in bytes.
	FieldNameSize int
	// FieldSize caps the value size of a single non-file field.
	FieldSize uint64
	// Fields caps the number of non-file fields.
	Fields int
	// FileSize caps the size of a single file.
	FileSize uint64
	// Files caps the number of file fields.
	Files int
	// Parts caps the number of parts (fields + files).
	Parts int
	// StreamSize caps the whole stream.
	StreamSize uint64
	// BufferSize caps the internal read buffer. Body data is flushed to
	// the consumer in chunks of at most this size.
	BufferSize int
}

// DefaultLimits returns prepared Limits, filled with default values.
// Default values may not always be the most optimal ones
func DefaultLimits() Limits {
	return Limits{
		FieldNameSize: 100,
		FieldSize:     100 * 1024,        // 100kb
		FileSize:      10 * 1024 * 1024,  // 10mb
		StreamSize:    200 * 1024 * 1024, // 200mb
		BufferSize:    MinBufferSize,
	}
}

func (l Limits) exceedsStreamSize(n uint64) (uint64, bool) {
	return l.StreamSize, l.StreamSize > 0 && n > l.StreamSize
}

func (l Limits) exceedsFileSize(n uint64) (uint64, bool) {
	return l.FileSize, l.FileSize > 0 && n > l.FileSize
}

func (l Limits) exceedsFieldSize(n uint64) (uint64, bool) {
	return l.FieldSize, l.FieldSize > 0 && n > l.FieldSize
}

func (l Limits) exceedsFieldNameSize(n int) (int, bool) {
	return l.FieldNameSize, l.FieldNameSize > 0 && n > l.FieldNameSize
}

func (l Limits) exceedsParts(n int) (int, bool) {
	return l.Parts, l.Parts > 0 && n > l.Parts
}

func (l Limits) exceedsFields(n int) (int, bool) {
	return l.Fields, l.Fields > 0 && n > l.Fields
}

func (l Limits) exceedsFiles(n int) (int, bool) {
	return l.Files, l.Files > 0 && n > l.Files
}
