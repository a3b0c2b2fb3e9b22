package bar

import "fmt"

// ErrorKind classifies a [BARError] into one of the four failure
// categories used throughout the archive codec.
type ErrorKind int

const (
	// ErrInvalidFileFormat marks magic/version/size/book-number
	// mismatches and any other structural corruption of the archive.
	ErrInvalidFileFormat ErrorKind = iota
	// ErrCompression marks a decompression failure tagged with the
	// algorithm that produced it.
	ErrCompression
	// ErrReference marks a verse/book lookup that ran past the end of
	// real data (as opposed to a well-formed "absent" result).
	ErrReference
	// ErrIO marks an underlying stream failure that is not a
	// recognised end-of-archive condition.
	ErrIO
)

func (k ErrorKind) String() string {
	switch k {
	case ErrInvalidFileFormat:
		return "invalid file format"
	case ErrCompression:
		return "compression error"
	case ErrReference:
		return "reference error"
	case ErrIO:
		return "io error"
	default:
		return "unknown error"
	}
}

// BARError is the single error type the codec returns to callers. It
// carries an [ErrorKind] so callers can branch on failure category
// without parsing message text.
type BARError struct {
	Kind ErrorKind
	Msg  string
	Err  error // underlying cause, if any
}

func (e *BARError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("bar: %s: %s: %v", e.Kind, e.Msg, e.Err)
	}
	return fmt.Sprintf("bar: %s: %s", e.Kind, e.Msg)
}

func (e *BARError) Unwrap() error {
	return e.Err
}

func newFormatError(format string, args ...any) *BARError {
	return &BARError{Kind: ErrInvalidFileFormat, Msg: fmt.Sprintf(format, args...)}
}

func newCompressionError(algorithm string, format string, args ...any) *BARError {
	return &BARError{Kind: ErrCompression, Msg: fmt.Sprintf("%s: %s", algorithm, fmt.Sprintf(format, args...))}
}

func newReferenceError(format string, args ...any) *BARError {
	return &BARError{Kind: ErrReference, Msg: fmt.Sprintf(format, args...)}
}

func newIOError(msg string, err error) *BARError {
	return &BARError{Kind: ErrIO, Msg: msg, Err: err}
}
