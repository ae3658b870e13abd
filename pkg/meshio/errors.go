package meshio

import (
	"fmt"
)

// FormatError reports a byte stream that does not match the grammar of the
// format it was declared as.
type FormatError struct {
	Format Format
	// Line is the 1-based line of the offending token for text formats
	Line int
	// Offset is the byte offset of the offending record for binary formats
	Offset int64
	Msg    string
	Err    error
}

func (e *FormatError) Error() string {
	var where string
	switch {
	case e.Line > 0:
		where = fmt.Sprintf(" at line %d", e.Line)
	case e.Offset > 0:
		where = fmt.Sprintf(" at offset %d", e.Offset)
	}
	if e.Err != nil {
		return fmt.Sprintf("invalid %s%s: %s: %v", e.Format, where, e.Msg, e.Err)
	}
	return fmt.Sprintf("invalid %s%s: %s", e.Format, where, e.Msg)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}

// TruncatedInputError reports that declared element counts need more bytes
// (or lines) than the input holds. It usually means a partial upload.
type TruncatedInputError struct {
	Format Format
	Want   int64
	Have   int64
	Msg    string
}

func (e *TruncatedInputError) Error() string {
	if e.Want > 0 {
		return fmt.Sprintf("truncated %s: %s (need %d, have %d)", e.Format, e.Msg, e.Want, e.Have)
	}
	return fmt.Sprintf("truncated %s: %s", e.Format, e.Msg)
}

// UnsupportedFormatError reports a format tag no parser is registered for
type UnsupportedFormatError struct {
	Tag string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format %q", e.Tag)
}

// LineError builds a FormatError for a text format
func LineError(format Format, line int, err error, msg string, args ...any) *FormatError {
	return &FormatError{Format: format, Line: line, Msg: fmt.Sprintf(msg, args...), Err: err}
}

// OffsetError builds a FormatError for a binary format
func OffsetError(format Format, offset int64, msg string, args ...any) *FormatError {
	return &FormatError{Format: format, Offset: offset, Msg: fmt.Sprintf(msg, args...)}
}
