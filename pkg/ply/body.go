package ply

import (
	"bytes"
	"encoding/binary"
	"math"
	"strings"

	"github.com/philipparndt/gomesh/pkg/meshio"
)

// recordReader yields the scalars of successive element instances
type recordReader interface {
	// reserve checks that count records of at least minSize bytes can still
	// follow and returns a safe preallocation for them
	reserve(count, minSize int) (int, error)
	begin() error
	scalar(t ScalarType) (float64, error)
	end() error
	// location returns the line (text) or byte offset (binary) of the current record
	location() (line int, offset int64)
	// errorf reports a FormatError at the current position
	errorf(err error, msg string, args ...any) error
}

// asciiReader reads one element instance per non-blank line
type asciiReader struct {
	rest   []byte
	line   int
	tokens []string
	next   int
}

func newASCIIReader(body []byte, headerLines int) *asciiReader {
	return &asciiReader{rest: body, line: headerLines}
}

// reserve never fails for text; a record takes at least one token and a
// line break, which bounds the preallocation by the remaining bytes.
func (r *asciiReader) reserve(count, _ int) (int, error) {
	return min(count, len(r.rest)/2+1), nil
}

func (r *asciiReader) begin() error {
	for len(r.rest) > 0 {
		var raw []byte
		if nl := bytes.IndexByte(r.rest, '\n'); nl >= 0 {
			raw, r.rest = r.rest[:nl], r.rest[nl+1:]
		} else {
			raw, r.rest = r.rest, nil
		}
		r.line++
		if tokens := strings.Fields(string(raw)); len(tokens) > 0 {
			r.tokens, r.next = tokens, 0
			return nil
		}
	}
	return &meshio.TruncatedInputError{Format: meshio.FormatPLY, Msg: "body ends before all declared elements"}
}

func (r *asciiReader) scalar(t ScalarType) (float64, error) {
	if r.next >= len(r.tokens) {
		return 0, r.errorf(nil, "line has %d values, header declares more", len(r.tokens))
	}
	tok := r.tokens[r.next]
	r.next++
	v, err := t.parse(tok)
	if err != nil {
		return 0, r.errorf(err, "invalid value %q", tok)
	}
	return v, nil
}

func (r *asciiReader) end() error {
	if r.next != len(r.tokens) {
		return r.errorf(nil, "line has %d values, header declares %d", len(r.tokens), r.next)
	}
	return nil
}

func (r *asciiReader) location() (int, int64) {
	return r.line, 0
}

func (r *asciiReader) errorf(err error, msg string, args ...any) error {
	return meshio.LineError(meshio.FormatPLY, r.line, err, msg, args...)
}

// binaryReader reads packed records in the declared byte order
type binaryReader struct {
	data   []byte
	offset int
	order  binary.ByteOrder
	// start is the offset of the current record
	start int
}

func newBinaryReader(data []byte, headerSize int, order binary.ByteOrder) *binaryReader {
	return &binaryReader{data: data, offset: headerSize, order: order}
}

func (r *binaryReader) reserve(count, minSize int) (int, error) {
	if minSize == 0 {
		return 0, nil
	}
	remaining := len(r.data) - r.offset
	if count <= remaining/minSize {
		return count, nil
	}
	want := int64(math.MaxInt64)
	if int64(count) <= (math.MaxInt64-int64(r.offset))/int64(minSize) {
		want = int64(r.offset) + int64(count)*int64(minSize)
	}
	return 0, &meshio.TruncatedInputError{
		Format: meshio.FormatPLY,
		Want:   want,
		Have:   int64(len(r.data)),
		Msg:    "body is shorter than the declared element count",
	}
}

func (r *binaryReader) begin() error {
	r.start = r.offset
	return nil
}

func (r *binaryReader) scalar(t ScalarType) (float64, error) {
	size := t.Size()
	if r.offset+size > len(r.data) {
		return 0, &meshio.TruncatedInputError{
			Format: meshio.FormatPLY,
			Want:   int64(r.offset + size),
			Have:   int64(len(r.data)),
			Msg:    "body ends before all declared elements",
		}
	}
	v := t.decode(r.data[r.offset:r.offset+size], r.order)
	r.offset += size
	return v, nil
}

func (r *binaryReader) end() error {
	return nil
}

func (r *binaryReader) location() (int, int64) {
	return 0, int64(r.start)
}

func (r *binaryReader) errorf(err error, msg string, args ...any) error {
	fe := meshio.OffsetError(meshio.FormatPLY, int64(r.start), msg, args...)
	fe.Err = err
	return fe
}
