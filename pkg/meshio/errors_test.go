package meshio

import (
	"errors"
	"fmt"
	"strconv"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatErrorMessages(t *testing.T) {
	_, numErr := strconv.ParseFloat("x", 64)

	tests := []struct {
		name string
		err  error
		want string
	}{
		{"line", LineError(FormatOBJ, 3, nil, "face index %d out of range", 9), "invalid obj at line 3: face index 9 out of range"},
		{"offset", OffsetError(FormatSTL, 84, "non-finite vertex"), "invalid stl at offset 84: non-finite vertex"},
		{"wrapped", LineError(FormatPLY, 7, numErr, "bad number"), "invalid ply at line 7: bad number: " + numErr.Error()},
		{"truncated", &TruncatedInputError{Format: FormatSTL, Want: 84, Have: 0, Msg: "missing header"}, "truncated stl: missing header (need 84, have 0)"},
		{"unsupported", &UnsupportedFormatError{Tag: "step"}, `unsupported format "step"`},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.err.Error())
		})
	}
}

func TestFormatErrorUnwrap(t *testing.T) {
	_, numErr := strconv.ParseFloat("x", 64)
	err := fmt.Errorf("upload: %w", LineError(FormatOBJ, 1, numErr, "bad vertex"))

	var fe *FormatError
	require.True(t, errors.As(err, &fe))
	assert.Equal(t, 1, fe.Line)
	assert.ErrorIs(t, err, strconv.ErrSyntax)
}

func TestParseFormat(t *testing.T) {
	assert.Equal(t, FormatSTL, ParseFormat("STL"))
	assert.Equal(t, FormatOBJ, ParseFormat(".obj"))
	assert.Equal(t, FormatPLY, ParseFormat(" ply "))
	assert.Equal(t, Format("step"), ParseFormat("STEP"))
}

func TestFormatFromFilename(t *testing.T) {
	assert.Equal(t, FormatSTL, FormatFromFilename("/tmp/part.v2.STL"))
	assert.Equal(t, FormatPLY, FormatFromFilename("scan.ply"))
	assert.Equal(t, Format(""), FormatFromFilename("README"))
}
