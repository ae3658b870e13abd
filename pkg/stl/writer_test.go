package stl

import (
	"encoding/binary"
	"errors"
	"math"
	"strings"
	"testing"

	"github.com/philipparndt/gomesh/internal/meshtest"
	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteBinaryLayout(t *testing.T) {
	m := meshtest.Cube()
	data := Marshal(m, Binary)

	require.Len(t, data, 84+12*50)
	assert.False(t, strings.HasPrefix(string(data), "solid"))
	assert.Equal(t, uint32(12), binary.LittleEndian.Uint32(data[80:84]))

	// First facet lies in z=0 and faces down
	normalZ := math.Float32frombits(binary.LittleEndian.Uint32(data[84+8:]))
	assert.Equal(t, float32(-1), normalZ)
	// Attribute bytes are zero
	assert.Equal(t, uint16(0), binary.LittleEndian.Uint16(data[84+48:]))
}

func TestWriteBinaryDegenerateNormal(t *testing.T) {
	p := geometry.NewVector3(1, 2, 3)
	m := mesh.New([]geometry.Triangle{geometry.NewTriangle(p, p, p)})

	data := Marshal(m, Binary)

	for i := 0; i < 3; i++ {
		assert.Zero(t, binary.LittleEndian.Uint32(data[84+i*4:]), "normal component %d", i)
	}
}

func TestBinaryRoundTrip(t *testing.T) {
	original := encodeBinary("", [][4][3]float32{
		{{0, 0, 0}, {0.1, 0.2, 0.3}, {1.5, -2.25, 3}, {-0.001, 1e5, 7}},
		{{1, 0, 0}, {3, 3, 3}, {4, 3, 3}, {3, 4, 3}},
	})

	first, err := ParseBinary(original)
	require.NoError(t, err)

	second, err := ParseBinary(Marshal(first, Binary))
	require.NoError(t, err)

	require.Equal(t, first.Len(), second.Len())
	for i := 0; i < first.Len(); i++ {
		assert.Equal(t, first.Triangle(i), second.Triangle(i))
	}
}

func TestASCIIRoundTrip(t *testing.T) {
	m := meshtest.Tetrahedron(3)

	text := Marshal(m, ASCII)
	assert.True(t, strings.HasPrefix(string(text), "solid gomesh\n"))
	assert.True(t, strings.HasSuffix(string(text), "endsolid gomesh\n"))

	parsed, err := ParseASCII(text)
	require.NoError(t, err)
	require.Equal(t, m.Len(), parsed.Len())
	for i := 0; i < m.Len(); i++ {
		want, got := m.Triangle(i).Vertices(), parsed.Triangle(i).Vertices()
		for j := range want {
			assert.InDelta(t, want[j].X, got[j].X, 1e-5)
			assert.InDelta(t, want[j].Y, got[j].Y, 1e-5)
			assert.InDelta(t, want[j].Z, got[j].Z, 1e-5)
		}
	}
}

func TestWriteEmptyMesh(t *testing.T) {
	data := Marshal(mesh.New(nil), Binary)
	assert.Len(t, data, 84)

	parsed, err := Parse(data)
	require.NoError(t, err)
	assert.True(t, parsed.Empty())

	parsed, err = Parse(Marshal(mesh.New(nil), ASCII))
	require.NoError(t, err)
	assert.True(t, parsed.Empty())
}

type failingWriter struct{}

func (failingWriter) Write([]byte) (int, error) {
	return 0, errors.New("disk full")
}

func TestWriteReportsSinkErrors(t *testing.T) {
	assert.Error(t, Write(failingWriter{}, meshtest.Cube(), Binary))
	assert.Error(t, Write(failingWriter{}, meshtest.Cube(), ASCII))
}
