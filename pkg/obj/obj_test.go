package obj

import (
	"errors"
	"testing"

	"github.com/philipparndt/gomesh/internal/meshtest"
	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseCube(t *testing.T) {
	m, err := Parse([]byte(meshtest.CubeOBJ))
	require.NoError(t, err)

	assert.Equal(t, meshtest.CubeTriangles(), m.Triangles())
}

func TestParseEmpty(t *testing.T) {
	m, err := Parse(nil)
	require.NoError(t, err)
	assert.True(t, m.Empty())

	m, err = Parse([]byte("# nothing here\n\nmtllib scene.mtl\n"))
	require.NoError(t, err)
	assert.True(t, m.Empty())
}

func TestParseFanTriangulation(t *testing.T) {
	in := `v 0 0 0
v 1 0 0
v 2 1 0
v 1 2 0
v 0 1 0
f 1 2 3 4 5
`
	m, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Equal(t, 3, m.Len())

	v := func(x, y float64) geometry.Vector3 { return geometry.NewVector3(x, y, 0) }
	assert.Equal(t, geometry.NewTriangle(v(0, 0), v(1, 0), v(2, 1)), m.Triangle(0))
	assert.Equal(t, geometry.NewTriangle(v(0, 0), v(2, 1), v(1, 2)), m.Triangle(1))
	assert.Equal(t, geometry.NewTriangle(v(0, 0), v(1, 2), v(0, 1)), m.Triangle(2))
}

func TestParseFaceTokenForms(t *testing.T) {
	in := `v 0 0 0
v 1 0 0
v 0 1 0
vt 0 0
vn 0 0 1
f 1/1 2/1/1 3//1
`
	m, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Equal(t, 1, m.Len())
	assert.Equal(t, geometry.NewVector3(0, 1, 0), m.Triangle(0).V2)
}

func TestParseNegativeIndices(t *testing.T) {
	in := `v 0 0 0
v 1 0 0
v 0 1 0
f -3 -2 -1
v 5 5 5
f -4 -3 -1
`
	m, err := Parse([]byte(in))
	require.NoError(t, err)
	require.Equal(t, 2, m.Len())

	assert.Equal(t, geometry.NewVector3(0, 0, 0), m.Triangle(0).V0)
	assert.Equal(t, geometry.NewVector3(0, 1, 0), m.Triangle(0).V2)
	// Relative indices resolve against the vertex count at the face line
	assert.Equal(t, geometry.NewVector3(0, 0, 0), m.Triangle(1).V0)
	assert.Equal(t, geometry.NewVector3(5, 5, 5), m.Triangle(1).V2)
}

func TestParseVertexWithWeight(t *testing.T) {
	m, err := Parse([]byte("v 0 0 0 1\nv 1 0 0 1\nv 0 1 0 1\nf 1 2 3\n"))
	require.NoError(t, err)
	assert.Equal(t, 1, m.Len())
}

func TestParseErrors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		line int
	}{
		{"index zero", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 0 1 2\n", 4},
		{"index beyond count", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf 1 2 4\n", 4},
		{"forward reference", "v 0 0 0\nv 1 0 0\nf 1 2 3\nv 0 1 0\n", 3},
		{"negative beyond count", "v 0 0 0\nv 1 0 0\nv 0 1 0\nf -1 -2 -4\n", 4},
		{"too few face indices", "v 0 0 0\nv 1 0 0\nf 1 2\n", 3},
		{"short vertex", "v 0 0\n", 1},
		{"bad coordinate", "v 0 x 0\n", 1},
		{"bad index", "v 0 0 0\nf a b c\n", 2},
		{"nan coordinate", "v 0 NaN 0\n", 1},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m, err := Parse([]byte(tc.in))
			assert.Nil(t, m)

			var fe *meshio.FormatError
			require.True(t, errors.As(err, &fe), "got %v", err)
			assert.Equal(t, meshio.FormatOBJ, fe.Format)
			assert.Equal(t, tc.line, fe.Line)
		})
	}
}
