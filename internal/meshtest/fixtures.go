// Package meshtest provides reference meshes for tests.
package meshtest

import (
	"math"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
)

func v(x, y, z float64) geometry.Vector3 {
	return geometry.NewVector3(x, y, z)
}

// CubeTriangles returns the 12 outward-wound facets of the unit cube [0,1]^3
func CubeTriangles() []geometry.Triangle {
	return []geometry.Triangle{
		// z = 0
		geometry.NewTriangle(v(0, 0, 0), v(0, 1, 0), v(1, 1, 0)),
		geometry.NewTriangle(v(0, 0, 0), v(1, 1, 0), v(1, 0, 0)),
		// z = 1
		geometry.NewTriangle(v(0, 0, 1), v(1, 0, 1), v(1, 1, 1)),
		geometry.NewTriangle(v(0, 0, 1), v(1, 1, 1), v(0, 1, 1)),
		// y = 0
		geometry.NewTriangle(v(0, 0, 0), v(1, 0, 0), v(1, 0, 1)),
		geometry.NewTriangle(v(0, 0, 0), v(1, 0, 1), v(0, 0, 1)),
		// y = 1
		geometry.NewTriangle(v(0, 1, 0), v(0, 1, 1), v(1, 1, 1)),
		geometry.NewTriangle(v(0, 1, 0), v(1, 1, 1), v(1, 1, 0)),
		// x = 0
		geometry.NewTriangle(v(0, 0, 0), v(0, 0, 1), v(0, 1, 1)),
		geometry.NewTriangle(v(0, 0, 0), v(0, 1, 1), v(0, 1, 0)),
		// x = 1
		geometry.NewTriangle(v(1, 0, 0), v(1, 1, 0), v(1, 1, 1)),
		geometry.NewTriangle(v(1, 0, 0), v(1, 1, 1), v(1, 0, 1)),
	}
}

// Cube returns the unit cube as a mesh
func Cube() *mesh.Mesh {
	return mesh.New(CubeTriangles())
}

// Tetrahedron returns an outward-wound regular tetrahedron with the given
// edge length, centered on the origin.
func Tetrahedron(edge float64) *mesh.Mesh {
	s := edge / (2 * math.Sqrt2)
	a := v(s, s, s)
	b := v(s, -s, -s)
	c := v(-s, s, -s)
	d := v(-s, -s, s)
	return mesh.New([]geometry.Triangle{
		geometry.NewTriangle(a, b, c),
		geometry.NewTriangle(a, d, b),
		geometry.NewTriangle(a, c, d),
		geometry.NewTriangle(b, d, c),
	})
}

// TetrahedronVolume is the closed-form volume of a regular tetrahedron
func TetrahedronVolume(edge float64) float64 {
	return edge * edge * edge / (6 * math.Sqrt2)
}

// SingleTriangle returns an open surface made of one facet
func SingleTriangle() *mesh.Mesh {
	return mesh.New([]geometry.Triangle{
		geometry.NewTriangle(v(1, 0, 0), v(0, 1, 0), v(0, 0, 1)),
	})
}

// CubeOBJ is the unit cube as OBJ text with quad faces
const CubeOBJ = `# unit cube
o cube
v 0 0 0
v 1 0 0
v 1 1 0
v 0 1 0
v 0 0 1
v 1 0 1
v 1 1 1
v 0 1 1
vn 0 0 -1
f 1 4 3 2
f 5 6 7 8
f 1 2 6 5
f 4 8 7 3
f 1 5 8 4
f 2 3 7 6
`

// CubePLY is the unit cube as ASCII PLY with quad faces and a color property
const CubePLY = `ply
format ascii 1.0
comment unit cube
element vertex 8
property float x
property float y
property float z
property uchar red
element face 6
property list uchar int vertex_indices
end_header
0 0 0 255
1 0 0 255
1 1 0 255
0 1 0 255
0 0 1 255
1 0 1 255
1 1 1 255
0 1 1 255
4 0 3 2 1
4 4 5 6 7
4 0 1 5 4
4 3 7 6 2
4 0 4 7 3
4 1 2 6 5
`
