package geometry

import "math"

// Triangle is an oriented facet. The winding V0 -> V1 -> V2 defines the
// outward normal by the right-hand rule.
type Triangle struct {
	V0, V1, V2 Vector3
}

// NewTriangle creates a new triangle
func NewTriangle(v0, v1, v2 Vector3) Triangle {
	return Triangle{V0: v0, V1: v1, V2: v2}
}

// Vertices returns the three corners in winding order
func (t Triangle) Vertices() [3]Vector3 {
	return [3]Vector3{t.V0, t.V1, t.V2}
}

// Normal computes the unit facet normal from the winding.
// Degenerate triangles yield the zero vector.
func (t Triangle) Normal() Vector3 {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	return edge1.Cross(edge2).Normalize()
}

// Area returns the surface area of the triangle
func (t Triangle) Area() float64 {
	edge1 := t.V1.Sub(t.V0)
	edge2 := t.V2.Sub(t.V0)
	return edge1.Cross(edge2).Length() / 2.0
}

// SignedVolume returns the signed volume of the tetrahedron spanned by the
// origin and the triangle: dot(v0, cross(v1, v2)) / 6.
func (t Triangle) SignedVolume() float64 {
	return t.V0.Dot(t.V1.Cross(t.V2)) / 6.0
}

// IsDegenerate reports whether the triangle has zero area
func (t Triangle) IsDegenerate() bool {
	return t.V1.Sub(t.V0).Cross(t.V2.Sub(t.V0)) == Vector3{}
}

// EdgeLengths returns the lengths of all three edges
func (t Triangle) EdgeLengths() [3]float64 {
	return [3]float64{
		t.V0.Distance(t.V1),
		t.V1.Distance(t.V2),
		t.V2.Distance(t.V0),
	}
}

// Perimeter returns the total length of all edges
func (t Triangle) Perimeter() float64 {
	lengths := t.EdgeLengths()
	return lengths[0] + lengths[1] + lengths[2]
}

// Center returns the centroid of the triangle
func (t Triangle) Center() Vector3 {
	return Vector3{
		X: (t.V0.X + t.V1.X + t.V2.X) / 3.0,
		Y: (t.V0.Y + t.V1.Y + t.V2.Y) / 3.0,
		Z: (t.V0.Z + t.V1.Z + t.V2.Z) / 3.0,
	}
}

// IsFinite reports whether every coordinate of every vertex is finite
func (t Triangle) IsFinite() bool {
	return t.V0.IsFinite() && t.V1.IsFinite() && t.V2.IsFinite()
}

func isFinite(f float64) bool {
	return !math.IsNaN(f) && !math.IsInf(f, 0)
}
