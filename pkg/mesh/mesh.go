// Package mesh holds the unified triangle-soup model every parser produces
// and every writer and analysis consumes.
package mesh

import (
	"iter"
	"slices"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

// Mesh is an ordered, read-only sequence of independent triangles.
// It carries geometry only: no shared vertex buffer, names, normals or
// colors survive from the source format. The zero value is an empty mesh.
type Mesh struct {
	triangles []geometry.Triangle
}

// New creates a mesh from a copy of the given triangles
func New(triangles []geometry.Triangle) *Mesh {
	return &Mesh{triangles: slices.Clone(triangles)}
}

// Len returns the number of triangles in the mesh
func (m *Mesh) Len() int {
	if m == nil {
		return 0
	}
	return len(m.triangles)
}

// Empty reports whether the mesh has no triangles
func (m *Mesh) Empty() bool {
	return m.Len() == 0
}

// Triangle returns the i-th triangle in insertion order
func (m *Mesh) Triangle(i int) geometry.Triangle {
	return m.triangles[i]
}

// All iterates over the triangles in insertion order
func (m *Mesh) All() iter.Seq2[int, geometry.Triangle] {
	return func(yield func(int, geometry.Triangle) bool) {
		if m == nil {
			return
		}
		for i, t := range m.triangles {
			if !yield(i, t) {
				return
			}
		}
	}
}

// Triangles returns a copy of the triangle sequence
func (m *Mesh) Triangles() []geometry.Triangle {
	if m == nil {
		return nil
	}
	return slices.Clone(m.triangles)
}

// Builder accumulates triangles for a single mesh. Parsers use it so that a
// failed parse never exposes a partially built Mesh.
type Builder struct {
	triangles []geometry.Triangle
}

// NewBuilder creates a builder with room for n triangles
func NewBuilder(n int) *Builder {
	return &Builder{triangles: make([]geometry.Triangle, 0, n)}
}

// Add appends a triangle
func (b *Builder) Add(t geometry.Triangle) {
	b.triangles = append(b.triangles, t)
}

// Len returns the number of triangles added so far
func (b *Builder) Len() int {
	return len(b.triangles)
}

// Build hands the accumulated triangles to a new Mesh and resets the builder
func (b *Builder) Build() *Mesh {
	m := &Mesh{triangles: b.triangles}
	b.triangles = nil
	return m
}
