// Package ply reads polygon meshes from PLY files in ASCII and binary
// encodings. Vertex positions and the face index lists are used; every
// other element and property is read past and discarded.
package ply

import (
	"encoding/binary"
	"fmt"
	"math"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/philipparndt/gomesh/pkg/meshio"
)

const (
	vertexElement = "vertex"
	faceElement   = "face"
)

// faceIndexNames are the accepted names of the face index list
var faceIndexNames = []string{"vertex_indices", "vertex_index"}

// face is an index list remembered with its record location, since indices
// are resolved only after every element has been read
type face struct {
	indices []int
	line    int
	offset  int64
}

// Parse decodes a PLY buffer. Polygons are fan-triangulated around their
// first corner. Bytes after the last declared element are ignored.
func Parse(data []byte) (*mesh.Mesh, error) {
	h, err := ParseHeader(data)
	if err != nil {
		return nil, err
	}

	var r recordReader
	switch h.Encoding {
	case ASCII:
		r = newASCIIReader(data[h.Size:], h.Lines)
	case BinaryLittleEndian:
		r = newBinaryReader(data, h.Size, binary.LittleEndian)
	case BinaryBigEndian:
		r = newBinaryReader(data, h.Size, binary.BigEndian)
	}

	var (
		vertices []geometry.Vector3
		faces    []face
	)
	for _, el := range h.Elements {
		switch el.Name {
		case vertexElement:
			v, err := readVertices(r, el)
			if err != nil {
				return nil, err
			}
			vertices = append(vertices, v...)
		case faceElement:
			f, err := readFaces(r, el)
			if err != nil {
				return nil, err
			}
			faces = append(faces, f...)
		default:
			if err := skipElement(r, el); err != nil {
				return nil, err
			}
		}
	}

	b := mesh.NewBuilder(len(faces))
	for _, f := range faces {
		corners := make([]geometry.Vector3, len(f.indices))
		for i, idx := range f.indices {
			if idx < 0 || idx >= len(vertices) {
				return nil, &meshio.FormatError{
					Format: meshio.FormatPLY,
					Line:   f.line,
					Offset: f.offset,
					Msg:    fmt.Sprintf("face vertex index %d out of range (%d vertices)", idx, len(vertices)),
				}
			}
			corners[i] = vertices[idx]
		}
		for k := 1; k+1 < len(corners); k++ {
			b.Add(geometry.NewTriangle(corners[0], corners[k], corners[k+1]))
		}
	}
	return b.Build(), nil
}

func readVertices(r recordReader, el *Element) ([]geometry.Vector3, error) {
	var pos [3]int
	for i, name := range []string{"x", "y", "z"} {
		pos[i] = el.index(name)
		if pos[i] < 0 || el.Properties[pos[i]].IsList() {
			return nil, r.errorf(nil, "vertex element has no scalar %q property", name)
		}
	}

	n, err := r.reserve(el.Count, el.minRecordSize())
	if err != nil {
		return nil, err
	}
	vertices := make([]geometry.Vector3, 0, n)
	values := make([]float64, len(el.Properties))
	for range el.Count {
		if err := readRecord(r, el, values, nil); err != nil {
			return nil, err
		}
		v := geometry.NewVector3(values[pos[0]], values[pos[1]], values[pos[2]])
		if !v.IsFinite() {
			return nil, r.errorf(nil, "non-finite vertex coordinate")
		}
		vertices = append(vertices, v)
	}
	return vertices, nil
}

func readFaces(r recordReader, el *Element) ([]face, error) {
	pos := -1
	for _, name := range faceIndexNames {
		if i := el.index(name); i >= 0 {
			pos = i
			break
		}
	}
	if pos < 0 || !el.Properties[pos].IsList() {
		return nil, r.errorf(nil, "face element has no vertex_indices list")
	}
	if !el.Properties[pos].Type.IsInteger() {
		return nil, r.errorf(nil, "face indices must have an integer type")
	}

	n, err := r.reserve(el.Count, el.minRecordSize())
	if err != nil {
		return nil, err
	}
	faces := make([]face, 0, n)
	values := make([]float64, len(el.Properties))
	for range el.Count {
		var indices []float64
		lists := map[int]*[]float64{pos: &indices}
		if err := readRecord(r, el, values, lists); err != nil {
			return nil, err
		}
		if len(indices) < 3 {
			return nil, r.errorf(nil, "face has %d vertices, want at least 3", len(indices))
		}
		f := face{indices: make([]int, len(indices))}
		f.line, f.offset = r.location()
		for i, idx := range indices {
			f.indices[i] = int(idx)
		}
		faces = append(faces, f)
	}
	return faces, nil
}

func skipElement(r recordReader, el *Element) error {
	if _, err := r.reserve(el.Count, el.minRecordSize()); err != nil {
		return err
	}
	if len(el.Properties) == 0 && el.Count > 0 {
		// Instances without properties are all alike; one read settles them
		return readRecord(r, el, nil, nil)
	}
	values := make([]float64, len(el.Properties))
	for range el.Count {
		if err := readRecord(r, el, values, nil); err != nil {
			return err
		}
	}
	return nil
}

// readRecord reads one element instance. Scalars land in values by property
// position; list items are kept only for the positions present in lists.
func readRecord(r recordReader, el *Element, values []float64, lists map[int]*[]float64) error {
	if err := r.begin(); err != nil {
		return err
	}
	for i, p := range el.Properties {
		if !p.IsList() {
			v, err := r.scalar(p.Type)
			if err != nil {
				return err
			}
			values[i] = v
			continue
		}

		n, err := r.scalar(p.CountType)
		if err != nil {
			return err
		}
		if n < 0 || n > math.MaxInt32 {
			return r.errorf(nil, "invalid list length %v", n)
		}
		dst := lists[i]
		for range int(n) {
			v, err := r.scalar(p.Type)
			if err != nil {
				return err
			}
			if dst != nil {
				*dst = append(*dst, v)
			}
		}
	}
	return r.end()
}
