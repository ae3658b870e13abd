// Package obj reads the geometry of Wavefront OBJ files. Only vertex
// positions and faces are used; normals, texture coordinates, groups and
// materials are skipped.
package obj

import (
	"bufio"
	"bytes"
	"strconv"
	"strings"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/philipparndt/gomesh/pkg/meshio"
)

type decoder struct {
	vertices []geometry.Vector3
	builder  *mesh.Builder
	line     int
}

// Parse decodes an OBJ buffer. Polygons with more than three corners are
// fan-triangulated around their first corner, keeping the listed winding.
// An empty buffer is a valid, empty mesh.
func Parse(data []byte) (*mesh.Mesh, error) {
	dec := &decoder{builder: mesh.NewBuilder(0)}

	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		dec.line++
		if err := dec.parseLine(scanner.Text()); err != nil {
			return nil, err
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, dec.formatError(err, "error reading OBJ")
	}

	return dec.builder.Build(), nil
}

func (dec *decoder) parseLine(line string) error {
	fields := strings.Fields(line)
	if len(fields) == 0 || strings.HasPrefix(fields[0], "#") {
		return nil
	}

	switch fields[0] {
	// Vertex position
	case "v":
		return dec.parseVertex(fields[1:])
	// Face
	case "f":
		return dec.parseFace(fields[1:])
	}
	// vn, vt, o, g, s, usemtl, mtllib, l, p and anything unknown
	return nil
}

// parseVertex parses a vertex position line:
// v <x> <y> <z> [w]
func (dec *decoder) parseVertex(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError(nil, "vertex has %d coordinates, want at least 3", len(fields))
	}
	var c [3]float64
	for i, f := range fields[:3] {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return dec.formatError(err, "invalid vertex coordinate %q", f)
		}
		c[i] = val
	}
	v := geometry.NewVector3(c[0], c[1], c[2])
	if !v.IsFinite() {
		return dec.formatError(nil, "non-finite vertex coordinate")
	}
	dec.vertices = append(dec.vertices, v)
	return nil
}

// parseFace parses a face line:
// f v1[/vt1][/vn1] v2[/vt2][/vn2] v3[/vt3][/vn3] ...
func (dec *decoder) parseFace(fields []string) error {
	if len(fields) < 3 {
		return dec.formatError(nil, "face has %d vertices, want at least 3", len(fields))
	}

	corners := make([]geometry.Vector3, len(fields))
	for pos, f := range fields {
		ref, _, _ := strings.Cut(f, "/")
		val, err := strconv.ParseInt(ref, 10, 64)
		if err != nil {
			return dec.formatError(err, "invalid face index %q", f)
		}
		idx, err := dec.resolve(val)
		if err != nil {
			return err
		}
		corners[pos] = dec.vertices[idx]
	}

	for k := 1; k+1 < len(corners); k++ {
		dec.builder.Add(geometry.NewTriangle(corners[0], corners[k], corners[k+1]))
	}
	return nil
}

// resolve maps a 1-based or negative (relative) index to a slice position
func (dec *decoder) resolve(val int64) (int, error) {
	n := int64(len(dec.vertices))
	var idx int64
	switch {
	case val > 0:
		idx = val - 1
	case val < 0:
		// -1 refers to the most recently defined vertex
		idx = n + val
	default:
		return 0, dec.formatError(nil, "face vertex index 0 is not allowed")
	}
	if idx < 0 || idx >= n {
		return 0, dec.formatError(nil, "face vertex index %d out of range (%d vertices defined)", val, n)
	}
	return int(idx), nil
}

func (dec *decoder) formatError(err error, msg string, args ...any) error {
	return meshio.LineError(meshio.FormatOBJ, dec.line, err, msg, args...)
}
