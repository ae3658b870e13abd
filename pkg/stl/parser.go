// Package stl reads and writes STL files in both the ASCII and the binary
// encoding.
package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"math"
	"strconv"
	"strings"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/philipparndt/gomesh/pkg/meshio"
)

const (
	headerSize   = 80
	countSize    = 4
	preambleSize = headerSize + countSize
	// normal + three vertices as float32, plus the attribute byte count
	recordSize = 4*3*4 + 2
)

// Parse reads an STL buffer in either encoding.
// A buffer whose length matches the declared triangle count exactly is
// binary; otherwise a buffer starting with "solid" and free of control bytes
// in its first record span is ASCII; anything else is handed to the binary
// parser so that short input reports truncation.
func Parse(data []byte) (*mesh.Mesh, error) {
	if isBinary(data) {
		return ParseBinary(data)
	}
	if looksASCII(data) {
		return ParseASCII(data)
	}
	return ParseBinary(data)
}

func isBinary(data []byte) bool {
	if len(data) < preambleSize {
		return false
	}
	count := int64(binary.LittleEndian.Uint32(data[headerSize:preambleSize]))
	return int64(len(data)) == preambleSize+count*recordSize
}

func looksASCII(data []byte) bool {
	fields := bytes.Fields(data[:min(len(data), 512)])
	if len(fields) == 0 || string(fields[0]) != "solid" {
		return false
	}
	// Binary exporters often start the header with "solid" too; their count
	// and float bytes give them away
	for _, c := range data[:min(len(data), preambleSize+recordSize)] {
		if isControl(c) {
			return false
		}
	}
	return true
}

func isControl(c byte) bool {
	switch c {
	case '\t', '\n', '\v', '\f', '\r':
		return false
	}
	return c < 0x20 || c == 0x7f
}

// ParseBinary parses a binary STL buffer. Facet normals are ignored since many
// writers leave them zeroed; consumers recompute them from the winding.
func ParseBinary(data []byte) (*mesh.Mesh, error) {
	have := int64(len(data))
	if have < preambleSize {
		return nil, &meshio.TruncatedInputError{
			Format: meshio.FormatSTL,
			Want:   preambleSize,
			Have:   have,
			Msg:    "missing header or triangle count",
		}
	}

	count := binary.LittleEndian.Uint32(data[headerSize:preambleSize])
	want := preambleSize + int64(count)*recordSize
	if have < want {
		return nil, &meshio.TruncatedInputError{
			Format: meshio.FormatSTL,
			Want:   want,
			Have:   have,
			Msg:    "declared triangle count exceeds available data",
		}
	}
	if have > want {
		return nil, meshio.OffsetError(meshio.FormatSTL, want, "%d trailing bytes after %d triangles", have-want, count)
	}

	b := mesh.NewBuilder(int(count))
	for i := 0; i < int(count); i++ {
		offset := preambleSize + i*recordSize
		record := data[offset : offset+recordSize]

		// record[0:12] holds the stored normal and record[48:50] the attribute
		triangle := geometry.NewTriangle(
			readVertex(record[12:24]),
			readVertex(record[24:36]),
			readVertex(record[36:48]),
		)
		if !triangle.IsFinite() {
			return nil, meshio.OffsetError(meshio.FormatSTL, int64(offset), "triangle %d has a non-finite coordinate", i)
		}
		b.Add(triangle)
	}

	return b.Build(), nil
}

func readVertex(b []byte) geometry.Vector3 {
	return geometry.FromFloat32([3]float32{
		math.Float32frombits(binary.LittleEndian.Uint32(b[0:4])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[4:8])),
		math.Float32frombits(binary.LittleEndian.Uint32(b[8:12])),
	})
}

type asciiState int

const (
	expectSolid asciiState = iota
	expectFacet
	expectOuterLoop
	expectVertex
	expectEndFacet
	afterEndSolid
)

// ParseASCII parses an ASCII STL buffer. Several consecutive solids are
// merged into one mesh.
func ParseASCII(data []byte) (*mesh.Mesh, error) {
	scanner := bufio.NewScanner(bytes.NewReader(data))
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)

	b := mesh.NewBuilder(len(data) / 256)
	state := expectSolid
	var vertices [3]geometry.Vector3
	n := 0
	line := 0

	for scanner.Scan() {
		line++
		fields := strings.Fields(scanner.Text())
		if len(fields) == 0 {
			continue
		}

		switch state {
		case expectSolid, afterEndSolid:
			if fields[0] != "solid" {
				if state == afterEndSolid {
					return nil, lineError(line, nil, "unexpected %q after endsolid", fields[0])
				}
				return nil, lineError(line, nil, "expected \"solid\", got %q", fields[0])
			}
			state = expectFacet

		case expectFacet:
			switch fields[0] {
			case "facet":
				if len(fields) < 2 || fields[1] != "normal" {
					return nil, lineError(line, nil, "expected \"facet normal\"")
				}
				// The stored normal is validated but not kept
				if _, err := parseVector(fields[2:], line); err != nil {
					return nil, err
				}
				state = expectOuterLoop
			case "endsolid":
				state = afterEndSolid
			default:
				return nil, lineError(line, nil, "expected \"facet\" or \"endsolid\", got %q", fields[0])
			}

		case expectOuterLoop:
			if fields[0] != "outer" || len(fields) != 2 || fields[1] != "loop" {
				return nil, lineError(line, nil, "expected \"outer loop\", got %q", strings.Join(fields, " "))
			}
			state = expectVertex
			n = 0

		case expectVertex:
			switch fields[0] {
			case "vertex":
				if n == 3 {
					return nil, lineError(line, nil, "more than 3 vertices in loop")
				}
				v, err := parseVector(fields[1:], line)
				if err != nil {
					return nil, err
				}
				vertices[n] = v
				n++
			case "endloop":
				if n != 3 {
					return nil, lineError(line, nil, "loop has %d vertices, want 3", n)
				}
				state = expectEndFacet
			default:
				return nil, lineError(line, nil, "expected \"vertex\" or \"endloop\", got %q", fields[0])
			}

		case expectEndFacet:
			if fields[0] != "endfacet" {
				return nil, lineError(line, nil, "expected \"endfacet\", got %q", fields[0])
			}
			b.Add(geometry.NewTriangle(vertices[0], vertices[1], vertices[2]))
			state = expectFacet
		}
	}

	if err := scanner.Err(); err != nil {
		return nil, lineError(line+1, err, "error reading ASCII STL")
	}

	switch state {
	case afterEndSolid:
		return b.Build(), nil
	case expectSolid:
		return nil, lineError(line, nil, "missing \"solid\"")
	default:
		return nil, &meshio.TruncatedInputError{
			Format: meshio.FormatSTL,
			Msg:    "input ends before \"endsolid\"",
		}
	}
}

func parseVector(fields []string, line int) (geometry.Vector3, error) {
	if len(fields) != 3 {
		return geometry.Vector3{}, lineError(line, nil, "expected 3 coordinates, got %d", len(fields))
	}
	var c [3]float64
	for i, f := range fields {
		val, err := strconv.ParseFloat(f, 64)
		if err != nil {
			return geometry.Vector3{}, lineError(line, err, "invalid coordinate %q", f)
		}
		c[i] = val
	}
	v := geometry.NewVector3(c[0], c[1], c[2])
	if !v.IsFinite() {
		return geometry.Vector3{}, lineError(line, nil, "non-finite coordinate")
	}
	return v, nil
}

func lineError(line int, err error, msg string, args ...any) error {
	return meshio.LineError(meshio.FormatSTL, line, err, msg, args...)
}
