package stl

import (
	"bufio"
	"bytes"
	"encoding/binary"
	"fmt"
	"io"
	"math"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
)

// Encoding selects the STL flavor to write
type Encoding int

const (
	Binary Encoding = iota
	ASCII
)

func (e Encoding) String() string {
	if e == ASCII {
		return "ascii"
	}
	return "binary"
}

// Must not start with "solid", or readers would take the file for ASCII
const binaryHeader = "gomesh binary STL"

const solidName = "gomesh"

// Write encodes the mesh as STL. Facet normals are recomputed from the
// winding of each triangle. The only possible error comes from w.
func Write(w io.Writer, m *mesh.Mesh, enc Encoding) error {
	if enc == ASCII {
		return WriteASCII(w, m)
	}
	return WriteBinary(w, m)
}

// Marshal encodes the mesh into a new buffer
func Marshal(m *mesh.Mesh, enc Encoding) []byte {
	var buf bytes.Buffer
	if enc == Binary {
		buf.Grow(preambleSize + m.Len()*recordSize)
	}
	// bytes.Buffer writes cannot fail
	_ = Write(&buf, m, enc)
	return buf.Bytes()
}

// WriteBinary writes the 84-byte preamble followed by one 50-byte record per
// triangle.
func WriteBinary(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	var preamble [preambleSize]byte
	copy(preamble[:headerSize], binaryHeader)
	binary.LittleEndian.PutUint32(preamble[headerSize:], uint32(m.Len()))
	if _, err := bw.Write(preamble[:]); err != nil {
		return fmt.Errorf("failed to write header: %w", err)
	}

	var record [recordSize]byte
	for i, t := range m.All() {
		putVector(record[0:12], t.Normal())
		putVector(record[12:24], t.V0)
		putVector(record[24:36], t.V1)
		putVector(record[36:48], t.V2)
		// record[48:50] stays zero: no attribute bytes
		if _, err := bw.Write(record[:]); err != nil {
			return fmt.Errorf("failed to write triangle %d: %w", i, err)
		}
	}

	return bw.Flush()
}

func putVector(b []byte, v geometry.Vector3) {
	f := v.Float32()
	binary.LittleEndian.PutUint32(b[0:4], math.Float32bits(f[0]))
	binary.LittleEndian.PutUint32(b[4:8], math.Float32bits(f[1]))
	binary.LittleEndian.PutUint32(b[8:12], math.Float32bits(f[2]))
}

// WriteASCII writes the textual encoding with fixed-precision numbers
func WriteASCII(w io.Writer, m *mesh.Mesh) error {
	bw := bufio.NewWriter(w)

	fmt.Fprintf(bw, "solid %s\n", solidName)
	for _, t := range m.All() {
		n := t.Normal()
		fmt.Fprintf(bw, "  facet normal %.6e %.6e %.6e\n", n.X, n.Y, n.Z)
		fmt.Fprintf(bw, "    outer loop\n")
		for _, v := range t.Vertices() {
			fmt.Fprintf(bw, "      vertex %.6e %.6e %.6e\n", v.X, v.Y, v.Z)
		}
		fmt.Fprintf(bw, "    endloop\n")
		fmt.Fprintf(bw, "  endfacet\n")
	}
	fmt.Fprintf(bw, "endsolid %s\n", solidName)

	// bufio keeps the first write error and reports it on Flush
	return bw.Flush()
}
