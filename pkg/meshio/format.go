// Package meshio defines the format tags, parser capability and error
// taxonomy shared by the mesh format packages.
package meshio

import (
	"path/filepath"
	"strings"

	"github.com/philipparndt/gomesh/pkg/mesh"
)

// Format is a mesh interchange format tag
type Format string

const (
	FormatSTL Format = "stl"
	FormatOBJ Format = "obj"
	FormatPLY Format = "ply"
)

// Canonical is the format the pipeline converts every other format into
const Canonical = FormatSTL

// String returns the tag
func (f Format) String() string {
	return string(f)
}

// ParseFormat normalizes a tag such as "STL" or ".obj".
// The result is not validated against any registry.
func ParseFormat(tag string) Format {
	return Format(strings.ToLower(strings.TrimPrefix(strings.TrimSpace(tag), ".")))
}

// FormatFromFilename derives a tag from the filename suffix
func FormatFromFilename(name string) Format {
	return ParseFormat(filepath.Ext(name))
}

// Parser turns a complete byte buffer into a Mesh
type Parser interface {
	Parse(data []byte) (*mesh.Mesh, error)
}

// ParserFunc adapts a function to the Parser interface
type ParserFunc func(data []byte) (*mesh.Mesh, error)

// Parse calls f(data)
func (f ParserFunc) Parse(data []byte) (*mesh.Mesh, error) {
	return f(data)
}
