// Package pipeline turns a tagged byte buffer into a mesh and, for non-STL
// input, into canonical STL bytes.
package pipeline

import (
	"bytes"
	"fmt"
	"slices"

	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/philipparndt/gomesh/pkg/obj"
	"github.com/philipparndt/gomesh/pkg/ply"
	"github.com/philipparndt/gomesh/pkg/stl"
)

// Result is the outcome of a successful Process call
type Result struct {
	Format meshio.Format
	Mesh   *mesh.Mesh
	// Canonical holds the STL encoding of Mesh when the input was not STL
	Canonical []byte
}

// Converted reports whether canonical STL bytes were produced
func (r *Result) Converted() bool {
	return r != nil && r.Canonical != nil
}

// Pipeline dispatches a buffer to the parser registered for its format.
// Registration is not synchronized; register everything before sharing a
// Pipeline between goroutines.
type Pipeline struct {
	parsers  map[meshio.Format]meshio.Parser
	encoding stl.Encoding
}

// Option configures a Pipeline
type Option func(*Pipeline)

// WithASCIIOutput makes conversions emit ASCII STL instead of binary
func WithASCIIOutput() Option {
	return func(p *Pipeline) {
		p.encoding = stl.ASCII
	}
}

// WithEncoding sets the canonical STL encoding
func WithEncoding(enc stl.Encoding) Option {
	return func(p *Pipeline) {
		p.encoding = enc
	}
}

// New creates a pipeline with the STL, OBJ and PLY parsers registered
func New(opts ...Option) *Pipeline {
	p := &Pipeline{
		parsers:  make(map[meshio.Format]meshio.Parser),
		encoding: stl.Binary,
	}
	p.Register(meshio.FormatSTL, meshio.ParserFunc(stl.Parse))
	p.Register(meshio.FormatOBJ, meshio.ParserFunc(obj.Parse))
	p.Register(meshio.FormatPLY, meshio.ParserFunc(ply.Parse))

	for _, opt := range opts {
		opt(p)
	}
	return p
}

// Register adds or replaces the parser for a format
func (p *Pipeline) Register(format meshio.Format, parser meshio.Parser) {
	p.parsers[format] = parser
}

// Formats lists the registered format tags in sorted order
func (p *Pipeline) Formats() []meshio.Format {
	formats := make([]meshio.Format, 0, len(p.parsers))
	for f := range p.parsers {
		formats = append(formats, f)
	}
	slices.Sort(formats)
	return formats
}

// Supports reports whether a parser is registered for the format
func (p *Pipeline) Supports(format meshio.Format) bool {
	_, ok := p.parsers[format]
	return ok
}

// Process parses data as the given format. The content is never sniffed to
// pick another format: a mismatch surfaces as the chosen parser's error.
func (p *Pipeline) Process(data []byte, format meshio.Format) (*Result, error) {
	parser, ok := p.parsers[format]
	if !ok {
		return nil, &meshio.UnsupportedFormatError{Tag: string(format)}
	}

	m, err := parser.Parse(data)
	if err != nil {
		return nil, err
	}

	result := &Result{Format: format, Mesh: m}
	if format != meshio.Canonical {
		var buf bytes.Buffer
		if err := stl.Write(&buf, m, p.encoding); err != nil {
			return nil, fmt.Errorf("failed to write canonical STL: %w", err)
		}
		result.Canonical = buf.Bytes()
	}
	return result, nil
}

var defaultPipeline = New()

// Process parses data with the default pipeline
func Process(data []byte, format meshio.Format) (*Result, error) {
	return defaultPipeline.Process(data, format)
}
