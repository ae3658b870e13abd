package main

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/philipparndt/gomesh/pkg/meshio"
	"github.com/philipparndt/gomesh/pkg/openscad"
	"github.com/philipparndt/gomesh/pkg/pipeline"
	"github.com/philipparndt/gomesh/pkg/stl"
)

// newPipeline builds a pipeline emitting the given canonical encoding
func newPipeline(ascii bool) *pipeline.Pipeline {
	if ascii {
		return pipeline.New(pipeline.WithASCIIOutput())
	}
	return pipeline.New()
}

// loadMesh reads a mesh file. The format comes from formatFlag when set,
// otherwise from the file suffix. OpenSCAD models are rendered to STL first.
func loadMesh(ctx context.Context, filename, formatFlag string, p *pipeline.Pipeline) (*pipeline.Result, error) {
	if p == nil {
		p = newPipeline(cfg.Conversion.ASCII())
	}

	if formatFlag == "" && openscad.IsSCAD(filename) {
		data, err := renderSCAD(ctx, filename)
		if err != nil {
			return nil, err
		}
		return p.Process(data, meshio.FormatSTL)
	}

	format := meshio.ParseFormat(formatFlag)
	if format == "" {
		format = meshio.FormatFromFilename(filename)
	}
	if !accepted(format) {
		return nil, &meshio.UnsupportedFormatError{Tag: string(format)}
	}

	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", filename, err)
	}

	start := time.Now()
	result, err := p.Process(data, format)
	if err != nil {
		return nil, fmt.Errorf("failed to load %s: %w", filename, err)
	}
	logger.Debug().
		Str("file", filename).
		Str("format", format.String()).
		Int("triangles", result.Mesh.Len()).
		Dur("elapsed", time.Since(start)).
		Msg("Mesh loaded")
	return result, nil
}

func accepted(format meshio.Format) bool {
	for _, f := range cfg.AcceptedFormats() {
		if f == format {
			return true
		}
	}
	return false
}

// renderSCAD runs OpenSCAD with a spinner on stderr
func renderSCAD(ctx context.Context, filename string) ([]byte, error) {
	s := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
	s.Suffix = " Rendering " + filepath.Base(filename)
	s.Start()
	defer s.Stop()

	abs, err := filepath.Abs(filename)
	if err != nil {
		return nil, err
	}

	r := openscad.NewRenderer(filepath.Dir(abs), cfg.Conversion.OpenSCAD)
	data, err := r.Render(ctx, abs)
	if err != nil {
		return nil, err
	}
	logger.Debug().Str("file", filename).Int("bytes", len(data)).Msg("OpenSCAD render finished")
	return data, nil
}

// encodingFor picks the STL encoding from the --ascii flag or the config
func encodingFor(ascii bool) stl.Encoding {
	if ascii || cfg.Conversion.ASCII() {
		return stl.ASCII
	}
	return stl.Binary
}
