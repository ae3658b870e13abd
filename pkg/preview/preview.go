// Package preview renders a shaded still image of a mesh without a GPU or
// windowing system, for thumbnails in the CLI and the upload service.
package preview

import (
	"fmt"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"golang.org/x/image/draw"
)

// MaxSize bounds either image side
const MaxSize = 4096

// Options controls a render.
type Options struct {
	Width  int
	Height int
	// Azimuth and Elevation orbit the camera, in degrees
	Azimuth   float64
	Elevation float64
	// Zoom is a relative change of the fitted camera distance
	Zoom       float64
	Wireframe  bool
	Background color.RGBA
	Color      color.RGBA
	// Supersample renders at this factor and downscales; values below 2 disable it
	Supersample int
}

// DefaultOptions is an isometric-ish view on a light background
func DefaultOptions() Options {
	return Options{
		Width:       256,
		Height:      256,
		Azimuth:     -60,
		Elevation:   30,
		Background:  color.RGBA{R: 245, G: 245, B: 245, A: 255},
		Color:       color.RGBA{R: 70, G: 130, B: 180, A: 255},
		Supersample: 2,
	}
}

func (o Options) validate() error {
	if o.Width <= 0 || o.Height <= 0 || o.Width > MaxSize || o.Height > MaxSize {
		return fmt.Errorf("invalid preview size %dx%d", o.Width, o.Height)
	}
	return nil
}

// Render draws m with flat shading. Facets are lit from the camera so that
// inverted winding still renders.
func Render(m *mesh.Mesh, opts Options) (*image.RGBA, error) {
	if err := opts.validate(); err != nil {
		return nil, err
	}

	scale := max(opts.Supersample, 1)
	width, height := opts.Width*scale, opts.Height*scale

	img := image.NewRGBA(image.Rect(0, 0, width, height))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	bbox := analysis.BoundingBox(m)
	if !bbox.Empty() {
		cam := NewCamera(bbox)
		cam.Rotate(radians(opts.Azimuth), radians(opts.Elevation))
		if opts.Zoom != 0 {
			cam.Zoom(opts.Zoom)
		}
		rasterize(img, m, cam, opts)
	}

	if scale == 1 {
		return img, nil
	}
	out := image.NewRGBA(image.Rect(0, 0, opts.Width, opts.Height))
	draw.CatmullRom.Scale(out, out.Bounds(), img, img.Bounds(), draw.Src, nil)
	return out, nil
}

func rasterize(img *image.RGBA, m *mesh.Mesh, cam *Camera, opts Options) {
	bounds := img.Bounds()
	w, h := float64(bounds.Dx()), float64(bounds.Dy())

	zbuffer := make([]float64, bounds.Dx()*bounds.Dy())
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}

	view := cam.Forward()
	edge := shade(opts.Color, 0.35)

	for _, tri := range m.All() {
		var p [3]screenPoint
		for i, v := range tri.Vertices() {
			x, y, z := cam.Project(v, w, h)
			p[i] = screenPoint{x, y, z}
		}

		intensity := 0.25 + 0.75*math.Abs(tri.Normal().Dot(view))
		fillTriangle(img, zbuffer, p, shade(opts.Color, intensity))

		if opts.Wireframe {
			for i := range p {
				a, b := p[i], p[(i+1)%3]
				drawLine(img, int(a.x), int(a.y), int(b.x), int(b.y), edge)
			}
		}
	}
}

// WritePNG renders m and encodes the image as PNG
func WritePNG(w io.Writer, m *mesh.Mesh, opts Options) error {
	img, err := Render(m, opts)
	if err != nil {
		return err
	}
	return png.Encode(w, img)
}

func shade(c color.RGBA, intensity float64) color.RGBA {
	return color.RGBA{
		R: uint8(float64(c.R) * intensity),
		G: uint8(float64(c.G) * intensity),
		B: uint8(float64(c.B) * intensity),
		A: c.A,
	}
}

func radians(deg float64) float64 {
	return deg * math.Pi / 180
}
