package preview

import (
	"bytes"
	"image"
	"image/color"
	"image/png"
	"math"
	"testing"

	"github.com/philipparndt/gomesh/internal/meshtest"
	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCameraCentersTarget(t *testing.T) {
	cam := NewCamera(analysis.BoundingBox(meshtest.Cube()))
	cam.Rotate(radians(-60), radians(30))

	x, y, z := cam.Project(cam.Target, 200, 100)
	assert.InDelta(t, 100, x, 1e-9)
	assert.InDelta(t, 50, y, 1e-9)
	assert.InDelta(t, cam.Distance, z, 1e-9)
}

func TestCameraElevationClamped(t *testing.T) {
	cam := NewCamera(analysis.BoundingBox(meshtest.Cube()))
	cam.Rotate(0, math.Pi)
	assert.Less(t, cam.Elevation, math.Pi/2)

	before := cam.Distance
	cam.Zoom(0.5)
	assert.InDelta(t, before*1.5, cam.Distance, 1e-9)
	assert.InDelta(t, cam.Distance, cam.Position.Distance(cam.Target), 1e-9)
}

func TestCameraFitsModel(t *testing.T) {
	bbox := analysis.BoundingBox(meshtest.Cube())
	cam := NewCamera(bbox)
	cam.Rotate(radians(-60), radians(30))

	for _, tri := range meshtest.Cube().All() {
		for _, v := range tri.Vertices() {
			x, y, _ := cam.Project(v, 100, 100)
			assert.True(t, x >= 0 && x <= 100 && y >= 0 && y <= 100, "vertex %v projects to (%f, %f)", v, x, y)
		}
	}
}

func TestRenderCube(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 64, 48

	img, err := Render(meshtest.Cube(), opts)
	require.NoError(t, err)
	assert.Equal(t, 64, img.Bounds().Dx())
	assert.Equal(t, 48, img.Bounds().Dy())

	assert.NotEqual(t, opts.Background, img.RGBAAt(32, 24), "center should show the model")
	assert.Equal(t, opts.Background, img.RGBAAt(0, 0), "corner should be background")
}

func TestRenderWithoutSupersampling(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 32, 32
	opts.Supersample = 0
	opts.Wireframe = true

	img, err := Render(meshtest.Tetrahedron(2), opts)
	require.NoError(t, err)
	assert.NotEqual(t, opts.Background, img.RGBAAt(16, 16))
}

func TestRenderEmptyMesh(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 8, 8

	img, err := Render(mesh.New(nil), opts)
	require.NoError(t, err)
	for y := 0; y < 8; y++ {
		for x := 0; x < 8; x++ {
			require.Equal(t, opts.Background, img.RGBAAt(x, y))
		}
	}
}

func TestRenderInvalidSize(t *testing.T) {
	for _, size := range [][2]int{{0, 10}, {10, -1}, {MaxSize + 1, 10}} {
		opts := DefaultOptions()
		opts.Width, opts.Height = size[0], size[1]
		_, err := Render(meshtest.Cube(), opts)
		assert.Error(t, err, "size %v", size)
	}
}

func TestWritePNG(t *testing.T) {
	opts := DefaultOptions()
	opts.Width, opts.Height = 40, 30

	var buf bytes.Buffer
	require.NoError(t, WritePNG(&buf, meshtest.Cube(), opts))

	img, err := png.Decode(&buf)
	require.NoError(t, err)
	assert.Equal(t, 40, img.Bounds().Dx())
	assert.Equal(t, 30, img.Bounds().Dy())
}

func TestFillTriangleDepthTest(t *testing.T) {
	img, zbuffer := blank(10, 10)
	near := color.RGBA{R: 255, A: 255}
	far := color.RGBA{B: 255, A: 255}

	tri := func(z float64) [3]screenPoint {
		return [3]screenPoint{{0, 0, z}, {9, 0, z}, {0, 9, z}}
	}
	fillTriangle(img, zbuffer, tri(1), near)
	fillTriangle(img, zbuffer, tri(2), far)

	assert.Equal(t, near, img.RGBAAt(1, 1))
	assert.Equal(t, color.RGBA{}, img.RGBAAt(9, 9))
}

func TestDrawLineClipsToBounds(t *testing.T) {
	img, _ := blank(5, 5)
	col := color.RGBA{G: 255, A: 255}

	drawLine(img, -3, 2, 8, 2, col)
	for x := 0; x < 5; x++ {
		assert.Equal(t, col, img.RGBAAt(x, 2))
	}
	assert.Equal(t, color.RGBA{}, img.RGBAAt(0, 0))
}

func TestShade(t *testing.T) {
	c := shade(color.RGBA{R: 200, G: 100, B: 50, A: 255}, 0.5)
	assert.Equal(t, color.RGBA{R: 100, G: 50, B: 25, A: 255}, c)
}

func blank(w, h int) (*image.RGBA, []float64) {
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	zbuffer := make([]float64, w*h)
	for i := range zbuffer {
		zbuffer[i] = math.Inf(1)
	}
	return img, zbuffer
}
