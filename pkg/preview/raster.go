package preview

import (
	"image"
	"image/color"
	"math"
)

// screenPoint is a projected vertex: pixel coordinates plus depth
type screenPoint struct {
	x, y, z float64
}

// fillTriangle scan-converts a triangle into img, keeping only fragments
// closer than the value already in zbuffer.
func fillTriangle(img *image.RGBA, zbuffer []float64, p [3]screenPoint, col color.RGBA) {
	// Sort vertices by Y coordinate (top to bottom)
	if p[0].y > p[1].y {
		p[0], p[1] = p[1], p[0]
	}
	if p[1].y > p[2].y {
		p[1], p[2] = p[2], p[1]
	}
	if p[0].y > p[1].y {
		p[0], p[1] = p[1], p[0]
	}

	bounds := img.Bounds()
	width := bounds.Dx()

	yStart := int(math.Max(0, math.Ceil(p[0].y)))
	yEnd := int(math.Min(float64(bounds.Dy()-1), math.Floor(p[2].y)))

	for y := yStart; y <= yEnd; y++ {
		fy := float64(y)

		// The long edge 0-2 spans every scanline; the short side switches at p[1]
		xa, za := interpolate(p[0], p[2], fy)
		var xb, zb float64
		if fy < p[1].y {
			xb, zb = interpolate(p[0], p[1], fy)
		} else {
			xb, zb = interpolate(p[1], p[2], fy)
		}
		if xa > xb {
			xa, xb = xb, xa
			za, zb = zb, za
		}

		xStart := int(math.Max(0, math.Ceil(xa)))
		xEnd := int(math.Min(float64(width-1), math.Floor(xb)))

		for x := xStart; x <= xEnd; x++ {
			t := 0.0
			if xb != xa {
				t = (float64(x) - xa) / (xb - xa)
			}
			z := za + t*(zb-za)

			idx := y*width + x
			if z < zbuffer[idx] {
				zbuffer[idx] = z
				img.SetRGBA(x, y, col)
			}
		}
	}
}

// interpolate returns x and depth where the edge a-b crosses scanline y
func interpolate(a, b screenPoint, y float64) (float64, float64) {
	if b.y == a.y {
		return a.x, a.z
	}
	t := (y - a.y) / (b.y - a.y)
	return a.x + t*(b.x-a.x), a.z + t*(b.z-a.z)
}

// drawLine draws a line on an image using Bresenham's algorithm
func drawLine(img *image.RGBA, x1, y1, x2, y2 int, col color.RGBA) {
	bounds := img.Bounds()

	dx := abs(x2 - x1)
	dy := abs(y2 - y1)

	sx, sy := -1, -1
	if x1 < x2 {
		sx = 1
	}
	if y1 < y2 {
		sy = 1
	}

	err := dx - dy

	for {
		if image.Pt(x1, y1).In(bounds) {
			img.SetRGBA(x1, y1, col)
		}

		if x1 == x2 && y1 == y2 {
			break
		}

		e2 := 2 * err
		if e2 > -dy {
			err -= dy
			x1 += sx
		}
		if e2 < dx {
			err += dx
			y1 += sy
		}
	}
}

func abs(x int) int {
	if x < 0 {
		return -x
	}
	return x
}
