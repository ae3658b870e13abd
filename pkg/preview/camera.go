package preview

import (
	"math"

	"github.com/philipparndt/gomesh/pkg/geometry"
)

// Camera is an orbit camera looking at Target from a point on a sphere.
// Z is up, matching the usual CAD convention.
type Camera struct {
	Position  geometry.Vector3
	Target    geometry.Vector3
	Up        geometry.Vector3
	FOV       float64 // Field of view in radians
	Distance  float64
	Azimuth   float64 // Rotation around Z
	Elevation float64 // Angle above the XY plane
}

// NewCamera creates a camera whose view cone encloses the bounding sphere of bbox
func NewCamera(bbox geometry.BoundingBox) *Camera {
	c := &Camera{
		Target: bbox.Center(),
		Up:     geometry.NewVector3(0, 0, 1),
		FOV:    math.Pi / 4,
	}

	radius := bbox.Diagonal() / 2
	if radius <= 0 {
		radius = 1
	}
	c.Distance = radius / math.Sin(c.FOV/2) * 1.05
	c.UpdatePosition()
	return c
}

// UpdatePosition updates camera position based on rotation angles
func (c *Camera) UpdatePosition() {
	x := c.Distance * math.Cos(c.Elevation) * math.Cos(c.Azimuth)
	y := c.Distance * math.Cos(c.Elevation) * math.Sin(c.Azimuth)
	z := c.Distance * math.Sin(c.Elevation)

	c.Position = c.Target.Add(geometry.NewVector3(x, y, z))
}

// Rotate orbits the camera by the given angles in radians
func (c *Camera) Rotate(azimuth, elevation float64) {
	c.Azimuth += azimuth
	c.Elevation += elevation

	// Looking straight down the up vector has no defined right axis
	maxAngle := math.Pi/2 - 0.1
	c.Elevation = max(-maxAngle, min(maxAngle, c.Elevation))

	c.UpdatePosition()
}

// Zoom scales the camera distance; positive values move away
func (c *Camera) Zoom(delta float64) {
	c.Distance *= 1.0 + delta
	if c.Distance < 0.1 {
		c.Distance = 0.1
	}
	c.UpdatePosition()
}

// Forward returns the unit view direction
func (c *Camera) Forward() geometry.Vector3 {
	return c.Target.Sub(c.Position).Normalize()
}

// Project maps a point to screen coordinates plus its camera-space depth
func (c *Camera) Project(point geometry.Vector3, width, height float64) (float64, float64, float64) {
	forward := c.Forward()
	right := forward.Cross(c.Up).Normalize()
	up := right.Cross(forward).Normalize()

	relative := point.Sub(c.Position)
	x := relative.Dot(right)
	y := relative.Dot(up)
	z := relative.Dot(forward)

	if z <= 0.01 {
		z = 0.01
	}

	// The FOV applies to the shorter image side
	scale := math.Min(width, height) / 2 / math.Tan(c.FOV/2)

	screenX := x/z*scale + width/2
	screenY := -y/z*scale + height/2

	return screenX, screenY, z
}
