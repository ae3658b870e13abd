// Package analysis derives geometric measurements from a mesh: bounding
// box, surface area, enclosed volume, edge statistics and a watertightness
// diagnostic.
package analysis

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gomesh/pkg/geometry"
	"github.com/philipparndt/gomesh/pkg/mesh"
	"golang.org/x/sync/errgroup"
)

// EdgeInfo contains information about an edge in the model
type EdgeInfo struct {
	Start      geometry.Vector3
	End        geometry.Vector3
	Length     float64
	TriangleID int
}

// Result contains the measurements of a mesh
type Result struct {
	TriangleCount int
	BoundingBox   geometry.BoundingBox
	Dimensions    geometry.Vector3
	SurfaceArea   float64
	// Volume is |SignedVolume|; see Volume for when it is meaningful
	Volume        float64
	SignedVolume  float64
	Topology      Topology
	EdgeCount     int
	MinEdgeLength float64
	MaxEdgeLength float64
	AvgEdgeLength float64
	AllEdges      []EdgeInfo
}

// BoundingBox returns the axis-aligned box around every vertex.
// An empty mesh yields the empty sentinel box.
func BoundingBox(m *mesh.Mesh) geometry.BoundingBox {
	bbox := geometry.NewBoundingBox()
	for _, t := range m.All() {
		bbox.Extend(t.V0)
		bbox.Extend(t.V1)
		bbox.Extend(t.V2)
	}
	return bbox
}

// SurfaceArea returns the sum of all facet areas. It does not depend on
// winding or watertightness.
func SurfaceArea(m *mesh.Mesh) float64 {
	var area float64
	for _, t := range m.All() {
		area += t.Area()
	}
	return area
}

// SignedVolume sums the signed volumes of the tetrahedra spanned by the
// origin and each facet (divergence theorem). Outward winding gives a
// positive result.
func SignedVolume(m *mesh.Mesh) float64 {
	var volume float64
	for _, t := range m.All() {
		volume += t.SignedVolume()
	}
	return volume
}

// Volume returns |SignedVolume(m)|. It equals the enclosed volume only when
// the mesh is a closed, consistently oriented 2-manifold; for open or
// inconsistently wound input it is still computed, but carries no physical
// meaning. CheckTopology tells the two cases apart.
func Volume(m *mesh.Mesh) float64 {
	return math.Abs(SignedVolume(m))
}

// Analyze performs all measurements on a mesh. The independent reductions
// run concurrently; each is a single ordered pass so the result does not
// depend on scheduling.
func Analyze(m *mesh.Mesh) *Result {
	result := &Result{TriangleCount: m.Len()}

	var g errgroup.Group
	g.Go(func() error {
		result.BoundingBox = BoundingBox(m)
		result.Dimensions = result.BoundingBox.Size()
		return nil
	})
	g.Go(func() error {
		result.SurfaceArea = SurfaceArea(m)
		return nil
	})
	g.Go(func() error {
		result.SignedVolume = SignedVolume(m)
		result.Volume = math.Abs(result.SignedVolume)
		return nil
	})
	g.Go(func() error {
		result.Topology = CheckTopology(m)
		return nil
	})
	g.Go(func() error {
		collectEdges(m, result)
		return nil
	})
	// reductions never fail
	_ = g.Wait()

	return result
}

// collectEdges lists every triangle edge and the length statistics
func collectEdges(m *mesh.Mesh, result *Result) {
	result.AllEdges = make([]EdgeInfo, 0, 3*m.Len())

	minLength := math.MaxFloat64
	maxLength := 0.0
	totalLength := 0.0

	for i, triangle := range m.All() {
		edges := []struct {
			start, end geometry.Vector3
		}{
			{triangle.V0, triangle.V1},
			{triangle.V1, triangle.V2},
			{triangle.V2, triangle.V0},
		}

		for _, edge := range edges {
			length := edge.start.Distance(edge.end)

			result.AllEdges = append(result.AllEdges, EdgeInfo{
				Start:      edge.start,
				End:        edge.end,
				Length:     length,
				TriangleID: i,
			})

			totalLength += length
			if length < minLength {
				minLength = length
			}
			if length > maxLength {
				maxLength = length
			}
		}
	}

	result.EdgeCount = len(result.AllEdges)
	if result.EdgeCount > 0 {
		result.MinEdgeLength = minLength
		result.MaxEdgeLength = maxLength
		result.AvgEdgeLength = totalLength / float64(result.EdgeCount)
	}
}

// FindEdgesByLength finds all edges within a length range
func FindEdgesByLength(result *Result, minLength, maxLength float64) []EdgeInfo {
	var edges []EdgeInfo
	for _, edge := range result.AllEdges {
		if edge.Length >= minLength && edge.Length <= maxLength {
			edges = append(edges, edge)
		}
	}
	return edges
}

// FindLongestEdges returns the N longest edges in the model
func FindLongestEdges(result *Result, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool {
		return a.Length > b.Length
	})
}

// FindShortestEdges returns the N shortest edges in the model
func FindShortestEdges(result *Result, count int) []EdgeInfo {
	return sortedEdges(result, count, func(a, b EdgeInfo) bool {
		return a.Length < b.Length
	})
}

func sortedEdges(result *Result, count int, less func(a, b EdgeInfo) bool) []EdgeInfo {
	edges := make([]EdgeInfo, len(result.AllEdges))
	copy(edges, result.AllEdges)

	sort.SliceStable(edges, func(i, j int) bool {
		return less(edges[i], edges[j])
	})

	count = max(0, min(count, len(edges)))
	return edges[:count]
}

// DistanceBetweenPoints calculates the distance between two arbitrary points
func DistanceBetweenPoints(p1, p2 geometry.Vector3) float64 {
	return p1.Distance(p2)
}

// FindNearestVertex finds the vertex in the mesh nearest to a given point.
// The distance is +Inf for an empty mesh.
func FindNearestVertex(m *mesh.Mesh, point geometry.Vector3) (geometry.Vector3, float64) {
	var nearestVertex geometry.Vector3
	minDistance := math.Inf(1)

	for _, triangle := range m.All() {
		for _, vertex := range triangle.Vertices() {
			distance := point.Distance(vertex)
			if distance < minDistance {
				minDistance = distance
				nearestVertex = vertex
			}
		}
	}

	return nearestVertex, minDistance
}

// FormatMeasurement formats a measurement with appropriate units
func FormatMeasurement(value float64, unit string) string {
	if unit == "" {
		unit = "units"
	}
	return fmt.Sprintf("%.6f %s", value, unit)
}

// FormatVector formats a 3D vector
func FormatVector(v geometry.Vector3) string {
	return fmt.Sprintf("(%.6f, %.6f, %.6f)", v.X, v.Y, v.Z)
}
