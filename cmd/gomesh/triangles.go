package main

import (
	"fmt"
	"math"
	"sort"

	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/spf13/cobra"
)

var (
	triCount    int
	triLargest  bool
	triSmallest bool
	triFormat   string
)

type triangleInfo struct {
	Index     int
	Area      float64
	Perimeter float64
	Vertices  string
}

var trianglesCmd = &cobra.Command{
	Use:   "triangles [file]",
	Short: "Analyze triangles in a mesh file",
	Long:  "Display information about triangles including area, perimeter, and vertex positions.",
	Args:  cobra.ExactArgs(1),
	RunE:  runTriangles,
}

func init() {
	rootCmd.AddCommand(trianglesCmd)

	trianglesCmd.Flags().IntVarP(&triCount, "count", "n", 10, "Number of triangles to display")
	trianglesCmd.Flags().BoolVarP(&triLargest, "largest", "l", false, "Show largest triangles by area")
	trianglesCmd.Flags().BoolVarP(&triSmallest, "smallest", "s", false, "Show smallest triangles by area")
	trianglesCmd.Flags().StringVarP(&triFormat, "format", "f", "", "Input format (stl, obj, ply)")

	trianglesCmd.MarkFlagsMutuallyExclusive("largest", "smallest")
}

func runTriangles(cmd *cobra.Command, args []string) error {
	loaded, err := loadMesh(cmd.Context(), args[0], triFormat, nil)
	if err != nil {
		return err
	}
	m := loaded.Mesh

	triangles := make([]triangleInfo, 0, m.Len())
	totalArea := 0.0
	minArea := math.Inf(1)
	maxArea := 0.0

	for i, tri := range m.All() {
		area := tri.Area()
		triangles = append(triangles, triangleInfo{
			Index:     i,
			Area:      area,
			Perimeter: tri.Perimeter(),
			Vertices: fmt.Sprintf("%s, %s, %s",
				analysis.FormatVector(tri.V0),
				analysis.FormatVector(tri.V1),
				analysis.FormatVector(tri.V2)),
		})

		totalArea += area
		minArea = min(minArea, area)
		maxArea = max(maxArea, area)
	}

	avgArea := 0.0
	if len(triangles) == 0 {
		minArea = 0
	} else {
		avgArea = totalArea / float64(len(triangles))
	}

	var title string
	switch {
	case triLargest:
		sort.SliceStable(triangles, func(i, j int) bool {
			return triangles[i].Area > triangles[j].Area
		})
		title = "Largest Triangles"
	case triSmallest:
		sort.SliceStable(triangles, func(i, j int) bool {
			return triangles[i].Area < triangles[j].Area
		})
		title = "Smallest Triangles"
	default:
		title = "Triangles"
	}
	shown := triangles[:min(max(triCount, 0), len(triangles))]

	w := cmd.OutOrStdout()
	fmt.Fprintln(w, heading(fmt.Sprintf("%s (showing %d of %d)", title, len(shown), len(triangles))))
	fmt.Fprintln(w, "====================")
	fmt.Fprintf(w, "Total triangles: %d\n", len(triangles))
	fmt.Fprintf(w, "Total surface area: %.6f square units\n", totalArea)
	fmt.Fprintf(w, "Min triangle area: %.6f square units\n", minArea)
	fmt.Fprintf(w, "Max triangle area: %.6f square units\n", maxArea)
	fmt.Fprintf(w, "Avg triangle area: %.6f square units\n\n", avgArea)

	for _, tri := range shown {
		fmt.Fprintf(w, "Triangle #%d:\n", tri.Index)
		fmt.Fprintf(w, "  Area: %.6f square units\n", tri.Area)
		fmt.Fprintf(w, "  Perimeter: %.6f units\n", tri.Perimeter)
		fmt.Fprintf(w, "  Vertices: %s\n\n", tri.Vertices)
	}
	return nil
}
