package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/fatih/color"
	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/pipeline"
	"github.com/spf13/cobra"
)

var (
	infoJSON   bool
	infoFormat string
)

var infoCmd = &cobra.Command{
	Use:   "info [file]",
	Short: "Display general information about a mesh file",
	Long:  "Show comprehensive information including dimensions, triangle count, surface area, volume, watertightness and edge statistics.",
	Args:  cobra.ExactArgs(1),
	RunE:  runInfo,
}

func init() {
	rootCmd.AddCommand(infoCmd)

	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print a JSON report")
	infoCmd.Flags().StringVarP(&infoFormat, "format", "f", "", "Input format (stl, obj, ply); derived from the suffix by default")
}

func runInfo(cmd *cobra.Command, args []string) error {
	filename := args[0]

	result, err := loadMesh(cmd.Context(), filename, infoFormat, nil)
	if err != nil {
		return err
	}

	stats := analysis.Analyze(result.Mesh)
	if infoJSON {
		return writeInfoJSON(cmd.OutOrStdout(), filename, result, stats)
	}
	printInfo(cmd.OutOrStdout(), filename, result, stats)
	return nil
}

var heading = color.New(color.FgCyan, color.Bold).SprintFunc()

func printInfo(w io.Writer, filename string, result *pipeline.Result, stats *analysis.Result) {
	fmt.Fprintln(w, heading("Mesh File Information"))
	fmt.Fprintln(w, "=====================")
	fmt.Fprintf(w, "File: %s\n", filename)
	fmt.Fprintf(w, "Format: %s\n\n", result.Format)

	fmt.Fprintln(w, heading("Model Statistics:"))
	fmt.Fprintf(w, "  Triangles: %d\n", stats.TriangleCount)
	fmt.Fprintf(w, "  Edges: %d\n", stats.EdgeCount)
	fmt.Fprintf(w, "  Surface Area: %.6f square units\n\n", stats.SurfaceArea)

	fmt.Fprintln(w, heading("Bounding Box:"))
	if stats.BoundingBox.Empty() {
		fmt.Fprintln(w, "  (empty mesh)")
		fmt.Fprintln(w)
	} else {
		fmt.Fprintf(w, "  Min: %s\n", analysis.FormatVector(stats.BoundingBox.Min))
		fmt.Fprintf(w, "  Max: %s\n", analysis.FormatVector(stats.BoundingBox.Max))
		fmt.Fprintf(w, "  Center: %s\n\n", analysis.FormatVector(stats.BoundingBox.Center()))
	}

	fmt.Fprintln(w, heading("Dimensions:"))
	fmt.Fprintf(w, "  Width (X): %.6f units\n", stats.Dimensions.X)
	fmt.Fprintf(w, "  Depth (Y): %.6f units\n", stats.Dimensions.Y)
	fmt.Fprintf(w, "  Height (Z): %.6f units\n", stats.Dimensions.Z)
	fmt.Fprintf(w, "  Diagonal: %.6f units\n\n", stats.BoundingBox.Diagonal())

	fmt.Fprintln(w, heading("Volume:"))
	fmt.Fprintf(w, "  Enclosed: %.6f cubic units\n", stats.Volume)
	topo := stats.Topology
	if topo.Closed() {
		fmt.Fprintln(w, "  Watertight: "+color.GreenString("yes"))
	} else {
		fmt.Fprintln(w, "  Watertight: "+color.YellowString("no"))
		fmt.Fprintf(w, "    boundary edges: %d, non-manifold edges: %d, inconsistent edges: %d\n",
			topo.BoundaryEdges, topo.NonManifoldEdges, topo.InconsistentEdges)
		fmt.Fprintln(w, "    the volume is only meaningful for closed, consistently oriented meshes")
	}
	fmt.Fprintln(w)

	fmt.Fprintln(w, heading("Edge Lengths:"))
	fmt.Fprintf(w, "  Minimum: %.6f units\n", stats.MinEdgeLength)
	fmt.Fprintf(w, "  Maximum: %.6f units\n", stats.MaxEdgeLength)
	fmt.Fprintf(w, "  Average: %.6f units\n", stats.AvgEdgeLength)
}

type vectorJSON struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

type infoReport struct {
	File         string      `json:"file"`
	Format       string      `json:"format"`
	Triangles    int         `json:"triangles"`
	Min          *vectorJSON `json:"min,omitempty"`
	Max          *vectorJSON `json:"max,omitempty"`
	Dimensions   vectorJSON  `json:"dimensions"`
	SurfaceArea  float64     `json:"surfaceArea"`
	Volume       float64     `json:"volume"`
	SignedVolume float64     `json:"signedVolume"`
	Closed       bool        `json:"closed"`
	Topology     struct {
		BoundaryEdges     int `json:"boundaryEdges"`
		NonManifoldEdges  int `json:"nonManifoldEdges"`
		InconsistentEdges int `json:"inconsistentEdges"`
	} `json:"topology"`
	Edges struct {
		Count   int     `json:"count"`
		Min     float64 `json:"min"`
		Max     float64 `json:"max"`
		Average float64 `json:"average"`
	} `json:"edges"`
}

func writeInfoJSON(w io.Writer, filename string, result *pipeline.Result, stats *analysis.Result) error {
	report := infoReport{
		File:         filename,
		Format:       result.Format.String(),
		Triangles:    stats.TriangleCount,
		Dimensions:   vectorJSON{stats.Dimensions.X, stats.Dimensions.Y, stats.Dimensions.Z},
		SurfaceArea:  stats.SurfaceArea,
		Volume:       stats.Volume,
		SignedVolume: stats.SignedVolume,
		Closed:       stats.Topology.Closed(),
	}
	if !stats.BoundingBox.Empty() {
		bb := stats.BoundingBox
		report.Min = &vectorJSON{bb.Min.X, bb.Min.Y, bb.Min.Z}
		report.Max = &vectorJSON{bb.Max.X, bb.Max.Y, bb.Max.Z}
	}
	report.Topology.BoundaryEdges = stats.Topology.BoundaryEdges
	report.Topology.NonManifoldEdges = stats.Topology.NonManifoldEdges
	report.Topology.InconsistentEdges = stats.Topology.InconsistentEdges
	report.Edges.Count = stats.EdgeCount
	report.Edges.Min = stats.MinEdgeLength
	report.Edges.Max = stats.MaxEdgeLength
	report.Edges.Average = stats.AvgEdgeLength

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}
