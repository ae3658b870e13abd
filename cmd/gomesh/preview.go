package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gomesh/pkg/preview"
	"github.com/spf13/cobra"
)

var (
	previewOutput    string
	previewFormat    string
	previewWidth     int
	previewHeight    int
	previewAzimuth   float64
	previewElevation float64
	previewZoom      float64
	previewWireframe bool
)

var previewCmd = &cobra.Command{
	Use:   "preview [file]",
	Short: "Render a PNG thumbnail of a mesh file",
	Args:  cobra.ExactArgs(1),
	RunE:  runPreview,
}

func init() {
	rootCmd.AddCommand(previewCmd)

	defaults := preview.DefaultOptions()
	previewCmd.Flags().StringVarP(&previewOutput, "output", "o", "", "Output file (default: input name with .png suffix)")
	previewCmd.Flags().StringVarP(&previewFormat, "format", "f", "", "Input format (stl, obj, ply)")
	previewCmd.Flags().IntVar(&previewWidth, "width", defaults.Width, "Image width in pixels")
	previewCmd.Flags().IntVar(&previewHeight, "height", defaults.Height, "Image height in pixels")
	previewCmd.Flags().Float64Var(&previewAzimuth, "azimuth", defaults.Azimuth, "Camera rotation around Z in degrees")
	previewCmd.Flags().Float64Var(&previewElevation, "elevation", defaults.Elevation, "Camera angle above the XY plane in degrees")
	previewCmd.Flags().Float64Var(&previewZoom, "zoom", 0, "Relative camera distance change, e.g. -0.2 moves closer")
	previewCmd.Flags().BoolVar(&previewWireframe, "wireframe", false, "Draw triangle edges")
}

func runPreview(cmd *cobra.Command, args []string) error {
	filename := args[0]

	output := previewOutput
	if output == "" {
		output = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".png"
	}

	result, err := loadMesh(cmd.Context(), filename, previewFormat, nil)
	if err != nil {
		return err
	}

	opts := preview.DefaultOptions()
	opts.Width, opts.Height = previewWidth, previewHeight
	opts.Azimuth, opts.Elevation = previewAzimuth, previewElevation
	opts.Zoom = previewZoom
	opts.Wireframe = previewWireframe

	f, err := os.Create(output)
	if err != nil {
		return fmt.Errorf("failed to create %s: %w", output, err)
	}
	if err := preview.WritePNG(f, result.Mesh, opts); err != nil {
		_ = f.Close()
		return fmt.Errorf("failed to render %s: %w", output, err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	logger.Info().Str("output", output).Int("width", opts.Width).Int("height", opts.Height).Msg("Preview written")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %dx%d preview to %s\n", opts.Width, opts.Height, output)
	return nil
}
