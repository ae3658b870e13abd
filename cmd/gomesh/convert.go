package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/spf13/cobra"
)

var (
	convertOutput string
	convertASCII  bool
	convertFormat string
)

var convertCmd = &cobra.Command{
	Use:   "convert [file]",
	Short: "Convert a mesh file to STL",
	Long: `Convert an OBJ, PLY, STL or OpenSCAD file to canonical STL.
The output is binary STL unless --ascii is given or the config selects ascii.`,
	Args: cobra.ExactArgs(1),
	RunE: runConvert,
}

func init() {
	rootCmd.AddCommand(convertCmd)

	convertCmd.Flags().StringVarP(&convertOutput, "output", "o", "", "Output file (default: input name with .stl suffix)")
	convertCmd.Flags().BoolVar(&convertASCII, "ascii", false, "Write ASCII STL")
	convertCmd.Flags().StringVarP(&convertFormat, "format", "f", "", "Input format (stl, obj, ply); derived from the suffix by default")
}

func runConvert(cmd *cobra.Command, args []string) error {
	filename := args[0]
	enc := encodingFor(convertASCII)

	output := convertOutput
	if output == "" {
		output = strings.TrimSuffix(filename, filepath.Ext(filename)) + ".stl"
		if same, _ := samePath(output, filename); same {
			return fmt.Errorf("output would overwrite %s, choose a file with --output", filename)
		}
	}

	result, err := loadMesh(cmd.Context(), filename, convertFormat, newPipeline(enc == stl.ASCII))
	if err != nil {
		return err
	}

	data := result.Canonical
	if !result.Converted() {
		data = stl.Marshal(result.Mesh, enc)
	}

	if err := os.WriteFile(output, data, 0o644); err != nil {
		return fmt.Errorf("failed to write %s: %w", output, err)
	}

	logger.Info().
		Str("input", filename).
		Str("output", output).
		Str("encoding", enc.String()).
		Int("triangles", result.Mesh.Len()).
		Msg("Converted mesh")
	fmt.Fprintf(cmd.OutOrStdout(), "Wrote %d triangles to %s (%s STL)\n", result.Mesh.Len(), output, enc)
	return nil
}

func samePath(a, b string) (bool, error) {
	absA, err := filepath.Abs(a)
	if err != nil {
		return false, err
	}
	absB, err := filepath.Abs(b)
	if err != nil {
		return false, err
	}
	return absA == absB, nil
}
