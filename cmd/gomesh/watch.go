package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/philipparndt/gomesh/pkg/analysis"
	"github.com/philipparndt/gomesh/pkg/openscad"
	"github.com/philipparndt/gomesh/pkg/stl"
	"github.com/philipparndt/gomesh/pkg/watcher"
	"github.com/spf13/cobra"
)

var (
	watchOutput string
	watchFormat string
)

var watchCmd = &cobra.Command{
	Use:   "watch [file]",
	Short: "Re-analyze a mesh file whenever it changes",
	Long: `Print the mesh report every time the file is saved. For OpenSCAD models
every included or used file is watched as well. With --output the canonical
STL is rewritten on each change.`,
	Args: cobra.ExactArgs(1),
	RunE: runWatch,
}

func init() {
	rootCmd.AddCommand(watchCmd)

	watchCmd.Flags().StringVarP(&watchOutput, "output", "o", "", "Rewrite this STL file on every change")
	watchCmd.Flags().StringVarP(&watchFormat, "format", "f", "", "Input format (stl, obj, ply)")
}

func runWatch(cmd *cobra.Command, args []string) error {
	filename := args[0]
	ctx := cmd.Context()
	w := cmd.OutOrStdout()

	files := []string{filename}
	if watchFormat == "" && openscad.IsSCAD(filename) {
		abs, err := filepath.Abs(filename)
		if err != nil {
			return err
		}
		deps, err := openscad.NewRenderer(filepath.Dir(abs), cfg.Conversion.OpenSCAD).ResolveDependencies(abs)
		if err != nil {
			return fmt.Errorf("failed to resolve dependencies of %s: %w", filename, err)
		}
		files = append(files, deps...)
	}

	refresh := func() {
		result, err := loadMesh(ctx, filename, watchFormat, nil)
		if err != nil {
			logger.Error().Err(err).Str("file", filename).Msg("Reload failed")
			return
		}
		printInfo(w, filename, result, analysis.Analyze(result.Mesh))
		fmt.Fprintln(w)

		if watchOutput == "" {
			return
		}
		data := result.Canonical
		if !result.Converted() {
			data = stl.Marshal(result.Mesh, encodingFor(false))
		}
		if err := os.WriteFile(watchOutput, data, 0o644); err != nil {
			logger.Error().Err(err).Str("output", watchOutput).Msg("Write failed")
			return
		}
		logger.Info().Str("output", watchOutput).Int("triangles", result.Mesh.Len()).Msg("Output updated")
	}

	fw, err := watcher.NewFileWatcher(cfg.Watch.Debounce, logger)
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Watch(files, func(string) { refresh() }); err != nil {
		return err
	}
	fw.Start()

	refresh()
	logger.Info().Strs("files", fw.Files()).Msg("Watching for changes, press Ctrl+C to stop")

	<-ctx.Done()
	return nil
}
