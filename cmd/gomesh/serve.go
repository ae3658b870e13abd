package main

import (
	"github.com/philipparndt/gomesh/internal/cache"
	"github.com/philipparndt/gomesh/internal/server"
	"github.com/spf13/cobra"
)

var (
	serveHost string
	servePort int
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the mesh upload HTTP service",
	Long: `Serve the conversion pipeline over HTTP.

  POST /api/v1/meshes                  upload a mesh (multipart field "file")
  GET  /api/v1/meshes/{id}/stl         download the canonical STL
  GET  /api/v1/meshes/{id}/preview.png render a PNG preview
  GET  /health                         liveness check`,
	Args: cobra.NoArgs,
	RunE: runServe,
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringVar(&serveHost, "host", "", "Listen host (overrides config)")
	serveCmd.Flags().IntVarP(&servePort, "port", "p", 0, "Listen port (overrides config)")
}

func runServe(cmd *cobra.Command, args []string) error {
	if cmd.Flags().Changed("host") {
		cfg.Server.Host = serveHost
	}
	if cmd.Flags().Changed("port") {
		cfg.Server.Port = servePort
	}

	client, err := cache.New(cfg.Cache)
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Close(); err != nil {
			logger.Warn().Err(err).Msg("Failed to close cache")
		}
	}()
	logger.Info().Str("driver", cfg.Cache.Driver).Dur("ttl", cfg.Cache.TTL).Msg("Cache ready")

	srv := server.New(server.Options{
		Config:   cfg.Server,
		Logger:   logger,
		Pipeline: newPipeline(cfg.Conversion.ASCII()),
		Cache:    client,
		CacheTTL: cfg.Cache.TTL,
		Formats:  cfg.AcceptedFormats(),
	})
	return srv.Run(cmd.Context())
}
