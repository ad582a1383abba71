// Copyright 2025 The ChapaUY Authors
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"fmt"
	"os/signal"
	"syscall"

	"github.com/jcodagnone/regionfund/metrics"
	"github.com/jcodagnone/regionfund/server"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Starts the HTTP API and the map page",
	Long: `Starts the HTTP server:

  GET  /api/regions   the region GeoJSON document
  POST /api/geocode   resolve a location and evaluate funding eligibility
  GET  /api/health    liveness probe
  GET  /metrics       Prometheus metrics

Files under --static-dir are served at /. The region document is loaded once
at startup; a missing or malformed document aborts the command.
`,
	RunE: func(cmd *cobra.Command, _ []string) error {
		ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
		defer stop()

		collector, err := metrics.NewCollector(nil)
		if err != nil {
			return fmt.Errorf("registering metrics: %w", err)
		}

		svc, idx, err := newService(ctx, collector)
		if err != nil {
			return err
		}

		srv := server.NewServer(svc, idx, server.Options{
			Addr:      fmt.Sprintf(":%d", viper.GetInt("port")),
			StaticDir: viper.GetString("static-dir"),
			Metrics:   collector,
		})

		return srv.Run(ctx)
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)
	serveCmd.Flags().Int("port", 5000, "Port to listen on")
	serveCmd.Flags().String("static-dir", "static", "Directory served at /; empty disables static files")
	bindFlags(serveCmd, "port", "static-dir")
}
