package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/Alias1177/TrendScanner/internal/scan"
	"github.com/Alias1177/TrendScanner/internal/server"
)

var serveAddr string

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve the scan API",
	Long: `Start the HTTP API.

  POST /api/scans          start a scan (optional JSON body: {"settings":{...},"universe":[...]})
  GET  /api/scans/latest   latest snapshot, ?sort=roiScore|volume|symbol&q=<text>
  GET  /healthz            liveness
  GET  /metrics            Prometheus metrics`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().StringVar(&serveAddr, "addr", "", "Listen address (overrides HTTP_ADDR)")
}

func runServe(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()

	settings, universe, err := resolveSettings(cfg, "", "", "")
	if err != nil {
		return err
	}

	a, err := newApp(cfg)
	if err != nil {
		return err
	}
	defer a.close()

	addr := cfg.HTTPAddr
	if serveAddr != "" {
		addr = serveAddr
	}

	api := server.New(a.scanner(cfg, scan.Options{}), server.Options{
		BaseContext: ctx,
		Settings:    settings,
		Universe:    universe,
		Gatherer:    a.registry,
	}, log.Logger)

	srv := &http.Server{
		Addr:              addr,
		Handler:           api.Handler(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("addr", addr).Msg("API listening")
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	log.Info().Msg("Shutting down API")
	return srv.Shutdown(shutdownCtx)
}
