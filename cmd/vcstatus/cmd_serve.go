package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"
	"time"

	"vcstatus/internal/metrics"
	"vcstatus/internal/ml"
	"vcstatus/internal/storage"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var serveFlags struct {
	port int
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Serve predictions over HTTP",
	Long: `Serve starts the model server with /predict, /health, /model/info and /metrics.
The artifact pair is read per request, so running "vcstatus train" while the
server is up switches it to the new model without a restart.`,
	RunE: runServe,
}

func init() {
	serveCmd.Flags().IntVar(&serveFlags.port, "port", 0, "Listen port (default SERVER_PORT)")
}

func runServe(cmd *cobra.Command, _ []string) error {
	port := settings.ServerPort
	if serveFlags.port != 0 {
		port = serveFlags.port
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	mw := metrics.NewWrapper(metrics.NewWithRegistry(reg))

	predictor := ml.NewPredictor(storage.DirReader{Dir: settings.ArtifactDir}, mw)
	server := ml.NewModelServer(predictor, port, reg)

	if _, err := predictor.Info(); err != nil {
		log.Warn().Err(err).Msg("No artifact pair yet, /predict answers 503 until training runs")
	}

	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	g, gCtx := errgroup.WithContext(ctx)
	g.Go(server.Start)
	g.Go(func() error {
		<-gCtx.Done()
		log.Info().Msg("Shutting down model server")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
