package main

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/spf13/cobra"

	"github.com/dgallion1/docoutline/internal/api"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP API",
	Long: `Serve outline extraction over HTTP. POST /api/outline extracts an uploaded
document synchronously; POST /api/jobs queues it on the worker pool and
GET /api/jobs/{id}/result returns the outline once the job finishes.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := loadConfig(cmd, map[string]string{
			"port":         "port",
			"worker_count": "workers",
		})
		if err != nil {
			return err
		}

		orch, extractor, err := newOrchestrator(cfg, log)
		if err != nil {
			return err
		}
		ctx := cmd.Context()
		orch.Start(ctx)

		httpServer := &http.Server{
			Addr:         ":" + cfg.Port,
			Handler:      api.NewServer(orch, extractor, log, cfg),
			ReadTimeout:  30 * time.Second,
			WriteTimeout: 120 * time.Second,
			IdleTimeout:  60 * time.Second,
		}

		shutdownErr := make(chan error, 1)
		go func() {
			<-ctx.Done()
			log.Info("shutting down...")

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer cancel()
			shutdownErr <- httpServer.Shutdown(shutdownCtx)
			orch.Stop()
		}()

		log.Info("starting docoutline", "port", cfg.Port, "workers", cfg.WorkerCount)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			orch.Stop()
			return err
		}
		return <-shutdownErr
	},
}

func init() {
	serveCmd.Flags().String("port", "", "listen port (default: port)")
	serveCmd.Flags().Int("workers", 0, "number of concurrent extractions (default: worker_count)")

	rootCmd.AddCommand(serveCmd)
}
