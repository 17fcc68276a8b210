package main

import (
	"context"
	"os/signal"
	"syscall"
	"time"

	"github.com/borgmon/ics-importer/pkg/calendar"
	"github.com/borgmon/ics-importer/pkg/importer"
	"github.com/borgmon/ics-importer/pkg/metrics"
	"github.com/borgmon/ics-importer/pkg/models"
	"github.com/borgmon/ics-importer/pkg/server"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newServeCmd(opts *options) *cobra.Command {
	var listenAddr string
	var interval int

	cmd := &cobra.Command{
		Use:   "serve [URL...]",
		Short: "Serve continuously refreshed team calendars over HTTP",
		RunE: func(cmd *cobra.Command, args []string) error {
			config, logger, err := opts.setup()
			if err != nil {
				return err
			}
			defer func() { _ = logger.Sync() }()

			if cmd.Flags().Changed("listen") {
				config.ListenAddr = listenAddr
			}
			if cmd.Flags().Changed("interval") {
				config.UpdateInterval = interval
			}

			req, err := opts.request(cmd, config, models.ModeTeamCalendars, args)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), config, req, logger)
		},
	}

	cmd.Flags().StringVar(&listenAddr, "listen", ":8080", "Address to listen on")
	cmd.Flags().IntVar(&interval, "interval", 30, "Minutes between feed syncs")
	return cmd
}

func serve(ctx context.Context, config *models.Config, req importer.Request, logger *zap.Logger) error {
	ctx, stop := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	m := metrics.New()
	im := importer.New(calendar.NewFetcher(logger), logger)
	im.Workers = config.Workers
	im.Metrics = m

	syncer := importer.NewSyncer(im, req, time.Duration(config.UpdateInterval)*time.Minute, logger)
	srv := server.New(config.ListenAddr, syncer.Store, m, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- srv.Start()
	}()

	syncDone := make(chan struct{})
	go func() {
		syncer.Run(ctx)
		close(syncDone)
	}()

	var serveErr error
	select {
	case <-ctx.Done():
		logger.Info("shutting down")
	case serveErr = <-errCh:
		stop()
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("server shutdown error", zap.Error(err))
	}
	<-syncDone
	return serveErr
}
