package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/mx-space/folio/internal/app"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		application, err := app.New(logger, appConfig)
		if err != nil {
			return err
		}

		srv := &http.Server{
			Addr:              application.Addr(),
			Handler:           application.Router(),
			ReadHeaderTimeout: 10 * time.Second,
		}

		errCh := make(chan error, 1)
		go func() {
			logger.Info("server starting",
				zap.String("addr", srv.Addr),
				zap.String("content_dir", appConfig.Content.Dir),
				zap.Bool("redis", appConfig.Redis.Enable),
			)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				errCh <- err
			}
			close(errCh)
		}()

		quit := make(chan os.Signal, 1)
		signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
		select {
		case <-quit:
		case err := <-errCh:
			application.Shutdown()
			return err
		}

		logger.Info("shutting down server...")
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		err = srv.Shutdown(ctx)
		application.Shutdown()
		if err != nil {
			return err
		}
		logger.Info("server exited")
		return nil
	},
}
