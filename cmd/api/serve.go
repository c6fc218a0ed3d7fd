package main

import (
	"context"
	"errors"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"orgroles/internal/audit"
	"orgroles/internal/events"
	httpserver "orgroles/internal/http"
	"orgroles/internal/logger"
)

func newServeCmd() *cobra.Command {
	var shutdownTimeout time.Duration

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Migrate, seed and run the HTTP API",
		RunE: func(cmd *cobra.Command, args []string) error {
			rt, err := bootstrap()
			if err != nil {
				return err
			}
			defer rt.close()

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			if err := rt.setup(ctx); err != nil {
				return err
			}

			dispatcher := events.New(logger.WithComponent(rt.log, "events"))
			defer dispatcher.Close()
			audit.Recorder{DB: rt.db}.Subscribe(dispatcher)

			if rt.cfg.Environment == "production" {
				gin.SetMode(gin.ReleaseMode)
			}
			r := httpserver.NewRouter(httpserver.Deps{
				DB:     rt.db,
				Config: rt.cfg,
				Log:    rt.log,
				Events: dispatcher,
			})
			srv := &http.Server{
				Addr:              ":" + rt.cfg.AppPort,
				Handler:           r,
				ReadHeaderTimeout: 10 * time.Second,
			}

			errCh := make(chan error, 1)
			go func() {
				rt.log.Info("server listening", zap.String("addr", srv.Addr))
				if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
					errCh <- err
				}
				close(errCh)
			}()

			select {
			case err := <-errCh:
				return err
			case <-ctx.Done():
			}

			rt.log.Info("shutting down")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
			defer cancel()
			return srv.Shutdown(shutdownCtx)
		},
	}
	cmd.Flags().DurationVar(&shutdownTimeout, "shutdown-timeout", 10*time.Second, "Grace period for in-flight requests")
	return cmd
}
