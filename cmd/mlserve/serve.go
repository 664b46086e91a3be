package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/servconnect/mlservices/config"
	httpDelivery "github.com/servconnect/mlservices/internal/delivery/http"
	"github.com/servconnect/mlservices/internal/logger"
)

// builder wires one service's dependencies. The returned cleanup releases them.
type builder func(ctx context.Context, cfg *config.Config, log *zap.Logger) (httpDelivery.ServiceHandler, func(), error)

func newServiceCommand(service, short string, build builder) *cobra.Command {
	var port string

	cmd := &cobra.Command{
		Use:   service,
		Short: short,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.Load(service)
			if err != nil {
				return fmt.Errorf("failed to load configuration: %w", err)
			}
			if port != "" {
				cfg.Server.Port = port
			}
			return serve(cmd.Context(), cfg, build)
		},
	}
	cmd.Flags().StringVarP(&port, "port", "p", "", "Listen port, overrides server.port")
	return cmd
}

func serve(parent context.Context, cfg *config.Config, build builder) error {
	if parent == nil {
		parent = context.Background()
	}
	ctx, stop := signal.NotifyContext(parent, syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	log := logger.New(cfg.Log.Level, cfg.Log.Format).With(zap.String("service", cfg.Service))
	defer func() { _ = log.Sync() }()

	log.Info("Starting ServConnect ML service",
		zap.String("environment", cfg.Server.Environment),
		zap.String("port", cfg.Server.Port),
	)

	handler, cleanup, err := build(ctx, cfg, log)
	if err != nil {
		return err
	}
	defer cleanup()

	router := httpDelivery.SetupRouter(cfg, handler, log)
	srv := &http.Server{
		Addr:    ":" + cfg.Server.Port,
		Handler: router,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info("Server listening", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("failed to start server: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("Shutting down server")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info("Server exited gracefully")
	return nil
}
