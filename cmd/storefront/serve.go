package main

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/terpenos/storefront"
	"github.com/terpenos/storefront/internal/config"
	"github.com/terpenos/storefront/pkg/api"
	"github.com/terpenos/storefront/pkg/catalog"
	"github.com/terpenos/storefront/pkg/kvstore"
	"github.com/terpenos/storefront/pkg/metrics"
)

const shutdownTimeout = 10 * time.Second

func serveCmd(configPath *string) *cobra.Command {
	var (
		port    int
		host    string
		storage string
	)

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Serve the storefront API",
		Long: `Serve the cart and language API for the demo catalog.

Examples:
  storefront serve
  storefront serve --port=9000 --storage=redis
  storefront serve -c deploy/storefront.yaml`,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(*configPath)
			if err != nil {
				return err
			}
			if port > 0 {
				cfg.Server.Port = port
			}
			if host != "" {
				cfg.Server.Host = host
			}
			if storage != "" {
				cfg.Storage.Backend = storage
			}
			if err := cfg.Validate(); err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return runServe(ctx, cmd, cfg)
		},
	}

	cmd.Flags().IntVarP(&port, "port", "p", 0, "Port to listen on (default from config)")
	cmd.Flags().StringVarP(&host, "host", "H", "", "Host to bind to (default from config)")
	cmd.Flags().StringVar(&storage, "storage", "", "Storage backend: memory, file, redis, sql or s3")

	return cmd
}

func runServe(ctx context.Context, cmd *cobra.Command, cfg *config.Config) error {
	logger := newLogger(cmd.ErrOrStderr(), cfg.Logging)

	var m *metrics.Metrics
	var hook kvstore.FailureHook
	if cfg.Metrics.Enabled {
		m = metrics.New(metrics.WithNamespace(cfg.Metrics.Namespace))
		hook = m.StorageFailure
	}

	kv, err := openBackend(ctx, cfg, hook)
	if err != nil {
		return err
	}
	defer kv.Close()

	opts, err := appOptions(cfg, logger, m)
	if err != nil {
		return err
	}
	registry := storefront.NewRegistry(kv, opts...)
	defer registry.Close()

	handler := api.New(registry, catalog.Demo(), api.Config{
		Metrics: m,
		Logger:  logger,
	}).Handler()

	srv := &http.Server{
		Addr:              cfg.Address(),
		Handler:           handler,
		ReadHeaderTimeout: 5 * time.Second,
		BaseContext:       func(net.Listener) context.Context { return ctx },
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		logger.Info("storefront listening",
			"addr", srv.Addr,
			"storage", cfg.Storage.Backend,
			"metrics", cfg.Metrics.Enabled)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("listen: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		return registry.Run(ctx)
	})
	g.Go(func() error {
		<-ctx.Done()
		logger.Info("shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		return srv.Shutdown(shutdownCtx)
	})

	return g.Wait()
}
