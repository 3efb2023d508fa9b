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

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/anvil-platform/autoconfig/internal/condition"
	"github.com/anvil-platform/autoconfig/internal/config"
	"github.com/anvil-platform/autoconfig/internal/httpapi"
	"github.com/anvil-platform/autoconfig/internal/metadata"
	"github.com/anvil-platform/autoconfig/internal/metrics"
	"github.com/anvil-platform/autoconfig/internal/orderingrpc"
	"github.com/anvil-platform/autoconfig/internal/watch"
)

const shutdownTimeout = 10 * time.Second

func newServeCmd() *cobra.Command {
	var configFile string

	cmd := &cobra.Command{
		Use:   "serve [--config FILE]",
		Short: "Serve the ordering resolver over gRPC and HTTP",
		Long: `Serves the Ordering gRPC service and the HTTP API until interrupted.
Settings are read from --config and AUTOCONFIG_* environment variables.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(configFile)
			if err != nil {
				return err
			}
			ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return serve(ctx, cfg)
		},
	}
	cmd.Flags().StringVarP(&configFile, "config", "c", "", "Server configuration YAML file")
	return cmd
}

func serve(ctx context.Context, cfg config.ServerConfig) error {
	log := logger()

	catalog, err := metadata.LoadFile(cfg.MetadataFile)
	if err != nil {
		return err
	}
	store := watch.NewStore(catalog)

	env := condition.Environment{}
	if cfg.EnvironmentFile != "" {
		if env, err = condition.LoadEnvironmentFile(cfg.EnvironmentFile); err != nil {
			return err
		}
	}

	reg := prometheus.NewRegistry()
	reg.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	recorder := metrics.NewRecorder()
	recorder.MustRegister(reg)
	recorder.ObserveMetadataLoad("file", nil)

	grpcServer, healthServer := orderingrpc.NewGRPCServer(orderingrpc.NewServer(store, recorder), log.WithName("grpc"))
	httpServer := &http.Server{
		Addr:              cfg.HTTPAddress,
		Handler:           httpapi.NewRouter(store, recorder, reg, log.WithName("http")).WithDefaultEnvironment(env).Setup(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	lis, err := net.Listen("tcp", cfg.GRPCAddress)
	if err != nil {
		return fmt.Errorf("listen %s: %w", cfg.GRPCAddress, err)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info("serving grpc", "address", lis.Addr().String())
		if err := grpcServer.Serve(lis); err != nil {
			return fmt.Errorf("grpc serve: %w", err)
		}
		return nil
	})
	g.Go(func() error {
		log.Info("serving http", "address", cfg.HTTPAddress)
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return fmt.Errorf("http serve: %w", err)
		}
		return nil
	})
	if cfg.Watch {
		reloader := watch.NewFileReloader(cfg.MetadataFile, store,
			watch.WithDebounce(cfg.WatchDebounce),
			watch.WithLogger(log.WithName("watch")),
			watch.WithRecorder(recorder),
		)
		g.Go(func() error {
			return reloader.Run(ctx)
		})
	}
	g.Go(func() error {
		<-ctx.Done()
		log.Info("shutting down")
		healthServer.Shutdown()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		err := httpServer.Shutdown(shutdownCtx)
		grpcServer.GracefulStop()
		return err
	})

	return g.Wait()
}
