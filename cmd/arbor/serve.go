package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/aretw0/arbor"
	"github.com/aretw0/arbor/internal/config"
	"github.com/aretw0/arbor/internal/demo"
	httpAdapter "github.com/aretw0/arbor/pkg/adapters/http"
	redisAdapter "github.com/aretw0/arbor/pkg/adapters/redis"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const shutdownTimeout = 5 * time.Second

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start the HTTP server",
	Long: `Starts the demo application over HTTP. When redis.addr is configured,
session locks and the session index are shared through Redis.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		if listen, _ := cmd.Flags().GetString("listen"); listen != "" {
			cfg.Listen = listen
		}
		logger, err := newLogger(cfg)
		if err != nil {
			return err
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()
		return serve(ctx, cfg, logger, prometheus.DefaultRegisterer)
	},
}

func init() {
	serveCmd.Flags().String("listen", "", "Override the configured listen address")
	rootCmd.AddCommand(serveCmd)
}

// appOptions translates the configuration into application options.
// client may be nil, in which case sessions stay process-local.
func appOptions(cfg config.Config, logger *slog.Logger, client redis.UniversalClient) []arbor.Option {
	opts := []arbor.Option{
		arbor.WithLogger(logger),
		arbor.WithPageCapacity(cfg.Pages.Capacity),
		arbor.WithPageTTL(cfg.Pages.TTL),
		arbor.WithSessionCapacity(cfg.Session.Capacity),
		arbor.WithSessionTTL(cfg.Session.TTL),
		arbor.WithSessionLifetime(cfg.Session.Lifetime),
		arbor.WithResource("about", demo.About),
	}
	if client != nil {
		opts = append(opts,
			arbor.WithLocker(redisAdapter.NewLocker(client, cfg.Redis.Prefix), cfg.Redis.LockTTL),
			arbor.WithIndex(redisAdapter.NewIndex(client, redisAdapter.WithPrefix(cfg.Redis.Prefix))),
		)
	}
	return opts
}

func newRedisClient(ctx context.Context, cfg config.Config) (redis.UniversalClient, error) {
	if cfg.Redis.Addr == "" {
		return nil, nil
	}
	client := redis.NewClient(&redis.Options{Addr: cfg.Redis.Addr})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to reach redis at %s: %w", cfg.Redis.Addr, err)
	}
	return client, nil
}

func serve(ctx context.Context, cfg config.Config, logger *slog.Logger, reg prometheus.Registerer) error {
	client, err := newRedisClient(ctx, cfg)
	if err != nil {
		return err
	}
	if client != nil {
		defer client.Close()
	}

	opts := appOptions(cfg, logger, client)
	if cfg.MetricsListen != "" {
		opts = append(opts, arbor.WithMetrics(reg))
	}
	app, err := arbor.New(demo.Root, opts...)
	if err != nil {
		return err
	}
	defer app.Close()

	servers := []*http.Server{{
		Addr:    cfg.Listen,
		Handler: httpAdapter.NewHandler(app, httpAdapter.WithLogger(logger), httpAdapter.WithVersion(arbor.Version)),
	}}
	if cfg.MetricsListen != "" {
		mux := http.NewServeMux()
		mux.Handle("/metrics", promhttp.Handler())
		servers = append(servers, &http.Server{Addr: cfg.MetricsListen, Handler: mux})
	}

	g, gctx := errgroup.WithContext(ctx)
	for _, srv := range servers {
		g.Go(func() error {
			logger.Info("Listening", "addr", srv.Addr)
			if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				return err
			}
			return nil
		})
	}
	g.Go(func() error {
		<-gctx.Done()
		logger.Info("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		var errs []error
		for _, srv := range servers {
			errs = append(errs, srv.Shutdown(shutdownCtx))
		}
		return errors.Join(errs...)
	})
	return g.Wait()
}
