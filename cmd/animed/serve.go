package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/spf13/cobra"

	"github.com/sindrigils/restfulapi-anime/internal/api"
	"github.com/sindrigils/restfulapi-anime/internal/auth"
	"github.com/sindrigils/restfulapi-anime/internal/cache"
	"github.com/sindrigils/restfulapi-anime/internal/catalog"
	"github.com/sindrigils/restfulapi-anime/internal/config"
	"github.com/sindrigils/restfulapi-anime/internal/logging"
	"github.com/sindrigils/restfulapi-anime/internal/observability"
	"github.com/sindrigils/restfulapi-anime/internal/ratelimit"
	"github.com/sindrigils/restfulapi-anime/internal/store"
)

func serveCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the catalog HTTP service",
		Long:  "Run the anime catalog REST service: query endpoints, mutations, auth, and metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg := config.Default()
			if configPath != "" {
				loaded, err := config.LoadFromFile(configPath)
				if err != nil {
					return fmt.Errorf("load config: %w", err)
				}
				cfg = loaded
			}
			config.LoadFromEnv(cfg)

			logging.Init(cfg.Server.LogFormat, cfg.Server.LogLevel)

			ctx := context.Background()

			if err := observability.Init(ctx, observability.Config{
				Enabled:    cfg.Telemetry.Enabled,
				Endpoint:   cfg.Telemetry.Endpoint,
				SampleRate: cfg.Telemetry.SampleRate,
			}); err != nil {
				return fmt.Errorf("init telemetry: %w", err)
			}

			db, err := store.New(ctx, cfg.Postgres.DSN)
			if err != nil {
				return fmt.Errorf("connect store: %w", err)
			}
			defer db.Close()

			// One Redis client backs both the query cache and the rate
			// limiter buckets.
			redisClient := redis.NewClient(&redis.Options{
				Addr:     cfg.Redis.Addr,
				Password: cfg.Redis.Password,
				DB:       cfg.Redis.DB,
			})
			defer redisClient.Close()

			queryCache := cache.NewRedisCacheFromClient(redisClient, "")
			if err := queryCache.Ping(ctx); err != nil {
				return fmt.Errorf("connect cache: %w", err)
			}

			svc := catalog.New(db, queryCache, time.Duration(cfg.Cache.TTL))

			issuer, err := auth.NewTokenIssuer(cfg.Auth.Secret, time.Duration(cfg.Auth.TokenTTL))
			if err != nil {
				return fmt.Errorf("init token issuer: %w", err)
			}

			var limiter *ratelimit.Limiter
			if cfg.RateLimit.Enabled {
				rules := ratelimit.DefaultRules()
				for method, perMinute := range cfg.RateLimit.PerMethod {
					rules[method] = ratelimit.Rule{PerMinute: perMinute}
				}
				limiter = ratelimit.New(ratelimit.NewRedisBackend(redisClient), rules, ratelimit.Rule{PerMinute: 1})
			}

			server := api.StartHTTPServer(cfg.Server.Listen, api.ServerConfig{
				Catalog: svc,
				Users:   db,
				Issuer:  issuer,
				Limiter: limiter,
			})
			logging.Op().Info("anime catalog service started", "addr", cfg.Server.Listen)

			sigCh := make(chan os.Signal, 1)
			signal.Notify(sigCh, syscall.SIGINT, syscall.SIGTERM)
			sig := <-sigCh
			logging.Op().Info("shutdown signal received", "signal", sig.String())

			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := server.Shutdown(shutdownCtx); err != nil {
				return fmt.Errorf("shutdown server: %w", err)
			}
			if err := observability.Shutdown(shutdownCtx); err != nil {
				logging.Op().Warn("telemetry shutdown failed", "error", err)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&configPath, "config", "", "Path to YAML config file")

	return cmd
}
