package main

import (
	"context"
	"fmt"
	"io/fs"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/gosuda/kanban/internal/api/ws"
	"github.com/gosuda/kanban/internal/auth"
	"github.com/gosuda/kanban/internal/board"
	"github.com/gosuda/kanban/internal/config"
	"github.com/gosuda/kanban/internal/metrics"
	"github.com/gosuda/kanban/internal/server"
	"github.com/gosuda/kanban/internal/store/postgres"
	redisstore "github.com/gosuda/kanban/internal/store/redis"
	"github.com/gosuda/kanban/web"
)

func newServeCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server (default)",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
}

func runServe(cmd *cobra.Command, _ []string) error {
	// Graceful shutdown on SIGINT / SIGTERM.
	ctx, cancel := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
	defer cancel()

	cfg, err := config.Load()
	if err != nil {
		// The listen address does not depend on the rest of the config, so
		// the browser can still be told what is wrong.
		log.Error().Err(err).Msg("configuration invalid")
		if fbErr := server.ServeFallback(ctx, config.ServerAddr(), err.Error()); fbErr != nil {
			log.Error().Err(fbErr).Msg("fallback server")
		}
		return err
	}

	store, err := postgres.New(ctx, cfg.Database.DSN(), int32(cfg.Database.MaxConns)) //nolint:gosec // bounds checked by config
	if err != nil {
		return err
	}
	defer store.Close()

	rdb, err := redisstore.Connect(ctx, cfg.Redis.Addr, cfg.Redis.Password, cfg.Redis.DB)
	if err != nil {
		return err
	}
	defer rdb.Close()

	pubsub := redisstore.NewPubSub(rdb)
	publisher := ws.NewPublisher(pubsub)

	reg := prometheus.NewRegistry()
	m := metrics.New(reg)

	boards := board.NewService(store, redisstore.NewBoardCache(rdb, cfg.Board.CacheTTL), publisher, publisher, m)

	authSvc := auth.NewService(
		store.Users(),
		redisstore.NewSessionStore(rdb),
		publisher,
		cfg.JWT.Secret,
		cfg.JWT.AccessTTL,
		cfg.JWT.RefreshTTL,
		oauthProviders(cfg)...,
	)
	log.Info().Strs("providers", authSvc.Providers()).Msg("oauth providers")

	hub := ws.NewHub(pubsub, boards, server.OriginHosts(cfg.Server.CORSOrigins)...)

	// Strip the "build/" prefix from the embedded web app.
	webAssets, err := fs.Sub(web.Assets, "build")
	if err != nil {
		return fmt.Errorf("web assets: %w", err)
	}

	var metricsHandler = promhttp.HandlerFor(reg, promhttp.HandlerOpts{Registry: reg})
	if !cfg.Server.Metrics {
		metricsHandler = nil
	}

	srv := server.New(ctx, cfg, boards, authSvc, hub, metricsHandler, webAssets)

	go func() {
		log.Info().Str("addr", cfg.Server.Addr).Msg("starting server")
		if startErr := srv.Start(ctx); startErr != nil {
			log.Error().Err(startErr).Msg("server error")
			cancel()
		}
	}()

	// Block until shutdown signal.
	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if shutdownErr := srv.Shutdown(shutdownCtx); shutdownErr != nil {
		return shutdownErr
	}

	log.Info().Msg("stopped")
	return nil
}

func oauthProviders(cfg *config.Config) []*auth.OAuthProvider {
	var providers []*auth.OAuthProvider
	if cfg.OAuth.GoogleEnabled() {
		providers = append(providers, auth.NewGoogleProvider(
			cfg.OAuth.GoogleClientID, cfg.OAuth.GoogleClientSecret, cfg.OAuthRedirectURL("google")))
	}
	if cfg.OAuth.GitHubEnabled() {
		providers = append(providers, auth.NewGitHubProvider(
			cfg.OAuth.GitHubClientID, cfg.OAuth.GitHubClientSecret, cfg.OAuthRedirectURL("github")))
	}
	return providers
}
