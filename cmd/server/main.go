package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	router "github.com/dkeye/Cast/internal/adapters/http"
	"github.com/dkeye/Cast/internal/app"
	"github.com/dkeye/Cast/internal/auth"
	"github.com/dkeye/Cast/internal/config"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	if level, err := zerolog.ParseLevel(cfg.LogLevel); err != nil {
		log.Warn().Err(err).Str("log_level", cfg.LogLevel).Msg("unknown log level, keeping info")
	} else {
		zerolog.SetGlobalLevel(level)
	}
	if cfg.HostSecret == "" {
		log.Warn().Msg("host_secret is empty, nobody can become the host")
	}

	session := app.NewSession()
	gate := auth.NewSecretGate(cfg.HostSecret, auth.NewAttemptLimiter(cfg.HostAuthRate, cfg.HostAuthBurst))
	relay := app.NewRelay(session, gate)
	reg := app.NewRegistry()

	r := router.SetupRouter(ctx, cfg, relay, reg)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Msg("Cast server started")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error().Err(err).Msg("server error")
			cancel()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down")
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server forced to shutdown")
	}
	log.Info().Int("connections", reg.CancelAll()).Msg("closed signaling connections")
	log.Info().Msg("Server exited gracefully")
}
