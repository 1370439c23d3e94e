package main

import (
	"context"
	"errors"
	"os"
	"os/signal"
	"syscall"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"

	"github.com/dkeye/Cast/internal/client"
	"github.com/dkeye/Cast/internal/core"
	"github.com/dkeye/Cast/internal/domain"
)

func main() {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	url := pflag.String("url", "ws://localhost:3000/ws", "relay websocket URL")
	rawID := pflag.String("id", "", "viewer identity, generated when empty")
	pflag.Parse()

	id := domain.NewIdentity()
	if *rawID != "" {
		parsed, err := domain.ParseIdentity(*rawID)
		if err != nil {
			log.Fatal().Err(err).Msg("invalid --id")
		}
		id = parsed
	}

	v := client.NewViewer(*url, id, client.DefaultBackoff())
	v.OnMessage = func(f core.Frame) {
		m := core.Decode(f)
		log.Info().Str("type", string(m.Kind())).RawJSON("frame", f).Msg("relay message")
	}
	v.Supervisor.OnGiveUp = func(err error) {
		log.Error().Err(err).Msg("relay unreachable")
		cancel()
	}

	if err := v.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		log.Fatal().Err(err).Msg("viewer stopped")
	}
	log.Info().Msg("viewer exited")
}
