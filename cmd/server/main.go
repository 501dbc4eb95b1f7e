package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	petname "github.com/dustinkirkland/golang-petname"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/pflag"
	"golang.org/x/time/rate"

	router "github.com/dkeye/Slate/internal/adapters/http"
	"github.com/dkeye/Slate/internal/adapters/mqtt"
	"github.com/dkeye/Slate/internal/adapters/rtc"
	sig "github.com/dkeye/Slate/internal/adapters/signal"
	"github.com/dkeye/Slate/internal/app"
	"github.com/dkeye/Slate/internal/app/broadcast"
	"github.com/dkeye/Slate/internal/app/capture"
	"github.com/dkeye/Slate/internal/app/orch"
	"github.com/dkeye/Slate/internal/canvas"
	"github.com/dkeye/Slate/internal/clock"
	"github.com/dkeye/Slate/internal/config"
	"github.com/dkeye/Slate/internal/domain"
)

func main() {
	if err := run(); err != nil {
		log.Fatal().Err(err).Msg("slate")
	}
}

func run() error {
	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	// Initialize zerolog global logger early so config.Load can use it.
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	zerolog.SetGlobalLevel(zerolog.InfoLevel)

	flags := config.Flags()
	if err := flags.Parse(os.Args[1:]); err != nil {
		if errors.Is(err, pflag.ErrHelp) {
			return nil
		}
		return err
	}

	cfg, v, err := config.Load(flags)
	if err != nil {
		return err
	}
	applyLogLevel(cfg.LogLevel)
	config.Watch(v, func(next *config.Config) { applyLogLevel(next.LogLevel) })

	publisher, err := domain.NewParticipant(petname.Generate(2, "-"))
	if err != nil {
		return fmt.Errorf("local participant: %w", err)
	}
	streamID := cfg.Capture.StreamID
	if streamID == "" {
		streamID = publisher.Name
	}

	board := canvas.NewBoard(cfg.Board.Width, cfg.Board.Height, cfg.Board.Background)
	defer func() { _ = board.Close() }()

	api, err := rtc.NewAPI()
	if err != nil {
		return err
	}

	sessions := broadcast.NewManager(
		broadcast.Config{Capture: capture.Config{
			TrackName: cfg.Capture.TrackName,
			StreamID:  streamID,
			FPS:       cfg.Capture.FPS,
			Width:     cfg.Capture.Width,
			Height:    cfg.Capture.Height,
		}},
		broadcast.Deps{
			Clock:   clock.Real(),
			Surface: board,
			Tracks:  capture.JPEGTracks(cfg.Capture.Quality),
		},
	)

	o := &orch.Orchestrator{
		Registry: app.NewRegistry(),
		Sessions: sessions,
		Board:    board,
		Policy:   app.SimplePolicy{},
	}

	ws := sig.NewSignalWSController(o, sig.Options{
		API:        api,
		ICE:        rtc.DefaultWebRTCConfig(cfg.ICE.URLs),
		ReadLimit:  cfg.ReadLimit,
		PingPeriod: cfg.PingPeriod,
		DrawRate:   rate.Limit(cfg.Draw.Rate),
		DrawBurst:  cfg.Draw.Burst,
		Publisher:  publisher,
	})

	if cfg.MQTT.Broker != "" {
		clientID := cfg.MQTT.ClientID
		if clientID == "" {
			clientID = "slate-" + publisher.Name
		}
		src, err := mqtt.Connect(mqtt.Options{Broker: cfg.MQTT.Broker, ClientID: clientID, Prefix: cfg.MQTT.Prefix}, o)
		if err != nil {
			return err
		}
		defer src.Close()
	}

	r := router.SetupRouter(ctx, cfg, o, ws)
	addr := fmt.Sprintf(":%d", cfg.Port)

	srv := &http.Server{
		Addr:    addr,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", addr).Str("publisher", publisher.Name).Msg("Slate server started")
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
	sessions.Shutdown()
	log.Info().Msg("Server exited gracefully")
	return nil
}

func applyLogLevel(level string) {
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || level == "" {
		log.Warn().Str("level", level).Msg("unknown log level, keeping current")
		return
	}
	zerolog.SetGlobalLevel(lvl)
}
