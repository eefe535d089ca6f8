// @title           KAIZEN Online Session API
// @version         1.0
// @host            localhost:8080
// @schemes         http https
// @BasePath        /api/v1
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"kaizen-online/internal/api"
	"kaizen-online/internal/config"
	"kaizen-online/internal/database"
	"kaizen-online/internal/logging"
	"kaizen-online/internal/session"
	"kaizen-online/internal/storage"
	"kaizen-online/internal/timer"
	"kaizen-online/internal/websocket"

	_ "kaizen-online/docs"
)

const shutdownTimeout = 10 * time.Second

func main() {
	cfg, err := config.Load()
	if err != nil {
		boot := logging.New("info", false)
		boot.Fatal().Err(err).Msg("cannot load configuration")
	}

	log := logging.New(cfg.Log.Level, cfg.Log.Pretty)
	if cfg.JWT.Secret == "" {
		log.Fatal().Msg("jwt.secret is not set")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dbpool, err := database.Connect(ctx, cfg.DB.Source)
	if err != nil {
		log.Fatal().Err(err).Msg("cannot connect to database")
	}
	defer dbpool.Close()
	log.Info().Msg("connected to database")

	store := database.NewStore(dbpool)

	journal := database.NewJournal(store, cfg.Journal.Buffer, logging.Component(log, "journal"))
	journal.Start()
	defer journal.Close()

	kv, closeKV, err := storage.Open(ctx, cfg.Storage)
	if err != nil {
		log.Fatal().Err(err).Str("driver", cfg.Storage.Driver).Msg("cannot open session storage")
	}
	defer closeKV()
	log.Info().Str("driver", cfg.Storage.Driver).Msg("session storage ready")

	// The loop and the hub outlive the signal context so shutdown can still
	// reach them.
	background, cancelBackground := context.WithCancel(context.Background())
	defer cancelBackground()

	loop := timer.NewLoop(logging.Component(log, "loop"), 256)
	go loop.Run(background)

	wsHub := websocket.NewHub(logging.Component(log, "websocket"))
	go wsHub.Run(background)

	registry, err := session.NewRegistry(kv, loop, cfg.Session, logging.Component(log, "session"))
	if err != nil {
		log.Fatal().Err(err).Msg("cannot create session registry")
	}

	server := api.NewServer(cfg, loop, registry, store, journal, wsHub, logging.Component(log, "api"))
	if err := server.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("cannot start session service")
	}

	httpServer := &http.Server{
		Addr:              cfg.HTTP.Addr,
		Handler:           server.Routes(),
		ReadHeaderTimeout: 10 * time.Second,
	}

	go func() {
		log.Info().Str("addr", cfg.HTTP.Addr).Msg("starting http server")
		if err := httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Error().Err(err).Msg("http server failed")
			stop()
		}
	}()

	<-ctx.Done()
	log.Info().Msg("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("http shutdown")
	}
	if err := server.Stop(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("session service shutdown")
	}
	// The journal closes in a deferred call; no loop task may still be
	// recording into it.
	loop.Stop()
	loop.Wait()
}
