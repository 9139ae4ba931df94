package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/battleship/apps/go-server/internal/config"
	"github.com/robalobadob/battleship/apps/go-server/internal/httpserver"
	"github.com/robalobadob/battleship/apps/go-server/internal/session"
	"github.com/robalobadob/battleship/apps/go-server/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("load config")
	}
	setupLogging(cfg)

	backend, err := store.Open(store.Options{
		Driver:      cfg.SessionStore,
		SQLitePath:  cfg.SQLitePath,
		PostgresDSN: cfg.PostgresDSN,
	})
	if err != nil {
		log.Fatal().Err(err).Str("store", cfg.SessionStore).Msg("open session store")
	}
	defer backend.Close()

	rng, err := session.NewRand(cfg.RandomSeed)
	if err != nil {
		log.Fatal().Err(err).Msg("seed random source")
	}
	mgr, err := session.NewManager(session.Options{
		Store:   backend,
		Results: backend,
		Rand:    rng,
	})
	if err != nil {
		log.Fatal().Err(err).Msg("session manager")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go mgr.Run(ctx, cfg.SweepInterval, cfg.SessionIdleTTL)

	srv := httpserver.New(mgr, backend, httpserver.Options{
		ClientOrigin: cfg.ClientOrigin,
		CookieName:   cfg.CookieName,
		Secret:       []byte(cfg.SessionSecret),
		CookieTTL:    cfg.SessionIdleTTL,
		Secure:       cfg.Production(),
	})
	hs := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           srv.Router(),
		ReadHeaderTimeout: 5 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := hs.Shutdown(shutdownCtx); err != nil {
			log.Warn().Err(err).Msg("shutdown")
		}
	}()

	log.Info().Str("port", cfg.Port).Str("store", cfg.SessionStore).Msg("starting go-server")
	if err := hs.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		log.Error().Err(err).Msg("server exited")
		return
	}
	log.Info().Msg("server stopped")
}

// setupLogging applies LOG_LEVEL and LOG_FORMAT to the global logger.
func setupLogging(cfg config.Config) {
	if lvl, err := zerolog.ParseLevel(cfg.LogLevel); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.LogFormat == "console" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
}
