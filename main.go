package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/robalobadob/balda/internal/config"
	"github.com/robalobadob/balda/internal/events"
	"github.com/robalobadob/balda/internal/httpserver"
	"github.com/robalobadob/balda/internal/runner"
	"github.com/robalobadob/balda/internal/words"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("invalid configuration")
	}
	setupLogging(cfg)

	// balda token <subject> prints an operator token and exits.
	if len(os.Args) == 3 && os.Args[1] == "token" {
		tok, err := httpserver.SignOperatorToken(cfg.JWTSecret, os.Args[2], 24*time.Hour)
		if err != nil {
			log.Fatal().Err(err).Msg("sign token")
		}
		fmt.Println(tok)
		return
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	dict, err := words.Open(cfg.WordsFile, cfg.WordsMinLength)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load word list")
	}
	log.Info().Int("words", dict.Len()).Int("min_length", dict.MinLength()).Msg("word list loaded")

	stg, err := openStorage(ctx, cfg.DBPath)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	defer stg.Close()

	hub := events.NewHub()
	rn, err := runner.New(stg.store, dict,
		runner.WithRecorder(events.Multi(events.Log{}, stg.recorder, hub)),
		runner.WithDefaults(runner.Defaults{
			Limits: runner.Limits{
				MaxRounds:       cfg.DefaultMaxRounds,
				MaxAttempts:     cfg.DefaultMaxAttempts,
				StagnationLimit: cfg.DefaultStagnationLimit,
			},
			MoveTimeout: cfg.DefaultMoveTimeout,
			DailySalt:   cfg.DailySalt,
		}),
	)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create runner")
	}

	if cfg.JWTSecret == "" {
		log.Warn().Msg("JWT_SECRET is empty; operator endpoints are disabled")
	}
	srv := httpserver.New(httpserver.Deps{
		Runner:       rn,
		Store:        stg.store,
		Events:       stg.events,
		Hub:          hub,
		Dict:         dict,
		JWTSecret:    cfg.JWTSecret,
		ClientOrigin: cfg.ClientOrigin,
		DailySalt:    cfg.DailySalt,
	})

	log.Info().Str("port", cfg.Port).
		Int("max_attempts", cfg.DefaultMaxAttempts).
		Int("stagnation_limit", cfg.DefaultStagnationLimit).
		Dur("move_timeout", cfg.DefaultMoveTimeout).
		Msg("starting balda server")
	if err := srv.Start(ctx, ":"+cfg.Port); err != nil {
		log.Error().Err(err).Msg("server exited")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := rn.Shutdown(shutdownCtx); err != nil {
		log.Warn().Err(err).Msg("games still running at exit")
	}
	log.Info().Msg("bye")
}

func setupLogging(cfg config.Config) {
	if lvl, err := cfg.Level(); err == nil {
		zerolog.SetGlobalLevel(lvl)
	}
	if cfg.Console() {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.Kitchen})
	}
	zerolog.DurationFieldUnit = time.Millisecond
}
