package main

import (
	"context"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/snowzach/rotatefilehook"

	"github.com/vancomm/sweeper/internal/clock"
	"github.com/vancomm/sweeper/internal/config"
	"github.com/vancomm/sweeper/internal/mines"
)

var log = logrus.New()

func setupLogging() error {
	log.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)
	if config.Development() {
		log.SetLevel(logrus.DebugLevel)
	}

	if filename, ok := os.LookupEnv("SWEEPER_LOG_FILE"); ok && filename != "" {
		hook, err := rotatefilehook.NewRotateFileHook(rotatefilehook.RotateFileConfig{
			Filename:   filename,
			MaxSize:    5,
			MaxBackups: 3,
			MaxAge:     7,
			Level:      logrus.DebugLevel,
			Formatter:  &logrus.JSONFormatter{TimestampFormat: time.RFC3339},
		})
		if err != nil {
			return fmt.Errorf("unable to open log file: %w", err)
		}
		log.AddHook(hook)
	}

	mines.Log = slog.New(slog.NewTextHandler(
		log.WriterLevel(logrus.DebugLevel),
		&slog.HandlerOptions{Level: slog.LevelDebug},
	))

	return nil
}

func gameParams() (*mines.GameParams, error) {
	defaults, err := config.NewGameParams()
	if err != nil {
		return nil, err
	}

	var (
		params mines.GameParams
		seed   string
	)
	flag.IntVar(&params.Rows, "rows", defaults.Rows, "number of rows")
	flag.IntVar(&params.Columns, "columns", defaults.Columns, "number of columns")
	flag.IntVar(&params.MineCount, "mines", defaults.MineCount, "number of mines")
	flag.StringVar(&seed, "seed", "", `board as "rows:columns:mines", overrides the other flags`)
	flag.Parse()

	if seed != "" {
		return mines.ParseSeed(seed)
	}
	if err := params.Validate(); err != nil {
		return nil, err
	}
	return &params, nil
}

func main() {
	if err := setupLogging(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	params, err := gameParams()
	if err != nil {
		log.WithError(err).Error("invalid game params")
		os.Exit(2)
	}

	ctx, cancel := signal.NotifyContext(context.Background(), os.Interrupt)
	defer cancel()

	game, err := mines.NewGame(*params, mines.WithScheduler(clock.NewWall(ctx)))
	if err != nil {
		log.WithError(err).Error("unable to start a game")
		os.Exit(1)
	}
	defer game.Close()

	log.WithFields(logrus.Fields{
		"params": params.String(),
	}).Debug("game started")

	if err := newTerminal(os.Stdin, os.Stdout, game).run(ctx); err != nil {
		log.WithError(err).Error("terminal closed")
		os.Exit(1)
	}
}
