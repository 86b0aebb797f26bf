package main

import (
	"context"
	_ "embed"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/domino14/freecell/config"
	"github.com/domino14/freecell/shell"
)

var (
	GitVersion string
)

//go:embed banner.txt
var banner string

func main() {
	fmt.Println(banner)
	fmt.Println(GitVersion)

	// A missing .env is fine; the environment and flags still apply.
	if err := godotenv.Load(); err != nil && !os.IsNotExist(err) {
		fmt.Fprintln(os.Stderr, "could not load .env:", err)
	}

	cfg := &config.Config{}
	if err := cfg.Load(os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, "bad configuration:", err)
		os.Exit(1)
	}

	output := zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339}
	output.FormatLevel = func(i interface{}) string {
		return strings.ToUpper(fmt.Sprintf("| %-6s|", i))
	}
	output.FormatMessage = func(i interface{}) string {
		return fmt.Sprintf("%s", i)
	}
	output.FormatFieldName = func(i interface{}) string {
		return fmt.Sprintf("%s:", i)
	}

	var logger zerolog.Logger
	if cfg.GetBool(config.ConfigDebug) {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
		logger = zerolog.New(output).Level(zerolog.DebugLevel).With().Timestamp().Logger()
	} else {
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
		logger = zerolog.New(output).Level(zerolog.InfoLevel).With().Timestamp().Logger()
	}
	zerolog.DefaultContextLogger = &logger
	log.Logger = logger
	logger.Debug().Msg("Debug logging is on")
	log.Info().Interface("rules", cfg.Rules()).Str("store", cfg.GetString(config.ConfigStore)).
		Str("store-path", cfg.StorePath()).Msg("loaded-config")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan struct{})
	sig := make(chan os.Signal, 1)
	go func() {
		signal.Notify(sig, syscall.SIGINT, syscall.SIGTERM)
		<-sig
		log.Info().Msg("got quit signal...")
		cancel()
		close(done)
	}()

	sc, err := shell.NewShellController(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("could-not-start-shell")
	}
	go sc.Loop(ctx, sig)

	<-done
	if err := sc.Close(); err != nil {
		log.Error().Err(err).Msg("closing-store")
	}
	log.Info().Msg("exiting")
}
