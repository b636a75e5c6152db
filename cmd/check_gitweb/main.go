package main

import (
	"context"
	"os"
	"os/signal"
	"syscall"

	"gitwebsync/internal/cli"
	"gitwebsync/internal/logger"

	"github.com/rs/zerolog/log"
)

func main() {
	err := logger.InitialiseLogger()
	if err != nil {
		log.Fatal().Err(err).Msg("Error parsing log level")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	exitCode := cli.Execute(ctx, os.Args[1:], os.Stdout)
	stop()

	os.Exit(exitCode)
}
