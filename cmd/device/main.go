package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/MKhiriev/go-pair-link/internal/client"
	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetDeviceConfig()
	if err != nil {
		logger.NewLogger("go-pair-device").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("go-pair-device", cfg.LogFile)
	log.Debug().Any("config", cfg).Msg("received configs")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	app, err := client.NewApp(ctx, *cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("init device app error")
	}

	go func() {
		if err := app.RunConsole(ctx, os.Stdin, os.Stdout); err != nil {
			log.Warn().Err(err).Msg("console stopped")
		}
	}()

	if err = app.Run(ctx); err != nil {
		log.Fatal().Err(err).Msg("device run error")
	}
}

func printBuildInfo() {
	if buildVersion == "" {
		buildVersion = "N/A"
	}
	if buildDate == "" {
		buildDate = "N/A"
	}
	if buildCommit == "" {
		buildCommit = "N/A"
	}

	fmt.Fprintf(os.Stderr, "Build version: %s\n", buildVersion)
	fmt.Fprintf(os.Stderr, "Build date: %s\n", buildDate)
	fmt.Fprintf(os.Stderr, "Build commit: %s\n", buildCommit)
}
