package main

import (
	"context"
	"fmt"

	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/handler"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/relay"
	"github.com/MKhiriev/go-pair-link/internal/server"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/workers"
)

var (
	buildVersion string
	buildDate    string
	buildCommit  string
)

func main() {
	printBuildInfo()

	cfg, err := config.GetRelayConfig()
	if err != nil {
		logger.NewLogger("go-pair-relay").Fatal().Err(err).Msg("error getting configs")
	}

	log := logger.NewFileLogger("go-pair-relay", cfg.LogFile)
	log.Debug().Any("config", cfg).Msg("received configs")

	storages, err := store.NewRelayStorages(context.Background(), cfg.Storage.DB.DSN, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating storages")
	}
	defer storages.Close()

	services := relay.NewServices(storages, cfg.Relay, log)

	handlers, err := handler.NewHandlers(services, cfg.Relay, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating handlers")
	}

	background := workers.NewWorkers(
		workers.NewTickerWorker("relay/heartbeat", cfg.Relay.HeartbeatInterval, services.Hub.Heartbeat, log),
	)

	srv, err := server.NewServer(handlers, background, services.Hub, cfg.Relay, log)
	if err != nil {
		log.Fatal().Err(err).Msg("error creating server")
	}

	srv.RunServer()
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

	fmt.Printf("Build version: %s\n", buildVersion)
	fmt.Printf("Build date: %s\n", buildDate)
	fmt.Printf("Build commit: %s\n", buildCommit)
}
