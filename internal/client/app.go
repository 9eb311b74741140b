package client

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/MKhiriev/go-pair-link/internal/adapter"
	"github.com/MKhiriev/go-pair-link/internal/command"
	"github.com/MKhiriev/go-pair-link/internal/config"
	"github.com/MKhiriev/go-pair-link/internal/logger"
	"github.com/MKhiriev/go-pair-link/internal/service"
	"github.com/MKhiriev/go-pair-link/internal/statesync"
	"github.com/MKhiriev/go-pair-link/internal/store"
	"github.com/MKhiriev/go-pair-link/internal/transport"
	"github.com/MKhiriev/go-pair-link/internal/utils"
	"github.com/MKhiriev/go-pair-link/models"
)

// App is one paired device.
type App struct {
	storages     *store.DeviceStorages
	transport    *transport.Client
	queue        *statesync.RetryQueue
	middleware   *statesync.Middleware
	orchestrator *service.Orchestrator
	registry     *command.Registry
	dispatcher   *command.Dispatcher
	ids          *utils.UUIDGenerator
	logger       *logger.Logger

	closeOnce sync.Once
	closeErr  error
}

// NewApp wires a device for cfg. extra registers application commands next
// to the built-in ones.
func NewApp(ctx context.Context, cfg config.DeviceConfig, log *logger.Logger, extra ...command.Definition) (*App, error) {
	storages, err := store.NewDeviceStorages(ctx, cfg, log)
	if err != nil {
		return nil, fmt.Errorf("error creating storages: %w", err)
	}

	ids := utils.NewUUIDGenerator()
	registrar := adapter.NewHTTPRegistrationAdapter(cfg.Transport.ConnectTimeout, log)
	tr := transport.NewClient(registrar, ids, log,
		transport.WithDedup(cfg.Transport.DedupCapacity, cfg.Transport.DedupTTL),
	)

	sender := service.NewSyncSender(tr)
	queue := statesync.NewRetryQueue(sender, statesync.RetryQueueConfig{
		Delay:      cfg.Sync.RetryDelay,
		MaxRetries: cfg.Sync.MaxRetries,
		Capacity:   cfg.Sync.QueueCapacity,
	}, log)
	middleware := statesync.NewMiddleware(storages.State, sender, queue, log)
	orchestrator := service.NewOrchestrator(cfg, tr, middleware, storages.History, log)

	registry, err := command.NewRegistry(append(orchestrator.Definitions(), extra...)...)
	if err != nil {
		queue.Close()
		tr.Shutdown()
		_ = storages.Close()
		return nil, fmt.Errorf("error registering commands: %w", err)
	}

	pipeline := command.NewPipeline(
		command.NewTagConverter(orchestrator),
		command.NewRoleRedirectConverter(orchestrator, ids, log),
	)
	dispatcher := command.NewDispatcher(registry, pipeline, ids, log)
	orchestrator.SetDispatcher(dispatcher)

	return &App{
		storages:     storages,
		transport:    tr,
		queue:        queue,
		middleware:   middleware,
		orchestrator: orchestrator,
		registry:     registry,
		dispatcher:   dispatcher,
		ids:          ids,
		logger:       log.WithComponent("client/app"),
	}, nil
}

// Register adds application commands after construction.
func (a *App) Register(defs ...command.Definition) error {
	for _, def := range defs {
		if err := a.registry.Register(def); err != nil {
			return err
		}
	}
	return nil
}

// Start subscribes the orchestrator to the transport and, when the role's
// preconditions already hold, connects. A failed attempt is retried in the
// background, so only the precondition verdict is reported.
func (a *App) Start(ctx context.Context) error {
	a.orchestrator.Start(ctx)

	err := a.orchestrator.ConnectPeer(ctx, service.ConnectTarget{})
	switch {
	case err == nil:
	case errors.Is(err, service.ErrPrecondition):
		a.logger.Info().Str("func", "*App.Start").Err(err).Msg("waiting for a connect command")
	case errors.Is(err, service.ErrOrchestratorStopped):
		return err
	default:
		a.logger.Warn().Str("func", "*App.Start").Err(err).Msg("first connect attempt failed, retrying in background")
	}
	return nil
}

// Run starts the device and blocks until ctx is done, then releases it.
func (a *App) Run(ctx context.Context) error {
	if err := a.Start(ctx); err != nil {
		return err
	}

	<-ctx.Done()
	a.logger.Info().Str("func", "*App.Run").Msg("shutting down")

	return a.Close()
}

// Dispatch issues cmd through the conversion pipeline.
func (a *App) Dispatch(ctx context.Context, cmd models.Command) error {
	return a.dispatcher.Dispatch(ctx, cmd)
}

// Status returns the pairing read model.
func (a *App) Status(ctx context.Context) models.PairStatus {
	return a.orchestrator.Status(ctx)
}

// State returns the local copy of one state key.
func (a *App) State(key string) (models.Properties, error) {
	return a.middleware.Store().Get(key)
}

// Close stops the orchestrator and releases transport and storages. Only the
// first call has an effect.
func (a *App) Close() error {
	a.closeOnce.Do(func() {
		a.orchestrator.Stop()
		a.queue.Close()
		a.transport.Shutdown()
		a.closeErr = a.storages.Close()
	})
	return a.closeErr
}
