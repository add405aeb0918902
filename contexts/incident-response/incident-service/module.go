package incidentservice

import (
	"log/slog"
	"time"

	httpadapter "pulseops/contexts/incident-response/incident-service/adapters/http"
	"pulseops/contexts/incident-response/incident-service/adapters/memory"
	postgresadapter "pulseops/contexts/incident-response/incident-service/adapters/postgres"
	"pulseops/contexts/incident-response/incident-service/application"
	"pulseops/contexts/incident-response/incident-service/application/workers"
	"pulseops/contexts/incident-response/incident-service/ports"
	"pulseops/internal/shared/events"
)

const producerName = "incident-service"

// Module is the composition surface for the incident service. Runtime wiring
// consumes Handler and Detector; Store is exposed for tests/inspection.
type Module struct {
	Handler  httpadapter.Handler
	Detector workers.StaleDetector
	Store    *memory.Store
}

type Dependencies struct {
	Repo           ports.Repository
	Bus            events.Bus
	Clock          ports.Clock
	IDGenerator    ports.IDGenerator
	Topic          string
	StaleThreshold time.Duration
	Logger         *slog.Logger
}

func NewModule(deps Dependencies) Module {
	publisher := events.Publisher{
		Producer: producerName,
		Topic:    deps.Topic,
		Bus:      deps.Bus,
		Logger:   deps.Logger,
	}

	service := application.Service{
		Repo:        deps.Repo,
		Publisher:   publisher,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}

	detector := workers.StaleDetector{
		Repo:      deps.Repo,
		Publisher: publisher,
		Clock:     deps.Clock,
		Threshold: deps.StaleThreshold,
		Logger:    deps.Logger,
	}

	return Module{
		Handler:  httpadapter.Handler{Service: service, Logger: deps.Logger},
		Detector: detector,
	}
}

// NewInMemoryModule wires the service against the in-memory repository.
func NewInMemoryModule(bus events.Bus, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:           store,
		Bus:            bus,
		Clock:          postgresadapter.SystemClock{},
		IDGenerator:    postgresadapter.UUIDGenerator{},
		StaleThreshold: 30 * time.Minute,
		Logger:         logger,
	})
	module.Store = store
	return module
}
