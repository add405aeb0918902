package evidenceservice

import (
	"log/slog"

	httpadapter "pulseops/contexts/incident-response/evidence-service/adapters/http"
	"pulseops/contexts/incident-response/evidence-service/adapters/memory"
	postgresadapter "pulseops/contexts/incident-response/evidence-service/adapters/postgres"
	"pulseops/contexts/incident-response/evidence-service/application"
	"pulseops/contexts/incident-response/evidence-service/ports"
	"pulseops/internal/shared/events"
)

const producerName = "evidence-service"

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo        ports.Repository
	Objects     ports.ObjectStore
	Bus         events.Bus
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Topic       string
	Logger      *slog.Logger
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
		Objects:     deps.Objects,
		Publisher:   publisher,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}

	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

// NewInMemoryModule keeps both metadata and objects in memory.
func NewInMemoryModule(bus events.Bus, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:        store,
		Objects:     store,
		Bus:         bus,
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Logger:      logger,
	})
	module.Store = store
	return module
}
