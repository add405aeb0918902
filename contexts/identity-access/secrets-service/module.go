package secretsservice

import (
	"log/slog"

	httpadapter "pulseops/contexts/identity-access/secrets-service/adapters/http"
	"pulseops/contexts/identity-access/secrets-service/adapters/memory"
	postgresadapter "pulseops/contexts/identity-access/secrets-service/adapters/postgres"
	"pulseops/contexts/identity-access/secrets-service/application"
	"pulseops/contexts/identity-access/secrets-service/ports"
)

type Module struct {
	Handler httpadapter.Handler
	Store   *memory.Store
}

type Dependencies struct {
	Repo        ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

func NewModule(deps Dependencies) Module {
	service := application.Service{
		Repo:        deps.Repo,
		Clock:       deps.Clock,
		IDGenerator: deps.IDGenerator,
		Logger:      deps.Logger,
	}
	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
	}
}

func NewInMemoryModule(logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:        store,
		Clock:       postgresadapter.SystemClock{},
		IDGenerator: postgresadapter.UUIDGenerator{},
		Logger:      logger,
	})
	module.Store = store
	return module
}
