package activityservice

import (
	"log/slog"
	"time"

	httpadapter "pulseops/contexts/incident-response/activity-service/adapters/http"
	"pulseops/contexts/incident-response/activity-service/adapters/memory"
	"pulseops/contexts/incident-response/activity-service/application"
	"pulseops/contexts/incident-response/activity-service/ports"
)

// Module is the composition surface for the activity service: the feed query
// handler, the bus consumer, and the broadcast hub serving live observers.
type Module struct {
	Handler httpadapter.Handler
	Router  application.Router
	Hub     *application.Hub
	Store   *memory.Store
}

type Dependencies struct {
	Repo              ports.Repository
	Subscriber        ports.EventSubscriber
	IDGenerator       ports.IDGenerator
	DeadLetter        ports.DeadLetter
	Topic             string
	ConsumerGroup     string
	StreamBuffer      int
	HeartbeatInterval time.Duration
	Logger            *slog.Logger
}

func NewModule(deps Dependencies) Module {
	hub := application.NewHub(deps.StreamBuffer, deps.HeartbeatInterval, deps.Logger)

	router := application.Router{
		Repo:          deps.Repo,
		Hub:           hub,
		Subscriber:    deps.Subscriber,
		IDGenerator:   deps.IDGenerator,
		DeadLetter:    deps.DeadLetter,
		Topic:         deps.Topic,
		ConsumerGroup: deps.ConsumerGroup,
		Logger:        deps.Logger,
	}

	service := application.Service{Repo: deps.Repo, Logger: deps.Logger}

	return Module{
		Handler: httpadapter.Handler{Service: service, Logger: deps.Logger},
		Router:  router,
		Hub:     hub,
	}
}

// NewInMemoryModule wires the service against the in-memory repository.
func NewInMemoryModule(subscriber ports.EventSubscriber, idGen ports.IDGenerator, logger *slog.Logger) Module {
	store := memory.NewStore()
	module := NewModule(Dependencies{
		Repo:              store,
		Subscriber:        subscriber,
		IDGenerator:       idGen,
		StreamBuffer:      64,
		HeartbeatInterval: 30 * time.Second,
		Logger:            logger,
	})
	module.Store = store
	return module
}
