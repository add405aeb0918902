package ports

import (
	"context"
	"time"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// ListFilter narrows incident listings; nil/empty fields match everything.
type ListFilter struct {
	Status   *entities.Status
	Severity string
}

// Repository is the incident storage port.
type Repository interface {
	Save(ctx context.Context, incident entities.Incident) (entities.Incident, error)
	FindByID(ctx context.Context, id string) (entities.Incident, error)
	List(ctx context.Context, filter ListFilter) ([]entities.Incident, error)
	// FindStale returns incidents whose status is in statuses, whose
	// lastActivityAt is older than threshold, and whose stale flag is unset.
	FindStale(ctx context.Context, statuses []entities.Status, threshold time.Time) ([]entities.Incident, error)
}
