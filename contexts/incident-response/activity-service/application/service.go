package application

import (
	"context"
	"log/slog"
	"strings"

	domainerrors "pulseops/contexts/incident-response/activity-service/domain/errors"
	"pulseops/contexts/incident-response/activity-service/ports"
)

const feedLimit = 50

// Service answers activity feed queries.
type Service struct {
	Repo   ports.Repository
	Logger *slog.Logger
}

func (s Service) RecentActivity(ctx context.Context) ([]ports.ActivityItem, error) {
	return s.Repo.ListRecent(ctx, feedLimit)
}

func (s Service) ActivityForIncident(ctx context.Context, incidentID string) ([]ports.ActivityItem, error) {
	if strings.TrimSpace(incidentID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListByIncident(ctx, incidentID, feedLimit)
}
