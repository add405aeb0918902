package httpadapter

import (
	"context"
	"log/slog"

	"pulseops/contexts/incident-response/activity-service/application"
	"pulseops/contexts/incident-response/activity-service/ports"
	httptransport "pulseops/contexts/incident-response/activity-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// ListActivityHandler godoc
// @Summary List activity feed entries
// @Description Recent activity, newest first; optionally scoped to one incident.
// @Tags activity
// @Produce json
// @Param incidentId query string false "Incident id filter"
// @Success 200 {object} httptransport.ListActivityResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/activity [get]
func (h Handler) ListActivityHandler(ctx context.Context, incidentID string) (httptransport.ListActivityResponse, error) {
	var (
		items []ports.ActivityItem
		err   error
	)
	if incidentID != "" {
		items, err = h.Service.ActivityForIncident(ctx, incidentID)
	} else {
		items, err = h.Service.RecentActivity(ctx)
	}
	if err != nil {
		return httptransport.ListActivityResponse{}, err
	}

	mapped := make([]httptransport.ActivityItemResponse, 0, len(items))
	for _, item := range items {
		mapped = append(mapped, httptransport.ActivityItemResponse{
			ID:         item.ID,
			EventID:    item.EventID,
			Type:       item.Type,
			IncidentID: item.IncidentID,
			OccurredAt: item.OccurredAt,
			Payload:    item.Payload,
		})
	}
	return httptransport.ListActivityResponse{Items: mapped}, nil
}
