package httpadapter

import (
	"context"
	"log/slog"

	"pulseops/contexts/incident-response/incident-service/application"
	"pulseops/contexts/incident-response/incident-service/domain/entities"
	httptransport "pulseops/contexts/incident-response/incident-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// CreateIncidentHandler godoc
// @Summary Create an incident
// @Description Creates an incident in OPEN status and publishes incident.created.
// @Tags incidents
// @Accept json
// @Produce json
// @Param X-Correlation-Id header string false "Correlation id"
// @Param request body httptransport.CreateIncidentRequest true "Incident"
// @Success 201 {object} httptransport.IncidentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/incidents [post]
func (h Handler) CreateIncidentHandler(ctx context.Context, req httptransport.CreateIncidentRequest, correlationID string) (httptransport.IncidentResponse, error) {
	incident, err := h.Service.CreateIncident(ctx, application.CreateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Assignee:    req.Assignee,
		Tags:        req.Tags,
	}, correlationID)
	if err != nil {
		return httptransport.IncidentResponse{}, err
	}
	return mapIncident(incident), nil
}

// GetIncidentHandler godoc
// @Summary Get one incident
// @Tags incidents
// @Produce json
// @Param id path string true "Incident id"
// @Success 200 {object} httptransport.IncidentResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/incidents/{id} [get]
func (h Handler) GetIncidentHandler(ctx context.Context, id string) (httptransport.IncidentResponse, error) {
	incident, err := h.Service.GetIncident(ctx, id)
	if err != nil {
		return httptransport.IncidentResponse{}, err
	}
	return mapIncident(incident), nil
}

// ListIncidentsHandler godoc
// @Summary List incidents
// @Tags incidents
// @Produce json
// @Param status query string false "Status filter"
// @Param severity query string false "Severity filter"
// @Success 200 {object} httptransport.ListIncidentsResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Router /api/incidents [get]
func (h Handler) ListIncidentsHandler(ctx context.Context, status, severity string) (httptransport.ListIncidentsResponse, error) {
	incidents, err := h.Service.ListIncidents(ctx, status, severity)
	if err != nil {
		return httptransport.ListIncidentsResponse{}, err
	}
	items := make([]httptransport.IncidentResponse, 0, len(incidents))
	for _, incident := range incidents {
		items = append(items, mapIncident(incident))
	}
	return httptransport.ListIncidentsResponse{Items: items}, nil
}

// UpdateIncidentHandler godoc
// @Summary Update incident fields
// @Description Partial update; refreshes activity and clears any stale mark.
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident id"
// @Param request body httptransport.UpdateIncidentRequest true "Fields"
// @Success 200 {object} httptransport.IncidentResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/incidents/{id} [patch]
func (h Handler) UpdateIncidentHandler(ctx context.Context, id string, req httptransport.UpdateIncidentRequest, correlationID string) (httptransport.IncidentResponse, error) {
	incident, err := h.Service.UpdateIncident(ctx, id, application.UpdateIncidentInput{
		Title:       req.Title,
		Description: req.Description,
		Severity:    req.Severity,
		Assignee:    req.Assignee,
	}, correlationID)
	if err != nil {
		return httptransport.IncidentResponse{}, err
	}
	return mapIncident(incident), nil
}

// ChangeStatusHandler godoc
// @Summary Change incident status
// @Description Applies the state machine; rejected transitions return 409 with both statuses.
// @Tags incidents
// @Accept json
// @Produce json
// @Param id path string true "Incident id"
// @Param request body httptransport.ChangeStatusRequest true "Transition"
// @Success 200 {object} httptransport.IncidentResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Failure 409 {object} httptransport.ErrorResponse
// @Router /api/incidents/{id}/status [post]
func (h Handler) ChangeStatusHandler(ctx context.Context, id string, req httptransport.ChangeStatusRequest, correlationID string) (httptransport.IncidentResponse, error) {
	incident, err := h.Service.ChangeStatus(ctx, id, application.ChangeStatusInput{
		Status:    req.Status,
		Reason:    req.Reason,
		ChangedBy: req.ChangedBy,
	}, correlationID)
	if err != nil {
		return httptransport.IncidentResponse{}, err
	}
	return mapIncident(incident), nil
}

func mapIncident(incident entities.Incident) httptransport.IncidentResponse {
	return httptransport.IncidentResponse{
		ID:              incident.ID,
		Title:           incident.Title,
		Description:     incident.Description,
		Status:          string(incident.Status),
		Severity:        incident.Severity,
		Assignee:        incident.Assignee,
		Tags:            incident.Tags,
		CreatedAt:       incident.CreatedAt,
		UpdatedAt:       incident.UpdatedAt,
		LastActivityAt:  incident.LastActivityAt,
		Stale:           incident.Stale,
		StaleDetectedAt: incident.StaleDetectedAt,
	}
}
