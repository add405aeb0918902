package httpadapter

import (
	"context"
	"io"
	"log/slog"

	"pulseops/contexts/incident-response/evidence-service/application"
	"pulseops/contexts/incident-response/evidence-service/ports"
	httptransport "pulseops/contexts/incident-response/evidence-service/transport/http"
)

type Handler struct {
	Service application.Service
	Logger  *slog.Logger
}

// UploadEvidenceHandler godoc
// @Summary Attach evidence to an incident
// @Description Streams the uploaded file to object storage and publishes evidence.uploaded.
// @Tags evidence
// @Accept mpfd
// @Produce json
// @Param incident_id path string true "Incident id"
// @Param X-Correlation-Id header string false "Correlation id"
// @Param file formData file true "Evidence file"
// @Success 201 {object} httptransport.EvidenceResponse
// @Failure 400 {object} httptransport.ErrorResponse
// @Failure 500 {object} httptransport.ErrorResponse
// @Router /api/incidents/{incident_id}/evidence [post]
func (h Handler) UploadEvidenceHandler(ctx context.Context, incidentID, filename, contentType string, size int64, reader io.Reader, correlationID string) (httptransport.EvidenceResponse, error) {
	evidence, err := h.Service.Upload(ctx, application.UploadInput{
		IncidentID:  incidentID,
		Filename:    filename,
		ContentType: contentType,
		SizeBytes:   size,
		Reader:      reader,
	}, correlationID)
	if err != nil {
		return httptransport.EvidenceResponse{}, err
	}
	return mapEvidence(evidence), nil
}

// ListEvidenceHandler godoc
// @Summary List evidence for an incident
// @Tags evidence
// @Produce json
// @Param incident_id path string true "Incident id"
// @Success 200 {object} httptransport.ListEvidenceResponse
// @Router /api/incidents/{incident_id}/evidence [get]
func (h Handler) ListEvidenceHandler(ctx context.Context, incidentID string) (httptransport.ListEvidenceResponse, error) {
	items, err := h.Service.ListForIncident(ctx, incidentID)
	if err != nil {
		return httptransport.ListEvidenceResponse{}, err
	}
	responses := make([]httptransport.EvidenceResponse, 0, len(items))
	for _, evidence := range items {
		responses = append(responses, mapEvidence(evidence))
	}
	return httptransport.ListEvidenceResponse{Items: responses, Total: len(responses)}, nil
}

// GetEvidenceHandler godoc
// @Summary Get evidence metadata
// @Tags evidence
// @Produce json
// @Param id path string true "Evidence id"
// @Success 200 {object} httptransport.EvidenceResponse
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/evidence/{id} [get]
func (h Handler) GetEvidenceHandler(ctx context.Context, id string) (httptransport.EvidenceResponse, error) {
	evidence, err := h.Service.GetEvidence(ctx, id)
	if err != nil {
		return httptransport.EvidenceResponse{}, err
	}
	return mapEvidence(evidence), nil
}

// DownloadEvidenceHandler godoc
// @Summary Download the stored evidence object
// @Tags evidence
// @Produce octet-stream
// @Param id path string true "Evidence id"
// @Success 200 {file} binary
// @Failure 404 {object} httptransport.ErrorResponse
// @Router /api/evidence/{id}/download [get]
func (h Handler) DownloadEvidenceHandler(ctx context.Context, id string) (ports.Evidence, io.ReadCloser, error) {
	return h.Service.Download(ctx, id)
}

func mapEvidence(evidence ports.Evidence) httptransport.EvidenceResponse {
	return httptransport.EvidenceResponse{
		ID:          evidence.ID,
		IncidentID:  evidence.IncidentID,
		Filename:    evidence.Filename,
		ContentType: evidence.ContentType,
		SizeBytes:   evidence.SizeBytes,
		UploadedAt:  evidence.UploadedAt,
	}
}
