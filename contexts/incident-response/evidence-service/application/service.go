package application

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	domainerrors "pulseops/contexts/incident-response/evidence-service/domain/errors"
	"pulseops/contexts/incident-response/evidence-service/ports"
	"pulseops/internal/shared/events"
)

type Service struct {
	Repo        ports.Repository
	Objects     ports.ObjectStore
	Publisher   events.Publisher
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

type UploadInput struct {
	IncidentID  string
	Filename    string
	ContentType string
	SizeBytes   int64
	Reader      io.Reader
}

func (s Service) Upload(ctx context.Context, input UploadInput, correlationID string) (ports.Evidence, error) {
	if strings.TrimSpace(input.IncidentID) == "" || strings.TrimSpace(input.Filename) == "" {
		return ports.Evidence{}, domainerrors.ErrInvalidRequest
	}

	id, err := s.newEvidenceID(ctx)
	if err != nil {
		return ports.Evidence{}, err
	}
	objectKey := fmt.Sprintf("%s/%s-%s", input.IncidentID, id, input.Filename)

	if err := s.Objects.Put(ctx, objectKey, input.Reader, input.SizeBytes, input.ContentType); err != nil {
		return ports.Evidence{}, fmt.Errorf("store evidence object: %w", err)
	}

	evidence := ports.Evidence{
		ID:          id,
		IncidentID:  input.IncidentID,
		Filename:    input.Filename,
		ContentType: input.ContentType,
		SizeBytes:   input.SizeBytes,
		ObjectKey:   objectKey,
		UploadedAt:  s.now(),
	}
	saved, err := s.Repo.Save(ctx, evidence)
	if err != nil {
		return ports.Evidence{}, err
	}

	s.logger().Info("evidence uploaded",
		"event", "evidence_uploaded",
		"module", "incident-response/evidence-service",
		"layer", "application",
		"evidence_id", saved.ID,
		"incident_id", saved.IncidentID,
		"size_bytes", saved.SizeBytes,
		"correlation_id", correlationID,
	)

	s.Publisher.Publish(ctx, events.TypeEvidenceUploaded, saved.IncidentID, saved.ID, correlationID, map[string]any{
		"evidenceId":  saved.ID,
		"filename":    saved.Filename,
		"contentType": saved.ContentType,
		"sizeBytes":   saved.SizeBytes,
	})
	return saved, nil
}

func (s Service) ListForIncident(ctx context.Context, incidentID string) ([]ports.Evidence, error) {
	if strings.TrimSpace(incidentID) == "" {
		return nil, domainerrors.ErrInvalidRequest
	}
	return s.Repo.ListByIncident(ctx, incidentID)
}

func (s Service) GetEvidence(ctx context.Context, id string) (ports.Evidence, error) {
	return s.Repo.FindByID(ctx, id)
}

// Download returns the metadata plus a reader over the stored bytes. The
// caller owns closing the reader.
func (s Service) Download(ctx context.Context, id string) (ports.Evidence, io.ReadCloser, error) {
	evidence, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return ports.Evidence{}, nil, err
	}
	reader, err := s.Objects.Get(ctx, evidence.ObjectKey)
	if err != nil {
		return ports.Evidence{}, nil, fmt.Errorf("fetch evidence object: %w", err)
	}
	return evidence, reader, nil
}

func (s Service) newEvidenceID(ctx context.Context) (string, error) {
	raw, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return "", err
	}
	compact := strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	if len(compact) > 20 {
		compact = compact[:20]
	}
	return "EV_" + compact, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) logger() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
