package postgresadapter

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "pulseops/contexts/incident-response/evidence-service/domain/errors"
	"pulseops/contexts/incident-response/evidence-service/ports"
)

type evidenceModel struct {
	EvidenceID  string    `gorm:"column:evidence_id;primaryKey"`
	IncidentID  string    `gorm:"column:incident_id;index"`
	Filename    string    `gorm:"column:filename"`
	ContentType string    `gorm:"column:content_type"`
	SizeBytes   int64     `gorm:"column:size_bytes"`
	ObjectKey   string    `gorm:"column:object_key"`
	UploadedAt  time.Time `gorm:"column:uploaded_at;index"`
}

func (evidenceModel) TableName() string { return "evidence" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&evidenceModel{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, evidence ports.Evidence) (ports.Evidence, error) {
	model := toModel(evidence)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
	if err != nil {
		return ports.Evidence{}, err
	}
	return evidence, nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (ports.Evidence, error) {
	var model evidenceModel
	err := r.db.WithContext(ctx).First(&model, "evidence_id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.Evidence{}, domainerrors.ErrEvidenceNotFound
	}
	if err != nil {
		return ports.Evidence{}, err
	}
	return toEvidence(model), nil
}

func (r *Repository) ListByIncident(ctx context.Context, incidentID string) ([]ports.Evidence, error) {
	var models []evidenceModel
	err := r.db.WithContext(ctx).
		Where("incident_id = ?", incidentID).
		Order("uploaded_at DESC").
		Find(&models).Error
	if err != nil {
		return nil, err
	}
	items := make([]ports.Evidence, 0, len(models))
	for _, model := range models {
		items = append(items, toEvidence(model))
	}
	return items, nil
}

func toModel(evidence ports.Evidence) evidenceModel {
	return evidenceModel{
		EvidenceID:  evidence.ID,
		IncidentID:  evidence.IncidentID,
		Filename:    evidence.Filename,
		ContentType: evidence.ContentType,
		SizeBytes:   evidence.SizeBytes,
		ObjectKey:   evidence.ObjectKey,
		UploadedAt:  evidence.UploadedAt,
	}
}

func toEvidence(model evidenceModel) ports.Evidence {
	return ports.Evidence{
		ID:          model.EvidenceID,
		IncidentID:  model.IncidentID,
		Filename:    model.Filename,
		ContentType: model.ContentType,
		SizeBytes:   model.SizeBytes,
		ObjectKey:   model.ObjectKey,
		UploadedAt:  model.UploadedAt,
	}
}
