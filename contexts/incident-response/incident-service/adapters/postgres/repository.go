package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"pulseops/contexts/incident-response/incident-service/domain/entities"
	domainerrors "pulseops/contexts/incident-response/incident-service/domain/errors"
	"pulseops/contexts/incident-response/incident-service/ports"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&incidentModel{}); err != nil {
		return nil, err
	}
	return &Repository{db: db, logger: logger}, nil
}

type incidentModel struct {
	IncidentID      string `gorm:"primaryKey;column:incident_id"`
	Title           string `gorm:"column:title"`
	Description     string `gorm:"column:description"`
	Status          string `gorm:"column:status;index"`
	Severity        string `gorm:"column:severity;index"`
	Assignee        string `gorm:"column:assignee"`
	Tags            string `gorm:"column:tags"`
	CreatedAt       time.Time
	UpdatedAt       time.Time
	LastActivityAt  time.Time  `gorm:"column:last_activity_at;index"`
	Stale           bool       `gorm:"column:stale"`
	StaleDetectedAt *time.Time `gorm:"column:stale_detected_at"`
}

func (incidentModel) TableName() string { return "incidents" }

func (r *Repository) Save(ctx context.Context, incident entities.Incident) (entities.Incident, error) {
	row := toModel(incident)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "incident_id"}},
			UpdateAll: true,
		}).
		Create(&row).
		Error
	if err != nil {
		return entities.Incident{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) FindByID(ctx context.Context, id string) (entities.Incident, error) {
	var row incidentModel
	err := r.db.WithContext(ctx).
		Where("incident_id = ?", id).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Incident{}, domainerrors.ErrIncidentNotFound
		}
		return entities.Incident{}, err
	}
	return row.toEntity(), nil
}

func (r *Repository) List(ctx context.Context, filter ports.ListFilter) ([]entities.Incident, error) {
	tx := r.db.WithContext(ctx).Model(&incidentModel{})
	if filter.Status != nil {
		tx = tx.Where("status = ?", string(*filter.Status))
	}
	if filter.Severity != "" {
		tx = tx.Where("severity = ?", filter.Severity)
	}

	var rows []incidentModel
	if err := tx.Order("created_at DESC").Find(&rows).Error; err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func (r *Repository) FindStale(ctx context.Context, statuses []entities.Status, threshold time.Time) ([]entities.Incident, error) {
	values := make([]string, 0, len(statuses))
	for _, status := range statuses {
		values = append(values, string(status))
	}

	var rows []incidentModel
	err := r.db.WithContext(ctx).
		Where("status IN ?", values).
		Where("last_activity_at < ?", threshold).
		Where("stale = ?", false).
		Order("last_activity_at ASC").
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return toEntities(rows), nil
}

func toModel(incident entities.Incident) incidentModel {
	return incidentModel{
		IncidentID:      incident.ID,
		Title:           incident.Title,
		Description:     incident.Description,
		Status:          string(incident.Status),
		Severity:        incident.Severity,
		Assignee:        incident.Assignee,
		Tags:            strings.Join(incident.Tags, ","),
		CreatedAt:       incident.CreatedAt,
		UpdatedAt:       incident.UpdatedAt,
		LastActivityAt:  incident.LastActivityAt,
		Stale:           incident.Stale,
		StaleDetectedAt: incident.StaleDetectedAt,
	}
}

func (m incidentModel) toEntity() entities.Incident {
	var tags []string
	if m.Tags != "" {
		tags = strings.Split(m.Tags, ",")
	}
	return entities.Incident{
		ID:              m.IncidentID,
		Title:           m.Title,
		Description:     m.Description,
		Status:          entities.Status(m.Status),
		Severity:        m.Severity,
		Assignee:        m.Assignee,
		Tags:            tags,
		CreatedAt:       m.CreatedAt,
		UpdatedAt:       m.UpdatedAt,
		LastActivityAt:  m.LastActivityAt,
		Stale:           m.Stale,
		StaleDetectedAt: m.StaleDetectedAt,
	}
}

func toEntities(rows []incidentModel) []entities.Incident {
	items := make([]entities.Incident, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}
