package postgresadapter

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5/pgconn"
	"gorm.io/gorm"

	"pulseops/contexts/incident-response/activity-service/ports"
)

// uniqueViolation is the postgres error code for a unique-constraint breach.
const uniqueViolation = "23505"

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := db.AutoMigrate(&activityModel{}); err != nil {
		return nil, err
	}
	return &Repository{db: db, logger: logger}, nil
}

type activityModel struct {
	ActivityID string    `gorm:"primaryKey;column:activity_id"`
	EventID    string    `gorm:"column:event_id;uniqueIndex"`
	EventType  string    `gorm:"column:event_type;index"`
	IncidentID string    `gorm:"column:incident_id;index"`
	OccurredAt time.Time `gorm:"column:occurred_at;index"`
	Payload    []byte    `gorm:"column:payload"`
}

func (activityModel) TableName() string { return "activity" }

func (r *Repository) Insert(ctx context.Context, item ports.ActivityItem) (bool, error) {
	payload, err := json.Marshal(item.Payload)
	if err != nil {
		return false, err
	}

	row := activityModel{
		ActivityID: item.ID,
		EventID:    item.EventID,
		EventType:  item.Type,
		IncidentID: item.IncidentID,
		OccurredAt: item.OccurredAt,
		Payload:    payload,
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (r *Repository) ListRecent(ctx context.Context, limit int) ([]ports.ActivityItem, error) {
	var rows []activityModel
	err := r.db.WithContext(ctx).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

func (r *Repository) ListByIncident(ctx context.Context, incidentID string, limit int) ([]ports.ActivityItem, error) {
	var rows []activityModel
	err := r.db.WithContext(ctx).
		Where("incident_id = ?", incidentID).
		Order("occurred_at DESC").
		Limit(limit).
		Find(&rows).
		Error
	if err != nil {
		return nil, err
	}
	return toItems(rows), nil
}

func toItems(rows []activityModel) []ports.ActivityItem {
	items := make([]ports.ActivityItem, 0, len(rows))
	for _, row := range rows {
		var payload map[string]any
		_ = json.Unmarshal(row.Payload, &payload)
		items = append(items, ports.ActivityItem{
			ID:         row.ActivityID,
			EventID:    row.EventID,
			Type:       row.EventType,
			IncidentID: row.IncidentID,
			OccurredAt: row.OccurredAt,
			Payload:    payload,
		})
	}
	return items
}
