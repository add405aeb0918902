package postgresadapter

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	domainerrors "pulseops/contexts/identity-access/secrets-service/domain/errors"
	"pulseops/contexts/identity-access/secrets-service/ports"
)

type apiKeyModel struct {
	KeyID      string     `gorm:"column:key_id;primaryKey"`
	Name       string     `gorm:"column:name"`
	KeyHash    string     `gorm:"column:key_hash;uniqueIndex"`
	CreatedAt  time.Time  `gorm:"column:created_at"`
	LastUsedAt *time.Time `gorm:"column:last_used_at"`
	ExpiresAt  time.Time  `gorm:"column:expires_at"`
	Active     bool       `gorm:"column:active"`
}

func (apiKeyModel) TableName() string { return "api_keys" }

type Repository struct {
	db *gorm.DB
}

func NewRepository(db *gorm.DB) (*Repository, error) {
	if err := db.AutoMigrate(&apiKeyModel{}); err != nil {
		return nil, err
	}
	return &Repository{db: db}, nil
}

func (r *Repository) Save(ctx context.Context, key ports.APIKey) (ports.APIKey, error) {
	model := toModel(key)
	err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{UpdateAll: true}).
		Create(&model).Error
	if err != nil {
		return ports.APIKey{}, err
	}
	return key, nil
}

func (r *Repository) FindByHash(ctx context.Context, hash string) (ports.APIKey, error) {
	var model apiKeyModel
	err := r.db.WithContext(ctx).First(&model, "key_hash = ?", hash).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ports.APIKey{}, domainerrors.ErrKeyNotFound
	}
	if err != nil {
		return ports.APIKey{}, err
	}
	return toAPIKey(model), nil
}

func (r *Repository) List(ctx context.Context) ([]ports.APIKey, error) {
	var models []apiKeyModel
	err := r.db.WithContext(ctx).Order("created_at DESC").Find(&models).Error
	if err != nil {
		return nil, err
	}
	keys := make([]ports.APIKey, 0, len(models))
	for _, model := range models {
		keys = append(keys, toAPIKey(model))
	}
	return keys, nil
}

func toModel(key ports.APIKey) apiKeyModel {
	return apiKeyModel{
		KeyID:      key.ID,
		Name:       key.Name,
		KeyHash:    key.KeyHash,
		CreatedAt:  key.CreatedAt,
		LastUsedAt: key.LastUsedAt,
		ExpiresAt:  key.ExpiresAt,
		Active:     key.Active,
	}
}

func toAPIKey(model apiKeyModel) ports.APIKey {
	return ports.APIKey{
		ID:         model.KeyID,
		Name:       model.Name,
		KeyHash:    model.KeyHash,
		CreatedAt:  model.CreatedAt,
		LastUsedAt: model.LastUsedAt,
		ExpiresAt:  model.ExpiresAt,
		Active:     model.Active,
	}
}
