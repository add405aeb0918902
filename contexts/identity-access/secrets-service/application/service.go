package application

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log/slog"
	"strings"
	"time"

	domainerrors "pulseops/contexts/identity-access/secrets-service/domain/errors"
	"pulseops/contexts/identity-access/secrets-service/ports"
)

const (
	keyPrefix   = "pk_"
	keyValidity = 90 * 24 * time.Hour
	secretBytes = 32
)

type Service struct {
	Repo        ports.Repository
	Clock       ports.Clock
	IDGenerator ports.IDGenerator
	Logger      *slog.Logger
}

// CreatedKey carries the plaintext exactly once. Only the hash survives.
type CreatedKey struct {
	Key       ports.APIKey
	Plaintext string
}

func (s Service) CreateKey(ctx context.Context, name string) (CreatedKey, error) {
	if strings.TrimSpace(name) == "" {
		return CreatedKey{}, domainerrors.ErrInvalidRequest
	}

	plaintext, err := newPlaintextKey()
	if err != nil {
		return CreatedKey{}, fmt.Errorf("generate api key: %w", err)
	}

	id, err := s.newKeyID(ctx)
	if err != nil {
		return CreatedKey{}, err
	}

	now := s.now()
	key := ports.APIKey{
		ID:        id,
		Name:      strings.TrimSpace(name),
		KeyHash:   HashKey(plaintext),
		CreatedAt: now,
		ExpiresAt: now.Add(keyValidity),
		Active:    true,
	}

	saved, err := s.Repo.Save(ctx, key)
	if err != nil {
		return CreatedKey{}, fmt.Errorf("save api key: %w", err)
	}

	s.log().InfoContext(ctx, "api_key_created",
		"module", "secrets-service",
		"layer", "application",
		"key_id", saved.ID,
	)
	return CreatedKey{Key: saved, Plaintext: plaintext}, nil
}

func (s Service) ListKeys(ctx context.Context) ([]ports.APIKey, error) {
	return s.Repo.List(ctx)
}

// VerifyKey is fail-closed: any reason the key cannot be positively validated
// yields ErrKeyInvalid.
func (s Service) VerifyKey(ctx context.Context, plaintext string) (ports.APIKey, error) {
	if strings.TrimSpace(plaintext) == "" {
		return ports.APIKey{}, domainerrors.ErrKeyInvalid
	}

	key, err := s.Repo.FindByHash(ctx, HashKey(plaintext))
	if err != nil {
		return ports.APIKey{}, domainerrors.ErrKeyInvalid
	}

	now := s.now()
	if !key.Active || now.After(key.ExpiresAt) {
		return ports.APIKey{}, domainerrors.ErrKeyInvalid
	}

	key.LastUsedAt = &now
	if _, err := s.Repo.Save(ctx, key); err != nil {
		// Verification already succeeded; a failed last-used update is not
		// a reason to reject the caller.
		s.log().WarnContext(ctx, "api_key_touch_failed",
			"module", "secrets-service",
			"layer", "application",
			"key_id", key.ID,
			"error", err,
		)
	}
	return key, nil
}

// HashKey is the canonical plaintext-to-storage mapping.
func HashKey(plaintext string) string {
	sum := sha256.Sum256([]byte(plaintext))
	return hex.EncodeToString(sum[:])
}

func newPlaintextKey() (string, error) {
	secret := make([]byte, secretBytes)
	if _, err := rand.Read(secret); err != nil {
		return "", err
	}
	return keyPrefix + base64.RawURLEncoding.EncodeToString(secret), nil
}

func (s Service) newKeyID(ctx context.Context) (string, error) {
	raw, err := s.IDGenerator.NewID(ctx)
	if err != nil {
		return "", err
	}
	compact := strings.ToUpper(strings.ReplaceAll(raw, "-", ""))
	if len(compact) > 20 {
		compact = compact[:20]
	}
	return "KEY_" + compact, nil
}

func (s Service) now() time.Time {
	if s.Clock == nil {
		return time.Now().UTC()
	}
	return s.Clock.Now().UTC()
}

func (s Service) log() *slog.Logger {
	if s.Logger == nil {
		return slog.Default()
	}
	return s.Logger
}
