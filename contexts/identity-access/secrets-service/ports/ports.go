package ports

import (
	"context"
	"time"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// APIKey stores only the SHA-256 hash of the plaintext key. The plaintext is
// returned once at creation and never persisted.
type APIKey struct {
	ID         string
	Name       string
	KeyHash    string
	CreatedAt  time.Time
	LastUsedAt *time.Time
	ExpiresAt  time.Time
	Active     bool
}

type Repository interface {
	Save(ctx context.Context, key APIKey) (APIKey, error)
	FindByHash(ctx context.Context, hash string) (APIKey, error)
	List(ctx context.Context) ([]APIKey, error)
}
