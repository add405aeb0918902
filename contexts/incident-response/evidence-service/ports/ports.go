package ports

import (
	"context"
	"io"
	"time"
)

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}

// Evidence is file metadata attached to an incident; the bytes live in the
// object store under ObjectKey.
type Evidence struct {
	ID          string
	IncidentID  string
	Filename    string
	ContentType string
	SizeBytes   int64
	ObjectKey   string
	UploadedAt  time.Time
}

type Repository interface {
	Save(ctx context.Context, evidence Evidence) (Evidence, error)
	FindByID(ctx context.Context, id string) (Evidence, error)
	ListByIncident(ctx context.Context, incidentID string) ([]Evidence, error)
}

// ObjectStore holds evidence payloads. Implementations: MinIO for runtime,
// in-memory for tests.
type ObjectStore interface {
	Put(ctx context.Context, key string, reader io.Reader, size int64, contentType string) error
	Get(ctx context.Context, key string) (io.ReadCloser, error)
}
