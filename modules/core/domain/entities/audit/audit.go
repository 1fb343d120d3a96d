package audit

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Entry records a rejected cross-tenant access attempt. These are
// security-relevant events and are persisted outside the tenant partition.
type Entry struct {
	ID              int64
	AttemptedTenant uuid.UUID
	ActualTenant    uuid.UUID
	Operation       string
	Actor           string
	Path            string
	CreatedAt       time.Time
}

type Repository interface {
	Record(ctx context.Context, e Entry) error
	// ListRecent is a privileged administrative read.
	ListRecent(ctx context.Context, limit int) ([]Entry, error)
}
