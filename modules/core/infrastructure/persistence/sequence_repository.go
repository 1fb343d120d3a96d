package persistence

import (
	"context"
	"errors"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/sethvargo/go-retry"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/metrics"
)

// nextSequenceQuery is a single atomic increment-and-read. A "SELECT max,
// add one, INSERT" pattern is explicitly not equivalent: two concurrent
// registrations would read the same max and mint duplicate UIDs.
const nextSequenceQuery = `
	INSERT INTO sequences (tenant_id, kind, last_value, updated_at)
	VALUES ($1, $2, 1, now())
	ON CONFLICT (tenant_id, kind)
	DO UPDATE SET last_value = sequences.last_value + 1, updated_at = now()
	RETURNING last_value
`

// registerUIDQuery claims a display UID with DO NOTHING rather than letting
// a unique violation surface: a raised 23505 would abort the surrounding
// request transaction and the collision retry could never run on it.
// Zero rows affected means the UID is already claimed.
const registerUIDQuery = `
	INSERT INTO uids (display, tenant_id, kind, seq, created_at)
	VALUES ($1, $2, $3, $4, now())
	ON CONFLICT (display) DO NOTHING
`

type SequenceRepository struct{}

func NewSequenceRepository() sequence.Repository {
	return &SequenceRepository{}
}

func (r *SequenceRepository) Next(ctx context.Context, tenantID uuid.UUID, kind sequence.Kind) (int64, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, gerrors.Wrap(err, "failed to get transaction")
	}

	var value int64
	backoff := retry.WithMaxRetries(3, retry.NewExponential(50*time.Millisecond))
	err = retry.Do(ctx, backoff, func(ctx context.Context) error {
		if err := tx.QueryRow(ctx, nextSequenceQuery, tenantID.String(), string(kind)).Scan(&value); err != nil {
			if isContention(err) {
				metrics.SequenceRetries.Inc()
				return retry.RetryableError(err)
			}
			return err
		}
		return nil
	})
	if err != nil {
		return 0, &sequence.AllocationError{TenantID: tenantID, Kind: kind, Err: err}
	}

	metrics.SequenceAllocations.WithLabelValues(string(kind)).Inc()
	return value, nil
}

func (r *SequenceRepository) Register(ctx context.Context, uid sequence.UID) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return gerrors.Wrap(err, "failed to get transaction")
	}

	tag, err := tx.Exec(ctx, registerUIDQuery, uid.Display, uid.TenantID.String(), string(uid.Kind), uid.Sequence)
	if err != nil {
		return gerrors.Wrap(err, "failed to register uid")
	}
	if tag.RowsAffected() == 0 {
		return sequence.ErrUIDTaken
	}
	return nil
}

// ExistsCrossTenant intentionally queries without a tenant predicate: UIDs
// are opaque lookup keys in URLs and must be unique across the whole system.
func (r *SequenceRepository) ExistsCrossTenant(ctx context.Context, display string) (bool, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return false, gerrors.Wrap(err, "failed to get transaction")
	}

	var exists bool
	query := `SELECT EXISTS(SELECT 1 FROM uids WHERE display = $1)`
	if err := tx.QueryRow(ctx, query, display).Scan(&exists); err != nil {
		return false, gerrors.Wrap(err, "failed to check uid")
	}
	return exists, nil
}

// isContention matches serialization failures, deadlocks and lock timeouts.
func isContention(err error) bool {
	var pgErr *pgconn.PgError
	if !errors.As(err, &pgErr) {
		return false
	}
	switch pgErr.Code {
	case "40001", "40P01", "55P03":
		return true
	}
	return false
}
