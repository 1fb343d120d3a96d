package persistence

import (
	"context"
	"database/sql"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/audit"
	"github.com/plotline-hq/plotline/modules/core/infrastructure/persistence/models"
	"github.com/plotline-hq/plotline/pkg/composables"
)

type AuditRepository struct{}

func NewAuditRepository() audit.Repository {
	return &AuditRepository{}
}

func (r *AuditRepository) Record(ctx context.Context, e audit.Entry) error {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return gerrors.Wrap(err, "failed to get transaction")
	}

	query := `
		INSERT INTO access_audit (attempted_tenant, actual_tenant, operation, actor, path, created_at)
		VALUES ($1, $2, $3, $4, $5, now())
	`
	_, err = tx.Exec(
		ctx,
		query,
		nullUUID(e.AttemptedTenant),
		nullUUID(e.ActualTenant),
		e.Operation,
		nullString(e.Actor),
		nullString(e.Path),
	)
	if err != nil {
		return gerrors.Wrap(err, "failed to record audit entry")
	}
	return nil
}

func (r *AuditRepository) ListRecent(ctx context.Context, limit int) ([]audit.Entry, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get transaction")
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, attempted_tenant, actual_tenant, operation, actor, path, created_at
		FROM access_audit
		ORDER BY created_at DESC
		LIMIT $1
	`
	rows, err := tx.Query(ctx, query, limit)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var entries []audit.Entry
	for rows.Next() {
		var m models.AccessAudit
		if err := rows.Scan(
			&m.ID,
			&m.AttemptedTenant,
			&m.ActualTenant,
			&m.Operation,
			&m.Actor,
			&m.Path,
			&m.CreatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan audit row")
		}
		entries = append(entries, toDomainAudit(&m))
	}
	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return entries, nil
}

func toDomainAudit(m *models.AccessAudit) audit.Entry {
	e := audit.Entry{
		ID:        m.ID,
		Operation: m.Operation,
		CreatedAt: m.CreatedAt,
	}
	if m.AttemptedTenant.Valid {
		e.AttemptedTenant, _ = uuid.Parse(m.AttemptedTenant.String)
	}
	if m.ActualTenant.Valid {
		e.ActualTenant, _ = uuid.Parse(m.ActualTenant.String)
	}
	if m.Actor.Valid {
		e.Actor = m.Actor.String
	}
	if m.Path.Valid {
		e.Path = m.Path.String
	}
	return e
}

func nullUUID(id uuid.UUID) sql.NullString {
	if id == uuid.Nil {
		return sql.NullString{}
	}
	return sql.NullString{String: id.String(), Valid: true}
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}
