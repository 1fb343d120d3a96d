package persistence

import (
	"context"
	"database/sql"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/billing/domain/entities/payment"
	"github.com/plotline-hq/plotline/pkg/composables"
)

// Payments live on the billing plane, not inside the tenant partition: the
// webhook that writes them runs before any tenant is resolved. Queries are
// keyed by the tenant ID the provider reported.

const paymentFindQuery = `
	SELECT id, tenant_id, external_id, amount, currency, period_start,
	       period_end, created_at
	FROM payments`

type paymentRow struct {
	ID          string
	TenantID    string
	ExternalID  string
	Amount      int64
	Currency    string
	PeriodStart sql.NullTime
	PeriodEnd   sql.NullTime
	CreatedAt   time.Time
}

type PaymentRepository struct{}

func NewPaymentRepository() payment.Repository {
	return &PaymentRepository{}
}

func (r *PaymentRepository) Create(ctx context.Context, p *payment.Payment) (*payment.Payment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO payments (
			id, tenant_id, external_id, amount, currency, period_start,
			period_end, created_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		p.ID().String(),
		p.TenantID().String(),
		p.ExternalID(),
		p.Amount(),
		p.Currency(),
		p.PeriodStart(),
		p.PeriodEnd(),
		p.CreatedAt(),
	); err != nil {
		return nil, gerrors.Wrap(err, "failed to create payment")
	}
	return p, nil
}

func (r *PaymentRepository) GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*payment.Payment, error) {
	payments, err := r.queryPayments(ctx, paymentFindQuery+" WHERE tenant_id = $1 AND external_id = $2", tenantID.String(), externalID)
	if err != nil {
		return nil, err
	}
	if len(payments) == 0 {
		return nil, payment.ErrNotFound
	}
	return payments[0], nil
}

func (r *PaymentRepository) List(ctx context.Context, tenantID uuid.UUID) ([]*payment.Payment, error) {
	return r.queryPayments(ctx, paymentFindQuery+" WHERE tenant_id = $1 ORDER BY created_at DESC", tenantID.String())
}

func (r *PaymentRepository) queryPayments(ctx context.Context, query string, args ...interface{}) ([]*payment.Payment, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var payments []*payment.Payment
	for rows.Next() {
		var m paymentRow
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.ExternalID,
			&m.Amount,
			&m.Currency,
			&m.PeriodStart,
			&m.PeriodEnd,
			&m.CreatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan payment row")
		}
		id, err := uuid.Parse(m.ID)
		if err != nil {
			return nil, gerrors.Wrap(err, "invalid payment id")
		}
		tenantID, err := uuid.Parse(m.TenantID)
		if err != nil {
			return nil, gerrors.Wrap(err, "invalid payment tenant id")
		}
		payments = append(payments, payment.New(
			tenantID,
			m.ExternalID,
			m.Amount,
			m.Currency,
			m.PeriodStart.Time,
			m.PeriodEnd.Time,
			payment.WithID(id),
			payment.WithCreatedAt(m.CreatedAt),
		))
	}

	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return payments, nil
}
