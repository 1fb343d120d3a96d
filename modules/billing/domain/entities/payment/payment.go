package payment

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

var ErrNotFound = fmt.Errorf("payment not found")

// Payment is a confirmed subscription payment reported by the payment
// provider. Immutable once recorded.
type Payment struct {
	id          uuid.UUID
	tenantID    uuid.UUID
	externalID  string
	amount      int64
	currency    string
	periodStart time.Time
	periodEnd   time.Time
	createdAt   time.Time
}

type Option func(*Payment)

func WithID(id uuid.UUID) Option {
	return func(p *Payment) {
		p.id = id
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *Payment) {
		p.createdAt = createdAt
	}
}

func New(tenantID uuid.UUID, externalID string, amount int64, currency string, periodStart, periodEnd time.Time, opts ...Option) *Payment {
	p := &Payment{
		id:          uuid.New(),
		tenantID:    tenantID,
		externalID:  externalID,
		amount:      amount,
		currency:    currency,
		periodStart: periodStart,
		periodEnd:   periodEnd,
		createdAt:   time.Now(),
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Payment) ID() uuid.UUID {
	return p.id
}

func (p *Payment) TenantID() uuid.UUID {
	return p.tenantID
}

func (p *Payment) ExternalID() string {
	return p.externalID
}

func (p *Payment) Amount() int64 {
	return p.amount
}

func (p *Payment) Currency() string {
	return p.currency
}

func (p *Payment) PeriodStart() time.Time {
	return p.periodStart
}

func (p *Payment) PeriodEnd() time.Time {
	return p.periodEnd
}

func (p *Payment) CreatedAt() time.Time {
	return p.createdAt
}

// ConfirmedEvent is published after a payment activates or renews a tenant.
type ConfirmedEvent struct {
	Payment *Payment
}

type Repository interface {
	Create(ctx context.Context, p *Payment) (*Payment, error)
	// GetByExternalID deduplicates webhook retries from the provider.
	GetByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*Payment, error)
	List(ctx context.Context, tenantID uuid.UUID) ([]*Payment, error)
}
