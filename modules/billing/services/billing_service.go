package services

import (
	"context"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"

	"github.com/plotline-hq/plotline/modules/billing/domain/entities/payment"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/eventbus"
)

// TxRunner wraps a multi-step write in one transaction. Production code uses
// composables.InTenantTx; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

// BillingService is the sole writer of subscription timestamps. Everything
// else in the system only ever derives state from what it records here.
type BillingService struct {
	tenants   tenant.Repository
	payments  payment.Repository
	publisher eventbus.EventBus
	clock     clockwork.Clock
	inTx      TxRunner
}

func NewBillingService(tenants tenant.Repository, payments payment.Repository, publisher eventbus.EventBus) *BillingService {
	return &BillingService{
		tenants:   tenants,
		payments:  payments,
		publisher: publisher,
		clock:     clockwork.NewRealClock(),
		inTx:      composables.InTenantTx,
	}
}

// WithClock overrides the clock. Test seam.
func (s *BillingService) WithClock(clock clockwork.Clock) *BillingService {
	s.clock = clock
	return s
}

// WithTxRunner overrides the transaction wrapper. Test seam.
func (s *BillingService) WithTxRunner(runner TxRunner) *BillingService {
	s.inTx = runner
	return s
}

// Confirm records a confirmed payment and opens a fresh subscription window
// for the tenant: activation, renewal and reactivation are all this one
// operation. Retried webhooks with a known external ID are acknowledged
// without reapplying.
func (s *BillingService) Confirm(ctx context.Context, tenantID uuid.UUID, externalID string, amount int64, currency string, period time.Duration) (*payment.Payment, error) {
	conf := configuration.Use()
	var recorded *payment.Payment
	err := s.inTx(ctx, func(txCtx context.Context) error {
		if existing, err := s.payments.GetByExternalID(txCtx, tenantID, externalID); err == nil {
			recorded = existing
			return nil
		} else if !errors.Is(err, payment.ErrNotFound) {
			return err
		}

		t, err := s.tenants.GetByID(txCtx, tenantID)
		if err != nil {
			return err
		}

		from := t.Status(s.clock.Now())
		start := s.clock.Now()
		end := start.Add(period)
		t.Activate(start, end, end.Add(conf.Billing.GraceWindow()))
		if _, err := s.tenants.Update(txCtx, t); err != nil {
			return errors.Wrap(err, "activating tenant subscription")
		}

		recorded, err = s.payments.Create(txCtx, payment.New(tenantID, externalID, amount, currency, start, end))
		if err != nil {
			return errors.Wrap(err, "recording payment")
		}

		s.publisher.Publish(&payment.ConfirmedEvent{Payment: recorded})
		s.publisher.Publish(tenant.NewSubscriptionChangedEvent(t, from, tenant.StatusActive))
		return nil
	})
	if err != nil {
		return nil, err
	}
	return recorded, nil
}

// Cancel terminates the subscription immediately. Terminal until the next
// confirmed payment.
func (s *BillingService) Cancel(ctx context.Context, tenantID uuid.UUID) error {
	return s.inTx(ctx, func(txCtx context.Context) error {
		t, err := s.tenants.GetByID(txCtx, tenantID)
		if err != nil {
			return err
		}
		from := t.Status(s.clock.Now())
		t.Cancel()
		if _, err := s.tenants.Update(txCtx, t); err != nil {
			return err
		}
		s.publisher.Publish(tenant.NewSubscriptionChangedEvent(t, from, tenant.StatusCancelled))
		return nil
	})
}

func (s *BillingService) Payments(ctx context.Context, tenantID uuid.UUID) ([]*payment.Payment, error) {
	return s.payments.List(ctx, tenantID)
}
