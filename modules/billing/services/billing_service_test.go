package services_test

import (
	"context"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/modules/billing/services"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/eventbus"
	"github.com/plotline-hq/plotline/pkg/itf"
)

func newBillingFixture(t *testing.T, at time.Time) (*services.BillingService, *itf.InMemoryTenantRepository, *itf.InMemoryPaymentRepository, *clockwork.FakeClock, eventbus.EventBus) {
	t.Helper()
	tenants := itf.NewInMemoryTenantRepository()
	payments := itf.NewInMemoryPaymentRepository()
	bus := eventbus.NewEventPublisher(logrus.New())
	clock := clockwork.NewFakeClockAt(at)
	svc := services.NewBillingService(tenants, payments, bus).
		WithClock(clock).
		WithTxRunner(itf.PassthroughTx)
	return svc, tenants, payments, clock, bus
}

func TestBillingService_Confirm_ActivatesTrialTenant(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, tenants, _, _, bus := newBillingFixture(t, now)

	acme := itf.TrialTenant("Acme", "acme")
	_, err := tenants.Create(context.Background(), acme)
	require.NoError(t, err)

	var changes []*tenant.SubscriptionChangedEvent
	bus.Subscribe(func(e *tenant.SubscriptionChangedEvent) {
		changes = append(changes, e)
	})

	recorded, err := svc.Confirm(context.Background(), acme.ID(), "pay_001", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, "pay_001", recorded.ExternalID())

	assert.Equal(t, tenant.StatusActive, acme.Status(now))
	assert.Equal(t, now, acme.SubscriptionStart())
	assert.Equal(t, now.Add(30*24*time.Hour), acme.SubscriptionEnd())
	assert.Equal(t, acme.SubscriptionEnd().Add(3*24*time.Hour), acme.GraceEnd(), "default grace window is three days")

	require.Len(t, changes, 1)
	assert.Equal(t, tenant.StatusTrial, changes[0].From)
	assert.Equal(t, tenant.StatusActive, changes[0].To)
}

func TestBillingService_Confirm_ReactivatesSuspendedTenant(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, tenants, _, _, _ := newBillingFixture(t, now)

	lapsed := itf.ActiveTenant("Lapsed", "lapsed", now.AddDate(-2, 0, 0))
	_, err := tenants.Create(context.Background(), lapsed)
	require.NoError(t, err)
	require.Equal(t, tenant.StatusSuspended, lapsed.Status(now))

	_, err = svc.Confirm(context.Background(), lapsed.ID(), "pay_002", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, lapsed.Status(now))
	assert.False(t, lapsed.ReadOnly())
}

func TestBillingService_Confirm_DuplicateExternalIDIsIdempotent(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, tenants, payments, _, _ := newBillingFixture(t, now)

	acme := itf.TrialTenant("Acme", "acme")
	_, err := tenants.Create(context.Background(), acme)
	require.NoError(t, err)

	first, err := svc.Confirm(context.Background(), acme.ID(), "pay_001", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	second, err := svc.Confirm(context.Background(), acme.ID(), "pay_001", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, first.ID(), second.ID())

	all, err := payments.List(context.Background(), acme.ID())
	require.NoError(t, err)
	assert.Len(t, all, 1)
}

func TestBillingService_Confirm_UnknownTenant(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, _, _, _, _ := newBillingFixture(t, now)

	ghost := itf.TrialTenant("Ghost", "ghost")
	_, err := svc.Confirm(context.Background(), ghost.ID(), "pay_003", 99_00, "USD", 30*24*time.Hour)
	assert.ErrorIs(t, err, tenant.ErrNotFound)
}

func TestBillingService_Cancel(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, tenants, _, clock, _ := newBillingFixture(t, now)

	acme := itf.ActiveTenant("Acme", "acme", now)
	_, err := tenants.Create(context.Background(), acme)
	require.NoError(t, err)

	require.NoError(t, svc.Cancel(context.Background(), acme.ID()))
	assert.Equal(t, tenant.StatusCancelled, acme.Status(now))

	// Cancellation is terminal: the subscription window still being open
	// does not resurrect the tenant.
	clock.Advance(time.Hour)
	assert.Equal(t, tenant.StatusCancelled, acme.Status(clock.Now()))

	// A new confirmed payment does.
	_, err = svc.Confirm(context.Background(), acme.ID(), "pay_004", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	assert.Equal(t, tenant.StatusActive, acme.Status(clock.Now()))
}

func TestBillingService_PaymentsAreImmutableRecords(t *testing.T) {
	now := time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)
	svc, tenants, _, _, _ := newBillingFixture(t, now)

	acme := itf.TrialTenant("Acme", "acme")
	_, err := tenants.Create(context.Background(), acme)
	require.NoError(t, err)

	_, err = svc.Confirm(context.Background(), acme.ID(), "pay_001", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)
	_, err = svc.Confirm(context.Background(), acme.ID(), "pay_005", 99_00, "USD", 30*24*time.Hour)
	require.NoError(t, err)

	all, err := svc.Payments(context.Background(), acme.ID())
	require.NoError(t, err)
	require.Len(t, all, 2)
	for _, p := range all {
		assert.Equal(t, acme.ID(), p.TenantID())
	}
}
