package composables_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
)

func TestUseTenant_EmptyContext(t *testing.T) {
	t.Parallel()

	_, err := composables.UseTenant(context.Background())
	require.ErrorIs(t, err, composables.ErrNoTenant)

	_, err = composables.UseTenantID(context.Background())
	require.ErrorIs(t, err, composables.ErrNoTenant)
}

func TestWithTenant_RoundTrip(t *testing.T) {
	t.Parallel()

	acme := tenant.New("Acme", "acme", 14*24*time.Hour)
	ctx := composables.WithTenant(context.Background(), acme)

	got, err := composables.UseTenant(ctx)
	require.NoError(t, err)
	assert.Equal(t, acme.ID(), got.ID())
	assert.Equal(t, "acme", got.Slug())

	id, err := composables.UseTenantID(ctx)
	require.NoError(t, err)
	assert.Equal(t, acme.ID(), id)
}

// Nested scopes restore the outer tenant when the inner context is dropped,
// because scoping is context derivation rather than mutation.
func TestWithTenant_NestedScopes(t *testing.T) {
	t.Parallel()

	acme := tenant.New("Acme", "acme", 14*24*time.Hour)
	corp := tenant.New("Acme Corp", "acme-corp", 14*24*time.Hour)

	outer := composables.WithTenant(context.Background(), acme)
	inner := composables.WithTenant(outer, corp)
	cleared := composables.WithoutTenant(inner)

	gotInner, err := composables.UseTenant(inner)
	require.NoError(t, err)
	assert.Equal(t, corp.ID(), gotInner.ID())

	_, err = composables.UseTenant(cleared)
	require.ErrorIs(t, err, composables.ErrNoTenant)

	// The outer scope is untouched by anything the inner scopes did.
	gotOuter, err := composables.UseTenant(outer)
	require.NoError(t, err)
	assert.Equal(t, acme.ID(), gotOuter.ID())
}

// Concurrent operations each see only their own tenant.
func TestWithTenant_NoCrossGoroutineLeakage(t *testing.T) {
	t.Parallel()

	tenants := []*tenant.Tenant{
		tenant.New("Acme", "acme", 14*24*time.Hour),
		tenant.New("Acme Corp", "acme-corp", 14*24*time.Hour),
		tenant.New("Lakeview Plots", "lakeview-plots", 14*24*time.Hour),
	}

	done := make(chan error, len(tenants)*50)
	for i := 0; i < len(tenants)*50; i++ {
		tn := tenants[i%len(tenants)]
		go func() {
			ctx := composables.WithTenant(context.Background(), tn)
			got, err := composables.UseTenant(ctx)
			if err != nil {
				done <- err
				return
			}
			if got.ID() != tn.ID() {
				done <- assert.AnError
				return
			}
			done <- nil
		}()
	}
	for i := 0; i < len(tenants)*50; i++ {
		require.NoError(t, <-done)
	}
}

func TestMustUseTenantID_Panics(t *testing.T) {
	t.Parallel()

	assert.Panics(t, func() {
		composables.MustUseTenantID(context.Background())
	})
}
