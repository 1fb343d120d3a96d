package services_test

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/itf"
)

func TestResolver_Resolve_BySlug(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	repo := itf.NewInMemoryTenantRepository(acme)
	resolver := services.NewResolver(repo)

	resolved, err := resolver.Resolve(context.Background(), "acme")
	require.NoError(t, err)
	assert.Equal(t, acme.ID(), resolved.ID())
}

func TestResolver_Resolve_UnknownSlugIsHardError(t *testing.T) {
	repo := itf.NewInMemoryTenantRepository(itf.TrialTenant("Acme Estates", "acme"))
	resolver := services.NewResolver(repo)

	resolved, err := resolver.Resolve(context.Background(), "ghost")
	require.ErrorIs(t, err, tenant.ErrNotFound)
	assert.Nil(t, resolved)
}

func TestResolver_Resolve_DeactivatedTenantResolvesAsMissing(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	acme.SetIsActive(false)
	repo := itf.NewInMemoryTenantRepository(acme)
	resolver := services.NewResolver(repo)

	_, err := resolver.Resolve(context.Background(), "acme")
	require.ErrorIs(t, err, tenant.ErrNotFound)
}

func TestResolver_Resolve_PrincipalMismatchFailsClosed(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	rival := itf.TrialTenant("Rival Realty", "rival")
	repo := itf.NewInMemoryTenantRepository(acme, rival)
	resolver := services.NewResolver(repo)

	env := itf.NewTestContext().WithPrincipal(itf.PrincipalFor(rival)).Build(t)

	resolved, err := resolver.Resolve(env.Ctx, "acme")
	assert.Nil(t, resolved)

	var mismatch *tenant.MismatchError
	require.ErrorAs(t, err, &mismatch)
	assert.Equal(t, "acme", mismatch.RequestSlug)
	assert.Equal(t, rival.ID(), mismatch.PrincipalTenant)
}

func TestResolver_Resolve_PrincipalHomeTenantFallback(t *testing.T) {
	acme := itf.TrialTenant("Acme Estates", "acme")
	repo := itf.NewInMemoryTenantRepository(acme)
	resolver := services.NewResolver(repo)

	env := itf.NewTestContext().WithPrincipal(itf.PrincipalFor(acme)).Build(t)

	resolved, err := resolver.Resolve(env.Ctx, "")
	require.NoError(t, err)
	assert.Equal(t, acme.ID(), resolved.ID())
}

func TestResolver_Resolve_PrincipalWithGoneTenant(t *testing.T) {
	repo := itf.NewInMemoryTenantRepository()
	resolver := services.NewResolver(repo)

	ctx := composables.WithPrincipal(context.Background(), &composables.Principal{
		UserID:   uuid.New(),
		TenantID: uuid.New(),
	})

	_, err := resolver.Resolve(ctx, "")
	require.ErrorIs(t, err, tenant.ErrNotFound)
}

func TestResolver_Resolve_AnonymousNoSlug(t *testing.T) {
	repo := itf.NewInMemoryTenantRepository()
	resolver := services.NewResolver(repo)

	resolved, err := resolver.Resolve(context.Background(), "")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}
