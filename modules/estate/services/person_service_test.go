package services_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreservices "github.com/plotline-hq/plotline/modules/core/services"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/services"
	"github.com/plotline-hq/plotline/pkg/itf"
)

func newPersonService() (*services.PersonService, *itf.InMemoryPersonRepository) {
	repo := itf.NewInMemoryPersonRepository()
	uids := coreservices.NewUIDService(itf.NewInMemorySequenceRepository())
	return services.NewPersonService(repo, uids), repo
}

func TestPersonService_Create_MintsUID(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	env := itf.NewTestContext().WithTenant(acme).Build(t)
	svc, _ := newPersonService()

	client, err := svc.Create(env.Ctx, person.RoleClient, "Jane", "Doe", person.WithEmail("jane@example.com"))
	require.NoError(t, err)
	assert.Equal(t, "ACM-CLT001", client.UID())
	assert.Equal(t, acme.ID(), client.TenantID())

	marketer, err := svc.Create(env.Ctx, person.RoleMarketer, "John", "Smith")
	require.NoError(t, err)
	assert.Equal(t, "ACM-MKT001", marketer.UID(), "marketers count on their own sequence")
}

func TestPersonService_Create_AgentQuota(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	acme.SetQuotas(tenant.Quotas{MaxPlots: 10, MaxAgents: 2, MaxDailyRequests: 100})
	env := itf.NewTestContext().WithTenant(acme).Build(t)
	svc, _ := newPersonService()

	for i := 0; i < 2; i++ {
		_, err := svc.Create(env.Ctx, person.RoleMarketer, "Agent", "Smith")
		require.NoError(t, err)
	}

	_, err := svc.Create(env.Ctx, person.RoleMarketer, "One", "TooMany")
	var quotaErr *tenant.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "agents", quotaErr.Resource)
	assert.Equal(t, 2, quotaErr.Limit)

	// Clients are not capped by the agent quota.
	_, err = svc.Create(env.Ctx, person.RoleClient, "Jane", "Doe")
	require.NoError(t, err)
}

func TestPersonService_TenantsDoNotSeeEachOther(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	rival := itf.TrialTenant("Rival Realty", "rival")
	svc, _ := newPersonService()

	acmeCtx := itf.NewTestContext().WithTenant(acme).Build(t).Ctx
	rivalCtx := itf.NewTestContext().WithTenant(rival).Build(t).Ctx

	created, err := svc.Create(acmeCtx, person.RoleClient, "Jane", "Doe")
	require.NoError(t, err)

	_, err = svc.GetByID(rivalCtx, created.ID())
	assert.ErrorIs(t, err, person.ErrNotFound)

	others, err := svc.List(rivalCtx, person.RoleClient)
	require.NoError(t, err)
	assert.Empty(t, others)
}
