package services_test

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	coreservices "github.com/plotline-hq/plotline/modules/core/services"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/modules/estate/services"
	"github.com/plotline-hq/plotline/pkg/itf"
)

type estateFixture struct {
	ctx         context.Context
	tenant      *tenant.Tenant
	allocations *services.AllocationService
	plots       *services.PlotService
	persons     *services.PersonService
	plotRepo    *itf.InMemoryPlotRepository
}

func newEstateFixture(t *testing.T) *estateFixture {
	acme := itf.TrialTenant("Acme", "acme")
	env := itf.NewTestContext().WithTenant(acme).Build(t)

	uids := coreservices.NewUIDService(itf.NewInMemorySequenceRepository())
	plotRepo := itf.NewInMemoryPlotRepository()
	personRepo := itf.NewInMemoryPersonRepository()
	allocRepo := itf.NewInMemoryAllocationRepository()

	return &estateFixture{
		ctx:         env.Ctx,
		tenant:      acme,
		allocations: services.NewAllocationService(allocRepo, plotRepo, personRepo).WithTxRunner(itf.PassthroughTx),
		plots:       services.NewPlotService(plotRepo, uids),
		persons:     services.NewPersonService(personRepo, uids),
		plotRepo:    plotRepo,
	}
}

func (f *estateFixture) allocate(t *testing.T) (*allocation.Allocation, *plot.Plot) {
	t.Helper()
	p, err := f.plots.Create(f.ctx, "Sunrise Gardens", "A-12", 450, 25_000_00)
	require.NoError(t, err)
	client, err := f.persons.Create(f.ctx, person.RoleClient, "Jane", "Doe")
	require.NoError(t, err)
	marketer, err := f.persons.Create(f.ctx, person.RoleMarketer, "John", "Smith")
	require.NoError(t, err)

	a, err := f.allocations.Allocate(f.ctx, p.ID(), client.ID(), marketer.ID(), 24_500_00)
	require.NoError(t, err)
	return a, p
}

func TestAllocationService_Allocate_ReservesPlot(t *testing.T) {
	f := newEstateFixture(t)
	a, p := f.allocate(t)

	assert.Equal(t, allocation.StatusPending, a.Status())
	assert.Equal(t, f.tenant.ID(), a.TenantID())

	stored, err := f.plotRepo.GetByID(f.ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, plot.StatusReserved, stored.Status())
}

func TestAllocationService_Allocate_PlotAlreadyTaken(t *testing.T) {
	f := newEstateFixture(t)
	a, p := f.allocate(t)
	_ = a

	otherClient, err := f.persons.Create(f.ctx, person.RoleClient, "Second", "Buyer")
	require.NoError(t, err)
	marketer, err := f.persons.Create(f.ctx, person.RoleMarketer, "Other", "Agent")
	require.NoError(t, err)

	_, err = f.allocations.Allocate(f.ctx, p.ID(), otherClient.ID(), marketer.ID(), 24_000_00)
	assert.ErrorIs(t, err, plot.ErrNotAvailable)
}

func TestAllocationService_Allocate_RoleChecks(t *testing.T) {
	f := newEstateFixture(t)
	p, err := f.plots.Create(f.ctx, "Sunrise Gardens", "A-13", 450, 25_000_00)
	require.NoError(t, err)
	client, err := f.persons.Create(f.ctx, person.RoleClient, "Jane", "Doe")
	require.NoError(t, err)
	marketer, err := f.persons.Create(f.ctx, person.RoleMarketer, "John", "Smith")
	require.NoError(t, err)

	// Swapped: the client cannot act as the marketer and vice versa.
	_, err = f.allocations.Allocate(f.ctx, p.ID(), marketer.ID(), client.ID(), 24_500_00)
	assert.ErrorIs(t, err, services.ErrWrongRole)
}

func TestAllocationService_CompleteMarksPlotSold(t *testing.T) {
	f := newEstateFixture(t)
	a, p := f.allocate(t)

	completed, err := f.allocations.Complete(f.ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, allocation.StatusCompleted, completed.Status())

	stored, err := f.plotRepo.GetByID(f.ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, plot.StatusSold, stored.Status())
}

func TestAllocationService_CancelReleasesPlot(t *testing.T) {
	f := newEstateFixture(t)
	a, p := f.allocate(t)

	cancelled, err := f.allocations.Cancel(f.ctx, a.ID())
	require.NoError(t, err)
	assert.Equal(t, allocation.StatusCancelled, cancelled.Status())

	stored, err := f.plotRepo.GetByID(f.ctx, p.ID())
	require.NoError(t, err)
	assert.Equal(t, plot.StatusAvailable, stored.Status())
}

func TestPlotService_Create_PlotQuota(t *testing.T) {
	f := newEstateFixture(t)
	f.tenant.SetQuotas(tenant.Quotas{MaxPlots: 1, MaxAgents: 5, MaxDailyRequests: 100})

	_, err := f.plots.Create(f.ctx, "Sunrise Gardens", "A-1", 450, 25_000_00)
	require.NoError(t, err)

	_, err = f.plots.Create(f.ctx, "Sunrise Gardens", "A-2", 450, 25_000_00)
	var quotaErr *tenant.QuotaExceededError
	require.ErrorAs(t, err, &quotaErr)
	assert.Equal(t, "plots", quotaErr.Resource)
}
