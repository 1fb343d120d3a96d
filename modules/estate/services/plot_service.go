package services

import (
	"context"

	"github.com/google/uuid"

	coreservices "github.com/plotline-hq/plotline/modules/core/services"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/pkg/composables"
)

type PlotService struct {
	repo plot.Repository
	uids *coreservices.UIDService
}

func NewPlotService(repo plot.Repository, uids *coreservices.UIDService) *PlotService {
	return &PlotService{
		repo: repo,
		uids: uids,
	}
}

func (s *PlotService) GetByID(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PlotService) List(ctx context.Context) ([]*plot.Plot, error) {
	return s.repo.List(ctx)
}

// Create adds a plot to the tenant's inventory, enforcing the plot quota and
// minting a display UID. Quota checks are independent of subscription state:
// an active tenant over its ceiling is still over its ceiling.
func (s *PlotService) Create(ctx context.Context, estate, number string, areaSqm float64, price int64) (*plot.Plot, error) {
	t, err := composables.UseTenant(ctx)
	if err != nil {
		return nil, err
	}

	used, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	if limit := t.Quotas().MaxPlots; used >= int64(limit) {
		return nil, &tenant.QuotaExceededError{Resource: "plots", Limit: limit, Used: int(used)}
	}

	uid, err := s.uids.Allocate(ctx, t, sequence.KindPlot)
	if err != nil {
		return nil, err
	}

	entity := plot.New(t.ID(), estate, number, areaSqm, price)
	entity.SetUID(uid.Display)
	return s.repo.Create(ctx, entity)
}

func (s *PlotService) Update(ctx context.Context, p *plot.Plot) (*plot.Plot, error) {
	return s.repo.Update(ctx, p)
}

func (s *PlotService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
