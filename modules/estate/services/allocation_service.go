package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/serrors"
)

var ErrWrongRole = serrors.NewError("WRONG_ROLE", "person has the wrong role for this allocation", "allocations.errors.wrong_role")

// TxRunner wraps a multi-step write in one transaction. Production code uses
// composables.InTenantTx; tests substitute a passthrough.
type TxRunner func(ctx context.Context, fn func(context.Context) error) error

type AllocationService struct {
	repo    allocation.Repository
	plots   plot.Repository
	persons person.Repository
	inTx    TxRunner
}

func NewAllocationService(repo allocation.Repository, plots plot.Repository, persons person.Repository) *AllocationService {
	return &AllocationService{
		repo:    repo,
		plots:   plots,
		persons: persons,
		inTx:    composables.InTenantTx,
	}
}

// WithTxRunner overrides the transaction wrapper. Test seam.
func (s *AllocationService) WithTxRunner(runner TxRunner) *AllocationService {
	s.inTx = runner
	return s
}

func (s *AllocationService) GetByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *AllocationService) List(ctx context.Context) ([]*allocation.Allocation, error) {
	return s.repo.List(ctx)
}

// Allocate reserves a plot for a client through a marketer. The reservation
// and the allocation row commit or roll back together.
func (s *AllocationService) Allocate(ctx context.Context, plotID, clientID, marketerID uuid.UUID, price int64) (*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}

	var created *allocation.Allocation
	err = s.inTx(ctx, func(txCtx context.Context) error {
		p, err := s.plots.GetByID(txCtx, plotID)
		if err != nil {
			return err
		}
		client, err := s.persons.GetByID(txCtx, clientID)
		if err != nil {
			return err
		}
		if client.Role() != person.RoleClient {
			return ErrWrongRole
		}
		marketer, err := s.persons.GetByID(txCtx, marketerID)
		if err != nil {
			return err
		}
		if marketer.Role() != person.RoleMarketer {
			return ErrWrongRole
		}

		if err := p.Reserve(); err != nil {
			return err
		}
		if _, err := s.plots.Update(txCtx, p); err != nil {
			return err
		}

		created, err = s.repo.Create(txCtx, allocation.New(tenantID, plotID, clientID, marketerID, price))
		return err
	})
	if err != nil {
		return nil, err
	}
	return created, nil
}

// Complete marks the sale final and the plot sold.
func (s *AllocationService) Complete(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	var updated *allocation.Allocation
	err := s.inTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		p, err := s.plots.GetByID(txCtx, a.PlotID())
		if err != nil {
			return err
		}
		if err := p.MarkSold(); err != nil {
			return err
		}
		if _, err := s.plots.Update(txCtx, p); err != nil {
			return err
		}
		a.Complete()
		updated, err = s.repo.Update(txCtx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

// Cancel voids a pending allocation and returns the plot to the market.
func (s *AllocationService) Cancel(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	var updated *allocation.Allocation
	err := s.inTx(ctx, func(txCtx context.Context) error {
		a, err := s.repo.GetByID(txCtx, id)
		if err != nil {
			return err
		}
		p, err := s.plots.GetByID(txCtx, a.PlotID())
		if err != nil {
			return err
		}
		p.Release()
		if _, err := s.plots.Update(txCtx, p); err != nil {
			return err
		}
		a.Cancel()
		updated, err = s.repo.Update(txCtx, a)
		return err
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}
