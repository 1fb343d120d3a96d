package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence/models"
	"github.com/plotline-hq/plotline/pkg/composables"
)

const allocationFindQuery = `
	SELECT id, tenant_id, plot_id, client_id, marketer_id, price, status,
	       created_at, updated_at
	FROM allocations`

type AllocationRepository struct{}

func NewAllocationRepository() allocation.Repository {
	return &AllocationRepository{}
}

func (r *AllocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	allocations, err := r.queryAllocations(ctx, allocationFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(allocations) == 0 {
		return nil, allocation.ErrNotFound
	}
	return allocations[0], nil
}

func (r *AllocationRepository) List(ctx context.Context) ([]*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryAllocations(ctx, allocationFindQuery+" WHERE tenant_id = $1 ORDER BY created_at DESC", tenantID.String())
}

func (r *AllocationRepository) Create(ctx context.Context, a *allocation.Allocation) (*allocation.Allocation, error) {
	if err := checkTenant(ctx, "allocations.create", a.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO allocations (
			id, tenant_id, plot_id, client_id, marketer_id, price, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		a.ID().String(),
		a.TenantID().String(),
		a.PlotID().String(),
		a.ClientID().String(),
		a.MarketerID().String(),
		a.Price(),
		string(a.Status()),
		a.CreatedAt(),
		a.UpdatedAt(),
	); err != nil {
		return nil, gerrors.Wrap(err, "failed to create allocation")
	}
	return r.GetByID(ctx, a.ID())
}

func (r *AllocationRepository) Update(ctx context.Context, a *allocation.Allocation) (*allocation.Allocation, error) {
	if err := checkTenant(ctx, "allocations.update", a.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE allocations
		SET price = $1, status = $2, updated_at = $3
		WHERE tenant_id = $4 AND id = $5
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		a.Price(),
		string(a.Status()),
		a.UpdatedAt(),
		a.TenantID().String(),
		a.ID().String(),
	).Scan(&idStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, allocation.ErrNotFound
		}
		return nil, gerrors.Wrap(err, "failed to update allocation")
	}
	return r.GetByID(ctx, a.ID())
}

func (r *AllocationRepository) queryAllocations(ctx context.Context, query string, args ...interface{}) ([]*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get tenant from context")
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var allocations []*allocation.Allocation
	for rows.Next() {
		var m models.Allocation
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.PlotID,
			&m.ClientID,
			&m.MarketerID,
			&m.Price,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan allocation row")
		}
		entity, err := toDomainAllocation(&m)
		if err != nil {
			return nil, err
		}
		if entity.TenantID() != tenantID {
			return nil, &tenant.IntegrityError{Op: "allocations.query", Want: tenantID, Got: entity.TenantID()}
		}
		allocations = append(allocations, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return allocations, nil
}
