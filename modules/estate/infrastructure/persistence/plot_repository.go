package persistence

import (
	"context"
	"errors"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/modules/estate/infrastructure/persistence/models"
	"github.com/plotline-hq/plotline/pkg/composables"
)

const plotFindQuery = `
	SELECT id, tenant_id, uid, estate, number, area_sqm, price, status,
	       created_at, updated_at
	FROM plots`

type PlotRepository struct{}

func NewPlotRepository() plot.Repository {
	return &PlotRepository{}
}

func (r *PlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	plots, err := r.queryPlots(ctx, plotFindQuery+" WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return nil, err
	}
	if len(plots) == 0 {
		return nil, plot.ErrNotFound
	}
	return plots[0], nil
}

func (r *PlotRepository) List(ctx context.Context) ([]*plot.Plot, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	return r.queryPlots(ctx, plotFindQuery+" WHERE tenant_id = $1 ORDER BY estate, number", tenantID.String())
}

func (r *PlotRepository) Count(ctx context.Context) (int64, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return 0, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := tx.QueryRow(ctx, "SELECT COUNT(*) FROM plots WHERE tenant_id = $1", tenantID.String()).Scan(&count); err != nil {
		return 0, gerrors.Wrap(err, "failed to count plots")
	}
	return count, nil
}

func (r *PlotRepository) Create(ctx context.Context, p *plot.Plot) (*plot.Plot, error) {
	if err := checkTenant(ctx, "plots.create", p.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		INSERT INTO plots (
			id, tenant_id, uid, estate, number, area_sqm, price, status,
			created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`
	if _, err := tx.Exec(
		ctx,
		query,
		p.ID().String(),
		p.TenantID().String(),
		nullString(p.UID()),
		p.Estate(),
		p.Number(),
		p.AreaSqm(),
		p.Price(),
		string(p.Status()),
		p.CreatedAt(),
		p.UpdatedAt(),
	); err != nil {
		return nil, gerrors.Wrap(err, "failed to create plot")
	}
	return r.GetByID(ctx, p.ID())
}

func (r *PlotRepository) Update(ctx context.Context, p *plot.Plot) (*plot.Plot, error) {
	if err := checkTenant(ctx, "plots.update", p.TenantID()); err != nil {
		return nil, err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}
	query := `
		UPDATE plots
		SET uid = $1, estate = $2, number = $3, area_sqm = $4, price = $5,
		    status = $6, updated_at = $7
		WHERE tenant_id = $8 AND id = $9
		RETURNING id
	`
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		nullString(p.UID()),
		p.Estate(),
		p.Number(),
		p.AreaSqm(),
		p.Price(),
		string(p.Status()),
		p.UpdatedAt(),
		p.TenantID().String(),
		p.ID().String(),
	).Scan(&idStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, plot.ErrNotFound
		}
		return nil, gerrors.Wrap(err, "failed to update plot")
	}
	return r.GetByID(ctx, p.ID())
}

func (r *PlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return err
	}
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return err
	}
	tag, err := tx.Exec(ctx, "DELETE FROM plots WHERE tenant_id = $1 AND id = $2", tenantID.String(), id.String())
	if err != nil {
		return gerrors.Wrap(err, "failed to delete plot")
	}
	if tag.RowsAffected() == 0 {
		return plot.ErrNotFound
	}
	return nil
}

func (r *PlotRepository) queryPlots(ctx context.Context, query string, args ...interface{}) ([]*plot.Plot, error) {
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

	var plots []*plot.Plot
	for rows.Next() {
		var m models.Plot
		if err := rows.Scan(
			&m.ID,
			&m.TenantID,
			&m.UID,
			&m.Estate,
			&m.Number,
			&m.AreaSqm,
			&m.Price,
			&m.Status,
			&m.CreatedAt,
			&m.UpdatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan plot row")
		}
		entity, err := toDomainPlot(&m)
		if err != nil {
			return nil, err
		}
		if entity.TenantID() != tenantID {
			return nil, &tenant.IntegrityError{Op: "plots.query", Want: tenantID, Got: entity.TenantID()}
		}
		plots = append(plots, entity)
	}

	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return plots, nil
}
