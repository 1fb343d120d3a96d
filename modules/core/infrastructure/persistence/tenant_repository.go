package persistence

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"

	gerrors "github.com/go-faster/errors"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/core/infrastructure/persistence/models"
	"github.com/plotline-hq/plotline/pkg/composables"
)

// ErrSlugTaken means another company already claimed the slug.
var ErrSlugTaken = gerrors.New("company slug already taken")

const companyFindQuery = `
	SELECT id, slug, name, tier, status, trial_end, subscription_start,
	       subscription_end, grace_end, read_only, max_plots, max_agents,
	       max_daily_requests, is_active, created_at, updated_at
	FROM companies`

type TenantRepository struct{}

func NewTenantRepository() tenant.Repository {
	return &TenantRepository{}
}

func (r *TenantRepository) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	tenants, err := r.queryCompanies(ctx, companyFindQuery+" WHERE id = $1", id.String())
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, tenant.ErrNotFound
	}
	return tenants[0], nil
}

func (r *TenantRepository) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	slug = strings.ToLower(strings.TrimSpace(slug))
	tenants, err := r.queryCompanies(ctx, companyFindQuery+" WHERE slug = $1", slug)
	if err != nil {
		return nil, err
	}
	if len(tenants) == 0 {
		return nil, tenant.ErrNotFound
	}
	return tenants[0], nil
}

func (r *TenantRepository) Create(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	query := `
		INSERT INTO companies (
			id, slug, name, tier, status, trial_end, subscription_start,
			subscription_end, grace_end, read_only, max_plots, max_agents,
			max_daily_requests, is_active, created_at, updated_at
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, $13, $14, $15, $16)
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := t.Quotas()
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		t.ID().String(),
		strings.ToLower(strings.TrimSpace(t.Slug())),
		t.Name(),
		string(t.Tier()),
		string(t.StoredStatus()),
		nullTime(t.TrialEnd()),
		nullTime(t.SubscriptionStart()),
		nullTime(t.SubscriptionEnd()),
		nullTime(t.GraceEnd()),
		t.ReadOnly(),
		q.MaxPlots,
		q.MaxAgents,
		q.MaxDailyRequests,
		t.IsActive(),
		t.CreatedAt(),
		t.UpdatedAt(),
	).Scan(&idStr); err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return nil, ErrSlugTaken
		}
		return nil, gerrors.Wrap(err, "failed to create company")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

// Update never touches the slug: it is the tenant-routing key and immutable
// once assigned.
func (r *TenantRepository) Update(ctx context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	query := `
		UPDATE companies
		SET name = $1, tier = $2, status = $3, trial_end = $4,
		    subscription_start = $5, subscription_end = $6, grace_end = $7,
		    read_only = $8, max_plots = $9, max_agents = $10,
		    max_daily_requests = $11, is_active = $12, updated_at = $13
		WHERE id = $14
		RETURNING id
	`
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, err
	}

	q := t.Quotas()
	var idStr string
	if err := tx.QueryRow(
		ctx,
		query,
		t.Name(),
		string(t.Tier()),
		string(t.StoredStatus()),
		nullTime(t.TrialEnd()),
		nullTime(t.SubscriptionStart()),
		nullTime(t.SubscriptionEnd()),
		nullTime(t.GraceEnd()),
		t.ReadOnly(),
		q.MaxPlots,
		q.MaxAgents,
		q.MaxDailyRequests,
		t.IsActive(),
		t.UpdatedAt(),
		t.ID().String(),
	).Scan(&idStr); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, tenant.ErrNotFound
		}
		return nil, gerrors.Wrap(err, "failed to update company")
	}

	id, err := uuid.Parse(idStr)
	if err != nil {
		return nil, err
	}
	return r.GetByID(ctx, id)
}

func (r *TenantRepository) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return r.queryCompanies(ctx, companyFindQuery+" ORDER BY created_at")
}

func (r *TenantRepository) queryCompanies(ctx context.Context, query string, args ...interface{}) ([]*tenant.Tenant, error) {
	tx, err := composables.UseTx(ctx)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to get transaction")
	}

	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, gerrors.Wrap(err, "failed to execute query")
	}
	defer rows.Close()

	var tenants []*tenant.Tenant
	for rows.Next() {
		var c models.Company
		if err := rows.Scan(
			&c.ID,
			&c.Slug,
			&c.Name,
			&c.Tier,
			&c.Status,
			&c.TrialEnd,
			&c.SubscriptionStart,
			&c.SubscriptionEnd,
			&c.GraceEnd,
			&c.ReadOnly,
			&c.MaxPlots,
			&c.MaxAgents,
			&c.MaxDailyRequests,
			&c.IsActive,
			&c.CreatedAt,
			&c.UpdatedAt,
		); err != nil {
			return nil, gerrors.Wrap(err, "failed to scan company row")
		}
		tenants = append(tenants, toDomainTenant(&c))
	}

	if err := rows.Err(); err != nil {
		return nil, gerrors.Wrap(err, "row iteration error")
	}
	return tenants, nil
}

func nullTime(t time.Time) sql.NullTime {
	if t.IsZero() {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t, Valid: true}
}
