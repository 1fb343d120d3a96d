package services

import (
	"context"
	"regexp"
	"time"

	"github.com/go-faster/errors"
	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/configuration"
	"github.com/plotline-hq/plotline/pkg/eventbus"
	"github.com/plotline-hq/plotline/pkg/serrors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]([a-z0-9-]{0,61}[a-z0-9])?$`)

var ErrInvalidSlug = serrors.NewError("INVALID_SLUG", "slug must be lowercase alphanumeric with hyphens", "tenants.errors.invalid_slug")

type TenantService struct {
	repo      tenant.Repository
	publisher eventbus.EventBus
}

func NewTenantService(repo tenant.Repository, publisher eventbus.EventBus) *TenantService {
	return &TenantService{
		repo:      repo,
		publisher: publisher,
	}
}

func (s *TenantService) GetByID(ctx context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *TenantService) GetBySlug(ctx context.Context, slug string) (*tenant.Tenant, error) {
	return s.repo.GetBySlug(ctx, slug)
}

func (s *TenantService) List(ctx context.Context) ([]*tenant.Tenant, error) {
	return s.repo.List(ctx)
}

// Create provisions a new tenant starting its trial period. The slug is
// immutable after creation, so it is validated here and nowhere else.
func (s *TenantService) Create(ctx context.Context, name, slug string, opts ...tenant.Option) (*tenant.Tenant, error) {
	if !slugPattern.MatchString(slug) {
		return nil, ErrInvalidSlug
	}
	conf := configuration.Use()
	entity := tenant.New(name, slug, conf.Billing.TrialPeriod(), opts...)
	created, err := s.repo.Create(ctx, entity)
	if err != nil {
		return nil, err
	}
	s.publisher.Publish(tenant.NewCreatedEvent(created))
	return created, nil
}

func (s *TenantService) Update(ctx context.Context, entity *tenant.Tenant) (*tenant.Tenant, error) {
	return s.repo.Update(ctx, entity)
}

// MaterializeLapsed walks every tenant and persists the suspended status for
// those whose grace window has already closed. Statuses are derived lazily on
// read, so this sweep only exists to make reporting queries against the
// companies table see the same state the application does.
func (s *TenantService) MaterializeLapsed(ctx context.Context, now time.Time) (int, error) {
	tenants, err := s.repo.List(ctx)
	if err != nil {
		return 0, errors.Wrap(err, "listing tenants for suspension sweep")
	}
	var updated int
	for _, t := range tenants {
		derived := t.Status(now)
		if derived != tenant.StatusSuspended || t.StoredStatus() == tenant.StatusSuspended {
			continue
		}
		from := t.StoredStatus()
		t.Suspend()
		if _, err := s.repo.Update(ctx, t); err != nil {
			return updated, errors.Wrapf(err, "suspending tenant %s", t.ID())
		}
		s.publisher.Publish(tenant.NewSubscriptionChangedEvent(t, from, tenant.StatusSuspended))
		updated++
	}
	return updated, nil
}
