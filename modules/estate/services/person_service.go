package services

import (
	"context"

	"github.com/google/uuid"

	coreservices "github.com/plotline-hq/plotline/modules/core/services"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/pkg/composables"
)

type PersonService struct {
	repo person.Repository
	uids *coreservices.UIDService
}

func NewPersonService(repo person.Repository, uids *coreservices.UIDService) *PersonService {
	return &PersonService{
		repo: repo,
		uids: uids,
	}
}

func (s *PersonService) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *PersonService) List(ctx context.Context, role person.Role) ([]*person.Person, error) {
	return s.repo.List(ctx, role)
}

// Create registers a client or marketer for the tenant in scope and mints
// their display UID. Marketers count against the agent quota; clients are
// unbounded.
func (s *PersonService) Create(ctx context.Context, role person.Role, firstName, lastName string, opts ...person.Option) (*person.Person, error) {
	t, err := composables.UseTenant(ctx)
	if err != nil {
		return nil, err
	}

	if role == person.RoleMarketer {
		used, err := s.repo.Count(ctx, person.RoleMarketer)
		if err != nil {
			return nil, err
		}
		if limit := t.Quotas().MaxAgents; used >= int64(limit) {
			return nil, &tenant.QuotaExceededError{Resource: "agents", Limit: limit, Used: int(used)}
		}
	}

	kind := sequence.KindClient
	if role == person.RoleMarketer {
		kind = sequence.KindMarketer
	}
	uid, err := s.uids.Allocate(ctx, t, kind)
	if err != nil {
		return nil, err
	}

	entity := person.New(t.ID(), role, firstName, lastName, opts...)
	entity.SetUID(uid.Display)
	return s.repo.Create(ctx, entity)
}

func (s *PersonService) Update(ctx context.Context, p *person.Person) (*person.Person, error) {
	return s.repo.Update(ctx, p)
}

func (s *PersonService) Delete(ctx context.Context, id uuid.UUID) error {
	return s.repo.Delete(ctx, id)
}
