package itf

import (
	"context"
	"sync"

	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/estate/domain/entities/allocation"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/person"
	"github.com/plotline-hq/plotline/modules/estate/domain/entities/plot"
	"github.com/plotline-hq/plotline/pkg/composables"
)

// The estate fakes scope every call to the tenant in context, mirroring the
// tenant predicate the SQL repositories put on each query.

type InMemoryPersonRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*person.Person
}

func NewInMemoryPersonRepository() *InMemoryPersonRepository {
	return &InMemoryPersonRepository{records: map[uuid.UUID]*person.Person{}}
}

func (r *InMemoryPersonRepository) GetByID(ctx context.Context, id uuid.UUID) (*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.records[id]
	if !ok || p.TenantID() != tenantID {
		return nil, person.ErrNotFound
	}
	return p, nil
}

func (r *InMemoryPersonRepository) GetByEmail(ctx context.Context, email string) (*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.records {
		if p.TenantID() == tenantID && p.Email() == email {
			return p, nil
		}
	}
	return nil, person.ErrNotFound
}

func (r *InMemoryPersonRepository) List(ctx context.Context, role person.Role) ([]*person.Person, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*person.Person
	for _, p := range r.records {
		if p.TenantID() == tenantID && p.Role() == role {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryPersonRepository) Count(ctx context.Context, role person.Role) (int64, error) {
	list, err := r.List(ctx, role)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *InMemoryPersonRepository) Create(ctx context.Context, p *person.Person) (*person.Person, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID()] = p
	return p, nil
}

func (r *InMemoryPersonRepository) Update(ctx context.Context, p *person.Person) (*person.Person, error) {
	if _, err := r.GetByID(ctx, p.ID()); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID()] = p
	return p, nil
}

func (r *InMemoryPersonRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type InMemoryPlotRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*plot.Plot
}

func NewInMemoryPlotRepository() *InMemoryPlotRepository {
	return &InMemoryPlotRepository{records: map[uuid.UUID]*plot.Plot{}}
}

func (r *InMemoryPlotRepository) GetByID(ctx context.Context, id uuid.UUID) (*plot.Plot, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	p, ok := r.records[id]
	if !ok || p.TenantID() != tenantID {
		return nil, plot.ErrNotFound
	}
	return p, nil
}

func (r *InMemoryPlotRepository) List(ctx context.Context) ([]*plot.Plot, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*plot.Plot
	for _, p := range r.records {
		if p.TenantID() == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r *InMemoryPlotRepository) Count(ctx context.Context) (int64, error) {
	list, err := r.List(ctx)
	if err != nil {
		return 0, err
	}
	return int64(len(list)), nil
}

func (r *InMemoryPlotRepository) Create(ctx context.Context, p *plot.Plot) (*plot.Plot, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID()] = p
	return p, nil
}

func (r *InMemoryPlotRepository) Update(ctx context.Context, p *plot.Plot) (*plot.Plot, error) {
	if _, err := r.GetByID(ctx, p.ID()); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[p.ID()] = p
	return p, nil
}

func (r *InMemoryPlotRepository) Delete(ctx context.Context, id uuid.UUID) error {
	if _, err := r.GetByID(ctx, id); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.records, id)
	return nil
}

type InMemoryAllocationRepository struct {
	mu      sync.RWMutex
	records map[uuid.UUID]*allocation.Allocation
}

func NewInMemoryAllocationRepository() *InMemoryAllocationRepository {
	return &InMemoryAllocationRepository{records: map[uuid.UUID]*allocation.Allocation{}}
}

func (r *InMemoryAllocationRepository) GetByID(ctx context.Context, id uuid.UUID) (*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	a, ok := r.records[id]
	if !ok || a.TenantID() != tenantID {
		return nil, allocation.ErrNotFound
	}
	return a, nil
}

func (r *InMemoryAllocationRepository) List(ctx context.Context) ([]*allocation.Allocation, error) {
	tenantID, err := composables.UseTenantID(ctx)
	if err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*allocation.Allocation
	for _, a := range r.records {
		if a.TenantID() == tenantID {
			out = append(out, a)
		}
	}
	return out, nil
}

func (r *InMemoryAllocationRepository) Create(ctx context.Context, a *allocation.Allocation) (*allocation.Allocation, error) {
	if _, err := composables.UseTenantID(ctx); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[a.ID()] = a
	return a, nil
}

func (r *InMemoryAllocationRepository) Update(ctx context.Context, a *allocation.Allocation) (*allocation.Allocation, error) {
	if _, err := r.GetByID(ctx, a.ID()); err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records[a.ID()] = a
	return a, nil
}

// PassthroughTx runs the function without a database transaction. For
// service tests built on the in-memory repositories.
func PassthroughTx(ctx context.Context, fn func(context.Context) error) error {
	return fn(ctx)
}
