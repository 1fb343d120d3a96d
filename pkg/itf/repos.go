package itf

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/billing/domain/entities/payment"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/audit"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
)

// InMemoryTenantRepository is a map-backed tenant.Repository for tests that
// do not need a database. Safe for concurrent use.
type InMemoryTenantRepository struct {
	mu      sync.RWMutex
	byID    map[uuid.UUID]*tenant.Tenant
	bySlug  map[string]uuid.UUID
	ordered []uuid.UUID
}

func NewInMemoryTenantRepository(tenants ...*tenant.Tenant) *InMemoryTenantRepository {
	r := &InMemoryTenantRepository{
		byID:   map[uuid.UUID]*tenant.Tenant{},
		bySlug: map[string]uuid.UUID{},
	}
	for _, t := range tenants {
		r.byID[t.ID()] = t
		r.bySlug[t.Slug()] = t.ID()
		r.ordered = append(r.ordered, t.ID())
	}
	return r
}

func (r *InMemoryTenantRepository) GetByID(_ context.Context, id uuid.UUID) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	t, ok := r.byID[id]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return t, nil
}

func (r *InMemoryTenantRepository) GetBySlug(_ context.Context, slug string) (*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	id, ok := r.bySlug[slug]
	if !ok {
		return nil, tenant.ErrNotFound
	}
	return r.byID[id], nil
}

func (r *InMemoryTenantRepository) Create(_ context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.byID[t.ID()] = t
	r.bySlug[t.Slug()] = t.ID()
	r.ordered = append(r.ordered, t.ID())
	return t, nil
}

func (r *InMemoryTenantRepository) Update(_ context.Context, t *tenant.Tenant) (*tenant.Tenant, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byID[t.ID()]; !ok {
		return nil, tenant.ErrNotFound
	}
	r.byID[t.ID()] = t
	return t, nil
}

func (r *InMemoryTenantRepository) List(_ context.Context) ([]*tenant.Tenant, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]*tenant.Tenant, 0, len(r.ordered))
	for _, id := range r.ordered {
		out = append(out, r.byID[id])
	}
	return out, nil
}

type seqKey struct {
	tenantID uuid.UUID
	kind     sequence.Kind
}

// InMemorySequenceRepository mirrors the atomic counter semantics of the
// Postgres implementation: each Next call increments under one lock, so
// concurrent callers never see the same value.
type InMemorySequenceRepository struct {
	mu       sync.Mutex
	counters map[seqKey]int64
	registry map[string]uuid.UUID

	// NextErr, when set, makes Next fail. Lets tests exercise the
	// allocation failure path.
	NextErr error

	// RegisterCalls counts claim attempts, taken or not.
	RegisterCalls int
}

func NewInMemorySequenceRepository() *InMemorySequenceRepository {
	return &InMemorySequenceRepository{
		counters: map[seqKey]int64{},
		registry: map[string]uuid.UUID{},
	}
}

func (r *InMemorySequenceRepository) Next(_ context.Context, tenantID uuid.UUID, kind sequence.Kind) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.NextErr != nil {
		return 0, r.NextErr
	}
	k := seqKey{tenantID: tenantID, kind: kind}
	r.counters[k]++
	return r.counters[k], nil
}

func (r *InMemorySequenceRepository) Register(_ context.Context, uid sequence.UID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.RegisterCalls++
	if _, taken := r.registry[uid.Display]; taken {
		return sequence.ErrUIDTaken
	}
	r.registry[uid.Display] = uid.TenantID
	return nil
}

func (r *InMemorySequenceRepository) ExistsCrossTenant(_ context.Context, display string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.registry[display]
	return ok, nil
}

// Claim pre-registers a display UID, simulating another tenant holding it.
func (r *InMemorySequenceRepository) Claim(display string, tenantID uuid.UUID) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.registry[display] = tenantID
}

// InMemoryPaymentRepository is a map-backed payment.Repository.
type InMemoryPaymentRepository struct {
	mu      sync.RWMutex
	records []*payment.Payment
}

func NewInMemoryPaymentRepository() *InMemoryPaymentRepository {
	return &InMemoryPaymentRepository{}
}

func (r *InMemoryPaymentRepository) Create(_ context.Context, p *payment.Payment) (*payment.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.records = append(r.records, p)
	return p, nil
}

func (r *InMemoryPaymentRepository) GetByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, p := range r.records {
		if p.TenantID() == tenantID && p.ExternalID() == externalID {
			return p, nil
		}
	}
	return nil, payment.ErrNotFound
}

func (r *InMemoryPaymentRepository) List(_ context.Context, tenantID uuid.UUID) ([]*payment.Payment, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*payment.Payment
	for _, p := range r.records {
		if p.TenantID() == tenantID {
			out = append(out, p)
		}
	}
	return out, nil
}

// InMemoryAuditRepository collects cross-tenant rejection entries in order.
type InMemoryAuditRepository struct {
	mu      sync.Mutex
	entries []audit.Entry
}

func NewInMemoryAuditRepository() *InMemoryAuditRepository {
	return &InMemoryAuditRepository{}
}

func (r *InMemoryAuditRepository) Record(_ context.Context, e audit.Entry) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	e.ID = int64(len(r.entries) + 1)
	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now()
	}
	r.entries = append(r.entries, e)
	return nil
}

func (r *InMemoryAuditRepository) ListRecent(_ context.Context, limit int) ([]audit.Entry, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if limit <= 0 || limit > len(r.entries) {
		limit = len(r.entries)
	}
	out := make([]audit.Entry, limit)
	copy(out, r.entries[len(r.entries)-limit:])
	return out, nil
}
