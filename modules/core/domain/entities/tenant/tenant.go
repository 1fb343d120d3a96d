package tenant

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Tenant is a company: the unit of data partitioning. Its slug is the
// tenant-routing key and is immutable once assigned.
type Tenant struct {
	id                uuid.UUID
	slug              string
	name              string
	tier              Tier
	status            Status
	trialEnd          time.Time
	subscriptionStart time.Time
	subscriptionEnd   time.Time
	graceEnd          time.Time
	readOnly          bool
	quotas            Quotas
	isActive          bool
	createdAt         time.Time
	updatedAt         time.Time
}

// Quotas are per-tenant usage ceilings. Exceeding one is a quota error,
// never a subscription state transition.
type Quotas struct {
	MaxPlots         int
	MaxAgents        int
	MaxDailyRequests int
}

type Option func(*Tenant)

func WithID(id uuid.UUID) Option {
	return func(t *Tenant) {
		t.id = id
	}
}

func WithTier(tier Tier) Option {
	return func(t *Tenant) {
		t.tier = tier
		t.quotas = tier.DefaultQuotas()
	}
}

func WithStatus(status Status) Option {
	return func(t *Tenant) {
		t.status = status
	}
}

func WithTrialEnd(trialEnd time.Time) Option {
	return func(t *Tenant) {
		t.trialEnd = trialEnd
	}
}

func WithSubscriptionPeriod(start, end time.Time) Option {
	return func(t *Tenant) {
		t.subscriptionStart = start
		t.subscriptionEnd = end
	}
}

func WithGraceEnd(graceEnd time.Time) Option {
	return func(t *Tenant) {
		t.graceEnd = graceEnd
	}
}

func WithReadOnly(readOnly bool) Option {
	return func(t *Tenant) {
		t.readOnly = readOnly
	}
}

func WithQuotas(q Quotas) Option {
	return func(t *Tenant) {
		t.quotas = q
	}
}

func WithIsActive(isActive bool) Option {
	return func(t *Tenant) {
		t.isActive = isActive
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(t *Tenant) {
		t.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(t *Tenant) {
		t.updatedAt = updatedAt
	}
}

// New creates a tenant in its initial trial state. The trial length is
// decided by the caller (it is configuration, not business logic).
func New(name, slug string, trialPeriod time.Duration, opts ...Option) *Tenant {
	now := time.Now()
	t := &Tenant{
		id:        uuid.New(),
		slug:      slug,
		name:      name,
		tier:      TierStarter,
		status:    StatusTrial,
		trialEnd:  now.Add(trialPeriod),
		quotas:    TierStarter.DefaultQuotas(),
		isActive:  true,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// NewFromStorage rehydrates a tenant from persisted fields. Unlike New it
// mints no defaults: every field comes from the options.
func NewFromStorage(name, slug string, opts ...Option) *Tenant {
	t := &Tenant{
		name: name,
		slug: slug,
	}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

func (t *Tenant) ID() uuid.UUID {
	return t.id
}

func (t *Tenant) Slug() string {
	return t.slug
}

func (t *Tenant) Name() string {
	return t.name
}

func (t *Tenant) Tier() Tier {
	return t.tier
}

// StoredStatus is the last persisted status. Callers interested in the
// current effective state should use Status(now) instead.
func (t *Tenant) StoredStatus() Status {
	return t.status
}

func (t *Tenant) TrialEnd() time.Time {
	return t.trialEnd
}

func (t *Tenant) SubscriptionStart() time.Time {
	return t.subscriptionStart
}

func (t *Tenant) SubscriptionEnd() time.Time {
	return t.subscriptionEnd
}

func (t *Tenant) GraceEnd() time.Time {
	return t.graceEnd
}

func (t *Tenant) ReadOnly() bool {
	return t.readOnly
}

func (t *Tenant) Quotas() Quotas {
	return t.quotas
}

func (t *Tenant) IsActive() bool {
	return t.isActive
}

func (t *Tenant) CreatedAt() time.Time {
	return t.createdAt
}

func (t *Tenant) UpdatedAt() time.Time {
	return t.updatedAt
}

// Activate records a confirmed payment: the tenant leaves trial (or grace)
// and gets a fresh subscription window. The billing service is the only
// caller.
func (t *Tenant) Activate(start, end, graceEnd time.Time) {
	t.status = StatusActive
	t.subscriptionStart = start
	t.subscriptionEnd = end
	t.graceEnd = graceEnd
	t.readOnly = false
	t.updatedAt = time.Now()
}

// Cancel is an explicit administrative cancellation. Terminal until a new
// payment event re-activates the tenant.
func (t *Tenant) Cancel() {
	t.status = StatusCancelled
	t.updatedAt = time.Now()
}

// Suspend materializes a lapsed state for reporting. Request-time checks do
// not depend on it having run.
func (t *Tenant) Suspend() {
	t.status = StatusSuspended
	t.readOnly = true
	t.updatedAt = time.Now()
}

func (t *Tenant) SetQuotas(q Quotas) {
	t.quotas = q
	t.updatedAt = time.Now()
}

func (t *Tenant) SetTier(tier Tier) {
	t.tier = tier
	t.updatedAt = time.Now()
}

func (t *Tenant) SetIsActive(isActive bool) {
	t.isActive = isActive
	t.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Tenant, error)
	GetBySlug(ctx context.Context, slug string) (*Tenant, error)
	Create(ctx context.Context, t *Tenant) (*Tenant, error)
	Update(ctx context.Context, t *Tenant) (*Tenant, error)
	List(ctx context.Context) ([]*Tenant, error)
}
