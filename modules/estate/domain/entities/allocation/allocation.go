package allocation

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusPending   Status = "pending"
	StatusCompleted Status = "completed"
	StatusCancelled Status = "cancelled"
)

var ErrNotFound = fmt.Errorf("allocation not found")

// Allocation ties a plot to the client buying it and the marketer who closed
// the deal. All three references live inside one tenant.
type Allocation struct {
	id         uuid.UUID
	tenantID   uuid.UUID
	plotID     uuid.UUID
	clientID   uuid.UUID
	marketerID uuid.UUID
	price      int64
	status     Status
	createdAt  time.Time
	updatedAt  time.Time
}

type Option func(*Allocation)

func WithID(id uuid.UUID) Option {
	return func(a *Allocation) {
		a.id = id
	}
}

func WithStatus(status Status) Option {
	return func(a *Allocation) {
		a.status = status
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(a *Allocation) {
		a.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(a *Allocation) {
		a.updatedAt = updatedAt
	}
}

func New(tenantID, plotID, clientID, marketerID uuid.UUID, price int64, opts ...Option) *Allocation {
	now := time.Now()
	a := &Allocation{
		id:         uuid.New(),
		tenantID:   tenantID,
		plotID:     plotID,
		clientID:   clientID,
		marketerID: marketerID,
		price:      price,
		status:     StatusPending,
		createdAt:  now,
		updatedAt:  now,
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

func (a *Allocation) ID() uuid.UUID {
	return a.id
}

func (a *Allocation) TenantID() uuid.UUID {
	return a.tenantID
}

func (a *Allocation) PlotID() uuid.UUID {
	return a.plotID
}

func (a *Allocation) ClientID() uuid.UUID {
	return a.clientID
}

func (a *Allocation) MarketerID() uuid.UUID {
	return a.marketerID
}

func (a *Allocation) Price() int64 {
	return a.price
}

func (a *Allocation) Status() Status {
	return a.status
}

func (a *Allocation) CreatedAt() time.Time {
	return a.createdAt
}

func (a *Allocation) UpdatedAt() time.Time {
	return a.updatedAt
}

func (a *Allocation) Complete() {
	a.status = StatusCompleted
	a.updatedAt = time.Now()
}

func (a *Allocation) Cancel() {
	a.status = StatusCancelled
	a.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Allocation, error)
	List(ctx context.Context) ([]*Allocation, error)
	Create(ctx context.Context, a *Allocation) (*Allocation, error)
	Update(ctx context.Context, a *Allocation) (*Allocation, error)
}
