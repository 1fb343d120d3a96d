package plot

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
)

type Status string

const (
	StatusAvailable Status = "available"
	StatusReserved  Status = "reserved"
	StatusSold      Status = "sold"
)

var (
	ErrNotFound = fmt.Errorf("plot not found")
	// ErrNotAvailable means the plot is already reserved or sold.
	ErrNotAvailable = fmt.Errorf("plot is not available")
)

// Plot is a parcel of land in a tenant's inventory.
type Plot struct {
	id        uuid.UUID
	tenantID  uuid.UUID
	uid       string
	estate    string
	number    string
	areaSqm   float64
	price     int64
	status    Status
	createdAt time.Time
	updatedAt time.Time
}

type Option func(*Plot)

func WithID(id uuid.UUID) Option {
	return func(p *Plot) {
		p.id = id
	}
}

func WithUID(uid string) Option {
	return func(p *Plot) {
		p.uid = uid
	}
}

func WithStatus(status Status) Option {
	return func(p *Plot) {
		p.status = status
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *Plot) {
		p.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *Plot) {
		p.updatedAt = updatedAt
	}
}

func New(tenantID uuid.UUID, estate, number string, areaSqm float64, price int64, opts ...Option) *Plot {
	now := time.Now()
	p := &Plot{
		id:        uuid.New(),
		tenantID:  tenantID,
		estate:    estate,
		number:    number,
		areaSqm:   areaSqm,
		price:     price,
		status:    StatusAvailable,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Plot) ID() uuid.UUID {
	return p.id
}

func (p *Plot) TenantID() uuid.UUID {
	return p.tenantID
}

func (p *Plot) UID() string {
	return p.uid
}

func (p *Plot) Estate() string {
	return p.estate
}

func (p *Plot) Number() string {
	return p.number
}

func (p *Plot) AreaSqm() float64 {
	return p.areaSqm
}

func (p *Plot) Price() int64 {
	return p.price
}

func (p *Plot) Status() Status {
	return p.status
}

func (p *Plot) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Plot) UpdatedAt() time.Time {
	return p.updatedAt
}

func (p *Plot) SetUID(uid string) {
	p.uid = uid
	p.updatedAt = time.Now()
}

// Reserve moves an available plot to reserved. Any other starting state is
// ErrNotAvailable.
func (p *Plot) Reserve() error {
	if p.status != StatusAvailable {
		return ErrNotAvailable
	}
	p.status = StatusReserved
	p.updatedAt = time.Now()
	return nil
}

// MarkSold finalizes a reserved plot.
func (p *Plot) MarkSold() error {
	if p.status != StatusReserved {
		return ErrNotAvailable
	}
	p.status = StatusSold
	p.updatedAt = time.Now()
	return nil
}

// Release returns a reserved plot to the market after a cancelled allocation.
func (p *Plot) Release() {
	p.status = StatusAvailable
	p.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Plot, error)
	List(ctx context.Context) ([]*Plot, error)
	Count(ctx context.Context) (int64, error)
	Create(ctx context.Context, p *Plot) (*Plot, error)
	Update(ctx context.Context, p *Plot) (*Plot, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
