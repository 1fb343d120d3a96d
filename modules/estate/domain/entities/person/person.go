package person

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// Role discriminates the two kinds of people a company tracks. One record
// type with a role column, not separate tables: a marketer who buys a plot
// stays one row.
type Role string

const (
	RoleClient   Role = "client"
	RoleMarketer Role = "marketer"
)

// Person is a client or marketer belonging to exactly one tenant. The UID is
// the human-facing identifier minted by the sequence allocator.
type Person struct {
	id           uuid.UUID
	tenantID     uuid.UUID
	uid          string
	role         Role
	firstName    string
	lastName     string
	email        string
	phone        string
	passwordHash string
	createdAt    time.Time
	updatedAt    time.Time
}

type Option func(*Person)

func WithID(id uuid.UUID) Option {
	return func(p *Person) {
		p.id = id
	}
}

func WithUID(uid string) Option {
	return func(p *Person) {
		p.uid = uid
	}
}

func WithEmail(email string) Option {
	return func(p *Person) {
		p.email = email
	}
}

func WithPhone(phone string) Option {
	return func(p *Person) {
		p.phone = phone
	}
}

func WithPasswordHash(hash string) Option {
	return func(p *Person) {
		p.passwordHash = hash
	}
}

func WithCreatedAt(createdAt time.Time) Option {
	return func(p *Person) {
		p.createdAt = createdAt
	}
}

func WithUpdatedAt(updatedAt time.Time) Option {
	return func(p *Person) {
		p.updatedAt = updatedAt
	}
}

func New(tenantID uuid.UUID, role Role, firstName, lastName string, opts ...Option) *Person {
	now := time.Now()
	p := &Person{
		id:        uuid.New(),
		tenantID:  tenantID,
		role:      role,
		firstName: firstName,
		lastName:  lastName,
		createdAt: now,
		updatedAt: now,
	}
	for _, opt := range opts {
		opt(p)
	}
	return p
}

func (p *Person) ID() uuid.UUID {
	return p.id
}

func (p *Person) TenantID() uuid.UUID {
	return p.tenantID
}

func (p *Person) UID() string {
	return p.uid
}

func (p *Person) Role() Role {
	return p.role
}

func (p *Person) FirstName() string {
	return p.firstName
}

func (p *Person) LastName() string {
	return p.lastName
}

func (p *Person) FullName() string {
	if p.firstName == "" {
		return p.lastName
	}
	if p.lastName == "" {
		return p.firstName
	}
	return p.firstName + " " + p.lastName
}

func (p *Person) Email() string {
	return p.email
}

func (p *Person) Phone() string {
	return p.phone
}

func (p *Person) PasswordHash() string {
	return p.passwordHash
}

func (p *Person) CreatedAt() time.Time {
	return p.createdAt
}

func (p *Person) UpdatedAt() time.Time {
	return p.updatedAt
}

// SetUID records the minted identifier. Assigned once at creation.
func (p *Person) SetUID(uid string) {
	p.uid = uid
	p.updatedAt = time.Now()
}

func (p *Person) SetContact(email, phone string) {
	p.email = email
	p.phone = phone
	p.updatedAt = time.Now()
}

type Repository interface {
	GetByID(ctx context.Context, id uuid.UUID) (*Person, error)
	GetByEmail(ctx context.Context, email string) (*Person, error)
	List(ctx context.Context, role Role) ([]*Person, error)
	Count(ctx context.Context, role Role) (int64, error)
	Create(ctx context.Context, p *Person) (*Person, error)
	Update(ctx context.Context, p *Person) (*Person, error)
	Delete(ctx context.Context, id uuid.UUID) error
}
