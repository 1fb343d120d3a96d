package tenant

import (
	"fmt"

	"github.com/google/uuid"
)

var (
	// ErrNotFound means a tenant slug or ID was given but no tenant matches.
	// Distinct from "no tenant in scope": callers must not treat it as an
	// anonymous context.
	ErrNotFound = fmt.Errorf("tenant not found")
)

// MismatchError is raised when an authenticated principal's home tenant
// differs from the tenant a request is addressed to. Always fails closed.
type MismatchError struct {
	RequestSlug     string
	RequestTenant   uuid.UUID
	PrincipalTenant uuid.UUID
}

func (e *MismatchError) Error() string {
	return fmt.Sprintf("tenant mismatch: request addressed to %q does not belong to the principal's tenant", e.RequestSlug)
}

// IntegrityError is raised on an attempt to persist a tenant-scoped record
// with a missing or wrong tenant reference. Never auto-corrected.
type IntegrityError struct {
	Op   string
	Want uuid.UUID
	Got  uuid.UUID
}

func (e *IntegrityError) Error() string {
	if e.Got == uuid.Nil {
		return fmt.Sprintf("tenant integrity violation in %s: record has no tenant reference", e.Op)
	}
	return fmt.Sprintf("tenant integrity violation in %s: record belongs to another tenant", e.Op)
}

// SubscriptionRequiredError means the tenant's current subscription state
// disallows the requested operation. Carries enough to redirect to billing,
// never any cross-tenant data.
type SubscriptionRequiredError struct {
	Status    Status
	Operation string
}

func (e *SubscriptionRequiredError) Error() string {
	return fmt.Sprintf("subscription required: %s is not allowed while %s", e.Operation, e.Status)
}

// QuotaExceededError means a usage ceiling was hit. Can happen in any state,
// including active.
type QuotaExceededError struct {
	Resource string
	Limit    int
	Used     int
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %d of %d used", e.Resource, e.Used, e.Limit)
}
