package sequence

import (
	"context"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates the per-tenant counters: each (tenant, kind) pair is an
// independent, monotonically increasing, gap-tolerant sequence.
type Kind string

const (
	KindClient   Kind = "client"
	KindMarketer Kind = "marketer"
	KindPlot     Kind = "plot"
)

// Code is the short tag embedded in display UIDs, e.g. CLT in ACM-CLT003.
func (k Kind) Code() string {
	switch k {
	case KindClient:
		return "CLT"
	case KindMarketer:
		return "MKT"
	case KindPlot:
		return "PLT"
	default:
		up := strings.ToUpper(string(k))
		if len(up) > 3 {
			return up[:3]
		}
		return up
	}
}

// ErrUIDTaken means the assembled display UID already exists somewhere in
// the system and needs disambiguation before persisting.
var ErrUIDTaken = fmt.Errorf("uid already taken")

// AllocationError means the atomic counter update failed after retries.
// Fatal to the creation operation; callers must not fall back to a
// non-atomic guess.
type AllocationError struct {
	TenantID uuid.UUID
	Kind     Kind
	Err      error
}

func (e *AllocationError) Error() string {
	return fmt.Sprintf("sequence allocation failed for kind %q: %v", e.Kind, e.Err)
}

func (e *AllocationError) Unwrap() error {
	return e.Err
}

// UID is a minted, globally unique human-readable identifier.
type UID struct {
	TenantID uuid.UUID
	Kind     Kind
	Sequence int64
	Display  string
}

type Repository interface {
	// Next atomically increments and returns the counter for (tenant, kind).
	// The increment and read are one statement against persistent storage;
	// concurrent callers can never observe the same value.
	Next(ctx context.Context, tenantID uuid.UUID, kind Kind) (int64, error)

	// Register claims a display UID in the global registry. Returns
	// ErrUIDTaken if any tenant already holds it.
	Register(ctx context.Context, uid UID) error

	// ExistsCrossTenant reports whether a display UID is claimed anywhere in
	// the system. This is a privileged cross-tenant read, used only for
	// global-uniqueness checks.
	ExistsCrossTenant(ctx context.Context, display string) (bool, error)
}
