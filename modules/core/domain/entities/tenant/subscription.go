package tenant

import "time"

type Status string

const (
	StatusTrial     Status = "trial"
	StatusActive    Status = "active"
	StatusGrace     Status = "grace"
	StatusSuspended Status = "suspended"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

type Tier string

const (
	TierStarter      Tier = "starter"
	TierProfessional Tier = "professional"
	TierEnterprise   Tier = "enterprise"
	TierCustom       Tier = "custom"
)

func (t Tier) DefaultQuotas() Quotas {
	switch t {
	case TierProfessional:
		return Quotas{MaxPlots: 2000, MaxAgents: 50, MaxDailyRequests: 50000}
	case TierEnterprise, TierCustom:
		return Quotas{MaxPlots: 20000, MaxAgents: 500, MaxDailyRequests: 500000}
	default:
		return Quotas{MaxPlots: 200, MaxAgents: 5, MaxDailyRequests: 5000}
	}
}

// AccessLevel is what a subscription state entitles the tenant to.
type AccessLevel int

const (
	// AccessFull allows reads and writes, subject to quotas.
	AccessFull AccessLevel = iota
	// AccessDegraded allows reads and writes at a reduced rate limit.
	AccessDegraded
	// AccessReadOnly rejects all writes outside the public allow-list.
	AccessReadOnly
)

// Status derives the tenant's effective subscription state at the given
// instant. Transitions are computed lazily from stored timestamps, never by a
// background job mutating state.
func (t *Tenant) Status(now time.Time) Status {
	switch t.status {
	case StatusCancelled:
		return StatusCancelled
	case StatusExpired:
		return StatusExpired
	case StatusSuspended:
		return StatusSuspended
	case StatusTrial:
		if now.After(t.trialEnd) {
			return StatusSuspended
		}
		return StatusTrial
	case StatusActive, StatusGrace:
		if !now.After(t.subscriptionEnd) {
			return StatusActive
		}
		if !t.graceEnd.IsZero() && !now.After(t.graceEnd) {
			return StatusGrace
		}
		return StatusSuspended
	default:
		return StatusSuspended
	}
}

// Access is the policy table mapping a derived state to an access level.
func (s Status) Access() AccessLevel {
	switch s {
	case StatusTrial, StatusActive:
		return AccessFull
	case StatusGrace:
		return AccessDegraded
	default:
		return AccessReadOnly
	}
}

// AllowsWrite reports whether a state permits write operations on ordinary
// (non-billing, non-auth) endpoints.
func (s Status) AllowsWrite() bool {
	return s.Access() != AccessReadOnly
}
