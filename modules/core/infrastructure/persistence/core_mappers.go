package persistence

import (
	"time"

	"github.com/google/uuid"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/modules/core/infrastructure/persistence/models"
)

func toDomainTenant(c *models.Company) *tenant.Tenant {
	id, err := uuid.Parse(c.ID)
	if err != nil {
		id = uuid.Nil
	}

	var subStart, subEnd time.Time
	if c.SubscriptionStart.Valid {
		subStart = c.SubscriptionStart.Time
	}
	if c.SubscriptionEnd.Valid {
		subEnd = c.SubscriptionEnd.Time
	}

	opts := []tenant.Option{
		tenant.WithID(id),
		tenant.WithTier(tenant.Tier(c.Tier)),
		tenant.WithStatus(tenant.Status(c.Status)),
		tenant.WithSubscriptionPeriod(subStart, subEnd),
		tenant.WithReadOnly(c.ReadOnly),
		tenant.WithQuotas(tenant.Quotas{
			MaxPlots:         c.MaxPlots,
			MaxAgents:        c.MaxAgents,
			MaxDailyRequests: c.MaxDailyRequests,
		}),
		tenant.WithIsActive(c.IsActive),
		tenant.WithCreatedAt(c.CreatedAt),
		tenant.WithUpdatedAt(c.UpdatedAt),
	}
	if c.TrialEnd.Valid {
		opts = append(opts, tenant.WithTrialEnd(c.TrialEnd.Time))
	}
	if c.GraceEnd.Valid {
		opts = append(opts, tenant.WithGraceEnd(c.GraceEnd.Time))
	}

	return tenant.NewFromStorage(c.Name, c.Slug, opts...)
}
