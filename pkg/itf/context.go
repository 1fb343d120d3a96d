package itf

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/sirupsen/logrus"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/tenant"
	"github.com/plotline-hq/plotline/pkg/composables"
	"github.com/plotline-hq/plotline/pkg/constants"
)

// TestContext provides a fluent API for building test contexts.
type TestContext struct {
	ctx       context.Context
	tenant    *tenant.Tenant
	principal *composables.Principal
	clock     *clockwork.FakeClock
}

// NewTestContext creates a new TestContext builder.
func NewTestContext() *TestContext {
	return &TestContext{
		ctx:   context.Background(),
		clock: clockwork.NewFakeClockAt(time.Date(2025, time.March, 1, 12, 0, 0, 0, time.UTC)),
	}
}

// WithTenant sets the tenant for the test context.
func (tc *TestContext) WithTenant(t *tenant.Tenant) *TestContext {
	tc.tenant = t
	return tc
}

// WithPrincipal sets the authenticated principal for the test context.
func (tc *TestContext) WithPrincipal(p *composables.Principal) *TestContext {
	tc.principal = p
	return tc
}

// WithClockAt moves the fake clock to the given instant.
func (tc *TestContext) WithClockAt(at time.Time) *TestContext {
	tc.clock = clockwork.NewFakeClockAt(at)
	return tc
}

// TestEnvironment is the built context plus the handles tests poke at.
type TestEnvironment struct {
	Ctx    context.Context
	Tenant *tenant.Tenant
	Clock  *clockwork.FakeClock
}

// Build assembles the context with all configured values.
func (tc *TestContext) Build(tb testing.TB) *TestEnvironment {
	tb.Helper()

	ctx := tc.ctx
	logger := logrus.New()
	logger.SetLevel(logrus.WarnLevel)
	ctx = context.WithValue(ctx, constants.LoggerKey, logrus.NewEntry(logger))
	if tc.tenant != nil {
		ctx = composables.WithTenant(ctx, tc.tenant)
	}
	if tc.principal != nil {
		ctx = composables.WithPrincipal(ctx, tc.principal)
	}
	return &TestEnvironment{
		Ctx:    ctx,
		Tenant: tc.tenant,
		Clock:  tc.clock,
	}
}

// TrialTenant builds a tenant in its trial period, the normal starting state.
func TrialTenant(name, slug string) *tenant.Tenant {
	return tenant.New(name, slug, 14*24*time.Hour)
}

// ActiveTenant builds a tenant with a paid subscription window open around now.
func ActiveTenant(name, slug string, now time.Time) *tenant.Tenant {
	t := tenant.New(name, slug, 14*24*time.Hour)
	t.Activate(now.AddDate(0, -1, 0), now.AddDate(0, 11, 0), now.AddDate(0, 11, 3))
	return t
}

// PrincipalFor builds a principal whose home tenant is t.
func PrincipalFor(t *tenant.Tenant) *composables.Principal {
	return &composables.Principal{
		UserID:   uuid.New(),
		TenantID: t.ID(),
		Email:    "agent@" + t.Slug() + ".example",
		Role:     "agent",
	}
}
