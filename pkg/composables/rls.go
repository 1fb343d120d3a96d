package composables

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/plotline-hq/plotline/pkg/configuration"
)

// ApplyTenantRLS pins the transaction to the tenant in scope via Postgres
// row-level security. With RLS enforced, even a query that forgot its
// tenant predicate cannot cross the partition.
//
// A context without a tenant is left unscoped rather than rejected: public
// paths (login, logout, the billing webhook, health) run before tenant
// resolution by design, and without set_config the RLS policies evaluate
// current_setting to NULL, which hides every row of the tenant-scoped
// tables. Unscoped is still fail closed.
func ApplyTenantRLS(ctx context.Context, tx pgx.Tx) error {
	if configuration.Use().RLSEnforce != "enforce" {
		return nil
	}
	tenantID, err := UseTenantID(ctx)
	if err != nil {
		if errors.Is(err, ErrNoTenant) {
			return nil
		}
		return fmt.Errorf("rls requires tenant in context: %w", err)
	}
	_, err = tx.Exec(ctx, "SELECT set_config('app.current_tenant', $1, true)", tenantID.String())
	if err != nil {
		return fmt.Errorf("failed to set rls tenant context: %w", err)
	}
	return nil
}
