package persistence

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRegisterUIDQuery_ConflictDoesNotAbortTransaction(t *testing.T) {
	// A raised unique violation would poison the request-wide transaction,
	// so the claim must resolve conflicts without erroring.
	require.Contains(t, registerUIDQuery, "ON CONFLICT (display) DO NOTHING")
	require.NotContains(t, registerUIDQuery, "RETURNING")
}

func TestNextSequenceQuery_SingleAtomicStatement(t *testing.T) {
	require.Contains(t, nextSequenceQuery, "ON CONFLICT (tenant_id, kind)")
	require.Contains(t, nextSequenceQuery, "RETURNING last_value")
	require.Equal(t, 1, strings.Count(nextSequenceQuery, "INSERT"))
}
