package services_test

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/plotline-hq/plotline/modules/core/domain/entities/sequence"
	"github.com/plotline-hq/plotline/modules/core/services"
	"github.com/plotline-hq/plotline/pkg/itf"
)

func TestPrefix(t *testing.T) {
	cases := []struct {
		name string
		want string
	}{
		{"Acme", "ACM"},
		{"Acme Estates", "AEC"},
		{"Blue Hill Realty", "BHR"},
		{"Blue Hill Realty Group", "BHR"},
		{"ab", "ABX"},
		{"x", "XXX"},
		{"", "XXX"},
		{"O'Neill & Sons", "ONS"},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.want, services.Prefix(tc.name), "name %q", tc.name)
	}
}

func TestUIDService_Allocate_FormatsAndAdvances(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	repo := itf.NewInMemorySequenceRepository()
	svc := services.NewUIDService(repo)
	ctx := context.Background()

	first, err := svc.Allocate(ctx, acme, sequence.KindClient)
	require.NoError(t, err)
	assert.Equal(t, "ACM-CLT001", first.Display)
	assert.EqualValues(t, 1, first.Sequence)

	second, err := svc.Allocate(ctx, acme, sequence.KindClient)
	require.NoError(t, err)
	assert.Equal(t, "ACM-CLT002", second.Display)

	plot, err := svc.Allocate(ctx, acme, sequence.KindPlot)
	require.NoError(t, err)
	assert.Equal(t, "ACM-PLT001", plot.Display, "kinds count independently")
}

func TestUIDService_Allocate_CollisionGetsTenantSuffix(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	repo := itf.NewInMemorySequenceRepository()
	repo.Claim("ACM-CLT001", uuid.New())
	svc := services.NewUIDService(repo)

	uid, err := svc.Allocate(context.Background(), acme, sequence.KindClient)
	require.NoError(t, err)
	assert.NotEqual(t, "ACM-CLT001", uid.Display)
	assert.Regexp(t, `^ACM-CLT001-[0-9A-F]{4}$`, uid.Display)

	taken, err := repo.ExistsCrossTenant(context.Background(), uid.Display)
	require.NoError(t, err)
	assert.True(t, taken)

	// The registry pre-check spotted the collision, so the suffixed form
	// was claimed on the first and only attempt.
	assert.Equal(t, 1, repo.RegisterCalls)
}

func TestUIDService_Allocate_FailureIsFatal(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	repo := itf.NewInMemorySequenceRepository()
	repo.NextErr = fmt.Errorf("connection refused")
	svc := services.NewUIDService(repo)

	_, err := svc.Allocate(context.Background(), acme, sequence.KindClient)
	require.Error(t, err)
}

func TestUIDService_Allocate_ConcurrentCallersNeverShareAValue(t *testing.T) {
	acme := itf.TrialTenant("Acme", "acme")
	repo := itf.NewInMemorySequenceRepository()
	svc := services.NewUIDService(repo)

	const workers = 50
	var wg sync.WaitGroup
	results := make(chan string, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			uid, err := svc.Allocate(context.Background(), acme, sequence.KindMarketer)
			assert.NoError(t, err)
			results <- uid.Display
		}()
	}
	wg.Wait()
	close(results)

	seen := map[string]bool{}
	for display := range results {
		assert.False(t, seen[display], "duplicate uid %s", display)
		seen[display] = true
	}
	assert.Len(t, seen, workers)
}
