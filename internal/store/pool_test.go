package store

import (
	"context"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

func TestAcquireSlot_CreatesThenReuses(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	name, created, err := AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)
	require.True(t, created)
	require.Equal(t, "demo--1", name)

	require.NoError(t, ReleaseSlot(ctx, dataDir, name))

	name2, created2, err := AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-b")
	require.NoError(t, err)
	require.False(t, created2)
	require.Equal(t, "demo--1", name2)
}

func TestAcquireSlot_ExhaustsAtPoolSize(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	_, _, err := AcquireSlot(ctx, dataDir, "demo", 1, "demo/feat-a")
	require.NoError(t, err)

	_, _, err = AcquireSlot(ctx, dataDir, "demo", 1, "demo/feat-b")
	require.Error(t, err)
	require.True(t, errs.Of(err, errs.KindPoolExhausted))
}

func TestReleaseSlot_IdempotentOnAlreadyAvailable(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	name, _, err := AcquireSlot(ctx, dataDir, "demo", 1, "demo/feat-a")
	require.NoError(t, err)
	require.NoError(t, ReleaseSlot(ctx, dataDir, name))
	require.NoError(t, ReleaseSlot(ctx, dataDir, name)) // concurrent-release tolerance

	entry, ok, err := GetSlot(dataDir, name)
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.PoolEntryAvailable, entry.Status)
}

func TestInitPool_Idempotent(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	require.NoError(t, InitPool(ctx, dataDir, "demo"))
	first, err := LoadPool(dataDir)
	require.NoError(t, err)

	require.NoError(t, InitPool(ctx, dataDir, "demo"))
	second, err := LoadPool(dataDir)
	require.NoError(t, err)

	require.Equal(t, first, second)
}

func TestAcquireSlot_ConcurrentSerializesThroughLock(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()

	var wg sync.WaitGroup
	results := make([]string, 4)
	errsOut := make([]error, 4)
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			name, _, err := AcquireSlot(ctx, dataDir, "demo", 4, "demo/feat")
			results[i] = name
			errsOut[i] = err
		}(i)
	}
	wg.Wait()

	seen := map[string]bool{}
	for i, err := range errsOut {
		require.NoError(t, err)
		require.False(t, seen[results[i]], "workspace %q acquired twice", results[i])
		seen[results[i]] = true
	}
	require.Len(t, seen, 4)
}
