package doctor

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

func TestOrphanedWorkspaceCheck_FlagsBoundSlotWithNoMatchingTask(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	_, _, err := store.AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)

	findings, err := (&OrphanedWorkspaceCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
	require.Equal(t, SeverityWarn, findings[0].Severity)
}

func TestOrphanedWorkspaceCheck_OKWhenTaskReferencesSlot(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	name, _, err := store.AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Workspace: name}
	require.NoError(t, store.SaveTask(dataDir, task))

	findings, err := (&OrphanedWorkspaceCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestUnknownProjectCheck_FlagsTaskDirWithoutRegisteredProject(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	require.NoError(t, store.SaveTask(dataDir, &models.Task{ID: "t1", Project: "ghost", Branch: "feat-a"}))

	findings, err := (&UnknownProjectCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestUnknownProjectCheck_OKWhenProjectRegistered(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	require.NoError(t, store.SaveTask(dataDir, &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}))

	findings, err := (&UnknownProjectCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestPoolNumberingGapCheck_FlagsGap(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	doc, err := store.LoadPool(dataDir)
	require.NoError(t, err)
	doc.Workspaces["demo--1"] = models.PoolEntry{Status: models.PoolEntryAvailable}
	doc.Workspaces["demo--3"] = models.PoolEntry{Status: models.PoolEntryAvailable}
	require.NoError(t, store.SavePool(dataDir, doc))

	findings, err := (&PoolNumberingGapCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Len(t, findings, 1)
}

func TestPoolNumberingGapCheck_OKWhenContiguous(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	doc, err := store.LoadPool(dataDir)
	require.NoError(t, err)
	doc.Workspaces["demo--1"] = models.PoolEntry{Status: models.PoolEntryAvailable}
	doc.Workspaces["demo--2"] = models.PoolEntry{Status: models.PoolEntryBound, Task: "demo/feat-a"}
	require.NoError(t, store.SavePool(dataDir, doc))

	findings, err := (&PoolNumberingGapCheck{}).Run(ctx, dataDir)
	require.NoError(t, err)
	require.Empty(t, findings)
}

func TestDoctor_RunAggregatesAllChecks(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	require.NoError(t, store.SaveTask(dataDir, &models.Task{ID: "t1", Project: "ghost", Branch: "feat-a"}))

	d := Default()
	findings := d.Run(ctx, dataDir)
	require.NotEmpty(t, findings)
}
