package workspace

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/drivertest"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

func TestAcquire_CreatesWorktreeAndChecksOutBranch(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	repoPath := t.TempDir()
	require.NoError(t, os.MkdirAll(filepath.Join(repoPath, ".git", "info"), 0o755))

	vcs := drivertest.NewVCS()
	logger := drivertest.NewLogger()
	mgr := New(dataDir, vcs, logger)

	project := models.Project{Name: "demo", Path: repoPath, DefaultBranch: "main", PoolSize: 2}
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}

	require.NoError(t, mgr.Acquire(ctx, project, task))
	require.Equal(t, "demo--1", task.Workspace)
	require.True(t, vcs.Branches["feat-a"])

	entry, ok, err := store.GetSlot(dataDir, "demo--1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.PoolEntryBound, entry.Status)
	require.Equal(t, "demo/feat-a", entry.Task)
}

func TestAcquire_NoopWhenAlreadyBound(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	vcs := drivertest.NewVCS()
	mgr := New(dataDir, vcs, drivertest.NewLogger())

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Workspace: "demo--1"}
	project := models.Project{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2}

	require.NoError(t, mgr.Acquire(ctx, project, task))
	require.Equal(t, "demo--1", task.Workspace)
	require.Empty(t, vcs.Worktrees)
}

func TestRelease_FailsOnDirtyWorkspaceWithoutForce(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	vcs := drivertest.NewVCS()
	mgr := New(dataDir, vcs, drivertest.NewLogger())

	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	_, _, err := store.AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Workspace: "demo--1"}
	wtPath := store.WorkspaceDir(dataDir, "demo--1")
	vcs.Dirty[wtPath] = true

	err = mgr.Release(ctx, task, false)
	require.Error(t, err)

	entry, ok, loadErr := store.GetSlot(dataDir, "demo--1")
	require.NoError(t, loadErr)
	require.True(t, ok)
	require.Equal(t, models.PoolEntryBound, entry.Status)
}

func TestRelease_ForceSkipsDirtyCheck(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	vcs := drivertest.NewVCS()
	mgr := New(dataDir, vcs, drivertest.NewLogger())

	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	_, _, err := store.AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Workspace: "demo--1"}
	wtPath := store.WorkspaceDir(dataDir, "demo--1")
	vcs.Dirty[wtPath] = true

	require.NoError(t, mgr.Release(ctx, task, true))
	require.Empty(t, task.Workspace)

	entry, ok, loadErr := store.GetSlot(dataDir, "demo--1")
	require.NoError(t, loadErr)
	require.True(t, ok)
	require.Equal(t, models.PoolEntryAvailable, entry.Status)
}
