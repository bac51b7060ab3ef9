package actions

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers"
	"github.com/rigctl/rigctl/internal/drivers/drivertest"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

func newTestEnv(t *testing.T, dataDir string) (*Env, *drivertest.VCS) {
	t.Helper()
	vcs := drivertest.NewVCS()
	env := &Env{
		DataDir: dataDir,
		VCS:     vcs,
		Mux:     drivertest.NewMultiplexer(),
		PRHost:  drivertest.NewPRHost(),
		Clock:   drivertest.NewClock("2026-01-01T00:00:00Z"),
		Logger:  drivertest.NewLogger(),
	}
	return env, vcs
}

func seedProject(t *testing.T, dataDir string) {
	t.Helper()
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
}

func TestCreate_AssignsIDAndAppendsEvent(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task, err := env.Create(ctx, CreateParams{Project: "demo", Branch: "feat-a", Summary: "Add A"})
	require.NoError(t, err)
	require.NotEmpty(t, task.ID)
	require.Equal(t, models.StatusPending, task.Status)

	history, err := store.LoadHistory(dataDir, "demo", task.ID)
	require.NoError(t, err)
	require.Len(t, history, 1)
	require.Equal(t, models.EventTaskCreated, history[0].Type)
}

func TestCreate_SuffixesDuplicateBranch(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, vcs := newTestEnv(t, dataDir)
	vcs.Branches["feat-a"] = true

	task, err := env.Create(ctx, CreateParams{Project: "demo", Branch: "feat-a", Summary: "Add A"})
	require.NoError(t, err)
	require.Equal(t, "feat-a-2", task.Branch)
}

func TestCreate_AutoSpawnAdvancesToPlanning(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task, err := env.Create(ctx, CreateParams{
		Project: "demo", Branch: "feat-a", Summary: "Add A", AutoSpawn: true,
	})
	require.NoError(t, err)
	require.Equal(t, models.StatusPlanning, task.Status)
	require.Equal(t, "demo--1", task.Workspace)
}

func TestCancel_TransitionsToCancelledAndReleasesWorkspace(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task, err := env.Create(ctx, CreateParams{Project: "demo", Branch: "feat-a", Summary: "x", AutoSpawn: true})
	require.NoError(t, err)

	require.NoError(t, env.Cancel(ctx, task))
	require.Equal(t, models.StatusCancelled, task.Status)
	require.Empty(t, task.Workspace)

	entry, ok, err := store.GetSlot(dataDir, "demo--1")
	require.NoError(t, err)
	require.True(t, ok)
	require.Equal(t, models.PoolEntryAvailable, entry.Status)
}

func TestMerge_LocalFastForward(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task := &models.Task{
		ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusReviewing,
		Workspace: "demo--1", Session: "demo/feat-a",
	}
	_, _, err := store.AcquireSlot(ctx, dataDir, "demo", 2, "demo/feat-a")
	require.NoError(t, err)
	require.NoError(t, store.SaveTask(dataDir, task))

	require.NoError(t, env.Merge(ctx, task, models.MergeStrategyFastForward, false))
	require.Equal(t, models.StatusDone, task.Status)
	require.Empty(t, task.Workspace)
	require.Empty(t, task.Session)

	history, err := store.LoadHistory(dataDir, "demo", task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
	require.Equal(t, models.EventTaskMerged, history[0].Type)
	require.Equal(t, models.EventStatusChanged, history[1].Type)
}

func TestMerge_PRMergedSkipsLocalMerge(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)
	prHost := env.PRHost.(*drivertest.PRHost)
	prHost.SetStatus("feat-a", drivers.PRStatus{Exists: true, State: "MERGED", MergeCommit: "abc123"})

	task := &models.Task{
		ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusReviewing,
		PRUrl: "https://example.invalid/pull/42",
	}
	require.NoError(t, store.SaveTask(dataDir, task))

	require.NoError(t, env.Merge(ctx, task, "", false))
	require.Equal(t, models.StatusDone, task.Status)

	history, err := store.LoadHistory(dataDir, "demo", task.ID)
	require.NoError(t, err)
	require.Len(t, history, 3)
	require.Equal(t, models.EventPRMerged, history[0].Type)
	require.Equal(t, models.EventTaskMerged, history[1].Type)
	merged := history[1].Payload.(models.TaskMergedPayload)
	require.Equal(t, "abc123", merged.CommitHash)
	require.Equal(t, "pr", merged.Strategy)
}

func TestMerge_PROpenFails(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)
	prHost := env.PRHost.(*drivertest.PRHost)
	prHost.SetStatus("feat-a", drivers.PRStatus{Exists: true, State: "OPEN"})

	task := &models.Task{
		ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusReviewing,
		PRUrl: "https://example.invalid/pull/42",
	}
	require.NoError(t, store.SaveTask(dataDir, task))

	err := env.Merge(ctx, task, "", false)
	require.Error(t, err)
}

func TestMerge_RequiresReviewingStatus(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusWorking}
	err := env.Merge(ctx, task, models.MergeStrategyFastForward, false)
	require.Error(t, err)
}

func TestDelete_OnlyAllowsTerminalTasks(t *testing.T) {
	ctx := context.Background()
	dataDir := t.TempDir()
	seedProject(t, dataDir)
	env, _ := newTestEnv(t, dataDir)

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusWorking}
	require.Error(t, env.Delete(ctx, task))

	task.Status = models.StatusDone
	require.NoError(t, store.SaveTask(dataDir, task))
	require.NoError(t, env.Delete(ctx, task))

	_, err := store.LoadTask(dataDir, "demo", "t1")
	require.Error(t, err)
}
