package hooks

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/drivertest"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

func newTestEnv(t *testing.T, dataDir string) *Env {
	t.Helper()
	return &Env{
		DataDir: dataDir,
		Project: models.Project{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
		Mux:     drivertest.NewMultiplexer(),
		VCS:     drivertest.NewVCS(),
		PRHost:  drivertest.NewPRHost(),
		Clock:   drivertest.NewClock("2026-01-01T00:00:00Z"),
		Logger:  drivertest.NewLogger(),
	}
}

func TestDispatch_UnknownIDFails(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}

	err := Dispatch(context.Background(), ID("not_a_hook"), env, task)
	require.Error(t, err)
}

func TestDispatch_AcquireWorkspaceBindsTask(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{env.Project}))
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}
	require.NoError(t, store.SaveTask(dataDir, task))

	require.NoError(t, Dispatch(context.Background(), AcquireWorkspace, env, task))
	require.Equal(t, "demo--1", task.Workspace)
}

func TestSpawnAgent_CreatesNewSessionThenReusesWithNewWindow(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{env.Project}))
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Harness: "claude"}
	require.NoError(t, store.SaveTask(dataDir, task))
	require.NoError(t, Dispatch(context.Background(), AcquireWorkspace, env, task))

	require.NoError(t, Dispatch(context.Background(), SpawnWorker, env, task))
	require.Equal(t, "demo/feat-a", task.Session)

	mux := env.Mux.(*drivertest.Multiplexer)
	exists, err := mux.SessionExists(context.Background(), "demo/feat-a")
	require.NoError(t, err)
	require.True(t, exists)

	task.ReviewRound = 1
	require.NoError(t, Dispatch(context.Background(), SpawnReviewer, env, task))
	require.Equal(t, "demo/feat-a", task.Session)

	history, err := store.LoadHistory(dataDir, "demo", task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2)
}

func TestSpawnAgent_FailsWithoutWorkspace(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}

	err := Dispatch(context.Background(), SpawnWorker, env, task)
	require.Error(t, err)
}

func TestSpawnAgent_FailsWhenMultiplexerUnavailable(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	mux := env.Mux.(*drivertest.Multiplexer)
	mux.Avail = false
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Workspace: "demo--1"}

	err := Dispatch(context.Background(), SpawnWorker, env, task)
	require.Error(t, err)
}

func TestKillReviewer_TargetsWindowFromPriorReviewRound(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Session: "demo/feat-a", ReviewRound: 1}

	// killReviewer never errors and never mutates Session; it only targets
	// the multiplexer window opened before increment_review_round ran.
	require.NoError(t, Dispatch(context.Background(), KillReviewer, env, task))
	require.Equal(t, "demo/feat-a", task.Session)
}

func TestIncrementReviewRound_PersistsIncrement(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", ReviewRound: 1}
	require.NoError(t, store.SaveTask(dataDir, task))

	require.NoError(t, Dispatch(context.Background(), IncrementReviewRound, env, task))
	require.Equal(t, 2, task.ReviewRound)

	reloaded, err := store.LoadTask(dataDir, "demo", "t1")
	require.NoError(t, err)
	require.Equal(t, 2, reloaded.ReviewRound)
}

func TestSpawnNext_DispatchesOldestPendingTask(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)

	older := &models.Task{ID: "a", Project: "demo", Branch: "feat-a", Status: models.StatusPending, CreatedAt: "2026-01-01T00:00:00Z"}
	newer := &models.Task{ID: "b", Project: "demo", Branch: "feat-b", Status: models.StatusPending, CreatedAt: "2026-01-02T00:00:00Z"}
	require.NoError(t, store.SaveTask(dataDir, newer))
	require.NoError(t, store.SaveTask(dataDir, older))

	var dispatched *models.Task
	env.Dispatch = func(ctx context.Context, task *models.Task, to models.TaskStatus) error {
		dispatched = task
		require.Equal(t, models.StatusPlanning, to)
		return nil
	}

	require.NoError(t, Dispatch(context.Background(), SpawnNext, env, older))
	require.NotNil(t, dispatched)
	require.Equal(t, "a", dispatched.ID)
}

func TestSpawnNext_NoopWhenDispatchUnset(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a"}

	require.NoError(t, Dispatch(context.Background(), SpawnNext, env, task))
}

func TestSpawnNext_SwallowsDispatchErrors(t *testing.T) {
	dataDir := t.TempDir()
	env := newTestEnv(t, dataDir)
	task := &models.Task{ID: "a", Project: "demo", Branch: "feat-a", Status: models.StatusPending, CreatedAt: "2026-01-01T00:00:00Z"}
	require.NoError(t, store.SaveTask(dataDir, task))

	env.Dispatch = func(ctx context.Context, task *models.Task, to models.TaskStatus) error {
		return errSentinel
	}

	require.NoError(t, Dispatch(context.Background(), SpawnNext, env, task))
}

var errSentinel = &sentinelErr{}

type sentinelErr struct{}

func (*sentinelErr) Error() string { return "boom" }
