package transition

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/drivertest"
	"github.com/rigctl/rigctl/internal/hooks"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

func newExecutor(t *testing.T, dataDir string) *Executor {
	t.Helper()
	clock := drivertest.NewClock("2026-01-01T00:00:00Z")
	env := &hooks.Env{
		DataDir: dataDir,
		Project: models.Project{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
		Mux:     drivertest.NewMultiplexer(),
		VCS:     drivertest.NewVCS(),
		PRHost:  drivertest.NewPRHost(),
		Clock:   clock,
		Logger:  drivertest.NewLogger(),
	}
	return &Executor{DataDir: dataDir, Env: env, Clock: clock, Logger: drivertest.NewLogger()}
}

func TestApply_NoValidTransitionFails(t *testing.T) {
	dataDir := t.TempDir()
	ex := newExecutor(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusDone}

	_, err := ex.Apply(context.Background(), task, models.StatusWorking)
	require.Error(t, err)
}

func TestApply_GateFailedLeavesStatusUnchanged(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	ex := newExecutor(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusPlanning, Body: "no plan"}

	_, err := ex.Apply(context.Background(), task, models.StatusWorking)
	require.Error(t, err)
	require.Equal(t, models.StatusPlanning, task.Status)
}

func TestApply_SuccessRunsHooksAndAppendsStatusChanged(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	ex := newExecutor(t, dataDir)
	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusPending}
	require.NoError(t, store.SaveTask(dataDir, task))

	result, err := ex.Apply(context.Background(), task, models.StatusPlanning)
	require.NoError(t, err)
	require.Equal(t, models.StatusPending, result.From)
	require.Equal(t, models.StatusPlanning, result.To)
	require.Equal(t, models.StatusPlanning, task.Status)
	require.Equal(t, "demo--1", task.Workspace)
	require.NotEmpty(t, task.Session)

	history, err := store.LoadHistory(dataDir, "demo", task.ID)
	require.NoError(t, err)
	require.Len(t, history, 2) // agent.spawned then status.changed
	require.Equal(t, models.EventAgentSpawned, history[0].Type)
	require.Equal(t, models.EventStatusChanged, history[1].Type)
}

func TestApply_HookFailureIsLoggedNotFatal(t *testing.T) {
	dataDir := t.TempDir()
	require.NoError(t, store.SaveProjects(dataDir, []models.Project{
		{Name: "demo", Path: t.TempDir(), DefaultBranch: "main", PoolSize: 2},
	}))
	ex := newExecutor(t, dataDir)
	mux := ex.Env.Mux.(*drivertest.Multiplexer)
	mux.Avail = false // multiplexer unavailable makes spawn_agent fail, not the transition

	task := &models.Task{ID: "t1", Project: "demo", Branch: "feat-a", Status: models.StatusPending}
	require.NoError(t, store.SaveTask(dataDir, task))

	result, err := ex.Apply(context.Background(), task, models.StatusPlanning)
	require.NoError(t, err)
	require.Equal(t, models.StatusPlanning, result.To)
	require.Empty(t, task.Session, "spawn_agent hook failed and must not have set Session")
}
