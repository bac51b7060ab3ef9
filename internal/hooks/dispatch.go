package hooks

import (
	"context"

	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// spawnNext loads pending tasks for the task's project, oldest first by
// CreatedAt, and attempts to spawn the oldest via pending -> planning.
// Errors are swallowed per spec §4.4's "spawn_next ... Swallow errors."
func spawnNext(ctx context.Context, env *Env, task *models.Task) error {
	if env.Dispatch == nil {
		return nil
	}

	tasks, err := store.ListTasks(env.DataDir, task.Project)
	if err != nil {
		return nil //nolint:nilerr // spawn_next swallows its own errors by design
	}

	for _, candidate := range tasks {
		if candidate.Status != models.StatusPending {
			continue
		}
		_ = env.Dispatch(ctx, candidate, models.StatusPlanning)
		return nil
	}
	return nil
}

// deleteRemoteBranch best-effort deletes the task's branch on the
// project's remote.
func deleteRemoteBranch(ctx context.Context, env *Env, task *models.Task) error {
	_ = env.VCS.DeleteRemoteBranch(ctx, env.Project.Path, task.Branch, "")
	return nil
}
