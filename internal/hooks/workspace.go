package hooks

import (
	"context"

	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/workspace"
)

// acquireWorkspace delegates to the workspace manager; it is a no-op if
// the task already has a workspace.
func acquireWorkspace(ctx context.Context, env *Env, task *models.Task) error {
	mgr := workspace.New(env.DataDir, env.VCS, env.Logger)
	return mgr.Acquire(ctx, env.Project, task)
}

// releaseWorkspace delegates to the workspace manager with force=false:
// ordinary releases must fail on a dirty workspace (spec §9 Open
// Question 3); the merge path releases directly through the manager with
// force=true instead of going through this hook.
func releaseWorkspace(ctx context.Context, env *Env, task *models.Task) error {
	mgr := workspace.New(env.DataDir, env.VCS, env.Logger)
	return mgr.Release(ctx, task, false)
}
