// Package actions implements the task CRUD glue (create, cancel, merge,
// delete) described in spec §4.6, wiring the transition executor, the
// workspace manager, and the driver ports together.
package actions

import (
	"context"

	"github.com/rigctl/rigctl/internal/drivers"
	"github.com/rigctl/rigctl/internal/hooks"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
	"github.com/rigctl/rigctl/internal/transition"
)

// Env bundles every collaborator CRUD actions and the transition executor
// need, resolved once at process start and threaded through every call.
type Env struct {
	DataDir string
	VCS     drivers.VCS
	Mux     drivers.Multiplexer
	PRHost  drivers.PRHost
	Clock   drivers.Clock
	Logger  drivers.Logger
}

// hookEnv builds a hooks.Env scoped to project, wiring Dispatch back to
// Transition so the spawn_next hook can re-enter the executor without an
// import cycle between hooks and transition.
func (e *Env) hookEnv(project models.Project) *hooks.Env {
	env := &hooks.Env{
		DataDir: e.DataDir,
		Project: project,
		Mux:     e.Mux,
		VCS:     e.VCS,
		PRHost:  e.PRHost,
		Clock:   e.Clock,
		Logger:  e.Logger,
	}
	env.Dispatch = func(ctx context.Context, task *models.Task, to models.TaskStatus) error {
		_, err := e.Transition(ctx, task, to)
		return err
	}
	return env
}

// Transition looks up task's project and runs the transition executor
// against it.
func (e *Env) Transition(ctx context.Context, task *models.Task, to models.TaskStatus) (transition.Result, error) {
	project, err := store.FindProject(e.DataDir, task.Project)
	if err != nil {
		return transition.Result{}, err
	}

	ex := &transition.Executor{
		DataDir: e.DataDir,
		Env:     e.hookEnv(*project),
		Clock:   e.Clock,
		Logger:  e.Logger,
	}
	return ex.Apply(ctx, task, to)
}
