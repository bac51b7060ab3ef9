// Package hooks implements the concrete side effects the transition
// executor dispatches after a gate passes: workspace acquire/release,
// agent spawn, session kill, review-round bookkeeping, and auto-dispatch
// of the next queued task (spec §4.4).
package hooks

import (
	"context"

	"github.com/rigctl/rigctl/internal/drivers"
	"github.com/rigctl/rigctl/internal/models"
)

// ID symbolically identifies a hook; the transition table carries these
// rather than function references, keeping the table itself data (spec §9
// "Hook granularity" design note).
type ID string

// Hook identifiers, per spec §4.4.
const (
	AcquireWorkspace     ID = "acquire_workspace"
	SpawnWorker          ID = "spawn_agent:worker"
	SpawnWorkerRespawn   ID = "spawn_agent:worker_respawn"
	SpawnWorkerFix       ID = "spawn_agent:worker_fix"
	SpawnReviewer        ID = "spawn_agent:reviewer"
	SpawnStuckFix        ID = "spawn_agent:stuck_fix"
	ReleaseWorkspace     ID = "release_workspace"
	KillSession          ID = "kill_session"
	KillReviewer         ID = "kill_reviewer"
	IncrementReviewRound ID = "increment_review_round"
	NotifyWorker         ID = "notify_worker"
	SpawnNext            ID = "spawn_next"
	DeleteRemoteBranch   ID = "delete_remote_branch"
)

// Env bundles every collaborator a hook may need: the data directory,
// the external driver capabilities, and the owning project (looked up by
// the caller so hooks never re-touch the registry themselves).
type Env struct {
	DataDir string
	Project models.Project
	Mux     drivers.Multiplexer
	VCS     drivers.VCS
	PRHost  drivers.PRHost
	Clock   drivers.Clock
	Logger  drivers.Logger

	// Dispatch lets spawn_next re-enter the transition executor without
	// hooks importing the transition package (which imports hooks),
	// avoiding an import cycle. Set by the executor's caller at wiring
	// time (see internal/actions).
	Dispatch func(ctx context.Context, task *models.Task, to models.TaskStatus) error
}

// Func is one hook's implementation. Per spec §4.2 step 3, a hook may
// mutate task in place; any such mutation must be saved to disk by the
// hook itself before returning.
type Func func(ctx context.Context, env *Env, task *models.Task) error

var registry = map[ID]Func{
	AcquireWorkspace:     acquireWorkspace,
	SpawnWorker:          spawnAgent("worker"),
	SpawnWorkerRespawn:   spawnAgent("worker_respawn"),
	SpawnWorkerFix:       spawnAgent("worker_fix"),
	SpawnReviewer:        spawnAgent("reviewer"),
	SpawnStuckFix:        spawnAgent("stuck_fix"),
	ReleaseWorkspace:     releaseWorkspace,
	KillSession:          killSession,
	KillReviewer:         killReviewer,
	IncrementReviewRound: incrementReviewRound,
	NotifyWorker:         notifyWorker,
	SpawnNext:            spawnNext,
	DeleteRemoteBranch:   deleteRemoteBranch,
}

// Dispatch runs the hook identified by id. An unknown id is a programming
// error (the transition table is the only source of hook IDs) and returns
// an error rather than panicking, so a bad table entry degrades to a
// logged hook failure instead of crashing the process.
func Dispatch(ctx context.Context, id ID, env *Env, task *models.Task) error {
	fn, ok := registry[id]
	if !ok {
		return &unknownHookError{id: id}
	}
	return fn(ctx, env, task)
}

type unknownHookError struct{ id ID }

func (e *unknownHookError) Error() string { return "unknown hook id: " + string(e.id) }
