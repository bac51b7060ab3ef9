package transition

import (
	"context"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/hooks"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// Result reports a successful transition.
type Result struct {
	From models.TaskStatus
	To   models.TaskStatus
}

// Executor drives a single transition per spec §4.2's procedure: look up
// the row, validate the gate, run hooks in order, then persist the new
// status and append a status.changed event.
type Executor struct {
	DataDir string
	Env     *hooks.Env
	Clock   interface{ Now() string }
	Logger  interface {
		Warn(msg string, args ...any)
	}
}

// Apply executes the transition from task.Status to `to`. On success, the
// task's Status, CrashCount, and UpdatedAt are mutated and persisted.
func (e *Executor) Apply(ctx context.Context, task *models.Task, to models.TaskStatus) (Result, error) {
	row, ok := Lookup(task.Status, to, task)
	if !ok {
		return Result{}, errs.Newf(errs.KindNoValidTransition, "no valid transition from %s to %s", task.Status, to).
			WithContext(map[string]string{"from": string(task.Status), "to": string(to)})
	}

	if row.Gate != nil && !row.Gate(task.Body) {
		return Result{}, errs.Newf(errs.KindGateFailed, "artifact gate validation failed for %s -> %s", task.Status, to).
			WithContext(map[string]string{"from": string(task.Status), "to": string(to)})
	}

	from := task.Status
	for _, id := range row.Hooks {
		if err := hooks.Dispatch(ctx, id, e.Env, task); err != nil && e.Logger != nil {
			e.Logger.Warn("hook failed", "hook", string(id), "task_id", task.ID, "error", err.Error())
		}
	}

	task.Status = to
	task.CrashCount = 0
	task.UpdatedAt = e.Clock.Now()
	if err := store.SaveTask(e.DataDir, task); err != nil {
		return Result{}, err
	}

	event := models.NewHistoryEvent(task.UpdatedAt, models.StatusChangedPayload{From: string(from), To: string(to)})
	if err := store.AppendHistory(e.DataDir, task.Project, task.ID, event); err != nil {
		return Result{}, err
	}

	return Result{From: from, To: to}, nil
}
