package hooks

import (
	"context"
	"fmt"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// sessionName is the multiplexer session addressed by a task: one session
// per task, multiple windows for worker vs reviewer vs fix variants.
func sessionName(task *models.Task) string {
	return task.Project + "/" + task.Branch
}

// spawnAgent returns a hook Func bound to one spawn variant.
func spawnAgent(variant spawnVariant) Func {
	return func(ctx context.Context, env *Env, task *models.Task) error {
		if !task.HasWorkspace() {
			return errs.New(errs.KindInvalidArg, "spawn_agent requires a bound workspace")
		}
		if !env.Mux.IsAvailable(ctx) {
			return errs.New(errs.KindMultiplexerUnavail, "multiplexer is not available")
		}

		harness := task.Harness
		if variant == variantReviewer {
			harness = task.ReviewHarnessOrDefault()
		}
		command := harnessCommand(harness, variant)
		window := windowName(variant, task.ReviewRound)
		name := sessionName(task)
		wtPath := store.WorkspaceDir(env.DataDir, task.Workspace)

		exists, err := env.Mux.SessionExists(ctx, name)
		if err != nil {
			return errs.Wrap(errs.KindMultiplexerUnavail, err, "check session existence")
		}
		if exists {
			if err := env.Mux.NewWindow(ctx, name, window, wtPath, command); err != nil {
				return errs.Wrap(errs.KindMultiplexerUnavail, err, "open new window")
			}
		} else {
			if err := env.Mux.NewSession(ctx, name, wtPath, command); err != nil {
				return errs.Wrap(errs.KindMultiplexerUnavail, err, "create session")
			}
			if err := env.Mux.RenameWindow(ctx, name, window); err != nil {
				env.Logger.Warn("rename first window failed", "error", err.Error())
			}
		}

		task.Session = name
		if err := store.SaveTask(env.DataDir, task); err != nil {
			return err
		}

		event := models.NewHistoryEvent(env.Clock.Now(), models.AgentSpawnedPayload{Workspace: task.Workspace, Session: name})
		return store.AppendHistory(env.DataDir, task.Project, task.ID, event)
	}
}

// killSession kills the task's whole session, clearing Session on success.
func killSession(ctx context.Context, env *Env, task *models.Task) error {
	if !task.HasSession() {
		return nil
	}
	env.Mux.KillSessionSafe(ctx, task.Session)
	task.Session = ""
	return store.SaveTask(env.DataDir, task)
}

// killReviewer kills only the reviewer window within the session, leaving
// the worker window running.
func killReviewer(ctx context.Context, env *Env, task *models.Task) error {
	if !task.HasSession() {
		return nil
	}
	// increment_review_round always runs before agent-review is reached, so
	// the window opened at spawn time used ReviewRound-1.
	round := task.ReviewRound - 1
	if round < 0 {
		round = 0
	}
	env.Mux.KillWindowSafe(ctx, task.Session, windowName(variantReviewer, round))
	return nil
}

// notifyWorker sends a short literal keystroke to the worker window
// indicating a new review cycle is available.
func notifyWorker(ctx context.Context, env *Env, task *models.Task) error {
	if !task.HasSession() {
		return nil
	}
	text := fmt.Sprintf("# review round %d complete, see TASK.md", task.ReviewRound)
	return env.Mux.SendLiteral(ctx, task.Session, text)
}
