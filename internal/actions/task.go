package actions

import (
	"context"
	"fmt"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
	"github.com/rigctl/rigctl/internal/workspace"
)

// CreateParams bundles the inputs to Create, spec §4.6.
type CreateParams struct {
	Project       string
	Branch        string
	Summary       string
	Body          string
	Harness       string
	ReviewHarness string
	InitialStatus models.TaskStatus // StatusPending or StatusReviewing; defaults to StatusPending.
	AutoSpawn     bool
}

// Create registers a new task: fetches remote refs, disambiguates the
// branch name, assigns a fresh id, writes the task document, appends
// task.created, and optionally auto-spawns via pending -> planning.
func (e *Env) Create(ctx context.Context, p CreateParams) (*models.Task, error) {
	if p.Project == "" {
		return nil, errs.New(errs.KindInvalidArg, "project is required")
	}
	if p.Branch == "" {
		return nil, errs.New(errs.KindInvalidArg, "branch is required")
	}

	project, err := store.FindProject(e.DataDir, p.Project)
	if err != nil {
		return nil, err
	}

	if err := e.VCS.Fetch(ctx, project.Path); err != nil {
		e.Logger.Warn("fetch failed during task create", "project", project.Name, "error", err.Error())
	}

	branch, err := e.uniqueBranch(ctx, project.Path, p.Branch)
	if err != nil {
		return nil, err
	}

	status := p.InitialStatus
	if status == "" {
		status = models.StatusPending
	}
	if status != models.StatusPending && status != models.StatusReviewing {
		return nil, errs.Newf(errs.KindInvalidArg, "initial status must be pending or reviewing, got %s", status)
	}

	now := e.Clock.Now()
	task := &models.Task{
		ID:            store.NewTaskID(),
		Project:       project.Name,
		Branch:        branch,
		Harness:       p.Harness,
		ReviewHarness: p.ReviewHarness,
		Status:        status,
		Summary:       p.Summary,
		Body:          p.Body,
		CreatedAt:     now,
		UpdatedAt:     now,
	}

	if err := store.SaveTask(e.DataDir, task); err != nil {
		return nil, err
	}

	event := models.NewHistoryEvent(now, models.TaskCreatedPayload{
		TaskID:  task.ID,
		Project: task.Project,
		Branch:  task.Branch,
		Summary: task.Summary,
	})
	if err := store.AppendHistory(e.DataDir, task.Project, task.ID, event); err != nil {
		return nil, err
	}

	if p.AutoSpawn && status == models.StatusPending {
		if _, err := e.Transition(ctx, task, models.StatusPlanning); err != nil {
			return task, err
		}
	}

	return task, nil
}

// uniqueBranch suffixes -2, -3, ... onto branch until a name that doesn't
// already exist in cwd is found.
func (e *Env) uniqueBranch(ctx context.Context, cwd, branch string) (string, error) {
	candidate := branch
	for n := 2; ; n++ {
		exists, err := e.VCS.BranchExists(ctx, cwd, candidate)
		if err != nil {
			return "", errs.Wrap(errs.KindVCSFailed, err, "check branch existence")
		}
		if !exists {
			return candidate, nil
		}
		candidate = fmt.Sprintf("%s-%d", branch, n)
	}
}

// Cancel runs the transition from task's current status to cancelled. The
// row comes from transition.Lookup: pending and agent-review have explicit
// rows (no hooks, and kill reviewer/kill session/release workspace), every
// other active status uses the any-active shorthand (kill session, release
// workspace).
func (e *Env) Cancel(ctx context.Context, task *models.Task) error {
	_, err := e.Transition(ctx, task, models.StatusCancelled)
	return err
}

// Merge runs the spec §4.6 merge procedure for a task in reviewing: PR-aware
// merge detection first, falling back to a local merge, then forced
// workspace release and session cleanup.
func (e *Env) Merge(ctx context.Context, task *models.Task, strategy models.MergeStrategy, forceLocal bool) error {
	if task.Status != models.StatusReviewing {
		return errs.Newf(errs.KindInvalidArg, "task must be in reviewing to merge, got %s", task.Status)
	}

	project, err := store.FindProject(e.DataDir, task.Project)
	if err != nil {
		return err
	}

	commitHash, mergeStrategy, err := e.land(ctx, *project, task, strategy, forceLocal)
	if err != nil {
		return err
	}

	_ = e.VCS.DeleteRemoteBranch(ctx, project.Path, task.Branch, "")

	mgr := workspace.New(e.DataDir, e.VCS, e.Logger)
	if err := mgr.Release(ctx, task, true); err != nil {
		return err
	}
	if task.HasSession() {
		e.Mux.KillSessionSafe(ctx, task.Session)
		task.Session = ""
	}

	task.Status = models.StatusDone
	task.UpdatedAt = e.Clock.Now()
	if err := store.SaveTask(e.DataDir, task); err != nil {
		return err
	}

	if err := store.AppendHistory(e.DataDir, task.Project, task.ID,
		models.NewHistoryEvent(task.UpdatedAt, models.TaskMergedPayload{CommitHash: commitHash, Strategy: mergeStrategy})); err != nil {
		return err
	}
	return store.AppendHistory(e.DataDir, task.Project, task.ID,
		models.NewHistoryEvent(task.UpdatedAt, models.StatusChangedPayload{From: string(models.StatusReviewing), To: string(models.StatusDone)}))
}

// land performs step 1 (PR-aware) and step 2 (local fallback) of the merge
// procedure, returning the recorded commit hash and the strategy label used
// for the task.merged event ("pr" or the local merge strategy).
func (e *Env) land(ctx context.Context, project models.Project, task *models.Task, strategy models.MergeStrategy, forceLocal bool) (string, string, error) {
	if task.PRUrl != "" && !forceLocal {
		status, err := e.PRHost.GetPRStatus(ctx, project.Path, task.Branch)
		if err == nil && status.Exists {
			switch status.State {
			case "MERGED":
				if err := e.VCS.Fetch(ctx, project.Path); err != nil {
					e.Logger.Warn("fetch failed after PR merge", "error", err.Error())
				}
				if err := e.VCS.ResetHard(ctx, project.Path, "origin/"+project.DefaultBranch); err != nil {
					e.Logger.Warn("reset default branch failed after PR merge", "error", err.Error())
				}
				if appendErr := store.AppendHistory(e.DataDir, task.Project, task.ID,
					models.NewHistoryEvent(e.Clock.Now(), models.PRMergedPayload{URL: status.URL, MergeCommit: status.MergeCommit})); appendErr != nil {
					return "", "", appendErr
				}
				return status.MergeCommit, "pr", nil
			case "OPEN":
				return "", "", errs.New(errs.KindPROpen, "pull request is still open")
			case "CLOSED":
				return "", "", errs.New(errs.KindPRClosed, "pull request was closed without merging")
			}
		}
		// Not found (or lookup failed): fall through to local merge.
	}

	return e.localMerge(ctx, project, task, strategy)
}

func (e *Env) localMerge(ctx context.Context, project models.Project, task *models.Task, strategy models.MergeStrategy) (string, string, error) {
	if strategy == "" {
		strategy = models.MergeStrategyMerge
	}

	if err := e.VCS.Checkout(ctx, project.Path, project.DefaultBranch); err != nil {
		return "", "", errs.Wrap(errs.KindVCSFailed, err, "checkout default branch")
	}
	if err := e.VCS.Merge(ctx, project.Path, task.Branch, string(strategy)); err != nil {
		return "", "", errs.Wrap(errs.KindVCSFailed, err, "merge task branch")
	}

	hash, err := e.VCS.GetCommitHash(ctx, project.Path, false)
	if err != nil {
		return "", "", errs.Wrap(errs.KindVCSFailed, err, "read merge commit hash")
	}

	if err := e.VCS.Push(ctx, project.Path, "", project.DefaultBranch); err != nil {
		e.Logger.Warn("push after local merge failed", "error", err.Error())
	}

	return hash, string(strategy), nil
}

// Delete removes a terminal task's document and history, releasing any
// lingering workspace and killing any lingering session first.
func (e *Env) Delete(ctx context.Context, task *models.Task) error {
	if !task.Status.IsTerminal() {
		return errs.Newf(errs.KindInvalidArg, "task must be terminal to delete, got %s", task.Status)
	}

	if task.HasWorkspace() {
		mgr := workspace.New(e.DataDir, e.VCS, e.Logger)
		if err := mgr.Release(ctx, task, true); err != nil {
			return err
		}
	}
	if task.HasSession() {
		e.Mux.KillSessionSafe(ctx, task.Session)
	}

	return store.DeleteTask(e.DataDir, task.Project, task.ID)
}
