// Package monitor implements the exit-monitor reconciliation pass of
// spec §4.5: dead-session detection, per-status auto-advance, crash
// handling, and cleanup of terminal tasks still holding a workspace or
// session.
package monitor

import (
	"context"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/rigctl/rigctl/internal/actions"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
	"github.com/rigctl/rigctl/internal/workspace"
)

// maxConcurrentReconciles bounds how many tasks are reconciled at once
// within a single pass; each task's work is independent filesystem and
// driver I/O, so a small worker pool keeps one slow session check from
// serializing the whole pass.
const maxConcurrentReconciles = 8

// Monitor runs reconciliation passes against env's data directory and
// drivers.
type Monitor struct {
	Env *actions.Env
}

// New returns a Monitor bound to env.
func New(env *actions.Env) *Monitor {
	return &Monitor{Env: env}
}

// Reconcile runs one pass across every project's tasks. Per-task failures
// are logged and contained; they never abort the pass for other tasks.
func (m *Monitor) Reconcile(ctx context.Context) error {
	runID := uuid.NewString()
	m.Env.Logger.Debug("reconcile pass starting", "run_id", runID)
	defer m.Env.Logger.Debug("reconcile pass finished", "run_id", runID)

	projects, err := store.ListAllProjectDirs(m.Env.DataDir)
	if err != nil {
		return err
	}

	live, err := m.Env.Mux.ListSessions(ctx)
	if err != nil {
		return err
	}
	liveSet := make(map[string]bool, len(live))
	for _, s := range live {
		liveSet[s] = true
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReconciles)

	for _, project := range projects {
		tasks, err := store.ListTasks(m.Env.DataDir, project)
		if err != nil {
			m.Env.Logger.Warn("list tasks failed during reconcile", "project", project, "error", err.Error())
			continue
		}
		for _, task := range tasks {
			task := task
			g.Go(func() error {
				m.reconcileTask(gctx, task, liveSet)
				return nil
			})
		}
	}

	return g.Wait()
}

// reconcileTask applies (a) orphan cleanup for terminal tasks, or (b)
// dead-session detection and auto-advance for active tasks.
func (m *Monitor) reconcileTask(ctx context.Context, task *models.Task, live map[string]bool) {
	if task.Status.IsTerminal() {
		m.reconcileOrphan(ctx, task)
		return
	}

	if !task.Status.IsActive() || !task.HasSession() {
		return
	}
	if live[task.Session] {
		return
	}

	m.handleDeadSession(ctx, task)
}

// handleDeadSession applies spec §4.5's per-status auto-advance table to a
// task whose session has gone missing from the multiplexer's live set.
func (m *Monitor) handleDeadSession(ctx context.Context, task *models.Task) {
	switch task.Status {
	case models.StatusPlanning:
		if store.ParsePlan(task.Body) {
			m.autoAdvance(ctx, task, models.StatusWorking, "## Plan found")
			return
		}
	case models.StatusWorking:
		if store.ParseHandoff(task.Body) {
			m.autoAdvance(ctx, task, models.StatusAgentReview, "## Handoff found")
			return
		}
	case models.StatusAgentReview:
		verdict, ok := store.ParseReview(task.Body)
		if ok && verdict == store.VerdictPass {
			m.autoAdvance(ctx, task, models.StatusReviewing, "review verdict PASS")
			return
		}
		if ok && verdict == store.VerdictFail {
			if task.ReviewRound < 2 {
				m.autoAdvance(ctx, task, models.StatusWorking, "review verdict FAIL")
			} else {
				m.autoAdvance(ctx, task, models.StatusStuck, "review verdict FAIL, review_round >= 2")
			}
			return
		}
	}
	// clarification, reviewing, stuck never auto-advance; same for the
	// statuses above when the gate didn't match.
	m.crash(task, "dead session with no eligible auto-advance")
}

// autoAdvance drives the transition through the normal executor (so its
// hooks and status.changed event still fire) and additionally appends the
// auto.advanced event recording why the monitor drove it.
func (m *Monitor) autoAdvance(ctx context.Context, task *models.Task, to models.TaskStatus, reason string) {
	from := task.Status
	if _, err := m.Env.Transition(ctx, task, to); err != nil {
		m.crash(task, "auto-advance transition failed: "+err.Error())
		return
	}

	event := models.NewHistoryEvent(m.Env.Clock.Now(), models.AutoAdvancedPayload{
		From: string(from), To: string(to), Reason: reason,
	})
	if err := store.AppendHistory(m.Env.DataDir, task.Project, task.ID, event); err != nil {
		m.Env.Logger.Warn("append auto.advanced failed", "task_id", task.ID, "error", err.Error())
	}
}

// crash increments crash_count and appends agent.crashed. At crash_count
// >= 2 it forces the task directly to stuck, bypassing the executor, and
// appends auto.advanced per spec §4.5.
func (m *Monitor) crash(task *models.Task, reason string) {
	task.CrashCount++
	task.UpdatedAt = m.Env.Clock.Now()
	if err := store.SaveTask(m.Env.DataDir, task); err != nil {
		m.Env.Logger.Warn("persist crash failed", "task_id", task.ID, "error", err.Error())
		return
	}

	m.Env.Logger.Warn("task crashed", "task_id", task.ID, "status", string(task.Status),
		"crash_count", task.CrashCount, "reason", reason, "age", taskAge(task.CreatedAt))

	crashEvent := models.NewHistoryEvent(task.UpdatedAt, models.AgentCrashedPayload{
		Status: string(task.Status), CrashCount: task.CrashCount, Reason: reason,
	})
	if err := store.AppendHistory(m.Env.DataDir, task.Project, task.ID, crashEvent); err != nil {
		m.Env.Logger.Warn("append agent.crashed failed", "task_id", task.ID, "error", err.Error())
	}

	if task.CrashCount < 2 {
		return
	}

	from := task.Status
	task.Status = models.StatusStuck
	task.UpdatedAt = m.Env.Clock.Now()
	if err := store.SaveTask(m.Env.DataDir, task); err != nil {
		m.Env.Logger.Warn("persist forced stuck failed", "task_id", task.ID, "error", err.Error())
		return
	}

	forcedEvent := models.NewHistoryEvent(task.UpdatedAt, models.AutoAdvancedPayload{
		From: string(from), To: string(models.StatusStuck), Reason: "crash_count reached 2",
	})
	if err := store.AppendHistory(m.Env.DataDir, task.Project, task.ID, forcedEvent); err != nil {
		m.Env.Logger.Warn("append auto.advanced failed", "task_id", task.ID, "error", err.Error())
	}
}

// taskAge renders createdAt (an ISO-8601 UTC string per drivers.Clock) as a
// human-readable relative duration for log messages; an unparseable
// timestamp degrades to "unknown" rather than failing the log line.
func taskAge(createdAt string) string {
	t, err := time.Parse(time.RFC3339, createdAt)
	if err != nil {
		return "unknown"
	}
	return humanize.Time(t)
}

// reconcileOrphan cleans up a terminal task still holding a session or
// workspace: kill session safely, force-release the workspace, clear
// fields, save.
func (m *Monitor) reconcileOrphan(ctx context.Context, task *models.Task) {
	if !task.HasWorkspace() && !task.HasSession() {
		return
	}

	if task.HasSession() {
		m.Env.Mux.KillSessionSafe(ctx, task.Session)
		task.Session = ""
	}

	if task.HasWorkspace() {
		mgr := workspace.New(m.Env.DataDir, m.Env.VCS, m.Env.Logger)
		if err := mgr.Release(ctx, task, true); err != nil {
			m.Env.Logger.Warn("orphan workspace release failed", "task_id", task.ID, "error", err.Error())
		}
		return // Release already persisted task, including the cleared session above.
	}

	if err := store.SaveTask(m.Env.DataDir, task); err != nil {
		m.Env.Logger.Warn("persist orphan session cleanup failed", "task_id", task.ID, "error", err.Error())
	}
}
