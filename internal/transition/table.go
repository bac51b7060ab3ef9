// Package transition implements the declarative task state machine: a
// data table of legal (from, to) transitions guarded by artifact gates and
// field conditions, executed in order by Executor.
package transition

import (
	"github.com/rigctl/rigctl/internal/hooks"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// Gate validates a transition against the task's current body. A nil Gate
// always passes.
type Gate func(body string) bool

// Condition validates a transition against the task's current fields. A
// nil Condition always passes.
type Condition func(t *models.Task) bool

// Row is one record of the transition table: spec §4.2's "(from, to,
// gate?, condition?, hooks[])".
type Row struct {
	From      models.TaskStatus
	To        models.TaskStatus
	Gate      Gate
	Condition Condition
	Hooks     []hooks.ID
}

// anyActive matches every non-terminal status, for the "any-active →
// cancelled" shorthand row.
func anyActive(status models.TaskStatus) bool {
	return !status.IsTerminal()
}

func gatePlan(body string) bool { return store.ParsePlan(body) }

func gateHandoff(body string) bool { return store.ParseHandoff(body) }

func gateReviewPass(body string) bool {
	v, ok := store.ParseReview(body)
	return ok && v == store.VerdictPass
}

func gateReviewFail(body string) bool {
	v, ok := store.ParseReview(body)
	return ok && v == store.VerdictFail
}

func reviewRoundBelow(limit int) Condition {
	return func(t *models.Task) bool { return t.ReviewRound < limit }
}

func reviewRoundAtLeast(limit int) Condition {
	return func(t *models.Task) bool { return t.ReviewRound >= limit }
}

// Table is the canonical transition table from spec §4.2. Rows are
// evaluated in order for a given (from, to) pair; the first whose
// condition holds wins.
var Table = []Row{
	{From: models.StatusPending, To: models.StatusPlanning,
		Hooks: []hooks.ID{hooks.AcquireWorkspace, hooks.SpawnWorker}},
	{From: models.StatusPending, To: models.StatusCancelled},

	{From: models.StatusPlanning, To: models.StatusWorking, Gate: gatePlan},
	{From: models.StatusPlanning, To: models.StatusClarification},

	{From: models.StatusClarification, To: models.StatusPlanning},

	{From: models.StatusWorking, To: models.StatusAgentReview, Gate: gateHandoff,
		Hooks: []hooks.ID{hooks.SpawnReviewer, hooks.IncrementReviewRound}},
	{From: models.StatusWorking, To: models.StatusStuck},

	{From: models.StatusAgentReview, To: models.StatusReviewing, Gate: gateReviewPass,
		Hooks: []hooks.ID{hooks.KillReviewer}},
	{From: models.StatusAgentReview, To: models.StatusWorking, Gate: gateReviewFail, Condition: reviewRoundBelow(2),
		Hooks: []hooks.ID{hooks.KillReviewer, hooks.NotifyWorker}},
	{From: models.StatusAgentReview, To: models.StatusStuck, Gate: gateReviewFail, Condition: reviewRoundAtLeast(2),
		Hooks: []hooks.ID{hooks.KillReviewer}},
	{From: models.StatusAgentReview, To: models.StatusCancelled,
		Hooks: []hooks.ID{hooks.KillReviewer, hooks.KillSession, hooks.ReleaseWorkspace}},

	{From: models.StatusReviewing, To: models.StatusWorking,
		Hooks: []hooks.ID{hooks.NotifyWorker}},
	{From: models.StatusReviewing, To: models.StatusDone,
		Hooks: []hooks.ID{hooks.KillSession, hooks.ReleaseWorkspace, hooks.SpawnNext}},

	{From: models.StatusStuck, To: models.StatusReviewing},
	// stuck -> working is forbidden per spec §4.2: no row exists for it.
}

// anyActiveCancelHooks backs the "any-active → cancelled" shorthand,
// which spans every non-terminal status rather than being listed once
// per source status.
var anyActiveCancelHooks = []hooks.ID{hooks.KillSession, hooks.ReleaseWorkspace}

// Lookup finds the first matching row for (from, to) whose condition holds
// against task, consulting the explicit table first and falling back to
// the "any-active → cancelled" shorthand. Returns (row, true) or
// (Row{}, false) if no row matches.
func Lookup(from, to models.TaskStatus, task *models.Task) (Row, bool) {
	for _, row := range Table {
		if row.From != from || row.To != to {
			continue
		}
		if row.Condition != nil && !row.Condition(task) {
			continue
		}
		return row, true
	}

	if to == models.StatusCancelled && anyActive(from) {
		return Row{From: from, To: to, Hooks: anyActiveCancelHooks}, true
	}

	return Row{}, false
}
