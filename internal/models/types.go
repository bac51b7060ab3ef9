package models

// Package models defines the data shapes shared by the store, transition,
// hooks, and monitor packages: tasks, projects, pool state, and history
// events.

// TaskStatus represents the current state of a task in the lifecycle
// transition table (see internal/transition).
type TaskStatus string

// Task status constants, per the canonical transition table.
const (
	StatusPending       TaskStatus = "pending"
	StatusPlanning      TaskStatus = "planning"
	StatusClarification TaskStatus = "clarification"
	StatusWorking       TaskStatus = "working"
	StatusAgentReview   TaskStatus = "agent-review"
	StatusReviewing     TaskStatus = "reviewing"
	StatusStuck         TaskStatus = "stuck"
	StatusDone          TaskStatus = "done"
	StatusCancelled     TaskStatus = "cancelled"

	// StatusFailed is a legacy alias for StatusCancelled. Implementers are
	// told to pick one terminal spelling and migrate; this module treats
	// "failed" as equivalent to StatusCancelled in IsTerminal and Normalize
	// but never writes it for new tasks.
	StatusFailed TaskStatus = "failed"
)

// IsTerminal reports whether the status is a terminal status: done,
// cancelled, or the legacy "failed" alias for cancelled.
func (s TaskStatus) IsTerminal() bool {
	return s == StatusDone || s == StatusCancelled || s == StatusFailed
}

// IsActive reports whether a session/workspace may legitimately be bound
// to a task in this status (the exit monitor only watches active statuses).
func (s TaskStatus) IsActive() bool {
	switch s {
	case StatusPlanning, StatusWorking, StatusAgentReview, StatusClarification, StatusReviewing, StatusStuck:
		return true
	default:
		return false
	}
}

// Normalize maps the legacy StatusFailed alias onto StatusCancelled.
func (s TaskStatus) Normalize() TaskStatus {
	if s == StatusFailed {
		return StatusCancelled
	}
	return s
}

// PRState mirrors the PR host's reported state for a task's pull request.
type PRState string

// PR state constants.
const (
	PRStateOpen   PRState = "open"
	PRStateClosed PRState = "closed"
	PRStateMerged PRState = "merged"
)

// MergeStrategy selects how a local merge combines a task branch into the
// project's default branch.
type MergeStrategy string

// Merge strategy constants.
const (
	MergeStrategyFastForward MergeStrategy = "ff"
	MergeStrategyMerge       MergeStrategy = "merge"
)

// Task is the unit of work tracked by the lifecycle engine. Every field
// except Body is carried in the TASK.md frontmatter; Body is everything
// after the closing frontmatter delimiter.
type Task struct {
	ID            string     `yaml:"id"`
	Project       string     `yaml:"project"`
	Branch        string     `yaml:"branch"`
	Harness       string     `yaml:"harness"`
	ReviewHarness string     `yaml:"review_harness"`
	Status        TaskStatus `yaml:"status"`
	ReviewRound   int        `yaml:"review_round"`
	CrashCount    int        `yaml:"crash_count"`
	Workspace     string     `yaml:"workspace,omitempty"`
	Session       string     `yaml:"session,omitempty"`
	Summary       string     `yaml:"summary"`
	CreatedAt     string     `yaml:"created_at"`
	UpdatedAt     string     `yaml:"updated_at"`
	PRUrl         string     `yaml:"pr_url,omitempty"`
	PRState       PRState    `yaml:"pr_state,omitempty"`

	// Body is the markdown body after the frontmatter block. Not part of
	// the YAML frontmatter document; populated/serialized separately by
	// the store package.
	Body string `yaml:"-"`
}

// HasWorkspace reports whether the task currently holds a bound workspace.
func (t *Task) HasWorkspace() bool { return t.Workspace != "" }

// HasSession reports whether the task currently holds a live session name.
func (t *Task) HasSession() bool { return t.Session != "" }

// HasPR reports whether a pull request has ever been recorded for this task.
func (t *Task) HasPR() bool { return t.PRUrl != "" }

// ReviewHarnessOrDefault returns ReviewHarness if set, else Harness — the
// review variant may reuse the worker's harness when not explicitly split.
func (t *Task) ReviewHarnessOrDefault() string {
	if t.ReviewHarness != "" {
		return t.ReviewHarness
	}
	return t.Harness
}

// Project is a registered repository the engine can spawn tasks against.
type Project struct {
	Name          string `yaml:"name" json:"name"`
	Path          string `yaml:"path" json:"path"`
	DefaultBranch string `yaml:"default_branch" json:"default_branch"`
	PoolSize      int    `yaml:"pool_size" json:"pool_size"`
}

// PoolEntryStatus is the binding state of one workspace slot.
type PoolEntryStatus string

// Pool entry status constants.
const (
	PoolEntryAvailable PoolEntryStatus = "available"
	PoolEntryBound     PoolEntryStatus = "bound"
)

// PoolEntry is one workspace slot in a project's pool.
type PoolEntry struct {
	Status PoolEntryStatus `json:"status"`
	// Task is "<project>/<branch>", a name reference only — never a
	// pointer to the task itself (spec: "no cyclic ownership").
	Task string `json:"task,omitempty"`
}

// PoolDocument is the full shape of <data>/workspaces/.pool.json.
type PoolDocument struct {
	Workspaces map[string]PoolEntry `json:"workspaces"`
}
