// Package drivers defines the capability interfaces the core consumes from
// external collaborators: the terminal multiplexer, the version-control
// tool, the pull-request host, the clock, and the logger (spec §6.1 and §9
// Design Note "Polymorphism"). Any implementation honoring these contracts
// is acceptable; mocks for tests replace them directly.
package drivers

import "context"

// Multiplexer is the terminal-multiplexer driver contract (spec §6.1).
type Multiplexer interface {
	IsAvailable(ctx context.Context) bool
	NewSession(ctx context.Context, name, cwd, command string) error
	NewWindow(ctx context.Context, session, name, cwd, command string) error
	KillSessionSafe(ctx context.Context, name string)
	KillWindowSafe(ctx context.Context, session, window string)
	RenameWindow(ctx context.Context, session, name string) error
	SessionExists(ctx context.Context, name string) (bool, error)
	ListSessions(ctx context.Context) ([]string, error)
	SendLiteral(ctx context.Context, session, text string) error
	// CapturePane returns the last n lines of output from a session's
	// active pane. Supplemented beyond the spec's minimal contract for
	// the `rigctl task capture` convenience (SPEC_FULL §9).
	CapturePane(ctx context.Context, session string, lines int) (string, error)
}

// DiffStats reports lines added/removed relative to a base ref.
type DiffStats struct {
	Added   int
	Removed int
}

// VCS is the version-control driver contract (spec §6.1).
type VCS interface {
	Fetch(ctx context.Context, cwd string) error
	Checkout(ctx context.Context, cwd, branch string) error
	CreateBranch(ctx context.Context, cwd, branch, start string) error
	BranchExists(ctx context.Context, cwd, branch string) (bool, error)
	DeleteRemoteBranch(ctx context.Context, cwd, branch, remote string) error
	Merge(ctx context.Context, cwd, branch string, strategy string) error
	ResetHard(ctx context.Context, cwd, ref string) error
	Clean(ctx context.Context, cwd string) error
	CurrentBranch(ctx context.Context, cwd string) (string, error)
	AddWorktree(ctx context.Context, cwd, path, branch string) error
	RemoveWorktree(ctx context.Context, cwd, path string) error
	GetCommitHash(ctx context.Context, cwd string, short bool) (string, error)
	IsDirty(ctx context.Context, cwd string) (bool, error)
	Push(ctx context.Context, cwd, remote, branch string) error
	GetDiffStats(ctx context.Context, cwd, base string) (DiffStats, error)
	GetCommitCount(ctx context.Context, cwd, base string) (int, error)
}

// PRCheckState is the CI-check rollup the PR host reports.
type PRCheckState string

// PR check states.
const (
	ChecksPending PRCheckState = "pending"
	ChecksPass    PRCheckState = "pass"
	ChecksFail    PRCheckState = "fail"
	ChecksNone    PRCheckState = "none"
)

// PRStatus is the PR host's snapshot of a branch's pull request.
type PRStatus struct {
	Exists         bool
	URL            string
	State          string // OPEN, CLOSED, MERGED
	MergeCommit    string
	Checks         PRCheckState
	ReviewDecision string
}

// CreatePRRequest bundles the fields needed to open a pull request.
type CreatePRRequest struct {
	Branch string
	Base   string
	Title  string
	Body   string
}

// PRHost is the pull-request platform driver contract (spec §6.1).
type PRHost interface {
	IsAvailable(ctx context.Context, cwd string) bool
	CreatePR(ctx context.Context, cwd string, req CreatePRRequest) (string, error)
	GetPRStatus(ctx context.Context, cwd, branch string) (PRStatus, error)
}

// Clock supplies the current time as an ISO-8601 UTC string (spec §6.1),
// so the engine never calls time.Now directly and stays deterministic
// under test.
type Clock interface {
	Now() string
}

// Logger is a levelled, structured logger with a child-scoping capability
// (spec §6.1).
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
	Child(component string) Logger
}
