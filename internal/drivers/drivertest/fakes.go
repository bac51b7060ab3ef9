// Package drivertest provides in-memory fakes for the driver ports, used
// across the engine's test suites instead of shelling out to real tmux,
// git, or gh binaries.
package drivertest

import (
	"context"
	"fmt"
	"sync"

	"github.com/rigctl/rigctl/internal/drivers"
)

// Clock is a controllable fake drivers.Clock.
type Clock struct {
	mu  sync.Mutex
	now string
}

// NewClock returns a fake clock seeded at the given ISO-8601 timestamp.
func NewClock(seed string) *Clock { return &Clock{now: seed} }

// Now returns the current fake timestamp.
func (c *Clock) Now() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

// Set overrides the fake timestamp.
func (c *Clock) Set(now string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Logger is a no-op drivers.Logger that records calls for assertions.
type Logger struct {
	mu     sync.Mutex
	Lines  []string
	prefix string
	parent *Logger
}

// NewLogger returns a recording fake logger.
func NewLogger() *Logger { return &Logger{} }

func (l *Logger) record(level, msg string) {
	if l.prefix != "" {
		msg = l.prefix + ": " + msg
	}
	if l.parent != nil {
		l.parent.record(level, msg)
		return
	}
	l.mu.Lock()
	defer l.mu.Unlock()
	l.Lines = append(l.Lines, level+" "+msg)
}

func (l *Logger) Debug(msg string, _ ...any) { l.record("debug", msg) }
func (l *Logger) Info(msg string, _ ...any)  { l.record("info", msg) }
func (l *Logger) Warn(msg string, _ ...any)  { l.record("warn", msg) }
func (l *Logger) Error(msg string, _ ...any) { l.record("error", msg) }

// Child returns a logger scoped to component, sharing the same log sink.
func (l *Logger) Child(component string) drivers.Logger {
	return &Logger{prefix: component, parent: l}
}

// Multiplexer is an in-memory fake drivers.Multiplexer.
type Multiplexer struct {
	mu       sync.Mutex
	sessions map[string]bool
	// Avail, when false, makes IsAvailable report the multiplexer down.
	Avail bool
}

// NewMultiplexer returns a fake multiplexer that starts out available.
func NewMultiplexer() *Multiplexer {
	return &Multiplexer{sessions: map[string]bool{}, Avail: true}
}

func (m *Multiplexer) IsAvailable(context.Context) bool { return m.Avail }

func (m *Multiplexer) NewSession(_ context.Context, name, _, _ string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.sessions[name] {
		return fmt.Errorf("session %q already exists", name)
	}
	m.sessions[name] = true
	return nil
}

func (m *Multiplexer) NewWindow(context.Context, string, string, string, string) error { return nil }

func (m *Multiplexer) KillSessionSafe(_ context.Context, name string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.sessions, name)
}

func (m *Multiplexer) KillWindowSafe(context.Context, string, string) {}

func (m *Multiplexer) RenameWindow(context.Context, string, string) error { return nil }

func (m *Multiplexer) SessionExists(_ context.Context, name string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.sessions[name], nil
}

func (m *Multiplexer) ListSessions(context.Context) ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	names := make([]string, 0, len(m.sessions))
	for n := range m.sessions {
		names = append(names, n)
	}
	return names, nil
}

func (m *Multiplexer) SendLiteral(context.Context, string, string) error { return nil }

func (m *Multiplexer) CapturePane(context.Context, string, int) (string, error) { return "", nil }

// VCS is an in-memory fake drivers.VCS. Tests set the exported fields
// directly to script behavior (dirty working trees, existing branches).
type VCS struct {
	mu       sync.Mutex
	Branches map[string]bool
	Dirty    map[string]bool
	Worktrees map[string]string // path -> branch
}

// NewVCS returns an empty fake VCS.
func NewVCS() *VCS {
	return &VCS{Branches: map[string]bool{}, Dirty: map[string]bool{}, Worktrees: map[string]string{}}
}

func (v *VCS) Fetch(context.Context, string) error { return nil }

func (v *VCS) Checkout(context.Context, string, string) error { return nil }

func (v *VCS) CreateBranch(_ context.Context, _, branch, _ string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Branches[branch] = true
	return nil
}

func (v *VCS) BranchExists(_ context.Context, _, branch string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Branches[branch], nil
}

func (v *VCS) DeleteRemoteBranch(_ context.Context, _, branch, _ string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.Branches, branch)
	return nil
}

func (v *VCS) Merge(context.Context, string, string, string) error { return nil }

func (v *VCS) ResetHard(context.Context, string, string) error { return nil }

func (v *VCS) Clean(context.Context, string) error { return nil }

func (v *VCS) CurrentBranch(context.Context, string) (string, error) { return "main", nil }

func (v *VCS) AddWorktree(_ context.Context, _, path, branch string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	v.Worktrees[path] = branch
	return nil
}

func (v *VCS) RemoveWorktree(_ context.Context, _, path string) error {
	v.mu.Lock()
	defer v.mu.Unlock()
	delete(v.Worktrees, path)
	return nil
}

func (v *VCS) GetCommitHash(context.Context, string, bool) (string, error) { return "deadbeef", nil }

func (v *VCS) IsDirty(_ context.Context, cwd string) (bool, error) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.Dirty[cwd], nil
}

func (v *VCS) Push(context.Context, string, string, string) error { return nil }

func (v *VCS) GetDiffStats(context.Context, string, string) (drivers.DiffStats, error) {
	return drivers.DiffStats{}, nil
}

func (v *VCS) GetCommitCount(context.Context, string, string) (int, error) { return 0, nil }

// PRHost is an in-memory fake drivers.PRHost.
type PRHost struct {
	mu    sync.Mutex
	prs   map[string]drivers.PRStatus
	Avail bool
}

// NewPRHost returns a fake PR host that starts out available.
func NewPRHost() *PRHost {
	return &PRHost{prs: map[string]drivers.PRStatus{}, Avail: true}
}

func (h *PRHost) IsAvailable(context.Context, string) bool { return h.Avail }

func (h *PRHost) CreatePR(_ context.Context, _ string, req drivers.CreatePRRequest) (string, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	url := "https://example.invalid/pr/" + req.Branch
	h.prs[req.Branch] = drivers.PRStatus{Exists: true, URL: url, State: "OPEN", Checks: drivers.ChecksPending}
	return url, nil
}

func (h *PRHost) GetPRStatus(_ context.Context, _, branch string) (drivers.PRStatus, error) {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.prs[branch], nil
}

// SetStatus lets a test script a PR's reported status directly.
func (h *PRHost) SetStatus(branch string, status drivers.PRStatus) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.prs[branch] = status
}
