// Package workspace implements the bounded worktree pool described in
// spec §4.3: lazy worktree creation, exclusive binding through the pool
// lock, and safe release (fetch, reset, clean) on disk.
package workspace

import (
	"context"
	"os"
	"path/filepath"

	"github.com/rigctl/rigctl/internal/drivers"
	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// gitExcludeEntries are appended once to <project>/.git/info/exclude so
// harness-managed workspace files never show up as untracked changes.
var gitExcludeEntries = []string{"TASK.md", ".rigctl-outcome"}

// Manager binds the workspace pool operations to a concrete VCS driver
// and data directory.
type Manager struct {
	DataDir string
	VCS     drivers.VCS
	Logger  drivers.Logger
}

// New returns a Manager for the given data directory and VCS driver.
func New(dataDir string, vcs drivers.VCS, logger drivers.Logger) *Manager {
	return &Manager{DataDir: dataDir, VCS: vcs, Logger: logger}
}

// Acquire binds a workspace to task.Branch within project, creating and
// checking out the branch as needed. On success it sets task.Workspace
// and persists the task.
func (m *Manager) Acquire(ctx context.Context, project models.Project, task *models.Task) error {
	if task.HasWorkspace() {
		return nil
	}

	taskRef := task.Project + "/" + task.Branch
	name, created, err := store.AcquireSlot(ctx, m.DataDir, project.Name, project.PoolSize, taskRef)
	if err != nil {
		return err
	}

	wtPath := store.WorkspaceDir(m.DataDir, name)

	if created {
		if err := m.VCS.AddWorktree(ctx, project.Path, wtPath, project.DefaultBranch); err != nil {
			_ = store.ReleaseSlot(ctx, m.DataDir, name)
			return errs.Wrap(errs.KindVCSFailed, err, "add worktree")
		}
	}

	if err := m.VCS.Fetch(ctx, wtPath); err != nil {
		m.Logger.Warn("fetch failed during workspace acquire", "error", err.Error())
	}
	if err := m.VCS.ResetHard(ctx, wtPath, "origin/"+project.DefaultBranch); err != nil {
		m.Logger.Warn("reset to default branch failed", "error", err.Error())
	}

	if err := m.checkoutOrCreateBranch(ctx, wtPath, project, task.Branch); err != nil {
		_ = store.ReleaseSlot(ctx, m.DataDir, name)
		return err
	}

	patchGitExcludes(project.Path)
	symlinkTaskDoc(m.DataDir, task, wtPath)

	task.Workspace = name
	return store.SaveTask(m.DataDir, task)
}

func (m *Manager) checkoutOrCreateBranch(ctx context.Context, wtPath string, project models.Project, branch string) error {
	exists, err := m.VCS.BranchExists(ctx, wtPath, branch)
	if err != nil {
		return errs.Wrap(errs.KindVCSFailed, err, "check branch existence")
	}
	if exists {
		if err := m.VCS.Checkout(ctx, wtPath, branch); err != nil {
			return errs.Newf(errs.KindBranchInUse, "branch %q already in use by another worktree", branch).
				WithContext(map[string]string{"branch": branch})
		}
		return nil
	}
	if err := m.VCS.CreateBranch(ctx, wtPath, branch, project.DefaultBranch); err != nil {
		return errs.Wrap(errs.KindVCSFailed, err, "create task branch")
	}
	if err := m.VCS.Checkout(ctx, wtPath, branch); err != nil {
		return errs.Wrap(errs.KindVCSFailed, err, "checkout task branch")
	}
	return nil
}

// Release cleans and frees task's bound workspace. force=true skips the
// dirty-workspace check, used by the merge path once the task's branch no
// longer exists upstream (spec §9 Open Question 3).
func (m *Manager) Release(ctx context.Context, task *models.Task, force bool) error {
	if !task.HasWorkspace() {
		return nil
	}

	wtPath := store.WorkspaceDir(m.DataDir, task.Workspace)

	if !force {
		dirty, err := m.VCS.IsDirty(ctx, wtPath)
		if err != nil {
			return errs.Wrap(errs.KindVCSFailed, err, "check workspace cleanliness")
		}
		if dirty {
			return errs.Newf(errs.KindDirtyWorkspace, "workspace %s has uncommitted changes", task.Workspace).
				WithContext(map[string]string{"workspace": task.Workspace})
		}
	}

	if err := m.VCS.Fetch(ctx, wtPath); err != nil {
		m.Logger.Warn("fetch failed during release", "error", err.Error())
	}

	return m.finishRelease(ctx, task, wtPath)
}

func (m *Manager) finishRelease(ctx context.Context, task *models.Task, wtPath string) error {
	project, err := store.FindProject(m.DataDir, task.Project)
	if err != nil {
		return err
	}

	target := "origin/" + project.DefaultBranch
	if exists, _ := m.VCS.BranchExists(ctx, wtPath, project.DefaultBranch); !exists {
		target = project.DefaultBranch
	}
	if err := m.VCS.ResetHard(ctx, wtPath, target); err != nil {
		m.Logger.Warn("reset hard failed during release", "error", err.Error())
	}
	if err := m.VCS.Clean(ctx, wtPath); err != nil {
		m.Logger.Warn("clean failed during release", "error", err.Error())
	}

	_ = os.Remove(filepath.Join(wtPath, "TASK.md"))
	_ = os.Remove(filepath.Join(wtPath, ".rigctl-outcome"))

	if releaseErr := store.ReleaseSlot(ctx, m.DataDir, task.Workspace); releaseErr != nil {
		return releaseErr
	}
	task.Workspace = ""
	return store.SaveTask(m.DataDir, task)
}

func patchGitExcludes(projectPath string) {
	excludePath := filepath.Join(projectPath, ".git", "info", "exclude")
	existing, _ := os.ReadFile(excludePath) //nolint:gosec // G304: path derived from trusted registered project
	content := string(existing)

	var toAdd string
	for _, entry := range gitExcludeEntries {
		if !containsLine(content, entry) {
			toAdd += entry + "\n"
		}
	}
	if toAdd == "" {
		return
	}
	f, err := os.OpenFile(excludePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644) //nolint:gosec // G304: same trusted path
	if err != nil {
		return
	}
	defer f.Close()
	_, _ = f.WriteString(toAdd)
}

func containsLine(content, line string) bool {
	for _, l := range splitLines(content) {
		if l == line {
			return true
		}
	}
	return false
}

func splitLines(s string) []string {
	var lines []string
	start := 0
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			lines = append(lines, s[start:i])
			start = i + 1
		}
	}
	if start < len(s) {
		lines = append(lines, s[start:])
	}
	return lines
}

func symlinkTaskDoc(dataDir string, task *models.Task, wtPath string) {
	src := store.TaskPath(dataDir, task.Project, task.ID)
	dst := filepath.Join(wtPath, "TASK.md")
	_ = os.Remove(dst)
	_ = os.Symlink(src, dst)
}
