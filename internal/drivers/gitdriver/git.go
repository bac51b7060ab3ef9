// Package gitdriver implements drivers.VCS by shelling out to the git
// binary, using the same os/exec idiom as ghdriver and tmuxdriver
// (context-bound commands, stderr capture for diagnostics).
package gitdriver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"

	"github.com/rigctl/rigctl/internal/drivers"
)

// Git shells out to the git binary for every operation.
type Git struct {
	// Bin overrides the git executable name; defaults to "git".
	Bin string
}

// New returns a Git driver using the git binary on PATH.
func New() *Git { return &Git{Bin: "git"} }

func (g *Git) bin() string {
	if g.Bin == "" {
		return "git"
	}
	return g.Bin
}

func (g *Git) run(ctx context.Context, cwd string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.bin(), args...) //nolint:gosec // G204: args are constant-shaped
	cmd.Dir = cwd
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("git %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}

// Fetch fetches from the default remote.
func (g *Git) Fetch(ctx context.Context, cwd string) error {
	_, err := g.run(ctx, cwd, "fetch", "--prune")
	return err
}

// Checkout switches the working tree to branch.
func (g *Git) Checkout(ctx context.Context, cwd, branch string) error {
	_, err := g.run(ctx, cwd, "checkout", branch)
	return err
}

// CreateBranch creates branch starting from start (a ref or commit).
func (g *Git) CreateBranch(ctx context.Context, cwd, branch, start string) error {
	args := []string{"branch", branch}
	if start != "" {
		args = append(args, start)
	}
	_, err := g.run(ctx, cwd, args...)
	return err
}

// BranchExists reports whether a local branch exists. show-ref exits
// non-zero for "not found", which is a normal outcome here, not a failure.
func (g *Git) BranchExists(ctx context.Context, cwd, branch string) (bool, error) {
	_, err := g.run(ctx, cwd, "show-ref", "--verify", "--quiet", "refs/heads/"+branch)
	return err == nil, nil
}

// DeleteRemoteBranch deletes branch on remote.
func (g *Git) DeleteRemoteBranch(ctx context.Context, cwd, branch, remote string) error {
	if remote == "" {
		remote = "origin"
	}
	_, err := g.run(ctx, cwd, "push", remote, "--delete", branch)
	return err
}

// Merge merges branch into the current HEAD using the named strategy
// ("ff" for --ff-only, anything else for an ordinary merge commit).
func (g *Git) Merge(ctx context.Context, cwd, branch string, strategy string) error {
	args := []string{"merge"}
	if strategy == "ff" {
		args = append(args, "--ff-only")
	} else {
		args = append(args, "--no-ff")
	}
	args = append(args, branch)
	_, err := g.run(ctx, cwd, args...)
	return err
}

// ResetHard resets the working tree to ref, discarding local changes.
func (g *Git) ResetHard(ctx context.Context, cwd, ref string) error {
	_, err := g.run(ctx, cwd, "reset", "--hard", ref)
	return err
}

// Clean removes untracked files and directories.
func (g *Git) Clean(ctx context.Context, cwd string) error {
	_, err := g.run(ctx, cwd, "clean", "-fd")
	return err
}

// CurrentBranch returns the checked-out branch name.
func (g *Git) CurrentBranch(ctx context.Context, cwd string) (string, error) {
	out, err := g.run(ctx, cwd, "rev-parse", "--abbrev-ref", "HEAD")
	return strings.TrimSpace(out), err
}

// AddWorktree attaches a new worktree at path tracking branch.
func (g *Git) AddWorktree(ctx context.Context, cwd, path, branch string) error {
	_, err := g.run(ctx, cwd, "worktree", "add", path, branch)
	return err
}

// RemoveWorktree detaches a worktree, forcing removal of any local changes.
func (g *Git) RemoveWorktree(ctx context.Context, cwd, path string) error {
	_, err := g.run(ctx, cwd, "worktree", "remove", "--force", path)
	return err
}

// GetCommitHash returns HEAD's commit hash, shortened if requested.
func (g *Git) GetCommitHash(ctx context.Context, cwd string, short bool) (string, error) {
	args := []string{"rev-parse"}
	if short {
		args = append(args, "--short")
	}
	args = append(args, "HEAD")
	out, err := g.run(ctx, cwd, args...)
	return strings.TrimSpace(out), err
}

// IsDirty reports whether the working tree has uncommitted changes.
func (g *Git) IsDirty(ctx context.Context, cwd string) (bool, error) {
	out, err := g.run(ctx, cwd, "status", "--porcelain")
	if err != nil {
		return false, err
	}
	return strings.TrimSpace(out) != "", nil
}

// Push pushes branch to remote, setting the upstream.
func (g *Git) Push(ctx context.Context, cwd, remote, branch string) error {
	if remote == "" {
		remote = "origin"
	}
	_, err := g.run(ctx, cwd, "push", "-u", remote, branch)
	return err
}

// GetDiffStats reports lines added/removed relative to base.
func (g *Git) GetDiffStats(ctx context.Context, cwd, base string) (drivers.DiffStats, error) {
	out, err := g.run(ctx, cwd, "diff", "--shortstat", base+"...HEAD")
	if err != nil {
		return drivers.DiffStats{}, err
	}
	return parseShortstat(out), nil
}

// GetCommitCount reports the number of commits ahead of base.
func (g *Git) GetCommitCount(ctx context.Context, cwd, base string) (int, error) {
	out, err := g.run(ctx, cwd, "rev-list", "--count", base+"..HEAD")
	if err != nil {
		return 0, err
	}
	n, convErr := strconv.Atoi(strings.TrimSpace(out))
	if convErr != nil {
		return 0, fmt.Errorf("parse commit count %q: %w", out, convErr)
	}
	return n, nil
}

// parseShortstat extracts added/removed line counts from `git diff
// --shortstat` output, e.g. " 2 files changed, 10 insertions(+), 3 deletions(-)".
func parseShortstat(out string) drivers.DiffStats {
	var stats drivers.DiffStats
	fields := strings.Split(out, ",")
	for _, f := range fields {
		f = strings.TrimSpace(f)
		switch {
		case strings.Contains(f, "insertion"):
			stats.Added = firstInt(f)
		case strings.Contains(f, "deletion"):
			stats.Removed = firstInt(f)
		}
	}
	return stats
}

func firstInt(s string) int {
	start := -1
	for i, r := range s {
		if r >= '0' && r <= '9' {
			if start == -1 {
				start = i
			}
			continue
		}
		if start != -1 {
			n, _ := strconv.Atoi(s[start:i])
			return n
		}
	}
	if start != -1 {
		n, _ := strconv.Atoi(s[start:])
		return n
	}
	return 0
}
