// Package doctor implements a read-only health-check pass over the data
// directory: orphaned bound workspaces, task documents referencing
// unknown projects, and pool entries with gaps in their slot numbering.
// Grounded in the gastown-family check-registry pattern
// (other_examples/...cmd-doctor.go.go), scaled down to this module's
// scope: no --fix, no session restarts.
package doctor

import (
	"context"
	"fmt"
	"sort"
	"strconv"
	"strings"

	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// Severity classifies a Finding.
type Severity string

// Finding severities.
const (
	SeverityOK   Severity = "ok"
	SeverityWarn Severity = "warn"
	SeverityFail Severity = "fail"
)

// Finding is one observation from a single check.
type Finding struct {
	Check    string   `json:"check"`
	Severity Severity `json:"severity"`
	Detail   string   `json:"detail"`
}

// Check is one registered health check. Run returns every finding it
// produced (an empty slice, not an error, for "nothing wrong").
type Check interface {
	Name() string
	Run(ctx context.Context, dataDir string) ([]Finding, error)
}

// Doctor runs a registered set of checks in order.
type Doctor struct {
	checks []Check
}

// New returns a Doctor with no checks registered.
func New() *Doctor { return &Doctor{} }

// Register adds a check to the end of the run order.
func (d *Doctor) Register(c Check) { d.checks = append(d.checks, c) }

// RegisterAll adds every check in cs to the end of the run order.
func (d *Doctor) RegisterAll(cs ...Check) { d.checks = append(d.checks, cs...) }

// Default returns a Doctor with every built-in check registered.
func Default() *Doctor {
	d := New()
	d.RegisterAll(
		&OrphanedWorkspaceCheck{},
		&UnknownProjectCheck{},
		&PoolNumberingGapCheck{},
	)
	return d
}

// Run executes every registered check against dataDir, collecting all
// findings. A check that itself errors becomes a single "fail" finding
// rather than aborting the remaining checks.
func (d *Doctor) Run(ctx context.Context, dataDir string) []Finding {
	var all []Finding
	for _, c := range d.checks {
		findings, err := c.Run(ctx, dataDir)
		if err != nil {
			all = append(all, Finding{Check: c.Name(), Severity: SeverityFail, Detail: err.Error()})
			continue
		}
		all = append(all, findings...)
	}
	return all
}

// OrphanedWorkspaceCheck flags bound pool slots whose referenced task
// either doesn't exist or no longer points back at that slot.
type OrphanedWorkspaceCheck struct{}

// Name returns the check's identifier.
func (*OrphanedWorkspaceCheck) Name() string { return "orphan-workspaces" }

// Run scans every bound pool slot for a task that still claims it.
func (*OrphanedWorkspaceCheck) Run(_ context.Context, dataDir string) ([]Finding, error) {
	doc, err := store.LoadPool(dataDir)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for slot, entry := range doc.Workspaces {
		if entry.Status != models.PoolEntryBound {
			continue
		}
		project, branch, ok := strings.Cut(entry.Task, "/")
		if !ok {
			findings = append(findings, Finding{
				Check: "orphan-workspaces", Severity: SeverityWarn,
				Detail: fmt.Sprintf("slot %s has malformed task reference %q", slot, entry.Task),
			})
			continue
		}

		tasks, listErr := store.ListTasks(dataDir, project)
		if listErr != nil {
			findings = append(findings, Finding{
				Check: "orphan-workspaces", Severity: SeverityWarn,
				Detail: fmt.Sprintf("slot %s: failed listing tasks for project %s: %s", slot, project, listErr.Error()),
			})
			continue
		}

		found := false
		for _, task := range tasks {
			if task.Branch == branch && task.Workspace == slot {
				found = true
				break
			}
		}
		if !found {
			findings = append(findings, Finding{
				Check: "orphan-workspaces", Severity: SeverityWarn,
				Detail: fmt.Sprintf("slot %s is bound to %s but no task references it", slot, entry.Task),
			})
		}
	}
	return findings, nil
}

// UnknownProjectCheck flags task directories whose project isn't
// registered in projects.json.
type UnknownProjectCheck struct{}

// Name returns the check's identifier.
func (*UnknownProjectCheck) Name() string { return "unknown-project" }

// Run lists every task directory and checks its project is registered.
func (*UnknownProjectCheck) Run(_ context.Context, dataDir string) ([]Finding, error) {
	projectDirs, err := store.ListAllProjectDirs(dataDir)
	if err != nil {
		return nil, err
	}

	var findings []Finding
	for _, name := range projectDirs {
		if _, findErr := store.FindProject(dataDir, name); findErr != nil {
			findings = append(findings, Finding{
				Check: "unknown-project", Severity: SeverityWarn,
				Detail: fmt.Sprintf("task directory %q has no matching registered project", name),
			})
		}
	}
	return findings, nil
}

// PoolNumberingGapCheck flags a project whose bound+available slot
// numbers skip a value (e.g. demo--1, demo--3 with no demo--2), which
// can only happen from manual edits to the pool document.
type PoolNumberingGapCheck struct{}

// Name returns the check's identifier.
func (*PoolNumberingGapCheck) Name() string { return "pool-numbering-gap" }

// Run groups pool slot names by project and checks the numeric suffixes
// form a contiguous 1..n run.
func (*PoolNumberingGapCheck) Run(_ context.Context, dataDir string) ([]Finding, error) {
	doc, err := store.LoadPool(dataDir)
	if err != nil {
		return nil, err
	}

	byProject := map[string][]int{}
	for slot := range doc.Workspaces {
		project, numStr, ok := cutLastDoubleDash(slot)
		if !ok {
			continue
		}
		n, convErr := strconv.Atoi(numStr)
		if convErr != nil {
			continue
		}
		byProject[project] = append(byProject[project], n)
	}

	var findings []Finding
	for project, nums := range byProject {
		sort.Ints(nums)
		for i, n := range nums {
			if n != i+1 {
				findings = append(findings, Finding{
					Check: "pool-numbering-gap", Severity: SeverityWarn,
					Detail: fmt.Sprintf("project %s pool slots are non-contiguous: %v", project, nums),
				})
				break
			}
		}
	}
	return findings, nil
}

// cutLastDoubleDash splits "project--n" into ("project", "n"), using the
// last occurrence of "--" so project names may themselves contain dashes.
func cutLastDoubleDash(slot string) (project, num string, ok bool) {
	idx := strings.LastIndex(slot, "--")
	if idx < 0 {
		return "", "", false
	}
	return slot[:idx], slot[idx+2:], true
}
