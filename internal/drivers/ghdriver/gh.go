// Package ghdriver implements drivers.PRHost by shelling out to the gh
// CLI, following the same command/context/stderr-capture idiom as
// gitdriver and tmuxdriver.
package ghdriver

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"os/exec"
	"strings"

	"github.com/rigctl/rigctl/internal/drivers"
)

// GH shells out to the gh binary for every operation.
type GH struct {
	// Bin overrides the gh executable name; defaults to "gh".
	Bin string
}

// New returns a GH driver using the gh binary on PATH.
func New() *GH { return &GH{Bin: "gh"} }

func (g *GH) bin() string {
	if g.Bin == "" {
		return "gh"
	}
	return g.Bin
}

func (g *GH) run(ctx context.Context, cwd string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, g.bin(), args...) //nolint:gosec // G204: args are constant-shaped
	cmd.Dir = cwd
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("gh %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}

// IsAvailable reports whether gh is installed and authenticated for cwd's repo.
func (g *GH) IsAvailable(ctx context.Context, cwd string) bool {
	_, err := g.run(ctx, cwd, "auth", "status")
	return err == nil
}

// CreatePR opens a pull request and returns its URL.
func (g *GH) CreatePR(ctx context.Context, cwd string, req drivers.CreatePRRequest) (string, error) {
	args := []string{"pr", "create", "--head", req.Branch, "--base", req.Base, "--title", req.Title, "--body", req.Body}
	out, err := g.run(ctx, cwd, args...)
	if err != nil {
		return "", err
	}
	return strings.TrimSpace(out), nil
}

type prMergeCommit struct {
	Oid string `json:"oid"`
}

type prCheckRun struct {
	Conclusion string `json:"conclusion"`
	Status     string `json:"status"`
}

// prViewJSON mirrors the subset of `gh pr view --json` fields rigctl needs.
type prViewJSON struct {
	URL               string         `json:"url"`
	State             string         `json:"state"`
	MergeCommit       *prMergeCommit `json:"mergeCommit"`
	ReviewDecision    string         `json:"reviewDecision"`
	StatusCheckRollup []prCheckRun   `json:"statusCheckRollup"`
}

// GetPRStatus fetches the pull request associated with branch, if any.
func (g *GH) GetPRStatus(ctx context.Context, cwd, branch string) (drivers.PRStatus, error) {
	out, err := g.run(ctx, cwd, "pr", "view", branch,
		"--json", "url,state,mergeCommit,reviewDecision,statusCheckRollup")
	if err != nil {
		if strings.Contains(err.Error(), "no pull requests found") {
			return drivers.PRStatus{Exists: false}, nil
		}
		return drivers.PRStatus{}, err
	}

	var parsed prViewJSON
	if jsonErr := json.Unmarshal([]byte(out), &parsed); jsonErr != nil {
		return drivers.PRStatus{}, fmt.Errorf("parse gh pr view output: %w", jsonErr)
	}

	status := drivers.PRStatus{
		Exists:         true,
		URL:            parsed.URL,
		State:          parsed.State,
		ReviewDecision: parsed.ReviewDecision,
		Checks:         rollupChecks(parsed.StatusCheckRollup),
	}
	if parsed.MergeCommit != nil {
		status.MergeCommit = parsed.MergeCommit.Oid
	}
	return status, nil
}

func rollupChecks(checks []prCheckRun) drivers.PRCheckState {
	if len(checks) == 0 {
		return drivers.ChecksNone
	}
	pending := false
	for _, c := range checks {
		if c.Status != "COMPLETED" {
			pending = true
			continue
		}
		if c.Conclusion != "SUCCESS" && c.Conclusion != "NEUTRAL" && c.Conclusion != "SKIPPED" {
			return drivers.ChecksFail
		}
	}
	if pending {
		return drivers.ChecksPending
	}
	return drivers.ChecksPass
}
