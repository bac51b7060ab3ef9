package store

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

func TestSaveLoadTask_RoundTrip(t *testing.T) {
	dataDir := t.TempDir()

	task := &models.Task{
		ID:        "ab12cd34",
		Project:   "demo",
		Branch:    "feat-a",
		Harness:   "claude",
		Status:    models.StatusPending,
		Summary:   "Add A",
		CreatedAt: "2026-01-01T00:00:00Z",
		UpdatedAt: "2026-01-01T00:00:00Z",
		Body:      "## Plan\nAPPROACH: X\n",
	}

	require.NoError(t, SaveTask(dataDir, task))

	loaded, err := LoadTask(dataDir, task.Project, task.ID)
	require.NoError(t, err)
	require.Equal(t, task, loaded)
}

func TestLoadTask_NotFound(t *testing.T) {
	dataDir := t.TempDir()

	_, err := LoadTask(dataDir, "demo", "missing1")
	require.Error(t, err)
	require.True(t, errs.Of(err, errs.KindTaskNotFound))
}

func TestSaveTask_AtomicOverwrite(t *testing.T) {
	dataDir := t.TempDir()
	task := &models.Task{ID: "ab12cd34", Project: "demo", Status: models.StatusPending}
	require.NoError(t, SaveTask(dataDir, task))

	task.Status = models.StatusPlanning
	require.NoError(t, SaveTask(dataDir, task))

	loaded, err := LoadTask(dataDir, "demo", "ab12cd34")
	require.NoError(t, err)
	require.Equal(t, models.StatusPlanning, loaded.Status)

	entries, err := filepath.Glob(filepath.Join(dataDir, "tasks", "demo", "ab12cd34", ".TASK-*.md.tmp"))
	require.NoError(t, err)
	require.Empty(t, entries)
}

func TestParseTaskDoc_MissingFrontmatter(t *testing.T) {
	_, err := parseTaskDoc([]byte("no frontmatter here"))
	require.Error(t, err)
}
