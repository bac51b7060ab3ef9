package store

import (
	"os"
	"path/filepath"
	"sort"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

// ListTaskIDs returns every task ID currently stored for a project, in no
// particular order (callers needing ordering, e.g. spawn_next's
// oldest-first rule, sort by the loaded task's CreatedAt themselves).
func ListTaskIDs(dataDir, project string) ([]string, error) {
	dir := filepath.Join(dataDir, "tasks", project)
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "list task directory")
	}

	var ids []string
	for _, e := range entries {
		if e.IsDir() {
			ids = append(ids, e.Name())
		}
	}
	return ids, nil
}

// ListTasks loads every task for a project, sorted by CreatedAt ascending
// (oldest first), skipping any task document that fails to parse.
func ListTasks(dataDir, project string) ([]*models.Task, error) {
	ids, err := ListTaskIDs(dataDir, project)
	if err != nil {
		return nil, err
	}

	var tasks []*models.Task
	for _, id := range ids {
		task, loadErr := LoadTask(dataDir, project, id)
		if loadErr != nil {
			continue
		}
		tasks = append(tasks, task)
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].CreatedAt < tasks[j].CreatedAt })
	return tasks, nil
}

// ListAllProjectDirs lists every project name with at least one task
// directory under <data>/tasks/.
func ListAllProjectDirs(dataDir string) ([]string, error) {
	dir := filepath.Join(dataDir, "tasks")
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "list tasks directory")
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			names = append(names, e.Name())
		}
	}
	return names, nil
}
