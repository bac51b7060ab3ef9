package store

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

const frontmatterDelim = "---\n"

// taskDir returns the directory a task's documents live under.
func taskDir(dataDir, project, id string) string {
	return filepath.Join(dataDir, "tasks", project, id)
}

// TaskPath returns the path to a task's TASK.md document.
func TaskPath(dataDir, project, id string) string {
	return filepath.Join(taskDir(dataDir, project, id), "TASK.md")
}

// LoadTask reads and parses a task's TASK.md document.
func LoadTask(dataDir, project, id string) (*models.Task, error) {
	path := TaskPath(dataDir, project, id)
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path built from trusted data dir + caller-supplied project/id
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errs.Newf(errs.KindTaskNotFound, "task %s/%s not found", project, id).
				WithContext(map[string]string{"project": project, "id": id})
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "read task document")
	}

	task, err := parseTaskDoc(raw)
	if err != nil {
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "parse task document")
	}
	return task, nil
}

// SaveTask writes a task's TASK.md document atomically (temp file then
// rename), per spec §4.1's crash-safe overwrite guarantee.
func SaveTask(dataDir string, task *models.Task) error {
	dir := taskDir(dataDir, task.Project, task.ID)
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create task directory")
	}

	data := renderTaskDoc(task)

	path := filepath.Join(dir, "TASK.md")
	tmp, err := os.CreateTemp(dir, ".TASK-*.md.tmp")
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create temp task document")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup; rename below is what matters

	if _, err := tmp.Write(data); err != nil {
		_ = tmp.Close()
		return errs.Wrap(errs.KindPersistenceFailed, err, "write temp task document")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "close temp task document")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "rename task document into place")
	}
	return nil
}

// DeleteTask removes a task's entire directory. Callers must have already
// verified the task is terminal per spec §4.6.
func DeleteTask(dataDir, project, id string) error {
	if err := os.RemoveAll(taskDir(dataDir, project, id)); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "delete task directory")
	}
	return nil
}

// parseTaskDoc splits a TASK.md document into its YAML frontmatter and
// markdown body around the "---" delimiter lines.
func parseTaskDoc(raw []byte) (*models.Task, error) {
	content := string(raw)
	if !strings.HasPrefix(content, frontmatterDelim) {
		return nil, fmt.Errorf("task document missing leading frontmatter delimiter")
	}
	content = content[len(frontmatterDelim):]

	closeMarker := "\n---\n"
	idx := strings.Index(content, closeMarker)
	if idx < 0 {
		if strings.HasSuffix(content, "\n---") {
			idx = len(content) - len("\n---")
		} else {
			return nil, fmt.Errorf("task document missing closing frontmatter delimiter")
		}
	}

	fmText := content[:idx]
	body := strings.TrimPrefix(content[idx:], "\n---\n")
	body = strings.TrimPrefix(body, "\n---")

	var task models.Task
	if err := yaml.Unmarshal([]byte(fmText), &task); err != nil {
		return nil, fmt.Errorf("decode frontmatter: %w", err)
	}
	task.Body = body
	return &task, nil
}

func renderTaskDoc(task *models.Task) []byte {
	fm, err := yaml.Marshal(task)
	if err != nil {
		// models.Task's fields are all plain scalars/strings; marshal
		// cannot fail for a well-formed value.
		fm = []byte{}
	}

	var buf bytes.Buffer
	buf.WriteString(frontmatterDelim)
	buf.Write(fm)
	buf.WriteString("---\n")
	if task.Body != "" {
		buf.WriteString(task.Body)
		if !strings.HasSuffix(task.Body, "\n") {
			buf.WriteByte('\n')
		}
	}
	return buf.Bytes()
}
