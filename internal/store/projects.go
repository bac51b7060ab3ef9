package store

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

// ProjectsPath returns the path to the project registry document.
func ProjectsPath(dataDir string) string {
	return filepath.Join(dataDir, "projects.json")
}

// LoadProjects reads the whole project registry. A missing file is not an
// error — it means no projects are registered yet.
func LoadProjects(dataDir string) ([]models.Project, error) {
	path := ProjectsPath(dataDir)
	raw, err := os.ReadFile(path) //nolint:gosec // G304: path built from trusted data dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "read project registry")
	}

	var projects []models.Project
	if err := json.Unmarshal(raw, &projects); err != nil {
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "decode project registry")
	}
	return projects, nil
}

// SaveProjects overwrites the whole project registry atomically.
func SaveProjects(dataDir string, projects []models.Project) error {
	if err := os.MkdirAll(dataDir, 0o750); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create data directory")
	}

	if projects == nil {
		projects = []models.Project{}
	}
	data, err := json.MarshalIndent(projects, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "encode project registry")
	}

	path := ProjectsPath(dataDir)
	tmp, err := os.CreateTemp(dataDir, ".projects-*.json.tmp")
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create temp project registry")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup; rename below is what matters

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return errs.Wrap(errs.KindPersistenceFailed, err, "write temp project registry")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "close temp project registry")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "rename project registry into place")
	}
	return nil
}

// FindProject looks up a project by name, returning KindProjectNotFound if
// it is not registered.
func FindProject(dataDir, name string) (*models.Project, error) {
	projects, err := LoadProjects(dataDir)
	if err != nil {
		return nil, err
	}
	for i := range projects {
		if projects[i].Name == name {
			return &projects[i], nil
		}
	}
	return nil, errs.Newf(errs.KindProjectNotFound, "project %q not found", name).
		WithContext(map[string]string{"project": name})
}
