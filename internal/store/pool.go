package store

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

// PoolPath returns the path to the workspace pool document.
func PoolPath(dataDir string) string {
	return filepath.Join(dataDir, "workspaces", ".pool.json")
}

// PoolLockPath returns the path to the pool's advisory lock file.
func PoolLockPath(dataDir string) string {
	return filepath.Join(dataDir, "workspaces", ".pool.lock")
}

// WorkspaceDir returns the worktree directory for a workspace slot.
func WorkspaceDir(dataDir, workspace string) string {
	return filepath.Join(dataDir, "workspaces", workspace)
}

// LoadPool reads the whole pool document. A missing file is not an error:
// it means the pool has never been initialized, equivalent to an empty
// workspace map.
func LoadPool(dataDir string) (*models.PoolDocument, error) {
	raw, err := os.ReadFile(PoolPath(dataDir)) //nolint:gosec // G304: path built from trusted data dir
	if err != nil {
		if os.IsNotExist(err) {
			return &models.PoolDocument{Workspaces: map[string]models.PoolEntry{}}, nil
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "read pool document")
	}

	var doc models.PoolDocument
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "decode pool document")
	}
	if doc.Workspaces == nil {
		doc.Workspaces = map[string]models.PoolEntry{}
	}
	return &doc, nil
}

// SavePool overwrites the whole pool document atomically.
func SavePool(dataDir string, doc *models.PoolDocument) error {
	dir := filepath.Join(dataDir, "workspaces")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create workspaces directory")
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "encode pool document")
	}

	path := PoolPath(dataDir)
	tmp, err := os.CreateTemp(dir, ".pool-*.json.tmp")
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create temp pool document")
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath) //nolint:errcheck // best-effort cleanup; rename below is what matters

	if _, err := tmp.Write(append(data, '\n')); err != nil {
		_ = tmp.Close()
		return errs.Wrap(errs.KindPersistenceFailed, err, "write temp pool document")
	}
	if err := tmp.Close(); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "close temp pool document")
	}
	if err := os.Rename(tmpPath, path); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "rename pool document into place")
	}
	return nil
}

// WithPoolLock acquires the pool lock with retry-on-contention, runs fn,
// then releases the lock. Every acquire/release/init mutation must go
// through this, per spec §4.3's lock protocol.
func WithPoolLock(ctx context.Context, dataDir string, fn func() error) error {
	lockPath := PoolLockPath(dataDir)
	if dir := filepath.Dir(lockPath); dir != "" {
		if err := os.MkdirAll(dir, 0o750); err != nil {
			return errs.Wrap(errs.KindPersistenceFailed, err, "create workspaces directory")
		}
	}

	var held *os.File
	err := RetryWithBackoff(ctx, func() error {
		f, lockErr := tryLockFile(lockPath)
		if lockErr != nil {
			return errs.Wrap(errs.KindPersistenceFailed, lockErr, "acquire pool lock")
		}
		if f == nil {
			return ErrLockContended
		}
		held = f
		return nil
	})
	if err != nil {
		return err
	}
	defer unlockFile(held)

	return fn()
}

// workspaceNumber extracts the trailing "--<n>" number from a workspace
// name, or 0 if malformed.
func workspaceNumber(project, workspace string) int {
	prefix := project + "--"
	if !strings.HasPrefix(workspace, prefix) {
		return 0
	}
	n, err := strconv.Atoi(strings.TrimPrefix(workspace, prefix))
	if err != nil {
		return 0
	}
	return n
}

// projectEntries returns the project's workspace names in ascending slot
// order, matching the "ordered by insertion" rule via the strictly
// increasing numeric suffix spec §3.3 mandates.
func projectEntries(doc *models.PoolDocument, project string) []string {
	prefix := project + "--"
	var names []string
	for name := range doc.Workspaces {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Slice(names, func(i, j int) bool {
		return workspaceNumber(project, names[i]) < workspaceNumber(project, names[j])
	})
	return names
}

// InitPool ensures the pool document and workspaces directory exist. It is
// idempotent: calling it twice for the same project leaves identical pool
// state (spec §8 round-trip property).
func InitPool(ctx context.Context, dataDir, project string) error {
	return WithPoolLock(ctx, dataDir, func() error {
		doc, err := LoadPool(dataDir)
		if err != nil {
			return err
		}
		return SavePool(dataDir, doc)
	})
}

// AcquireSlot binds a workspace slot to taskRef ("<project>/<branch>"),
// reusing the first available entry for the project or creating a new
// slot if existing_count < poolSize. Returns the workspace name and
// whether it was newly created (the caller must then create the
// worktree). Fails with KindPoolExhausted if no slot is available.
func AcquireSlot(ctx context.Context, dataDir, project string, poolSize int, taskRef string) (name string, created bool, err error) {
	lockErr := WithPoolLock(ctx, dataDir, func() error {
		doc, loadErr := LoadPool(dataDir)
		if loadErr != nil {
			return loadErr
		}

		entries := projectEntries(doc, project)
		for _, n := range entries {
			if doc.Workspaces[n].Status == models.PoolEntryAvailable {
				doc.Workspaces[n] = models.PoolEntry{Status: models.PoolEntryBound, Task: taskRef}
				name = n
				return SavePool(dataDir, doc)
			}
		}

		if len(entries) >= poolSize {
			return errs.Newf(errs.KindPoolExhausted, "workspace pool exhausted for project %s (%d/%d)", project, len(entries), poolSize).
				WithContext(map[string]string{
					"project":  project,
					"existing": strconv.Itoa(len(entries)),
					"limit":    strconv.Itoa(poolSize),
				})
		}

		next := len(entries) + 1
		name = fmt.Sprintf("%s--%d", project, next)
		doc.Workspaces[name] = models.PoolEntry{Status: models.PoolEntryBound, Task: taskRef}
		created = true
		return SavePool(dataDir, doc)
	})
	if lockErr != nil {
		return "", false, lockErr
	}
	return name, created, nil
}

// ReleaseSlot marks a workspace slot available again, clearing its task
// reference. It is a no-op (not an error) if the slot is already
// available, matching spec Scenario F's concurrent-release tolerance.
func ReleaseSlot(ctx context.Context, dataDir, workspace string) error {
	return WithPoolLock(ctx, dataDir, func() error {
		doc, err := LoadPool(dataDir)
		if err != nil {
			return err
		}
		doc.Workspaces[workspace] = models.PoolEntry{Status: models.PoolEntryAvailable}
		return SavePool(dataDir, doc)
	})
}

// GetSlot returns a single pool entry by workspace name, if known.
func GetSlot(dataDir, workspace string) (models.PoolEntry, bool, error) {
	doc, err := LoadPool(dataDir)
	if err != nil {
		return models.PoolEntry{}, false, err
	}
	entry, ok := doc.Workspaces[workspace]
	return entry, ok, nil
}
