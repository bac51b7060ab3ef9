package store

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rigctl/rigctl/internal/errs"
	"github.com/rigctl/rigctl/internal/models"
)

// HistoryPath returns the path to a task's append-only event log.
func HistoryPath(dataDir, project, id string) string {
	return filepath.Join(taskDir(dataDir, project, id), "history.jsonl")
}

// AppendHistory appends one JSON-encoded event line to a task's history
// log, creating the file if needed. Opening with O_APPEND makes each
// write atomic at the OS level relative to other appenders on the same
// file, so a partially written line is never produced for a caller that
// reads complete lines only.
func AppendHistory(dataDir, project, id string, event models.HistoryEvent) error {
	path := HistoryPath(dataDir, project, id)
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "create task directory for history")
	}

	data, err := json.Marshal(event)
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "encode history event")
	}

	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o640) //nolint:gosec // G304: path built from trusted data dir
	if err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "open history log")
	}
	defer f.Close() //nolint:errcheck // append-only log; close error here is not actionable

	if _, err := f.Write(append(data, '\n')); err != nil {
		return errs.Wrap(errs.KindPersistenceFailed, err, "append history event")
	}
	return nil
}

// LoadHistory reads every event from a task's history log, in file order.
// A line that fails to parse is discarded rather than aborting the whole
// read, per spec §4.1's reader tolerance.
func LoadHistory(dataDir, project, id string) ([]models.HistoryEvent, error) {
	path := HistoryPath(dataDir, project, id)
	f, err := os.Open(path) //nolint:gosec // G304: path built from trusted data dir
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, "open history log")
	}
	defer f.Close()

	var events []models.HistoryEvent
	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	for scanner.Scan() {
		line := scanner.Bytes()
		if len(line) == 0 {
			continue
		}
		var ev models.HistoryEvent
		if err := json.Unmarshal(line, &ev); err != nil {
			continue
		}
		events = append(events, ev)
	}
	if err := scanner.Err(); err != nil {
		return nil, errs.Wrap(errs.KindPersistenceFailed, err, fmt.Sprintf("scan history log %s", path))
	}
	return events, nil
}
