package models

import (
	"encoding/json"
	"fmt"
)

// EventPayload is implemented by each typed history event payload. Kept as
// a sum type (per spec §9 Design Note: "a tagged union... implementations
// should represent it as a sum type with per-variant fields rather than a
// loose map") instead of map[string]any.
type EventPayload interface {
	Kind() EventKind
}

// HistoryEvent is one line of a task's history.jsonl. Timestamp is an
// ISO-8601 UTC string produced by the Clock driver.
type HistoryEvent struct {
	Type      EventKind
	Timestamp string
	Payload   EventPayload
}

// TaskCreatedPayload — emitted once per task, always first in history.jsonl.
type TaskCreatedPayload struct {
	TaskID  string `json:"task_id"`
	Project string `json:"project"`
	Branch  string `json:"branch"`
	Summary string `json:"summary"`
}

func (TaskCreatedPayload) Kind() EventKind { return EventTaskCreated }

// FieldChange records a before/after pair for a single updated field.
type FieldChange struct {
	From string `json:"from"`
	To   string `json:"to"`
}

// TaskUpdatedPayload — emitted when mutable fields (branch, summary) change
// outside of a status transition.
type TaskUpdatedPayload struct {
	BranchChange  *FieldChange `json:"branch,omitempty"`
	SummaryChanged bool        `json:"summary,omitempty"`
}

func (TaskUpdatedPayload) Kind() EventKind { return EventTaskUpdated }

// AgentSpawnedPayload — emitted by the spawn_agent hook.
type AgentSpawnedPayload struct {
	Workspace string `json:"workspace"`
	Session   string `json:"session"`
}

func (AgentSpawnedPayload) Kind() EventKind { return EventAgentSpawned }

// AgentCrashedPayload — emitted by the exit monitor when a dead session is
// detected and no auto-advance rule applies.
type AgentCrashedPayload struct {
	Status     string `json:"status"`
	CrashCount int    `json:"crash_count"`
	Reason     string `json:"reason"`
}

func (AgentCrashedPayload) Kind() EventKind { return EventAgentCrashed }

// AutoAdvancedPayload — emitted when the exit monitor drives a transition
// itself, or forces a task directly to stuck after repeated crashes.
type AutoAdvancedPayload struct {
	From   string `json:"from"`
	To     string `json:"to"`
	Reason string `json:"reason"`
}

func (AutoAdvancedPayload) Kind() EventKind { return EventAutoAdvanced }

// StatusChangedPayload — emitted by every successful transition.
type StatusChangedPayload struct {
	From string `json:"from"`
	To   string `json:"to"`
}

func (StatusChangedPayload) Kind() EventKind { return EventStatusChanged }

// TaskMergedPayload — emitted once a merge (local or PR) lands.
type TaskMergedPayload struct {
	CommitHash string `json:"commit_hash"`
	Strategy   string `json:"strategy"`
}

func (TaskMergedPayload) Kind() EventKind { return EventTaskMerged }

// TaskCancelledPayload — emitted on cancel.
type TaskCancelledPayload struct {
	Reason string `json:"reason,omitempty"`
}

func (TaskCancelledPayload) Kind() EventKind { return EventTaskCancelled }

// PRCreatedPayload — emitted when a pull request is opened for a task.
type PRCreatedPayload struct {
	URL string `json:"url"`
}

func (PRCreatedPayload) Kind() EventKind { return EventPRCreated }

// PRMergedPayload — emitted when the PR host reports the PR merged.
type PRMergedPayload struct {
	URL         string `json:"url"`
	MergeCommit string `json:"merge_commit"`
}

func (PRMergedPayload) Kind() EventKind { return EventPRMerged }

// NewHistoryEvent constructs an event with the given timestamp and payload;
// Type is derived from the payload so callers can't desync the two.
func NewHistoryEvent(timestamp string, payload EventPayload) HistoryEvent {
	return HistoryEvent{Type: payload.Kind(), Timestamp: timestamp, Payload: payload}
}

// MarshalJSON flattens {type, timestamp} plus the payload's own fields into
// a single JSON object, matching the on-disk history.jsonl line shape.
func (e HistoryEvent) MarshalJSON() ([]byte, error) {
	payloadJSON, err := json.Marshal(e.Payload)
	if err != nil {
		return nil, fmt.Errorf("marshal event payload: %w", err)
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal(payloadJSON, &fields); err != nil {
		return nil, fmt.Errorf("flatten event payload: %w", err)
	}

	typeJSON, _ := json.Marshal(e.Type)
	tsJSON, _ := json.Marshal(e.Timestamp)
	fields["type"] = typeJSON
	fields["timestamp"] = tsJSON

	return json.Marshal(fields)
}

// UnmarshalJSON dispatches on the "type" field to decode into the correct
// typed payload.
func (e *HistoryEvent) UnmarshalJSON(data []byte) error {
	var head struct {
		Type      EventKind `json:"type"`
		Timestamp string    `json:"timestamp"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return fmt.Errorf("decode event header: %w", err)
	}

	payload, err := decodePayload(head.Type, data)
	if err != nil {
		return err
	}

	e.Type = head.Type
	e.Timestamp = head.Timestamp
	e.Payload = payload
	return nil
}

func decodePayload(kind EventKind, data []byte) (EventPayload, error) {
	switch kind {
	case EventTaskCreated:
		var p TaskCreatedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventTaskUpdated:
		var p TaskUpdatedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventAgentSpawned:
		var p AgentSpawnedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventAgentCrashed:
		var p AgentCrashedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventAutoAdvanced:
		var p AutoAdvancedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventStatusChanged:
		var p StatusChangedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventTaskMerged:
		var p TaskMergedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventTaskCancelled:
		var p TaskCancelledPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventPRCreated:
		var p PRCreatedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	case EventPRMerged:
		var p PRMergedPayload
		if err := unmarshalInto(data, &p); err != nil {
			return nil, err
		}
		return p, nil
	default:
		return nil, fmt.Errorf("unknown event kind: %s", kind)
	}
}

// unmarshalInto decodes data into dst, a pointer to a payload struct.
func unmarshalInto[T any](data []byte, dst *T) error {
	if err := json.Unmarshal(data, dst); err != nil {
		return fmt.Errorf("decode event payload: %w", err)
	}
	return nil
}
