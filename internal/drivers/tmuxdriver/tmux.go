// Package tmuxdriver implements drivers.Multiplexer by shelling out to the
// tmux binary, following the session-lifecycle patterns (safe-kill,
// liveness checks via list-sessions) used throughout the gastown-family
// session managers in the reference corpus.
package tmuxdriver

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strconv"
	"strings"
)

// Tmux shells out to the tmux binary for every operation.
type Tmux struct {
	// Bin overrides the tmux executable name; defaults to "tmux".
	Bin string
}

// New returns a Tmux driver using the tmux binary on PATH.
func New() *Tmux { return &Tmux{Bin: "tmux"} }

func (t *Tmux) bin() string {
	if t.Bin == "" {
		return "tmux"
	}
	return t.Bin
}

func (t *Tmux) run(ctx context.Context, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, t.bin(), args...) //nolint:gosec // G204: args are constant-shaped, built from validated session/window names
	var out, errBuf bytes.Buffer
	cmd.Stdout = &out
	cmd.Stderr = &errBuf
	if err := cmd.Run(); err != nil {
		return out.String(), fmt.Errorf("tmux %s: %w: %s", strings.Join(args, " "), err, strings.TrimSpace(errBuf.String()))
	}
	return out.String(), nil
}

// IsAvailable reports whether the tmux server can be reached at all.
func (t *Tmux) IsAvailable(ctx context.Context) bool {
	_, err := t.run(ctx, "list-sessions")
	if err == nil {
		return true
	}
	// "no server running" is a normal empty state, not unavailability.
	return strings.Contains(err.Error(), "no server running")
}

// NewSession creates a session whose first window runs command directly,
// avoiding the send-keys race the gastown session manager calls out
// explicitly (creating with the command inline instead of attach+send-keys).
func (t *Tmux) NewSession(ctx context.Context, name, cwd, command string) error {
	args := []string{"new-session", "-d", "-s", name, "-c", cwd}
	if command != "" {
		args = append(args, command)
	}
	_, err := t.run(ctx, args...)
	return err
}

// NewWindow opens a new window within an existing session.
func (t *Tmux) NewWindow(ctx context.Context, session, name, cwd, command string) error {
	args := []string{"new-window", "-t", session, "-n", name, "-c", cwd}
	if command != "" {
		args = append(args, command)
	}
	_, err := t.run(ctx, args...)
	return err
}

// KillSessionSafe kills a session, swallowing any error (spec: "safe").
func (t *Tmux) KillSessionSafe(ctx context.Context, name string) {
	_, _ = t.run(ctx, "kill-session", "-t", name)
}

// KillWindowSafe kills a single window within a session, swallowing errors.
func (t *Tmux) KillWindowSafe(ctx context.Context, session, window string) {
	_, _ = t.run(ctx, "kill-window", "-t", session+":"+window)
}

// RenameWindow renames the current active window of a session.
func (t *Tmux) RenameWindow(ctx context.Context, session, name string) error {
	_, err := t.run(ctx, "rename-window", "-t", session, name)
	return err
}

// SessionExists reports whether a named session currently exists.
func (t *Tmux) SessionExists(ctx context.Context, name string) (bool, error) {
	_, err := t.run(ctx, "has-session", "-t", name)
	if err == nil {
		return true, nil
	}
	if strings.Contains(err.Error(), "can't find session") {
		return false, nil
	}
	return false, err
}

// ListSessions returns every live session name.
func (t *Tmux) ListSessions(ctx context.Context) ([]string, error) {
	out, err := t.run(ctx, "list-sessions", "-F", "#{session_name}")
	if err != nil {
		if strings.Contains(err.Error(), "no server running") {
			return nil, nil
		}
		return nil, err
	}
	var names []string
	for _, line := range strings.Split(out, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			names = append(names, line)
		}
	}
	return names, nil
}

// SendLiteral sends text as literal keystrokes to a session, followed by
// Enter — used by the notify_worker hook.
func (t *Tmux) SendLiteral(ctx context.Context, session, text string) error {
	if _, err := t.run(ctx, "send-keys", "-t", session, "-l", text); err != nil {
		return err
	}
	_, err := t.run(ctx, "send-keys", "-t", session, "Enter")
	return err
}

// CapturePane returns the last n lines of a session's active pane.
func (t *Tmux) CapturePane(ctx context.Context, session string, lines int) (string, error) {
	if lines <= 0 {
		lines = 200
	}
	return t.run(ctx, "capture-pane", "-t", session, "-p", "-S", "-"+strconv.Itoa(lines))
}
