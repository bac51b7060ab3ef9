package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
)

func TestNewTaskCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewTaskCmd(slogger.New())
	require.Equal(t, "task", cmd.Use)

	for _, name := range []string{"create", "list", "get", "cancel", "merge", "delete", "history", "capture"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, sub.Name())
	}
}

func TestTaskListCmd_RequiresProject(t *testing.T) {
	cmd := newTaskListCmd(slogger.New())
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestTaskGetCmd_RequiresProjectAndID(t *testing.T) {
	cmd := newTaskGetCmd(slogger.New())
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)

	require.NoError(t, cmd.Flags().Set("project", "demo"))
	err = cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestTaskCaptureCmd_RequiresProjectAndID(t *testing.T) {
	cmd := newTaskCaptureCmd(slogger.New())
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestTaskCreateCmd_HasRequiredFlags(t *testing.T) {
	cmd := newTaskCreateCmd(slogger.New())
	require.NotNil(t, cmd.Flags().Lookup("project"))
	require.NotNil(t, cmd.Flags().Lookup("branch"))
	require.NotNil(t, cmd.Flags().Lookup("spawn"))
}
