package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
)

func TestNewProjectCmd_HasExpectedSubcommands(t *testing.T) {
	cmd := NewProjectCmd(slogger.New())
	require.Equal(t, "project", cmd.Use)

	for _, name := range []string{"register", "list", "remove"} {
		sub, _, err := cmd.Find([]string{name})
		require.NoError(t, err)
		require.Equal(t, name, sub.Name())
	}
}

func TestProjectRegisterCmd_RequiresNameAndPath(t *testing.T) {
	cmd := newProjectRegisterCmd(slogger.New())
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}

func TestProjectRemoveCmd_RequiresName(t *testing.T) {
	cmd := newProjectRemoveCmd(slogger.New())
	err := cmd.RunE(cmd, nil)
	require.Error(t, err)
	require.IsType(t, printedError{}, err)
}
