package commands

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
)

func TestNewMonitorCmd_HasRunSubcommand(t *testing.T) {
	cmd := NewMonitorCmd(slogger.New())
	require.Equal(t, "monitor", cmd.Use)

	sub, _, err := cmd.Find([]string{"run"})
	require.NoError(t, err)
	require.Equal(t, "run", sub.Name())
	require.NotNil(t, sub.Flags().Lookup("interval"))
}
