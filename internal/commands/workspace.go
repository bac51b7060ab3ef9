package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
	"github.com/rigctl/rigctl/internal/store"
)

// NewWorkspaceCmd creates the workspace command group: read-only inspection
// of the pool document (spec §4.3).
func NewWorkspaceCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "workspace",
		Short: "Inspect the pooled workspace slots backing each project",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newWorkspaceListCmd(log))
	cmd.AddCommand(newWorkspaceGetCmd(log))

	namespaceIndex(cmd)
	return cmd
}

func newWorkspaceListCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List every pool slot and its binding state",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}
			doc, err := store.LoadPool(env.DataDir)
			if err != nil {
				return cmdErr(err)
			}
			return cmdOK(doc.Workspaces)
		},
	}
	return cmd
}

func newWorkspaceGetCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a single pool slot's binding state",
		RunE: func(cmd *cobra.Command, args []string) error {
			slot, _ := cmd.Flags().GetString("slot")
			if slot == "" {
				return cmdErr(errors.New("--slot is required"))
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			entry, ok, err := store.GetSlot(env.DataDir, slot)
			if err != nil {
				return cmdErr(err)
			}
			if !ok {
				return cmdErr(errors.New("no such workspace slot: " + slot))
			}
			return cmdOK(entry)
		},
	}
	cmd.Flags().String("slot", "", "Workspace slot name, e.g. demo--1 (required)")
	return cmd
}
