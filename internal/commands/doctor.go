package commands

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/app"
	"github.com/rigctl/rigctl/internal/doctor"
	"github.com/rigctl/rigctl/internal/output"
)

// NewDoctorCmd wires the supplemented health-check pass (SPEC_FULL §9) to
// a CLI subcommand: orphaned bound workspaces, tasks referencing unknown
// projects, and pool numbering gaps.
func NewDoctorCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Run read-only health checks over the data directory",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			dataDir, err := app.GetDataDir()
			if err != nil {
				return cmdErr(err)
			}

			findings := doctor.Default().Run(context.Background(), dataDir)
			counts := map[string]int{}
			for _, f := range findings {
				counts[string(f.Severity)]++
			}
			return output.PrintWith(output.DefaultConfig(), output.SuccessWithCounts(findings, counts))
		},
	}
	return cmd
}
