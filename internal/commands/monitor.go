package commands

import (
	"context"
	"time"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
	"github.com/rigctl/rigctl/internal/monitor"
)

// NewMonitorCmd creates the monitor command group: run one reconciliation
// pass, or loop at a fixed interval (spec §4.5).
func NewMonitorCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "monitor",
		Short: "Run the exit-monitor reconciliation pass",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newMonitorRunCmd(log))

	namespaceIndex(cmd)
	return cmd
}

func newMonitorRunCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Reconcile dead sessions, auto-advance tasks, and clean up orphans",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}
			mon := monitor.New(env)

			interval, _ := cmd.Flags().GetDuration("interval")
			if interval <= 0 {
				if err := mon.Reconcile(context.Background()); err != nil {
					return cmdErr(err)
				}
				return cmdOK(map[string]string{"status": "reconciled"})
			}

			maxIterations, _ := cmd.Flags().GetInt("max-iterations")
			ticker := time.NewTicker(interval)
			defer ticker.Stop()
			for i := 0; maxIterations <= 0 || i < maxIterations; i++ {
				if err := mon.Reconcile(context.Background()); err != nil {
					log.Warn("reconcile pass failed", "error", err.Error())
				}
				<-ticker.C
			}
			return cmdOK(map[string]string{"status": "reconciled"})
		},
	}
	cmd.Flags().Duration("interval", 0, "Loop, reconciling every interval (default: run once)")
	cmd.Flags().Int("max-iterations", 0, "Stop after N reconcile passes (default: run until killed)")
	return cmd
}
