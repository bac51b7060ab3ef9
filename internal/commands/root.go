package commands

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/actions"
	"github.com/rigctl/rigctl/internal/app"
	"github.com/rigctl/rigctl/internal/drivers/ghdriver"
	"github.com/rigctl/rigctl/internal/drivers/gitdriver"
	"github.com/rigctl/rigctl/internal/drivers/slogger"
	"github.com/rigctl/rigctl/internal/drivers/sysclock"
	"github.com/rigctl/rigctl/internal/drivers/tmuxdriver"
	"github.com/rigctl/rigctl/internal/output"
)

// Execute runs the CLI application.
func Execute(version string) error {
	slogger.Install()
	log := slogger.New()

	root := &cobra.Command{
		Use:           "rigctl",
		Short:         "Local control plane for autonomous coding agent lifecycles",
		SilenceUsage:  true,
		SilenceErrors: true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			showVersion, _ := cmd.Flags().GetBool("version")
			if showVersion {
				type resp struct {
					Version string `json:"version"`
				}
				return output.PrintSuccess(resp{Version: version})
			}
			return cmd.Help()
		},
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			if err := app.EnsureConfigDir(); err != nil {
				return err
			}

			if dataDir, err := cmd.Flags().GetString("data-dir"); err == nil && dataDir != "" {
				app.SetDataDirOverride(dataDir)
			}

			if _, err := app.EnsureDataDir(); err != nil {
				return err
			}

			return nil
		},
	}

	root.PersistentFlags().String("data-dir", "", "Override the data directory (default: $RIGCTL_DATA_DIR or ~/.config/rigctl/data)")
	root.Flags().BoolP("version", "v", false, "version for rigctl")

	root.AddCommand(NewTaskCmd(log))
	root.AddCommand(NewProjectCmd(log))
	root.AddCommand(NewWorkspaceCmd(log))
	root.AddCommand(NewMonitorCmd(log))
	root.AddCommand(NewDoctorCmd())

	err := root.Execute()
	if err != nil {
		var pe printedError
		if !errors.As(err, &pe) {
			log.Error("command failed", "error", err.Error())
		}
	}
	return err
}

// buildEnv resolves the data directory and wires a fresh actions.Env backed
// by the real drivers (tmux, git, gh, system clock) and the given logger.
func buildEnv(log slogger.Logger) (*actions.Env, error) {
	dataDir, err := app.GetDataDir()
	if err != nil {
		return nil, err
	}
	return &actions.Env{
		DataDir: dataDir,
		VCS:     gitdriver.New(),
		Mux:     tmuxdriver.New(),
		PRHost:  ghdriver.New(),
		Clock:   sysclock.New(),
		Logger:  log,
	}, nil
}
