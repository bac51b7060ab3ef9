package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/actions"
	"github.com/rigctl/rigctl/internal/drivers/slogger"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/output"
	"github.com/rigctl/rigctl/internal/store"
)

// NewTaskCmd creates the task command group: CRUD plus the read-only
// convenience surfaces added by SPEC_FULL §9 (capture, history).
func NewTaskCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "task",
		Short: "Create, transition, and inspect tasks",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newTaskCreateCmd(log))
	cmd.AddCommand(newTaskListCmd(log))
	cmd.AddCommand(newTaskGetCmd(log))
	cmd.AddCommand(newTaskCancelCmd(log))
	cmd.AddCommand(newTaskMergeCmd(log))
	cmd.AddCommand(newTaskDeleteCmd(log))
	cmd.AddCommand(newTaskHistoryCmd(log))
	cmd.AddCommand(newTaskCaptureCmd(log))

	namespaceIndex(cmd)
	return cmd
}

func newTaskCreateCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "create",
		Short: "Register a new task against a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			branch, _ := cmd.Flags().GetString("branch")
			summary, _ := cmd.Flags().GetString("summary")
			body, _ := cmd.Flags().GetString("body")
			harness, _ := cmd.Flags().GetString("harness")
			reviewHarness, _ := cmd.Flags().GetString("review-harness")
			autoSpawn, _ := cmd.Flags().GetBool("spawn")

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			task, err := env.Create(context.Background(), actionsCreateParams(project, branch, summary, body, harness, reviewHarness, autoSpawn))
			if err != nil {
				return cmdErr(err)
			}
			return cmdOK(task)
		},
	}

	cmd.Flags().String("project", "", "Registered project name (required)")
	cmd.Flags().String("branch", "", "Branch name for the task (required)")
	cmd.Flags().String("summary", "", "One-line task summary")
	cmd.Flags().String("body", "", "Initial TASK.md body")
	cmd.Flags().String("harness", "claude", "Coding agent harness")
	cmd.Flags().String("review-harness", "", "Review agent harness (defaults to --harness)")
	cmd.Flags().Bool("spawn", false, "Immediately transition pending -> planning and spawn the agent")
	return cmd
}

func newTaskListCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List tasks for a project",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, _ := cmd.Flags().GetString("project")
			if project == "" {
				return cmdErr(errors.New("--project is required"))
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			tasks, err := store.ListTasks(env.DataDir, project)
			if err != nil {
				return cmdErr(err)
			}

			counts := map[string]int{}
			for _, t := range tasks {
				counts[string(t.Status)]++
			}
			return output.PrintWith(output.DefaultConfig(), output.SuccessWithCounts(tasks, counts))
		},
	}
	cmd.Flags().String("project", "", "Registered project name (required)")
	return cmd
}

func newTaskGetCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get",
		Short: "Fetch a single task document",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, id, err := requireProjectAndID(cmd)
			if err != nil {
				return cmdErr(err)
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			task, err := store.LoadTask(env.DataDir, project, id)
			if err != nil {
				return cmdErr(err)
			}
			return cmdOK(task)
		},
	}
	taskLookupFlags(cmd)
	return cmd
}

func newTaskCancelCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cancel",
		Short: "Cancel a task from any active status",
		RunE: func(cmd *cobra.Command, args []string) error {
			task, env, err := loadTaskForMutation(cmd, log)
			if err != nil {
				return cmdErr(err)
			}
			if err := env.Cancel(context.Background(), task); err != nil {
				return cmdErr(err)
			}
			return cmdOK(task)
		},
	}
	taskLookupFlags(cmd)
	return cmd
}

func newTaskMergeCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge a reviewing task: PR-aware first, local merge fallback",
		RunE: func(cmd *cobra.Command, args []string) error {
			task, env, err := loadTaskForMutation(cmd, log)
			if err != nil {
				return cmdErr(err)
			}

			strategy, _ := cmd.Flags().GetString("strategy")
			forceLocal, _ := cmd.Flags().GetBool("force-local")

			if err := env.Merge(context.Background(), task, models.MergeStrategy(strategy), forceLocal); err != nil {
				return cmdErr(err)
			}
			return cmdOK(task)
		},
	}
	taskLookupFlags(cmd)
	cmd.Flags().String("strategy", "", "Local merge strategy: ff or merge (default merge)")
	cmd.Flags().Bool("force-local", false, "Skip the PR host even if a pr_url is recorded")
	return cmd
}

func newTaskDeleteCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "delete",
		Short: "Delete a terminal task and its history",
		RunE: func(cmd *cobra.Command, args []string) error {
			task, env, err := loadTaskForMutation(cmd, log)
			if err != nil {
				return cmdErr(err)
			}
			if err := env.Delete(context.Background(), task); err != nil {
				return cmdErr(err)
			}
			return cmdOK(task)
		},
	}
	taskLookupFlags(cmd)
	return cmd
}

// newTaskHistoryCmd streams a task's history.jsonl back out (SPEC_FULL §9).
func newTaskHistoryCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "history",
		Short: "Print a task's recorded history events",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, id, err := requireProjectAndID(cmd)
			if err != nil {
				return cmdErr(err)
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			events, err := store.LoadHistory(env.DataDir, project, id)
			if err != nil {
				return cmdErr(err)
			}
			return cmdOK(events)
		},
	}
	taskLookupFlags(cmd)
	return cmd
}

// newTaskCaptureCmd reads the tail of a task's live session pane
// (SPEC_FULL §9), a read-only convenience that never touches the state
// machine.
func newTaskCaptureCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "capture",
		Short: "Capture the last N lines of a task's live session",
		RunE: func(cmd *cobra.Command, args []string) error {
			project, id, err := requireProjectAndID(cmd)
			if err != nil {
				return cmdErr(err)
			}
			lines, _ := cmd.Flags().GetInt("lines")

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			task, err := store.LoadTask(env.DataDir, project, id)
			if err != nil {
				return cmdErr(err)
			}
			if !task.HasSession() {
				return cmdErr(errors.New("task has no live session to capture"))
			}

			text, err := env.Mux.CapturePane(context.Background(), task.Session, lines)
			if err != nil {
				return cmdErr(err)
			}

			type resp struct {
				Session string `json:"session"`
				Output  string `json:"output"`
			}
			return output.PrintSuccess(resp{Session: task.Session, Output: text})
		},
	}
	taskLookupFlags(cmd)
	cmd.Flags().Int("lines", 200, "Number of trailing lines to capture")
	return cmd
}

func taskLookupFlags(cmd *cobra.Command) {
	cmd.Flags().String("project", "", "Registered project name (required)")
	cmd.Flags().String("id", "", "Task id (required)")
}

func requireProjectAndID(cmd *cobra.Command) (project, id string, err error) {
	project, _ = cmd.Flags().GetString("project")
	id, _ = cmd.Flags().GetString("id")
	if project == "" {
		return "", "", errors.New("--project is required")
	}
	if id == "" {
		return "", "", errors.New("--id is required")
	}
	return project, id, nil
}

func loadTaskForMutation(cmd *cobra.Command, log slogger.Logger) (*models.Task, *actions.Env, error) {
	project, id, err := requireProjectAndID(cmd)
	if err != nil {
		return nil, nil, err
	}

	env, err := buildEnv(log)
	if err != nil {
		return nil, nil, err
	}

	task, err := store.LoadTask(env.DataDir, project, id)
	if err != nil {
		return nil, nil, err
	}
	return task, env, nil
}

// actionsCreateParams bundles create-command flags into actions.CreateParams.
func actionsCreateParams(project, branch, summary, body, harness, reviewHarness string, autoSpawn bool) actions.CreateParams {
	return actions.CreateParams{
		Project:       project,
		Branch:        branch,
		Summary:       summary,
		Body:          body,
		Harness:       harness,
		ReviewHarness: reviewHarness,
		AutoSpawn:     autoSpawn,
	}
}
