package commands

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/rigctl/rigctl/internal/drivers/slogger"
	"github.com/rigctl/rigctl/internal/models"
	"github.com/rigctl/rigctl/internal/store"
)

// NewProjectCmd creates the project command group: register, list, remove.
func NewProjectCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "project",
		Short: "Register and inspect projects the engine can spawn tasks against",
		Args:  cobra.NoArgs,
	}

	cmd.AddCommand(newProjectRegisterCmd(log))
	cmd.AddCommand(newProjectListCmd(log))
	cmd.AddCommand(newProjectRemoveCmd(log))

	namespaceIndex(cmd)
	return cmd
}

func newProjectRegisterCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "register",
		Short: "Register a project (or update it if the name already exists)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			path, _ := cmd.Flags().GetString("path")
			defaultBranch, _ := cmd.Flags().GetString("default-branch")
			poolSize, _ := cmd.Flags().GetInt("pool-size")

			if name == "" || path == "" {
				return cmdErr(errors.New("--name and --path are required"))
			}
			if defaultBranch == "" {
				defaultBranch = "main"
			}
			if poolSize <= 0 {
				poolSize = 1
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			projects, err := store.LoadProjects(env.DataDir)
			if err != nil {
				return cmdErr(err)
			}

			updated := models.Project{Name: name, Path: path, DefaultBranch: defaultBranch, PoolSize: poolSize}
			replaced := false
			for i, p := range projects {
				if p.Name == name {
					projects[i] = updated
					replaced = true
					break
				}
			}
			if !replaced {
				projects = append(projects, updated)
			}

			if err := store.SaveProjects(env.DataDir, projects); err != nil {
				return cmdErr(err)
			}
			if err := store.InitPool(context.Background(), env.DataDir, name); err != nil {
				return cmdErr(err)
			}
			return cmdOK(updated)
		},
	}

	cmd.Flags().String("name", "", "Project name (required)")
	cmd.Flags().String("path", "", "Absolute path to the project's bare/primary checkout (required)")
	cmd.Flags().String("default-branch", "main", "Branch tasks merge into")
	cmd.Flags().Int("pool-size", 2, "Number of pooled workspace slots")
	return cmd
}

func newProjectListCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "list",
		Short: "List registered projects",
		RunE: func(cmd *cobra.Command, args []string) error {
			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}
			projects, err := store.LoadProjects(env.DataDir)
			if err != nil {
				return cmdErr(err)
			}
			return cmdOK(projects)
		},
	}
	return cmd
}

func newProjectRemoveCmd(log slogger.Logger) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "remove",
		Short: "Remove a registered project (tasks and pool state are left untouched)",
		RunE: func(cmd *cobra.Command, args []string) error {
			name, _ := cmd.Flags().GetString("name")
			if name == "" {
				return cmdErr(errors.New("--name is required"))
			}

			env, err := buildEnv(log)
			if err != nil {
				return cmdErr(err)
			}

			projects, err := store.LoadProjects(env.DataDir)
			if err != nil {
				return cmdErr(err)
			}

			kept := make([]models.Project, 0, len(projects))
			found := false
			for _, p := range projects {
				if p.Name == name {
					found = true
					continue
				}
				kept = append(kept, p)
			}
			if !found {
				return cmdErr(errors.New("no such project: " + name))
			}

			if err := store.SaveProjects(env.DataDir, kept); err != nil {
				return cmdErr(err)
			}
			return cmdOK(map[string]string{"removed": name})
		},
	}
	cmd.Flags().String("name", "", "Project name (required)")
	return cmd
}
