package cli

import (
	"github.com/spf13/cobra"

	"github.com/Marki500/taskery-v2/internal/domain"
	"github.com/Marki500/taskery-v2/internal/timer"
)

var taskProjectID string

var taskCmd = &cobra.Command{
	Use:   "task",
	Short: "Manage tasks",
}

var taskAddCmd = &cobra.Command{
	Use:   "add <title>",
	Short: "Create a task in a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		if _, err := a.Tasks.GetProject(ctx, taskProjectID); err != nil {
			return err
		}
		task, err := a.Tasks.CreateTask(ctx, domain.Task{ProjectID: taskProjectID, Title: args[0]})
		if err != nil {
			return err
		}
		cmd.Printf("Created task %s (%q).\n", task.ID, task.Title)
		return nil
	},
}

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks with their tracked totals",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		tasks, err := a.Tasks.ListTasks(ctx)
		if err != nil {
			return err
		}
		if len(tasks) == 0 {
			cmd.Println("No tasks.")
			return nil
		}
		for _, t := range tasks {
			total, err := a.Store.SumDurationsForTask(ctx, t.ID)
			if err != nil {
				return err
			}
			cmd.Printf("%s  %-12s %-10s %s\n", t.ID, t.Status, timer.FormatClock(total), t.Title)
		}
		return nil
	},
}

var projectCmd = &cobra.Command{
	Use:   "project",
	Short: "Manage projects",
}

var projectAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Create a project",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		p, err := a.Tasks.CreateProject(ctx, domain.Project{Name: args[0]})
		if err != nil {
			return err
		}
		cmd.Printf("Created project %s (%q).\n", p.ID, p.Name)
		return nil
	},
}

var projectListCmd = &cobra.Command{
	Use:   "list",
	Short: "List projects",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		a, err := openApp(ctx)
		if err != nil {
			return err
		}
		defer a.Close()

		projects, err := a.Tasks.ListProjects(ctx)
		if err != nil {
			return err
		}
		if len(projects) == 0 {
			cmd.Println("No projects.")
			return nil
		}
		for _, p := range projects {
			cmd.Printf("%s  %s\n", p.ID, p.Name)
		}
		return nil
	},
}

func init() {
	taskAddCmd.Flags().StringVarP(&taskProjectID, "project", "p", "", "Project id the task belongs to")
	_ = taskAddCmd.MarkFlagRequired("project")
	taskCmd.AddCommand(taskAddCmd)
	taskCmd.AddCommand(taskListCmd)
	projectCmd.AddCommand(projectAddCmd)
	projectCmd.AddCommand(projectListCmd)
	rootCmd.AddCommand(taskCmd)
	rootCmd.AddCommand(projectCmd)
}
