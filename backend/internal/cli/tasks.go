package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"taskify/backend/internal/client"
	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"
	"taskify/backend/internal/utils"

	"github.com/spf13/cobra"
)

var errBlankTitle = errors.New("task title must not be blank")

// printNotifier echoes dashboard notifications as one-line messages.
func printNotifier(w io.Writer) dashboard.Notifier {
	return dashboard.NotifierFunc(func(n dashboard.Notification) {
		prefix := "✅"
		if n.Severity == dashboard.SeverityDestructive {
			prefix = "❌"
		}
		fmt.Fprintf(w, "%s %s\n", prefix, n.Description)
	})
}

// withDashboard resumes the session, runs fn against a dashboard and stores
// the possibly rotated tokens afterwards.
func (g *globals) withDashboard(cmd *cobra.Command, fn func(ctx context.Context, d *dashboard.Dashboard) error) error {
	session, path, err := g.resume(cmd.Context())
	if err != nil {
		return err
	}

	d := dashboard.New(session, session, printNotifier(cmd.OutOrStdout()))
	runErr := fn(cmd.Context(), d)

	if errors.Is(runErr, client.ErrSignedOut) {
		return runErr
	}
	if err := persist(path, session); err != nil && runErr == nil {
		runErr = fmt.Errorf("failed to store credentials: %w", err)
	}
	return runErr
}

func newTasksCmd(g *globals) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "tasks",
		Aliases: []string{"task", "t"},
		Short:   "List and manage tasks",
	}

	cmd.AddCommand(newTasksListCmd(g))
	cmd.AddCommand(newTasksAddCmd(g))
	cmd.AddCommand(newTasksToggleCmd(g))
	cmd.AddCommand(newTasksRemoveCmd(g))
	return cmd
}

func newTasksListCmd(g *globals) *cobra.Command {
	var status, output string

	cmd := &cobra.Command{
		Use:     "list",
		Aliases: []string{"ls"},
		Short:   "List tasks, newest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			tab, err := dashboard.ParseTab(status)
			if err != nil {
				return err
			}
			format, err := parseFormat(output)
			if err != nil {
				return err
			}

			return g.withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
				if err := d.Load(ctx); err != nil {
					return err
				}
				return writeTasks(cmd.OutOrStdout(), format, d.Filtered(tab), d.Counts(), tab)
			})
		},
	}
	cmd.Flags().StringVarP(&status, "status", "s", "all", "all, pending or completed")
	cmd.Flags().StringVarP(&output, "output", "o", "table", "table, json or yaml")
	return cmd
}

func newTasksAddCmd(g *globals) *cobra.Command {
	var description, priority string

	cmd := &cobra.Command{
		Use:   "add <title>",
		Short: "Add a task",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			p, err := models.ParsePriority(priority)
			if err != nil {
				return err
			}

			return g.withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
				form := components.NewTaskForm(func(ctx context.Context, in models.TaskInput) error {
					task, err := d.Create(ctx, in)
					if err == nil {
						fmt.Fprintf(cmd.OutOrStdout(), "%s  %s\n", shortID(task), task.Title)
					}
					return err
				})
				form.Open()
				form.SetTitle(strings.Join(args, " "))
				form.SetDescription(description)
				form.SetPriority(p)

				submitted, err := form.Submit(ctx)
				if !submitted {
					return errBlankTitle
				}
				return err
			})
		},
	}
	cmd.Flags().StringVarP(&description, "description", "d", "", "task description")
	cmd.Flags().StringVarP(&priority, "priority", "p", "medium", "low, medium or high")
	return cmd
}

func newTasksToggleCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:   "toggle <id>",
		Short: "Flip a task between pending and completed",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
				item, err := resolveItem(ctx, d, args[0])
				if err != nil {
					return err
				}
				return item.Toggle(ctx, !item.Task().Completed)
			})
		},
	}
}

func newTasksRemoveCmd(g *globals) *cobra.Command {
	return &cobra.Command{
		Use:     "rm <id>",
		Aliases: []string{"delete"},
		Short:   "Delete a task",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return g.withDashboard(cmd, func(ctx context.Context, d *dashboard.Dashboard) error {
				item, err := resolveItem(ctx, d, args[0])
				if err != nil {
					return err
				}
				return item.Delete(ctx)
			})
		},
	}
}

func resolveItem(ctx context.Context, d *dashboard.Dashboard, prefix string) (*components.TaskItem, error) {
	if err := d.Load(ctx); err != nil {
		return nil, err
	}
	task, err := resolveTask(d.Tasks(), prefix)
	if err != nil {
		return nil, err
	}
	return components.NewTaskItem(task, d.Toggle, d.Delete), nil
}

// resolveTask finds the single task whose id starts with prefix.
func resolveTask(tasks []models.Task, prefix string) (models.Task, error) {
	prefix = strings.ToLower(strings.TrimSpace(prefix))
	if prefix == "" {
		return models.Task{}, errors.New("task id must not be empty")
	}

	// A full id must match exactly.
	if utils.IsValidUUID(prefix) {
		for _, t := range tasks {
			if t.ID.String() == prefix {
				return t, nil
			}
		}
		return models.Task{}, fmt.Errorf("no task with id %s", prefix)
	}

	var matches []models.Task
	for _, t := range tasks {
		if strings.HasPrefix(t.ID.String(), prefix) {
			matches = append(matches, t)
		}
	}

	switch len(matches) {
	case 0:
		return models.Task{}, fmt.Errorf("no task matches %q", prefix)
	case 1:
		return matches[0], nil
	default:
		return models.Task{}, fmt.Errorf("%q matches %d tasks, use a longer prefix", prefix, len(matches))
	}
}

func shortID(t models.Task) string {
	return t.ID.String()[:8]
}
