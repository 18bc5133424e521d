package cli

import (
	"encoding/json"
	"fmt"
	"io"
	"text/tabwriter"
	"time"

	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"

	"gopkg.in/yaml.v3"
)

type outputFormat string

const (
	formatTable outputFormat = "table"
	formatJSON  outputFormat = "json"
	formatYAML  outputFormat = "yaml"
)

func parseFormat(s string) (outputFormat, error) {
	switch f := outputFormat(s); f {
	case formatTable, formatJSON, formatYAML:
		return f, nil
	case "":
		return formatTable, nil
	}
	return "", fmt.Errorf("unknown output format %q (want table, json or yaml)", s)
}

type taskRow struct {
	ID          string          `json:"id" yaml:"id"`
	Title       string          `json:"title" yaml:"title"`
	Description string          `json:"description,omitempty" yaml:"description,omitempty"`
	Completed   bool            `json:"completed" yaml:"completed"`
	Priority    models.Priority `json:"priority" yaml:"priority"`
	CreatedAt   time.Time       `json:"created_at" yaml:"created_at"`
}

func toRows(tasks []models.Task) []taskRow {
	rows := make([]taskRow, len(tasks))
	for i, t := range tasks {
		rows[i] = taskRow{
			ID:          t.ID.String(),
			Title:       t.Title,
			Description: t.Description,
			Completed:   t.Completed,
			Priority:    t.Priority,
			CreatedAt:   t.CreatedAt,
		}
	}
	return rows
}

func writeTasks(w io.Writer, format outputFormat, tasks []models.Task, counts dashboard.Counts, tab dashboard.Tab) error {
	switch format {
	case formatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(toRows(tasks))
	case formatYAML:
		enc := yaml.NewEncoder(w)
		defer enc.Close()
		return enc.Encode(toRows(tasks))
	}

	if len(tasks) == 0 {
		fmt.Fprintf(w, "No tasks found. %s\n", dashboard.EmptyStateMessage(tab))
		return nil
	}

	tw := tabwriter.NewWriter(w, 2, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tDONE\tPRIORITY\tCREATED\tTITLE")
	for _, t := range tasks {
		done := " "
		if t.Completed {
			done = "x"
		}
		fmt.Fprintf(tw, "%s\t[%s]\t%s\t%s\t%s\n",
			shortID(t), done, components.BadgeFor(t.Priority), t.CreatedAt.Local().Format("2006-01-02"), t.Title)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	fmt.Fprintf(w, "\n%d total, %d completed, %d pending\n", counts.Total, counts.Completed, counts.Pending)
	return nil
}
