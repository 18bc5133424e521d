package dashboard

import (
	"fmt"
	"strings"

	"taskify/backend/internal/models"
)

type Tab string

const (
	TabAll       Tab = "all"
	TabPending   Tab = "pending"
	TabCompleted Tab = "completed"
)

var Tabs = []Tab{TabAll, TabPending, TabCompleted}

// ParseTab accepts a tab name in any case; "" is the all tab.
func ParseTab(s string) (Tab, error) {
	switch t := Tab(strings.ToLower(strings.TrimSpace(s))); t {
	case "":
		return TabAll, nil
	case TabAll, TabPending, TabCompleted:
		return t, nil
	}
	return "", fmt.Errorf("unknown tab %q (want all, pending or completed)", s)
}

func (t Tab) Title() string {
	switch t {
	case TabPending:
		return "Pending"
	case TabCompleted:
		return "Completed"
	default:
		return "All"
	}
}

// Label renders the tab heading with its count, e.g. "Pending (2)".
func (t Tab) Label(c Counts) string {
	return fmt.Sprintf("%s (%d)", t.Title(), c.For(t))
}

// Next cycles all -> pending -> completed -> all.
func (t Tab) Next() Tab {
	switch t {
	case TabAll:
		return TabPending
	case TabPending:
		return TabCompleted
	default:
		return TabAll
	}
}

type Counts struct {
	Total     int `json:"total"`
	Completed int `json:"completed"`
	Pending   int `json:"pending"`
}

func (c Counts) For(t Tab) int {
	switch t {
	case TabPending:
		return c.Pending
	case TabCompleted:
		return c.Completed
	default:
		return c.Total
	}
}

func CountTasks(tasks []models.Task) Counts {
	c := Counts{Total: len(tasks)}
	for _, t := range tasks {
		if t.Completed {
			c.Completed++
		}
	}
	c.Pending = c.Total - c.Completed
	return c
}

// FilterTasks returns the tasks visible under tab in their original order.
// The result never aliases tasks.
func FilterTasks(tasks []models.Task, tab Tab) []models.Task {
	out := make([]models.Task, 0, len(tasks))
	for _, t := range tasks {
		switch tab {
		case TabPending:
			if t.Completed {
				continue
			}
		case TabCompleted:
			if !t.Completed {
				continue
			}
		}
		out = append(out, t)
	}
	return out
}

// EmptyStateMessage is shown when a tab has no tasks.
func EmptyStateMessage(tab Tab) string {
	if tab == TabAll || tab == "" {
		return "Start by adding your first task!"
	}
	return fmt.Sprintf("No %s tasks at the moment.", tab)
}
