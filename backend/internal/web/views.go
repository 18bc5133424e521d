package web

import (
	"html/template"
	"time"

	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"
)

var templateFuncs = template.FuncMap{
	"date": func(t time.Time) string { return t.Local().Format("Jan 2, 2006") },
	"tone": func(t components.Tone) string { return t.String() },
}

type tabView struct {
	Tab    dashboard.Tab
	Label  string
	Active bool
}

type itemView struct {
	ID          string
	Title       string
	Description string
	Completed   bool
	Badge       components.Badge
	Deleting    bool
	CreatedAt   time.Time
}

type formView struct {
	Open        bool
	Title       string
	Description string
	Priority    models.Priority
	Priorities  []models.Priority
	CanSubmit   bool
}

type dashboardView struct {
	User    models.UserInfo
	Loading bool
	Counts  dashboard.Counts
	Tab     dashboard.Tab
	Tabs    []tabView
	Items   []itemView
	Empty   string
	Form    formView
	Toasts  []dashboard.Notification
}

func buildDashboardView(sess *browserSession) dashboardView {
	tab := sess.currentTab()
	counts := sess.dash.Counts()
	filtered := sess.dash.Filtered(tab)

	view := dashboardView{
		User:    sess.dash.User(),
		Loading: sess.dash.Phase() == dashboard.PhaseLoading,
		Counts:  counts,
		Tab:     tab,
		Items:   make([]itemView, 0, len(filtered)),
		Toasts:  sess.queue.Drain(),
	}

	for _, t := range dashboard.Tabs {
		view.Tabs = append(view.Tabs, tabView{Tab: t, Label: t.Label(counts), Active: t == tab})
	}

	sess.items.Prune(sess.dash.Tasks())
	for _, item := range sess.items.Items(filtered) {
		task := item.Task()
		view.Items = append(view.Items, itemView{
			ID:          task.ID.String(),
			Title:       task.Title,
			Description: task.Description,
			Completed:   task.Completed,
			Badge:       item.Badge(),
			Deleting:    item.Deleting(),
			CreatedAt:   task.CreatedAt,
		})
	}
	if len(view.Items) == 0 {
		view.Empty = dashboard.EmptyStateMessage(tab)
	}

	sess.withForm(func(f *components.TaskForm) {
		view.Form = formView{
			Open:        f.IsOpen(),
			Title:       f.Title(),
			Description: f.Description(),
			Priority:    f.Priority(),
			Priorities:  models.Priorities,
			CanSubmit:   f.CanSubmit(false),
		}
	})
	return view
}
