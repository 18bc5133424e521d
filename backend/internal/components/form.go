// Package components holds the UI-independent state of the task form and
// task items shared by the web and terminal front-ends.
package components

import (
	"context"
	"strings"

	"taskify/backend/internal/models"
)

// SubmitFunc creates a task from the form's draft.
type SubmitFunc func(ctx context.Context, input models.TaskInput) error

// TaskForm is the new-task panel. The draft lives here until it is submitted
// or cancelled.
type TaskForm struct {
	title       string
	description string
	priority    models.Priority
	open        bool

	onSubmit SubmitFunc
}

func NewTaskForm(onSubmit SubmitFunc) *TaskForm {
	return &TaskForm{priority: models.PriorityMedium, onSubmit: onSubmit}
}

func (f *TaskForm) Title() string             { return f.title }
func (f *TaskForm) Description() string       { return f.description }
func (f *TaskForm) Priority() models.Priority { return f.priority }
func (f *TaskForm) IsOpen() bool              { return f.open }

func (f *TaskForm) SetTitle(s string)       { f.title = s }
func (f *TaskForm) SetDescription(s string) { f.description = s }

// SetPriority ignores unknown levels.
func (f *TaskForm) SetPriority(p models.Priority) {
	if p.Valid() {
		f.priority = p
	}
}

func (f *TaskForm) Open() {
	f.open = true
}

// Cancel closes the panel and discards the draft.
func (f *TaskForm) Cancel() {
	f.reset()
	f.open = false
}

// Toggle flips the panel between open and closed, keeping the draft.
func (f *TaskForm) Toggle() {
	f.open = !f.open
}

// CanSubmit reports whether the submit control is enabled.
func (f *TaskForm) CanSubmit(loading bool) bool {
	return !loading && strings.TrimSpace(f.title) != ""
}

// Submit hands the draft to the submit callback, then resets and closes the
// form whatever the callback returns. A blank title is ignored and reports
// false.
func (f *TaskForm) Submit(ctx context.Context) (bool, error) {
	if strings.TrimSpace(f.title) == "" {
		return false, nil
	}

	input := models.TaskInput{
		Title:       f.title,
		Description: f.description,
		Priority:    f.priority,
	}
	f.reset()
	f.open = false

	if f.onSubmit == nil {
		return true, nil
	}
	return true, f.onSubmit(ctx, input)
}

func (f *TaskForm) reset() {
	f.title = ""
	f.description = ""
	f.priority = models.PriorityMedium
}
