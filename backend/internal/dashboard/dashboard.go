// Package dashboard owns a user's in-memory task list and keeps it in step
// with the task store. Local state only changes after the store confirms an
// operation; failures are reported through the Notifier and leave the list
// untouched.
package dashboard

import (
	"context"
	"sync"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

type Phase int

const (
	PhaseLoading Phase = iota
	PhaseReady
)

func (p Phase) String() string {
	if p == PhaseReady {
		return "ready"
	}
	return "loading"
}

// TaskStore is the remote store. Every call is scoped to the signed-in user
// by the store itself.
type TaskStore interface {
	ListTasks(ctx context.Context) ([]models.Task, error)
	CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error)
	UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error)
	DeleteTask(ctx context.Context, id uuid.UUID) error
}

// Session is the authentication provider.
type Session interface {
	User() models.UserInfo
	SignOut(ctx context.Context) error
}

type Dashboard struct {
	session  Session
	store    TaskStore
	notifier Notifier

	mu        sync.RWMutex
	phase     Phase
	tasks     []models.Task
	loadedFor uuid.UUID
}

func New(session Session, store TaskStore, notifier Notifier) *Dashboard {
	if notifier == nil {
		notifier = NotifierFunc(func(Notification) {})
	}
	return &Dashboard{
		session:  session,
		store:    store,
		notifier: notifier,
		phase:    PhaseLoading,
		tasks:    []models.Task{},
	}
}

func (d *Dashboard) User() models.UserInfo {
	return d.session.User()
}

func (d *Dashboard) Phase() Phase {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.phase
}

// Load fetches the user's tasks, newest first, and replaces the list. The
// dashboard is Ready afterwards whatever the outcome.
func (d *Dashboard) Load(ctx context.Context) error {
	user := d.session.User()

	d.mu.Lock()
	d.phase = PhaseLoading
	d.mu.Unlock()

	tasks, err := d.store.ListTasks(ctx)

	d.mu.Lock()
	d.phase = PhaseReady
	d.loadedFor = user.ID
	if err == nil {
		if tasks == nil {
			tasks = []models.Task{}
		}
		d.tasks = tasks
	}
	d.mu.Unlock()

	if err != nil {
		d.notifier.Notify(failure("Failed to fetch tasks"))
		return err
	}
	return nil
}

// EnsureLoaded loads once per identity: on first use and whenever the
// session's user changes.
func (d *Dashboard) EnsureLoaded(ctx context.Context) error {
	d.mu.RLock()
	current := d.phase == PhaseReady && d.loadedFor == d.session.User().ID
	d.mu.RUnlock()

	if current {
		return nil
	}
	return d.Load(ctx)
}

// Create inserts a task and prepends the stored row.
func (d *Dashboard) Create(ctx context.Context, input models.TaskInput) (models.Task, error) {
	task, err := d.store.CreateTask(ctx, input)
	if err != nil {
		d.notifier.Notify(failure("Failed to add task"))
		return models.Task{}, err
	}

	d.mu.Lock()
	next := make([]models.Task, 0, len(d.tasks)+1)
	next = append(next, task)
	next = append(next, d.tasks...)
	d.tasks = next
	d.mu.Unlock()

	d.notifier.Notify(success("Task added successfully"))
	return task, nil
}

// Toggle sets the completed flag of one task. Only that entry's flag changes
// locally.
func (d *Dashboard) Toggle(ctx context.Context, id uuid.UUID, completed bool) error {
	if _, err := d.store.UpdateTask(ctx, id, models.CompletedPatch(completed)); err != nil {
		d.notifier.Notify(failure("Failed to update task"))
		return err
	}

	d.mu.Lock()
	next := make([]models.Task, len(d.tasks))
	for i, t := range d.tasks {
		if t.ID == id {
			t.Completed = completed
		}
		next[i] = t
	}
	d.tasks = next
	d.mu.Unlock()

	if completed {
		d.notifier.Notify(success("Task completed!"))
	} else {
		d.notifier.Notify(success("Task marked as pending"))
	}
	return nil
}

func (d *Dashboard) Delete(ctx context.Context, id uuid.UUID) error {
	if err := d.store.DeleteTask(ctx, id); err != nil {
		d.notifier.Notify(failure("Failed to delete task"))
		return err
	}

	d.mu.Lock()
	next := make([]models.Task, 0, len(d.tasks))
	for _, t := range d.tasks {
		if t.ID != id {
			next = append(next, t)
		}
	}
	d.tasks = next
	d.mu.Unlock()

	d.notifier.Notify(success("Task deleted successfully"))
	return nil
}

// SignOut ends the session. The task list is left for the caller to discard.
func (d *Dashboard) SignOut(ctx context.Context) error {
	if err := d.session.SignOut(ctx); err != nil {
		d.notifier.Notify(failure("Failed to sign out"))
		return err
	}
	d.notifier.Notify(Notification{
		Title:       "Signed out",
		Description: "You've been signed out successfully",
		Severity:    SeverityInfo,
	})
	return nil
}

// Tasks returns a copy of the current list.
func (d *Dashboard) Tasks() []models.Task {
	return append([]models.Task(nil), d.published()...)
}

// published returns the live slice. It is replaced, never written, after
// publication; callers must not modify its elements.
func (d *Dashboard) published() []models.Task {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return d.tasks
}

func (d *Dashboard) Filtered(tab Tab) []models.Task {
	return FilterTasks(d.published(), tab)
}

func (d *Dashboard) Counts() Counts {
	return CountTasks(d.published())
}

// Find returns the task with id from the local list.
func (d *Dashboard) Find(id uuid.UUID) (models.Task, bool) {
	for _, t := range d.published() {
		if t.ID == id {
			return t, true
		}
	}
	return models.Task{}, false
}
