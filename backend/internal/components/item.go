package components

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

var ErrBusy = errors.New("delete already in progress")

type (
	ToggleFunc func(ctx context.Context, id uuid.UUID, completed bool) error
	DeleteFunc func(ctx context.Context, id uuid.UUID) error
)

// TaskItem renders one task and forwards its toggle and delete intents. It
// never changes the task it was built with.
type TaskItem struct {
	task     models.Task
	deleting *atomic.Bool

	onToggle ToggleFunc
	onDelete DeleteFunc
}

func NewTaskItem(task models.Task, onToggle ToggleFunc, onDelete DeleteFunc) *TaskItem {
	return &TaskItem{task: task, deleting: new(atomic.Bool), onToggle: onToggle, onDelete: onDelete}
}

func (i *TaskItem) Task() models.Task {
	return i.task
}

func (i *TaskItem) Badge() Badge {
	return BadgeFor(i.task.Priority)
}

// Deleting reports whether a delete is in flight.
func (i *TaskItem) Deleting() bool {
	return i.deleting.Load()
}

func (i *TaskItem) Toggle(ctx context.Context, completed bool) error {
	if i.onToggle == nil {
		return nil
	}
	return i.onToggle(ctx, i.task.ID, completed)
}

// Delete holds the busy flag for the duration of the delete callback and
// releases it on every exit, panics included.
func (i *TaskItem) Delete(ctx context.Context) error {
	if !i.deleting.CompareAndSwap(false, true) {
		return ErrBusy
	}
	defer i.deleting.Store(false)

	if i.onDelete == nil {
		return nil
	}
	return i.onDelete(ctx, i.task.ID)
}

// ItemSet builds items whose busy flags outlive a single render, so a
// front-end that rebuilds its items per request still sees in-flight deletes.
type ItemSet struct {
	onToggle ToggleFunc
	onDelete DeleteFunc

	mu    sync.Mutex
	flags map[uuid.UUID]*atomic.Bool
}

func NewItemSet(onToggle ToggleFunc, onDelete DeleteFunc) *ItemSet {
	return &ItemSet{onToggle: onToggle, onDelete: onDelete, flags: map[uuid.UUID]*atomic.Bool{}}
}

func (s *ItemSet) Item(task models.Task) *TaskItem {
	s.mu.Lock()
	flag, ok := s.flags[task.ID]
	if !ok {
		flag = new(atomic.Bool)
		s.flags[task.ID] = flag
	}
	s.mu.Unlock()

	return &TaskItem{task: task, deleting: flag, onToggle: s.onToggle, onDelete: s.onDelete}
}

func (s *ItemSet) Items(tasks []models.Task) []*TaskItem {
	items := make([]*TaskItem, len(tasks))
	for i, t := range tasks {
		items[i] = s.Item(t)
	}
	return items
}

// Prune forgets idle flags of tasks no longer in the list.
func (s *ItemSet) Prune(tasks []models.Task) {
	keep := make(map[uuid.UUID]struct{}, len(tasks))
	for _, t := range tasks {
		keep[t.ID] = struct{}{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for id, flag := range s.flags {
		if _, ok := keep[id]; !ok && !flag.Load() {
			delete(s.flags, id)
		}
	}
}

func (s *ItemSet) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.flags)
}
