package testutil

import (
	"context"
	"errors"
	"sync"
	"time"

	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

var ErrFakeNotFound = errors.New("task not found")

// FakeStore is an in-memory task store for a single user. The Err fields
// inject failures into the matching call.
type FakeStore struct {
	mu    sync.Mutex
	tasks []models.Task
	clock time.Time

	UserID    uuid.UUID
	ListErr   error
	CreateErr error
	UpdateErr error
	DeleteErr error

	// OnDelete runs before a delete is applied; a non-nil error fails it.
	OnDelete func(id uuid.UUID) error

	Calls map[string]int
}

func NewFakeStore(tasks ...models.Task) *FakeStore {
	return &FakeStore{
		tasks:  append([]models.Task(nil), tasks...),
		clock:  time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC),
		UserID: uuid.Must(uuid.NewV4()),
		Calls:  map[string]int{},
	}
}

// NewTask builds a task as the store would have returned it.
func NewTask(title string, completed bool) models.Task {
	return models.Task{
		ID:        uuid.Must(uuid.NewV4()),
		Title:     title,
		Completed: completed,
		Priority:  models.PriorityMedium,
		CreatedAt: time.Now().UTC(),
	}
}

func (s *FakeStore) record(op string) {
	s.Calls[op]++
}

func (s *FakeStore) CallCount(op string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Calls[op]
}

func (s *FakeStore) ListTasks(ctx context.Context) ([]models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("list")

	if s.ListErr != nil {
		return nil, s.ListErr
	}
	return append([]models.Task{}, s.tasks...), nil
}

func (s *FakeStore) CreateTask(ctx context.Context, input models.TaskInput) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("create")

	if s.CreateErr != nil {
		return models.Task{}, s.CreateErr
	}

	priority := input.Priority
	if priority == "" {
		priority = models.PriorityMedium
	}
	s.clock = s.clock.Add(time.Second)
	task := models.Task{
		ID:          uuid.Must(uuid.NewV4()),
		UserID:      s.UserID,
		Title:       input.Title,
		Description: input.Description,
		Priority:    priority,
		CreatedAt:   s.clock,
		UpdatedAt:   s.clock,
	}
	s.tasks = append([]models.Task{task}, s.tasks...)
	return task, nil
}

func (s *FakeStore) UpdateTask(ctx context.Context, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.record("update")

	if s.UpdateErr != nil {
		return models.Task{}, s.UpdateErr
	}
	for i := range s.tasks {
		if s.tasks[i].ID != id {
			continue
		}
		if patch.Title != nil {
			s.tasks[i].Title = *patch.Title
		}
		if patch.Description != nil {
			s.tasks[i].Description = *patch.Description
		}
		if patch.Completed != nil {
			s.tasks[i].Completed = *patch.Completed
		}
		if patch.Priority != nil {
			s.tasks[i].Priority = *patch.Priority
		}
		return s.tasks[i], nil
	}
	return models.Task{}, ErrFakeNotFound
}

func (s *FakeStore) DeleteTask(ctx context.Context, id uuid.UUID) error {
	s.mu.Lock()
	onDelete := s.OnDelete
	s.record("delete")
	deleteErr := s.DeleteErr
	s.mu.Unlock()

	if deleteErr != nil {
		return deleteErr
	}
	if onDelete != nil {
		if err := onDelete(id); err != nil {
			return err
		}
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, t := range s.tasks {
		if t.ID == id {
			s.tasks = append(s.tasks[:i:i], s.tasks[i+1:]...)
			return nil
		}
	}
	return ErrFakeNotFound
}

// FakeSession is a signed-in user whose sign-out can be made to fail.
type FakeSession struct {
	mu         sync.Mutex
	Info       models.UserInfo
	SignOutErr error
	signedOut  bool
}

func NewFakeSession(email string) *FakeSession {
	return &FakeSession{Info: models.UserInfo{ID: uuid.Must(uuid.NewV4()), Email: email}}
}

func (s *FakeSession) User() models.UserInfo {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.Info
}

// SwitchUser changes the identity, as a re-login would.
func (s *FakeSession) SwitchUser(info models.UserInfo) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Info = info
}

func (s *FakeSession) SignOut(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.SignOutErr != nil {
		return s.SignOutErr
	}
	s.signedOut = true
	return nil
}

func (s *FakeSession) SignedOut() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.signedOut
}
