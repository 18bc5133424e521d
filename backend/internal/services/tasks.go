package services

import (
	"context"
	"errors"
	"fmt"
	"log"
	"strings"

	"taskify/backend/internal/events"
	"taskify/backend/internal/models"
	"taskify/backend/internal/monitoring"

	"github.com/gofrs/uuid"
	"gorm.io/gorm"
)

var (
	ErrTaskNotFound = errors.New("task not found")
	ErrInvalidTask  = errors.New("invalid task")
)

// TaskFilter narrows a task listing. A nil Completed returns every task.
type TaskFilter struct {
	Completed *bool
}

// ParseStatusFilter maps the ?status= query value onto a filter.
func ParseStatusFilter(status string) (TaskFilter, error) {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "", "all":
		return TaskFilter{}, nil
	case "pending":
		done := false
		return TaskFilter{Completed: &done}, nil
	case "completed":
		done := true
		return TaskFilter{Completed: &done}, nil
	}
	return TaskFilter{}, fmt.Errorf("%w: unknown status %q (want all, pending or completed)", ErrInvalidTask, status)
}

func (f TaskFilter) Match(t models.Task) bool {
	return f.Completed == nil || *f.Completed == t.Completed
}

// TaskService operates on tasks owned by a single user. A task owned by
// someone else is reported as ErrTaskNotFound.
type TaskService interface {
	CreateTask(db *gorm.DB, userID uuid.UUID, input models.TaskInput) (models.Task, error)
	GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error)
	GetTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error)
	UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch models.TaskPatch) (models.Task, error)
	DeleteTask(db *gorm.DB, userID, id uuid.UUID) error
}

type TaskServiceImpl struct {
	publisher events.Publisher
}

func NewTaskService(publisher events.Publisher) *TaskServiceImpl {
	if publisher == nil {
		publisher = events.NopPublisher{}
	}
	return &TaskServiceImpl{publisher: publisher}
}

func normalizeTitle(title string) (string, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return "", fmt.Errorf("%w: title is required", ErrInvalidTask)
	}
	return title, nil
}

func normalizePriority(p models.Priority) (models.Priority, error) {
	parsed, err := models.ParsePriority(string(p))
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrInvalidTask, err)
	}
	return parsed, nil
}

func (s *TaskServiceImpl) CreateTask(db *gorm.DB, userID uuid.UUID, input models.TaskInput) (models.Task, error) {
	title, err := normalizeTitle(input.Title)
	if err != nil {
		return models.Task{}, err
	}
	priority, err := normalizePriority(input.Priority)
	if err != nil {
		return models.Task{}, err
	}

	task := models.Task{
		UserID:      userID,
		Title:       title,
		Description: strings.TrimSpace(input.Description),
		Priority:    priority,
	}
	if err := db.Create(&task).Error; err != nil {
		return models.Task{}, err
	}

	s.publish(db, events.TaskCreated, task)
	return task, nil
}

func (s *TaskServiceImpl) GetTaskByID(db *gorm.DB, userID, id uuid.UUID) (models.Task, error) {
	var task models.Task
	err := db.Where("id = ? AND user_id = ?", id, userID).First(&task).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return task, ErrTaskNotFound
	}
	return task, err
}

func (s *TaskServiceImpl) GetTasks(db *gorm.DB, userID uuid.UUID, filter TaskFilter) ([]models.Task, error) {
	tasks := []models.Task{}
	query := db.Where("user_id = ?", userID)
	if filter.Completed != nil {
		query = query.Where("completed = ?", *filter.Completed)
	}
	result := query.Order("created_at desc").Find(&tasks)
	return tasks, result.Error
}

func (s *TaskServiceImpl) UpdateTask(db *gorm.DB, userID, id uuid.UUID, patch models.TaskPatch) (models.Task, error) {
	task, err := s.GetTaskByID(db, userID, id)
	if err != nil {
		return task, err
	}
	if patch.Empty() {
		return task, nil
	}

	// A map keeps zero values such as completed=false in the UPDATE.
	updates := map[string]interface{}{}
	if patch.Title != nil {
		title, err := normalizeTitle(*patch.Title)
		if err != nil {
			return task, err
		}
		updates["title"] = title
	}
	if patch.Description != nil {
		updates["description"] = strings.TrimSpace(*patch.Description)
	}
	if patch.Completed != nil {
		updates["completed"] = *patch.Completed
	}
	if patch.Priority != nil {
		priority, err := normalizePriority(*patch.Priority)
		if err != nil {
			return task, err
		}
		updates["priority"] = priority
	}

	if err := db.Model(&task).Updates(updates).Error; err != nil {
		return task, err
	}

	updated, err := s.GetTaskByID(db, userID, id)
	if err != nil {
		return task, err
	}

	s.publish(db, events.TaskUpdated, updated)
	return updated, nil
}

func (s *TaskServiceImpl) DeleteTask(db *gorm.DB, userID, id uuid.UUID) error {
	result := db.Where("id = ? AND user_id = ?", id, userID).Delete(&models.Task{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}

	s.publish(db, events.TaskDeleted, models.Task{ID: id, UserID: userID})
	return nil
}

// publish reports a committed mutation. Broker failures are logged only; the
// database is the source of truth.
func (s *TaskServiceImpl) publish(db *gorm.DB, t events.Type, task models.Task) {
	monitoring.RecordTaskOperation(strings.TrimPrefix(string(t), "task."))

	ctx := context.Background()
	if db.Statement != nil && db.Statement.Context != nil {
		ctx = db.Statement.Context
	}
	if err := s.publisher.Publish(ctx, events.New(t, task.ID, task.UserID)); err != nil {
		log.Printf("⚠️ Failed to publish %s for task %s: %v", t, task.ID, err)
	}
}
