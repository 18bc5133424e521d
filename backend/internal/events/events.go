package events

import (
	"context"
	"time"

	"github.com/gofrs/uuid"
)

type Type string

const (
	TaskCreated Type = "task.created"
	TaskUpdated Type = "task.updated"
	TaskDeleted Type = "task.deleted"
)

// Event is the message published after a task mutation is committed.
type Event struct {
	Type   Type      `json:"type"`
	TaskID uuid.UUID `json:"task_id"`
	UserID uuid.UUID `json:"user_id"`
	At     time.Time `json:"at"`
}

func New(t Type, taskID, userID uuid.UUID) Event {
	return Event{Type: t, TaskID: taskID, UserID: userID, At: time.Now().UTC()}
}

type Publisher interface {
	Publish(ctx context.Context, e Event) error
	Close() error
}

// NopPublisher discards events. It is used when no broker is configured.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, Event) error { return nil }
func (NopPublisher) Close() error                         { return nil }
