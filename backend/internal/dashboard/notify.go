package dashboard

import "sync"

type Severity string

const (
	SeverityInfo        Severity = "info"
	SeverityDestructive Severity = "destructive"
)

// Notification is a transient message for the user.
type Notification struct {
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Severity    Severity `json:"severity"`
}

// Notifier receives notifications. Notify must not block.
type Notifier interface {
	Notify(n Notification)
}

type NotifierFunc func(n Notification)

func (f NotifierFunc) Notify(n Notification) {
	f(n)
}

const defaultQueueSize = 20

// NotificationQueue buffers notifications until a front-end drains them.
// When full the oldest entry is dropped.
type NotificationQueue struct {
	mu    sync.Mutex
	items []Notification
	max   int
}

func NewNotificationQueue(max int) *NotificationQueue {
	if max <= 0 {
		max = defaultQueueSize
	}
	return &NotificationQueue{max: max}
}

func (q *NotificationQueue) Notify(n Notification) {
	q.mu.Lock()
	defer q.mu.Unlock()

	if len(q.items) == q.max {
		q.items = q.items[1:]
	}
	q.items = append(q.items, n)
}

// Drain returns the queued notifications in arrival order and empties the queue.
func (q *NotificationQueue) Drain() []Notification {
	q.mu.Lock()
	defer q.mu.Unlock()

	items := q.items
	q.items = nil
	return items
}

func (q *NotificationQueue) Len() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

func success(description string) Notification {
	return Notification{Title: "Success", Description: description, Severity: SeverityInfo}
}

func failure(description string) Notification {
	return Notification{Title: "Error", Description: description, Severity: SeverityDestructive}
}
