package web

import (
	"context"
	"sync"
	"time"

	"taskify/backend/internal/cache"
	"taskify/backend/internal/components"
	"taskify/backend/internal/dashboard"
	"taskify/backend/internal/models"

	"github.com/gofrs/uuid"
)

const (
	sessionCookie = "taskify_session"
	flashTTL      = time.Minute
)

// browserSession is the per-cookie state: the dashboard plus the bits of UI
// state the page needs between requests.
type browserSession struct {
	dash  *dashboard.Dashboard
	queue *dashboard.NotificationQueue
	items *components.ItemSet

	mu    sync.Mutex
	form  *components.TaskForm
	draft models.TaskInput
	tab   dashboard.Tab
}

func newBrowserSession(account Account) *browserSession {
	queue := dashboard.NewNotificationQueue(0)
	dash := dashboard.New(account, account, queue)
	s := &browserSession{
		dash:  dash,
		queue: queue,
		items: components.NewItemSet(dash.Toggle, dash.Delete),
		tab:   dashboard.TabAll,
	}
	s.form = components.NewTaskForm(s.capture)
	return s
}

// capture is the form's submit callback. It only records the draft so the
// remote create can run after the session lock is released.
func (s *browserSession) capture(_ context.Context, in models.TaskInput) error {
	s.draft = in
	return nil
}

// submitForm fills the form from a posted draft and submits it. It reports
// the accepted input, or false when the title was blank and the form kept
// the draft.
func (s *browserSession) submitForm(title, description string, priority models.Priority) (models.TaskInput, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.form.Open()
	s.form.SetTitle(title)
	s.form.SetDescription(description)
	s.form.SetPriority(priority)

	submitted, _ := s.form.Submit(context.Background())
	return s.draft, submitted
}

func (s *browserSession) withForm(fn func(f *components.TaskForm)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(s.form)
}

func (s *browserSession) currentTab() dashboard.Tab {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.tab
}

func (s *browserSession) setTab(tab dashboard.Tab) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.tab = tab
}

// sessionStore keeps browser sessions in memory with a sliding TTL.
type sessionStore struct {
	cache *cache.MemoryCache
	ttl   time.Duration
}

func newSessionStore(ttl time.Duration) *sessionStore {
	return &sessionStore{cache: cache.NewMemoryCache(), ttl: ttl}
}

func (st *sessionStore) create(account Account) (string, *browserSession) {
	id := uuid.Must(uuid.NewV4()).String()
	sess := newBrowserSession(account)
	_ = st.cache.Set("session:"+id, sess, st.ttl)
	return id, sess
}

func (st *sessionStore) get(id string) (*browserSession, bool) {
	v, ok := st.cache.Get("session:" + id)
	if !ok {
		return nil, false
	}
	sess, ok := v.(*browserSession)
	if ok {
		_ = st.cache.Set("session:"+id, sess, st.ttl)
	}
	return sess, ok
}

func (st *sessionStore) destroy(id string) {
	_ = st.cache.Delete("session:" + id)
}

// flash keeps notifications for the next page a signed-out browser sees.
func (st *sessionStore) flash(id string, notes []dashboard.Notification) {
	if len(notes) > 0 {
		_ = st.cache.Set("flash:"+id, notes, flashTTL)
	}
}

func (st *sessionStore) takeFlash(id string) []dashboard.Notification {
	v, ok := st.cache.Get("flash:" + id)
	if !ok {
		return nil
	}
	_ = st.cache.Delete("flash:" + id)
	notes, _ := v.([]dashboard.Notification)
	return notes
}

func (st *sessionStore) close() error {
	return st.cache.Close()
}
