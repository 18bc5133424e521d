package dashboard

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"taskify/backend/internal/models"
	"taskify/backend/internal/testutil"

	"github.com/gofrs/uuid"
)

func setupDashboard(t *testing.T, tasks ...models.Task) (*Dashboard, *testutil.FakeStore, *NotificationQueue) {
	t.Helper()
	store := testutil.NewFakeStore(tasks...)
	queue := NewNotificationQueue(0)
	d := New(testutil.NewFakeSession("user@example.com"), store, queue)
	if err := d.Load(context.Background()); err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	queue.Drain()
	return d, store, queue
}

func expectNotification(t *testing.T, q *NotificationQueue, want Notification) {
	t.Helper()
	got := q.Drain()
	if len(got) != 1 || got[0] != want {
		t.Errorf("notifications = %+v, want [%+v]", got, want)
	}
}

func TestDashboard_LoadPhases(t *testing.T) {
	store := testutil.NewFakeStore(testutil.NewTask("a", false))
	d := New(testutil.NewFakeSession("user@example.com"), store, nil)

	if d.Phase() != PhaseLoading {
		t.Errorf("Expected a new dashboard to be loading, got %s", d.Phase())
	}
	if err := d.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	if d.Phase() != PhaseReady || len(d.Tasks()) != 1 {
		t.Errorf("Expected ready with 1 task, got %s with %d", d.Phase(), len(d.Tasks()))
	}

	if err := d.EnsureLoaded(context.Background()); err != nil {
		t.Fatal(err)
	}
	if store.CallCount("list") != 1 {
		t.Errorf("Expected a single fetch per identity, got %d", store.CallCount("list"))
	}
}

func TestDashboard_LoadFailure(t *testing.T) {
	store := testutil.NewFakeStore(testutil.NewTask("a", false))
	store.ListErr = errors.New("connection refused")
	queue := NewNotificationQueue(0)
	d := New(testutil.NewFakeSession("user@example.com"), store, queue)

	if err := d.Load(context.Background()); err == nil {
		t.Fatal("Expected Load() to return the store error")
	}
	if d.Phase() != PhaseReady {
		t.Error("Expected the dashboard to be ready after a failed fetch")
	}
	if tasks := d.Tasks(); tasks == nil || len(tasks) != 0 {
		t.Errorf("Expected an empty list, got %v", tasks)
	}
	expectNotification(t, queue, Notification{Title: "Error", Description: "Failed to fetch tasks", Severity: SeverityDestructive})
}

func TestDashboard_ReloadsOnIdentityChange(t *testing.T) {
	store := testutil.NewFakeStore()
	session := testutil.NewFakeSession("first@example.com")
	d := New(session, store, nil)

	_ = d.EnsureLoaded(context.Background())
	session.SwitchUser(models.UserInfo{ID: uuid.Must(uuid.NewV4()), Email: "second@example.com"})
	_ = d.EnsureLoaded(context.Background())

	if store.CallCount("list") != 2 {
		t.Errorf("Expected a fetch per identity, got %d", store.CallCount("list"))
	}
}

func TestDashboard_CreatePrepends(t *testing.T) {
	older := testutil.NewTask("older", false)
	d, _, queue := setupDashboard(t, older)
	before := d.Tasks()

	created, err := d.Create(context.Background(), models.TaskInput{Title: "newest", Priority: models.PriorityHigh})
	if err != nil {
		t.Fatalf("Create() error = %v", err)
	}

	want := append([]models.Task{created}, before...)
	if !reflect.DeepEqual(d.Tasks(), want) {
		t.Errorf("Tasks() = %+v, want %+v", d.Tasks(), want)
	}
	expectNotification(t, queue, Notification{Title: "Success", Description: "Task added successfully", Severity: SeverityInfo})
}

func TestDashboard_CreateFailure(t *testing.T) {
	d, store, queue := setupDashboard(t, testutil.NewTask("a", false))
	store.CreateErr = errors.New("insert failed")
	before := d.Tasks()

	if _, err := d.Create(context.Background(), models.TaskInput{Title: "b"}); err == nil {
		t.Fatal("Expected Create() to fail")
	}
	if !reflect.DeepEqual(d.Tasks(), before) {
		t.Error("Expected the list to be unchanged")
	}
	expectNotification(t, queue, Notification{Title: "Error", Description: "Failed to add task", Severity: SeverityDestructive})
}

func TestDashboard_Toggle(t *testing.T) {
	one := testutil.NewTask("one", false)
	two := testutil.NewTask("two", true)
	d, _, queue := setupDashboard(t, one, two)

	if err := d.Toggle(context.Background(), one.ID, true); err != nil {
		t.Fatalf("Toggle() error = %v", err)
	}

	tasks := d.Tasks()
	wantOne := one
	wantOne.Completed = true
	if !reflect.DeepEqual(tasks[0], wantOne) {
		t.Errorf("Toggled entry = %+v, want %+v", tasks[0], wantOne)
	}
	if !reflect.DeepEqual(tasks[1], two) {
		t.Errorf("Other entry changed: %+v", tasks[1])
	}
	expectNotification(t, queue, Notification{Title: "Success", Description: "Task completed!", Severity: SeverityInfo})

	if err := d.Toggle(context.Background(), one.ID, false); err != nil {
		t.Fatal(err)
	}
	expectNotification(t, queue, Notification{Title: "Success", Description: "Task marked as pending", Severity: SeverityInfo})
}

func TestDashboard_ToggleFailure(t *testing.T) {
	one := testutil.NewTask("one", false)
	d, store, queue := setupDashboard(t, one)
	store.UpdateErr = errors.New("update failed")

	if err := d.Toggle(context.Background(), one.ID, true); err == nil {
		t.Fatal("Expected Toggle() to fail")
	}
	if d.Tasks()[0].Completed {
		t.Error("Expected the entry to keep its previous state")
	}
	expectNotification(t, queue, Notification{Title: "Error", Description: "Failed to update task", Severity: SeverityDestructive})
}

func TestDashboard_Delete(t *testing.T) {
	one := testutil.NewTask("one", false)
	two := testutil.NewTask("two", true)
	d, _, queue := setupDashboard(t, one, two)

	if err := d.Delete(context.Background(), two.ID); err != nil {
		t.Fatalf("Delete() error = %v", err)
	}
	tasks := d.Tasks()
	if len(tasks) != 1 || tasks[0].ID != one.ID {
		t.Errorf("Tasks() = %+v, want only %v", tasks, one.ID)
	}
	if _, ok := d.Find(two.ID); ok {
		t.Error("Expected deleted task to be gone")
	}
	expectNotification(t, queue, Notification{Title: "Success", Description: "Task deleted successfully", Severity: SeverityInfo})
}

func TestDashboard_DeleteFailure(t *testing.T) {
	one := testutil.NewTask("one", false)
	two := testutil.NewTask("two", true)
	d, store, queue := setupDashboard(t, one, two)
	store.DeleteErr = errors.New("delete failed")
	before := d.Tasks()

	if err := d.Delete(context.Background(), two.ID); err == nil {
		t.Fatal("Expected Delete() to fail")
	}
	if !reflect.DeepEqual(d.Tasks(), before) {
		t.Error("Expected the list to be unchanged after a failed delete")
	}
	expectNotification(t, queue, Notification{Title: "Error", Description: "Failed to delete task", Severity: SeverityDestructive})
}

func TestDashboard_PublishedSlicesAreStable(t *testing.T) {
	one := testutil.NewTask("one", false)
	d, _, _ := setupDashboard(t, one)

	snapshot := d.Tasks()
	if err := d.Toggle(context.Background(), one.ID, true); err != nil {
		t.Fatal(err)
	}
	if snapshot[0].Completed {
		t.Error("Expected an earlier snapshot not to observe later updates")
	}
}

func TestDashboard_TasksReturnsCopy(t *testing.T) {
	one := testutil.NewTask("one", false)
	d, _, _ := setupDashboard(t, one)

	tasks := d.Tasks()
	tasks[0].Completed = true
	tasks[0].Title = "changed"

	if got := d.Tasks()[0]; got.Completed || got.Title != "one" {
		t.Errorf("Expected writes to the returned slice not to reach the dashboard, got %+v", got)
	}
	if d.Counts().Completed != 0 {
		t.Error("Expected counts to ignore writes to the returned slice")
	}
}

func TestDashboard_SignOut(t *testing.T) {
	session := testutil.NewFakeSession("user@example.com")
	queue := NewNotificationQueue(0)
	d := New(session, testutil.NewFakeStore(testutil.NewTask("a", false)), queue)
	_ = d.Load(context.Background())
	queue.Drain()

	if err := d.SignOut(context.Background()); err != nil {
		t.Fatalf("SignOut() error = %v", err)
	}
	if !session.SignedOut() {
		t.Error("Expected the session to be signed out")
	}
	if len(d.Tasks()) != 1 {
		t.Error("Expected SignOut to leave the task list alone")
	}
	expectNotification(t, queue, Notification{Title: "Signed out", Description: "You've been signed out successfully", Severity: SeverityInfo})

	session.SignOutErr = errors.New("network down")
	if err := d.SignOut(context.Background()); err == nil {
		t.Error("Expected SignOut to report the failure")
	}
	expectNotification(t, queue, Notification{Title: "Error", Description: "Failed to sign out", Severity: SeverityDestructive})
}

func TestDashboard_ConcurrentMutations(t *testing.T) {
	var tasks []models.Task
	for i := 0; i < 20; i++ {
		tasks = append(tasks, testutil.NewTask("task", false))
	}
	d, _, _ := setupDashboard(t, tasks...)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i, task := range tasks {
		wg.Add(1)
		go func(i int, id uuid.UUID) {
			defer wg.Done()
			if i%2 == 0 {
				_ = d.Delete(ctx, id)
			} else {
				_ = d.Toggle(ctx, id, true)
			}
			_ = d.Counts()
		}(i, task.ID)
	}
	wg.Add(1)
	go func() {
		defer wg.Done()
		_, _ = d.Create(ctx, models.TaskInput{Title: "concurrent"})
	}()
	wg.Wait()

	got := d.Counts()
	if got.Total != 11 || got.Completed != 10 || got.Pending != 1 {
		t.Errorf("Counts() = %+v, want total 11, completed 10, pending 1", got)
	}
	seen := map[uuid.UUID]bool{}
	for _, task := range d.Tasks() {
		if seen[task.ID] {
			t.Fatalf("Duplicate id %v in list", task.ID)
		}
		seen[task.ID] = true
	}
}
