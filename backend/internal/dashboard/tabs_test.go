package dashboard

import (
	"reflect"
	"testing"

	"taskify/backend/internal/models"
	"taskify/backend/internal/testutil"
)

func TestFilterTasks(t *testing.T) {
	one := testutil.NewTask("1", false)
	two := testutil.NewTask("2", true)
	tasks := []models.Task{one, two}

	tests := []struct {
		tab  Tab
		want []models.Task
	}{
		{TabAll, []models.Task{one, two}},
		{TabPending, []models.Task{one}},
		{TabCompleted, []models.Task{two}},
	}
	for _, tt := range tests {
		t.Run(string(tt.tab), func(t *testing.T) {
			if got := FilterTasks(tasks, tt.tab); !reflect.DeepEqual(got, tt.want) {
				t.Errorf("FilterTasks(%s) = %+v, want %+v", tt.tab, got, tt.want)
			}
		})
	}

	if got := FilterTasks(nil, TabAll); got == nil || len(got) != 0 {
		t.Errorf("Expected empty non-nil result, got %v", got)
	}
}

func TestCountTasks(t *testing.T) {
	lists := [][]models.Task{
		nil,
		{testutil.NewTask("a", false)},
		{testutil.NewTask("a", true), testutil.NewTask("b", false), testutil.NewTask("c", true)},
	}
	for _, tasks := range lists {
		c := CountTasks(tasks)
		if c.Completed+c.Pending != c.Total || c.Total != len(tasks) {
			t.Errorf("CountTasks(%d tasks) = %+v", len(tasks), c)
		}
	}

	c := CountTasks(lists[2])
	if c.Completed != 2 || c.Pending != 1 {
		t.Errorf("Unexpected counts %+v", c)
	}
	if TabPending.Label(c) != "Pending (1)" || TabAll.Label(c) != "All (3)" {
		t.Errorf("Unexpected labels %q, %q", TabPending.Label(c), TabAll.Label(c))
	}
}

func TestParseTab(t *testing.T) {
	tests := []struct {
		in      string
		want    Tab
		wantErr bool
	}{
		{in: "", want: TabAll},
		{in: "all", want: TabAll},
		{in: " Pending", want: TabPending},
		{in: "COMPLETED", want: TabCompleted},
		{in: "archived", wantErr: true},
	}
	for _, tt := range tests {
		got, err := ParseTab(tt.in)
		if (err != nil) != tt.wantErr || got != tt.want {
			t.Errorf("ParseTab(%q) = %q, %v", tt.in, got, err)
		}
	}

	if TabAll.Next() != TabPending || TabCompleted.Next() != TabAll {
		t.Error("Unexpected tab cycle")
	}
}

func TestEmptyStateMessage(t *testing.T) {
	if got := EmptyStateMessage(TabAll); got != "Start by adding your first task!" {
		t.Errorf("all: %q", got)
	}
	if got := EmptyStateMessage(TabPending); got != "No pending tasks at the moment." {
		t.Errorf("pending: %q", got)
	}
	if got := EmptyStateMessage(TabCompleted); got != "No completed tasks at the moment." {
		t.Errorf("completed: %q", got)
	}
}

func TestNotificationQueue(t *testing.T) {
	q := NewNotificationQueue(2)
	q.Notify(success("one"))
	q.Notify(success("two"))
	q.Notify(failure("three"))

	got := q.Drain()
	if len(got) != 2 || got[0].Description != "two" || got[1].Description != "three" {
		t.Errorf("Drain() = %+v, want the two newest", got)
	}
	if q.Len() != 0 {
		t.Error("Expected Drain to empty the queue")
	}

	var recorded []Notification
	NotifierFunc(func(n Notification) { recorded = append(recorded, n) }).Notify(success("x"))
	if len(recorded) != 1 {
		t.Error("Expected NotifierFunc to forward the notification")
	}
}
