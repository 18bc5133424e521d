package models

import "testing"

func TestParsePriority(t *testing.T) {
	tests := []struct {
		in      string
		want    Priority
		wantErr bool
	}{
		{in: "", want: PriorityMedium},
		{in: "low", want: PriorityLow},
		{in: " HIGH ", want: PriorityHigh},
		{in: "Medium", want: PriorityMedium},
		{in: "urgent", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParsePriority(tt.in)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParsePriority(%q) error = %v, wantErr %v", tt.in, err, tt.wantErr)
			}
			if got != tt.want {
				t.Errorf("ParsePriority(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func TestPriorityNext(t *testing.T) {
	p := PriorityLow
	seen := []Priority{p}
	for i := 0; i < 3; i++ {
		p = p.Next()
		seen = append(seen, p)
	}
	want := []Priority{PriorityLow, PriorityMedium, PriorityHigh, PriorityLow}
	for i := range want {
		if seen[i] != want[i] {
			t.Fatalf("cycle = %v, want %v", seen, want)
		}
	}
}

func TestTaskPatchEmpty(t *testing.T) {
	if !(TaskPatch{}).Empty() {
		t.Error("expected zero patch to be empty")
	}
	if CompletedPatch(false).Empty() {
		t.Error("expected completed patch to be non-empty")
	}
	if got := *CompletedPatch(true).Completed; !got {
		t.Error("expected completed=true")
	}
}
