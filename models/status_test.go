package models

import "testing"

func TestNormalizeStatus(t *testing.T) {
	cases := []struct {
		raw  string
		want TaskStatus
	}{
		{"pending", StatusTodo},
		{"todo", StatusTodo},
		{"in-progress", StatusInProgress},
		{"in_progress", StatusInProgress},
		{"completed", StatusCompleted},
		{"done", StatusCompleted},
		{"blocked", StatusBlocked},
		{"deferred", StatusDeferred},
		{"cancelled", StatusCancelled},
		{"review", StatusReview},
		// unknown values fail open to todo
		{"", StatusTodo},
		{"garbage", StatusTodo},
		{"DONE", StatusTodo},
	}

	for _, tc := range cases {
		t.Run(tc.raw, func(t *testing.T) {
			if got := NormalizeStatus(tc.raw); got != tc.want {
				t.Errorf("NormalizeStatus(%q) = %q, want %q", tc.raw, got, tc.want)
			}
		})
	}
}

func TestDenormalizeCompletedIsDone(t *testing.T) {
	if got := DenormalizeStatus(StatusCompleted); got != "done" {
		t.Fatalf("DenormalizeStatus(completed) = %q, want %q", got, "done")
	}
}

// Every raw token in the alias table must reach a fixed point after one
// normalize/denormalize pass: denormalizing again yields the same token.
func TestStatusRoundTripFixedPoint(t *testing.T) {
	for raw := range statusAliases {
		first := DenormalizeStatus(NormalizeStatus(raw))
		second := DenormalizeStatus(NormalizeStatus(first))
		if first != second {
			t.Errorf("status %q: write token not stable: %q then %q", raw, first, second)
		}
	}
}

func TestParentOf(t *testing.T) {
	cases := []struct{ id, want string }{
		{"3", ""},
		{"3.1", "3"},
		{"3.1.2", "3.1"},
		{"", ""},
	}
	for _, tc := range cases {
		if got := ParentOf(tc.id); got != tc.want {
			t.Errorf("ParentOf(%q) = %q, want %q", tc.id, got, tc.want)
		}
	}
}
