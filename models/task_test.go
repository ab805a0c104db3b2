package models

import (
	"strings"
	"testing"
)

func TestValidate(t *testing.T) {
	cases := []struct {
		name    string
		task    Task
		wantErr string // substring; "" means valid
	}{
		{
			name: "defaults from NewTask pass",
			task: NewTask("1", "Ship webhooks"),
		},
		{
			name:    "missing title",
			task:    Task{ID: "1", Status: StatusTodo},
			wantErr: `Task.Title violates "required"`,
		},
		{
			name:    "missing id",
			task:    Task{Title: "Ship webhooks", Status: StatusTodo},
			wantErr: `Task.ID violates "required"`,
		},
		{
			name:    "status outside the vocabulary",
			task:    Task{ID: "1", Title: "Ship webhooks", Status: "done"},
			wantErr: `Task.Status violates "oneof"`,
		},
		{
			name:    "priority outside the vocabulary",
			task:    Task{ID: "1", Title: "Ship webhooks", Status: StatusTodo, Priority: "urgent"},
			wantErr: `Task.Priority violates "oneof"`,
		},
		{
			name: "empty priority is allowed",
			task: Task{ID: "1", Title: "Ship webhooks", Status: StatusTodo},
		},
		{
			name: "invalid nested subtask",
			task: Task{
				ID:     "1",
				Title:  "Ship webhooks",
				Status: StatusTodo,
				Subtasks: []Task{
					{ID: "1.1", Status: StatusTodo},
				},
			},
			wantErr: `Subtasks[0].Title violates "required"`,
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := tc.task.Validate()
			if tc.wantErr == "" {
				if err != nil {
					t.Fatalf("Validate() = %v, want nil", err)
				}
				return
			}
			if err == nil {
				t.Fatalf("Validate() = nil, want error containing %q", tc.wantErr)
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("Validate() = %q, want it to contain %q", err, tc.wantErr)
			}
		})
	}
}
