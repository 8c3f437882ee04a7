package types

import "time"

// Status is a derived label, never stored directly — it is computed from
// Completed and StartedAt (spec §3 "Lifecycles").
type Status string

const (
	StatusPending    Status = "pending"
	StatusInProgress Status = "in-progress"
	StatusCompleted  Status = "completed"
)

// MinPriority and MaxPriority bound the priority field. Lower is higher
// priority; the default is DefaultPriority.
const (
	MinPriority     = 1
	MaxPriority     = 5
	DefaultPriority = 3
)

// MaxDepth is the bound on tree depth: three levels, 0/1/2
// (milestone/task/subtask).
const MaxDepth = 2

// Task is a node in the work graph (spec §3).
type Task struct {
	ID          string
	ParentID    *string
	Description string
	Context     string
	Result      *string
	Priority    int
	Completed   bool
	CompletedAt *time.Time
	StartedAt   *time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	CommitSHA   *string
	Bookmark    *string
	StartCommit *string
}

// TaskStatus derives the lifecycle label for t.
func TaskStatus(t *Task) Status {
	switch {
	case t.Completed:
		return StatusCompleted
	case t.StartedAt != nil:
		return StatusInProgress
	default:
		return StatusPending
	}
}

// IsRoot reports whether t is a milestone (no parent).
func (t *Task) IsRoot() bool { return t.ParentID == nil }

// Learning is a short text artefact attached to a task, with attribution
// (spec §3).
type Learning struct {
	ID           string
	TaskID       string
	Content      string
	SourceTaskID string
	CreatedAt    time.Time
}

// TaskFilter selects tasks for Storage.ListTasks. Ready is interpreted by
// the service layer (the storage layer does not compute effective
// blockage); it is accepted here so the filter struct has a single shape
// across layers, per spec §4.1.
type TaskFilter struct {
	ParentID  *string
	Completed *bool
	Ready     *bool
}

// TaskPatch carries the subset of mutable Task fields a caller wants to
// change via Storage.UpdateTask. A nil field means "leave unchanged"; for
// the double-pointer fields, a non-nil pointer to a nil pointer explicitly
// clears the nullable column.
type TaskPatch struct {
	ParentID    **string
	Description *string
	Context     *string
	Result      **string
	Priority    *int
	Completed   *bool
	CompletedAt **time.Time
	StartedAt   **time.Time
	CommitSHA   **string
	Bookmark    **string
	StartCommit **string
}

// StableLess implements the total order of spec §3 invariant 8: priority
// ascending, then created_at ascending, then id ascending. Used wherever a
// list or pick must be deterministic.
func StableLess(a, b *Task) bool {
	if a.Priority != b.Priority {
		return a.Priority < b.Priority
	}
	if !a.CreatedAt.Equal(b.CreatedAt) {
		return a.CreatedAt.Before(b.CreatedAt)
	}
	return a.ID < b.ID
}
