// Package vcs defines the VCS backend as a capability set rather than a
// type hierarchy (spec §9): a small interface of the operations the
// workflow service needs, with a Jujutsu-over-os/exec implementation
// (jj.go) as the concrete default and an in-memory fake (fake.go) for
// testing the workflow service without touching disk.
package vcs

import "context"

// Status reports the working copy's cleanliness.
type Status struct {
	Dirty   bool
	Changed []string
}

// Commit is one entry in a revset log query.
type Commit struct {
	ID          string
	Description string
}

// Backend is the capability set a workflow needs from the host working
// copy (spec §4.1 "VCS backend"): status, log, diff, commit,
// current_commit_id, create_bookmark, delete_bookmark, checkout,
// list_bookmarks.
type Backend interface {
	Status(ctx context.Context) (Status, error)
	Log(ctx context.Context, revset string) ([]Commit, error)
	Diff(ctx context.Context, revset string) (string, error)
	Commit(ctx context.Context, message string) (commitID string, err error)
	CurrentCommitID(ctx context.Context) (string, error)
	CreateBookmark(ctx context.Context, name, at string) error
	DeleteBookmark(ctx context.Context, name string) error
	Checkout(ctx context.Context, name string) error
	ListBookmarks(ctx context.Context) ([]string, error)
}

// BookmarkName derives the deterministic fallback bookmark name for a task
// when none has been assigned yet (spec §4.3 step 2).
func BookmarkName(taskID string) string {
	return "task/" + taskID
}
