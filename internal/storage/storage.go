// Package storage defines the typed wrapper over an embedded relational
// store (spec §4.1): schema, migrations, CRUD primitives, and foreign-key
// and check constraints. It contains no domain/traversal logic — that
// lives in internal/task and internal/workflow.
package storage

import (
	"context"

	"github.com/nsyout/overseer/internal/types"
)

// TaskStore is the set of operations available both on the top-level
// Storage handle and inside a transaction callback. Splitting it out lets
// RunInTransaction expose exactly the same shape whether or not a
// transaction is open, in the manner of beads's storage.Transaction
// interface.
type TaskStore interface {
	// Tasks
	CreateTask(ctx context.Context, task *types.Task) (*types.Task, error)
	UpdateTask(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error)
	DeleteTask(ctx context.Context, id string) error
	GetTask(ctx context.Context, id string) (*types.Task, error)
	ListTasks(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error)
	ListRoots(ctx context.Context) ([]*types.Task, error)
	GetChildrenOrdered(ctx context.Context, id string) ([]*types.Task, error)
	HasPendingChildren(ctx context.Context, id string) (bool, error)
	IsCompleted(ctx context.Context, id string) (bool, error)
	Search(ctx context.Context, query string) ([]*types.Task, error)

	// Blocker edges
	AddBlocker(ctx context.Context, taskID, blockerID string) error
	RemoveBlocker(ctx context.Context, taskID, blockerID string) error
	GetBlockers(ctx context.Context, taskID string) ([]string, error)
	GetBlocking(ctx context.Context, blockerID string) ([]string, error)

	// Learnings
	AddLearning(ctx context.Context, taskID, content, sourceTaskID string) (*types.Learning, error)
	ListLearnings(ctx context.Context, taskID string) ([]*types.Learning, error)
	DeleteLearning(ctx context.Context, id string) error

	// ImportLearning inserts l verbatim, preserving its ID and CreatedAt
	// instead of minting new ones. Used only by internal/exportimport so a
	// re-imported graph stays byte-identical to its export modulo the
	// timestamps import itself cannot avoid refreshing elsewhere.
	ImportLearning(ctx context.Context, l *types.Learning) error
}

// Storage is the full contract a backend must satisfy (spec §4.1).
type Storage interface {
	TaskStore

	// RunInTransaction executes fn within a single database transaction.
	// If fn returns nil the transaction commits; if it returns an error
	// or panics, the transaction rolls back. All operations inside fn
	// share one connection and see each other's writes (read-your-writes).
	RunInTransaction(ctx context.Context, fn func(tx TaskStore) error) error

	// SchemaVersion returns the current schema_version counter (spec §6).
	SchemaVersion(ctx context.Context) (int, error)

	// Probe does a cheap read to verify the store is reachable and the
	// schema is compatible with this build (used by `overseer doctor`).
	Probe(ctx context.Context) error

	Close() error
	Path() string
}
