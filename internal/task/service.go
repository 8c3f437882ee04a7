// Package task implements the pure, in-process business logic over
// Storage: hierarchy invariants, cycle detection, readiness DFS,
// start-target resolution, context and learning assembly, and progress
// aggregation (spec §4.2). It holds no mutable state between calls.
package task

import (
	"context"
	"time"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/types"
)

// Service is the task service. It takes a storage handle per call and owns
// no lifecycle of its own (spec §9 "Global state is deliberately absent").
type Service struct {
	store storage.Storage
}

// New returns a Service backed by store.
func New(store storage.Storage) *Service {
	return &Service{store: store}
}

// CreateInput carries the fields a caller supplies to Create; omitted
// optional fields take their documented defaults (spec §3).
type CreateInput struct {
	ParentID    *string
	Description string
	Context     string
	Priority    int
}

// Create validates and inserts a new task (spec §3 invariants 1, 2, 6).
func (s *Service) Create(ctx context.Context, in CreateInput) (*types.Task, error) {
	if err := validateDescription(in.Description); err != nil {
		return nil, err
	}
	priority := in.Priority
	if priority == 0 {
		priority = types.DefaultPriority
	}
	if err := validatePriority(priority); err != nil {
		return nil, err
	}

	var parentDepth int
	if in.ParentID != nil {
		if err := validateTaskID(*in.ParentID); err != nil {
			return nil, err
		}
		parent, err := s.store.GetTask(ctx, *in.ParentID)
		if err != nil {
			return nil, err
		}
		d, err := depth(ctx, s.store, parent)
		if err != nil {
			return nil, err
		}
		parentDepth = d + 1
	}
	if parentDepth > types.MaxDepth {
		return nil, types.Errorf(types.KindMaxDepthExceeded, nil, "creating a task at depth %d would exceed max depth %d", parentDepth, types.MaxDepth)
	}

	t := &types.Task{
		ID:          types.NewTaskID(),
		ParentID:    in.ParentID,
		Description: in.Description,
		Context:     in.Context,
		Priority:    priority,
	}
	return s.store.CreateTask(ctx, t)
}

// Get returns the enriched TaskWithContext envelope for id (spec §4.2).
func (s *Service) Get(ctx context.Context, id string) (*types.TaskWithContext, error) {
	if err := validateTaskID(id); err != nil {
		return nil, err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	return assemble(ctx, s.store, t)
}

// List returns tasks matching filter. A non-nil filter.Ready is resolved
// here — the storage layer has no notion of effective blockage.
func (s *Service) List(ctx context.Context, filter types.TaskFilter) ([]*types.Task, error) {
	storageFilter := types.TaskFilter{ParentID: filter.ParentID, Completed: filter.Completed}
	tasks, err := s.store.ListTasks(ctx, storageFilter)
	if err != nil {
		return nil, err
	}
	if filter.Ready == nil {
		return tasks, nil
	}

	var out []*types.Task
	for _, t := range tasks {
		ready, err := isReady(ctx, s.store, t)
		if err != nil {
			return nil, err
		}
		if ready == *filter.Ready {
			out = append(out, t)
		}
	}
	return out, nil
}

// Update validates and applies patch to id (spec §3 invariants 1, 2).
func (s *Service) Update(ctx context.Context, id string, patch types.TaskPatch) (*types.Task, error) {
	if err := validateTaskID(id); err != nil {
		return nil, err
	}
	if patch.Description != nil {
		if err := validateDescription(*patch.Description); err != nil {
			return nil, err
		}
	}
	if patch.Priority != nil {
		if err := validatePriority(*patch.Priority); err != nil {
			return nil, err
		}
	}
	if patch.ParentID != nil && *patch.ParentID != nil {
		newParent := **patch.ParentID
		if err := validateTaskID(newParent); err != nil {
			return nil, err
		}
		if err := checkParentCycle(ctx, s.store, id, newParent); err != nil {
			return nil, err
		}
		parent, err := s.store.GetTask(ctx, newParent)
		if err != nil {
			return nil, err
		}
		parentDepth, err := depth(ctx, s.store, parent)
		if err != nil {
			return nil, err
		}
		below := 0
		children, err := s.store.GetChildrenOrdered(ctx, id)
		if err != nil {
			return nil, err
		}
		for _, c := range children {
			grandchildren, err := s.store.GetChildrenOrdered(ctx, c.ID)
			if err != nil {
				return nil, err
			}
			below = max(below, 1+min(len(grandchildren), 1))
		}
		if parentDepth+1+below > types.MaxDepth {
			return nil, types.Errorf(types.KindMaxDepthExceeded, nil, "reparenting under %s would exceed max depth %d", newParent, types.MaxDepth)
		}
	}
	return s.store.UpdateTask(ctx, id, patch)
}

// Delete removes id and its entire subtree (spec §3 invariant 5, cascade
// delete enforced by the storage schema).
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := validateTaskID(id); err != nil {
		return err
	}
	return s.store.DeleteTask(ctx, id)
}

// Reopen clears completed/completed_at/result, leaving started_at and
// commit_sha intact (spec §3 "Lifecycles"; Open Question on commit_sha
// resolved in DESIGN.md — left untouched, no VCS step here).
func (s *Service) Reopen(ctx context.Context, id string) (*types.Task, error) {
	if err := validateTaskID(id); err != nil {
		return nil, err
	}
	completed := false
	var nilTime *time.Time
	var nilResult *string
	return s.store.UpdateTask(ctx, id, types.TaskPatch{
		Completed:   &completed,
		CompletedAt: &nilTime,
		Result:      &nilResult,
	})
}

// Block adds the edge "taskID is blocked by blockerID" after validating
// sanity and acyclicity (spec §3 invariants 3, 4).
func (s *Service) Block(ctx context.Context, taskID, blockerID string) error {
	if err := validateTaskID(taskID); err != nil {
		return err
	}
	if err := validateTaskID(blockerID); err != nil {
		return err
	}
	task, err := s.store.GetTask(ctx, taskID)
	if err != nil {
		return err
	}
	blocker, err := s.store.GetTask(ctx, blockerID)
	if err != nil {
		return err
	}
	if err := checkBlockerSanity(ctx, s.store, task, blocker); err != nil {
		return err
	}
	if err := checkBlockerCycle(ctx, s.store, taskID, blockerID); err != nil {
		return err
	}
	return s.store.AddBlocker(ctx, taskID, blockerID)
}

// Unblock removes the edge, a no-op if it does not exist (spec "Round-trip
// / idempotence laws").
func (s *Service) Unblock(ctx context.Context, taskID, blockerID string) error {
	if err := validateTaskID(taskID); err != nil {
		return err
	}
	if err := validateTaskID(blockerID); err != nil {
		return err
	}
	return s.store.RemoveBlocker(ctx, taskID, blockerID)
}

// NextReady performs the DFS of spec §4.2 over scope (a milestone id) or
// every root if scope is nil.
func (s *Service) NextReady(ctx context.Context, scope *string) (*types.TaskWithContext, error) {
	var roots []*types.Task
	if scope != nil {
		if err := validateTaskID(*scope); err != nil {
			return nil, err
		}
		t, err := s.store.GetTask(ctx, *scope)
		if err != nil {
			return nil, err
		}
		roots = []*types.Task{t}
	} else {
		rs, err := s.store.ListRoots(ctx)
		if err != nil {
			return nil, err
		}
		roots = rs
	}

	for _, r := range roots {
		blocked, err := effectivelyBlocked(ctx, s.store, r)
		if err != nil {
			return nil, err
		}
		if blocked {
			continue
		}
		found, err := nextReadyFromNode(ctx, s.store, r)
		if err != nil {
			return nil, err
		}
		if found != nil {
			return assemble(ctx, s.store, found)
		}
	}
	return nil, nil
}

// ResolveStartTarget finds a concrete startable task id reachable from
// rootID (spec §4.2 "resolve_start_target").
func (s *Service) ResolveStartTarget(ctx context.Context, rootID string) (string, error) {
	if err := validateTaskID(rootID); err != nil {
		return "", err
	}
	return resolveStartTarget(ctx, s.store, rootID, map[string]bool{})
}

// Progress aggregates totals over root's subtree, or every root if root is
// nil (spec §4.2 "Progress aggregation").
func (s *Service) Progress(ctx context.Context, root *string) (*types.Progress, error) {
	var rootTask *types.Task
	if root != nil {
		if err := validateTaskID(*root); err != nil {
			return nil, err
		}
		t, err := s.store.GetTask(ctx, *root)
		if err != nil {
			return nil, err
		}
		rootTask = t
	}
	return progress(ctx, s.store, rootTask)
}

// Tree renders root's subtree, or every root's tree if root is nil (spec
// §4.2 "Tree rendering").
func (s *Service) Tree(ctx context.Context, root *string) ([]*types.TreeNode, error) {
	var roots []*types.Task
	if root != nil {
		if err := validateTaskID(*root); err != nil {
			return nil, err
		}
		t, err := s.store.GetTask(ctx, *root)
		if err != nil {
			return nil, err
		}
		roots = []*types.Task{t}
	} else {
		rs, err := s.store.ListRoots(ctx)
		if err != nil {
			return nil, err
		}
		roots = rs
	}

	var out []*types.TreeNode
	for _, r := range roots {
		node, err := buildTree(ctx, s.store, r)
		if err != nil {
			return nil, err
		}
		out = append(out, node)
	}
	return out, nil
}

// Search performs the case-insensitive substring match of spec §4.2
// "Search".
func (s *Service) Search(ctx context.Context, query string) ([]*types.Task, error) {
	return s.store.Search(ctx, query)
}

// AddLearning, ListLearnings, and DeleteLearning pass through to storage
// after id validation; learnings.add and learnings.list are thin reads
// with no traversal logic of their own (spec §4.1).
func (s *Service) AddLearning(ctx context.Context, taskID, content string) (*types.Learning, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}
	return s.store.AddLearning(ctx, taskID, content, taskID)
}

func (s *Service) ListLearnings(ctx context.Context, taskID string) ([]*types.Learning, error) {
	if err := validateTaskID(taskID); err != nil {
		return nil, err
	}
	return s.store.ListLearnings(ctx, taskID)
}

func (s *Service) DeleteLearning(ctx context.Context, id string) error {
	if err := types.ValidateID(id, types.LearningPrefix); err != nil {
		return err
	}
	return s.store.DeleteLearning(ctx, id)
}
