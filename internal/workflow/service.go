// Package workflow composes the task service with a VCS backend to
// implement start, complete, and delete under the VCS-first ordering rule:
// every mutation touches the working copy before the database records new
// state (spec §4.3).
package workflow

import (
	"context"
	"time"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/task"
	"github.com/nsyout/overseer/internal/types"
	"github.com/nsyout/overseer/internal/vcs"
)

// Service is the workflow service. Like task.Service it holds no lifecycle
// state beyond the storage handle and VCS backend it was built with.
type Service struct {
	store storage.Storage
	tasks *task.Service
	vcs   vcs.Backend
}

// New returns a Service backed by store and backend.
func New(store storage.Storage, backend vcs.Backend) *Service {
	return &Service{store: store, tasks: task.New(store), vcs: backend}
}

// CompleteInput carries the optional fields a caller supplies to Complete.
type CompleteInput struct {
	Result    *string
	Learnings []string
}

// Start implements spec §4.3 "start(id)". It resolves the actual task to
// start via resolve_start_target, then drives the working copy onto that
// task's bookmark before recording the new state.
func (s *Service) Start(ctx context.Context, id string) (*types.Task, error) {
	targetID, err := s.tasks.ResolveStartTarget(ctx, id)
	if err != nil {
		return nil, err
	}

	blocked, err := task.EffectivelyBlocked(ctx, s.store, targetID)
	if err != nil {
		return nil, err
	}
	if blocked {
		return nil, types.NewError(types.KindTaskBlocked, "resolved start target "+targetID+" is blocked", nil)
	}

	target, err := s.store.GetTask(ctx, targetID)
	if err != nil {
		return nil, err
	}

	bookmark := bookmarkNameFor(target)
	if err := s.vcs.CreateBookmark(ctx, bookmark, "@"); err != nil && !types.IsKind(err, types.KindBookmarkExists) {
		return nil, err
	}
	if err := s.vcs.Checkout(ctx, bookmark); err != nil {
		return nil, err
	}
	commitID, err := s.vcs.CurrentCommitID(ctx)
	if err != nil {
		return nil, err
	}

	patch := types.TaskPatch{
		Bookmark:    strPatch(bookmark),
		StartCommit: strPatch(commitID),
	}
	if target.StartedAt == nil {
		now := time.Now()
		patch.StartedAt = timePatch(now)
		if err := s.propagateStartedAt(ctx, target, now); err != nil {
			return nil, err
		}
	}
	return s.store.UpdateTask(ctx, target.ID, patch)
}

// propagateStartedAt sets started_at on every ancestor of t that does not
// already have one, timestamp only (spec §4.3 step 6: "ancestors do not
// receive bookmarks").
func (s *Service) propagateStartedAt(ctx context.Context, t *types.Task, when time.Time) error {
	cur := t
	for cur.ParentID != nil {
		parent, err := s.store.GetTask(ctx, *cur.ParentID)
		if err != nil {
			return err
		}
		if parent.StartedAt == nil {
			if _, err := s.store.UpdateTask(ctx, parent.ID, types.TaskPatch{StartedAt: timePatch(when)}); err != nil {
				return err
			}
		}
		cur = parent
	}
	return nil
}

// Complete implements spec §4.3 "complete(id, {result?, learnings?})":
// commit the working copy, record completion and learnings inside one
// transaction (bubbling into the parent and auto-completing ancestors),
// then best-effort retire the bookmark.
func (s *Service) Complete(ctx context.Context, id string, in CompleteInput) (*types.Task, error) {
	if err := types.ValidateID(id, types.TaskPrefix); err != nil {
		return nil, err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return nil, err
	}
	pending, err := s.store.HasPendingChildren(ctx, id)
	if err != nil {
		return nil, err
	}
	if pending {
		return nil, types.NewError(types.KindPendingChildren, "task "+id+" has incomplete children", nil)
	}

	bookmark := bookmarkNameFor(t)
	if err := s.ensureCheckedOut(ctx, bookmark); err != nil {
		return nil, err
	}

	commitID, err := s.vcs.Commit(ctx, "complete "+id)
	if err != nil && !types.IsKind(err, types.KindNothingToCommit) {
		return nil, err
	}

	var completed *types.Task
	txErr := s.store.RunInTransaction(ctx, func(tx storage.TaskStore) error {
		now := time.Now()
		patch := types.TaskPatch{
			Completed:   boolPatch(true),
			CompletedAt: timePatch(now),
			CommitSHA:   strPatch(commitID),
		}
		if in.Result != nil {
			patch.Result = strPatch(*in.Result)
		}
		updated, err := tx.UpdateTask(ctx, id, patch)
		if err != nil {
			return err
		}
		completed = updated

		for _, content := range in.Learnings {
			if _, err := tx.AddLearning(ctx, id, content, id); err != nil {
				return err
			}
		}

		if t.ParentID == nil {
			return nil
		}
		if err := bubbleLearnings(ctx, tx, id, *t.ParentID); err != nil {
			return err
		}
		return autoBubbleComplete(ctx, tx, s.vcs, *t.ParentID)
	})
	if txErr != nil {
		return nil, txErr
	}

	if err := s.vcs.DeleteBookmark(ctx, bookmark); err == nil {
		if cleared, clearErr := s.store.UpdateTask(ctx, id, types.TaskPatch{Bookmark: clearStringPatch()}); clearErr == nil {
			completed = cleared
		}
	}
	// Any other delete_bookmark failure leaves the task record alone and
	// proceeds; the DB's completed state is already durable (spec §4.3 step 5).

	return completed, nil
}

// ensureCheckedOut checks out bookmark only if the working copy is not
// already sitting on the commit it names, so a dirty working copy holding
// the very changes being completed is never mistaken for "needs checkout"
// (spec §4.3 step 1).
func (s *Service) ensureCheckedOut(ctx context.Context, bookmark string) error {
	current, err := s.vcs.CurrentCommitID(ctx)
	if err != nil {
		return err
	}
	commits, err := s.vcs.Log(ctx, bookmark)
	if err != nil {
		return err
	}
	if len(commits) == 0 {
		// No bookmark exists yet for this task (complete() called without a
		// prior start()); nothing to check out to, proceed at the current
		// commit.
		return nil
	}
	if commits[0].ID == current {
		return nil
	}
	return s.vcs.Checkout(ctx, bookmark)
}

// bubbleLearnings copies every learning currently on fromTaskID (including
// ones just inserted by the caller) into toParentID, preserving each
// learning's original source_task_id (spec §4.3 step 4c).
func bubbleLearnings(ctx context.Context, tx storage.TaskStore, fromTaskID, toParentID string) error {
	learnings, err := tx.ListLearnings(ctx, fromTaskID)
	if err != nil {
		return err
	}
	for _, l := range learnings {
		if _, err := tx.AddLearning(ctx, toParentID, l.Content, l.SourceTaskID); err != nil {
			return err
		}
	}
	return nil
}

// autoBubbleComplete walks upward from parentID, completing each ancestor
// (DB only, no new commit) while it has no remaining incomplete children
// and is not itself effectively blocked (spec §4.3 step 6). A completed
// milestone additionally gets a best-effort sweep of every descendant
// bookmark.
func autoBubbleComplete(ctx context.Context, tx storage.TaskStore, backend vcs.Backend, parentID string) error {
	cur := parentID
	for {
		node, err := tx.GetTask(ctx, cur)
		if err != nil {
			return err
		}
		if node.Completed {
			return nil
		}
		pending, err := tx.HasPendingChildren(ctx, cur)
		if err != nil {
			return err
		}
		if pending {
			return nil
		}
		blocked, err := task.EffectivelyBlocked(ctx, tx, cur)
		if err != nil {
			return err
		}
		if blocked {
			return nil
		}

		now := time.Now()
		updated, err := tx.UpdateTask(ctx, cur, types.TaskPatch{
			Completed:   boolPatch(true),
			CompletedAt: timePatch(now),
		})
		if err != nil {
			return err
		}

		if updated.IsRoot() {
			return bestEffortClearSubtreeBookmarks(ctx, tx, backend, updated)
		}
		cur = *updated.ParentID
	}
}

// bestEffortClearSubtreeBookmarks deletes every descendant bookmark of a
// newly completed milestone. Depths 1 and 2 are every descendant a
// three-level tree can have, so this is a plain subtree walk (spec §4.3
// step 6).
func bestEffortClearSubtreeBookmarks(ctx context.Context, tx storage.TaskStore, backend vcs.Backend, root *types.Task) error {
	children, err := tx.GetChildrenOrdered(ctx, root.ID)
	if err != nil {
		return err
	}
	for _, c := range children {
		if c.Bookmark != nil {
			if err := backend.DeleteBookmark(ctx, *c.Bookmark); err == nil {
				if _, err := tx.UpdateTask(ctx, c.ID, types.TaskPatch{Bookmark: clearStringPatch()}); err != nil {
					return err
				}
			}
		}
		if err := bestEffortClearSubtreeBookmarks(ctx, tx, backend, c); err != nil {
			return err
		}
	}
	return nil
}

// Delete implements spec §4.3 "delete(id)": the storage cascade is
// authoritative; VCS bookmark cleanup is best-effort afterward.
func (s *Service) Delete(ctx context.Context, id string) error {
	if err := types.ValidateID(id, types.TaskPrefix); err != nil {
		return err
	}
	t, err := s.store.GetTask(ctx, id)
	if err != nil {
		return err
	}
	bookmarks, err := collectSubtreeBookmarks(ctx, s.store, t)
	if err != nil {
		return err
	}
	if err := s.store.DeleteTask(ctx, id); err != nil {
		return err
	}
	for _, name := range bookmarks {
		_ = s.vcs.DeleteBookmark(ctx, name)
	}
	return nil
}

func collectSubtreeBookmarks(ctx context.Context, ts storage.TaskStore, root *types.Task) ([]string, error) {
	var names []string
	if root.Bookmark != nil {
		names = append(names, *root.Bookmark)
	}
	children, err := ts.GetChildrenOrdered(ctx, root.ID)
	if err != nil {
		return nil, err
	}
	for _, c := range children {
		childNames, err := collectSubtreeBookmarks(ctx, ts, c)
		if err != nil {
			return nil, err
		}
		names = append(names, childNames...)
	}
	return names, nil
}

func bookmarkNameFor(t *types.Task) string {
	if t.Bookmark != nil && *t.Bookmark != "" {
		return *t.Bookmark
	}
	return vcs.BookmarkName(t.ID)
}

func strPatch(v string) **string {
	p := &v
	return &p
}

func clearStringPatch() **string {
	var p *string
	return &p
}

func timePatch(v time.Time) **time.Time {
	p := &v
	return &p
}

func boolPatch(v bool) *bool {
	return &v
}
