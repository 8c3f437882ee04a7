package workflow

import (
	"context"
	"testing"

	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/storage/sqlite"
	"github.com/nsyout/overseer/internal/task"
	"github.com/nsyout/overseer/internal/types"
	"github.com/nsyout/overseer/internal/vcs"
)

func setupTestWorkflow(t *testing.T) (*Service, *task.Service, storage.Storage, *vcs.Fake) {
	t.Helper()
	st, err := sqlite.New(context.Background(), ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = st.Close() })
	fake := vcs.NewFake()
	return New(st, fake), task.New(st), st, fake
}

// Linear milestone scenario (spec §8 concrete scenario 1).
func TestStartComplete_LinearMilestone(t *testing.T) {
	wf, ts, _, fake := setupTestWorkflow(t)
	ctx := context.Background()

	p3 := 3
	m := mustCreateTask(t, ts, task.CreateInput{Description: "M", Priority: p3})
	p1, p2 := 1, 2
	t1 := mustCreateTask(t, ts, task.CreateInput{Description: "T1", ParentID: &m.ID, Priority: p1})
	t2 := mustCreateTask(t, ts, task.CreateInput{Description: "T2", ParentID: &m.ID, Priority: p2})

	started, err := wf.Start(ctx, t1.ID)
	if err != nil {
		t.Fatalf("Start(T1): %v", err)
	}
	wantBookmark := vcs.BookmarkName(t1.ID)
	if started.Bookmark == nil || *started.Bookmark != wantBookmark {
		t.Fatalf("expected bookmark %q, got %v", wantBookmark, started.Bookmark)
	}
	if started.StartedAt == nil {
		t.Fatalf("expected started_at to be set")
	}

	fake.SetDirty(true)
	if _, err := wf.Complete(ctx, t1.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete(T1): %v", err)
	}

	next, err := ts.NextReady(ctx, nil)
	if err != nil {
		t.Fatalf("NextReady: %v", err)
	}
	if next == nil || next.Task.ID != t2.ID {
		t.Fatalf("expected T2 next, got %+v", next)
	}

	fake.SetDirty(true)
	if _, err := wf.Complete(ctx, t2.ID, CompleteInput{}); err != nil {
		t.Fatalf("Complete(T2): %v", err)
	}

	milestone, err := ts.Get(ctx, m.ID)
	if err != nil {
		t.Fatalf("Get(M): %v", err)
	}
	if !milestone.Task.Completed {
		t.Fatalf("expected M to be auto-completed")
	}
}

// Learning bubble scenario (spec §8 concrete scenario 4).
func TestComplete_BubblesLearningsAndIsIdempotent(t *testing.T) {
	wf, ts, store, fake := setupTestWorkflow(t)
	ctx := context.Background()

	m := mustCreateTask(t, ts, task.CreateInput{Description: "M"})
	t1 := mustCreateTask(t, ts, task.CreateInput{Description: "T1", ParentID: &m.ID})

	fake.SetDirty(true)
	if _, err := wf.Complete(ctx, t1.ID, CompleteInput{Learnings: []string{"use bcrypt rounds >= 12"}}); err != nil {
		t.Fatalf("Complete(T1): %v", err)
	}

	parentLearnings, err := store.ListLearnings(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListLearnings(M): %v", err)
	}
	if len(parentLearnings) != 1 || parentLearnings[0].SourceTaskID != t1.ID {
		t.Fatalf("expected one bubbled learning attributed to T1, got %+v", parentLearnings)
	}

	// Reopen and complete again with the same learning: no duplicate.
	if _, err := ts.Reopen(ctx, t1.ID); err != nil {
		t.Fatalf("Reopen(T1): %v", err)
	}
	fake.SetDirty(true)
	if _, err := wf.Complete(ctx, t1.ID, CompleteInput{Learnings: []string{"use bcrypt rounds >= 12"}}); err != nil {
		t.Fatalf("Complete(T1) again: %v", err)
	}
	parentLearnings, err = store.ListLearnings(ctx, m.ID)
	if err != nil {
		t.Fatalf("ListLearnings(M) again: %v", err)
	}
	if len(parentLearnings) != 1 {
		t.Fatalf("expected bubble to stay idempotent, got %+v", parentLearnings)
	}
}

// Dirty-working-copy guard scenario (spec §8 concrete scenario 6).
func TestStart_DirtyWorkingCopyLeavesDBUnchanged(t *testing.T) {
	wf, ts, _, fake := setupTestWorkflow(t)
	ctx := context.Background()

	a := mustCreateTask(t, ts, task.CreateInput{Description: "a"})
	fake.SetDirty(true)

	_, err := wf.Start(ctx, a.ID)
	if !types.IsKind(err, types.KindDirtyWorkingCopy) {
		t.Fatalf("expected KindDirtyWorkingCopy, got %v", err)
	}

	got, err := ts.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got.Task.Bookmark != nil || got.Task.StartedAt != nil {
		t.Fatalf("expected no DB mutation, got %+v", got.Task)
	}
}

func TestComplete_RejectsPendingChildren(t *testing.T) {
	wf, ts, _, _ := setupTestWorkflow(t)
	ctx := context.Background()

	m := mustCreateTask(t, ts, task.CreateInput{Description: "M"})
	mustCreateTask(t, ts, task.CreateInput{Description: "T1", ParentID: &m.ID})

	_, err := wf.Complete(ctx, m.ID, CompleteInput{})
	if !types.IsKind(err, types.KindPendingChildren) {
		t.Fatalf("expected KindPendingChildren, got %v", err)
	}
}

func TestStart_ResolvesThroughBlockerChain(t *testing.T) {
	wf, ts, _, _ := setupTestWorkflow(t)
	ctx := context.Background()

	a := mustCreateTask(t, ts, task.CreateInput{Description: "a"})
	b := mustCreateTask(t, ts, task.CreateInput{Description: "b"})
	if err := ts.Block(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Block: %v", err)
	}

	// a's only blocker b is itself startable, so resolve_start_target
	// descends to b rather than surfacing TaskBlocked for a.
	started, err := wf.Start(ctx, a.ID)
	if err != nil {
		t.Fatalf("Start(a): %v", err)
	}
	if started.ID != b.ID {
		t.Fatalf("expected resolution to land on blocker b, got %s", started.ID)
	}
}

func TestDelete_BestEffortRetiresBookmarks(t *testing.T) {
	wf, ts, store, fake := setupTestWorkflow(t)
	ctx := context.Background()

	a := mustCreateTask(t, ts, task.CreateInput{Description: "a"})
	if _, err := wf.Start(ctx, a.ID); err != nil {
		t.Fatalf("Start: %v", err)
	}

	if err := wf.Delete(ctx, a.ID); err != nil {
		t.Fatalf("Delete: %v", err)
	}
	if _, err := store.GetTask(ctx, a.ID); !types.IsKind(err, types.KindTaskNotFound) {
		t.Fatalf("expected task gone, got %v", err)
	}
	bookmarks, err := fake.ListBookmarks(ctx)
	if err != nil {
		t.Fatalf("ListBookmarks: %v", err)
	}
	if len(bookmarks) != 0 {
		t.Fatalf("expected bookmark retired, got %v", bookmarks)
	}
}

func mustCreateTask(t *testing.T, ts *task.Service, in task.CreateInput) *types.Task {
	t.Helper()
	out, err := ts.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("Create(%+v): %v", in, err)
	}
	return out
}
