package sqlite

import (
	"context"
	"testing"

	"github.com/nsyout/overseer/internal/types"
)

func TestAddLearning_IdempotentBubble(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	parent := mustCreateTask(t, st, "parent", nil)
	child := mustCreateTask(t, st, "child", &parent.ID)

	first, err := st.AddLearning(ctx, parent.ID, "use context cancellation for shutdown", child.ID)
	if err != nil {
		t.Fatalf("AddLearning: %v", err)
	}
	second, err := st.AddLearning(ctx, parent.ID, "use context cancellation for shutdown", child.ID)
	if err != nil {
		t.Fatalf("AddLearning (repeat bubble): %v", err)
	}
	if first.ID != second.ID {
		t.Fatalf("expected repeated bubble to resolve to the same learning, got %s vs %s", first.ID, second.ID)
	}

	all, err := st.ListLearnings(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListLearnings: %v", err)
	}
	if len(all) != 1 {
		t.Fatalf("expected exactly one learning after idempotent bubble, got %d", len(all))
	}
}

func TestAddLearning_DistinctContentNotDeduped(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	parent := mustCreateTask(t, st, "parent", nil)
	child := mustCreateTask(t, st, "child", &parent.ID)

	if _, err := st.AddLearning(ctx, parent.ID, "learning one", child.ID); err != nil {
		t.Fatalf("AddLearning: %v", err)
	}
	if _, err := st.AddLearning(ctx, parent.ID, "learning two", child.ID); err != nil {
		t.Fatalf("AddLearning: %v", err)
	}

	all, err := st.ListLearnings(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListLearnings: %v", err)
	}
	if len(all) != 2 {
		t.Fatalf("expected two distinct learnings, got %d", len(all))
	}
}

func TestDeleteLearning(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	parent := mustCreateTask(t, st, "parent", nil)

	l, err := st.AddLearning(ctx, parent.ID, "direct learning", parent.ID)
	if err != nil {
		t.Fatalf("AddLearning: %v", err)
	}
	if err := st.DeleteLearning(ctx, l.ID); err != nil {
		t.Fatalf("DeleteLearning: %v", err)
	}

	all, err := st.ListLearnings(ctx, parent.ID)
	if err != nil {
		t.Fatalf("ListLearnings: %v", err)
	}
	if len(all) != 0 {
		t.Fatalf("expected no learnings after delete, got %d", len(all))
	}
}

func TestDeleteLearning_NotFound(t *testing.T) {
	st := setupTestStorage(t)
	err := st.DeleteLearning(context.Background(), "lrn_missing")
	if !types.IsKind(err, types.KindLearningNotFound) {
		t.Fatalf("expected KindLearningNotFound, got %v", err)
	}
}
