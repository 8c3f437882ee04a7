package sqlite

import (
	"context"
	"testing"
)

func TestAddBlocker_IdempotentAndQueryable(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	a := mustCreateTask(t, st, "a", nil)
	b := mustCreateTask(t, st, "b", nil)

	if err := st.AddBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("AddBlocker: %v", err)
	}
	if err := st.AddBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("AddBlocker (repeat): %v", err)
	}

	blockers, err := st.GetBlockers(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetBlockers: %v", err)
	}
	if len(blockers) != 1 || blockers[0] != b.ID {
		t.Fatalf("expected [%s], got %v", b.ID, blockers)
	}

	blocking, err := st.GetBlocking(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBlocking: %v", err)
	}
	if len(blocking) != 1 || blocking[0] != a.ID {
		t.Fatalf("expected [%s], got %v", a.ID, blocking)
	}
}

func TestRemoveBlocker(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	a := mustCreateTask(t, st, "a", nil)
	b := mustCreateTask(t, st, "b", nil)

	if err := st.AddBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("AddBlocker: %v", err)
	}
	if err := st.RemoveBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("RemoveBlocker: %v", err)
	}

	blockers, err := st.GetBlockers(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetBlockers: %v", err)
	}
	if len(blockers) != 0 {
		t.Fatalf("expected no blockers after removal, got %v", blockers)
	}
}

func TestRemoveBlocker_MissingEdgeIsNotAnError(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	a := mustCreateTask(t, st, "a", nil)
	b := mustCreateTask(t, st, "b", nil)

	if err := st.RemoveBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("RemoveBlocker on absent edge should be a no-op, got %v", err)
	}
}

func TestAddBlocker_CascadesOnDelete(t *testing.T) {
	st := setupTestStorage(t)
	ctx := context.Background()
	a := mustCreateTask(t, st, "a", nil)
	b := mustCreateTask(t, st, "b", nil)

	if err := st.AddBlocker(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("AddBlocker: %v", err)
	}
	if err := st.DeleteTask(ctx, b.ID); err != nil {
		t.Fatalf("DeleteTask: %v", err)
	}

	blockers, err := st.GetBlockers(ctx, a.ID)
	if err != nil {
		t.Fatalf("GetBlockers: %v", err)
	}
	if len(blockers) != 0 {
		t.Fatalf("expected blocker edge to cascade-delete with blocker task, got %v", blockers)
	}
}
