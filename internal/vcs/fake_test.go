package vcs

import (
	"context"
	"testing"

	"github.com/nsyout/overseer/internal/types"
)

func TestFake_CreateBookmarkIdempotencySignal(t *testing.T) {
	f := NewFake()
	ctx := context.Background()

	if err := f.CreateBookmark(ctx, "task/1", ""); err != nil {
		t.Fatalf("CreateBookmark: %v", err)
	}
	err := f.CreateBookmark(ctx, "task/1", "")
	if !types.IsKind(err, types.KindBookmarkExists) {
		t.Fatalf("expected KindBookmarkExists, got %v", err)
	}
}

func TestFake_CheckoutRequiresCleanWorkingCopy(t *testing.T) {
	f := NewFake()
	ctx := context.Background()
	if err := f.CreateBookmark(ctx, "task/1", ""); err != nil {
		t.Fatalf("CreateBookmark: %v", err)
	}

	f.SetDirty(true)
	err := f.Checkout(ctx, "task/1")
	if !types.IsKind(err, types.KindDirtyWorkingCopy) {
		t.Fatalf("expected KindDirtyWorkingCopy, got %v", err)
	}
}

func TestFake_CommitNothingToCommit(t *testing.T) {
	f := NewFake()
	ctx := context.Background()
	_, err := f.Commit(ctx, "no changes here")
	if !types.IsKind(err, types.KindNothingToCommit) {
		t.Fatalf("expected KindNothingToCommit, got %v", err)
	}
}

func TestFake_CommitAdvancesHead(t *testing.T) {
	f := NewFake()
	ctx := context.Background()
	before, err := f.CurrentCommitID(ctx)
	if err != nil {
		t.Fatalf("CurrentCommitID: %v", err)
	}

	f.SetDirty(true)
	after, err := f.Commit(ctx, "did work")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if after == before {
		t.Fatalf("expected commit to advance head, got same id %s", after)
	}
}

func TestFake_DeleteBookmarkNotFound(t *testing.T) {
	f := NewFake()
	err := f.DeleteBookmark(context.Background(), "task/missing")
	if !types.IsKind(err, types.KindBookmarkNotFound) {
		t.Fatalf("expected KindBookmarkNotFound, got %v", err)
	}
}
