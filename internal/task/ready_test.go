package task

import (
	"context"
	"testing"

	"github.com/nsyout/overseer/internal/types"
)

func TestResolveStartTarget_ReturnsSelfWhenUnblocked(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()
	a := mustCreate(t, s, CreateInput{Description: "a"})

	target, err := s.ResolveStartTarget(ctx, a.ID)
	if err != nil {
		t.Fatalf("ResolveStartTarget: %v", err)
	}
	if target != a.ID {
		t.Fatalf("expected %s, got %s", a.ID, target)
	}
}

func TestResolveStartTarget_FollowsBlockerChain(t *testing.T) {
	s, _ := setupTestService(t)
	ctx := context.Background()
	a := mustCreate(t, s, CreateInput{Description: "a"})
	b := mustCreate(t, s, CreateInput{Description: "b"})
	c := mustCreate(t, s, CreateInput{Description: "c"})

	// a blocked by b, b blocked by c, c blocked by d. Closing the loop with
	// d blocked by a is rejected at Block time, so the chain stays acyclic
	// and ends at d.
	if err := s.Block(ctx, a.ID, b.ID); err != nil {
		t.Fatalf("Block(a, b): %v", err)
	}
	if err := s.Block(ctx, b.ID, c.ID); err != nil {
		t.Fatalf("Block(b, c): %v", err)
	}
	d := mustCreate(t, s, CreateInput{Description: "d"})
	if err := s.Block(ctx, c.ID, d.ID); err != nil {
		t.Fatalf("Block(c, d): %v", err)
	}
	if err := s.Block(ctx, d.ID, a.ID); err == nil {
		t.Fatalf("expected Block(d, a) to be rejected as a cycle")
	}

	// d has no blockers of its own, so resolving from a should land on d.
	target, err := s.ResolveStartTarget(ctx, a.ID)
	if err != nil {
		t.Fatalf("ResolveStartTarget: %v", err)
	}
	if target != d.ID {
		t.Fatalf("expected to resolve down the blocker chain to %s, got %s", d.ID, target)
	}
}

func TestResolveStartTarget_UnknownTaskIsNotFound(t *testing.T) {
	s, _ := setupTestService(t)
	_, err := s.ResolveStartTarget(context.Background(), types.NewTaskID())
	if !types.IsKind(err, types.KindTaskNotFound) {
		t.Fatalf("expected KindTaskNotFound, got %v", err)
	}
}
