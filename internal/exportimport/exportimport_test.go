package exportimport

import (
	"bytes"
	"context"
	"strings"
	"testing"

	"github.com/nsyout/overseer/internal/storage/sqlite"
	"github.com/nsyout/overseer/internal/task"
)

func TestExportImport_RoundTripReproducesGraph(t *testing.T) {
	ctx := context.Background()
	src, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(src): %v", err)
	}
	t.Cleanup(func() { _ = src.Close() })
	ts := task.New(src)

	m, err := ts.Create(ctx, task.CreateInput{Description: "milestone"})
	if err != nil {
		t.Fatalf("Create(milestone): %v", err)
	}
	a, err := ts.Create(ctx, task.CreateInput{Description: "task a", ParentID: &m.ID})
	if err != nil {
		t.Fatalf("Create(a): %v", err)
	}
	b, err := ts.Create(ctx, task.CreateInput{Description: "task b", ParentID: &m.ID})
	if err != nil {
		t.Fatalf("Create(b): %v", err)
	}
	if err := ts.Block(ctx, b.ID, a.ID); err != nil {
		t.Fatalf("Block: %v", err)
	}
	if _, err := ts.AddLearning(ctx, a.ID, "watch out for rate limits"); err != nil {
		t.Fatalf("AddLearning: %v", err)
	}

	var buf bytes.Buffer
	if err := Export(ctx, src, &buf); err != nil {
		t.Fatalf("Export: %v", err)
	}
	exported := buf.String()

	lines := strings.Split(strings.TrimSpace(exported), "\n")
	if len(lines) != 5 { // 3 tasks + 1 learning + 1 blocker edge
		t.Fatalf("expected 5 export lines, got %d:\n%s", len(lines), exported)
	}
	if !strings.Contains(lines[0], `"kind":"task"`) {
		t.Fatalf("expected the first line to be the root task, got %s", lines[0])
	}

	dst, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New(dst): %v", err)
	}
	t.Cleanup(func() { _ = dst.Close() })

	result, err := Import(ctx, dst, strings.NewReader(exported))
	if err != nil {
		t.Fatalf("Import: %v", err)
	}
	if result.TasksImported != 3 || result.LearningsImported != 1 || result.BlockersImported != 1 {
		t.Fatalf("unexpected import counts: %+v", result)
	}

	dts := task.New(dst)
	gotA, err := dts.Get(ctx, a.ID)
	if err != nil {
		t.Fatalf("Get(a) after import: %v", err)
	}
	if gotA.Task.Description != "task a" || *gotA.Task.ParentID != m.ID {
		t.Fatalf("imported task a diverges from source: %+v", gotA.Task)
	}
	aLearnings, err := dts.ListLearnings(ctx, a.ID)
	if err != nil {
		t.Fatalf("ListLearnings(a) after import: %v", err)
	}
	if len(aLearnings) != 1 || aLearnings[0].Content != "watch out for rate limits" {
		t.Fatalf("expected a's learning to survive import, got %+v", aLearnings)
	}

	blockedBy, err := dst.GetBlockers(ctx, b.ID)
	if err != nil {
		t.Fatalf("GetBlockers(b) after import: %v", err)
	}
	if len(blockedBy) != 1 || blockedBy[0] != a.ID {
		t.Fatalf("expected b blocked by a after import, got %v", blockedBy)
	}

	var buf2 bytes.Buffer
	if err := Export(ctx, dst, &buf2); err != nil {
		t.Fatalf("re-Export: %v", err)
	}
	lines2 := strings.Split(strings.TrimSpace(buf2.String()), "\n")
	if len(lines2) != len(lines) {
		t.Fatalf("re-export line count diverged: %d vs %d", len(lines2), len(lines))
	}
}

func TestImport_AbortsOnForwardParentReference(t *testing.T) {
	ctx := context.Background()
	dst, err := sqlite.New(ctx, ":memory:")
	if err != nil {
		t.Fatalf("sqlite.New: %v", err)
	}
	t.Cleanup(func() { _ = dst.Close() })

	stream := `{"kind":"task","task":{"ID":"t-child","ParentID":"t-parent","Description":"child"}}
{"kind":"task","task":{"ID":"t-parent","Description":"parent"}}
`
	if _, err := Import(ctx, dst, strings.NewReader(stream)); err == nil {
		t.Fatalf("expected an error for a parent referenced before it appears")
	}

	tasks, err := dst.ListRoots(ctx)
	if err != nil {
		t.Fatalf("ListRoots: %v", err)
	}
	if len(tasks) != 0 {
		t.Fatalf("expected the aborted import to leave no rows behind, got %d roots", len(tasks))
	}
}
