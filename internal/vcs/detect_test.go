package vcs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nsyout/overseer/internal/types"
)

func TestDetectRepoRoot_FindsJJ(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".jj"), 0o755); err != nil {
		t.Fatalf("mkdir .jj: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	found, kind, err := DetectRepoRoot(nested)
	if err != nil {
		t.Fatalf("DetectRepoRoot: %v", err)
	}
	if kind != KindJJ {
		t.Fatalf("expected KindJJ, got %v", kind)
	}
	if abs, _ := filepath.Abs(root); found != abs {
		t.Fatalf("expected root %s, got %s", abs, found)
	}
}

func TestDetectRepoRoot_FallsBackToGit(t *testing.T) {
	root := t.TempDir()
	if err := os.Mkdir(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}

	found, kind, err := DetectRepoRoot(root)
	if err != nil {
		t.Fatalf("DetectRepoRoot: %v", err)
	}
	if kind != KindGit {
		t.Fatalf("expected KindGit, got %v", kind)
	}
	if abs, _ := filepath.Abs(root); found != abs {
		t.Fatalf("expected root %s, got %s", abs, found)
	}
}

func TestDetectRepoRoot_NotARepository(t *testing.T) {
	root := t.TempDir()
	_, _, err := DetectRepoRoot(root)
	if !types.IsKind(err, types.KindNotARepository) {
		t.Fatalf("expected KindNotARepository, got %v", err)
	}
}
