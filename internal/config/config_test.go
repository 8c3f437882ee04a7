package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/nsyout/overseer/internal/vcs"
)

func TestLoad_DetectsRepoRootUpward(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".jj"), 0o755); err != nil {
		t.Fatalf("mkdir .jj: %v", err)
	}
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0o755); err != nil {
		t.Fatalf("mkdir nested: %v", err)
	}

	cfg, err := Load(nested)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	resolvedRoot, err := filepath.EvalSymlinks(root)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	resolvedCfgRoot, err := filepath.EvalSymlinks(cfg.RepoRoot)
	if err != nil {
		t.Fatalf("EvalSymlinks: %v", err)
	}
	if resolvedCfgRoot != resolvedRoot {
		t.Fatalf("expected repo root %s, got %s", resolvedRoot, resolvedCfgRoot)
	}
	if cfg.VCSKind != vcs.KindJJ {
		t.Fatalf("expected KindJJ, got %s", cfg.VCSKind)
	}
	wantDB := filepath.Join(resolvedRoot, ".overseer", "tasks.db")
	if cfg.DBPath != wantDB {
		t.Fatalf("expected db path %s, got %s", wantDB, cfg.DBPath)
	}
}

func TestLoad_EnvOverridesRepoRootAndDBPath(t *testing.T) {
	root := t.TempDir()
	if err := os.MkdirAll(filepath.Join(root, ".git"), 0o755); err != nil {
		t.Fatalf("mkdir .git: %v", err)
	}
	dbPath := filepath.Join(t.TempDir(), "custom.db")

	t.Setenv(EnvRepoRoot, root)
	t.Setenv(EnvDBPath, dbPath)

	cfg, err := Load(t.TempDir())
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.RepoRoot != root {
		t.Fatalf("expected repo root %s, got %s", root, cfg.RepoRoot)
	}
	if cfg.DBPath != dbPath {
		t.Fatalf("expected db path %s, got %s", dbPath, cfg.DBPath)
	}
}

func TestLoad_NoRepositoryPropagatesError(t *testing.T) {
	_, err := Load(t.TempDir())
	if err == nil {
		t.Fatalf("expected an error for a directory with no .jj or .git")
	}
}
