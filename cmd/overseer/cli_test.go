package main

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"sync"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"github.com/nsyout/overseer/internal/config"
)

// In-process CLI tests in the manner of tysonthomas9-beads's
// cmd/bd/cli_fast_test.go: call rootCmd.Execute directly against a fresh
// per-test database instead of spawning a subprocess. Global cobra/viper
// state is not safe for concurrent use, so every invocation serializes on
// runMutex.
var runMutex sync.Mutex

// newTestRepo points OVERSEER_REPO_ROOT/OVERSEER_DB_PATH at a fresh temp
// directory for the life of the calling test, so every runOverseer call
// within one test shares the same database.
func newTestRepo(t *testing.T) {
	t.Helper()
	repoRoot := t.TempDir()
	t.Setenv(config.EnvRepoRoot, repoRoot)
	t.Setenv(config.EnvDBPath, repoRoot+"/tasks.db")
}

// runOverseer executes args against the test's repo root (see
// newTestRepo), returning captured stdout. Fails the test if the command
// exits non-zero.
func runOverseer(t *testing.T, args ...string) string {
	t.Helper()
	runMutex.Lock()
	defer runMutex.Unlock()

	oldStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("create pipe: %v", err)
	}
	os.Stdout = w

	resetGlobals()
	rootCmd.SetArgs(args)
	runErr := rootCmd.Execute()

	w.Close()
	os.Stdout = oldStdout
	var buf bytes.Buffer
	buf.ReadFrom(r)

	closeGlobals()
	resetFlags()

	if runErr != nil {
		t.Fatalf("overseer %v returned an error: %v\noutput: %s", args, runErr, buf.String())
	}
	return buf.String()
}

// resetGlobals clears the process-lifetime handles root.go's
// PersistentPreRunE rebuilds on the next Execute call, so one test's
// store/config cannot leak into the next.
func resetGlobals() {
	cfg = nil
	store = nil
	tasks = nil
	flows = nil
	logFile = nil
}

func closeGlobals() {
	if store != nil {
		_ = store.Close()
	}
	if logFile != nil {
		_ = logFile.Close()
	}
}

// resetFlags restores every flag-bound package var to its zero value and
// clears pflag's Changed bit, so a flag set in one runOverseer call (e.g.
// --priority) cannot leak into the next: pflag only updates Changed when a
// flag is actually parsed, it never resets it back to false on its own.
func resetFlags() {
	createParent, createContext, createPriority = "", "", 0
	listParent, listCompleted, listIncomplete, listReady, listNotReady = "", false, false, false, false
	updateDescription, updateContext, updatePriority = "", "", 0
	updateParent, updateClearParent = "", false
	updateResult, updateClearResult = "", false
	completeResult, completeLearning = "", nil
	exportOut, importIn = "", ""

	for _, cmd := range []*cobra.Command{
		taskCreateCmd, taskListCmd, taskUpdateCmd,
		taskCompleteCmd, dataExportCmd, dataImportCmd,
	} {
		cmd.Flags().VisitAll(func(f *pflag.Flag) {
			f.Changed = false
		})
	}
}

func firstJSONValue(t *testing.T, out string) map[string]interface{} {
	t.Helper()
	start := strings.Index(out, "{")
	if start == -1 {
		t.Fatalf("no JSON object found in output: %s", out)
	}
	var v map[string]interface{}
	if err := json.Unmarshal([]byte(out[start:]), &v); err != nil {
		t.Fatalf("parse JSON output: %v\noutput: %s", err, out)
	}
	return v
}

func TestCLI_CreateAndGet(t *testing.T) {
	newTestRepo(t)
	out := runOverseer(t, "task", "create", "Ship the release", "--priority", "1")
	created := firstJSONValue(t, out)
	id, _ := created["id"].(string)
	if id == "" {
		t.Fatalf("expected a task id in create output, got: %s", out)
	}

	out = runOverseer(t, "task", "get", id)
	got := firstJSONValue(t, out)
	if got["description"] != "Ship the release" {
		t.Errorf("expected description to round-trip, got: %v", got["description"])
	}
}

func TestCLI_StartCompleteLifecycle(t *testing.T) {
	newTestRepo(t)
	out := runOverseer(t, "task", "create", "Write the changelog")
	created := firstJSONValue(t, out)
	id := created["id"].(string)

	out = runOverseer(t, "task", "complete", id, "--result", "done", "--learning", "keep entries terse")
	completed := firstJSONValue(t, out)
	if completed["completed"] != true {
		t.Errorf("expected completed=true after task complete, got: %v", completed["completed"])
	}
}

func TestCLI_BlockUnblock(t *testing.T) {
	newTestRepo(t)
	a := firstJSONValue(t, runOverseer(t, "task", "create", "Task A"))["id"].(string)
	b := firstJSONValue(t, runOverseer(t, "task", "create", "Task B"))["id"].(string)

	runOverseer(t, "task", "block", a, b)
	got := firstJSONValue(t, runOverseer(t, "task", "get", a))
	blockedBy, _ := got["blockedBy"].([]interface{})
	if len(blockedBy) != 1 || blockedBy[0] != b {
		t.Fatalf("expected %s to be blocked by %s, got: %v", a, b, blockedBy)
	}

	runOverseer(t, "task", "unblock", a, b)
	got = firstJSONValue(t, runOverseer(t, "task", "get", a))
	blockedBy, _ = got["blockedBy"].([]interface{})
	if len(blockedBy) != 0 {
		t.Fatalf("expected no blockers after unblock, got: %v", blockedBy)
	}
}

func TestCLI_NextReadyReturnsNullWhenEmpty(t *testing.T) {
	newTestRepo(t)
	out := strings.TrimSpace(runOverseer(t, "task", "next-ready"))
	if out != "null" {
		t.Errorf("expected bare null for next-ready with no tasks, got: %q", out)
	}
}

func TestCLI_ExportImportRoundTrip(t *testing.T) {
	newTestRepo(t)
	runOverseer(t, "task", "create", "Milestone task")
	exportDir := t.TempDir()
	snapshot := exportDir + "/snapshot.jsonl"

	runOverseer(t, "data", "export", "--out", snapshot)
	if _, err := os.Stat(snapshot); err != nil {
		t.Fatalf("expected export file to exist: %v", err)
	}

	// Import into a fresh database: the snapshot's task ids already exist in
	// the one it was exported from.
	newTestRepo(t)
	out := runOverseer(t, "data", "import", "--in", snapshot)
	result := firstJSONValue(t, out)
	if result["tasksImported"].(float64) < 1 {
		t.Errorf("expected at least one task imported, got: %v", result["tasksImported"])
	}
}

func TestCLI_DoctorReportsStorageHealth(t *testing.T) {
	newTestRepo(t)
	out := runOverseer(t, "doctor")
	report := firstJSONValue(t, out)
	if report["storageOk"] != true {
		t.Errorf("expected storageOk=true against a fresh database, got: %v", report["storageOk"])
	}
}
