package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"strings"

	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/config"
	"github.com/nsyout/overseer/internal/logging"
	"github.com/nsyout/overseer/internal/storage"
	"github.com/nsyout/overseer/internal/storage/sqlite"
	"github.com/nsyout/overseer/internal/task"
	"github.com/nsyout/overseer/internal/vcs"
	"github.com/nsyout/overseer/internal/workflow"
)

// Version and Build are set at build time via -ldflags.
var (
	Version = "dev"
	Build   = "unknown"
)

// rootCtx, store, tasks, and flows are the shared, process-lifetime
// handles every subcommand's Run closes over, built once in
// PersistentPreRunE — the same globals-plus-PersistentPreRunE shape
// tysonthomas9-beads's cmd/bd uses for its own store/ctx wiring.
var (
	rootCtx = context.Background()
	cfg     *config.Config
	store   storage.Storage
	tasks   *task.Service
	flows   *workflow.Service
	logFile io.Closer
)

var rootCmd = &cobra.Command{
	Use:   "overseer",
	Short: "VCS-first task orchestration engine",
	Long: `overseer - Task Orchestration Engine

A hierarchical task tracker (milestone / task / subtask, depth <= 2) with
a VCS-first lifecycle: starting a task checks out a bookmark for it;
completing one commits the working copy, bubbles its learnings into its
parent, and auto-completes ancestors left with no pending work.

Environment Variables:
  OVERSEER_REPO_ROOT   Override the detected working-copy root
  OVERSEER_DB_PATH     Override the database path (default <repo_root>/.overseer/tasks.db)
  OVERSEER_LOG_FILE    Also rotate log output into this file
  OVERSEER_LOG_LEVEL   debug|info|warn|error (default info)
  OVERSEER_LOG_JSON    Emit JSON log lines instead of text

Every subcommand prints the stable JSON contract (spec §6): the bare
result object on success, {"error": "<message>"} on failure, exit code 1.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if cmd == rootCmd || cmd.Name() == "help" || strings.HasPrefix(cmd.CommandPath(), rootCmd.Name()+" completion") {
			return nil
		}
		return initServices()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if store != nil {
			_ = store.Close()
		}
		if logFile != nil {
			_ = logFile.Close()
		}
	},
	Run: func(cmd *cobra.Command, args []string) {
		if v, _ := cmd.Flags().GetBool("version"); v {
			fmt.Printf("overseer version %s (%s)\n", Version, Build)
			return
		}
		_ = cmd.Help()
	},
}

func init() {
	rootCmd.Flags().BoolP("version", "v", false, "Print version information")

	rootCmd.AddGroup(&cobra.Group{ID: "tasks", Title: "Task Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "learnings", Title: "Learning Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "data", Title: "Data Commands:"})
	rootCmd.AddGroup(&cobra.Group{ID: "admin", Title: "Admin Commands:"})
}

// initServices resolves config, opens storage, and wires the task and
// workflow services, shared by every subcommand invocation.
func initServices() error {
	logger, closer := logging.Setup()
	logFile = closer
	slog.SetDefault(logger)

	c, err := config.Load(".")
	if err != nil {
		return err
	}
	if err := c.EnsureStateDir(); err != nil {
		return err
	}
	cfg = c

	st, err := sqlite.New(rootCtx, cfg.DBPath)
	if err != nil {
		return err
	}
	store = st
	tasks = task.New(st)
	flows = workflow.New(st, vcs.NewJJ(cfg.RepoRoot))
	return nil
}

// Execute runs the root command, printing any top-level (pre-services)
// error as the stable error envelope before exiting non-zero.
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fail(err)
	}
}
