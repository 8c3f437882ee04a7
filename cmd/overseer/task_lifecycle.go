package main

import (
	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/contract"
	"github.com/nsyout/overseer/internal/workflow"
)

var taskStartCmd = &cobra.Command{
	Use:   "start <id>",
	Short: "Resolve and check out the next startable task reachable from id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := flows.Start(rootCtx, args[0])
		if err != nil {
			fail(err)
		}
		view, err := contract.FromTask(rootCtx, store, t)
		if err != nil {
			fail(err)
		}
		printResult(view)
	},
}

var (
	completeResult   string
	completeLearning []string
)

var taskCompleteCmd = &cobra.Command{
	Use:   "complete <id>",
	Short: "Commit the working copy and mark a task complete",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := workflow.CompleteInput{Learnings: completeLearning}
		if cmd.Flags().Changed("result") {
			in.Result = &completeResult
		}
		t, err := flows.Complete(rootCtx, args[0], in)
		if err != nil {
			fail(err)
		}
		view, err := contract.FromTask(rootCtx, store, t)
		if err != nil {
			fail(err)
		}
		printResult(view)
	},
}

var taskReopenCmd = &cobra.Command{
	Use:   "reopen <id>",
	Short: "Clear completed/completed_at/result on a task (database only, no VCS step)",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		t, err := tasks.Reopen(rootCtx, args[0])
		if err != nil {
			fail(err)
		}
		view, err := contract.FromTask(rootCtx, store, t)
		if err != nil {
			fail(err)
		}
		printResult(view)
	},
}

func init() {
	taskCompleteCmd.Flags().StringVar(&completeResult, "result", "", "Result text to record")
	taskCompleteCmd.Flags().StringArrayVar(&completeLearning, "learning", nil, "Learning to attach (repeatable)")

	taskCmd.AddCommand(taskStartCmd, taskCompleteCmd, taskReopenCmd)
}
