package main

import (
	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/contract"
)

var taskNextReadyCmd = &cobra.Command{
	Use:   "next-ready [scope]",
	Short: "Find the next unblocked leaf, depth-first, under scope (or every root)",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var scope *string
		if len(args) == 1 {
			scope = &args[0]
		}
		found, err := tasks.NextReady(rootCtx, scope)
		if err != nil {
			fail(err)
		}
		if found == nil {
			printResult(nil)
			return
		}
		view, err := contract.FromTaskWithContext(rootCtx, store, found)
		if err != nil {
			fail(err)
		}
		printResult(view)
	},
}

var taskTreeCmd = &cobra.Command{
	Use:   "tree [root]",
	Short: "Render root's subtree, or every milestone's tree if omitted",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var root *string
		if len(args) == 1 {
			root = &args[0]
		}
		nodes, err := tasks.Tree(rootCtx, root)
		if err != nil {
			fail(err)
		}
		views := make([]*contract.TreeNode, 0, len(nodes))
		for _, n := range nodes {
			view, err := contract.FromTree(rootCtx, store, n)
			if err != nil {
				fail(err)
			}
			views = append(views, view)
		}
		printResult(views)
	},
}

var taskProgressCmd = &cobra.Command{
	Use:   "progress [root]",
	Short: "Aggregate completion totals over root's subtree, or every root",
	Args:  cobra.MaximumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		var root *string
		if len(args) == 1 {
			root = &args[0]
		}
		p, err := tasks.Progress(rootCtx, root)
		if err != nil {
			fail(err)
		}
		printResult(contract.FromProgress(p))
	},
}

var taskSearchCmd = &cobra.Command{
	Use:   "search <query>",
	Short: "Case-insensitive substring search over task description, context, and result",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ts, err := tasks.Search(rootCtx, args[0])
		if err != nil {
			fail(err)
		}
		views := make([]*contract.Task, 0, len(ts))
		for _, t := range ts {
			view, err := contract.FromTask(rootCtx, store, t)
			if err != nil {
				fail(err)
			}
			views = append(views, view)
		}
		printResult(views)
	},
}

func init() {
	taskCmd.AddCommand(taskNextReadyCmd, taskTreeCmd, taskProgressCmd, taskSearchCmd)
}
