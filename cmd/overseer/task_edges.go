package main

import (
	"github.com/spf13/cobra"
)

var taskBlockCmd = &cobra.Command{
	Use:   "block <id> <blocker-id>",
	Short: "Record that id is blocked by blocker-id",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := tasks.Block(rootCtx, args[0], args[1]); err != nil {
			fail(err)
		}
		printResult(map[string]string{"blocked": args[0], "by": args[1]})
	},
}

var taskUnblockCmd = &cobra.Command{
	Use:   "unblock <id> <blocker-id>",
	Short: "Remove a blocked-by edge, a no-op if it does not exist",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		if err := tasks.Unblock(rootCtx, args[0], args[1]); err != nil {
			fail(err)
		}
		printResult(map[string]string{"unblocked": args[0], "from": args[1]})
	},
}

func init() {
	taskCmd.AddCommand(taskBlockCmd, taskUnblockCmd)
}
