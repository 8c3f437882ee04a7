package main

import (
	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/contract"
)

var learningCmd = &cobra.Command{
	Use:     "learning",
	GroupID: "learnings",
	Short:   "Attach and inspect learnings on a task",
}

var learningAddCmd = &cobra.Command{
	Use:   "add <task-id> <content>",
	Short: "Attach a learning to a task, attributed to itself",
	Args:  cobra.ExactArgs(2),
	Run: func(cmd *cobra.Command, args []string) {
		l, err := tasks.AddLearning(rootCtx, args[0], args[1])
		if err != nil {
			fail(err)
		}
		printResult(contract.Learning{
			ID: l.ID, TaskID: l.TaskID, Content: l.Content,
			SourceTaskID: l.SourceTaskID, CreatedAt: l.CreatedAt,
		})
	},
}

var learningListCmd = &cobra.Command{
	Use:   "list <task-id>",
	Short: "List every learning directly attached to a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		ls, err := tasks.ListLearnings(rootCtx, args[0])
		if err != nil {
			fail(err)
		}
		views := make([]contract.Learning, 0, len(ls))
		for _, l := range ls {
			views = append(views, contract.Learning{
				ID: l.ID, TaskID: l.TaskID, Content: l.Content,
				SourceTaskID: l.SourceTaskID, CreatedAt: l.CreatedAt,
			})
		}
		printResult(views)
	},
}

var learningDeleteCmd = &cobra.Command{
	Use:   "delete <learning-id>",
	Short: "Delete a single learning by id",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := tasks.DeleteLearning(rootCtx, args[0]); err != nil {
			fail(err)
		}
		printResult(map[string]string{"deleted": args[0]})
	},
}

func init() {
	learningCmd.AddCommand(learningAddCmd, learningListCmd, learningDeleteCmd)
	rootCmd.AddCommand(learningCmd)
}
