package main

import (
	"github.com/spf13/cobra"

	"github.com/nsyout/overseer/internal/contract"
	"github.com/nsyout/overseer/internal/task"
	"github.com/nsyout/overseer/internal/types"
)

var taskCmd = &cobra.Command{
	Use:     "task",
	GroupID: "tasks",
	Short:   "Create, inspect, and mutate tasks",
}

var (
	createParent   string
	createContext  string
	createPriority int
)

var taskCreateCmd = &cobra.Command{
	Use:   "create <description>",
	Short: "Create a new task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		in := task.CreateInput{Description: args[0], Context: createContext, Priority: createPriority}
		if createParent != "" {
			in.ParentID = &createParent
		}
		t, err := tasks.Create(rootCtx, in)
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

var taskGetCmd = &cobra.Command{
	Use:   "get <id>",
	Short: "Fetch a task with its context and learnings",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		tc, err := tasks.Get(rootCtx, args[0])
		if err != nil {
			fail(err)
		}
		view, err := contract.FromTaskWithContext(rootCtx, store, tc)
		if err != nil {
			fail(err)
		}
		printResult(view)
	},
}

var (
	listParent     string
	listCompleted  bool
	listIncomplete bool
	listReady      bool
	listNotReady   bool
)

var taskListCmd = &cobra.Command{
	Use:   "list",
	Short: "List tasks, optionally filtered",
	Run: func(cmd *cobra.Command, args []string) {
		filter := types.TaskFilter{}
		if listParent != "" {
			filter.ParentID = &listParent
		}
		switch {
		case listCompleted && listIncomplete:
			fail(types.NewError(types.KindInvalidInput, "--completed and --incomplete are mutually exclusive", nil))
		case listCompleted:
			v := true
			filter.Completed = &v
		case listIncomplete:
			v := false
			filter.Completed = &v
		}
		switch {
		case listReady && listNotReady:
			fail(types.NewError(types.KindInvalidInput, "--ready and --not-ready are mutually exclusive", nil))
		case listReady:
			v := true
			filter.Ready = &v
		case listNotReady:
			v := false
			filter.Ready = &v
		}

		ts, err := tasks.List(rootCtx, filter)
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

var (
	updateDescription string
	updateContext     string
	updatePriority    int
	updateParent      string
	updateClearParent bool
	updateResult      string
	updateClearResult bool
)

var taskUpdateCmd = &cobra.Command{
	Use:   "update <id>",
	Short: "Patch one or more mutable fields on a task",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		patch := types.TaskPatch{}
		if cmd.Flags().Changed("description") {
			patch.Description = &updateDescription
		}
		if cmd.Flags().Changed("context") {
			patch.Context = &updateContext
		}
		if cmd.Flags().Changed("priority") {
			patch.Priority = &updatePriority
		}
		if updateClearParent {
			var nilParent *string
			patch.ParentID = &nilParent
		} else if cmd.Flags().Changed("parent") {
			p := &updateParent
			patch.ParentID = &p
		}
		if updateClearResult {
			var nilResult *string
			patch.Result = &nilResult
		} else if cmd.Flags().Changed("result") {
			r := &updateResult
			patch.Result = &r
		}

		t, err := tasks.Update(rootCtx, args[0], patch)
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

var taskDeleteCmd = &cobra.Command{
	Use:   "delete <id>",
	Short: "Delete a task and its entire subtree",
	Args:  cobra.ExactArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		if err := flows.Delete(rootCtx, args[0]); err != nil {
			fail(err)
		}
		printResult(map[string]string{"deleted": args[0]})
	},
}

func init() {
	taskCreateCmd.Flags().StringVar(&createParent, "parent", "", "Parent task id")
	taskCreateCmd.Flags().StringVar(&createContext, "context", "", "Free-text context")
	taskCreateCmd.Flags().IntVar(&createPriority, "priority", 0, "Priority 1-5 (default 3)")

	taskListCmd.Flags().StringVar(&listParent, "parent", "", "Only children of this task id")
	taskListCmd.Flags().BoolVar(&listCompleted, "completed", false, "Only completed tasks")
	taskListCmd.Flags().BoolVar(&listIncomplete, "incomplete", false, "Only incomplete tasks")
	taskListCmd.Flags().BoolVar(&listReady, "ready", false, "Only effectively unblocked tasks")
	taskListCmd.Flags().BoolVar(&listNotReady, "not-ready", false, "Only effectively blocked tasks")

	taskUpdateCmd.Flags().StringVar(&updateDescription, "description", "", "New description")
	taskUpdateCmd.Flags().StringVar(&updateContext, "context", "", "New context")
	taskUpdateCmd.Flags().IntVar(&updatePriority, "priority", 0, "New priority 1-5")
	taskUpdateCmd.Flags().StringVar(&updateParent, "parent", "", "New parent task id")
	taskUpdateCmd.Flags().BoolVar(&updateClearParent, "clear-parent", false, "Reparent to a root task")
	taskUpdateCmd.Flags().StringVar(&updateResult, "result", "", "New result text")
	taskUpdateCmd.Flags().BoolVar(&updateClearResult, "clear-result", false, "Clear the result field")

	taskCmd.AddCommand(taskCreateCmd, taskGetCmd, taskListCmd, taskUpdateCmd, taskDeleteCmd)
	rootCmd.AddCommand(taskCmd)
}
