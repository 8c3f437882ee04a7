package types

// Context carries the own/parent/milestone context strings assembled for a
// task read (spec §4.2 "Context and learning assembly"). Parent is present
// iff depth >= 1, Milestone iff depth >= 2.
type Context struct {
	Own       string
	Parent    *string
	Milestone *string
}

// LearningContext carries learnings inherited from the parent and the
// milestone, mirroring Context's depth rules.
type LearningContext struct {
	Parent    []*Learning
	Milestone []*Learning
}

// TaskWithContext is the enriched result returned by Get and NextReady
// (spec §4.2, §6).
type TaskWithContext struct {
	Task      *Task
	Depth     int
	BlockedBy []string
	Blocks    []string
	Context   Context
	Learnings LearningContext
}

// TreeNode is the recursive shape returned by Tree (spec §4.2).
type TreeNode struct {
	Task     *Task
	Children []*TreeNode
}

// Progress is the aggregate returned by Progress (spec §4.2).
type Progress struct {
	All        int
	Completed  int
	Incomplete int
	Blocked    int
	Ready      int
}
