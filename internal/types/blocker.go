package types

// BlockerEdge is an unordered pair (TaskID, BlockerID) meaning "TaskID
// cannot start until BlockerID is completed" (spec §3). Blocker edges form
// a DAG independent of the parent/child tree.
type BlockerEdge struct {
	TaskID    string
	BlockerID string
}
