package types

import (
	"errors"
	"fmt"
)

// Kind is the closed taxonomy of error categories the engine surfaces,
// both as typed values for in-process callers and as discriminable strings
// in the JSON error envelope (spec §6, §7).
type Kind string

const (
	KindNotFound          Kind = "NotFound"
	KindMaxDepthExceeded  Kind = "MaxDepthExceeded"
	KindParentCycle       Kind = "ParentCycle"
	KindBlockerCycle      Kind = "BlockerCycle"
	KindInvalidBlocker    Kind = "InvalidBlockerRelation"
	KindPendingChildren   Kind = "PendingChildren"
	KindTaskNotFound      Kind = "TaskNotFound"
	KindLearningNotFound  Kind = "LearningNotFound"
	KindNotARepository    Kind = "NotARepository"
	KindDirtyWorkingCopy  Kind = "DirtyWorkingCopy"
	KindNoStartableTask   Kind = "NoStartableTask"
	KindTaskBlocked       Kind = "TaskBlocked"
	KindStoreError        Kind = "StoreError"
	KindInvalidInput      Kind = "InvalidInput"
	KindVCSError          Kind = "VCSError"
	KindBookmarkExists    Kind = "BookmarkExists"
	KindBookmarkNotFound  Kind = "BookmarkNotFound"
	KindNothingToCommit   Kind = "NothingToCommit"
)

// remediation holds a short hint shown to human operators for a subset of
// kinds where one exists. Machine callers get the same message.
var remediation = map[Kind]string{
	KindDirtyWorkingCopy: "commit or stash first",
	KindNotARepository:   "run inside a working copy managed by the configured VCS backend",
	KindNoStartableTask:  "the subtree has no unblocked leaf; unblock a dependency first",
	KindTaskBlocked:      "unblock the task before starting it",
	KindPendingChildren:  "complete or delete remaining children first",
}

// Error is the engine's single error type. Every error that crosses a
// component boundary (storage, VCS, task service, workflow service) is
// either an *Error already or gets wrapped into one at the boundary.
type Error struct {
	Kind    Kind
	Message string
	Err     error
}

func (e *Error) Error() string {
	msg := e.Message
	if hint, ok := remediation[e.Kind]; ok && hint != "" {
		msg = msg + " (" + hint + ")"
	}
	if e.Err != nil {
		return msg + ": " + e.Err.Error()
	}
	return msg
}

func (e *Error) Unwrap() error { return e.Err }

// Is allows errors.Is(err, &Error{Kind: KindX}) style matching on Kind alone.
func (e *Error) Is(target error) bool {
	var t *Error
	if errors.As(target, &t) {
		return t.Kind == e.Kind
	}
	return false
}

// NewError constructs a typed error with an optional wrapped cause.
func NewError(kind Kind, message string, cause error) *Error {
	return &Error{Kind: kind, Message: message, Err: cause}
}

// Errorf constructs a typed error with a formatted message.
func Errorf(kind Kind, cause error, format string, args ...interface{}) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...), Err: cause}
}

// KindOf extracts the Kind of err if it is (or wraps) an *Error, otherwise
// returns the empty Kind.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsKind reports whether err is (or wraps) an *Error of the given kind.
func IsKind(err error, kind Kind) bool {
	return KindOf(err) == kind
}
