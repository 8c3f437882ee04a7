// Package types holds the domain model shared by every layer of the
// engine: tasks, learnings, blocker edges, the id scheme, stable ordering,
// and the closed error taxonomy (spec §3, §7, §9).
package types

import (
	"crypto/rand"
	"fmt"
	"strings"
	"time"

	"github.com/oklog/ulid/v2"
)

// Id prefixes. Every identifier referenced by a foreign key is validated to
// carry the right one at both the API boundary and the storage layer
// (spec §3 invariant 6).
const (
	TaskPrefix     = "task_"
	LearningPrefix = "lrn_"

	// ulidLen is the length of the sortable suffix: 26 characters of
	// Crockford base32, matching a standard ULID's textual encoding.
	ulidLen = 26
)

// entropy is a package-level ULID entropy source. ULID generation itself is
// not required to be cryptographically unpredictable, only monotonic and
// collision-resistant within a millisecond tick, so a single shared reader
// is safe to reuse across calls.
var entropy = ulid.Monotonic(rand.Reader, 0)

// NewTaskID returns a new prefix-tagged, time-sortable task id.
func NewTaskID() string {
	return TaskPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// NewLearningID returns a new prefix-tagged, time-sortable learning id.
func NewLearningID() string {
	return LearningPrefix + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

// ValidateID checks that id carries the given prefix and that the suffix is
// the right length. It does not attempt to parse the ULID payload — the
// only parser this scheme has is this prefix-and-length check (spec §9).
func ValidateID(id, prefix string) error {
	if !strings.HasPrefix(id, prefix) {
		return NewError(KindInvalidInput, fmt.Sprintf("id %q must have prefix %q", id, prefix), nil)
	}
	if len(id) != len(prefix)+ulidLen {
		return NewError(KindInvalidInput, fmt.Sprintf("id %q has the wrong length for prefix %q", id, prefix), nil)
	}
	return nil
}

// IsTaskID reports whether id is well-formed as a task id.
func IsTaskID(id string) bool { return ValidateID(id, TaskPrefix) == nil }

// IsLearningID reports whether id is well-formed as a learning id.
func IsLearningID(id string) bool { return ValidateID(id, LearningPrefix) == nil }
