package types

import "errors"

// Standard error values. Operations return these (usually wrapped with
// context via fmt.Errorf and %w) so callers can classify failures with
// errors.Is without depending on message text.
var (
	// ErrNotFound indicates a referenced project or artifact does not exist.
	ErrNotFound = errors.New("not found")

	// ErrAlreadyExists indicates a project name or artifact ID collision on create.
	ErrAlreadyExists = errors.New("already exists")

	// ErrIDMismatch indicates the artifact ID in the request path disagrees
	// with the ID in the request body on update.
	ErrIDMismatch = errors.New("artifact ID mismatch")

	// ErrBadReference indicates a trace endpoint or requirement parent link
	// points at a missing or wrong-type artifact.
	ErrBadReference = errors.New("bad artifact reference")

	// ErrDuplicateTrace indicates a trace with the same source, target, and
	// type already exists.
	ErrDuplicateTrace = errors.New("duplicate trace")

	// ErrPolicyViolation indicates a project policy rejected the mutation
	// (single-parent enforcement or orphan prevention).
	ErrPolicyViolation = errors.New("policy violation")

	// ErrMalformedEntity indicates a structurally invalid entity payload:
	// a required field is missing or an enumerated field holds an
	// unrecognized value.
	ErrMalformedEntity = errors.New("malformed entity")

	// ErrCorruptStore indicates an on-disk file could not be read or parsed.
	ErrCorruptStore = errors.New("corrupt store")

	// ErrEmptyCommitMessage indicates a commit was requested with a blank message.
	ErrEmptyCommitMessage = errors.New("empty commit message")

	// ErrNothingToCommit indicates a commit was requested with a clean
	// working tree.
	ErrNothingToCommit = errors.New("nothing to commit")

	// ErrCommitFailed indicates the underlying version-control commit errored.
	ErrCommitFailed = errors.New("commit failed")
)
