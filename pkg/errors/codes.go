package errors

// ErrorCode represents a standardized way to categorize different types of errors.
type ErrorCode string

// Base error codes represent the fundamental categories of failures that can
// occur across any software system. These codes provide the foundation layer
// of error classification.
const (
	// ErrorCodeIO represents failures in input/output operations across any
	// system boundary. For fxkv this is almost always a filesystem operation
	// on a tree payload file or on the transaction log.
	ErrorCodeIO ErrorCode = "IO_ERROR"

	// ErrorCodeInvalidInput represents client-side errors where the provided
	// data doesn't meet the system's requirements or constraints, such as a
	// transaction indexing a tree it never named or naming the same tree
	// twice.
	ErrorCodeInvalidInput ErrorCode = "INVALID_INPUT"

	// ErrorCodeInternal represents unexpected system failures that don't fit
	// into other categories. These indicate bugs or assertion failures that
	// shouldn't occur during normal operation.
	ErrorCodeInternal ErrorCode = "INTERNAL_ERROR"
)

// Storage-specific error codes extend the base taxonomy to cover the failure
// modes of the paged, append-only files that back each tree and the
// transaction log.
const (
	// ErrorCodeSerialization indicates that an index-snapshot body read back
	// from a payload file failed to decode. Snapshot bodies are written by
	// the owning process, so a decode failure means the file is damaged and
	// recovery cannot proceed.
	ErrorCodeSerialization ErrorCode = "SERIALIZATION_ERROR"

	// ErrorCodeRecoveryFailed indicates that reconstructing a tree's index or
	// the transaction log's durable watermark from disk was unsuccessful.
	// Errors carrying this code are fatal to database open.
	ErrorCodeRecoveryFailed ErrorCode = "RECOVERY_FAILED"
)

// Transaction-specific error codes cover the coordination layer: the commit
// sequencer and the per-tree queue locks.
const (
	// ErrorCodeSequencerStopped indicates a commit was submitted after the
	// sequencer's background loop has terminated, or was still pending when
	// it terminated, either through shutdown or because an I/O failure
	// poisoned the batch. A drop submitted then is discarded without an error.
	ErrorCodeSequencerStopped ErrorCode = "SEQUENCER_STOPPED"

	// ErrorCodeWaiterLost indicates a blocked lock waiter's one-shot channel
	// was abandoned without a signal. This should not occur in normal
	// operation and is reported as an internal condition.
	ErrorCodeWaiterLost ErrorCode = "WAITER_LOST"
)
