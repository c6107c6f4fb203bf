package errors

// TransactionError is a specialized error type for failures in the
// transaction layer: lock acquisition, commit submission and durability
// acknowledgement. It records which transaction and, when relevant, which
// tree was involved.
type TransactionError struct {
	*coreError
	transactionID uint64 // The sequencer-assigned id of the failing transaction.
	tree          string // The tree being operated on, when the failure is tree-scoped.
	operation     string // The operation in flight: "commit", "rollback", "lock", "set", ...
}

// NewTransactionError creates a new transaction-specific error.
func NewTransactionError(err error, code ErrorCode, msg string) *TransactionError {
	return &TransactionError{coreError: newCoreError(code, msg, err)}
}

// WithTransactionID records which transaction the failure belongs to.
func (te *TransactionError) WithTransactionID(id uint64) *TransactionError {
	te.transactionID = id
	return te
}

// WithTree captures which tree was being operated on.
func (te *TransactionError) WithTree(tree string) *TransactionError {
	te.tree = tree
	return te
}

// WithOperation records the operation that was in flight.
func (te *TransactionError) WithOperation(operation string) *TransactionError {
	te.operation = operation
	return te
}

// WithDetail adds contextual information, returning the TransactionError so calls chain.
func (te *TransactionError) WithDetail(key string, value any) *TransactionError {
	te.detail(key, value)
	return te
}

// TransactionID returns the id of the transaction the failure belongs to.
func (te *TransactionError) TransactionID() uint64 {
	return te.transactionID
}

// Tree returns the tree that was being operated on, if any.
func (te *TransactionError) Tree() string {
	return te.tree
}

// Operation returns the operation that was in flight.
func (te *TransactionError) Operation() string {
	return te.operation
}
