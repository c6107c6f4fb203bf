package errors

import (
	"fmt"
	"io"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestStorageErrorCarriesContext(t *testing.T) {
	err := NewStorageError(io.ErrUnexpectedEOF, ErrorCodeRecoveryFailed, "Failed to read record body").
		WithFileName("t1.tree").
		WithPath("/data/t1.tree").
		WithOffset(2048)

	require.Equal(t, ErrorCodeRecoveryFailed, err.Code())
	require.Equal(t, "t1.tree", err.FileName())
	require.Equal(t, int64(2048), err.Offset())
	require.ErrorIs(t, err, io.ErrUnexpectedEOF)
	require.Equal(t, "Failed to read record body: unexpected EOF", err.Error())
}

func TestTransactionErrorClassification(t *testing.T) {
	var err error = NewTransactionError(nil, ErrorCodeSequencerStopped, "Commit submitted after the sequencer stopped").
		WithTransactionID(42).
		WithOperation("commit")

	require.True(t, IsTransactionError(err))
	require.False(t, IsStorageError(err))

	te, ok := AsTransactionError(fmt.Errorf("begin: %w", err))
	require.True(t, ok)
	require.Equal(t, uint64(42), te.TransactionID())
	require.Equal(t, "commit", te.Operation())
}

func TestGetErrorCodeThroughWrapping(t *testing.T) {
	inner := NewValidationError(nil, ErrorCodeInvalidInput, "Tree names must be non-empty").
		WithField("name").
		WithRule("required")
	wrapped := fmt.Errorf("open tree: %w", inner)

	require.Equal(t, ErrorCodeInvalidInput, GetErrorCode(wrapped))
	require.True(t, IsValidationError(wrapped))
	require.Equal(t, ErrorCodeInternal, GetErrorCode(io.EOF))
}

func TestDetails(t *testing.T) {
	err := NewStorageError(nil, ErrorCodeIO, "Failed to open shared file").
		WithDetail("flags", "O_CREATE|O_RDWR")

	require.Equal(t, "O_CREATE|O_RDWR", GetErrorDetails(err)["flags"])
	require.Nil(t, GetErrorDetails(io.EOF))
}
