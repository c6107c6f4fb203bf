package errors

// StorageError is a specialized error type for failures on the paged files
// that back trees and the transaction log. It adds the storage-specific
// context that pinpoints exactly where the problem occurred: which file, at
// which path, at which byte offset.
type StorageError struct {
	*coreError
	offset   int64  // Byte offset within the file where the problem happened.
	fileName string // Name of the file that caused the issue.
	path     string // Path of the file that caused the issue.
}

// NewStorageError creates a new storage-specific error.
func NewStorageError(err error, code ErrorCode, msg string) *StorageError {
	return &StorageError{coreError: newCoreError(code, msg, err)}
}

// WithOffset records the byte position where the error occurred.
func (se *StorageError) WithOffset(offset int64) *StorageError {
	se.offset = offset
	return se
}

// WithFileName captures which file was being processed when the error occurred.
func (se *StorageError) WithFileName(fileName string) *StorageError {
	se.fileName = fileName
	return se
}

// WithPath captures which path was being processed when the error occurred.
func (se *StorageError) WithPath(path string) *StorageError {
	se.path = path
	return se
}

// WithDetail adds contextual information, returning the StorageError so calls chain.
func (se *StorageError) WithDetail(key string, value any) *StorageError {
	se.detail(key, value)
	return se
}

// Offset returns the byte offset within the file where the error happened.
func (se *StorageError) Offset() int64 {
	return se.offset
}

// FileName returns the name of the file that was being processed.
func (se *StorageError) FileName() string {
	return se.fileName
}

// Path returns the path of the file that was being processed.
func (se *StorageError) Path() string {
	return se.path
}
