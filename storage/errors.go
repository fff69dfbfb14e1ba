// ABOUTME: Typed errors raised by the persistence adapter
// ABOUTME: Callers match them with errors.As to pick a user-facing message
package storage

import "fmt"

// StorageError reports a read or write that failed against the backend after any retry.
type StorageError struct {
	Op  string
	Key string
	Err error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StorageError) Unwrap() error { return e.Err }

// ExportError reports why an export artifact could not be produced.
type ExportError struct {
	Reason string
	Err    error
}

func (e *ExportError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("export failed: %s: %v", e.Reason, e.Err)
	}
	return "export failed: " + e.Reason
}

func (e *ExportError) Unwrap() error { return e.Err }

// ImportFormatError reports a malformed import file. Reason is shown to the user verbatim.
type ImportFormatError struct {
	Reason string
	Err    error
}

func (e *ImportFormatError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("import failed: %s: %v", e.Reason, e.Err)
	}
	return "import failed: " + e.Reason
}

func (e *ImportFormatError) Unwrap() error { return e.Err }
