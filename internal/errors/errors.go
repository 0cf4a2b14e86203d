package errors

import (
	stderrors "errors"
	"fmt"
	"os"

	"github.com/julianstephens/solace/internal/logger"
)

var (
	// ErrUnknownActivity is returned when an activity id does not resolve to a catalog entry
	ErrUnknownActivity = stderrors.New("unknown activity")
	// ErrSessionActive is returned when a session is already running or completing
	ErrSessionActive = stderrors.New("a session is already active")
	// ErrNotFound is returned by storage lookups that match nothing
	ErrNotFound = stderrors.New("not found")
)

// ValidationError reports input that cannot be acted on, such as an activity id
// that does not resolve at completion time. The operation is aborted and may be retried.
type ValidationError struct {
	Field  string
	Value  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s %q: %s", e.Field, e.Value, e.Reason)
}

// PersistenceError wraps a failed save, update or fetch against the persistence gateway.
// These are logged and downgraded to warnings; they never abort local state changes.
type PersistenceError struct {
	Op  string
	Err error
}

func (e *PersistenceError) Error() string {
	return fmt.Sprintf("persistence %s failed: %v", e.Op, e.Err)
}

func (e *PersistenceError) Unwrap() error {
	return e.Err
}

// StateConflictError is returned when an operation is rejected because of the
// runtime's current state (e.g. start while another session is active).
type StateConflictError struct {
	State string
}

func (e *StateConflictError) Error() string {
	return fmt.Sprintf("rejected in state %s", e.State)
}

func (e *StateConflictError) Unwrap() error {
	return ErrSessionActive
}

// NewPersistenceError wraps err, returning nil when err is nil
func NewPersistenceError(op string, err error) error {
	if err == nil {
		return nil
	}
	return &PersistenceError{Op: op, Err: err}
}

// IsPersistence reports whether err is (or wraps) a PersistenceError
func IsPersistence(err error) bool {
	var pe *PersistenceError
	return stderrors.As(err, &pe)
}

// IsValidation reports whether err is (or wraps) a ValidationError
func IsValidation(err error) bool {
	var ve *ValidationError
	return stderrors.As(err, &ve)
}

// Format formats an error message with a consistent "Error: " prefix
func Format(err error) string {
	if err == nil {
		return ""
	}
	return fmt.Sprintf("Error: %v", err)
}

// Formatf formats an error message with a consistent "Error: " prefix using a format string
func Formatf(format string, args ...interface{}) string {
	return fmt.Sprintf("Error: "+format, args...)
}

// Fatal logs an error and exits the program with exit code 1
func Fatal(err error) {
	if err != nil {
		logger.Error("Command execution failed", "error", err)
		fmt.Fprintf(os.Stderr, "%s\n", Format(err))
		logger.Close()
		os.Exit(1)
	}
}
