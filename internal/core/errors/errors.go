// Package errors defines the hub's sentinel error taxonomy, compared with
// errors.Is. Registration and unregistration failures are surfaced through
// the operation's completion callback, never as a panic or a returned error
// from dispatch. The shared-state write calls (CreateSharedState and
// CreatePendingSharedState) are the exception: they return
// ErrExtensionNotRegistered directly for an unknown extension name.
package errors

import sterrors "errors"

var (
	// ErrInvalidExtensionName is returned when registerExtension is called
	// with an empty type name.
	ErrInvalidExtensionName = sterrors.New("eventhub: invalid extension name")

	// ErrDuplicateExtensionName is returned when registerExtension is called
	// with a type name that is already registered.
	ErrDuplicateExtensionName = sterrors.New("eventhub: duplicate extension name")

	// ErrExtensionNotRegistered is returned when unregisterExtension, or a
	// shared-state write, names an extension that has no registered
	// container.
	ErrExtensionNotRegistered = sterrors.New("eventhub: extension not registered")

	// ErrExtensionInitializationFailure is reported when constructing an
	// extension instance or its onRegistered hook fails. It is returned as
	// is; the underlying error is logged, not wrapped.
	ErrExtensionInitializationFailure = sterrors.New("eventhub: extension initialization failed")
)

// ConfigValidationError wraps a hub configuration error so callers can use
// errors.As to recover the underlying cause while still getting a
// hub-specific error message.
type ConfigValidationError struct {
	Err error
}

func (e ConfigValidationError) Error() string {
	return "eventhub: invalid configuration: " + e.Err.Error()
}

func (e ConfigValidationError) Unwrap() error {
	return e.Err
}

// NewConfigValidationError wraps err as a ConfigValidationError. Returns nil
// when err is nil.
func NewConfigValidationError(err error) error {
	if err == nil {
		return nil
	}
	return ConfigValidationError{Err: err}
}
