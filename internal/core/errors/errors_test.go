package errors

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSentinelErrors(t *testing.T) {
	tests := []struct {
		name    string
		err     error
		wantMsg string
	}{
		{"ErrInvalidExtensionName", ErrInvalidExtensionName, "eventhub: invalid extension name"},
		{"ErrDuplicateExtensionName", ErrDuplicateExtensionName, "eventhub: duplicate extension name"},
		{"ErrExtensionNotRegistered", ErrExtensionNotRegistered, "eventhub: extension not registered"},
		{"ErrExtensionInitializationFailure", ErrExtensionInitializationFailure, "eventhub: extension initialization failed"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.wantMsg, tt.err.Error())
		})
	}
}

func TestConfigValidationError(t *testing.T) {
	inner := errors.New("negative timeout")
	err := ConfigValidationError{Err: inner}

	assert.Equal(t, "eventhub: invalid configuration: negative timeout", err.Error())
	assert.Equal(t, inner, err.Unwrap())
}

func TestNewConfigValidationError(t *testing.T) {
	t.Run("nil error returns nil", func(t *testing.T) {
		assert.Nil(t, NewConfigValidationError(nil))
	})

	t.Run("wraps error correctly", func(t *testing.T) {
		inner := errors.New("bad config")
		err := NewConfigValidationError(inner)

		var cfgErr ConfigValidationError
		require.True(t, errors.As(err, &cfgErr))
		assert.Equal(t, inner, cfgErr.Err)
	})

	t.Run("errors.Is works with wrapped error", func(t *testing.T) {
		inner := errors.New("specific error")
		err := NewConfigValidationError(inner)
		assert.True(t, errors.Is(err, inner))
	})
}
