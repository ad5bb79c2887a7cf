package errors

import (
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestIsNotFound(t *testing.T) {
	assert.True(t, IsNotFound(ErrNotFound))
	assert.True(t, IsNotFound(fmt.Errorf("meeting %q: %w", "abc-defg-hjk", ErrNotFound)))
	assert.False(t, IsNotFound(ErrValidation))
	assert.False(t, IsNotFound(nil))
}

func TestIsValidation(t *testing.T) {
	assert.True(t, IsValidation(ErrValidation))
	assert.True(t, IsValidation(fmt.Errorf("agenda title: %w", ErrValidation)))
	assert.False(t, IsValidation(ErrNotFound))
}

func TestWrappedChains(t *testing.T) {
	err := fmt.Errorf("outer: %w", fmt.Errorf("inner: %w", ErrUnavailable))
	assert.True(t, IsUnavailable(err))
	assert.False(t, IsUnauthorized(err))
}
