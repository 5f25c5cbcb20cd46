package domainerrors

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestErrorMessage(t *testing.T) {
	err := New(CodeConflict, "wallet profile already exists")
	assert.Equal(t, "wallet profile already exists", err.Error())

	bare := New(CodeConflict, "")
	assert.Equal(t, "conflict", bare.Error())
}

func TestWrapPreservesOriginalCode(t *testing.T) {
	inner := New(CodeUnauthorized, "session expired")
	wrapped := Wrap(inner, CodeInternal, "profile submission failed")

	assert.True(t, HasCode(wrapped, CodeUnauthorized))
	assert.False(t, HasCode(wrapped, CodeInternal))
	assert.Equal(t, "profile submission failed", wrapped.Error())
}

func TestWrapPlainError(t *testing.T) {
	inner := fmt.Errorf("connection refused")
	wrapped := Wrap(inner, CodeTimeout, "verification call failed")

	assert.True(t, HasCode(wrapped, CodeTimeout))
	assert.True(t, errors.Is(wrapped, wrapped))
	assert.Equal(t, inner, errors.Unwrap(wrapped))
}

func TestIsMatchesByCode(t *testing.T) {
	a := New(CodeNotSubmittable, "bvn otp not entered")
	b := New(CodeNotSubmittable, "different message")

	assert.True(t, errors.Is(a, b))
	assert.False(t, errors.Is(a, New(CodeConflict, "")))
}
