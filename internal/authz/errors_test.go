package authz

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDenied_MatchesForbidden(t *testing.T) {
	err := Denied("NOT_ASSIGNED", "no zone assignment for this program")

	assert.True(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthenticated))
	assert.Equal(t, "no zone assignment for this program", err.Error())
}

func TestAsAuthzError(t *testing.T) {
	err := fmt.Errorf("mark received: %w", Denied("FORBIDDEN", "household is outside your assigned zones"))

	authzErr, ok := AsAuthzError(err)

	require.True(t, ok)
	assert.Equal(t, "FORBIDDEN", authzErr.Code)
}

func TestAsAuthzError_PlainForbidden(t *testing.T) {
	_, ok := AsAuthzError(ErrForbidden)

	assert.False(t, ok)
}

func TestUnavailable(t *testing.T) {
	cause := errors.New("connection refused")
	err := Unavailable("staff store", cause)

	assert.True(t, IsUnavailable(err))
	assert.True(t, errors.Is(err, cause))
	assert.Contains(t, err.Error(), "staff store unavailable")
}

func TestUnavailable_IsNotDenial(t *testing.T) {
	err := Unavailable("session store", errors.New("timeout"))

	assert.False(t, errors.Is(err, ErrForbidden))
	assert.False(t, errors.Is(err, ErrUnauthenticated))
}

func TestIsUnavailable_Wrapped(t *testing.T) {
	err := fmt.Errorf("checklist: %w", Unavailable("aid store", errors.New("broken pipe")))

	assert.True(t, IsUnavailable(err))
}

func TestIsUnavailable_PlainError(t *testing.T) {
	assert.False(t, IsUnavailable(errors.New("boom")))
	assert.False(t, IsUnavailable(nil))
}
