package apperr

import (
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExternal_WrapsUnclassified(t *testing.T) {
	cause := errors.New("connection reset")
	err := External("inserting units", cause)

	require.True(t, IsExternal(err))
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "inserting units")
}

func TestExternal_PassesClassifiedThrough(t *testing.T) {
	nf := NotFound("unit", "u1")
	wrapped := fmt.Errorf("loading: %w", nf)

	err := External("loading unit", wrapped)
	assert.Same(t, wrapped, err)
	assert.True(t, IsNotFound(err))
	assert.False(t, IsExternal(err))
}

func TestExternal_Nil(t *testing.T) {
	assert.NoError(t, External("noop", nil))
}

func TestAuthRequired_Distinguishable(t *testing.T) {
	err := fmt.Errorf("setting status: %w", ErrAuthRequired)
	assert.True(t, IsAuthRequired(err))
	assert.False(t, IsValidation(err))
	assert.False(t, IsExternal(err))
	assert.True(t, Classified(err))
}

func TestBatchError(t *testing.T) {
	cause := errors.New("disk full")
	err := fmt.Errorf("generating: %w", &BatchError{Step: "create units", Done: 200, Total: 450, Err: cause})

	be, ok := AsBatch(err)
	require.True(t, ok)
	assert.Equal(t, 200, be.Done)
	assert.Equal(t, 450, be.Total)
	assert.ErrorIs(t, err, cause)
	assert.Contains(t, err.Error(), "after 200 of 450")
}

func TestMessages(t *testing.T) {
	assert.Equal(t, "invalid name: must not be empty", Validation("name", "must not be empty").Error())
	assert.Equal(t, "unit stage already exists: u1/s1", Duplicate("unit stage", "u1/s1").Error())
	assert.Equal(t, "project not found: p1", NotFound("project", "p1").Error())
}
