package errors

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestValidationError(t *testing.T) {
	err := NewValidationError("points", "must be at least 1", 0)

	assert.Equal(t, "points", err.Field)
	assert.Equal(t, 0, err.Value)
	assert.Equal(t, "validation error on field 'points': must be at least 1", err.Error())
}

func TestValidationErrorWithRule(t *testing.T) {
	err := NewValidationErrorWithRule("difficulty", "must be easy, medium, or hard", "difficulty_level", "impossible")

	assert.Equal(t, "difficulty_level", err.Rule)
	assert.Equal(t, "impossible", err.Value)
}

func TestValidationErrors_Error(t *testing.T) {
	assert.Equal(t, "validation failed", ValidationErrors{}.Error())

	single := ValidationErrors{{Field: "email", Message: "must be a valid email address"}}
	assert.Equal(t, "validation failed: email must be a valid email address", single.Error())

	multi := ValidationErrors{
		{Field: "email", Message: "must be a valid email address"},
		{Field: "password", Message: "must be at least 6"},
	}
	assert.Equal(t, "validation failed: 2 field errors", multi.Error())
}
