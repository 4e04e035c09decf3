// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package validate_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduylong/authgate/internal/platform/apperr"
	"github.com/phamduylong/authgate/internal/platform/validate"
)

func TestValidator_AllRulesPass(t *testing.T) {
	validator := &validate.Validator{}
	err := validator.
		Required("username", "jdoe").
		MinLen("username", "jdoe", 3).
		MaxLen("username", "jdoe", 30).
		Username("username", "jdoe").
		Email("email", "jdoe@example.com").
		Err()

	assert.NoError(t, err)
}

func TestValidator_CollectsMultipleFailures(t *testing.T) {
	validator := &validate.Validator{}
	err := validator.
		Required("username", "  ").
		Email("email", "nope").
		Err()

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "VALIDATION_ERROR", appError.Code)
	require.Len(t, appError.Details, 2)
	assert.Equal(t, "username", appError.Details[0].Field)
	assert.Equal(t, "email", appError.Details[1].Field)
}

func TestValidator_Username(t *testing.T) {
	tests := []struct {
		value string
		valid bool
	}{
		{"jdoe", true},
		{"first.last", true},
		{"user_name-1", true},
		{"JDoe", false},
		{"j doe", false},
		{"josé", false},
		{"", false},
	}

	for _, tt := range tests {
		t.Run(tt.value, func(t *testing.T) {
			validator := &validate.Validator{}
			validator.Username("username", tt.value)
			assert.Equal(t, !tt.valid, validator.HasErrors())
		})
	}
}

func TestValidator_Lengths(t *testing.T) {
	validator := &validate.Validator{}
	validator.MinLen("password", "short", 8)
	assert.True(t, validator.HasErrors())

	validator = &validate.Validator{}
	validator.MaxLen("username", "ααααα", 5) // rune count, not byte count
	assert.False(t, validator.HasErrors())
}

func TestValidator_Custom(t *testing.T) {
	validator := &validate.Validator{}
	err := validator.Custom("password", true, "Passwords must differ").Err()

	appError := apperr.As(err)
	require.NotNil(t, appError)
	assert.Equal(t, "Passwords must differ", appError.Details[0].Message)
}

func TestRequiredError(t *testing.T) {
	err := validate.RequiredError("email", "This field is required")
	assert.Equal(t, "VALIDATION_ERROR", err.Code)
	require.Len(t, err.Details, 1)
	assert.Equal(t, "email", err.Details[0].Field)
}
