// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import (
	"net/http"

	"github.com/phamduylong/authgate/internal/platform/apperr"
)

// Sentinel errors for the sign-in flows. Handlers translate these straight
// into HTTP responses via the apperr machinery.
var (
	// ErrMissingCredentials is returned when email or password is absent
	// from a credential sign-in attempt.
	ErrMissingCredentials = &apperr.AppError{
		Code:       "VALIDATION_ERROR",
		Message:    "Email and password are required",
		HTTPStatus: http.StatusBadRequest,
	}

	// ErrInvalidCredentials is returned for an unknown email or a wrong
	// password. The two cases are deliberately indistinguishable.
	ErrInvalidCredentials = &apperr.AppError{
		Code:       "INVALID_CREDENTIALS",
		Message:    "Incorrect email or password",
		HTTPStatus: http.StatusUnauthorized,
	}

	// ErrUsernameExists is returned when a signup requests a taken handle.
	ErrUsernameExists = &apperr.AppError{
		Code:       "CONFLICT",
		Message:    "Username already exists",
		HTTPStatus: http.StatusConflict,
	}

	// ErrEmailExists is returned when a signup reuses a registered email.
	ErrEmailExists = &apperr.AppError{
		Code:       "CONFLICT",
		Message:    "Email already exists",
		HTTPStatus: http.StatusConflict,
	}

	// ErrEmailRequired is returned when a federated provider asserts an
	// identity with no email address, which we cannot reconcile.
	ErrEmailRequired = &apperr.AppError{
		Code:       "EMAIL_REQUIRED",
		Message:    "Google account must have a public email",
		HTTPStatus: http.StatusUnauthorized,
	}
)

// AuthenticationFailed wraps an unexpected infrastructure failure during a
// sign-in flow. The cause is logged server-side; the client sees only a
// generic message.
func AuthenticationFailed(cause error) *apperr.AppError {
	return &apperr.AppError{
		Code:       "AUTHENTICATION_FAILED",
		Message:    "Login failed",
		HTTPStatus: http.StatusInternalServerError,
		Cause:      cause,
	}
}
