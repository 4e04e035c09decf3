// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package middleware_test

import (
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduylong/authgate/internal/platform/constants"
	"github.com/phamduylong/authgate/internal/platform/middleware"
	"github.com/phamduylong/authgate/internal/platform/sec"
)

// fakeVerifier accepts exactly one token string.
type fakeVerifier struct {
	valid  string
	claims *sec.AuthClaims
}

func (verifier fakeVerifier) VerifyToken(token string) (*sec.AuthClaims, error) {
	if token == verifier.valid {
		return verifier.claims, nil
	}
	return nil, errors.New("invalid token")
}

func newAuthChain(verifier middleware.TokenVerifier) (http.Handler, *[]*sec.AuthClaims) {
	var seen []*sec.AuthClaims
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		seen = append(seen, middleware.GetUser(request.Context()))
		writer.WriteHeader(http.StatusOK)
	})
	return middleware.Authenticate(verifier)(next), &seen
}

func TestAuthenticate_BearerToken(t *testing.T) {
	claims := &sec.AuthClaims{UserID: "u-1", Username: "jdoe"}
	handler, seen := newAuthChain(fakeVerifier{valid: "good-token", claims: claims})

	request := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
	request.Header.Set("Authorization", "Bearer good-token")
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, *seen, 1)
	assert.Same(t, claims, (*seen)[0])
}

func TestAuthenticate_InvalidBearerAborts(t *testing.T) {
	handler, seen := newAuthChain(fakeVerifier{valid: "good-token"})

	tests := []struct {
		name   string
		header string
	}{
		{"malformed_header", "NotBearer"},
		{"wrong_scheme", "Basic dXNlcjpwYXNz"},
		{"invalid_token", "Bearer bad-token"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/api/auth/session", nil)
			request.Header.Set("Authorization", tt.header)
			recorder := httptest.NewRecorder()
			handler.ServeHTTP(recorder, request)

			assert.Equal(t, http.StatusUnauthorized, recorder.Code)
		})
	}
	assert.Empty(t, *seen, "handler must never run on a rejected bearer token")
}

func TestAuthenticate_SessionCookie(t *testing.T) {
	claims := &sec.AuthClaims{UserID: "u-1", Username: "jdoe"}
	handler, seen := newAuthChain(fakeVerifier{valid: "good-token", claims: claims})

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "good-token"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, *seen, 1)
	assert.Same(t, claims, (*seen)[0])
}

func TestAuthenticate_InvalidCookieIsAnonymous(t *testing.T) {
	// A bad cookie must NOT abort: page requests fall through to the route
	// guard, which redirects instead of rendering a JSON error.
	handler, seen := newAuthChain(fakeVerifier{valid: "good-token"})

	request := httptest.NewRequest(http.MethodGet, "/dashboard", nil)
	request.AddCookie(&http.Cookie{Name: constants.SessionCookieName, Value: "expired-token"})
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, *seen, 1)
	assert.Nil(t, (*seen)[0])
}

func TestAuthenticate_NoCredentialsIsAnonymous(t *testing.T) {
	handler, seen := newAuthChain(fakeVerifier{valid: "good-token"})

	request := httptest.NewRequest(http.MethodGet, "/", nil)
	recorder := httptest.NewRecorder()
	handler.ServeHTTP(recorder, request)

	assert.Equal(t, http.StatusOK, recorder.Code)
	require.Len(t, *seen, 1)
	assert.Nil(t, (*seen)[0])
}

func TestRequireRole(t *testing.T) {
	next := http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.WriteHeader(http.StatusOK)
	})
	adminOnly := middleware.RequireRole(sec.RoleAdmin)(next)

	tests := []struct {
		name       string
		claims     *sec.AuthClaims
		wantStatus int
	}{
		{"anonymous", nil, http.StatusUnauthorized},
		{"user_role_forbidden", &sec.AuthClaims{Role: string(sec.RoleUser)}, http.StatusForbidden},
		{"admin_allowed", &sec.AuthClaims{Role: string(sec.RoleAdmin)}, http.StatusOK},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request := httptest.NewRequest(http.MethodGet, "/admin", nil)
			if tt.claims != nil {
				verifier := fakeVerifier{valid: "tok", claims: tt.claims}
				wrapped := middleware.Authenticate(verifier)(adminOnly)
				request.Header.Set("Authorization", "Bearer tok")
				recorder := httptest.NewRecorder()
				wrapped.ServeHTTP(recorder, request)
				assert.Equal(t, tt.wantStatus, recorder.Code)
				return
			}

			recorder := httptest.NewRecorder()
			adminOnly.ServeHTTP(recorder, request)
			assert.Equal(t, tt.wantStatus, recorder.Code)
		})
	}
}
