// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package middleware

import (
	"net/http"
	"strings"

	"github.com/phamduylong/authgate/internal/platform/constants"
	"github.com/phamduylong/authgate/internal/platform/ctxutil"
)

// GuardConfig is the static route matcher for the page-level route guard.
//
// # Semantics
//
// Public-only pages are places a logged-in user has no business visiting
// (the landing page and the auth forms); protected prefixes cover the
// application area that requires a session.
type GuardConfig struct {
	// LandingPath is matched exactly (the bare site root).
	LandingPath string

	// PublicOnlyPrefixes are matched by prefix (e.g. /signin, /signup).
	PublicOnlyPrefixes []string

	// ProtectedPrefixes are matched by prefix (e.g. /dashboard).
	ProtectedPrefixes []string

	// SignInPath is where anonymous visitors to the protected area are sent.
	SignInPath string

	// DashboardPath is where authenticated visitors to public-only pages are sent.
	DashboardPath string
}

// DefaultGuardConfig returns the standard page matcher for the application.
func DefaultGuardConfig() GuardConfig {
	return GuardConfig{
		LandingPath:        constants.PathLanding,
		PublicOnlyPrefixes: []string{constants.PathSignIn, constants.PathSignUp},
		ProtectedPrefixes:  []string{constants.PathDashboard},
		SignInPath:         constants.PathSignIn,
		DashboardPath:      constants.PathDashboard,
	}
}

// RouteGuard redirects between the public auth pages and the protected area
// based on session presence.
//
// # State Machine
//
// Two observable states per request: {has-valid-token, no-valid-token}.
//   - Valid token + public-only page  → 302 to the dashboard.
//   - No token + protected page      → 302 to sign-in.
//   - Everything else                 → pass through unchanged.
//
// # Usage
//
// Must be registered AFTER [Authenticate]; it reads the claims that
// Authenticate placed in the request context and has no side effects
// beyond the redirect.
func RouteGuard(cfg GuardConfig) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
			authenticated := ctxutil.GetAuthUser(request.Context()) != nil
			path := request.URL.Path

			if authenticated && cfg.isPublicOnly(path) {
				http.Redirect(writer, request, cfg.DashboardPath, http.StatusFound)
				return
			}

			if !authenticated && cfg.isProtected(path) {
				http.Redirect(writer, request, cfg.SignInPath, http.StatusFound)
				return
			}

			next.ServeHTTP(writer, request)
		})
	}
}

// isPublicOnly reports whether path is one of the pages reserved for
// anonymous visitors.
func (cfg GuardConfig) isPublicOnly(path string) bool {
	if cfg.LandingPath != "" && path == cfg.LandingPath {
		return true
	}
	for _, prefix := range cfg.PublicOnlyPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}

// isProtected reports whether path falls inside the protected area.
func (cfg GuardConfig) isProtected(path string) bool {
	for _, prefix := range cfg.ProtectedPrefixes {
		if strings.HasPrefix(path, prefix) {
			return true
		}
	}
	return false
}
