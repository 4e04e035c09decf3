// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import "time"

const (
	// SessionTokenTTL is the lifetime of a session token and its cookie.
	SessionTokenTTL = 7 * 24 * time.Hour

	// UnusablePasswordLength is the number of random bytes placed in the
	// password column of auto-provisioned federated accounts. The raw hex
	// string is stored as-is, so no bcrypt comparison can ever match it.
	UnusablePasswordLength = 16

	// usernameSuffixLimit bounds the auto-provisioning collision probe.
	// Past this many takes on the same base the flow fails rather than
	// scanning the table forever.
	usernameSuffixLimit = 1000

	// OAuthStateTTL is how long an in-flight OAuth state entry stays
	// valid before the login attempt is abandoned.
	OAuthStateTTL = 10 * time.Minute

	// Input length bounds for local signup.
	usernameMaxLength = 30
	usernameMinLength = 3
	passwordMinLength = 8
	passwordMaxLength = 72 // bcrypt input limit
	emailMaxLength    = 254
)
