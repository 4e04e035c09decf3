// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import (
	"context"
	"net/http"
	"time"
)

// AccountStore is the persistence boundary for accounts.
//
// Implementations translate driver errors through the dberr package, so
// lookups report misses as [dberr.ErrNotFound] and unique-constraint hits
// as [dberr.ErrDuplicate].
type AccountStore interface {
	// FindByID loads an account by its primary key.
	FindByID(ctx context.Context, id string) (*Account, error)

	// FindByEmail loads an account by its email address.
	FindByEmail(ctx context.Context, email string) (*Account, error)

	// FindByUsername loads an account by its username.
	FindByUsername(ctx context.Context, username string) (*Account, error)

	// Create persists a new account. ID, CreatedAt and UpdatedAt must be
	// set by the caller.
	Create(ctx context.Context, account *Account) error

	// UpdateImageByEmail replaces the profile image of the account owning
	// the given email address.
	UpdateImageByEmail(ctx context.Context, email string, image string) error
}

// TokenIssuer mints and re-signs session tokens. Satisfied by
// [sec.TokenService].
type TokenIssuer interface {
	GenerateSessionToken(userID, username, email, image, role string, timeToLive time.Duration) (string, error)
}

// FederatedProvider is an external identity provider wired into the
// sign-in flow.
//
// Begin writes the redirect that sends the browser to the provider's
// consent screen. Complete consumes the provider's callback request and
// returns the asserted identity.
type FederatedProvider interface {
	// Name is the provider slug used in routes and audit logs.
	Name() string

	// Begin starts the authorization flow, writing a redirect response.
	Begin(writer http.ResponseWriter, request *http.Request) error

	// Complete validates the callback and returns the asserted profile.
	Complete(request *http.Request) (*ProviderIdentity, error)
}
