// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

/*
Package auth implements account management and session authentication.

# Architecture

This is the core domain of the application. It owns the account entity,
the credential and federated sign-in flows, identity reconciliation for
OAuth logins, and session token issuance. Storage and transport concerns
are expressed as interfaces ([AccountStore], [FederatedProvider]) whose
concrete implementations live alongside this package.

# Flow

A browser session is a signed, stateless token carried in an HTTP-only
cookie. Local sign-in verifies a bcrypt hash; federated sign-in runs the
OAuth dance and then reconciles the provider identity against the account
table, auto-provisioning on first contact.
*/
package auth

import "time"

// Account is the persisted user record.
//
// PasswordHash is never serialized; federated accounts hold a random
// placeholder that no password can match.
type Account struct {
	ID           string    `json:"id"`
	Username     string    `json:"username"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	Image        string    `json:"image,omitempty"`
	Role         string    `json:"role"`
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// Identity is the public projection of an account used in API responses
// and session claims. It carries no credential material.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Image    string `json:"image,omitempty"`
	Role     string `json:"role"`
}

// Identity returns the public projection of the account.
func (account *Account) Identity() Identity {
	return Identity{
		ID:       account.ID,
		Username: account.Username,
		Email:    account.Email,
		Image:    account.Image,
		Role:     account.Role,
	}
}

// ProviderIdentity is the profile an external identity provider asserts
// about the person signing in.
type ProviderIdentity struct {
	// Provider is the provider slug, e.g. "google".
	Provider string

	// Email is the verified email address. May be empty when the provider
	// account has no public email; reconciliation rejects that case.
	Email string

	// Name is the free-form display name.
	Name string

	// Image is the profile picture URL, if any.
	Image string
}

// Field identifiers used in validation error details.
const (
	FieldUsername = "username"
	FieldEmail    = "email"
	FieldPassword = "password"
)
