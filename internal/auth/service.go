// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import (
	"context"
	"errors"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/phamduylong/authgate/internal/platform/dberr"
	"github.com/phamduylong/authgate/internal/platform/sec"
	"github.com/phamduylong/authgate/internal/platform/validate"
	"github.com/phamduylong/authgate/pkg/username"
	"github.com/phamduylong/authgate/pkg/uuid"
)

// Service implements account management and the sign-in flows.
type Service struct {
	accounts AccountStore
	tokens   TokenIssuer
	logger   *slog.Logger
}

// NewService wires the auth service with its dependencies.
func NewService(accounts AccountStore, tokens TokenIssuer, logger *slog.Logger) *Service {
	return &Service{
		accounts: accounts,
		tokens:   tokens,
		logger:   logger,
	}
}

// SignupInput is the payload for local account registration.
type SignupInput struct {
	Username string `json:"username"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

// Signup registers a new local account with a bcrypt-hashed password.
//
// # Flow
//
// Duplicate checks run before the insert so the client gets a precise
// message; the unique indexes remain the real enforcement under
// concurrency, surfacing as a generic duplicate conflict.
func (service *Service) Signup(ctx context.Context, input SignupInput) (*Identity, error) {
	// ── 1. Validate input ────────────────────────────────────────────────
	input.Username = strings.TrimSpace(input.Username)
	input.Email = strings.TrimSpace(strings.ToLower(input.Email))

	validator := &validate.Validator{}
	validator.
		Required(FieldUsername, input.Username).
		Required(FieldEmail, input.Email).
		Required(FieldPassword, input.Password)
	if validator.HasErrors() {
		return nil, validator.Err()
	}
	if err := validator.
		MinLen(FieldUsername, input.Username, usernameMinLength).
		MaxLen(FieldUsername, input.Username, usernameMaxLength).
		Username(FieldUsername, input.Username).
		Email(FieldEmail, input.Email).
		MaxLen(FieldEmail, input.Email, emailMaxLength).
		MinLen(FieldPassword, input.Password, passwordMinLength).
		MaxLen(FieldPassword, input.Password, passwordMaxLength).
		Err(); err != nil {
		return nil, err
	}

	// ── 2. Reject taken username and email up front ──────────────────────
	if _, err := service.accounts.FindByUsername(ctx, input.Username); err == nil {
		return nil, ErrUsernameExists
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, AuthenticationFailed(err)
	}

	if _, err := service.accounts.FindByEmail(ctx, input.Email); err == nil {
		return nil, ErrEmailExists
	} else if !errors.Is(err, dberr.ErrNotFound) {
		return nil, AuthenticationFailed(err)
	}

	// ── 3. Hash and persist ──────────────────────────────────────────────
	passwordHash, err := sec.HashPassword(input.Password)
	if err != nil {
		return nil, AuthenticationFailed(err)
	}

	account, err := service.createAccount(ctx, input.Username, input.Email, passwordHash, "")
	if err != nil {
		return nil, err
	}

	service.logger.InfoContext(ctx, "account registered",
		slog.String("account_id", account.ID),
		slog.String("username", account.Username),
	)

	identity := account.Identity()
	return &identity, nil
}

// VerifyCredentials checks an email/password pair against the account table.
//
// Unknown email and wrong password both yield [ErrInvalidCredentials];
// nothing in the response distinguishes which check failed.
func (service *Service) VerifyCredentials(ctx context.Context, email, password string) (*Identity, error) {
	// ── 1. Presence check ────────────────────────────────────────────────
	email = strings.TrimSpace(strings.ToLower(email))
	if email == "" || password == "" {
		return nil, ErrMissingCredentials
	}

	// ── 2. Look up the account ───────────────────────────────────────────
	account, err := service.accounts.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return nil, ErrInvalidCredentials
		}
		return nil, AuthenticationFailed(err)
	}

	// ── 3. Compare the password hash ─────────────────────────────────────
	// Federated accounts hold a random non-bcrypt placeholder here, so the
	// comparison fails for them the same way a wrong password does.
	if !sec.CheckPasswordHash(password, account.PasswordHash) {
		return nil, ErrInvalidCredentials
	}

	identity := account.Identity()
	return &identity, nil
}

// SignIn verifies credentials and issues a session token.
func (service *Service) SignIn(ctx context.Context, email, password string) (*Identity, string, error) {
	identity, err := service.VerifyCredentials(ctx, email, password)
	if err != nil {
		return nil, "", err
	}

	token, err := service.IssueSession(identity)
	if err != nil {
		return nil, "", err
	}

	service.logger.InfoContext(ctx, "credentials sign-in",
		slog.String("account_id", identity.ID),
	)

	return identity, token, nil
}

// ReconcileIdentity maps a federated profile onto the account table.
//
// # Flow
//
// An existing account with the asserted email is reused as-is; only its
// profile image is refreshed. A first-time email gets an auto-provisioned
// account with a derived, collision-free username and an unusable password.
func (service *Service) ReconcileIdentity(ctx context.Context, provider ProviderIdentity) (*Identity, error) {
	// ── 1. The provider must assert an email ─────────────────────────────
	email := strings.TrimSpace(strings.ToLower(provider.Email))
	if email == "" {
		return nil, ErrEmailRequired
	}

	// ── 2. Reuse an existing account keyed by email ──────────────────────
	account, err := service.accounts.FindByEmail(ctx, email)
	if err == nil {
		if provider.Image != "" && provider.Image != account.Image {
			if err := service.accounts.UpdateImageByEmail(ctx, email, provider.Image); err != nil {
				return nil, AuthenticationFailed(err)
			}
			account.Image = provider.Image
		}
		identity := account.Identity()
		return &identity, nil
	}
	if !errors.Is(err, dberr.ErrNotFound) {
		return nil, AuthenticationFailed(err)
	}

	// ── 3. Provision a new account ───────────────────────────────────────
	handle, err := service.availableUsername(ctx, username.Derive(provider.Name, email))
	if err != nil {
		return nil, err
	}

	// The placeholder password is random hex stored raw. It is not a
	// bcrypt hash, so credential sign-in can never match it.
	placeholder, err := sec.GenerateSecureToken(UnusablePasswordLength)
	if err != nil {
		return nil, AuthenticationFailed(err)
	}

	created, err := service.createAccount(ctx, handle, email, placeholder, provider.Image)
	if err != nil {
		// A duplicate here means another login for the same email raced
		// past the lookup above; the browser flow retries by signing in again.
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, AuthenticationFailed(err)
		}
		return nil, err
	}

	service.logger.InfoContext(ctx, "federated account provisioned",
		slog.String("account_id", created.ID),
		slog.String("provider", provider.Provider),
		slog.String("username", created.Username),
	)

	identity := created.Identity()
	return &identity, nil
}

// FederatedSignIn reconciles a provider identity and issues a session token.
func (service *Service) FederatedSignIn(ctx context.Context, provider ProviderIdentity) (*Identity, string, error) {
	identity, err := service.ReconcileIdentity(ctx, provider)
	if err != nil {
		return nil, "", err
	}

	token, err := service.IssueSession(identity)
	if err != nil {
		return nil, "", err
	}

	return identity, token, nil
}

// IssueSession mints a session token for the given identity.
func (service *Service) IssueSession(identity *Identity) (string, error) {
	token, err := service.tokens.GenerateSessionToken(
		identity.ID,
		identity.Username,
		identity.Email,
		identity.Image,
		identity.Role,
		SessionTokenTTL,
	)
	if err != nil {
		return "", AuthenticationFailed(err)
	}
	return token, nil
}

// EnrichClaims backfills missing username/role claims from the account
// table for tokens minted before those claims existed.
//
// It returns the (possibly updated) claims and whether anything changed.
// A token whose account has vanished is left untouched; the session keeps
// working until it expires.
func (service *Service) EnrichClaims(ctx context.Context, claims *sec.AuthClaims) (*sec.AuthClaims, bool, error) {
	if claims == nil || claims.Username != "" || claims.Email == "" {
		return claims, false, nil
	}

	account, err := service.accounts.FindByEmail(ctx, claims.Email)
	if err != nil {
		if errors.Is(err, dberr.ErrNotFound) {
			return claims, false, nil
		}
		return claims, false, AuthenticationFailed(err)
	}

	enriched := *claims
	enriched.UserID = account.ID
	enriched.Username = account.Username
	enriched.Image = account.Image
	enriched.Role = account.Role

	service.logger.DebugContext(ctx, "session claims backfilled",
		slog.String("account_id", account.ID),
	)

	return &enriched, true, nil
}

// availableUsername probes the account table for a free handle, starting
// from base and appending an increasing numeric suffix: base, base1, base2.
func (service *Service) availableUsername(ctx context.Context, base string) (string, error) {
	candidate := base
	for suffix := 1; ; suffix++ {
		_, err := service.accounts.FindByUsername(ctx, candidate)
		if errors.Is(err, dberr.ErrNotFound) {
			return candidate, nil
		}
		if err != nil {
			return "", AuthenticationFailed(err)
		}
		if suffix > usernameSuffixLimit {
			return "", AuthenticationFailed(errors.New("auth: username suffix space exhausted for " + base))
		}
		candidate = base + strconv.Itoa(suffix)
	}
}

// createAccount persists a new account with a fresh UUIDv7 id, translating
// duplicate-key races into the generic conflict error.
func (service *Service) createAccount(ctx context.Context, handle, email, passwordHash, image string) (*Account, error) {
	id, err := uuid.New()
	if err != nil {
		return nil, AuthenticationFailed(err)
	}

	now := time.Now().UTC()
	account := &Account{
		ID:           id,
		Username:     handle,
		Email:        email,
		PasswordHash: passwordHash,
		Image:        image,
		Role:         string(sec.RoleUser),
		CreatedAt:    now,
		UpdatedAt:    now,
	}

	if err := service.accounts.Create(ctx, account); err != nil {
		if errors.Is(err, dberr.ErrDuplicate) {
			return nil, dberr.ErrDuplicate
		}
		return nil, AuthenticationFailed(err)
	}

	return account, nil
}
