// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

/*
Package google implements Google federated sign-in via OpenID Connect.

# Flow

Begin stores a random state/nonce pair and redirects the browser to
Google's consent screen. Complete exchanges the returned code, verifies
the ID token signature against Google's published keys, checks the nonce
against the stored single-use entry, and hands the asserted profile back
to the reconciliation flow.
*/
package google

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/coreos/go-oidc/v3/oidc"
	"golang.org/x/oauth2"

	"github.com/phamduylong/authgate/internal/auth"
	"github.com/phamduylong/authgate/internal/platform/sec"
)

const (
	// providerName is the slug used in routes and audit logs.
	providerName = "google"

	// issuerURL is Google's OpenID Connect issuer.
	issuerURL = "https://accounts.google.com"

	// stateByteLength sizes the random state and nonce values.
	stateByteLength = 16
)

// StateStore persists in-flight OAuth state entries.
//
// Entries are single-use: Take must delete on read so a state value can
// never complete two logins.
type StateStore interface {
	// Set stores the nonce under the given state with an expiry.
	Set(ctx context.Context, state, nonce string, ttl time.Duration) error

	// Take atomically fetches and deletes the nonce for a state.
	Take(ctx context.Context, state string) (string, error)
}

// Provider implements [auth.FederatedProvider] for Google.
type Provider struct {
	oauthConfig *oauth2.Config
	verifier    *oidc.IDTokenVerifier
	states      StateStore
	logger      *slog.Logger
}

// NewProvider performs OIDC discovery against Google and builds the provider.
//
// # Parameters
//   - ctx: Context for the discovery request.
//   - clientID, clientSecret: OAuth client credentials from the Google console.
//   - redirectURL: The absolute callback URL registered with Google.
//   - states: Store for single-use state/nonce entries.
//   - logger: Structured logger for flow events.
func NewProvider(ctx context.Context, clientID, clientSecret, redirectURL string, states StateStore, logger *slog.Logger) (*Provider, error) {
	oidcProvider, err := oidc.NewProvider(ctx, issuerURL)
	if err != nil {
		return nil, fmt.Errorf("google: OIDC discovery failed: %w", err)
	}

	return &Provider{
		oauthConfig: &oauth2.Config{
			ClientID:     clientID,
			ClientSecret: clientSecret,
			RedirectURL:  redirectURL,
			Endpoint:     oidcProvider.Endpoint(),
			Scopes:       []string{oidc.ScopeOpenID, "profile", "email"},
		},
		verifier: oidcProvider.Verifier(&oidc.Config{ClientID: clientID}),
		states:   states,
		logger:   logger,
	}, nil
}

// Name returns the provider slug.
func (provider *Provider) Name() string { return providerName }

// Begin starts the authorization-code flow with a fresh state/nonce pair.
func (provider *Provider) Begin(writer http.ResponseWriter, request *http.Request) error {
	state, err := sec.GenerateSecureToken(stateByteLength)
	if err != nil {
		return fmt.Errorf("google: state generation failed: %w", err)
	}
	nonce, err := sec.GenerateSecureToken(stateByteLength)
	if err != nil {
		return fmt.Errorf("google: nonce generation failed: %w", err)
	}

	if err := provider.states.Set(request.Context(), state, nonce, auth.OAuthStateTTL); err != nil {
		return fmt.Errorf("google: storing state failed: %w", err)
	}

	consentURL := provider.oauthConfig.AuthCodeURL(state, oidc.Nonce(nonce))
	http.Redirect(writer, request, consentURL, http.StatusFound)
	return nil
}

// Complete validates the provider callback and returns the asserted profile.
func (provider *Provider) Complete(request *http.Request) (*auth.ProviderIdentity, error) {
	ctx := request.Context()
	query := request.URL.Query()

	// Google reports consent denial via an error parameter.
	if providerError := query.Get("error"); providerError != "" {
		return nil, fmt.Errorf("google: provider returned error: %s", providerError)
	}

	// ── 1. Redeem the single-use state ───────────────────────────────────
	state := query.Get("state")
	if state == "" {
		return nil, errors.New("google: callback missing state")
	}
	expectedNonce, err := provider.states.Take(ctx, state)
	if err != nil {
		return nil, fmt.Errorf("google: unknown or expired state: %w", err)
	}

	// ── 2. Exchange the code and verify the ID token ─────────────────────
	code := query.Get("code")
	if code == "" {
		return nil, errors.New("google: callback missing code")
	}
	oauthToken, err := provider.oauthConfig.Exchange(ctx, code)
	if err != nil {
		return nil, fmt.Errorf("google: code exchange failed: %w", err)
	}

	rawIDToken, ok := oauthToken.Extra("id_token").(string)
	if !ok {
		return nil, errors.New("google: token response missing id_token")
	}
	idToken, err := provider.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("google: ID token verification failed: %w", err)
	}
	if idToken.Nonce != expectedNonce {
		return nil, errors.New("google: nonce mismatch")
	}

	// ── 3. Extract the asserted profile ──────────────────────────────────
	var profile struct {
		Email   string `json:"email"`
		Name    string `json:"name"`
		Picture string `json:"picture"`
	}
	if err := idToken.Claims(&profile); err != nil {
		return nil, fmt.Errorf("google: claim extraction failed: %w", err)
	}

	provider.logger.DebugContext(ctx, "federated callback verified",
		slog.String("provider", providerName),
		slog.String("subject", idToken.Subject),
	)

	// A missing email is passed through; reconciliation decides whether
	// the identity is usable.
	return &auth.ProviderIdentity{
		Provider: providerName,
		Email:    profile.Email,
		Name:     profile.Name,
		Image:    profile.Picture,
	}, nil
}
