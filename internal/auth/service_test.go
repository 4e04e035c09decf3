// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth_test

import (
	"context"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/phamduylong/authgate/internal/auth"
	"github.com/phamduylong/authgate/internal/platform/apperr"
	"github.com/phamduylong/authgate/internal/platform/dberr"
	"github.com/phamduylong/authgate/internal/platform/sec"
	"github.com/phamduylong/authgate/pkg/uuid"
)

// fakeAccountStore is an in-memory [auth.AccountStore] that records every
// write so tests can assert on side effects.
type fakeAccountStore struct {
	accounts     map[string]*auth.Account // keyed by email
	created      []*auth.Account
	imageUpdates map[string]string // email -> new image
	failWith     error             // when set, every call fails
}

func newFakeAccountStore(seed ...*auth.Account) *fakeAccountStore {
	store := &fakeAccountStore{
		accounts:     make(map[string]*auth.Account),
		imageUpdates: make(map[string]string),
	}
	for _, account := range seed {
		store.accounts[account.Email] = account
	}
	return store
}

func (store *fakeAccountStore) FindByID(ctx context.Context, id string) (*auth.Account, error) {
	if store.failWith != nil {
		return nil, store.failWith
	}
	for _, account := range store.accounts {
		if account.ID == id {
			copied := *account
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeAccountStore) FindByEmail(ctx context.Context, email string) (*auth.Account, error) {
	if store.failWith != nil {
		return nil, store.failWith
	}
	if account, ok := store.accounts[email]; ok {
		copied := *account
		return &copied, nil
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeAccountStore) FindByUsername(ctx context.Context, name string) (*auth.Account, error) {
	if store.failWith != nil {
		return nil, store.failWith
	}
	for _, account := range store.accounts {
		if account.Username == name {
			copied := *account
			return &copied, nil
		}
	}
	return nil, dberr.ErrNotFound
}

func (store *fakeAccountStore) Create(ctx context.Context, account *auth.Account) error {
	if store.failWith != nil {
		return store.failWith
	}
	if _, ok := store.accounts[account.Email]; ok {
		return dberr.ErrDuplicate
	}
	copied := *account
	store.accounts[account.Email] = &copied
	store.created = append(store.created, &copied)
	return nil
}

func (store *fakeAccountStore) UpdateImageByEmail(ctx context.Context, email string, image string) error {
	if store.failWith != nil {
		return store.failWith
	}
	account, ok := store.accounts[email]
	if !ok {
		return dberr.ErrNotFound
	}
	account.Image = image
	store.imageUpdates[email] = image
	return nil
}

// writeCount is the total number of mutations the store has seen.
func (store *fakeAccountStore) writeCount() int {
	return len(store.created) + len(store.imageUpdates)
}

// fakeTokenIssuer mints predictable tokens.
type fakeTokenIssuer struct{}

func (fakeTokenIssuer) GenerateSessionToken(userID, username, email, image, role string, timeToLive time.Duration) (string, error) {
	return "token-for-" + username, nil
}

func newTestService(store auth.AccountStore) *auth.Service {
	return auth.NewService(store, fakeTokenIssuer{}, slog.Default())
}

func seedAccount(t *testing.T, username, email, password string) *auth.Account {
	t.Helper()
	hash, err := sec.HashPassword(password)
	require.NoError(t, err)
	return &auth.Account{
		ID:           uuid.Must(),
		Username:     username,
		Email:        email,
		PasswordHash: hash,
		Role:         string(sec.RoleUser),
	}
}

// # Signup

func TestSignup_Success(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	identity, err := service.Signup(context.Background(), auth.SignupInput{
		Username: "jdoe",
		Email:    "JDoe@Example.com",
		Password: "hunter2hunter2",
	})
	require.NoError(t, err)

	assert.Equal(t, "jdoe", identity.Username)
	assert.Equal(t, "jdoe@example.com", identity.Email, "email is normalized to lowercase")
	assert.Equal(t, string(sec.RoleUser), identity.Role)
	assert.NotEmpty(t, identity.ID)

	require.Len(t, store.created, 1)
	assert.True(t, sec.CheckPasswordHash("hunter2hunter2", store.created[0].PasswordHash),
		"stored hash must verify against the original password")
}

func TestSignup_UsernameTaken(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "other@example.com", "password123"))
	service := newTestService(store)

	_, err := service.Signup(context.Background(), auth.SignupInput{
		Username: "jdoe",
		Email:    "new@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, auth.ErrUsernameExists)
	assert.Empty(t, store.created)
}

func TestSignup_EmailTaken(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "jdoe@example.com", "password123"))
	service := newTestService(store)

	_, err := service.Signup(context.Background(), auth.SignupInput{
		Username: "othername",
		Email:    "jdoe@example.com",
		Password: "password123",
	})

	assert.ErrorIs(t, err, auth.ErrEmailExists)
	assert.Empty(t, store.created)
}

func TestSignup_Validation(t *testing.T) {
	tests := []struct {
		name  string
		input auth.SignupInput
	}{
		{"empty_payload", auth.SignupInput{}},
		{"missing_password", auth.SignupInput{Username: "jdoe", Email: "jdoe@example.com"}},
		{"invalid_email", auth.SignupInput{Username: "jdoe", Email: "not-an-email", Password: "password123"}},
		{"uppercase_username", auth.SignupInput{Username: "JDoe", Email: "jdoe@example.com", Password: "password123"}},
		{"short_password", auth.SignupInput{Username: "jdoe", Email: "jdoe@example.com", Password: "short"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			store := newFakeAccountStore()
			_, err := newTestService(store).Signup(context.Background(), tt.input)

			appError := apperr.As(err)
			require.NotNil(t, appError)
			assert.Equal(t, "VALIDATION_ERROR", appError.Code)
			assert.Zero(t, store.writeCount())
		})
	}
}

// # Credential Verification

func TestVerifyCredentials_Success(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "jdoe@example.com", "password123"))
	service := newTestService(store)

	identity, err := service.VerifyCredentials(context.Background(), "jdoe@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", identity.Username)
}

func TestVerifyCredentials_Failures(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "jdoe@example.com", "password123"))
	service := newTestService(store)

	tests := []struct {
		name     string
		email    string
		password string
		wantErr  error
	}{
		{"missing_email", "", "password123", auth.ErrMissingCredentials},
		{"missing_password", "jdoe@example.com", "", auth.ErrMissingCredentials},
		{"unknown_email", "ghost@example.com", "password123", auth.ErrInvalidCredentials},
		{"wrong_password", "jdoe@example.com", "nope-nope", auth.ErrInvalidCredentials},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := service.VerifyCredentials(context.Background(), tt.email, tt.password)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}

func TestVerifyCredentials_FederatedAccountNeverMatches(t *testing.T) {
	// Provision an account through the federated flow, then try to sign in
	// with its stored placeholder as the password.
	store := newFakeAccountStore()
	service := newTestService(store)

	_, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "jdoe@example.com",
		Name:     "J Doe",
	})
	require.NoError(t, err)
	require.Len(t, store.created, 1)

	placeholder := store.created[0].PasswordHash
	_, err = service.VerifyCredentials(context.Background(), "jdoe@example.com", placeholder)
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)
}

// # Identity Reconciliation

func TestReconcileIdentity_ProvisionsNewAccount(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	identity, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "jdoe@example.com",
		Name:     "J Doe",
		Image:    "https://lh3.example.com/photo.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "jdoe", identity.Username, "display name is lowercased and squashed")
	assert.Equal(t, "jdoe@example.com", identity.Email)
	assert.Equal(t, "https://lh3.example.com/photo.jpg", identity.Image)
	assert.Equal(t, string(sec.RoleUser), identity.Role)

	require.Len(t, store.created, 1)
	created := store.created[0]
	assert.NotEmpty(t, created.PasswordHash, "placeholder password is set")
	assert.False(t, sec.CheckPasswordHash(created.PasswordHash, created.PasswordHash),
		"placeholder is not a usable bcrypt hash")
}

func TestReconcileIdentity_UsernameCollisionSuffix(t *testing.T) {
	store := newFakeAccountStore(
		seedAccount(t, "jdoe", "a@example.com", "password123"),
		seedAccount(t, "jdoe1", "b@example.com", "password123"),
	)
	service := newTestService(store)

	identity, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "c@example.com",
		Name:     "J Doe",
	})
	require.NoError(t, err)

	assert.Equal(t, "jdoe2", identity.Username, "first free suffix wins")
}

func TestReconcileIdentity_ExistingAccountIsIdempotent(t *testing.T) {
	existing := seedAccount(t, "customname", "jdoe@example.com", "password123")
	existing.Image = "https://lh3.example.com/photo.jpg"
	store := newFakeAccountStore(existing)
	service := newTestService(store)

	identity, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "jdoe@example.com",
		Name:     "J Doe",
		Image:    "https://lh3.example.com/photo.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "customname", identity.Username, "existing username is never rewritten")
	assert.Zero(t, store.writeCount(), "a repeat login with an unchanged profile writes nothing")
}

func TestReconcileIdentity_RefreshesImageOnly(t *testing.T) {
	existing := seedAccount(t, "customname", "jdoe@example.com", "password123")
	existing.Image = "https://lh3.example.com/old.jpg"
	store := newFakeAccountStore(existing)
	service := newTestService(store)

	identity, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "jdoe@example.com",
		Name:     "Totally Different Name",
		Image:    "https://lh3.example.com/new.jpg",
	})
	require.NoError(t, err)

	assert.Equal(t, "customname", identity.Username)
	assert.Equal(t, "https://lh3.example.com/new.jpg", identity.Image)
	assert.Equal(t, "https://lh3.example.com/new.jpg", store.imageUpdates["jdoe@example.com"])
	assert.Empty(t, store.created, "no new account is provisioned")
}

func TestReconcileIdentity_MissingEmail(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	_, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Name:     "J Doe",
	})

	assert.ErrorIs(t, err, auth.ErrEmailRequired)
	assert.Zero(t, store.writeCount())
}

func TestReconcileIdentity_EmailFallbackUsername(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	identity, err := service.ReconcileIdentity(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "first.last@example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, "first.last", identity.Username, "local part of the email is the fallback handle")
}

// # Sign-In & Sessions

func TestSignIn_IssuesToken(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "jdoe@example.com", "password123"))
	service := newTestService(store)

	identity, token, err := service.SignIn(context.Background(), "jdoe@example.com", "password123")
	require.NoError(t, err)
	assert.Equal(t, "jdoe", identity.Username)
	assert.Equal(t, "token-for-jdoe", token)
}

func TestFederatedSignIn_IssuesToken(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	identity, token, err := service.FederatedSignIn(context.Background(), auth.ProviderIdentity{
		Provider: "google",
		Email:    "jdoe@example.com",
		Name:     "J Doe",
	})
	require.NoError(t, err)
	assert.Equal(t, "jdoe", identity.Username)
	assert.Equal(t, "token-for-jdoe", token)
}

// # Claim Backfill

func TestEnrichClaims_BackfillsLegacyToken(t *testing.T) {
	account := seedAccount(t, "jdoe", "jdoe@example.com", "password123")
	account.Image = "https://lh3.example.com/photo.jpg"
	store := newFakeAccountStore(account)
	service := newTestService(store)

	claims := &sec.AuthClaims{Email: "jdoe@example.com"}
	enriched, changed, err := service.EnrichClaims(context.Background(), claims)
	require.NoError(t, err)

	assert.True(t, changed)
	assert.Equal(t, account.ID, enriched.UserID)
	assert.Equal(t, "jdoe", enriched.Username)
	assert.Equal(t, "https://lh3.example.com/photo.jpg", enriched.Image)
	assert.Equal(t, string(sec.RoleUser), enriched.Role)
	assert.Empty(t, claims.Username, "input claims are not mutated")
}

func TestEnrichClaims_CompleteTokenUntouched(t *testing.T) {
	store := newFakeAccountStore(seedAccount(t, "jdoe", "jdoe@example.com", "password123"))
	service := newTestService(store)

	claims := &sec.AuthClaims{Username: "jdoe", Email: "jdoe@example.com"}
	enriched, changed, err := service.EnrichClaims(context.Background(), claims)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Same(t, claims, enriched)
}

func TestEnrichClaims_VanishedAccountKeepsSession(t *testing.T) {
	store := newFakeAccountStore()
	service := newTestService(store)

	claims := &sec.AuthClaims{Email: "gone@example.com"}
	enriched, changed, err := service.EnrichClaims(context.Background(), claims)
	require.NoError(t, err)

	assert.False(t, changed)
	assert.Same(t, claims, enriched)
}
