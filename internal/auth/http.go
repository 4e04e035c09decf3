// Copyright (c) 2026 Authgate. All rights reserved.
// Author: long.phamduy.dev@gmail.com

package auth

import (
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"

	"github.com/phamduylong/authgate/internal/platform/apperr"
	"github.com/phamduylong/authgate/internal/platform/constants"
	"github.com/phamduylong/authgate/internal/platform/ctxutil"
	requestutil "github.com/phamduylong/authgate/internal/platform/request"
	"github.com/phamduylong/authgate/internal/platform/respond"
	"github.com/phamduylong/authgate/internal/platform/sec"
)

// Handler exposes the authentication flows over HTTP.
type Handler struct {
	service       *Service
	tokens        *sec.TokenService
	providers     map[string]FederatedProvider
	secureCookies bool
}

// NewHandler wires the auth HTTP handler.
//
// # Parameters
//   - service: The auth domain service.
//   - tokens: Token service used to re-sign enriched session claims.
//   - secureCookies: Whether session cookies carry the Secure attribute.
//     Disabled only for plain-HTTP local development.
func NewHandler(service *Service, tokens *sec.TokenService, secureCookies bool) *Handler {
	return &Handler{
		service:       service,
		tokens:        tokens,
		providers:     make(map[string]FederatedProvider),
		secureCookies: secureCookies,
	}
}

// RegisterProvider mounts a federated identity provider under
// /{provider} and /{provider}/callback.
func (handler *Handler) RegisterProvider(provider FederatedProvider) {
	handler.providers[provider.Name()] = provider
}

// Routes returns the router for the /api/auth subtree.
func (handler *Handler) Routes() chi.Router {
	router := chi.NewRouter()

	router.Post("/signup", handler.handleSignup)
	router.Post("/signin", handler.handleSignIn)
	router.Post("/signout", handler.handleSignOut)
	router.Get("/session", handler.handleSession)

	router.Get("/{provider}", handler.handleFederatedBegin)
	router.Get("/{provider}/callback", handler.handleFederatedCallback)

	return router
}

// # Local Credential Flows

// handleSignup registers a new account.
//
//	POST /api/auth/signup
func (handler *Handler) handleSignup(writer http.ResponseWriter, request *http.Request) {
	var input SignupInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, err := handler.service.Signup(request.Context(), input)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	respond.Created(writer, identity)
}

// signInInput is the payload for credential sign-in.
type signInInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// signInResponse carries the token for API clients alongside the identity;
// browsers rely on the cookie instead.
type signInResponse struct {
	AccessToken string    `json:"access_token"`
	User        *Identity `json:"user"`
}

// handleSignIn authenticates with email and password and sets the session cookie.
//
//	POST /api/auth/signin
func (handler *Handler) handleSignIn(writer http.ResponseWriter, request *http.Request) {
	var input signInInput
	if err := requestutil.DecodeJSON(request, &input); err != nil {
		respond.Error(writer, request, err)
		return
	}

	identity, token, err := handler.service.SignIn(request.Context(), input.Email, input.Password)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	respond.OK(writer, signInResponse{AccessToken: token, User: identity})
}

// handleSignOut clears the session cookie. The token itself stays valid
// until expiry; there is no server-side session to revoke.
//
//	POST /api/auth/signout
func (handler *Handler) handleSignOut(writer http.ResponseWriter, request *http.Request) {
	handler.clearSessionCookie(writer)
	respond.NoContent(writer)
}

// handleSession returns the current session identity, or null when anonymous.
//
// Legacy tokens that predate the username claim are backfilled from the
// account table here, and the refreshed cookie is re-signed with the
// original expiry preserved.
//
//	GET /api/auth/session
func (handler *Handler) handleSession(writer http.ResponseWriter, request *http.Request) {
	claims := ctxutil.GetAuthUser(request.Context())
	if claims == nil {
		respond.OK(writer, nil)
		return
	}

	enriched, changed, err := handler.service.EnrichClaims(request.Context(), claims)
	if err != nil {
		respond.Error(writer, request, err)
		return
	}

	if changed {
		token, err := handler.tokens.ResignToken(enriched)
		if err != nil {
			respond.Error(writer, request, AuthenticationFailed(err))
			return
		}
		handler.setSessionCookie(writer, token)
	}

	respond.OK(writer, Identity{
		ID:       enriched.UserID,
		Username: enriched.Username,
		Email:    enriched.Email,
		Image:    enriched.Image,
		Role:     enriched.Role,
	})
}

// # Federated Flows

// handleFederatedBegin redirects the browser to the provider's consent screen.
//
//	GET /api/auth/{provider}
func (handler *Handler) handleFederatedBegin(writer http.ResponseWriter, request *http.Request) {
	provider, ok := handler.providers[requestutil.Param(request, "provider")]
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Provider"))
		return
	}

	if err := provider.Begin(writer, request); err != nil {
		respond.Error(writer, request, AuthenticationFailed(err))
	}
}

// handleFederatedCallback consumes the provider callback, reconciles the
// asserted identity, sets the session cookie, and lands on the dashboard.
//
// This is a browser navigation, so failures redirect back to the sign-in
// page with an error code instead of rendering JSON.
//
//	GET /api/auth/{provider}/callback
func (handler *Handler) handleFederatedCallback(writer http.ResponseWriter, request *http.Request) {
	provider, ok := handler.providers[requestutil.Param(request, "provider")]
	if !ok {
		respond.Error(writer, request, apperr.NotFound("Provider"))
		return
	}

	asserted, err := provider.Complete(request)
	if err != nil {
		handler.redirectSignInError(writer, request, AuthenticationFailed(err))
		return
	}

	_, token, err := handler.service.FederatedSignIn(request.Context(), *asserted)
	if err != nil {
		handler.redirectSignInError(writer, request, err)
		return
	}

	handler.setSessionCookie(writer, token)
	http.Redirect(writer, request, constants.PathDashboard, http.StatusFound)
}

// redirectSignInError sends the browser back to the sign-in page carrying
// the machine-readable error code in the query string.
func (handler *Handler) redirectSignInError(writer http.ResponseWriter, request *http.Request, err error) {
	code := "AUTHENTICATION_FAILED"
	if appError := apperr.As(err); appError != nil {
		code = appError.Code
	}

	target := constants.PathSignIn + "?error=" + url.QueryEscape(code)
	http.Redirect(writer, request, target, http.StatusFound)
}

// # Cookie Management

// setSessionCookie attaches the signed session token to the response.
func (handler *Handler) setSessionCookie(writer http.ResponseWriter, token string) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    token,
		Path:     constants.SessionCookiePath,
		MaxAge:   int(SessionTokenTTL.Seconds()),
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}

// clearSessionCookie expires the session cookie immediately.
func (handler *Handler) clearSessionCookie(writer http.ResponseWriter) {
	http.SetCookie(writer, &http.Cookie{
		Name:     constants.SessionCookieName,
		Value:    "",
		Path:     constants.SessionCookiePath,
		MaxAge:   -1,
		HttpOnly: true,
		Secure:   handler.secureCookies,
		SameSite: http.SameSiteLaxMode,
	})
}
