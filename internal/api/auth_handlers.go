package api

import (
	"crypto/subtle"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/example/dscommerce/internal/auth"
	"github.com/example/dscommerce/internal/infrastructure/store"
)

// TokenResponse is the OAuth2 access token response
type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresIn   int64  `json:"expires_in"`
}

// OAuthError is the OAuth2 error response
type OAuthError struct {
	Error            string `json:"error"`
	ErrorDescription string `json:"error_description,omitempty"`
}

// AuthHandlers issues access tokens for the resource owner password grant
type AuthHandlers struct {
	users        store.UserStore
	jwtService   *auth.JWTService
	clientID     string
	clientSecret string
	log          *slog.Logger
}

// NewAuthHandlers creates a new AuthHandlers instance. When clientID is
// empty the token endpoint does not require client authentication.
func NewAuthHandlers(users store.UserStore, jwtService *auth.JWTService, clientID, clientSecret string, log *slog.Logger) *AuthHandlers {
	return &AuthHandlers{
		users:        users,
		jwtService:   jwtService,
		clientID:     clientID,
		clientSecret: clientSecret,
		log:          log.With("component", "token"),
	}
}

// Token handles POST /oauth2/token
func (h *AuthHandlers) Token(w http.ResponseWriter, r *http.Request) {
	if h.clientID != "" && !h.clientAuthenticated(r) {
		w.Header().Set("WWW-Authenticate", `Basic realm="oauth2"`)
		respondJSON(w, http.StatusUnauthorized, OAuthError{Error: "invalid_client"})
		return
	}

	if err := r.ParseForm(); err != nil {
		respondJSON(w, http.StatusBadRequest, OAuthError{Error: "invalid_request", ErrorDescription: "Invalid form body"})
		return
	}
	if r.PostForm.Get("grant_type") != "password" {
		respondJSON(w, http.StatusBadRequest, OAuthError{Error: "unsupported_grant_type"})
		return
	}

	username := strings.TrimSpace(r.PostForm.Get("username"))
	password := r.PostForm.Get("password")
	if username == "" || password == "" {
		respondJSON(w, http.StatusBadRequest, OAuthError{Error: "invalid_request", ErrorDescription: "username and password are required"})
		return
	}

	u, found, err := h.users.GetUserByEmail(r.Context(), username)
	if err != nil {
		h.log.Error("load user", "err", err)
		respondJSON(w, http.StatusInternalServerError, OAuthError{Error: "server_error"})
		return
	}
	if !found || !auth.CheckPassword(password, u.PasswordHash) {
		respondJSON(w, http.StatusBadRequest, OAuthError{Error: "invalid_grant", ErrorDescription: "Bad credentials"})
		return
	}

	token, expiresAt, err := h.jwtService.GenerateAccessToken(u.ID, u.Email, u.Roles)
	if err != nil {
		h.log.Error("sign token", "user_id", u.ID, "err", err)
		respondJSON(w, http.StatusInternalServerError, OAuthError{Error: "server_error"})
		return
	}

	w.Header().Set("Cache-Control", "no-store")
	respondJSON(w, http.StatusOK, TokenResponse{
		AccessToken: token,
		TokenType:   "bearer",
		ExpiresIn:   int64(time.Until(expiresAt).Round(time.Second).Seconds()),
	})
}

func (h *AuthHandlers) clientAuthenticated(r *http.Request) bool {
	id, secret, ok := r.BasicAuth()
	if !ok {
		return false
	}
	idOK := subtle.ConstantTimeCompare([]byte(id), []byte(h.clientID)) == 1
	secretOK := subtle.ConstantTimeCompare([]byte(secret), []byte(h.clientSecret)) == 1
	return idOK && secretOK
}
