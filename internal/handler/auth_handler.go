package handler

import (
	"net/http"
	"os"

	"github.com/rs/zerolog/log"

	"github.com/efreeman/polity/internal/auth"
)

// AuthHandler issues API tokens. There is no user store; a token just
// names its holder for logging and WebSocket identity.
type AuthHandler struct {
	jwtMgr *auth.JWTManager
}

// NewAuthHandler creates an AuthHandler.
func NewAuthHandler(jwtMgr *auth.JWTManager) *AuthHandler {
	return &AuthHandler{jwtMgr: jwtMgr}
}

// Login handles POST /auth/login. It exchanges the shared API key for a
// bearer token.
func (h *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	var req struct {
		User   string `json:"user"`
		APIKey string `json:"api_key"`
	}
	if err := decodeJSON(r, &req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.User == "" {
		writeError(w, http.StatusBadRequest, "user is required")
		return
	}

	apiKey := os.Getenv("API_KEY")
	if apiKey == "" || req.APIKey != apiKey {
		writeError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	token, err := h.jwtMgr.IssueToken(req.User)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	log.Info().Str("user", req.User).Msg("Token issued")
	writeJSON(w, http.StatusOK, token)
}

// DevLogin handles GET /auth/dev, unauthenticated token minting for
// local development. Enabled only when DEV=true.
func (h *AuthHandler) DevLogin(w http.ResponseWriter, r *http.Request) {
	if os.Getenv("DEV") != "true" {
		writeError(w, http.StatusForbidden, "dev login disabled")
		return
	}
	user := r.URL.Query().Get("user")
	if user == "" {
		user = "dev"
	}
	token, err := h.jwtMgr.IssueToken(user)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "failed to generate token")
		return
	}
	writeJSON(w, http.StatusOK, token)
}
