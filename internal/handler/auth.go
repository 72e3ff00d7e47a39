package handler

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/postpilot/postpilot/internal/service"
)

type AuthHandler struct {
	authService *service.AuthService
}

func NewAuthHandler(authService *service.AuthService) *AuthHandler {
	return &AuthHandler{
		authService: authService,
	}
}

type tokenRequest struct {
	APIKey string `json:"apiKey"`
}

type tokenResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expiresAt"`
}

// Token serves POST /auth/token: exchanges the API key for a session JWT.
func (h *AuthHandler) Token(w http.ResponseWriter, r *http.Request) {
	var req tokenRequest
	err := json.NewDecoder(r.Body).Decode(&req)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	token, expiresAt, err := h.authService.IssueToken(req.APIKey)
	if err != nil {
		respondError(w, http.StatusUnauthorized, "invalid api key")
		return
	}

	respondJSON(w, http.StatusOK, tokenResponse{Token: token, ExpiresAt: expiresAt})
}
