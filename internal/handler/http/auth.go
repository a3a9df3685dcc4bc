package http

import (
	"encoding/json"
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/pph21-engine/internal/domain/auth"
	"github.com/cmlabs-hris/pph21-engine/internal/handler/http/response"
	"github.com/cmlabs-hris/pph21-engine/internal/pkg/jwt"
)

type AuthHandler interface {
	IssueToken(w http.ResponseWriter, r *http.Request)
	RevokeToken(w http.ResponseWriter, r *http.Request)
}

type AuthHandlerImpl struct {
	jwtService jwt.Service
}

func NewAuthHandler(jwtService jwt.Service) AuthHandler {
	return &AuthHandlerImpl{jwtService: jwtService}
}

// IssueToken implements AuthHandler.
func (a *AuthHandlerImpl) IssueToken(w http.ResponseWriter, r *http.Request) {
	var req auth.IssueTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	token, expiresAt, err := a.jwtService.GenerateAccessToken(req.Subject, req.IsAdmin)
	if err != nil {
		slog.Error("IssueToken generate error", "error", err)
		response.HandleError(w, err)
		return
	}

	response.Created(w, "Token issued", auth.TokenResponse{
		AccessToken: token,
		TokenType:   "Bearer",
		ExpiresAt:   expiresAt,
	})
}

// RevokeToken implements AuthHandler.
func (a *AuthHandlerImpl) RevokeToken(w http.ResponseWriter, r *http.Request) {
	var req auth.RevokeTokenRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		response.BadRequest(w, "Invalid request body", nil)
		return
	}

	if err := req.Validate(); err != nil {
		response.HandleError(w, err)
		return
	}

	a.jwtService.RevokeToken(req.Token)
	response.SuccessWithMessage(w, "Token revoked", nil)
}
