package auth

import "github.com/cmlabs-hris/pph21-engine/internal/pkg/validator"

// IssueTokenRequest mints an access token for a payroll caller.
type IssueTokenRequest struct {
	Subject string `json:"subject"`
	IsAdmin bool   `json:"is_admin"`
}

func (r *IssueTokenRequest) Validate() error {
	if validator.IsEmpty(r.Subject) {
		return validator.ValidationErrors{{Field: "subject", Message: "subject is required"}}
	}
	return nil
}

type TokenResponse struct {
	AccessToken string `json:"access_token"`
	TokenType   string `json:"token_type"`
	ExpiresAt   int64  `json:"expires_at"`
}

type RevokeTokenRequest struct {
	Token string `json:"token"`
}

func (r *RevokeTokenRequest) Validate() error {
	if validator.IsEmpty(r.Token) {
		return validator.ValidationErrors{{Field: "token", Message: "token is required"}}
	}
	return nil
}
