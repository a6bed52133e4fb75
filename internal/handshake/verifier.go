package handshake

import (
	"context"
	"ggarquitectos-site/internal/models"
)

//go:generate mockgen -source=verifier.go -destination=../mocks/verifier.go -package=mocks

// VerifyResult is the backend's answer to an ID token. Token, when set, is the
// backend session token to use instead of the ID token.
type VerifyResult struct {
	Valid   bool                `json:"valid"`
	Message string              `json:"message,omitempty"`
	Token   string              `json:"token,omitempty"`
	User    *models.UserSummary `json:"user,omitempty"`
}

type Verifier interface {
	Verify(ctx context.Context, idToken string) (*VerifyResult, error)
}
