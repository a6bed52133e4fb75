package middlewares

import (
	"context"
	"ggarquitectos-site/internal/models"
)

//go:generate mockgen -source=oidc_provider.go -destination=../mocks/oidc.go -package=mocks

type IDTokenVerifier interface {
	VerifyIDToken(ctx context.Context, rawIDToken string) (*models.GoogleIdentity, error)
}
