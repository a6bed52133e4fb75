package auth

import (
	"context"
	"errors"
	"fmt"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/middlewares"
	"ggarquitectos-site/internal/models"

	"github.com/coreos/go-oidc/v3/oidc"
)

var ErrEmailNotVerified = errors.New("google account email is not verified")

// NewGoogleVerifier discovers the issuer and returns a verifier bound to the
// configured client id.
func NewGoogleVerifier(ctx context.Context, cfg config.GoogleConfig) (middlewares.IDTokenVerifier, error) {
	provider, err := oidc.NewProvider(ctx, cfg.IssuerURL)
	if err != nil {
		return nil, fmt.Errorf("failed to create OIDC provider: %w", err)
	}

	return &GoogleVerifier{
		verifier: provider.Verifier(&oidc.Config{ClientID: cfg.ClientID}),
	}, nil
}

type GoogleVerifier struct {
	verifier *oidc.IDTokenVerifier
}

func (g *GoogleVerifier) VerifyIDToken(ctx context.Context, rawIDToken string) (*models.GoogleIdentity, error) {
	idToken, err := g.verifier.Verify(ctx, rawIDToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify ID token: %w", err)
	}

	var claims models.GoogleIdentity
	if err := idToken.Claims(&claims); err != nil {
		return nil, fmt.Errorf("failed to parse ID token claims: %w", err)
	}

	if claims.Subject == "" {
		claims.Subject = idToken.Subject
	}

	if !claims.EmailVerified {
		return nil, ErrEmailNotVerified
	}

	return &claims, nil
}
