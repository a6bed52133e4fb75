package handshake

import (
	"context"
	"errors"
	"fmt"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/models"
	"ggarquitectos-site/internal/token"
	"log/slog"
	"time"
)

const DefaultTimeout = 5 * time.Minute

type SessionLogin interface {
	Login(token string, user *models.UserSummary) error
}

// Opener drives one sign in at a time from the process side: it opens the
// authorization page, waits for the callback message and logs the session in.
type Opener struct {
	google   config.GoogleConfig
	timeout  time.Duration
	router   *Router
	browser  Browser
	verifier Verifier
	store    SessionLogin
	logger   *slog.Logger

	// OnAuthURL, when set, is called with the authorization URL before the
	// browser is opened.
	OnAuthURL func(string)

	randString func(int) string
}

func NewOpener(google config.GoogleConfig, timeout time.Duration, router *Router, browser Browser, verifier Verifier, store SessionLogin, logger *slog.Logger) *Opener {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	if logger == nil {
		logger = slog.Default()
	}

	return &Opener{
		google:     google,
		timeout:    timeout,
		router:     router,
		browser:    browser,
		verifier:   verifier,
		store:      store,
		logger:     logger,
		randString: GenerateRandString,
	}
}

// Login runs a full sign in attempt and returns the signed in user.
func (o *Opener) Login(ctx context.Context) (*models.UserSummary, error) {
	state := o.randString(32)
	nonce := o.randString(32)

	pending := o.router.Listen(o.router.Origin(), state)
	defer pending.Cancel()

	authURL := AuthURL(o.google, state, nonce)
	if o.OnAuthURL != nil {
		o.OnAuthURL(authURL)
	}

	if err := o.browser.Open(authURL); err != nil {
		o.logger.Warn("Failed to open browser, open the sign in URL manually", "url", authURL, "error", err)
	}

	waitCtx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	msg, err := pending.Wait(waitCtx)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) {
			metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeTimeout).Inc()
			o.logger.Warn("Sign in window was not completed", "timeout", o.timeout)
			return nil, ErrHandshakeTimeout
		}
		metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeCancelled).Inc()
		return nil, ErrHandshakeCancelled
	}

	if !msg.IsSuccess() {
		metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeProvider).Inc()
		o.logger.Warn("Google reported a sign in error", "reason", msg.Error)
		return nil, &ProviderError{Reason: msg.Error}
	}

	user, err := o.complete(ctx, msg.IDToken, nonce)
	if err != nil {
		var verr *VerificationError
		if errors.As(err, &verr) {
			metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeRejected).Inc()
		} else {
			metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeFailed).Inc()
		}
		return nil, err
	}

	metrics.HandshakeOutcomes.WithLabelValues(metrics.HandshakeOutcomeSuccess).Inc()
	return user, nil
}

func (o *Opener) complete(ctx context.Context, idToken, nonce string) (*models.UserSummary, error) {
	if claims, ok := token.Decode(idToken); ok && claims.Nonce != "" && claims.Nonce != nonce {
		return nil, &VerificationError{Message: "id token was issued for a different sign in attempt"}
	}

	result, err := o.verifier.Verify(ctx, idToken)
	if err != nil {
		return nil, fmt.Errorf("failed to verify id token: %w", err)
	}

	if result == nil || !result.Valid {
		message := "the backend did not accept the google account"
		if result != nil && result.Message != "" {
			message = result.Message
		}
		return nil, &VerificationError{Message: message}
	}

	sessionToken := result.Token
	if sessionToken == "" {
		sessionToken = idToken
	}

	user := result.User
	if user == nil {
		summary, ok := token.UserSummary(sessionToken)
		if !ok {
			return nil, &VerificationError{Message: "session token carries no user"}
		}
		user = summary
	}

	if err := o.store.Login(sessionToken, user); err != nil {
		return nil, fmt.Errorf("failed to start session: %w", err)
	}

	o.logger.Info("Signed in with Google", "user", user.Email)
	return user, nil
}
