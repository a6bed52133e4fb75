package cli

import (
	"errors"
	"fmt"
	"ggarquitectos-site/internal/backend"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/handshake"
	"time"

	"github.com/pterm/pterm"
)

const reloadHint = "Run `archsite login` to reload your session."

func forcedLogoutMessage(n events.ForcedLogoutNotice) string {
	reason := n.Reason
	if reason == "" {
		reason = "session expired"
	}
	return fmt.Sprintf("You were signed out: %s. %s", reason, reloadHint)
}

func printForcedLogout(n events.ForcedLogoutNotice) {
	pterm.Warning.Println(forcedLogoutMessage(n))
}

func expiryWarningMessage(w events.ExpiryWarning) string {
	return fmt.Sprintf("Your session expires in %s (at %s).", w.Remaining.Round(time.Second), w.ExpiresAt.Local().Format(time.Kitchen))
}

func printExpiryWarning(w events.ExpiryWarning) {
	pterm.Warning.Println(expiryWarningMessage(w))
}

// describeError turns the typed errors of the session packages into the line
// shown to the user.
func describeError(err error) string {
	var (
		providerErr *handshake.ProviderError
		verifyErr   *handshake.VerificationError
		apiErr      *backend.APIError
	)

	switch {
	case errors.Is(err, handshake.ErrHandshakeTimeout):
		return "The Google sign in window was not completed in time."
	case errors.Is(err, handshake.ErrHandshakeCancelled):
		return "Sign in cancelled."
	case errors.As(err, &providerErr):
		return "Google could not sign you in: " + providerErr.Reason
	case errors.As(err, &verifyErr):
		return "Sign in rejected: " + verifyErr.Message
	case errors.As(err, &apiErr):
		return apiErr.Message
	default:
		return err.Error()
	}
}
