package handlers

import (
	"errors"
	"ggarquitectos-site/internal/auth"
	"ggarquitectos-site/internal/handshake"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/middlewares"
	"net/http"
	"strconv"
)

// POSTGoogleVerifyHandler checks a Google ID token and answers with the
// verification result. It keeps no state: the caller decides what to do with a
// valid answer. A rejected token is answered with 200 and valid false, never 401.
func POSTGoogleVerifyHandler(ctx *middlewares.AppContext) {
	var body GoogleVerifyRequest
	if err := ctx.DecodeJSON(maxRequestBody, &body); err != nil || body.IDToken == "" {
		ctx.SetJSONError(http.StatusBadRequest, "Bad Request")
		return
	}

	identity, err := ctx.Verifier.VerifyIDToken(ctx, body.IDToken)
	if err != nil {
		metrics.TokenVerifications.WithLabelValues(strconv.FormatBool(false)).Inc()

		message := "Invalid Google token"
		if errors.Is(err, auth.ErrEmailNotVerified) {
			message = "Google account email is not verified"
		}

		ctx.Logger.Warn("Rejected Google ID token", "error", err)
		ctx.WriteJSON(http.StatusOK, handshake.VerifyResult{
			Valid:   false,
			Message: message,
		})
		return
	}

	metrics.TokenVerifications.WithLabelValues(strconv.FormatBool(true)).Inc()
	ctx.Logger.Info("Verified Google ID token", "email", RedactEmail(identity.Email))

	ctx.WriteJSON(http.StatusOK, handshake.VerifyResult{
		Valid: true,
		User:  identity.Summary(),
	})
}
