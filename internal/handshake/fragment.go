package handshake

import (
	"net/url"
	"strings"
)

const (
	ReasonMissingAccessToken = "missing access token"
	ReasonMissingIDToken     = "missing id token"
	ReasonMalformedFragment  = "malformed callback fragment"
)

// ParseFragment turns the fragment of the OAuth redirect into the message the
// callback page posts back. A provider error wins over everything else, a
// missing access token comes next, and a success without an ID token is
// refused.
func ParseFragment(fragment string) Message {
	values, err := url.ParseQuery(strings.TrimPrefix(fragment, "#"))
	if err != nil {
		return errorMessage(ReasonMalformedFragment, "")
	}

	state := values.Get("state")

	if providerErr := values.Get("error"); providerErr != "" {
		return errorMessage(providerErr, state)
	}

	if values.Get("access_token") == "" {
		return errorMessage(ReasonMissingAccessToken, state)
	}

	idToken := values.Get("id_token")
	if idToken == "" {
		return errorMessage(ReasonMissingIDToken, state)
	}

	return successMessage(idToken, state)
}
