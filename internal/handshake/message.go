// Package handshake runs the Google implicit grant sign in through a browser
// window and a loopback callback page.
//
// The callback page hands the redirect fragment back to the process, which
// turns it into a Message and routes it to the pending sign in attempt through
// a Router. A Router only accepts messages addressed to its own origin, and a
// pending attempt only accepts a success carrying the state it generated.
package handshake

import (
	"errors"
	"fmt"
)

type MessageType string

const (
	TypeAuthSuccess MessageType = "GOOGLE_AUTH_SUCCESS"
	TypeAuthError   MessageType = "GOOGLE_AUTH_ERROR"
)

type Message struct {
	Type    MessageType `json:"type"`
	IDToken string      `json:"idToken,omitempty"`
	State   string      `json:"state,omitempty"`
	Error   string      `json:"error,omitempty"`
}

func (m Message) IsSuccess() bool {
	return m.Type == TypeAuthSuccess
}

func successMessage(idToken, state string) Message {
	return Message{Type: TypeAuthSuccess, IDToken: idToken, State: state}
}

func errorMessage(reason, state string) Message {
	return Message{Type: TypeAuthError, Error: reason, State: state}
}

// Envelope is a Message in transit. TargetOrigin names the only origin allowed
// to receive it.
type Envelope struct {
	Origin       string
	TargetOrigin string
	Message      Message
}

var (
	ErrHandshakeTimeout   = errors.New("handshake: sign in window was not completed in time")
	ErrHandshakeCancelled = errors.New("handshake: sign in was cancelled")
)

// ProviderError is returned when Google reported an error to the callback page.
type ProviderError struct {
	Reason string
}

func (e *ProviderError) Error() string {
	return fmt.Sprintf("google sign in failed: %s", e.Reason)
}

// VerificationError is returned when the backend did not accept the ID token.
type VerificationError struct {
	Message string
}

func (e *VerificationError) Error() string {
	return fmt.Sprintf("sign in rejected: %s", e.Message)
}
