package events

import (
	"time"
)

// ForcedLogoutNotice is broadcast when the backend rejected a request and the
// session was torn down because of it.
type ForcedLogoutNotice struct {
	ID     string    `json:"id"`
	Reason string    `json:"reason"`
	At     time.Time `json:"at"`
	Status int       `json:"status"`
	Method string    `json:"method"`
	URL    string    `json:"url"`
}

type UserDeletedNotice struct {
	UserID string    `json:"userId"`
	At     time.Time `json:"at"`
}

type PreferenceChange struct {
	Key     string    `json:"key"`
	Enabled bool      `json:"enabled"`
	At      time.Time `json:"at"`
}

// ExpiryWarning is advisory only.
type ExpiryWarning struct {
	ExpiresAt time.Time     `json:"expiresAt"`
	Remaining time.Duration `json:"remaining"`
}

var (
	ForcedLogout      = NewTopic[ForcedLogoutNotice]("auth:forced-logout")
	UserDeleted       = NewTopic[UserDeletedNotice]("auth:user-deleted")
	PreferenceChanged = NewTopic[PreferenceChange]("prefs:changed")
	SessionExpiring   = NewTopic[ExpiryWarning]("auth:session-expiring")
)
