package middlewares

import (
	"net/http"
)

//go:generate mockgen -source=session_provider.go -destination=../mocks/preferences.go -package=mocks

// PreferenceProvider keeps anonymous per visitor preferences in a cookie backed
// session. It never holds authentication state.
type PreferenceProvider interface {
	ShowDeviceInfo(ctx *AppContext) bool
	SetShowDeviceInfo(ctx *AppContext, show bool) error
	StoreName() string

	LoadAndSave(next http.Handler) http.Handler
}
