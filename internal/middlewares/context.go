package middlewares

import (
	"context"
	"encoding/json"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"log/slog"
	"net/http"
)

type AppContext struct {
	context.Context
	Config      *config.Config
	Logger      *slog.Logger
	Preferences PreferenceProvider
	Verifier    IDTokenVerifier
	Bus         *events.Bus

	Request  *http.Request
	Response http.ResponseWriter
}

type contextKey string

const appContextKey contextKey = "appContext"

func AppContextMiddleware(baseCtx *AppContext) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestCtx := &AppContext{
				Context:     r.Context(),
				Config:      baseCtx.Config,
				Logger:      baseCtx.Logger,
				Preferences: baseCtx.Preferences,
				Verifier:    baseCtx.Verifier,
				Bus:         baseCtx.Bus,
				Request:     r,
				Response:    w,
			}

			ctx := context.WithValue(r.Context(), appContextKey, requestCtx)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

type AppHandler func(*AppContext)

// HandlerFunc converts AppHandler to a http.HandlerFunc
func (ctx *AppContext) HandlerFunc(h AppHandler) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		appCtx := GetAppContext(r)
		if appCtx == nil {
			http.Error(w, "Internal Server Error", http.StatusInternalServerError)
			return
		}

		// chi hands a request carrying route params, keep that one
		appCtx.Request = r
		appCtx.Context = r.Context()

		h(appCtx)
	}
}

func NewAppContext(ctx context.Context, cfg *config.Config, logger *slog.Logger, preferences PreferenceProvider, verifier IDTokenVerifier, bus *events.Bus) *AppContext {
	return &AppContext{
		Context:     ctx,
		Config:      cfg,
		Logger:      logger,
		Preferences: preferences,
		Verifier:    verifier,
		Bus:         bus,
	}
}

func GetAppContext(r *http.Request) *AppContext {
	if ctx, ok := r.Context().Value(appContextKey).(*AppContext); ok {
		return ctx
	}

	return nil
}

func GetLogger(r *http.Request) *slog.Logger {
	if appCtx := GetAppContext(r); appCtx != nil {
		return appCtx.Logger
	}

	return nil
}

func (ctx *AppContext) WriteJSON(status int, data interface{}) {
	ctx.Response.Header().Set("Content-Type", "application/json")
	ctx.Response.WriteHeader(status)
	if err := json.NewEncoder(ctx.Response).Encode(data); err != nil {
		ctx.Logger.Error("failed to marshal json", "error", err)
	}
}

func (ctx *AppContext) SetJSONError(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"error": message,
	})
}

func (ctx *AppContext) SetJSONStatus(status int, message string) {
	ctx.WriteJSON(status, map[string]string{
		"status": message,
	})
}

// DecodeJSON reads at most limit bytes of the request body into v.
func (ctx *AppContext) DecodeJSON(limit int64, v any) error {
	return json.NewDecoder(http.MaxBytesReader(ctx.Response, ctx.Request.Body, limit)).Decode(v)
}
