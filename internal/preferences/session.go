// Package preferences keeps anonymous per visitor settings in an scs session.
package preferences

import (
	"context"
	"fmt"
	"ggarquitectos-site/internal/config"
	"ggarquitectos-site/internal/events"
	"ggarquitectos-site/internal/metrics"
	"ggarquitectos-site/internal/middlewares"
	"log/slog"
	"net/http"
	"time"

	"github.com/alexedwards/scs/goredisstore"
	"github.com/alexedwards/scs/v2"
	"github.com/alexedwards/scs/v2/memstore"
	"github.com/redis/go-redis/v9"
)

type PreferenceKey string

const (
	KeyShowDeviceInfo PreferenceKey = "show_device_info"
)

type SessionManager struct {
	*scs.SessionManager
	storeName string
	logger    *slog.Logger
}

// NewSessionManager builds the preference session on the configured store.
// The redis client is returned so the caller can register pool metrics and
// close it on shutdown; it is nil for the memory store.
func NewSessionManager(logger *slog.Logger, cfg *config.Config) (*SessionManager, *redis.Client, error) {
	var (
		store  scs.Store
		client *redis.Client
	)

	switch cfg.Preferences.Store {
	case metrics.PreferenceStoreMemory:
		store = memstore.New()
	case metrics.PreferenceStoreRedis:
		var err error
		client, err = NewRedisClient(context.Background(), logger, cfg.Redis)
		if err != nil {
			return nil, nil, err
		}
		store = goredisstore.New(client)
	default:
		return nil, nil, fmt.Errorf("unsupported preferences store: %s", cfg.Preferences.Store)
	}

	return newSessionManager(logger, cfg.Preferences, store), client, nil
}

func newSessionManager(logger *slog.Logger, cfg config.PreferencesConfig, store scs.Store) *SessionManager {
	sessionManager := scs.New()
	sessionManager.Store = store
	sessionManager.Lifetime = cfg.Lifetime

	sessionManager.Cookie.Name = cfg.Name
	sessionManager.Cookie.HttpOnly = true
	sessionManager.Cookie.SameSite = http.SameSiteLaxMode
	sessionManager.Cookie.Secure = cfg.Secure
	sessionManager.Cookie.Path = "/"
	sessionManager.Cookie.Persist = true

	storeName := cfg.Store
	if storeName == "" {
		storeName = metrics.PreferenceStoreMemory
	}

	return &SessionManager{
		SessionManager: sessionManager,
		storeName:      storeName,
		logger:         logger,
	}
}

// NewRedisClient connects to redis directly or through sentinel and checks the
// connection before returning.
func NewRedisClient(ctx context.Context, logger *slog.Logger, cfg *config.RedisConfig) (*redis.Client, error) {
	if cfg == nil {
		return nil, fmt.Errorf("redis configuration is required")
	}

	var client *redis.Client

	if cfg.Sentinel != nil {
		logger.Info("Connecting to redis via sentinel",
			"master", cfg.Sentinel.MasterName,
			"sentinels", cfg.Sentinel.SentinelAddresses)

		client = redis.NewFailoverClient(&redis.FailoverOptions{
			MasterName:       cfg.Sentinel.MasterName,
			SentinelAddrs:    cfg.Sentinel.SentinelAddresses,
			SentinelUsername: cfg.Sentinel.SentinelUsername,
			SentinelPassword: cfg.Sentinel.SentinelPassword,
			Username:         cfg.Username,
			Password:         cfg.Password,
			DB:               cfg.PreferenceIndex,
			MinIdleConns:     2,
		})
	} else {
		client = redis.NewClient(&redis.Options{
			Addr:         cfg.Address,
			Username:     cfg.Username,
			Password:     cfg.Password,
			DB:           cfg.PreferenceIndex,
			MinIdleConns: 2,
		})
	}

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis connection failed: %w", err)
	}

	return client, nil
}

func (s *SessionManager) LoadAndSave(next http.Handler) http.Handler {
	return s.SessionManager.LoadAndSave(next)
}

func (s *SessionManager) StoreName() string {
	return s.storeName
}

func (s *SessionManager) ShowDeviceInfo(ctx *middlewares.AppContext) bool {
	return s.GetBool(ctx, string(KeyShowDeviceInfo))
}

// SetShowDeviceInfo stores the flag and announces the change on the bus when
// the value actually moved.
func (s *SessionManager) SetShowDeviceInfo(ctx *middlewares.AppContext, show bool) error {
	if s.GetBool(ctx, string(KeyShowDeviceInfo)) == show {
		return nil
	}

	s.Put(ctx, string(KeyShowDeviceInfo), show)
	metrics.PreferenceUpdates.WithLabelValues(string(KeyShowDeviceInfo), s.storeName).Inc()

	if ctx.Bus != nil {
		events.Publish(ctx.Bus, events.PreferenceChanged, events.PreferenceChange{
			Key:     string(KeyShowDeviceInfo),
			Enabled: show,
			At:      time.Now(),
		})
	}

	return nil
}
