package config

import (
	"time"
)

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Log         LogConfig         `yaml:"log"`
	CORS        CORSConfig        `yaml:"cors"`
	Google      GoogleConfig      `yaml:"google"`
	Backend     BackendConfig     `yaml:"backend"`
	Session     SessionConfig     `yaml:"session"`
	Preferences PreferencesConfig `yaml:"preferences"`
	Redis       *RedisConfig      `yaml:"redis"`
}

type ServerConfig struct {
	Port           int                `yaml:"port"`
	StaticDir      string             `yaml:"static_dir"`
	TrustedProxies []string           `yaml:"trusted_proxies"`
	Debug          *ServerDebugConfig `yaml:"debug"`
}

var DefaultServerConfig = ServerConfig{
	Port:           8080,
	StaticDir:      "web/dist",
	TrustedProxies: []string{"127.0.0.1", "::1"},
}

type ServerDebugConfig struct {
	Enabled bool   `yaml:"enabled"`
	Host    string `yaml:"host"`
	Port    int    `yaml:"port"`
}

var DefaultDebugConfig = ServerDebugConfig{
	Enabled: false,
	Host:    "localhost",
	Port:    5123,
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
}

var DefaultLogConfig = LogConfig{
	Level:  "info",
	Format: "text",
}

type CORSConfig struct {
	AllowedOrigins   []string `yaml:"allowed_origins"`
	AllowedMethods   []string `yaml:"allowed_methods"`
	AllowedHeaders   []string `yaml:"allowed_headers"`
	ExposedHeaders   []string `yaml:"exposed_headers"`
	AllowCredentials bool     `yaml:"allow_credentials"`
	MaxAgeSeconds    int      `yaml:"max_age_seconds"`
}

var DefaultCORSConfig = CORSConfig{
	AllowedOrigins: []string{"http://localhost:5173"},
	AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
	AllowedHeaders: []string{"*"},
	MaxAgeSeconds:  300,
}

// GoogleConfig describes the implicit-grant client used by the popup sign in.
type GoogleConfig struct {
	ClientID    string   `yaml:"client_id"`
	RedirectURI string   `yaml:"redirect_uri"`
	IssuerURL   string   `yaml:"issuer_url"`
	AuthURL     string   `yaml:"auth_url"`
	Scopes      []string `yaml:"scopes"`
}

var DefaultGoogleConfig = GoogleConfig{
	RedirectURI: "http://127.0.0.1:8765/auth/callback",
	IssuerURL:   "https://accounts.google.com",
	AuthURL:     "https://accounts.google.com/o/oauth2/v2/auth",
	Scopes:      []string{"openid", "email", "profile"},
}

type BackendConfig struct {
	BaseURL string        `yaml:"base_url"`
	Timeout time.Duration `yaml:"timeout"`
}

var DefaultBackendConfig = BackendConfig{
	Timeout: 15 * time.Second,
}

// SessionConfig tunes the client side session lifecycle.
type SessionConfig struct {
	CheckInterval    time.Duration `yaml:"check_interval"`
	WarnBefore       time.Duration `yaml:"warn_before"`
	LogoutGrace      time.Duration `yaml:"logout_grace"`
	HandshakeTimeout time.Duration `yaml:"handshake_timeout"`
	StateFile        string        `yaml:"state_file"`
}

var DefaultSessionConfig = SessionConfig{
	CheckInterval:    60 * time.Second,
	WarnBefore:       5 * time.Minute,
	LogoutGrace:      2 * time.Second,
	HandshakeTimeout: 5 * time.Minute,
}

type PreferencesConfig struct {
	Store    string        `yaml:"store"`
	Name     string        `yaml:"name"`
	Lifetime time.Duration `yaml:"lifetime"`
	Secure   bool          `yaml:"secure"`
}

var DefaultPreferencesConfig = PreferencesConfig{
	Store:    "memory",
	Name:     "archsite_prefs",
	Lifetime: 30 * 24 * time.Hour,
	Secure:   true,
}

type RedisConfig struct {
	Address         string               `yaml:"address"`
	Username        string               `yaml:"username"`
	Password        string               `yaml:"password"`
	Sentinel        *RedisSentinelConfig `yaml:"sentinel"`
	PreferenceIndex int                  `yaml:"preference_index"`
}

type RedisSentinelConfig struct {
	MasterName        string   `yaml:"master_name"`
	SentinelAddresses []string `yaml:"addresses"`
	SentinelPassword  string   `yaml:"password"`
	SentinelUsername  string   `yaml:"username"`
}
