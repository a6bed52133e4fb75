package config

import (
	"fmt"
	"net"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

func LoadConfig(configPath string) (*Config, error) {
	if configPath == "" {
		return nil, fmt.Errorf("config file path is required (use --config or -c)")
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	return ParseConfig(data)
}

// ParseConfig parses raw YAML, applies environment overrides and validates the result.
func ParseConfig(data []byte) (*Config, error) {
	var config Config
	if err := yaml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	applyEnvironmentOverrides(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &config, nil
}

var (
	EnvBackendURL        = "ARCHSITE_BACKEND_URL"
	EnvGoogleClientID    = "ARCHSITE_GOOGLE_CLIENT_ID"
	EnvGoogleRedirectURI = "ARCHSITE_GOOGLE_REDIRECT_URI"
	EnvRedisPassword     = "ARCHSITE_REDIS_PASSWORD"
	EnvRedisUsername     = "ARCHSITE_REDIS_USERNAME"
)

func applyEnvironmentOverrides(config *Config) {
	if backendURL := os.Getenv(EnvBackendURL); backendURL != "" {
		config.Backend.BaseURL = backendURL
	}

	if clientID := os.Getenv(EnvGoogleClientID); clientID != "" {
		config.Google.ClientID = clientID
	}

	if redirectURI := os.Getenv(EnvGoogleRedirectURI); redirectURI != "" {
		config.Google.RedirectURI = redirectURI
	}

	if redisPassword := os.Getenv(EnvRedisPassword); redisPassword != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Password = redisPassword
	}

	if redisUsername := os.Getenv(EnvRedisUsername); redisUsername != "" {
		if config.Redis == nil {
			config.Redis = &RedisConfig{}
		}
		config.Redis.Username = redisUsername
	}
}

func validateConfig(config *Config) error {
	err := config.validateServerConfig()
	if err != nil {
		return err
	}

	err = config.validateLogConfig()
	if err != nil {
		return err
	}

	err = config.validateCORSConfig()
	if err != nil {
		return err
	}

	err = config.validateGoogleConfig()
	if err != nil {
		return err
	}

	err = config.validateBackendConfig()
	if err != nil {
		return err
	}

	err = config.validateSessionConfig()
	if err != nil {
		return err
	}

	err = config.validatePreferencesConfig()
	if err != nil {
		return err
	}

	if config.Preferences.Store == "redis" {
		err = config.validateRedisConfig()
		if err != nil {
			return err
		}
	}

	return nil
}

func (c *Config) validateServerConfig() error {
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerConfig.Port
	}

	if c.Server.Port < 0 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	if c.Server.StaticDir == "" {
		c.Server.StaticDir = DefaultServerConfig.StaticDir
	}

	if len(c.Server.TrustedProxies) == 0 {
		c.Server.TrustedProxies = DefaultServerConfig.TrustedProxies
	}

	if c.Server.Debug != nil && c.Server.Debug.Enabled {
		if c.Server.Debug.Host == "" {
			c.Server.Debug.Host = DefaultDebugConfig.Host
		}
		if c.Server.Debug.Port <= 0 || c.Server.Debug.Port >= 65535 {
			c.Server.Debug.Port = DefaultDebugConfig.Port
		}
	}

	return nil
}

func (c *Config) validateLogConfig() error {
	if c.Log.Format == "" {
		c.Log.Format = DefaultLogConfig.Format
	} else {
		switch c.Log.Format {
		case "text", "json", "pretty":
		default:
			return fmt.Errorf("invalid log format: %s, options are text, json or pretty", c.Log.Format)
		}
	}

	if c.Log.Level == "" {
		c.Log.Level = DefaultLogConfig.Level
	} else {
		switch c.Log.Level {
		case "debug", "info", "warn", "error":
		default:
			return fmt.Errorf("invalid log level: %s, options are debug, info, warn, error", c.Log.Level)
		}
	}

	return nil
}

func (c *Config) validateCORSConfig() error {
	if len(c.CORS.AllowedOrigins) == 0 {
		c.CORS.AllowedOrigins = DefaultCORSConfig.AllowedOrigins
	}
	if len(c.CORS.AllowedMethods) == 0 {
		c.CORS.AllowedMethods = DefaultCORSConfig.AllowedMethods
	}
	if len(c.CORS.AllowedHeaders) == 0 {
		c.CORS.AllowedHeaders = DefaultCORSConfig.AllowedHeaders
	}
	if c.CORS.MaxAgeSeconds == 0 {
		c.CORS.MaxAgeSeconds = DefaultCORSConfig.MaxAgeSeconds
	}

	return nil
}

func (c *Config) validateGoogleConfig() error {
	if c.Google.ClientID == "" {
		return fmt.Errorf("google.client_id is required")
	}

	if c.Google.IssuerURL == "" {
		c.Google.IssuerURL = DefaultGoogleConfig.IssuerURL
	}

	if c.Google.AuthURL == "" {
		c.Google.AuthURL = DefaultGoogleConfig.AuthURL
	}

	if err := validateURL(c.Google.IssuerURL, "google.issuer_url"); err != nil {
		return err
	}

	if err := validateURL(c.Google.AuthURL, "google.auth_url"); err != nil {
		return err
	}

	if c.Google.RedirectURI == "" {
		c.Google.RedirectURI = DefaultGoogleConfig.RedirectURI
	}

	if err := validateURL(c.Google.RedirectURI, "google.redirect_uri"); err != nil {
		return err
	}

	if len(c.Google.Scopes) == 0 {
		c.Google.Scopes = DefaultGoogleConfig.Scopes
	}

	// an access token alone never carries the identity token the handshake needs
	if !hasScope(c.Google.Scopes, "openid") {
		return fmt.Errorf("google.scopes must include openid")
	}

	return nil
}

func (c *Config) validateBackendConfig() error {
	if c.Backend.BaseURL != "" {
		if err := validateURL(c.Backend.BaseURL, "backend.base_url"); err != nil {
			return err
		}
	}

	if c.Backend.Timeout <= 0 {
		c.Backend.Timeout = DefaultBackendConfig.Timeout
	}

	return nil
}

func (c *Config) validateSessionConfig() error {
	if c.Session.CheckInterval == 0 {
		c.Session.CheckInterval = DefaultSessionConfig.CheckInterval
	} else if c.Session.CheckInterval < time.Second {
		return fmt.Errorf("session.check_interval cannot be less than 1s")
	}

	if c.Session.WarnBefore == 0 {
		c.Session.WarnBefore = DefaultSessionConfig.WarnBefore
	} else if c.Session.WarnBefore < 0 {
		return fmt.Errorf("session.warn_before must not be negative")
	}

	if c.Session.LogoutGrace == 0 {
		c.Session.LogoutGrace = DefaultSessionConfig.LogoutGrace
	} else if c.Session.LogoutGrace < 0 {
		return fmt.Errorf("session.logout_grace must not be negative")
	}

	if c.Session.HandshakeTimeout == 0 {
		c.Session.HandshakeTimeout = DefaultSessionConfig.HandshakeTimeout
	} else if c.Session.HandshakeTimeout < 10*time.Second {
		return fmt.Errorf("session.handshake_timeout cannot be less than 10s")
	}

	if c.Session.StateFile == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to resolve session.state_file: %w", err)
		}
		c.Session.StateFile = filepath.Join(home, ".archsite", "session.json")
	}

	return nil
}

func (c *Config) validatePreferencesConfig() error {
	if c.Preferences.Store == "" {
		c.Preferences.Store = DefaultPreferencesConfig.Store
	} else {
		switch c.Preferences.Store {
		case "memory", "redis":
		default:
			return fmt.Errorf("invalid preferences store: %s, options are 'memory' or 'redis'", c.Preferences.Store)
		}
	}

	if c.Preferences.Name == "" {
		c.Preferences.Name = DefaultPreferencesConfig.Name
	}

	if c.Preferences.Lifetime == 0 {
		c.Preferences.Lifetime = DefaultPreferencesConfig.Lifetime
	}

	return nil
}

func (c *Config) validateRedisConfig() error {
	if c.Redis == nil {
		return fmt.Errorf("redis configuration must be present to use redis for preferences")
	}

	if c.Redis.Sentinel != nil {
		if c.Redis.Sentinel.MasterName == "" {
			return fmt.Errorf("sentinel master_name is required")
		}
		if len(c.Redis.Sentinel.SentinelAddresses) == 0 {
			return fmt.Errorf("at least one sentinel address is required")
		}
		return nil
	}

	if c.Redis.Address == "" {
		return fmt.Errorf("redis address is required")
	}

	if _, _, err := net.SplitHostPort(c.Redis.Address); err != nil {
		return fmt.Errorf("invalid redis address format (expected host:port): %w", err)
	}

	const maxRedisDB = 15
	if c.Redis.PreferenceIndex < 0 || c.Redis.PreferenceIndex > maxRedisDB {
		return fmt.Errorf("redis preference_index must be between 0 and %d, got %d", maxRedisDB, c.Redis.PreferenceIndex)
	}

	return nil
}
