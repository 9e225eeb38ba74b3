package sessionguard

import (
	"errors"
	"time"
)

// Config groups every tunable of the subsystem. Instances are configured
// once at build time and then treated as immutable.
type Config struct {
	Session   SessionConfig
	Password  PasswordConfig
	Cookie    CookieConfig
	Bootstrap BootstrapConfig
	Audit     AuditConfig
	Metrics   MetricsConfig
}

// SessionConfig controls session lifetime and the dual-backend store.
type SessionConfig struct {
	// TTL is the fixed session lifetime from login.
	TTL time.Duration
	// RedisPrefix namespaces the primary backend's keys.
	RedisPrefix string
	// BackendTimeout bounds every primary-backend call; past it the
	// operation falls back to local behavior. Zero disables the bound.
	BackendTimeout time.Duration
	// PurgeInterval drives the fallback-map sweep. Zero disables it;
	// lazy read-time expiry keeps correctness regardless.
	PurgeInterval time.Duration
}

// PasswordConfig carries the argon2id work factors and the password policy.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
	// MinLength is the minimum accepted password length in bytes.
	MinLength int
}

// CookieConfig shapes the session cookie the HTTP surface sets.
type CookieConfig struct {
	Name   string
	Path   string
	Domain string
	// Secure should be true in production deployments.
	Secure bool
}

// BootstrapConfig designates the root principal provisioned at startup.
// An empty RootPassword disables bootstrap entirely.
type BootstrapConfig struct {
	RootUsername string
	RootPassword string
}

// AuditConfig controls the async audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig toggles in-process counters.
type MetricsConfig struct {
	Enabled bool
}

// DefaultConfig returns the recommended production defaults.
func DefaultConfig() Config {
	return Config{
		Session: SessionConfig{
			TTL:            24 * time.Hour,
			RedisPrefix:    "sg",
			BackendTimeout: 500 * time.Millisecond,
			PurgeInterval:  10 * time.Minute,
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
			MinLength:   8,
		},
		Cookie: CookieConfig{
			Name: "sg_session",
			Path: "/",
		},
		Bootstrap: BootstrapConfig{
			RootUsername: "root",
		},
		Audit: AuditConfig{
			Enabled:    true,
			BufferSize: 256,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled: true,
		},
	}
}

func validateConfig(cfg Config) error {
	if cfg.Session.TTL <= 0 {
		return errors.New("session TTL must be positive")
	}
	if cfg.Session.BackendTimeout < 0 {
		return errors.New("session backend timeout must not be negative")
	}
	if cfg.Cookie.Name == "" {
		return errors.New("cookie name must not be empty")
	}
	if cfg.Password.MinLength < 1 {
		return errors.New("password minimum length must be at least 1")
	}
	return nil
}
