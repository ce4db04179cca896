package goTenant

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"golang.org/x/crypto/bcrypt"
)

// Config holds every Engine setting. Build it once at startup and pass it to
// [Builder.WithConfig]; the Engine keeps its own copy.
type Config struct {
	JWT      JWTConfig
	Session  SessionConfig
	Password PasswordConfig
	Account  AccountConfig
	Audit    AuditConfig
	Metrics  MetricsConfig
}

/*
====================================
JWT CONFIG
====================================
*/

// JWTConfig configures the HS256 token codec. Both secrets are required.
type JWTConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
	Leeway        time.Duration
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig configures the Redis refresh session store.
type SessionConfig struct {
	RedisPrefix string
	// RotateOnRefresh issues and stores a new refresh token on every
	// successful refresh instead of echoing the presented one.
	RotateOnRefresh bool
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig selects and tunes the credential hasher.
type PasswordConfig struct {
	Algorithm   string // "bcrypt" (default) or "argon2id"
	BcryptCost  int
	Memory      uint32 // argon2id, in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

/*
====================================
ACCOUNT CONFIG
====================================
*/

// AccountConfig declares the role registry and the role given to signups that
// do not name one.
type AccountConfig struct {
	Roles       []string
	DefaultRole string
}

/*
====================================
AUDIT / METRICS CONFIG
====================================
*/

// AuditConfig controls the asynchronous audit dispatcher.
type AuditConfig struct {
	Enabled    bool
	BufferSize int
	DropIfFull bool
}

// MetricsConfig controls the in-process counters.
type MetricsConfig struct {
	Enabled                 bool
	EnableLatencyHistograms bool
}

/*
====================================
DEFAULT CONFIG
====================================
*/

// DefaultConfig returns a Config with every field except the secrets set.
func DefaultConfig() Config {
	return defaultConfig()
}

func defaultConfig() Config {
	return Config{
		JWT: JWTConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 15 * 24 * time.Hour,
		},
		Session: SessionConfig{
			RedisPrefix:     "refresh_token",
			RotateOnRefresh: false,
		},
		Password: PasswordConfig{
			Algorithm:   "bcrypt",
			BcryptCost:  10,
			Memory:      65536,
			Time:        3,
			Parallelism: 2,
			SaltLength:  16,
			KeyLength:   32,
		},
		Account: AccountConfig{
			Roles:       []string{"admin", "member"},
			DefaultRole: "member",
		},
		Audit: AuditConfig{
			Enabled:    false,
			BufferSize: 1024,
			DropIfFull: true,
		},
		Metrics: MetricsConfig{
			Enabled:                 false,
			EnableLatencyHistograms: false,
		},
	}
}

func cloneConfig(cfg Config) Config {
	out := cfg
	out.JWT.AccessSecret = cloneBytes(cfg.JWT.AccessSecret)
	out.JWT.RefreshSecret = cloneBytes(cfg.JWT.RefreshSecret)
	out.Account.Roles = append([]string(nil), cfg.Account.Roles...)
	return out
}

func cloneBytes(b []byte) []byte {
	if len(b) == 0 {
		return nil
	}
	out := make([]byte, len(b))
	copy(out, b)
	return out
}

/*
====================================
VALIDATION
====================================
*/

// Validate reports the first invalid setting. Missing secrets wrap
// [ErrConfig] so startup code can distinguish them.
func (c *Config) Validate() error {
	// JWT
	if len(c.JWT.AccessSecret) == 0 {
		return fmt.Errorf("%w: JWT AccessSecret is required", ErrConfig)
	}
	if len(c.JWT.RefreshSecret) == 0 {
		return fmt.Errorf("%w: JWT RefreshSecret is required", ErrConfig)
	}
	if c.JWT.AccessTTL <= 0 {
		return errors.New("JWT AccessTTL must be > 0")
	}
	if c.JWT.RefreshTTL <= 0 {
		return errors.New("JWT RefreshTTL must be > 0")
	}
	if c.JWT.Leeway < 0 || c.JWT.Leeway > 2*time.Minute {
		return errors.New("JWT Leeway must be within [0, 2m]")
	}

	// Session
	if strings.TrimSpace(c.Session.RedisPrefix) == "" {
		return errors.New("Session RedisPrefix must be set")
	}

	// Password
	switch c.Password.Algorithm {
	case "bcrypt":
		if c.Password.BcryptCost < bcrypt.MinCost || c.Password.BcryptCost > bcrypt.MaxCost {
			return fmt.Errorf("Password BcryptCost must be within [%d, %d]", bcrypt.MinCost, bcrypt.MaxCost)
		}
	case "argon2id":
		if c.Password.Memory < 8*1024 {
			return errors.New("Password Memory must be >= 8192 KB")
		}
		if c.Password.Time < 1 || c.Password.Parallelism < 1 {
			return errors.New("Password Time and Parallelism must be >= 1")
		}
	default:
		return errors.New("unsupported Password Algorithm")
	}

	// Account
	if len(c.Account.Roles) == 0 {
		return errors.New("Account Roles must not be empty")
	}
	found := false
	for _, r := range c.Account.Roles {
		if r == c.Account.DefaultRole {
			found = true
			break
		}
	}
	if !found {
		return errors.New("Account DefaultRole must be one of Account Roles")
	}

	// Audit
	if c.Audit.Enabled && c.Audit.BufferSize <= 0 {
		return errors.New("Audit BufferSize must be > 0 when audit is enabled")
	}

	return nil
}
