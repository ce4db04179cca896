package goTenant

import (
	"errors"
	"testing"
	"time"
)

func TestDefaultConfigValues(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.JWT.AccessTTL != time.Hour {
		t.Fatalf("expected 1h access ttl, got %v", cfg.JWT.AccessTTL)
	}
	if cfg.JWT.RefreshTTL != 15*24*time.Hour {
		t.Fatalf("expected 15d refresh ttl, got %v", cfg.JWT.RefreshTTL)
	}
	if cfg.Session.RedisPrefix != "refresh_token" || cfg.Session.RotateOnRefresh {
		t.Fatalf("unexpected session defaults %+v", cfg.Session)
	}
	if cfg.Password.Algorithm != "bcrypt" || cfg.Password.BcryptCost != 10 {
		t.Fatalf("unexpected password defaults %+v", cfg.Password)
	}
}

func TestConfigValidateMissingSecrets(t *testing.T) {
	cfg := DefaultConfig()
	if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for missing access secret, got %v", err)
	}

	cfg.JWT.AccessSecret = []byte("a")
	if err := cfg.Validate(); !errors.Is(err, ErrConfig) {
		t.Fatalf("expected ErrConfig for missing refresh secret, got %v", err)
	}

	cfg.JWT.RefreshSecret = []byte("r")
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected valid config, got %v", err)
	}
}

func TestConfigValidateEnums(t *testing.T) {
	tests := []struct {
		name      string
		mutate    func(*Config)
		wantValid bool
	}{
		{
			name:      "jwt leeway valid",
			mutate:    func(c *Config) { c.JWT.Leeway = 45 * time.Second },
			wantValid: true,
		},
		{
			name:      "jwt leeway invalid",
			mutate:    func(c *Config) { c.JWT.Leeway = 3 * time.Minute },
			wantValid: false,
		},
		{
			name:      "access ttl zero",
			mutate:    func(c *Config) { c.JWT.AccessTTL = 0 },
			wantValid: false,
		},
		{
			name:      "refresh ttl negative",
			mutate:    func(c *Config) { c.JWT.RefreshTTL = -time.Hour },
			wantValid: false,
		},
		{
			name:      "blank redis prefix",
			mutate:    func(c *Config) { c.Session.RedisPrefix = "  " },
			wantValid: false,
		},
		{
			name:      "bcrypt cost too high",
			mutate:    func(c *Config) { c.Password.BcryptCost = 40 },
			wantValid: false,
		},
		{
			name:      "argon2id selected",
			mutate:    func(c *Config) { c.Password.Algorithm = "argon2id" },
			wantValid: true,
		},
		{
			name: "argon2id weak memory",
			mutate: func(c *Config) {
				c.Password.Algorithm = "argon2id"
				c.Password.Memory = 1024
			},
			wantValid: false,
		},
		{
			name:      "unknown algorithm",
			mutate:    func(c *Config) { c.Password.Algorithm = "md5" },
			wantValid: false,
		},
		{
			name:      "no roles",
			mutate:    func(c *Config) { c.Account.Roles = nil },
			wantValid: false,
		},
		{
			name:      "default role not registered",
			mutate:    func(c *Config) { c.Account.DefaultRole = "owner" },
			wantValid: false,
		},
		{
			name: "audit enabled without buffer",
			mutate: func(c *Config) {
				c.Audit.Enabled = true
				c.Audit.BufferSize = 0
			},
			wantValid: false,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := testConfig()
			tc.mutate(&cfg)
			err := cfg.Validate()
			if tc.wantValid && err != nil {
				t.Fatalf("expected valid config, got %v", err)
			}
			if !tc.wantValid && err == nil {
				t.Fatal("expected validation error")
			}
		})
	}
}

func TestCloneConfigIsolatesSecrets(t *testing.T) {
	cfg := testConfig()
	clone := cloneConfig(cfg)

	cfg.JWT.AccessSecret[0] = 'X'
	cfg.Account.Roles[0] = "changed"

	if clone.JWT.AccessSecret[0] == 'X' {
		t.Fatal("clone must not share secret bytes")
	}
	if clone.Account.Roles[0] == "changed" {
		t.Fatal("clone must not share the roles slice")
	}
}
