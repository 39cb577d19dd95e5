package notevault

import (
	"bytes"
	"errors"
	"time"
)

// Config groups the Engine's tunables. Zero values are filled in from
// defaultConfig by the Builder; only the two signing secrets have no default
// and must be supplied by the caller.
type Config struct {
	Token    TokenConfig
	Session  SessionConfig
	Password PasswordConfig
}

/*
====================================
TOKEN CONFIG
====================================
*/

// TokenConfig configures the token issuer. AccessSecret and RefreshSecret
// must differ: leaking one must not allow forging credentials of the other
// kind.
type TokenConfig struct {
	AccessSecret  []byte
	RefreshSecret []byte
	AccessTTL     time.Duration
	RefreshTTL    time.Duration
	Issuer        string
}

/*
====================================
SESSION CONFIG
====================================
*/

// SessionConfig controls the Redis credential store.
type SessionConfig struct {
	RedisPrefix string
}

/*
====================================
PASSWORD CONFIG
====================================
*/

// PasswordConfig carries argon2id parameters.
type PasswordConfig struct {
	Memory      uint32 // in KB
	Time        uint32
	Parallelism uint8
	SaltLength  uint32
	KeyLength   uint32
}

func defaultConfig() Config {
	return Config{
		Token: TokenConfig{
			AccessTTL:  time.Hour,
			RefreshTTL: 365 * 24 * time.Hour,
			Issuer:     "notevault",
		},
		Session: SessionConfig{
			RedisPrefix: "nv:rt:",
		},
		Password: PasswordConfig{
			Memory:      64 * 1024,
			Time:        1,
			Parallelism: 4,
			SaltLength:  16,
			KeyLength:   32,
		},
	}
}

// Validate checks config invariants before the Engine is built.
func (c Config) Validate() error {
	if len(c.Token.AccessSecret) == 0 {
		return errors.New("access token secret required")
	}
	if len(c.Token.RefreshSecret) == 0 {
		return errors.New("refresh token secret required")
	}
	if bytes.Equal(c.Token.AccessSecret, c.Token.RefreshSecret) {
		return errors.New("access and refresh secrets must differ")
	}
	if c.Token.AccessTTL <= 0 || c.Token.RefreshTTL <= 0 {
		return errors.New("token TTLs must be positive")
	}
	if c.Token.AccessTTL >= c.Token.RefreshTTL {
		return errors.New("access TTL must be shorter than refresh TTL")
	}
	if c.Token.Issuer == "" {
		return errors.New("token issuer identifier required")
	}
	if c.Session.RedisPrefix == "" {
		return errors.New("redis key prefix required")
	}
	return nil
}

func applyDefaults(cfg Config) Config {
	def := defaultConfig()
	if cfg.Token.AccessTTL == 0 {
		cfg.Token.AccessTTL = def.Token.AccessTTL
	}
	if cfg.Token.RefreshTTL == 0 {
		cfg.Token.RefreshTTL = def.Token.RefreshTTL
	}
	if cfg.Token.Issuer == "" {
		cfg.Token.Issuer = def.Token.Issuer
	}
	if cfg.Session.RedisPrefix == "" {
		cfg.Session.RedisPrefix = def.Session.RedisPrefix
	}
	if cfg.Password.Memory == 0 {
		cfg.Password = def.Password
	}
	return cfg
}
