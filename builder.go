package notevault

import (
	"errors"

	"github.com/redis/go-redis/v9"

	"github.com/notevault/notevault/credstore"
	"github.com/notevault/notevault/password"
	"github.com/notevault/notevault/token"
)

// Builder assembles an [Engine]. Allocation-only until Build; a Builder is
// single-use.
type Builder struct {
	config Config
	redis  redis.UniversalClient
	users  UserProvider

	built bool
}

// New returns a [Builder] preloaded with default configuration.
func New() *Builder {
	return &Builder{config: defaultConfig()}
}

// WithConfig replaces the builder's configuration. Zero-valued fields are
// filled from defaults during Build; the signing secrets have no default.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the Redis client backing the credential store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithUserProvider sets the user database adapter.
func (b *Builder) WithUserProvider(users UserProvider) *Builder {
	b.users = users
	return b
}

// Build validates the configuration, constructs the token issuer, credential
// store, and password hasher, and returns a ready [Engine].
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.users == nil {
		return nil, errors.New("user provider required")
	}

	cfg := applyDefaults(b.config)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	issuer, err := token.NewIssuer(token.Config{
		AccessSecret:  cfg.Token.AccessSecret,
		RefreshSecret: cfg.Token.RefreshSecret,
		AccessTTL:     cfg.Token.AccessTTL,
		RefreshTTL:    cfg.Token.RefreshTTL,
		Issuer:        cfg.Token.Issuer,
	})
	if err != nil {
		return nil, err
	}

	hasher, err := password.NewHasher(password.Config{
		Memory:      cfg.Password.Memory,
		Time:        cfg.Password.Time,
		Parallelism: cfg.Password.Parallelism,
		SaltLength:  cfg.Password.SaltLength,
		KeyLength:   cfg.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	b.built = true

	return &Engine{
		config: cfg,
		issuer: issuer,
		creds:  credstore.NewStore(b.redis, cfg.Session.RedisPrefix),
		hasher: hasher,
		users:  b.users,
	}, nil
}
