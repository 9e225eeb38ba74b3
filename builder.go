package sessionguard

import (
	"crypto/rand"
	"errors"
	"io"

	"github.com/redis/go-redis/v9"

	internalaudit "github.com/gallerium/sessionguard/internal/audit"
	internalmetrics "github.com/gallerium/sessionguard/internal/metrics"
	"github.com/gallerium/sessionguard/password"
	"github.com/gallerium/sessionguard/session"
)

// Builder assembles an Engine. Each builder builds at most once.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	credentials  CredentialStore
	sessionStore session.Store
	auditSink    AuditSink

	built bool
}

func New() *Builder {
	return &Builder{
		config: DefaultConfig(),
	}
}

func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cfg
	return b
}

// WithRedis sets the client backing the primary session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithCredentialStore injects the credential backend. Required.
func (b *Builder) WithCredentialStore(store CredentialStore) *Builder {
	b.credentials = store
	return b
}

// WithSessionStore overrides the default dual store. Mostly for tests;
// when set, WithRedis is ignored.
func (b *Builder) WithSessionStore(store session.Store) *Builder {
	b.sessionStore = store
	return b
}

func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}
	b.built = true

	if err := validateConfig(b.config); err != nil {
		return nil, err
	}
	if b.credentials == nil {
		return nil, errors.New("credential store required")
	}

	hasher, err := password.NewHasher(password.Params{
		Memory:      b.config.Password.Memory,
		Time:        b.config.Password.Time,
		Parallelism: b.config.Password.Parallelism,
		SaltLength:  b.config.Password.SaltLength,
		KeyLength:   b.config.Password.KeyLength,
	})
	if err != nil {
		return nil, err
	}

	store := b.sessionStore
	if store == nil {
		if b.redis == nil {
			return nil, errors.New("redis client required for the primary session store")
		}
		primary := session.NewRedisStore(b.redis, b.config.Session.RedisPrefix, b.config.Session.BackendTimeout)
		store = session.NewDual(primary, session.NewMemoryStore(), b.config.Session.PurgeInterval)
	}

	dummySalt := make([]byte, b.config.Password.SaltLength)
	if _, err := io.ReadFull(rand.Reader, dummySalt); err != nil {
		return nil, err
	}

	dispatcher := internalaudit.NewDispatcher(internalaudit.Config{
		Enabled:    b.config.Audit.Enabled,
		BufferSize: b.config.Audit.BufferSize,
		DropIfFull: b.config.Audit.DropIfFull,
	}, b.auditSink)

	return &Engine{
		config:      b.config,
		hasher:      hasher,
		sessions:    store,
		credentials: b.credentials,
		audit:       dispatcher,
		metrics:     internalmetrics.New(internalmetrics.Config{Enabled: b.config.Metrics.Enabled}),
		dummySalt:   dummySalt,
	}, nil
}
