package goTenant

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/MrEthical07/goTenant/internal/flows"
	"github.com/MrEthical07/goTenant/jwt"
	"github.com/MrEthical07/goTenant/password"
	"github.com/MrEthical07/goTenant/permission"
	"github.com/MrEthical07/goTenant/session"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Builder assembles an [Engine]. A Builder can be used for one Build call.
type Builder struct {
	config Config
	redis  redis.UniversalClient

	identities IdentityStore
	auditSink  AuditSink
	logger     *zap.Logger
	now        func() time.Time

	built bool
}

// New returns a Builder seeded with [DefaultConfig].
func New() *Builder {
	return &Builder{
		config: defaultConfig(),
	}
}

// WithConfig replaces the whole configuration.
func (b *Builder) WithConfig(cfg Config) *Builder {
	b.config = cloneConfig(cfg)
	return b
}

// WithRedis sets the client backing the refresh session store.
func (b *Builder) WithRedis(client redis.UniversalClient) *Builder {
	b.redis = client
	return b
}

// WithIdentityStore sets the identity persistence backend.
func (b *Builder) WithIdentityStore(store IdentityStore) *Builder {
	b.identities = store
	return b
}

// WithAuditSink sets the audit destination. Audit must also be enabled in
// [AuditConfig].
func (b *Builder) WithAuditSink(sink AuditSink) *Builder {
	b.auditSink = sink
	return b
}

// WithLogger sets the engine logger. The default discards everything.
func (b *Builder) WithLogger(logger *zap.Logger) *Builder {
	b.logger = logger
	return b
}

// WithClock overrides time.Now for token issuance and expiry checks.
func (b *Builder) WithClock(now func() time.Time) *Builder {
	b.now = now
	return b
}

// WithMetricsEnabled toggles the in-process counters.
func (b *Builder) WithMetricsEnabled(enabled bool) *Builder {
	b.config.Metrics.Enabled = enabled
	return b
}

// WithLatencyHistograms toggles the authenticate latency histogram.
func (b *Builder) WithLatencyHistograms(enabled bool) *Builder {
	b.config.Metrics.EnableLatencyHistograms = enabled
	return b
}

// Build validates the configuration and wires the engine. Missing signing
// secrets fail here with [ErrConfig] rather than on the first request.
func (b *Builder) Build() (*Engine, error) {
	if b.built {
		return nil, errors.New("builder already used")
	}

	cfg := cloneConfig(b.config)

	if b.redis == nil {
		return nil, errors.New("redis client required")
	}
	if b.identities == nil {
		return nil, errors.New("identity store required")
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	logger := b.logger
	if logger == nil {
		logger = zap.NewNop()
	}
	now := b.now
	if now == nil {
		now = time.Now
	}

	// -------- ROLE REGISTRY --------
	roles, err := permission.NewRegistry(cfg.Account.Roles...)
	if err != nil {
		return nil, err
	}

	// -------- TOKEN CODEC --------
	jm, err := jwt.NewManager(jwt.Config{
		AccessSecret:  cloneBytes(cfg.JWT.AccessSecret),
		RefreshSecret: cloneBytes(cfg.JWT.RefreshSecret),
		AccessTTL:     cfg.JWT.AccessTTL,
		RefreshTTL:    cfg.JWT.RefreshTTL,
		Issuer:        cfg.JWT.Issuer,
		Leeway:        cfg.JWT.Leeway,
		Now:           now,
	})
	if err != nil {
		if errors.Is(err, jwt.ErrMissingSecret) {
			return nil, fmt.Errorf("%w: %v", ErrConfig, err)
		}
		return nil, err
	}

	// -------- PASSWORD HASHER --------
	hasher, err := newHasher(cfg.Password)
	if err != nil {
		return nil, err
	}
	dummyHash, err := hasher.Hash("goTenant-dummy-credential")
	if err != nil {
		return nil, err
	}

	// -------- SESSION STORE --------
	store := session.NewStore(b.redis, cfg.Session.RedisPrefix, cfg.JWT.RefreshTTL)

	engine := &Engine{
		config:       cfg,
		logger:       logger.Named("engine"),
		roles:        roles,
		sessionStore: store,
		identities:   b.identities,
		hasher:       hasher,
		jwtManager:   jm,
		now:          now,
	}
	engine.audit = newAuditDispatcher(cfg.Audit, b.auditSink, logger, now)
	engine.metrics = NewMetrics(cfg.Metrics)
	engine.deps = engine.buildFlowDeps(dummyHash)

	b.built = true

	return engine, nil
}

func newHasher(cfg PasswordConfig) (*password.Multi, error) {
	bc, err := password.NewBcrypt(cfg.BcryptCost)
	if err != nil {
		return nil, err
	}
	argonCfg := password.DefaultArgon2Config()
	if cfg.Memory != 0 {
		argonCfg = password.Config{
			Memory:      cfg.Memory,
			Time:        cfg.Time,
			Parallelism: cfg.Parallelism,
			SaltLength:  cfg.SaltLength,
			KeyLength:   cfg.KeyLength,
		}
	}
	// Both schemes stay available for Verify so stored hashes survive an
	// algorithm switch.
	argon, err := password.NewArgon2(argonCfg)
	if err != nil {
		return nil, err
	}

	m := &password.Multi{Primary: bc, Bcrypt: bc, Argon2: argon}
	if cfg.Algorithm == "argon2id" {
		m.Primary = argon
	}
	return m, nil
}

func (e *Engine) buildFlowDeps(dummyHash string) flows.Deps {
	return flows.Deps{
		Signup: flows.SignupDeps{
			DefaultRole:  e.config.Account.DefaultRole,
			ValidRole:    e.roles.Has,
			Now:          e.now,
			HashPassword: e.hasher.Hash,
			FindByEmail:  e.findByEmail,
			Insert:       e.insertIdentity,
			IsDuplicate: func(err error) bool {
				return errors.Is(err, ErrIdentityExists)
			},
		},
		Signin: flows.SigninDeps{
			FindByEmail:          e.findByEmail,
			VerifyPassword:       e.hasher.Verify,
			DummyHash:            dummyHash,
			PasswordNeedsUpgrade: e.hasher.NeedsUpgrade,
			HashPassword:         e.hasher.Hash,
			UpdatePasswordHash:   e.identities.UpdatePasswordHash,
			Warn: func(msg string, err error) {
				e.logger.Warn(msg, zap.Error(err))
			},
			IssueAccess:  e.jwtManager.IssueAccess,
			IssueRefresh: e.jwtManager.IssueRefresh,
			PutRefresh:   e.sessionStore.Put,
		},
		Refresh: flows.RefreshDeps{
			HasRefreshSecret: func() bool { return e.jwtManager.HasSecret(jwt.KindRefresh) },
			VerifyRefresh: func(token string) (*jwt.Claims, error) {
				return e.jwtManager.Verify(token, jwt.KindRefresh)
			},
			Expired:         e.jwtManager.Expired,
			IssueAccess:     e.jwtManager.IssueAccess,
			IssueRefresh:    e.jwtManager.IssueRefresh,
			RotateOnRefresh: e.config.Session.RotateOnRefresh,
			SessionStore:    e.sessionStore,
		},
		Revoke: flows.RevokeDeps{
			HasRefreshSecret: func() bool { return e.jwtManager.HasSecret(jwt.KindRefresh) },
			InspectRefresh: func(token string) (*jwt.Claims, error) {
				return e.jwtManager.Inspect(token, jwt.KindRefresh)
			},
			SessionStore: e.sessionStore,
		},
		Authenticate: flows.AuthenticateDeps{
			VerifyAccess: func(token string) (*jwt.Claims, error) {
				return e.jwtManager.Verify(token, jwt.KindAccess)
			},
			FindByID: e.findByID,
		},
	}
}

func (e *Engine) findByEmail(ctx context.Context, email string) (flows.IdentityRecord, bool, error) {
	identity, err := e.identities.FindByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return flows.IdentityRecord{}, false, nil
		}
		return flows.IdentityRecord{}, false, err
	}
	return recordFromIdentity(identity), true, nil
}

func (e *Engine) findByID(ctx context.Context, id string) (flows.IdentityRecord, bool, error) {
	identity, err := e.identities.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrIdentityNotFound) {
			return flows.IdentityRecord{}, false, nil
		}
		return flows.IdentityRecord{}, false, err
	}
	return recordFromIdentity(identity), true, nil
}

func (e *Engine) insertIdentity(ctx context.Context, r flows.IdentityRecord) (flows.IdentityRecord, error) {
	created, err := e.identities.Insert(ctx, identityFromRecord(r))
	if err != nil {
		return flows.IdentityRecord{}, err
	}
	return recordFromIdentity(created), nil
}
