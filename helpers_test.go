package goTenant

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"golang.org/x/crypto/bcrypt"
)

type memoryIdentityStore struct {
	mu      sync.Mutex
	byID    map[string]Identity
	byEmail map[string]string
	findErr   error
	updateErr error
}

func newMemoryIdentityStore() *memoryIdentityStore {
	return &memoryIdentityStore{
		byID:    map[string]Identity{},
		byEmail: map[string]string{},
	}
}

func (m *memoryIdentityStore) FindByEmail(_ context.Context, email string) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return Identity{}, m.findErr
	}
	id, ok := m.byEmail[email]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return m.byID[id], nil
}

func (m *memoryIdentityStore) FindByID(_ context.Context, id string) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.findErr != nil {
		return Identity{}, m.findErr
	}
	identity, ok := m.byID[id]
	if !ok {
		return Identity{}, ErrIdentityNotFound
	}
	return identity, nil
}

func (m *memoryIdentityStore) Insert(_ context.Context, identity Identity) (Identity, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if _, ok := m.byEmail[identity.Email]; ok {
		return Identity{}, ErrIdentityExists
	}
	identity.ID = uuid.NewString()
	m.byID[identity.ID] = identity
	m.byEmail[identity.Email] = identity.ID
	return identity, nil
}

func (m *memoryIdentityStore) UpdatePasswordHash(_ context.Context, id, hash string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.updateErr != nil {
		return m.updateErr
	}
	identity, ok := m.byID[id]
	if !ok {
		return ErrIdentityNotFound
	}
	identity.PasswordHash = hash
	m.byID[id] = identity
	return nil
}

func (m *memoryIdentityStore) remove(id string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	identity, ok := m.byID[id]
	if !ok {
		return
	}
	delete(m.byEmail, identity.Email)
	delete(m.byID, id)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return mr, client
}

func testConfig() Config {
	cfg := defaultConfig()
	cfg.JWT.AccessSecret = []byte("access-secret-for-tests")
	cfg.JWT.RefreshSecret = []byte("refresh-secret-for-tests")
	cfg.Password.BcryptCost = bcrypt.MinCost
	cfg.Metrics.Enabled = true
	return cfg
}

type testEngine struct {
	*Engine
	mr         *miniredis.Miniredis
	rdb        *redis.Client
	identities *memoryIdentityStore
	clock      *testClock
}

func newTestEngine(t *testing.T, cfg Config) (*testEngine, func()) {
	t.Helper()

	mr, rdb := newTestRedis(t)
	identities := newMemoryIdentityStore()
	clock := newTestClock()

	engine, err := New().
		WithConfig(cfg).
		WithRedis(rdb).
		WithIdentityStore(identities).
		WithClock(clock.Now).
		Build()
	if err != nil {
		mr.Close()
		t.Fatalf("Build failed: %v", err)
	}

	te := &testEngine{
		Engine:     engine,
		mr:         mr,
		rdb:        rdb,
		identities: identities,
		clock:      clock,
	}
	return te, func() {
		engine.Close()
		_ = rdb.Close()
		mr.Close()
	}
}

func mustSignup(t *testing.T, e *testEngine, email, role string) *Identity {
	t.Helper()

	identity, err := e.Signup(context.Background(), SignupRequest{
		Name:     "Test User",
		Email:    email,
		Password: "correct-horse",
		Role:     role,
	})
	if err != nil {
		t.Fatalf("Signup(%s) failed: %v", email, err)
	}
	return identity
}

func mustSignin(t *testing.T, e *testEngine, email string) *TokenPair {
	t.Helper()

	pair, err := e.Signin(context.Background(), email, "correct-horse")
	if err != nil {
		t.Fatalf("Signin(%s) failed: %v", email, err)
	}
	return pair
}

var errBackend = errors.New("backend down")
