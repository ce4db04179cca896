// Command tenant-loadtest drives signin, refresh and authenticate against an
// in-process Engine and reports latency percentiles per phase.
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sync"
	"sync/atomic"
	"time"

	goTenant "github.com/MrEthical07/goTenant"
	"github.com/MrEthical07/goTenant/storage/sqlite"
	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const loadPassword = "load-test-password"

type account struct {
	email string

	mu      sync.Mutex
	access  string
	refresh string
}

func main() {
	var (
		users       = flag.Int("users", 200, "number of identities to seed")
		concurrency = flag.Int("concurrency", 64, "number of concurrent workers")
		ops         = flag.Int("ops", 20000, "operations per phase")
		redisAddr   = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		rotate      = flag.Bool("rotate", false, "rotate refresh tokens on use")
		cost        = flag.Int("bcrypt-cost", bcrypt.MinCost, "bcrypt cost for seeded identities")
	)
	flag.Parse()

	if *users <= 0 || *concurrency <= 0 || *ops <= 0 {
		fmt.Fprintln(os.Stderr, "users, concurrency, and ops must be > 0")
		os.Exit(2)
	}

	ctx := context.Background()

	client, cleanup, err := redisClient(*redisAddr)
	if err != nil {
		fmt.Fprintf(os.Stderr, "redis: %v\n", err)
		os.Exit(1)
	}
	defer cleanup()

	db, err := sqlite.Open(ctx, ":memory:")
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlite: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	cfg := goTenant.DefaultConfig()
	cfg.JWT.AccessSecret = []byte("loadtest-access-secret")
	cfg.JWT.RefreshSecret = []byte("loadtest-refresh-secret")
	cfg.Password.BcryptCost = *cost
	cfg.Session.RotateOnRefresh = *rotate
	cfg.Metrics.Enabled = true
	cfg.Metrics.EnableLatencyHistograms = true

	engine, err := goTenant.New().
		WithConfig(cfg).
		WithRedis(client).
		WithIdentityStore(sqlite.NewIdentityStore(db)).
		WithLogger(zap.NewNop()).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build engine: %v\n", err)
		os.Exit(1)
	}
	defer engine.Close()

	accounts := make([]*account, *users)
	fmt.Printf("seeding %d identities...\n", *users)
	startSeed := time.Now()
	for i := range accounts {
		email := fmt.Sprintf("user-%d@loadtest.local", i)
		if _, err := engine.Signup(ctx, goTenant.SignupRequest{Name: "load", Email: email, Password: loadPassword}); err != nil {
			fmt.Fprintf(os.Stderr, "signup failed: %v\n", err)
			os.Exit(1)
		}
		accounts[i] = &account{email: email}
	}
	fmt.Printf("seeded in %s\n", time.Since(startSeed).Round(time.Millisecond))

	signinStats := runPhase(*ops, *concurrency, accounts, func(a *account) error {
		pair, err := engine.Signin(ctx, a.email, loadPassword)
		if err != nil {
			return err
		}
		a.access, a.refresh = pair.AccessToken, pair.RefreshToken
		return nil
	})
	refreshStats := runPhase(*ops, *concurrency, accounts, func(a *account) error {
		if a.refresh == "" {
			return goTenant.ErrMissingToken
		}
		pair, err := engine.RefreshAccess(ctx, a.refresh)
		if err != nil {
			return err
		}
		a.access, a.refresh = pair.AccessToken, pair.RefreshToken
		return nil
	})
	authStats := runPhase(*ops, *concurrency, accounts, func(a *account) error {
		_, err := engine.Authenticate(ctx, a.access)
		return err
	})

	fmt.Println("---- results ----")
	printStats("signin", signinStats)
	printStats("refresh", refreshStats)
	printStats("authenticate", authStats)

	snap := engine.MetricsSnapshot()
	fmt.Printf("engine: signin_ok=%d refresh_ok=%d refresh_rotated=%d authenticate_ok=%d\n",
		snap.Counters[goTenant.MetricSigninSuccess],
		snap.Counters[goTenant.MetricRefreshSuccess],
		snap.Counters[goTenant.MetricRefreshRotated],
		snap.Counters[goTenant.MetricAuthenticateSuccess],
	)
}

func redisClient(addr string) (redis.UniversalClient, func(), error) {
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}
	if addr != "" {
		client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{addr}})
		fmt.Printf("using redis at %s\n", addr)
		return client, func() { _ = client.Close() }, nil
	}

	mr, err := miniredis.Run()
	if err != nil {
		return nil, nil, err
	}
	client := redis.NewUniversalClient(&redis.UniversalOptions{Addrs: []string{mr.Addr()}})
	fmt.Printf("using miniredis at %s\n", mr.Addr())
	return client, func() {
		_ = client.Close()
		mr.Close()
	}, nil
}

// runPhase spreads ops calls over concurrency workers. Each call holds the
// chosen account's lock so its tokens stay consistent.
func runPhase(ops, concurrency int, accounts []*account, op func(*account) error) phaseStats {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, ops)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= ops {
					return
				}
				a := accounts[r.Intn(len(accounts))]

				a.mu.Lock()
				t0 := time.Now()
				err := op(a)
				d := time.Since(t0)
				a.mu.Unlock()

				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	return computeStats(time.Since(start), latencies, failures)
}
