// Command authkern-loadtest measures kernel throughput and latency under
// concurrent load: a login phase (bcrypt-bound) followed by an authorize
// phase (token verify + revocation check + role lookup).
//
// With no -redis-addr flag and no REDIS_ADDR environment variable it
// starts an embedded miniredis, so the harness runs without external
// infrastructure. Accounts and roles live in an in-memory repository;
// the numbers therefore isolate kernel and Redis cost from SQL cost.
//
// Run:
//
//	go run ./cmd/authkern-loadtest -accounts 1000 -ops 5000 -concurrency 128
//	go run ./cmd/authkern-loadtest -scenario scenario.yaml
package main

import (
	"context"
	"flag"
	"fmt"
	"math/rand"
	"os"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"gopkg.in/yaml.v3"

	authkern "github.com/kernworks/authkern"
	"github.com/kernworks/authkern/password"
)

type scenario struct {
	Accounts     int    `yaml:"accounts"`
	Concurrency  int    `yaml:"concurrency"`
	LoginOps     int    `yaml:"login_ops"`
	AuthorizeOps int    `yaml:"authorize_ops"`
	Password     string `yaml:"password"`
	Tenants      int    `yaml:"tenants"`
	BcryptCost   int    `yaml:"bcrypt_cost"`
}

func defaultScenario() scenario {
	return scenario{
		Accounts:     1000,
		Concurrency:  128,
		LoginOps:     2000,
		AuthorizeOps: 50000,
		Password:     "Str0ng!Passw0rd123",
		Tenants:      4,
		BcryptCost:   10,
	}
}

func main() {
	var (
		accounts     = flag.Int("accounts", 0, "number of accounts to seed")
		concurrency  = flag.Int("concurrency", 0, "number of concurrent workers")
		loginOps     = flag.Int("login-ops", 0, "operations in the login phase")
		authorizeOps = flag.Int("authorize-ops", 0, "operations in the authorize phase")
		redisAddr    = flag.String("redis-addr", "", "redis address; if empty, REDIS_ADDR env or miniredis is used")
		scenarioPath = flag.String("scenario", "", "YAML scenario file; flags override its values")
	)
	flag.Parse()

	sc := defaultScenario()
	if *scenarioPath != "" {
		raw, err := os.ReadFile(*scenarioPath)
		if err != nil {
			fmt.Fprintf(os.Stderr, "read scenario: %v\n", err)
			os.Exit(2)
		}
		if err := yaml.Unmarshal(raw, &sc); err != nil {
			fmt.Fprintf(os.Stderr, "parse scenario: %v\n", err)
			os.Exit(2)
		}
	}
	if *accounts > 0 {
		sc.Accounts = *accounts
	}
	if *concurrency > 0 {
		sc.Concurrency = *concurrency
	}
	if *loginOps > 0 {
		sc.LoginOps = *loginOps
	}
	if *authorizeOps > 0 {
		sc.AuthorizeOps = *authorizeOps
	}
	if sc.Accounts <= 0 || sc.Concurrency <= 0 || sc.LoginOps <= 0 || sc.AuthorizeOps <= 0 {
		fmt.Fprintln(os.Stderr, "accounts, concurrency, login_ops, and authorize_ops must be > 0")
		os.Exit(2)
	}
	if sc.Tenants <= 0 {
		sc.Tenants = 1
	}

	ctx := context.Background()

	addr := *redisAddr
	if addr == "" {
		addr = os.Getenv("REDIS_ADDR")
	}

	var (
		cleanup func()
		client  redis.UniversalClient
	)
	if addr == "" {
		mr, err := miniredis.Run()
		if err != nil {
			fmt.Fprintf(os.Stderr, "failed to start miniredis: %v\n", err)
			os.Exit(1)
		}
		addr = mr.Addr()
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() {
			_ = client.Close()
			mr.Close()
		}
		fmt.Printf("using miniredis at %s\n", addr)
	} else {
		client = redis.NewUniversalClient(&redis.UniversalOptions{
			Addrs: []string{addr},
		})
		cleanup = func() { _ = client.Close() }
		fmt.Printf("using redis at %s\n", addr)
	}
	defer cleanup()

	repo, roles := seedRepositories(sc)

	cfg := authkern.DefaultConfig()
	cfg.Token.Secret = []byte("loadtest-secret-loadtest-secret-loadtest")
	cfg.Password.BcryptCost = sc.BcryptCost
	cfg.Audit.Enabled = false

	kernel, err := authkern.New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccountRepository(repo).
		WithRoleRepository(roles).
		Build()
	if err != nil {
		fmt.Fprintf(os.Stderr, "build kernel: %v\n", err)
		os.Exit(1)
	}
	defer kernel.Close()

	fmt.Printf("seeded %d accounts across %d tenants (bcrypt cost %d)\n", sc.Accounts, sc.Tenants, sc.BcryptCost)

	loginStats, tokens := runLoginPhase(ctx, kernel, sc)
	authorizeStats := runAuthorizePhase(ctx, kernel, sc, tokens)

	fmt.Println("---- results ----")
	printStats("login", loginStats)
	printStats("authorize", authorizeStats)
}

// seedRepositories hashes the scenario password once and reuses the hash
// for every account: the login phase measures verification, not setup.
func seedRepositories(sc scenario) (*memAccounts, *memRoles) {
	hasher, err := password.NewBcrypt(sc.BcryptCost)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bcrypt init: %v\n", err)
		os.Exit(1)
	}
	hash, err := hasher.Hash(sc.Password)
	if err != nil {
		fmt.Fprintf(os.Stderr, "bcrypt hash: %v\n", err)
		os.Exit(1)
	}

	repo := &memAccounts{byEmail: make(map[string]authkern.Account, sc.Accounts), byID: make(map[string]authkern.Account, sc.Accounts)}
	roles := &memRoles{assignments: make(map[string]authkern.Role, sc.Accounts)}
	roleRing := []authkern.Role{
		authkern.RoleViewer,
		authkern.RoleDeveloper,
		authkern.RoleOperator,
		authkern.RoleTenantAdmin,
	}
	for i := 0; i < sc.Accounts; i++ {
		tenant := fmt.Sprintf("tenant-%d", i%sc.Tenants)
		account := authkern.Account{
			ID:              fmt.Sprintf("acc-%d", i),
			Email:           fmt.Sprintf("user-%d@example.com", i),
			PasswordHash:    hash,
			DefaultTenantID: tenant,
		}
		repo.byEmail[account.Email] = account
		repo.byID[account.ID] = account
		roles.assignments[account.ID+"/"+tenant] = roleRing[i%len(roleRing)]
	}
	return repo, roles
}

func runLoginPhase(ctx context.Context, kernel *authkern.Kernel, sc scenario) (phaseStats, []string) {
	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, sc.LoginOps)
		tokens    = make([]string, 0, sc.LoginOps)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < sc.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*7919))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= sc.LoginOps {
					return
				}
				email := fmt.Sprintf("user-%d@example.com", r.Intn(sc.Accounts))
				t0 := time.Now()
				pair, err := kernel.Login(ctx, email, sc.Password)
				d := time.Since(t0)
				if err != nil {
					atomic.AddInt64(&failures, 1)
				}
				mu.Lock()
				latencies = append(latencies, d)
				if err == nil {
					tokens = append(tokens, pair.AccessToken)
				}
				mu.Unlock()
			}
		}(w)
	}
	wg.Wait()
	total := time.Since(start)
	return computeStats(total, latencies, failures), tokens
}

func runAuthorizePhase(ctx context.Context, kernel *authkern.Kernel, sc scenario, tokens []string) phaseStats {
	if len(tokens) == 0 {
		fmt.Fprintln(os.Stderr, "no tokens issued; skipping authorize phase")
		return phaseStats{}
	}

	var (
		wg        sync.WaitGroup
		cursor    int64
		failures  int64
		latencies = make([]time.Duration, 0, sc.AuthorizeOps)
		mu        sync.Mutex
	)

	start := time.Now()
	for w := 0; w < sc.Concurrency; w++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			r := rand.New(rand.NewSource(time.Now().UnixNano() + int64(worker)*6151))
			for {
				i := int(atomic.AddInt64(&cursor, 1)) - 1
				if i >= sc.AuthorizeOps {
					return
				}
				token := tokens[r.Intn(len(tokens))]
				t0 := time.Now()
				_, err := kernel.Authorize(ctx, token, "")
				d := time.Since(t0)
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
	total := time.Since(start)
	return computeStats(total, latencies, failures)
}

type phaseStats struct {
	total    time.Duration
	ops      int
	failures int64
	p50      time.Duration
	p95      time.Duration
	p99      time.Duration
	opsPerS  float64
}

func computeStats(total time.Duration, samples []time.Duration, failures int64) phaseStats {
	if len(samples) == 0 {
		return phaseStats{total: total}
	}
	sort.Slice(samples, func(i, j int) bool { return samples[i] < samples[j] })
	return phaseStats{
		total:    total,
		ops:      len(samples),
		failures: failures,
		p50:      percentile(samples, 50),
		p95:      percentile(samples, 95),
		p99:      percentile(samples, 99),
		opsPerS:  float64(len(samples)) / total.Seconds(),
	}
}

func percentile(samples []time.Duration, p int) time.Duration {
	if len(samples) == 0 {
		return 0
	}
	if p <= 0 {
		return samples[0]
	}
	if p >= 100 {
		return samples[len(samples)-1]
	}
	idx := (len(samples) - 1) * p / 100
	return samples[idx]
}

func printStats(name string, s phaseStats) {
	fmt.Printf("%s: ops=%d failures=%d total=%s ops/sec=%.0f p50=%s p95=%s p99=%s\n",
		name,
		s.ops,
		s.failures,
		s.total.Round(time.Millisecond),
		s.opsPerS,
		s.p50.Round(time.Microsecond),
		s.p95.Round(time.Microsecond),
		s.p99.Round(time.Microsecond),
	)
}
