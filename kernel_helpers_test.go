package authkern

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kernworks/authkern/password"
)

const (
	testEmail    = "alice@example.com"
	testPassword = "Str0ng!Passw0rd123"
	testSecret   = "0123456789abcdef0123456789abcdef"
	testCost     = 10
)

// testClock is a mutable clock shared between the kernel, the codec, and
// the revocation store so lockout windows and token expiry can be driven
// from tests.
type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 2, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

// mockAccountRepo is an in-memory AccountRepository with injectable
// failures and a write counter for lockout-persistence assertions.
type mockAccountRepo struct {
	mu             sync.Mutex
	accounts       map[string]Account // keyed by ID
	failFind       error
	failUpdate     error
	lockoutWrites  int
	passwordWrites int
}

func newMockAccountRepo(accounts ...Account) *mockAccountRepo {
	repo := &mockAccountRepo{accounts: make(map[string]Account, len(accounts))}
	for _, account := range accounts {
		repo.accounts[account.ID] = account
	}
	return repo
}

func (m *mockAccountRepo) FindByEmail(_ context.Context, email string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return Account{}, m.failFind
	}
	for _, account := range m.accounts {
		if account.Email == email {
			return account, nil
		}
	}
	return Account{}, ErrAccountNotFound
}

func (m *mockAccountRepo) FindByID(_ context.Context, id string) (Account, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return Account{}, m.failFind
	}
	account, ok := m.accounts[id]
	if !ok {
		return Account{}, ErrAccountNotFound
	}
	return account, nil
}

func (m *mockAccountRepo) UpdateLockoutState(_ context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.FailedAttempts = failedAttempts
	account.LockedUntil = lockedUntil
	m.accounts[id] = account
	m.lockoutWrites++
	return nil
}

func (m *mockAccountRepo) UpdatePasswordHash(_ context.Context, id, newHash string, history []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failUpdate != nil {
		return m.failUpdate
	}
	account, ok := m.accounts[id]
	if !ok {
		return ErrAccountNotFound
	}
	account.PasswordHash = newHash
	account.PasswordHistory = history
	m.accounts[id] = account
	m.passwordWrites++
	return nil
}

func (m *mockAccountRepo) get(t *testing.T, id string) Account {
	t.Helper()
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.accounts[id]
	if !ok {
		t.Fatalf("account %q not in repo", id)
	}
	return account
}

// mockRoleRepo is an in-memory RoleRepository with upsert counting.
type mockRoleRepo struct {
	mu          sync.Mutex
	assignments map[string]Role
	failFind    error
	upserts     int
}

func newMockRoleRepo() *mockRoleRepo {
	return &mockRoleRepo{assignments: make(map[string]Role)}
}

func (m *mockRoleRepo) FindRole(_ context.Context, accountID, tenantID string) (Role, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failFind != nil {
		return "", m.failFind
	}
	role, ok := m.assignments[accountID+"/"+tenantID]
	if !ok {
		return "", ErrNoRoleAssigned
	}
	return role, nil
}

func (m *mockRoleRepo) UpsertRole(_ context.Context, assignment RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[assignment.AccountID+"/"+assignment.TenantID] = assignment.Role
	m.upserts++
	return nil
}

func (m *mockRoleRepo) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.assignments)
}

// recordingSink captures audit events for assertions.
type recordingSink struct {
	mu     sync.Mutex
	events []AuditEvent
	closed atomic.Bool
}

func (s *recordingSink) Emit(_ context.Context, event AuditEvent) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, event)
}

// waitFor blocks until at least one event of type eventType arrives or
// the deadline passes; the dispatcher delivers asynchronously.
func (s *recordingSink) waitFor(t *testing.T, eventType string) AuditEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for time.Now().Before(deadline) {
		s.mu.Lock()
		for _, event := range s.events {
			if event.EventType == eventType {
				s.mu.Unlock()
				return event
			}
		}
		s.mu.Unlock()
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatalf("no %q audit event arrived", eventType)
	return AuditEvent{}
}

func (s *recordingSink) countOf(eventType string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := 0
	for _, event := range s.events {
		if event.EventType == eventType {
			n++
		}
	}
	return n
}

func testConfig() Config {
	cfg := DefaultConfig()
	cfg.Token.Secret = []byte(testSecret)
	cfg.Password.BcryptCost = testCost
	return cfg
}

func hashFor(t *testing.T, plaintext string) string {
	t.Helper()
	hasher, err := password.NewBcrypt(testCost)
	if err != nil {
		t.Fatalf("NewBcrypt failed: %v", err)
	}
	hash, err := hasher.Hash(plaintext)
	if err != nil {
		t.Fatalf("Hash failed: %v", err)
	}
	return hash
}

func testAccount(t *testing.T) Account {
	t.Helper()
	return Account{
		ID:              "acc-1",
		Email:           testEmail,
		PasswordHash:    hashFor(t, testPassword),
		DefaultTenantID: "tenant-1",
	}
}

type kernelFixture struct {
	kernel *Kernel
	repo   *mockAccountRepo
	roles  *mockRoleRepo
	sink   *recordingSink
	clock  *testClock
	redis  *miniredis.Miniredis
}

// newKernelFixture assembles a kernel over miniredis, mock repositories,
// and a controllable clock. The default seed is one unlocked account
// holding the operator role in tenant-1.
func newKernelFixture(t *testing.T, cfg Config, accounts ...Account) *kernelFixture {
	t.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		t.Fatalf("miniredis.Run failed: %v", err)
	}
	t.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	if len(accounts) == 0 {
		accounts = []Account{testAccount(t)}
	}
	repo := newMockAccountRepo(accounts...)
	roles := newMockRoleRepo()
	roles.assignments["acc-1/tenant-1"] = RoleOperator
	sink := &recordingSink{}
	clock := newTestClock()

	kernel, err := New().
		WithConfig(cfg).
		WithRedis(client).
		WithAccountRepository(repo).
		WithRoleRepository(roles).
		WithAuditSink(sink).
		WithClock(clock.Now).
		Build()
	if err != nil {
		t.Fatalf("Build failed: %v", err)
	}
	t.Cleanup(kernel.Close)

	return &kernelFixture{
		kernel: kernel,
		repo:   repo,
		roles:  roles,
		sink:   sink,
		clock:  clock,
		redis:  mr,
	}
}

func mustLogin(t *testing.T, f *kernelFixture) TokenPair {
	t.Helper()
	pair, err := f.kernel.Login(context.Background(), testEmail, testPassword)
	if err != nil {
		t.Fatalf("Login failed: %v", err)
	}
	return pair
}

var errBackendDown = errors.New("backend down")
