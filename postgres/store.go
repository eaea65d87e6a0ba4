package postgres

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"

	authkern "github.com/kernworks/authkern"
)

// Store implements [authkern.AccountRepository] and
// [authkern.RoleRepository] over a PostgreSQL database.
type Store struct {
	db *sql.DB
}

var (
	_ authkern.AccountRepository = (*Store)(nil)
	_ authkern.RoleRepository    = (*Store)(nil)
)

// Open connects to dsn via the pgx stdlib driver with pool defaults
// sized for request-per-goroutine auth traffic.
func Open(dsn string) (*Store, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, err
	}
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(25)
	db.SetConnMaxLifetime(15 * time.Minute)
	db.SetConnMaxIdleTime(5 * time.Minute)
	return &Store{db: db}, nil
}

// NewStore wraps an existing database handle. The caller keeps
// ownership of db and is responsible for closing it.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Close describes the close operation and its observable behavior.
//
// Close may return an error when input validation, dependency calls, or security checks fail.
// Close does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) Close() error { return s.db.Close() }

// DB describes the db operation and its observable behavior.
//
// DB may return an error when input validation, dependency calls, or security checks fail.
// DB does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) DB() *sql.DB { return s.db }

const accountColumns = `id, email, password_hash, failed_attempts, locked_until, default_tenant_id, password_history, password_expires_at`

// FindByEmail describes the findbyemail operation and its observable behavior.
//
// FindByEmail may return an error when input validation, dependency calls, or security checks fail.
// FindByEmail does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByEmail(ctx context.Context, email string) (authkern.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+accountColumns+`
		from accounts
		where email = $1
	`, email)
	return scanAccount(row)
}

// FindByID describes the findbyid operation and its observable behavior.
//
// FindByID may return an error when input validation, dependency calls, or security checks fail.
// FindByID does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindByID(ctx context.Context, id string) (authkern.Account, error) {
	row := s.db.QueryRowContext(ctx, `
		select `+accountColumns+`
		from accounts
		where id = $1
	`, id)
	return scanAccount(row)
}

// UpdateLockoutState persists the failure counter and lock window in a
// single statement; the row is the serialization point for concurrent
// logins against the same account.
func (s *Store) UpdateLockoutState(ctx context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	res, err := s.db.ExecContext(ctx, `
		update accounts
		set failed_attempts = $2, locked_until = $3
		where id = $1
	`, id, failedAttempts, lockedUntil)
	if err != nil {
		return fmt.Errorf("update lockout state: %w", err)
	}
	return requireRow(res, id)
}

// UpdatePasswordHash describes the updatepasswordhash operation and its observable behavior.
//
// UpdatePasswordHash may return an error when input validation, dependency calls, or security checks fail.
// UpdatePasswordHash does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpdatePasswordHash(ctx context.Context, id, newHash string, history []string) error {
	res, err := s.db.ExecContext(ctx, `
		update accounts
		set password_hash = $2, password_history = $3
		where id = $1
	`, id, newHash, encodeHistory(history))
	if err != nil {
		return fmt.Errorf("update password hash: %w", err)
	}
	return requireRow(res, id)
}

// FindRole describes the findrole operation and its observable behavior.
//
// FindRole may return an error when input validation, dependency calls, or security checks fail.
// FindRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) FindRole(ctx context.Context, accountID, tenantID string) (authkern.Role, error) {
	var raw string
	err := s.db.QueryRowContext(ctx, `
		select role
		from role_assignments
		where account_id = $1 and tenant_id = $2
	`, accountID, tenantID).Scan(&raw)
	if errors.Is(err, sql.ErrNoRows) {
		return "", authkern.ErrNoRoleAssigned
	}
	if err != nil {
		return "", fmt.Errorf("find role: %w", err)
	}
	return authkern.ParseRole(raw)
}

// UpsertRole describes the upsertrole operation and its observable behavior.
//
// UpsertRole may return an error when input validation, dependency calls, or security checks fail.
// UpsertRole does not mutate shared global state and can be used concurrently when the receiver and dependencies are concurrently safe.
func (s *Store) UpsertRole(ctx context.Context, assignment authkern.RoleAssignment) error {
	_, err := s.db.ExecContext(ctx, `
		insert into role_assignments (account_id, tenant_id, role)
		values ($1, $2, $3)
		on conflict (account_id, tenant_id) do update
		set role = excluded.role
	`, assignment.AccountID, assignment.TenantID, string(assignment.Role))
	if err != nil {
		return fmt.Errorf("upsert role: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanAccount(row rowScanner) (authkern.Account, error) {
	var (
		account authkern.Account
		locked  sql.NullTime
		expires sql.NullTime
		history []byte
	)
	err := row.Scan(
		&account.ID,
		&account.Email,
		&account.PasswordHash,
		&account.FailedAttempts,
		&locked,
		&account.DefaultTenantID,
		&history,
		&expires,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return authkern.Account{}, authkern.ErrAccountNotFound
	}
	if err != nil {
		return authkern.Account{}, fmt.Errorf("scan account: %w", err)
	}
	if locked.Valid {
		t := locked.Time.UTC()
		account.LockedUntil = &t
	}
	if expires.Valid {
		t := expires.Time.UTC()
		account.PasswordExpiresAt = &t
	}
	account.PasswordHistory = decodeHistory(history)
	return account, nil
}

func requireRow(res sql.Result, id string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return fmt.Errorf("%w: %s", authkern.ErrAccountNotFound, id)
	}
	return nil
}
