package postgres

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"

	authkern "github.com/kernworks/authkern"
)

func newMockStore(t *testing.T) (*Store, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	t.Cleanup(func() { _ = db.Close() })
	return NewStore(db), mock
}

func accountRows(lockedUntil any) *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "email", "password_hash", "failed_attempts",
		"locked_until", "default_tenant_id", "password_history", "password_expires_at",
	}).AddRow(
		"acc-1", "alice@example.com", "$2a$12$fakehash", 2,
		lockedUntil, "tenant-1", []byte(`["$2a$12$oldhash"]`), nil,
	)
}

func TestFindByEmail(t *testing.T) {
	store, mock := newMockStore(t)

	locked := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mock.ExpectQuery("select (.+) from accounts").
		WithArgs("alice@example.com").
		WillReturnRows(accountRows(locked))

	account, err := store.FindByEmail(context.Background(), "alice@example.com")
	if err != nil {
		t.Fatalf("FindByEmail: %v", err)
	}
	if account.ID != "acc-1" {
		t.Fatalf("unexpected account id: %s", account.ID)
	}
	if account.FailedAttempts != 2 {
		t.Fatalf("unexpected failed attempts: %d", account.FailedAttempts)
	}
	if account.LockedUntil == nil || !account.LockedUntil.Equal(locked) {
		t.Fatalf("unexpected locked_until: %v", account.LockedUntil)
	}
	if len(account.PasswordHistory) != 1 || account.PasswordHistory[0] != "$2a$12$oldhash" {
		t.Fatalf("unexpected history: %v", account.PasswordHistory)
	}

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestFindByEmailNotFound(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select (.+) from accounts").
		WithArgs("ghost@example.com").
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err := store.FindByEmail(context.Background(), "ghost@example.com")
	if !errors.Is(err, authkern.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestFindByIDNullableColumns(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select (.+) from accounts").
		WithArgs("acc-1").
		WillReturnRows(accountRows(nil))

	account, err := store.FindByID(context.Background(), "acc-1")
	if err != nil {
		t.Fatalf("FindByID: %v", err)
	}
	if account.LockedUntil != nil {
		t.Fatalf("expected nil LockedUntil, got %v", account.LockedUntil)
	}
	if account.PasswordExpiresAt != nil {
		t.Fatalf("expected nil PasswordExpiresAt, got %v", account.PasswordExpiresAt)
	}
}

func TestUpdateLockoutState(t *testing.T) {
	store, mock := newMockStore(t)

	until := time.Now().UTC().Add(15 * time.Minute)
	mock.ExpectExec("update accounts").
		WithArgs("acc-1", 5, &until).
		WillReturnResult(sqlmock.NewResult(0, 1))

	if err := store.UpdateLockoutState(context.Background(), "acc-1", 5, &until); err != nil {
		t.Fatalf("UpdateLockoutState: %v", err)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestUpdateLockoutStateMissingAccount(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update accounts").
		WithArgs("ghost", 1, nil).
		WillReturnResult(sqlmock.NewResult(0, 0))

	err := store.UpdateLockoutState(context.Background(), "ghost", 1, nil)
	if !errors.Is(err, authkern.ErrAccountNotFound) {
		t.Fatalf("expected ErrAccountNotFound, got %v", err)
	}
}

func TestUpdatePasswordHash(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("update accounts").
		WithArgs("acc-1", "$2a$12$newhash", []byte(`["$2a$12$fakehash"]`)).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpdatePasswordHash(context.Background(), "acc-1", "$2a$12$newhash", []string{"$2a$12$fakehash"})
	if err != nil {
		t.Fatalf("UpdatePasswordHash: %v", err)
	}
}

func TestFindRole(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select role from role_assignments").
		WithArgs("acc-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("operator"))

	role, err := store.FindRole(context.Background(), "acc-1", "tenant-1")
	if err != nil {
		t.Fatalf("FindRole: %v", err)
	}
	if role != authkern.RoleOperator {
		t.Fatalf("unexpected role: %s", role)
	}
}

func TestFindRoleAbsent(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select role from role_assignments").
		WithArgs("acc-1", "tenant-9").
		WillReturnRows(sqlmock.NewRows([]string{"role"}))

	_, err := store.FindRole(context.Background(), "acc-1", "tenant-9")
	if !errors.Is(err, authkern.ErrNoRoleAssigned) {
		t.Fatalf("expected ErrNoRoleAssigned, got %v", err)
	}
}

func TestFindRoleRejectsUnknownValue(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectQuery("select role from role_assignments").
		WithArgs("acc-1", "tenant-1").
		WillReturnRows(sqlmock.NewRows([]string{"role"}).AddRow("root"))

	_, err := store.FindRole(context.Background(), "acc-1", "tenant-1")
	if !errors.Is(err, authkern.ErrInvalidRole) {
		t.Fatalf("expected ErrInvalidRole, got %v", err)
	}
}

func TestUpsertRole(t *testing.T) {
	store, mock := newMockStore(t)

	mock.ExpectExec("insert into role_assignments").
		WithArgs("acc-1", "tenant-1", "viewer").
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := store.UpsertRole(context.Background(), authkern.RoleAssignment{
		AccountID: "acc-1",
		TenantID:  "tenant-1",
		Role:      authkern.RoleViewer,
	})
	if err != nil {
		t.Fatalf("UpsertRole: %v", err)
	}
}

func TestAuditLogEmit(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into audit_events").
		WithArgs(
			"evt-1", sqlmock.AnyArg(), "login_success", "acc-1", "tenant-1",
			"203.0.113.9", "curl/8", true, "", sqlmock.AnyArg(),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	sink := NewAuditLog(db)
	sink.Emit(context.Background(), authkern.AuditEvent{
		ID:        "evt-1",
		Timestamp: time.Now().UTC(),
		EventType: "login_success",
		AccountID: "acc-1",
		TenantID:  "tenant-1",
		IP:        "203.0.113.9",
		UserAgent: "curl/8",
		Success:   true,
		Metadata:  map[string]string{"hash_needs_upgrade": "true"},
	})

	if err := mock.ExpectationsWereMet(); err != nil {
		t.Fatalf("expectations: %v", err)
	}
}

func TestAuditLogEmitSwallowsFailure(t *testing.T) {
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock.New: %v", err)
	}
	defer db.Close()

	mock.ExpectExec("insert into audit_events").
		WillReturnError(errors.New("connection refused"))

	// Emit must not panic or surface the error.
	NewAuditLog(db).Emit(context.Background(), authkern.AuditEvent{
		ID:        "evt-2",
		Timestamp: time.Now().UTC(),
		EventType: "logout",
		Success:   true,
	})
}
