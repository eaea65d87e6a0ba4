package main

import (
	"context"
	"sync"
	"time"

	authkern "github.com/kernworks/authkern"
)

// memAccounts is an in-memory [authkern.AccountRepository] for the load
// harness. Lockout writes take the write lock so concurrent logins
// against the same account stay consistent, mirroring the single-UPDATE
// contract of the SQL store.
type memAccounts struct {
	mu      sync.RWMutex
	byEmail map[string]authkern.Account
	byID    map[string]authkern.Account
}

func (m *memAccounts) FindByEmail(_ context.Context, email string) (authkern.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.byEmail[email]
	if !ok {
		return authkern.Account{}, authkern.ErrAccountNotFound
	}
	return account, nil
}

func (m *memAccounts) FindByID(_ context.Context, id string) (authkern.Account, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	account, ok := m.byID[id]
	if !ok {
		return authkern.Account{}, authkern.ErrAccountNotFound
	}
	return account, nil
}

func (m *memAccounts) UpdateLockoutState(_ context.Context, id string, failedAttempts int, lockedUntil *time.Time) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return authkern.ErrAccountNotFound
	}
	account.FailedAttempts = failedAttempts
	account.LockedUntil = lockedUntil
	m.byID[id] = account
	m.byEmail[account.Email] = account
	return nil
}

func (m *memAccounts) UpdatePasswordHash(_ context.Context, id, newHash string, history []string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	account, ok := m.byID[id]
	if !ok {
		return authkern.ErrAccountNotFound
	}
	account.PasswordHash = newHash
	account.PasswordHistory = history
	m.byID[id] = account
	m.byEmail[account.Email] = account
	return nil
}

type memRoles struct {
	mu          sync.RWMutex
	assignments map[string]authkern.Role
}

func (m *memRoles) FindRole(_ context.Context, accountID, tenantID string) (authkern.Role, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	role, ok := m.assignments[accountID+"/"+tenantID]
	if !ok {
		return "", authkern.ErrNoRoleAssigned
	}
	return role, nil
}

func (m *memRoles) UpsertRole(_ context.Context, assignment authkern.RoleAssignment) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.assignments[assignment.AccountID+"/"+assignment.TenantID] = assignment.Role
	return nil
}
