package authkern

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"

	"github.com/kernworks/authkern/password"
)

func benchKernel(b *testing.B) (*Kernel, TokenPair) {
	b.Helper()

	mr, err := miniredis.Run()
	if err != nil {
		b.Fatalf("miniredis.Run failed: %v", err)
	}
	b.Cleanup(mr.Close)

	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	b.Cleanup(func() { _ = client.Close() })

	hasher, err := password.NewBcrypt(testCost)
	if err != nil {
		b.Fatalf("NewBcrypt failed: %v", err)
	}
	hash, err := hasher.Hash(testPassword)
	if err != nil {
		b.Fatalf("Hash failed: %v", err)
	}

	repo := newMockAccountRepo(Account{
		ID:              "acc-1",
		Email:           testEmail,
		PasswordHash:    hash,
		DefaultTenantID: "tenant-1",
	})
	roles := newMockRoleRepo()
	roles.assignments["acc-1/tenant-1"] = RoleOperator

	kernel, err := New().
		WithConfig(testConfig()).
		WithRedis(client).
		WithAccountRepository(repo).
		WithRoleRepository(roles).
		Build()
	if err != nil {
		b.Fatalf("Build failed: %v", err)
	}
	b.Cleanup(kernel.Close)

	pair, err := kernel.Login(context.Background(), testEmail, testPassword)
	if err != nil {
		b.Fatalf("Login failed: %v", err)
	}
	return kernel, pair
}

func BenchmarkLogin(b *testing.B) {
	kernel, _ := benchKernel(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := kernel.Login(ctx, testEmail, testPassword); err != nil {
			b.Fatalf("Login failed: %v", err)
		}
	}
}

func BenchmarkAuthorize(b *testing.B) {
	kernel, pair := benchKernel(b)
	ctx := context.Background()

	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		if _, err := kernel.Authorize(ctx, pair.AccessToken, "tenant-1"); err != nil {
			b.Fatalf("Authorize failed: %v", err)
		}
	}
}

func BenchmarkAuthorizeParallel(b *testing.B) {
	kernel, pair := benchKernel(b)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		ctx := context.Background()
		for pb.Next() {
			if _, err := kernel.Authorize(ctx, pair.AccessToken, "tenant-1"); err != nil {
				b.Fatalf("Authorize failed: %v", err)
			}
		}
	})
}
