package sessionguard

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/gallerium/sessionguard/permission"
)

func TestBootstrapProvisionsRoot(t *testing.T) {
	ctx := context.Background()
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = "RootSecret1!"
	engine, provider := newTestEngine(t, cfg)

	if err := engine.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	record, err := provider.GetUser(ctx, "root")
	if err != nil {
		t.Fatalf("root record missing: %v", err)
	}
	if !record.Permissions.God {
		t.Error("root provisioned without superuser flag")
	}

	if _, err := engine.Login(ctx, "root", "RootSecret1!"); err != nil {
		t.Fatalf("root login after bootstrap: %v", err)
	}

	snap := engine.MetricsSnapshot()
	if snap.Counters[MetricBootstrapProvisioned] != 1 {
		t.Errorf("bootstrap counter = %d", snap.Counters[MetricBootstrapProvisioned])
	}
}

func TestBootstrapIdempotent(t *testing.T) {
	ctx := context.Background()
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = "RootSecret1!"
	engine, provider := newTestEngine(t, cfg)

	if err := engine.Bootstrap(ctx); err != nil {
		t.Fatalf("first Bootstrap: %v", err)
	}
	first, _ := provider.GetUser(ctx, "root")

	if err := engine.Bootstrap(ctx); err != nil {
		t.Fatalf("second Bootstrap: %v", err)
	}
	second, _ := provider.GetUser(ctx, "root")

	if string(first.Salt) != string(second.Salt) {
		t.Error("second bootstrap replaced the root record")
	}
	if provider.putCalls != 1 {
		t.Errorf("put calls = %d, want 1", provider.putCalls)
	}
}

func TestBootstrapConcurrent(t *testing.T) {
	ctx := context.Background()
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = "RootSecret1!"
	engine, provider := newTestEngine(t, cfg)

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- engine.Bootstrap(ctx)
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		if err != nil {
			t.Errorf("concurrent Bootstrap: %v", err)
		}
	}
	if len(provider.users) != 1 {
		t.Fatalf("user count = %d, want 1", len(provider.users))
	}
}

func TestBootstrapDisabledWithoutPassword(t *testing.T) {
	ctx := context.Background()
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = ""
	engine, provider := newTestEngine(t, cfg)

	if err := engine.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}
	if len(provider.users) != 0 {
		t.Fatal("bootstrap ran without a configured password")
	}
}

func TestBootstrapEnforcesPasswordPolicy(t *testing.T) {
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = "short"
	engine, _ := newTestEngine(t, cfg)

	if err := engine.Bootstrap(context.Background()); !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("Bootstrap = %v, want ErrPasswordPolicy", err)
	}
}

func TestCreateUserValidation(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, fastConfig())

	cases := []struct {
		name     string
		username string
		pw       string
		want     error
	}{
		{"empty username", "", "Secret123!", ErrUsernameInvalid},
		{"oversized username", strings.Repeat("a", 256), "Secret123!", ErrUsernameInvalid},
		{"short password", "alice", "short", ErrPasswordPolicy},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := engine.CreateUser(ctx, tc.username, tc.pw, permission.Set{})
			if !errors.Is(err, tc.want) {
				t.Fatalf("CreateUser = %v, want %v", err, tc.want)
			}
		})
	}

	if err := engine.CreateUser(ctx, "alice", "Secret123!", permission.Set{}); err != nil {
		t.Fatalf("valid CreateUser: %v", err)
	}
	if err := engine.CreateUser(ctx, "alice", "Secret123!", permission.Set{}); !errors.Is(err, ErrUserExists) {
		t.Fatalf("duplicate CreateUser = %v, want ErrUserExists", err)
	}
}

func TestDeleteUserProtectsRoot(t *testing.T) {
	ctx := context.Background()
	cfg := fastConfig()
	cfg.Bootstrap.RootUsername = "root"
	cfg.Bootstrap.RootPassword = "RootSecret1!"
	engine, _ := newTestEngine(t, cfg)

	if err := engine.Bootstrap(ctx); err != nil {
		t.Fatalf("Bootstrap: %v", err)
	}

	if err := engine.DeleteUser(ctx, "root"); !errors.Is(err, ErrRootProtected) {
		t.Fatalf("DeleteUser(root) = %v, want ErrRootProtected", err)
	}

	seedUser(t, engine, "alice", "Secret123!", permission.Set{})
	if err := engine.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser(alice): %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "Secret123!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("login after delete = %v, want ErrInvalidCredentials", err)
	}
}

func TestDeleteUserKeepsLiveSession(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, fastConfig())
	seedUser(t, engine, "alice", "Secret123!", permission.Set{Edit: true})

	result, err := engine.Login(ctx, "alice", "Secret123!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}
	if err := engine.DeleteUser(ctx, "alice"); err != nil {
		t.Fatalf("DeleteUser: %v", err)
	}

	// the session snapshot outlives the credential record until expiry
	identity, err := engine.Resolve(ctx, result.SessionID)
	if err != nil {
		t.Fatalf("Resolve after delete: %v", err)
	}
	if !identity.Permissions.Edit {
		t.Error("snapshot lost its permissions")
	}
}

func TestUpdatePermissionsTakesEffectNextLogin(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, fastConfig())
	seedUser(t, engine, "alice", "Secret123!", permission.Set{})

	first, err := engine.Login(ctx, "alice", "Secret123!")
	if err != nil {
		t.Fatalf("Login: %v", err)
	}

	if err := engine.UpdatePermissions(ctx, "alice", permission.Set{Edit: true}); err != nil {
		t.Fatalf("UpdatePermissions: %v", err)
	}

	stale, err := engine.Resolve(ctx, first.SessionID)
	if err != nil {
		t.Fatalf("Resolve: %v", err)
	}
	if stale.Permissions.Edit {
		t.Error("existing session picked up the new permissions")
	}

	second, err := engine.Login(ctx, "alice", "Secret123!")
	if err != nil {
		t.Fatalf("second Login: %v", err)
	}
	if !second.Permissions.Edit {
		t.Error("new login missing updated permissions")
	}
}

func TestUpdatePermissionsUnknownUser(t *testing.T) {
	engine, _ := newTestEngine(t, fastConfig())
	err := engine.UpdatePermissions(context.Background(), "nobody", permission.Set{})
	if !errors.Is(err, ErrUserNotFound) {
		t.Fatalf("UpdatePermissions = %v, want ErrUserNotFound", err)
	}
}

func TestChangePasswordRotatesCredentials(t *testing.T) {
	ctx := context.Background()
	engine, provider := newTestEngine(t, fastConfig())
	seedUser(t, engine, "alice", "OldSecret1!", permission.Set{})

	before, _ := provider.GetUser(ctx, "alice")

	if err := engine.ChangePassword(ctx, "alice", "OldSecret1!", "NewSecret1!"); err != nil {
		t.Fatalf("ChangePassword: %v", err)
	}

	after, _ := provider.GetUser(ctx, "alice")
	if string(before.Salt) == string(after.Salt) {
		t.Error("salt not rotated")
	}
	if string(before.PasswordHash) == string(after.PasswordHash) {
		t.Error("hash not rotated")
	}

	if _, err := engine.Login(ctx, "alice", "OldSecret1!"); !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("old password still accepted: %v", err)
	}
	if _, err := engine.Login(ctx, "alice", "NewSecret1!"); err != nil {
		t.Fatalf("new password rejected: %v", err)
	}
}

func TestChangePasswordRejectsWrongCurrent(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, fastConfig())
	seedUser(t, engine, "alice", "OldSecret1!", permission.Set{})

	err := engine.ChangePassword(ctx, "alice", "not-the-password", "NewSecret1!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("ChangePassword = %v, want ErrInvalidCredentials", err)
	}
	err = engine.ChangePassword(ctx, "nobody", "whatever", "NewSecret1!")
	if !errors.Is(err, ErrInvalidCredentials) {
		t.Fatalf("unknown user ChangePassword = %v, want ErrInvalidCredentials", err)
	}

	// the old password must still work after the failed attempts
	if _, err := engine.Login(ctx, "alice", "OldSecret1!"); err != nil {
		t.Fatalf("Login: %v", err)
	}
}

func TestChangePasswordPolicyOnNext(t *testing.T) {
	ctx := context.Background()
	engine, _ := newTestEngine(t, fastConfig())
	seedUser(t, engine, "alice", "OldSecret1!", permission.Set{})

	err := engine.ChangePassword(ctx, "alice", "OldSecret1!", "short")
	if !errors.Is(err, ErrPasswordPolicy) {
		t.Fatalf("ChangePassword = %v, want ErrPasswordPolicy", err)
	}
}
