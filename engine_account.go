package sessionguard

import (
	"context"
	"errors"
	"fmt"

	"github.com/gallerium/sessionguard/permission"
)

// Bootstrap provisions the root principal if it does not exist yet. It is
// idempotent and race-safe: PutUser is an atomic insert-if-absent, so two
// instances starting at once produce exactly one root record and both treat
// the outcome as success.
//
// Bootstrap is skipped entirely unless both a root username and a root
// password are configured.
func (e *Engine) Bootstrap(ctx context.Context) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}

	root := e.config.Bootstrap.RootUsername
	pw := e.config.Bootstrap.RootPassword
	if root == "" || pw == "" {
		return nil
	}
	if len(pw) < e.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	_, err := e.credentials.GetUser(ctx, root)
	if err == nil {
		return nil
	}
	if !errors.Is(err, ErrUserNotFound) {
		return fmt.Errorf("bootstrap lookup: %w", err)
	}

	salt, key, err := e.hasher.Provision(pw)
	if err != nil {
		return err
	}

	record := CredentialRecord{
		Username:     root,
		Salt:         salt,
		PasswordHash: key,
		Permissions:  permission.All(),
	}
	if err := e.credentials.PutUser(ctx, record); err != nil {
		if errors.Is(err, ErrUserExists) {
			// lost the race to a concurrent bootstrap of the same root
			return nil
		}
		return fmt.Errorf("bootstrap provision: %w", err)
	}

	e.metricInc(MetricBootstrapProvisioned)
	e.auditEmit(ctx, AuditBootstrapProvisioned, root, "", true, nil)
	return nil
}

// CreateUser provisions a new principal with the given capability set.
func (e *Engine) CreateUser(ctx context.Context, username, pw string, perms permission.Set) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	if username == "" || len(username) > 255 {
		return ErrUsernameInvalid
	}
	if len(pw) < e.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	salt, key, err := e.hasher.Provision(pw)
	if err != nil {
		return err
	}

	record := CredentialRecord{
		Username:     username,
		Salt:         salt,
		PasswordHash: key,
		Permissions:  perms,
	}
	if err := e.credentials.PutUser(ctx, record); err != nil {
		return err
	}

	e.metricInc(MetricUserCreated)
	e.auditEmit(ctx, AuditUserCreated, username, "", true, nil)
	return nil
}

// DeleteUser removes a principal. The bootstrap principal can never be
// deleted. Live sessions of the deleted user keep their permission snapshot
// until they expire; immediate revocation would require a session index by
// username, which the store does not keep.
func (e *Engine) DeleteUser(ctx context.Context, username string) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}
	if username != "" && username == e.config.Bootstrap.RootUsername {
		return ErrRootProtected
	}

	if err := e.credentials.DeleteUser(ctx, username); err != nil {
		return err
	}

	e.metricInc(MetricUserDeleted)
	e.auditEmit(ctx, AuditUserDeleted, username, "", true, nil)
	return nil
}

// UpdatePermissions replaces a principal's capability set. Sessions carry a
// login-time snapshot, so the change takes effect at the next login.
func (e *Engine) UpdatePermissions(ctx context.Context, username string, perms permission.Set) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}

	record, err := e.credentials.GetUser(ctx, username)
	if err != nil {
		return err
	}

	record.Permissions = perms
	if err := e.credentials.UpdateUser(ctx, record); err != nil {
		return err
	}

	e.metricInc(MetricPermissionsUpdated)
	e.auditEmit(ctx, AuditPermissionsUpdated, username, "", true, nil)
	return nil
}

// ChangePassword verifies the current password and rotates both salt and
// hash. A wrong current password and an unknown user both come back as
// ErrInvalidCredentials.
func (e *Engine) ChangePassword(ctx context.Context, username, current, next string) error {
	if e == nil || e.credentials == nil {
		return ErrEngineNotReady
	}

	record, err := e.credentials.GetUser(ctx, username)
	if err != nil {
		return ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(current, record.Salt, record.PasswordHash)
	if err != nil {
		return err
	}
	if !ok {
		e.metricInc(MetricPasswordChangeInvalidOld)
		return ErrInvalidCredentials
	}

	if len(next) < e.config.Password.MinLength {
		return ErrPasswordPolicy
	}

	salt, key, err := e.hasher.Provision(next)
	if err != nil {
		return err
	}

	record.Salt = salt
	record.PasswordHash = key
	if err := e.credentials.UpdateUser(ctx, record); err != nil {
		return err
	}

	e.metricInc(MetricPasswordChangeSuccess)
	e.auditEmit(ctx, AuditPasswordChanged, username, "", true, nil)
	return nil
}
