package sessionguard

import (
	"context"
	"crypto/subtle"
	"errors"
	"time"

	"github.com/gallerium/sessionguard/internal"
	internalaudit "github.com/gallerium/sessionguard/internal/audit"
	internalmetrics "github.com/gallerium/sessionguard/internal/metrics"
	"github.com/gallerium/sessionguard/password"
	"github.com/gallerium/sessionguard/permission"
	"github.com/gallerium/sessionguard/session"
)

// Engine orchestrates authentication, session resolution, and
// authorization. Build one with [New]; it is immutable afterwards and safe
// for concurrent use.
type Engine struct {
	config      Config
	hasher      *password.Hasher
	sessions    session.Store
	credentials CredentialStore
	audit       *internalaudit.Dispatcher
	metrics     *internalmetrics.Metrics

	// dummySalt levels the timing profile of unknown-user logins: the
	// engine derives against it so a missing record costs the same as a
	// password mismatch.
	dummySalt []byte
}

// Close releases background resources (audit worker, fallback purge).
func (e *Engine) Close() {
	if e == nil {
		return
	}
	e.audit.Close()
	if closer, ok := e.sessions.(interface{ Close() }); ok {
		closer.Close()
	}
}

func (e *Engine) metricInc(id MetricID) {
	if e == nil {
		return
	}
	e.metrics.Inc(id)
}

// MetricsSnapshot returns a point-in-time copy of all engine counters.
func (e *Engine) MetricsSnapshot() MetricsSnapshot {
	if e == nil {
		return MetricsSnapshot{Counters: map[MetricID]uint64{}}
	}
	return e.metrics.Snapshot()
}

// SessionStats reports dual-store degradation counters. Zero when a custom
// session store was injected.
func (e *Engine) SessionStats() session.DualStats {
	if e == nil {
		return session.DualStats{}
	}
	if dual, ok := e.sessions.(*session.Dual); ok {
		return dual.Stats()
	}
	return session.DualStats{}
}

// Login authenticates (username, password) and mints a session with a fresh
// CSRF token and the principal's permission snapshot.
//
// Every failure path (unknown username, wrong password, credential backend
// outage) returns the same ErrInvalidCredentials with a comparable timing
// profile. Callers must not add detail of their own.
func (e *Engine) Login(ctx context.Context, username, pw string) (*LoginResult, error) {
	if e == nil || e.credentials == nil {
		return nil, ErrEngineNotReady
	}

	record, err := e.credentials.GetUser(ctx, username)
	if err != nil {
		// burn a derivation so this path costs the same as a mismatch
		_, _ = e.hasher.Derive(pw, e.dummySalt)

		var cause error
		if !errors.Is(err, ErrUserNotFound) {
			cause = err
		}
		e.metricInc(MetricLoginFailure)
		e.auditEmit(ctx, AuditLoginFailure, username, "", false, cause)
		return nil, ErrInvalidCredentials
	}

	ok, err := e.hasher.Verify(pw, record.Salt, record.PasswordHash)
	if err != nil {
		// salt/params mismatch is a configuration fault, not a bad login
		return nil, err
	}
	if !ok {
		e.metricInc(MetricLoginFailure)
		e.auditEmit(ctx, AuditLoginFailure, username, "", false, nil)
		return nil, ErrInvalidCredentials
	}

	sessionID, err := internal.NewTokenString()
	if err != nil {
		return nil, err
	}
	csrfToken, err := internal.NewTokenString()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	ttl := e.config.Session.TTL
	sess := &session.Session{
		ID:          sessionID,
		Username:    record.Username,
		CSRFToken:   csrfToken,
		Permissions: record.Permissions,
		CreatedAt:   now.Unix(),
		ExpiresAt:   now.Add(ttl).Unix(),
	}

	if err := e.sessions.Save(ctx, sess, ttl); err != nil {
		return nil, err
	}

	e.metricInc(MetricLoginSuccess)
	e.metricInc(MetricSessionCreated)
	e.auditEmit(ctx, AuditLoginSuccess, record.Username, sessionID, true, nil)

	return &LoginResult{
		SessionID:   sessionID,
		CSRFToken:   csrfToken,
		Permissions: record.Permissions,
		ExpiresAt:   time.Unix(sess.ExpiresAt, 0),
	}, nil
}

// Resolve maps a session identifier to its authenticated identity. Expired,
// revoked, and never-issued identifiers are indistinguishable: all yield
// ErrUnauthorized.
func (e *Engine) Resolve(ctx context.Context, sessionID string) (*Identity, error) {
	if e == nil {
		return nil, ErrEngineNotReady
	}
	if sessionID == "" {
		return nil, ErrUnauthorized
	}
	if _, err := internal.ParseToken(sessionID); err != nil {
		// garbage cookie values never hit a backend
		return nil, ErrUnauthorized
	}

	sess, err := e.sessions.Get(ctx, sessionID)
	if err != nil {
		if errors.Is(err, session.ErrSessionExpired) {
			e.metricInc(MetricSessionExpired)
		}
		return nil, ErrUnauthorized
	}

	return &Identity{
		Username:    sess.Username,
		SessionID:   sess.ID,
		CSRFToken:   sess.CSRFToken,
		Permissions: sess.Permissions,
	}, nil
}

// Logout revokes the session in both backends. Revocation is best-effort
// on the primary and always succeeds from the caller's perspective;
// logging out twice is not an error.
func (e *Engine) Logout(ctx context.Context, sessionID string) {
	if e == nil || sessionID == "" {
		return
	}

	_ = e.sessions.Delete(ctx, sessionID)
	e.metricInc(MetricSessionRevoked)
	e.auditEmit(ctx, AuditLogout, "", sessionID, true, nil)
}

// VerifyCSRF checks the double-submit proof for a mutating request. The
// comparison is constant-time; a failure is counted and audited here so
// transports stay dumb.
func (e *Engine) VerifyCSRF(ctx context.Context, identity *Identity, provided string) bool {
	if e == nil || identity == nil {
		return false
	}

	if provided != "" &&
		subtle.ConstantTimeCompare([]byte(provided), []byte(identity.CSRFToken)) == 1 {
		return true
	}

	e.metricInc(MetricCSRFRejected)
	e.auditEmit(ctx, AuditCSRFRejected, identity.Username, identity.SessionID, false, nil)
	return false
}

// Authorize decides whether identity may perform cap. The superuser flag
// passes everything; otherwise absent capabilities are denied.
func (e *Engine) Authorize(ctx context.Context, identity *Identity, cap permission.Capability) bool {
	if e == nil || identity == nil {
		return false
	}

	if identity.Permissions.Allows(cap) {
		return true
	}

	e.metricInc(MetricPermissionDenied)
	e.auditEmit(ctx, AuditPermissionDenied, identity.Username, identity.SessionID, false, nil)
	return false
}
