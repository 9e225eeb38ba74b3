package sessionguard

import (
	"context"
	"time"

	"github.com/google/uuid"

	internalaudit "github.com/gallerium/sessionguard/internal/audit"
)

// Audit event types emitted by the engine.
const (
	AuditLoginSuccess         = "login.success"
	AuditLoginFailure         = "login.failure"
	AuditLogout               = "logout"
	AuditCSRFRejected         = "csrf.rejected"
	AuditPermissionDenied     = "permission.denied"
	AuditPasswordChanged      = "password.changed"
	AuditUserCreated          = "user.created"
	AuditUserDeleted          = "user.deleted"
	AuditPermissionsUpdated   = "user.permissions_updated"
	AuditBootstrapProvisioned = "bootstrap.provisioned"
)

func (e *Engine) auditEmit(ctx context.Context, eventType, username, sessionID string, success bool, cause error) {
	if e == nil || e.audit == nil {
		return
	}

	event := internalaudit.Event{
		ID:        uuid.NewString(),
		Timestamp: time.Now().UTC(),
		EventType: eventType,
		Username:  username,
		SessionID: sessionID,
		IP:        clientIPFromContext(ctx),
		Success:   success,
	}
	if cause != nil {
		event.Error = cause.Error()
	}

	e.audit.Emit(ctx, event)
}

// AuditDropped reports how many audit events were discarded because the
// dispatcher buffer was full.
func (e *Engine) AuditDropped() uint64 {
	if e == nil {
		return 0
	}
	return e.audit.Dropped()
}
