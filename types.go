package sessionguard

import (
	"context"
	"io"
	"time"

	internalaudit "github.com/gallerium/sessionguard/internal/audit"
	internalmetrics "github.com/gallerium/sessionguard/internal/metrics"
	"github.com/gallerium/sessionguard/permission"
)

// CredentialRecord identifies one authenticatable principal. PasswordHash
// is the argon2id key derived from (password, Salt); it is only ever
// compared in constant time.
type CredentialRecord struct {
	Username     string
	Salt         []byte
	PasswordHash []byte
	Permissions  permission.Set
}

// CredentialStore is the narrow interface the engine uses to reach the
// persistent credential backend. Implementations own Credential Records
// exclusively; nothing else mutates them.
//
// PutUser must be an atomic insert-if-absent and return ErrUserExists when
// the username is taken; Bootstrap relies on this to stay race-free.
// GetUser, UpdateUser and DeleteUser return ErrUserNotFound for absent
// users; transport failures are wrapped in ErrCredentialBackend.
type CredentialStore interface {
	GetUser(ctx context.Context, username string) (CredentialRecord, error)
	PutUser(ctx context.Context, record CredentialRecord) error
	UpdateUser(ctx context.Context, record CredentialRecord) error
	DeleteUser(ctx context.Context, username string) error
}

// Identity is the authenticated principal attached to a request after the
// guard resolved its session.
type Identity struct {
	Username    string
	SessionID   string
	CSRFToken   string
	Permissions permission.Set
}

// LoginResult is returned by [Engine.Login]. SessionID travels back as an
// HTTP-only cookie; CSRFToken is handed to the client script and echoed on
// mutating requests.
type LoginResult struct {
	SessionID   string
	CSRFToken   string
	Permissions permission.Set
	ExpiresAt   time.Time
}

// AuditEvent is a structured audit record emitted by the engine.
type AuditEvent = internalaudit.Event

// AuditSink receives [AuditEvent] values from the engine's dispatcher.
type AuditSink = internalaudit.Sink

// NoOpSink is an [AuditSink] that silently discards all events.
type NoOpSink = internalaudit.NoOpSink

// ChannelSink is a buffered channel-based [AuditSink].
type ChannelSink = internalaudit.ChannelSink

// JSONWriterSink is an [AuditSink] that writes JSON lines to an [io.Writer].
type JSONWriterSink = internalaudit.JSONWriterSink

// NewChannelSink creates a [ChannelSink] with the given buffer capacity.
func NewChannelSink(buffer int) *ChannelSink {
	return internalaudit.NewChannelSink(buffer)
}

// NewJSONWriterSink creates a [JSONWriterSink] that writes to w.
func NewJSONWriterSink(w io.Writer) *JSONWriterSink {
	return internalaudit.NewJSONWriterSink(w)
}

// MetricID identifies a specific counter in the in-process metrics system.
type MetricID = internalmetrics.MetricID

const (
	MetricLoginSuccess             = internalmetrics.MetricLoginSuccess
	MetricLoginFailure             = internalmetrics.MetricLoginFailure
	MetricSessionCreated           = internalmetrics.MetricSessionCreated
	MetricSessionRevoked           = internalmetrics.MetricSessionRevoked
	MetricSessionExpired           = internalmetrics.MetricSessionExpired
	MetricCSRFRejected             = internalmetrics.MetricCSRFRejected
	MetricPermissionDenied         = internalmetrics.MetricPermissionDenied
	MetricPasswordChangeSuccess    = internalmetrics.MetricPasswordChangeSuccess
	MetricPasswordChangeInvalidOld = internalmetrics.MetricPasswordChangeInvalidOld
	MetricUserCreated              = internalmetrics.MetricUserCreated
	MetricUserDeleted              = internalmetrics.MetricUserDeleted
	MetricPermissionsUpdated       = internalmetrics.MetricPermissionsUpdated
	MetricBootstrapProvisioned     = internalmetrics.MetricBootstrapProvisioned
)

// MetricsSnapshot is a point-in-time copy of all engine counters.
type MetricsSnapshot = internalmetrics.Snapshot
