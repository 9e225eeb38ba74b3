package httpapi

import (
	"net/http"
	"strconv"
	"strings"

	sessionguard "github.com/gallerium/sessionguard"
)

type counterDef struct {
	id   sessionguard.MetricID
	name string
	help string
}

var counterDefs = []counterDef{
	{sessionguard.MetricLoginSuccess, "sessionguard_login_success_total", "Successful logins."},
	{sessionguard.MetricLoginFailure, "sessionguard_login_failure_total", "Rejected login attempts."},
	{sessionguard.MetricSessionCreated, "sessionguard_session_created_total", "Sessions minted at login."},
	{sessionguard.MetricSessionRevoked, "sessionguard_session_revoked_total", "Sessions revoked by logout."},
	{sessionguard.MetricSessionExpired, "sessionguard_session_expired_total", "Sessions discarded at read time past their expiry."},
	{sessionguard.MetricCSRFRejected, "sessionguard_csrf_rejected_total", "Mutating requests rejected for a missing or wrong CSRF token."},
	{sessionguard.MetricPermissionDenied, "sessionguard_permission_denied_total", "Capability checks that denied access."},
	{sessionguard.MetricPasswordChangeSuccess, "sessionguard_password_change_success_total", "Completed password rotations."},
	{sessionguard.MetricPasswordChangeInvalidOld, "sessionguard_password_change_invalid_old_total", "Password changes rejected for a wrong current password."},
	{sessionguard.MetricUserCreated, "sessionguard_user_created_total", "Principals provisioned."},
	{sessionguard.MetricUserDeleted, "sessionguard_user_deleted_total", "Principals removed."},
	{sessionguard.MetricPermissionsUpdated, "sessionguard_permissions_updated_total", "Capability set replacements."},
	{sessionguard.MetricBootstrapProvisioned, "sessionguard_bootstrap_provisioned_total", "Root principals provisioned at startup."},
}

// metricsHandler serves engine counters in Prometheus text exposition
// format. The endpoint is unauthenticated; deployments front it with
// network policy, not sessions.
func (s *Server) metricsHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "text/plain; version=0.0.4; charset=utf-8")
		_, _ = w.Write([]byte(s.renderMetrics()))
	})
}

func (s *Server) renderMetrics() string {
	snapshot := s.engine.MetricsSnapshot()
	stats := s.engine.SessionStats()

	var b strings.Builder
	b.Grow(4096)

	for _, def := range counterDefs {
		writeCounter(&b, def.name, def.help, snapshot.Counters[def.id])
	}

	writeCounter(&b, "sessionguard_audit_dropped_total",
		"Audit events dropped by dispatcher backpressure.", s.engine.AuditDropped())
	writeCounter(&b, "sessionguard_store_primary_errors_total",
		"Primary session backend failures observed by the dual store.", stats.PrimaryErrors)
	writeCounter(&b, "sessionguard_store_fallback_writes_total",
		"Session writes that only reached the in-process fallback.", stats.FallbackWrites)
	writeCounter(&b, "sessionguard_store_fallback_reads_total",
		"Session reads served from the in-process fallback.", stats.FallbackReads)

	return b.String()
}

func writeCounter(b *strings.Builder, name, help string, value uint64) {
	b.WriteString("# HELP ")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(help)
	b.WriteByte('\n')
	b.WriteString("# TYPE ")
	b.WriteString(name)
	b.WriteString(" counter\n")
	b.WriteString(name)
	b.WriteByte(' ')
	b.WriteString(strconv.FormatUint(value, 10))
	b.WriteByte('\n')
}
