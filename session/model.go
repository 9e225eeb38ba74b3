package session

import (
	"time"

	"github.com/gallerium/sessionguard/permission"
)

// Session is one authenticated browser session. The ID doubles as the Redis
// key suffix and the client cookie value; it is never stored inside the
// encoded record. CSRFToken is minted independently at login and bound to
// the session for its whole lifetime. Permissions are a login-time snapshot,
// not re-read from the credential store per request.
type Session struct {
	ID          string
	Username    string
	CSRFToken   string
	Permissions permission.Set

	CreatedAt int64
	ExpiresAt int64
}

// Expired reports whether the session is no longer valid at now. Sessions
// are valid strictly before ExpiresAt.
func (s *Session) Expired(now time.Time) bool {
	return s.ExpiresAt <= now.Unix()
}

func (s *Session) clone() *Session {
	cp := *s
	return &cp
}
