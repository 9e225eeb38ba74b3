package permission

// Capability names one class of privileged action.
type Capability string

const (
	CapEdit        Capability = "canEdit"
	CapDelete      Capability = "canDelete"
	CapManageUsers Capability = "canManageUsers"
	CapViewLogs    Capability = "canViewLogs"
)

// Capabilities lists every known capability, in codec bit order.
func Capabilities() []Capability {
	return []Capability{CapEdit, CapDelete, CapManageUsers, CapViewLogs}
}

// Set is the closed capability set carried by credential records and
// snapshotted into sessions at login. God implies every capability,
// including ones added after the session was minted.
type Set struct {
	Edit        bool `json:"canEdit"`
	Delete      bool `json:"canDelete"`
	ManageUsers bool `json:"canManageUsers"`
	ViewLogs    bool `json:"canViewLogs"`
	God         bool `json:"isGod"`
}

// Allows reports whether the set grants cap. Unknown capabilities are
// denied unless God is set.
func (s Set) Allows(cap Capability) bool {
	if s.God {
		return true
	}
	switch cap {
	case CapEdit:
		return s.Edit
	case CapDelete:
		return s.Delete
	case CapManageUsers:
		return s.ManageUsers
	case CapViewLogs:
		return s.ViewLogs
	default:
		return false
	}
}

// All returns the superuser set granted to the bootstrap principal.
func All() Set {
	return Set{
		Edit:        true,
		Delete:      true,
		ManageUsers: true,
		ViewLogs:    true,
		God:         true,
	}
}
