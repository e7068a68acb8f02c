package access

import (
	"time"

	"github.com/google/uuid"
)

// Action is a capability checked against the folder tree.
type Action string

const (
	ActionRead   Action = "read"
	ActionWrite  Action = "write"
	ActionDelete Action = "delete"

	// ActionAdmin gates permission management (grant/revoke/list).
	ActionAdmin Action = "admin"
)

// Valid reports whether the action is one of the defined capabilities.
func (a Action) Valid() bool {
	switch a {
	case ActionRead, ActionWrite, ActionDelete, ActionAdmin:
		return true
	}
	return false
}

// User is the resolved identity for a request. Authentication happens
// upstream; the engine only ever sees the ID and the superuser flag.
type User struct {
	ID        uuid.UUID
	Superuser bool
}

// Folder is a node in the folder tree. A nil ParentID marks a root.
// Ownership is never inherited from the parent.
type Folder struct {
	ID        uuid.UUID
	Name      string
	ParentID  *uuid.UUID
	OwnerID   uuid.UUID
	CreatedAt time.Time
}

// PermissionEntry is an explicit grant for one (user, folder) pair.
// At most one entry exists per pair. The presence of an entry is itself
// meaningful: it terminates the inheritance walk even when every flag
// is false.
type PermissionEntry struct {
	UserID    uuid.UUID
	FolderID  uuid.UUID
	Read      bool
	Write     bool
	Delete    bool
	Admin     bool
	GrantedBy uuid.UUID
	CreatedAt time.Time
}

// AnyGranted reports whether at least one capability flag is set.
// Entries with no granted flag are pure denials and do not make the
// folder accessible.
func (e PermissionEntry) AnyGranted() bool {
	return e.Read || e.Write || e.Delete || e.Admin
}

// allows returns the entry's answer for the given action. Admin implies
// every capability.
func (e PermissionEntry) allows(action Action) bool {
	if e.Admin {
		return true
	}
	switch action {
	case ActionRead:
		return e.Read
	case ActionWrite:
		return e.Write
	case ActionDelete:
		return e.Delete
	case ActionAdmin:
		return false
	}
	return false
}
