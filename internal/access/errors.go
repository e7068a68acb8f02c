package access

import "errors"

// Sentinel errors for authorization operations. Check with errors.Is().
var (
	// ErrFolderNotFound indicates the referenced folder does not exist.
	ErrFolderNotFound = errors.New("folder not found")

	// ErrNotAuthorized indicates the caller may not manage permissions on
	// the folder. Deliberately carries no detail about why.
	ErrNotAuthorized = errors.New("not authorized")

	// ErrCycle indicates the folder tree contains a parent cycle. The data
	// model forbids cycles, so this is a fatal integrity error, never a
	// condition to silently truncate.
	ErrCycle = errors.New("folder parent cycle detected")

	// ErrInvalidAction indicates an unknown capability was requested.
	ErrInvalidAction = errors.New("invalid action")

	// ErrUserNotFound indicates the referenced user does not exist.
	ErrUserNotFound = errors.New("user not found")
)
