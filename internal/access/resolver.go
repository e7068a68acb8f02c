package access

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

// Store defines the read/write operations the resolver needs. Defined by the
// consumer so tests can supply an in-memory implementation.
type Store interface {
	// Folder returns a folder by ID, or ErrFolderNotFound.
	Folder(ctx context.Context, id uuid.UUID) (Folder, error)

	// Entry returns the permission entry for (user, folder) and whether
	// one exists. A missing entry is not an error.
	Entry(ctx context.Context, userID, folderID uuid.UUID) (PermissionEntry, bool, error)

	// AllFolders returns every folder.
	AllFolders(ctx context.Context) ([]Folder, error)

	// FoldersOwnedBy returns the folders owned by the user.
	FoldersOwnedBy(ctx context.Context, userID uuid.UUID) ([]Folder, error)

	// FoldersGrantedTo returns folders where the user has a permission
	// entry with at least one capability flag set.
	FoldersGrantedTo(ctx context.Context, userID uuid.UUID) ([]Folder, error)

	// UpsertEntry inserts or replaces the entry for (entry.UserID, entry.FolderID).
	UpsertEntry(ctx context.Context, entry PermissionEntry) error

	// DeleteEntry removes the entry for (user, folder). Deleting a missing
	// entry is not an error.
	DeleteEntry(ctx context.Context, userID, folderID uuid.UUID) error

	// EntriesForFolder lists all permission entries on a folder.
	EntriesForFolder(ctx context.Context, folderID uuid.UUID) ([]PermissionEntry, error)
}

// Resolver answers authorization questions over the folder tree.
//
// Resolution order for Can: superuser, then ownership, then the nearest
// explicit permission entry walking from the folder toward the root. An
// explicit entry always terminates the walk, even when it denies: "entry
// exists" and "entry grants access" are different things.
//
// Resolver performs only reads for Can/Accessible and is safe for
// concurrent use.
type Resolver struct {
	store  Store
	logger *slog.Logger
}

// NewResolver creates a Resolver. A nil logger falls back to slog.Default().
func NewResolver(store Store, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{store: store, logger: logger}
}

// Can reports whether the user may perform action on the folder.
//
// The parent walk is an explicit loop with a visited set. The data model
// forbids cycles, but a corrupted tree must surface as ErrCycle rather
// than loop forever or silently deny.
func (r *Resolver) Can(ctx context.Context, user User, folderID uuid.UUID, action Action) (bool, error) {
	if !action.Valid() {
		return false, fmt.Errorf("%w: %q", ErrInvalidAction, action)
	}
	if user.Superuser {
		return true, nil
	}

	visited := make(map[uuid.UUID]struct{})
	current := folderID

	for {
		if _, seen := visited[current]; seen {
			return false, fmt.Errorf("%w: folder %s", ErrCycle, current)
		}
		visited[current] = struct{}{}

		folder, err := r.store.Folder(ctx, current)
		if err != nil {
			return false, fmt.Errorf("loading folder %s: %w", current, err)
		}

		if folder.OwnerID == user.ID {
			return true, nil
		}

		entry, ok, err := r.store.Entry(ctx, user.ID, current)
		if err != nil {
			return false, fmt.Errorf("loading permission entry: %w", err)
		}
		if ok {
			// Explicit entry shadows inheritance: answer from this
			// entry even when it denies.
			return entry.allows(action), nil
		}

		if folder.ParentID == nil {
			return false, nil
		}
		current = *folder.ParentID
	}
}

// Accessible enumerates every folder the user may query: all folders for a
// superuser, otherwise the union of owned folders and folders with a
// permission entry granting at least one capability, deduplicated by ID.
// Accessible never fails on empty data.
func (r *Resolver) Accessible(ctx context.Context, user User) ([]Folder, error) {
	if user.Superuser {
		folders, err := r.store.AllFolders(ctx)
		if err != nil {
			return nil, fmt.Errorf("listing folders: %w", err)
		}
		return folders, nil
	}

	owned, err := r.store.FoldersOwnedBy(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing owned folders: %w", err)
	}
	granted, err := r.store.FoldersGrantedTo(ctx, user.ID)
	if err != nil {
		return nil, fmt.Errorf("listing granted folders: %w", err)
	}

	seen := make(map[uuid.UUID]struct{}, len(owned)+len(granted))
	result := make([]Folder, 0, len(owned)+len(granted))
	for _, f := range owned {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		result = append(result, f)
	}
	for _, f := range granted {
		if _, dup := seen[f.ID]; dup {
			continue
		}
		seen[f.ID] = struct{}{}
		result = append(result, f)
	}
	return result, nil
}

// Grant creates or replaces a permission entry on a folder. The grantor must
// be a superuser, the folder owner, or hold admin on the folder (directly or
// by inheritance).
func (r *Resolver) Grant(ctx context.Context, grantor User, entry PermissionEntry) error {
	allowed, err := r.Can(ctx, grantor, entry.FolderID, ActionAdmin)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotAuthorized
	}

	entry.GrantedBy = grantor.ID
	if err := r.store.UpsertEntry(ctx, entry); err != nil {
		return fmt.Errorf("storing permission entry: %w", err)
	}
	r.logger.Info("permission granted",
		"folder_id", entry.FolderID, "user_id", entry.UserID,
		"read", entry.Read, "write", entry.Write, "delete", entry.Delete, "admin", entry.Admin)
	return nil
}

// Revoke removes the permission entry for (user, folder). Authorization
// matches Grant. Revoking a missing entry is a no-op.
func (r *Resolver) Revoke(ctx context.Context, grantor User, userID, folderID uuid.UUID) error {
	allowed, err := r.Can(ctx, grantor, folderID, ActionAdmin)
	if err != nil {
		return err
	}
	if !allowed {
		return ErrNotAuthorized
	}

	if err := r.store.DeleteEntry(ctx, userID, folderID); err != nil {
		return fmt.Errorf("deleting permission entry: %w", err)
	}
	r.logger.Info("permission revoked", "folder_id", folderID, "user_id", userID)
	return nil
}

// Entries lists the permission entries on a folder. Authorization matches
// Grant.
func (r *Resolver) Entries(ctx context.Context, caller User, folderID uuid.UUID) ([]PermissionEntry, error) {
	allowed, err := r.Can(ctx, caller, folderID, ActionAdmin)
	if err != nil {
		return nil, err
	}
	if !allowed {
		return nil, ErrNotAuthorized
	}
	entries, err := r.store.EntriesForFolder(ctx, folderID)
	if err != nil {
		return nil, fmt.Errorf("listing permission entries: %w", err)
	}
	return entries, nil
}
