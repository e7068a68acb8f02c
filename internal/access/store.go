package access

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

const folderCols = `id, name, parent_id, owner_id, created_at`

const entryCols = `user_id, folder_id, can_read, can_write, can_delete, is_admin, granted_by, created_at`

// PGStore implements Store on PostgreSQL.
type PGStore struct {
	pool *pgxpool.Pool
}

// NewPGStore creates a PostgreSQL-backed permission store.
func NewPGStore(pool *pgxpool.Pool) (*PGStore, error) {
	if pool == nil {
		return nil, errors.New("pool is required")
	}
	return &PGStore{pool: pool}, nil
}

// Folder returns a folder by ID, or ErrFolderNotFound.
func (s *PGStore) Folder(ctx context.Context, id uuid.UUID) (Folder, error) {
	var f Folder
	err := s.pool.QueryRow(ctx,
		`SELECT `+folderCols+` FROM folders WHERE id = $1`, id,
	).Scan(&f.ID, &f.Name, &f.ParentID, &f.OwnerID, &f.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return Folder{}, fmt.Errorf("%w: %s", ErrFolderNotFound, id)
	}
	if err != nil {
		return Folder{}, fmt.Errorf("querying folder %s: %w", id, err)
	}
	return f, nil
}

// Entry returns the permission entry for (user, folder), if any.
func (s *PGStore) Entry(ctx context.Context, userID, folderID uuid.UUID) (PermissionEntry, bool, error) {
	var e PermissionEntry
	err := s.pool.QueryRow(ctx,
		`SELECT `+entryCols+` FROM permission_entries
		 WHERE user_id = $1 AND folder_id = $2`,
		userID, folderID,
	).Scan(&e.UserID, &e.FolderID, &e.Read, &e.Write, &e.Delete, &e.Admin, &e.GrantedBy, &e.CreatedAt)
	if errors.Is(err, pgx.ErrNoRows) {
		return PermissionEntry{}, false, nil
	}
	if err != nil {
		return PermissionEntry{}, false, fmt.Errorf("querying permission entry: %w", err)
	}
	return e, true, nil
}

// AllFolders returns every folder ordered by creation time.
func (s *PGStore) AllFolders(ctx context.Context) ([]Folder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+folderCols+` FROM folders ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("listing folders: %w", err)
	}
	defer rows.Close()
	return scanFolders(rows)
}

// FoldersOwnedBy returns folders owned by the user.
func (s *PGStore) FoldersOwnedBy(ctx context.Context, userID uuid.UUID) ([]Folder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+folderCols+` FROM folders WHERE owner_id = $1 ORDER BY created_at, id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing owned folders: %w", err)
	}
	defer rows.Close()
	return scanFolders(rows)
}

// FoldersGrantedTo returns folders where the user holds an entry with at
// least one capability flag set. Entries with all-false flags are pure
// denials and are excluded.
func (s *PGStore) FoldersGrantedTo(ctx context.Context, userID uuid.UUID) ([]Folder, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT f.id, f.name, f.parent_id, f.owner_id, f.created_at
		 FROM folders f
		 JOIN permission_entries p ON p.folder_id = f.id
		 WHERE p.user_id = $1
		   AND (p.can_read OR p.can_write OR p.can_delete OR p.is_admin)
		 ORDER BY f.created_at, f.id`,
		userID)
	if err != nil {
		return nil, fmt.Errorf("listing granted folders: %w", err)
	}
	defer rows.Close()
	return scanFolders(rows)
}

// UpsertEntry inserts or replaces the entry for (entry.UserID, entry.FolderID).
func (s *PGStore) UpsertEntry(ctx context.Context, e PermissionEntry) error {
	_, err := s.pool.Exec(ctx,
		`INSERT INTO permission_entries
		   (user_id, folder_id, can_read, can_write, can_delete, is_admin, granted_by)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (user_id, folder_id) DO UPDATE SET
		   can_read = EXCLUDED.can_read,
		   can_write = EXCLUDED.can_write,
		   can_delete = EXCLUDED.can_delete,
		   is_admin = EXCLUDED.is_admin,
		   granted_by = EXCLUDED.granted_by`,
		e.UserID, e.FolderID, e.Read, e.Write, e.Delete, e.Admin, e.GrantedBy)
	if err != nil {
		return fmt.Errorf("upserting permission entry: %w", err)
	}
	return nil
}

// DeleteEntry removes the entry for (user, folder). Missing entries are a
// no-op.
func (s *PGStore) DeleteEntry(ctx context.Context, userID, folderID uuid.UUID) error {
	_, err := s.pool.Exec(ctx,
		`DELETE FROM permission_entries WHERE user_id = $1 AND folder_id = $2`,
		userID, folderID)
	if err != nil {
		return fmt.Errorf("deleting permission entry: %w", err)
	}
	return nil
}

// EntriesForFolder lists all permission entries on a folder.
func (s *PGStore) EntriesForFolder(ctx context.Context, folderID uuid.UUID) ([]PermissionEntry, error) {
	rows, err := s.pool.Query(ctx,
		`SELECT `+entryCols+` FROM permission_entries
		 WHERE folder_id = $1 ORDER BY created_at, user_id`,
		folderID)
	if err != nil {
		return nil, fmt.Errorf("listing permission entries: %w", err)
	}
	defer rows.Close()

	var entries []PermissionEntry
	for rows.Next() {
		var e PermissionEntry
		if err := rows.Scan(&e.UserID, &e.FolderID, &e.Read, &e.Write, &e.Delete, &e.Admin, &e.GrantedBy, &e.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning permission entry: %w", err)
		}
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating permission entries: %w", err)
	}
	return entries, nil
}

// UserByName returns a user by username, or ErrUserNotFound.
func (s *PGStore) UserByName(ctx context.Context, username string) (User, error) {
	var u User
	err := s.pool.QueryRow(ctx,
		`SELECT id, is_superuser FROM users WHERE username = $1`, username,
	).Scan(&u.ID, &u.Superuser)
	if errors.Is(err, pgx.ErrNoRows) {
		return User{}, fmt.Errorf("%w: %q", ErrUserNotFound, username)
	}
	if err != nil {
		return User{}, fmt.Errorf("querying user %q: %w", username, err)
	}
	return u, nil
}

// CreateUser inserts a user and returns the generated identity.
func (s *PGStore) CreateUser(ctx context.Context, username string, superuser bool) (User, error) {
	var u User
	u.Superuser = superuser
	err := s.pool.QueryRow(ctx,
		`INSERT INTO users (username, is_superuser) VALUES ($1, $2) RETURNING id`,
		username, superuser,
	).Scan(&u.ID)
	if err != nil {
		return User{}, fmt.Errorf("creating user %q: %w", username, err)
	}
	return u, nil
}

// CreateFolder inserts a folder and returns it with generated fields set.
func (s *PGStore) CreateFolder(ctx context.Context, name string, parentID *uuid.UUID, ownerID uuid.UUID) (Folder, error) {
	var f Folder
	err := s.pool.QueryRow(ctx,
		`INSERT INTO folders (name, parent_id, owner_id)
		 VALUES ($1, $2, $3)
		 RETURNING `+folderCols,
		name, parentID, ownerID,
	).Scan(&f.ID, &f.Name, &f.ParentID, &f.OwnerID, &f.CreatedAt)
	if err != nil {
		return Folder{}, fmt.Errorf("creating folder %q: %w", name, err)
	}
	return f, nil
}

func scanFolders(rows pgx.Rows) ([]Folder, error) {
	var folders []Folder
	for rows.Next() {
		var f Folder
		if err := rows.Scan(&f.ID, &f.Name, &f.ParentID, &f.OwnerID, &f.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning folder: %w", err)
		}
		folders = append(folders, f)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating folders: %w", err)
	}
	return folders, nil
}

var _ Store = (*PGStore)(nil)
