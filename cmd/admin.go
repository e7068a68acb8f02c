package cmd

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/radexhq/radex/internal/access"
)

// Admin commands manage users, folders, and permission entries. They go
// through the resolver, so grant/revoke require admin capability on the
// target folder.

var adminCmd = &cobra.Command{
	Use:   "admin",
	Short: "Manage users, folders, and permissions",
}

var (
	createUserSuperuser bool

	createUserCmd = &cobra.Command{
		Use:   "create-user [username]",
		Short: "Create a user",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := access.NewPGStore(a.DBPool)
			if err != nil {
				return err
			}
			user, err := store.CreateUser(ctx, args[0], createUserSuperuser)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created user %s (%s)\n", args[0], user.ID)
			return nil
		},
	}
)

var (
	createFolderOwner  string
	createFolderParent string

	createFolderCmd = &cobra.Command{
		Use:   "create-folder [name]",
		Short: "Create a folder",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			store, err := access.NewPGStore(a.DBPool)
			if err != nil {
				return err
			}
			owner, err := store.UserByName(ctx, createFolderOwner)
			if err != nil {
				return err
			}

			var parentID *uuid.UUID
			if createFolderParent != "" {
				id, err := uuid.Parse(createFolderParent)
				if err != nil {
					return fmt.Errorf("parsing --parent: %w", err)
				}
				parentID = &id
			}

			folder, err := store.CreateFolder(ctx, args[0], parentID, owner.ID)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created folder %s (%s)\n", folder.Name, folder.ID)
			return nil
		},
	}
)

var (
	grantUser   string
	grantFolder string
	grantAs     string
	grantRead   bool
	grantWrite  bool
	grantDelete bool
	grantAdmin  bool

	grantCmd = &cobra.Command{
		Use:   "grant",
		Short: "Create or replace a permission entry on a folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			grantor, err := resolveUser(ctx, a, grantAs)
			if err != nil {
				return err
			}
			target, err := resolveUser(ctx, a, grantUser)
			if err != nil {
				return err
			}
			folderID, err := uuid.Parse(grantFolder)
			if err != nil {
				return fmt.Errorf("parsing --folder: %w", err)
			}

			err = a.Access.Grant(ctx, grantor, access.PermissionEntry{
				UserID:   target.ID,
				FolderID: folderID,
				Read:     grantRead,
				Write:    grantWrite,
				Delete:   grantDelete,
				Admin:    grantAdmin,
			})
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "granted %s on folder %s\n", grantUser, grantFolder)
			return nil
		},
	}
)

var (
	revokeUser   string
	revokeFolder string
	revokeAs     string

	revokeCmd = &cobra.Command{
		Use:   "revoke",
		Short: "Remove a permission entry from a folder",
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			a, cleanup, err := setupApp(ctx)
			if err != nil {
				return err
			}
			defer cleanup()

			grantor, err := resolveUser(ctx, a, revokeAs)
			if err != nil {
				return err
			}
			target, err := resolveUser(ctx, a, revokeUser)
			if err != nil {
				return err
			}
			folderID, err := uuid.Parse(revokeFolder)
			if err != nil {
				return fmt.Errorf("parsing --folder: %w", err)
			}

			if err := a.Access.Revoke(ctx, grantor, target.ID, folderID); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "revoked %s on folder %s\n", revokeUser, revokeFolder)
			return nil
		},
	}
)

func init() {
	createUserCmd.Flags().BoolVar(&createUserSuperuser, "superuser", false, "create as superuser")

	createFolderCmd.Flags().StringVar(&createFolderOwner, "owner", "", "owner username (required)")
	createFolderCmd.Flags().StringVar(&createFolderParent, "parent", "", "parent folder ID")
	_ = createFolderCmd.MarkFlagRequired("owner")

	grantCmd.Flags().StringVar(&grantUser, "user", "", "target username (required)")
	grantCmd.Flags().StringVar(&grantFolder, "folder", "", "folder ID (required)")
	grantCmd.Flags().StringVar(&grantAs, "as", "", "grantor username (required)")
	grantCmd.Flags().BoolVar(&grantRead, "read", false, "grant read")
	grantCmd.Flags().BoolVar(&grantWrite, "write", false, "grant write")
	grantCmd.Flags().BoolVar(&grantDelete, "delete", false, "grant delete")
	grantCmd.Flags().BoolVar(&grantAdmin, "admin", false, "grant admin")
	_ = grantCmd.MarkFlagRequired("user")
	_ = grantCmd.MarkFlagRequired("folder")
	_ = grantCmd.MarkFlagRequired("as")

	revokeCmd.Flags().StringVar(&revokeUser, "user", "", "target username (required)")
	revokeCmd.Flags().StringVar(&revokeFolder, "folder", "", "folder ID (required)")
	revokeCmd.Flags().StringVar(&revokeAs, "as", "", "revoker username (required)")
	_ = revokeCmd.MarkFlagRequired("user")
	_ = revokeCmd.MarkFlagRequired("folder")
	_ = revokeCmd.MarkFlagRequired("as")

	adminCmd.AddCommand(createUserCmd, createFolderCmd, grantCmd, revokeCmd)
	rootCmd.AddCommand(adminCmd)
}
