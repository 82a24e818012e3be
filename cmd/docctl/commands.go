package main

import (
	"errors"
	"fmt"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/abduss/docstore/internal/auth"
	"github.com/abduss/docstore/internal/document"
	"github.com/abduss/docstore/internal/folder"
	"github.com/abduss/docstore/internal/keyspace"
	"github.com/abduss/docstore/internal/objectstore"
	"github.com/abduss/docstore/internal/storeerr"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newBackupCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "backup <owner-id>",
		Short: "Copy an owner's documents to a timestamped backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.folderService(cmd)
			if err != nil {
				return err
			}
			backup, err := svc.BackupFolder(cmd.Context(), args[0])
			printBackup(cmd, backup)
			if err != nil {
				return failure(err)
			}
			return nil
		},
	}
}

func newPurgeCmd(app *cliApp) *cobra.Command {
	var skipBackup bool

	cmd := &cobra.Command{
		Use:   "purge <owner-id>",
		Short: "Back up and then delete an owner's documents",
		Long: `Back up and then delete every document under an owner's folder.

The folder is only deleted once its backup completed. With --skip-backup the
folder is deleted without a backup; the documents cannot be recovered.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := app.folderService(cmd)
			if err != nil {
				return err
			}

			if skipBackup {
				purge, err := svc.DeleteFolder(cmd.Context(), args[0])
				printPurge(cmd, purge)
				if err != nil {
					return failure(err)
				}
				return nil
			}

			backup, purge, err := folder.BackupThenDelete(cmd.Context(), svc, args[0])
			printBackup(cmd, backup)
			if !errors.Is(err, folder.ErrBackupIncomplete) {
				printPurge(cmd, purge)
			}
			if err != nil {
				return failure(err)
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&skipBackup, "skip-backup", false, "delete without backing up first")
	return cmd
}

func newLsCmd(app *cliApp) *cobra.Command {
	var (
		backups bool
		limit   int
		from    string
	)

	cmd := &cobra.Command{
		Use:   "ls [owner-id]",
		Short: "List an owner's documents, or backup copies",
		Args: func(cmd *cobra.Command, args []string) error {
			if backups {
				return cobra.MaximumNArgs(1)(cmd, args)
			}
			return cobra.ExactArgs(1)(cmd, args)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := app.store(cmd.Context())
			if err != nil {
				return err
			}

			owner := ""
			if len(args) == 1 {
				if err := keyspace.ValidateSegment("owner id", args[0]); err != nil {
					return err
				}
				owner = args[0]
			}

			category := app.cfg.Documents.Category
			prefix := keyspace.OwnerPrefix(category, owner)
			if backups {
				prefix = keyspace.CategoryBackups(category)
			}

			size := app.cfg.Documents.ListPageSize
			if limit > 0 {
				size = limit
			}
			pager := objectstore.ResumePager(gw, prefix, from, size)

			var keys []string
			for pager.HasMorePages() {
				page, err := pager.NextPage(cmd.Context())
				if err != nil {
					return fmt.Errorf("list %s: %w", prefix, err)
				}
				keys = append(keys, page...)
				if limit > 0 {
					break
				}
			}
			if backups && owner != "" {
				keys = backupsOf(keys, prefix, owner)
			}

			w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
			_, _ = fmt.Fprintln(w, "KEY")
			for _, key := range keys {
				_, _ = fmt.Fprintln(w, key)
			}
			_ = w.Flush()
			if pager.HasMorePages() {
				_, _ = fmt.Fprintf(cmd.OutOrStdout(), "next: %s\n", pager.Token())
			}
			return nil
		},
	}
	cmd.Flags().BoolVar(&backups, "backups", false, "list backup copies for the category")
	cmd.Flags().IntVar(&limit, "limit", 0, "print a single page of at most this many keys")
	cmd.Flags().StringVar(&from, "from", "", "continue a listing from the token printed by --limit")
	return cmd
}

func newPresignCmd(app *cliApp) *cobra.Command {
	var ttl time.Duration

	cmd := &cobra.Command{
		Use:   "presign <key>",
		Short: "Print a time-limited download URL for a stored document",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			gw, err := app.store(cmd.Context())
			if err != nil {
				return err
			}
			svc := document.NewService(gw, app.cfg.Documents, app.logger)
			url, err := svc.Presign(cmd.Context(), args[0], ttl)
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), url)
			return nil
		},
	}
	cmd.Flags().DurationVar(&ttl, "ttl", 0, "link lifetime (default DOCSTORE_PRESIGN_TTL)")
	return cmd
}

func newTokenCmd(app *cliApp) *cobra.Command {
	return &cobra.Command{
		Use:   "token <service>",
		Short: "Issue a service token for a record service",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			svc, err := auth.NewService(app.cfg.Auth)
			if err != nil {
				return err
			}
			token, expiresAt, err := svc.IssueToken(args[0])
			if err != nil {
				return err
			}
			_, _ = fmt.Fprintln(cmd.OutOrStdout(), token)
			app.logger.Info("issued service token",
				zap.String("service", args[0]),
				zap.Time("expires_at", expiresAt))
			return nil
		},
	}
}

// backupsOf keeps keys laid out as <prefix><timestamp>/<owner>/...
func backupsOf(keys []string, prefix, owner string) []string {
	var out []string
	for _, key := range keys {
		parts := strings.SplitN(strings.TrimPrefix(key, prefix), "/", 3)
		if len(parts) == 3 && parts[1] == owner {
			out = append(out, key)
		}
	}
	return out
}

func (a *cliApp) folderService(cmd *cobra.Command) (*folder.Service, error) {
	gw, err := a.store(cmd.Context())
	if err != nil {
		return nil, err
	}
	return folder.NewService(gw, a.cfg.Documents, a.logger), nil
}

func printBackup(cmd *cobra.Command, backup folder.Backup) {
	if backup.DestPrefix == "" {
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "backup %s -> %s: %d objects\n",
		backup.SourcePrefix, backup.DestPrefix, len(backup.CopiedKeys))
}

func printPurge(cmd *cobra.Command, purge folder.Purge) {
	if purge.Prefix == "" {
		return
	}
	_, _ = fmt.Fprintf(cmd.OutOrStdout(), "deleted %s: %d objects\n", purge.Prefix, len(purge.DeletedKeys))
}

// failure names the key a workflow stopped on.
func failure(err error) error {
	if key := storeerr.FailedKey(err); key != "" {
		return fmt.Errorf("stopped at %s: %w", key, err)
	}
	return err
}
