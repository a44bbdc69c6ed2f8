package cmd

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"portfolio/app/content"
	"portfolio/app/repositories"
	"portfolio/app/services"
)

func newDBCommand(c *cli) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "db",
		Short: "Manage the embedded post store",
	}

	var yes bool
	cmd.PersistentFlags().BoolVarP(&yes, "yes", "y", false, "do not ask for confirmation")

	cmd.AddCommand(
		&cobra.Command{
			Use:   "init",
			Short: "Initialize a new empty database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbInit(cmd)
			},
		},
		&cobra.Command{
			Use:   "clean",
			Short: "Delete the database",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbClean(cmd, yes)
			},
		},
		&cobra.Command{
			Use:   "backup [file]",
			Short: "Create a backup of the database",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				file := ""
				if len(args) == 1 {
					file = args[0]
				}
				return c.dbBackup(cmd, file)
			},
		},
		&cobra.Command{
			Use:   "restore <file>",
			Short: "Restore the database from a backup",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbRestore(cmd, args[0], yes)
			},
		},
		newImportCommand(c),
		&cobra.Command{
			Use:   "show <slug>",
			Short: "Print one stored post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbShow(cmd, args[0])
			},
		},
		&cobra.Command{
			Use:   "delete <slug>",
			Short: "Delete one stored post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbDelete(cmd, args[0], yes)
			},
		},
		&cobra.Command{
			Use:   "publish <slug>",
			Short: "Clear the draft flag of a stored post",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbSetDraft(cmd, args[0], false)
			},
		},
		&cobra.Command{
			Use:   "unpublish <slug>",
			Short: "Turn a stored post back into a draft",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbSetDraft(cmd, args[0], true)
			},
		},
		&cobra.Command{
			Use:   "list",
			Short: "List stored posts, newest first",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return c.dbList(cmd)
			},
		},
	)
	return cmd
}

func (c *cli) dbPath() string { return c.cfg.Store.Path }

func (c *cli) dbExists() bool {
	_, err := os.Stat(c.dbPath())
	return err == nil
}

// withDB opens the store for the duration of fn.
func (c *cli) withDB(fn func(db *badger.DB) error) error {
	db, err := repositories.Open(c.dbPath())
	if err != nil {
		return err
	}
	defer db.Close()
	return fn(db)
}

func (c *cli) dbInit(cmd *cobra.Command) error {
	out := cmd.OutOrStdout()
	if c.dbExists() {
		fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
		return nil
	}
	if err := c.withDB(func(*badger.DB) error { return nil }); err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	fmt.Fprintln(out, "Database initialized successfully")
	return nil
}

func (c *cli) dbClean(cmd *cobra.Command, yes bool) error {
	out := cmd.OutOrStdout()
	if !c.dbExists() {
		fmt.Fprintln(out, "Database is already clean (does not exist)")
		return nil
	}
	if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}
	if err := os.RemoveAll(c.dbPath()); err != nil {
		return fmt.Errorf("failed to clean database: %w", err)
	}
	fmt.Fprintln(out, "Database cleaned successfully")
	return nil
}

func (c *cli) dbBackup(cmd *cobra.Command, file string) error {
	if !c.dbExists() {
		return errors.New("no database exists to backup")
	}
	if file == "" {
		file = filepath.Join(filepath.Dir(c.dbPath()), "backups", fmt.Sprintf("backup_%d.db", time.Now().Unix()))
	}
	if err := os.MkdirAll(filepath.Dir(file), 0755); err != nil {
		return fmt.Errorf("failed to create backup directory: %w", err)
	}

	err := c.withDB(func(db *badger.DB) error {
		f, err := os.Create(file)
		if err != nil {
			return fmt.Errorf("failed to create backup file: %w", err)
		}
		defer f.Close()
		return repositories.Backup(db, f)
	})
	if err != nil {
		return err
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Database backed up successfully to %s\n", file)
	return nil
}

func (c *cli) dbRestore(cmd *cobra.Command, file string, yes bool) error {
	out := cmd.OutOrStdout()
	fi, err := os.Stat(file)
	if err != nil {
		return fmt.Errorf("backup file does not exist: %s", file)
	}
	if fi.Size() == 0 {
		return fmt.Errorf("backup file is empty: %s", file)
	}

	if c.dbExists() {
		if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
			fmt.Fprintln(out, "Operation cancelled")
			return nil
		}
		if err := os.RemoveAll(c.dbPath()); err != nil {
			return fmt.Errorf("failed to remove existing database: %w", err)
		}
	}

	f, err := os.Open(file)
	if err != nil {
		return fmt.Errorf("failed to open backup file: %w", err)
	}
	defer f.Close()

	if err := c.withDB(func(db *badger.DB) error { return repositories.Restore(db, f) }); err != nil {
		return err
	}
	fmt.Fprintln(out, "Database restored successfully")
	return nil
}

func newImportCommand(c *cli) *cobra.Command {
	var noOverwrite bool
	cmd := &cobra.Command{
		Use:   "import <dir>",
		Short: "Import markdown posts, drafts included, into the database",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.dbImport(cmd, args[0], noOverwrite)
		},
	}
	cmd.Flags().BoolVar(&noOverwrite, "no-overwrite", false, "keep posts that are already stored")
	return cmd
}

func (c *cli) dbImport(cmd *cobra.Command, dir string, noOverwrite bool) error {
	snap, err := content.NewFileSource(dir, c.logger).FetchPosts(cmd.Context(), true)
	if err != nil {
		return err
	}
	for _, issue := range snap.Issues {
		c.logger.Warn("import issue", zap.String("origin", issue.Origin), zap.Error(issue))
	}

	imported, kept := 0, 0
	err = c.withDB(func(db *badger.DB) error {
		repo := repositories.NewBadgerPostRepository(db)
		for _, post := range snap.Posts {
			if !noOverwrite {
				if err := repo.Save(post); err != nil {
					return fmt.Errorf("failed to save %q: %w", post.Slug, err)
				}
				imported++
				continue
			}
			err := repo.Create(post)
			switch {
			case errors.Is(err, repositories.ErrAlreadyExists):
				kept++
			case err != nil:
				return fmt.Errorf("failed to create %q: %w", post.Slug, err)
			default:
				imported++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Imported %d posts (%d skipped)\n", imported, snap.Skipped())
	if kept > 0 {
		fmt.Fprintf(out, "Kept %d existing posts\n", kept)
	}
	return nil
}

func (c *cli) dbShow(cmd *cobra.Command, slug string) error {
	if !c.dbExists() {
		return errors.New("no database exists")
	}
	return c.withDB(func(db *badger.DB) error {
		post, err := repositories.NewBadgerPostRepository(db).GetBySlug(slug)
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("post %q not found", slug)
		}
		if err != nil {
			return err
		}

		out := cmd.OutOrStdout()
		fmt.Fprintf(out, "slug:      %s\n", post.Slug)
		fmt.Fprintf(out, "title:     %s\n", post.Title)
		fmt.Fprintf(out, "published: %s\n", post.ISODate())
		fmt.Fprintf(out, "draft:     %t\n", post.Draft)
		if len(post.Tags) > 0 {
			fmt.Fprintf(out, "tags:      %s\n", strings.Join(post.Tags, ", "))
		}
		if post.Excerpt != "" {
			fmt.Fprintf(out, "excerpt:   %s\n", post.Excerpt)
		}
		fmt.Fprintf(out, "\n%s\n", post.Content)
		return nil
	})
}

func (c *cli) dbDelete(cmd *cobra.Command, slug string, yes bool) error {
	out := cmd.OutOrStdout()
	if !c.dbExists() {
		return errors.New("no database exists")
	}
	if !yes && !confirm(cmd, fmt.Sprintf("Delete post %q? This cannot be undone.", slug)) {
		fmt.Fprintln(out, "Operation cancelled")
		return nil
	}
	err := c.withDB(func(db *badger.DB) error {
		return repositories.NewBadgerPostRepository(db).Delete(slug)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("post %q not found", slug)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "Post %s deleted\n", slug)
	return nil
}

func (c *cli) dbSetDraft(cmd *cobra.Command, slug string, draft bool) error {
	if !c.dbExists() {
		return errors.New("no database exists")
	}
	err := c.withDB(func(db *badger.DB) error {
		repo := repositories.NewBadgerPostRepository(db)
		post, err := repo.GetBySlug(slug)
		if err != nil {
			return err
		}
		post.Draft = draft
		return repo.Update(post)
	})
	if errors.Is(err, repositories.ErrNotFound) {
		return fmt.Errorf("post %q not found", slug)
	}
	if err != nil {
		return err
	}
	state := "published"
	if draft {
		state = "unpublished"
	}
	fmt.Fprintf(cmd.OutOrStdout(), "Post %s %s\n", slug, state)
	return nil
}

func (c *cli) dbList(cmd *cobra.Command) error {
	if !c.dbExists() {
		return errors.New("no database exists")
	}
	return c.withDB(func(db *badger.DB) error {
		repo := repositories.NewBadgerPostRepository(db)
		posts, err := repo.List(0, 0)
		if err != nil {
			return err
		}
		total, err := repo.Count()
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		for _, post := range services.SortPosts(posts) {
			date := post.ISODate()
			if date == "" {
				date = "-"
			}
			draft := ""
			if post.Draft {
				draft = " [draft]"
			}
			fmt.Fprintf(out, "%s\t%s\t%s%s\n", date, post.Slug, post.Title, draft)
		}
		fmt.Fprintf(out, "%d posts\n", total)
		return nil
	})
}
