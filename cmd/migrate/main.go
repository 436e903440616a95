package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strconv"

	"github.com/erp/pos/internal/infrastructure/config"
	"github.com/erp/pos/internal/infrastructure/logger"
	"github.com/erp/pos/internal/infrastructure/migration"
	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

type rootOptions struct {
	logLevel string
	dir      string
	log      *zap.Logger
	cfg      *config.Config
}

func main() {
	if err := newRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func newRootCommand() *cobra.Command {
	opts := &rootOptions{}
	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the back-office database schema",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log, err := logger.New(config.LogConfig{Level: opts.logLevel, Format: "console", Output: "stdout"})
			if err != nil {
				return err
			}
			opts.log = log
			if cmd.Annotations["offline"] == "true" {
				return nil
			}
			cfg, err := config.Load()
			if err != nil {
				return fmt.Errorf("load config: %w", err)
			}
			opts.cfg = cfg
			return nil
		},
		PersistentPostRun: func(*cobra.Command, []string) {
			if opts.log != nil {
				_ = opts.log.Sync()
			}
		},
	}
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level (debug, info, warn, error)")

	root.AddCommand(
		newDBCommand(opts, "up", "Apply all pending migrations", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Up()
		}),
		newDBCommand(opts, "down", "Roll back every migration", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			return m.Down()
		}),
		newDBCommand(opts, "steps <n>", "Apply n migrations (negative rolls back)", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid step count %q", args[0])
			}
			return m.Steps(n)
		}),
		newDBCommand(opts, "goto <version>", "Migrate to a specific version", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.ParseUint(args[0], 10, 32)
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.GoTo(uint(v))
		}),
		newDBCommand(opts, "force <version>", "Mark a version as applied without running it", cobra.ExactArgs(1), func(m *migration.Migrator, args []string) error {
			v, err := strconv.Atoi(args[0])
			if err != nil {
				return fmt.Errorf("invalid version %q", args[0])
			}
			return m.Force(v)
		}),
		newDBCommand(opts, "version", "Print the applied version", cobra.NoArgs, func(m *migration.Migrator, _ []string) error {
			v, dirty, err := m.Version()
			if err != nil {
				return err
			}
			fmt.Printf("version %d (dirty: %t)\n", v, dirty)
			return nil
		}),
		newCreateCommand(opts),
		newListCommand(opts),
	)
	return root
}

// newDBCommand builds a subcommand that runs fn against the configured database
func newDBCommand(opts *rootOptions, use, short string, args cobra.PositionalArgs, fn func(*migration.Migrator, []string) error) *cobra.Command {
	return &cobra.Command{
		Use:   use,
		Short: short,
		Args:  args,
		RunE: func(cmd *cobra.Command, args []string) error {
			opts.log.Info("running migration command",
				zap.String("command", cmd.Name()),
				zap.String("driver", opts.cfg.Database.Driver),
			)
			m, err := migration.Open(&opts.cfg.Database, opts.log)
			if err != nil {
				return err
			}
			runErr := fn(m, args)
			closeErr := m.Close()
			return errors.Join(runErr, closeErr)
		},
	}
}

func newCreateCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "create <name> [description]",
		Short:       "Create an empty migration pair for every driver",
		Args:        cobra.RangeArgs(1, 2),
		Annotations: map[string]string{"offline": "true"},
		RunE: func(_ *cobra.Command, args []string) error {
			description := ""
			if len(args) > 1 {
				description = args[1]
			}
			files, err := migration.CreateMigration(opts.dir, args[0], description)
			if err != nil {
				return err
			}
			for _, f := range files {
				opts.log.Info("migration created",
					zap.String("driver", f.Driver),
					zap.String("up", f.UpPath),
					zap.String("down", f.DownPath),
				)
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "migrations", "root directory holding the per-driver migration folders")
	return cmd
}

func newListCommand(opts *rootOptions) *cobra.Command {
	cmd := &cobra.Command{
		Use:         "list",
		Short:       "List migrations found on disk",
		Args:        cobra.NoArgs,
		Annotations: map[string]string{"offline": "true"},
		RunE: func(*cobra.Command, []string) error {
			for _, driver := range migration.Drivers {
				names, err := migration.ListMigrations(filepath.Join(opts.dir, driver))
				if err != nil {
					return err
				}
				fmt.Printf("%s:\n", driver)
				for _, n := range names {
					fmt.Println("  -", n)
				}
			}
			return nil
		},
	}
	cmd.Flags().StringVar(&opts.dir, "dir", "migrations", "root directory holding the per-driver migration folders")
	return cmd
}
