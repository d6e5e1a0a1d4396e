// Package cli provides the migration operator CLI. It is the command run by
// the container entrypoint (`migrate up`) and by operators inspecting or
// rolling back schema state.
package cli

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"org-registry/internal/organization/config"
	"org-registry/internal/shared/database"
	"org-registry/internal/shared/database/migrate"
	"org-registry/internal/shared/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

// Exit codes
const (
	ExitSuccess = 0
	ExitFailure = 1
)

// CLI holds the command-line interface state.
type CLI struct {
	rootCmd *cobra.Command
	cfg     *config.Config
	pool    *pgxpool.Pool
	runner  *migrate.Runner
	log     logger.Logger

	// Global flags
	quiet bool
}

// New creates a new CLI instance.
func New() *CLI {
	cli := &CLI{}
	cli.rootCmd = cli.newRootCmd()
	return cli
}

// Execute runs the CLI and returns the process exit code.
func (c *CLI) Execute() int {
	defer c.close()
	if err := c.rootCmd.Execute(); err != nil {
		fmt.Println("Error:", err)
		return ExitFailure
	}
	return ExitSuccess
}

func (c *CLI) newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Schema migration operator commands",
		Long: `migrate manages the organization registry database schema.

The container entrypoint runs "migrate up" before starting the server;
the remaining commands are operator tools for inspecting and rolling back
schema state.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return c.init()
		},
	}

	cmd.PersistentFlags().BoolVar(&c.quiet, "quiet", false, "suppress non-essential output")

	cmd.AddCommand(c.newUpCmd())
	cmd.AddCommand(c.newDownCmd())
	cmd.AddCommand(c.newResetCmd())
	cmd.AddCommand(c.newCurrentCmd())
	cmd.AddCommand(c.newHistoryCmd())
	cmd.AddCommand(c.newPendingCmd())
	cmd.AddCommand(c.newSQLCmd())

	return cmd
}

// init loads configuration and connects to the database. Every command
// needs both, so this runs as a persistent pre-run hook.
func (c *CLI) init() error {
	cfg, err := config.LoadConfig()
	if err != nil {
		return err
	}
	c.cfg = cfg
	c.log = logger.NewLogger()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	poolCfg := database.DefaultPoolConfig(cfg.PostgresURL())
	poolCfg.ApplicationName = "org-registry-migrate"
	pool, err := database.Connect(ctx, poolCfg, c.log)
	if err != nil {
		return fmt.Errorf("cannot reach database: %w", err)
	}
	c.pool = pool

	runner, err := migrate.NewRunner(pool, c.log)
	if err != nil {
		return err
	}
	c.runner = runner
	return nil
}

func (c *CLI) close() {
	if c.pool != nil {
		c.pool.Close()
	}
}

func (c *CLI) printf(format string, args ...interface{}) {
	if !c.quiet {
		fmt.Printf(format, args...)
	}
}

func (c *CLI) newUpCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			applied, err := c.runner.Up(cmd.Context())
			if err != nil {
				return err
			}
			if applied == 0 {
				c.printf("Schema is up to date\n")
			} else {
				c.printf("Applied %d migration(s)\n", applied)
			}
			return nil
		},
	}
}

func (c *CLI) newDownCmd() *cobra.Command {
	var steps int
	cmd := &cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration(s)",
		RunE: func(cmd *cobra.Command, args []string) error {
			reverted, err := c.runner.Down(cmd.Context(), steps)
			if err != nil {
				return err
			}
			c.printf("Reverted %d migration(s)\n", reverted)
			return nil
		},
	}
	cmd.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")
	return cmd
}

func (c *CLI) newResetCmd() *cobra.Command {
	var confirm bool
	cmd := &cobra.Command{
		Use:   "reset",
		Short: "Roll back every applied migration",
		RunE: func(cmd *cobra.Command, args []string) error {
			if !confirm {
				return fmt.Errorf("reset drops all data; re-run with --yes to confirm")
			}
			reverted, err := c.runner.Reset(cmd.Context())
			if err != nil {
				return err
			}
			c.printf("Reverted %d migration(s)\n", reverted)
			return nil
		},
	}
	cmd.Flags().BoolVar(&confirm, "yes", false, "confirm the destructive reset")
	return cmd
}

func (c *CLI) newCurrentCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "current",
		Short: "Show the currently applied schema version",
		RunE: func(cmd *cobra.Command, args []string) error {
			record, err := c.runner.Current(cmd.Context())
			if err != nil {
				return err
			}
			if record == nil {
				fmt.Println("No migrations applied")
				return nil
			}
			fmt.Printf("%04d %s (applied %s)\n", record.Version, record.Name,
				record.AppliedAt.UTC().Format(time.RFC3339))
			return nil
		},
	}
}

func (c *CLI) newHistoryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "history",
		Short: "List applied migrations oldest first",
		RunE: func(cmd *cobra.Command, args []string) error {
			records, err := c.runner.History(cmd.Context())
			if err != nil {
				return err
			}
			if len(records) == 0 {
				fmt.Println("No migrations applied")
				return nil
			}
			for _, record := range records {
				fmt.Printf("%04d %s (applied %s)\n", record.Version, record.Name,
					record.AppliedAt.UTC().Format(time.RFC3339))
			}
			return nil
		},
	}
}

func (c *CLI) newPendingCmd() *cobra.Command {
	var verbose bool
	cmd := &cobra.Command{
		Use:   "pending",
		Short: "List migrations not yet applied",
		RunE: func(cmd *cobra.Command, args []string) error {
			pending, err := c.runner.Pending(cmd.Context())
			if err != nil {
				return err
			}
			fmt.Print(formatPending(pending, verbose))
			return nil
		},
	}
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "include each migration's SQL")
	return cmd
}

// formatPending renders the pending listing; verbose mode includes each
// migration's up-SQL indented under its entry.
func formatPending(pending []migrate.Migration, verbose bool) string {
	if len(pending) == 0 {
		return "Schema is up to date\n"
	}

	var b strings.Builder
	for _, m := range pending {
		fmt.Fprintf(&b, "%04d %s\n", m.Version, m.Name)
		if verbose {
			for _, line := range strings.Split(strings.TrimRight(m.UpSQL, "\n"), "\n") {
				fmt.Fprintf(&b, "    %s\n", line)
			}
		}
	}
	return b.String()
}

func (c *CLI) newSQLCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "sql",
		Short: "Print the SQL that `up` would run, without executing it",
		RunE: func(cmd *cobra.Command, args []string) error {
			sql, err := c.runner.RenderSQL(cmd.Context())
			if err != nil {
				return err
			}
			if sql == "" {
				fmt.Println("-- Schema is up to date")
				return nil
			}
			fmt.Print(sql)
			return nil
		},
	}
}
