// Package migrate applies the embedded schema migrations and exposes the
// migration state used by the operator CLI: history, current revision,
// pending migrations and an offline SQL preview.
package migrate

import (
	"context"
	"fmt"
	"io/fs"
	"sort"
	"strconv"
	"strings"
	"time"

	"org-registry/internal/shared/database"
	"org-registry/internal/shared/logger"
)

// Migration is a single versioned schema change with its rollback.
type Migration struct {
	Version int
	Name    string
	UpSQL   string
	DownSQL string
}

// Record is an applied migration as stored in the version table.
type Record struct {
	Version   int
	Name      string
	AppliedAt time.Time
}

const versionTable = `
CREATE TABLE IF NOT EXISTS schema_migrations (
    version INT PRIMARY KEY,
    name TEXT NOT NULL,
    applied_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
)`

// Runner applies and rolls back migrations against a Postgres database.
// Each migration runs in its own transaction together with its version
// record, so a failed statement leaves the history consistent.
type Runner struct {
	db         database.DB
	migrations []Migration
	logger     logger.Logger
}

// NewRunner creates a runner over the embedded migrations.
func NewRunner(db database.DB, log logger.Logger) (*Runner, error) {
	migrations, err := Load()
	if err != nil {
		return nil, err
	}
	return NewRunnerWithMigrations(db, migrations, log), nil
}

// NewRunnerWithMigrations creates a runner with an explicit migration set.
func NewRunnerWithMigrations(db database.DB, migrations []Migration, log logger.Logger) *Runner {
	return &Runner{
		db:         db,
		migrations: migrations,
		logger:     log.WithComponent("migrate"),
	}
}

// Load parses the embedded migration files into an ordered migration set.
func Load() ([]Migration, error) {
	return loadFrom(migrationFS)
}

func loadFrom(fsys fs.FS) ([]Migration, error) {
	entries, err := fs.ReadDir(fsys, "migrations")
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %w", err)
	}

	byVersion := make(map[int]*Migration)
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		version, name, up, err := parseFilename(entry.Name())
		if err != nil {
			return nil, err
		}

		content, err := fs.ReadFile(fsys, "migrations/"+entry.Name())
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %w", entry.Name(), err)
		}

		m, ok := byVersion[version]
		if !ok {
			m = &Migration{Version: version, Name: name}
			byVersion[version] = m
		}
		if m.Name != name {
			return nil, fmt.Errorf("migration %04d has conflicting names %q and %q", version, m.Name, name)
		}
		if up {
			m.UpSQL = string(content)
		} else {
			m.DownSQL = string(content)
		}
	}

	migrations := make([]Migration, 0, len(byVersion))
	for _, m := range byVersion {
		if m.UpSQL == "" {
			return nil, fmt.Errorf("migration %04d_%s is missing its up script", m.Version, m.Name)
		}
		if m.DownSQL == "" {
			return nil, fmt.Errorf("migration %04d_%s is missing its down script", m.Version, m.Name)
		}
		migrations = append(migrations, *m)
	}
	sort.Slice(migrations, func(i, j int) bool { return migrations[i].Version < migrations[j].Version })

	for i, m := range migrations {
		if m.Version != i+1 {
			return nil, fmt.Errorf("migration versions are not contiguous: expected %04d, found %04d", i+1, m.Version)
		}
	}
	return migrations, nil
}

// parseFilename splits NNNN_name.up.sql / NNNN_name.down.sql.
func parseFilename(filename string) (version int, name string, up bool, err error) {
	base := filename
	switch {
	case strings.HasSuffix(base, ".up.sql"):
		up = true
		base = strings.TrimSuffix(base, ".up.sql")
	case strings.HasSuffix(base, ".down.sql"):
		base = strings.TrimSuffix(base, ".down.sql")
	default:
		return 0, "", false, fmt.Errorf("unexpected migration filename: %s", filename)
	}

	parts := strings.SplitN(base, "_", 2)
	if len(parts) != 2 || parts[1] == "" {
		return 0, "", false, fmt.Errorf("unexpected migration filename: %s", filename)
	}
	version, err = strconv.Atoi(parts[0])
	if err != nil || version <= 0 {
		return 0, "", false, fmt.Errorf("invalid migration version in filename: %s", filename)
	}
	return version, parts[1], up, nil
}

// Up applies all pending migrations and returns how many were applied.
// Running Up against an up-to-date database is a no-op.
func (r *Runner) Up(ctx context.Context) (int, error) {
	pendingMigrations, err := r.Pending(ctx)
	if err != nil {
		return 0, err
	}

	applied := 0
	for _, m := range pendingMigrations {
		if err := r.applyUp(ctx, m); err != nil {
			return applied, err
		}
		r.logger.Infof("Applied migration %04d_%s", m.Version, m.Name)
		applied++
	}
	return applied, nil
}

// Down rolls back up to steps migrations, newest first, and returns how many
// were rolled back. Rolling back past base is a no-op.
func (r *Runner) Down(ctx context.Context, steps int) (int, error) {
	history, err := r.History(ctx)
	if err != nil {
		return 0, err
	}
	if _, err := pendingOf(r.migrations, history); err != nil {
		return 0, err
	}

	rolledBack := 0
	for i := len(history) - 1; i >= 0 && rolledBack < steps; i-- {
		m := r.migrations[history[i].Version-1]
		if err := r.applyDown(ctx, m); err != nil {
			return rolledBack, err
		}
		r.logger.Infof("Rolled back migration %04d_%s", m.Version, m.Name)
		rolledBack++
	}
	return rolledBack, nil
}

// Reset rolls back every applied migration, returning the database to base.
func (r *Runner) Reset(ctx context.Context) (int, error) {
	history, err := r.History(ctx)
	if err != nil {
		return 0, err
	}
	return r.Down(ctx, len(history))
}

// Current returns the latest applied migration record, or nil at base.
func (r *Runner) Current(ctx context.Context) (*Record, error) {
	history, err := r.History(ctx)
	if err != nil {
		return nil, err
	}
	if len(history) == 0 {
		return nil, nil
	}
	latest := history[len(history)-1]
	return &latest, nil
}

// History returns applied migrations ordered oldest first.
func (r *Runner) History(ctx context.Context) ([]Record, error) {
	if err := r.ensureVersionTable(ctx); err != nil {
		return nil, err
	}

	rows, err := r.db.Query(ctx, "SELECT version, name, applied_at FROM schema_migrations ORDER BY version")
	if err != nil {
		return nil, fmt.Errorf("failed to read migration history: %w", err)
	}
	defer rows.Close()

	var history []Record
	for rows.Next() {
		var rec Record
		if err := rows.Scan(&rec.Version, &rec.Name, &rec.AppliedAt); err != nil {
			return nil, fmt.Errorf("failed to scan migration record: %w", err)
		}
		history = append(history, rec)
	}
	return history, rows.Err()
}

// Pending returns migrations that exist on disk but are not yet applied.
func (r *Runner) Pending(ctx context.Context) ([]Migration, error) {
	history, err := r.History(ctx)
	if err != nil {
		return nil, err
	}
	return pendingOf(r.migrations, history)
}

// RenderSQL returns the up-SQL of pending migrations without applying it.
func (r *Runner) RenderSQL(ctx context.Context) (string, error) {
	pendingMigrations, err := r.Pending(ctx)
	if err != nil {
		return "", err
	}

	var b strings.Builder
	for _, m := range pendingMigrations {
		fmt.Fprintf(&b, "-- %04d_%s\n", m.Version, m.Name)
		b.WriteString(strings.TrimRight(m.UpSQL, "\n"))
		b.WriteString("\n\n")
	}
	return b.String(), nil
}

// pendingOf computes the unapplied migrations. Applied versions missing from
// the migration set mean the database history diverged from this binary and
// are reported as an error rather than silently skipped.
func pendingOf(migrations []Migration, applied []Record) ([]Migration, error) {
	appliedSet := make(map[int]bool, len(applied))
	for _, rec := range applied {
		if rec.Version < 1 || rec.Version > len(migrations) {
			return nil, fmt.Errorf("applied migration %04d_%s is unknown to this binary", rec.Version, rec.Name)
		}
		appliedSet[rec.Version] = true
	}

	var pendingMigrations []Migration
	for _, m := range migrations {
		if !appliedSet[m.Version] {
			pendingMigrations = append(pendingMigrations, m)
		}
	}
	return pendingMigrations, nil
}

func (r *Runner) ensureVersionTable(ctx context.Context) error {
	if _, err := r.db.Exec(ctx, versionTable); err != nil {
		return fmt.Errorf("failed to ensure schema_migrations table: %w", err)
	}
	return nil
}

func (r *Runner) applyUp(ctx context.Context, m Migration) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %04d_%s: %w", m.Version, m.Name, err)
	}
	// Rollback after a successful commit is a no-op.
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.UpSQL); err != nil {
		return fmt.Errorf("migration %04d_%s failed: %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec(ctx,
		"INSERT INTO schema_migrations (version, name) VALUES ($1, $2)",
		m.Version, m.Name); err != nil {
		return fmt.Errorf("failed to record migration %04d_%s: %w", m.Version, m.Name, err)
	}
	return tx.Commit(ctx)
}

func (r *Runner) applyDown(ctx context.Context, m Migration) error {
	tx, err := r.db.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction for %04d_%s: %w", m.Version, m.Name, err)
	}
	defer tx.Rollback(ctx)

	if _, err := tx.Exec(ctx, m.DownSQL); err != nil {
		return fmt.Errorf("rollback of %04d_%s failed: %w", m.Version, m.Name, err)
	}
	if _, err := tx.Exec(ctx,
		"DELETE FROM schema_migrations WHERE version = $1", m.Version); err != nil {
		return fmt.Errorf("failed to delete migration record %04d_%s: %w", m.Version, m.Name, err)
	}
	return tx.Commit(ctx)
}
