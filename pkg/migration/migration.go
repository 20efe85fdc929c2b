// Package migration applies versioned SQL files to QuestDB and records them in
// a schema_migrations table.
package migration

import (
	"context"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"
	"time"

	"github.com/muhammadchandra19/exchange-simulator/pkg/errors"
	"github.com/muhammadchandra19/exchange-simulator/pkg/logger"
	"github.com/muhammadchandra19/exchange-simulator/pkg/questdb"
)

// Migration represents a database migration
type Migration struct {
	ID        string
	Name      string
	Timestamp time.Time
	UpSQL     string
	DownSQL   string
}

// Runner handles migration execution
type Runner struct {
	client questdb.QuestDBClient
	fsys   fs.FS
	logger *logger.Logger
}

// NewRunner creates a new migration runner reading `*.up.sql` / `*.down.sql`
// pairs from the root of fsys.
func NewRunner(client questdb.QuestDBClient, fsys fs.FS, log *logger.Logger) *Runner {
	return &Runner{
		client: client,
		fsys:   fsys,
		logger: log,
	}
}

const createMigrationTableSQL = `CREATE TABLE IF NOT EXISTS schema_migrations (
	id STRING,
	name STRING,
	applied_at TIMESTAMP
) TIMESTAMP(applied_at) PARTITION BY DAY;`

// EnsureMigrationTable creates the schema_migrations table if it doesn't exist
func (r *Runner) EnsureMigrationTable(ctx context.Context) error {
	return r.client.Exec(ctx, createMigrationTableSQL)
}

// GetAppliedMigrations returns a map of applied migration IDs
func (r *Runner) GetAppliedMigrations(ctx context.Context) (map[string]bool, error) {
	applied := make(map[string]bool)

	rows, err := r.client.Query(ctx, "SELECT id FROM schema_migrations")
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		applied[id] = true
	}

	return applied, rows.Err()
}

// LoadMigrations loads all migrations sorted by id.
func (r *Runner) LoadMigrations() ([]Migration, error) {
	upFiles, err := fs.Glob(r.fsys, "*.up.sql")
	if err != nil {
		return nil, err
	}

	sort.Strings(upFiles)

	migrations := make([]Migration, 0, len(upFiles))
	for _, upFile := range upFiles {
		migration, err := r.parseMigrationFiles(upFile)
		if err != nil {
			return nil, fmt.Errorf("failed to parse migration %s: %w", upFile, err)
		}
		migrations = append(migrations, migration)
	}

	return migrations, nil
}

// parseMigrationFiles parses UP and DOWN migration files
func (r *Runner) parseMigrationFiles(upFilePath string) (Migration, error) {
	upContent, err := fs.ReadFile(r.fsys, upFilePath)
	if err != nil {
		return Migration{}, err
	}

	id := strings.TrimSuffix(path.Base(upFilePath), ".up.sql")
	downFilePath := strings.TrimSuffix(upFilePath, ".up.sql") + ".down.sql"

	// file names look like YYYYMMDDHHMMSS_name
	name := id
	timestamp := time.Unix(0, 0).UTC()
	if parts := strings.SplitN(id, "_", 2); len(parts) == 2 {
		name = parts[1]
		if ts, err := time.Parse("20060102150405", parts[0]); err == nil {
			timestamp = ts
		}
	}

	var downSQL string
	if downContent, err := fs.ReadFile(r.fsys, downFilePath); err == nil {
		downSQL = strings.TrimSpace(string(downContent))
	}

	return Migration{
		ID:        id,
		Name:      name,
		Timestamp: timestamp,
		UpSQL:     strings.TrimSpace(string(upContent)),
		DownSQL:   downSQL,
	}, nil
}

// MigrateUp applies pending migrations. steps <= 0 applies all of them.
func (r *Runner) MigrateUp(ctx context.Context, steps int) ([]string, error) {
	if err := r.EnsureMigrationTable(ctx); err != nil {
		return nil, errors.NewTracer("failed to ensure migration table").Wrap(err)
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := r.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	var toApply []Migration
	for _, migration := range migrations {
		if !applied[migration.ID] {
			toApply = append(toApply, migration)
		}
	}

	if steps > 0 && len(toApply) > steps {
		toApply = toApply[:steps]
	}

	var done []string
	for _, migration := range toApply {
		if migration.UpSQL == "" {
			r.logger.Warn("migration has no up statement", logger.NewField("id", migration.ID))
			continue
		}

		for _, stmt := range splitStatements(migration.UpSQL) {
			if err := r.client.Exec(ctx, stmt); err != nil {
				return done, errors.NewTracer(fmt.Sprintf("failed to apply migration %s", migration.ID)).Wrap(err)
			}
		}

		if err := r.client.Exec(ctx,
			"INSERT INTO schema_migrations VALUES ($1, $2, now())",
			migration.ID, migration.Name,
		); err != nil {
			return done, errors.NewTracer(fmt.Sprintf("failed to record migration %s", migration.ID)).Wrap(err)
		}

		r.logger.Info("applied migration", logger.NewField("id", migration.ID))
		done = append(done, migration.ID)
	}

	return done, nil
}

// MigrateDown reverts the last steps applied migrations.
func (r *Runner) MigrateDown(ctx context.Context, steps int) ([]string, error) {
	if steps <= 0 {
		return nil, fmt.Errorf("steps must be greater than 0 for down migrations")
	}

	migrations, err := r.LoadMigrations()
	if err != nil {
		return nil, err
	}

	applied, err := r.GetAppliedMigrations(ctx)
	if err != nil {
		return nil, err
	}

	var toRevert []Migration
	for i := len(migrations) - 1; i >= 0 && len(toRevert) < steps; i-- {
		if applied[migrations[i].ID] {
			toRevert = append(toRevert, migrations[i])
		}
	}

	var done []string
	for _, migration := range toRevert {
		if migration.DownSQL == "" {
			return done, fmt.Errorf("no DOWN SQL found for migration %s - cannot revert", migration.ID)
		}

		for _, stmt := range splitStatements(migration.DownSQL) {
			if err := r.client.Exec(ctx, stmt); err != nil {
				return done, errors.NewTracer(fmt.Sprintf("failed to revert migration %s", migration.ID)).Wrap(err)
			}
		}

		// QuestDB has no row DELETE; rewrite the table without the reverted id.
		if err := r.forget(ctx, migration.ID); err != nil {
			return done, errors.NewTracer(fmt.Sprintf("failed to remove migration record %s", migration.ID)).Wrap(err)
		}

		r.logger.Info("reverted migration", logger.NewField("id", migration.ID))
		done = append(done, migration.ID)
	}

	return done, nil
}

func (r *Runner) forget(ctx context.Context, id string) error {
	stmts := []string{
		"CREATE TABLE schema_migrations_tmp AS (SELECT * FROM schema_migrations WHERE id != '" + strings.ReplaceAll(id, "'", "''") + "') TIMESTAMP(applied_at) PARTITION BY DAY",
		"DROP TABLE schema_migrations",
		"RENAME TABLE schema_migrations_tmp TO schema_migrations",
	}
	for _, stmt := range stmts {
		if err := r.client.Exec(ctx, stmt); err != nil {
			return err
		}
	}
	return nil
}

// splitStatements splits a migration body on ';', dropping blank statements
// and comment lines.
func splitStatements(sql string) []string {
	var cleaned []string
	for _, line := range strings.Split(sql, "\n") {
		trimmed := strings.TrimSpace(line)
		if trimmed == "" || strings.HasPrefix(trimmed, "--") {
			continue
		}
		cleaned = append(cleaned, line)
	}

	var stmts []string
	for _, stmt := range strings.Split(strings.Join(cleaned, "\n"), ";") {
		if s := strings.TrimSpace(stmt); s != "" {
			stmts = append(stmts, s)
		}
	}
	return stmts
}
