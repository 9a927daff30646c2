// # internal/migration/schema.go
package migration

import (
	"database/sql"
	"fmt"
)

const SchemaVersion = 1

type schemaMigration struct {
	version int
	sql     string
}

var schemaMigrations = []schemaMigration{
	{
		version: 1,
		sql: `
CREATE TABLE IF NOT EXISTS migration_records (
  id TEXT PRIMARY KEY,
  run_key TEXT NOT NULL,
  function_name TEXT NOT NULL,
  qualified_name TEXT NOT NULL,
  file_path TEXT NOT NULL,
  access TEXT NOT NULL,
  parameter_name TEXT NOT NULL,
  parameter_type TEXT NOT NULL,
  import_location TEXT NOT NULL DEFAULT '',
  provenance TEXT NOT NULL DEFAULT '',
  payload TEXT NOT NULL DEFAULT '',
  created_at_utc TEXT NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_migration_records_run ON migration_records(run_key);
CREATE INDEX IF NOT EXISTS idx_migration_records_function ON migration_records(qualified_name);
`,
	},
}

func EnsureSchema(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS schema_migrations (
  version INTEGER PRIMARY KEY,
  applied_at_utc TEXT NOT NULL DEFAULT (CURRENT_TIMESTAMP)
);
`); err != nil {
		return fmt.Errorf("create schema_migrations table: %w", err)
	}

	var current int
	if err := db.QueryRow(`SELECT COALESCE(MAX(version), 0) FROM schema_migrations`).Scan(&current); err != nil {
		return fmt.Errorf("read schema_migrations version: %w", err)
	}
	if current > SchemaVersion {
		return fmt.Errorf("schema version %d is newer than supported version %d", current, SchemaVersion)
	}

	for _, m := range schemaMigrations {
		if m.version <= current {
			continue
		}

		tx, err := db.Begin()
		if err != nil {
			return fmt.Errorf("begin migration %d: %w", m.version, err)
		}

		if _, err := tx.Exec(m.sql); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("apply migration %d: %w", m.version, err)
		}
		if _, err := tx.Exec(`INSERT INTO schema_migrations(version) VALUES (?)`, m.version); err != nil {
			_ = tx.Rollback()
			return fmt.Errorf("record migration %d: %w", m.version, err)
		}

		if err := tx.Commit(); err != nil {
			return fmt.Errorf("commit migration %d: %w", m.version, err)
		}
	}

	return nil
}
