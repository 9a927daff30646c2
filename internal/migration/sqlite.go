// # internal/migration/sqlite.go
package migration

import (
	"context"
	"database/sql"
	"time"

	_ "modernc.org/sqlite"
)

// SQLiteSink persists migration records so downstream rollout tooling can
// pick them up after the run.
type SQLiteSink struct {
	db *sql.DB
}

func OpenSQLiteSink(path string) (*SQLiteSink, error) {
	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := EnsureSchema(db); err != nil {
		_ = db.Close()
		return nil, err
	}
	return &SQLiteSink{db: db}, nil
}

func (s *SQLiteSink) Record(ctx context.Context, rec Record) error {
	rec = Stamp(rec)
	_, err := s.db.ExecContext(ctx, `
INSERT INTO migration_records (
  id, run_key, function_name, qualified_name, file_path, access,
  parameter_name, parameter_type, import_location, provenance, payload, created_at_utc
) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID, rec.RunKey, rec.FunctionName, rec.QualifiedName, rec.FilePath, rec.Access,
		rec.ParameterName, rec.ParameterType, rec.ImportLocation, rec.Provenance,
		string(rec.Payload), rec.CreatedAt.Format(time.RFC3339))
	return err
}

// LoadRecords returns the records for one run in insertion order.
func (s *SQLiteSink) LoadRecords(ctx context.Context, runKey string) ([]Record, error) {
	rows, err := s.db.QueryContext(ctx, `
SELECT id, run_key, function_name, qualified_name, file_path, access,
       parameter_name, parameter_type, import_location, provenance, payload, created_at_utc
FROM migration_records WHERE run_key = ? ORDER BY rowid`, runKey)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Record
	for rows.Next() {
		var rec Record
		var payload, created string
		if err := rows.Scan(&rec.ID, &rec.RunKey, &rec.FunctionName, &rec.QualifiedName,
			&rec.FilePath, &rec.Access, &rec.ParameterName, &rec.ParameterType,
			&rec.ImportLocation, &rec.Provenance, &payload, &created); err != nil {
			return nil, err
		}
		rec.Payload = []byte(payload)
		if ts, err := time.Parse(time.RFC3339, created); err == nil {
			rec.CreatedAt = ts
		}
		out = append(out, rec)
	}
	return out, rows.Err()
}

func (s *SQLiteSink) Close() error {
	return s.db.Close()
}
