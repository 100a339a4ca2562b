package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateImportLogs, downCreateImportLogs)
}

func upCreateImportLogs(tx *sql.Tx) error {
	stmt := `
	CREATE TABLE import_logs (
		id UUID PRIMARY KEY,
		filename VARCHAR(500) NOT NULL,
		file_hash VARCHAR(64),
		status VARCHAR(30) NOT NULL,
		total_rows INTEGER NOT NULL DEFAULT 0,
		imported_rows INTEGER NOT NULL DEFAULT 0,
		updated_rows INTEGER NOT NULL DEFAULT 0,
		invalid_rows INTEGER NOT NULL DEFAULT 0,
		duplicate_rows INTEGER NOT NULL DEFAULT 0,
		error_details JSONB,
		started_at TIMESTAMP WITH TIME ZONE,
		completed_at TIMESTAMP WITH TIME ZONE,
		processing_time_seconds DOUBLE PRECISION,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_import_logs_status ON import_logs (status);
	`
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("could not create import_logs table: %w", err)
	}
	return nil
}

func downCreateImportLogs(tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS import_logs;`); err != nil {
		return fmt.Errorf("could not drop import_logs table: %w", err)
	}
	return nil
}
