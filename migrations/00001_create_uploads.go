package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateUploads, downCreateUploads)
}

func upCreateUploads(tx *sql.Tx) error {
	stmt := `
	CREATE TABLE uploads (
		id UUID PRIMARY KEY,
		original_filename VARCHAR(500) NOT NULL,
		stored_filename VARCHAR(500) NOT NULL,
		mime_type VARCHAR(100),
		total_size BIGINT NOT NULL,
		total_chunks INTEGER NOT NULL,
		uploaded_chunks INTEGER NOT NULL DEFAULT 0,
		checksum_sha256 VARCHAR(64) NOT NULL,
		status VARCHAR(20) NOT NULL,
		failure_reason VARCHAR(255),
		uploaded_chunk_set JSONB,
		completed_at TIMESTAMP WITH TIME ZONE,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	CREATE INDEX idx_uploads_checksum ON uploads (checksum_sha256);
	CREATE INDEX idx_uploads_status ON uploads (status);
	`
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("could not create uploads table: %w", err)
	}
	return nil
}

func downCreateUploads(tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS uploads;`); err != nil {
		return fmt.Errorf("could not drop uploads table: %w", err)
	}
	return nil
}
