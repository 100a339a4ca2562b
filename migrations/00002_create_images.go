package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateImages, downCreateImages)
}

func upCreateImages(tx *sql.Tx) error {
	stmt := `
	CREATE TABLE images (
		id UUID PRIMARY KEY,
		upload_id UUID NOT NULL REFERENCES uploads(id) ON DELETE CASCADE,
		variant VARCHAR(20) NOT NULL,
		path VARCHAR(500) NOT NULL,
		width INTEGER,
		height INTEGER,
		size_bytes BIGINT,
		mime_type VARCHAR(100),
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		UNIQUE (upload_id, variant)
	);
	`
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("could not create images table: %w", err)
	}
	return nil
}

func downCreateImages(tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS images;`); err != nil {
		return fmt.Errorf("could not drop images table: %w", err)
	}
	return nil
}
