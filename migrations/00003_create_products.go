package migrations

import (
	"database/sql"
	"fmt"

	"github.com/pressly/goose/v3"
)

func init() {
	goose.AddMigration(upCreateProducts, downCreateProducts)
}

func upCreateProducts(tx *sql.Tx) error {
	stmt := `
	CREATE TABLE products (
		id UUID PRIMARY KEY,
		sku VARCHAR(100) NOT NULL UNIQUE,
		name VARCHAR(255) NOT NULL,
		description TEXT,
		price DECIMAL(12,2) NOT NULL,
		stock_quantity INTEGER NOT NULL,
		status VARCHAR(20) NOT NULL DEFAULT 'active',
		primary_image_id UUID REFERENCES images(id) ON DELETE SET NULL,
		created_at TIMESTAMP WITH TIME ZONE DEFAULT NOW(),
		updated_at TIMESTAMP WITH TIME ZONE DEFAULT NOW()
	);
	`
	if _, err := tx.Exec(stmt); err != nil {
		return fmt.Errorf("could not create products table: %w", err)
	}
	return nil
}

func downCreateProducts(tx *sql.Tx) error {
	if _, err := tx.Exec(`DROP TABLE IF EXISTS products;`); err != nil {
		return fmt.Errorf("could not drop products table: %w", err)
	}
	return nil
}
