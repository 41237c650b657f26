package repository

import (
	"context"
	"database/sql"
	"fmt"
)

var schema = []string{
	`CREATE TABLE IF NOT EXISTS customer (
		customer_id   BIGSERIAL PRIMARY KEY,
		name          VARCHAR(100) NOT NULL,
		email         VARCHAR(100) NOT NULL,
		mobile_number VARCHAR(20)  NOT NULL,
		created_by    VARCHAR(100) NOT NULL,
		created_at    TIMESTAMPTZ  NOT NULL,
		modified_by   VARCHAR(100) NOT NULL,
		modified_at   TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_customer_mobile_number ON customer (mobile_number)`,
	`CREATE TABLE IF NOT EXISTS accounts (
		account_number BIGINT PRIMARY KEY,
		customer_id    BIGINT       NOT NULL,
		account_type   VARCHAR(100) NOT NULL,
		branch_address VARCHAR(200) NOT NULL,
		created_by     VARCHAR(100) NOT NULL,
		created_at     TIMESTAMPTZ  NOT NULL,
		modified_by    VARCHAR(100) NOT NULL,
		modified_at    TIMESTAMPTZ  NOT NULL
	)`,
	`CREATE INDEX IF NOT EXISTS idx_accounts_customer_id ON accounts (customer_id)`,
}

// Migrate creates the customer and accounts tables when they are missing.
func Migrate(ctx context.Context, db *sql.DB) error {
	for _, stmt := range schema {
		if _, err := db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("failed to apply schema: %w", err)
		}
	}
	return nil
}
