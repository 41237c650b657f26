package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/models"
	"github.com/demobank/microservices/shared/store"
)

const accountsColumns = `account_number, customer_id, account_type, branch_address, created_by, created_at, modified_by, modified_at`

// PostgresAccountsRepository stores accounts in the accounts table. It is
// the source of truth; CachedAccountsRepository layers Redis on top.
type PostgresAccountsRepository struct {
	db    *sql.DB
	audit auditing
}

func NewPostgresAccountsRepository(db *sql.DB, auditor audit.Auditor, clock audit.Clock) *PostgresAccountsRepository {
	return &PostgresAccountsRepository{db: db, audit: newAuditing(auditor, clock)}
}

// Create inserts the account. The owning customer row, when it exists, is
// held FOR KEY SHARE until commit so a concurrent customer delete either
// sees this account or waits for it.
func (r *PostgresAccountsRepository) Create(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	actor, now := r.audit.stamp(ctx)
	created := *account
	created.MarkCreated(actor, now)

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := shareCustomer(ctx, tx, created.CustomerID); err != nil {
		return nil, err
	}

	query := `
		INSERT INTO accounts (account_number, customer_id, account_type, branch_address,
			created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
	`
	_, err = tx.ExecContext(ctx, query,
		created.AccountNumber, created.CustomerID, created.AccountType, created.BranchAddress,
		created.CreatedBy, created.CreatedAt, created.ModifiedBy, created.ModifiedAt,
	)
	if err != nil {
		if cerr := constraintError(accountsEntity, created.AccountNumber, err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("failed to create account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		if cerr := constraintError(accountsEntity, created.AccountNumber, err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("failed to commit account create: %w", err)
	}

	*account = created
	return account, nil
}

// Update overwrites owner, type and branch. Like Create it shares the lock on
// the owning customer.
func (r *PostgresAccountsRepository) Update(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	actor, now := r.audit.stamp(ctx)
	updated := *account

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := shareCustomer(ctx, tx, updated.CustomerID); err != nil {
		return nil, err
	}

	query := `
		UPDATE accounts
		SET customer_id = $2, account_type = $3, branch_address = $4,
			modified_by = $5, modified_at = GREATEST(modified_at, $6)
		WHERE account_number = $1
		RETURNING created_by, created_at, modified_by, modified_at
	`
	err = tx.QueryRowContext(ctx, query,
		updated.AccountNumber, updated.CustomerID, updated.AccountType, updated.BranchAddress, actor, now,
	).Scan(&updated.CreatedBy, &updated.CreatedAt, &updated.ModifiedBy, &updated.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(accountsEntity, updated.AccountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update account: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit account update: %w", err)
	}

	*account = updated
	return account, nil
}

// shareCustomer takes FOR KEY SHARE on the customer row. A missing customer
// is not an error: customer_id is a logical reference.
func shareCustomer(ctx context.Context, tx *sql.Tx, customerID int64) error {
	var locked int64
	err := tx.QueryRowContext(ctx, `SELECT customer_id FROM customer WHERE customer_id = $1 FOR KEY SHARE`, customerID).Scan(&locked)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return fmt.Errorf("failed to lock customer: %w", err)
	}
	return nil
}

func (r *PostgresAccountsRepository) FindByID(ctx context.Context, accountNumber int64) (*models.Accounts, error) {
	query := `SELECT ` + accountsColumns + ` FROM accounts WHERE account_number = $1`
	account, err := scanAccount(r.db.QueryRowContext(ctx, query, accountNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(accountsEntity, accountNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

func (r *PostgresAccountsRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]models.Accounts, error) {
	query := `SELECT ` + accountsColumns + ` FROM accounts WHERE customer_id = $1 ORDER BY account_number`
	rows, err := r.db.QueryContext(ctx, query, customerID)
	if err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	defer rows.Close()

	accounts := []models.Accounts{}
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan account: %w", err)
		}
		accounts = append(accounts, *account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to list accounts: %w", err)
	}
	return accounts, nil
}

func (r *PostgresAccountsRepository) Delete(ctx context.Context, accountNumber int64) error {
	result, err := r.db.ExecContext(ctx, `DELETE FROM accounts WHERE account_number = $1`, accountNumber)
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	rows, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to check rows affected: %w", err)
	}
	if rows == 0 {
		return store.NotFound(accountsEntity, accountNumber)
	}
	return nil
}

func scanAccount(row rowScanner) (*models.Accounts, error) {
	var a models.Accounts
	err := row.Scan(
		&a.AccountNumber, &a.CustomerID, &a.AccountType, &a.BranchAddress,
		&a.CreatedBy, &a.CreatedAt, &a.ModifiedBy, &a.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &a, nil
}
