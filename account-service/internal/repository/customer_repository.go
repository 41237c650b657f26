package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/models"
	"github.com/demobank/microservices/shared/store"
	"github.com/lib/pq"
)

const customerColumns = `customer_id, name, email, mobile_number, created_by, created_at, modified_by, modified_at`

// PostgresCustomerRepository stores customers in the customer table.
type PostgresCustomerRepository struct {
	db    *sql.DB
	audit auditing
}

func NewPostgresCustomerRepository(db *sql.DB, auditor audit.Auditor, clock audit.Clock) *PostgresCustomerRepository {
	return &PostgresCustomerRepository{db: db, audit: newAuditing(auditor, clock)}
}

func (r *PostgresCustomerRepository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	actor, now := r.audit.stamp(ctx)
	created := *customer
	created.MarkCreated(actor, now)

	query := `
		INSERT INTO customer (name, email, mobile_number, created_by, created_at, modified_by, modified_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING customer_id
	`
	err := r.db.QueryRowContext(ctx, query,
		created.Name, created.Email, created.MobileNumber,
		created.CreatedBy, created.CreatedAt, created.ModifiedBy, created.ModifiedAt,
	).Scan(&created.CustomerID)
	if err != nil {
		if cerr := constraintError(customerEntity, created.Name, err); cerr != nil {
			return nil, cerr
		}
		return nil, fmt.Errorf("failed to create customer: %w", err)
	}

	*customer = created
	return customer, nil
}

// Update overwrites the profile fields. modified_at only moves forward and
// the creation fields are read back from the row.
func (r *PostgresCustomerRepository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	actor, now := r.audit.stamp(ctx)
	updated := *customer

	query := `
		UPDATE customer
		SET name = $2, email = $3, mobile_number = $4,
			modified_by = $5, modified_at = GREATEST(modified_at, $6)
		WHERE customer_id = $1
		RETURNING created_by, created_at, modified_by, modified_at
	`
	err := r.db.QueryRowContext(ctx, query,
		updated.CustomerID, updated.Name, updated.Email, updated.MobileNumber, actor, now,
	).Scan(&updated.CreatedBy, &updated.CreatedAt, &updated.ModifiedBy, &updated.ModifiedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(customerEntity, updated.CustomerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to update customer: %w", err)
	}

	*customer = updated
	return customer, nil
}

func (r *PostgresCustomerRepository) FindByID(ctx context.Context, customerID int64) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customer WHERE customer_id = $1`
	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, customerID))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(customerEntity, customerID)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// FindByMobileNumber returns the earliest customer registered with the number.
func (r *PostgresCustomerRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error) {
	query := `SELECT ` + customerColumns + ` FROM customer WHERE mobile_number = $1 ORDER BY customer_id LIMIT 1`
	customer, err := scanCustomer(r.db.QueryRowContext(ctx, query, mobileNumber))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, store.NotFound(customerEntity, mobileNumber)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get customer: %w", err)
	}
	return customer, nil
}

// Delete locks the customer row FOR UPDATE, checks for referencing accounts
// and removes the customer inside one transaction. Account writes hold FOR
// KEY SHARE on the same row, so the count cannot miss a concurrent insert.
func (r *PostgresCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	var locked int64
	err = tx.QueryRowContext(ctx, `SELECT customer_id FROM customer WHERE customer_id = $1 FOR UPDATE`, customerID).Scan(&locked)
	if errors.Is(err, sql.ErrNoRows) {
		return store.NotFound(customerEntity, customerID)
	}
	if err != nil {
		return fmt.Errorf("failed to lock customer: %w", err)
	}

	var accounts int
	if err := tx.QueryRowContext(ctx, `SELECT COUNT(*) FROM accounts WHERE customer_id = $1`, customerID).Scan(&accounts); err != nil {
		return fmt.Errorf("failed to count accounts: %w", err)
	}
	if accounts > 0 {
		return store.ConstraintViolation(customerEntity, customerID, fmt.Sprintf("referenced by %d account(s)", accounts), nil)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM customer WHERE customer_id = $1`, customerID); err != nil {
		return fmt.Errorf("failed to delete customer: %w", err)
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit customer delete: %w", err)
	}
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanCustomer(row rowScanner) (*models.Customer, error) {
	var c models.Customer
	err := row.Scan(
		&c.CustomerID, &c.Name, &c.Email, &c.MobileNumber,
		&c.CreatedBy, &c.CreatedAt, &c.ModifiedBy, &c.ModifiedAt,
	)
	if err != nil {
		return nil, err
	}
	return &c, nil
}

// constraintError maps Postgres integrity violations onto the store taxonomy.
func constraintError(entity string, key any, err error) error {
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return nil
	}
	switch pqErr.Code {
	case "23505":
		return store.ConstraintViolation(entity, key, "duplicate key", err)
	case "23502", "23503", "23514":
		return store.ConstraintViolation(entity, key, pqErr.Code.Name(), err)
	}
	return nil
}
