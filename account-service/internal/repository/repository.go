package repository

import (
	"context"
	"time"

	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/models"
)

const (
	customerEntity = "customer"
	accountsEntity = "accounts"
)

// CustomerRepository persists customers. Create assigns CustomerID; Create
// and Update stamp the audit fields on the entity they are given.
type CustomerRepository interface {
	Create(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	Update(ctx context.Context, customer *models.Customer) (*models.Customer, error)
	FindByID(ctx context.Context, customerID int64) (*models.Customer, error)
	FindByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error)
	// Delete refuses while any account still references the customer.
	Delete(ctx context.Context, customerID int64) error
}

// AccountsRepository persists accounts keyed by the caller's account number.
type AccountsRepository interface {
	Create(ctx context.Context, account *models.Accounts) (*models.Accounts, error)
	Update(ctx context.Context, account *models.Accounts) (*models.Accounts, error)
	FindByID(ctx context.Context, accountNumber int64) (*models.Accounts, error)
	ListByCustomerID(ctx context.Context, customerID int64) ([]models.Accounts, error)
	Delete(ctx context.Context, accountNumber int64) error
}

// auditing resolves the actor and timestamp for one write. Timestamps are
// truncated to the microsecond precision Postgres stores.
type auditing struct {
	auditor audit.Auditor
	clock   audit.Clock
}

func newAuditing(auditor audit.Auditor, clock audit.Clock) auditing {
	if auditor == nil {
		auditor = audit.StaticAuditor("")
	}
	if clock == nil {
		clock = audit.SystemClock{}
	}
	return auditing{auditor: auditor, clock: clock}
}

func (a auditing) stamp(ctx context.Context) (string, time.Time) {
	return a.auditor.CurrentAuditor(ctx), a.clock.Now().UTC().Truncate(time.Microsecond)
}
