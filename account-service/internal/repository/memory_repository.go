package repository

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/models"
	"github.com/demobank/microservices/shared/store"
)

// MemoryStore keeps customers and accounts in process memory. It backs
// STORE_DRIVER=memory and the service tests. Both repositories share one
// lock so customer deletion can see account references atomically.
type MemoryStore struct {
	mu             sync.Mutex
	audit          auditing
	lastCustomerID int64
	customers      map[int64]models.Customer
	accounts       map[int64]models.Accounts
}

func NewMemoryStore(auditor audit.Auditor, clock audit.Clock) *MemoryStore {
	return &MemoryStore{
		audit:     newAuditing(auditor, clock),
		customers: make(map[int64]models.Customer),
		accounts:  make(map[int64]models.Accounts),
	}
}

func (s *MemoryStore) Customers() *MemoryCustomerRepository {
	return &MemoryCustomerRepository{s: s}
}

func (s *MemoryStore) Accounts() *MemoryAccountsRepository {
	return &MemoryAccountsRepository{s: s}
}

type MemoryCustomerRepository struct {
	s *MemoryStore
}

func (r *MemoryCustomerRepository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	actor, now := r.s.audit.stamp(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.lastCustomerID++
	customer.CustomerID = r.s.lastCustomerID
	customer.MarkCreated(actor, now)
	r.s.customers[customer.CustomerID] = *customer
	return customer, nil
}

func (r *MemoryCustomerRepository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	actor, now := r.s.audit.stamp(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.customers[customer.CustomerID]
	if !ok {
		return nil, store.NotFound(customerEntity, customer.CustomerID)
	}
	stored.Name = customer.Name
	stored.Email = customer.Email
	stored.MobileNumber = customer.MobileNumber
	stored.MarkModified(actor, now)
	r.s.customers[customer.CustomerID] = stored

	*customer = stored
	return customer, nil
}

func (r *MemoryCustomerRepository) FindByID(_ context.Context, customerID int64) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.customers[customerID]
	if !ok {
		return nil, store.NotFound(customerEntity, customerID)
	}
	return &stored, nil
}

func (r *MemoryCustomerRepository) FindByMobileNumber(_ context.Context, mobileNumber string) (*models.Customer, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	var found *models.Customer
	for _, c := range r.s.customers {
		if c.MobileNumber != mobileNumber {
			continue
		}
		if found == nil || c.CustomerID < found.CustomerID {
			c := c
			found = &c
		}
	}
	if found == nil {
		return nil, store.NotFound(customerEntity, mobileNumber)
	}
	return found, nil
}

func (r *MemoryCustomerRepository) Delete(_ context.Context, customerID int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.customers[customerID]; !ok {
		return store.NotFound(customerEntity, customerID)
	}
	referenced := 0
	for _, a := range r.s.accounts {
		if a.CustomerID == customerID {
			referenced++
		}
	}
	if referenced > 0 {
		return store.ConstraintViolation(customerEntity, customerID, fmt.Sprintf("referenced by %d account(s)", referenced), nil)
	}
	delete(r.s.customers, customerID)
	return nil
}

type MemoryAccountsRepository struct {
	s *MemoryStore
}

func (r *MemoryAccountsRepository) Create(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	actor, now := r.s.audit.stamp(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, exists := r.s.accounts[account.AccountNumber]; exists {
		return nil, store.ConstraintViolation(accountsEntity, account.AccountNumber, "duplicate key", nil)
	}
	account.MarkCreated(actor, now)
	r.s.accounts[account.AccountNumber] = *account
	return account, nil
}

func (r *MemoryAccountsRepository) Update(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	actor, now := r.s.audit.stamp(ctx)

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[account.AccountNumber]
	if !ok {
		return nil, store.NotFound(accountsEntity, account.AccountNumber)
	}
	stored.CustomerID = account.CustomerID
	stored.AccountType = account.AccountType
	stored.BranchAddress = account.BranchAddress
	stored.MarkModified(actor, now)
	r.s.accounts[account.AccountNumber] = stored

	*account = stored
	return account, nil
}

func (r *MemoryAccountsRepository) FindByID(_ context.Context, accountNumber int64) (*models.Accounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	stored, ok := r.s.accounts[accountNumber]
	if !ok {
		return nil, store.NotFound(accountsEntity, accountNumber)
	}
	return &stored, nil
}

func (r *MemoryAccountsRepository) ListByCustomerID(_ context.Context, customerID int64) ([]models.Accounts, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	accounts := []models.Accounts{}
	for _, a := range r.s.accounts {
		if a.CustomerID == customerID {
			accounts = append(accounts, a)
		}
	}
	sort.Slice(accounts, func(i, j int) bool { return accounts[i].AccountNumber < accounts[j].AccountNumber })
	return accounts, nil
}

func (r *MemoryAccountsRepository) Delete(_ context.Context, accountNumber int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.accounts[accountNumber]; !ok {
		return store.NotFound(accountsEntity, accountNumber)
	}
	delete(r.s.accounts, accountNumber)
	return nil
}
