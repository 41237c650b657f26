package repository

import (
	"context"
	"strconv"
	"time"

	goredis "github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/demobank/microservices/shared/models"
	sharedredis "github.com/demobank/microservices/shared/redis"
)

const (
	customerViewKeyPrefix = "customer:view:"
	accountsViewKeyPrefix = "accounts:view:"
)

// CachedCustomerRepository serves FindByID from Redis when it can, falls
// back to the wrapped repository and warms the cache on every cold read.
// Writes go to the wrapped repository first, then invalidate the entry.
type CachedCustomerRepository struct {
	next  CustomerRepository
	cache *sharedredis.ViewCache[models.Customer]
}

func NewCachedCustomerRepository(next CustomerRepository, client *goredis.Client, ttl time.Duration, log *zap.Logger) *CachedCustomerRepository {
	return &CachedCustomerRepository{
		next:  next,
		cache: sharedredis.NewViewCache[models.Customer](client, ttl, log),
	}
}

func customerKey(customerID int64) string {
	return customerViewKeyPrefix + strconv.FormatInt(customerID, 10)
}

func (r *CachedCustomerRepository) Create(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	created, err := r.next.Create(ctx, customer)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, customerKey(created.CustomerID))
	return created, nil
}

func (r *CachedCustomerRepository) Update(ctx context.Context, customer *models.Customer) (*models.Customer, error) {
	updated, err := r.next.Update(ctx, customer)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, customerKey(updated.CustomerID))
	return updated, nil
}

func (r *CachedCustomerRepository) FindByID(ctx context.Context, customerID int64) (*models.Customer, error) {
	key := customerKey(customerID)
	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, nil
	}
	version, fill := r.cache.Version(ctx, key)
	customer, err := r.next.FindByID(ctx, customerID)
	if err != nil {
		return nil, err
	}
	if fill {
		r.cache.Fill(ctx, key, version, customer)
	}
	return customer, nil
}

func (r *CachedCustomerRepository) FindByMobileNumber(ctx context.Context, mobileNumber string) (*models.Customer, error) {
	return r.next.FindByMobileNumber(ctx, mobileNumber)
}

func (r *CachedCustomerRepository) Delete(ctx context.Context, customerID int64) error {
	if err := r.next.Delete(ctx, customerID); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, customerKey(customerID))
	return nil
}

// CachedAccountsRepository is the accounts counterpart of
// CachedCustomerRepository. Listing by customer always hits the store.
type CachedAccountsRepository struct {
	next  AccountsRepository
	cache *sharedredis.ViewCache[models.Accounts]
}

func NewCachedAccountsRepository(next AccountsRepository, client *goredis.Client, ttl time.Duration, log *zap.Logger) *CachedAccountsRepository {
	return &CachedAccountsRepository{
		next:  next,
		cache: sharedredis.NewViewCache[models.Accounts](client, ttl, log),
	}
}

func accountsKey(accountNumber int64) string {
	return accountsViewKeyPrefix + strconv.FormatInt(accountNumber, 10)
}

func (r *CachedAccountsRepository) Create(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	created, err := r.next.Create(ctx, account)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, accountsKey(created.AccountNumber))
	return created, nil
}

func (r *CachedAccountsRepository) Update(ctx context.Context, account *models.Accounts) (*models.Accounts, error) {
	updated, err := r.next.Update(ctx, account)
	if err != nil {
		return nil, err
	}
	r.cache.Invalidate(ctx, accountsKey(updated.AccountNumber))
	return updated, nil
}

func (r *CachedAccountsRepository) FindByID(ctx context.Context, accountNumber int64) (*models.Accounts, error) {
	key := accountsKey(accountNumber)
	if cached, ok := r.cache.Get(ctx, key); ok {
		return cached, nil
	}
	version, fill := r.cache.Version(ctx, key)
	account, err := r.next.FindByID(ctx, accountNumber)
	if err != nil {
		return nil, err
	}
	if fill {
		r.cache.Fill(ctx, key, version, account)
	}
	return account, nil
}

func (r *CachedAccountsRepository) ListByCustomerID(ctx context.Context, customerID int64) ([]models.Accounts, error) {
	return r.next.ListByCustomerID(ctx, customerID)
}

func (r *CachedAccountsRepository) Delete(ctx context.Context, accountNumber int64) error {
	if err := r.next.Delete(ctx, accountNumber); err != nil {
		return err
	}
	r.cache.Invalidate(ctx, accountsKey(accountNumber))
	return nil
}
