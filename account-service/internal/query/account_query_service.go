package query

import (
	"context"

	"github.com/demobank/microservices/account-service/internal/repository"
	"github.com/demobank/microservices/shared/cqrs"
	"github.com/demobank/microservices/shared/models"
)

// CustomerDetails is a customer together with the accounts that reference it.
type CustomerDetails struct {
	Customer models.Customer   `json:"customer"`
	Accounts []models.Accounts `json:"accounts"`
}

type AccountQueryService struct {
	customers repository.CustomerRepository
	accounts  repository.AccountsRepository
}

func NewAccountQueryService(customers repository.CustomerRepository, accounts repository.AccountsRepository) *AccountQueryService {
	return &AccountQueryService{customers: customers, accounts: accounts}
}

func (s *AccountQueryService) GetCustomer(ctx context.Context, q cqrs.GetCustomerQuery) (*models.Customer, error) {
	return s.customers.FindByID(ctx, q.CustomerID)
}

func (s *AccountQueryService) GetAccount(ctx context.Context, q cqrs.GetAccountQuery) (*models.Accounts, error) {
	return s.accounts.FindByID(ctx, q.AccountNumber)
}

// FetchCustomerDetails locates a customer by mobile number and lists their
// accounts. A customer without accounts yields an empty list.
func (s *AccountQueryService) FetchCustomerDetails(ctx context.Context, q cqrs.FetchCustomerDetailsQuery) (*CustomerDetails, error) {
	customer, err := s.customers.FindByMobileNumber(ctx, q.MobileNumber)
	if err != nil {
		return nil, err
	}
	accounts, err := s.accounts.ListByCustomerID(ctx, customer.CustomerID)
	if err != nil {
		return nil, err
	}
	return &CustomerDetails{Customer: *customer, Accounts: accounts}, nil
}
