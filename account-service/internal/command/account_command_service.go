package command

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/demobank/microservices/account-service/internal/repository"
	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/cqrs"
	"github.com/demobank/microservices/shared/events"
	"github.com/demobank/microservices/shared/logger"
	"github.com/demobank/microservices/shared/models"
	"github.com/demobank/microservices/shared/store"
)

// AccountCommandService writes accounts and announces each change on the
// account event stream.
type AccountCommandService struct {
	accounts  repository.AccountsRepository
	customers *CustomerCommandService
	auditor   audit.Auditor
	publisher EventPublisher
	log       *zap.Logger
}

func NewAccountCommandService(
	accounts repository.AccountsRepository,
	customers *CustomerCommandService,
	auditor audit.Auditor,
	publisher EventPublisher,
	log *zap.Logger,
) *AccountCommandService {
	return &AccountCommandService{
		accounts:  accounts,
		customers: customers,
		auditor:   auditor,
		publisher: orNop(publisher),
		log:       logger.OrNop(log),
	}
}

func (s *AccountCommandService) CreateAccount(ctx context.Context, cmd cqrs.CreateAccountCommand) (*models.Accounts, error) {
	account, err := s.accounts.Create(ctx, models.NewAccounts(cmd.AccountNumber, cmd.CustomerID, cmd.AccountType, cmd.BranchAddress))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.AccountCreated, account.CreatedBy, events.AccountCreatedEvent{
		AccountNumber: account.AccountNumber,
		CustomerID:    account.CustomerID,
		AccountType:   account.AccountType,
		BranchAddress: account.BranchAddress,
	})
	return account, nil
}

// UpdateAccount overwrites the account type and branch; the owning customer
// is kept from the stored record.
func (s *AccountCommandService) UpdateAccount(ctx context.Context, cmd cqrs.UpdateAccountCommand) (*models.Accounts, error) {
	account, err := s.accounts.FindByID(ctx, cmd.AccountNumber)
	if err != nil {
		return nil, err
	}
	account.AccountType = cmd.AccountType
	account.BranchAddress = cmd.BranchAddress

	updated, err := s.accounts.Update(ctx, account)
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.AccountUpdated, updated.ModifiedBy, events.AccountUpdatedEvent{
		AccountNumber: updated.AccountNumber,
		CustomerID:    updated.CustomerID,
		AccountType:   updated.AccountType,
		BranchAddress: updated.BranchAddress,
	})
	return updated, nil
}

func (s *AccountCommandService) DeleteAccount(ctx context.Context, cmd cqrs.DeleteAccountCommand) error {
	account, err := s.accounts.FindByID(ctx, cmd.AccountNumber)
	if err != nil {
		return err
	}
	if err := s.accounts.Delete(ctx, cmd.AccountNumber); err != nil {
		return err
	}
	s.publish(ctx, events.AccountDeleted, s.actor(ctx), events.AccountDeletedEvent{
		AccountNumber: account.AccountNumber,
		CustomerID:    account.CustomerID,
	})
	return nil
}

// OpenAccount onboards a customer and opens their first account. A mobile
// number that is already registered is refused. If the account cannot be
// created the new customer is removed again.
func (s *AccountCommandService) OpenAccount(ctx context.Context, cmd cqrs.OpenAccountCommand) (*models.Customer, *models.Accounts, error) {
	if s.customers == nil {
		return nil, nil, fmt.Errorf("account opening requires a customer service")
	}
	existing, err := s.customers.customers.FindByMobileNumber(ctx, cmd.Customer.MobileNumber)
	if err == nil {
		return nil, nil, store.ConstraintViolation("customer", existing.CustomerID,
			"customer already registered with mobile number "+cmd.Customer.MobileNumber, nil)
	}
	if !errors.Is(err, store.ErrNotFound) {
		return nil, nil, err
	}

	customer, err := s.customers.CreateCustomer(ctx, cmd.Customer)
	if err != nil {
		return nil, nil, err
	}

	account, err := s.CreateAccount(ctx, cqrs.CreateAccountCommand{
		AccountNumber: cmd.AccountNumber,
		CustomerID:    customer.CustomerID,
		AccountType:   cmd.AccountType,
		BranchAddress: cmd.BranchAddress,
	})
	if err != nil {
		if rbErr := s.customers.DeleteCustomer(ctx, cqrs.DeleteCustomerCommand{CustomerID: customer.CustomerID}); rbErr != nil {
			s.log.Error("failed to roll back customer after account creation failed",
				zap.Int64("customer_id", customer.CustomerID), zap.Error(rbErr))
		}
		return nil, nil, err
	}
	return customer, account, nil
}

func (s *AccountCommandService) actor(ctx context.Context) string {
	if s.auditor == nil {
		return ""
	}
	return s.auditor.CurrentAuditor(ctx)
}

func (s *AccountCommandService) publish(ctx context.Context, eventType, actor string, data any) {
	if err := s.publisher.Publish(ctx, events.AccountEventsStream, eventType, actor, data); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
