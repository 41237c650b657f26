package command

import (
	"context"

	"go.uber.org/zap"

	"github.com/demobank/microservices/account-service/internal/repository"
	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/cqrs"
	"github.com/demobank/microservices/shared/events"
	"github.com/demobank/microservices/shared/logger"
	"github.com/demobank/microservices/shared/models"
)

// CustomerCommandService writes customers and announces each change on the
// customer event stream.
type CustomerCommandService struct {
	customers repository.CustomerRepository
	auditor   audit.Auditor
	publisher EventPublisher
	log       *zap.Logger
}

func NewCustomerCommandService(
	customers repository.CustomerRepository,
	auditor audit.Auditor,
	publisher EventPublisher,
	log *zap.Logger,
) *CustomerCommandService {
	return &CustomerCommandService{
		customers: customers,
		auditor:   auditor,
		publisher: orNop(publisher),
		log:       logger.OrNop(log),
	}
}

func (s *CustomerCommandService) CreateCustomer(ctx context.Context, cmd cqrs.CreateCustomerCommand) (*models.Customer, error) {
	customer, err := s.customers.Create(ctx, models.NewCustomer(cmd.Name, cmd.Email, cmd.MobileNumber))
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.CustomerEventsStream, events.CustomerCreated, customer.CreatedBy, events.CustomerCreatedEvent{
		CustomerID:   customer.CustomerID,
		Name:         customer.Name,
		Email:        customer.Email,
		MobileNumber: customer.MobileNumber,
	})
	return customer, nil
}

func (s *CustomerCommandService) UpdateCustomer(ctx context.Context, cmd cqrs.UpdateCustomerCommand) (*models.Customer, error) {
	customer, err := s.customers.Update(ctx, &models.Customer{
		CustomerID:   cmd.CustomerID,
		Name:         cmd.Name,
		Email:        cmd.Email,
		MobileNumber: cmd.MobileNumber,
	})
	if err != nil {
		return nil, err
	}
	s.publish(ctx, events.CustomerEventsStream, events.CustomerUpdated, customer.ModifiedBy, events.CustomerUpdatedEvent{
		CustomerID:   customer.CustomerID,
		Name:         customer.Name,
		Email:        customer.Email,
		MobileNumber: customer.MobileNumber,
	})
	return customer, nil
}

// DeleteCustomer fails with a constraint violation while accounts still
// reference the customer.
func (s *CustomerCommandService) DeleteCustomer(ctx context.Context, cmd cqrs.DeleteCustomerCommand) error {
	if err := s.customers.Delete(ctx, cmd.CustomerID); err != nil {
		return err
	}
	s.publish(ctx, events.CustomerEventsStream, events.CustomerDeleted, s.actor(ctx), events.CustomerDeletedEvent{
		CustomerID: cmd.CustomerID,
	})
	return nil
}

func (s *CustomerCommandService) actor(ctx context.Context) string {
	if s.auditor == nil {
		return ""
	}
	return s.auditor.CurrentAuditor(ctx)
}

// publish logs rather than returns failures: the write already happened.
func (s *CustomerCommandService) publish(ctx context.Context, stream, eventType, actor string, data any) {
	if err := s.publisher.Publish(ctx, stream, eventType, actor, data); err != nil {
		s.log.Warn("failed to publish event", zap.String("type", eventType), zap.Error(err))
	}
}
