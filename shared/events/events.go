package events

import "time"

// Event types
const (
	CustomerCreated = "customer.created"
	CustomerUpdated = "customer.updated"
	CustomerDeleted = "customer.deleted"

	AccountCreated = "account.created"
	AccountUpdated = "account.updated"
	AccountDeleted = "account.deleted"
)

// Stream names
const (
	CustomerEventsStream = "customer.events"
	AccountEventsStream  = "account.events"
)

// Base event structure
type Event struct {
	ID        string    `json:"id"`
	Type      string    `json:"type"`
	Timestamp time.Time `json:"timestamp"`
	Actor     string    `json:"actor"`
	Data      any       `json:"data"`
}

// Customer events
type CustomerCreatedEvent struct {
	CustomerID   int64  `json:"customerId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

type CustomerUpdatedEvent struct {
	CustomerID   int64  `json:"customerId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

type CustomerDeletedEvent struct {
	CustomerID int64 `json:"customerId"`
}

// Account events
type AccountCreatedEvent struct {
	AccountNumber int64  `json:"accountNumber"`
	CustomerID    int64  `json:"customerId"`
	AccountType   string `json:"accountType"`
	BranchAddress string `json:"branchAddress"`
}

type AccountUpdatedEvent struct {
	AccountNumber int64  `json:"accountNumber"`
	CustomerID    int64  `json:"customerId"`
	AccountType   string `json:"accountType"`
	BranchAddress string `json:"branchAddress"`
}

type AccountDeletedEvent struct {
	AccountNumber int64 `json:"accountNumber"`
	CustomerID    int64 `json:"customerId"`
}
