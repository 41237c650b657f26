package models

import (
	"fmt"
	"time"
)

// Accounts is a bank account keyed by a caller-supplied account number.
// CustomerID is a logical reference to Customer; nothing cascades through it.
type Accounts struct {
	BaseEntity
	AccountNumber int64  `json:"accountNumber"`
	CustomerID    int64  `json:"customerId"`
	AccountType   string `json:"accountType"`
	BranchAddress string `json:"branchAddress"`
}

func NewAccounts(accountNumber, customerID int64, accountType, branchAddress string) *Accounts {
	return &Accounts{
		AccountNumber: accountNumber,
		CustomerID:    customerID,
		AccountType:   accountType,
		BranchAddress: branchAddress,
	}
}

func (a *Accounts) Equal(o *Accounts) bool {
	if a == nil || o == nil {
		return a == o
	}
	return a.AccountNumber == o.AccountNumber &&
		a.CustomerID == o.CustomerID &&
		a.AccountType == o.AccountType &&
		a.BranchAddress == o.BranchAddress &&
		a.BaseEntity.equal(o.BaseEntity)
}

func (a *Accounts) String() string {
	if a == nil {
		return "Accounts(nil)"
	}
	return fmt.Sprintf(
		"Accounts(accountNumber=%d, customerId=%d, accountType=%s, branchAddress=%s, createdBy=%s, createdAt=%s, modifiedBy=%s, modifiedAt=%s)",
		a.AccountNumber, a.CustomerID, a.AccountType, a.BranchAddress,
		a.CreatedBy, formatTime(a.CreatedAt), a.ModifiedBy, formatTime(a.ModifiedAt),
	)
}

// Customer is keyed by a store-assigned identifier; CustomerID stays zero
// until the customer has been created.
type Customer struct {
	BaseEntity
	CustomerID   int64  `json:"customerId"`
	Name         string `json:"name"`
	Email        string `json:"email"`
	MobileNumber string `json:"mobileNumber"`
}

func NewCustomer(name, email, mobileNumber string) *Customer {
	return &Customer{
		Name:         name,
		Email:        email,
		MobileNumber: mobileNumber,
	}
}

func (c *Customer) Equal(o *Customer) bool {
	if c == nil || o == nil {
		return c == o
	}
	return c.CustomerID == o.CustomerID &&
		c.Name == o.Name &&
		c.Email == o.Email &&
		c.MobileNumber == o.MobileNumber &&
		c.BaseEntity.equal(o.BaseEntity)
}

func (c *Customer) String() string {
	if c == nil {
		return "Customer(nil)"
	}
	return fmt.Sprintf(
		"Customer(customerId=%d, name=%s, email=%s, mobileNumber=%s, createdBy=%s, createdAt=%s, modifiedBy=%s, modifiedAt=%s)",
		c.CustomerID, c.Name, c.Email, c.MobileNumber,
		c.CreatedBy, formatTime(c.CreatedAt), c.ModifiedBy, formatTime(c.ModifiedAt),
	)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return "null"
	}
	return t.UTC().Format(time.RFC3339Nano)
}
