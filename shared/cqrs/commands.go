package cqrs

type CreateCustomerCommand struct {
	Name         string
	Email        string
	MobileNumber string
}

type UpdateCustomerCommand struct {
	CustomerID   int64
	Name         string
	Email        string
	MobileNumber string
}

type DeleteCustomerCommand struct {
	CustomerID int64
}

// CreateAccountCommand opens an account under a caller-chosen number.
type CreateAccountCommand struct {
	AccountNumber int64
	CustomerID    int64
	AccountType   string
	BranchAddress string
}

type UpdateAccountCommand struct {
	AccountNumber int64
	AccountType   string
	BranchAddress string
}

type DeleteAccountCommand struct {
	AccountNumber int64
}

// OpenAccountCommand onboards a new customer and opens their first account.
type OpenAccountCommand struct {
	Customer      CreateCustomerCommand
	AccountNumber int64
	AccountType   string
	BranchAddress string
}
