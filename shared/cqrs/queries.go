package cqrs

// GetCustomerQuery fetches a single customer by ID.
type GetCustomerQuery struct {
	CustomerID int64
}

// GetAccountQuery fetches a single account by account number.
type GetAccountQuery struct {
	AccountNumber int64
}

// FetchCustomerDetailsQuery fetches a customer, located by mobile number,
// together with every account that references them.
type FetchCustomerDetailsQuery struct {
	MobileNumber string
}
