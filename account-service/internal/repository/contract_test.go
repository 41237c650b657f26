package repository

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/demobank/microservices/shared/audit"
	"github.com/demobank/microservices/shared/models"
	"github.com/demobank/microservices/shared/store"
)

// steppingClock advances by one second on every read.
type steppingClock struct {
	mu  sync.Mutex
	now time.Time
}

func newSteppingClock() *steppingClock {
	return &steppingClock{now: time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)}
}

func (c *steppingClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(time.Second)
	return c.now
}

// switchableAuditor lets a test change the acting user between writes.
type switchableAuditor struct {
	mu    sync.Mutex
	actor string
}

func (a *switchableAuditor) set(actor string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.actor = actor
}

func (a *switchableAuditor) CurrentAuditor(context.Context) string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.actor
}

type repositories struct {
	customers CustomerRepository
	accounts  AccountsRepository
}

type storeFactory func(t *testing.T, auditor audit.Auditor, clock audit.Clock) repositories

// runRepositoryContract exercises the persistence guarantees every store
// implementation must provide.
func runRepositoryContract(t *testing.T, newStore storeFactory) {
	t.Run("account number survives a round trip", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		for _, number := range []int64{1, 1234567890, 9_223_372_036_854_775_807} {
			account := models.NewAccounts(number, 1, "Savings", "123 Main Street, New York")
			if _, err := repos.accounts.Create(ctx, account); err != nil {
				t.Fatalf("Create(%d) returned error: %v", number, err)
			}
			found, err := repos.accounts.FindByID(ctx, number)
			if err != nil {
				t.Fatalf("FindByID(%d) returned error: %v", number, err)
			}
			if found.AccountNumber != number {
				t.Fatalf("expected account number %d, got %d", number, found.AccountNumber)
			}
			if !found.Equal(account) {
				t.Fatalf("stored account differs:\n%s\n%s", account, found)
			}
		}
	})

	t.Run("customer ids are unique and increasing", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		seen := map[int64]bool{}
		var last int64
		for i := 0; i < 5; i++ {
			customer, err := repos.customers.Create(ctx, models.NewCustomer("Customer", "c@demobank.com", "4354437687"))
			if err != nil {
				t.Fatalf("Create returned error: %v", err)
			}
			if customer.CustomerID == 0 || seen[customer.CustomerID] {
				t.Fatalf("expected a fresh id, got %d", customer.CustomerID)
			}
			if customer.CustomerID <= last {
				t.Fatalf("expected ids to increase, got %d after %d", customer.CustomerID, last)
			}
			seen[customer.CustomerID] = true
			last = customer.CustomerID
		}
	})

	t.Run("creation audit is stable across updates", func(t *testing.T) {
		auditor := &switchableAuditor{actor: "ACCOUNTS_MS"}
		repos := newStore(t, auditor, newSteppingClock())
		ctx := context.Background()

		customer, err := repos.customers.Create(ctx, models.NewCustomer("Madan Reddy", "madan@demobank.com", "4354437687"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		createdBy, createdAt := customer.CreatedBy, customer.CreatedAt
		if customer.ModifiedBy != createdBy || !customer.ModifiedAt.Equal(createdAt) {
			t.Fatalf("expected modified fields to mirror created ones, got %s", customer)
		}

		auditor.set("teller-17")
		prev := customer.ModifiedAt
		for i := 0; i < 5; i++ {
			customer.Name = "Madan Reddy " + string(rune('A'+i))
			updated, err := repos.customers.Update(ctx, customer)
			if err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if updated.CreatedBy != createdBy || !updated.CreatedAt.Equal(createdAt) {
				t.Fatalf("creation fields changed on update %d: %s", i, updated)
			}
			if updated.ModifiedAt.Before(prev) {
				t.Fatalf("modifiedAt went backwards on update %d: %v -> %v", i, prev, updated.ModifiedAt)
			}
			if updated.ModifiedBy != "teller-17" {
				t.Fatalf("expected modifiedBy teller-17, got %q", updated.ModifiedBy)
			}
			prev = updated.ModifiedAt
		}

		found, err := repos.customers.FindByID(ctx, customer.CustomerID)
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if !found.CreatedAt.Equal(createdAt) || found.CreatedBy != createdBy {
			t.Fatalf("stored creation fields changed: %s", found)
		}
		if found.Name != "Madan Reddy E" {
			t.Fatalf("expected last name to stick, got %q", found.Name)
		}
	})

	t.Run("identical account update only advances modifiedAt", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		account, err := repos.accounts.Create(ctx, models.NewAccounts(1001, 1, "Savings", "123 Main Street"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		prev := account.ModifiedAt

		for i := 0; i < 2; i++ {
			same := models.NewAccounts(1001, 1, "Savings", "123 Main Street")
			updated, err := repos.accounts.Update(ctx, same)
			if err != nil {
				t.Fatalf("Update returned error: %v", err)
			}
			if updated.AccountType != "Savings" || updated.BranchAddress != "123 Main Street" {
				t.Fatalf("fields changed on identical update: %s", updated)
			}
			if !updated.ModifiedAt.After(prev) {
				t.Fatalf("expected modifiedAt to advance past %v, got %v", prev, updated.ModifiedAt)
			}
			prev = updated.ModifiedAt
		}
	})

	t.Run("customer with empty email is accepted", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		customer, err := repos.customers.Create(ctx, models.NewCustomer("No Mail", "", "4354437687"))
		if err != nil {
			t.Fatalf("expected empty email to be accepted, got %v", err)
		}
		found, err := repos.customers.FindByID(ctx, customer.CustomerID)
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if found.Email != "" {
			t.Fatalf("expected empty email, got %q", found.Email)
		}
	})

	t.Run("duplicate account number is a constraint violation", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		if _, err := repos.accounts.Create(ctx, models.NewAccounts(2002, 1, "Savings", "A")); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		duplicate := models.NewAccounts(2002, 2, "Current", "B")
		_, err := repos.accounts.Create(ctx, duplicate)
		if !store.IsConstraintViolation(err) {
			t.Fatalf("expected a constraint violation, got %v", err)
		}
		if duplicate.CreatedBy != "" || !duplicate.CreatedAt.IsZero() || !duplicate.ModifiedAt.IsZero() {
			t.Fatalf("a rejected create left audit fields on the entity: %s", duplicate)
		}
		found, err := repos.accounts.FindByID(ctx, 2002)
		if err != nil {
			t.Fatalf("FindByID returned error: %v", err)
		}
		if found.CustomerID != 1 {
			t.Fatalf("original account was overwritten: %s", found)
		}
	})

	t.Run("missing keys are not found", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		checks := map[string]error{}
		_, checks["find customer"] = repos.customers.FindByID(ctx, 404)
		_, checks["find customer by mobile"] = repos.customers.FindByMobileNumber(ctx, "0000000000")
		_, checks["update customer"] = repos.customers.Update(ctx, &models.Customer{CustomerID: 404})
		checks["delete customer"] = repos.customers.Delete(ctx, 404)
		_, checks["find account"] = repos.accounts.FindByID(ctx, 404)
		_, checks["update account"] = repos.accounts.Update(ctx, models.NewAccounts(404, 1, "Savings", "A"))
		checks["delete account"] = repos.accounts.Delete(ctx, 404)

		for name, err := range checks {
			if !store.IsNotFound(err) {
				t.Errorf("%s: expected not found, got %v", name, err)
			}
		}
	})

	t.Run("customer deletion is restricted while accounts reference it", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		customer, err := repos.customers.Create(ctx, models.NewCustomer("Owner", "owner@demobank.com", "9999999999"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if _, err := repos.accounts.Create(ctx, models.NewAccounts(3003, customer.CustomerID, "Savings", "A")); err != nil {
			t.Fatalf("Create account returned error: %v", err)
		}

		if err := repos.customers.Delete(ctx, customer.CustomerID); !store.IsConstraintViolation(err) {
			t.Fatalf("expected a constraint violation, got %v", err)
		}
		if _, err := repos.customers.FindByID(ctx, customer.CustomerID); err != nil {
			t.Fatalf("customer should survive a refused delete: %v", err)
		}

		if err := repos.accounts.Delete(ctx, 3003); err != nil {
			t.Fatalf("Delete account returned error: %v", err)
		}
		if err := repos.customers.Delete(ctx, customer.CustomerID); err != nil {
			t.Fatalf("expected delete to succeed once unreferenced, got %v", err)
		}
		if _, err := repos.customers.FindByID(ctx, customer.CustomerID); !store.IsNotFound(err) {
			t.Fatalf("expected customer to be gone, got %v", err)
		}
	})

	t.Run("lookups by mobile number and customer", func(t *testing.T) {
		repos := newStore(t, audit.StaticAuditor("ACCOUNTS_MS"), newSteppingClock())
		ctx := context.Background()

		first, err := repos.customers.Create(ctx, models.NewCustomer("First", "first@demobank.com", "5550001111"))
		if err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		if _, err := repos.customers.Create(ctx, models.NewCustomer("Second", "second@demobank.com", "5550001111")); err != nil {
			t.Fatalf("Create returned error: %v", err)
		}
		found, err := repos.customers.FindByMobileNumber(ctx, "5550001111")
		if err != nil {
			t.Fatalf("FindByMobileNumber returned error: %v", err)
		}
		if found.CustomerID != first.CustomerID {
			t.Fatalf("expected the earliest customer %d, got %d", first.CustomerID, found.CustomerID)
		}

		for _, number := range []int64{5002, 5001} {
			if _, err := repos.accounts.Create(ctx, models.NewAccounts(number, first.CustomerID, "Savings", "A")); err != nil {
				t.Fatalf("Create account returned error: %v", err)
			}
		}
		accounts, err := repos.accounts.ListByCustomerID(ctx, first.CustomerID)
		if err != nil {
			t.Fatalf("ListByCustomerID returned error: %v", err)
		}
		if len(accounts) != 2 || accounts[0].AccountNumber != 5001 || accounts[1].AccountNumber != 5002 {
			t.Fatalf("unexpected accounts %v", accounts)
		}

		none, err := repos.accounts.ListByCustomerID(ctx, 999)
		if err != nil || none == nil || len(none) != 0 {
			t.Fatalf("expected an empty list, got %v, %v", none, err)
		}
	})
}
