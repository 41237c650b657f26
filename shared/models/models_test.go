package models

import (
	"strings"
	"testing"
	"time"
)

func TestBaseEntityMarkCreated(t *testing.T) {
	at := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)
	var b BaseEntity
	b.MarkCreated("ACCOUNTS_MS", at)

	if b.CreatedBy != "ACCOUNTS_MS" || b.ModifiedBy != "ACCOUNTS_MS" {
		t.Fatalf("expected actor on both audit fields, got %+v", b)
	}
	if !b.CreatedAt.Equal(at) || !b.ModifiedAt.Equal(at) {
		t.Fatalf("expected timestamps %v, got %+v", at, b)
	}
}

func TestBaseEntityMarkModified(t *testing.T) {
	created := time.Date(2024, 1, 2, 3, 4, 5, 0, time.UTC)

	tests := []struct {
		name       string
		updates    []time.Time
		wantLatest time.Time
	}{
		{
			name:       "advances with the clock",
			updates:    []time.Time{created.Add(time.Minute), created.Add(2 * time.Minute)},
			wantLatest: created.Add(2 * time.Minute),
		},
		{
			name:       "ignores a clock step back",
			updates:    []time.Time{created.Add(time.Hour), created.Add(time.Minute)},
			wantLatest: created.Add(time.Hour),
		},
		{
			name:       "never precedes creation",
			updates:    []time.Time{created.Add(-time.Hour)},
			wantLatest: created,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var b BaseEntity
			b.MarkCreated("creator", created)

			prev := b.ModifiedAt
			for _, at := range tt.updates {
				b.MarkModified("editor", at)
				if b.ModifiedAt.Before(prev) {
					t.Fatalf("modifiedAt went backwards: %v -> %v", prev, b.ModifiedAt)
				}
				prev = b.ModifiedAt
			}

			if b.CreatedBy != "creator" || !b.CreatedAt.Equal(created) {
				t.Fatalf("creation fields changed: %+v", b)
			}
			if b.ModifiedBy != "editor" {
				t.Fatalf("expected modifiedBy editor, got %q", b.ModifiedBy)
			}
			if !b.ModifiedAt.Equal(tt.wantLatest) {
				t.Fatalf("expected modifiedAt %v, got %v", tt.wantLatest, b.ModifiedAt)
			}
		})
	}
}

func TestAccountsEqualAndString(t *testing.T) {
	at := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
	a := NewAccounts(1234567890, 7, "Savings", "123 Main Street, New York")
	a.MarkCreated("ACCOUNTS_MS", at)
	b := NewAccounts(1234567890, 7, "Savings", "123 Main Street, New York")
	b.MarkCreated("ACCOUNTS_MS", at.In(time.FixedZone("X", 3600)))

	if !a.Equal(b) {
		t.Fatalf("expected equal accounts:\n%s\n%s", a, b)
	}

	b.BranchAddress = "elsewhere"
	if a.Equal(b) {
		t.Fatal("expected accounts with different branch to differ")
	}

	b.BranchAddress = a.BranchAddress
	b.MarkModified("other", at.Add(time.Second))
	if a.Equal(b) {
		t.Fatal("expected audit fields to take part in equality")
	}

	s := a.String()
	for _, want := range []string{"accountNumber=1234567890", "customerId=7", "accountType=Savings", "createdBy=ACCOUNTS_MS", "modifiedAt=2024-05-06T07:08:09Z"} {
		if !strings.Contains(s, want) {
			t.Errorf("expected %q in %q", want, s)
		}
	}
}

func TestCustomerEqualAndString(t *testing.T) {
	c := NewCustomer("Madan Reddy", "", "4354437687")
	if c.CustomerID != 0 {
		t.Fatalf("expected unassigned id, got %d", c.CustomerID)
	}
	if c.Email != "" {
		t.Fatalf("expected empty email to be kept, got %q", c.Email)
	}

	d := *c
	if !c.Equal(&d) {
		t.Fatal("expected copy to be equal")
	}
	d.MobileNumber = "0000000000"
	if c.Equal(&d) {
		t.Fatal("expected differing mobile numbers to differ")
	}

	var nilCustomer *Customer
	if !nilCustomer.Equal(nil) || c.Equal(nil) {
		t.Fatal("unexpected nil equality result")
	}

	if s := c.String(); !strings.Contains(s, "createdAt=null") || !strings.Contains(s, "name=Madan Reddy") {
		t.Fatalf("unexpected string %q", s)
	}
}
