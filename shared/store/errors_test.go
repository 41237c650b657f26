package store

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrorClassification(t *testing.T) {
	cause := errors.New("pq: duplicate key value violates unique constraint")

	tests := []struct {
		name           string
		err            error
		wantNotFound   bool
		wantConstraint bool
		wantMessage    string
	}{
		{
			name:         "not found",
			err:          NotFound("customer", int64(42)),
			wantNotFound: true,
			wantMessage:  "customer 42: record not found",
		},
		{
			name:           "constraint violation keeps cause",
			err:            ConstraintViolation("accounts", int64(1001), "account number already exists", cause),
			wantConstraint: true,
			wantMessage:    "accounts 1001: constraint violation: account number already exists: " + cause.Error(),
		},
		{
			name:         "wrapped not found",
			err:          fmt.Errorf("failed to update customer: %w", NotFound("customer", int64(7))),
			wantNotFound: true,
			wantMessage:  "failed to update customer: customer 7: record not found",
		},
		{
			name:        "unrelated error",
			err:         errors.New("connection refused"),
			wantMessage: "connection refused",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := IsNotFound(tt.err); got != tt.wantNotFound {
				t.Errorf("IsNotFound = %v, want %v", got, tt.wantNotFound)
			}
			if got := IsConstraintViolation(tt.err); got != tt.wantConstraint {
				t.Errorf("IsConstraintViolation = %v, want %v", got, tt.wantConstraint)
			}
			if tt.err.Error() != tt.wantMessage {
				t.Errorf("message = %q, want %q", tt.err.Error(), tt.wantMessage)
			}
		})
	}

	if !errors.Is(ConstraintViolation("accounts", 1, "", cause), cause) {
		t.Fatal("expected the underlying cause to be reachable")
	}
}
