package models

import "time"

// BaseEntity carries the audit fields shared by every persisted record.
// The fields belong to the persistence layer: repositories call MarkCreated
// on first persist and MarkModified on every update.
type BaseEntity struct {
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedBy string    `json:"modifiedBy"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// MarkCreated stamps all four audit fields; modified mirrors created.
func (b *BaseEntity) MarkCreated(actor string, at time.Time) {
	b.CreatedBy = actor
	b.CreatedAt = at
	b.ModifiedBy = actor
	b.ModifiedAt = at
}

// MarkModified refreshes the modified fields only. ModifiedAt never moves
// backwards and never precedes CreatedAt, so a clock step back is absorbed.
func (b *BaseEntity) MarkModified(actor string, at time.Time) {
	if at.Before(b.ModifiedAt) {
		at = b.ModifiedAt
	}
	if at.Before(b.CreatedAt) {
		at = b.CreatedAt
	}
	b.ModifiedBy = actor
	b.ModifiedAt = at
}

func (b BaseEntity) equal(o BaseEntity) bool {
	return b.CreatedBy == o.CreatedBy &&
		b.CreatedAt.Equal(o.CreatedAt) &&
		b.ModifiedBy == o.ModifiedBy &&
		b.ModifiedAt.Equal(o.ModifiedAt)
}
