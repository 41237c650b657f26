// Package audit resolves who and when for the audit fields that repositories
// stamp on every write.
package audit

import (
	"context"
	"time"
)

// Auditor names the actor responsible for the current write.
type Auditor interface {
	CurrentAuditor(ctx context.Context) string
}

// Clock supplies write timestamps.
type Clock interface {
	Now() time.Time
}

// StaticAuditor always reports the same actor, usually the service name.
type StaticAuditor string

func (a StaticAuditor) CurrentAuditor(context.Context) string {
	return string(a)
}

type SystemClock struct{}

func (SystemClock) Now() time.Time {
	return time.Now().UTC()
}
