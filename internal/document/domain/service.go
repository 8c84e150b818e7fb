package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Service issues membership documents through the outbox. Issue and Resend
// share one dispatch path: render the certificate, mail it, and move a paid
// membership to sent. A dispatch failure records the attempt and leaves the
// membership paid for a later retry.
type Service interface {
	// Enqueue records a pending job inside the caller's transaction.
	// Safe to call repeatedly for the same membership.
	Enqueue(ctx context.Context, tx *gorm.DB, membershipID snowflake.ID) error

	// Issue dispatches the membership's documents now. The membership must
	// be at least paid; a sent or active membership is re-sent without a
	// further status transition.
	Issue(ctx context.Context, membershipID snowflake.ID) error

	// Resend is the operator-facing re-dispatch. It refuses memberships
	// that were never paid.
	Resend(ctx context.Context, membershipID snowflake.ID) error

	// DispatchPending drains the outbox: every pending or retryable failed
	// job gets one dispatch attempt. Returns the number of jobs sent.
	DispatchPending(ctx context.Context) (int, error)
}
