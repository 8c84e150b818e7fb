package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// ConfirmationEvent is one payment notification from a provider webhook.
// Providers may deliver the same event many times and out of order.
type ConfirmationEvent struct {
	Provider  string
	EventID   string
	QuoteID   snowflake.ID
	SessionID string
	Status    string
	Amount    float64
	Currency  string
	Payload   []byte
}

// StatusSucceeded is the only provider status that settles a payment;
// everything else is recorded and ignored.
const StatusSucceeded = "succeeded"

// Outcome classifies how a confirmation event was reconciled.
type Outcome string

const (
	OutcomeConfirmed Outcome = "confirmed"
	OutcomeDuplicate Outcome = "duplicate"
	OutcomeIgnored   Outcome = "ignored"
)

type Service interface {
	// Confirm reconciles one provider event against the quote's membership.
	// The first successful confirmation records the payment and moves the
	// membership to paid; any replay is a recorded no-op. An event for an
	// unknown quote fails with ErrUnknownQuote.
	Confirm(ctx context.Context, event ConfirmationEvent) (Outcome, error)

	// CreateCheckout mints a hosted payment session for a quote, returning
	// the existing session when one was already created. A quote whose
	// membership is no longer draft cannot enter checkout again.
	CreateCheckout(ctx context.Context, quoteID snowflake.ID) (*CheckoutSession, error)
}
