// Package domain contains the payment records and the reconciliation
// contract. A payment is keyed by quote: the unique quote_id constraint is
// what makes duplicate provider confirmations collapse into one recorded
// payment.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/datatypes"
)

// StatusPaid is the only status a recorded payment carries: a row exists
// exactly when the quote settled.
const StatusPaid = "paid"

// Payment is the single settled payment for a quote. Amount and AmountGBP
// are copied from the quote at confirmation time, never recomputed.
type Payment struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	QuoteID      snowflake.ID `gorm:"not null;uniqueIndex"`
	MembershipID snowflake.ID `gorm:"not null;index"`
	Provider     string       `gorm:"type:text;not null"`
	SessionID    string       `gorm:"type:text"`
	Status       string       `gorm:"type:text;not null;default:'paid'"`
	Amount       float64      `gorm:"not null;default:0"`
	AmountGBP    float64      `gorm:"not null;default:0"`
	Currency     string       `gorm:"type:text;not null"`
	CreatedAt    time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Payment) TableName() string { return "payments" }

// PaymentEvent is the audit record of every confirmation received from a
// provider, stored verbatim before any reconciliation decision. Uniqueness
// on (provider, event_id) drops exact redeliveries.
type PaymentEvent struct {
	ID        snowflake.ID   `gorm:"primaryKey"`
	Provider  string         `gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	EventID   string         `gorm:"type:text;not null;uniqueIndex:ux_payment_events_provider_event"`
	QuoteID   snowflake.ID   `gorm:"not null;index"`
	Outcome   string         `gorm:"type:text;not null"`
	Payload   datatypes.JSON `gorm:"type:jsonb"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (PaymentEvent) TableName() string { return "payment_events" }

// CheckoutSession is the hosted-payment session minted for a quote.
type CheckoutSession struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	QuoteID   snowflake.ID `gorm:"not null;uniqueIndex"`
	Provider  string       `gorm:"type:text;not null"`
	SessionID string       `gorm:"type:text;not null"`
	URL       string       `gorm:"type:text;not null"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (CheckoutSession) TableName() string { return "checkout_sessions" }
