package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	// InsertEventIfAbsent records a provider event, reporting false when an
	// event with the same (provider, event_id) was already stored.
	InsertEventIfAbsent(ctx context.Context, db *gorm.DB, event *PaymentEvent) (bool, error)

	// UpsertPayment inserts the payment for a quote, reporting false when a
	// payment for that quote already exists.
	UpsertPayment(ctx context.Context, db *gorm.DB, payment *Payment) (bool, error)

	FindPaymentByQuoteID(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*Payment, error)

	InsertSession(ctx context.Context, db *gorm.DB, session *CheckoutSession) error
	FindSessionByQuoteID(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*CheckoutSession, error)
}
