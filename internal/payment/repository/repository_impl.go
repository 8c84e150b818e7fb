package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/payment/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertEventIfAbsent(ctx context.Context, db *gorm.DB, event *domain.PaymentEvent) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "provider"}, {Name: "event_id"}},
		DoNothing: true,
	}).Create(event)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) UpsertPayment(ctx context.Context, db *gorm.DB, payment *domain.Payment) (bool, error) {
	result := db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "quote_id"}},
		DoNothing: true,
	}).Create(payment)
	if result.Error != nil {
		return false, result.Error
	}
	return result.RowsAffected > 0, nil
}

func (r *repo) FindPaymentByQuoteID(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*domain.Payment, error) {
	var payment domain.Payment
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM payments WHERE quote_id = ? LIMIT 1`,
		quoteID,
	).Scan(&payment).Error
	if err != nil {
		return nil, err
	}
	if payment.ID == 0 {
		return nil, nil
	}
	return &payment, nil
}

func (r *repo) InsertSession(ctx context.Context, db *gorm.DB, session *domain.CheckoutSession) error {
	return db.WithContext(ctx).Create(session).Error
}

func (r *repo) FindSessionByQuoteID(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) (*domain.CheckoutSession, error) {
	var session domain.CheckoutSession
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM checkout_sessions WHERE quote_id = ? LIMIT 1`,
		quoteID,
	).Scan(&session).Error
	if err != nil {
		return nil, err
	}
	if session.ID == 0 {
		return nil, nil
	}
	return &session, nil
}
