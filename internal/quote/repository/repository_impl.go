package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/quote/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, quote *domain.Quote) error {
	return db.WithContext(ctx).Create(quote).Error
}

func (r *repo) InsertMemberPrices(ctx context.Context, db *gorm.DB, prices []domain.QuoteMemberPrice) error {
	if len(prices) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&prices).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Quote, error) {
	var item domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM quotes WHERE id = ? LIMIT 1`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) ListMemberPrices(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]domain.QuoteMemberPrice, error) {
	var prices []domain.QuoteMemberPrice
	err := db.WithContext(ctx).
		Where("quote_id = ?", quoteID).
		Order("id ASC").
		Find(&prices).Error
	if err != nil {
		return nil, err
	}
	return prices, nil
}

func (r *repo) LatestByMembership(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) (*domain.Quote, error) {
	var item domain.Quote
	err := db.WithContext(ctx).Raw(
		`SELECT * FROM quotes
		 WHERE membership_id = ?
		 ORDER BY created_at DESC, id DESC
		 LIMIT 1`,
		membershipID,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}
