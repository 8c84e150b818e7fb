package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/tripshield/tripshield/internal/membership/domain"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Membership, error) {
	var item domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, membership_number, type, coverage_type, duration_type,
		        status, start_date, end_date, paid_at, sent_at, created_at, updated_at
		 FROM memberships
		 WHERE id = ?
		 LIMIT 1`,
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

func (r *repo) FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Membership, error) {
	var item domain.Membership
	err := db.WithContext(ctx).Raw(
		`SELECT id, user_id, membership_number, type, coverage_type, duration_type,
		        status, start_date, end_date, paid_at, sent_at, created_at, updated_at
		 FROM memberships
		 WHERE id = ?
		 FOR UPDATE`,
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

func (r *repo) Insert(ctx context.Context, db *gorm.DB, membership *domain.Membership) error {
	return db.WithContext(ctx).Create(membership).Error
}

func (r *repo) InsertMembers(ctx context.Context, db *gorm.DB, members []domain.Member) error {
	if len(members) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(&members).Error
}

func (r *repo) ListMembers(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) ([]domain.Member, error) {
	var members []domain.Member
	err := db.WithContext(ctx).
		Where("membership_id = ?", membershipID).
		Order("is_primary DESC, created_at ASC").
		Find(&members).Error
	if err != nil {
		return nil, err
	}
	return members, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status domain.Status, at time.Time) error {
	updates := map[string]any{
		"status":     status,
		"updated_at": at,
	}
	switch status {
	case domain.StatusPaid:
		updates["paid_at"] = at
	case domain.StatusSent:
		updates["sent_at"] = at
	}
	return db.WithContext(ctx).Model(&domain.Membership{}).
		Where("id = ?", id).
		Updates(updates).Error
}

// NextMembershipNumber locks the current highest-numbered row so two
// concurrent transactions cannot mint the same number.
func (r *repo) NextMembershipNumber(ctx context.Context, db *gorm.DB) (int64, error) {
	var current int64
	err := db.WithContext(ctx).Raw(
		`SELECT membership_number
		 FROM memberships
		 ORDER BY membership_number DESC
		 LIMIT 1
		 FOR UPDATE`,
	).Scan(&current).Error
	if err != nil {
		return 0, err
	}
	return current + 1, nil
}

func (r *repo) ListDueForActivation(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Membership, error) {
	return r.listDue(ctx, db, domain.StatusSent, "start_date <= ?", now, limit)
}

func (r *repo) ListDueForExpiry(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]domain.Membership, error) {
	return r.listDue(ctx, db, domain.StatusActive, "end_date < ?", now, limit)
}

func (r *repo) listDue(ctx context.Context, db *gorm.DB, status domain.Status, dateCond string, now time.Time, limit int) ([]domain.Membership, error) {
	var items []domain.Membership
	stmt := db.WithContext(ctx).
		Where("status = ?", status).
		Where(dateCond, now).
		Order("id ASC")
	if limit > 0 {
		stmt = stmt.Limit(limit)
	}
	err := stmt.Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
