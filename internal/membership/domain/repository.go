package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository is the membership data-access contract. Methods take the gorm
// handle so services can run them inside their own transactions.
type Repository interface {
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Membership, error)
	FindByIDForUpdate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Membership, error)
	Insert(ctx context.Context, db *gorm.DB, membership *Membership) error
	InsertMembers(ctx context.Context, db *gorm.DB, members []Member) error
	ListMembers(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) ([]Member, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, status Status, at time.Time) error
	NextMembershipNumber(ctx context.Context, db *gorm.DB) (int64, error)
	ListDueForActivation(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Membership, error)
	ListDueForExpiry(ctx context.Context, db *gorm.DB, now time.Time, limit int) ([]Membership, error)
}
