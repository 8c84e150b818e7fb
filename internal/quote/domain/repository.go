package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

// Repository covers the quote write path. Reads of the referral and
// exchange lookup tables go through the generic store; inserts and the
// latest-quote query live here so the service owns transaction scope.
type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, quote *Quote) error
	InsertMemberPrices(ctx context.Context, db *gorm.DB, prices []QuoteMemberPrice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Quote, error)
	ListMemberPrices(ctx context.Context, db *gorm.DB, quoteID snowflake.ID) ([]QuoteMemberPrice, error)
	LatestByMembership(ctx context.Context, db *gorm.DB, membershipID snowflake.ID) (*Quote, error)
}
