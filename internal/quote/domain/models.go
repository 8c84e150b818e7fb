// Package domain contains persistence models for quotes: immutable priced
// snapshots of a membership at a point in time, plus the referral-code and
// exchange-rate lookup tables the calculator reads at creation time.
package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
)

// Quote is an immutable priced snapshot tied to one membership. Monetary
// fields never change after creation; a re-pricing run inserts a new row.
type Quote struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	MembershipID snowflake.ID `gorm:"not null;index"`
	Currency     string       `gorm:"type:text;not null"`
	DayCount     int          `gorm:"not null"`

	BasePrice       float64 `gorm:"not null;default:0"`
	CoverageLoading float64 `gorm:"not null;default:0"`
	MedicalLoading  float64 `gorm:"not null;default:0"`
	TotalPrice      float64 `gorm:"not null;default:0"`
	DiscountAmount  float64 `gorm:"not null;default:0"`
	TaxAmount       float64 `gorm:"not null;default:0"`
	TotalWithTax    float64 `gorm:"not null;default:0"`

	// ExchangeRate and TotalGBP are frozen at creation time; later rate
	// table updates never touch an existing quote.
	ExchangeRate float64 `gorm:"not null;default:0"`
	TotalGBP     float64 `gorm:"not null;default:0"`

	ReferralCode string    `gorm:"type:text"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (Quote) TableName() string { return "quotes" }

// QuoteMemberPrice is the per-member breakdown line of a quote.
type QuoteMemberPrice struct {
	ID       snowflake.ID `gorm:"primaryKey"`
	QuoteID  snowflake.ID `gorm:"not null;index"`
	MemberID snowflake.ID `gorm:"not null;index"`

	CountryPrice   float64 `gorm:"not null;default:0"`
	AgeFactor      float64 `gorm:"not null;default:0"`
	CoverageFactor float64 `gorm:"not null;default:0"`
	MedicalFactor  float64 `gorm:"not null;default:0"`
	DailyTotal     float64 `gorm:"not null;default:0"`
	MemberTotal    float64 `gorm:"not null;default:0"`

	CreatedAt time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (QuoteMemberPrice) TableName() string { return "quote_member_prices" }

// ExchangeRate converts one unit of a currency to GBP. Rates are updated
// out of band; quotes snapshot the rate at creation time.
type ExchangeRate struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	Currency  string       `gorm:"type:text;not null;uniqueIndex"`
	RateToGBP float64      `gorm:"not null;default:0"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ExchangeRate) TableName() string { return "exchange_rates" }

// ReferralCode is a percentage discount applied to the pre-tax total.
type ReferralCode struct {
	ID              snowflake.ID `gorm:"primaryKey"`
	Code            string       `gorm:"type:text;not null;uniqueIndex"`
	DiscountPercent float64      `gorm:"not null;default:0"`
	Active          bool         `gorm:"not null;default:true"`
	CreatedAt       time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP"`
}

func (ReferralCode) TableName() string { return "referral_codes" }
