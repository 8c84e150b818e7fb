// Package domain contains the four independently maintained rating factor
// tables. Every factor is a per-day monetary contribution; a missing row
// degrades to a zero rate by policy, it never fails pricing.
package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
)

// CountryRate is the base daily price for a country of residence.
type CountryRate struct {
	ID         snowflake.ID `gorm:"primaryKey"`
	Country    string       `gorm:"type:text;not null;uniqueIndex"`
	DailyPrice float64      `gorm:"not null;default:0"`
}

func (CountryRate) TableName() string { return "country_rates" }

// AgeBandRate is the daily loading for an inclusive [MinAge, MaxAge] band.
// Bands are contiguous and non-overlapping across the supported age range.
type AgeBandRate struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	MinAge    int          `gorm:"not null"`
	MaxAge    int          `gorm:"not null"`
	DailyRate float64      `gorm:"not null;default:0"`
}

func (AgeBandRate) TableName() string { return "age_band_rates" }

// CoverageRate is the daily loading for a coverage type.
type CoverageRate struct {
	ID           snowflake.ID `gorm:"primaryKey"`
	CoverageType string       `gorm:"type:text;not null;uniqueIndex"`
	DailyRate    float64      `gorm:"not null;default:0"`
}

func (CoverageRate) TableName() string { return "coverage_rates" }

// MedicalRate is the daily loading for a medical risk level. Level 2 is a
// decline and is never priced, so only levels 0 and 1 carry rows.
type MedicalRate struct {
	ID        snowflake.ID `gorm:"primaryKey"`
	RiskLevel int          `gorm:"not null;uniqueIndex"`
	DailyRate float64      `gorm:"not null;default:0"`
}

func (MedicalRate) TableName() string { return "medical_rates" }

// Source resolves daily rates for pricing. Implementations must apply the
// zero-rate fallback for absent rows; only infrastructure failures surface
// as errors.
type Source interface {
	CountryPrice(ctx context.Context, country string) (float64, error)
	AgeRate(ctx context.Context, age int) (float64, error)
	CoverageRate(ctx context.Context, coverageType string) (float64, error)
	MedicalRate(ctx context.Context, riskLevel int) (float64, error)
}
