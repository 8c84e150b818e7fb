// Package seed installs baseline reference data so a fresh install can
// price quotes immediately. Every insert is idempotent; operator-managed
// rows are never overwritten.
package seed

import (
	quotedomain "github.com/tripshield/tripshield/internal/quote/domain"
	ratingdomain "github.com/tripshield/tripshield/internal/rating/domain"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// EnsureRatingDefaults seeds the rating factor tables, exchange rates and
// a starter referral code.
func EnsureRatingDefaults(conn *gorm.DB) error {
	countryRates := []ratingdomain.CountryRate{
		{ID: 1, Country: "GB", DailyPrice: 1.10},
		{ID: 2, Country: "IE", DailyPrice: 1.10},
		{ID: 3, Country: "FR", DailyPrice: 1.25},
		{ID: 4, Country: "DE", DailyPrice: 1.25},
		{ID: 5, Country: "ES", DailyPrice: 1.20},
	}
	if err := upsertNothing(conn, "country", &countryRates); err != nil {
		return err
	}

	ageBands := []ratingdomain.AgeBandRate{
		{ID: 1, MinAge: 0, MaxAge: 17, DailyRate: 0.20},
		{ID: 2, MinAge: 18, MaxAge: 39, DailyRate: 0.35},
		{ID: 3, MinAge: 40, MaxAge: 59, DailyRate: 0.60},
		{ID: 4, MinAge: 60, MaxAge: 74, DailyRate: 1.10},
		{ID: 5, MinAge: 75, MaxAge: 120, DailyRate: 2.20},
	}
	if err := upsertNothing(conn, "id", &ageBands); err != nil {
		return err
	}

	coverageRates := []ratingdomain.CoverageRate{
		{ID: 1, CoverageType: "EUROPE", DailyRate: 0.00},
		{ID: 2, CoverageType: "WORLDWIDE", DailyRate: 0.45},
		{ID: 3, CoverageType: "WORLDWIDE_PLUS", DailyRate: 0.90},
	}
	if err := upsertNothing(conn, "coverage_type", &coverageRates); err != nil {
		return err
	}

	medicalRates := []ratingdomain.MedicalRate{
		{ID: 1, RiskLevel: 0, DailyRate: 0.00},
		{ID: 2, RiskLevel: 1, DailyRate: 0.75},
	}
	if err := upsertNothing(conn, "risk_level", &medicalRates); err != nil {
		return err
	}

	exchangeRates := []quotedomain.ExchangeRate{
		{ID: 1, Currency: "GBP", RateToGBP: 1.00},
		{ID: 2, Currency: "EUR", RateToGBP: 0.85},
		{ID: 3, Currency: "USD", RateToGBP: 0.78},
	}
	if err := upsertNothing(conn, "currency", &exchangeRates); err != nil {
		return err
	}

	referralCodes := []quotedomain.ReferralCode{
		{ID: 1, Code: "WELCOME10", DiscountPercent: 10, Active: true},
	}
	return upsertNothing(conn, "code", &referralCodes)
}

func upsertNothing[T any](conn *gorm.DB, conflictColumn string, rows *[]T) error {
	return conn.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: conflictColumn}},
		DoNothing: true,
	}).Create(rows).Error
}
