package service

import (
	"context"
	"math"
	"time"

	"github.com/tripshield/tripshield/internal/config"
	memberdomain "github.com/tripshield/tripshield/internal/membership/domain"
	"github.com/tripshield/tripshield/internal/quote/domain"
)

// memberFactors is the resolved per-day rating breakdown for one member.
type memberFactors struct {
	CountryPrice   float64
	AgeFactor      float64
	CoverageFactor float64
	MedicalFactor  float64
}

func (f memberFactors) dailyTotal() float64 {
	return f.CountryPrice + f.AgeFactor + f.CoverageFactor + f.MedicalFactor
}

// chargeableDays resolves the day count for a duration type. Annual and
// multi-trip covers charge a fixed number of days regardless of the trip
// dates. Single-trip charges whole days between start and end, capped;
// trips shorter than the policy minimum are refused.
func chargeableDays(policy config.PricingPolicy, duration memberdomain.DurationType, start, end time.Time) (int, error) {
	switch duration {
	case memberdomain.DurationAnnual:
		return policy.AnnualDays, nil
	case memberdomain.DurationMultiTrip:
		return policy.MultiTripDays, nil
	case memberdomain.DurationSingleTrip:
		if !end.After(start) {
			return 0, domain.ErrInvalidDayCount
		}
		days := int(math.Ceil(end.Sub(start).Hours() / 24))
		if days < policy.SingleTripMinDays {
			return 0, domain.ErrInvalidDayCount
		}
		if days > policy.SingleTripCapDays {
			days = policy.SingleTripCapDays
		}
		return days, nil
	default:
		return 0, memberdomain.ErrInvalidDuration
	}
}

// resolveFactors looks up the four rating contributions for one member.
// Absent factor rows already degrade to zero inside the rating source.
func (s *Service) resolveFactors(
	ctx context.Context,
	member memberdomain.Member,
	coverage memberdomain.CoverageType,
	riskLevel int,
	startDate time.Time,
) (memberFactors, error) {
	var f memberFactors
	var err error

	if f.CountryPrice, err = s.rating.CountryPrice(ctx, member.CountryOfResidence); err != nil {
		return f, err
	}
	if f.AgeFactor, err = s.rating.AgeRate(ctx, member.AgeAt(startDate)); err != nil {
		return f, err
	}
	if f.CoverageFactor, err = s.rating.CoverageRate(ctx, string(coverage)); err != nil {
		return f, err
	}
	if f.MedicalFactor, err = s.rating.MedicalRate(ctx, riskLevel); err != nil {
		return f, err
	}
	return f, nil
}

// priceTotals aggregates member lines into the quote's monetary fields.
// BasePrice is the country contribution only; the age loading stays on the
// member lines and is reflected in TotalPrice. The discount applies to the
// pre-tax total; tax is charged on what the customer actually pays.
func priceTotals(quote *domain.Quote, lines []domain.QuoteMemberPrice, taxRate, discountPercent float64) {
	for _, line := range lines {
		days := float64(quote.DayCount)
		quote.BasePrice += line.CountryPrice * days
		quote.CoverageLoading += line.CoverageFactor * days
		quote.MedicalLoading += line.MedicalFactor * days
		quote.TotalPrice += line.MemberTotal
	}

	quote.DiscountAmount = quote.TotalPrice * discountPercent / 100
	discounted := quote.TotalPrice - quote.DiscountAmount
	quote.TaxAmount = discounted * taxRate
	quote.TotalWithTax = discounted + quote.TaxAmount
}
